package table

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrRaggedColumns indicates columns of different lengths.
	ErrRaggedColumns = errors.New("columns have different lengths")
	// ErrDuplicateColumn indicates two columns share a name.
	ErrDuplicateColumn = errors.New("duplicate column name")
	// ErrUnknownColumn indicates a lookup for a column that does not exist.
	ErrUnknownColumn = errors.New("unknown column")
)

// Table is an ordered set of equally long, uniquely named columns.
type Table struct {
	cols  []*Column
	index map[string]int
	rows  int
}

// New builds a table from columns, taking ownership of them.
func New(cols ...*Column) (*Table, error) {
	t := &Table{cols: cols, index: make(map[string]int, len(cols))}
	for i, c := range cols {
		if _, dup := t.index[c.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, c.Name)
		}
		t.index[c.Name] = i
		if i == 0 {
			t.rows = c.Len()
		} else if c.Len() != t.rows {
			return nil, fmt.Errorf("%w: %q has %d rows, want %d", ErrRaggedColumns, c.Name, c.Len(), t.rows)
		}
	}
	return t, nil
}

// MustNew is New for fixtures and literals known to be valid.
func MustNew(cols ...*Column) *Table {
	t, err := New(cols...)
	if err != nil {
		panic(err)
	}
	return t
}

// Validate re-checks the table invariants. Columns are exposed by pointer,
// so callers that hand-edit them can use this before trusting the table.
func (t *Table) Validate() error {
	if t == nil {
		return errors.New("nil table")
	}
	seen := make(map[string]struct{}, len(t.cols))
	for _, c := range t.cols {
		if _, dup := seen[c.Name]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateColumn, c.Name)
		}
		seen[c.Name] = struct{}{}
		if c.Len() != t.rows {
			return fmt.Errorf("%w: %q has %d rows, want %d", ErrRaggedColumns, c.Name, c.Len(), t.rows)
		}
	}
	return nil
}

func (t *Table) NumRows() int { return t.rows }

func (t *Table) NumCols() int { return len(t.cols) }

// Columns returns the columns in order. The slice is shared; do not mutate.
func (t *Table) Columns() []*Column { return t.cols }

// Column looks a column up by name.
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.cols[i], true
}

// Names returns the column names in order.
func (t *Table) Names() []string {
	out := make([]string, len(t.cols))
	for i, c := range t.cols {
		out[i] = c.Name
	}
	return out
}

// Replace swaps in c for the column of the same name. The table is modified
// in place, so only the owner of a freshly built table should call it.
func (t *Table) Replace(c *Column) error {
	i, ok := t.index[c.Name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownColumn, c.Name)
	}
	if c.Len() != t.rows {
		return fmt.Errorf("%w: %q has %d rows, want %d", ErrRaggedColumns, c.Name, c.Len(), t.rows)
	}
	t.cols[i] = c
	return nil
}

// NullCount sums null cells across all columns.
func (t *Table) NullCount() int {
	n := 0
	for _, c := range t.cols {
		n += c.NullCount()
	}
	return n
}

// RowHasNull reports whether row i has a null in any column.
func (t *Table) RowHasNull(i int) bool {
	for _, c := range t.cols {
		if c.IsNull(i) {
			return true
		}
	}
	return false
}

// RowKey encodes row i so that two rows share a key exactly when every
// column holds an equal value (nulls equal nulls).
func (t *Table) RowKey(i int) string {
	var b strings.Builder
	for _, c := range t.cols {
		b.WriteString(c.key(i))
		b.WriteByte(';')
	}
	return b.String()
}

// DuplicateCount counts rows equal to an earlier row.
func (t *Table) DuplicateCount() int {
	seen := make(map[string]struct{}, t.rows)
	dups := 0
	for i := 0; i < t.rows; i++ {
		k := t.RowKey(i)
		if _, ok := seen[k]; ok {
			dups++
			continue
		}
		seen[k] = struct{}{}
	}
	return dups
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	cols := make([]*Column, len(t.cols))
	for i, c := range t.cols {
		cols[i] = c.Clone()
	}
	return &Table{cols: cols, index: cloneIndex(t.index), rows: t.rows}
}

// Take returns a new table holding the given rows in order.
func (t *Table) Take(rows []int) *Table {
	cols := make([]*Column, len(t.cols))
	for i, c := range t.cols {
		cols[i] = c.Take(rows)
	}
	return &Table{cols: cols, index: cloneIndex(t.index), rows: len(rows)}
}

// Head returns the first n rows.
func (t *Table) Head(n int) *Table {
	if n > t.rows {
		n = t.rows
	}
	if n < 0 {
		n = 0
	}
	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}
	return t.Take(rows)
}

// Select returns a table with the named columns in the given order.
func (t *Table) Select(names []string) (*Table, error) {
	cols := make([]*Column, 0, len(names))
	for _, n := range names {
		c, ok := t.Column(n)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, n)
		}
		cols = append(cols, c.Clone())
	}
	return New(cols...)
}

// Records returns every row formatted with Column.String.
func (t *Table) Records() [][]string {
	out := make([][]string, t.rows)
	for i := range out {
		row := make([]string, len(t.cols))
		for j, c := range t.cols {
			row[j] = c.String(i)
		}
		out[i] = row
	}
	return out
}

func cloneIndex(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
