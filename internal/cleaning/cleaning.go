// Package cleaning implements the table-wide actions of the Clean page.
// Every action returns a new table and leaves its input untouched.
package cleaning

import (
	"errors"
	"fmt"
	"strings"

	"github.com/KaramelBytes/tidyloom/internal/table"
)

// Op is a cleaning action.
type Op int

const (
	DropNulls Op = iota + 1
	Impute
	DropDuplicates
)

var opNames = map[Op]string{
	DropNulls:      "drop-nulls",
	Impute:         "impute",
	DropDuplicates: "drop-duplicates",
}

func (o Op) String() string {
	if s, ok := opNames[o]; ok {
		return s
	}
	return fmt.Sprintf("op(%d)", int(o))
}

// Ops lists every action in display order.
func Ops() []Op { return []Op{DropNulls, Impute, DropDuplicates} }

// Label is the button caption used by the dashboard.
func (o Op) Label() string {
	switch o {
	case DropNulls:
		return "Drop Missing Values"
	case Impute:
		return "Impute Missing Values"
	case DropDuplicates:
		return "Drop Duplicates"
	default:
		return o.String()
	}
}

// ErrUnknownOp is wrapped by ParseOp and Apply for unrecognised actions.
var ErrUnknownOp = errors.New("unknown cleaning operation")

// ParseOp accepts the names printed by Op.String, case-insensitively.
func ParseOp(s string) (Op, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.ReplaceAll(norm, "_", "-")
	for op, name := range opNames {
		if name == norm {
			return op, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownOp, s)
}

// Error reports a failed cleaning action. No table is produced.
type Error struct {
	Op  Op
	Err error
}

func (e *Error) Error() string { return fmt.Sprintf("cleaning %s: %v", e.Op, e.Err) }

func (e *Error) Unwrap() error { return e.Err }

// Outcome describes the result of a successful action.
type Outcome struct {
	Op          Op           `json:"-"`
	Table       *table.Table `json:"-"`
	RowsBefore  int          `json:"rows_before"`
	RowsAfter   int          `json:"rows_after"`
	NullsBefore int          `json:"nulls_before"`
	NullsAfter  int          `json:"nulls_after"`
	// Unresolved names columns impute could not fill because every cell is null.
	Unresolved []string `json:"unresolved,omitempty"`
	Message    string   `json:"message"`
}

// Apply runs op on t. t is never modified.
func Apply(t *table.Table, op Op) (*Outcome, error) {
	if t == nil {
		return nil, &Error{Op: op, Err: errors.New("no table loaded")}
	}
	if err := t.Validate(); err != nil {
		return nil, &Error{Op: op, Err: err}
	}
	out := &Outcome{Op: op, RowsBefore: t.NumRows(), NullsBefore: t.NullCount()}
	switch op {
	case DropNulls:
		out.Table = dropNulls(t)
		out.Message = "Missing values removed!"
	case Impute:
		out.Table, out.Unresolved = impute(t)
		out.Message = "Missing values handled successfully!"
	case DropDuplicates:
		out.Table = dropDuplicates(t)
		out.Message = "Duplicate rows removed!"
	default:
		return nil, &Error{Op: op, Err: ErrUnknownOp}
	}
	out.RowsAfter = out.Table.NumRows()
	out.NullsAfter = out.Table.NullCount()
	return out, nil
}

// dropNulls keeps the rows that have no null cell, in order.
func dropNulls(t *table.Table) *table.Table {
	keep := make([]int, 0, t.NumRows())
	for i := 0; i < t.NumRows(); i++ {
		if !t.RowHasNull(i) {
			keep = append(keep, i)
		}
	}
	return t.Take(keep)
}

// dropDuplicates keeps the first occurrence of every distinct row.
func dropDuplicates(t *table.Table) *table.Table {
	seen := make(map[string]struct{}, t.NumRows())
	keep := make([]int, 0, t.NumRows())
	for i := 0; i < t.NumRows(); i++ {
		k := t.RowKey(i)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		keep = append(keep, i)
	}
	return t.Take(keep)
}
