package table

import (
	"fmt"
	"math"
	"strconv"
)

// Kind is the element type shared by every cell of a column.
type Kind int

const (
	KindInt Kind = iota
	KindFloat
	KindText
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindText:
		return "text"
	case KindBool:
		return "bool"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Dtype returns the dataframe-style dtype name shown to users.
func (k Kind) Dtype() string {
	switch k {
	case KindInt:
		return "int64"
	case KindFloat:
		return "float64"
	case KindBool:
		return "bool"
	default:
		return "object"
	}
}

// Numeric reports whether the kind takes part in numeric statistics.
func (k Kind) Numeric() bool { return k == KindInt || k == KindFloat }

// Column is a named, typed and nullable sequence of cells.
// Only the slice matching Kind is populated.
type Column struct {
	Name string
	Kind Kind

	ints   []int64
	floats []float64
	texts  []string
	bools  []bool
	valid  []bool
}

// NewColumn allocates a column of n null cells.
func NewColumn(name string, kind Kind, n int) *Column {
	c := &Column{Name: name, Kind: kind, valid: make([]bool, n)}
	switch kind {
	case KindInt:
		c.ints = make([]int64, n)
	case KindFloat:
		c.floats = make([]float64, n)
	case KindBool:
		c.bools = make([]bool, n)
	default:
		c.texts = make([]string, n)
	}
	return c
}

// Len returns the number of cells.
func (c *Column) Len() int { return len(c.valid) }

func (c *Column) IsNull(i int) bool { return !c.valid[i] }

// NullCount returns the number of null cells.
func (c *Column) NullCount() int {
	n := 0
	for _, ok := range c.valid {
		if !ok {
			n++
		}
	}
	return n
}

func (c *Column) SetNull(i int) {
	c.valid[i] = false
	switch c.Kind {
	case KindInt:
		c.ints[i] = 0
	case KindFloat:
		c.floats[i] = 0
	case KindBool:
		c.bools[i] = false
	default:
		c.texts[i] = ""
	}
}

func (c *Column) SetInt(i int, v int64) {
	c.ints[i] = v
	c.valid[i] = true
}

// SetFloat stores v; NaN is stored as null.
func (c *Column) SetFloat(i int, v float64) {
	if math.IsNaN(v) {
		c.SetNull(i)
		return
	}
	c.floats[i] = v
	c.valid[i] = true
}

func (c *Column) SetText(i int, v string) {
	c.texts[i] = v
	c.valid[i] = true
}

func (c *Column) SetBool(i int, v bool) {
	c.bools[i] = v
	c.valid[i] = true
}

func (c *Column) Int(i int) int64 { return c.ints[i] }

func (c *Column) Text(i int) string { return c.texts[i] }

func (c *Column) Bool(i int) bool { return c.bools[i] }

// Float returns the numeric value of cell i for int and float columns.
func (c *Column) Float(i int) float64 {
	if c.Kind == KindInt {
		return float64(c.ints[i])
	}
	return c.floats[i]
}

// Value returns the cell as an int64, float64, string or bool, or nil for null.
func (c *Column) Value(i int) any {
	if !c.valid[i] {
		return nil
	}
	switch c.Kind {
	case KindInt:
		return c.ints[i]
	case KindFloat:
		return c.floats[i]
	case KindBool:
		return c.bools[i]
	default:
		return c.texts[i]
	}
}

// String formats cell i for display and export. Null cells format as "".
func (c *Column) String(i int) string {
	if !c.valid[i] {
		return ""
	}
	switch c.Kind {
	case KindInt:
		return strconv.FormatInt(c.ints[i], 10)
	case KindFloat:
		return FormatFloat(c.floats[i])
	case KindBool:
		return FormatBool(c.bools[i])
	default:
		return c.texts[i]
	}
}

// FormatFloat renders f in shortest round-trip form, keeping a ".0" suffix
// on integral values so floats stay recognisable after export.
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	if f == 0 {
		f = 0 // drop the sign of -0
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e16 {
		return strconv.FormatFloat(f, 'f', 1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// FormatBool renders booleans the way the dashboards print them.
func FormatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// Clone returns a deep copy.
func (c *Column) Clone() *Column {
	out := &Column{Name: c.Name, Kind: c.Kind, valid: append([]bool(nil), c.valid...)}
	switch c.Kind {
	case KindInt:
		out.ints = append([]int64(nil), c.ints...)
	case KindFloat:
		out.floats = append([]float64(nil), c.floats...)
	case KindBool:
		out.bools = append([]bool(nil), c.bools...)
	default:
		out.texts = append([]string(nil), c.texts...)
	}
	return out
}

// Take returns a new column holding the given rows in the given order.
func (c *Column) Take(rows []int) *Column {
	out := NewColumn(c.Name, c.Kind, len(rows))
	for j, i := range rows {
		out.copyCell(j, c, i)
	}
	return out
}

func (c *Column) copyCell(dst int, src *Column, i int) {
	if !src.valid[i] {
		return
	}
	switch c.Kind {
	case KindInt:
		c.SetInt(dst, src.ints[i])
	case KindFloat:
		c.SetFloat(dst, src.floats[i])
	case KindBool:
		c.SetBool(dst, src.bools[i])
	default:
		c.SetText(dst, src.texts[i])
	}
}

// key encodes cell i for equality checks; nulls are equal to each other.
// Values are length-prefixed so no cell content can mimic a boundary.
func (c *Column) key(i int) string {
	if !c.valid[i] {
		return "-"
	}
	s := c.String(i)
	return strconv.Itoa(len(s)) + ":" + s
}

// ColumnOf builds a column from loose values; nil becomes null. Values must
// match kind: integers for KindInt, integers or floats for KindFloat,
// strings for KindText and bools for KindBool.
func ColumnOf(name string, kind Kind, vals ...any) (*Column, error) {
	c := NewColumn(name, kind, len(vals))
	for i, v := range vals {
		if v == nil {
			continue
		}
		switch x := v.(type) {
		case int:
			if kind == KindFloat {
				c.SetFloat(i, float64(x))
				continue
			}
			if kind != KindInt {
				return nil, fmt.Errorf("column %q row %d: int value in %s column", name, i, kind)
			}
			c.SetInt(i, int64(x))
		case int64:
			if kind == KindFloat {
				c.SetFloat(i, float64(x))
				continue
			}
			if kind != KindInt {
				return nil, fmt.Errorf("column %q row %d: int value in %s column", name, i, kind)
			}
			c.SetInt(i, x)
		case float64:
			if kind != KindFloat {
				return nil, fmt.Errorf("column %q row %d: float value in %s column", name, i, kind)
			}
			c.SetFloat(i, x)
		case string:
			if kind != KindText {
				return nil, fmt.Errorf("column %q row %d: text value in %s column", name, i, kind)
			}
			c.SetText(i, x)
		case bool:
			if kind != KindBool {
				return nil, fmt.Errorf("column %q row %d: bool value in %s column", name, i, kind)
			}
			c.SetBool(i, x)
		default:
			return nil, fmt.Errorf("column %q row %d: unsupported value %T", name, i, v)
		}
	}
	return c, nil
}

// MustColumnOf is ColumnOf for literals known to be valid.
func MustColumnOf(name string, kind Kind, vals ...any) *Column {
	c, err := ColumnOf(name, kind, vals...)
	if err != nil {
		panic(err)
	}
	return c
}
