package cleaning

import (
	"github.com/KaramelBytes/tidyloom/internal/analysis"
	"github.com/KaramelBytes/tidyloom/internal/table"
)

// impute fills numeric columns with their mean and every other column with
// its mode. Integer columns holding nulls become float columns. Columns with
// no values at all stay null and are reported as unresolved.
func impute(t *table.Table) (*table.Table, []string) {
	out := t.Clone()
	var unresolved []string
	for _, c := range t.Columns() {
		nulls := c.NullCount()
		if nulls == 0 {
			continue
		}
		if nulls == c.Len() {
			unresolved = append(unresolved, c.Name)
			continue
		}
		var filled *table.Column
		if c.Kind.Numeric() {
			filled = fillMean(c)
		} else {
			filled = fillMode(c)
		}
		// Same name and length as the cloned column, so Replace cannot fail.
		_ = out.Replace(filled)
	}
	return out, unresolved
}

func fillMean(c *table.Column) *table.Column {
	vals := make([]float64, 0, c.Len())
	for i := 0; i < c.Len(); i++ {
		if !c.IsNull(i) {
			vals = append(vals, c.Float(i))
		}
	}
	mean := analysis.Mean(vals)
	out := table.NewColumn(c.Name, table.KindFloat, c.Len())
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			out.SetFloat(i, mean)
		} else {
			out.SetFloat(i, c.Float(i))
		}
	}
	return out
}

func fillMode(c *table.Column) *table.Column {
	vals := make([]string, 0, c.Len())
	firstAt := map[string]int{}
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			continue
		}
		v := c.String(i)
		if _, ok := firstAt[v]; !ok {
			firstAt[v] = i
		}
		vals = append(vals, v)
	}
	top, _ := analysis.Mode(vals)
	src := firstAt[top]
	out := c.Clone()
	for i := 0; i < c.Len(); i++ {
		if !c.IsNull(i) {
			continue
		}
		switch c.Kind {
		case table.KindBool:
			out.SetBool(i, c.Bool(src))
		default:
			out.SetText(i, c.Text(src))
		}
	}
	return out
}
