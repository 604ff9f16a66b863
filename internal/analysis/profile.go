// Package analysis computes summary statistics over loaded tables.
package analysis

import (
	"encoding/json"
	"math"
	"sort"

	"github.com/KaramelBytes/tidyloom/internal/table"
)

// Profile is the overview of a table shown next to every preview.
type Profile struct {
	Rows          int                  `json:"rows"`
	Cols          int                  `json:"cols"`
	NullCells     int                  `json:"null_cells"`
	DuplicateRows int                  `json:"duplicate_rows"`
	Columns       []ColumnInfo         `json:"columns"`
	Numeric       []NumericSummary     `json:"numeric"`
	Categorical   []CategoricalSummary `json:"categorical"`
}

// ColumnInfo is one line of the info block.
type ColumnInfo struct {
	Name    string `json:"name"`
	Dtype   string `json:"dtype"`
	NonNull int    `json:"non_null"`
	Null    int    `json:"null"`
}

// NumericSummary holds describe() statistics for an int or float column.
// Statistics that are undefined for the column are NaN.
type NumericSummary struct {
	Name  string
	Count int
	Mean  float64
	Std   float64
	Min   float64
	Q25   float64
	Q50   float64
	Q75   float64
	Max   float64
}

// MarshalJSON writes NaN statistics as null.
func (s NumericSummary) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name  string   `json:"name"`
		Count int      `json:"count"`
		Mean  *float64 `json:"mean"`
		Std   *float64 `json:"std"`
		Min   *float64 `json:"min"`
		Q25   *float64 `json:"25%"`
		Q50   *float64 `json:"50%"`
		Q75   *float64 `json:"75%"`
		Max   *float64 `json:"max"`
	}{s.Name, s.Count, finite(s.Mean), finite(s.Std), finite(s.Min), finite(s.Q25), finite(s.Q50), finite(s.Q75), finite(s.Max)})
}

// CategoricalSummary holds describe() statistics for a text or bool column.
type CategoricalSummary struct {
	Name   string `json:"name"`
	Count  int    `json:"count"`
	Unique int    `json:"unique"`
	Top    string `json:"top"`
	Freq   int    `json:"freq"`
}

// HasCategorical reports whether any non-numeric column was summarized.
func (p *Profile) HasCategorical() bool { return len(p.Categorical) > 0 }

// Describe profiles t. It never modifies t and never fails; an empty table
// yields zero counts and summaries with Count == 0.
func Describe(t *table.Table) *Profile {
	p := &Profile{
		Rows:          t.NumRows(),
		Cols:          t.NumCols(),
		NullCells:     t.NullCount(),
		DuplicateRows: t.DuplicateCount(),
	}
	p.Columns = make([]ColumnInfo, 0, t.NumCols())
	for _, c := range t.Columns() {
		nulls := c.NullCount()
		p.Columns = append(p.Columns, ColumnInfo{
			Name:    c.Name,
			Dtype:   c.Kind.Dtype(),
			NonNull: c.Len() - nulls,
			Null:    nulls,
		})
		if c.Kind.Numeric() {
			p.Numeric = append(p.Numeric, describeNumeric(c))
		} else {
			p.Categorical = append(p.Categorical, describeCategorical(c))
		}
	}
	return p
}

func describeNumeric(c *table.Column) NumericSummary {
	vals := numericValues(c)
	s := NumericSummary{Name: c.Name, Count: len(vals)}
	if len(vals) == 0 {
		nan := math.NaN()
		s.Mean, s.Std, s.Min, s.Q25, s.Q50, s.Q75, s.Max = nan, nan, nan, nan, nan, nan, nan
		return s
	}
	var w welford
	for _, v := range vals {
		w.add(v)
	}
	s.Mean = w.mean
	s.Std = w.std()
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	s.Min = sorted[0]
	s.Max = sorted[len(sorted)-1]
	s.Q25 = quantile(sorted, 0.25)
	s.Q50 = quantile(sorted, 0.5)
	s.Q75 = quantile(sorted, 0.75)
	return s
}

func describeCategorical(c *table.Column) CategoricalSummary {
	s := CategoricalSummary{Name: c.Name}
	counts := map[string]int{}
	var order []string
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			continue
		}
		s.Count++
		v := c.String(i)
		if _, ok := counts[v]; !ok {
			order = append(order, v)
		}
		counts[v]++
	}
	s.Unique = len(counts)
	s.Top, s.Freq = mode(order, counts)
	return s
}

// numericValues returns the non-null values of an int or float column.
func numericValues(c *table.Column) []float64 {
	out := make([]float64, 0, c.Len())
	for i := 0; i < c.Len(); i++ {
		if !c.IsNull(i) {
			out = append(out, c.Float(i))
		}
	}
	return out
}

func finite(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
