package analysis

import (
	"encoding/json"
	"math"
	"sort"

	"github.com/KaramelBytes/tidyloom/internal/table"
)

// CorrMatrix holds a symmetric Pearson correlation matrix across numeric columns.
type CorrMatrix struct {
	Columns []string
	Values  [][]float64 // row-major, Values[i][j]
}

// PairCorr is a simple correlation pair summary.
type PairCorr struct {
	A string  `json:"a"`
	B string  `json:"b"`
	R float64 `json:"r"`
}

// Correlation computes pairwise-complete Pearson correlations between the
// numeric columns of t. A pair with fewer than two complete rows, or with a
// constant side, is NaN. The diagonal is 1 unless the column is constant.
func Correlation(t *table.Table) *CorrMatrix {
	var cols []*table.Column
	for _, c := range t.Columns() {
		if c.Kind.Numeric() {
			cols = append(cols, c)
		}
	}
	m := &CorrMatrix{Columns: make([]string, len(cols)), Values: make([][]float64, len(cols))}
	for i, c := range cols {
		m.Columns[i] = c.Name
		m.Values[i] = make([]float64, len(cols))
	}
	for a := range cols {
		for b := a; b < len(cols); b++ {
			r := pearson(cols[a], cols[b])
			if a == b && !math.IsNaN(r) {
				r = 1
			}
			m.Values[a][b] = r
			m.Values[b][a] = r
		}
	}
	return m
}

// pearson correlates the rows where both x and y are non-null, in two passes
// so constant inputs are detected exactly instead of through rounding.
func pearson(x, y *table.Column) float64 {
	var xs, ys []float64
	for i := 0; i < x.Len(); i++ {
		if x.IsNull(i) || y.IsNull(i) {
			continue
		}
		xv, yv := x.Float(i), y.Float(i)
		if math.IsInf(xv, 0) || math.IsInf(yv, 0) {
			continue
		}
		xs = append(xs, xv)
		ys = append(ys, yv)
	}
	if len(xs) < 2 || constant(xs) || constant(ys) {
		return math.NaN()
	}
	mx, my := Mean(xs), Mean(ys)
	var sxy, sxx, syy float64
	for i := range xs {
		dx, dy := xs[i]-mx, ys[i]-my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	r := sxy / math.Sqrt(sxx*syy)
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return r
}

func constant(vals []float64) bool {
	for _, v := range vals[1:] {
		if v != vals[0] {
			return false
		}
	}
	return true
}

// TopPairs lists up to n off-diagonal pairs ordered by |r|, skipping NaN.
// n <= 0 returns every pair.
func (m *CorrMatrix) TopPairs(n int) []PairCorr {
	var pairs []PairCorr
	for i := range m.Columns {
		for j := i + 1; j < len(m.Columns); j++ {
			r := m.Values[i][j]
			if math.IsNaN(r) {
				continue
			}
			pairs = append(pairs, PairCorr{A: m.Columns[i], B: m.Columns[j], R: r})
		}
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		ai, aj := math.Abs(pairs[i].R), math.Abs(pairs[j].R)
		if ai == aj {
			return pairs[i].A+pairs[i].B < pairs[j].A+pairs[j].B
		}
		return ai > aj
	})
	if n > 0 && len(pairs) > n {
		pairs = pairs[:n]
	}
	return pairs
}

// MarshalJSON writes NaN coefficients as null.
func (m *CorrMatrix) MarshalJSON() ([]byte, error) {
	vals := make([][]*float64, len(m.Values))
	for i, row := range m.Values {
		vals[i] = make([]*float64, len(row))
		for j, v := range row {
			vals[i][j] = finite(v)
		}
	}
	return json.Marshal(struct {
		Columns []string     `json:"columns"`
		Values  [][]*float64 `json:"values"`
	}{m.Columns, vals})
}
