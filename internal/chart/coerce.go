package chart

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/KaramelBytes/tidyloom/internal/table"
)

// numberAt coerces cell i of c to a finite float. Text is parsed, booleans
// count as 1 and 0, and anything else is missing.
func numberAt(c *table.Column, i int) (float64, bool) {
	if c.IsNull(i) {
		return 0, false
	}
	switch c.Kind {
	case table.KindInt, table.KindFloat:
		f := c.Float(i)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	case table.KindBool:
		if c.Bool(i) {
			return 1, true
		}
		return 0, true
	default:
		f, err := strconv.ParseFloat(strings.TrimSpace(c.Text(i)), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
}

// category is one distinct x value with its row count and running y sum.
type category struct {
	label string
	first int
	rows  int
	sum   float64
}

// groupBy collects the non-null categories of x in first-seen order and sums
// the coerced y values of each one.
func groupBy(x, y *table.Column) []*category {
	index := map[string]*category{}
	var order []*category
	for i := 0; i < x.Len(); i++ {
		if x.IsNull(i) {
			continue
		}
		label := x.String(i)
		cat, ok := index[label]
		if !ok {
			cat = &category{label: label, first: i}
			index[label] = cat
			order = append(order, cat)
		}
		cat.rows++
		if v, ok := numberAt(y, i); ok {
			cat.sum += v
		}
	}
	return order
}

// mostFrequent keeps the limit categories with the most rows, ties to the
// earlier one, and returns them back in first-seen order.
func mostFrequent(cats []*category, limit int) []*category {
	if len(cats) <= limit {
		return cats
	}
	ranked := append([]*category(nil), cats...)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].rows > ranked[j].rows })
	kept := ranked[:limit]
	sort.Slice(kept, func(i, j int) bool { return kept[i].first < kept[j].first })
	return kept
}

// padRange widens [lo, hi] so go-chart never sees a zero-width axis.
func padRange(lo, hi float64) (float64, float64) {
	if hi > lo {
		return lo, hi
	}
	pad := math.Abs(lo) * 0.05
	if pad == 0 {
		pad = 1
	}
	return lo - pad, hi + pad
}
