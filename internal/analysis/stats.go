package analysis

import "math"

// welford accumulates a running mean and sum of squared deviations.
type welford struct {
	n    int
	mean float64
	m2   float64
}

func (w *welford) add(x float64) {
	w.n++
	delta := x - w.mean
	w.mean += delta / float64(w.n)
	w.m2 += delta * (x - w.mean)
}

// std is the sample standard deviation; NaN below two observations.
func (w *welford) std() float64 {
	if w.n < 2 {
		return math.NaN()
	}
	return math.Sqrt(w.m2 / float64(w.n-1))
}

// quantile interpolates linearly between closest ranks of sorted.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

// mode returns the most frequent value; ties go to the value seen first.
// order lists the distinct values in first-seen order.
func mode(order []string, counts map[string]int) (string, int) {
	top, freq := "", 0
	for _, v := range order {
		if counts[v] > freq {
			top, freq = v, counts[v]
		}
	}
	return top, freq
}

// Mode is the exported form of mode for a column's formatted values, used
// by the cleaning engine to impute categorical columns.
func Mode(values []string) (string, int) {
	counts := map[string]int{}
	var order []string
	for _, v := range values {
		if _, ok := counts[v]; !ok {
			order = append(order, v)
		}
		counts[v]++
	}
	return mode(order, counts)
}

// Mean is the arithmetic mean of vals, NaN when empty.
func Mean(vals []float64) float64 {
	if len(vals) == 0 {
		return math.NaN()
	}
	var w welford
	for _, v := range vals {
		w.add(v)
	}
	return w.mean
}
