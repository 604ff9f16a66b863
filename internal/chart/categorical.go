package chart

import (
	"bytes"
	"fmt"
	"math"

	gochart "github.com/wcharczuk/go-chart/v2"

	"github.com/KaramelBytes/tidyloom/internal/table"
)

func truncationWarning(kept, total int, column string) string {
	return fmt.Sprintf("%q has %d categories; showing the %d most frequent", column, total, kept)
}

// renderBar draws one bar per x category holding the sum of its y values.
func renderBar(t *table.Table, req Request, opt Options) (*Output, error) {
	xc, _ := t.Column(req.X)
	yc, _ := t.Column(req.Y)
	numeric := 0
	for i := 0; i < yc.Len(); i++ {
		if _, ok := numberAt(yc, i); ok {
			numeric++
		}
	}
	if numeric == 0 {
		return nil, &Error{Kind: Bar, Err: fmt.Errorf("%w: %q", ErrNotNumeric, req.Y)}
	}

	out := &Output{Title: fmt.Sprintf("Bar Graph of %s vs %s", req.X, req.Y)}
	cats := groupBy(xc, yc)
	if len(cats) == 0 {
		out.Notice = fmt.Sprintf("%q has no values", req.X)
		return out, nil
	}
	if len(cats) > opt.BarMaxCategories {
		out.Warnings = append(out.Warnings, truncationWarning(opt.BarMaxCategories, len(cats), req.X))
		cats = mostFrequent(cats, opt.BarMaxCategories)
	}

	bars := make([]gochart.Value, len(cats))
	lo, hi := 0.0, 0.0
	for i, c := range cats {
		bars[i] = gochart.Value{Label: c.label, Value: c.sum}
		out.Labels = append(out.Labels, c.label)
		lo = math.Min(lo, c.sum)
		hi = math.Max(hi, c.sum)
	}
	lo, hi = padRange(lo, hi)
	if math.IsInf(hi-lo, 0) || math.IsNaN(hi-lo) {
		return nil, &Error{Kind: Bar, Err: fmt.Errorf("%w: %q", ErrOutOfRange, req.Y)}
	}
	slot := (opt.Width - 120) / len(bars)
	if slot < 3 {
		slot = 3
	}
	bc := gochart.BarChart{
		Title:        out.Title,
		Width:        opt.Width,
		Height:       opt.Height,
		Background:   gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		BarWidth:     slot * 2 / 3,
		BarSpacing:   slot / 3,
		UseBaseValue: true,
		BaseValue:    0,
		YAxis:        gochart.YAxis{Name: req.Y, Range: &gochart.ContinuousRange{Min: lo, Max: hi}},
		Bars:         bars,
	}
	var buf bytes.Buffer
	if err := bc.Render(gochart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	out.PNG = buf.Bytes()
	return out, nil
}

// renderPie draws one slice per x category sized by the sum of y. The y
// column must already be numeric.
func renderPie(t *table.Table, req Request, opt Options) (*Output, error) {
	xc, _ := t.Column(req.X)
	yc, _ := t.Column(req.Y)
	if !yc.Kind.Numeric() {
		return nil, &Error{Kind: Pie, Err: fmt.Errorf("%w: %q is %s", ErrNotNumeric, req.Y, yc.Kind.Dtype())}
	}

	out := &Output{Title: fmt.Sprintf("Pie Chart of %s", req.X)}
	cats := groupBy(xc, yc)
	if len(cats) == 0 {
		out.Notice = fmt.Sprintf("%q has no values", req.X)
		return out, nil
	}
	if len(cats) > opt.PieMaxCategories {
		out.Warnings = append(out.Warnings, truncationWarning(opt.PieMaxCategories, len(cats), req.X))
		cats = mostFrequent(cats, opt.PieMaxCategories)
	}

	total := 0.0
	for _, c := range cats {
		if c.sum < 0 {
			return nil, &Error{Kind: Pie, Err: fmt.Errorf("%w: %q sums to %g", ErrBadTotal, c.label, c.sum)}
		}
		total += c.sum
	}
	if math.IsInf(total, 0) {
		return nil, &Error{Kind: Pie, Err: fmt.Errorf("%w: %q", ErrOutOfRange, req.Y)}
	}
	if total <= 0 {
		return nil, &Error{Kind: Pie, Err: ErrBadTotal}
	}

	values := make([]gochart.Value, len(cats))
	for i, c := range cats {
		values[i] = gochart.Value{Label: SliceLabel(c.label, c.sum/total*100), Value: c.sum}
		out.Labels = append(out.Labels, values[i].Label)
	}
	pc := gochart.PieChart{
		Title:  out.Title,
		Width:  opt.Width,
		Height: opt.Height,
		Values: values,
	}
	var buf bytes.Buffer
	if err := pc.Render(gochart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	out.PNG = buf.Bytes()
	return out, nil
}

// SliceLabel formats a pie slice caption.
func SliceLabel(category string, percent float64) string {
	return fmt.Sprintf("%s (%.1f%%)", category, percent)
}
