package chart

import (
	"bytes"
	"fmt"
	"math"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/KaramelBytes/tidyloom/internal/table"
)

const noNumericData = "no valid numeric data"

// pointStyle renders points only, without connecting lines.
func pointStyle(col drawing.Color) gochart.Style {
	return gochart.Style{
		StrokeWidth: gochart.Disabled,
		DotWidth:    4,
		DotColor:    col,
	}
}

func lineStyle(col drawing.Color) gochart.Style {
	return gochart.Style{
		StrokeWidth: 2,
		StrokeColor: col,
	}
}

// renderXY draws line and scatter charts of y against x in row order.
func renderXY(t *table.Table, req Request, opt Options) (*Output, error) {
	xc, _ := t.Column(req.X)
	yc, _ := t.Column(req.Y)
	var xs, ys []float64
	for i := 0; i < t.NumRows(); i++ {
		x, okx := numberAt(xc, i)
		y, oky := numberAt(yc, i)
		if !okx || !oky {
			continue
		}
		xs = append(xs, x)
		ys = append(ys, y)
	}

	title := fmt.Sprintf("Line Graph of %s Vs %s", req.X, req.Y)
	if req.Kind == Scatter {
		title = fmt.Sprintf("Scatter Graph of %s Vs %s", req.X, req.Y)
	}
	out := &Output{Title: title}
	if len(xs) == 0 {
		out.Notice = noNumericData
		return out, nil
	}

	style := lineStyle(gochart.ColorBlue)
	if req.Kind == Scatter {
		style = pointStyle(gochart.ColorBlue)
	}
	if len(xs) == 1 {
		// a lone point has no segment to stroke
		style = pointStyle(gochart.ColorBlue)
	}
	xlo, xhi := padRange(bounds(xs))
	ylo, yhi := padRange(bounds(ys))
	if math.IsInf(xhi-xlo, 0) || math.IsInf(yhi-ylo, 0) {
		return nil, &Error{Kind: req.Kind, Err: ErrOutOfRange}
	}
	ch := gochart.Chart{
		Title:      title,
		Width:      opt.Width,
		Height:     opt.Height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      gochart.XAxis{Name: req.X, Range: &gochart.ContinuousRange{Min: xlo, Max: xhi}},
		YAxis:      gochart.YAxis{Name: req.Y, Range: &gochart.ContinuousRange{Min: ylo, Max: yhi}},
		Series: []gochart.Series{
			gochart.ContinuousSeries{Name: req.Y, XValues: xs, YValues: ys, Style: style},
		},
	}
	var buf bytes.Buffer
	if err := ch.Render(gochart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	out.PNG = buf.Bytes()
	return out, nil
}

func bounds(vals []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range vals {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}
