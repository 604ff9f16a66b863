// Package chart renders the Analyze page charts as PNG images.
//
// Line, scatter, bar and pie charts are drawn with go-chart; the correlation
// heatmap is painted directly onto an RGBA canvas. Problems with the request
// come back as *Error, while soft problems such as category truncation are
// returned as warnings on the Output.
package chart

import (
	"errors"
	"fmt"
	"strings"

	"github.com/KaramelBytes/tidyloom/internal/table"
)

// Kind selects a chart type.
type Kind string

const (
	Line    Kind = "line"
	Scatter Kind = "scatter"
	Bar     Kind = "bar"
	Pie     Kind = "pie"
	Heatmap Kind = "heatmap"
)

// Kinds lists every chart kind in button order.
func Kinds() []Kind { return []Kind{Line, Scatter, Bar, Pie, Heatmap} }

// Label is the button caption used by the dashboard.
func (k Kind) Label() string {
	switch k {
	case Line:
		return "Line Graph"
	case Scatter:
		return "Scatter Graph"
	case Bar:
		return "Bar Graph"
	case Pie:
		return "Pie Chart"
	case Heatmap:
		return "Correlation Heatmap"
	default:
		return string(k)
	}
}

// NeedsAxes reports whether the kind reads the x and y selections.
func (k Kind) NeedsAxes() bool { return k != Heatmap }

var (
	// ErrUnknownKind is wrapped for chart kinds outside Kinds().
	ErrUnknownKind = errors.New("unknown chart kind")
	// ErrUnknownColumn is wrapped when x or y does not name a column.
	ErrUnknownColumn = errors.New("unknown column")
	// ErrNotNumeric is wrapped when y has no usable numbers.
	ErrNotNumeric = errors.New("column must contain numeric data")
	// ErrBadTotal is wrapped when pie values cannot form a whole.
	ErrBadTotal = errors.New("pie values must be non-negative with a positive total")
	// ErrOutOfRange is wrapped when summed or spanned values overflow float64.
	ErrOutOfRange = errors.New("values are too large to plot")
)

// ParseKind maps a kind name to a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds() {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Request names the columns to plot. Heatmap ignores X and Y.
type Request struct {
	X    string
	Y    string
	Kind Kind
}

// Options sizes the image and sets the category caps.
type Options struct {
	Width              int
	Height             int
	BarMaxCategories   int
	PieMaxCategories   int
	HeatmapWarnColumns int
}

// DefaultOptions returns the dashboard defaults.
func DefaultOptions() Options {
	return Options{
		Width:              800,
		Height:             500,
		BarMaxCategories:   20,
		PieMaxCategories:   10,
		HeatmapWarnColumns: 15,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Width <= 0 {
		o.Width = d.Width
	}
	if o.Height <= 0 {
		o.Height = d.Height
	}
	if o.BarMaxCategories <= 0 {
		o.BarMaxCategories = d.BarMaxCategories
	}
	if o.PieMaxCategories <= 0 {
		o.PieMaxCategories = d.PieMaxCategories
	}
	if o.HeatmapWarnColumns <= 0 {
		o.HeatmapWarnColumns = d.HeatmapWarnColumns
	}
	return o
}

// Output is one rendered chart. PNG is nil when nothing was drawn, in which
// case Notice or Warnings say why.
type Output struct {
	Kind  Kind
	Title string
	PNG   []byte
	// Labels are the bar, slice or heatmap axis captions that were drawn.
	Labels   []string
	Warnings []string
	Notice   string
}

// Rendered reports whether an image was produced.
func (o *Output) Rendered() bool { return o != nil && len(o.PNG) > 0 }

// Error is a failed chart request. Only that chart is affected.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string { return fmt.Sprintf("%s chart: %v", e.Kind, e.Err) }

func (e *Error) Unwrap() error { return e.Err }

type renderer func(t *table.Table, req Request, opt Options) (*Output, error)

var renderers = map[Kind]renderer{
	Line:    renderXY,
	Scatter: renderXY,
	Bar:     renderBar,
	Pie:     renderPie,
	Heatmap: renderHeatmap,
}

// Render draws req from t. A panic inside a drawing backend is reported as
// *Error like any other failure.
func Render(t *table.Table, req Request, opt Options) (out *Output, err error) {
	render, ok := renderers[req.Kind]
	if !ok {
		return nil, &Error{Kind: req.Kind, Err: fmt.Errorf("%w: %q", ErrUnknownKind, string(req.Kind))}
	}
	if t == nil {
		return nil, &Error{Kind: req.Kind, Err: errors.New("no table loaded")}
	}
	if req.Kind.NeedsAxes() {
		for _, name := range []string{req.X, req.Y} {
			if _, ok := t.Column(name); !ok {
				return nil, &Error{Kind: req.Kind, Err: fmt.Errorf("%w: %q", ErrUnknownColumn, name)}
			}
		}
	}
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = &Error{Kind: req.Kind, Err: fmt.Errorf("renderer panic: %v", r)}
		}
	}()

	out, err = render(t, req, opt.withDefaults())
	if err != nil {
		var ce *Error
		if errors.As(err, &ce) {
			return nil, err
		}
		return nil, &Error{Kind: req.Kind, Err: err}
	}
	out.Kind = req.Kind
	return out, nil
}
