package chart

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/KaramelBytes/tidyloom/internal/loader"
	"github.com/KaramelBytes/tidyloom/internal/table"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func render(t *testing.T, tb *table.Table, x, y string, kind Kind) *Output {
	t.Helper()
	out, err := Render(tb, Request{X: x, Y: y, Kind: kind}, DefaultOptions())
	if err != nil {
		t.Fatalf("%s: %v", kind, err)
	}
	return out
}

func assertPNG(t *testing.T, out *Output) {
	t.Helper()
	if !out.Rendered() || !bytes.HasPrefix(out.PNG, pngMagic) {
		t.Fatalf("%s: expected a PNG image (notice=%q warnings=%v)", out.Kind, out.Notice, out.Warnings)
	}
}

func TestLineWithTextXReportsNoData(t *testing.T) {
	tb, err := loader.Load("s.csv", []byte("name,score\na,90\nb,85.5\nc,70\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	out := render(t, tb, "name", "score", Line)
	if out.Rendered() {
		t.Fatalf("expected no image")
	}
	if out.Notice != "no valid numeric data" {
		t.Fatalf("notice = %q", out.Notice)
	}
}

func TestLineAndScatterRender(t *testing.T) {
	tb := table.MustNew(
		table.MustColumnOf("x", table.KindInt, 1, 2, 3, 4),
		table.MustColumnOf("y", table.KindText, "2.5", "oops", "7", "1e1"),
	)
	line := render(t, tb, "x", "y", Line)
	assertPNG(t, line)
	if line.Title != "Line Graph of x Vs y" {
		t.Fatalf("title = %q", line.Title)
	}
	scatter := render(t, tb, "x", "y", Scatter)
	assertPNG(t, scatter)
	if scatter.Title != "Scatter Graph of x Vs y" {
		t.Fatalf("title = %q", scatter.Title)
	}
}

func TestLineSinglePointRenders(t *testing.T) {
	tb := table.MustNew(
		table.MustColumnOf("x", table.KindFloat, 5.0),
		table.MustColumnOf("y", table.KindFloat, 5.0),
	)
	assertPNG(t, render(t, tb, "x", "y", Line))
}

func TestBarRejectsNonNumericY(t *testing.T) {
	tb := table.MustNew(
		table.MustColumnOf("x", table.KindText, "a", "b"),
		table.MustColumnOf("y", table.KindText, "left", "right"),
	)
	out, err := Render(tb, Request{X: "x", Y: "y", Kind: Bar}, DefaultOptions())
	var ce *Error
	if !errors.As(err, &ce) || !errors.Is(err, ErrNotNumeric) {
		t.Fatalf("want ErrNotNumeric chart error, got %v", err)
	}
	if out != nil {
		t.Fatalf("expected no output")
	}
}

func TestBarOrdersByFirstOccurrence(t *testing.T) {
	tb := table.MustNew(
		table.MustColumnOf("x", table.KindText, "b", "a", "b", nil, "c"),
		table.MustColumnOf("y", table.KindFloat, 1.0, 2.0, 3.0, 4.0, nil),
	)
	out := render(t, tb, "x", "y", Bar)
	assertPNG(t, out)
	if fmt.Sprint(out.Labels) != "[b a c]" {
		t.Fatalf("labels = %v", out.Labels)
	}
	if len(out.Warnings) != 0 {
		t.Fatalf("unexpected warnings %v", out.Warnings)
	}
}

func TestBarCapsCategories(t *testing.T) {
	var xs, ys []any
	for i := 0; i < 25; i++ {
		label := fmt.Sprintf("c%02d", i)
		xs = append(xs, label)
		ys = append(ys, 1)
		if i >= 5 {
			// c05..c24 appear twice, so c00..c04 are the least frequent.
			xs = append(xs, label)
			ys = append(ys, 1)
		}
	}
	tb := table.MustNew(
		table.MustColumnOf("x", table.KindText, xs...),
		table.MustColumnOf("y", table.KindInt, ys...),
	)
	out := render(t, tb, "x", "y", Bar)
	assertPNG(t, out)
	if len(out.Labels) != 20 || out.Labels[0] != "c05" || out.Labels[19] != "c24" {
		t.Fatalf("labels = %v", out.Labels)
	}
	if len(out.Warnings) != 1 {
		t.Fatalf("warnings = %v", out.Warnings)
	}
}

func TestPieCapsToTenAndWarns(t *testing.T) {
	var xs, ys []any
	for i := 0; i < 15; i++ {
		xs = append(xs, fmt.Sprintf("k%02d", i))
		ys = append(ys, i+1)
	}
	tb := table.MustNew(
		table.MustColumnOf("x", table.KindText, xs...),
		table.MustColumnOf("y", table.KindInt, ys...),
	)
	out := render(t, tb, "x", "y", Pie)
	assertPNG(t, out)
	if len(out.Labels) != 10 {
		t.Fatalf("slices = %d, want 10", len(out.Labels))
	}
	if len(out.Warnings) != 1 {
		t.Fatalf("warnings = %v", out.Warnings)
	}
	if out.Title != "Pie Chart of x" {
		t.Fatalf("title = %q", out.Title)
	}
}

func TestPieLabelsAndSums(t *testing.T) {
	tb := table.MustNew(
		table.MustColumnOf("x", table.KindText, "a", "b", "a"),
		table.MustColumnOf("y", table.KindFloat, 1.0, 2.0, 1.0),
	)
	out := render(t, tb, "x", "y", Pie)
	if fmt.Sprint(out.Labels) != "[a (50.0%) b (50.0%)]" {
		t.Fatalf("labels = %v", out.Labels)
	}
}

func TestPieErrors(t *testing.T) {
	cases := map[string]struct {
		y    *table.Column
		want error
	}{
		"text y":     {table.MustColumnOf("y", table.KindText, "1", "2"), ErrNotNumeric},
		"negative":   {table.MustColumnOf("y", table.KindInt, 3, -5), ErrBadTotal},
		"zero total": {table.MustColumnOf("y", table.KindFloat, 0.0, 0.0), ErrBadTotal},
	}
	for name, tc := range cases {
		tb := table.MustNew(table.MustColumnOf("x", table.KindText, "a", "b"), tc.y)
		_, err := Render(tb, Request{X: "x", Y: "y", Kind: Pie}, DefaultOptions())
		var ce *Error
		if !errors.As(err, &ce) || !errors.Is(err, tc.want) {
			t.Fatalf("%s: want %v, got %v", name, tc.want, err)
		}
	}
}

func TestHeatmap(t *testing.T) {
	textOnly := table.MustNew(table.MustColumnOf("s", table.KindText, "a", "b"))
	out := render(t, textOnly, "", "", Heatmap)
	if out.Rendered() || len(out.Warnings) != 1 {
		t.Fatalf("text-only heatmap = rendered %v, warnings %v", out.Rendered(), out.Warnings)
	}

	var cols []*table.Column
	for j := 0; j < 16; j++ {
		cols = append(cols, table.MustColumnOf(fmt.Sprintf("m%d", j), table.KindFloat, float64(j), float64(j*j), 1.0, nil))
	}
	wide := render(t, table.MustNew(cols...), "", "", Heatmap)
	assertPNG(t, wide)
	if len(wide.Warnings) != 1 || len(wide.Labels) != 16 {
		t.Fatalf("wide heatmap warnings = %v labels = %d", wide.Warnings, len(wide.Labels))
	}
}

func TestInfiniteValuesAreSkipped(t *testing.T) {
	tb, err := loader.Load("inf.csv", []byte("c,x,y\na,1,2\nb,inf,3\nb,2,inf\nc,3,-inf\nc,4,1\na,5,5\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	for _, name := range []string{"x", "y"} {
		if c, _ := tb.Column(name); c.Kind != table.KindFloat {
			t.Fatalf("%s loaded as %s", name, c.Kind)
		}
	}
	for _, kind := range []Kind{Line, Scatter} {
		assertPNG(t, render(t, tb, "x", "y", kind))
	}
	bar := render(t, tb, "c", "y", Bar)
	assertPNG(t, bar)
	if fmt.Sprint(bar.Labels) != "[a b c]" {
		t.Fatalf("bar labels = %v", bar.Labels)
	}
	pie := render(t, tb, "c", "y", Pie)
	assertPNG(t, pie)
	if fmt.Sprint(pie.Labels) != "[a (63.6%) b (27.3%) c (9.1%)]" {
		t.Fatalf("pie labels = %v", pie.Labels)
	}
	assertPNG(t, render(t, tb, "", "", Heatmap))
}

func TestOverflowingSumsFail(t *testing.T) {
	tb := table.MustNew(
		table.MustColumnOf("x", table.KindText, "a", "a", "b"),
		table.MustColumnOf("y", table.KindFloat, 1.5e308, 1.5e308, 1.0),
	)
	for _, kind := range []Kind{Bar, Pie} {
		_, err := Render(tb, Request{X: "x", Y: "y", Kind: kind}, DefaultOptions())
		var ce *Error
		if !errors.As(err, &ce) || !errors.Is(err, ErrOutOfRange) {
			t.Fatalf("%s: want ErrOutOfRange, got %v", kind, err)
		}
	}
}

func TestRenderValidatesRequest(t *testing.T) {
	tb := table.MustNew(table.MustColumnOf("x", table.KindInt, 1))
	_, err := Render(tb, Request{X: "x", Y: "missing", Kind: Line}, DefaultOptions())
	if !errors.Is(err, ErrUnknownColumn) {
		t.Fatalf("want ErrUnknownColumn, got %v", err)
	}
	_, err = Render(tb, Request{X: "x", Y: "x", Kind: Kind("radar")}, DefaultOptions())
	if !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("want ErrUnknownKind, got %v", err)
	}
	if k, err := ParseKind(" Heatmap "); err != nil || k != Heatmap {
		t.Fatalf("ParseKind = %v %v", k, err)
	}
}

func TestFit(t *testing.T) {
	if got := fit("temperature", 5); got != "temp~" {
		t.Fatalf("fit = %q", got)
	}
	if got := fit("ok", 5); got != "ok" {
		t.Fatalf("fit = %q", got)
	}
}
