package chart

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/KaramelBytes/tidyloom/internal/analysis"
	"github.com/KaramelBytes/tidyloom/internal/table"
)

const (
	heatmapTitle = "Correlation Heatmap"
	minCell      = 44
	maxCell      = 96
	glyphWidth   = 7
)

var (
	colNegative = color.RGBA{R: 33, G: 102, B: 172, A: 255}
	colPositive = color.RGBA{R: 178, G: 24, B: 43, A: 255}
	colMissing  = color.RGBA{R: 190, G: 190, B: 190, A: 255}
	colInk      = color.RGBA{A: 255}
	colPaper    = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// renderHeatmap paints the Pearson matrix of every numeric column as an
// annotated grid. X and Y are ignored.
func renderHeatmap(t *table.Table, _ Request, opt Options) (*Output, error) {
	out := &Output{Title: heatmapTitle}
	m := analysis.Correlation(t)
	n := len(m.Columns)
	if n == 0 {
		out.Warnings = append(out.Warnings, "no numeric columns to correlate")
		return out, nil
	}
	if n > opt.HeatmapWarnColumns {
		out.Warnings = append(out.Warnings, fmt.Sprintf("%d numeric columns; the heatmap may be hard to read", n))
	}
	out.Labels = append(out.Labels, m.Columns...)

	face := basicfont.Face7x13
	lineH := face.Metrics().Height.Ceil()
	longest := 0
	for _, name := range m.Columns {
		longest = max(longest, len([]rune(name)))
	}
	left := min(longest, 24)*glyphWidth + 16
	cell := min(max((opt.Width-left-16)/n, minCell), maxCell)
	top := lineH*2 + 8
	bottom := lineH + 12
	width := left + n*cell + 16
	height := top + n*cell + bottom

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(colPaper), image.Point{}, draw.Src)
	text := func(s string, x, y int, col color.Color) {
		d := &font.Drawer{Dst: img, Src: image.NewUniform(col), Face: face, Dot: fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)}}
		d.DrawString(s)
	}
	centered := func(s string, cx, y int, col color.Color) {
		text(s, cx-len([]rune(s))*glyphWidth/2, y, col)
	}

	centered(heatmapTitle, width/2, lineH+2, colInk)
	for i, name := range m.Columns {
		y0 := top + i*cell
		text(fit(name, (left-16)/glyphWidth), 8, y0+cell/2+lineH/3, colInk)
		centered(fit(name, cell/glyphWidth), left+i*cell+cell/2, top+n*cell+lineH+4, colInk)
		for j := range m.Columns {
			r := m.Values[i][j]
			rect := image.Rect(left+j*cell, y0, left+(j+1)*cell-1, y0+cell-1)
			draw.Draw(img, rect, image.NewUniform(heatColor(r)), image.Point{}, draw.Src)
			label, ink := "nan", color.Color(colInk)
			if !math.IsNaN(r) {
				label = fmt.Sprintf("%.2f", r)
				if math.Abs(r) > 0.6 {
					ink = colPaper
				}
			}
			centered(label, rect.Min.X+cell/2, rect.Min.Y+cell/2+lineH/3, ink)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	out.PNG = buf.Bytes()
	return out, nil
}

// heatColor maps r in [-1, 1] onto a blue-white-red scale. NaN is grey.
func heatColor(r float64) color.RGBA {
	if math.IsNaN(r) {
		return colMissing
	}
	end := colPositive
	if r < 0 {
		end = colNegative
		r = -r
	}
	mix := func(a, b uint8) uint8 { return uint8(float64(a) + (float64(b)-float64(a))*r) }
	return color.RGBA{R: mix(colPaper.R, end.R), G: mix(colPaper.G, end.G), B: mix(colPaper.B, end.B), A: 255}
}

// fit shortens s to at most n runes, marking the cut with "~".
func fit(s string, n int) string {
	rs := []rune(s)
	if len(rs) <= n {
		return s
	}
	if n < 2 {
		return string(rs[:max(n, 0)])
	}
	return string(rs[:n-1]) + "~"
}
