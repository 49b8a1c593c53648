package load_plot

import (
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// arrow draws a filled-head arrow between two points in data coordinates.
// Shrink trims that fraction of the length from both ends.
type arrow struct {
	From, To plotter.XY
	draw.LineStyle
	HeadColor  color.Color
	HeadLength vg.Length
	Shrink     float64
}

func newArrow(from, to plotter.XY) *arrow {
	return &arrow{
		From:       from,
		To:         to,
		LineStyle:  draw.LineStyle{Color: color.Black, Width: vg.Points(1.5)},
		HeadColor:  color.Black,
		HeadLength: vg.Points(8),
		Shrink:     0.05,
	}
}

// Plot implements plot.Plotter.
func (a *arrow) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	x0, y0 := trX(a.From.X), trY(a.From.Y)
	x1, y1 := trX(a.To.X), trY(a.To.Y)

	dx, dy := float64(x1-x0), float64(y1-y0)
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	ux, uy := dx/length, dy/length
	trim := a.Shrink * length

	start := vg.Point{X: x0 + vg.Length(ux*trim), Y: y0 + vg.Length(uy*trim)}
	tip := vg.Point{X: x1 - vg.Length(ux*trim), Y: y1 - vg.Length(uy*trim)}

	head := math.Min(float64(a.HeadLength), length-2*trim)
	base := vg.Point{X: tip.X - vg.Length(ux*head), Y: tip.Y - vg.Length(uy*head)}
	half := head / 2
	left := vg.Point{X: base.X - vg.Length(uy*half), Y: base.Y + vg.Length(ux*half)}
	right := vg.Point{X: base.X + vg.Length(uy*half), Y: base.Y - vg.Length(ux*half)}

	c.StrokeLine2(a.LineStyle, start.X, start.Y, base.X, base.Y)
	c.FillPolygon(a.HeadColor, []vg.Point{tip, left, right})
}
