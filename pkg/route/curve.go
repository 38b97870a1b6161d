package route

import (
	"fmt"
	"strconv"

	"github.com/matzehuels/flowboard/pkg/anchor"
	"github.com/matzehuels/flowboard/pkg/board"
)

// Curve shape constants.
const (
	// Offset is how far control points extend from an anchor along its side's
	// outward normal.
	Offset = 60.0
	// Blend is the share of the start-to-end displacement added to the
	// cross axis of each control point.
	Blend = 0.15
)

// ControlPoints returns the bezier control points for a curve from start to
// end leaving through from and arriving through to. Only the primary sides
// matter. cp1 moves Offset outward from start and Blend·Δ toward end on the
// cross axis; cp2 does the mirror from end. An unknown side adds neither.
func ControlPoints(start, end board.Point, from, to anchor.Anchor) (cp1, cp2 board.Point) {
	d := end.Sub(start)
	return control(start, from.Side(), d, 1), control(end, to.Side(), d, -1)
}

func control(p board.Point, side anchor.Side, d board.Point, sign float64) board.Point {
	switch side {
	case anchor.SideRight:
		return board.Point{X: p.X + Offset, Y: p.Y + sign*d.Y*Blend}
	case anchor.SideLeft:
		return board.Point{X: p.X - Offset, Y: p.Y + sign*d.Y*Blend}
	case anchor.SideBottom:
		return board.Point{X: p.X + sign*d.X*Blend, Y: p.Y + Offset}
	case anchor.SideTop:
		return board.Point{X: p.X + sign*d.X*Blend, Y: p.Y - Offset}
	}
	return p
}

// Curve is a cubic bezier segment.
type Curve struct {
	Start board.Point `json:"start"`
	C1    board.Point `json:"c1"`
	C2    board.Point `json:"c2"`
	End   board.Point `json:"end"`
}

// NewCurve builds the curve between two anchor points.
func NewCurve(start, end board.Point, sides anchor.Sides) Curve {
	c1, c2 := ControlPoints(start, end, sides.From, sides.To)
	return Curve{Start: start, C1: c1, C2: c2, End: end}
}

// Path returns the SVG path data "M sx,sy C c1x,c1y c2x,c2y ex,ey".
func (c Curve) Path() string {
	return fmt.Sprintf("M%s C%s %s %s", pt(c.Start), pt(c.C1), pt(c.C2), pt(c.End))
}

func pt(p board.Point) string {
	return num(p.X) + "," + num(p.Y)
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Mid returns the average of the four points, where edge labels sit.
func (c Curve) Mid() board.Point {
	return board.Point{
		X: (c.Start.X + c.C1.X + c.C2.X + c.End.X) / 4,
		Y: (c.Start.Y + c.C1.Y + c.C2.Y + c.End.Y) / 4,
	}
}

// Bounds returns the box around all four points. It contains the curve.
func (c Curve) Bounds() board.Bounds {
	var b board.Bounds
	for _, p := range []board.Point{c.Start, c.C1, c.C2, c.End} {
		b.AddPoint(p)
	}
	return b
}
