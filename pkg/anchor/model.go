package anchor

import (
	"math"

	"github.com/matzehuels/flowboard/pkg/board"
)

// Fraction returns how far along its side a resolves, in [0, 1]. Left and
// right anchors measure from the top edge, top and bottom anchors from the
// left edge. Bare and unknown positions are 0.5.
func Fraction(a Anchor) float64 {
	switch a.sub {
	case SubTop:
		return 1.0 / 6
	case SubUpper:
		return 2.0 / 6
	case SubLower:
		return 4.0 / 6
	case SubBottom:
		return 5.0 / 6
	case SubLeft:
		return 0.25
	case SubRight:
		return 0.75
	}
	return 0.5
}

// Resolve returns the canvas coordinates of a on r. The zero Anchor resolves
// to the center of r. The result always lies on or inside r.
func Resolve(r board.Rect, a Anchor) board.Point {
	f := Fraction(a)
	switch a.side {
	case SideLeft:
		return board.Point{X: r.X, Y: r.Y + r.H*f}
	case SideRight:
		return board.Point{X: r.X + r.W, Y: r.Y + r.H*f}
	case SideTop:
		return board.Point{X: r.X + r.W*f, Y: r.Y}
	case SideBottom:
		return board.Point{X: r.X + r.W*f, Y: r.Y + r.H}
	}
	return r.Center()
}

// ResolveName is Resolve for a legacy anchor name.
func ResolveName(r board.Rect, name string) board.Point {
	return Resolve(r, Parse(name))
}

// canonical lists the 16 snap points in display order.
var canonical = [16]Anchor{
	{SideLeft, SubTop}, {SideLeft, SubUpper}, {SideLeft, SubMiddle}, {SideLeft, SubLower}, {SideLeft, SubBottom},
	{SideRight, SubTop}, {SideRight, SubUpper}, {SideRight, SubMiddle}, {SideRight, SubLower}, {SideRight, SubBottom},
	{SideTop, SubLeft}, {SideTop, SubNone}, {SideTop, SubRight},
	{SideBottom, SubLeft}, {SideBottom, SubNone}, {SideBottom, SubRight},
}

// Canonical returns the 16 canonical anchors in display order.
func Canonical() []Anchor {
	out := make([]Anchor, len(canonical))
	copy(out, canonical[:])
	return out
}

// Handle is a resolved anchor position.
type Handle struct {
	Anchor Anchor      `json:"anchor"`
	Pos    board.Point `json:"pos"`
}

// All resolves the 16 canonical anchors on r, in display order.
func All(r board.Rect) []Handle {
	out := make([]Handle, len(canonical))
	for i, a := range canonical {
		out[i] = Handle{Anchor: a, Pos: Resolve(r, a)}
	}
	return out
}

// Nearest returns the canonical anchor on r closest to p. Ties go to the
// anchor listed first.
func Nearest(r board.Rect, p board.Point) Handle {
	var best Handle
	bestDist := math.Inf(1)
	for _, h := range All(r) {
		if d := h.Pos.Dist(p); d < bestDist {
			best, bestDist = h, d
		}
	}
	return best
}

// BestSides picks bare sides for an edge from a to b by comparing the
// center-to-center displacement. The horizontal axis wins ties.
func BestSides(a, b board.Rect) Sides {
	ac, bc := a.Center(), b.Center()
	dx, dy := bc.X-ac.X, bc.Y-ac.Y
	if math.Abs(dx) >= math.Abs(dy) {
		if dx > 0 {
			return Sides{From: Bare(SideRight), To: Bare(SideLeft)}
		}
		return Sides{From: Bare(SideLeft), To: Bare(SideRight)}
	}
	if dy > 0 {
		return Sides{From: Bare(SideBottom), To: Bare(SideTop)}
	}
	return Sides{From: Bare(SideTop), To: Bare(SideBottom)}
}
