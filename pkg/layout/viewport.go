package layout

import (
	"math"

	"github.com/matzehuels/flowboard/pkg/board"
)

// Zoom limits.
const (
	MinZoom    = 0.2
	MaxZoom    = 2.0
	ZoomStep   = 0.1
	FitPadding = 60.0
)

// Viewport is the zoom and pan of an interactive view. A canvas point c is
// shown at view coordinates c*Zoom + Pan.
type Viewport struct {
	Zoom float64 `json:"zoom" bson:"zoom"`
	PanX float64 `json:"panX" bson:"panX"`
	PanY float64 `json:"panY" bson:"panY"`
}

// DefaultViewport is unscaled with no pan.
func DefaultViewport() Viewport { return Viewport{Zoom: 1} }

// ClampZoom rounds z to hundredths and clamps it to [MinZoom, MaxZoom].
func ClampZoom(z float64) float64 {
	return math.Max(MinZoom, math.Min(MaxZoom, math.Round(z*100)/100))
}

// ToCanvas converts a view (client) coordinate to canvas coordinates.
func (v Viewport) ToCanvas(p board.Point) board.Point {
	z := v.Zoom
	if z == 0 {
		z = 1
	}
	return board.Point{X: (p.X - v.PanX) / z, Y: (p.Y - v.PanY) / z}
}

// ToView converts a canvas coordinate to view coordinates.
func (v Viewport) ToView(p board.Point) board.Point {
	return board.Point{X: p.X*v.Zoom + v.PanX, Y: p.Y*v.Zoom + v.PanY}
}

// ZoomAt sets the zoom to z (clamped) while keeping the canvas point under
// the view point at fixed.
func (v Viewport) ZoomAt(z float64, at board.Point) Viewport {
	c := v.ToCanvas(at)
	nz := ClampZoom(z)
	return Viewport{Zoom: nz, PanX: at.X - c.X*nz, PanY: at.Y - c.Y*nz}
}

// Step zooms one ZoomStep in (positive dir) or out around at.
func (v Viewport) Step(dir int, at board.Point) Viewport {
	delta := ZoomStep
	if dir < 0 {
		delta = -ZoomStep
	}
	return v.ZoomAt(v.Zoom+delta, at)
}

// Pan shifts the view by (dx, dy) view pixels.
func (v Viewport) Pan(dx, dy float64) Viewport {
	v.PanX += dx
	v.PanY += dy
	return v
}

// Fit returns the viewport that shows content inside a view of the given
// size, leaving padding on every side. The zoom never exceeds 1 and is
// clamped like [ClampZoom]. Empty content returns [DefaultViewport].
func Fit(content board.Bounds, view board.Size, padding float64) Viewport {
	if content.Empty() {
		return DefaultViewport()
	}
	w, h := content.Width(), content.Height()
	zoom := 1.0
	if w > 0 {
		zoom = math.Min(zoom, (view.W-padding*2)/w)
	}
	if h > 0 {
		zoom = math.Min(zoom, (view.H-padding*2)/h)
	}
	zoom = ClampZoom(zoom)
	return Viewport{
		Zoom: zoom,
		PanX: (view.W-w*zoom)/2 - content.Min.X*zoom,
		PanY: (view.H-h*zoom)/2 - content.Min.Y*zoom,
	}
}
