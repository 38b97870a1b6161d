package board

import "math"

// =============================================================================
// Constants
// =============================================================================

// SizeClass names a fixed node width.
type SizeClass string

// Size classes.
const (
	SizeSmall  SizeClass = "sm"
	SizeMedium SizeClass = "md"
	SizeLarge  SizeClass = "lg"
	SizeXL     SizeClass = "xl"
)

// DefaultHeight is the height estimate used before a node has been measured.
const DefaultHeight = 200.0

var sizeWidths = map[SizeClass]float64{
	SizeSmall:  240,
	SizeMedium: 320,
	SizeLarge:  400,
	SizeXL:     520,
}

// Width returns the pixel width of the size class. Unknown or empty classes
// fall back to medium.
func (s SizeClass) Width() float64 {
	if w, ok := sizeWidths[s]; ok {
		return w
	}
	return sizeWidths[SizeMedium]
}

// =============================================================================
// Project
// =============================================================================

// Project is a named board: categories for the legend, nodes and edges.
type Project struct {
	Name       string     `json:"name" toml:"name" yaml:"name" bson:"name" validate:"required"`
	Categories []Category `json:"categories,omitempty" toml:"categories,omitempty" yaml:"categories,omitempty" bson:"categories,omitempty" validate:"dive"`
	Nodes      []Node     `json:"nodes" toml:"nodes" yaml:"nodes" bson:"nodes" validate:"dive"`
	Edges      []Edge     `json:"edges,omitempty" toml:"edges,omitempty" yaml:"edges,omitempty" bson:"edges,omitempty" validate:"dive"`
}

// Category groups nodes (an "epic") and gives them a legend color.
type Category struct {
	ID    string `json:"id" toml:"id" yaml:"id" bson:"id" validate:"required"`
	Label string `json:"label,omitempty" toml:"label,omitempty" yaml:"label,omitempty" bson:"label,omitempty"`
	Color string `json:"color,omitempty" toml:"color,omitempty" yaml:"color,omitempty" bson:"color,omitempty"`
}

// Node is a rectangular diagram element.
type Node struct {
	ID       string    `json:"id" toml:"id" yaml:"id" bson:"id" validate:"required"`
	Title    string    `json:"title,omitempty" toml:"title,omitempty" yaml:"title,omitempty" bson:"title,omitempty"`
	Category string    `json:"epic,omitempty" toml:"epic,omitempty" yaml:"epic,omitempty" bson:"epic,omitempty"`
	Size     SizeClass `json:"size,omitempty" toml:"size,omitempty" yaml:"size,omitempty" bson:"size,omitempty" validate:"omitempty,oneof=sm md lg xl"`
	Content  string    `json:"content,omitempty" toml:"content,omitempty" yaml:"content,omitempty" bson:"content,omitempty"`
	Label    string    `json:"label,omitempty" toml:"label,omitempty" yaml:"label,omitempty" bson:"label,omitempty"`
	Notes    string    `json:"notes,omitempty" toml:"notes,omitempty" yaml:"notes,omitempty" bson:"notes,omitempty"`
}

// Width returns the node's pixel width from its size class.
func (n Node) Width() float64 { return n.Size.Width() }

// DisplayTitle returns the title if set, otherwise the ID.
func (n Node) DisplayTitle() string {
	if n.Title != "" {
		return n.Title
	}
	return n.ID
}

// Edge is a directed connection between two nodes. FromSide and ToSide hold
// persisted anchor names in their string form (e.g. "right-upper").
type Edge struct {
	ID       string `json:"id,omitempty" toml:"id,omitempty" yaml:"id,omitempty" bson:"id,omitempty"`
	From     string `json:"from" toml:"from" yaml:"from" bson:"from" validate:"required"`
	To       string `json:"to" toml:"to" yaml:"to" bson:"to" validate:"required"`
	Label    string `json:"label,omitempty" toml:"label,omitempty" yaml:"label,omitempty" bson:"label,omitempty"`
	Dashed   bool   `json:"dashed,omitempty" toml:"dashed,omitempty" yaml:"dashed,omitempty" bson:"dashed,omitempty"`
	FromSide string `json:"fromSide,omitempty" toml:"fromSide,omitempty" yaml:"fromSide,omitempty" bson:"fromSide,omitempty"`
	ToSide   string `json:"toSide,omitempty" toml:"toSide,omitempty" yaml:"toSide,omitempty" bson:"toSide,omitempty"`
}

// HasSides reports whether both persisted sides are set.
func (e Edge) HasSides() bool { return e.FromSide != "" && e.ToSide != "" }

// Node returns the node with the given ID.
func (p *Project) Node(id string) (Node, bool) {
	for _, n := range p.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Category returns the category with the given ID.
func (p *Project) Category(id string) (Category, bool) {
	for _, c := range p.Categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// NodeCount returns the number of nodes.
func (p *Project) NodeCount() int { return len(p.Nodes) }

// EdgeCount returns the number of edges.
func (p *Project) EdgeCount() int { return len(p.Edges) }

// =============================================================================
// Geometry
// =============================================================================

// Point is a canvas coordinate.
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns the displacement from q to p.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 { return math.Hypot(p.X-q.X, p.Y-q.Y) }

// Size is a width and height in canvas units.
type Size struct {
	W float64 `json:"w" bson:"w"`
	H float64 `json:"h" bson:"h"`
}

// Rect is a node's placed rectangle: top-left position plus measured size.
type Rect struct {
	Point
	Size
}

// Center returns the geometric center of r.
func (r Rect) Center() Point {
	return Point{r.X + r.W/2, r.Y + r.H/2}
}

// Contains reports whether p lies inside r or on its border.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

// Geometry maps node IDs to their current rectangles.
type Geometry map[string]Rect

// Rect returns the rectangle for id.
func (g Geometry) Rect(id string) (Rect, bool) {
	r, ok := g[id]
	return r, ok
}

// Bounds accumulates a bounding box over points and rectangles.
// The zero value is empty.
type Bounds struct {
	Min, Max Point
	set      bool
}

// Empty reports whether nothing has been added.
func (b *Bounds) Empty() bool { return !b.set }

// AddPoint grows the box to include p.
func (b *Bounds) AddPoint(p Point) {
	if !b.set {
		b.Min, b.Max, b.set = p, p, true
		return
	}
	b.Min.X = math.Min(b.Min.X, p.X)
	b.Min.Y = math.Min(b.Min.Y, p.Y)
	b.Max.X = math.Max(b.Max.X, p.X)
	b.Max.Y = math.Max(b.Max.Y, p.Y)
}

// AddRect grows the box to include r.
func (b *Bounds) AddRect(r Rect) {
	b.AddPoint(r.Point)
	b.AddPoint(Point{r.X + r.W, r.Y + r.H})
}

// Width returns the horizontal extent.
func (b *Bounds) Width() float64 { return b.Max.X - b.Min.X }

// Height returns the vertical extent.
func (b *Bounds) Height() float64 { return b.Max.Y - b.Min.Y }
