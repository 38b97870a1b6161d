package route

import (
	"github.com/matzehuels/flowboard/pkg/anchor"
	"github.com/matzehuels/flowboard/pkg/board"
)

// Overrides supplies explicit sides by edge key. Only complete entries
// (both ends set) are authoritative.
type Overrides interface {
	Lookup(key board.EdgeKey) (anchor.Sides, bool)
}

// Fallback is used when an endpoint has no geometry.
var Fallback = anchor.Sides{From: anchor.Bare(anchor.SideRight), To: anchor.Bare(anchor.SideLeft)}

// Resolver decides the anchors each edge uses right now.
type Resolver struct {
	Edges     []board.Edge
	Keys      []board.EdgeKey
	Geometry  board.Geometry
	Overrides Overrides
}

// NewResolver returns a resolver over edges with keys computed by
// [board.EdgeKeys]. overrides may be nil.
func NewResolver(edges []board.Edge, geom board.Geometry, overrides Overrides) *Resolver {
	return &Resolver{
		Edges:     edges,
		Keys:      board.EdgeKeys(edges),
		Geometry:  geom,
		Overrides: overrides,
	}
}

// Key returns the key of edge i.
func (r *Resolver) Key(i int) board.EdgeKey {
	if i >= 0 && i < len(r.Keys) {
		return r.Keys[i]
	}
	return ""
}

// Explicit returns the explicit sides of edge i: a complete override, else
// the edge's own persisted sides when both are set.
func (r *Resolver) Explicit(i int) (anchor.Sides, bool) {
	if r.Overrides != nil {
		if s, ok := r.Overrides.Lookup(r.Key(i)); ok && s.Complete() {
			return s, true
		}
	}
	if i < 0 || i >= len(r.Edges) {
		return anchor.Sides{}, false
	}
	if e := r.Edges[i]; e.HasSides() {
		return anchor.ParseSides(e.FromSide, e.ToSide), true
	}
	return anchor.Sides{}, false
}

// HasExplicit reports whether edge i has explicit sides.
func (r *Resolver) HasExplicit(i int) bool {
	_, ok := r.Explicit(i)
	return ok
}

// Resolve returns the sides for edge e at index i. Precedence: explicit
// sides, then the spread suggestion, then the side heuristic. If either
// endpoint is missing from the geometry the result is [Fallback].
func (r *Resolver) Resolve(e board.Edge, i int, spread SpreadMap) anchor.Sides {
	if s, ok := r.Explicit(i); ok {
		return s
	}
	if s, ok := spread[i]; ok {
		return s
	}
	from, okFrom := r.Geometry[e.From]
	to, okTo := r.Geometry[e.To]
	if !okFrom || !okTo {
		return Fallback
	}
	return anchor.BestSides(from, to)
}

// Point resolves anchor a on node id. A node without geometry resolves to
// the origin.
func (r *Resolver) Point(id string, a anchor.Anchor) board.Point {
	rect, ok := r.Geometry[id]
	if !ok {
		return board.Point{}
	}
	return anchor.Resolve(rect, a)
}
