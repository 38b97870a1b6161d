package route

import (
	"github.com/matzehuels/flowboard/pkg/anchor"
	"github.com/matzehuels/flowboard/pkg/board"
)

// Route is one drawn edge.
type Route struct {
	Index  int           `json:"index"`
	Key    board.EdgeKey `json:"key"`
	From   string        `json:"from"`
	To     string        `json:"to"`
	Sides  anchor.Sides  `json:"sides"`
	Curve  Curve         `json:"curve"`
	Path   string        `json:"path"`
	Label  string        `json:"label,omitempty"`
	Dashed bool          `json:"dashed,omitempty"`
}

// Scene is everything needed to draw a board: node rectangles and the
// routes of every visible edge, in edge list order.
type Scene struct {
	Nodes  board.Geometry `json:"nodes"`
	Routes []Route        `json:"routes"`
}

// Build resolves and routes every edge whose endpoints are both in geom.
// overrides may be nil.
func Build(edges []board.Edge, geom board.Geometry, overrides Overrides) Scene {
	r := NewResolver(edges, geom, overrides)
	return r.Scene(BuildSpreadMap(edges, geom, r.HasExplicit))
}

// Scene routes every visible edge with the given spread map.
func (r *Resolver) Scene(spread SpreadMap) Scene {
	scene := Scene{Nodes: r.Geometry, Routes: make([]Route, 0, len(r.Edges))}
	for i, e := range r.Edges {
		if _, ok := r.Geometry[e.From]; !ok {
			continue
		}
		if _, ok := r.Geometry[e.To]; !ok {
			continue
		}
		scene.Routes = append(scene.Routes, r.Route(e, i, spread))
	}
	return scene
}

// Route resolves and routes a single edge.
func (r *Resolver) Route(e board.Edge, i int, spread SpreadMap) Route {
	sides := r.Resolve(e, i, spread)
	c := NewCurve(r.Point(e.From, sides.From), r.Point(e.To, sides.To), sides)
	return Route{
		Index:  i,
		Key:    r.Key(i),
		From:   e.From,
		To:     e.To,
		Sides:  sides,
		Curve:  c,
		Path:   c.Path(),
		Label:  e.Label,
		Dashed: e.Dashed,
	}
}

// Route returns the route for edge index i.
func (s Scene) Route(i int) (Route, bool) {
	for _, rt := range s.Routes {
		if rt.Index == i {
			return rt, true
		}
	}
	return Route{}, false
}

// Bounds covers every node and every curve including its control points,
// so an export cropped to it never clips an edge.
func (s Scene) Bounds() board.Bounds {
	var b board.Bounds
	for _, r := range s.Nodes {
		b.AddRect(r)
	}
	for _, rt := range s.Routes {
		cb := rt.Curve.Bounds()
		if !cb.Empty() {
			b.AddPoint(cb.Min)
			b.AddPoint(cb.Max)
		}
	}
	return b
}
