// Package pkg provides the core libraries for FlowBoard screen-flow diagrams.
//
// # Overview
//
// FlowBoard lays out a project of screens (nodes) and arrows (edges) on a
// large canvas, attaches every arrow to one of sixteen anchors on each
// screen's border and draws it as a cubic bezier curve. Users then move
// screens and drag arrow ends; the result is persisted per project.
//
// # Architecture
//
// The typical data flow:
//
//	Project file (JSON, TOML, YAML)
//	         ↓
//	    [board] package (decode + validate)
//	         ↓
//	    [layout] package (BFS depth + flow/grouped/grid placement)
//	         ↓
//	    [route] package (side resolution, spread map, bezier curves)
//	         ↓
//	    [render] package (SVG, PNG, PDF, DOT, JSON)
//
// [session] wraps the same steps around mutable board state: positions,
// hidden categories, anchor overrides and the anchor drag controller.
//
// # Quick Start
//
//	p, _ := board.ReadProjectFile("checkout.yaml")
//	res, _ := layout.Compute(layout.StrategyFlow, p.Nodes, p.Edges, nil, layout.Options{})
//	geom := make(board.Geometry, len(p.Nodes))
//	for _, n := range p.Nodes {
//	    geom[n.ID] = board.Rect{Point: res.Positions[n.ID], Size: board.Size{W: n.Width(), H: board.DefaultHeight}}
//	}
//	scene := route.Build(p.Edges, geom, nil)
//	svg := render.RenderSVG(p, scene)
//
// Most callers go through [pipeline] instead, which adds caching and state
// restore:
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, session.NewMemoryStore(), nil)
//	result, _ := runner.Execute(ctx, pipeline.Options{Path: "checkout.yaml", Formats: []string{"svg"}})
//
// # Main Packages
//
// [anchor] - The sixteen named anchors, their positions on a rectangle and
// the side heuristic for an edge between two rectangles.
//
// [board] - Project, node and edge types, project codecs and validation.
//
// [layout] - BFS depth and the flow, grouped and grid strategies, plus the
// viewport math for zoom, pan and fit.
//
// [route] - Side resolver, spread map and bezier routes.
//
// [session] - Live board state, the anchor drag controller and the
// file, memory, Redis, MongoDB and BadgerDB state stores.
//
// [cache] - Layout and artifact caching (file, Redis, null).
//
// [render] - SVG export, Graphviz overview, PNG and PDF conversion.
//
// [pipeline] - Load → layout → route → render, shared by the CLI and server.
//
// [observability] - Metric and tracing hooks with no-op defaults.
//
// [errors] - Coded errors that map to HTTP statuses and user messages.
//
// [anchor]: https://pkg.go.dev/github.com/matzehuels/flowboard/pkg/anchor
// [board]: https://pkg.go.dev/github.com/matzehuels/flowboard/pkg/board
// [layout]: https://pkg.go.dev/github.com/matzehuels/flowboard/pkg/layout
// [route]: https://pkg.go.dev/github.com/matzehuels/flowboard/pkg/route
// [session]: https://pkg.go.dev/github.com/matzehuels/flowboard/pkg/session
// [cache]: https://pkg.go.dev/github.com/matzehuels/flowboard/pkg/cache
// [render]: https://pkg.go.dev/github.com/matzehuels/flowboard/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/flowboard/pkg/pipeline
// [observability]: https://pkg.go.dev/github.com/matzehuels/flowboard/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/flowboard/pkg/errors
package pkg
