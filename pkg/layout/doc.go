// Package layout assigns canvas positions to board nodes.
//
// # Strategies
//
// Three deterministic strategies are available:
//
//   - [Flow] places nodes in columns by graph depth (see [Depth]), left to right.
//   - [Grouped] places each category in its own column, members ordered by depth.
//   - [Grid] ignores edges and fills a near-square grid in list order.
//
// Every strategy produces positions relative to (0,0) plus the bounding size
// of the result. [Compute] runs a strategy by name and then [Center]s the
// result in the canvas, so a fresh board opens in the middle of the
// scrollable area:
//
//	res, err := layout.Compute(layout.StrategyFlow, p.Nodes, p.Edges, heights, layout.Options{})
//
// Column widths come from node size classes. Heights come from the optional
// measured-height map; nodes without a positive measurement use
// [board.DefaultHeight].
//
// # Viewport
//
// [Viewport] holds zoom and pan for an interactive view. [Fit] computes the
// viewport that shows a bounding box inside a view with padding.
//
// The layouts are heuristics: no crossing minimization, no edge-length
// optimization. They are pure functions of their input.
package layout
