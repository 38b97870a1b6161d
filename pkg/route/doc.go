// Package route picks edge attachment points and builds curved edge paths.
//
// A redraw runs in three steps:
//
//  1. [BuildSpreadMap] spreads parallel edges (several edges between the same
//     unordered node pair) across sibling anchors so they do not overlap.
//  2. [Resolver.Resolve] decides the anchors of each edge. Explicit sides win
//     (the override table first, then the sides persisted on the edge), then
//     the spread suggestion, then [anchor.BestSides] from the geometry.
//  3. [ControlPoints] synthesizes a cubic bezier between the resolved anchor
//     points whose tangents follow the anchor sides.
//
// [Build] runs all three and returns a [Scene]: every visible edge with its
// resolved sides and curve, ready to draw or export.
//
// Only nodes present in the [board.Geometry] are visible. Edges touching a
// node outside the geometry are left out of the spread map and the scene.
package route
