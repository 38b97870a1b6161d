// Package anchor models the named attachment points on a node's border.
//
// An [Anchor] is a closed variant of a primary [Side] and an optional [Sub]
// position along that side. Each node has 16 canonical anchors:
//
//	left-top    left-upper   left-middle   left-lower   left-bottom
//	right-top   right-upper  right-middle  right-lower  right-bottom
//	top-left    top          top-right
//	bottom-left bottom       bottom-right
//
// Left and right anchors sit at 1/6, 2/6, 1/2, 4/6 and 5/6 of the node height.
// Top and bottom anchors sit at 1/4, 1/2 and 3/4 of the node width. Bare sides
// ("right", "top") resolve to the middle of that side.
//
// # Legacy names
//
// Persisted boards store anchors as strings such as "right-upper". [Parse]
// and [Anchor.String] convert between the two forms, and Anchor implements
// encoding.TextMarshaler so it can sit directly in JSON documents. Parsing is
// lenient: an unknown sub-position is dropped (the anchor resolves to the
// side's midpoint) and an unknown side yields the zero Anchor, which
// resolves to the node's center. Use [ParseStrict] for user input.
//
// # Side heuristic
//
// [BestSides] picks bare sides for an edge from the displacement between the
// two node centers, preferring the horizontal axis on ties.
package anchor
