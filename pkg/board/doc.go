// Package board defines the FlowBoard data model: projects made of nodes
// ("screens") and directed edges ("arrows"), plus the plain geometry types
// shared by the layout and routing packages.
//
// # Projects
//
// A [Project] is the unit loaded from disk and handed to a session. It is
// treated as read-only input by the layout engine; the only edge fields that
// change during a session are the persisted anchor sides, and those are
// carried in the session's override table rather than written back here
// until the project is saved.
//
// Projects can be read from JSON, TOML or YAML files:
//
//	p, err := board.ReadProjectFile("checkout.toml")
//	if err != nil {
//	    return err
//	}
//	if err := p.Validate(); err != nil {
//	    return err
//	}
//
// # Geometry
//
// [Point], [Size] and [Rect] are float64 canvas coordinates. A [Geometry] maps
// node IDs to their current rectangles and is the live view the routing code
// queries on every redraw.
//
// # Edge identity
//
// Anchor overrides are keyed by [EdgeKey], not by list index, so inserting or
// removing unrelated edges does not move an override onto a different arrow.
package board
