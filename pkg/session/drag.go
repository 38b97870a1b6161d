package session

import (
	"context"
	stderrors "errors"

	"github.com/matzehuels/flowboard/pkg/anchor"
	"github.com/matzehuels/flowboard/pkg/board"
	"github.com/matzehuels/flowboard/pkg/errors"
	"github.com/matzehuels/flowboard/pkg/observability"
	"github.com/matzehuels/flowboard/pkg/route"
)

// Sentinel errors for the anchor drag lifecycle.
var (
	// ErrDragging is returned when a drag begins while another is active.
	ErrDragging = stderrors.New("anchor drag already in progress")

	// ErrNotDragging is returned when a drag is updated or ended while idle.
	ErrNotDragging = stderrors.New("no anchor drag in progress")
)

type dragState struct {
	index int
	key   board.EdgeKey
	end   End
	node  string
}

// Dragging reports whether an anchor drag is active.
func (s *Session) Dragging() bool { return s.drag != nil }

// BeginAnchorDrag starts dragging one end of edge edgeIndex. If the edge has
// no explicit sides, its currently resolved sides are frozen into the
// override table first.
func (s *Session) BeginAnchorDrag(ctx context.Context, edgeIndex int, end End) error {
	if s.drag != nil {
		return errors.Wrap(errors.ErrCodeDragState, ErrDragging, "edge %d", s.drag.index)
	}
	if _, err := ParseEnd(string(end)); err != nil {
		return err
	}
	edges := s.project.Edges
	if edgeIndex < 0 || edgeIndex >= len(edges) {
		return errors.New(errors.ErrCodeNotFound, "edge %d not found", edgeIndex)
	}
	e := edges[edgeIndex]

	r := s.Resolver()
	if _, ok := r.Geometry[e.From]; !ok {
		return errors.New(errors.ErrCodeNotFound, "edge %d is not visible", edgeIndex)
	}
	if _, ok := r.Geometry[e.To]; !ok {
		return errors.New(errors.ErrCodeNotFound, "edge %d is not visible", edgeIndex)
	}

	key := r.Key(edgeIndex)
	if cur, ok := s.overrides.Lookup(key); !ok || !cur.Complete() {
		spread := route.BuildSpreadMap(edges, r.Geometry, r.HasExplicit)
		s.overrides.Set(key, r.Resolve(e, edgeIndex, spread))
	}

	node := e.From
	if end == EndTo {
		node = e.To
	}
	s.drag = &dragState{index: edgeIndex, key: key, end: end, node: node}
	observability.Session().OnDragBegin(ctx, s.project.Name, string(key), string(end))
	s.logger.Debug("begin anchor drag", "project", s.project.Name, "edge", key, "end", end)
	return nil
}

// UpdateAnchorDrag snaps the dragged end to the anchor nearest p (canvas
// coordinates) on that end's node and returns the re-routed scene.
func (s *Session) UpdateAnchorDrag(p board.Point) (route.Scene, error) {
	if s.drag == nil {
		return route.Scene{}, errors.Wrap(errors.ErrCodeDragState, ErrNotDragging, "update")
	}
	geom := s.Geometry()
	rect, ok := geom[s.drag.node]
	if !ok {
		return route.Scene{}, errors.New(errors.ErrCodeNotFound, "node %q is not visible", s.drag.node)
	}
	h := anchor.Nearest(rect, p)
	s.overrides.SetEnd(s.drag.key, s.drag.end, h.Anchor)
	return s.Scene(), nil
}

// EndAnchorDrag commits the drag and returns the edge's final sides.
func (s *Session) EndAnchorDrag(ctx context.Context) (anchor.Sides, error) {
	if s.drag == nil {
		return anchor.Sides{}, errors.Wrap(errors.ErrCodeDragState, ErrNotDragging, "end")
	}
	d := s.drag
	s.drag = nil
	sides := s.overrides[d.key]
	observability.Session().OnDragCommit(ctx, s.project.Name, string(d.key), sides.From.String(), sides.To.String())
	s.logger.Info("moved edge anchor", "project", s.project.Name, "edge", d.key,
		"from", sides.From, "to", sides.To)
	s.commit(ctx)
	return sides, nil
}

// DragTarget returns the edge index and end of the active drag.
func (s *Session) DragTarget() (int, End, bool) {
	if s.drag == nil {
		return -1, "", false
	}
	return s.drag.index, s.drag.end, true
}
