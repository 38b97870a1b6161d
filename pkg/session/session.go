package session

import (
	"context"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowboard/pkg/board"
	"github.com/matzehuels/flowboard/pkg/errors"
	"github.com/matzehuels/flowboard/pkg/layout"
	"github.com/matzehuels/flowboard/pkg/observability"
	"github.com/matzehuels/flowboard/pkg/route"
)

// NodeMargin keeps dragged nodes grabbable: a node's top-left corner stays
// within [0, canvas-NodeMargin] on both axes.
const NodeMargin = 50.0

// CommitFunc persists a checkpoint. Errors are logged by the session and
// never undo the in-memory change.
type CommitFunc func(ctx context.Context, st *State) error

// Config configures a session. Zero fields take defaults.
type Config struct {
	Strategy layout.Strategy
	Layout   layout.Options
	Heights  map[string]float64
	Logger   *log.Logger
	OnCommit CommitFunc

	// Positions seeds the initial layout, typically from a cache. It is
	// used only when it places every node; otherwise the strategy runs.
	Positions map[string]board.Point
}

// Session is the mutable state of one open board.
type Session struct {
	project  *board.Project
	strategy layout.Strategy
	opts     layout.Options
	logger   *log.Logger
	onCommit CommitFunc

	heights   map[string]float64
	positions map[string]board.Point
	placed    bool
	viewport  layout.Viewport
	overrides Overrides
	hidden    map[string]bool
	hideNotes bool

	drag *dragState
}

// New opens a session on p and lays it out with the configured strategy.
func New(p *board.Project, cfg Config) (*Session, error) {
	if p == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "project is nil")
	}
	st, err := layout.ParseStrategy(string(cfg.Strategy))
	if err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Session{
		project:   p,
		strategy:  st,
		opts:      cfg.Layout.WithDefaults(),
		logger:    logger,
		onCommit:  cfg.OnCommit,
		heights:   make(map[string]float64),
		viewport:  layout.DefaultViewport(),
		overrides: make(Overrides),
		hidden:    make(map[string]bool),
	}
	for id, h := range cfg.Heights {
		s.heights[id] = h
	}
	if covers(cfg.Positions, p.Nodes) {
		s.positions = make(map[string]board.Point, len(p.Nodes))
		for _, n := range p.Nodes {
			s.positions[n.ID] = cfg.Positions[n.ID]
		}
		return s, nil
	}
	if err := s.relayout(st); err != nil {
		return nil, err
	}
	return s, nil
}

func covers(positions map[string]board.Point, nodes []board.Node) bool {
	if len(positions) == 0 {
		return false
	}
	for _, n := range nodes {
		if _, ok := positions[n.ID]; !ok {
			return false
		}
	}
	return true
}

// Project returns the underlying project.
func (s *Session) Project() *board.Project { return s.project }

// Name returns the project name.
func (s *Session) Name() string { return s.project.Name }

// Strategy returns the strategy of the last layout.
func (s *Session) Strategy() layout.Strategy { return s.strategy }

// Canvas returns the canvas size.
func (s *Session) Canvas() board.Size { return s.opts.Canvas }

// Overrides returns the live override table.
func (s *Session) Overrides() Overrides { return s.overrides }

// Position returns the position of node id.
func (s *Session) Position(id string) (board.Point, bool) {
	p, ok := s.positions[id]
	return p, ok
}

// Height returns the measured or default height of node id.
func (s *Session) Height(id string) float64 {
	if h := s.heights[id]; h > 0 {
		return h
	}
	return board.DefaultHeight
}

// Visible reports whether node id is shown (its category is not hidden).
func (s *Session) Visible(id string) bool {
	n, ok := s.project.Node(id)
	return ok && !s.hidden[n.Category]
}

// NotesVisible reports whether node notes are shown.
func (s *Session) NotesVisible() bool { return !s.hideNotes }

// Hidden returns the hidden category IDs, sorted.
func (s *Session) Hidden() []string {
	out := make([]string, 0, len(s.hidden))
	for id := range s.hidden {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Geometry returns the rectangles of all visible, positioned nodes.
func (s *Session) Geometry() board.Geometry {
	g := make(board.Geometry, len(s.project.Nodes))
	for _, n := range s.project.Nodes {
		if s.hidden[n.Category] {
			continue
		}
		p, ok := s.positions[n.ID]
		if !ok {
			continue
		}
		g[n.ID] = board.Rect{Point: p, Size: board.Size{W: n.Width(), H: s.Height(n.ID)}}
	}
	return g
}

// Resolver returns a side resolver over the current geometry and overrides.
func (s *Session) Resolver() *route.Resolver {
	return route.NewResolver(s.project.Edges, s.Geometry(), s.overrides)
}

// Scene resolves and routes every visible edge.
func (s *Session) Scene() route.Scene {
	start := time.Now()
	r := s.Resolver()
	scene := r.Scene(route.BuildSpreadMap(s.project.Edges, r.Geometry, r.HasExplicit))
	observability.Pipeline().OnRouteComplete(context.Background(), len(scene.Routes), time.Since(start))
	return scene
}

// =============================================================================
// Layout
// =============================================================================

func (s *Session) relayout(st layout.Strategy) error {
	start := time.Now()
	observability.Pipeline().OnLayoutStart(context.Background(), string(st), len(s.project.Nodes))
	res, err := layout.Compute(st, s.project.Nodes, s.project.Edges, s.heights, s.opts)
	observability.Pipeline().OnLayoutComplete(context.Background(), string(st), time.Since(start), err)
	if err != nil {
		return err
	}
	s.strategy = st
	s.positions = res.Positions
	s.logger.Debug("computed layout", "project", s.project.Name, "strategy", st,
		"nodes", len(res.Positions), "width", res.Width, "height", res.Height, "duration", time.Since(start))
	return nil
}

// Relayout replaces every position with a fresh layout. An empty strategy
// keeps the current one.
func (s *Session) Relayout(ctx context.Context, strategy layout.Strategy) error {
	if strategy == "" {
		strategy = s.strategy
	}
	st, err := layout.ParseStrategy(string(strategy))
	if err != nil {
		return err
	}
	if err := s.relayout(st); err != nil {
		return err
	}
	s.placed = false
	s.commit(ctx)
	return nil
}

// SetHeights records measured node heights. Until the user has placed
// nodes (by dragging or restoring a checkpoint) the layout is recomputed so
// stacking uses the real heights.
func (s *Session) SetHeights(heights map[string]float64) error {
	for id, h := range heights {
		s.heights[id] = h
	}
	if s.placed {
		return nil
	}
	return s.relayout(s.strategy)
}

// MoveNode places node id at p, clamped to the canvas.
func (s *Session) MoveNode(ctx context.Context, id string, p board.Point) (board.Point, error) {
	if _, ok := s.project.Node(id); !ok {
		return board.Point{}, errors.New(errors.ErrCodeNotFound, "node %q not found", id)
	}
	p = board.Point{
		X: clamp(p.X, 0, s.opts.Canvas.W-NodeMargin),
		Y: clamp(p.Y, 0, s.opts.Canvas.H-NodeMargin),
	}
	s.positions[id] = p
	s.placed = true
	s.commit(ctx)
	return p, nil
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}

// =============================================================================
// Visibility and viewport
// =============================================================================

// ToggleCategory hides or shows a category and reports whether it is now
// hidden.
func (s *Session) ToggleCategory(ctx context.Context, id string) (bool, error) {
	if _, ok := s.project.Category(id); !ok {
		return false, errors.New(errors.ErrCodeNotFound, "category %q not found", id)
	}
	if s.hidden[id] {
		delete(s.hidden, id)
	} else {
		s.hidden[id] = true
	}
	s.commit(ctx)
	return s.hidden[id], nil
}

// ToggleNotes flips node-note visibility and reports the new state.
func (s *Session) ToggleNotes(ctx context.Context) bool {
	s.hideNotes = !s.hideNotes
	s.commit(ctx)
	return !s.hideNotes
}

// Viewport returns the current viewport.
func (s *Session) Viewport() layout.Viewport { return s.viewport }

// SetViewport replaces the viewport, clamping its zoom.
func (s *Session) SetViewport(ctx context.Context, v layout.Viewport) {
	v.Zoom = layout.ClampZoom(v.Zoom)
	s.viewport = v
	s.commit(ctx)
}

// FitView fits all visible nodes into a view of the given size.
func (s *Session) FitView(ctx context.Context, view board.Size) layout.Viewport {
	var b board.Bounds
	for _, r := range s.Geometry() {
		b.AddRect(r)
	}
	if b.Empty() {
		return s.viewport
	}
	s.viewport = layout.Fit(b, view, layout.FitPadding)
	s.commit(ctx)
	return s.viewport
}

// ClientToCanvas converts a pointer position in view coordinates to canvas
// coordinates.
func ClientToCanvas(client board.Point, v layout.Viewport) board.Point {
	return v.ToCanvas(client)
}

// =============================================================================
// Freeze and reset
// =============================================================================

// Freeze writes the currently resolved sides of every visible edge without
// explicit sides into the override table, so later edits do not reshuffle
// them. It returns the number of edges frozen; a second call returns 0.
func (s *Session) Freeze(ctx context.Context) int {
	r := s.Resolver()
	scene := r.Scene(route.BuildSpreadMap(s.project.Edges, r.Geometry, r.HasExplicit))
	n := 0
	for _, rt := range scene.Routes {
		if r.HasExplicit(rt.Index) {
			continue
		}
		s.overrides.Set(rt.Key, rt.Sides)
		n++
	}
	observability.Session().OnFreeze(ctx, s.project.Name, n)
	if n > 0 {
		s.logger.Info("froze edge anchors", "project", s.project.Name, "edges", n)
		s.commit(ctx)
	}
	return n
}

// Reset discards user state: positions are recomputed, categories shown
// and overrides cleared. Sides persisted on the edges themselves remain.
func (s *Session) Reset(ctx context.Context) error {
	if s.drag != nil {
		return errors.New(errors.ErrCodeDragState, "cannot reset during an anchor drag")
	}
	if err := s.relayout(s.strategy); err != nil {
		return err
	}
	s.placed = false
	clear(s.hidden)
	clear(s.overrides)
	s.hideNotes = false
	s.viewport = layout.DefaultViewport()
	s.commit(ctx)
	return nil
}

// =============================================================================
// Checkpoints
// =============================================================================

// State returns a checkpoint of the session.
func (s *Session) State() *State {
	v := s.viewport
	st := &State{
		Project:   s.project.Name,
		Strategy:  string(s.strategy),
		Positions: make(map[string]board.Point, len(s.positions)),
		Viewport:  &v,
		Overrides: s.overrides.Encode(),
		Hidden:    s.Hidden(),
		HideNotes: s.hideNotes,
		UpdatedAt: time.Now().UTC(),
	}
	for id, p := range s.positions {
		st.Positions[id] = p
	}
	if len(st.Hidden) == 0 {
		st.Hidden = nil
	}
	return st
}

// Restore applies a checkpoint. Saved positions replace computed ones for
// nodes that still exist; other nodes keep their layout position.
func (s *Session) Restore(st *State) {
	if st == nil {
		return
	}
	if st.Strategy != "" {
		if strategy, err := layout.ParseStrategy(st.Strategy); err == nil && strategy != s.strategy {
			if err := s.relayout(strategy); err != nil {
				s.logger.Warn("restore layout", "project", s.project.Name, "err", err)
			}
		}
	}
	restored := 0
	for id, p := range st.Positions {
		if _, ok := s.project.Node(id); ok {
			s.positions[id] = p
			restored++
		}
	}
	if restored > 0 {
		s.placed = true
	}
	if st.Viewport != nil {
		s.viewport = *st.Viewport
		s.viewport.Zoom = layout.ClampZoom(s.viewport.Zoom)
	}
	s.overrides = DecodeOverrides(st.Overrides)
	clear(s.hidden)
	for _, id := range st.Hidden {
		s.hidden[id] = true
	}
	s.hideNotes = st.HideNotes
}

// Commit persists the current state through the commit hook.
func (s *Session) Commit(ctx context.Context) { s.commit(ctx) }

func (s *Session) commit(ctx context.Context) {
	if s.onCommit == nil {
		return
	}
	if err := s.onCommit(ctx, s.State()); err != nil {
		s.logger.Warn("persist board state", "project", s.project.Name, "err", err)
	}
}
