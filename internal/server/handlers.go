package server

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/matzehuels/flowboard/pkg/anchor"
	"github.com/matzehuels/flowboard/pkg/board"
	"github.com/matzehuels/flowboard/pkg/buildinfo"
	"github.com/matzehuels/flowboard/pkg/errors"
	"github.com/matzehuels/flowboard/pkg/layout"
	"github.com/matzehuels/flowboard/pkg/render"
	"github.com/matzehuels/flowboard/pkg/route"
	"github.com/matzehuels/flowboard/pkg/session"
)

// =============================================================================
// Responses
// =============================================================================

// boardView is the full client view of a board.
type boardView struct {
	Board     string                 `json:"board"`
	Session   string                 `json:"session"`
	Strategy  string                 `json:"strategy"`
	Positions map[string]board.Point `json:"positions"`
	Scene     route.Scene            `json:"scene"`
	Viewport  layout.Viewport        `json:"viewport"`
	Hidden    []string               `json:"hidden"`
	Notes     bool                   `json:"notes"`
	Dragging  bool                   `json:"dragging"`
}

func viewOf(b *boardEntry) boardView {
	s := b.sess
	positions := make(map[string]board.Point, len(s.Project().Nodes))
	for _, n := range s.Project().Nodes {
		if p, ok := s.Position(n.ID); ok {
			positions[n.ID] = p
		}
	}
	hidden := s.Hidden()
	if hidden == nil {
		hidden = []string{}
	}
	return boardView{
		Board:     s.Name(),
		Session:   b.id,
		Strategy:  string(s.Strategy()),
		Positions: positions,
		Scene:     s.Scene(),
		Viewport:  s.Viewport(),
		Hidden:    hidden,
		Notes:     s.NotesVisible(),
		Dragging:  s.Dragging(),
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.HTTPStatus(err)
	if code >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err, "request_id", requestIDFrom(r.Context()))
	}
	writeJSON(w, code, errorResponse{Error: errors.UserMessage(err), Code: string(errors.GetCode(err))})
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body")
	}
	return nil
}

// =============================================================================
// Board Access
// =============================================================================

// withBoard runs fn on the named board under its lock and writes the result
// as JSON.
func (s *Server) withBoard(w http.ResponseWriter, r *http.Request, fn func(*boardEntry) (any, error)) {
	name := chi.URLParam(r, "name")
	b, ok := s.board(name)
	if !ok {
		s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "board %q is not loaded", name))
		return
	}
	b.mu.Lock()
	out, err := fn(b)
	b.mu.Unlock()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"boards": len(s.Boards()),
		"build":  buildinfo.Get(),
	})
}

// projectFormat picks the project codec from the Content-Type header.
func projectFormat(contentType string) (board.Format, error) {
	if contentType == "" {
		return board.FormatJSON, nil
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidFormat, err, "content type")
	}
	switch {
	case mt == "application/json":
		return board.FormatJSON, nil
	case strings.HasSuffix(mt, "toml"):
		return board.FormatTOML, nil
	case strings.HasSuffix(mt, "yaml"):
		return board.FormatYAML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported content type %q", mt)
}

// handleLoad opens a board from the uploaded project and restores its
// saved state. Loading an open board replaces it.
func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := errors.ValidateProjectName(name); err != nil {
		s.writeError(w, r, err)
		return
	}
	format, err := projectFormat(r.Header.Get("Content-Type"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := board.ReadProject(io.LimitReader(r.Body, maxBodyBytes), format)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	p.Name = name

	opts := s.defaults
	opts.Project = p
	opts.Logger = s.logger
	if st := r.URL.Query().Get("strategy"); st != "" {
		opts.Strategy = st
	}
	sess, err := s.runner.Open(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	b := &boardEntry{id: uuid.NewString(), sess: sess}
	s.put(name, b)
	s.logger.Info("loaded board", "board", name, "nodes", p.NodeCount(), "edges", p.EdgeCount(), "session", b.id)

	b.mu.Lock()
	view := viewOf(b)
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleScene(w http.ResponseWriter, r *http.Request) {
	s.withBoard(w, r, func(b *boardEntry) (any, error) {
		return viewOf(b), nil
	})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	strategy := layout.Strategy(r.URL.Query().Get("strategy"))
	s.withBoard(w, r, func(b *boardEntry) (any, error) {
		if err := b.sess.Relayout(r.Context(), strategy); err != nil {
			return nil, err
		}
		return viewOf(b), nil
	})
}

type pointRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	// Client marks the point as view coordinates, converted through the
	// board's viewport.
	Client bool `json:"client,omitempty"`
}

func (p pointRequest) canvas(s *session.Session) board.Point {
	pt := board.Point{X: p.X, Y: p.Y}
	if p.Client {
		return session.ClientToCanvas(pt, s.Viewport())
	}
	return pt
}

func (s *Server) handleMoveNode(w http.ResponseWriter, r *http.Request) {
	var req pointRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	id := chi.URLParam(r, "id")
	s.withBoard(w, r, func(b *boardEntry) (any, error) {
		p, err := b.sess.MoveNode(r.Context(), id, req.canvas(b.sess))
		if err != nil {
			return nil, err
		}
		return map[string]any{"node": id, "position": p, "scene": b.sess.Scene()}, nil
	})
}

func (s *Server) handleFreeze(w http.ResponseWriter, r *http.Request) {
	s.withBoard(w, r, func(b *boardEntry) (any, error) {
		n := b.sess.Freeze(r.Context())
		return map[string]any{"frozen": n}, nil
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.withBoard(w, r, func(b *boardEntry) (any, error) {
		if err := b.sess.Reset(r.Context()); err != nil {
			return nil, err
		}
		return viewOf(b), nil
	})
}

func (s *Server) handleToggleCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.withBoard(w, r, func(b *boardEntry) (any, error) {
		hidden, err := b.sess.ToggleCategory(r.Context(), id)
		if err != nil {
			return nil, err
		}
		return map[string]any{"category": id, "hidden": hidden, "scene": b.sess.Scene()}, nil
	})
}

func (s *Server) handleToggleNotes(w http.ResponseWriter, r *http.Request) {
	s.withBoard(w, r, func(b *boardEntry) (any, error) {
		return map[string]any{"notes": b.sess.ToggleNotes(r.Context())}, nil
	})
}

func (s *Server) handleViewport(w http.ResponseWriter, r *http.Request) {
	var v layout.Viewport
	if err := decodeBody(r, &v); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.withBoard(w, r, func(b *boardEntry) (any, error) {
		b.sess.SetViewport(r.Context(), v)
		return b.sess.Viewport(), nil
	})
}

func (s *Server) handleFit(w http.ResponseWriter, r *http.Request) {
	var view board.Size
	if err := decodeBody(r, &view); err != nil {
		s.writeError(w, r, err)
		return
	}
	if view.W <= 0 || view.H <= 0 {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "view size must be positive"))
		return
	}
	s.withBoard(w, r, func(b *boardEntry) (any, error) {
		return b.sess.FitView(r.Context(), view), nil
	})
}

// =============================================================================
// Anchor Drag
// =============================================================================

type dragBeginRequest struct {
	Edge int    `json:"edge"`
	End  string `json:"end"`
}

type dragEndResponse struct {
	Edge  int          `json:"edge"`
	Sides anchor.Sides `json:"sides"`
	Scene route.Scene  `json:"scene"`
}

func (s *Server) handleDragBegin(w http.ResponseWriter, r *http.Request) {
	var req dragBeginRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.withBoard(w, r, func(b *boardEntry) (any, error) {
		end, err := session.ParseEnd(req.End)
		if err != nil {
			return nil, err
		}
		if err := b.sess.BeginAnchorDrag(r.Context(), req.Edge, end); err != nil {
			return nil, err
		}
		b.owner = 0
		return map[string]any{"edge": req.Edge, "end": end}, nil
	})
}

func (s *Server) handleDragMove(w http.ResponseWriter, r *http.Request) {
	var req pointRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.withBoard(w, r, func(b *boardEntry) (any, error) {
		return b.sess.UpdateAnchorDrag(req.canvas(b.sess))
	})
}

func (s *Server) handleDragEnd(w http.ResponseWriter, r *http.Request) {
	s.withBoard(w, r, func(b *boardEntry) (any, error) {
		idx, _, _ := b.sess.DragTarget()
		sides, err := b.sess.EndAnchorDrag(r.Context())
		if err != nil {
			return nil, err
		}
		b.owner = 0
		return dragEndResponse{Edge: idx, Sides: sides, Scene: b.sess.Scene()}, nil
	})
}

// =============================================================================
// Export
// =============================================================================

func (s *Server) handleExportSVG(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	b, ok := s.board(name)
	if !ok {
		s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "board %q is not loaded", name))
		return
	}

	q := r.URL.Query()
	b.mu.Lock()
	opts := []render.SVGOption{
		render.WithNotes(b.sess.NotesVisible()),
		render.WithHidden(b.sess.Hidden()),
	}
	if q.Get("legend") == "1" || q.Get("legend") == "true" {
		opts = append(opts, render.WithLegend())
	}
	svg := render.RenderSVG(b.sess.Project(), b.sess.Scene(), opts...)
	b.mu.Unlock()

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", name+".svg"))
	_, _ = w.Write(svg)
}
