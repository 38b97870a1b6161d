package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/matzehuels/flowboard/pkg/anchor"
	"github.com/matzehuels/flowboard/pkg/errors"
	"github.com/matzehuels/flowboard/pkg/route"
	"github.com/matzehuels/flowboard/pkg/session"
)

const (
	wsWriteTimeout = 5 * time.Second
	wsReadLimit    = 64 << 10
)

var upgrader = websocket.Upgrader{
	CheckOrigin:     func(r *http.Request) bool { return true },
	ReadBufferSize:  4096,
	WriteBufferSize: 64 << 10,
}

// Message types on the drag stream.
const (
	msgHello     = "hello"
	msgBegin     = "begin"
	msgBegun     = "begun"
	msgMove      = "move"
	msgEnd       = "end"
	msgScene     = "scene"
	msgCommitted = "committed"
	msgError     = "error"
)

// wsRequest is a client message.
type wsRequest struct {
	Type   string  `json:"type"`
	Edge   int     `json:"edge,omitempty"`
	End    string  `json:"end,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	Client bool    `json:"client,omitempty"`
}

// wsResponse is a server message. Only the fields relevant to Type are set.
type wsResponse struct {
	Type    string        `json:"type"`
	Session string        `json:"session,omitempty"`
	View    *boardView    `json:"view,omitempty"`
	Scene   *route.Scene  `json:"scene,omitempty"`
	Edge    *int          `json:"edge,omitempty"`
	End     string        `json:"end,omitempty"`
	Sides   *anchor.Sides `json:"sides,omitempty"`
	Error   string        `json:"error,omitempty"`
	Code    string        `json:"code,omitempty"`
}

// handleWebSocket streams a drag: each move is answered with the re-routed
// scene. A drag this connection began is committed if the client goes away.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	b, ok := s.board(name)
	if !ok {
		s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "board %q is not loaded", name))
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade", "board", name, "err", err)
		return
	}
	defer ws.Close()
	ws.SetReadLimit(wsReadLimit)

	observe := s.socketOpened()
	defer observe()

	ctx := r.Context()
	socket := s.sockets.Add(1)
	defer func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if !b.ownedBy(socket) {
			return
		}
		b.owner = 0
		if _, err := b.sess.EndAnchorDrag(ctx); err == nil {
			s.logger.Info("committed drag on disconnect", "board", name)
		}
	}()

	b.mu.Lock()
	view := viewOf(b)
	b.mu.Unlock()
	if err := s.send(ws, wsResponse{Type: msgHello, Session: b.id, View: &view}); err != nil {
		return
	}

	for {
		var req wsRequest
		if err := ws.ReadJSON(&req); err != nil {
			s.logger.Debug("websocket closed", "board", name, "err", err)
			return
		}

		b.mu.Lock()
		resp := s.dispatch(r, b, req, socket)
		b.mu.Unlock()

		if err := s.send(ws, resp); err != nil {
			return
		}
	}
}

// dispatch applies one client message. Callers hold b.mu. Only the socket
// that began a drag may move or end it.
func (s *Server) dispatch(r *http.Request, b *boardEntry, req wsRequest, socket uint64) wsResponse {
	ctx := r.Context()
	switch req.Type {
	case msgBegin:
		end, err := session.ParseEnd(req.End)
		if err != nil {
			return errorMessage(err)
		}
		if err := b.sess.BeginAnchorDrag(ctx, req.Edge, end); err != nil {
			return errorMessage(err)
		}
		b.owner = socket
		edge := req.Edge
		return wsResponse{Type: msgBegun, Edge: &edge, End: string(end)}

	case msgMove:
		if err := checkOwner(b, socket); err != nil {
			return errorMessage(err)
		}
		p := pointRequest{X: req.X, Y: req.Y, Client: req.Client}
		scene, err := b.sess.UpdateAnchorDrag(p.canvas(b.sess))
		if err != nil {
			return errorMessage(err)
		}
		return wsResponse{Type: msgScene, Scene: &scene}

	case msgEnd:
		if err := checkOwner(b, socket); err != nil {
			return errorMessage(err)
		}
		idx, _, _ := b.sess.DragTarget()
		sides, err := b.sess.EndAnchorDrag(ctx)
		if err != nil {
			return errorMessage(err)
		}
		b.owner = 0
		scene := b.sess.Scene()
		return wsResponse{Type: msgCommitted, Edge: &idx, Sides: &sides, Scene: &scene}

	case msgScene:
		scene := b.sess.Scene()
		return wsResponse{Type: msgScene, Scene: &scene}
	}
	return errorMessage(errors.New(errors.ErrCodeInvalidInput, "unknown message type %q", req.Type))
}

// checkOwner rejects a move or end on a drag another client began. With no
// active drag the session reports its own error.
func checkOwner(b *boardEntry, socket uint64) error {
	if b.sess.Dragging() && b.owner != socket {
		return errors.New(errors.ErrCodeDragState, "drag was begun by another client")
	}
	return nil
}

func errorMessage(err error) wsResponse {
	return wsResponse{Type: msgError, Error: errors.UserMessage(err), Code: string(errors.GetCode(err))}
}

func (s *Server) send(ws *websocket.Conn, v wsResponse) error {
	_ = ws.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	if err := ws.WriteJSON(v); err != nil {
		s.logger.Warn("websocket write", "err", err)
		return err
	}
	return nil
}
