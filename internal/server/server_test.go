package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/flowboard/pkg/board"
	"github.com/matzehuels/flowboard/pkg/buildinfo"
	"github.com/matzehuels/flowboard/pkg/cache"
	"github.com/matzehuels/flowboard/pkg/observability"
	"github.com/matzehuels/flowboard/pkg/pipeline"
	"github.com/matzehuels/flowboard/pkg/session"
)

const testProjectJSON = `{
  "name": "ignored",
  "categories": [{"id": "auth", "color": "#3b82f6"}, {"id": "pay", "color": "#10b981"}],
  "nodes": [
    {"id": "login", "title": "Login", "epic": "auth", "notes": "rate limited"},
    {"id": "cart", "title": "Cart", "epic": "pay"},
    {"id": "done", "title": "Done"}
  ],
  "edges": [
    {"from": "login", "to": "cart", "label": "ok"},
    {"from": "cart", "to": "done", "dashed": true}
  ]
}`

type testEnv struct {
	srv   *Server
	store *session.MemoryStore
	http  *httptest.Server
}

func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()
	store := session.NewMemoryStore()
	runner := pipeline.NewRunner(cache.NewNullCache(), nil, session.Instrument(store, "memory"), nil)
	srv := New(runner, opts...)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return &testEnv{srv: srv, store: store, http: ts}
}

func (e *testEnv) do(t *testing.T, method, path, contentType, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, e.http.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func (e *testEnv) load(t *testing.T) boardView {
	t.Helper()
	resp := e.do(t, http.MethodPut, "/boards/checkout", "application/json", testProjectJSON)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return decode[boardView](t, resp)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(requestIDHeader))
	assert.True(t, strings.HasPrefix(resp.Header.Get("Server"), "flowboard/"))

	health := decode[struct {
		Status string         `json:"status"`
		Build  buildinfo.Info `json:"build"`
	}](t, resp)
	assert.Equal(t, "ok", health.Status)
	assert.NotEmpty(t, health.Build.Version)
}

func TestRequestIDPropagates(t *testing.T) {
	env := newTestEnv(t)
	req, err := http.NewRequest(http.MethodGet, env.http.URL+"/healthz", nil)
	require.NoError(t, err)
	req.Header.Set(requestIDHeader, "req-42")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "req-42", resp.Header.Get(requestIDHeader))
}

func TestLoadBoard(t *testing.T) {
	env := newTestEnv(t)
	view := env.load(t)

	assert.Equal(t, "checkout", view.Board, "URL name wins over the document name")
	assert.NotEmpty(t, view.Session)
	assert.Equal(t, "flow", view.Strategy)
	assert.Len(t, view.Positions, 3)
	assert.Len(t, view.Scene.Routes, 2)
	assert.True(t, view.Notes)
	assert.Empty(t, view.Hidden)
	assert.Equal(t, []string{"checkout"}, env.srv.Boards())
}

func TestLoadBoardFormats(t *testing.T) {
	env := newTestEnv(t)
	yamlBody := "nodes:\n  - id: a\n  - id: b\nedges:\n  - from: a\n    to: b\n"
	resp := env.do(t, http.MethodPut, "/boards/yaml?strategy=grid", "application/yaml", yamlBody)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	view := decode[boardView](t, resp)
	assert.Equal(t, "grid", view.Strategy)
	assert.Len(t, view.Scene.Routes, 1)

	resp = env.do(t, http.MethodPut, "/boards/bad", "text/csv", "a,b")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_FORMAT", decode[errorResponse](t, resp).Code)
}

func TestLoadBoardErrors(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name     string
		path     string
		body     string
		wantCode string
	}{
		{"malformed json", "/boards/checkout", "{", "INVALID_PROJECT"},
		{"dot name", "/boards/.hidden", testProjectJSON, "INVALID_PROJECT"},
		{"dangling edge", "/boards/checkout", `{"nodes":[{"id":"a"}],"edges":[{"from":"a","to":"zz"}]}`, "INVALID_PROJECT"},
		{"bad strategy", "/boards/checkout?strategy=radial", testProjectJSON, "INVALID_STRATEGY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.do(t, http.MethodPut, tt.path, "application/json", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, tt.wantCode, decode[errorResponse](t, resp).Code)
		})
	}
}

func TestUnknownBoard(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodGet, "/boards/nope/scene", "", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decode[errorResponse](t, resp).Code)
}

func TestMoveNode(t *testing.T) {
	env := newTestEnv(t)
	env.load(t)

	resp := env.do(t, http.MethodPost, "/boards/checkout/nodes/login/move", "application/json", `{"x": -100, "y": 20}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[struct {
		Position board.Point `json:"position"`
	}](t, resp)
	assert.Equal(t, board.Point{X: 0, Y: 20}, out.Position)

	st, err := env.store.Load(context.Background(), "checkout")
	require.NoError(t, err)
	require.NotNil(t, st, "move is persisted")
	assert.Equal(t, board.Point{X: 0, Y: 20}, st.Positions["login"])

	resp = env.do(t, http.MethodPost, "/boards/checkout/nodes/ghost/move", "application/json", `{"x": 1, "y": 1}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/boards/checkout/nodes/login/move", "application/json", `not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestToggleCategory(t *testing.T) {
	env := newTestEnv(t)
	env.load(t)

	resp := env.do(t, http.MethodPost, "/boards/checkout/categories/pay/toggle", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[struct {
		Hidden bool `json:"hidden"`
	}](t, resp)
	assert.True(t, out.Hidden)

	view := decode[boardView](t, env.do(t, http.MethodGet, "/boards/checkout/scene", "", ""))
	assert.Equal(t, []string{"pay"}, view.Hidden)
	assert.Empty(t, view.Scene.Routes, "both edges touch the hidden cart node")

	resp = env.do(t, http.MethodPost, "/boards/checkout/categories/nope/toggle", "", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestToggleNotesAndViewport(t *testing.T) {
	env := newTestEnv(t)
	env.load(t)

	out := decode[map[string]bool](t, env.do(t, http.MethodPost, "/boards/checkout/notes/toggle", "", ""))
	assert.False(t, out["notes"])

	resp := env.do(t, http.MethodPut, "/boards/checkout/viewport", "application/json", `{"zoom": 9, "panX": 10, "panY": 5}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	v := decode[map[string]float64](t, resp)
	assert.Equal(t, 2.0, v["zoom"], "zoom is clamped")

	resp = env.do(t, http.MethodPost, "/boards/checkout/fit", "application/json", `{"w": 0, "h": 600}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp = env.do(t, http.MethodPost, "/boards/checkout/fit", "application/json", `{"w": 800, "h": 600}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestFreeze(t *testing.T) {
	env := newTestEnv(t)
	env.load(t)

	out := decode[map[string]int](t, env.do(t, http.MethodPost, "/boards/checkout/freeze", "", ""))
	assert.Equal(t, 2, out["frozen"])
	out = decode[map[string]int](t, env.do(t, http.MethodPost, "/boards/checkout/freeze", "", ""))
	assert.Equal(t, 0, out["frozen"], "freeze is idempotent")
}

func TestLayout(t *testing.T) {
	env := newTestEnv(t)
	env.load(t)

	resp := env.do(t, http.MethodPost, "/boards/checkout/layout?strategy=grid", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "grid", decode[boardView](t, resp).Strategy)

	resp = env.do(t, http.MethodPost, "/boards/checkout/layout?strategy=radial", "", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// topOf returns a point just above the middle of a node's top edge.
func topOf(r board.Rect) board.Point {
	return board.Point{X: r.X + r.W/2, Y: r.Y - 1}
}

func TestDragLifecycle(t *testing.T) {
	env := newTestEnv(t)
	view := env.load(t)
	cart := view.Scene.Nodes["cart"]
	before, ok := view.Scene.Route(0)
	require.True(t, ok)

	resp := env.do(t, http.MethodPost, "/boards/checkout/drag/move", "application/json", `{"x": 1, "y": 1}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "move while idle")

	resp = env.do(t, http.MethodPost, "/boards/checkout/drag/begin", "application/json", `{"edge": 0, "end": "sideways"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/boards/checkout/drag/begin", "application/json", `{"edge": 0, "end": "to"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/boards/checkout/drag/begin", "application/json", `{"edge": 1, "end": "from"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "DRAG_STATE", decode[errorResponse](t, resp).Code)

	resp = env.do(t, http.MethodPost, "/boards/checkout/reset", "", "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "reset during drag")

	p := topOf(cart)
	body, _ := json.Marshal(map[string]float64{"x": p.X, "y": p.Y})
	resp = env.do(t, http.MethodPost, "/boards/checkout/drag/move", "application/json", string(body))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/boards/checkout/drag/end", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[dragEndResponse](t, resp)
	assert.Equal(t, 0, out.Edge)
	assert.Equal(t, before.Sides.From, out.Sides.From, "the other end stays frozen")
	assert.Equal(t, "top", out.Sides.To.String())

	st, err := env.store.Load(context.Background(), "checkout")
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.Equal(t, "top", st.Overrides["login->cart"].ToSide)

	resp = env.do(t, http.MethodPost, "/boards/checkout/reset", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	st, err = env.store.Load(context.Background(), "checkout")
	require.NoError(t, err)
	assert.Empty(t, st.Overrides, "reset clears overrides")
}

func TestStateSurvivesReload(t *testing.T) {
	env := newTestEnv(t)
	env.load(t)
	env.do(t, http.MethodPost, "/boards/checkout/categories/auth/toggle", "", "")

	view := env.load(t)
	assert.Equal(t, []string{"auth"}, view.Hidden)
}

func TestExportSVG(t *testing.T) {
	env := newTestEnv(t)
	env.load(t)

	resp := env.do(t, http.MethodGet, "/boards/checkout/export.svg?legend=1", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.Contains(data, []byte("<svg")))
	assert.Contains(t, string(data), `id="node-login"`)
	assert.Contains(t, string(data), "fb-arrowhead")

	resp = env.do(t, http.MethodGet, "/boards/nope/export.svg", "", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// =============================================================================
// WebSocket
// =============================================================================

func dial(t *testing.T, env *testEnv, board string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(env.http.URL, "http") + "/boards/" + board + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	return conn
}

func roundTrip(t *testing.T, conn *websocket.Conn, req wsRequest) wsResponse {
	t.Helper()
	require.NoError(t, conn.WriteJSON(req))
	var resp wsResponse
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	require.NoError(t, conn.ReadJSON(&resp))
	return resp
}

func TestWebSocketDrag(t *testing.T) {
	env := newTestEnv(t)
	view := env.load(t)
	conn := dial(t, env, "checkout")

	var hello wsResponse
	require.NoError(t, conn.ReadJSON(&hello))
	assert.Equal(t, msgHello, hello.Type)
	assert.Equal(t, view.Session, hello.Session)
	require.NotNil(t, hello.View)

	resp := roundTrip(t, conn, wsRequest{Type: msgBegin, Edge: 0, End: "to"})
	require.Equal(t, msgBegun, resp.Type, resp.Error)
	require.NotNil(t, resp.Edge)
	assert.Equal(t, 0, *resp.Edge)

	p := topOf(view.Scene.Nodes["cart"])
	resp = roundTrip(t, conn, wsRequest{Type: msgMove, X: p.X, Y: p.Y})
	require.Equal(t, msgScene, resp.Type, resp.Error)
	require.NotNil(t, resp.Scene)
	rt, ok := resp.Scene.Route(0)
	require.True(t, ok)
	assert.Equal(t, "top", rt.Sides.To.String())

	resp = roundTrip(t, conn, wsRequest{Type: msgEnd})
	require.Equal(t, msgCommitted, resp.Type, resp.Error)
	require.NotNil(t, resp.Sides)
	assert.Equal(t, "top", resp.Sides.To.String())

	resp = roundTrip(t, conn, wsRequest{Type: msgEnd})
	assert.Equal(t, msgError, resp.Type)
	assert.Equal(t, "DRAG_STATE", resp.Code)

	resp = roundTrip(t, conn, wsRequest{Type: "wiggle"})
	assert.Equal(t, msgError, resp.Type)
	assert.Equal(t, "INVALID_INPUT", resp.Code)
}

func TestWebSocketDisconnectCommits(t *testing.T) {
	env := newTestEnv(t)
	env.load(t)
	conn := dial(t, env, "checkout")

	var hello wsResponse
	require.NoError(t, conn.ReadJSON(&hello))
	resp := roundTrip(t, conn, wsRequest{Type: msgBegin, Edge: 1, End: "from"})
	require.Equal(t, msgBegun, resp.Type, resp.Error)
	conn.Close()

	require.Eventually(t, func() bool {
		r, err := http.Get(env.http.URL + "/boards/checkout/scene")
		if err != nil {
			return false
		}
		defer r.Body.Close()
		var v boardView
		return json.NewDecoder(r.Body).Decode(&v) == nil && !v.Dragging
	}, 2*time.Second, 20*time.Millisecond)

	st, err := env.store.Load(context.Background(), "checkout")
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.Contains(t, st.Overrides, "cart->done", "the frozen sides were committed")
}

func TestWebSocketDragOwnership(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	env := newTestEnv(t, WithMetrics(m))
	env.load(t)
	conn := dial(t, env, "checkout")

	var hello wsResponse
	require.NoError(t, conn.ReadJSON(&hello))
	resp := roundTrip(t, conn, wsRequest{Type: msgBegin, Edge: 0, End: "to"})
	require.Equal(t, msgBegun, resp.Type, resp.Error)

	// An HTTP client may finish the socket's drag and start its own.
	r := env.do(t, http.MethodPost, "/boards/checkout/drag/end", "", "")
	require.Equal(t, http.StatusOK, r.StatusCode)
	r = env.do(t, http.MethodPost, "/boards/checkout/drag/begin", "application/json", `{"edge": 1, "end": "from"}`)
	require.Equal(t, http.StatusOK, r.StatusCode)

	resp = roundTrip(t, conn, wsRequest{Type: msgMove, X: 1, Y: 1})
	assert.Equal(t, msgError, resp.Type)
	assert.Equal(t, "DRAG_STATE", resp.Code)
	resp = roundTrip(t, conn, wsRequest{Type: msgEnd})
	assert.Equal(t, msgError, resp.Type)
	assert.Equal(t, "DRAG_STATE", resp.Code)

	conn.Close()
	require.Eventually(t, func() bool {
		return testutil.ToFloat64(m.ActiveSockets) == 0
	}, 2*time.Second, 20*time.Millisecond)

	view := decode[boardView](t, env.do(t, http.MethodGet, "/boards/checkout/scene", "", ""))
	assert.True(t, view.Dragging, "closing the socket leaves the HTTP drag alone")

	r = env.do(t, http.MethodPost, "/boards/checkout/drag/end", "", "")
	require.Equal(t, http.StatusOK, r.StatusCode)
	assert.Equal(t, 1, decode[dragEndResponse](t, r).Edge)
}

func TestWebSocketUnknownBoard(t *testing.T) {
	env := newTestEnv(t)
	url := "ws" + strings.TrimPrefix(env.http.URL, "http") + "/boards/nope/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// =============================================================================
// Metrics
// =============================================================================

func TestMetricsEndpoint(t *testing.T) {
	t.Cleanup(observability.Reset)

	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.Install()

	env := newTestEnv(t, WithGatherer(reg), WithMetrics(m))
	env.load(t)
	env.do(t, http.MethodPost, "/boards/checkout/freeze", "", "")

	resp := env.do(t, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	body := string(data)

	assert.Contains(t, body, `flowboard_http_requests_total{method="PUT"`)
	assert.Contains(t, body, "flowboard_session_frozen_edges_total 2")
	assert.Contains(t, body, `flowboard_store_operations_total{backend="memory",op="load",status="ok"} 1`)
	assert.Contains(t, body, `flowboard_store_operations_total{backend="memory",op="save",status="ok"}`)
}
