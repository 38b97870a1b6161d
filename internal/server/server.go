package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/flowboard/pkg/buildinfo"
	"github.com/matzehuels/flowboard/pkg/pipeline"
	"github.com/matzehuels/flowboard/pkg/session"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// maxBodyBytes bounds request bodies, including uploaded projects.
	maxBodyBytes = 4 << 20

	shutdownTimeout = 10 * time.Second
)

// =============================================================================
// Server
// =============================================================================

// Server serves flowboard sessions. Create it with New.
type Server struct {
	runner   *pipeline.Runner
	logger   *log.Logger
	gatherer prometheus.Gatherer
	metrics  *Metrics
	defaults pipeline.Options

	mu      sync.RWMutex
	boards  map[string]*boardEntry
	sockets atomic.Uint64
}

// boardEntry is one open board. mu serializes every request touching sess.
type boardEntry struct {
	mu   sync.Mutex
	id   string
	sess *session.Session

	// owner is the socket that began the active drag, 0 when the drag was
	// begun over HTTP or none is active.
	owner uint64
}

// ownedBy reports whether socket began the active drag.
func (b *boardEntry) ownedBy(socket uint64) bool {
	return b.sess.Dragging() && b.owner == socket
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithGatherer sets the registry served on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// WithMetrics tracks open websockets on m.
func WithMetrics(m *Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithDefaults sets the pipeline options boards are opened with.
func WithDefaults(opts pipeline.Options) Option {
	return func(s *Server) { s.defaults = opts }
}

// New creates a server backed by runner. The runner's store persists every
// board change.
func New(runner *pipeline.Runner, opts ...Option) *Server {
	s := &Server{
		runner:   runner,
		logger:   log.New(io.Discard),
		gatherer: prometheus.DefaultGatherer,
		boards:   make(map[string]*boardEntry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP handler with all routes registered.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.SetHeader("Server", buildinfo.UserAgent()))
	r.Use(requestID)
	r.Use(s.instrument)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	r.Route("/boards/{name}", func(r chi.Router) {
		r.Put("/", s.handleLoad)
		r.Get("/scene", s.handleScene)
		r.Post("/layout", s.handleLayout)
		r.Post("/nodes/{id}/move", s.handleMoveNode)
		r.Post("/freeze", s.handleFreeze)
		r.Post("/reset", s.handleReset)
		r.Post("/categories/{id}/toggle", s.handleToggleCategory)
		r.Post("/notes/toggle", s.handleToggleNotes)
		r.Put("/viewport", s.handleViewport)
		r.Post("/fit", s.handleFit)
		r.Post("/drag/begin", s.handleDragBegin)
		r.Post("/drag/move", s.handleDragMove)
		r.Post("/drag/end", s.handleDragEnd)
		r.Get("/ws", s.handleWebSocket)
		r.Get("/export.svg", s.handleExportSVG)
	})

	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

// =============================================================================
// Board Registry
// =============================================================================

func (s *Server) board(name string) (*boardEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.boards[name]
	return b, ok
}

// put replaces the board under name. A request holding the old entry's
// lock finishes against the old session.
func (s *Server) put(name string, b *boardEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.boards[name] = b
}

// socketOpened counts an open websocket and returns the func that
// uncounts it.
func (s *Server) socketOpened() func() {
	if s.metrics == nil {
		return func() {}
	}
	s.metrics.ActiveSockets.Inc()
	return s.metrics.ActiveSockets.Dec
}

// Boards returns the names of open boards.
func (s *Server) Boards() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.boards))
	for name := range s.boards {
		names = append(names, name)
	}
	return names
}
