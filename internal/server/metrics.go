package server

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/matzehuels/flowboard/pkg/observability"
)

// =============================================================================
// Metric Definitions
// =============================================================================

const metricsNamespace = "flowboard"

// Metrics records pipeline, session, cache and HTTP events as Prometheus
// metrics. It implements every hook interface in pkg/observability.
type Metrics struct {
	// RequestsTotal counts served requests.
	// Labels: method, route, status
	RequestsTotal *prometheus.CounterVec

	// RequestDurationSeconds measures request latency.
	// Labels: method, route
	RequestDurationSeconds *prometheus.HistogramVec

	// LayoutDurationSeconds measures layout computation.
	// Labels: strategy, status
	LayoutDurationSeconds *prometheus.HistogramVec

	// RenderDurationSeconds measures artifact rendering.
	// Labels: status
	RenderDurationSeconds *prometheus.HistogramVec

	// RoutedEdges observes how many edges each routing pass drew.
	RoutedEdges prometheus.Histogram

	// ProjectsLoadedTotal counts project loads.
	// Labels: status
	ProjectsLoadedTotal *prometheus.CounterVec

	// DragsTotal counts anchor drag events.
	// Labels: event (begin, commit)
	DragsTotal *prometheus.CounterVec

	// FrozenEdgesTotal counts edges pinned by freeze.
	FrozenEdgesTotal prometheus.Counter

	// StoreOpsTotal counts board-state store operations.
	// Labels: backend, op, status
	StoreOpsTotal *prometheus.CounterVec

	// StoreDurationSeconds measures store latency.
	// Labels: backend, op
	StoreDurationSeconds *prometheus.HistogramVec

	// CacheOpsTotal counts cache lookups and writes.
	// Labels: key_type, result (hit, miss, set)
	CacheOpsTotal *prometheus.CounterVec

	// ActiveSockets tracks open websocket connections.
	ActiveSockets prometheus.Gauge
}

// NewMetrics creates the metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		RequestDurationSeconds: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request latency in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		LayoutDurationSeconds: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: "pipeline",
				Name:      "layout_duration_seconds",
				Help:      "Layout computation time in seconds",
				Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
			},
			[]string{"strategy", "status"},
		),
		RenderDurationSeconds: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: "pipeline",
				Name:      "render_duration_seconds",
				Help:      "Artifact rendering time in seconds",
				Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"status"},
		),
		RoutedEdges: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: "pipeline",
				Name:      "routed_edges",
				Help:      "Edges routed per routing pass",
				Buckets:   []float64{1, 5, 10, 25, 50, 100, 250},
			},
		),
		ProjectsLoadedTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "pipeline",
				Name:      "projects_loaded_total",
				Help:      "Project loads by status",
			},
			[]string{"status"},
		),
		DragsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "session",
				Name:      "anchor_drags_total",
				Help:      "Anchor drag events by kind",
			},
			[]string{"event"},
		),
		FrozenEdgesTotal: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "session",
				Name:      "frozen_edges_total",
				Help:      "Edges pinned to their resolved sides by freeze",
			},
		),
		StoreOpsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "store",
				Name:      "operations_total",
				Help:      "Board-state store operations by backend, op and status",
			},
			[]string{"backend", "op", "status"},
		),
		StoreDurationSeconds: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: "store",
				Name:      "operation_duration_seconds",
				Help:      "Board-state store latency in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"backend", "op"},
		),
		CacheOpsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "cache",
				Name:      "operations_total",
				Help:      "Cache operations by key type and result",
			},
			[]string{"key_type", "result"},
		),
		ActiveSockets: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: "http",
				Name:      "active_websockets",
				Help:      "Open websocket connections",
			},
		),
	}
}

// Install registers m as the global observability hooks.
func (m *Metrics) Install() {
	observability.SetPipelineHooks(m)
	observability.SetSessionHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// =============================================================================
// Hook Implementations
// =============================================================================

func (m *Metrics) OnLoadComplete(_ context.Context, _ string, _, _ int, _ time.Duration, err error) {
	m.ProjectsLoadedTotal.WithLabelValues(status(err)).Inc()
}

func (m *Metrics) OnLayoutStart(context.Context, string, int) {}

func (m *Metrics) OnLayoutComplete(_ context.Context, strategy string, d time.Duration, err error) {
	m.LayoutDurationSeconds.WithLabelValues(strategy, status(err)).Observe(d.Seconds())
}

func (m *Metrics) OnRouteComplete(_ context.Context, edgeCount int, _ time.Duration) {
	m.RoutedEdges.Observe(float64(edgeCount))
}

func (m *Metrics) OnRenderStart(context.Context, []string) {}

func (m *Metrics) OnRenderComplete(_ context.Context, _ []string, d time.Duration, err error) {
	m.RenderDurationSeconds.WithLabelValues(status(err)).Observe(d.Seconds())
}

func (m *Metrics) OnDragBegin(context.Context, string, string, string) {
	m.DragsTotal.WithLabelValues("begin").Inc()
}

func (m *Metrics) OnDragCommit(context.Context, string, string, string, string) {
	m.DragsTotal.WithLabelValues("commit").Inc()
}

func (m *Metrics) OnFreeze(_ context.Context, _ string, frozen int) {
	m.FrozenEdgesTotal.Add(float64(frozen))
}

func (m *Metrics) OnStore(_ context.Context, backend, op string, d time.Duration, err error) {
	m.StoreOpsTotal.WithLabelValues(backend, op, status(err)).Inc()
	m.StoreDurationSeconds.WithLabelValues(backend, op).Observe(d.Seconds())
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.CacheOpsTotal.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.CacheOpsTotal.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, _ int) {
	m.CacheOpsTotal.WithLabelValues(keyType, "set").Inc()
}

func (m *Metrics) OnRequest(_ context.Context, method, route string, code int, d time.Duration) {
	m.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.RequestDurationSeconds.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ observability.PipelineHooks = (*Metrics)(nil)
	_ observability.SessionHooks  = (*Metrics)(nil)
	_ observability.CacheHooks    = (*Metrics)(nil)
	_ observability.HTTPHooks     = (*Metrics)(nil)
)
