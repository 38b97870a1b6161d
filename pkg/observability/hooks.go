// Package observability lets flowboard report what it is doing without
// depending on a metrics backend.
//
// Each subsystem emits events through a hook interface. The defaults do
// nothing; "flowboard serve" installs Prometheus-backed hooks at startup and
// the CLI keeps the defaults:
//
//	observability.SetSessionHooks(metrics)
//	...
//	observability.Session().OnDragCommit(ctx, board, "login->cart", "right", "top")
//
// Hooks are read on every event, so implementations must be safe for
// concurrent use.
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from project loading, layout, routing and
// rendering. Layout and route events also fire for session relayouts.
type PipelineHooks interface {
	OnLoadComplete(ctx context.Context, project string, nodeCount, edgeCount int, duration time.Duration, err error)
	OnLayoutStart(ctx context.Context, strategy string, nodeCount int)
	OnLayoutComplete(ctx context.Context, strategy string, duration time.Duration, err error)
	OnRouteComplete(ctx context.Context, edgeCount int, duration time.Duration)
	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// =============================================================================
// Session Hooks
// =============================================================================

// SessionHooks receives events from interactive board sessions.
type SessionHooks interface {
	// OnDragBegin records the start of an anchor drag.
	OnDragBegin(ctx context.Context, project, edgeKey, end string)

	// OnDragCommit records a committed anchor drag with the final sides.
	OnDragCommit(ctx context.Context, project, edgeKey, from, to string)

	// OnFreeze records a bulk freeze and how many edges it changed.
	OnFreeze(ctx context.Context, project string, frozen int)

	// OnStore records a board-state store operation ("load", "save", "delete").
	OnStore(ctx context.Context, backend, op string, duration time.Duration, err error)
}

// =============================================================================
// Cache and HTTP Hooks
// =============================================================================

// CacheHooks receives layout and artifact cache events. keyType is
// "layout", "artifact" or "other".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives one event per served request. route is the matched
// chi pattern, not the raw path.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnLoadComplete(context.Context, string, int, int, time.Duration, error) {
}
func (NoopPipelineHooks) OnLayoutStart(context.Context, string, int)                       {}
func (NoopPipelineHooks) OnLayoutComplete(context.Context, string, time.Duration, error)   {}
func (NoopPipelineHooks) OnRouteComplete(context.Context, int, time.Duration)              {}
func (NoopPipelineHooks) OnRenderStart(context.Context, []string)                          {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {}

// NoopSessionHooks is a no-op implementation of SessionHooks.
type NoopSessionHooks struct{}

func (NoopSessionHooks) OnDragBegin(context.Context, string, string, string)           {}
func (NoopSessionHooks) OnDragCommit(context.Context, string, string, string, string)  {}
func (NoopSessionHooks) OnFreeze(context.Context, string, int)                         {}
func (NoopSessionHooks) OnStore(context.Context, string, string, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Registry
// =============================================================================

// slot holds one registered hook implementation.
type slot[T any] struct {
	v    atomic.Pointer[T]
	noop T
}

func newSlot[T any](noop T) *slot[T] {
	s := &slot[T]{noop: noop}
	s.reset()
	return s
}

func (s *slot[T]) get() T { return *s.v.Load() }

func (s *slot[T]) reset() { s.v.Store(&s.noop) }

// set ignores a nil implementation.
func (s *slot[T]) set(h T) {
	if any(h) != nil {
		s.v.Store(&h)
	}
}

var (
	pipelineSlot = newSlot[PipelineHooks](NoopPipelineHooks{})
	sessionSlot  = newSlot[SessionHooks](NoopSessionHooks{})
	cacheSlot    = newSlot[CacheHooks](NoopCacheHooks{})
	httpSlot     = newSlot[HTTPHooks](NoopHTTPHooks{})
)

// SetPipelineHooks registers pipeline hooks. Call it at startup.
func SetPipelineHooks(h PipelineHooks) { pipelineSlot.set(h) }

// SetSessionHooks registers session and store hooks.
func SetSessionHooks(h SessionHooks) { sessionSlot.set(h) }

// SetCacheHooks registers cache hooks.
func SetCacheHooks(h CacheHooks) { cacheSlot.set(h) }

// SetHTTPHooks registers HTTP hooks.
func SetHTTPHooks(h HTTPHooks) { httpSlot.set(h) }

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks { return pipelineSlot.get() }

// Session returns the registered session hooks.
func Session() SessionHooks { return sessionSlot.get() }

// Cache returns the registered cache hooks.
func Cache() CacheHooks { return cacheSlot.get() }

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks { return httpSlot.get() }

// Reset restores the no-op hooks. Tests that install hooks defer it.
func Reset() {
	pipelineSlot.reset()
	sessionSlot.reset()
	cacheSlot.reset()
	httpSlot.reset()
}
