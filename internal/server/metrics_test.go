package server

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/flowboard/pkg/observability"
)

func TestNewMetricsRegisters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	require.NotNil(t, m)

	m.RequestsTotal.WithLabelValues("GET", "/healthz", "200").Inc()
	m.ActiveSockets.Inc()

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "flowboard_http_requests_total")
	assert.Contains(t, names, "flowboard_http_active_websockets")
}

func TestNewMetricsDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics(reg)
	assert.Panics(t, func() { NewMetrics(reg) })
}

func TestMetricsHooks(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	ctx := context.Background()

	m.OnRequest(ctx, "POST", "/boards/{name}/freeze", 200, 3*time.Millisecond)
	m.OnRequest(ctx, "POST", "/boards/{name}/freeze", 200, time.Millisecond)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("POST", "/boards/{name}/freeze", "200")))

	m.OnLayoutComplete(ctx, "flow", time.Millisecond, nil)
	m.OnLayoutComplete(ctx, "grid", time.Millisecond, stderrors.New("boom"))
	assert.Equal(t, 1, testutil.CollectAndCount(m.LayoutDurationSeconds.WithLabelValues("grid", "error").(prometheus.Histogram)))

	m.OnLoadComplete(ctx, "checkout", 3, 2, time.Millisecond, nil)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProjectsLoadedTotal.WithLabelValues("ok")))

	m.OnDragBegin(ctx, "checkout", "a->b", "to")
	m.OnDragCommit(ctx, "checkout", "a->b", "right", "top")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DragsTotal.WithLabelValues("begin")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DragsTotal.WithLabelValues("commit")))

	m.OnFreeze(ctx, "checkout", 3)
	m.OnFreeze(ctx, "checkout", 0)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.FrozenEdgesTotal))

	m.OnStore(ctx, "redis", "save", time.Millisecond, stderrors.New("down"))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StoreOpsTotal.WithLabelValues("redis", "save", "error")))

	m.OnCacheHit(ctx, "layout")
	m.OnCacheMiss(ctx, "layout")
	m.OnCacheMiss(ctx, "layout")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheOpsTotal.WithLabelValues("layout", "hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheOpsTotal.WithLabelValues("layout", "miss")))
}

func TestMetricsInstall(t *testing.T) {
	t.Cleanup(observability.Reset)

	m := NewMetrics(prometheus.NewRegistry())
	m.Install()

	observability.Session().OnFreeze(context.Background(), "checkout", 4)
	assert.Equal(t, 4.0, testutil.ToFloat64(m.FrozenEdgesTotal))

	observability.Reset()
	observability.Session().OnFreeze(context.Background(), "checkout", 4)
	assert.Equal(t, 4.0, testutil.ToFloat64(m.FrozenEdgesTotal), "reset restores no-op hooks")
}
