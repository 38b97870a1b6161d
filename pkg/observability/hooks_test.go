package observability

import (
	"context"
	"sync"
	"testing"
	"time"
)

type recordingSession struct {
	NoopSessionHooks
	mu      sync.Mutex
	commits []string
}

func (r *recordingSession) OnDragCommit(_ context.Context, _, edgeKey, from, to string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commits = append(r.commits, edgeKey+" "+from+"/"+to)
}

type testPipelineHooks struct{ NoopPipelineHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }

func TestDefaultsAreNoop(t *testing.T) {
	Reset()
	ctx := context.Background()

	// None of these may panic.
	Pipeline().OnLoadComplete(ctx, "checkout", 12, 20, time.Millisecond, nil)
	Pipeline().OnLayoutStart(ctx, "flow", 12)
	Pipeline().OnLayoutComplete(ctx, "flow", time.Millisecond, nil)
	Pipeline().OnRouteComplete(ctx, 20, time.Millisecond)
	Pipeline().OnRenderStart(ctx, []string{"svg"})
	Pipeline().OnRenderComplete(ctx, []string{"svg"}, time.Second, nil)
	Session().OnDragBegin(ctx, "checkout", "login->cart", "from")
	Session().OnDragCommit(ctx, "checkout", "login->cart", "right-upper", "left")
	Session().OnFreeze(ctx, "checkout", 3)
	Session().OnStore(ctx, "file", "save", time.Millisecond, nil)
	Cache().OnCacheHit(ctx, "layout")
	Cache().OnCacheMiss(ctx, "layout")
	Cache().OnCacheSet(ctx, "artifact", 1024)
	HTTP().OnRequest(ctx, "GET", "/boards/{name}/scene", 200, time.Millisecond)

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Errorf("Pipeline() = %T, want NoopPipelineHooks", Pipeline())
	}
	if _, ok := Session().(NoopSessionHooks); !ok {
		t.Errorf("Session() = %T, want NoopSessionHooks", Session())
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Errorf("Cache() = %T, want NoopCacheHooks", Cache())
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Errorf("HTTP() = %T, want NoopHTTPHooks", HTTP())
	}
}

func TestSetAndReset(t *testing.T) {
	defer Reset()

	p, s, c, h := &testPipelineHooks{}, &recordingSession{}, &testCacheHooks{}, &testHTTPHooks{}
	SetPipelineHooks(p)
	SetSessionHooks(s)
	SetCacheHooks(c)
	SetHTTPHooks(h)

	if Pipeline() != p || Session() != s || Cache() != c || HTTP() != h {
		t.Fatal("Set* should install the given hooks")
	}

	Session().OnDragCommit(context.Background(), "checkout", "login->cart", "right", "top")
	if len(s.commits) != 1 || s.commits[0] != "login->cart right/top" {
		t.Errorf("commits = %v", s.commits)
	}

	Reset()
	if _, ok := Session().(NoopSessionHooks); !ok {
		t.Error("Reset() should restore NoopSessionHooks")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("Reset() should restore NoopHTTPHooks")
	}
}

func TestSetNilIsIgnored(t *testing.T) {
	defer Reset()

	custom := &recordingSession{}
	SetSessionHooks(custom)
	SetSessionHooks(nil)
	if Session() != custom {
		t.Error("SetSessionHooks(nil) should keep the current hooks")
	}

	SetPipelineHooks(nil)
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("SetPipelineHooks(nil) should keep the defaults")
	}
}

func TestConcurrentAccess(t *testing.T) {
	defer Reset()
	rec := &recordingSession{}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			SetSessionHooks(rec)
		}()
		go func() {
			defer wg.Done()
			Session().OnFreeze(context.Background(), "checkout", 1)
		}()
	}
	wg.Wait()

	if Session() != rec {
		t.Error("Session() should return the installed hooks")
	}
}
