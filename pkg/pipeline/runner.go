package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowboard/pkg/board"
	"github.com/matzehuels/flowboard/pkg/cache"
	"github.com/matzehuels/flowboard/pkg/layout"
	"github.com/matzehuels/flowboard/pkg/route"
	"github.com/matzehuels/flowboard/pkg/session"
)

// Runner encapsulates pipeline execution with caching and board state.
// Both CLI and server use this to avoid duplicating caching logic.
//
// The Runner is stateless except for its backends - it doesn't store
// pipeline results. Multiple goroutines can safely use the same Runner with
// different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Store  session.Store
	Logger *log.Logger
}

// NewRunner creates a runner with the given backends.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// A nil store disables saved board state.
func NewRunner(c cache.Cache, keyer cache.Keyer, store session.Store, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Store:  store,
		Logger: logger,
	}
}

// Execute runs the complete load → layout → route → render pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}

	// Stage 1: Load
	loadStart := time.Now()
	p, err := Load(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Project = p
	result.ProjectHash, _ = cache.HashJSON(p)
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.NodeCount = p.NodeCount()
	result.Stats.EdgeCount = p.EdgeCount()

	r.Logger.Info("loaded project",
		"project", p.Name,
		"nodes", p.NodeCount(),
		"edges", p.EdgeCount(),
		"duration", result.Stats.LoadTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	res, layoutHit, err := r.LayoutWithCacheInfo(ctx, p, result.ProjectHash, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"strategy", opts.Strategy,
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Route
	routeStart := time.Now()
	s, err := r.session(ctx, p, res, opts)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	result.Scene = s.Scene()
	result.Positions = make(map[string]board.Point, len(p.Nodes))
	for _, n := range p.Nodes {
		if pos, ok := s.Position(n.ID); ok {
			result.Positions[n.ID] = pos
		}
	}
	result.Stats.RouteTime = time.Since(routeStart)
	result.Stats.RouteCount = len(result.Scene.Routes)
	if !s.NotesVisible() {
		opts.HideNotes = true
	}

	r.Logger.Debug("routed edges",
		"routes", result.Stats.RouteCount,
		"hidden", s.Hidden(),
		"duration", result.Stats.RouteTime)

	// Stage 4: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, p, result.ProjectHash, result.Scene, s.Hidden(), opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Open loads the project and returns a live session on it, restored from
// and persisting to the runner's store.
func (r *Runner) Open(ctx context.Context, opts Options) (*session.Session, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLoad(); err != nil {
		return nil, err
	}
	if err := opts.ValidateForLayout(); err != nil {
		return nil, err
	}

	p, err := Load(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	hash, _ := cache.HashJSON(p)
	res, _, err := r.LayoutWithCacheInfo(ctx, p, hash, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	return session.Open(ctx, p, r.Store, r.sessionConfig(res, opts))
}

func (r *Runner) session(ctx context.Context, p *board.Project, res layout.Result, opts Options) (*session.Session, error) {
	cfg := r.sessionConfig(res, opts)
	if opts.Restore && r.Store != nil {
		return session.Open(ctx, p, readOnly{r.Store}, cfg)
	}
	return session.New(p, cfg)
}

func (r *Runner) sessionConfig(res layout.Result, opts Options) session.Config {
	return session.Config{
		Strategy:  layout.Strategy(opts.Strategy),
		Layout:    opts.LayoutOptions(),
		Heights:   opts.Heights,
		Logger:    opts.Logger,
		Positions: res.Positions,
	}
}

// readOnly keeps a batch run from writing back to the store.
type readOnly struct{ session.Store }

func (readOnly) Save(context.Context, string, *session.State) error { return nil }

// LayoutWithCacheInfo computes node positions with caching and reports
// whether they came from the cache.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, p *board.Project, projectHash string, opts Options) (layout.Result, bool, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return layout.Result{}, false, err
	}
	cacheKey := r.Keyer.LayoutKey(projectHash, opts.LayoutKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cached layout.Result
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, true, nil
			}
		}
	}

	res, err := ComputeLayout(ctx, p, opts)
	if err != nil {
		return layout.Result{}, false, err
	}

	if data, err := json.Marshal(res); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout); err != nil {
			r.Logger.Warn("cache layout", "err", err)
		}
	}
	return res, false, nil
}

// RenderWithCacheInfo generates artifacts with caching and reports whether
// all of them came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, p *board.Project, projectHash string, scene route.Scene, hidden []string, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	sceneHash, err := cache.HashJSON([]any{projectHash, scene})
	if err != nil {
		return nil, false, fmt.Errorf("hash scene: %w", err)
	}

	if !opts.Refresh {
		artifacts := make(map[string][]byte, len(opts.Formats))
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(sceneHash, opts.ArtifactKeyOpts(format, hidden))
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil || !hit {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil
		}
	}

	rendered, err := Render(ctx, p, scene, hidden, opts)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(sceneHash, opts.ArtifactKeyOpts(format, hidden))
		_ = r.Cache.Set(ctx, key, data, cache.TTLArtifact)
	}
	return rendered, false, nil
}

// Close releases resources held by the runner.
func (r *Runner) Close() error {
	var err error
	if r.Cache != nil {
		err = r.Cache.Close()
	}
	if r.Store != nil {
		if serr := r.Store.Close(); err == nil {
			err = serr
		}
	}
	return err
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
