// Package pipeline provides the core board pipeline for FlowBoard.
//
// This package implements the complete load → layout → route → render
// pipeline used by the CLI and the server. By centralizing this logic, both
// entry points cache, restore and render boards identically.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Load: Read and validate a project file (JSON, TOML or YAML)
//  2. Layout: Compute node positions with a strategy (cached)
//  3. Route: Open a session, restore saved state and route every edge
//  4. Render: Generate outputs (SVG, PNG, PDF, DOT, overview, JSON; cached)
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, store, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Path:    "checkout.yaml",
//	    Formats: []string{"svg", "png"},
//	})
//	svg := result.Artifacts["svg"]
//
// Interactive hosts stop after stage 3 and keep the session:
//
//	s, err := runner.Open(ctx, opts)
package pipeline

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowboard/pkg/board"
	"github.com/matzehuels/flowboard/pkg/cache"
	"github.com/matzehuels/flowboard/pkg/errors"
	"github.com/matzehuels/flowboard/pkg/layout"
	"github.com/matzehuels/flowboard/pkg/route"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultStrategy is the default layout strategy.
	DefaultStrategy = layout.StrategyFlow

	// DefaultScale is the default PNG scale factor.
	DefaultScale = 2.0
)

// Format constants for output formats.
const (
	FormatSVG      = "svg"
	FormatPNG      = "png"
	FormatPDF      = "pdf"
	FormatDOT      = "dot"
	FormatOverview = "overview"
	FormatJSON     = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:      true,
	FormatPNG:      true,
	FormatPDF:      true,
	FormatDOT:      true,
	FormatOverview: true,
	FormatJSON:     true,
}

// Extension returns the file extension for a format.
func Extension(format string) string {
	switch format {
	case FormatOverview:
		return "overview.svg"
	case FormatJSON:
		return "scene.json"
	}
	return format
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the board pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Load options
	Path    string         `json:"path,omitempty"`
	Project *board.Project `json:"project,omitempty"`

	// Layout options
	Strategy string             `json:"strategy,omitempty"`
	CanvasW  float64            `json:"canvas_w,omitempty"`
	CanvasH  float64            `json:"canvas_h,omitempty"`
	GapX     float64            `json:"gap_x,omitempty"`
	GapY     float64            `json:"gap_y,omitempty"`
	Heights  map[string]float64 `json:"heights,omitempty"`

	// Session options
	Restore bool `json:"restore,omitempty"` // Apply the saved board state from the store

	// Render options
	Formats   []string `json:"formats,omitempty"`
	HideNotes bool     `json:"hide_notes,omitempty"`
	Legend    bool     `json:"legend,omitempty"`
	Clusters  bool     `json:"clusters,omitempty"`
	Scale     float64  `json:"scale,omitempty"`

	Refresh bool `json:"refresh,omitempty"` // Bypass the cache

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Project is the loaded project.
	Project *board.Project

	// ProjectHash is the content hash of the project.
	ProjectHash string

	// Positions are the node positions after restore.
	Positions map[string]board.Point

	// Scene holds node rectangles and edge routes.
	Scene route.Scene

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	RouteCount int
	LoadTime   time.Duration
	LayoutTime time.Duration
	RouteTime  time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether positions came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: svg, png, pdf, dot, overview, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ParseFormats splits a comma-separated format list.
func ParseFormats(s string) ([]string, error) {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out, ValidateFormats(out)
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks that a project source is given.
func (o *Options) ValidateForLoad() error {
	if o.Path == "" && o.Project == nil {
		return errors.New(errors.ErrCodeInvalidInput, "project path is required")
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Strategy == "" {
		o.Strategy = string(DefaultStrategy)
	}
	if o.CanvasW == 0 {
		o.CanvasW = layout.DefaultCanvasWidth
	}
	if o.CanvasH == 0 {
		o.CanvasH = layout.DefaultCanvasHeight
	}
	if o.GapX == 0 {
		o.GapX = layout.DefaultGapX
	}
	if o.GapY == 0 {
		o.GapY = layout.DefaultGapY
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	_, err := layout.ParseStrategy(o.Strategy)
	return err
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if o.Scale < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "scale must be positive, got %g", o.Scale)
	}
	return ValidateFormats(o.Formats)
}

// LayoutOptions returns the layout package options.
func (o *Options) LayoutOptions() layout.Options {
	return layout.Options{
		Canvas: board.Size{W: o.CanvasW, H: o.CanvasH},
		GapX:   o.GapX,
		GapY:   o.GapY,
	}.WithDefaults()
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Strategy: o.Strategy,
		CanvasW:  o.CanvasW,
		CanvasH:  o.CanvasH,
		GapX:     o.GapX,
		GapY:     o.GapY,
		Heights:  o.Heights,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string, hidden []string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:   format,
		Notes:    !o.HideNotes,
		Legend:   o.Legend,
		Clusters: o.Clusters,
		Scale:    o.Scale,
		Hidden:   hidden,
	}
}

func (o Options) String() string {
	src := o.Path
	if src == "" && o.Project != nil {
		src = o.Project.Name
	}
	return fmt.Sprintf("%s [%s → %s]", src, o.Strategy, strings.Join(o.Formats, ","))
}
