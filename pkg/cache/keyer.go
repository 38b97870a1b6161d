package cache

import (
	"maps"
	"slices"
)

// Keyer derives cache keys. Every option that changes the cached value is
// part of the key.
type Keyer interface {
	// LayoutKey keys computed node positions.
	LayoutKey(projectHash string, opts LayoutKeyOpts) string

	// ArtifactKey keys a rendered export.
	ArtifactKey(sceneHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts holds the inputs of a layout besides the project.
type LayoutKeyOpts struct {
	Strategy string
	CanvasW  float64
	CanvasH  float64
	GapX     float64
	GapY     float64
	Heights  map[string]float64
}

// ArtifactKeyOpts holds the inputs of a render besides the scene.
type ArtifactKeyOpts struct {
	Format   string
	Notes    bool
	Legend   bool
	Clusters bool
	Scale    float64
	Hidden   []string
}

// DefaultKeyer hashes key options with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey generates a key for layout caching.
func (DefaultKeyer) LayoutKey(projectHash string, opts LayoutKeyOpts) string {
	ids := slices.Sorted(maps.Keys(opts.Heights))
	heights := make([]float64, len(ids))
	for i, id := range ids {
		heights[i] = opts.Heights[id]
	}
	return hashKey("layout", projectHash, opts.Strategy, opts.CanvasW, opts.CanvasH, opts.GapX, opts.GapY, ids, heights)
}

// ArtifactKey generates a key for artifact caching.
func (DefaultKeyer) ArtifactKey(sceneHash string, opts ArtifactKeyOpts) string {
	hidden := slices.Clone(opts.Hidden)
	slices.Sort(hidden)
	return hashKey("artifact", sceneHash, opts.Format, opts.Notes, opts.Legend, opts.Clusters, opts.Scale, hidden)
}
