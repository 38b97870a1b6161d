package cache

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/matzehuels/flowboard/pkg/observability"
)

// Cache is a byte-oriented key/value cache with optional expiry.
type Cache interface {
	// Get returns the cached value and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// DefaultDir returns the CLI cache directory, honoring XDG_CACHE_HOME.
func DefaultDir() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, "flowboard")
	}
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "flowboard")
	}
	return filepath.Join(os.TempDir(), "flowboard-cache")
}

type instrumented struct {
	Cache
}

// Instrument reports hits, misses and writes on c to the cache hooks.
func Instrument(c Cache) Cache {
	if _, ok := c.(*instrumented); ok {
		return c
	}
	return &instrumented{Cache: c}
}

func (c *instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := c.Cache.Get(ctx, key)
	if err == nil {
		if ok {
			observability.Cache().OnCacheHit(ctx, keyType(key))
		} else {
			observability.Cache().OnCacheMiss(ctx, keyType(key))
		}
	}
	return data, ok, err
}

func (c *instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	err := c.Cache.Set(ctx, key, data, ttl)
	if err == nil {
		observability.Cache().OnCacheSet(ctx, keyType(key), len(data))
	}
	return err
}

// keyType extracts "layout" or "artifact" from a possibly scoped key.
func keyType(key string) string {
	parts := strings.Split(key, ":")
	if len(parts) < 2 {
		return "other"
	}
	return parts[len(parts)-2]
}

// Entry lifetimes. Keys are content hashes, so entries never go stale; the
// TTLs only bound disk and memory use.
const (
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)
