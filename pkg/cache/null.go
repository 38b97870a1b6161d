package cache

import (
	"context"
	"time"
)

// NullCache always misses and discards writes. The CLI falls back to it for
// --no-cache and whenever the configured backend cannot be opened.
type NullCache struct{}

// NewNullCache returns a cache that stores nothing.
func NewNullCache() *NullCache { return &NullCache{} }

// Get always reports a miss.
func (*NullCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, nil
}

func (*NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (*NullCache) Delete(context.Context, string) error { return nil }

func (*NullCache) Close() error { return nil }

var _ Cache = (*NullCache)(nil)
