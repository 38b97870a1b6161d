// Package cache stores computed layouts and rendered artifacts.
//
// Layouts are pure functions of the project, the heights and the layout
// options, and rendering is a pure function of the scene and the render
// options. Both are keyed by content hash so an unchanged board is never
// laid out or rendered twice:
//
//	c, _ := cache.NewFileCache(cache.DefaultDir())
//	c = cache.Instrument(c)
//	hash, _ := cache.HashJSON(project)
//	key := cache.NewDefaultKeyer().LayoutKey(hash, opts)
//	if data, ok, _ := c.Get(ctx, key); ok {
//	    // reuse
//	}
//
// Backends:
//   - [FileCache]: hashed files under ~/.cache/flowboard (CLI)
//   - [RedisCache]: shared cache for servers
//   - [NullCache]: disables caching
//
// [Namespace] prefixes keys so several servers can share one backend, and
// remote backends retry transient failures per [Backoff].
package cache
