package cache

import "strings"

// namespacedKeyer prefixes every key so several flowboard servers can share
// one redis database without reading each other's entries.
type namespacedKeyer struct {
	Keyer
	prefix string
}

// Namespace scopes inner to ns. Keys become "ns:layout:..." and
// "ns:artifact:...". An empty ns returns inner unchanged and a nil inner
// falls back to the default keyer.
//
//	keyer := cache.Namespace(cache.NewDefaultKeyer(), "staging")
func Namespace(inner Keyer, ns string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	ns = strings.TrimSuffix(ns, ":")
	if ns == "" {
		return inner
	}
	return namespacedKeyer{Keyer: inner, prefix: ns + ":"}
}

func (k namespacedKeyer) LayoutKey(projectHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.Keyer.LayoutKey(projectHash, opts)
}

func (k namespacedKeyer) ArtifactKey(sceneHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.Keyer.ArtifactKey(sceneHash, opts)
}
