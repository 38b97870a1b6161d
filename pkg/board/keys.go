package board

import "strconv"

// EdgeKey identifies an edge across edits. It is the edge's ID when set,
// otherwise "from->to", with "#n" appended for the n-th repeat of the same
// ordered pair (n ≥ 1).
type EdgeKey string

// EdgeKeys returns the key of every edge, index-aligned with edges.
//
// Keys of edges without an ID depend only on earlier edges with the same
// ordered pair, so inserting an unrelated edge never changes an existing key.
func EdgeKeys(edges []Edge) []EdgeKey {
	keys := make([]EdgeKey, len(edges))
	seen := make(map[string]int, len(edges))
	for i, e := range edges {
		if e.ID != "" {
			keys[i] = EdgeKey(e.ID)
			continue
		}
		pair := e.From + "->" + e.To
		n := seen[pair]
		seen[pair] = n + 1
		if n == 0 {
			keys[i] = EdgeKey(pair)
		} else {
			keys[i] = EdgeKey(pair + "#" + strconv.Itoa(n))
		}
	}
	return keys
}

// IndexOf returns the index of the edge with the given key, or -1.
func IndexOf(edges []Edge, key EdgeKey) int {
	for i, k := range EdgeKeys(edges) {
		if k == key {
			return i
		}
	}
	return -1
}
