package layout

import "github.com/matzehuels/flowboard/pkg/board"

// Depth returns each node's column: its BFS distance from the nearest root.
//
// Roots are nodes that are not the target of any edge. When every node has
// a parent (a cycle), the first node in the list is the sole root. The BFS
// runs from all roots at once in list order and the first visit wins, so
// diamonds and cycles get a deterministic depth. Nodes never reached get 0.
//
// Edges whose source is not a node contribute no adjacency, but their target
// still counts as having a parent.
//
// Time complexity is O(V + E).
func Depth(nodes []board.Node, edges []board.Edge) map[string]int {
	children := make(map[string][]string, len(nodes))
	for _, n := range nodes {
		children[n.ID] = nil
	}
	hasParent := make(map[string]bool, len(edges))
	for _, e := range edges {
		if kids, ok := children[e.From]; ok {
			children[e.From] = append(kids, e.To)
		}
		hasParent[e.To] = true
	}

	queue := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if !hasParent[n.ID] {
			queue = append(queue, n.ID)
		}
	}
	if len(queue) == 0 && len(nodes) > 0 {
		queue = append(queue, nodes[0].ID)
	}

	depth := make(map[string]int, len(nodes))
	visited := make(map[string]bool, len(nodes))
	for _, id := range queue {
		visited[id] = true
		depth[id] = 0
	}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		for _, child := range children[curr] {
			if visited[child] {
				continue
			}
			visited[child] = true
			depth[child] = depth[curr] + 1
			queue = append(queue, child)
		}
	}

	for _, n := range nodes {
		if _, ok := depth[n.ID]; !ok {
			depth[n.ID] = 0
		}
	}
	return depth
}
