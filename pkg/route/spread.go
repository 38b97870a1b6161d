package route

import (
	"github.com/matzehuels/flowboard/pkg/anchor"
	"github.com/matzehuels/flowboard/pkg/board"
)

// SpreadMap maps edge indexes to suggested sides. It holds only edges in a
// parallel group of two or more that have no explicit sides.
type SpreadMap map[int]anchor.Sides

// Sub-position ladders indexed by group size. Index 0 and 1 are unused.
var (
	horizontalLadders = [][]anchor.Sub{
		2: {anchor.SubUpper, anchor.SubLower},
		3: {anchor.SubUpper, anchor.SubMiddle, anchor.SubLower},
		4: {anchor.SubTop, anchor.SubUpper, anchor.SubLower, anchor.SubBottom},
		5: {anchor.SubTop, anchor.SubUpper, anchor.SubMiddle, anchor.SubLower, anchor.SubBottom},
	}
	verticalLadders = [][]anchor.Sub{
		2: {anchor.SubLeft, anchor.SubRight},
		3: {anchor.SubLeft, anchor.SubNone, anchor.SubRight},
	}
)

func ladder(horizontal bool, size int) []anchor.Sub {
	if horizontal {
		return horizontalLadders[min(size, 5)]
	}
	return verticalLadders[min(size, 3)]
}

func pairKey(a, b string) [2]string {
	if a > b {
		a, b = b, a
	}
	return [2]string{a, b}
}

// BuildSpreadMap groups visible edges by unordered endpoint pair, so A→B and
// B→A share a group, and assigns each non-explicit member of a group of two
// or more a sub-position from a ladder indexed by its position in the group.
// Explicit edges are skipped but still occupy their slot.
//
// Each member's base sides come from [anchor.BestSides] for its own
// direction; the ladder is horizontal when the base source side is left or
// right. The sub-position is applied to both ends' own base sides.
//
// explicit may be nil.
func BuildSpreadMap(edges []board.Edge, geom board.Geometry, explicit func(i int) bool) SpreadMap {
	out := make(SpreadMap)
	var order [][2]string
	groups := make(map[[2]string][]int)
	for i, e := range edges {
		if _, ok := geom[e.From]; !ok {
			continue
		}
		if _, ok := geom[e.To]; !ok {
			continue
		}
		k := pairKey(e.From, e.To)
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], i)
	}

	for _, k := range order {
		members := groups[k]
		if len(members) < 2 {
			continue
		}
		for pos, i := range members {
			if explicit != nil && explicit(i) {
				continue
			}
			e := edges[i]
			base := anchor.BestSides(geom[e.From], geom[e.To])
			steps := ladder(base.From.Side().Horizontal(), len(members))
			sub := steps[min(pos, len(steps)-1)]
			out[i] = anchor.Sides{From: base.From.WithSub(sub), To: base.To.WithSub(sub)}
		}
	}
	return out
}
