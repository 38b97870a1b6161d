package layout

import (
	"math"
	"sort"

	"github.com/matzehuels/flowboard/pkg/board"
)

// =============================================================================
// Column strategies
// =============================================================================

// Flow groups nodes into columns by [Depth], ordered by depth ascending.
// Within a column nodes keep their list order.
func Flow(nodes []board.Node, edges []board.Edge, heights map[string]float64, opts Options) Result {
	depth := Depth(nodes, edges)
	byDepth := make(map[int][]board.Node)
	for _, n := range nodes {
		d := depth[n.ID]
		byDepth[d] = append(byDepth[d], n)
	}
	keys := make([]int, 0, len(byDepth))
	for d := range byDepth {
		keys = append(keys, d)
	}
	sort.Ints(keys)

	cols := make([][]board.Node, len(keys))
	for i, d := range keys {
		cols[i] = byDepth[d]
	}
	return placeColumns(cols, heights, opts.WithDefaults())
}

// NoCategory is the group name for nodes without a category.
const NoCategory = "_none"

// Grouped gives each category a column, in order of first appearance.
// Members are stable-sorted by [Depth] so a category reads left-to-right
// flow top to bottom.
func Grouped(nodes []board.Node, edges []board.Edge, heights map[string]float64, opts Options) Result {
	depth := Depth(nodes, edges)
	var order []string
	groups := make(map[string][]board.Node)
	for _, n := range nodes {
		key := n.Category
		if key == "" {
			key = NoCategory
		}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], n)
	}

	cols := make([][]board.Node, len(order))
	for i, key := range order {
		members := groups[key]
		sort.SliceStable(members, func(a, b int) bool {
			return depth[members[a].ID] < depth[members[b].ID]
		})
		cols[i] = members
	}
	return placeColumns(cols, heights, opts.WithDefaults())
}

func placeColumns(cols [][]board.Node, heights map[string]float64, opts Options) Result {
	res := Result{Positions: make(map[string]board.Point)}
	if len(cols) == 0 {
		return res
	}

	var x float64
	for _, col := range cols {
		var maxW, y float64
		for _, n := range col {
			maxW = math.Max(maxW, n.Width())
			res.Positions[n.ID] = board.Point{X: x, Y: y}
			y += heightOf(heights, n.ID) + opts.GapY
		}
		res.Height = math.Max(res.Height, y-opts.GapY)
		x += maxW + opts.GapX
	}
	res.Width = x - opts.GapX
	return res
}

// =============================================================================
// Grid
// =============================================================================

// Grid fills rows of round(√n) columns in list order, ignoring edges and
// categories. Each node advances x by its own width plus the gap; a row is
// as tall as its tallest node.
func Grid(nodes []board.Node, _ []board.Edge, heights map[string]float64, opts Options) Result {
	opts = opts.WithDefaults()
	res := Result{Positions: make(map[string]board.Point, len(nodes))}
	if len(nodes) == 0 {
		return res
	}

	cols := max(1, int(math.Round(math.Sqrt(float64(len(nodes))))))
	var x, y, rowH float64
	for i, n := range nodes {
		if i > 0 && i%cols == 0 {
			y += rowH + opts.GapY
			x, rowH = 0, 0
		}
		res.Positions[n.ID] = board.Point{X: x, Y: y}
		x += n.Width() + opts.GapX
		res.Width = math.Max(res.Width, x-opts.GapX)
		rowH = math.Max(rowH, heightOf(heights, n.ID))
	}
	res.Height = y + rowH
	return res
}

// =============================================================================
// Dispatch
// =============================================================================

// Compute runs the named strategy and centers the result in the canvas.
// Unknown strategies return an INVALID_STRATEGY error.
func Compute(strategy Strategy, nodes []board.Node, edges []board.Edge, heights map[string]float64, opts Options) (Result, error) {
	st, err := ParseStrategy(string(strategy))
	if err != nil {
		return Result{}, err
	}
	opts = opts.WithDefaults()

	var res Result
	switch st {
	case StrategyGrouped:
		res = Grouped(nodes, edges, heights, opts)
	case StrategyGrid:
		res = Grid(nodes, edges, heights, opts)
	default:
		res = Flow(nodes, edges, heights, opts)
	}
	Center(res.Positions, res.Width, res.Height, opts.Canvas)
	return res, nil
}

// Center translates positions so a width×height box is centered in canvas.
// The offset is rounded to whole pixels and never negative, so oversized
// content starts at the origin.
func Center(positions map[string]board.Point, width, height float64, canvas board.Size) {
	if len(positions) == 0 {
		return
	}
	dx := math.Max(0, math.Round((canvas.W-width)/2))
	dy := math.Max(0, math.Round((canvas.H-height)/2))
	for id, p := range positions {
		positions[id] = board.Point{X: p.X + dx, Y: p.Y + dy}
	}
}
