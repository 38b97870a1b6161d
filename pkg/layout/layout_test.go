package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/flowboard/pkg/board"
	"github.com/matzehuels/flowboard/pkg/errors"
)

func nodes(ids ...string) []board.Node {
	out := make([]board.Node, len(ids))
	for i, id := range ids {
		out[i] = board.Node{ID: id}
	}
	return out
}

func edge(from, to string) board.Edge { return board.Edge{From: from, To: to} }

func TestDepth(t *testing.T) {
	tests := []struct {
		name  string
		nodes []board.Node
		edges []board.Edge
		want  map[string]int
	}{
		{
			name:  "chain",
			nodes: nodes("a", "b", "c"),
			edges: []board.Edge{edge("a", "b"), edge("b", "c")},
			want:  map[string]int{"a": 0, "b": 1, "c": 2},
		},
		{
			name:  "disconnected",
			nodes: nodes("a", "b", "c"),
			edges: []board.Edge{edge("a", "b")},
			want:  map[string]int{"a": 0, "b": 1, "c": 0},
		},
		{
			name:  "multiple roots",
			nodes: nodes("a", "b", "c", "d"),
			edges: []board.Edge{edge("a", "c"), edge("b", "d")},
			want:  map[string]int{"a": 0, "b": 0, "c": 1, "d": 1},
		},
		{
			name:  "branching",
			nodes: nodes("root", "l", "r", "ll"),
			edges: []board.Edge{edge("root", "l"), edge("root", "r"), edge("l", "ll")},
			want:  map[string]int{"root": 0, "l": 1, "r": 1, "ll": 2},
		},
		{
			name:  "cycle falls back to first node",
			nodes: nodes("a", "b", "c"),
			edges: []board.Edge{edge("a", "b"), edge("b", "c"), edge("c", "a")},
			want:  map[string]int{"a": 0, "b": 1, "c": 2},
		},
		{
			name:  "first seen wins",
			nodes: nodes("a", "b", "c", "d"),
			edges: []board.Edge{edge("a", "b"), edge("b", "c"), edge("a", "d"), edge("d", "c")},
			want:  map[string]int{"a": 0, "b": 1, "d": 1, "c": 2},
		},
		{
			name:  "unknown source still marks parent",
			nodes: nodes("a", "b"),
			edges: []board.Edge{edge("ghost", "b")},
			want:  map[string]int{"a": 0, "b": 0},
		},
		{
			name:  "empty",
			nodes: nil,
			edges: nil,
			want:  map[string]int{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Depth(tt.nodes, tt.edges))
		})
	}
}

func TestDepthMonotonic(t *testing.T) {
	ns := nodes("a", "b", "c", "d", "e")
	es := []board.Edge{edge("a", "b"), edge("a", "c"), edge("b", "d"), edge("c", "d"), edge("d", "e")}
	depth := Depth(ns, es)
	for _, e := range es {
		assert.GreaterOrEqual(t, depth[e.To], depth[e.From], "%s->%s", e.From, e.To)
	}
	assert.Equal(t, 3, depth["e"])
}

func TestFlow(t *testing.T) {
	t.Run("column separation", func(t *testing.T) {
		res := Flow(nodes("a", "b", "c"), []board.Edge{edge("a", "b"), edge("b", "c")}, nil, Options{})
		assert.Less(t, res.Positions["a"].X, res.Positions["b"].X)
		assert.Less(t, res.Positions["b"].X, res.Positions["c"].X)
		assert.Equal(t, 3*320.0+2*100, res.Width)
		assert.Equal(t, 200.0, res.Height)
	})

	t.Run("disconnected share column", func(t *testing.T) {
		res := Flow(nodes("a", "b"), nil, nil, Options{})
		assert.Equal(t, res.Positions["a"].X, res.Positions["b"].X)
		assert.Equal(t, 240.0, res.Positions["b"].Y)
		assert.Equal(t, 440.0, res.Height)
	})

	t.Run("measured heights", func(t *testing.T) {
		res := Flow(nodes("a", "b"), nil, map[string]float64{"a": 100, "b": 100}, Options{})
		assert.Equal(t, 140.0, res.Positions["b"].Y-res.Positions["a"].Y)
	})

	t.Run("zero height uses default", func(t *testing.T) {
		res := Flow(nodes("a", "b"), nil, map[string]float64{"a": 0}, Options{})
		assert.Equal(t, 240.0, res.Positions["b"].Y)
	})

	t.Run("column width from size", func(t *testing.T) {
		ns := []board.Node{{ID: "a", Size: board.SizeLarge}, {ID: "b", Size: board.SizeSmall}}
		res := Flow(ns, []board.Edge{edge("a", "b")}, nil, Options{})
		assert.Equal(t, 500.0, res.Positions["b"].X-res.Positions["a"].X)
	})

	t.Run("xl", func(t *testing.T) {
		ns := []board.Node{{ID: "a", Size: board.SizeXL}, {ID: "b"}}
		res := Flow(ns, []board.Edge{edge("a", "b")}, nil, Options{})
		assert.Equal(t, 620.0, res.Positions["b"].X-res.Positions["a"].X)
	})

	t.Run("custom gaps", func(t *testing.T) {
		res := Flow(nodes("a", "b"), []board.Edge{edge("a", "b")}, nil, Options{GapX: 20})
		assert.Equal(t, 340.0, res.Positions["b"].X)
	})

	t.Run("empty", func(t *testing.T) {
		res := Flow(nil, nil, nil, Options{})
		assert.Empty(t, res.Positions)
		assert.Zero(t, res.Width)
		assert.Zero(t, res.Height)
	})
}

func TestGrouped(t *testing.T) {
	t.Run("categories in separate columns", func(t *testing.T) {
		ns := []board.Node{{ID: "a", Category: "e1"}, {ID: "b", Category: "e2"}}
		res := Grouped(ns, nil, nil, Options{})
		assert.NotEqual(t, res.Positions["a"].X, res.Positions["b"].X)
	})

	t.Run("same category stacks", func(t *testing.T) {
		ns := []board.Node{{ID: "a", Category: "e1"}, {ID: "b", Category: "e1"}}
		res := Grouped(ns, nil, map[string]float64{"a": 150, "b": 150}, Options{})
		assert.Equal(t, res.Positions["a"].X, res.Positions["b"].X)
		assert.Equal(t, 190.0, res.Positions["b"].Y-res.Positions["a"].Y)
	})

	t.Run("sorted by depth", func(t *testing.T) {
		ns := []board.Node{{ID: "c", Category: "e1"}, {ID: "a", Category: "e1"}, {ID: "b", Category: "e1"}}
		res := Grouped(ns, []board.Edge{edge("a", "b"), edge("b", "c")}, nil, Options{})
		assert.Less(t, res.Positions["a"].Y, res.Positions["b"].Y)
		assert.Less(t, res.Positions["b"].Y, res.Positions["c"].Y)
	})

	t.Run("uncategorized group", func(t *testing.T) {
		ns := []board.Node{{ID: "a"}, {ID: "b", Category: "e1"}, {ID: "c"}}
		res := Grouped(ns, nil, nil, Options{})
		assert.Equal(t, 0.0, res.Positions["a"].X)
		assert.Equal(t, 0.0, res.Positions["c"].X)
		assert.Equal(t, 420.0, res.Positions["b"].X)
	})

	t.Run("input order untouched", func(t *testing.T) {
		ns := []board.Node{{ID: "c", Category: "e1"}, {ID: "a", Category: "e1"}}
		Grouped(ns, []board.Edge{edge("a", "c")}, nil, Options{})
		assert.Equal(t, "c", ns[0].ID)
	})
}

func TestGrid(t *testing.T) {
	t.Run("two by two", func(t *testing.T) {
		res := Grid(nodes("a", "b", "c", "d"), nil, nil, Options{})
		p := res.Positions
		assert.Less(t, p["a"].X, p["b"].X)
		assert.Equal(t, p["a"].Y, p["b"].Y)
		assert.Less(t, p["c"].X, p["d"].X)
		assert.Equal(t, p["c"].Y, p["d"].Y)
		assert.Less(t, p["a"].Y, p["c"].Y)
	})

	t.Run("wrap", func(t *testing.T) {
		res := Grid(nodes("a", "b", "c"), nil, map[string]float64{"a": 120, "b": 120, "c": 120}, Options{})
		p := res.Positions
		assert.Equal(t, p["a"].Y, p["b"].Y)
		assert.Equal(t, 160.0, p["c"].Y-p["a"].Y)
		assert.Equal(t, 280.0, res.Height)
		assert.Equal(t, 740.0, res.Width)
	})

	t.Run("node widths", func(t *testing.T) {
		ns := []board.Node{{ID: "a", Size: board.SizeSmall}, {ID: "b", Size: board.SizeLarge}, {ID: "c"}, {ID: "d"}}
		res := Grid(ns, nil, nil, Options{})
		assert.Equal(t, 340.0, res.Positions["b"].X-res.Positions["a"].X)
	})

	t.Run("single", func(t *testing.T) {
		res := Grid(nodes("a"), nil, nil, Options{})
		assert.Equal(t, board.Point{}, res.Positions["a"])
	})

	t.Run("ignores edges", func(t *testing.T) {
		ns := nodes("a", "b", "c", "d")
		withEdges := Grid(ns, []board.Edge{edge("d", "a")}, nil, Options{})
		without := Grid(ns, nil, nil, Options{})
		assert.Equal(t, without, withEdges)
	})
}

func TestCenter(t *testing.T) {
	t.Run("centers", func(t *testing.T) {
		pos := map[string]board.Point{"a": {X: 0, Y: 0}, "b": {X: 100, Y: 0}}
		Center(pos, 100, 200, board.Size{W: DefaultCanvasWidth, H: DefaultCanvasHeight})
		assert.Equal(t, board.Point{X: 4950, Y: 3900}, pos["a"])
		assert.Equal(t, board.Point{X: 5050, Y: 3900}, pos["b"])
	})

	t.Run("never negative", func(t *testing.T) {
		pos := map[string]board.Point{"a": {}}
		Center(pos, 20000, 20000, board.Size{W: DefaultCanvasWidth, H: DefaultCanvasHeight})
		assert.Equal(t, board.Point{}, pos["a"])
	})

	t.Run("rounds offset", func(t *testing.T) {
		pos := map[string]board.Point{"a": {}}
		Center(pos, 101, 101, board.Size{W: 1000, H: 1000})
		assert.Equal(t, board.Point{X: 450, Y: 450}, pos["a"])
	})
}

func TestCompute(t *testing.T) {
	ns := []board.Node{{ID: "a", Category: "x"}, {ID: "b", Category: "y"}, {ID: "c"}}
	es := []board.Edge{edge("a", "b"), edge("b", "c")}

	for _, st := range Strategies {
		t.Run(string(st), func(t *testing.T) {
			first, err := Compute(st, ns, es, nil, Options{})
			require.NoError(t, err)
			require.Len(t, first.Positions, len(ns))

			second, err := Compute(st, ns, es, nil, Options{})
			require.NoError(t, err)
			assert.Equal(t, first, second)

			for id, p := range first.Positions {
				assert.GreaterOrEqual(t, p.X, 0.0, id)
				assert.GreaterOrEqual(t, p.Y, 0.0, id)
			}
		})
	}

	t.Run("empty strategy is flow", func(t *testing.T) {
		got, err := Compute("", ns, es, nil, Options{})
		require.NoError(t, err)
		want, _ := Compute(StrategyFlow, ns, es, nil, Options{})
		assert.Equal(t, want, got)
	})

	t.Run("unknown strategy", func(t *testing.T) {
		_, err := Compute("radial", ns, es, nil, Options{})
		assert.True(t, errors.Is(err, errors.ErrCodeInvalidStrategy))
	})

	t.Run("no nodes", func(t *testing.T) {
		res, err := Compute(StrategyGrid, nil, nil, nil, Options{})
		require.NoError(t, err)
		assert.Empty(t, res.Positions)
	})
}

func TestViewport(t *testing.T) {
	assert.Equal(t, 0.2, ClampZoom(0.01))
	assert.Equal(t, 2.0, ClampZoom(5))
	assert.Equal(t, 1.23, ClampZoom(1.2345))

	v := Viewport{Zoom: 2, PanX: 100, PanY: 50}
	c := v.ToCanvas(board.Point{X: 300, Y: 250})
	assert.Equal(t, board.Point{X: 100, Y: 100}, c)
	assert.Equal(t, board.Point{X: 300, Y: 250}, v.ToView(c))

	at := board.Point{X: 400, Y: 300}
	before := v.ToCanvas(at)
	zoomed := v.ZoomAt(1.5, at)
	assert.Equal(t, 1.5, zoomed.Zoom)
	after := zoomed.ToCanvas(at)
	assert.InDelta(t, before.X, after.X, 1e-9)
	assert.InDelta(t, before.Y, after.Y, 1e-9)

	assert.InDelta(t, 1.9, v.Step(-1, at).Zoom, 1e-9)
	assert.Equal(t, 2.0, v.Step(1, at).Zoom)
	assert.Equal(t, Viewport{Zoom: 2, PanX: 90, PanY: 70}, v.Pan(-10, 20))
}

func TestFit(t *testing.T) {
	var b board.Bounds
	assert.Equal(t, DefaultViewport(), Fit(b, board.Size{W: 800, H: 600}, FitPadding))

	b.AddRect(board.Rect{Point: board.Point{X: 1000, Y: 1000}, Size: board.Size{W: 340, H: 240}})
	v := Fit(b, board.Size{W: 800, H: 600}, FitPadding)
	assert.Equal(t, 1.0, v.Zoom)
	assert.Equal(t, (800-340)/2-1000.0, v.PanX)
	assert.Equal(t, (600-240)/2-1000.0, v.PanY)

	var big board.Bounds
	big.AddRect(board.Rect{Size: board.Size{W: 10000, H: 100}})
	v = Fit(big, board.Size{W: 800, H: 600}, FitPadding)
	assert.Equal(t, MinZoom, v.Zoom)

	var wide board.Bounds
	wide.AddRect(board.Rect{Size: board.Size{W: 1360, H: 100}})
	v = Fit(wide, board.Size{W: 800, H: 600}, FitPadding)
	assert.Equal(t, 0.5, v.Zoom)
}
