package anchor

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/flowboard/pkg/board"
	"github.com/matzehuels/flowboard/pkg/errors"
)

func rect(x, y, w, h float64) board.Rect {
	return board.Rect{Point: board.Point{X: x, Y: y}, Size: board.Size{W: w, H: h}}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		side Side
		sub  Sub
		out  string
	}{
		{"right", SideRight, SubNone, "right"},
		{"left-upper", SideLeft, SubUpper, "left-upper"},
		{"top-left", SideTop, SubLeft, "top-left"},
		{"bottom-right", SideBottom, SubRight, "bottom-right"},
		{"right-middle", SideRight, SubMiddle, "right-middle"},
		{"right-upper-extra", SideRight, SubUpper, "right-upper"},
		{"right-sideways", SideRight, SubNone, "right"},
		{"top-upper", SideTop, SubNone, "top"},
		{"left-left", SideLeft, SubNone, "left"},
		{"top-center", SideTop, SubNone, "top"},
		{"", SideNone, SubNone, ""},
		{"r", SideNone, SubNone, ""},
		{"middle", SideNone, SubNone, ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			a := Parse(tt.in)
			assert.Equal(t, tt.side, a.Side())
			assert.Equal(t, tt.sub, a.Sub())
			assert.Equal(t, tt.out, a.String())
		})
	}
}

func TestParseStrict(t *testing.T) {
	for _, a := range Canonical() {
		got, err := ParseStrict(a.String())
		require.NoError(t, err, a.String())
		assert.Equal(t, a, got)
	}
	for _, s := range []string{"right", "left", "top", "bottom"} {
		_, err := ParseStrict(s)
		assert.NoError(t, err, s)
	}
	for _, s := range []string{"", "r", "top-center", "right-sideways", "right-upper-extra", " right"} {
		_, err := ParseStrict(s)
		assert.True(t, errors.Is(err, errors.ErrCodeInvalidAnchor), "ParseStrict(%q)", s)
	}
}

func TestNewDropsMismatchedSub(t *testing.T) {
	assert.Equal(t, Bare(SideTop), New(SideTop, SubUpper))
	assert.Equal(t, Bare(SideRight), New(SideRight, SubLeft))
	assert.Equal(t, Anchor{}, New(SideNone, SubUpper))
	assert.Equal(t, Anchor{}, New(Side(42), SubNone))
	assert.Equal(t, New(SideLeft, SubLower), Bare(SideLeft).WithSub(SubLower))
}

func TestSideHelpers(t *testing.T) {
	assert.True(t, SideLeft.Horizontal())
	assert.True(t, SideRight.Horizontal())
	assert.False(t, SideTop.Horizontal())
	assert.True(t, SideBottom.Vertical())
	assert.False(t, SideNone.Vertical())
	assert.Equal(t, SideRight, SideLeft.Opposite())
	assert.Equal(t, SideTop, SideBottom.Opposite())
	assert.Equal(t, SideNone, SideNone.Opposite())
}

func TestAnchorJSON(t *testing.T) {
	in := Sides{From: New(SideRight, SubUpper), To: Bare(SideLeft)}
	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"from":"right-upper","to":"left"}`, string(data))

	var out Sides
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)
	assert.True(t, out.Complete())
	assert.False(t, Sides{From: Bare(SideTop)}.Complete())
}

func TestResolve(t *testing.T) {
	r := rect(100, 200, 320, 300)
	tests := []struct {
		name string
		want board.Point
	}{
		{"left-top", board.Point{X: 100, Y: 250}},
		{"left-upper", board.Point{X: 100, Y: 300}},
		{"left-middle", board.Point{X: 100, Y: 350}},
		{"left", board.Point{X: 100, Y: 350}},
		{"left-lower", board.Point{X: 100, Y: 400}},
		{"left-bottom", board.Point{X: 100, Y: 450}},
		{"right-top", board.Point{X: 420, Y: 250}},
		{"top-left", board.Point{X: 180, Y: 200}},
		{"top", board.Point{X: 260, Y: 200}},
		{"top-right", board.Point{X: 340, Y: 200}},
		{"bottom-left", board.Point{X: 180, Y: 500}},
		{"bottom", board.Point{X: 260, Y: 500}},
		{"right-sideways", board.Point{X: 420, Y: 350}},
		{"unknown", board.Point{X: 260, Y: 350}},
		{"", board.Point{X: 260, Y: 350}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveName(r, tt.name)
			assert.InDelta(t, tt.want.X, got.X, 1e-9)
			assert.InDelta(t, tt.want.Y, got.Y, 1e-9)
		})
	}
}

func TestResolveSymmetry(t *testing.T) {
	r := rect(0, 0, 300, 120)
	lt := ResolveName(r, "left-top")
	rt := ResolveName(r, "right-top")
	assert.Equal(t, lt.Y, rt.Y)
	assert.NotEqual(t, lt.X, rt.X)
}

func TestAll(t *testing.T) {
	r := rect(10, 20, 240, 180)
	handles := All(r)
	require.Len(t, handles, 16)

	names := make([]string, len(handles))
	for i, h := range handles {
		names[i] = h.Anchor.String()
		assert.True(t, r.Contains(h.Pos), "%s at %+v outside %+v", names[i], h.Pos, r)
	}
	assert.Equal(t, []string{
		"left-top", "left-upper", "left-middle", "left-lower", "left-bottom",
		"right-top", "right-upper", "right-middle", "right-lower", "right-bottom",
		"top-left", "top", "top-right",
		"bottom-left", "bottom", "bottom-right",
	}, names)
}

func TestAllDegenerateRect(t *testing.T) {
	handles := All(board.Rect{})
	require.Len(t, handles, 16)
	for _, h := range handles {
		assert.Equal(t, board.Point{}, h.Pos)
	}
}

func TestNearest(t *testing.T) {
	r := rect(0, 0, 300, 600)
	assert.Equal(t, "right-lower", Nearest(r, board.Point{X: 350, Y: 410}).Anchor.String())
	assert.Equal(t, "top-left", Nearest(r, board.Point{X: 70, Y: -40}).Anchor.String())
	assert.Equal(t, "bottom", Nearest(r, board.Point{X: 150, Y: 900}).Anchor.String())

	// The center is equidistant from left-middle and right-middle; the first listed wins.
	assert.Equal(t, "left-middle", Nearest(rect(0, 0, 100, 100), board.Point{X: 50, Y: 50}).Anchor.String())
}

func TestBestSides(t *testing.T) {
	a := rect(0, 0, 100, 100)
	tests := []struct {
		name     string
		b        board.Rect
		from, to string
	}{
		{"right", rect(500, 0, 100, 100), "right", "left"},
		{"left", rect(-500, 0, 100, 100), "left", "right"},
		{"below", rect(0, 500, 100, 100), "bottom", "top"},
		{"above", rect(0, -500, 100, 100), "top", "bottom"},
		{"diagonal tie prefers horizontal", rect(300, 300, 100, 100), "right", "left"},
		{"same center", rect(0, 0, 100, 100), "left", "right"},
		{"wide offset", rect(200, -150, 100, 100), "right", "left"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := BestSides(a, tt.b)
			assert.Equal(t, tt.from, s.From.String())
			assert.Equal(t, tt.to, s.To.String())
		})
	}
}
