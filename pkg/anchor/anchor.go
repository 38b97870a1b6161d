package anchor

import (
	"strings"

	"github.com/matzehuels/flowboard/pkg/errors"
)

// Side is the primary border of a node. The zero value is SideNone.
type Side uint8

// Sides of a node.
const (
	SideNone Side = iota
	SideTop
	SideBottom
	SideLeft
	SideRight
)

var sideNames = [...]string{"", "top", "bottom", "left", "right"}

// String returns the side's legacy name, or "" for SideNone.
func (s Side) String() string {
	if int(s) < len(sideNames) {
		return sideNames[s]
	}
	return ""
}

// Horizontal reports whether edges leave this side along the x axis.
func (s Side) Horizontal() bool { return s == SideLeft || s == SideRight }

// Vertical reports whether edges leave this side along the y axis.
func (s Side) Vertical() bool { return s == SideTop || s == SideBottom }

// Opposite returns the facing side.
func (s Side) Opposite() Side {
	switch s {
	case SideTop:
		return SideBottom
	case SideBottom:
		return SideTop
	case SideLeft:
		return SideRight
	case SideRight:
		return SideLeft
	}
	return SideNone
}

// Sub is a position along a side. Left and right sides take SubTop through
// SubBottom; top and bottom sides take SubLeft and SubRight.
type Sub uint8

// Sub-positions.
const (
	SubNone Sub = iota
	SubTop
	SubUpper
	SubMiddle
	SubLower
	SubBottom
	SubLeft
	SubRight
)

var subNames = [...]string{"", "top", "upper", "middle", "lower", "bottom", "left", "right"}

// String returns the sub-position's legacy name, or "" for SubNone.
func (s Sub) String() string {
	if int(s) < len(subNames) {
		return subNames[s]
	}
	return ""
}

// Anchor is a point on a node's border. Construct anchors with [New], [Bare]
// or [Parse]; invalid side/sub combinations collapse to the bare side.
type Anchor struct {
	side Side
	sub  Sub
}

// New returns the anchor for side and sub. A sub that does not belong to the
// side is dropped.
func New(side Side, sub Sub) Anchor {
	if !validSub(side, sub) {
		sub = SubNone
	}
	if side > SideRight {
		side = SideNone
	}
	if side == SideNone {
		sub = SubNone
	}
	return Anchor{side: side, sub: sub}
}

// Bare returns the anchor in the middle of side.
func Bare(side Side) Anchor { return New(side, SubNone) }

func validSub(side Side, sub Sub) bool {
	switch sub {
	case SubNone:
		return true
	case SubTop, SubUpper, SubMiddle, SubLower, SubBottom:
		return side.Horizontal()
	case SubLeft, SubRight:
		return side.Vertical()
	}
	return false
}

// Side returns the primary side.
func (a Anchor) Side() Side { return a.side }

// Sub returns the sub-position.
func (a Anchor) Sub() Sub { return a.sub }

// IsZero reports whether a is the unknown anchor.
func (a Anchor) IsZero() bool { return a.side == SideNone }

// WithSub returns a moved to sub on the same side.
func (a Anchor) WithSub(sub Sub) Anchor { return New(a.side, sub) }

// String returns the legacy name: "side" or "side-sub".
func (a Anchor) String() string {
	if a.sub == SubNone {
		return a.side.String()
	}
	return a.side.String() + "-" + a.sub.String()
}

// MarshalText implements encoding.TextMarshaler.
func (a Anchor) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler. It is lenient like [Parse].
func (a *Anchor) UnmarshalText(b []byte) error {
	*a = Parse(string(b))
	return nil
}

func parseSide(s string) Side {
	for i, n := range sideNames {
		if i > 0 && n == s {
			return Side(i)
		}
	}
	return SideNone
}

func parseSub(s string) Sub {
	for i, n := range subNames {
		if i > 0 && n == s {
			return Sub(i)
		}
	}
	return SubNone
}

// Parse converts a legacy anchor name. Only the first two dash-separated
// parts are read. Unknown sides give the zero Anchor; unknown or mismatched
// sub-positions are dropped.
func Parse(name string) Anchor {
	primary, rest, _ := strings.Cut(strings.TrimSpace(name), "-")
	sub, _, _ := strings.Cut(rest, "-")
	return New(parseSide(primary), parseSub(sub))
}

// ParseStrict is Parse for untrusted input: the name must be a bare side or
// one of the 16 canonical names. The center-qualified forms "top-center" and
// "bottom-center" are not accepted; use "top" and "bottom".
func ParseStrict(name string) (Anchor, error) {
	a := Parse(name)
	if a.IsZero() || a.String() != name {
		return Anchor{}, errors.New(errors.ErrCodeInvalidAnchor, "invalid anchor %q", name)
	}
	return a, nil
}

// Sides is the pair of anchors an edge attaches to.
type Sides struct {
	From Anchor `json:"from"`
	To   Anchor `json:"to"`
}

// Complete reports whether both ends are set.
func (s Sides) Complete() bool { return !s.From.IsZero() && !s.To.IsZero() }

// ParseSides parses a legacy from/to pair.
func ParseSides(from, to string) Sides {
	return Sides{From: Parse(from), To: Parse(to)}
}
