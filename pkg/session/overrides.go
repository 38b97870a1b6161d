package session

import (
	"maps"

	"github.com/matzehuels/flowboard/pkg/anchor"
	"github.com/matzehuels/flowboard/pkg/board"
	"github.com/matzehuels/flowboard/pkg/errors"
)

// End selects one end of an edge.
type End string

// Edge ends.
const (
	EndFrom End = "from"
	EndTo   End = "to"
)

// ParseEnd validates an end name.
func ParseEnd(s string) (End, error) {
	switch End(s) {
	case EndFrom, EndTo:
		return End(s), nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "invalid edge end %q (want from or to)", s)
}

// Overrides holds explicit anchors per edge key. An entry is authoritative
// only when both ends are set.
type Overrides map[board.EdgeKey]anchor.Sides

// Lookup implements route.Overrides.
func (o Overrides) Lookup(key board.EdgeKey) (anchor.Sides, bool) {
	s, ok := o[key]
	return s, ok
}

// Set stores both ends for key.
func (o Overrides) Set(key board.EdgeKey, s anchor.Sides) { o[key] = s }

// SetEnd replaces one end for key, keeping the other.
func (o Overrides) SetEnd(key board.EdgeKey, end End, a anchor.Anchor) {
	s := o[key]
	if end == EndFrom {
		s.From = a
	} else {
		s.To = a
	}
	o[key] = s
}

// Clone returns a copy.
func (o Overrides) Clone() Overrides { return maps.Clone(o) }

// LegacySides is the persisted form of an override.
type LegacySides struct {
	FromSide string `json:"fromSide" bson:"fromSide"`
	ToSide   string `json:"toSide" bson:"toSide"`
}

// Encode converts the table to legacy anchor names.
func (o Overrides) Encode() map[string]LegacySides {
	if len(o) == 0 {
		return nil
	}
	out := make(map[string]LegacySides, len(o))
	for k, s := range o {
		out[string(k)] = LegacySides{FromSide: s.From.String(), ToSide: s.To.String()}
	}
	return out
}

// DecodeOverrides parses persisted overrides. Unknown anchor names decode
// leniently like [anchor.Parse].
func DecodeOverrides(in map[string]LegacySides) Overrides {
	out := make(Overrides, len(in))
	for k, s := range in {
		out[board.EdgeKey(k)] = anchor.ParseSides(s.FromSide, s.ToSide)
	}
	return out
}
