package session

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/matzehuels/flowboard/pkg/board"
	"github.com/matzehuels/flowboard/pkg/layout"
)

// State is the persisted checkpoint of a session, keyed by project name.
type State struct {
	Project   string                 `json:"project" bson:"_id"`
	Strategy  string                 `json:"strategy,omitempty" bson:"strategy,omitempty"`
	Positions map[string]board.Point `json:"positions,omitempty" bson:"positions,omitempty"`
	Viewport  *layout.Viewport       `json:"viewport,omitempty" bson:"viewport,omitempty"`
	Overrides map[string]LegacySides `json:"arrows,omitempty" bson:"arrows,omitempty"`
	Hidden    []string               `json:"hidden,omitempty" bson:"hidden,omitempty"`
	HideNotes bool                   `json:"hideNotes,omitempty" bson:"hideNotes,omitempty"`
	UpdatedAt time.Time              `json:"updatedAt" bson:"updatedAt"`
}

// MarshalState encodes a state as indented JSON. Edge keys such as
// "login->cart" are written unescaped.
func MarshalState(st *State) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(st); err != nil {
		return nil, fmt.Errorf("marshal state: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalState decodes a JSON state.
func UnmarshalState(data []byte) (*State, error) {
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("parse state: %w", err)
	}
	return &st, nil
}
