package render

import (
	"encoding/json"
	"fmt"

	"github.com/matzehuels/flowboard/pkg/route"
)

// RenderJSON encodes a scene for external renderers.
func RenderJSON(scene route.Scene) ([]byte, error) {
	data, err := json.MarshalIndent(scene, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal scene: %w", err)
	}
	return data, nil
}
