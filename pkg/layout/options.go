package layout

import (
	"github.com/matzehuels/flowboard/pkg/board"
	"github.com/matzehuels/flowboard/pkg/errors"
)

// Default layout dimensions.
const (
	DefaultCanvasWidth  = 10000.0
	DefaultCanvasHeight = 8000.0
	DefaultGapX         = 100.0
	DefaultGapY         = 40.0
)

// Strategy names a layout algorithm.
type Strategy string

// Layout strategies.
const (
	StrategyFlow    Strategy = "flow"
	StrategyGrouped Strategy = "grouped"
	StrategyGrid    Strategy = "grid"
)

// Strategies lists the valid strategy names.
var Strategies = []Strategy{StrategyFlow, StrategyGrouped, StrategyGrid}

// ParseStrategy validates a strategy name. An empty name is flow.
func ParseStrategy(s string) (Strategy, error) {
	if s == "" {
		return StrategyFlow, nil
	}
	for _, st := range Strategies {
		if string(st) == s {
			return st, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidStrategy, "unknown layout strategy %q (want flow, grouped or grid)", s)
}

// Options tunes spacing and the canvas the result is centered in.
// Zero fields take the defaults.
type Options struct {
	Canvas board.Size `toml:"canvas"`
	GapX   float64    `toml:"gap_x"`
	GapY   float64    `toml:"gap_y"`
}

// WithDefaults returns o with zero fields filled in.
func (o Options) WithDefaults() Options {
	if o.Canvas.W <= 0 {
		o.Canvas.W = DefaultCanvasWidth
	}
	if o.Canvas.H <= 0 {
		o.Canvas.H = DefaultCanvasHeight
	}
	if o.GapX <= 0 {
		o.GapX = DefaultGapX
	}
	if o.GapY <= 0 {
		o.GapY = DefaultGapY
	}
	return o
}

// Result is a strategy's output: one position per node and the size of the
// bounding box they span.
type Result struct {
	Positions map[string]board.Point `json:"positions"`
	Width     float64                `json:"width"`
	Height    float64                `json:"height"`
}

func heightOf(heights map[string]float64, id string) float64 {
	if h := heights[id]; h > 0 {
		return h
	}
	return board.DefaultHeight
}
