package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/flowboard/pkg/board"
	"github.com/matzehuels/flowboard/pkg/layout"
	"github.com/matzehuels/flowboard/pkg/observability"
)

// =============================================================================
// Layout Generation
// =============================================================================

// ComputeLayout runs the configured strategy over p and centers the result
// in the canvas.
func ComputeLayout(ctx context.Context, p *board.Project, opts Options) (layout.Result, error) {
	start := time.Now()
	observability.Pipeline().OnLayoutStart(ctx, opts.Strategy, p.NodeCount())
	res, err := layout.Compute(layout.Strategy(opts.Strategy), p.Nodes, p.Edges, opts.Heights, opts.LayoutOptions())
	observability.Pipeline().OnLayoutComplete(ctx, opts.Strategy, time.Since(start), err)
	return res, err
}
