package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/flowboard/pkg/board"
	"github.com/matzehuels/flowboard/pkg/observability"
)

// Load reads and validates the project named by opts. An in-memory
// opts.Project takes precedence over opts.Path.
func Load(ctx context.Context, opts Options) (*board.Project, error) {
	start := time.Now()
	p, err := load(opts)
	name, nodes, edges := opts.Path, 0, 0
	if p != nil {
		name, nodes, edges = p.Name, p.NodeCount(), p.EdgeCount()
	}
	observability.Pipeline().OnLoadComplete(ctx, name, nodes, edges, time.Since(start), err)
	return p, err
}

func load(opts Options) (*board.Project, error) {
	p := opts.Project
	if p == nil {
		var err error
		if p, err = board.ReadProjectFile(opts.Path); err != nil {
			return nil, err
		}
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}
