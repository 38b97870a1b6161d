package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/flowboard/pkg/board"
	"github.com/matzehuels/flowboard/pkg/observability"
	"github.com/matzehuels/flowboard/pkg/render"
	"github.com/matzehuels/flowboard/pkg/route"
)

// Render generates output artifacts in the requested formats. hidden lists
// the categories hidden in the scene; they are dimmed in the legend.
func Render(ctx context.Context, p *board.Project, scene route.Scene, hidden []string, opts Options) (map[string][]byte, error) {
	start := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	artifacts, err := renderFormats(ctx, p, scene, hidden, opts)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	return artifacts, err
}

func renderFormats(ctx context.Context, p *board.Project, scene route.Scene, hidden []string, opts Options) (map[string][]byte, error) {
	svgOpts := buildSVGOptions(hidden, opts)
	dotOpts := render.DOTOptions{Clusters: opts.Clusters, Ports: true}
	artifacts := make(map[string][]byte, len(opts.Formats))

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = render.RenderSVG(p, scene, svgOpts...)
		case FormatPNG:
			data, err = render.RenderPNG(ctx, p, scene, opts.Scale, svgOpts...)
		case FormatPDF:
			data, err = render.RenderPDF(ctx, p, scene, svgOpts...)
		case FormatDOT:
			data = []byte(render.ToDOT(p, scene, dotOpts))
		case FormatOverview:
			data, err = render.RenderOverview(ctx, render.ToDOT(p, scene, dotOpts))
		case FormatJSON:
			data, err = render.RenderJSON(scene)
		default:
			return nil, ValidateFormat(format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func buildSVGOptions(hidden []string, opts Options) []render.SVGOption {
	svgOpts := []render.SVGOption{render.WithNotes(!opts.HideNotes)}
	if opts.Legend {
		svgOpts = append(svgOpts, render.WithLegend(), render.WithHidden(hidden))
	}
	return svgOpts
}
