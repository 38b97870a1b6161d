package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowboard/pkg/pipeline"
)

// renderCommand creates the render command for exporting boards.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output     string
		formatsStr string
		noCache    bool
		watch      bool
		noRestore  bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "render [project]",
		Short: "Export a board as SVG, PNG, PDF, DOT or JSON",
		Long: `Export a board as SVG, PNG, PDF, DOT or JSON.

Formats:
  svg       cropped board export with arrowheads and labels
  png, pdf  converted from the SVG (requires rsvg-convert)
  dot       Graphviz source with one cluster per category
  overview  Graphviz-rendered SVG overview of the board
  json      routed scene (node rectangles and edge curves)

Saved board state (positions, hidden categories, anchor overrides) is applied
unless --no-restore is given. With --watch the project file is re-rendered
whenever it changes.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeProject,
		RunE: func(cmd *cobra.Command, args []string) error {
			formats, err := pipeline.ParseFormats(formatsStr)
			if err != nil {
				return err
			}
			opts.Formats = formats
			c.setCLIDefaults(&opts)
			opts.Restore = !noRestore
			if err := c.runRender(cmd.Context(), args[0], opts, output, noCache); err != nil {
				return err
			}
			if !watch {
				return nil
			}
			return c.watchRender(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, dot, overview, json (comma-separated)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "re-render when the project file changes")
	cmd.Flags().BoolVar(&opts.Legend, "legend", false, "draw a category legend")
	cmd.Flags().BoolVar(&opts.HideNotes, "hide-notes", false, "omit node notes")
	cmd.Flags().BoolVar(&opts.Clusters, "clusters", true, "group DOT nodes by category")
	cmd.Flags().Float64Var(&opts.Scale, "scale", pipeline.DefaultScale, "PNG scale factor")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "bypass the cache")
	cmd.Flags().BoolVar(&noRestore, "no-restore", false, "ignore the saved board state")
	addLayoutFlags(cmd, &opts)
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)

	return cmd
}

// runRender runs the pipeline once and writes every artifact.
func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Path = input
	start := time.Now()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		return err
	}

	paths, err := writeArtifacts(result.Artifacts, opts.Formats, basePath(output, input), output)
	if err != nil {
		return err
	}

	logElapsed(c.Logger, start, "rendered board", "board", result.Project.Name, "formats", len(paths))
	printSuccess("Render complete")
	for _, p := range paths {
		printFile(p)
	}
	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.CacheInfo.RenderHit)
	return nil
}

// writeArtifacts writes artifacts in format order. A single format goes to
// output verbatim when one is given.
func writeArtifacts(artifacts map[string][]byte, formats []string, base, output string) ([]string, error) {
	var paths []string
	for _, format := range formats {
		data, ok := artifacts[format]
		if !ok {
			continue
		}
		path := base + "." + pipeline.Extension(format)
		if len(formats) == 1 && output != "" {
			path = output
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.svg, .pdf, etc.), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// watchRender re-renders input on every change until ctx is cancelled.
func (c *CLI) watchRender(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	printInfo("Watching %s (Ctrl+C to stop)", input)
	return watchFile(ctx, input, defaultDebounce, func() {
		if err := c.runRender(ctx, input, opts, output, noCache); err != nil {
			printError("%s", err)
		}
	})
}
