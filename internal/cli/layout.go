package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowboard/pkg/board"
	"github.com/matzehuels/flowboard/pkg/pipeline"
	"github.com/matzehuels/flowboard/pkg/route"
)

// layoutFile is the JSON document written by the layout command.
type layoutFile struct {
	Project   string                 `json:"project"`
	Strategy  string                 `json:"strategy"`
	Canvas    board.Size             `json:"canvas"`
	Positions map[string]board.Point `json:"positions"`
	Scene     route.Scene            `json:"scene"`
}

// layoutCommand creates the layout command for computing node positions.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "layout [project]",
		Short: "Compute node positions for a project",
		Long: `Compute node positions for a project.

The layout command reads a project file (JSON, TOML or YAML), places its nodes
with the chosen strategy and routes every visible edge. The output is a
<project>.layout.json file holding positions and the routed scene.

With --restore, positions and anchor overrides saved by 'anchors' or 'serve'
are applied on top of the computed layout.

Results are cached locally for faster subsequent runs.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeProject,
		RunE: func(cmd *cobra.Command, args []string) error {
			c.setCLIDefaults(&opts)
			return c.runLayout(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <project>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Restore, "restore", false, "apply the saved board state")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute even when cached")
	addLayoutFlags(cmd, &opts)

	return cmd
}

// runLayout loads the project, computes the layout and writes the output file.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Path = input
	opts.Formats = []string{pipeline.FormatJSON}

	spinner := newSpinner(ctx, os.Stderr, fmt.Sprintf("Computing %s layout...", opts.Strategy))
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		outputPath = strings.TrimSuffix(input, filepath.Ext(input)) + ".layout.json"
	}

	doc := layoutFile{
		Project:   result.Project.Name,
		Strategy:  opts.Strategy,
		Canvas:    board.Size{W: opts.CanvasW, H: opts.CanvasH},
		Positions: result.Positions,
		Scene:     result.Scene,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.CacheInfo.LayoutHit)
	printNewline()
	printNextStep("Render", "flowboard render "+input)

	return nil
}
