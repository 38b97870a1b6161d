package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowboard/pkg/pipeline"
	"github.com/matzehuels/flowboard/pkg/session"
)

// anchorsCommand creates the interactive anchor editor command.
func (c *CLI) anchorsCommand() *cobra.Command {
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "anchors [project]",
		Short: "Edit edge endpoints in the terminal",
		Long: `Edit edge endpoints in the terminal.

Pick an edge, choose its from or to end and step the endpoint around the
16 anchor points of its node. Every saved move is written to the board
store and used by later 'render' and 'serve' runs.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeProject,
		RunE: func(cmd *cobra.Command, args []string) error {
			c.setCLIDefaults(&opts)
			opts.Path = args[0]
			return c.runAnchors(cmd.Context(), opts)
		},
	}
	addLayoutFlags(cmd, &opts)

	return cmd
}

func (c *CLI) runAnchors(ctx context.Context, opts pipeline.Options) error {
	s, closeFn, err := c.openSession(ctx, opts)
	if err != nil {
		return err
	}
	defer closeFn()

	final, err := tea.NewProgram(NewAnchorEditorModel(ctx, s), tea.WithContext(ctx)).Run()
	if err != nil {
		return fmt.Errorf("anchor editor: %w", err)
	}
	if m, ok := final.(AnchorEditorModel); ok && m.Committed > 0 {
		printSuccess("Saved %d anchor moves", m.Committed)
	}
	return nil
}

// freezeCommand creates the freeze command.
func (c *CLI) freezeCommand() *cobra.Command {
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "freeze [project]",
		Short: "Pin every edge to its current anchor sides",
		Long: `Pin every edge to its current anchor sides.

Edges without explicit sides are routed by a heuristic that reacts to node
positions. Freezing writes each edge's current sides into the saved board
state so that later moves do not reshuffle them.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeProject,
		RunE: func(cmd *cobra.Command, args []string) error {
			c.setCLIDefaults(&opts)
			opts.Path = args[0]

			s, closeFn, err := c.openSession(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer closeFn()

			n := s.Freeze(cmd.Context())
			if n == 0 {
				printInfo("All visible edges already have fixed sides")
				return nil
			}
			printSuccess("Froze %d edges", n)
			return nil
		},
	}
	addLayoutFlags(cmd, &opts)

	return cmd
}

// resetCommand creates the reset command.
func (c *CLI) resetCommand() *cobra.Command {
	var purge bool
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:               "reset [project]",
		Short:             "Clear saved positions, hidden categories and anchor overrides",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeProject,
		RunE: func(cmd *cobra.Command, args []string) error {
			c.setCLIDefaults(&opts)
			opts.Path = args[0]
			ctx := cmd.Context()

			runner, err := c.newRunner(ctx, false)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			s, err := runner.Open(ctx, opts)
			if err != nil {
				return err
			}
			if purge {
				if err := runner.Store.Delete(ctx, s.Name()); err != nil {
					return fmt.Errorf("delete board state: %w", err)
				}
				printSuccess("Deleted saved state for %s", s.Name())
				return nil
			}
			if err := s.Reset(ctx); err != nil {
				return err
			}
			printSuccess("Reset %s", s.Name())
			return nil
		},
	}
	cmd.Flags().BoolVar(&purge, "purge", false, "delete the saved state instead of saving a fresh one")
	addLayoutFlags(cmd, &opts)

	return cmd
}

// openSession opens a persisted session. The returned func releases the
// runner's backends.
func (c *CLI) openSession(ctx context.Context, opts pipeline.Options) (*session.Session, func(), error) {
	runner, err := c.newRunner(ctx, false)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize runner: %w", err)
	}
	s, err := runner.Open(ctx, opts)
	if err != nil {
		runner.Close()
		return nil, nil, err
	}
	return s, func() { runner.Close() }, nil
}
