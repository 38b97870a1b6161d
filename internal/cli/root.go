package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

// Execute runs the flowboard CLI and returns an error if any command fails.
//
// Logging goes to stderr at info level, or debug level with --verbose (-v).
// The logger is attached to the command context and reachable from every
// command through loggerFromContext.
func Execute(ctx context.Context) error {
	var verbose bool

	c := New(os.Stderr, LogInfo)
	root := c.RootCommand()
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	originalPreRun := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		level := LogInfo
		if verbose {
			level = LogDebug
		}
		c.SetLogLevel(level)

		if originalPreRun != nil {
			return originalPreRun(cmd, args)
		}
		return nil
	}

	return root.ExecuteContext(ctx)
}
