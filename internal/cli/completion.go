package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowboard/pkg/layout"
	"github.com/matzehuels/flowboard/pkg/pipeline"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for flowboard.

Completions cover subcommands, project files (.json, .toml, .yaml), layout
strategies for --strategy and output formats for --format.

Bash:
  $ source <(flowboard completion bash)

Zsh:
  $ flowboard completion zsh > "${fpath[1]}/_flowboard"

Fish:
  $ flowboard completion fish > ~/.config/fish/completions/flowboard.fish

PowerShell:
  PS> flowboard completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}

	return cmd
}

// =============================================================================
// Dynamic Completions
// =============================================================================

// projectExtensions are the file types offered for project arguments.
var projectExtensions = []string{"json", "toml", "yaml", "yml"}

// completeProject offers project files for the single positional argument.
func completeProject(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return projectExtensions, cobra.ShellCompDirectiveFilterFileExt
}

// completeStrategy offers the layout strategies.
func completeStrategy(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var out []string
	for _, s := range layout.Strategies {
		if strings.HasPrefix(string(s), toComplete) {
			out = append(out, string(s))
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// completeFormats offers output formats for a comma-separated list,
// skipping formats already given.
func completeFormats(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	done, partial := "", toComplete
	if i := strings.LastIndex(toComplete, ","); i >= 0 {
		done, partial = toComplete[:i+1], toComplete[i+1:]
	}
	used := make(map[string]bool)
	for _, f := range strings.Split(done, ",") {
		used[f] = true
	}

	var out []string
	for _, f := range []string{
		pipeline.FormatSVG, pipeline.FormatPNG, pipeline.FormatPDF,
		pipeline.FormatDOT, pipeline.FormatOverview, pipeline.FormatJSON,
	} {
		if !used[f] && strings.HasPrefix(f, partial) {
			out = append(out, done+f)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}
