package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// Palette
// =============================================================================

// Colors adapt to light and dark terminal backgrounds.
var (
	colorCyan   = lipgloss.AdaptiveColor{Light: "30", Dark: "36"}
	colorGreen  = lipgloss.AdaptiveColor{Light: "28", Dark: "35"}
	colorYellow = lipgloss.AdaptiveColor{Light: "136", Dark: "220"} // active drag
	colorRed    = lipgloss.AdaptiveColor{Light: "124", Dark: "167"}
	colorBlue   = lipgloss.AdaptiveColor{Light: "25", Dark: "75"}
	colorWhite  = lipgloss.AdaptiveColor{Light: "235", Dark: "255"}
	colorGray   = lipgloss.AdaptiveColor{Light: "242", Dark: "245"}
	colorDim    = lipgloss.AdaptiveColor{Light: "248", Dark: "240"}
)

var (
	// StyleTitle renders headings such as the anchor editor title.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight renders status messages.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleDim renders secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	styleValue       = lipgloss.NewStyle().Foreground(colorWhite)
	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
	styleKey         = lipgloss.NewStyle().Foreground(colorGray).Width(12)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
)

const iconError = "✗"

// =============================================================================
// Status Lines
// =============================================================================

// uiOut receives command output. Logs go to stderr separately.
var uiOut io.Writer = os.Stdout

// statusKind selects the icon and color of a status line.
type statusKind int

const (
	statusOK statusKind = iota
	statusFail
	statusNote
)

var statusIcons = map[statusKind]string{
	statusOK:   lipgloss.NewStyle().Foreground(colorGreen).Render("✓"),
	statusFail: styleIconError.Render(iconError),
	statusNote: lipgloss.NewStyle().Foreground(colorGray).Render("›"),
}

func printStatus(kind statusKind, format string, args ...any) {
	fmt.Fprintln(uiOut, statusIcons[kind]+" "+fmt.Sprintf(format, args...))
}

func printSuccess(format string, args ...any) { printStatus(statusOK, format, args...) }
func printError(format string, args ...any)   { printStatus(statusFail, format, args...) }
func printInfo(format string, args ...any)    { printStatus(statusNote, format, args...) }

// printDetail prints an indented, dimmed line under a status line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(uiOut, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a written output path.
func printFile(path string) {
	fmt.Fprintln(uiOut, "  "+StyleDim.Render("→")+" "+styleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Fprintln(uiOut, styleKey.Render(key)+" "+styleValue.Render(value))
}

// printStats prints "  3 nodes · 2 edges · cached".
func printStats(nodes, edges int, cached bool) {
	source := lipgloss.NewStyle().Foreground(colorGray).Render("fresh")
	if cached {
		source = lipgloss.NewStyle().Foreground(colorGreen).Render("cached")
	}
	sep := StyleDim.Render(" · ")
	parts := []string{
		StyleDim.Render(fmt.Sprintf("%d nodes", nodes)),
		StyleDim.Render(fmt.Sprintf("%d edges", edges)),
		source,
	}
	fmt.Fprintln(uiOut, "  "+strings.Join(parts, sep))
}

// printNextStep suggests a follow-up command.
func printNextStep(description, cmd string) {
	fmt.Fprintln(uiOut, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

func printNewline() { fmt.Fprintln(uiOut) }
