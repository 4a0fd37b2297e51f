package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pedalstack/pedalstack/pkg/board"
	"github.com/pedalstack/pedalstack/pkg/conflict"
	"github.com/pedalstack/pedalstack/pkg/engine"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)
)

// Icons.
const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + msg)
}

// printError prints an error message.
func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconError.Render(iconError) + " " + msg)
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(msg))
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + msg)
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println("  " + StyleDim.Render(msg))
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// =============================================================================
// Result Summary
// =============================================================================

// printResultSummary prints the placement table and conflict list for an
// optimize result.
func printResultSummary(result *engine.Result, order []string) {
	fmt.Println(StyleTitle.Render("Layout"))

	idWidth := 8
	for _, id := range order {
		if len(id) > idWidth {
			idWidth = len(id)
		}
	}
	rowStyle := lipgloss.NewStyle().Foreground(colorGray).Width(idWidth + 2)

	for _, id := range order {
		p, ok := result.Layout[id]
		if !ok {
			continue
		}
		pin := ""
		if p.Pinned {
			pin = StyleWarning.Render(" (pinned)")
		}
		fmt.Println("  " + rowStyle.Render(id) +
			StyleValue.Render(fmt.Sprintf("%.1f, %.1f", p.Position.X, p.Position.Y)) +
			StyleDim.Render("  rot "+p.Orientation.String()) + pin)
	}

	status := iconFresh
	statusStyle := styleComputed
	if result.CacheInfo.Hit {
		status = iconCached
		statusStyle = styleCached
	}
	parts := []string{
		fmt.Sprintf("%d pedals", len(result.Layout)),
		fmt.Sprintf("%d cables", len(result.Routes)),
		fmt.Sprintf("%.1f in of cable", result.Stats.CableLength),
		statusStyle.Render(status),
	}
	fmt.Println("  " + StyleDim.Render(strings.Join(parts, " · ")))

	printConflicts(result.Conflicts)
}

// printConflicts prints the conflict list, or a success line when empty.
func printConflicts(conflicts []conflict.Conflict) {
	if len(conflicts) == 0 {
		printSuccess("No conflicts")
		return
	}
	printWarning("%d conflicts", len(conflicts))
	for _, c := range conflicts {
		printDetail("%s", c)
	}
}

// printChainOrder prints the signal chain in order.
func printChainOrder(order []string, fourCable bool, loopBefore string) {
	parts := make([]string, 0, len(order))
	for _, id := range order {
		if fourCable && id == loopBefore {
			parts = append(parts, StyleWarning.Render("[loop]"), id)
			continue
		}
		parts = append(parts, id)
	}
	fmt.Println("  " + StyleDim.Render(strings.Join(parts, " "+iconArrow+" ")))
}

// formatPlacement renders one placement for logs.
func formatPlacement(id string, p board.Placement) string {
	return fmt.Sprintf("%s @ (%.1f, %.1f) rot %s", id, p.Position.X, p.Position.Y, p.Orientation)
}
