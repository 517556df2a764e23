package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Colors defines the palette for command output.
var Colors = struct {
	Success lipgloss.Color
	Error   lipgloss.Color
	Warning lipgloss.Color
	Muted   lipgloss.Color
}{
	Success: lipgloss.Color("#00B894"), // Green
	Error:   lipgloss.Color("#D63031"), // Red
	Warning: lipgloss.Color("#FDCB6E"), // Yellow
	Muted:   lipgloss.Color("#636E72"), // Gray
}

var (
	passStyle = lipgloss.NewStyle().Bold(true).Foreground(Colors.Success)
	failStyle = lipgloss.NewStyle().Bold(true).Foreground(Colors.Error)
	warnStyle = lipgloss.NewStyle().Foreground(Colors.Warning)
	noteStyle = lipgloss.NewStyle().Foreground(Colors.Muted)
)

// printResult writes a one-line PASS/FAIL banner.
func printResult(w io.Writer, passed bool, msg string) {
	if passed {
		_, _ = fmt.Fprintf(w, "%s %s\n", passStyle.Render("PASS"), msg)
		return
	}
	_, _ = fmt.Fprintf(w, "%s %s\n", failStyle.Render("FAIL"), msg)
}

// printWarning writes a highlighted warning line.
func printWarning(w io.Writer, msg string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", warnStyle.Render("Warning:"), msg)
}

// printNote writes a dimmed informational line.
func printNote(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintln(w, noteStyle.Render(fmt.Sprintf(format, args...)))
}
