package display

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"
)

var (
	// SummaryStyle is the muted slate used for the farewell line.
	SummaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	// FaultStyle marks an abnormal termination.
	FaultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fca5a5")).
			Bold(true)
)

// RenderSummary returns text centred for the current terminal width. It is
// printed after the terminal has been restored, so it goes to plain stdout.
func RenderSummary(text string, style lipgloss.Style) string {
	return centre(text, termWidth(), style)
}

// centre pads each line of text so the widest one sits in the middle of a
// width-column screen.
func centre(text string, width int, style lipgloss.Style) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")

	maxW := 0
	for _, l := range lines {
		if w := lipgloss.Width(l); w > maxW {
			maxW = w
		}
	}

	pad := 0
	if width > maxW {
		pad = (width - maxW) / 2
	}

	var b strings.Builder
	for _, l := range lines {
		b.WriteString(strings.Repeat(" ", pad))
		b.WriteString(style.Render(l))
		b.WriteByte('\n')
	}
	return b.String()
}

// termWidth returns the current terminal column count, or 80 as fallback.
func termWidth() int {
	if w, _, err := term.GetSize(os.Stdout.Fd()); err == nil && w > 0 {
		return w
	}
	return 80
}
