package components

import (
	"strings"

	"github.com/interpretive-systems/codecraft/internal/theme"
	"github.com/interpretive-systems/codecraft/internal/tui/ansi"
)

// RenderOutput draws the run output panel: a rule, a title and at most
// height-2 wrapped lines of output or error text.
func RenderOutput(output, errText string, running bool, width, height int, th theme.Theme) []string {
	lines := []string{th.DividerText(strings.Repeat("─", width))}
	switch {
	case running:
		lines = append(lines, th.AccentText("Output"), th.MutedText("Running…"))
		return lines
	case errText != "":
		lines = append(lines, th.ErrorText("Error")+th.MutedText("  (O: hide)"))
		for _, l := range ansi.Wrap(errText, width) {
			lines = append(lines, th.ErrorText(l))
		}
	default:
		lines = append(lines, th.AccentText("Output")+th.MutedText("  (O: hide)"))
		if output == "" {
			output = "(no output)"
		}
		lines = append(lines, ansi.Wrap(output, width)...)
	}
	if height > 2 && len(lines) > height {
		lines = append(lines[:height-1], th.MutedText("…"))
	}
	return lines
}
