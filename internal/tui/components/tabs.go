package components

import (
	"strings"

	"github.com/interpretive-systems/codecraft/internal/theme"
	"github.com/interpretive-systems/codecraft/internal/tui/ansi"
)

// Tab is one open file.
type Tab struct {
	ID   string
	Name string
}

// RenderTabs draws the tab strip. When the tabs overflow, the strip is
// scrolled so the active tab stays visible.
func RenderTabs(tabs []Tab, activeID string, width int, th theme.Theme) string {
	if len(tabs) == 0 {
		return ansi.Pad(th.MutedText("No open files (ctrl+n: new file)"), width)
	}
	cells := make([]string, len(tabs))
	activeEnd := 0
	used := 0
	for i, t := range tabs {
		label := " " + t.Name + " "
		if t.ID == activeID {
			cells[i] = th.SelectedLine(label)
			activeEnd = used + ansi.Width(label)
		} else {
			cells[i] = th.MutedText(label)
		}
		used += ansi.Width(label) + 1
	}
	sep := th.DividerText("│")
	line := strings.Join(cells, sep)
	if activeEnd > width {
		line = ansi.Slice(line, activeEnd-width, width)
	}
	return ansi.Pad(line, width)
}
