package search

import (
	"fmt"
	"strings"

	"github.com/interpretive-systems/codecraft/internal/theme"
	"github.com/interpretive-systems/codecraft/internal/tui/ansi"
)

// RenderOverlay renders the input and match status.
func (e *Engine) RenderOverlay(width int, th theme.Theme) []string {
	if !e.active || width <= 0 {
		return nil
	}
	status := "Type to search (esc: close)"
	if e.query != "" {
		if len(e.matches) == 0 {
			status = "No matches (esc: close)"
		} else {
			status = fmt.Sprintf("Match %d of %d  (enter/↓: next, ↑: prev, esc: close)",
				e.CurrentIndex(), e.MatchCount())
		}
	}
	return []string{
		th.DividerText(strings.Repeat("─", width)),
		ansi.Pad(e.InputView(), width),
		ansi.Pad(th.MutedText(status), width),
	}
}
