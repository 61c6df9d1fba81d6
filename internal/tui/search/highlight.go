package search

import (
	"strings"

	"github.com/interpretive-systems/codecraft/internal/theme"
)

// Highlight renders a plain line with its matches marked. current is the
// rune start of the selected match on this line, or -1.
func Highlight(line string, matches []Match, current int, th theme.Theme) string {
	if len(matches) == 0 {
		return line
	}
	runes := []rune(line)
	var b strings.Builder
	pos := 0
	for _, m := range matches {
		if m.Start < pos || m.End > len(runes) {
			continue
		}
		b.WriteString(string(runes[pos:m.Start]))
		b.WriteString(th.MatchText(string(runes[m.Start:m.End]), m.Start == current))
		pos = m.End
	}
	b.WriteString(string(runes[pos:]))
	return b.String()
}
