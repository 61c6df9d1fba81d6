package ansi

import (
	"strings"

	xansi "github.com/charmbracelet/x/ansi"
	"github.com/muesli/reflow/wordwrap"
)

// Wrap breaks text on word boundaries to the given width. Words longer than
// the width are split.
func Wrap(text string, width int) []string {
	if width <= 0 {
		return []string{""}
	}
	var out []string
	for _, line := range strings.Split(text, "\n") {
		wrapped := wordwrap.String(line, width)
		for _, part := range strings.Split(wrapped, "\n") {
			if Width(part) > width {
				part = xansi.Hardwrap(part, width, false)
				out = append(out, strings.Split(part, "\n")...)
				continue
			}
			out = append(out, part)
		}
	}
	return out
}

// Hardwrap splits a single line at exactly width cells.
func Hardwrap(line string, width int) []string {
	if width <= 0 {
		return []string{""}
	}
	return strings.Split(xansi.Hardwrap(line, width, false), "\n")
}
