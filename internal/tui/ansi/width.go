// Package ansi has width-aware helpers for strings that may carry terminal
// escape sequences.
package ansi

import (
	"strings"

	xansi "github.com/charmbracelet/x/ansi"
)

// Strip removes escape sequences.
func Strip(s string) string {
	return xansi.Strip(s)
}

// Width is the number of terminal cells s occupies.
func Width(s string) int {
	return xansi.StringWidth(s)
}

// Pad pads s with spaces to exactly w cells, truncating with an ellipsis
// when it is wider.
func Pad(s string, w int) string {
	if w <= 0 {
		return ""
	}
	vw := Width(s)
	switch {
	case vw == w:
		return s
	case vw < w:
		return s + strings.Repeat(" ", w-vw)
	}
	return xansi.Truncate(s, w, "…")
}

// Clip cuts s to at most w cells without an ellipsis.
func Clip(s string, w int) string {
	if w <= 0 {
		return ""
	}
	return xansi.Truncate(s, w, "")
}

// Slice returns at most width cells of s starting at column start.
func Slice(s string, start, width int) string {
	if start <= 0 {
		return Clip(s, width)
	}
	return xansi.TruncateLeft(xansi.Truncate(s, start+width, ""), start, "")
}
