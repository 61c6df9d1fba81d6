package tui

import (
	"strings"

	"github.com/interpretive-systems/codecraft/internal/theme"
	"github.com/interpretive-systems/codecraft/internal/tui/ansi"
)

const minPane = 20

// Layout manages screen layout calculations.
type Layout struct {
	width     int
	height    int
	leftWidth int
}

func NewLayout() *Layout {
	return &Layout{}
}

// SetSize updates the dimensions and picks an initial explorer width.
func (l *Layout) SetSize(width, height int) {
	l.width = width
	l.height = height
	if l.leftWidth == 0 {
		l.leftWidth = width / 4
	}
}

func (l *Layout) Width() int  { return l.width }
func (l *Layout) Height() int { return l.height }

// LeftWidth is the explorer width.
func (l *Layout) LeftWidth() int {
	if l.leftWidth < minPane {
		return minPane
	}
	return l.leftWidth
}

// RightWidth is the editor width, right of the divider.
func (l *Layout) RightWidth() int {
	w := l.width - l.LeftWidth() - 1
	if w < 1 {
		w = 1
	}
	return w
}

// ContentHeight is the height left for the columns once the bars, the
// rules and the overlays are placed.
func (l *Layout) ContentHeight(overlayHeight int) int {
	h := l.height - 4 - overlayHeight
	if h < 1 {
		h = 1
	}
	return h
}

// AdjustLeftWidth widens or narrows the explorer.
func (l *Layout) AdjustLeftWidth(delta int) {
	w := l.LeftWidth() + delta
	maxLeft := l.width - minPane
	if maxLeft < minPane {
		maxLeft = minPane
	}
	l.leftWidth = max(minPane, min(w, maxLeft))
}

// RenderFrame renders the top bar, the two columns, the overlays and the
// bottom bar.
func (l *Layout) RenderFrame(topLeft, topRight string, leftLines, rightLines, overlayLines []string, bottomBar string, th theme.Theme) string {
	var b strings.Builder

	b.WriteString(l.renderTopBar(topLeft, topRight))
	b.WriteByte('\n')
	b.WriteString(th.DividerText(strings.Repeat("─", l.width)))
	b.WriteByte('\n')

	leftW := l.LeftWidth()
	rightW := l.RightWidth()
	sep := th.DividerText("│")
	rows := max(len(leftLines), len(rightLines))
	for i := 0; i < rows; i++ {
		var left, right string
		if i < len(leftLines) {
			left = leftLines[i]
		}
		if i < len(rightLines) {
			right = rightLines[i]
		}
		b.WriteString(ansi.Pad(left, leftW))
		b.WriteString(sep)
		b.WriteString(ansi.Pad(right, rightW))
		if i < rows-1 {
			b.WriteByte('\n')
		}
	}

	for _, line := range overlayLines {
		b.WriteByte('\n')
		b.WriteString(ansi.Pad(line, l.width))
	}

	b.WriteByte('\n')
	b.WriteString(th.DividerText(strings.Repeat("─", l.width)))
	b.WriteByte('\n')
	b.WriteString(bottomBar)
	return b.String()
}

func (l *Layout) renderTopBar(left, right string) string {
	rightW := ansi.Width(right)
	if rightW >= l.width {
		return ansi.Pad(right, l.width)
	}
	return ansi.Pad(left, l.width-rightW-1) + " " + right
}
