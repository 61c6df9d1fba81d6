package components

import (
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/interpretive-systems/codecraft/internal/theme"
	"github.com/interpretive-systems/codecraft/internal/tui/ansi"
	"github.com/interpretive-systems/codecraft/internal/tui/search"
)

const resetSeq = "\x1b[0m"

// CodeView is the read-only, syntax highlighted view of the active file
// shown while the explorer has focus.
type CodeView struct {
	viewport viewport.Model

	source  string
	lexer   string
	style   string
	plain   []string
	colored []string
}

func NewCodeView() *CodeView {
	return &CodeView{}
}

// SetSource sets the code and how to highlight it. Highlighting is redone
// only when one of the inputs changed.
func (c *CodeView) SetSource(source, lexer, style string) {
	if source == c.source && lexer == c.lexer && style == c.style && c.plain != nil {
		return
	}
	c.source, c.lexer, c.style = source, lexer, style
	c.plain = strings.Split(source, "\n")
	c.colored = highlight(source, lexer, style, len(c.plain))
}

// Lines returns the unstyled lines.
func (c *CodeView) Lines() []string { return c.plain }

func highlight(source, lexer, style string, n int) []string {
	var b strings.Builder
	if err := quick.Highlight(&b, source, lexer, "terminal256", style); err != nil {
		return strings.Split(source, "\n")
	}
	out := strings.Split(strings.TrimSuffix(b.String(), "\n"), "\n")
	if len(out) != n {
		return strings.Split(source, "\n")
	}
	for i := range out {
		out[i] += resetSeq
	}
	return out
}

// SetSize sets the visible area.
func (c *CodeView) SetSize(width, height int) {
	c.viewport.Width = width
	c.viewport.Height = height
}

func (c *CodeView) Viewport() *viewport.Model { return &c.viewport }

// ScrollTo makes line i visible.
func (c *CodeView) ScrollTo(i int) {
	if i < c.viewport.YOffset || i >= c.viewport.YOffset+c.viewport.Height {
		c.viewport.SetYOffset(i - c.viewport.Height/2)
	}
}

// Render lays out the numbered lines; with an active query the matches are
// marked instead of syntax colors.
func (c *CodeView) Render(width, height int, s *search.Engine, th theme.Theme) []string {
	gutter := len(fmt.Sprint(len(c.plain)))
	bodyW := width - gutter - 3
	if bodyW < 1 {
		bodyW = 1
	}
	current := -1
	curStart := -1
	if s != nil {
		if m, ok := s.Current(); ok {
			current, curStart = m.Line, m.Start
		}
	}
	lines := make([]string, len(c.plain))
	for i, plain := range c.plain {
		var body string
		switch {
		case s != nil && s.Query() != "":
			start := -1
			if i == current {
				start = curStart
			}
			body = search.Highlight(plain, s.MatchesOn(i), start, th)
		default:
			body = c.colored[i]
		}
		num := th.MutedText(fmt.Sprintf("%*d", gutter, i+1))
		lines[i] = num + th.DividerText(" │ ") + ansi.Clip(body, bodyW)
	}
	c.SetSize(width, height)
	c.viewport.SetContent(strings.Join(lines, "\n"))
	return strings.Split(c.viewport.View(), "\n")
}
