package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/interpretive-systems/codecraft/internal/ai"
	"github.com/interpretive-systems/codecraft/internal/theme"
	"github.com/interpretive-systems/codecraft/internal/tui/ansi"
)

// ChatPanel draws the assistant transcript and the prompt input.
type ChatPanel struct {
	input  textinput.Model
	scroll int // lines scrolled up from the bottom

	renderer      *glamour.TermRenderer
	rendererKey   string
	renderedCache map[string][]string
}

func NewChatPanel() *ChatPanel {
	ti := textinput.New()
	ti.Placeholder = "Ask about your code…"
	ti.Prompt = "› "
	ti.CharLimit = 0
	return &ChatPanel{input: ti, renderedCache: map[string][]string{}}
}

func (c *ChatPanel) Focus() tea.Cmd { return c.input.Focus() }

func (c *ChatPanel) Blur() { c.input.Blur() }

func (c *ChatPanel) Focused() bool { return c.input.Focused() }

func (c *ChatPanel) Value() string { return c.input.Value() }

func (c *ChatPanel) Reset() {
	c.input.SetValue("")
	c.scroll = 0
}

// Update forwards a message to the input.
func (c *ChatPanel) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return cmd
}

// Scroll moves the transcript by delta lines; positive scrolls back.
func (c *ChatPanel) Scroll(delta int) {
	c.scroll += delta
	if c.scroll < 0 {
		c.scroll = 0
	}
}

// Render draws the transcript bottom-aligned, followed by the input.
func (c *ChatPanel) Render(msgs []ai.Message, thinking bool, notice string, width, height int, th theme.Theme) []string {
	if height < 3 {
		height = 3
	}
	var body []string
	if len(msgs) == 0 {
		body = append(body, th.MutedText("Ask a question, or use e/f/o on the current code."))
	}
	for _, m := range msgs {
		body = append(body, c.renderMessage(m, width, th)...)
		body = append(body, "")
	}
	if thinking {
		body = append(body, th.MutedText("AI is thinking…"))
	}
	if notice != "" {
		body = append(body, th.ErrorText(notice))
	}

	room := height - 2
	maxScroll := len(body) - room
	if maxScroll < 0 {
		maxScroll = 0
	}
	if c.scroll > maxScroll {
		c.scroll = maxScroll
	}
	end := len(body) - c.scroll
	start := end - room
	if start < 0 {
		start = 0
	}
	lines := make([]string, 0, height)
	title := "Assistant (ctrl+k: close, ctrl+l: clear, esc: editor)"
	if c.scroll > 0 {
		title += fmt.Sprintf("  ↑%d", c.scroll)
	}
	lines = append(lines, th.AccentText(ansi.Clip(title, width)))
	lines = append(lines, body[start:end]...)
	for len(lines) < height-1 {
		lines = append(lines, "")
	}
	lines = append(lines, ansi.Pad(c.input.View(), width))
	return lines
}

func (c *ChatPanel) renderMessage(m ai.Message, width int, th theme.Theme) []string {
	if m.Role == ai.RoleUser {
		out := []string{th.AccentText("You")}
		for _, l := range ansi.Wrap(m.Content, width) {
			out = append(out, l)
		}
		return out
	}
	key := fmt.Sprintf("%s/%d/%d/%s", m.ID, len(m.Content), width, th.GlamourStyle())
	if cached, ok := c.renderedCache[key]; ok {
		return cached
	}
	out := append([]string{th.SuccessText("AI")}, c.markdown(m.Content, width, th)...)
	c.renderedCache[key] = out
	return out
}

func (c *ChatPanel) markdown(md string, width int, th theme.Theme) []string {
	if strings.TrimSpace(md) == "" {
		return nil
	}
	key := fmt.Sprintf("%d/%s", width, th.GlamourStyle())
	if c.renderer == nil || c.rendererKey != key {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(th.GlamourStyle()),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return ansi.Wrap(md, width)
		}
		c.renderer, c.rendererKey = r, key
		c.renderedCache = map[string][]string{}
	}
	out, err := c.renderer.Render(md)
	if err != nil {
		return ansi.Wrap(md, width)
	}
	lines := strings.Split(strings.Trim(out, "\n"), "\n")
	for i, l := range lines {
		lines[i] = ansi.Clip(l, width)
	}
	return lines
}
