package components

import (
	"fmt"
	"strings"

	"github.com/interpretive-systems/codecraft/internal/theme"
	"github.com/interpretive-systems/codecraft/internal/tui/ansi"
)

// AIStatus is the assistant connectivity indicator.
type AIStatus int

const (
	AIUnknown AIStatus = iota
	AIOnline
	AIOffline
)

// StatusBar is the bottom bar.
type StatusBar struct {
	language     string
	theme        string
	fontSize     int
	autocomplete bool
	provider     string
	ai           AIStatus
	degraded     bool
	running      string
	message      string
	keyBuffer    string
}

func NewStatusBar() *StatusBar {
	return &StatusBar{}
}

// SetSession updates the session fields shown on the right.
func (s *StatusBar) SetSession(language, themeName string, fontSize int, autocomplete, degraded bool) {
	s.language = language
	s.theme = themeName
	s.fontSize = fontSize
	s.autocomplete = autocomplete
	s.degraded = degraded
}

// SetAI sets the provider name and its status.
func (s *StatusBar) SetAI(provider string, st AIStatus) {
	s.provider = provider
	s.ai = st
}

// SetRunning shows an activity indicator; "" hides it.
func (s *StatusBar) SetRunning(indicator string) { s.running = indicator }

// SetMessage shows a transient message on the left.
func (s *StatusBar) SetMessage(msg string) { s.message = msg }

func (s *StatusBar) Message() string { return s.message }

func (s *StatusBar) SetKeyBuffer(buf string) { s.keyBuffer = buf }

// Render draws the bar. The right part is always kept visible.
func (s *StatusBar) Render(width int, th theme.Theme) string {
	left := "h: help"
	if s.keyBuffer != "" {
		left = s.keyBuffer
	}
	if s.running != "" {
		left = s.running + " running…  " + left
	}
	if s.message != "" {
		left += "  |  " + s.message
	}

	parts := []string{s.language, s.theme, fmt.Sprintf("%dpx", s.fontSize)}
	if s.autocomplete {
		parts = append(parts, "ac on")
	} else {
		parts = append(parts, "ac off")
	}
	if s.provider != "" {
		parts = append(parts, s.provider+" "+s.aiLabel())
	}
	right := th.MutedText(strings.Join(parts, " · "))
	if s.degraded {
		right = th.ErrorText("memory only") + " " + right
	}

	rightW := ansi.Width(right)
	if rightW >= width {
		return ansi.Pad(right, width)
	}
	avail := width - rightW - 1
	return ansi.Pad(th.MutedText(left), avail) + " " + right
}

func (s *StatusBar) aiLabel() string {
	switch s.ai {
	case AIOnline:
		return "●"
	case AIOffline:
		return "○ offline"
	}
	return "…"
}
