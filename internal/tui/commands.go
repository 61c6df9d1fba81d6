package tui

import (
	"context"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/interpretive-systems/codecraft/internal/ai"
	"github.com/interpretive-systems/codecraft/internal/editor"
)

// pingInterval is how often the assistant connectivity is checked.
const pingInterval = 30 * time.Second

// writeClipboard is replaced in tests.
var writeClipboard = clipboard.WriteAll

// runCode executes the active code.
func runCode(ctx context.Context, ed *editor.Editor) tea.Cmd {
	return func() tea.Msg {
		res, err := ed.RunCode(ctx)
		return runResultMsg{res: res, err: err}
	}
}

// pingAI checks the assistant service.
func pingAI(ctx context.Context, p ai.Provider) tea.Cmd {
	if p == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return aiStatusMsg{online: p.Ping(ctx)}
	}
}

// pingLater schedules a single connectivity check.
func pingLater() tea.Cmd {
	return tea.Tick(pingInterval, func(time.Time) tea.Msg {
		return pingTickMsg{}
	})
}

// waitChat reads the next update of a stream.
func waitChat(ch <-chan ai.Update) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-ch
		if !ok {
			return chatClosedMsg{}
		}
		return chatUpdateMsg{update: u, ch: ch}
	}
}

// waitSuggestion reads the next inline completion.
func waitSuggestion(ch <-chan ai.Suggestion) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return nil
		}
		return suggestionMsg{s: s}
	}
}

// copyText writes text to the system clipboard.
func copyText(what, text string) tea.Cmd {
	return func() tea.Msg {
		return clipboardMsg{what: what, err: writeClipboard(text)}
	}
}
