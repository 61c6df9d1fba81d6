// Package wizards implements the modal overlays of the editor: naming,
// deleting, picking from a list, configuring the assistant and reviewing a
// suggested fix.
package wizards

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/interpretive-systems/codecraft/internal/editor"
)

// Action represents what the wizard wants the parent to do.
type Action int

const (
	ActionContinue Action = iota // keep the wizard open
	ActionClose                  // close the wizard
)

// Wizard is the interface all wizards implement.
type Wizard interface {
	// Init prepares the wizard for the node or value named by target.
	Init(ed *editor.Editor, target string) tea.Cmd

	// HandleKey processes keyboard input.
	HandleKey(msg tea.KeyMsg) (Action, tea.Cmd)

	// Update processes async results.
	Update(msg tea.Msg) tea.Cmd

	// RenderOverlay returns the wizard lines.
	RenderOverlay(width int) []string

	// IsComplete reports whether the wizard applied its change.
	IsComplete() bool

	// Error returns the last error message.
	Error() string
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	faintStyle = lipgloss.NewStyle().Faint(true)
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	busyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
)

func errorLine(err string) string {
	return errStyle.Render("Error: ") + err
}
