package wizards

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/interpretive-systems/codecraft/internal/diffview"
	"github.com/interpretive-systems/codecraft/internal/editor"
	"github.com/interpretive-systems/codecraft/internal/theme"
	"github.com/interpretive-systems/codecraft/internal/tui/components"
)

// diffHeight is the number of diff lines shown.
const diffHeight = 12

// FixWizard previews a suggested replacement of the active file against
// its current content and applies it on confirmation.
type FixWizard struct {
	ed        *editor.Editor
	suggested string
	view      *components.DiffView
	added     int
	removed   int
	err       string
	done      bool
}

func NewFixWizard(th theme.Theme) *FixWizard {
	return &FixWizard{view: components.NewDiffView(th)}
}

// SetSuggestion sets the code to compare against; call before Init.
func (w *FixWizard) SetSuggestion(code string) { w.suggested = code }

func (w *FixWizard) SetTheme(th theme.Theme) { w.view.SetTheme(th) }

func (w *FixWizard) Init(ed *editor.Editor, _ string) tea.Cmd {
	w.ed = ed
	w.err = ""
	w.done = false
	f, ok := ed.ActiveFile()
	if !ok {
		w.err = "no active file"
		w.view.SetRows(nil)
		return nil
	}
	rows := diffview.Compare(f.Name, ed.Code(), w.suggested)
	w.added, w.removed = diffview.Stats(rows)
	w.view.SetRows(rows)
	return nil
}

func (w *FixWizard) HandleKey(msg tea.KeyMsg) (Action, tea.Cmd) {
	switch msg.String() {
	case "esc", "n":
		return ActionClose, nil
	case "y", "enter":
		if w.err != "" {
			return ActionClose, nil
		}
		if !w.ed.ReplaceActiveContent(w.suggested) {
			w.err = "no active file"
			return ActionContinue, nil
		}
		w.done = true
		return ActionClose, nil
	case "s":
		w.view.SetSideBySide(!w.view.SideBySide())
	case "j", "down":
		w.view.Viewport().LineDown(1)
	case "k", "up":
		w.view.Viewport().LineUp(1)
	case "pgdown", "ctrl+d":
		w.view.Viewport().HalfPageDown()
	case "pgup", "ctrl+u":
		w.view.Viewport().HalfPageUp()
	}
	return ActionContinue, nil
}

func (w *FixWizard) Update(tea.Msg) tea.Cmd { return nil }

func (w *FixWizard) RenderOverlay(width int) []string {
	lines := []string{
		strings.Repeat("─", width),
		titleStyle.Render(fmt.Sprintf("Suggested fix  +%d -%d", w.added, w.removed)) +
			faintStyle.Render("  (y: apply, s: layout, j/k: scroll, esc: discard)"),
	}
	if w.err != "" {
		return append(lines, errorLine(w.err))
	}
	if len(w.view.Rows()) == 0 {
		return append(lines, faintStyle.Render("The suggestion matches the current code."))
	}
	return append(lines, w.view.Render(width, diffHeight)...)
}

func (w *FixWizard) IsComplete() bool { return w.done }

func (w *FixWizard) Error() string { return w.err }
