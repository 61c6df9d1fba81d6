package wizards

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/interpretive-systems/codecraft/internal/editor"
)

// DeleteWizard confirms removing a node and everything below it.
type DeleteWizard struct {
	ed      *editor.Editor
	target  string
	path    string
	folder  bool
	inside  int
	removed int
	err     string
	done    bool
}

func NewDeleteWizard() *DeleteWizard {
	return &DeleteWizard{}
}

func (w *DeleteWizard) Init(ed *editor.Editor, target string) tea.Cmd {
	w.ed = ed
	w.target = target
	w.err = ""
	w.done = false
	w.removed = 0
	w.inside = 0
	n, ok := ed.Node(target)
	if !ok {
		w.err = "nothing selected"
		return nil
	}
	w.folder = n.IsFolder()
	w.path = ed.Path(target)
	w.inside = len(ed.Descendants(target)) - 1
	return nil
}

func (w *DeleteWizard) HandleKey(msg tea.KeyMsg) (Action, tea.Cmd) {
	switch msg.String() {
	case "esc", "n":
		return ActionClose, nil
	case "y", "enter":
		if w.path == "" {
			return ActionClose, nil
		}
		w.removed = len(w.ed.DeleteNode(w.target))
		w.done = true
		return ActionClose, nil
	}
	return ActionContinue, nil
}

func (w *DeleteWizard) Update(tea.Msg) tea.Cmd { return nil }

// Removed is the number of nodes the confirmed delete removed.
func (w *DeleteWizard) Removed() int { return w.removed }

func (w *DeleteWizard) RenderOverlay(width int) []string {
	lines := []string{strings.Repeat("─", width)}
	if w.err != "" {
		return append(lines, errorLine(w.err))
	}
	what := "file"
	if w.folder {
		what = "folder"
	}
	lines = append(lines, titleStyle.Render(fmt.Sprintf("Delete %s %s? (y/enter: delete, n/esc: cancel)", what, w.path)))
	if w.inside > 0 {
		lines = append(lines, errStyle.Render(fmt.Sprintf("This also deletes %d item(s) inside it.", w.inside)))
	}
	return lines
}

func (w *DeleteWizard) IsComplete() bool { return w.done }

func (w *DeleteWizard) Error() string { return w.err }
