package wizards

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/interpretive-systems/codecraft/internal/editor"
	"github.com/interpretive-systems/codecraft/internal/langs"
	"github.com/interpretive-systems/codecraft/internal/tui/ansi"
)

// NameMode selects what a NameWizard does with the entered name.
type NameMode int

const (
	NewFile NameMode = iota
	NewFolder
	Rename
)

// NameWizard asks for a name to create or rename a node. For creation the
// target is the parent folder ("" for the root); for Rename it is the node.
type NameWizard struct {
	mode   NameMode
	ed     *editor.Editor
	target string
	input  textinput.Model
	err    string
	done   bool
}

func NewNameWizard(mode NameMode) *NameWizard {
	return &NameWizard{mode: mode}
}

func (w *NameWizard) Init(ed *editor.Editor, target string) tea.Cmd {
	w.ed = ed
	w.target = target
	w.err = ""
	w.done = false

	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 255
	switch w.mode {
	case NewFile:
		ti.Placeholder = "untitled." + extension(ed.State().Language)
	case NewFolder:
		ti.Placeholder = editor.NewFolderName
	case Rename:
		if n, ok := ed.Node(target); ok {
			ti.SetValue(n.Name)
			ti.CursorEnd()
		}
	}
	w.input = ti
	return w.input.Focus()
}

func extension(lang string) string {
	if l, err := langs.Lookup(lang); err == nil {
		return l.Extension
	}
	return "txt"
}

func (w *NameWizard) HandleKey(msg tea.KeyMsg) (Action, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return ActionClose, nil
	case "enter":
		if err := w.apply(strings.TrimSpace(w.input.Value())); err != nil {
			w.err = err.Error()
			return ActionContinue, nil
		}
		w.done = true
		return ActionClose, nil
	}
	var cmd tea.Cmd
	w.input, cmd = w.input.Update(msg)
	return ActionContinue, cmd
}

func (w *NameWizard) apply(name string) error {
	switch w.mode {
	case NewFile:
		if name == "" {
			_, err := w.ed.CreateFile(w.target)
			return err
		}
		lang := w.ed.State().Language
		if l, ok := langs.ByExtension(name); ok {
			lang = l.ID
		}
		_, err := w.ed.AddFile(w.target, name, langs.DefaultCode(lang))
		return err
	case NewFolder:
		if name == "" {
			_, err := w.ed.CreateFolder(w.target)
			return err
		}
		_, err := w.ed.CreateFolderNamed(w.target, name)
		return err
	default:
		if name == "" {
			return errors.New("name cannot be empty")
		}
		w.ed.RenameNode(w.target, name)
		return nil
	}
}

func (w *NameWizard) Update(tea.Msg) tea.Cmd { return nil }

func (w *NameWizard) RenderOverlay(width int) []string {
	var title string
	switch w.mode {
	case NewFile:
		title = "New file in " + w.where()
	case NewFolder:
		title = "New folder in " + w.where()
	default:
		title = "Rename " + w.ed.Path(w.target)
	}
	lines := []string{
		strings.Repeat("─", width),
		titleStyle.Render(title) + faintStyle.Render("  (enter: confirm, esc: cancel)"),
		ansi.Pad(w.input.View(), width),
	}
	if w.err != "" {
		lines = append(lines, errorLine(w.err))
	}
	return lines
}

func (w *NameWizard) where() string {
	if w.target == "" {
		return "/"
	}
	return w.ed.Path(w.target) + "/"
}

func (w *NameWizard) IsComplete() bool { return w.done }

func (w *NameWizard) Error() string { return w.err }
