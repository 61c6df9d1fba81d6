package wizards

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/interpretive-systems/codecraft/internal/editor"
)

// Item is one choice of a picker.
type Item struct {
	ID    string
	Label string
}

// PickerWizard chooses one item from a list and hands it to apply.
type PickerWizard struct {
	title string
	items []Item
	apply func(ed *editor.Editor, id string) error

	ed     *editor.Editor
	index  int
	offset int
	err    string
	done   bool
	chosen string
}

// visible is the number of list rows shown at once.
const visible = 8

func NewPicker(title string, items []Item, apply func(ed *editor.Editor, id string) error) *PickerWizard {
	return &PickerWizard{title: title, items: items, apply: apply}
}

// SetItems replaces the choices, for lists that depend on the tree.
func (w *PickerWizard) SetItems(items []Item) { w.items = items }

// Init places the cursor on target when it is one of the items.
func (w *PickerWizard) Init(ed *editor.Editor, target string) tea.Cmd {
	w.ed = ed
	w.err = ""
	w.done = false
	w.chosen = ""
	w.index = 0
	w.offset = 0
	for i, it := range w.items {
		if it.ID == target {
			w.index = i
			break
		}
	}
	w.ensureVisible()
	return nil
}

func (w *PickerWizard) HandleKey(msg tea.KeyMsg) (Action, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		return ActionClose, nil
	case "j", "down":
		if w.index < len(w.items)-1 {
			w.index++
		}
	case "k", "up":
		if w.index > 0 {
			w.index--
		}
	case "g":
		w.index = 0
	case "G":
		w.index = len(w.items) - 1
	case "enter":
		if len(w.items) == 0 {
			return ActionClose, nil
		}
		id := w.items[w.index].ID
		if err := w.apply(w.ed, id); err != nil {
			w.err = err.Error()
			return ActionContinue, nil
		}
		w.chosen = id
		w.done = true
		return ActionClose, nil
	}
	w.ensureVisible()
	return ActionContinue, nil
}

func (w *PickerWizard) ensureVisible() {
	if w.index < w.offset {
		w.offset = w.index
	} else if w.index >= w.offset+visible {
		w.offset = w.index - visible + 1
	}
}

func (w *PickerWizard) Update(tea.Msg) tea.Cmd { return nil }

// Chosen is the id applied by the last completed pick.
func (w *PickerWizard) Chosen() string { return w.chosen }

func (w *PickerWizard) RenderOverlay(width int) []string {
	lines := []string{
		strings.Repeat("─", width),
		titleStyle.Render(w.title) + faintStyle.Render("  (j/k: move, enter: select, esc: cancel)"),
	}
	end := w.offset + visible
	if end > len(w.items) {
		end = len(w.items)
	}
	for i := w.offset; i < end; i++ {
		cur := "  "
		if i == w.index {
			cur = "> "
		}
		lines = append(lines, cur+w.items[i].Label)
	}
	if len(w.items) > visible {
		lines = append(lines, faintStyle.Render(fmt.Sprintf("%d/%d", w.index+1, len(w.items))))
	}
	if w.err != "" {
		lines = append(lines, errorLine(w.err))
	}
	return lines
}

func (w *PickerWizard) IsComplete() bool { return w.done }

func (w *PickerWizard) Error() string { return w.err }
