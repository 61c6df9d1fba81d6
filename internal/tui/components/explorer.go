package components

import (
	"strings"

	"github.com/interpretive-systems/codecraft/internal/editor"
	"github.com/interpretive-systems/codecraft/internal/theme"
	"github.com/interpretive-systems/codecraft/internal/tui/ansi"
)

// Explorer is the left pane file tree.
type Explorer struct {
	entries  []editor.Entry
	selected int
	offset   int
	activeID string
	openIDs  map[string]bool
}

// NewExplorer creates an empty explorer.
func NewExplorer() *Explorer {
	return &Explorer{}
}

// SetEntries replaces the rows, keeping the selection on the same node
// when it is still visible.
func (x *Explorer) SetEntries(entries []editor.Entry) {
	prev := x.SelectedID()
	x.entries = entries
	x.selected = 0
	for i, e := range entries {
		if e.Node.ID == prev {
			x.selected = i
			break
		}
	}
}

// SetActive marks the active file and the open tabs.
func (x *Explorer) SetActive(activeID string, openIDs []string) {
	x.activeID = activeID
	x.openIDs = make(map[string]bool, len(openIDs))
	for _, id := range openIDs {
		x.openIDs[id] = true
	}
}

func (x *Explorer) Entries() []editor.Entry { return x.entries }

func (x *Explorer) Selected() int { return x.selected }

// SelectedEntry returns the entry under the cursor.
func (x *Explorer) SelectedEntry() (editor.Entry, bool) {
	if x.selected < 0 || x.selected >= len(x.entries) {
		return editor.Entry{}, false
	}
	return x.entries[x.selected], true
}

// SelectedID is the id under the cursor or "".
func (x *Explorer) SelectedID() string {
	e, ok := x.SelectedEntry()
	if !ok {
		return ""
	}
	return e.Node.ID
}

// Select moves the cursor to id and reports whether it was found.
func (x *Explorer) Select(id string) bool {
	for i, e := range x.entries {
		if e.Node.ID == id {
			x.selected = i
			return true
		}
	}
	return false
}

// TargetFolder is where new nodes go: the selected folder, the parent of
// the selected file, or the root.
func (x *Explorer) TargetFolder() string {
	e, ok := x.SelectedEntry()
	if !ok {
		return ""
	}
	if e.Node.IsFolder() {
		return e.Node.ID
	}
	return e.Node.ParentID
}

// MoveSelection moves the cursor by delta and reports a change.
func (x *Explorer) MoveSelection(delta int) bool {
	if len(x.entries) == 0 {
		return false
	}
	n := x.selected + delta
	if n < 0 {
		n = 0
	}
	if n >= len(x.entries) {
		n = len(x.entries) - 1
	}
	changed := n != x.selected
	x.selected = n
	return changed
}

func (x *Explorer) GoToTop() bool {
	if len(x.entries) == 0 || x.selected == 0 {
		return false
	}
	x.selected = 0
	return true
}

func (x *Explorer) GoToBottom() bool {
	last := len(x.entries) - 1
	if last < 0 || x.selected == last {
		return false
	}
	x.selected = last
	return true
}

// EnsureVisible scrolls so the cursor is inside a window of the given
// height.
func (x *Explorer) EnsureVisible(height int) {
	if len(x.entries) == 0 || height <= 0 {
		x.offset = 0
		return
	}
	maxStart := len(x.entries) - height
	if maxStart < 0 {
		maxStart = 0
	}
	if x.selected < x.offset {
		x.offset = x.selected
	} else if x.selected >= x.offset+height {
		x.offset = x.selected - height + 1
	}
	if x.offset > maxStart {
		x.offset = maxStart
	}
	if x.offset < 0 {
		x.offset = 0
	}
}

// Render draws the visible rows. focused draws the cursor.
func (x *Explorer) Render(height, width int, focused bool, th theme.Theme) []string {
	lines := make([]string, 0, height)
	if len(x.entries) == 0 {
		return append(lines, th.MutedText("No files"))
	}
	x.EnsureVisible(height)
	end := x.offset + height
	if end > len(x.entries) {
		end = len(x.entries)
	}
	for i := x.offset; i < end; i++ {
		line := x.renderEntry(x.entries[i], th)
		if focused && i == x.selected {
			line = th.SelectedLine(ansi.Pad(ansi.Strip(line), width))
		}
		lines = append(lines, line)
	}
	return lines
}

func (x *Explorer) renderEntry(e editor.Entry, th theme.Theme) string {
	indent := strings.Repeat("  ", e.Depth)
	if e.Node.IsFolder() {
		icon := "▸ "
		if e.Node.IsOpen {
			icon = "▾ "
		}
		return indent + icon + th.AccentText(e.Node.Name)
	}
	name := e.Node.Name
	switch {
	case e.Node.ID == x.activeID:
		name = "● " + name
	case x.openIDs[e.Node.ID]:
		name = "○ " + name
	default:
		name = "  " + name
	}
	return indent + name
}
