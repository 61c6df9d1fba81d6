package tui

import (
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/textarea"
)

// textBuffer adapts the textarea to editor.Buffer. The textarea itself is
// only touched from the update loop; value is the last synced content and
// may be read from run commands.
type textBuffer struct {
	ta *textarea.Model

	mu    sync.Mutex
	value string
}

func newTextBuffer(ta *textarea.Model) *textBuffer {
	return &textBuffer{ta: ta, value: ta.Value()}
}

// SetValue loads s into the textarea. The textarea may normalize input
// (tabs), so the stored value is read back from it.
func (b *textBuffer) SetValue(s string) {
	b.ta.SetValue(s)
	b.store(b.ta.Value())
}

func (b *textBuffer) Value() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.value
}

// sync records the textarea content and reports whether it changed.
func (b *textBuffer) sync() (string, bool) {
	v := b.ta.Value()
	b.mu.Lock()
	defer b.mu.Unlock()
	changed := v != b.value
	b.value = v
	return v, changed
}

func (b *textBuffer) store(s string) {
	b.mu.Lock()
	b.value = s
	b.mu.Unlock()
}

// cursorOffset is the byte offset of the textarea cursor in its value.
func cursorOffset(ta *textarea.Model) int {
	lines := strings.Split(ta.Value(), "\n")
	row := ta.Line()
	li := ta.LineInfo()
	col := li.StartColumn + li.ColumnOffset
	off := 0
	for i := 0; i < row && i < len(lines); i++ {
		off += len(lines[i]) + 1
	}
	if row < len(lines) {
		r := []rune(lines[row])
		if col > len(r) {
			col = len(r)
		}
		off += len(string(r[:col]))
	}
	return off
}
