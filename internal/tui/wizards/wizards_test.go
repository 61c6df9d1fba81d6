package wizards

import (
	"context"
	"strconv"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/interpretive-systems/codecraft/internal/ai"
	"github.com/interpretive-systems/codecraft/internal/editor"
	"github.com/interpretive-systems/codecraft/internal/langs"
	"github.com/interpretive-systems/codecraft/internal/store"
	"github.com/interpretive-systems/codecraft/internal/theme"
	"github.com/interpretive-systems/codecraft/internal/tui/ansi"
	"github.com/interpretive-systems/codecraft/internal/vfs"
)

func newEditor(t *testing.T) *editor.Editor {
	t.Helper()
	n := 0
	ids := vfs.WithIDFunc(func() string {
		n++
		return "n" + strconv.Itoa(n)
	})
	ed := editor.New(editor.Options{Store: store.NewMemory(), Tree: vfs.New(ids)})
	ed.InitializeFileSystem()
	return ed
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func overlay(w Wizard) string {
	return ansi.Strip(strings.Join(w.RenderOverlay(80), "\n"))
}

func TestNameWizardNewFileTakesLanguageFromName(t *testing.T) {
	ed := newEditor(t)
	w := NewNameWizard(NewFile)
	w.Init(ed, "")
	w.HandleKey(key("util.py"))
	if act, _ := w.HandleKey(key("enter")); act != ActionClose || !w.IsComplete() {
		t.Fatalf("wizard did not complete: %s", w.Error())
	}
	f, ok := ed.ActiveFile()
	if !ok || f.Name != "util.py" || f.Language != "python" || f.Content != langs.DefaultCode("python") {
		t.Fatalf("active file = %+v", f)
	}
}

func TestNameWizardEmptyNameUsesDefaults(t *testing.T) {
	ed := newEditor(t)
	w := NewNameWizard(NewFile)
	w.Init(ed, "")
	w.HandleKey(key("enter"))
	if f, _ := ed.ActiveFile(); f.Name != "untitled.js" {
		t.Fatalf("new file = %q", f.Name)
	}

	fw := NewNameWizard(NewFolder)
	fw.Init(ed, "")
	fw.HandleKey(key("enter"))
	if _, ok := ed.Find(editor.NewFolderName); !ok {
		t.Fatalf("folder not created")
	}
}

func TestNameWizardRename(t *testing.T) {
	ed := newEditor(t)
	f, _ := ed.ActiveFile()
	w := NewNameWizard(Rename)
	w.Init(ed, f.ID)
	if !strings.Contains(overlay(w), "Rename main.js") {
		t.Fatalf("overlay = %q", overlay(w))
	}
	// clear the prefilled name
	for range len(f.Name) {
		w.HandleKey(tea.KeyMsg{Type: tea.KeyBackspace})
	}
	if act, _ := w.HandleKey(key("enter")); act != ActionContinue || w.Error() == "" {
		t.Fatalf("empty rename should be rejected")
	}
	w.HandleKey(key("app.js"))
	w.HandleKey(key("enter"))
	if n, _ := ed.Node(f.ID); n.Name != "app.js" {
		t.Fatalf("name = %q", n.Name)
	}
}

func TestNameWizardInvalidParent(t *testing.T) {
	ed := newEditor(t)
	w := NewNameWizard(NewFolder)
	w.Init(ed, "missing")
	w.HandleKey(key("x"))
	if act, _ := w.HandleKey(key("enter")); act != ActionContinue || w.Error() == "" {
		t.Fatalf("expected an error for an unknown parent")
	}
}

func TestDeleteWizardCascades(t *testing.T) {
	ed := newEditor(t)
	dir, _ := ed.CreateFolderNamed("", "src")
	ed.AddFile(dir.ID, "a.js", "")
	w := NewDeleteWizard()
	w.Init(ed, dir.ID)
	if out := overlay(w); !strings.Contains(out, "Delete folder src?") || !strings.Contains(out, "1 item(s)") {
		t.Fatalf("overlay = %q", out)
	}
	w.HandleKey(key("y"))
	if !w.IsComplete() || w.Removed() != 2 {
		t.Fatalf("removed = %d", w.Removed())
	}
	if _, ok := ed.Find("src/a.js"); ok {
		t.Fatalf("child survived delete")
	}
}

func TestDeleteWizardCountsOnlyItsOwnSubtree(t *testing.T) {
	ed := newEditor(t)
	first, _ := ed.CreateFolderNamed("", "src")
	second, _ := ed.CreateFolderNamed("", "src")
	ed.AddFile(first.ID, "a.js", "")
	ed.AddFile(second.ID, "b.js", "")
	ed.AddFile(second.ID, "c.js", "")

	w := NewDeleteWizard()
	w.Init(ed, first.ID)
	if out := overlay(w); !strings.Contains(out, "1 item(s)") {
		t.Fatalf("overlay = %q", out)
	}
	w.HandleKey(key("y"))
	if w.Removed() != 2 {
		t.Fatalf("removed = %d", w.Removed())
	}
	if _, ok := ed.Node(second.ID); !ok {
		t.Fatalf("sibling folder deleted")
	}
}

func TestDeleteWizardCancel(t *testing.T) {
	ed := newEditor(t)
	f, _ := ed.ActiveFile()
	w := NewDeleteWizard()
	w.Init(ed, f.ID)
	if act, _ := w.HandleKey(key("esc")); act != ActionClose || w.IsComplete() {
		t.Fatalf("escape should cancel")
	}
	if ed.Len() != 1 {
		t.Fatalf("file deleted on cancel")
	}
}

func TestPickerAppliesSelection(t *testing.T) {
	ed := newEditor(t)
	var items []Item
	for _, l := range langs.All() {
		items = append(items, Item{ID: l.ID, Label: l.Label})
	}
	w := NewPicker("Language", items, func(ed *editor.Editor, id string) error { return ed.SetLanguage(id) })
	w.Init(ed, "javascript")
	w.HandleKey(key("down"))
	w.HandleKey(key("enter"))
	if !w.IsComplete() || ed.State().Language != items[1].ID || w.Chosen() != items[1].ID {
		t.Fatalf("language = %s, want %s", ed.State().Language, items[1].ID)
	}
}

type fakeConfigurable struct {
	cfg    ai.Config
	online bool
}

func (f *fakeConfigurable) Config() ai.Config         { return f.cfg }
func (f *fakeConfigurable) UpdateConfig(p ai.Patch)   { f.cfg = f.cfg.Apply(p) }
func (f *fakeConfigurable) Ping(context.Context) bool { return f.online }

func TestAIConfigWizard(t *testing.T) {
	c := &fakeConfigurable{cfg: ai.DefaultConfig(), online: true}
	w := NewAIConfigWizard(c)
	w.Init(nil, "")
	w.HandleKey(key("enter"))
	w.HandleKey(key("2"))
	w.HandleKey(key("enter"))
	w.HandleKey(key("enter"))
	_, cmd := w.HandleKey(key("enter"))
	if cmd == nil {
		t.Fatalf("expected a connectivity check, err = %s", w.Error())
	}
	w.Update(cmd())
	if !w.IsComplete() || c.cfg.Model != ai.DefaultModel+"2" {
		t.Fatalf("config = %+v", c.cfg)
	}
	if !strings.Contains(overlay(w), "reachable") {
		t.Fatalf("overlay = %q", overlay(w))
	}
}

func TestAIConfigWizardRejectsBadTemperature(t *testing.T) {
	c := &fakeConfigurable{cfg: ai.DefaultConfig()}
	w := NewAIConfigWizard(c)
	w.Init(nil, "")
	w.HandleKey(key("enter"))
	w.HandleKey(key("enter"))
	w.HandleKey(key("x"))
	w.HandleKey(key("enter"))
	if w.Error() == "" || w.IsComplete() {
		t.Fatalf("expected an error for temperature 0.7x")
	}
}

func TestFixWizardApplies(t *testing.T) {
	ed := newEditor(t)
	ed.ReplaceActiveContent("a\nb\nc\n")
	w := NewFixWizard(theme.DefaultTheme())
	w.SetSuggestion("a\nB\nc\n")
	w.Init(ed, "")
	if out := overlay(w); !strings.Contains(out, "+1 -1") {
		t.Fatalf("overlay = %q", out)
	}
	w.HandleKey(key("y"))
	if f, _ := ed.ActiveFile(); !w.IsComplete() || f.Content != "a\nB\nc\n" {
		t.Fatalf("content = %q", f.Content)
	}
}
