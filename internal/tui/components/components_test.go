package components

import (
	"strings"
	"testing"

	"github.com/interpretive-systems/codecraft/internal/ai"
	"github.com/interpretive-systems/codecraft/internal/diffview"
	"github.com/interpretive-systems/codecraft/internal/editor"
	"github.com/interpretive-systems/codecraft/internal/theme"
	"github.com/interpretive-systems/codecraft/internal/tui/ansi"
	"github.com/interpretive-systems/codecraft/internal/tui/search"
	"github.com/interpretive-systems/codecraft/internal/vfs"
)

func plain(lines []string) string {
	return ansi.Strip(strings.Join(lines, "\n"))
}

func sampleEntries() []editor.Entry {
	return []editor.Entry{
		{Node: vfs.Node{ID: "d", Name: "src", Type: vfs.KindFolder, IsOpen: true}, Depth: 0},
		{Node: vfs.Node{ID: "a", Name: "app.js", Type: vfs.KindFile, ParentID: "d"}, Depth: 1},
		{Node: vfs.Node{ID: "b", Name: "main.py", Type: vfs.KindFile}, Depth: 0},
	}
}

func TestExplorerSelectionAndRender(t *testing.T) {
	x := NewExplorer()
	x.SetEntries(sampleEntries())
	x.SetActive("a", []string{"a", "b"})
	if x.TargetFolder() != "d" {
		t.Fatalf("folder target = %q", x.TargetFolder())
	}
	x.MoveSelection(1)
	if x.SelectedID() != "a" || x.TargetFolder() != "d" {
		t.Fatalf("selected %q target %q", x.SelectedID(), x.TargetFolder())
	}
	if x.MoveSelection(5); x.SelectedID() != "b" || x.TargetFolder() != "" {
		t.Fatalf("selection should clamp to last row")
	}
	out := plain(x.Render(10, 30, true, theme.DefaultTheme()))
	for _, want := range []string{"▾ src", "  ● app.js", "○ main.py"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in\n%s", want, out)
		}
	}

	x.SetEntries(sampleEntries()[1:])
	if x.SelectedID() != "b" {
		t.Fatalf("selection should follow the node, got %q", x.SelectedID())
	}
}

func TestExplorerEnsureVisible(t *testing.T) {
	x := NewExplorer()
	x.SetEntries(sampleEntries())
	x.GoToBottom()
	lines := x.Render(2, 20, false, theme.DefaultTheme())
	if len(lines) != 2 || !strings.Contains(ansi.Strip(lines[1]), "main.py") {
		t.Fatalf("window = %q", lines)
	}
}

func TestTabsKeepActiveVisible(t *testing.T) {
	tabs := []Tab{{"1", "aaaaaaaaaa.js"}, {"2", "bbbbbbbbbb.js"}, {"3", "cccccccccc.js"}}
	out := ansi.Strip(RenderTabs(tabs, "3", 20, theme.DefaultTheme()))
	if ansi.Width(out) != 20 || !strings.Contains(out, "cccc") {
		t.Fatalf("tabs = %q", out)
	}
	if got := ansi.Strip(RenderTabs(nil, "", 40, theme.DefaultTheme())); !strings.Contains(got, "No open files") {
		t.Fatalf("empty tabs = %q", got)
	}
}

func TestStatusBar(t *testing.T) {
	s := NewStatusBar()
	s.SetSession("python", "monokai", 16, true, true)
	s.SetAI("ollama", AIOffline)
	s.SetMessage("saved")
	out := ansi.Strip(s.Render(100, theme.DefaultTheme()))
	for _, want := range []string{"h: help", "saved", "python · monokai · 16px · ac on · ollama ○ offline", "memory only"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in %q", want, out)
		}
	}
	if ansi.Width(out) != 100 {
		t.Fatalf("width = %d", ansi.Width(out))
	}
}

func TestCodeViewNumbersAndSearch(t *testing.T) {
	c := NewCodeView()
	c.SetSource("let a = 1;\nconsole.log(a);", "javascript", "monokai")
	out := plain(c.Render(40, 5, nil, theme.DefaultTheme()))
	if !strings.Contains(out, "1 │ let a = 1;") || !strings.Contains(out, "2 │ console.log(a);") {
		t.Fatalf("code view = %q", out)
	}

	s := search.New()
	s.SetContent(c.Lines())
	s.SetQuery("log")
	out = plain(c.Render(40, 5, s, theme.DefaultTheme()))
	if !strings.Contains(out, "console.log(a);") {
		t.Fatalf("search view = %q", out)
	}
}

func TestDiffViewModes(t *testing.T) {
	d := NewDiffView(theme.DefaultTheme())
	d.SetRows(diffview.Compare("main.js", "a\nb\nc\n", "a\nB\nc\n"))
	out := plain(d.Render(60, 20))
	if !strings.Contains(out, "- b") || !strings.Contains(out, "+ B") || !strings.Contains(out, "│") {
		t.Fatalf("side by side = %q", out)
	}
	d.SetSideBySide(false)
	out = plain(d.Render(60, 20))
	if del, add := strings.Index(out, "- b"), strings.Index(out, "+ B"); del < 0 || add < del {
		t.Fatalf("inline = %q", out)
	}
}

func TestChatPanelRendersTranscript(t *testing.T) {
	c := NewChatPanel()
	msgs := []ai.Message{
		{ID: "1", Role: ai.RoleUser, Content: "what is x?"},
		{ID: "1-ai", Role: ai.RoleAssistant, Content: "x is **one**"},
	}
	out := plain(c.Render(msgs, true, ai.FailureNotice, 50, 20, theme.DefaultTheme()))
	for _, want := range []string{"You", "what is x?", "AI", "one", "AI is thinking", "Is Ollama running?"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in\n%s", want, out)
		}
	}
}

func TestOutputPanel(t *testing.T) {
	out := plain(RenderOutput("", "boom", false, 30, 8, theme.DefaultTheme()))
	if !strings.Contains(out, "Error") || !strings.Contains(out, "boom") {
		t.Fatalf("error panel = %q", out)
	}
	out = plain(RenderOutput("hello", "", false, 30, 8, theme.DefaultTheme()))
	if !strings.Contains(out, "Output") || !strings.Contains(out, "hello") {
		t.Fatalf("output panel = %q", out)
	}
}
