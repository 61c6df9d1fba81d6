package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/interpretive-systems/codecraft/internal/editor"
	"github.com/interpretive-systems/codecraft/internal/execution"
	"github.com/interpretive-systems/codecraft/internal/store"
)

type fakeRunner struct {
	res   execution.Result
	calls int
}

func (f *fakeRunner) Run(_ context.Context, _, code string) (execution.Result, error) {
	f.calls++
	r := f.res
	r.Code = code
	return r, nil
}

func (f *fakeRunner) Running() bool { return false }

func baseModelForTest(t *testing.T, runner editor.Runner) Program {
	t.Helper()
	opts := editor.Options{Store: store.NewMemory()}
	if runner != nil {
		opts.Runner = runner
	}
	ed := editor.New(opts)
	ed.InitializeFileSystem()

	m := NewProgram(context.Background(), Options{Editor: ed})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	return next.(Program)
}

func press(t *testing.T, m Program, keys ...string) Program {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "ctrl+k":
			msg = tea.KeyMsg{Type: tea.KeyCtrlK}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(Program)
	}
	return m
}

func plainView(m Program) string {
	return ansi.Strip(m.View())
}

func TestView_Initial(t *testing.T) {
	m := baseModelForTest(t, nil)
	plain := plainView(m)

	if !strings.HasPrefix(plain, "codecraft | main.js (JavaScript)") {
		t.Fatalf("unexpected header: %q", strings.SplitN(plain, "\n", 2)[0])
	}
	if !strings.Contains(plain, "│") {
		t.Fatalf("expected vertical divider in view")
	}
	if !strings.Contains(plain, "javascript · vs-dark") {
		t.Fatalf("expected session in status bar, got: %q", plain)
	}
	if !strings.Contains(plain, "[explorer]") {
		t.Fatalf("explorer should start focused")
	}
}

func TestView_LoadingBeforeSize(t *testing.T) {
	ed := editor.New(editor.Options{Store: store.NewMemory()})
	ed.InitializeFileSystem()
	m := NewProgram(context.Background(), Options{Editor: ed})
	if got := m.View(); got != "Loading..." {
		t.Fatalf("View() = %q", got)
	}
}

func TestHelpToggle(t *testing.T) {
	m := press(t, baseModelForTest(t, nil), "?")
	if !strings.Contains(plainView(m), "find in file") {
		t.Fatalf("help not shown")
	}
	m = press(t, m, "esc")
	if m.state.ShowHelp {
		t.Fatalf("esc should close help")
	}
}

func TestNewFileWizard(t *testing.T) {
	m := press(t, baseModelForTest(t, nil), "n")
	if m.state.ActiveWizard != "newfile" {
		t.Fatalf("active wizard = %q", m.state.ActiveWizard)
	}
	if !strings.Contains(plainView(m), "New file in /") {
		t.Fatalf("wizard overlay missing")
	}

	m = press(t, m, "util.py", "enter")
	if m.state.ActiveWizard != "" {
		t.Fatalf("wizard should close")
	}
	f, ok := m.state.Editor.ActiveFile()
	if !ok || f.Name != "util.py" || f.Language != "python" {
		t.Fatalf("active file = %+v", f)
	}
	if m.state.Focus != FocusEditor {
		t.Fatalf("new file should be opened for editing")
	}
	if !strings.Contains(plainView(m), "util.py") {
		t.Fatalf("tab for new file missing")
	}
}

func TestDeleteWizard(t *testing.T) {
	m := baseModelForTest(t, nil)
	m = press(t, m, "d")
	if !strings.Contains(plainView(m), "Delete file main.js?") {
		t.Fatalf("confirmation missing: %q", plainView(m))
	}
	m = press(t, m, "y")
	if m.state.Editor.Len() != 0 {
		t.Fatalf("file not deleted")
	}
	if m.state.StatusBar.Message() != "deleted 1 item(s)" {
		t.Fatalf("status = %q", m.state.StatusBar.Message())
	}
	if !strings.Contains(plainView(m), "No open files") {
		t.Fatalf("tabs should be empty")
	}
}

func TestTypingUpdatesActiveFile(t *testing.T) {
	m := press(t, baseModelForTest(t, nil), "i")
	if m.state.Focus != FocusEditor {
		t.Fatalf("focus = %v", m.state.Focus)
	}
	before := m.state.Editor.Code()
	m = press(t, m, "x")
	after := m.state.Editor.Code()
	if len(after) != len(before)+1 || !strings.Contains(after, "x") {
		t.Fatalf("edit not stored: %q", after)
	}
	f, _ := m.state.Editor.ActiveFile()
	if f.Content != after {
		t.Fatalf("file content not synced")
	}

	m = press(t, m, "esc")
	if m.state.Focus != FocusExplorer {
		t.Fatalf("esc should return to the explorer")
	}
}

func TestRunShowsOutput(t *testing.T) {
	runner := &fakeRunner{res: execution.Result{Output: "hello from run"}}
	m := baseModelForTest(t, runner)

	cmd := runCode(context.Background(), m.state.Editor)
	next, _ := m.Update(cmd())
	m = next.(Program)

	if runner.calls != 1 {
		t.Fatalf("runner calls = %d", runner.calls)
	}
	if m.state.Running || !m.state.ShowOutput {
		t.Fatalf("running=%v output=%v", m.state.Running, m.state.ShowOutput)
	}
	if !strings.Contains(plainView(m), "hello from run") {
		t.Fatalf("output missing: %q", plainView(m))
	}
	if m.state.StatusBar.Message() != "run finished" {
		t.Fatalf("status = %q", m.state.StatusBar.Message())
	}
}

func TestRunWithoutRunnerReportsFailure(t *testing.T) {
	m := baseModelForTest(t, nil)
	next, _ := m.Update(runCode(context.Background(), m.state.Editor)())
	m = next.(Program)
	if m.state.StatusBar.Message() != "run failed" {
		t.Fatalf("status = %q", m.state.StatusBar.Message())
	}
}

func TestCopyCode(t *testing.T) {
	var copied string
	old := writeClipboard
	writeClipboard = func(s string) error { copied = s; return nil }
	defer func() { writeClipboard = old }()

	m := baseModelForTest(t, nil)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	m = next.(Program)
	if cmd == nil {
		t.Fatalf("expected a clipboard command")
	}
	next, _ = m.Update(cmd())
	m = next.(Program)
	if copied != m.state.Editor.Code() {
		t.Fatalf("copied %q", copied)
	}
	if m.state.StatusBar.Message() != "copied code" {
		t.Fatalf("status = %q", m.state.StatusBar.Message())
	}
}

func TestChatWithoutAssistant(t *testing.T) {
	m := press(t, baseModelForTest(t, nil), "ctrl+k")
	if m.state.Focus == FocusChat {
		t.Fatalf("chat cannot take focus without an assistant")
	}
	if m.state.StatusBar.Message() != "assistant is not configured" {
		t.Fatalf("status = %q", m.state.StatusBar.Message())
	}
}

func TestThemePicker(t *testing.T) {
	m := press(t, baseModelForTest(t, nil), "T")
	if m.state.ActiveWizard != "theme" {
		t.Fatalf("active wizard = %q", m.state.ActiveWizard)
	}
	// vs-dark is preselected; the next entry is vs-light.
	m = press(t, m, "j", "enter")
	if got := m.state.Editor.State().Theme; got != "vs-light" {
		t.Fatalf("theme = %q", got)
	}
	if m.state.Theme.Name != "vs-light" {
		t.Fatalf("palette not refreshed")
	}
}

func TestFontSizeWithCount(t *testing.T) {
	m := baseModelForTest(t, nil)
	size := m.state.Editor.State().FontSize
	m = press(t, m, "2", "+")
	if got := m.state.Editor.State().FontSize; got != size+2 {
		t.Fatalf("font size = %d, want %d", got, size+2)
	}
}
