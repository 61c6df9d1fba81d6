package search

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/interpretive-systems/codecraft/internal/theme"
	"github.com/interpretive-systems/codecraft/internal/tui/ansi"
)

func TestFindRanges(t *testing.T) {
	got := FindRanges("Foo foo fOO", "foo")
	if len(got) != 3 || got[1] != (Range{4, 7}) {
		t.Fatalf("FindRanges = %+v", got)
	}
	if FindRanges("aaa", "aa")[0] != (Range{0, 2}) || len(FindRanges("aaa", "aa")) != 1 {
		t.Fatalf("expected non-overlapping matches")
	}
	if FindRanges("x", "") != nil {
		t.Fatalf("empty query should not match")
	}
}

func TestEngineNavigation(t *testing.T) {
	e := New()
	e.SetContent([]string{"let x = 1", "x++", "print(y)"})
	e.SetQuery("x")
	if e.MatchCount() != 2 || e.CurrentLine() != 0 {
		t.Fatalf("matches = %d, line = %d", e.MatchCount(), e.CurrentLine())
	}
	e.Next()
	if e.CurrentLine() != 1 || e.CurrentIndex() != 2 {
		t.Fatalf("after next: line %d index %d", e.CurrentLine(), e.CurrentIndex())
	}
	e.Next()
	if e.CurrentIndex() != 1 {
		t.Fatalf("next should wrap, got %d", e.CurrentIndex())
	}
	e.Previous()
	if e.CurrentIndex() != 2 {
		t.Fatalf("previous should wrap, got %d", e.CurrentIndex())
	}
}

func TestEngineTypingAndEscape(t *testing.T) {
	e := New()
	e.SetContent([]string{"hello world"})
	e.Activate()
	for _, r := range "wor" {
		e.HandleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	if e.Query() != "wor" || e.MatchCount() != 1 {
		t.Fatalf("query %q, matches %d", e.Query(), e.MatchCount())
	}
	out := ansi.Strip(strings.Join(e.RenderOverlay(40, theme.DefaultTheme()), "\n"))
	if !strings.Contains(out, "Match 1 of 1") {
		t.Fatalf("overlay = %q", out)
	}
	e.HandleKey(tea.KeyMsg{Type: tea.KeyEsc})
	if e.IsActive() || e.MatchCount() != 0 {
		t.Fatalf("escape should close and clear")
	}
}

func TestHighlightKeepsText(t *testing.T) {
	line := "a foo b foo"
	ms := []Match{{0, 2, 5}, {0, 8, 11}}
	if got := ansi.Strip(Highlight(line, ms, 8, theme.DefaultTheme())); got != line {
		t.Fatalf("Highlight changed text: %q", got)
	}
}
