// Package search implements find-in-file over the lines of the active file.
package search

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Match is one occurrence, as a line index and a rune range within it.
type Match struct {
	Line  int
	Start int
	End   int
}

// Engine holds the query, the input and the matches over the content.
type Engine struct {
	input   textinput.Model
	active  bool
	query   string
	content []string
	matches []Match
	index   int
}

// New creates an inactive engine.
func New() *Engine {
	ti := textinput.New()
	ti.Placeholder = "Find in file"
	ti.Prompt = "/ "
	ti.CharLimit = 0
	return &Engine{input: ti}
}

// Activate opens the input.
func (e *Engine) Activate() {
	e.active = true
	e.input.Focus()
}

// Deactivate closes the input and forgets the query.
func (e *Engine) Deactivate() {
	e.active = false
	e.input.Blur()
	e.input.SetValue("")
	e.query = ""
	e.matches = nil
	e.index = 0
}

func (e *Engine) IsActive() bool { return e.active }

// HandleKey processes a key while the input is open.
func (e *Engine) HandleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		e.Deactivate()
		return nil
	case "enter", "down":
		e.Next()
		return nil
	case "up":
		e.Previous()
		return nil
	}
	var cmd tea.Cmd
	e.input, cmd = e.input.Update(msg)
	e.SetQuery(e.input.Value())
	return cmd
}

// SetQuery replaces the query and recomputes matches.
func (e *Engine) SetQuery(q string) {
	e.query = q
	e.recompute()
}

// SetContent replaces the searched lines.
func (e *Engine) SetContent(lines []string) {
	e.content = lines
	e.recompute()
}

func (e *Engine) Query() string { return e.query }

func (e *Engine) recompute() {
	e.matches = nil
	if e.query == "" {
		e.index = 0
		return
	}
	for i, line := range e.content {
		for _, r := range FindRanges(line, e.query) {
			e.matches = append(e.matches, Match{Line: i, Start: r.Start, End: r.End})
		}
	}
	if e.index >= len(e.matches) {
		e.index = 0
	}
}

// Next advances to the next match, wrapping around.
func (e *Engine) Next() {
	if len(e.matches) == 0 {
		return
	}
	e.index = (e.index + 1) % len(e.matches)
}

// Previous moves to the previous match, wrapping around.
func (e *Engine) Previous() {
	if len(e.matches) == 0 {
		return
	}
	e.index = (e.index - 1 + len(e.matches)) % len(e.matches)
}

// Current returns the selected match.
func (e *Engine) Current() (Match, bool) {
	if len(e.matches) == 0 {
		return Match{}, false
	}
	return e.matches[e.index], true
}

// CurrentLine is the line of the selected match or -1.
func (e *Engine) CurrentLine() int {
	m, ok := e.Current()
	if !ok {
		return -1
	}
	return m.Line
}

func (e *Engine) MatchCount() int { return len(e.matches) }

// CurrentIndex is the 1-based position of the selected match, 0 without
// matches.
func (e *Engine) CurrentIndex() int {
	if len(e.matches) == 0 {
		return 0
	}
	return e.index + 1
}

// MatchesOn returns the ranges matched on line i.
func (e *Engine) MatchesOn(i int) []Match {
	var out []Match
	for _, m := range e.matches {
		if m.Line == i {
			out = append(out, m)
		}
	}
	return out
}

func (e *Engine) InputView() string { return e.input.View() }

// Range is a half-open rune range.
type Range struct {
	Start int
	End   int
}

// FindRanges finds case-insensitive, non-overlapping occurrences of query
// in line.
func FindRanges(line, query string) []Range {
	hay := []rune(strings.ToLower(line))
	needle := []rune(strings.ToLower(query))
	if len(needle) == 0 || len(needle) > len(hay) {
		return nil
	}
	var out []Range
	for i := 0; i <= len(hay)-len(needle); {
		if string(hay[i:i+len(needle)]) == string(needle) {
			out = append(out, Range{Start: i, End: i + len(needle)})
			i += len(needle)
			continue
		}
		i++
	}
	return out
}
