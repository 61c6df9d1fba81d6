package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"

	"github.com/interpretive-systems/codecraft/internal/ai"
	"github.com/interpretive-systems/codecraft/internal/editor"
	"github.com/interpretive-systems/codecraft/internal/langs"
	"github.com/interpretive-systems/codecraft/internal/theme"
	"github.com/interpretive-systems/codecraft/internal/tui/components"
	"github.com/interpretive-systems/codecraft/internal/tui/search"
	"github.com/interpretive-systems/codecraft/internal/tui/wizards"
)

// Focus is the pane receiving keys.
type Focus int

const (
	FocusExplorer Focus = iota
	FocusEditor
	FocusChat
)

// Options wires the program to the application services. Chat,
// Autocomplete, Provider and Client may be nil.
type Options struct {
	Editor       *editor.Editor
	Chat         *ai.Chat
	Autocomplete *ai.Autocomplete
	Provider     ai.Provider
	Client       wizards.Configurable
}

// State holds all application state.
type State struct {
	Editor   *editor.Editor
	Chat     *ai.Chat
	Complete *ai.Autocomplete
	Provider ai.Provider

	// UI state
	Focus      Focus
	ShowHelp   bool
	ShowOutput bool
	Running    bool
	Suggestion *ai.Suggestion
	// FixPending is set while the reply to a fix request streams.
	FixPending bool

	Input  textarea.Model
	buffer *textBuffer

	// Components
	Explorer  *components.Explorer
	CodeView  *components.CodeView
	ChatPanel *components.ChatPanel
	StatusBar *components.StatusBar
	Search    *search.Engine
	Spinner   spinner.Model

	// Active wizard name, "" when none.
	ActiveWizard string
	Wizards      map[string]wizards.Wizard

	Theme theme.Theme
}

// NewState creates the initial state and attaches the textarea to the
// editor.
func NewState(opts Options) *State {
	th := theme.ByName(opts.Editor.State().Theme)

	ta := textarea.New()
	ta.ShowLineNumbers = true
	ta.Prompt = ""
	ta.CharLimit = 0
	ta.MaxHeight = 0

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot

	s := &State{
		Editor:    opts.Editor,
		Chat:      opts.Chat,
		Complete:  opts.Autocomplete,
		Provider:  opts.Provider,
		Input:     ta,
		Explorer:  components.NewExplorer(),
		CodeView:  components.NewCodeView(),
		ChatPanel: components.NewChatPanel(),
		StatusBar: components.NewStatusBar(),
		Search:    search.New(),
		Spinner:   sp,
		Theme:     th,
	}
	s.buffer = newTextBuffer(&s.Input)

	s.Wizards = map[string]wizards.Wizard{
		"newfile":   wizards.NewNameWizard(wizards.NewFile),
		"newfolder": wizards.NewNameWizard(wizards.NewFolder),
		"rename":    wizards.NewNameWizard(wizards.Rename),
		"delete":    wizards.NewDeleteWizard(),
		"language":  wizards.NewPicker("Language", languageItems(), setLanguage),
		"theme":     wizards.NewPicker("Theme", themeItems(), setTheme),
		"fix":       wizards.NewFixWizard(th),
	}
	if opts.Client != nil {
		s.Wizards["aiconfig"] = wizards.NewAIConfigWizard(opts.Client)
	}
	if s.Provider != nil {
		s.StatusBar.SetAI(s.Provider.Name(), components.AIUnknown)
	}
	opts.Editor.SetBuffer(s.buffer)
	return s
}

func languageItems() []wizards.Item {
	var items []wizards.Item
	for _, l := range langs.All() {
		items = append(items, wizards.Item{ID: l.ID, Label: l.Label})
	}
	return items
}

func themeItems() []wizards.Item {
	var items []wizards.Item
	for _, t := range theme.All() {
		items = append(items, wizards.Item{ID: t.Name, Label: t.Label})
	}
	return items
}

func setLanguage(ed *editor.Editor, id string) error { return ed.SetLanguage(id) }

func setTheme(ed *editor.Editor, id string) error {
	ed.SetTheme(id)
	return nil
}
