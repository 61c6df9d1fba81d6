// Package tui is the terminal front end of the editor: a file explorer, a
// tabbed code editor, the assistant panel and the run output.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/interpretive-systems/codecraft/internal/ai"
	"github.com/interpretive-systems/codecraft/internal/editor"
	"github.com/interpretive-systems/codecraft/internal/execution"
	"github.com/interpretive-systems/codecraft/internal/langs"
	"github.com/interpretive-systems/codecraft/internal/theme"
	"github.com/interpretive-systems/codecraft/internal/tui/components"
	"github.com/interpretive-systems/codecraft/internal/tui/wizards"
)

// outputHeight bounds the run output overlay.
const outputHeight = 8

// Program is the main TUI model.
type Program struct {
	ctx        context.Context
	state      *State
	layout     *Layout
	keyHandler *KeyHandler
}

// NewProgram builds the model for an initialized editor.
func NewProgram(ctx context.Context, opts Options) Program {
	m := Program{
		ctx:        ctx,
		state:      NewState(opts),
		layout:     NewLayout(),
		keyHandler: NewKeyHandler(),
	}
	m.refresh()
	return m
}

// Run starts the full-screen editor and blocks until it exits.
func Run(ctx context.Context, opts Options) error {
	m := NewProgram(ctx, opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if m.state.Chat != nil {
		m.state.Chat.Cancel()
	}
	if m.state.Complete != nil {
		m.state.Complete.Cancel()
	}
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m Program) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink}
	if m.state.Provider != nil {
		cmds = append(cmds, pingAI(m.ctx, m.state.Provider))
	}
	if m.state.Complete != nil {
		cmds = append(cmds, waitSuggestion(m.state.Complete.Suggestions()))
	}
	return tea.Batch(cmds...)
}

func (m Program) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	st := m.state
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case runResultMsg:
		st.Running = false
		st.StatusBar.SetRunning("")
		st.ShowOutput = true
		switch {
		case errors.Is(msg.err, execution.ErrAlreadyRunning):
			st.StatusBar.SetMessage("a run is already in progress")
		case msg.err != nil, msg.res.Failed():
			st.StatusBar.SetMessage("run failed")
		default:
			st.StatusBar.SetMessage("run finished")
		}
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if !st.Running {
			return m, nil
		}
		var cmd tea.Cmd
		st.Spinner, cmd = st.Spinner.Update(msg)
		st.StatusBar.SetRunning(st.Spinner.View())
		return m, cmd

	case aiStatusMsg:
		m.setAIStatus(msg.online)
		return m, pingLater()

	case pingTickMsg:
		return m, pingAI(m.ctx, st.Provider)

	case chatUpdateMsg:
		if msg.update.Done {
			return m, m.chatDone(msg.update)
		}
		return m, waitChat(msg.ch)

	case chatClosedMsg:
		st.FixPending = false
		return m, nil

	case suggestionMsg:
		if st.Focus == FocusEditor && cursorOffset(&st.Input) == msg.s.Cursor {
			s := msg.s
			st.Suggestion = &s
		}
		return m, waitSuggestion(st.Complete.Suggestions())

	case clipboardMsg:
		if msg.err != nil {
			st.StatusBar.SetMessage("clipboard: " + msg.err.Error())
		} else {
			st.StatusBar.SetMessage("copied " + msg.what)
		}
		return m, nil

	case wizards.AIConfigResultMsg:
		if w := m.activeWizard(); w != nil {
			w.Update(msg)
		}
		m.setAIStatus(msg.Online)
		return m, nil
	}

	switch st.Focus {
	case FocusEditor:
		var cmd tea.Cmd
		st.Input, cmd = st.Input.Update(msg)
		return m, cmd
	case FocusChat:
		return m, st.ChatPanel.Update(msg)
	}
	return m, nil
}

func (m Program) setAIStatus(online bool) {
	if m.state.Provider == nil {
		return
	}
	status := components.AIOffline
	if online {
		status = components.AIOnline
	}
	m.state.StatusBar.SetAI(m.state.Provider.Name(), status)
}

func (m Program) handleKey(msg tea.KeyMsg) tea.Cmd {
	st := m.state
	key := msg.String()
	if key == "ctrl+c" {
		return tea.Quit
	}

	if st.ShowHelp {
		switch key {
		case "q":
			return tea.Quit
		case "h", "?", "esc":
			st.ShowHelp = false
		}
		return nil
	}

	if w := m.activeWizard(); w != nil {
		action, cmd := w.HandleKey(msg)
		if action == wizards.ActionClose {
			return tea.Batch(cmd, m.closeWizard())
		}
		return cmd
	}

	if st.Search.IsActive() {
		cmd := st.Search.HandleKey(msg)
		if line := st.Search.CurrentLine(); line >= 0 {
			st.CodeView.ScrollTo(line)
		}
		return cmd
	}

	switch key {
	case "ctrl+r":
		return m.run()
	case "ctrl+n":
		return m.newUntitled()
	case "ctrl+w":
		return m.closeTab(st.Editor.State().ActiveFileID)
	case "ctrl+k":
		return m.toggleChat()
	case "ctrl+l":
		if st.Chat != nil {
			st.Chat.Clear()
		}
		return nil
	}

	switch st.Focus {
	case FocusEditor:
		return m.handleEditorKey(msg)
	case FocusChat:
		return m.handleChatKey(msg)
	}
	return m.handleExplorerKey(msg)
}

func (m Program) handleEditorKey(msg tea.KeyMsg) tea.Cmd {
	st := m.state
	switch msg.String() {
	case "esc":
		if st.Suggestion != nil {
			st.Suggestion = nil
			return nil
		}
		return m.setFocus(FocusExplorer)
	case "tab":
		if s := st.Suggestion; s != nil {
			st.Suggestion = nil
			if cursorOffset(&st.Input) == s.Cursor {
				st.Input.InsertString(s.Text)
				m.syncBuffer(false)
				return nil
			}
		}
		st.Input.InsertString("    ")
		m.syncBuffer(true)
		return nil
	}
	st.Suggestion = nil
	var cmd tea.Cmd
	st.Input, cmd = st.Input.Update(msg)
	m.syncBuffer(true)
	return cmd
}

// syncBuffer stores an edit in the session and, when asked, schedules an
// inline completion.
func (m Program) syncBuffer(trigger bool) {
	st := m.state
	v, changed := st.buffer.sync()
	if !changed {
		return
	}
	st.Editor.UpdateActiveFileContent(v)
	if trigger && st.Complete != nil && st.Complete.Enabled() {
		st.Complete.Trigger(ai.Context{
			Text:     v,
			Cursor:   cursorOffset(&st.Input),
			Language: st.Editor.State().Language,
		})
	}
}

func (m Program) handleChatKey(msg tea.KeyMsg) tea.Cmd {
	st := m.state
	switch msg.String() {
	case "esc":
		return m.setFocus(FocusEditor)
	case "enter":
		ch, err := st.Chat.Send(m.ctx, st.ChatPanel.Value(), true)
		if err != nil {
			st.StatusBar.SetMessage(err.Error())
			return nil
		}
		st.ChatPanel.Reset()
		return waitChat(ch)
	case "ctrl+x":
		st.Chat.Cancel()
		return nil
	case "pgup":
		st.ChatPanel.Scroll(5)
		return nil
	case "pgdown":
		st.ChatPanel.Scroll(-5)
		return nil
	}
	return st.ChatPanel.Update(msg)
}

func (m Program) handleExplorerKey(msg tea.KeyMsg) tea.Cmd {
	st := m.state
	ed := st.Editor
	ex := st.Explorer
	action, count := m.keyHandler.Handle(msg)
	st.StatusBar.SetKeyBuffer(m.keyHandler.KeyBuffer())

	switch action {
	case ActionQuit:
		return tea.Quit
	case ActionToggleHelp:
		st.ShowHelp = true
	case ActionMoveDown:
		ex.MoveSelection(count)
	case ActionMoveUp:
		ex.MoveSelection(-count)
	case ActionGoToTop:
		ex.GoToTop()
	case ActionGoToBottom:
		ex.GoToBottom()
	case ActionOpen:
		e, ok := ex.SelectedEntry()
		if !ok {
			break
		}
		if e.Node.IsFolder() {
			ed.ToggleFolderOpen(e.Node.ID)
			m.refresh()
			break
		}
		ed.SetActiveFile(e.Node.ID)
		return m.setFocus(FocusEditor)
	case ActionToggleFolder:
		if e, ok := ex.SelectedEntry(); ok && e.Node.IsFolder() {
			ed.ToggleFolderOpen(e.Node.ID)
			m.refresh()
		}
	case ActionFocusEditor:
		return m.setFocus(FocusEditor)
	case ActionNewFile:
		return m.openWizard("newfile", ex.TargetFolder())
	case ActionNewFolder:
		return m.openWizard("newfolder", ex.TargetFolder())
	case ActionRename:
		if id := ex.SelectedID(); id != "" {
			return m.openWizard("rename", id)
		}
	case ActionDelete:
		if id := ex.SelectedID(); id != "" {
			return m.openWizard("delete", id)
		}
	case ActionMove:
		return m.openMove()
	case ActionCloseTab:
		return m.closeTab(ed.State().ActiveFileID)
	case ActionPrevTab:
		m.cycleTab(-count)
	case ActionNextTab:
		m.cycleTab(count)
	case ActionPickLanguage:
		return m.openWizard("language", ed.State().Language)
	case ActionPickTheme:
		return m.openWizard("theme", ed.State().Theme)
	case ActionAIConfig:
		if _, ok := st.Wizards["aiconfig"]; !ok {
			st.StatusBar.SetMessage("assistant settings are not available for this provider")
			break
		}
		return m.openWizard("aiconfig", "")
	case ActionReset:
		ed.ResetToDefault()
		st.StatusBar.SetMessage("reset to starter code")
		m.refresh()
	case ActionExplain:
		return m.quickAction(ai.ActionExplain)
	case ActionFix:
		return m.quickAction(ai.ActionFix)
	case ActionOptimize:
		return m.quickAction(ai.ActionOptimize)
	case ActionCopyCode:
		return copyText("code", ed.Code())
	case ActionCopyReply:
		if st.Chat != nil {
			if r := st.Chat.LastReply(); r != "" {
				return copyText("reply", r)
			}
		}
		st.StatusBar.SetMessage("no reply to copy")
	case ActionSearch:
		st.Search.SetContent(st.CodeView.Lines())
		st.Search.Activate()
	case ActionFontUp:
		n := ed.SetFontSize(ed.State().FontSize + count)
		st.StatusBar.SetMessage(fmt.Sprintf("font size %d", n))
		m.refresh()
	case ActionFontDown:
		n := ed.SetFontSize(ed.State().FontSize - count)
		st.StatusBar.SetMessage(fmt.Sprintf("font size %d", n))
		m.refresh()
	case ActionToggleAutocomplete:
		ed.SetAutocompleteEnabled(!ed.State().Autocomplete)
		m.refresh()
	case ActionToggleChat:
		return m.toggleChat()
	case ActionClearChat:
		if st.Chat != nil {
			st.Chat.Clear()
		}
	case ActionToggleOutput:
		st.ShowOutput = !st.ShowOutput
	case ActionPageDown:
		st.CodeView.Viewport().HalfPageDown()
	case ActionPageUp:
		st.CodeView.Viewport().HalfPageUp()
	case ActionAdjustLeftNarrower:
		m.layout.AdjustLeftWidth(-2 * count)
	case ActionAdjustLeftWider:
		m.layout.AdjustLeftWidth(2 * count)
	}
	return nil
}

func (m Program) setFocus(f Focus) tea.Cmd {
	st := m.state
	if f == FocusEditor {
		if _, ok := st.Editor.ActiveFile(); !ok {
			st.StatusBar.SetMessage("no file open")
			f = FocusExplorer
		}
	}
	if f == FocusChat && st.Chat == nil {
		f = FocusExplorer
	}
	st.Focus = f
	st.Suggestion = nil

	var cmd tea.Cmd
	if f == FocusEditor {
		cmd = st.Input.Focus()
	} else {
		st.Input.Blur()
		if st.Complete != nil {
			st.Complete.Cancel()
		}
	}
	if f == FocusChat {
		cmd = st.ChatPanel.Focus()
	} else {
		st.ChatPanel.Blur()
	}
	m.refresh()
	return cmd
}

func (m Program) run() tea.Cmd {
	st := m.state
	if st.Running {
		st.StatusBar.SetMessage("a run is already in progress")
		return nil
	}
	m.syncBuffer(false)
	st.Running = true
	st.ShowOutput = true
	st.StatusBar.SetMessage("")
	st.StatusBar.SetRunning(st.Spinner.View())
	return tea.Batch(runCode(m.ctx, st.Editor), st.Spinner.Tick)
}

func (m Program) newUntitled() tea.Cmd {
	st := m.state
	if _, err := st.Editor.CreateFile(st.Explorer.TargetFolder()); err != nil {
		st.StatusBar.SetMessage(err.Error())
		return nil
	}
	return m.focusActive()
}

// focusActive selects the active file in the explorer and edits it.
func (m Program) focusActive() tea.Cmd {
	m.refresh()
	m.state.Explorer.Select(m.state.Editor.State().ActiveFileID)
	return m.setFocus(FocusEditor)
}

func (m Program) closeTab(id string) tea.Cmd {
	if id == "" {
		return nil
	}
	m.state.Editor.CloseFileTab(id)
	m.refresh()
	if m.state.Focus == FocusEditor {
		return m.setFocus(FocusEditor)
	}
	return nil
}

func (m Program) cycleTab(delta int) {
	es := m.state.Editor.State()
	n := len(es.OpenFileIDs)
	if n == 0 {
		return
	}
	i := 0
	for j, id := range es.OpenFileIDs {
		if id == es.ActiveFileID {
			i = j
		}
	}
	next := ((i+delta)%n + n) % n
	m.state.Editor.SetActiveFile(es.OpenFileIDs[next])
	m.refresh()
	m.state.Explorer.Select(es.OpenFileIDs[next])
}

func (m Program) toggleChat() tea.Cmd {
	st := m.state
	if st.Chat == nil {
		st.StatusBar.SetMessage("assistant is not configured")
		return nil
	}
	if st.Chat.Toggle() {
		return m.setFocus(FocusChat)
	}
	if st.Focus == FocusChat {
		return m.setFocus(FocusEditor)
	}
	return nil
}

func (m Program) quickAction(a ai.Action) tea.Cmd {
	st := m.state
	if st.Chat == nil {
		st.StatusBar.SetMessage("assistant is not configured")
		return nil
	}
	es := st.Editor.State()
	ch, err := st.Chat.QuickAction(m.ctx, a, es.Language, st.Editor.Code(), es.Error)
	if err != nil {
		st.StatusBar.SetMessage(err.Error())
		return nil
	}
	st.FixPending = a == ai.ActionFix
	st.Chat.SetOpen(true)
	return waitChat(ch)
}

// chatDone finishes a streamed reply. The reply to a fix request is
// offered as a diff against the current code.
func (m Program) chatDone(u ai.Update) tea.Cmd {
	st := m.state
	fix := st.FixPending
	st.FixPending = false
	if u.Err != nil || !fix {
		return nil
	}
	code := ai.ExtractCodeBlock(u.Message.Content)
	if code == "" {
		st.StatusBar.SetMessage("the reply has no code to apply")
		return nil
	}
	fw, ok := st.Wizards["fix"].(*wizards.FixWizard)
	if !ok || st.ActiveWizard != "" {
		return nil
	}
	fw.SetSuggestion(code)
	return m.openWizard("fix", "")
}

func (m Program) activeWizard() wizards.Wizard {
	if m.state.ActiveWizard == "" {
		return nil
	}
	return m.state.Wizards[m.state.ActiveWizard]
}

func (m Program) openWizard(name, target string) tea.Cmd {
	w, ok := m.state.Wizards[name]
	if !ok {
		return nil
	}
	m.state.ActiveWizard = name
	m.state.Suggestion = nil
	return w.Init(m.state.Editor, target)
}

func (m Program) openMove() tea.Cmd {
	e, ok := m.state.Explorer.SelectedEntry()
	if !ok {
		return nil
	}
	items := []wizards.Item{{ID: "", Label: "/"}}
	for _, en := range m.state.Editor.Entries(true) {
		if !en.Node.IsFolder() || en.Node.ID == e.Node.ID || strings.HasPrefix(en.Path, e.Path+"/") {
			continue
		}
		items = append(items, wizards.Item{ID: en.Node.ID, Label: en.Path + "/"})
	}
	id := e.Node.ID
	m.state.Wizards["move"] = wizards.NewPicker("Move "+e.Path+" to", items, func(ed *editor.Editor, parent string) error {
		return ed.MoveNode(id, parent)
	})
	return m.openWizard("move", e.Node.ParentID)
}

func (m Program) closeWizard() tea.Cmd {
	st := m.state
	name := st.ActiveWizard
	w := st.Wizards[name]
	st.ActiveWizard = ""
	if w == nil || !w.IsComplete() {
		m.refresh()
		return nil
	}
	switch name {
	case "newfile":
		return m.focusActive()
	case "delete":
		if d, ok := w.(*wizards.DeleteWizard); ok {
			st.StatusBar.SetMessage(fmt.Sprintf("deleted %d item(s)", d.Removed()))
		}
	case "fix":
		st.StatusBar.SetMessage("fix applied")
	case "language", "theme":
		st.StatusBar.SetMessage(name + " changed")
	}
	m.refresh()
	if name == "fix" && st.Focus == FocusEditor {
		return st.Input.Focus()
	}
	return nil
}

// refresh copies the session into the components.
func (m Program) refresh() {
	st := m.state
	es := st.Editor.State()
	st.Theme = theme.ByName(es.Theme)
	if fw, ok := st.Wizards["fix"].(*wizards.FixWizard); ok {
		fw.SetTheme(st.Theme)
	}
	st.Explorer.SetEntries(st.Editor.Entries(false))
	st.Explorer.SetActive(es.ActiveFileID, es.OpenFileIDs)
	st.StatusBar.SetSession(es.Language, es.Theme, es.FontSize, es.Autocomplete, es.Degraded)
	if st.Complete != nil {
		st.Complete.SetEnabled(es.Autocomplete)
		st.Complete.SetDelay(es.AutoDelay)
	}

	lexer := ""
	if f, ok := st.Editor.ActiveFile(); ok {
		if l, err := langs.Lookup(f.Language); err == nil {
			lexer = l.Lexer
		}
	}
	st.CodeView.SetSource(st.buffer.Value(), lexer, st.Theme.Chroma)
	st.Search.SetContent(st.CodeView.Lines())

	if es.ActiveFileID == "" && st.Focus == FocusEditor {
		st.Focus = FocusExplorer
		st.Input.Blur()
	}
}

func (m Program) View() string {
	st := m.state
	if m.layout.Width() == 0 || m.layout.Height() == 0 {
		return "Loading..."
	}
	width := m.layout.Width()
	overlay := m.overlayLines(width)
	contentH := m.layout.ContentHeight(len(overlay))

	left := st.Explorer.Render(contentH, m.layout.LeftWidth(), st.Focus == FocusExplorer, st.Theme)
	right := m.rightLines(m.layout.RightWidth(), contentH)
	topLeft, topRight := m.topBar()
	return m.layout.RenderFrame(topLeft, topRight, left, right, overlay, st.StatusBar.Render(width, st.Theme), st.Theme)
}

func (m Program) topBar() (string, string) {
	st := m.state
	left := "codecraft"
	if f, ok := st.Editor.ActiveFile(); ok {
		left += " | " + st.Editor.Path(f.ID)
		if l, err := langs.Lookup(f.Language); err == nil {
			left += " (" + l.Label + ")"
		}
	}
	var right string
	switch st.Focus {
	case FocusEditor:
		right = "[editing]"
	case FocusChat:
		right = "[assistant]"
	default:
		right = "[explorer]"
	}
	return left, st.Theme.MutedText(right)
}

func (m Program) rightLines(width, height int) []string {
	st := m.state
	th := st.Theme
	es := st.Editor.State()

	lines := []string{components.RenderTabs(m.tabs(es), es.ActiveFileID, width, th)}
	bodyH := height - 1

	var chat []string
	if st.Chat != nil && st.Chat.Open() {
		chatH := max(bodyH/2, 5)
		if chatH > bodyH-2 {
			chatH = max(bodyH-2, 4)
		}
		chat = append([]string{th.DividerText(strings.Repeat("─", width))},
			st.ChatPanel.Render(st.Chat.Messages(), st.Chat.Thinking(), st.Chat.Notice(), width, chatH-1, th)...)
		bodyH -= chatH
	}
	if bodyH < 1 {
		bodyH = 1
	}

	switch {
	case es.ActiveFileID == "":
		lines = append(lines, th.MutedText("No file open. Pick one in the explorer or press ctrl+n."))
	case st.Focus == FocusEditor:
		st.Input.SetWidth(width)
		st.Input.SetHeight(bodyH)
		lines = append(lines, strings.Split(st.Input.View(), "\n")...)
	default:
		lines = append(lines, st.CodeView.Render(width, bodyH, st.Search, th)...)
	}
	for len(lines) < bodyH+1 {
		lines = append(lines, "")
	}
	return append(lines[:bodyH+1], chat...)
}

func (m Program) tabs(es editor.State) []components.Tab {
	tabs := make([]components.Tab, 0, len(es.OpenFileIDs))
	for _, id := range es.OpenFileIDs {
		if n, ok := m.state.Editor.Node(id); ok {
			tabs = append(tabs, components.Tab{ID: id, Name: n.Name})
		}
	}
	return tabs
}

func (m Program) overlayLines(width int) []string {
	st := m.state
	th := st.Theme
	var lines []string
	if st.ShowHelp {
		lines = append(lines, helpLines(width, th)...)
	}
	if st.ShowOutput {
		es := st.Editor.State()
		if st.Running || es.Output != "" || es.Error != "" {
			lines = append(lines, components.RenderOutput(es.Output, es.Error, st.Running, width, outputHeight, th)...)
		}
	}
	if s := st.Suggestion; s != nil {
		text := strings.SplitN(s.Text, "\n", 2)[0]
		lines = append(lines, th.MutedText("suggestion: ")+text+th.MutedText("  (tab: accept, esc: dismiss)"))
	}
	if w := m.activeWizard(); w != nil {
		lines = append(lines, w.RenderOverlay(width)...)
	}
	lines = append(lines, st.Search.RenderOverlay(width, th)...)
	if room := m.layout.Height() - 5; room > 0 && len(lines) > room {
		lines = lines[len(lines)-room:]
	}
	return lines
}

func helpLines(width int, th theme.Theme) []string {
	rows := [][2]string{
		{"ctrl+r", "run the active file"},
		{"ctrl+n / n / N", "new untitled file / new named file / new folder"},
		{"ctrl+w / x", "close tab"},
		{"ctrl+k / c", "toggle the assistant (ctrl+x stops a reply)"},
		{"enter / space", "open file, expand folder"},
		{"i / tab, esc", "edit the file, back to the explorer"},
		{"r / d / m", "rename / delete / move"},
		{"[ / ]", "previous / next tab"},
		{"e / f / o", "explain / fix / optimize the code"},
		{"y / Y", "copy code / copy the last reply"},
		{"L / T / A", "language / theme / assistant settings"},
		{"+ / - / a", "font size / toggle autocomplete"},
		{"/ , O, X", "find in file, toggle output, reset to starter code"},
		{"< / >", "resize the explorer"},
		{"q", "quit"},
	}
	lines := []string{
		th.DividerText(strings.Repeat("─", width)),
		th.AccentText("Keys") + th.MutedText("  (h/esc: close)"),
	}
	for _, r := range rows {
		lines = append(lines, fmt.Sprintf("  %-16s %s", r[0], th.MutedText(r[1])))
	}
	return lines
}
