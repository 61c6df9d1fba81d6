package tui

import (
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
)

// KeyAction represents an explorer command triggered by a key press.
type KeyAction int

const (
	ActionNone KeyAction = iota
	ActionQuit
	ActionToggleHelp
	ActionMoveUp
	ActionMoveDown
	ActionGoToTop
	ActionGoToBottom
	ActionOpen
	ActionToggleFolder
	ActionFocusEditor
	ActionNewFile
	ActionNewFolder
	ActionRename
	ActionDelete
	ActionMove
	ActionCloseTab
	ActionPrevTab
	ActionNextTab
	ActionPickLanguage
	ActionPickTheme
	ActionAIConfig
	ActionReset
	ActionExplain
	ActionFix
	ActionOptimize
	ActionCopyCode
	ActionCopyReply
	ActionSearch
	ActionFontUp
	ActionFontDown
	ActionToggleAutocomplete
	ActionToggleChat
	ActionClearChat
	ActionToggleOutput
	ActionPageDown
	ActionPageUp
	ActionAdjustLeftNarrower
	ActionAdjustLeftWider
)

// KeyHandler maps explorer keys to actions and keeps a numeric prefix
// for movement ("5j").
type KeyHandler struct {
	keyBuffer string
}

func NewKeyHandler() *KeyHandler {
	return &KeyHandler{}
}

// Handle processes a key and returns the action with its repeat count.
func (k *KeyHandler) Handle(msg tea.KeyMsg) (KeyAction, int) {
	key := msg.String()
	if isNumericKey(key) && !(key == "0" && k.keyBuffer == "") {
		k.keyBuffer += key
		return ActionNone, 0
	}
	count := 1
	if k.keyBuffer != "" {
		if n, err := strconv.Atoi(k.keyBuffer); err == nil && n > 0 {
			count = n
		}
	}
	k.keyBuffer = ""
	return keyToAction(key), count
}

// KeyBuffer returns the pending numeric prefix.
func (k *KeyHandler) KeyBuffer() string {
	return k.keyBuffer
}

func (k *KeyHandler) ClearBuffer() {
	k.keyBuffer = ""
}

func keyToAction(key string) KeyAction {
	switch key {
	case "q":
		return ActionQuit
	case "h", "?":
		return ActionToggleHelp
	case "j", "down":
		return ActionMoveDown
	case "k", "up":
		return ActionMoveUp
	case "g", "home":
		return ActionGoToTop
	case "G", "end":
		return ActionGoToBottom
	case "enter", "l", "right":
		return ActionOpen
	case " ":
		return ActionToggleFolder
	case "i", "tab":
		return ActionFocusEditor
	case "n":
		return ActionNewFile
	case "N":
		return ActionNewFolder
	case "r":
		return ActionRename
	case "d", "delete":
		return ActionDelete
	case "m":
		return ActionMove
	case "x":
		return ActionCloseTab
	case "[":
		return ActionPrevTab
	case "]":
		return ActionNextTab
	case "L":
		return ActionPickLanguage
	case "T":
		return ActionPickTheme
	case "A":
		return ActionAIConfig
	case "X":
		return ActionReset
	case "e":
		return ActionExplain
	case "f":
		return ActionFix
	case "o":
		return ActionOptimize
	case "y":
		return ActionCopyCode
	case "Y":
		return ActionCopyReply
	case "/":
		return ActionSearch
	case "+", "=":
		return ActionFontUp
	case "-":
		return ActionFontDown
	case "a":
		return ActionToggleAutocomplete
	case "c":
		return ActionToggleChat
	case "C":
		return ActionClearChat
	case "O":
		return ActionToggleOutput
	case "pgdown", "ctrl+d", "J":
		return ActionPageDown
	case "pgup", "ctrl+u", "K":
		return ActionPageUp
	case "<", "H":
		return ActionAdjustLeftNarrower
	case ">":
		return ActionAdjustLeftWider
	}
	return ActionNone
}

func isNumericKey(key string) bool {
	return len(key) == 1 && key[0] >= '0' && key[0] <= '9'
}
