package ai

import (
	"fmt"
	"strings"
)

// Role of a transcript entry or prompt turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message sent to the model.
type Turn struct {
	Role    Role
	Content string
}

// CompletionRequest carries the text around the cursor.
type CompletionRequest struct {
	Language      string
	CursorOffset  int
	ContextBefore string
	ContextAfter  string
}

const completionSystem = `You are an INLINE CODE AUTOCOMPLETE ENGINE.
You will receive a "prefix" which is the code currently before the cursor.
Return ONLY the continuation text to insert at the cursor position.
DO NOT return any explanation, commentary, or markdown.
Return raw code only.`

// BuildCompletionPrompt renders the inline completion prompt.
func BuildCompletionPrompt(req CompletionRequest) string {
	var b strings.Builder
	b.WriteString(completionSystem)
	b.WriteString("\n\nPrefix:\n")
	b.WriteString(req.ContextBefore)
	b.WriteString("\n\nSuffix:\n")
	b.WriteString(req.ContextAfter)
	b.WriteString("\n\nReturn the single best completion (no explanations). Short is good, keep it <= 48 tokens.")
	return b.String()
}

// BuildChatPrompt flattens turns into "Role: content" blocks separated by a
// blank line.
func BuildChatPrompt(turns []Turn) string {
	parts := make([]string, 0, len(turns))
	for _, t := range turns {
		switch t.Role {
		case RoleSystem:
			parts = append(parts, "System: "+t.Content)
		case RoleUser:
			parts = append(parts, "User: "+t.Content)
		default:
			parts = append(parts, "Assistant: "+t.Content)
		}
	}
	return strings.Join(parts, "\n\n")
}

// Action is a canned request about the current code.
type Action string

const (
	ActionExplain  Action = "explain"
	ActionFix      Action = "fix"
	ActionOptimize Action = "optimize"
)

// ParseAction validates a user supplied action name.
func ParseAction(s string) (Action, error) {
	switch a := Action(strings.ToLower(strings.TrimSpace(s))); a {
	case ActionExplain, ActionFix, ActionOptimize:
		return a, nil
	}
	return "", fmt.Errorf("unknown action %q (want explain, fix or optimize)", s)
}

// QuickActionPrompt builds the chat prompt for a quick action, with the code
// fenced and tagged with the language. errText, when set, is the last
// execution error and is appended to a fix request.
func QuickActionPrompt(action Action, language, code, errText string) string {
	fenced := fence(language, code)
	switch action {
	case ActionFix:
		p := fmt.Sprintf("Fix any errors or issues in this %s code:\n\n%s", language, fenced)
		if errText != "" {
			p += "\n\nError message:\n" + errText
		}
		return p
	case ActionOptimize:
		return fmt.Sprintf("Optimize this %s code for better performance:\n\n%s", language, fenced)
	default:
		return fmt.Sprintf("Explain this %s code:\n\n%s", language, fenced)
	}
}

func fence(language, code string) string {
	return "```" + language + "\n" + code + "\n```"
}

// ExtractCodeBlock returns the body of the first fenced block in s, or ""
// when s has none. Used to preview a suggested fix as a diff.
func ExtractCodeBlock(s string) string {
	start := strings.Index(s, "```")
	if start < 0 {
		return ""
	}
	rest := s[start+3:]
	nl := strings.IndexByte(rest, '\n')
	if nl < 0 {
		return ""
	}
	rest = rest[nl+1:]
	end := strings.Index(rest, "```")
	if end < 0 {
		return ""
	}
	return strings.TrimRight(rest[:end], "\n")
}
