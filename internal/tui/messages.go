package tui

import (
	"github.com/interpretive-systems/codecraft/internal/ai"
	"github.com/interpretive-systems/codecraft/internal/execution"
)

// runResultMsg carries a finished run.
type runResultMsg struct {
	res execution.Result
	err error
}

// aiStatusMsg reports whether the assistant answered a ping.
type aiStatusMsg struct {
	online bool
}

// pingTickMsg schedules the next connectivity check.
type pingTickMsg struct{}

// chatUpdateMsg carries one streamed update and the channel it came from.
type chatUpdateMsg struct {
	update ai.Update
	ch     <-chan ai.Update
}

// chatClosedMsg is sent when a stream channel closes.
type chatClosedMsg struct{}

// suggestionMsg carries an inline completion.
type suggestionMsg struct {
	s ai.Suggestion
}

// clipboardMsg reports a clipboard write.
type clipboardMsg struct {
	what string
	err  error
}
