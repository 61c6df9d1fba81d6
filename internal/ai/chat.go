package ai

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/interpretive-systems/codecraft/internal/logging"
)

// FailureNotice is shown when a reply could not be streamed.
const FailureNotice = "Failed to get AI response. Is Ollama running?"

var (
	ErrBusy        = errors.New("ai: a reply is already streaming")
	ErrEmptyPrompt = errors.New("ai: empty prompt")
	ErrNoCode      = errors.New("No code selected or in editor")
)

// Message is one transcript entry.
type Message struct {
	ID        string `json:"id"`
	Role      Role   `json:"role"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
}

// Update reports the assistant message after a chunk was applied. The last
// update of a send has Done set; Err is non-nil when the stream failed.
type Update struct {
	Message Message
	Done    bool
	Err     error
}

// ChatOption configures a Chat.
type ChatOption func(*Chat)

// WithClock replaces time.Now for message ids and timestamps.
func WithClock(now func() time.Time) ChatOption {
	return func(c *Chat) { c.now = now }
}

// Chat owns the transcript and the streaming state of the assistant panel.
type Chat struct {
	provider Provider
	now      func() time.Time
	log      *zap.Logger

	mu       sync.Mutex
	messages []Message
	thinking bool
	open     bool
	selected string
	notice   string
	cancel   context.CancelFunc
}

// NewChat returns an empty chat backed by p.
func NewChat(p Provider, opts ...ChatOption) *Chat {
	c := &Chat{
		provider: p,
		now:      time.Now,
		log:      logging.Named("chat"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Provider returns the backing provider.
func (c *Chat) Provider() Provider { return c.provider }

// Send streams a reply to prompt. A user authored prompt is appended to the
// transcript; any other prompt is only sent to the model. The placeholder
// assistant message is appended immediately and its content replaced as
// chunks arrive. The returned channel must be drained until closed.
func (c *Chat) Send(ctx context.Context, prompt string, userAuthored bool) (<-chan Update, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrEmptyPrompt
	}

	c.mu.Lock()
	if c.thinking {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	turns := make([]Turn, 0, len(c.messages)+1)
	for _, m := range c.messages {
		turns = append(turns, Turn{Role: m.Role, Content: m.Content})
	}
	turns = append(turns, Turn{Role: RoleUser, Content: prompt})

	now := c.now()
	id := strconv.FormatInt(now.UnixMilli(), 10)
	if userAuthored {
		c.messages = append(c.messages, Message{ID: id, Role: RoleUser, Content: prompt, Timestamp: now.UnixMilli()})
	}
	placeholder := Message{ID: id + "-ai", Role: RoleAssistant, Timestamp: now.UnixMilli()}
	c.messages = append(c.messages, placeholder)
	c.thinking = true
	c.notice = ""
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()

	out := make(chan Update, 16)
	go c.consume(ctx, cancel, turns, placeholder, out)
	return out, nil
}

func (c *Chat) consume(ctx context.Context, cancel context.CancelFunc, turns []Turn, msg Message, out chan<- Update) {
	defer close(out)
	defer cancel()

	chunks, errs, err := c.provider.Stream(ctx, turns)
	if err != nil {
		out <- c.finish(ctx, msg, err)
		return
	}

	var buf strings.Builder
	for chunk := range chunks {
		buf.WriteString(chunk)
		msg.Content = buf.String()
		c.replace(msg)
		out <- Update{Message: msg}
	}
	var streamErr error
	for e := range errs {
		if e != nil && streamErr == nil {
			streamErr = e
		}
	}
	out <- c.finish(ctx, msg, streamErr)
}

// replace overwrites the last message if it is still msg's placeholder.
func (c *Chat) replace(msg Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n := len(c.messages); n > 0 && c.messages[n-1].ID == msg.ID {
		c.messages[n-1] = msg
	}
}

func (c *Chat) finish(ctx context.Context, msg Message, err error) Update {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.thinking = false
	c.cancel = nil
	if err == nil {
		return Update{Message: msg, Done: true}
	}
	if ctx.Err() != nil && errors.Is(err, context.Canceled) {
		// Stopped by the user; the partial reply stays.
		return Update{Message: msg, Done: true}
	}
	c.log.Warn("chat stream failed", zap.String("provider", c.provider.Name()), zap.Error(err))
	c.notice = FailureNotice
	return Update{Message: msg, Done: true, Err: err}
}

// QuickAction sends a canned request about code. Empty code falls back to
// the selected code.
func (c *Chat) QuickAction(ctx context.Context, action Action, language, code, errText string) (<-chan Update, error) {
	if strings.TrimSpace(code) == "" {
		code = c.SelectedCode()
	}
	if strings.TrimSpace(code) == "" {
		return nil, ErrNoCode
	}
	return c.Send(ctx, QuickActionPrompt(action, language, code, errText), false)
}

// Cancel stops the reply being streamed, if any.
func (c *Chat) Cancel() {
	c.mu.Lock()
	cancel := c.cancel
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Clear drops the transcript and the failure notice.
func (c *Chat) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = nil
	c.notice = ""
}

// Messages returns a copy of the transcript.
func (c *Chat) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Message(nil), c.messages...)
}

// Len is the transcript length.
func (c *Chat) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

// LastReply returns the content of the latest assistant message.
func (c *Chat) LastReply() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].Role == RoleAssistant {
			return c.messages[i].Content
		}
	}
	return ""
}

func (c *Chat) Thinking() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.thinking
}

// Notice is the user visible failure text of the last send, or "".
func (c *Chat) Notice() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.notice
}

// Toggle flips the panel open state and returns the new state.
func (c *Chat) Toggle() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = !c.open
	return c.open
}

func (c *Chat) SetOpen(open bool) {
	c.mu.Lock()
	c.open = open
	c.mu.Unlock()
}

func (c *Chat) Open() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

func (c *Chat) SetSelectedCode(code string) {
	c.mu.Lock()
	c.selected = code
	c.mu.Unlock()
}

func (c *Chat) SelectedCode() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}
