package ai

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/interpretive-systems/codecraft/internal/logging"
	"github.com/interpretive-systems/codecraft/internal/metrics"
)

// DefaultDelay is the debounce delay used when none is configured.
const DefaultDelay = 300 * time.Millisecond

// trailingLines bounds the context sent after the cursor.
const trailingLines = 5

// Completer produces inline completions.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// Context is the buffer state at a trigger. Cursor is a byte offset into
// Text.
type Context struct {
	Text     string
	Cursor   int
	Language string
}

// Suggestion is text to insert at Cursor.
type Suggestion struct {
	Text   string
	Cursor int
}

// Autocomplete debounces triggers into completion requests, one in flight
// at a time.
type Autocomplete struct {
	completer Completer
	log       *zap.Logger

	mu      sync.Mutex
	delay   time.Duration
	enabled bool
	timer   *time.Timer
	seq     uint64
	busy    bool
	cancel  context.CancelFunc
	closed  bool
	out     chan Suggestion
}

// NewAutocomplete returns an enabled provider. delay <= 0 uses DefaultDelay.
func NewAutocomplete(c Completer, delay time.Duration) *Autocomplete {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Autocomplete{
		completer: c,
		log:       logging.Named("autocomplete"),
		delay:     delay,
		enabled:   true,
		out:       make(chan Suggestion, 1),
	}
}

// Suggestions delivers completions. Only the newest undelivered suggestion
// is kept.
func (a *Autocomplete) Suggestions() <-chan Suggestion { return a.out }

func (a *Autocomplete) SetDelay(d time.Duration) {
	if d <= 0 {
		d = DefaultDelay
	}
	a.mu.Lock()
	a.delay = d
	a.mu.Unlock()
}

func (a *Autocomplete) SetEnabled(v bool) {
	a.mu.Lock()
	a.enabled = v
	a.mu.Unlock()
	if !v {
		a.Cancel()
	}
}

func (a *Autocomplete) Enabled() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.enabled
}

// Trigger replaces any pending timer with a new one for c.
func (a *Autocomplete) Trigger(c Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed || !a.enabled {
		return
	}
	if a.timer != nil {
		a.timer.Stop()
	}
	a.seq++
	seq := a.seq
	a.timer = time.AfterFunc(a.delay, func() { a.fire(seq, c) })
}

// Cancel stops the pending timer and aborts the request in flight. A result
// arriving afterwards is discarded.
func (a *Autocomplete) Cancel() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cancelLocked()
}

func (a *Autocomplete) cancelLocked() {
	a.seq++
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
}

// Close cancels all work and closes the suggestion channel.
func (a *Autocomplete) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	a.cancelLocked()
	a.closed = true
	close(a.out)
}

func (a *Autocomplete) fire(seq uint64, c Context) {
	a.mu.Lock()
	if seq != a.seq || a.busy || a.closed {
		a.mu.Unlock()
		return
	}
	req, ok := completionRequest(c)
	if !ok {
		a.mu.Unlock()
		metrics.RecordSuggestion("skipped")
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.busy = true
	a.cancel = cancel
	a.mu.Unlock()

	text, err := a.completer.Complete(ctx, req)
	cancel()

	a.mu.Lock()
	defer a.mu.Unlock()
	a.busy = false
	a.cancel = nil
	if err != nil {
		a.log.Debug("completion failed", zap.Error(err))
		metrics.RecordSuggestion("error")
		return
	}
	if seq != a.seq || a.closed {
		metrics.RecordSuggestion("stale")
		return
	}
	line := firstLine(text)
	if line == "" {
		metrics.RecordSuggestion("empty")
		return
	}
	s := Suggestion{Text: line, Cursor: c.Cursor}
	select {
	case a.out <- s:
	default:
		select {
		case <-a.out:
		default:
		}
		a.out <- s
	}
	metrics.RecordSuggestion("offered")
}

// completionRequest splits the buffer around the cursor. It reports false
// when the cursor sits right after an identifier character.
func completionRequest(c Context) (CompletionRequest, bool) {
	cur := c.Cursor
	if cur < 0 {
		cur = 0
	}
	if cur > len(c.Text) {
		cur = len(c.Text)
	}
	before := c.Text[:cur]
	if r, _ := utf8.DecodeLastRuneInString(before); r != utf8.RuneError && isWordRune(r) {
		return CompletionRequest{}, false
	}
	return CompletionRequest{
		Language:      c.Language,
		CursorOffset:  cur,
		ContextBefore: before,
		ContextAfter:  trailing(c.Text[cur:], trailingLines),
	}, true
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// trailing keeps the rest of the current line and the following lines, n
// lines in total.
func trailing(s string, n int) string {
	lines := strings.SplitN(s, "\n", n+1)
	if len(lines) > n {
		lines = lines[:n]
	}
	return strings.Join(lines, "\n")
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimRight(s, " \t")
}
