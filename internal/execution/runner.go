package execution

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/interpretive-systems/codecraft/internal/langs"
	"github.com/interpretive-systems/codecraft/internal/logging"
	"github.com/interpretive-systems/codecraft/internal/metrics"
)

// Status is the run lifecycle state.
type Status int

const (
	Idle Status = iota
	Running
	Succeeded
	Failed
)

func (s Status) String() string {
	switch s {
	case Running:
		return "running"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

// Result is the normalized outcome of a run. Error is nil on success.
type Result struct {
	Code   string  `json:"code"`
	Output string  `json:"output"`
	Error  *string `json:"error"`
}

// Failed reports whether the run failed.
func (r Result) Failed() bool { return r.Error != nil }

// ErrorText returns the error message or "".
func (r Result) ErrorText() string {
	if r.Error == nil {
		return ""
	}
	return *r.Error
}

func failed(code, msg string) Result {
	return Result{Code: code, Error: &msg}
}

// Executor sends one request to the execution service.
type Executor interface {
	Execute(ctx context.Context, req Request) (*Response, error)
}

// Runner drives Idle -> Running -> Succeeded|Failed. One run at a time.
type Runner struct {
	exec Executor
	log  *zap.Logger

	mu     sync.Mutex
	status Status
}

// NewRunner returns an idle runner backed by exec.
func NewRunner(exec Executor) *Runner {
	return &Runner{exec: exec, log: logging.Named("execution")}
}

// Status returns the current state.
func (r *Runner) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Running reports whether a run is in flight.
func (r *Runner) Running() bool { return r.Status() == Running }

// Run executes code in the given language. It returns ErrAlreadyRunning
// without side effects while another run is in flight, and ErrEmptyCode
// (with the validation result) for an empty buffer. Every other failure is
// reported through Result.Error with a nil error.
func (r *Runner) Run(ctx context.Context, language, code string) (Result, error) {
	r.mu.Lock()
	if r.status == Running {
		r.mu.Unlock()
		return Result{}, ErrAlreadyRunning
	}
	if code == "" {
		r.status = Failed
		r.mu.Unlock()
		return failed(code, MsgEmptyCode), ErrEmptyCode
	}
	r.status = Running
	r.mu.Unlock()

	start := time.Now()
	res := r.execute(ctx, language, code)

	r.mu.Lock()
	if res.Failed() {
		r.status = Failed
	} else {
		r.status = Succeeded
	}
	r.mu.Unlock()

	metrics.RecordRun(language, r.Status().String(), time.Since(start))
	return res, nil
}

// execute never panics the caller: a panic in the executor is converted to
// the generic failure so the runner always leaves Running.
func (r *Runner) execute(ctx context.Context, language, code string) (res Result) {
	defer func() {
		if p := recover(); p != nil {
			r.log.Error("execution panicked", zap.Any("panic", p))
			res = failed(code, MsgGeneric)
		}
	}()

	lang, err := langs.Lookup(language)
	if err != nil {
		r.log.Warn("cannot run", zap.Error(err))
		return failed(code, MsgGeneric)
	}
	resp, err := r.exec.Execute(ctx, Request{
		Language: lang.Runtime.Language,
		Version:  lang.Runtime.Version,
		Files:    []File{{Content: code}},
	})
	if err != nil {
		r.log.Warn("execution request failed", zap.String("language", language), zap.Error(err))
		return failed(code, MsgGeneric)
	}
	res, serr := Classify(code, resp)
	if serr != nil {
		r.log.Debug("execution reported failure", zap.Error(serr))
	}
	return res
}

// Classify turns a response into a result, in priority order: service
// message, compile failure, run failure, success. The returned error is a
// *ServiceError describing the failure, or nil.
func Classify(code string, resp *Response) (Result, error) {
	if resp == nil {
		return failed(code, MsgGeneric), errors.New("empty response")
	}
	if resp.Message != "" {
		return failed(code, resp.Message), &ServiceError{Stage: StageMessage, Message: resp.Message}
	}
	if c := resp.Compile; c != nil && c.Failed() {
		msg := c.message()
		return failed(code, msg), &ServiceError{Stage: StageCompile, ExitCode: c.Code, Message: msg}
	}
	if rn := resp.Run; rn != nil && rn.Failed() {
		msg := rn.message()
		return failed(code, msg), &ServiceError{Stage: StageRun, ExitCode: rn.Code, Message: msg}
	}
	if resp.Run == nil {
		return failed(code, MsgGeneric), errors.New("response has no run section")
	}
	return Result{Code: code, Output: strings.TrimSpace(resp.Run.Output)}, nil
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
