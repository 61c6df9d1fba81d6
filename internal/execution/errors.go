package execution

import (
	"errors"
	"fmt"
)

// User-facing messages.
const (
	MsgEmptyCode = "Please enter some code"
	MsgGeneric   = "Error running code"
)

// Sentinel errors for error classification.
var (
	// ErrAlreadyRunning is returned when Run is called during a run.
	ErrAlreadyRunning = errors.New("execution already running")

	// ErrEmptyCode is the local validation failure for an empty buffer.
	// No request is sent.
	ErrEmptyCode = errors.New(MsgEmptyCode)

	// ErrService matches every ServiceError.
	ErrService = errors.New("execution service error")
)

// Stage names the part of the response that reported the failure.
type Stage string

const (
	StageMessage Stage = "message"
	StageCompile Stage = "compile"
	StageRun     Stage = "run"
)

// ServiceError is a failure reported by the execution service itself:
// a top-level message, a compile failure or a non-zero run exit.
type ServiceError struct {
	Stage    Stage
	ExitCode int
	Message  string
}

func (e *ServiceError) Error() string {
	if e.Stage == StageMessage {
		return e.Message
	}
	return fmt.Sprintf("%s exited with code %d: %s", e.Stage, e.ExitCode, e.Message)
}

// Is reports whether target is ErrService.
func (e *ServiceError) Is(target error) bool {
	return target == ErrService
}
