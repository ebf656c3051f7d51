package engine

import (
	"errors"
	"fmt"
)

// RuntimeError represents a programmer error detected while driving the
// scheduler or the harness built on it.
//
// Runtime errors include:
//   - Nested flush: Flush called while a flush is in progress
//   - Disposed: scheduling on a disposed scheduler
//   - Action panicked: a scheduled callback panicked
//   - Animate not called: an animation frame was requested with no ticks
//   - Expectation resolved: an expectation handle was resolved twice
//
// RuntimeError includes structured fields for diagnostics.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// Frame is the virtual frame at which the error was detected.
	Frame int64

	// Cause is the underlying error, if any (for example a recovered panic).
	Cause error

	// Details contains additional context.
	Details map[string]string
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeNestedFlush indicates Flush was re-entered.
	ErrCodeNestedFlush RuntimeErrorCode = "NESTED_FLUSH"

	// ErrCodeDisposed indicates use of a disposed scheduler.
	ErrCodeDisposed RuntimeErrorCode = "DISPOSED"

	// ErrCodeActionPanicked indicates a scheduled action panicked.
	ErrCodeActionPanicked RuntimeErrorCode = "ACTION_PANICKED"

	// ErrCodeAnimateNotCalled indicates an animation frame was requested
	// before any animation ticks were scheduled.
	ErrCodeAnimateNotCalled RuntimeErrorCode = "ANIMATE_NOT_CALLED"

	// ErrCodeExpectationResolved indicates an expectation was resolved twice.
	ErrCodeExpectationResolved RuntimeErrorCode = "EXPECTATION_RESOLVED"
)

// NewRuntimeError creates a RuntimeError with a formatted message.
func NewRuntimeError(code RuntimeErrorCode, frame int64, format string, args ...any) *RuntimeError {
	return &RuntimeError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Frame:   frame,
	}
}

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (frame=%d): %v", e.Code, e.Message, e.Frame, e.Cause)
	}
	return fmt.Sprintf("%s: %s (frame=%d)", e.Code, e.Message, e.Frame)
}

// Unwrap returns the cause.
func (e *RuntimeError) Unwrap() error {
	return e.Cause
}

func hasCode(err error, code RuntimeErrorCode) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

// IsNestedFlushError returns true if err is a nested flush error.
// Uses errors.As to handle wrapped errors.
func IsNestedFlushError(err error) bool { return hasCode(err, ErrCodeNestedFlush) }

// IsDisposedError returns true if err reports use after Dispose.
func IsDisposedError(err error) bool { return hasCode(err, ErrCodeDisposed) }

// IsActionPanickedError returns true if err reports a panicking action.
func IsActionPanickedError(err error) bool { return hasCode(err, ErrCodeActionPanicked) }

// IsAnimateNotCalledError returns true if err reports a missing animate call.
func IsAnimateNotCalledError(err error) bool { return hasCode(err, ErrCodeAnimateNotCalled) }

// IsExpectationResolvedError returns true if err reports a double resolution.
func IsExpectationResolvedError(err error) bool { return hasCode(err, ErrCodeExpectationResolved) }

// IsQuotaError returns true if err is a StepsExceededError.
// Uses errors.As to handle wrapped errors.
func IsQuotaError(err error) bool {
	var se *StepsExceededError
	return errors.As(err, &se)
}

// AsRuntimeError recovers a *RuntimeError from a panic value. Harness code
// uses it to turn programmer-error panics back into errors.
func AsRuntimeError(r any) (*RuntimeError, bool) {
	switch v := r.(type) {
	case *RuntimeError:
		return v, true
	case error:
		var re *RuntimeError
		if errors.As(v, &re) {
			return re, true
		}
	}
	return nil, false
}
