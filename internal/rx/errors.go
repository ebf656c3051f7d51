package rx

import (
	"errors"
	"fmt"
	"strings"
)

// PanicError wraps a value recovered from a panicking producer or consumer.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("recovered panic: %v", e.Value)
}

// Unwrap exposes the panic value when it was itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// IsPanicError returns true if err wraps a PanicError.
func IsPanicError(err error) bool {
	var pe *PanicError
	return errors.As(err, &pe)
}

// UnsubscriptionError collects the panics raised by teardowns during a
// single Unsubscribe call. Every teardown still runs exactly once.
type UnsubscriptionError struct {
	Errors []error
}

func (e *UnsubscriptionError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%d errors occurred during unsubscription: %s", len(e.Errors), strings.Join(msgs, "; "))
}

func (e *UnsubscriptionError) Unwrap() []error {
	return e.Errors
}

// recovered converts a recover() value into an error.
func recovered(r any) error {
	if err, ok := r.(*PanicError); ok {
		return err
	}
	return &PanicError{Value: r}
}
