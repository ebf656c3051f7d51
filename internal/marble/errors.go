package marble

import (
	"errors"
	"fmt"
)

// SyntaxError reports a malformed marble diagram.
type SyntaxError struct {
	// Marbles is the diagram as given.
	Marbles string
	// Pos is the character (rune) index of the offending token.
	Pos int
	// Msg describes the problem.
	Msg string
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("marble syntax error at %d in %q: %s", e.Pos, e.Marbles, e.Msg)
}

// IsSyntaxError returns true if err is a *SyntaxError.
// Uses errors.As to handle wrapped errors.
func IsSyntaxError(err error) bool {
	var se *SyntaxError
	return errors.As(err, &se)
}

func syntaxErrorf(marbles string, pos int, format string, args ...any) *SyntaxError {
	return &SyntaxError{Marbles: marbles, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}
