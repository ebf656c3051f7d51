package harness

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/marbles/internal/ir"
)

// AssertFunc compares an actual and an expected timeline (or subscription
// log list) and reports a mismatch as an error.
type AssertFunc func(actual, expected any) error

// AssertionError describes a mismatch found by DeepEqual.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Diff     string
}

func (e *AssertionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s mismatch\n", e.Type)
	fmt.Fprintf(&b, "  expected: %s\n", e.Expected)
	fmt.Fprintf(&b, "  actual:   %s", e.Actual)
	if e.Diff != "" {
		fmt.Fprintf(&b, "\n\n%s", e.Diff)
	}
	return b.String()
}

// DeepEqual is the default AssertFunc. It compares with testify's equality
// rules and keeps testify's diff for the error message.
func DeepEqual(actual, expected any) error {
	if assert.ObjectsAreEqual(expected, actual) {
		return nil
	}
	capture := &diffCapture{}
	assert.Equal(capture, expected, actual)
	return &AssertionError{
		Type:     describe(actual),
		Expected: render(expected),
		Actual:   render(actual),
		Diff:     capture.diff(),
	}
}

// Require returns an AssertFunc that fails t immediately on a mismatch.
func Require(t testing.TB) AssertFunc {
	return func(actual, expected any) error {
		t.Helper()
		require.Equal(t, expected, actual)
		return nil
	}
}

// diffCapture is an assert.TestingT that keeps the failure message.
type diffCapture struct {
	msg string
}

func (c *diffCapture) Errorf(format string, args ...any) {
	c.msg = fmt.Sprintf(format, args...)
}

// diff drops testify's caller trace and keeps the diff section.
func (c *diffCapture) diff() string {
	if i := strings.Index(c.msg, "Diff:"); i >= 0 {
		return strings.TrimSpace(c.msg[i:])
	}
	return strings.TrimSpace(c.msg)
}

func describe(v any) string {
	switch v.(type) {
	case []ir.TestMessage:
		return "observable"
	case []ir.SubscriptionLog:
		return "subscriptions"
	default:
		return "value"
	}
}

func render(v any) string {
	switch vv := v.(type) {
	case []ir.TestMessage:
		parts := make([]string, len(vv))
		for i, m := range vv {
			parts[i] = m.String()
		}
		return "[" + strings.Join(parts, " ") + "]"
	case []ir.SubscriptionLog:
		parts := make([]string, len(vv))
		for i, l := range vv {
			parts[i] = l.String()
		}
		return "[" + strings.Join(parts, " ") + "]"
	default:
		return fmt.Sprintf("%v", v)
	}
}
