package engine

import "fmt"

// QuotaEnforcer counts the actions executed by one flush and enforces a
// maximum steps limit.
//
// A Scheduler owns one QuotaEnforcer and resets it at the start of every
// flush. The quota is checked before every action runs.
//
// This stops flushes that never drain: a zero-period interval, or an action
// that reschedules itself at the same frame forever, would otherwise spin
// the flush loop without the clock ever advancing past maxFrame.
type QuotaEnforcer struct {
	maxSteps int // Maximum allowed steps; <= 0 means unlimited
	current  int // Current step count
}

// NewQuotaEnforcer creates a new quota enforcer with the given limit.
//
// maxSteps: Maximum number of actions allowed per flush.
// Typical default: DefaultMaxSteps (configurable via WithMaxSteps()).
func NewQuotaEnforcer(maxSteps int) *QuotaEnforcer {
	return &QuotaEnforcer{maxSteps: maxSteps}
}

// Check increments the step counter and validates against the limit.
//
// Returns StepsExceededError if the quota is exceeded.
func (q *QuotaEnforcer) Check(frame int64) error {
	q.current++
	if q.maxSteps > 0 && q.current > q.maxSteps {
		return &StepsExceededError{
			Frame: frame,
			Steps: q.current,
			Limit: q.maxSteps,
		}
	}
	return nil
}

// Reset resets the step counter to 0.
func (q *QuotaEnforcer) Reset() {
	q.current = 0
}

// Current returns the current step count.
// Used for logging and diagnostics.
func (q *QuotaEnforcer) Current() int {
	return q.current
}

// MaxSteps returns the maximum steps limit.
func (q *QuotaEnforcer) MaxSteps() int {
	return q.maxSteps
}

// StepsExceededError is returned when a flush exceeds the max steps quota.
//
// The flush is terminated and every remaining action is cancelled.
type StepsExceededError struct {
	Frame int64 // Frame at which the quota ran out
	Steps int   // Number of steps taken
	Limit int   // Maximum allowed steps
}

// Error implements the error interface.
func (e *StepsExceededError) Error() string {
	return fmt.Sprintf("flush exceeded max steps quota at frame %d: %d steps > %d limit",
		e.Frame, e.Steps, e.Limit)
}

// IsStepsExceededError returns true if err is a StepsExceededError.
func IsStepsExceededError(err error) bool {
	return IsQuotaError(err)
}
