package engine

import "github.com/roach88/marbles/internal/rx"

// Priority classes actions due at the same frame.
type Priority int

const (
	// PriorityImmediate runs before anything else due at the frame.
	PriorityImmediate Priority = iota
	// PriorityAnimation runs animation-frame callbacks.
	PriorityAnimation
	// PriorityTimer runs timeouts, intervals and generic delays.
	PriorityTimer
)

// String returns the lowercase priority name.
func (p Priority) String() string {
	switch p {
	case PriorityImmediate:
		return "immediate"
	case PriorityAnimation:
		return "animation"
	case PriorityTimer:
		return "timer"
	default:
		return "unknown"
	}
}

// Work is the callback an Action runs. It receives the action so it can read
// its state or reschedule itself.
type Work func(a *Action)

// Action is one unit of scheduled work.
//
// Unsubscribing the embedded Subscription tombstones the action: if it has
// not fired yet it never will. An action that fires without rescheduling
// itself is closed afterwards.
type Action struct {
	*rx.Subscription

	sched    *Scheduler
	work     Work
	state    any
	due      int64
	priority Priority
	seq      int64
	index    int // position in the heap, -1 when not queued

	rescheduled bool
}

// Due returns the frame the action is (or was last) due at.
func (a *Action) Due() int64 { return a.due }

// Priority returns the action's priority class.
func (a *Action) Priority() Priority { return a.priority }

// State returns the state passed at scheduling time.
func (a *Action) State() any { return a.state }

// Cancel tombstones the action. It implements timer.Handle.
func (a *Action) Cancel() { a.Unsubscribe() }

// Reschedule queues the same work again after delay frames with a new state.
// It is a no-op on a cancelled action. Calling it from inside the action's
// own work keeps the action open after the work returns.
func (a *Action) Reschedule(state any, delay int64) *Action {
	if a.Closed() {
		return a
	}
	a.sched.mustBeLive()
	a.state = state
	a.rescheduled = true
	a.due = a.sched.Now() + max(0, delay)
	a.seq = a.sched.clock.Next()
	if a.index >= 0 {
		a.sched.queue.fix(a)
	} else {
		a.sched.queue.push(a)
	}
	return a
}
