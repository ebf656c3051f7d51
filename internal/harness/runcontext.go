package harness

import (
	"errors"

	"github.com/roach88/marbles/internal/ir"
	"github.com/roach88/marbles/internal/marble"
	"github.com/roach88/marbles/internal/rx"
)

var (
	// ErrAnimateTwice is returned when animation ticks are configured twice.
	ErrAnimateTwice = errors.New("harness: animate must not be called more than once")
	// ErrAnimateTerminal is returned for animation diagrams with '|' or '#'.
	ErrAnimateTerminal = errors.New("harness: animate diagram must not complete or error")
)

// Animate schedules an animation tick at every value frame of marbles.
// Without it, requesting an animation frame is a runtime error.
func (h *Harness) Animate(marbles string) error {
	if h.sched.AnimationConfigured() {
		return h.fail(ErrAnimateTwice)
	}
	msgs, err := marble.ParseMarbles(marbles, h.marbleOptions(nil)...)
	if err != nil {
		return h.fail(err)
	}
	frames := make([]int64, 0, len(msgs))
	for _, m := range msgs {
		if m.Notification.Kind != ir.KindNext {
			return h.fail(ErrAnimateTerminal)
		}
		frames = append(frames, m.Frame)
	}
	h.sched.ScheduleAnimationTicks(frames...)
	return nil
}

// RunContext is the helper set passed to a Run body. Its methods panic on
// error; Run recovers the panic and returns it.
type RunContext struct {
	h *Harness
}

// Cold creates a cold observable.
func (rc *RunContext) Cold(marbles string, opts ...marble.Option) *ColdObservable {
	c, err := rc.h.CreateColdObservable(marbles, opts...)
	must(err)
	return c
}

// Hot creates a hot observable.
func (rc *RunContext) Hot(marbles string, opts ...marble.Option) *HotObservable {
	hot, err := rc.h.CreateHotObservable(marbles, opts...)
	must(err)
	return hot
}

// Time returns the frame of the '|' in marbles.
func (rc *RunContext) Time(marbles string) int64 {
	t, err := rc.h.CreateTime(marbles)
	must(err)
	return t
}

// ExpectObservable records src inside the optional subscription window.
func (rc *RunContext) ExpectObservable(src rx.Observable, subscriptionMarbles ...string) *ObservableExpectation {
	e, err := rc.h.ExpectObservable(src, subscriptionMarbles...)
	must(err)
	return e
}

// ExpectSubscriptions compares the subscription logs of src.
func (rc *RunContext) ExpectSubscriptions(src SubscriptionLogger) *SubscriptionExpectation {
	return rc.h.ExpectSubscriptions(src)
}

// Animate configures animation ticks.
func (rc *RunContext) Animate(marbles string) {
	must(rc.h.Animate(marbles))
}

// Flush drains the scheduler and resolves ready expectations early.
func (rc *RunContext) Flush() {
	must(rc.h.Flush())
}

// Scheduler returns the harness scheduler.
func (rc *RunContext) Scheduler() rx.Scheduler {
	return rc.h.sched
}

// Now returns the current frame.
func (rc *RunContext) Now() int64 {
	return rc.h.Now()
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
