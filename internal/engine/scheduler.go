package engine

import (
	"io"
	"log/slog"

	"github.com/roach88/marbles/internal/ir"
	"github.com/roach88/marbles/internal/rx"
)

// DefaultMaxSteps is the default maximum number of actions per flush.
const DefaultMaxSteps = 100_000

// Scheduler is the virtual-time action scheduler.
//
// Thread-safety model: a Scheduler is driven from exactly one goroutine.
// Schedule may be called from inside a running action (re-entrant
// scheduling is the normal case); Flush may not.
type Scheduler struct {
	clock    *Clock
	queue    actionQueue
	flushing bool
	disposed bool
	quota    *QuotaEnforcer
	logger   *slog.Logger
	anim     animationQueue

	// misuse holds a programmer error raised somewhere that could not
	// propagate it (for example inside a producer, which turns panics into
	// Error notifications). The next Flush reports it.
	misuse error
}

var _ rx.Scheduler = (*Scheduler)(nil)

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithMaxSteps sets the maximum actions a single flush may execute.
//
// Default: DefaultMaxSteps. Zero or a negative value disables the quota.
func WithMaxSteps(maxSteps int) Option {
	return func(s *Scheduler) {
		s.quota = NewQuotaEnforcer(maxSteps)
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewScheduler creates an empty scheduler at frame 0.
func NewScheduler(opts ...Option) *Scheduler {
	s := &Scheduler{
		clock:    NewClock(),
		quota:    NewQuotaEnforcer(DefaultMaxSteps),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the current frame.
func (s *Scheduler) Now() int64 {
	return s.clock.Now()
}

// Clock returns the scheduler's clock.
func (s *Scheduler) Clock() *Clock {
	return s.clock
}

// Schedule queues work at the timer priority, delay frames from now.
// Negative delays are treated as zero.
func (s *Scheduler) Schedule(work Work, delay int64, state any) *Action {
	return s.ScheduleWithPriority(PriorityTimer, work, delay, state)
}

// ScheduleWithPriority queues work in the given priority class.
//
// Panics with ErrCodeDisposed after Dispose.
func (s *Scheduler) ScheduleWithPriority(p Priority, work Work, delay int64, state any) *Action {
	s.mustBeLive()
	a := &Action{
		Subscription: rx.NewSubscription(),
		sched:        s,
		work:         work,
		state:        state,
		due:          s.Now() + max(0, delay),
		priority:     p,
		seq:          s.clock.Next(),
		index:        -1,
	}
	s.queue.push(a)
	return a
}

// Delay runs work after frames. It implements rx.Scheduler.
func (s *Scheduler) Delay(work func(), frames int64) *rx.Subscription {
	return s.Schedule(func(*Action) { work() }, frames, nil).Subscription
}

// Pending returns the number of live queued actions.
func (s *Scheduler) Pending() int {
	n := 0
	for _, a := range s.queue {
		if !a.Closed() {
			n++
		}
	}
	return n
}

// Flushing reports whether a flush is in progress.
func (s *Scheduler) Flushing() bool {
	return s.flushing
}

// Flush drains the queue completely.
func (s *Scheduler) Flush() error {
	return s.FlushUntil(ir.Infinity)
}

// FlushUntil runs every action due at or before maxFrame, in
// (due, priority, seq) order, advancing the clock to each action's frame.
//
// Actions scheduled while flushing are picked up by the same flush.
// Returns:
//   - ErrCodeNestedFlush if called from inside a running action
//   - ErrCodeActionPanicked if an action panicked; the rest of the queue
//     is cancelled
//   - *StepsExceededError if the quota ran out; the rest of the queue is
//     cancelled
//   - a misuse error recorded since the previous flush
func (s *Scheduler) FlushUntil(maxFrame int64) error {
	if s.flushing {
		return NewRuntimeError(ErrCodeNestedFlush, s.Now(), "flush called while a flush is in progress")
	}
	if s.disposed {
		return NewRuntimeError(ErrCodeDisposed, s.Now(), "flush called on a disposed scheduler")
	}
	s.flushing = true
	defer func() { s.flushing = false }()

	quota := s.quota
	quota.Reset()
	s.logger.Debug("flush started",
		"frame", s.Now(),
		"pending", s.queue.Len(),
		"max_frame", maxFrame)

	for {
		a := s.queue.peek()
		if a == nil {
			break
		}
		if a.Closed() {
			s.queue.pop()
			continue
		}
		if a.due > maxFrame {
			break
		}
		s.queue.pop()

		if err := quota.Check(a.due); err != nil {
			s.logger.Error("flush exceeded max steps",
				"frame", a.due,
				"limit", quota.MaxSteps())
			s.cancelAll()
			return err
		}

		s.clock.advance(a.due)
		if err := s.execute(a); err != nil {
			s.logger.Error("action panicked",
				"frame", a.due,
				"priority", a.priority.String(),
				"error", err)
			s.cancelAll()
			return err
		}
	}

	s.logger.Debug("flush finished",
		"frame", s.Now(),
		"steps", quota.Current())

	if err := s.misuse; err != nil {
		s.misuse = nil
		return err
	}
	return nil
}

// execute runs one action, converting a panic into ErrCodeActionPanicked.
// An action that did not reschedule itself is closed afterwards.
func (s *Scheduler) execute(a *Action) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &RuntimeError{
				Code:    ErrCodeActionPanicked,
				Message: "scheduled action panicked",
				Frame:   s.Now(),
				Cause:   &rx.PanicError{Value: r},
				Details: map[string]string{"priority": a.priority.String()},
			}
			closeQuietly(a)
		}
	}()

	a.rescheduled = false
	a.work(a)
	if !a.rescheduled {
		a.Unsubscribe()
	}
	return nil
}

// Dispose cancels every queued action. Scheduling afterwards panics.
func (s *Scheduler) Dispose() {
	if s.disposed {
		return
	}
	s.disposed = true
	s.cancelAll()
	s.logger.Debug("scheduler disposed", "frame", s.Now())
}

// Disposed reports whether Dispose was called.
func (s *Scheduler) Disposed() bool {
	return s.disposed
}

func (s *Scheduler) mustBeLive() {
	if s.disposed {
		panic(NewRuntimeError(ErrCodeDisposed, s.Now(), "schedule called on a disposed scheduler"))
	}
}

// recordMisuse keeps the first misuse until the next flush reports it.
func (s *Scheduler) recordMisuse(err error) {
	if s.misuse == nil {
		s.misuse = err
	}
}

func (s *Scheduler) cancelAll() {
	for _, a := range s.queue.drain() {
		closeQuietly(a)
	}
}

// closeQuietly unsubscribes a, swallowing teardown panics.
func closeQuietly(a *Action) {
	defer func() { _ = recover() }()
	a.Unsubscribe()
}
