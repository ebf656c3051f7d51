package harness

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/marbles/internal/engine"
	"github.com/roach88/marbles/internal/ir"
	"github.com/roach88/marbles/internal/marble"
	"github.com/roach88/marbles/internal/rx"
	"github.com/roach88/marbles/internal/timer"
)

// Harness is the marble test scheduler.
//
// A Harness is not safe for concurrent use and shares no state with other
// harnesses. The only process-wide state it touches is the timer binding,
// which Run scopes.
type Harness struct {
	assert AssertFunc
	sched  *engine.Scheduler
	logger *slog.Logger

	factor    int64
	maxFrames int64
	runMode   bool
	running   bool

	hot          []*HotObservable
	expectations []expectation
}

// expectation is a pending comparison resolved at flush time.
type expectation interface {
	ready() bool
	resolve(h *Harness) error
}

// New creates a harness that reports comparisons through assert. A nil
// assert uses DeepEqual.
func New(assert AssertFunc, opts ...Option) *Harness {
	cfg := newConfig(opts)
	if assert == nil {
		assert = DeepEqual
	}
	return &Harness{
		assert: assert,
		sched: engine.NewScheduler(
			engine.WithMaxSteps(cfg.maxSteps),
			engine.WithLogger(cfg.logger),
		),
		logger:    cfg.logger,
		factor:    cfg.factor,
		maxFrames: cfg.maxFrames,
	}
}

// Scheduler returns the harness scheduler, for operators that take an
// rx.Scheduler.
func (h *Harness) Scheduler() *engine.Scheduler {
	return h.sched
}

// Now returns the current frame.
func (h *Harness) Now() int64 {
	return h.sched.Now()
}

// FrameTimeFactor returns the time units per marble character in effect.
func (h *Harness) FrameTimeFactor() int64 {
	return h.factor
}

// marbleOptions prepends the harness settings to opts so callers can still
// override them.
func (h *Harness) marbleOptions(opts []marble.Option) []marble.Option {
	base := []marble.Option{
		marble.WithFrameTimeFactor(h.factor),
		marble.WithRunMode(h.runMode),
	}
	return append(base, opts...)
}

// CreateTime returns the frame of the '|' in a timing diagram.
func (h *Harness) CreateTime(marbles string) (int64, error) {
	return marble.CreateTime(marbles, h.marbleOptions(nil)...)
}

// CreateColdObservable builds a cold source. Cold diagrams cannot contain a
// subscription point.
func (h *Harness) CreateColdObservable(marbles string, opts ...marble.Option) (*ColdObservable, error) {
	msgs, err := marble.ParseMarbles(marbles, h.marbleOptions(opts)...)
	if err != nil {
		return nil, err
	}
	if containsRune(marbles, '^') {
		return nil, &marble.SyntaxError{Marbles: marbles, Pos: indexRune(marbles, '^'),
			Msg: "cold observables cannot have a subscription point '^'"}
	}
	return &ColdObservable{sched: h.sched, messages: msgs}, nil
}

// CreateHotObservable builds a hot source. Its messages are scheduled when
// the next flush starts.
func (h *Harness) CreateHotObservable(marbles string, opts ...marble.Option) (*HotObservable, error) {
	msgs, err := marble.ParseMarbles(marbles, h.marbleOptions(opts)...)
	if err != nil {
		return nil, err
	}
	hot := &HotObservable{Subject: rx.NewSubject(), sched: h.sched, messages: msgs}
	h.hot = append(h.hot, hot)
	return hot, nil
}

// ExpectObservable subscribes to src at the frame given by the optional
// subscription diagram (default: frame 0, never unsubscribed) and records
// what it delivers. Call ToBe or ToEqual on the result.
func (h *Harness) ExpectObservable(src rx.Observable, subscriptionMarbles ...string) (*ObservableExpectation, error) {
	window := ir.SubscriptionLog{Subscribed: 0, Unsubscribed: ir.Infinity}
	if len(subscriptionMarbles) > 0 && subscriptionMarbles[0] != "" {
		parsed, err := marble.ParseMarblesAsSubscriptions(subscriptionMarbles[0], h.marbleOptions(nil)...)
		if err != nil {
			return nil, err
		}
		window = parsed
		if window.Subscribed == ir.Infinity {
			window.Subscribed = 0
		}
	}

	e := &ObservableExpectation{h: h, window: window}
	e.actual = h.record(src, window)
	h.expectations = append(h.expectations, e)
	return e, nil
}

// ExpectSubscriptions compares the subscription logs of src at flush time.
func (h *Harness) ExpectSubscriptions(src SubscriptionLogger) *SubscriptionExpectation {
	e := &SubscriptionExpectation{h: h, src: src}
	h.expectations = append(h.expectations, e)
	return e
}

// Flush sets up pending hot sources, drains the scheduler up to the frame
// limit and resolves every expectation whose expected side is known.
// Mismatches are joined into the returned error. A nested call is rejected
// with ErrCodeNestedFlush before anything is scheduled.
func (h *Harness) Flush() error {
	if h.sched.Flushing() {
		return engine.NewRuntimeError(engine.ErrCodeNestedFlush, h.sched.Now(),
			"flush called while a flush is in progress")
	}
	hot := h.hot
	h.hot = nil
	for _, src := range hot {
		src.setup()
	}

	maxFrames := h.maxFrames
	if h.running {
		maxFrames = ir.Infinity
	}
	if err := h.sched.FlushUntil(maxFrames); err != nil {
		return err
	}

	var (
		errs    []error
		pending []expectation
	)
	for _, e := range h.expectations {
		if !e.ready() {
			pending = append(pending, e)
			continue
		}
		if err := e.resolve(h); err != nil {
			errs = append(errs, err)
		}
	}
	h.expectations = pending
	h.logger.Debug("flush resolved expectations",
		"frame", h.sched.Now(),
		"failed", len(errs),
		"pending", len(pending))
	return errors.Join(errs...)
}

// Run executes body with virtual timer providers bound, run mode on, a frame
// time factor of 1 and unbounded flushes, then flushes. Every binding and
// setting is restored before Run returns, even when body panics; the panic
// is returned as an error. Providers captured during body panic with
// ErrCodeDisposed if used after Run returns.
func (h *Harness) Run(body func(rc *RunContext)) (err error) {
	if h.running {
		return fmt.Errorf("harness: Run is not re-entrant")
	}

	defer func() {
		if r := recover(); r != nil {
			err = panicToError(r)
		}
	}()

	prevFactor, prevMax, prevRunMode := h.factor, h.maxFrames, h.runMode
	h.factor, h.maxFrames, h.runMode, h.running = 1, ir.Infinity, true, true
	providers, revoke := h.sched.ScopedProviders()
	release := timer.Bind(providers)
	defer func() {
		release()
		revoke()
		h.factor, h.maxFrames, h.runMode, h.running = prevFactor, prevMax, prevRunMode, false
	}()

	h.logger.Debug("run started", "frame", h.sched.Now())
	body(&RunContext{h: h})
	return h.Flush()
}

// Close disposes the scheduler. Pending actions are cancelled and any
// later scheduling through the harness panics with ErrCodeDisposed.
func (h *Harness) Close() {
	h.sched.Dispose()
}

// panicToError keeps errors (including *engine.RuntimeError) intact.
func panicToError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("harness: run body panicked: %v", r)
}

// fail returns err outside Run and panics with it inside Run, where Run
// turns it back into its error result.
func (h *Harness) fail(err error) error {
	if err != nil && h.running {
		panic(err)
	}
	return err
}

func containsRune(s string, r rune) bool {
	return indexRune(s, r) >= 0
}

// indexRune returns the rune index of r in s, or -1.
func indexRune(s string, r rune) int {
	i := 0
	for _, c := range s {
		if c == r {
			return i
		}
		i++
	}
	return -1
}
