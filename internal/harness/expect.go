package harness

import (
	"slices"

	"github.com/roach88/marbles/internal/engine"
	"github.com/roach88/marbles/internal/ir"
	"github.com/roach88/marbles/internal/marble"
	"github.com/roach88/marbles/internal/rx"
)

// ObservableExpectation records what an observable delivers inside its
// subscription window. The expected side is supplied once by ToBe or ToEqual.
type ObservableExpectation struct {
	h        *Harness
	window   ir.SubscriptionLog
	actual   *recording
	expected func() []ir.TestMessage
	claimed  bool
}

// ToBe sets the expected timeline. Expected values that are cold observables
// are compared by their messages. Calling ToBe (or ToEqual) a second time on
// the same expectation panics.
func (e *ObservableExpectation) ToBe(marbles string, opts ...marble.Option) error {
	e.claim()
	opts = append(opts, marble.WithMaterializeInnerObservables(materializeCold))
	msgs, err := marble.ParseMarbles(marbles, e.h.marbleOptions(opts)...)
	if err != nil {
		e.h.drop(e)
		return e.h.fail(err)
	}
	e.expected = func() []ir.TestMessage { return msgs }
	return nil
}

// ToEqual subscribes to other inside the same window and expects both to
// deliver identical timelines.
func (e *ObservableExpectation) ToEqual(other rx.Observable) {
	e.claim()
	rec := e.h.record(other, e.window)
	e.expected = rec.messages
}

func (e *ObservableExpectation) claim() {
	if e.claimed {
		panic(engine.NewRuntimeError(engine.ErrCodeExpectationResolved, e.h.Now(),
			"expectation already has an expected value"))
	}
	e.claimed = true
}

func (e *ObservableExpectation) ready() bool {
	return e.expected != nil
}

func (e *ObservableExpectation) resolve(h *Harness) error {
	return h.assert(nonNil(e.actual.messages()), nonNil(e.expected()))
}

// SubscriptionExpectation compares the subscription logs of a source.
type SubscriptionExpectation struct {
	h        *Harness
	src      SubscriptionLogger
	expected []ir.SubscriptionLog
	claimed  bool
	set      bool
}

// ToBe sets the expected logs, one subscription diagram per subscription.
// Calling it with no diagrams expects no subscriptions at all.
func (e *SubscriptionExpectation) ToBe(marbles ...string) error {
	if e.claimed {
		panic(engine.NewRuntimeError(engine.ErrCodeExpectationResolved, e.h.Now(),
			"subscription expectation already has an expected value"))
	}
	e.claimed = true

	logs := make([]ir.SubscriptionLog, 0, len(marbles))
	for _, m := range marbles {
		log, err := marble.ParseMarblesAsSubscriptions(m, e.h.marbleOptions(nil)...)
		if err != nil {
			e.h.drop(e)
			return e.h.fail(err)
		}
		logs = append(logs, log)
	}
	e.expected = logs
	e.set = true
	return nil
}

func (e *SubscriptionExpectation) ready() bool {
	return e.set
}

func (e *SubscriptionExpectation) resolve(h *Harness) error {
	actual := e.src.Subscriptions()
	if actual == nil {
		actual = []ir.SubscriptionLog{}
	}
	return h.assert(actual, e.expected)
}

// recording collects messages as they are delivered. Inner observables are
// recorded as nested recordings and flattened when read.
type recording struct {
	msgs []ir.TestMessage
}

func (r *recording) add(m ir.TestMessage) {
	r.msgs = append(r.msgs, m)
}

// messages returns the recorded timeline with nested recordings replaced by
// their own timelines.
func (r *recording) messages() []ir.TestMessage {
	out := make([]ir.TestMessage, len(r.msgs))
	for i, m := range r.msgs {
		if inner, ok := m.Notification.Value.(*recording); ok {
			m.Notification = ir.Next(inner.messages())
		}
		out[i] = m
	}
	return out
}

// record subscribes to src at window.Subscribed frames from now and, if the
// window closes, unsubscribes window.Unsubscribed frames from now. Frames are
// recorded as absolute scheduler frames.
func (h *Harness) record(src rx.Observable, window ir.SubscriptionLog) *recording {
	rec := &recording{}
	var sub *rx.Subscription
	h.sched.Schedule(func(*engine.Action) {
		sub = src.Subscribe(h.recorder(rec, 0))
	}, window.Subscribed, nil)
	if window.Unsubscribed != ir.Infinity {
		h.sched.Schedule(func(*engine.Action) {
			sub.Unsubscribe()
		}, window.Unsubscribed, nil)
	}
	return rec
}

// recorder appends every notification to rec, with frames relative to base.
func (h *Harness) recorder(rec *recording, base int64) rx.Observer {
	return rx.ObserverFuncs{
		OnNext: func(v any) {
			rec.add(ir.NextAt(h.Now()-base, h.materialize(v)))
		},
		OnError: func(err error) {
			rec.add(ir.ErrorAt(h.Now()-base, err))
		},
		OnComplete: func() {
			rec.add(ir.CompleteAt(h.Now() - base))
		},
	}
}

// materialize subscribes to inner observables as they are emitted so their
// timeline (relative to the emission frame) replaces the value.
func (h *Harness) materialize(v any) any {
	inner, ok := v.(rx.Observable)
	if !ok {
		return v
	}
	rec := &recording{}
	inner.Subscribe(h.recorder(rec, h.Now()))
	return rec
}

// materializeCold is the expected-side counterpart of materialize.
func materializeCold(v any) ([]ir.TestMessage, bool) {
	if c, ok := v.(*ColdObservable); ok {
		return nonNil(c.Messages()), true
	}
	return nil, false
}

// drop removes e from the pending expectations.
func (h *Harness) drop(e expectation) {
	h.expectations = slices.DeleteFunc(h.expectations, func(x expectation) bool {
		return x == e
	})
}

func nonNil(msgs []ir.TestMessage) []ir.TestMessage {
	if msgs == nil {
		return []ir.TestMessage{}
	}
	return msgs
}
