package harness

import (
	"slices"

	"github.com/roach88/marbles/internal/engine"
	"github.com/roach88/marbles/internal/ir"
	"github.com/roach88/marbles/internal/rx"
)

// SubscriptionLogger exposes the subscription history of a test source.
type SubscriptionLogger interface {
	Subscriptions() []ir.SubscriptionLog
}

// ColdObservable replays its messages relative to each subscriber's own
// subscribe frame.
type ColdObservable struct {
	sched         *engine.Scheduler
	messages      []ir.TestMessage
	subscriptions []ir.SubscriptionLog
}

var (
	_ rx.Observable      = (*ColdObservable)(nil)
	_ SubscriptionLogger = (*ColdObservable)(nil)
)

// Messages returns a copy of the parsed timeline.
func (c *ColdObservable) Messages() []ir.TestMessage {
	return slices.Clone(c.messages)
}

// Subscriptions returns a copy of the subscription history.
func (c *ColdObservable) Subscriptions() []ir.SubscriptionLog {
	return slices.Clone(c.subscriptions)
}

// Subscribe schedules every message for o, offset from the current frame.
func (c *ColdObservable) Subscribe(o rx.Observer) *rx.Subscription {
	return rx.New(c.produce).Subscribe(o)
}

func (c *ColdObservable) produce(s *rx.Subscriber) rx.Teardown {
	idx := logSubscribed(&c.subscriptions, c.sched.Now())
	for _, m := range c.messages {
		n := m.Notification
		a := c.sched.Schedule(func(*engine.Action) { deliver(s, n) }, m.Frame, nil)
		s.AddSubscription(a.Subscription)
	}
	return func() {
		logUnsubscribed(c.subscriptions, idx, c.sched.Now())
	}
}

// HotObservable is a Subject driven by one absolute timeline. Subscribers
// only see messages due at or after the frame they subscribed at.
type HotObservable struct {
	*rx.Subject
	sched         *engine.Scheduler
	messages      []ir.TestMessage
	subscriptions []ir.SubscriptionLog
}

var (
	_ rx.Observable      = (*HotObservable)(nil)
	_ SubscriptionLogger = (*HotObservable)(nil)
)

// Messages returns a copy of the parsed timeline.
func (hot *HotObservable) Messages() []ir.TestMessage {
	return slices.Clone(hot.messages)
}

// Subscriptions returns a copy of the subscription history.
func (hot *HotObservable) Subscriptions() []ir.SubscriptionLog {
	return slices.Clone(hot.subscriptions)
}

// Subscribe attaches o to the shared timeline and logs the subscription.
func (hot *HotObservable) Subscribe(o rx.Observer) *rx.Subscription {
	idx := logSubscribed(&hot.subscriptions, hot.sched.Now())
	sub := hot.Subject.Subscribe(o)
	sub.Add(func() {
		logUnsubscribed(hot.subscriptions, idx, hot.sched.Now())
	})
	return sub
}

// setup schedules the timeline. Messages before the subscription point
// (negative frames) have no subscribers to reach and are skipped.
func (hot *HotObservable) setup() {
	for _, m := range hot.messages {
		if m.Frame < 0 {
			continue
		}
		n := m.Notification
		hot.sched.Schedule(func(*engine.Action) { deliver(hot.Subject, n) }, m.Frame, nil)
	}
}

func deliver(o rx.Observer, n ir.Notification) {
	switch n.Kind {
	case ir.KindNext:
		o.Next(n.Value)
	case ir.KindError:
		o.Error(n.Err)
	case ir.KindComplete:
		o.Complete()
	}
}

func logSubscribed(logs *[]ir.SubscriptionLog, frame int64) int {
	*logs = append(*logs, ir.NewSubscriptionLog(frame))
	return len(*logs) - 1
}

func logUnsubscribed(logs []ir.SubscriptionLog, idx int, frame int64) {
	if logs[idx].Open() {
		logs[idx].Unsubscribed = frame
	}
}
