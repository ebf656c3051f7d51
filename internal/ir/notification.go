package ir

import (
	"fmt"
	"math"
)

// Infinity marks a frame that never arrives, e.g. the unsubscribe frame of a
// subscription that was never closed.
const Infinity int64 = math.MaxInt64

// Kind distinguishes the three notification variants.
type Kind int

const (
	// KindNext carries a value.
	KindNext Kind = iota + 1
	// KindError carries a terminal error.
	KindError
	// KindComplete is the terminal success notification.
	KindComplete
)

// String returns the lowercase name used in snapshots and diffs.
func (k Kind) String() string {
	switch k {
	case KindNext:
		return "next"
	case KindError:
		return "error"
	case KindComplete:
		return "complete"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Notification is a tagged Next/Error/Complete variant.
// It is a value type; once constructed it is never mutated.
type Notification struct {
	Kind  Kind
	Value any
	Err   error
}

// Next builds a Next notification.
func Next(v any) Notification {
	return Notification{Kind: KindNext, Value: v}
}

// Error builds an Error notification.
func Error(err error) Notification {
	return Notification{Kind: KindError, Err: err}
}

// Complete builds a Complete notification.
func Complete() Notification {
	return Notification{Kind: KindComplete}
}

// IsTerminal reports whether the notification ends a stream.
func (n Notification) IsTerminal() bool {
	return n.Kind == KindError || n.Kind == KindComplete
}

func (n Notification) String() string {
	switch n.Kind {
	case KindNext:
		return fmt.Sprintf("next(%v)", n.Value)
	case KindError:
		return fmt.Sprintf("error(%v)", n.Err)
	default:
		return n.Kind.String()
	}
}

// TestMessage pairs a notification with the frame it was delivered at.
// It is the unit compared between expected and actual timelines.
type TestMessage struct {
	Frame        int64
	Notification Notification
}

func (m TestMessage) String() string {
	return fmt.Sprintf("%d:%s", m.Frame, m.Notification)
}

// NextAt, ErrorAt and CompleteAt are shorthands for building expected timelines.
func NextAt(frame int64, v any) TestMessage {
	return TestMessage{Frame: frame, Notification: Next(v)}
}

func ErrorAt(frame int64, err error) TestMessage {
	return TestMessage{Frame: frame, Notification: Error(err)}
}

func CompleteAt(frame int64) TestMessage {
	return TestMessage{Frame: frame, Notification: Complete()}
}

// SubscriptionLog records when a source was subscribed and unsubscribed.
// Unsubscribed is Infinity while the subscription is open.
type SubscriptionLog struct {
	Subscribed   int64
	Unsubscribed int64
}

// NewSubscriptionLog returns an open log entry.
func NewSubscriptionLog(subscribed int64) SubscriptionLog {
	return SubscriptionLog{Subscribed: subscribed, Unsubscribed: Infinity}
}

// Open reports whether the subscription has not been closed yet.
func (l SubscriptionLog) Open() bool {
	return l.Unsubscribed == Infinity
}

func (l SubscriptionLog) String() string {
	return fmt.Sprintf("{%s, %s}", frameString(l.Subscribed), frameString(l.Unsubscribed))
}

func frameString(f int64) string {
	if f == Infinity {
		return "∞"
	}
	return fmt.Sprintf("%d", f)
}
