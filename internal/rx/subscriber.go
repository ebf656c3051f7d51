package rx

import "sync/atomic"

// Observer receives the notifications of a stream.
type Observer interface {
	Next(v any)
	Error(err error)
	Complete()
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are no-ops.
type ObserverFuncs struct {
	OnNext     func(v any)
	OnError    func(err error)
	OnComplete func()
}

func (o ObserverFuncs) Next(v any) {
	if o.OnNext != nil {
		o.OnNext(v)
	}
}

func (o ObserverFuncs) Error(err error) {
	if o.OnError != nil {
		o.OnError(err)
	}
}

func (o ObserverFuncs) Complete() {
	if o.OnComplete != nil {
		o.OnComplete()
	}
}

// Subscriber binds an Observer to a Subscription.
//
// After Error, Complete or Unsubscribe every further call is a no-op.
// Panics raised by the destination are recovered: a panic in Next becomes an
// Error notification to the same destination, then the subscriber is torn
// down. A panic in Error or Complete only tears it down.
type Subscriber struct {
	*Subscription
	dest    Observer
	stopped atomic.Bool
}

// NewSubscriber wraps dest. A nil dest discards all notifications.
func NewSubscriber(dest Observer) *Subscriber {
	if dest == nil {
		dest = ObserverFuncs{}
	}
	return &Subscriber{
		Subscription: NewSubscription(),
		dest:         dest,
	}
}

// toSubscriber reuses an existing *Subscriber so that callers can unsubscribe
// from inside a synchronous Subscribe call.
func toSubscriber(o Observer) *Subscriber {
	if s, ok := o.(*Subscriber); ok && s != nil {
		return s
	}
	return NewSubscriber(o)
}

// Closed reports whether the subscriber will ignore further notifications.
// Synchronous producers must check it before emitting each value.
func (s *Subscriber) Closed() bool {
	return s.stopped.Load() || s.Subscription.Closed()
}

// Next delivers a value unless the subscriber is closed.
func (s *Subscriber) Next(v any) {
	if s.Closed() {
		return
	}
	if err := s.call(func() { s.dest.Next(v) }); err != nil {
		s.Error(err)
	}
}

// Error delivers a terminal error and tears the subscriber down.
func (s *Subscriber) Error(err error) {
	if s.Subscription.Closed() || !s.stopped.CompareAndSwap(false, true) {
		return
	}
	defer s.teardown()
	_ = s.call(func() { s.dest.Error(err) })
}

// Complete delivers completion and tears the subscriber down.
func (s *Subscriber) Complete() {
	if s.Subscription.Closed() || !s.stopped.CompareAndSwap(false, true) {
		return
	}
	defer s.teardown()
	_ = s.call(func() { s.dest.Complete() })
}

// Unsubscribe stops delivery and runs teardowns.
func (s *Subscriber) Unsubscribe() {
	s.stopped.Store(true)
	s.Subscription.Unsubscribe()
}

func (s *Subscriber) call(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recovered(r)
		}
	}()
	fn()
	return nil
}

// teardown closes the subscription from a terminal path. Teardown panics are
// dropped here; the terminal notification has already been delivered.
func (s *Subscriber) teardown() {
	defer func() { _ = recover() }()
	s.Subscription.Unsubscribe()
}
