package rx

import "sync"

// Operator transforms one Observable into another.
//
// Stream types never rely on runtime extension: a concrete source that wants
// its own type to survive a transformation implements Operator handling
// itself, and Pipe applies operators in order.
type Operator interface {
	Apply(src Observable) Observable
}

// OperatorFunc adapts a function to Operator.
type OperatorFunc func(src Observable) Observable

// Apply implements Operator.
func (f OperatorFunc) Apply(src Observable) Observable {
	return f(src)
}

// Pipe applies ops left to right.
func Pipe(src Observable, ops ...Operator) Observable {
	for _, op := range ops {
		if op != nil {
			src = op.Apply(src)
		}
	}
	return src
}

// Scheduler is the slice of a scheduler that time-based operators consume.
// The virtual-time engine implements it.
type Scheduler interface {
	// Now returns the current frame.
	Now() int64
	// Delay runs work after frames have elapsed. Unsubscribing the result
	// before it fires guarantees work never runs.
	Delay(work func(), frames int64) *Subscription
}

// subscribeInner subscribes to src on behalf of s. The inner subscriber is a
// child of s, so closing s stops a synchronous inner producer between values.
func subscribeInner(s *Subscriber, src Observable, o ObserverFuncs) *Subscriber {
	inner := NewSubscriber(o)
	s.AddSubscription(inner.Subscription)
	src.Subscribe(inner)
	return inner
}

// forward builds an inner observer that passes Error and Complete through.
func forward(s *Subscriber, next func(v any)) ObserverFuncs {
	return ObserverFuncs{
		OnNext:     next,
		OnError:    s.Error,
		OnComplete: s.Complete,
	}
}

// Map applies fn to every value.
func Map(fn func(v any) any) Operator {
	return OperatorFunc(func(src Observable) Observable {
		return New(func(s *Subscriber) Teardown {
			subscribeInner(s, src, forward(s, func(v any) { s.Next(fn(v)) }))
			return nil
		})
	})
}

// Filter passes values for which keep returns true.
func Filter(keep func(v any) bool) Operator {
	return OperatorFunc(func(src Observable) Observable {
		return New(func(s *Subscriber) Teardown {
			subscribeInner(s, src, forward(s, func(v any) {
				if keep(v) {
					s.Next(v)
				}
			}))
			return nil
		})
	})
}

// Take emits the first n values, then completes and unsubscribes from src.
func Take(n int) Operator {
	return OperatorFunc(func(src Observable) Observable {
		if n <= 0 {
			return Empty()
		}
		return New(func(s *Subscriber) Teardown {
			seen := 0
			subscribeInner(s, src, forward(s, func(v any) {
				seen++
				if seen > n {
					return
				}
				s.Next(v)
				if seen == n {
					s.Complete()
				}
			}))
			return nil
		})
	})
}

// Delay shifts every value and the completion by frames on sched. Errors are
// forwarded immediately and cancel pending deliveries.
func Delay(frames int64, sched Scheduler) Operator {
	return OperatorFunc(func(src Observable) Observable {
		return New(func(s *Subscriber) Teardown {
			var (
				mu        sync.Mutex
				pending   int
				completed bool
			)
			maybeComplete := func() {
				mu.Lock()
				done := completed && pending == 0
				mu.Unlock()
				if done {
					s.Complete()
				}
			}
			subscribeInner(s, src, ObserverFuncs{
				OnNext: func(v any) {
					mu.Lock()
					pending++
					mu.Unlock()
					s.AddSubscription(sched.Delay(func() {
						s.Next(v)
						mu.Lock()
						pending--
						mu.Unlock()
						maybeComplete()
					}, frames))
				},
				OnError: s.Error,
				OnComplete: func() {
					mu.Lock()
					completed = true
					mu.Unlock()
					maybeComplete()
				},
			})
			return nil
		})
	})
}

// Merge subscribes to every source and interleaves their values. It
// completes once all sources complete and errors on the first error.
func Merge(sources ...Observable) Observable {
	if len(sources) == 0 {
		return Empty()
	}
	return New(func(s *Subscriber) Teardown {
		var mu sync.Mutex
		active := len(sources)
		for _, src := range sources {
			if s.Closed() {
				break
			}
			subscribeInner(s, src, ObserverFuncs{
				OnNext:  s.Next,
				OnError: s.Error,
				OnComplete: func() {
					mu.Lock()
					active--
					done := active == 0
					mu.Unlock()
					if done {
						s.Complete()
					}
				},
			})
		}
		return nil
	})
}

// MergeWith merges the piped source with others.
func MergeWith(others ...Observable) Operator {
	return OperatorFunc(func(src Observable) Observable {
		return Merge(append([]Observable{src}, others...)...)
	})
}
