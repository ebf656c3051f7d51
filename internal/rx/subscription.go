package rx

import (
	"slices"
	"sync"
)

// Teardown is cleanup logic registered on a Subscription.
// A nil Teardown is ignored.
type Teardown func()

// Unsubscribable is anything that can be cancelled.
type Unsubscribable interface {
	Unsubscribe()
}

// Subscription owns teardown logic that runs exactly once, when the
// subscription is closed.
//
// Unsubscribe is idempotent and safe to call from within a teardown or an
// observer callback. Teardowns added after close run immediately.
//
// Thread-safety: safe for concurrent use. Real time providers call back on
// timer goroutines.
type Subscription struct {
	mu        sync.Mutex
	closed    bool
	teardowns []Teardown
	children  []*Subscription
	parents   []*Subscription
}

// NewSubscription creates an open subscription with optional initial teardowns.
func NewSubscription(teardowns ...Teardown) *Subscription {
	s := &Subscription{}
	for _, t := range teardowns {
		if t != nil {
			s.teardowns = append(s.teardowns, t)
		}
	}
	return s
}

// Closed reports whether Unsubscribe has been called.
func (s *Subscription) Closed() bool {
	if s == nil {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Add registers a teardown. If the subscription is already closed the
// teardown runs immediately.
func (s *Subscription) Add(t Teardown) {
	if s == nil || t == nil {
		return
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		t()
		return
	}
	s.teardowns = append(s.teardowns, t)
	s.mu.Unlock()
}

// AddSubscription makes child close when s closes. A child that closes on
// its own removes itself from s.
func (s *Subscription) AddSubscription(child *Subscription) {
	if s == nil || child == nil || child == s {
		return
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		child.Unsubscribe()
		return
	}
	s.children = append(s.children, child)
	s.mu.Unlock()

	child.mu.Lock()
	if child.closed {
		child.mu.Unlock()
		s.Remove(child)
		return
	}
	child.parents = append(child.parents, s)
	child.mu.Unlock()
}

// Remove detaches child without closing it.
func (s *Subscription) Remove(child *Subscription) {
	if s == nil || child == nil {
		return
	}
	s.mu.Lock()
	s.children = slices.DeleteFunc(s.children, func(c *Subscription) bool { return c == child })
	s.mu.Unlock()
}

// Unsubscribe closes the subscription, runs every teardown in registration
// order, then closes child subscriptions.
//
// Panics raised by teardowns are collected; after all teardowns have run they
// are re-raised together as an *UnsubscriptionError.
func (s *Subscription) Unsubscribe() {
	if s == nil {
		return
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	teardowns := s.teardowns
	children := s.children
	parents := s.parents
	s.teardowns = nil
	s.children = nil
	s.parents = nil
	s.mu.Unlock()

	for _, p := range parents {
		p.Remove(s)
	}

	var errs []error
	for _, t := range teardowns {
		if err := runTeardown(t); err != nil {
			errs = append(errs, err)
		}
	}
	for _, c := range children {
		if err := runTeardown(c.Unsubscribe); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		panic(&UnsubscriptionError{Errors: errs})
	}
}

func runTeardown(t Teardown) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recovered(r)
		}
	}()
	t()
	return nil
}
