package rx

import (
	"errors"
	"slices"
	"sync"
)

// ErrSubjectFailed is the error a subject terminates with when Error is
// called with a nil error.
var ErrSubjectFailed = errors.New("rx: subject terminated with a nil error")

// Subject is a hot multicast source. Every Next/Error/Complete is broadcast
// to the observers subscribed at that moment; nothing is replayed to late
// subscribers except the terminal notification.
//
// Subject is both an Observer and an Observable.
type Subject struct {
	mu        sync.Mutex
	observers []*Subscriber
	stopped   bool
	err       error
}

// NewSubject creates a Subject with no observers.
func NewSubject() *Subject {
	return &Subject{}
}

// Subscribe registers o. A subscriber arriving after termination receives the
// terminal notification immediately.
func (s *Subject) Subscribe(o Observer) *Subscription {
	sub := toSubscriber(o)
	s.mu.Lock()
	terminal := s.register(sub)
	s.mu.Unlock()
	s.attach(sub, terminal)
	return sub.Subscription
}

// register must be called with s.mu held. It returns the terminal delivery
// to run after unlocking, or nil if sub was added to the observer list.
func (s *Subject) register(sub *Subscriber) func() {
	if s.stopped {
		err := s.err
		return func() {
			if err != nil {
				sub.Error(err)
				return
			}
			sub.Complete()
		}
	}
	s.observers = append(s.observers, sub)
	return nil
}

// attach finishes a registration outside the lock: either deliver the
// terminal notification or arrange for sub to leave the list on close.
func (s *Subject) attach(sub *Subscriber, terminal func()) {
	if terminal != nil {
		terminal()
		return
	}
	sub.Add(func() { s.remove(sub) })
}

func (s *Subject) remove(sub *Subscriber) {
	s.mu.Lock()
	s.observers = slices.DeleteFunc(s.observers, func(o *Subscriber) bool { return o == sub })
	s.mu.Unlock()
}

// snapshot copies the observer list so broadcasts tolerate observers that
// unsubscribe (or subscribe) during delivery.
func (s *Subject) snapshot() []*Subscriber {
	return slices.Clone(s.observers)
}

// Next broadcasts v.
func (s *Subject) Next(v any) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	observers := s.snapshot()
	s.mu.Unlock()

	for _, o := range observers {
		o.Next(v)
	}
}

// Error terminates the subject with err. A nil err becomes ErrSubjectFailed
// so late subscribers still observe an error.
func (s *Subject) Error(err error) {
	if err == nil {
		err = ErrSubjectFailed
	}
	for _, o := range s.terminate(err) {
		o.Error(err)
	}
}

// Complete terminates the subject successfully.
func (s *Subject) Complete() {
	for _, o := range s.terminate(nil) {
		o.Complete()
	}
}

func (s *Subject) terminate(err error) []*Subscriber {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stop(err)
}

// stop must be called with s.mu held.
func (s *Subject) stop(err error) []*Subscriber {
	if s.stopped {
		return nil
	}
	s.stopped = true
	s.err = err
	observers := s.observers
	s.observers = nil
	return observers
}

// ObserverCount returns the number of currently subscribed observers.
func (s *Subject) ObserverCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.observers)
}

// Stopped reports whether the subject has terminated.
func (s *Subject) Stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

// ReplaySubject is a Subject that buffers the trailing values it received and
// replays them to each new subscriber before live values.
//
// A subscriber is registered before its replay starts. Live notifications
// that arrive while it is still replaying are queued and delivered after the
// buffered values, so none are lost or reordered.
type ReplaySubject struct {
	Subject
	bufferSize int
	buffer     []any
	replaying  map[*Subscriber]*replayQueue
}

// replayQueue holds live notifications for a subscriber that is replaying.
type replayQueue struct {
	values     []any
	terminated bool
}

// NewReplaySubject buffers up to bufferSize values; bufferSize <= 0 means
// unbounded.
func NewReplaySubject(bufferSize int) *ReplaySubject {
	return &ReplaySubject{bufferSize: bufferSize}
}

// Next records v in the buffer and broadcasts it.
func (r *ReplaySubject) Next(v any) {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.buffer = append(r.buffer, v)
	if r.bufferSize > 0 && len(r.buffer) > r.bufferSize {
		r.buffer = slices.Clone(r.buffer[len(r.buffer)-r.bufferSize:])
	}
	observers := r.live(r.snapshot(), func(q *replayQueue) { q.values = append(q.values, v) })
	r.mu.Unlock()

	for _, o := range observers {
		o.Next(v)
	}
}

// Error terminates the subject with err, or ErrSubjectFailed if err is nil.
func (r *ReplaySubject) Error(err error) {
	if err == nil {
		err = ErrSubjectFailed
	}
	for _, o := range r.terminateReplay(err) {
		o.Error(err)
	}
}

// Complete terminates the subject successfully.
func (r *ReplaySubject) Complete() {
	for _, o := range r.terminateReplay(nil) {
		o.Complete()
	}
}

func (r *ReplaySubject) terminateReplay(err error) []*Subscriber {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.live(r.stop(err), func(q *replayQueue) { q.terminated = true })
}

// live must be called with r.mu held. It hands the notification to the queue
// of every observer still replaying and returns the others.
func (r *ReplaySubject) live(observers []*Subscriber, enqueue func(*replayQueue)) []*Subscriber {
	if len(r.replaying) == 0 {
		return observers
	}
	out := observers[:0:0]
	for _, o := range observers {
		if q, ok := r.replaying[o]; ok {
			enqueue(q)
			continue
		}
		out = append(out, o)
	}
	return out
}

// Subscribe replays the buffer to o, then delivers live values or the
// terminal notification.
func (r *ReplaySubject) Subscribe(o Observer) *Subscription {
	sub := toSubscriber(o)
	r.mu.Lock()
	buffered := slices.Clone(r.buffer)
	if r.stopped {
		terminal := r.register(sub)
		r.mu.Unlock()
		r.replay(sub, buffered)
		terminal()
		return sub.Subscription
	}
	q := &replayQueue{}
	if r.replaying == nil {
		r.replaying = make(map[*Subscriber]*replayQueue)
	}
	r.replaying[sub] = q
	r.register(sub)
	r.mu.Unlock()
	r.attach(sub, nil)

	r.replay(sub, buffered)
	for {
		r.mu.Lock()
		values, terminated, err := q.values, q.terminated, r.err
		q.values = nil
		if len(values) == 0 {
			delete(r.replaying, sub)
			r.mu.Unlock()
			if terminated {
				if err != nil {
					sub.Error(err)
				} else {
					sub.Complete()
				}
			}
			return sub.Subscription
		}
		r.mu.Unlock()
		r.replay(sub, values)
	}
}

func (r *ReplaySubject) replay(sub *Subscriber, values []any) {
	for _, v := range values {
		if sub.Closed() {
			return
		}
		sub.Next(v)
	}
}
