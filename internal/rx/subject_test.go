package rx

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubject_BroadcastsToCurrentObservers(t *testing.T) {
	s := NewSubject()
	a, b := &collector{}, &collector{}

	s.Subscribe(a)
	s.Next(1)
	s.Subscribe(b)
	s.Next(2)
	s.Complete()

	assert.Equal(t, []any{1, 2}, a.values)
	assert.Equal(t, []any{2}, b.values, "no replay for late subscribers")
	assert.True(t, a.completed)
	assert.True(t, b.completed)
	assert.Equal(t, 0, s.ObserverCount())
}

func TestSubject_UnsubscribeRemovesObserver(t *testing.T) {
	s := NewSubject()
	a := &collector{}
	sub := s.Subscribe(a)
	assert.Equal(t, 1, s.ObserverCount())

	sub.Unsubscribe()
	s.Next(1)

	assert.Empty(t, a.values)
	assert.Equal(t, 0, s.ObserverCount())
}

func TestSubject_UnsubscribeDuringBroadcast(t *testing.T) {
	s := NewSubject()
	second := &collector{}

	var firstSub *Subscriber
	firstSub = NewSubscriber(ObserverFuncs{OnNext: func(any) { firstSub.Unsubscribe() }})
	s.Subscribe(firstSub)
	s.Subscribe(second)

	s.Next("x")
	s.Next("y")

	assert.Equal(t, []any{"x", "y"}, second.values)
	assert.Equal(t, 1, s.ObserverCount())
}

func TestSubject_LateSubscriberGetsTerminal(t *testing.T) {
	boom := errors.New("boom")
	s := NewSubject()
	s.Error(boom)
	s.Next(1)

	c := &collector{}
	sub := s.Subscribe(c)

	assert.Empty(t, c.values)
	assert.Equal(t, boom, c.err)
	assert.True(t, sub.Closed())
	assert.True(t, s.Stopped())
}

func TestSubject_CompleteIsIdempotent(t *testing.T) {
	s := NewSubject()
	calls := 0
	s.Subscribe(ObserverFuncs{OnComplete: func() { calls++ }})

	s.Complete()
	s.Complete()
	s.Error(errors.New("late"))

	assert.Equal(t, 1, calls)
}

func TestReplaySubject_ReplaysTrailingValues(t *testing.T) {
	r := NewReplaySubject(2)
	r.Next(1)
	r.Next(2)
	r.Next(3)

	c := &collector{}
	r.Subscribe(c)
	r.Next(4)

	assert.Equal(t, []any{2, 3, 4}, c.values)
}

func TestReplaySubject_Unbounded(t *testing.T) {
	r := NewReplaySubject(0)
	for i := 0; i < 5; i++ {
		r.Next(i)
	}

	c := &collector{}
	r.Subscribe(c)
	assert.Equal(t, []any{0, 1, 2, 3, 4}, c.values)
}

func TestReplaySubject_ReplaysBeforeTerminal(t *testing.T) {
	r := NewReplaySubject(1)
	r.Next("a")
	r.Next("b")
	r.Complete()

	c := &collector{}
	r.Subscribe(c)

	assert.Equal(t, []any{"b"}, c.values)
	assert.True(t, c.completed)
}

func TestSubject_ErrorWithNilStillFails(t *testing.T) {
	s := NewSubject()
	early := &collector{}
	s.Subscribe(early)
	s.Error(nil)

	late := &collector{}
	s.Subscribe(late)

	assert.ErrorIs(t, early.err, ErrSubjectFailed)
	assert.ErrorIs(t, late.err, ErrSubjectFailed)
	assert.False(t, late.completed)
}

func TestReplaySubject_ValueSentDuringReplayIsDelivered(t *testing.T) {
	r := NewReplaySubject(0)
	r.Next("a")

	var got []any
	r.Subscribe(ObserverFuncs{OnNext: func(v any) {
		got = append(got, v)
		if v == "a" {
			r.Next("b")
		}
	}})
	r.Next("c")

	assert.Equal(t, []any{"a", "b", "c"}, got)
}

func TestReplaySubject_TerminalDuringReplayFollowsQueuedValues(t *testing.T) {
	r := NewReplaySubject(0)
	r.Next(1)

	var got []any
	completed := false
	r.Subscribe(ObserverFuncs{
		OnNext: func(v any) {
			got = append(got, v)
			if v == 1 {
				r.Next(2)
				r.Complete()
			}
		},
		OnComplete: func() { completed = true },
	})

	assert.Equal(t, []any{1, 2}, got)
	assert.True(t, completed)
	assert.Zero(t, r.ObserverCount())
}

func TestReplaySubject_ErrorWithNilStillFails(t *testing.T) {
	r := NewReplaySubject(1)
	r.Next("x")
	r.Error(nil)

	c := &collector{}
	r.Subscribe(c)

	assert.Equal(t, []any{"x"}, c.values)
	assert.ErrorIs(t, c.err, ErrSubjectFailed)
}
