package timer

import "github.com/roach88/marbles/internal/rx"

// AnimationFrame is the value emitted by AnimationFrames.
type AnimationFrame struct {
	// Timestamp is the tick time reported by the provider.
	Timestamp int64
	// Elapsed is Timestamp minus the first tick's timestamp.
	Elapsed int64
}

// Timeout emits 0 after delay frames, then completes. The timeout provider is
// read at subscribe time, so a virtual binding applies to subscriptions made
// while it is bound.
func Timeout(delay int64) rx.Observable {
	return rx.New(func(s *rx.Subscriber) rx.Teardown {
		p := Current().Timeout
		h := p.SetTimeout(func() {
			s.Next(0)
			s.Complete()
		}, delay)
		return func() { p.ClearTimeout(h) }
	})
}

// Interval emits 0, 1, 2, ... every period frames until unsubscribed.
func Interval(period int64) rx.Observable {
	return rx.New(func(s *rx.Subscriber) rx.Teardown {
		p := Current().Interval
		n := 0
		h := p.SetInterval(func() {
			s.Next(n)
			n++
		}, period)
		return func() { p.ClearInterval(h) }
	})
}

// Immediate emits 0 on the immediate queue, then completes.
func Immediate() rx.Observable {
	return rx.New(func(s *rx.Subscriber) rx.Teardown {
		p := Current().Immediate
		h := p.SetImmediate(func() {
			s.Next(0)
			s.Complete()
		})
		return func() { p.ClearImmediate(h) }
	})
}

// AnimationFrames emits an AnimationFrame on every animation tick until
// unsubscribed.
func AnimationFrames() rx.Observable {
	return rx.New(func(s *rx.Subscriber) rx.Teardown {
		p := Current().AnimationFrame
		var (
			h     Handle
			start int64
			first = true
		)
		var tick func(ts int64)
		tick = func(ts int64) {
			if first {
				start = ts
				first = false
			}
			s.Next(AnimationFrame{Timestamp: ts, Elapsed: ts - start})
			if !s.Closed() {
				h = p.RequestAnimationFrame(tick)
			}
		}
		h = p.RequestAnimationFrame(tick)
		return func() { p.CancelAnimationFrame(h) }
	})
}
