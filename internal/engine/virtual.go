package engine

import "github.com/roach88/marbles/internal/timer"

// VirtualProviders returns a provider bundle that delegates to s:
//   - immediate callbacks run at the current frame at PriorityImmediate
//   - timeouts and intervals run at PriorityTimer
//   - animation-frame callbacks wait for the next tick scheduled with
//     ScheduleAnimationTicks, which runs at PriorityAnimation
//
// Every handle returned is an *Action.
func (s *Scheduler) VirtualProviders() timer.Providers {
	return (&providerScope{s: s}).providers()
}

// ScopedProviders is VirtualProviders with a revoke function. After revoke,
// every Set/Request call on the bundle panics with ErrCodeDisposed even
// though s itself stays usable. Clear/Cancel calls keep working.
func (s *Scheduler) ScopedProviders() (timer.Providers, func()) {
	scope := &providerScope{s: s}
	return scope.providers(), func() { scope.revoked = true }
}

type providerScope struct {
	s       *Scheduler
	revoked bool
}

func (p *providerScope) providers() timer.Providers {
	return timer.Providers{
		Immediate:      virtualImmediate{p},
		Interval:       virtualInterval{p},
		Timeout:        virtualTimeout{p},
		AnimationFrame: virtualAnimationFrame{p},
	}
}

// sched returns the scheduler, panicking once the scope is revoked.
func (p *providerScope) sched() *Scheduler {
	if p.revoked {
		panic(NewRuntimeError(ErrCodeDisposed, p.s.Now(), "virtual timer provider used after its run ended"))
	}
	return p.s
}

type virtualImmediate struct{ p *providerScope }

func (v virtualImmediate) SetImmediate(fn func()) timer.Handle {
	return v.p.sched().ScheduleWithPriority(PriorityImmediate, func(*Action) { fn() }, 0, nil)
}

func (v virtualImmediate) ClearImmediate(h timer.Handle) { cancelHandle(h) }

type virtualTimeout struct{ p *providerScope }

func (v virtualTimeout) SetTimeout(fn func(), delay int64) timer.Handle {
	return v.p.sched().ScheduleWithPriority(PriorityTimer, func(*Action) { fn() }, delay, nil)
}

func (v virtualTimeout) ClearTimeout(h timer.Handle) { cancelHandle(h) }

type virtualInterval struct{ p *providerScope }

// SetInterval re-queues the action after each run. Clearing the interval
// inside fn leaves it closed, so Reschedule does nothing.
func (v virtualInterval) SetInterval(fn func(), period int64) timer.Handle {
	return v.p.sched().ScheduleWithPriority(PriorityTimer, func(a *Action) {
		fn()
		a.Reschedule(nil, period)
	}, period, nil)
}

func (v virtualInterval) ClearInterval(h timer.Handle) { cancelHandle(h) }

type virtualAnimationFrame struct{ p *providerScope }

func (v virtualAnimationFrame) RequestAnimationFrame(fn func(timestamp int64)) timer.Handle {
	return v.p.sched().requestAnimationFrame(fn)
}

func (v virtualAnimationFrame) CancelAnimationFrame(h timer.Handle) { cancelHandle(h) }

func cancelHandle(h timer.Handle) {
	if h != nil {
		h.Cancel()
	}
}

// animationQueue holds callbacks waiting for the next animation tick.
type animationQueue struct {
	configured bool
	waiting    []*animationRequest
}

type animationRequest struct {
	fn        func(timestamp int64)
	cancelled bool
}

func (r *animationRequest) Cancel() { r.cancelled = true }

// ScheduleAnimationTicks schedules an animation tick at each absolute frame.
// Frames already in the past tick at the current frame. Each tick runs every
// callback requested before it, passing the tick frame as the timestamp.
func (s *Scheduler) ScheduleAnimationTicks(frames ...int64) {
	s.mustBeLive()
	s.anim.configured = true
	for _, f := range frames {
		s.ScheduleWithPriority(PriorityAnimation, s.runAnimationTick, f-s.Now(), nil)
	}
	s.logger.Debug("animation ticks scheduled", "count", len(frames))
}

// AnimationConfigured reports whether ScheduleAnimationTicks was called.
func (s *Scheduler) AnimationConfigured() bool {
	return s.anim.configured
}

func (s *Scheduler) requestAnimationFrame(fn func(int64)) timer.Handle {
	s.mustBeLive()
	if !s.anim.configured {
		err := NewRuntimeError(ErrCodeAnimateNotCalled, s.Now(),
			"animation frame requested but no animation ticks were scheduled")
		s.recordMisuse(err)
		panic(err)
	}
	r := &animationRequest{fn: fn}
	s.anim.waiting = append(s.anim.waiting, r)
	return r
}

func (s *Scheduler) runAnimationTick(*Action) {
	batch := s.anim.waiting
	s.anim.waiting = nil
	now := s.Now()
	for _, r := range batch {
		if !r.cancelled {
			r.fn(now)
		}
	}
}
