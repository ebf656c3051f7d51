package timer

// Handle identifies a scheduled callback. Cancel is idempotent; cancelling
// before the callback fires guarantees it never runs.
type Handle interface {
	Cancel()
}

// ImmediateProvider runs a callback as soon as possible, before any timer.
type ImmediateProvider interface {
	SetImmediate(fn func()) Handle
	ClearImmediate(h Handle)
}

// IntervalProvider runs a callback every period frames until cleared.
type IntervalProvider interface {
	SetInterval(fn func(), period int64) Handle
	ClearInterval(h Handle)
}

// TimeoutProvider runs a callback once after delay frames.
type TimeoutProvider interface {
	SetTimeout(fn func(), delay int64) Handle
	ClearTimeout(h Handle)
}

// AnimationFrameProvider runs a callback on the next animation tick. The
// callback receives the tick timestamp in frames.
type AnimationFrameProvider interface {
	RequestAnimationFrame(fn func(timestamp int64)) Handle
	CancelAnimationFrame(h Handle)
}

// Providers bundles one implementation of each provider.
type Providers struct {
	Immediate      ImmediateProvider
	Interval       IntervalProvider
	Timeout        TimeoutProvider
	AnimationFrame AnimationFrameProvider
}

// merge fills the nil members of p from fallback.
func (p Providers) merge(fallback Providers) Providers {
	if p.Immediate == nil {
		p.Immediate = fallback.Immediate
	}
	if p.Interval == nil {
		p.Interval = fallback.Interval
	}
	if p.Timeout == nil {
		p.Timeout = fallback.Timeout
	}
	if p.AnimationFrame == nil {
		p.AnimationFrame = fallback.AnimationFrame
	}
	return p
}

// cancel is the shared Clear* implementation.
func cancel(h Handle) {
	if h != nil {
		h.Cancel()
	}
}
