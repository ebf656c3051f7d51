package timer

import (
	"sync"
	"time"
)

// FrameDuration is the wall-clock length of one frame for the real providers.
const FrameDuration = time.Millisecond

// AnimationInterval approximates a 60Hz display refresh.
const AnimationInterval = 16 * time.Millisecond

// Real returns providers backed by the runtime timer wheel. Callbacks run on
// timer goroutines.
func Real() Providers {
	return Providers{
		Immediate:      realImmediate{},
		Interval:       realInterval{},
		Timeout:        realTimeout{},
		AnimationFrame: realAnimationFrame{},
	}
}

type stopHandle struct {
	once sync.Once
	stop func()
}

func (h *stopHandle) Cancel() {
	h.once.Do(h.stop)
}

func afterFunc(d time.Duration, fn func()) Handle {
	t := time.AfterFunc(d, fn)
	return &stopHandle{stop: func() { t.Stop() }}
}

func frames(n int64) time.Duration {
	if n < 0 {
		n = 0
	}
	return time.Duration(n) * FrameDuration
}

type realImmediate struct{}

func (realImmediate) SetImmediate(fn func()) Handle { return afterFunc(0, fn) }
func (realImmediate) ClearImmediate(h Handle)      { cancel(h) }

type realTimeout struct{}

func (realTimeout) SetTimeout(fn func(), delay int64) Handle { return afterFunc(frames(delay), fn) }
func (realTimeout) ClearTimeout(h Handle)                    { cancel(h) }

type realInterval struct{}

func (realInterval) SetInterval(fn func(), period int64) Handle {
	d := frames(period)
	if d <= 0 {
		d = FrameDuration
	}
	ticker := time.NewTicker(d)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				fn()
			}
		}
	}()
	return &stopHandle{stop: func() {
		ticker.Stop()
		close(done)
	}}
}

func (realInterval) ClearInterval(h Handle) { cancel(h) }

type realAnimationFrame struct{}

func (realAnimationFrame) RequestAnimationFrame(fn func(timestamp int64)) Handle {
	return afterFunc(AnimationInterval, func() {
		fn(time.Now().UnixMilli())
	})
}

func (realAnimationFrame) CancelAnimationFrame(h Handle) { cancel(h) }
