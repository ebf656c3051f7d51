package timer

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/marbles/internal/rx"
)

func observerFuncs(values *[]any, completed *bool) rx.ObserverFuncs {
	var mu sync.Mutex
	return rx.ObserverFuncs{
		OnNext: func(v any) {
			mu.Lock()
			*values = append(*values, v)
			mu.Unlock()
		},
		OnComplete: func() {
			mu.Lock()
			*completed = true
			mu.Unlock()
		},
	}
}

func TestReal_TimeoutFires(t *testing.T) {
	done := make(chan struct{})
	Real().Timeout.SetTimeout(func() { close(done) }, 1)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout never fired")
	}
}

func TestReal_ClearTimeoutPreventsCallback(t *testing.T) {
	var fired atomic.Bool
	p := Real().Timeout
	h := p.SetTimeout(func() { fired.Store(true) }, 20)
	p.ClearTimeout(h)
	p.ClearTimeout(h)

	time.Sleep(50 * time.Millisecond)
	assert.False(t, fired.Load())
}

func TestReal_IntervalRepeatsUntilCleared(t *testing.T) {
	var ticks atomic.Int32
	p := Real().Interval
	h := p.SetInterval(func() { ticks.Add(1) }, 1)

	assert.Eventually(t, func() bool { return ticks.Load() >= 3 }, 2*time.Second, time.Millisecond)
	p.ClearInterval(h)
	after := ticks.Load()
	time.Sleep(20 * time.Millisecond)
	assert.LessOrEqual(t, ticks.Load(), after+1, "at most one in-flight tick after clear")
}

func TestReal_AnimationFramePassesTimestamp(t *testing.T) {
	got := make(chan int64, 1)
	Real().AnimationFrame.RequestAnimationFrame(func(ts int64) { got <- ts })

	select {
	case ts := <-got:
		assert.Positive(t, ts)
	case <-time.After(2 * time.Second):
		t.Fatal("animation frame never fired")
	}
}
