package harness

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/marbles/internal/engine"
	"github.com/roach88/marbles/internal/ir"
	"github.com/roach88/marbles/internal/marble"
	"github.com/roach88/marbles/internal/rx"
	"github.com/roach88/marbles/internal/timer"
)

// capture returns an AssertFunc that keeps the last actual value and
// always passes.
func capture(actual *any) AssertFunc {
	return func(got, _ any) error {
		*actual = got
		return nil
	}
}

func TestHarness_ColdDeliversAtCharacterFrames(t *testing.T) {
	var actual any
	h := New(capture(&actual))

	src, err := h.CreateColdObservable("--a---b--|", marble.WithValues(map[string]any{"a": "A", "b": "B"}))
	require.NoError(t, err)
	e, err := h.ExpectObservable(src)
	require.NoError(t, err)
	require.NoError(t, e.ToBe(""))
	require.NoError(t, h.Flush())

	assert.Equal(t, []ir.TestMessage{
		ir.NextAt(20, "A"),
		ir.NextAt(60, "B"),
		ir.CompleteAt(90),
	}, actual)
}

func TestHarness_ColdEndToEnd(t *testing.T) {
	var actual any
	h := New(capture(&actual))

	src, err := h.CreateColdObservable("--a--b--|", marble.WithValues(map[string]any{"a": "A", "b": "B"}))
	require.NoError(t, err)
	e, err := h.ExpectObservable(src)
	require.NoError(t, err)
	require.NoError(t, e.ToBe(""))
	require.NoError(t, h.Flush())

	assert.Equal(t, []ir.TestMessage{
		ir.NextAt(20, "A"),
		ir.NextAt(50, "B"),
		ir.CompleteAt(80),
	}, actual)
}

func TestHarness_ToBePasses(t *testing.T) {
	h := New(Require(t))

	src, err := h.CreateColdObservable("-a-b-(c|)")
	require.NoError(t, err)
	e, err := h.ExpectObservable(src)
	require.NoError(t, err)
	require.NoError(t, e.ToBe("-a-b-(c|)"))

	require.NoError(t, h.Flush())
}

func TestHarness_MismatchIsAssertionError(t *testing.T) {
	h := New(nil)

	src, err := h.CreateColdObservable("-a|")
	require.NoError(t, err)
	e, err := h.ExpectObservable(src)
	require.NoError(t, err)
	require.NoError(t, e.ToBe("-b|"))

	err = h.Flush()
	require.Error(t, err)
	var ae *AssertionError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, KindObservable, ae.Type)
	assert.Contains(t, ae.Expected, "next(b)")
	assert.Contains(t, ae.Actual, "next(a)")
	assert.NotEmpty(t, ae.Diff)
}

func TestHarness_MismatchesAreJoined(t *testing.T) {
	h := New(nil)

	a, err := h.CreateColdObservable("a|")
	require.NoError(t, err)
	b, err := h.CreateColdObservable("b|")
	require.NoError(t, err)

	ea, err := h.ExpectObservable(a)
	require.NoError(t, err)
	require.NoError(t, ea.ToBe("x|"))
	eb, err := h.ExpectObservable(b)
	require.NoError(t, err)
	require.NoError(t, eb.ToBe("y|"))

	err = h.Flush()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "next(x)")
	assert.Contains(t, err.Error(), "next(y)")
}

func TestHarness_EmptyFlushIsNoOp(t *testing.T) {
	h := New(nil)
	require.NoError(t, h.Flush())
	assert.Equal(t, int64(0), h.Now())
}

func TestHarness_ColdRejectsSubscriptionPoint(t *testing.T) {
	h := New(nil)
	_, err := h.CreateColdObservable("--^--a|")
	require.Error(t, err)
	assert.True(t, marble.IsSyntaxError(err))
}

func TestHarness_HotSubscriptionPoint(t *testing.T) {
	h := New(Require(t))

	hot, err := h.CreateHotObservable("--a--^--b--|")
	require.NoError(t, err)
	e, err := h.ExpectObservable(hot)
	require.NoError(t, err)
	require.NoError(t, e.ToBe("---b--|"))
	require.NoError(t, h.ExpectSubscriptions(hot).ToBe("^-----!"))

	require.NoError(t, h.Flush())
}

func TestHarness_HotSharesOneTimeline(t *testing.T) {
	h := New(Require(t))

	hot, err := h.CreateHotObservable("-a-b-c-|")
	require.NoError(t, err)
	early, err := h.ExpectObservable(hot)
	require.NoError(t, err)
	require.NoError(t, early.ToBe("-a-b-c-|"))
	late, err := h.ExpectObservable(hot, "----^")
	require.NoError(t, err)
	require.NoError(t, late.ToBe("-----c-|"))
	require.NoError(t, h.ExpectSubscriptions(hot).ToBe("^------!", "----^--!"))

	require.NoError(t, h.Flush())
}

func TestHarness_SubscriptionWindow(t *testing.T) {
	h := New(Require(t))

	src, err := h.CreateColdObservable("-a-b-c|")
	require.NoError(t, err)
	e, err := h.ExpectObservable(src, "--^---!")
	require.NoError(t, err)
	require.NoError(t, e.ToBe("---a-b-"))
	require.NoError(t, h.ExpectSubscriptions(src).ToBe("--^---!"))

	require.NoError(t, h.Flush())
}

func TestHarness_NoSubscriptions(t *testing.T) {
	h := New(Require(t))

	src, err := h.CreateColdObservable("-a|")
	require.NoError(t, err)
	require.NoError(t, h.ExpectSubscriptions(src).ToBe())

	require.NoError(t, h.Flush())
}

func TestHarness_MaxFramesStopsFlush(t *testing.T) {
	h := New(Require(t), WithMaxFrames(30))

	src, err := h.CreateColdObservable("-a-b-c|")
	require.NoError(t, err)
	e, err := h.ExpectObservable(src)
	require.NoError(t, err)
	require.NoError(t, e.ToBe("-a-b"))

	require.NoError(t, h.Flush())
}

func TestHarness_InnerObservablesAreMaterialized(t *testing.T) {
	h := New(Require(t))

	inner, err := h.CreateColdObservable("-x|")
	require.NoError(t, err)
	outer, err := h.CreateColdObservable("--a|", marble.WithValues(map[string]any{"a": inner}))
	require.NoError(t, err)

	expectedInner, err := h.CreateColdObservable("-x|")
	require.NoError(t, err)
	e, err := h.ExpectObservable(outer)
	require.NoError(t, err)
	require.NoError(t, e.ToBe("--a|", marble.WithValues(map[string]any{"a": expectedInner})))

	require.NoError(t, h.Flush())
}

func TestHarness_ToEqual(t *testing.T) {
	h := New(nil)

	a, err := h.CreateColdObservable("-a-b|")
	require.NoError(t, err)
	b, err := h.CreateColdObservable("-a-b|")
	require.NoError(t, err)
	c, err := h.CreateColdObservable("-a--b|")
	require.NoError(t, err)

	same, err := h.ExpectObservable(a)
	require.NoError(t, err)
	same.ToEqual(b)
	require.NoError(t, h.Flush())

	different, err := h.ExpectObservable(a)
	require.NoError(t, err)
	different.ToEqual(c)
	assert.Error(t, h.Flush())
}

func TestHarness_PipedThroughSchedulerOperators(t *testing.T) {
	h := New(Require(t))

	src, err := h.CreateColdObservable("-a-b-c|")
	require.NoError(t, err)
	piped := rx.Pipe(src,
		rx.Delay(20, h.Scheduler()),
		rx.Take(2),
	)
	e, err := h.ExpectObservable(piped)
	require.NoError(t, err)
	require.NoError(t, e.ToBe("---a-(b|)"))
	require.NoError(t, h.ExpectSubscriptions(src).ToBe("^----!"))

	require.NoError(t, h.Flush())
}

func TestHarness_ToBeSyntaxErrorOutsideRun(t *testing.T) {
	h := New(nil)

	src, err := h.CreateColdObservable("a|")
	require.NoError(t, err)
	e, err := h.ExpectObservable(src)
	require.NoError(t, err)

	err = e.ToBe("(a")
	require.Error(t, err)
	assert.True(t, marble.IsSyntaxError(err))
	// The broken expectation is dropped rather than left pending.
	assert.Empty(t, h.expectations)
}

func TestHarness_LogsResolution(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	h := New(nil, WithLogger(logger))

	require.NoError(t, h.Flush())
	assert.Contains(t, buf.String(), "flush resolved expectations")
}

func TestRun_ColdEndToEnd(t *testing.T) {
	h := New(Require(t))

	err := h.Run(func(rc *RunContext) {
		src := rc.Cold("--a---b--|", marble.WithValues(map[string]any{"a": "A", "b": "B"}))
		require.NoError(t, rc.ExpectObservable(src).ToBe("--A---B--|"))
		require.NoError(t, rc.ExpectSubscriptions(src).ToBe("^--------!"))
	})
	require.NoError(t, err)
	assert.Equal(t, int64(9), h.Now())
}

func TestRun_TimeProgression(t *testing.T) {
	var actual any
	h := New(capture(&actual))

	err := h.Run(func(rc *RunContext) {
		assert.Equal(t, int64(1005), rc.Time("1s 5ms |"))
		src := rc.Cold("a 5ms b|")
		_ = rc.ExpectObservable(src).ToBe("")
	})
	require.NoError(t, err)
	assert.Equal(t, []ir.TestMessage{
		ir.NextAt(0, "a"),
		ir.NextAt(6, "b"),
		ir.CompleteAt(7),
	}, actual)
}

func TestRun_RestoresSettings(t *testing.T) {
	h := New(nil)
	require.NoError(t, h.Run(func(rc *RunContext) {
		assert.Equal(t, int64(1), h.FrameTimeFactor())
	}))
	assert.Equal(t, marble.DefaultFrameTimeFactor, h.FrameTimeFactor())
	assert.False(t, h.runMode)
	assert.False(t, h.running)
}

type fakeTimeouts struct{ set int }

func (f *fakeTimeouts) SetTimeout(func(), int64) timer.Handle {
	f.set++
	return nil
}

func (f *fakeTimeouts) ClearTimeout(timer.Handle) {}

func TestRun_RestoresBindingAfterPanic(t *testing.T) {
	fake := &fakeTimeouts{}
	release := timer.Bind(timer.Providers{Timeout: fake})
	defer release()

	h := New(nil)
	err := h.Run(func(rc *RunContext) {
		_, isFake := timer.Current().Timeout.(*fakeTimeouts)
		assert.False(t, isFake)
		panic("boom")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Same(t, fake, timer.Current().Timeout)
	assert.Equal(t, marble.DefaultFrameTimeFactor, h.FrameTimeFactor())
}

func TestRun_VirtualTimers(t *testing.T) {
	h := New(Require(t))

	err := h.Run(func(rc *RunContext) {
		values := marble.WithValues(map[string]any{"x": 0, "a": 0, "b": 1, "c": 2})
		_ = rc.ExpectObservable(timer.Timeout(rc.Time("---|"))).ToBe("---(x|)", values)
		_ = rc.ExpectObservable(rx.Pipe(timer.Interval(2), rx.Take(3))).ToBe("--a-b-(c|)", values)
		_ = rc.ExpectObservable(timer.Immediate()).ToBe("(x|)", values)
	})
	require.NoError(t, err)
}

func TestRun_Animate(t *testing.T) {
	h := New(Require(t))

	err := h.Run(func(rc *RunContext) {
		rc.Animate("---x---x")
		_ = rc.ExpectObservable(rx.Pipe(timer.AnimationFrames(), rx.Take(2))).ToBe("---a---(b|)",
			marble.WithValues(map[string]any{
				"a": timer.AnimationFrame{Timestamp: 3, Elapsed: 0},
				"b": timer.AnimationFrame{Timestamp: 7, Elapsed: 4},
			}))
	})
	require.NoError(t, err)
}

func TestRun_AnimateRejectsTerminalAndRepeat(t *testing.T) {
	err := New(nil).Run(func(rc *RunContext) {
		rc.Animate("--x--|")
	})
	assert.ErrorIs(t, err, ErrAnimateTerminal)

	err = New(nil).Run(func(rc *RunContext) {
		rc.Animate("--x")
		rc.Animate("--x")
	})
	assert.ErrorIs(t, err, ErrAnimateTwice)
}

func TestRun_AnimationWithoutAnimate(t *testing.T) {
	err := New(nil).Run(func(rc *RunContext) {
		_ = rc.ExpectObservable(timer.AnimationFrames()).ToBe("-")
	})
	require.Error(t, err)
	assert.True(t, engine.IsAnimateNotCalledError(err))
}

func TestRun_SecondToBePanics(t *testing.T) {
	err := New(nil).Run(func(rc *RunContext) {
		e := rc.ExpectObservable(rc.Cold("a|"))
		_ = e.ToBe("a|")
		_ = e.ToBe("a|")
	})
	require.Error(t, err)
	assert.True(t, engine.IsExpectationResolvedError(err))
}

func TestRun_SyntaxErrorAbortsBody(t *testing.T) {
	reached := false
	err := New(nil).Run(func(rc *RunContext) {
		rc.Cold("-(a")
		reached = true
	})
	require.Error(t, err)
	assert.True(t, marble.IsSyntaxError(err))
	assert.False(t, reached)
}

func TestRun_MismatchIsReturned(t *testing.T) {
	err := New(nil).Run(func(rc *RunContext) {
		_ = rc.ExpectObservable(rc.Cold("-a|")).ToBe("--a|")
	})
	var ae *AssertionError
	assert.True(t, errors.As(err, &ae))
}

func TestRun_ZeroPeriodIntervalHitsQuota(t *testing.T) {
	err := New(nil, WithMaxSteps(50)).Run(func(rc *RunContext) {
		_ = rc.ExpectObservable(timer.Interval(0)).ToBe("-")
	})
	require.Error(t, err)
	assert.True(t, engine.IsStepsExceededError(err))
}

func TestRun_FlushInsideBody(t *testing.T) {
	h := New(Require(t))

	err := h.Run(func(rc *RunContext) {
		src := rc.Cold("--a|")
		_ = rc.ExpectObservable(src).ToBe("--a|")
		rc.Flush()
		assert.Equal(t, int64(3), rc.Now())
	})
	require.NoError(t, err)
}

func TestRun_NotReentrant(t *testing.T) {
	h := New(nil)
	var inner error
	require.NoError(t, h.Run(func(rc *RunContext) {
		inner = h.Run(func(*RunContext) {})
	}))
	assert.Error(t, inner)
}

func TestHarness_NestedFlushSchedulesNothing(t *testing.T) {
	h := New(nil)
	var (
		nested  error
		pending int
	)
	h.Scheduler().Schedule(func(*engine.Action) {
		_, err := h.CreateHotObservable("--a|")
		require.NoError(t, err)
		nested = h.Flush()
		pending = h.Scheduler().Pending()
	}, 0, nil)

	require.NoError(t, h.Flush())
	assert.True(t, engine.IsNestedFlushError(nested))
	assert.Zero(t, pending, "hot timeline must not be scheduled by a rejected flush")

	// The hot source is still set up by the next flush.
	require.NoError(t, h.Flush())
	assert.Equal(t, int64(3), h.Now())
}

func TestRun_ScheduleAfterTeardownPanics(t *testing.T) {
	h := New(nil)
	var captured timer.Providers
	require.NoError(t, h.Run(func(*RunContext) {
		captured = timer.Current()
	}))

	defer func() {
		re, ok := engine.AsRuntimeError(recover())
		require.True(t, ok, "expected *RuntimeError panic")
		assert.Equal(t, engine.ErrCodeDisposed, re.Code)
		assert.Zero(t, h.Scheduler().Pending())
	}()
	captured.Timeout.SetTimeout(func() {}, 5)
	t.Fatal("SetTimeout after Run returned did not panic")
}

func TestHarness_CloseDisposesScheduler(t *testing.T) {
	h := New(nil)
	src, err := h.CreateColdObservable("--a|")
	require.NoError(t, err)
	_, err = h.ExpectObservable(src)
	require.NoError(t, err)

	h.Close()
	assert.True(t, h.Scheduler().Disposed())
	assert.True(t, engine.IsDisposedError(h.Flush()))
}
