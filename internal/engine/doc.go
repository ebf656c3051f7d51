// Package engine implements the virtual-time action scheduler.
//
// The scheduler is the heart of the harness: every asynchronous boundary in a
// test (immediate, timeout, interval, animation frame, generic delay) becomes
// an Action queued at a virtual frame, and Flush replays them in a single
// synchronous loop.
//
// ORDERING:
//
// Actions are ordered by (due, priority, seq):
//   - due: the frame the action fires at
//   - priority: immediate before animation before timer
//   - seq: monotonic counter from Clock.Next(), FIFO among equals
//
// Actions scheduled from inside a firing action at the same frame and
// priority get a larger seq, so they run behind everything already queued.
//
// CRITICAL PATTERNS:
//
// Logical Clock:
// The frame only moves forward, and only inside Flush. Nothing in this
// package reads wall-clock time.
//
// Single Writer:
// A Scheduler is driven from one goroutine. Exactly one Flush may be in
// progress; a nested Flush is rejected with ErrCodeNestedFlush.
//
// Termination:
// A Flush that executes more than the configured max steps stops with
// StepsExceededError. This catches zero-period intervals and actions that
// reschedule themselves forever at the same frame.
package engine
