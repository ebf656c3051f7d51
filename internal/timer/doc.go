// Package timer defines the pluggable time sources streams are scheduled on.
//
// Four narrow provider interfaces cover the asynchronous primitives a stream
// can depend on: run-once-soon (immediate), run-repeatedly (interval),
// run-once-later (timeout) and run-on-next-animation-tick (animation frame).
// Delays and periods are expressed in frames; the real providers treat one
// frame as one millisecond.
//
// # Binding
//
// Current() returns the process-wide provider bundle. Bind installs a
// different bundle (typically the virtual-time providers of an
// engine.Scheduler) and returns the release function that restores the
// previous bundle:
//
//	release := timer.Bind(sched.VirtualProviders())
//	defer release()
//
// # Ordering
//
// Under virtual time, callbacks due at the same frame run in this order:
// immediate, animation frame, then interval and timeout callbacks in the
// order they were scheduled.
package timer
