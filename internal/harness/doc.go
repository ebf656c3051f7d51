// Package harness provides the marble-diagram test harness.
//
// A Harness owns one virtual-time scheduler. Tests describe sources and
// expected output as marble diagrams; nothing is compared until Flush, which
// drains the scheduler and then hands every resolved expectation to the
// harness's AssertFunc.
//
// # Run
//
// Run is the usual entry point:
//
//	h := harness.New(harness.DeepEqual)
//	err := h.Run(func(rc *harness.RunContext) {
//	    src := rc.Cold("--a---b--|", marble.WithValues(map[string]any{"a": "A", "b": "B"}))
//	    rc.ExpectObservable(src).ToBe("--A---B--|")
//	})
//
// Inside Run the timer providers are bound to the scheduler, the frame time
// factor is 1, run-mode time progression ("10ms") is enabled and flushes are
// unbounded. All of that is restored when Run returns, including when the
// body panics. Errors inside Run (bad marbles, mismatches) abort the body and
// come back as Run's error.
//
// # Outside Run
//
// The Create*, Expect* and Flush methods can be used directly. Frames then
// use the configured frame time factor (default 10), flushes stop at
// MaxFrames (default 750) and errors are returned instead of aborting.
//
// # Scenarios
//
// Scenario files (YAML or CUE) describe sources, operator pipelines and
// expectations declaratively. RunScenario executes one; RunWithGolden also
// compares the recorded timelines against a golden snapshot.
package harness
