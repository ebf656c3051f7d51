package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/marbles/internal/engine"
	"github.com/roach88/marbles/internal/harness"
	"github.com/roach88/marbles/internal/ir"
)

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestResult builds a result with one observable and one
// subscriptions expectation.
func createTestResult(scenario string, pass bool) *harness.Result {
	r := harness.NewResult(scenario)
	r.Add(harness.ExpectationResult{
		Kind:   harness.KindObservable,
		Source: "src",
		Pass:   pass,
		Actual: []ir.TestMessage{ir.NextAt(20, "a"), ir.CompleteAt(30)},
		Error:  errorUnless(pass),
	})
	r.Add(harness.ExpectationResult{
		Kind:   harness.KindSubscriptions,
		Source: "src",
		Pass:   true,
		Actual: []ir.SubscriptionLog{{Subscribed: 0, Unsubscribed: 30}},
	})
	return r
}

func errorUnless(pass bool) string {
	if pass {
		return ""
	}
	return "observable mismatch"
}

// engineIDs hands out ids in order, panicking when they run out.
func engineIDs(ids ...string) engine.IDGenerator {
	return engine.NewFixedGenerator(ids...)
}
