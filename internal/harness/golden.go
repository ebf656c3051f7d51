package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/marbles/internal/ir"
)

// RunWithGolden executes a scenario and compares the recorded timelines
// against testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Expectation mismatches are left in the returned Result; only a scenario
// that cannot run returns an error.
func RunWithGolden(t *testing.T, scenario *Scenario, opts ...Option) (*Result, error) {
	t.Helper()

	result, err := RunScenario(scenario, opts...)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against the named golden file
// without re-running the scenario.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	snapshot, err := Snapshot(result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, snapshot)
	return nil
}

// Snapshot renders the recorded timelines of result as canonical JSON.
func Snapshot(result *Result) ([]byte, error) {
	return ir.MarshalCanonical(result.toCanonicalMap())
}
