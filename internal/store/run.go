package store

import (
	"fmt"

	"github.com/roach88/marbles/internal/harness"
	"github.com/roach88/marbles/internal/ir"
)

// Run is one recorded scenario execution.
type Run struct {
	ID       string
	Seq      int64
	Scenario string
	Pass     bool

	// Digest identifies the snapshot content; equal digests mean the run
	// produced exactly the same timelines.
	Digest   string
	Snapshot string

	EngineVersion   string
	SnapshotVersion string

	// Expectations is only populated by ReadRun.
	Expectations []Expectation
}

// Expectation is the stored outcome of one scenario expectation.
type Expectation struct {
	Index  int
	Kind   string
	Source string
	Pass   bool
	Digest string
	// Actual is the canonical JSON of the recorded timeline or logs.
	Actual string
	Error  string
}

// NewRun converts a scenario result into a Run with the given ID. Seq is
// assigned when the run is written.
func NewRun(id string, result *harness.Result) (Run, error) {
	snapshot, err := harness.Snapshot(result)
	if err != nil {
		return Run{}, fmt.Errorf("new run: %w", err)
	}

	run := Run{
		ID:              id,
		Scenario:        result.Scenario,
		Pass:            result.Pass,
		Digest:          ir.SnapshotDigest(snapshot),
		Snapshot:        string(snapshot),
		EngineVersion:   ir.EngineVersion,
		SnapshotVersion: ir.SnapshotVersion,
		Expectations:    make([]Expectation, 0, len(result.Expectations)),
	}
	for i, er := range result.Expectations {
		e, err := newExpectation(i, er)
		if err != nil {
			return Run{}, fmt.Errorf("new run: expectation %d: %w", i, err)
		}
		run.Expectations = append(run.Expectations, e)
	}
	return run, nil
}

func newExpectation(idx int, er harness.ExpectationResult) (Expectation, error) {
	actual, err := ir.MarshalCanonical(er.Actual)
	if err != nil {
		return Expectation{}, err
	}

	var digest string
	switch v := er.Actual.(type) {
	case []ir.TestMessage:
		digest, err = ir.MessagesDigest(v)
	case []ir.SubscriptionLog:
		digest, err = ir.SubscriptionsDigest(v)
	default:
		return Expectation{}, fmt.Errorf("unsupported actual type %T", er.Actual)
	}
	if err != nil {
		return Expectation{}, err
	}

	return Expectation{
		Index:  idx,
		Kind:   er.Kind,
		Source: er.Source,
		Pass:   er.Pass,
		Digest: digest,
		Actual: string(actual),
		Error:  er.Error,
	}, nil
}
