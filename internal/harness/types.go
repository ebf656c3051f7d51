package harness

// Expectation kinds reported in results and snapshots.
const (
	KindObservable    = "observable"
	KindSubscriptions = "subscriptions"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Scenario is the scenario name.
	Scenario string `json:"scenario"`

	// Pass is true when every expectation matched.
	Pass bool `json:"pass"`

	// Expectations holds one entry per scenario expectation, in order.
	Expectations []ExpectationResult `json:"expectations"`

	// Errors contains mismatch messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// ExpectationResult records both sides of one comparison. Actual and
// Expected are []ir.TestMessage for observables and []ir.SubscriptionLog
// for subscriptions.
type ExpectationResult struct {
	Kind     string `json:"kind"`
	Source   string `json:"source"`
	Pass     bool   `json:"pass"`
	Actual   any    `json:"actual"`
	Expected any    `json:"expected"`
	Error    string `json:"error,omitempty"`
}

// NewResult creates a passing result for the named scenario.
func NewResult(scenario string) *Result {
	return &Result{
		Scenario:     scenario,
		Pass:         true,
		Expectations: []ExpectationResult{},
		Errors:       []string{},
	}
}

// Add appends an expectation outcome, failing the result on a mismatch.
func (r *Result) Add(er ExpectationResult) {
	r.Expectations = append(r.Expectations, er)
	if !er.Pass {
		r.Pass = false
		r.Errors = append(r.Errors, er.Error)
	}
}

// toCanonicalMap keeps only what a run actually produced, so golden files
// do not change when a scenario's expected diagrams are edited.
func (r *Result) toCanonicalMap() map[string]any {
	expectations := make([]any, len(r.Expectations))
	for i, er := range r.Expectations {
		expectations[i] = map[string]any{
			"kind":   er.Kind,
			"source": er.Source,
			"actual": er.Actual,
		}
	}
	return map[string]any{
		"scenario":     r.Scenario,
		"expectations": expectations,
	}
}
