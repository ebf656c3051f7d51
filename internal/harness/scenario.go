package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

// Scenario is a declarative marble test: named sources, operator pipelines
// applied to them and the timelines they are expected to produce.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name" json:"name"`

	// Description explains what this scenario checks.
	Description string `yaml:"description" json:"description"`

	// FrameTimeFactor overrides the harness frame time factor outside run
	// mode. Zero keeps the default.
	FrameTimeFactor int64 `yaml:"frame_time_factor,omitempty" json:"frame_time_factor,omitempty"`

	// MaxFrames overrides the flush limit outside run mode.
	MaxFrames int64 `yaml:"max_frames,omitempty" json:"max_frames,omitempty"`

	// RunMode executes the scenario inside Harness.Run.
	RunMode bool `yaml:"run_mode,omitempty" json:"run_mode,omitempty"`

	// Values is the value map shared by every diagram in the scenario.
	Values map[string]any `yaml:"values,omitempty" json:"values,omitempty"`

	Sources      []SourceSpec      `yaml:"sources" json:"sources"`
	Expectations []ExpectationSpec `yaml:"expectations" json:"expectations"`
}

// SourceSpec declares a cold or hot test observable.
type SourceSpec struct {
	Name    string         `yaml:"name" json:"name"`
	Kind    string         `yaml:"kind" json:"kind"`
	Marbles string         `yaml:"marbles" json:"marbles"`
	Values  map[string]any `yaml:"values,omitempty" json:"values,omitempty"`
	// Error is the message of the error carried by '#'.
	Error string `yaml:"error,omitempty" json:"error,omitempty"`
}

// Source kinds.
const (
	SourceCold = "cold"
	SourceHot  = "hot"
)

// ExpectationSpec holds exactly one of Observable or Subscriptions.
type ExpectationSpec struct {
	Observable    *ObservableSpec    `yaml:"observable,omitempty" json:"observable,omitempty"`
	Subscriptions *SubscriptionsSpec `yaml:"subscriptions,omitempty" json:"subscriptions,omitempty"`
}

// ObservableSpec expects the piped source to produce Marbles while
// subscribed per the optional Subscription diagram.
type ObservableSpec struct {
	Source       string         `yaml:"source" json:"source"`
	Pipe         []OperatorSpec `yaml:"pipe,omitempty" json:"pipe,omitempty"`
	Subscription string         `yaml:"subscription,omitempty" json:"subscription,omitempty"`
	Marbles      string         `yaml:"marbles" json:"marbles"`
	Values       map[string]any `yaml:"values,omitempty" json:"values,omitempty"`
	Error        string         `yaml:"error,omitempty" json:"error,omitempty"`
}

// OperatorSpec is one pipeline stage. Which fields apply depends on Op.
type OperatorSpec struct {
	Op string `yaml:"op" json:"op"`

	// Table maps values for "map". Values missing from the table pass through.
	Table map[string]any `yaml:"table,omitempty" json:"table,omitempty"`

	// Count is the number of values "take" lets through.
	Count int `yaml:"count,omitempty" json:"count,omitempty"`

	// Time is a timing diagram ("---|") giving the "delay" duration.
	Time string `yaml:"time,omitempty" json:"time,omitempty"`

	// Keep lists the values "filter" lets through.
	Keep []any `yaml:"keep,omitempty" json:"keep,omitempty"`

	// With names the sources "merge" interleaves with the piped one.
	With []string `yaml:"with,omitempty" json:"with,omitempty"`
}

// Pipeline operators.
const (
	OpMap    = "map"
	OpTake   = "take"
	OpDelay  = "delay"
	OpFilter = "filter"
	OpMerge  = "merge"
)

// SubscriptionsSpec expects the subscription logs of a source, one diagram
// per subscription.
type SubscriptionsSpec struct {
	Source  string   `yaml:"source" json:"source"`
	Marbles []string `yaml:"marbles" json:"marbles"`
}

// LoadScenario reads a scenario file. Files ending in .cue are evaluated
// with CUE; anything else is parsed as YAML, rejecting unknown fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	if filepath.Ext(path) == ".cue" {
		if err := decodeCUE(path, data, &scenario); err != nil {
			return nil, err
		}
	} else {
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true) // Reject unknown fields
		if err := decoder.Decode(&scenario); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func decodeCUE(path string, data []byte, s *Scenario) error {
	v := cuecontext.New().CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return fmt.Errorf("failed to compile CUE: %w", err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("scenario is not concrete: %w", err)
	}
	if err := v.Decode(s); err != nil {
		return fmt.Errorf("failed to decode CUE: %w", err)
	}
	return nil
}

// IsScenarioFile reports whether path has a scenario file extension.
func IsScenarioFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".cue":
		return true
	}
	return false
}

// LoadScenarios loads every scenario file directly inside dir, sorted by
// file name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenarios directory: %w", err)
	}
	var scenarios []*Scenario
	for _, entry := range entries {
		if entry.IsDir() || !IsScenarioFile(entry.Name()) {
			continue
		}
		s, err := LoadScenario(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", entry.Name(), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks required fields and cross references.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(s.Sources) == 0 {
		return fmt.Errorf("sources list is required and must be non-empty")
	}
	if len(s.Expectations) == 0 {
		return fmt.Errorf("expectations list is required and must be non-empty")
	}

	names := make([]string, 0, len(s.Sources))
	for i, src := range s.Sources {
		if src.Name == "" {
			return fmt.Errorf("sources[%d]: name is required", i)
		}
		if slices.Contains(names, src.Name) {
			return fmt.Errorf("sources[%d]: duplicate source name %q", i, src.Name)
		}
		if src.Kind != SourceCold && src.Kind != SourceHot {
			return fmt.Errorf("sources[%d]: kind must be %q or %q, got %q", i, SourceCold, SourceHot, src.Kind)
		}
		names = append(names, src.Name)
	}

	known := func(name string) bool { return slices.Contains(names, name) }
	for i, e := range s.Expectations {
		switch {
		case e.Observable != nil && e.Subscriptions != nil:
			return fmt.Errorf("expectations[%d]: observable and subscriptions are mutually exclusive", i)
		case e.Observable != nil:
			if !known(e.Observable.Source) {
				return fmt.Errorf("expectations[%d]: unknown source %q", i, e.Observable.Source)
			}
			for j, op := range e.Observable.Pipe {
				if err := validateOperator(op, known); err != nil {
					return fmt.Errorf("expectations[%d].pipe[%d]: %w", i, j, err)
				}
			}
		case e.Subscriptions != nil:
			if !known(e.Subscriptions.Source) {
				return fmt.Errorf("expectations[%d]: unknown source %q", i, e.Subscriptions.Source)
			}
		default:
			return fmt.Errorf("expectations[%d]: one of observable or subscriptions is required", i)
		}
	}
	return nil
}

func validateOperator(op OperatorSpec, known func(string) bool) error {
	switch op.Op {
	case OpMap:
		if len(op.Table) == 0 {
			return fmt.Errorf("table is required for map")
		}
	case OpTake:
		if op.Count < 0 {
			return fmt.Errorf("count must be non-negative for take")
		}
	case OpDelay:
		if op.Time == "" {
			return fmt.Errorf("time is required for delay")
		}
	case OpFilter:
		if len(op.Keep) == 0 {
			return fmt.Errorf("keep is required for filter")
		}
	case OpMerge:
		if len(op.With) == 0 {
			return fmt.Errorf("with is required for merge")
		}
		for _, name := range op.With {
			if !known(name) {
				return fmt.Errorf("unknown source %q", name)
			}
		}
	default:
		return fmt.Errorf("unknown operator %q", op.Op)
	}
	return nil
}
