package harness

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/marbles/internal/marble"
	"github.com/roach88/marbles/internal/rx"
)

// comparison is one AssertFunc call captured while a scenario runs.
type comparison struct {
	actual   any
	expected any
	err      error
}

// RunScenario executes s on a fresh harness and reports every expectation.
// Mismatches are reported in the Result; the error is reserved for scenarios
// that cannot be executed (bad diagrams, scheduler failures).
func RunScenario(s *Scenario, opts ...Option) (*Result, error) {
	var comparisons []comparison
	record := func(actual, expected any) error {
		err := DeepEqual(actual, expected)
		comparisons = append(comparisons, comparison{actual: actual, expected: expected, err: err})
		return err
	}

	var base []Option
	if s.FrameTimeFactor > 0 {
		base = append(base, WithFrameTimeFactor(s.FrameTimeFactor))
	}
	if s.MaxFrames > 0 {
		base = append(base, WithMaxFrames(s.MaxFrames))
	}
	h := New(record, append(base, opts...)...)
	defer h.Close()
	b := &scenarioBuilder{h: h, scenario: s}

	var err error
	if s.RunMode {
		err = h.Run(func(*RunContext) { must(b.build()) })
	} else if err = b.build(); err == nil {
		err = h.Flush()
	}

	// Resolved comparisons only fail through the recorded mismatches.
	if len(comparisons) != len(s.Expectations) {
		if err == nil {
			err = errors.New("not every expectation was resolved")
		}
		return nil, fmt.Errorf("scenario %q: %w", s.Name, err)
	}

	result := NewResult(s.Name)
	for i, c := range comparisons {
		er := ExpectationResult{
			Actual:   c.actual,
			Expected: c.expected,
			Pass:     c.err == nil,
		}
		if c.err != nil {
			er.Error = c.err.Error()
		}
		if o := s.Expectations[i].Observable; o != nil {
			er.Kind, er.Source = KindObservable, o.Source
		} else {
			er.Kind, er.Source = KindSubscriptions, s.Expectations[i].Subscriptions.Source
		}
		result.Add(er)
	}
	return result, nil
}

// scenarioBuilder turns a Scenario into harness sources and expectations.
type scenarioBuilder struct {
	h        *Harness
	scenario *Scenario
	sources  map[string]rx.Observable
	loggers  map[string]SubscriptionLogger
}

func (b *scenarioBuilder) build() error {
	b.sources = make(map[string]rx.Observable, len(b.scenario.Sources))
	b.loggers = make(map[string]SubscriptionLogger, len(b.scenario.Sources))
	for _, spec := range b.scenario.Sources {
		if err := b.addSource(spec); err != nil {
			return fmt.Errorf("source %q: %w", spec.Name, err)
		}
	}
	for i, spec := range b.scenario.Expectations {
		if err := b.addExpectation(spec); err != nil {
			return fmt.Errorf("expectations[%d]: %w", i, err)
		}
	}
	return nil
}

func (b *scenarioBuilder) addSource(spec SourceSpec) error {
	opts := b.diagramOptions(spec.Values, spec.Error)
	switch spec.Kind {
	case SourceHot:
		hot, err := b.h.CreateHotObservable(spec.Marbles, opts...)
		if err != nil {
			return err
		}
		b.sources[spec.Name], b.loggers[spec.Name] = hot, hot
	default:
		cold, err := b.h.CreateColdObservable(spec.Marbles, opts...)
		if err != nil {
			return err
		}
		b.sources[spec.Name], b.loggers[spec.Name] = cold, cold
	}
	return nil
}

func (b *scenarioBuilder) addExpectation(spec ExpectationSpec) error {
	if spec.Subscriptions != nil {
		return b.h.ExpectSubscriptions(b.loggers[spec.Subscriptions.Source]).
			ToBe(spec.Subscriptions.Marbles...)
	}

	o := spec.Observable
	src, err := b.pipe(b.sources[o.Source], o.Pipe)
	if err != nil {
		return err
	}
	e, err := b.h.ExpectObservable(src, o.Subscription)
	if err != nil {
		return err
	}
	return e.ToBe(o.Marbles, b.diagramOptions(o.Values, o.Error)...)
}

// diagramOptions layers per-diagram values over the scenario-wide map.
func (b *scenarioBuilder) diagramOptions(values map[string]any, errMsg string) []marble.Option {
	merged := maps.Clone(b.scenario.Values)
	if merged == nil {
		merged = make(map[string]any, len(values))
	}
	maps.Copy(merged, values)

	opts := []marble.Option{marble.WithValues(merged)}
	if errMsg != "" {
		opts = append(opts, marble.WithError(errors.New(errMsg)))
	}
	return opts
}

func (b *scenarioBuilder) pipe(src rx.Observable, specs []OperatorSpec) (rx.Observable, error) {
	ops := make([]rx.Operator, 0, len(specs))
	for _, spec := range specs {
		switch spec.Op {
		case OpMap:
			table := spec.Table
			ops = append(ops, rx.Map(func(v any) any {
				if mapped, ok := table[fmt.Sprint(v)]; ok {
					return mapped
				}
				return v
			}))
		case OpTake:
			ops = append(ops, rx.Take(spec.Count))
		case OpDelay:
			frames, err := b.h.CreateTime(spec.Time)
			if err != nil {
				return nil, err
			}
			ops = append(ops, rx.Delay(frames, b.h.sched))
		case OpFilter:
			keep := spec.Keep
			ops = append(ops, rx.Filter(func(v any) bool {
				return slices.ContainsFunc(keep, func(k any) bool {
					return assert.ObjectsAreEqual(k, v)
				})
			}))
		case OpMerge:
			others := make([]rx.Observable, len(spec.With))
			for i, name := range spec.With {
				others[i] = b.sources[name]
			}
			ops = append(ops, rx.MergeWith(others...))
		default:
			return nil, fmt.Errorf("unknown operator %q", spec.Op)
		}
	}
	return rx.Pipe(src, ops...), nil
}
