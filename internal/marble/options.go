package marble

import (
	"errors"

	"github.com/roach88/marbles/internal/ir"
)

// DefaultFrameTimeFactor is the number of virtual time units one marble
// character spans outside run mode.
const DefaultFrameTimeFactor int64 = 10

// ErrDefault is the error carried by '#' when no error value is supplied.
var ErrDefault = errors.New("error")

// Materializer turns an inner observable value into its recorded timeline.
// It returns false for values that are not observables.
type Materializer func(v any) ([]ir.TestMessage, bool)

type config struct {
	values      map[string]any
	err         error
	factor      int64
	runMode     bool
	materialize Materializer
}

// Option configures parsing and serialization.
type Option func(*config)

// WithValues maps marble characters to notification values.
func WithValues(values map[string]any) Option {
	return func(c *config) {
		c.values = values
	}
}

// WithError sets the value carried by '#'.
func WithError(err error) Option {
	return func(c *config) {
		if err != nil {
			c.err = err
		}
	}
}

// WithFrameTimeFactor sets the time units per character. Non-positive values
// are ignored.
func WithFrameTimeFactor(factor int64) Option {
	return func(c *config) {
		if factor > 0 {
			c.factor = factor
		}
	}
}

// WithRunMode enables time progression tokens and ignores whitespace.
func WithRunMode(runMode bool) Option {
	return func(c *config) {
		c.runMode = runMode
	}
}

// WithMaterializeInnerObservables replaces Next values that are observables
// with their recorded timeline.
func WithMaterializeInnerObservables(fn Materializer) Option {
	return func(c *config) {
		c.materialize = fn
	}
}

func newConfig(opts []Option) config {
	c := config{
		err:    ErrDefault,
		factor: DefaultFrameTimeFactor,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&c)
		}
	}
	return c
}
