package harness

import (
	"io"
	"log/slog"

	"github.com/roach88/marbles/internal/engine"
	"github.com/roach88/marbles/internal/marble"
)

// DefaultMaxFrames bounds Flush outside Run.
const DefaultMaxFrames int64 = 750

type config struct {
	factor    int64
	maxFrames int64
	maxSteps  int
	logger    *slog.Logger
}

// Option configures a Harness.
type Option func(*config)

// WithFrameTimeFactor sets the time units per marble character used outside
// Run. Non-positive values are ignored.
func WithFrameTimeFactor(factor int64) Option {
	return func(c *config) {
		if factor > 0 {
			c.factor = factor
		}
	}
}

// WithMaxFrames sets the frame at which Flush stops outside Run.
func WithMaxFrames(maxFrames int64) Option {
	return func(c *config) {
		c.maxFrames = maxFrames
	}
}

// WithMaxSteps sets the per-flush action quota of the scheduler.
func WithMaxSteps(maxSteps int) Option {
	return func(c *config) {
		c.maxSteps = maxSteps
	}
}

// WithLogger sets the logger for the harness and its scheduler.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func newConfig(opts []Option) config {
	c := config{
		factor:    marble.DefaultFrameTimeFactor,
		maxFrames: DefaultMaxFrames,
		maxSteps:  engine.DefaultMaxSteps,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&c)
		}
	}
	return c
}
