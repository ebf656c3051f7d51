package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/marbles/internal/ir"
	"github.com/roach88/marbles/internal/marble"
)

// ParseOptions holds flags for the parse and time commands.
type ParseOptions struct {
	*RootOptions
	Subscription bool  // parse as a subscription diagram
	Factor       int64 // frame time factor
	RunMode      bool  // enable time progression tokens
}

// ParseResult is the output of the parse command.
type ParseResult struct {
	Marbles      string              `json:"marbles"`
	Messages     []ir.TestMessage    `json:"-"`
	Subscription *ir.SubscriptionLog `json:"-"`
	// Timeline is the canonical JSON of Messages or Subscription.
	Timeline json.RawMessage `json:"timeline"`
}

// NewParseCommand creates the parse command.
func NewParseCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ParseOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "parse <marbles>",
		Short: "Parse a marble diagram into a timeline",
		Long: `Parse a marble diagram and print the frames it describes.

Values are the diagram characters themselves; '#' carries the default error.

Examples:
  marbles parse "--a--b--|"
  marbles parse "^---!" --subscription
  marbles parse "a 10ms b|" --run-mode
  marbles parse "--a--|" --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(opts, args[0], cmd)
		},
	}
	addDiagramFlags(cmd, opts)
	cmd.Flags().BoolVar(&opts.Subscription, "subscription", false, "parse as a subscription diagram")

	return cmd
}

// NewTimeCommand creates the time command.
func NewTimeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ParseOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "time <marbles>",
		Short: "Print the frame of the '|' in a timing diagram",
		Example: `  marbles time "-----|"
  marbles time "--|" --factor 1`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTime(opts, args[0], cmd)
		},
	}
	addDiagramFlags(cmd, opts)

	return cmd
}

func addDiagramFlags(cmd *cobra.Command, opts *ParseOptions) {
	cmd.Flags().Int64Var(&opts.Factor, "factor", marble.DefaultFrameTimeFactor, "time units per marble character")
	cmd.Flags().BoolVar(&opts.RunMode, "run-mode", false, "allow time progression and ignore whitespace")
}

func (o *ParseOptions) marbleOptions() []marble.Option {
	factor := o.Factor
	if o.RunMode {
		factor = 1
	}
	return []marble.Option{
		marble.WithFrameTimeFactor(factor),
		marble.WithRunMode(o.RunMode),
	}
}

func (o *ParseOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

func runParse(opts *ParseOptions, marbles string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)
	if opts.Factor <= 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("factor must be positive, got %d", opts.Factor))
	}

	result := ParseResult{Marbles: marbles}
	var (
		timeline any
		err      error
	)
	if opts.Subscription {
		var log ir.SubscriptionLog
		log, err = marble.ParseMarblesAsSubscriptions(marbles, opts.marbleOptions()...)
		result.Subscription = &log
		timeline = log
	} else {
		result.Messages, err = marble.ParseMarbles(marbles, opts.marbleOptions()...)
		timeline = result.Messages
	}
	if err != nil {
		return diagramError(out, err)
	}
	opts.log().Debug("parsed diagram", "marbles", marbles, "subscription", opts.Subscription)

	canonical, err := ir.MarshalCanonical(timeline)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to encode timeline", err)
	}
	result.Timeline = canonical

	if opts.Format == "json" {
		return out.Success(result)
	}
	if result.Subscription != nil {
		return out.Success(nil, result.Subscription.String())
	}
	if len(result.Messages) == 0 {
		return out.Success(nil, "(no notifications)")
	}
	lines := make([]string, len(result.Messages))
	for i, m := range result.Messages {
		lines[i] = m.String()
	}
	return out.Success(nil, lines...)
}

func runTime(opts *ParseOptions, marbles string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)
	if opts.Factor <= 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("factor must be positive, got %d", opts.Factor))
	}

	frames, err := marble.CreateTime(marbles, opts.marbleOptions()...)
	if err != nil {
		return diagramError(out, err)
	}
	if opts.Format == "json" {
		return out.Success(map[string]any{"marbles": marbles, "frames": frames})
	}
	return out.Success(frames)
}

// diagramError reports a parse failure and converts it to a command error.
func diagramError(out *OutputFormatter, err error) error {
	code := "E_COMMAND"
	if marble.IsSyntaxError(err) {
		code = "E_SYNTAX"
	}
	if outErr := out.Error(code, err.Error(), nil); outErr != nil {
		return outErr
	}
	return WrapExitError(ExitCommandError, "invalid diagram", err)
}
