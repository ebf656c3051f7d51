package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/marbles/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Scenario string
}

// HistoryEntry is one recorded run as reported by the history command.
type HistoryEntry struct {
	ID       string `json:"id"`
	Seq      int64  `json:"seq"`
	Scenario string `json:"scenario"`
	Pass     bool   `json:"pass"`
	Digest   string `json:"digest"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history <db>",
		Short: "List recorded scenario runs",
		Example: `  marbles history runs.db
  marbles history runs.db --scenario cold_map --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, args[0], cmd)
		},
	}
	cmd.Flags().StringVar(&opts.Scenario, "scenario", "", "only list runs of this scenario")

	return cmd
}

func runHistory(opts *HistoryOptions, dbPath string, cmd *cobra.Command) error {
	// Open would create an empty database.
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return NewExitError(ExitCommandError, fmt.Sprintf("database not found: %s", dbPath))
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open run database", err)
	}
	defer st.Close()

	runs, err := st.ListRuns(cmd.Context(), opts.Scenario)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	entries := make([]HistoryEntry, len(runs))
	for i, r := range runs {
		entries[i] = HistoryEntry{ID: r.ID, Seq: r.Seq, Scenario: r.Scenario, Pass: r.Pass, Digest: r.Digest}
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if opts.Format == "json" {
		return out.Success(entries)
	}
	if len(entries) == 0 {
		return out.Success(nil, "No runs recorded.")
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tSCENARIO\tPASS\tDIGEST\tID")
	for _, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%t\t%s\t%s\n", e.Seq, e.Scenario, e.Pass, shortDigest(e.Digest), e.ID)
	}
	return tw.Flush()
}

func shortDigest(d string) string {
	if len(d) > 12 {
		return d[:12]
	}
	return d
}
