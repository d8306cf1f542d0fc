package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/sparqlconn/internal/connector"
	"github.com/roach88/sparqlconn/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Limit    int
}

// HistoryResult is the JSON payload of the history command.
type HistoryResult struct {
	Runs []connector.Run `json:"runs"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded fetch runs",
		Long: `List fetch runs recorded with fetch --db, newest first.

Example:
  sparqlconn history --db ./runs.db --limit 5`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum runs to list (0 for all)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	st, err := store.Open(opts.Database)
	if err != nil {
		return formatter.FailCode(ErrCodeStore, ExitCommandError, "failed to open database", err)
	}
	defer closeStore(st, logger)

	ctx, cancel := commandContext(cmd)
	defer cancel()

	runs, err := st.ListRuns(ctx, opts.Limit)
	if err != nil {
		return formatter.FailCode(ErrCodeStore, ExitCommandError, "failed to list runs", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(HistoryResult{Runs: runs})
	}

	w := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}
	fmt.Fprintf(w, "Runs: %d\n", len(runs))
	for _, r := range runs {
		status := "✓"
		if r.Status != connector.RunStatusSuccess {
			status = "✗"
		}
		fmt.Fprintf(w, "%s %s  %s  %s\n", status, r.StartedAt.Format(time.RFC3339), r.ID, r.Endpoint)
		if r.Status == connector.RunStatusSuccess {
			fmt.Fprintf(w, "    rows: %d  duration: %s\n", r.RowCount, r.Duration)
		} else {
			fmt.Fprintf(w, "    error: %s  duration: %s\n", r.ErrorCode, r.Duration)
		}
		if opts.Verbose {
			fmt.Fprintf(w, "    query: %s\n", r.QueryHash)
		}
	}
	return nil
}
