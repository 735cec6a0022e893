package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/roach88/tryeach/internal/report"
	"github.com/roach88/tryeach/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Limit int
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List recorded runs or show one run's results",
		Long: `List runs recorded in the history database, newest first.

With a run ID, print that run's scenario results.

Example:
  tryeach history --limit 5
  tryeach history 01928f3e-7c1a-7b2e-9d4f-0a1b2c3d4e5f --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, opts, args)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "maximum number of runs to list (0 for all)")
	return cmd
}

func runHistory(cmd *cobra.Command, opts *HistoryOptions, args []string) error {
	if opts.HistoryDB == "" {
		return usageError("run history is disabled (--history-db is empty)")
	}

	p, err := opts.loadProject()
	if err != nil {
		return err
	}
	st, err := opts.openHistory(p)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open history database", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if len(args) == 0 {
		runs, err := st.ListRuns(ctx, opts.Limit)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list runs", err)
		}
		if opts.Format == "json" {
			return (&OutputFormatter{Format: "json", Writer: out}).Success(runs)
		}
		return report.WriteRuns(out, runs, report.ColorEnabled(out))
	}

	results, err := st.RunResults(ctx, args[0])
	if errors.Is(err, store.ErrRunNotFound) {
		return WrapExitError(ExitCommandError, "unknown run", err)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}

	summary := report.Summarize(results)
	summary.RunID = args[0]
	return writeSummary(cmd, opts.RootOptions, summary)
}
