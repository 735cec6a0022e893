package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/tryeach/internal/deps"
)

// NewResetCommand creates the reset command.
func NewResetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := rootOpts

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Restore dependencies left behind by an interrupted run",
		Long: `Restore package.json and the lockfile from .tryeach/backup and reinstall.

Use this after a run was killed before it could clean up, or after a run
with --skip-cleanup.

Example:
  tryeach reset`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := opts.logger(cmd.ErrOrStderr())

			p, err := opts.loadProject()
			if err != nil {
				return err
			}

			pm := deps.DetectPackageManager(p.Root)
			applier := deps.NewNpmApplier(p.Root, pm, opts.runner(logger), logger)
			applier.Stream = cmd.ErrOrStderr()

			found, err := applier.Reset(cmd.Context())
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to restore dependencies", err)
			}

			formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
			if opts.Format == "json" {
				return formatter.Success(map[string]any{"restored": found, "packageManager": pm})
			}
			if !found {
				return formatter.Success("Nothing to reset.")
			}
			return formatter.Success(fmt.Sprintf("Restored original dependencies (%s).", pm))
		},
	}

	return cmd
}
