package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/tryeach/internal/scenario"
	"github.com/roach88/tryeach/internal/selector"
)

// NewEachCommand creates the each command.
func NewEachCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "each",
		Short: "Run every configured scenario",
		Long: `Run the project's tests once per scenario, in configuration order.

Failing scenarios are reported and the run continues; pass --fail-fast to
stop at the first scenario that is not allowed to fail.

Example:
  tryeach each
  tryeach each --config-path config/ci-scenarios.yaml --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarios(cmd.Context(), cmd, opts, runRequest{command: "each"})
		},
	}

	addRunFlags(cmd.Flags(), opts)
	return cmd
}

// NewOneCommand creates the one command.
func NewOneCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "one <scenario>...",
		Short: "Run the named scenarios",
		Long: `Run only the named scenarios, in the order given.

Names must match configured scenario names exactly.

Example:
  tryeach one ember-lts-4.12
  tryeach one ember-release ember-beta --skip-cleanup`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarios(cmd.Context(), cmd, opts, runRequest{
				command:  "one",
				selector: selector.Request{Names: args},
			})
		},
	}

	addRunFlags(cmd.Flags(), opts)
	return cmd
}

// NewEmberCommand creates the ember command.
func NewEmberCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "ember <semver-range>",
		Short: "Run one scenario per ember-source version in a range",
		Long: `Expand a semver range of ember-source versions into scenarios and run them.

The range replaces any versionCompatibility declared in package.json and is
merged into the configured scenarios. Exact versions resolve offline; other
ranges query the npm registry (TRYEACH_REGISTRY overrides the URL) and keep
the newest patch of each minor line.

Example:
  tryeach ember "=4.12.0 || =5.4.0"
  tryeach ember ">=4.8.0 <5.0.0" --fail-fast`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == "" {
				return usageError("The `tryeach ember <semver-range>` command requires a non-empty range.")
			}
			return runScenarios(cmd.Context(), cmd, opts, runRequest{
				command:  "ember",
				override: scenario.VersionCompatibility{"ember": args[0]},
			})
		},
	}

	addRunFlags(cmd.Flags(), opts)
	return cmd
}
