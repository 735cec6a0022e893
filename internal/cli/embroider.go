package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/tryeach/internal/preset"
	"github.com/roach88/tryeach/internal/selector"
)

// NewEmbroiderCommand creates the embroider command.
func NewEmbroiderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "embroider <safe|optimized>",
		Short: "Run the embroider-safe or embroider-optimized scenario",
		Long: `Run the project's tests under Embroider.

If the configuration declares a scenario named embroider-safe or
embroider-optimized it is used as is. Otherwise a default scenario is
generated that installs @embroider/core, @embroider/webpack,
@embroider/compat and @embroider/test-setup and sets
EMBROIDER_TEST_SETUP_OPTIONS.

Example:
  tryeach embroider safe
  tryeach embroider optimized --skip-cleanup`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var variant string
			if len(args) == 1 {
				variant = args[0]
			}
			if err := selector.ValidatePresetVariant(preset.EmbroiderFamily, variant); err != nil {
				return exitErrorFor(err)
			}
			return runScenarios(cmd.Context(), cmd, opts, runRequest{
				command: "embroider",
				selector: selector.Request{
					PresetFamily:  preset.EmbroiderFamily,
					PresetVariant: variant,
				},
			})
		},
	}

	addRunFlags(cmd.Flags(), opts)
	return cmd
}
