package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/tryeach/internal/config"
	"github.com/roach88/tryeach/internal/scenario"
)

// ConfigOptions holds flags for the config command.
type ConfigOptions struct {
	*RootOptions
	ConfigPath string
	Ember      string
}

// NewConfigCommand creates the config command.
func NewConfigCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ConfigOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the resolved configuration",
		Long: `Resolve the configuration exactly as a run would and print it.

Version-compatibility scenarios are expanded and merged, so the output lists
every scenario "tryeach each" would run.

Example:
  tryeach config
  tryeach config --ember ">=4.12.0 <5.0.0" --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfig(cmd, opts)
		},
	}

	addConfigPathFlag(cmd.Flags(), &opts.ConfigPath)
	cmd.Flags().StringVar(&opts.Ember, "ember", "", "ember-source semver range to expand instead of the declared one")
	return cmd
}

func runConfig(cmd *cobra.Command, opts *ConfigOptions) error {
	logger := opts.logger(cmd.ErrOrStderr())

	p, err := opts.loadProject()
	if err != nil {
		return err
	}

	var override scenario.VersionCompatibility
	if opts.Ember != "" {
		override = scenario.VersionCompatibility{"ember": opts.Ember}
	}

	cfg, err := config.NewResolver(opts.expander(logger), logger).Resolve(cmd.Context(), config.Input{
		Project:              p,
		ConfigPath:           opts.ConfigPath,
		VersionCompatibility: override,
	})
	if err != nil {
		return exitErrorFor(err)
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if opts.Format == "json" {
		return formatter.Success(cfg)
	}

	text, err := configYAML(cfg)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to render configuration", err)
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), text)
	return err
}

// configYAML renders cfg as YAML through its JSON form so custom fields are
// included.
func configYAML(cfg *scenario.Configuration) (string, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return "", err
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return "", err
	}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
