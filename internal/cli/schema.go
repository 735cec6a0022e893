package cli

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"

	"github.com/roach88/tryeach/internal/scenario"
)

// ConfigSchema returns the JSON schema of the configuration file.
func ConfigSchema() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		AllowAdditionalProperties: true,
		ExpandedStruct:            true,
	}
	schema := r.Reflect(&scenario.Configuration{})
	schema.Title = "tryeach configuration"
	schema.Description = "Scenarios for config/try-each.{yaml,yml,json,toml,cue}."
	return schema
}

// NewSchemaCommand creates the schema command.
func NewSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the configuration JSON schema",
		Long: `Print the JSON schema of the configuration file, for editor
integration and validation in CI.

Example:
  tryeach schema > try-each.schema.json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := json.MarshalIndent(ConfigSchema(), "", "  ")
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to render schema", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
	return cmd
}
