package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/voyager/internal/config"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid     bool   `json:"valid"`
	Scenario  string `json:"scenario"`
	Resources int    `json:"resources,omitempty"`
	Units     int    `json:"units,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <scenario.yaml>",
		Short: "Validate a scenario file without running it",
		Long: `Validate a voyage scenario against the schema and cross-reference
checks: required fields, non-negative quantities, capacity bounds, and
unit bindings naming declared resources.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	scenario, err := config.Load(path)
	if err != nil {
		if outErr := formatter.Error(err.Error(), nil); outErr != nil {
			return WrapExitError(ExitCommandError, "output error", outErr)
		}
		return NewExitError(ExitFailure, "scenario invalid")
	}

	formatter.VerboseLog("Scenario %s: %d resource(s), %d unit(s)",
		path, len(scenario.Resources), len(scenario.Units))

	if opts.Format == "json" {
		return formatter.Success(ValidationResult{
			Valid:     true,
			Scenario:  path,
			Resources: len(scenario.Resources),
			Units:     len(scenario.Units),
		})
	}
	return formatter.Success("Scenario valid.")
}
