package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/statehouse/rollcall/internal/glossary"
)

// NewValidateCommand creates the validate command: load the glossary,
// run CUE schema validation, report the result without touching the
// database.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the rule glossary",
		Long: `Validate the rule glossary against the embedded CUE schema.

Checks the stage table, pattern lists, and vote thresholds. A failure
here is fatal for every other command, so validate runs it standalone
for fast feedback after editing a glossary override.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, cmd)
		},
	}
}

func runValidate(opts *RootOptions, cmd *cobra.Command) error {
	f := formatter(opts, cmd)

	g, err := glossary.NewLoader(opts.Glossary).Load()
	if err != nil {
		var cfgErr *glossary.ConfigurationError
		if errors.As(err, &cfgErr) {
			_ = f.Error(cfgErr.Code, cfgErr.Message, cfgErr.Path)
			return WrapExitError(ExitFailure, "glossary validation failed", err)
		}
		return WrapExitError(ExitCommandError, "glossary load failed", err)
	}

	f.VerboseLog("glossary version %d, %d stages, %d categories",
		g.Version, len(g.Stages), len(g.Categories))
	return f.Success(fmt.Sprintf("glossary valid (version %d)", g.Version))
}
