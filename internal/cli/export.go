package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewExportCommand creates one derived-table print command. All four
// tables share the mechanics: read the table in deterministic order and
// write it as a canonical JSON array, regardless of --format, since the
// output is data rather than a status report.
func NewExportCommand(rootOpts *RootOptions, table, short string) *cobra.Command {
	return &cobra.Command{
		Use:           table,
		Short:         short,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(rootOpts, table, cmd)
		},
	}
}

func runExport(opts *RootOptions, table string, cmd *cobra.Command) error {
	p, s, err := openPipeline(opts)
	if err != nil {
		return err
	}
	defer s.Close()

	var fn func(context.Context) ([]byte, error)
	switch table {
	case "outcomes":
		fn = p.ExportOutcomes
	case "panel":
		fn = p.ExportPanel
	case "coalitions":
		fn = p.ExportCoalitions
	case "anomalies":
		fn = p.ExportAnomalies
	default:
		return WrapExitError(ExitCommandError, fmt.Sprintf("unknown table %q", table), nil)
	}

	out, err := fn(cmd.Context())
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("export %s failed", table), err)
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}
