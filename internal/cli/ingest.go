package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/statehouse/rollcall/internal/ingest"
	"github.com/statehouse/rollcall/internal/store"
)

// IngestResult is the success payload of the ingest command.
type IngestResult struct {
	Bills        int `json:"bills"`
	Actions      int `json:"actions"`
	Members      int `json:"members"`
	VoteCasts    int `json:"vote_casts"`
	WitnessSlips int `json:"witness_slips"`
	Sponsorships int `json:"sponsorships"`
	Warnings     int `json:"warnings"`
	Skipped      int `json:"skipped"`
}

func (r IngestResult) String() string {
	return fmt.Sprintf(
		"ingested %d bills, %d actions, %d members, %d casts, %d slips, %d sponsorships (%d warnings, %d skipped)",
		r.Bills, r.Actions, r.Members, r.VoteCasts, r.WitnessSlips, r.Sponsorships, r.Warnings, r.Skipped)
}

// NewIngestCommand creates the ingest command: load a scraped JSON
// cache directory into the fact tables.
func NewIngestCommand(rootOpts *RootOptions) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "ingest <cache-dir>",
		Short: "Load scraped JSON cache files into the fact store",
		Long: `Load scraped JSON cache files into the fact store.

In lenient mode (default) records missing required fields are skipped
and counted. With --strict the first such record aborts the batch and
nothing is written.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(rootOpts, strict, args[0], cmd)
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "abort the batch on the first missing required field")
	return cmd
}

func runIngest(opts *RootOptions, strict bool, cacheDir string, cmd *cobra.Command) error {
	f := formatter(opts, cmd)

	mode := ingest.Lenient
	if strict {
		mode = ingest.Strict
	}
	batch, err := ingest.NewLoader(mode, nil).LoadDir(cacheDir)
	if err != nil {
		var dqe *ingest.DataQualityError
		if errors.As(err, &dqe) {
			_ = f.Error(dqe.Code, dqe.Error(), dqe.Record)
			return WrapExitError(ExitFailure, "ingest aborted", err)
		}
		return WrapExitError(ExitCommandError, "cache load failed", err)
	}

	s, err := store.Open(opts.DBPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "store open failed", err)
	}
	defer s.Close()

	if err := ingest.Persist(cmd.Context(), s, batch); err != nil {
		return WrapExitError(ExitCommandError, "persist failed", err)
	}

	return f.Success(IngestResult{
		Bills:        len(batch.Bills),
		Actions:      len(batch.Actions),
		Members:      len(batch.Members),
		VoteCasts:    len(batch.VoteCasts),
		WitnessSlips: len(batch.WitnessSlips),
		Sponsorships: len(batch.Sponsorships),
		Warnings:     batch.Warnings,
		Skipped:      batch.Skipped,
	})
}
