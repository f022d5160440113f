package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/statehouse/rollcall/internal/glossary"
	"github.com/statehouse/rollcall/internal/model"
	"github.com/statehouse/rollcall/internal/panel"
	"github.com/statehouse/rollcall/internal/pipeline"
	"github.com/statehouse/rollcall/internal/store"
)

// RunResult wraps the run summary for output formatting.
type RunResult struct {
	model.RunSummary
}

func (r RunResult) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "run %s\n", r.RunID)
	for _, st := range r.Stages {
		status := "PASS"
		if !st.Passed {
			status = "FAIL"
		}
		fmt.Fprintf(&b, "  %-12s %s  rows=%d failures=%d\n", st.Name, status, st.Rows, st.Failures)
	}
	fmt.Fprintf(&b, "  warnings: %d", r.Warnings)
	return b.String()
}

// NewRunCommand creates the run command: rebuild every derived table
// from the fact store.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Rebuild all derived tables (outcomes, panel, coalitions, anomalies)",
		Long: `Rebuild every derived table from the fact store, in dependency-free
stage order. Each stage recomputes its table wholesale and replaces it
in one transaction; per-bill failures cost that bill's rows only. The
run summary is recorded in pipeline_runs.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(rootOpts, cmd)
		},
	}
}

func runPipeline(opts *RootOptions, cmd *cobra.Command) error {
	f := formatter(opts, cmd)

	p, s, err := openPipeline(opts)
	if err != nil {
		return err
	}
	defer s.Close()

	summary, runErr := p.Run(cmd.Context(), 0)
	result := RunResult{summary}
	if runErr != nil {
		_ = f.Error("PIPELINE_STAGE_FAILED", runErr.Error(), result)
		return WrapExitError(ExitFailure, "pipeline run failed", runErr)
	}
	return f.Success(result)
}

// openPipeline opens the store and builds a pipeline over it. Callers
// must close the returned store.
func openPipeline(opts *RootOptions) (*pipeline.Pipeline, *store.Store, error) {
	g, err := glossary.NewLoader(opts.Glossary).Load()
	if err != nil {
		var cfgErr *glossary.ConfigurationError
		if errors.As(err, &cfgErr) {
			return nil, nil, WrapExitError(ExitFailure, "glossary invalid", err)
		}
		return nil, nil, WrapExitError(ExitCommandError, "glossary load failed", err)
	}

	s, err := store.Open(opts.DBPath)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "store open failed", err)
	}

	p, err := pipeline.New(s, g, panel.DefaultConfig(), nil, nil)
	if err != nil {
		s.Close()
		return nil, nil, WrapExitError(ExitCommandError, "pipeline construction failed", err)
	}
	return p, s, nil
}
