// Package pipeline orchestrates the derived-table rebuild: outcomes,
// panel, coalitions, anomalies, in that order. Each stage reads facts
// from the store, recomputes its table wholesale, and replaces it. Per-
// bill failures are isolated: one bill's bad data costs that bill's
// rows, never the stage.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/statehouse/rollcall/internal/action"
	"github.com/statehouse/rollcall/internal/anomaly"
	"github.com/statehouse/rollcall/internal/coalition"
	"github.com/statehouse/rollcall/internal/glossary"
	"github.com/statehouse/rollcall/internal/lifecycle"
	"github.com/statehouse/rollcall/internal/model"
	"github.com/statehouse/rollcall/internal/panel"
	"github.com/statehouse/rollcall/internal/roster"
	"github.com/statehouse/rollcall/internal/store"
)

// Pipeline wires the analytics stages over one store.
type Pipeline struct {
	store    *store.Store
	glossary *glossary.Glossary
	machine  *lifecycle.Machine
	classes  *action.Classifier
	panelCfg panel.Config
	clock    panel.Clock
	logger   *slog.Logger
}

// New builds a pipeline. A nil clock means wall time; a nil logger
// means slog.Default().
func New(s *store.Store, g *glossary.Glossary, cfg panel.Config, clock panel.Clock, logger *slog.Logger) (*Pipeline, error) {
	classifier := action.New(g)
	machine, err := lifecycle.New(g, classifier)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	if clock == nil {
		clock = panel.WallClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		store:    s,
		glossary: g,
		machine:  machine,
		classes:  classifier,
		panelCfg: cfg,
		clock:    clock,
		logger:   logger,
	}, nil
}

// Run executes every stage in order and records a run summary. A stage
// that fails outright marks the summary failed but later stages still
// run; they read facts, not each other's output.
func (p *Pipeline) Run(ctx context.Context, warnings int) (model.RunSummary, error) {
	run := model.RunSummary{
		RunID:    uuid.NewString(),
		Started:  time.Now().UTC().Format(time.RFC3339),
		Warnings: warnings,
	}
	logger := p.logger.With("run_id", run.RunID)
	logger.Info("pipeline run starting")

	var firstErr error
	for _, stage := range []struct {
		name string
		fn   func(context.Context) (int, int, error)
	}{
		{"outcomes", p.runOutcomes},
		{"panel", p.runPanel},
		{"coalitions", p.runCoalitions},
		{"anomalies", p.runAnomalies},
	} {
		rows, failures, err := stage.fn(ctx)
		summary := model.StageSummary{
			Name:     stage.name,
			Rows:     rows,
			Failures: failures,
			Passed:   err == nil,
		}
		run.Stages = append(run.Stages, summary)
		if err != nil {
			logger.Error("stage failed", "stage", stage.name, "error", err)
			if firstErr == nil {
				firstErr = fmt.Errorf("stage %s: %w", stage.name, err)
			}
			continue
		}
		logger.Info("stage complete", "stage", stage.name, "rows", rows, "failures", failures)
	}

	if err := p.store.WriteRunSummary(ctx, run); err != nil {
		logger.Error("run summary not recorded", "error", err)
		if firstErr == nil {
			firstErr = err
		}
	}
	return run, firstErr
}

// runOutcomes folds every bill's action history into an outcome row.
func (p *Pipeline) runOutcomes(ctx context.Context) (rows, failures int, err error) {
	bills, err := p.store.ReadBills(ctx)
	if err != nil {
		return 0, 0, err
	}
	actions, err := p.store.ReadActions(ctx)
	if err != nil {
		return 0, 0, err
	}
	byBill := groupActions(actions)

	outcomes := make([]model.BillOutcome, 0, len(bills))
	for _, bill := range bills {
		outcomes = append(outcomes, p.machine.Outcome(bill, byBill[bill.BillID]))
	}
	if err := p.store.ReplaceOutcomes(ctx, outcomes); err != nil {
		return 0, 0, err
	}
	return len(outcomes), 0, nil
}

// runPanel builds leakage-free training rows for every mature
// (bill, snapshot) pair.
func (p *Pipeline) runPanel(ctx context.Context) (rows, failures int, err error) {
	bills, err := p.store.ReadBills(ctx)
	if err != nil {
		return 0, 0, err
	}
	actions, err := p.store.ReadActions(ctx)
	if err != nil {
		return 0, 0, err
	}
	sponsors, err := p.store.ReadSponsorships(ctx)
	if err != nil {
		return 0, 0, err
	}
	byBill := groupActions(actions)
	sponsorsByBill := map[string][]model.SponsorshipRow{}
	for _, sp := range sponsors {
		sponsorsByBill[sp.BillID] = append(sponsorsByBill[sp.BillID], sp)
	}

	builder := panel.NewBuilder(p.machine, p.panelCfg, p.clock)
	var out []model.PanelRow
	for _, bill := range bills {
		billRows, billErr := p.buildPanelRows(builder, bill, byBill[bill.BillID], sponsorsByBill[bill.BillID])
		if billErr != nil {
			failures++
			p.logger.Warn("panel rows skipped", "bill", bill.BillID, "error", billErr)
			continue
		}
		out = append(out, billRows...)
	}
	if err := p.store.ReplacePanel(ctx, out); err != nil {
		return 0, failures, err
	}
	return len(out), failures, nil
}

// buildPanelRows isolates one bill's row construction so a panic in
// feature code costs that bill only.
func (p *Pipeline) buildPanelRows(builder *panel.Builder, bill model.BillRow, actions []model.ActionRecord, sponsors []model.SponsorshipRow) (rows []model.PanelRow, err error) {
	defer func() {
		if r := recover(); r != nil {
			rows, err = nil, fmt.Errorf("bill %s: %v", bill.BillID, r)
		}
	}()
	classified := p.classes.ClassifyAll(actions)
	return builder.Rows(bill, classified, sponsors), nil
}

// runCoalitions discovers voting blocs from roll calls and
// co-sponsorships, resolving raw roster names first.
func (p *Pipeline) runCoalitions(ctx context.Context) (rows, failures int, err error) {
	members, err := p.store.ReadMembers(ctx)
	if err != nil {
		return 0, 0, err
	}
	casts, err := p.store.ReadVoteCasts(ctx)
	if err != nil {
		return 0, 0, err
	}
	sponsors, err := p.store.ReadSponsorships(ctx)
	if err != nil {
		return 0, 0, err
	}
	bills, err := p.store.ReadBills(ctx)
	if err != nil {
		return 0, 0, err
	}

	chamberByBill := map[string]model.Chamber{}
	for _, b := range bills {
		chamberByBill[b.BillID] = b.Chamber
	}
	resolver := roster.NewResolver(members)
	casts, unresolved := resolver.ResolveCasts(casts, chamberByBill)
	if unresolved > 0 {
		p.logger.Warn("unresolved roster names excluded from coalition graph", "count", unresolved)
	}

	coalitions, report, err := coalition.Discover(members, casts, sponsors)
	if err != nil {
		return 0, unresolved, err
	}
	p.logger.Info("coalitions discovered",
		"clusters", report.ClusterCount,
		"cross_party", report.CrossPartyBlocs)

	if err := p.store.ReplaceCoalitions(ctx, coalitions); err != nil {
		return 0, unresolved, err
	}
	return len(coalitions), unresolved, nil
}

// runAnomalies scores witness-slip concentration per bill.
func (p *Pipeline) runAnomalies(ctx context.Context) (rows, failures int, err error) {
	slips, err := p.store.ReadWitnessSlips(ctx)
	if err != nil {
		return 0, 0, err
	}
	anomalies := anomaly.Detect(slips, p.logger)
	if err := p.store.ReplaceAnomalies(ctx, anomalies); err != nil {
		return 0, 0, err
	}
	return len(anomalies), 0, nil
}

func groupActions(actions []model.ActionRecord) map[string][]model.ActionRecord {
	byBill := map[string][]model.ActionRecord{}
	for _, a := range actions {
		byBill[a.BillID] = append(byBill[a.BillID], a)
	}
	return byBill
}
