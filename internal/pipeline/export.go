package pipeline

import (
	"context"
	"fmt"

	"github.com/statehouse/rollcall/internal/model"
)

// Export serializes one derived table as a canonical JSON array, one
// document per row. Byte-identical across runs over unchanged facts;
// the golden tests and the CLI table commands both read through here.

func (p *Pipeline) ExportOutcomes(ctx context.Context) ([]byte, error) {
	outcomes, err := p.store.ReadOutcomes(ctx)
	if err != nil {
		return nil, err
	}
	docs := make([]any, len(outcomes))
	for i, o := range outcomes {
		docs[i] = map[string]any{
			"bill_id":          o.BillID,
			"current_stage":    o.CurrentStage,
			"highest_stage":    o.HighestStage,
			"lifecycle_status": string(o.Status),
			"last_action_date": o.LastAction,
		}
	}
	return marshalDocs(docs, "outcomes")
}

func (p *Pipeline) ExportPanel(ctx context.Context) ([]byte, error) {
	rows, err := p.store.ReadPanel(ctx)
	if err != nil {
		return nil, err
	}
	docs := make([]any, len(rows))
	for i, r := range rows {
		docs[i] = map[string]any{
			"bill_id":               r.BillID,
			"snapshot_day":          r.SnapshotDay,
			"as_of_date":            r.AsOfDate,
			"features":              r.Features,
			"target_advanced_after": r.TargetAdvancedAfter,
			"target_law_after":      r.TargetLawAfter,
		}
	}
	return marshalDocs(docs, "panel")
}

func (p *Pipeline) ExportCoalitions(ctx context.Context) ([]byte, error) {
	rows, err := p.store.ReadCoalitions(ctx)
	if err != nil {
		return nil, err
	}
	docs := make([]any, len(rows))
	for i, r := range rows {
		docs[i] = map[string]any{
			"member_id":    r.MemberID,
			"coalition_id": r.CoalitionID,
			"embedding":    r.Embedding,
		}
	}
	return marshalDocs(docs, "coalitions")
}

func (p *Pipeline) ExportAnomalies(ctx context.Context) ([]byte, error) {
	rows, err := p.store.ReadAnomalies(ctx)
	if err != nil {
		return nil, err
	}
	docs := make([]any, len(rows))
	for i, r := range rows {
		docs[i] = map[string]any{
			"bill_id":        r.BillID,
			"anomaly_score":  r.Score,
			"is_anomaly":     r.IsAnomaly,
			"anomaly_reason": r.Reason,
		}
	}
	return marshalDocs(docs, "anomalies")
}

func marshalDocs(docs []any, table string) ([]byte, error) {
	out, err := model.MarshalCanonical(docs)
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", table, err)
	}
	return append(out, '\n'), nil
}
