package store

import (
	"context"
	"fmt"

	"github.com/statehouse/rollcall/internal/model"
)

// ReplaceOutcomes rebuilds the bill_outcomes table from a run's results.
// DELETE plus reinsert in one transaction keeps the table consistent for
// concurrent readers.
func (s *Store) ReplaceOutcomes(ctx context.Context, outcomes []model.BillOutcome) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace outcomes: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM bill_outcomes`); err != nil {
		return fmt.Errorf("replace outcomes: clear: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO bill_outcomes
		(bill_id, current_stage, highest_stage, lifecycle_status, last_action_date)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("replace outcomes: prepare: %w", err)
	}
	defer stmt.Close()

	for _, o := range outcomes {
		if _, err := stmt.ExecContext(ctx,
			o.BillID, o.CurrentStage, o.HighestStage, string(o.Status), o.LastAction.String(),
		); err != nil {
			return fmt.Errorf("replace outcomes: insert %s: %w", o.BillID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("replace outcomes: commit: %w", err)
	}
	return nil
}

// ReplacePanel rebuilds the panel_rows table. Feature maps are stored
// as canonical JSON so identical inputs produce byte-identical rows.
func (s *Store) ReplacePanel(ctx context.Context, rows []model.PanelRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace panel: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM panel_rows`); err != nil {
		return fmt.Errorf("replace panel: clear: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO panel_rows
		(bill_id, snapshot_day, as_of_date, features, target_advanced_after, target_law_after)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("replace panel: prepare: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		features, err := model.MarshalCanonical(r.Features)
		if err != nil {
			return fmt.Errorf("replace panel: features %s/%d: %w", r.BillID, r.SnapshotDay, err)
		}
		if _, err := stmt.ExecContext(ctx,
			r.BillID, r.SnapshotDay, r.AsOfDate.String(), string(features),
			r.TargetAdvancedAfter, r.TargetLawAfter,
		); err != nil {
			return fmt.Errorf("replace panel: insert %s/%d: %w", r.BillID, r.SnapshotDay, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("replace panel: commit: %w", err)
	}
	return nil
}

// ReplaceCoalitions rebuilds the coalitions table.
func (s *Store) ReplaceCoalitions(ctx context.Context, rows []model.CoalitionRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace coalitions: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM coalitions`); err != nil {
		return fmt.Errorf("replace coalitions: clear: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO coalitions (member_id, coalition_id, embedding)
		VALUES (?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("replace coalitions: prepare: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		embedding, err := model.MarshalCanonical(r.Embedding)
		if err != nil {
			return fmt.Errorf("replace coalitions: embedding %s: %w", r.MemberID, err)
		}
		if _, err := stmt.ExecContext(ctx,
			r.MemberID, r.CoalitionID, string(embedding),
		); err != nil {
			return fmt.Errorf("replace coalitions: insert %s: %w", r.MemberID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("replace coalitions: commit: %w", err)
	}
	return nil
}

// ReplaceAnomalies rebuilds the slip_anomalies table.
func (s *Store) ReplaceAnomalies(ctx context.Context, rows []model.AnomalyRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace anomalies: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM slip_anomalies`); err != nil {
		return fmt.Errorf("replace anomalies: clear: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO slip_anomalies (bill_id, anomaly_score, is_anomaly, anomaly_reason)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("replace anomalies: prepare: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx,
			r.BillID, r.Score, boolToInt(r.IsAnomaly), r.Reason,
		); err != nil {
			return fmt.Errorf("replace anomalies: insert %s: %w", r.BillID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("replace anomalies: commit: %w", err)
	}
	return nil
}

// WriteRunSummary appends one pipeline run record. Runs are never
// replaced; the table is the audit trail across runs.
func (s *Store) WriteRunSummary(ctx context.Context, run model.RunSummary) error {
	summary, err := model.MarshalCanonical(runSummaryDoc(run))
	if err != nil {
		return fmt.Errorf("write run summary: marshal: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO pipeline_runs (run_id, started, summary)
		VALUES (?, ?, ?)
		ON CONFLICT(run_id) DO NOTHING
	`, run.RunID, run.Started, string(summary))
	if err != nil {
		return fmt.Errorf("write run summary: %w", err)
	}
	return nil
}

// runSummaryDoc flattens a RunSummary into canonical-JSON-friendly maps.
func runSummaryDoc(run model.RunSummary) map[string]any {
	stages := make([]any, len(run.Stages))
	for i, st := range run.Stages {
		stages[i] = map[string]any{
			"name":     st.Name,
			"rows":     st.Rows,
			"failures": st.Failures,
			"passed":   st.Passed,
		}
	}
	return map[string]any{
		"run_id":   run.RunID,
		"started":  run.Started,
		"stages":   stages,
		"warnings": run.Warnings,
	}
}
