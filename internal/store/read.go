package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/statehouse/rollcall/internal/model"
)

// Every reader orders its result deterministically. Downstream output is
// compared byte-for-byte across runs, so SQLite's unspecified default
// row order can never be allowed to surface.

// ReadBills returns all bill dimension rows ordered by bill id.
func (s *Store) ReadBills(ctx context.Context) ([]model.BillRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT bill_id, bill_type, bill_number_raw, chamber, description, introduction_date
		FROM bills ORDER BY bill_id
	`)
	if err != nil {
		return nil, fmt.Errorf("read bills: %w", err)
	}
	defer rows.Close()

	var out []model.BillRow
	for rows.Next() {
		var b model.BillRow
		var chamber, intro string
		if err := rows.Scan(&b.BillID, &b.BillType, &b.BillNumberRaw, &chamber, &b.Description, &intro); err != nil {
			return nil, fmt.Errorf("read bills: scan: %w", err)
		}
		b.Chamber = model.Chamber(chamber)
		b.IntroductionDate = model.ParseDate(intro)
		out = append(out, b)
	}
	return out, rows.Err()
}

// ReadActions returns every action row in per-bill scrape order.
func (s *Store) ReadActions(ctx context.Context) ([]model.ActionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT bill_id, chamber, action_date, raw_text
		FROM actions ORDER BY bill_id, seq
	`)
	if err != nil {
		return nil, fmt.Errorf("read actions: %w", err)
	}
	defer rows.Close()

	var out []model.ActionRecord
	for rows.Next() {
		var a model.ActionRecord
		var chamber, date string
		if err := rows.Scan(&a.BillID, &chamber, &date, &a.RawText); err != nil {
			return nil, fmt.Errorf("read actions: scan: %w", err)
		}
		a.Chamber = model.Chamber(chamber)
		a.Date = model.ParseDate(date)
		out = append(out, a)
	}
	return out, rows.Err()
}

// ReadActionsForBill returns one bill's actions in scrape order.
func (s *Store) ReadActionsForBill(ctx context.Context, billID string) ([]model.ActionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT bill_id, chamber, action_date, raw_text
		FROM actions WHERE bill_id = ? ORDER BY seq
	`, billID)
	if err != nil {
		return nil, fmt.Errorf("read actions for %s: %w", billID, err)
	}
	defer rows.Close()

	var out []model.ActionRecord
	for rows.Next() {
		var a model.ActionRecord
		var chamber, date string
		if err := rows.Scan(&a.BillID, &chamber, &date, &a.RawText); err != nil {
			return nil, fmt.Errorf("read actions for %s: scan: %w", billID, err)
		}
		a.Chamber = model.Chamber(chamber)
		a.Date = model.ParseDate(date)
		out = append(out, a)
	}
	return out, rows.Err()
}

// ReadMembers returns the legislator dimension ordered by member id.
func (s *Store) ReadMembers(ctx context.Context) ([]model.MemberRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT member_id, name, party, chamber, district
		FROM members ORDER BY member_id
	`)
	if err != nil {
		return nil, fmt.Errorf("read members: %w", err)
	}
	defer rows.Close()

	var out []model.MemberRow
	for rows.Next() {
		var m model.MemberRow
		var chamber string
		if err := rows.Scan(&m.MemberID, &m.Name, &m.Party, &chamber, &m.District); err != nil {
			return nil, fmt.Errorf("read members: scan: %w", err)
		}
		m.Chamber = model.Chamber(chamber)
		out = append(out, m)
	}
	return out, rows.Err()
}

// ReadVoteCasts returns all cast rows ordered by event, member, raw name.
func (s *Store) ReadVoteCasts(ctx context.Context) ([]model.VoteCastRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT vote_event_id, bill_id, member_id, raw_name, vote_cast
		FROM vote_casts ORDER BY vote_event_id, member_id, raw_name
	`)
	if err != nil {
		return nil, fmt.Errorf("read vote casts: %w", err)
	}
	defer rows.Close()

	var out []model.VoteCastRow
	for rows.Next() {
		var c model.VoteCastRow
		var cast string
		if err := rows.Scan(&c.VoteEventID, &c.BillID, &c.MemberID, &c.RawName, &cast); err != nil {
			return nil, fmt.Errorf("read vote casts: scan: %w", err)
		}
		c.Cast = model.VoteCast(cast)
		out = append(out, c)
	}
	return out, rows.Err()
}

// ReadWitnessSlips returns all slip rows in per-bill filing order.
func (s *Store) ReadWitnessSlips(ctx context.Context) ([]model.WitnessSlipRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT bill_id, position, organization, name, testimony_type
		FROM witness_slips ORDER BY bill_id, seq
	`)
	if err != nil {
		return nil, fmt.Errorf("read witness slips: %w", err)
	}
	defer rows.Close()

	var out []model.WitnessSlipRow
	for rows.Next() {
		var w model.WitnessSlipRow
		var position string
		if err := rows.Scan(&w.BillID, &position, &w.Organization, &w.Name, &w.TestimonyType); err != nil {
			return nil, fmt.Errorf("read witness slips: scan: %w", err)
		}
		w.Position = model.SlipPosition(position)
		out = append(out, w)
	}
	return out, rows.Err()
}

// ReadSponsorships returns all sponsorship links ordered by bill, member.
func (s *Store) ReadSponsorships(ctx context.Context) ([]model.SponsorshipRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT bill_id, member_id, is_primary, sponsor_date
		FROM sponsorships ORDER BY bill_id, member_id
	`)
	if err != nil {
		return nil, fmt.Errorf("read sponsorships: %w", err)
	}
	defer rows.Close()

	var out []model.SponsorshipRow
	for rows.Next() {
		var sp model.SponsorshipRow
		var primary int
		var date string
		if err := rows.Scan(&sp.BillID, &sp.MemberID, &primary, &date); err != nil {
			return nil, fmt.Errorf("read sponsorships: scan: %w", err)
		}
		sp.Primary = primary != 0
		sp.Date = model.ParseDate(date)
		out = append(out, sp)
	}
	return out, rows.Err()
}

// ReadOutcomes returns the derived outcomes ordered by bill id.
func (s *Store) ReadOutcomes(ctx context.Context) ([]model.BillOutcome, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT bill_id, current_stage, highest_stage, lifecycle_status, last_action_date
		FROM bill_outcomes ORDER BY bill_id
	`)
	if err != nil {
		return nil, fmt.Errorf("read outcomes: %w", err)
	}
	defer rows.Close()

	var out []model.BillOutcome
	for rows.Next() {
		var o model.BillOutcome
		var status, last string
		if err := rows.Scan(&o.BillID, &o.CurrentStage, &o.HighestStage, &status, &last); err != nil {
			return nil, fmt.Errorf("read outcomes: scan: %w", err)
		}
		o.Status = model.LifecycleStatus(status)
		o.LastAction = model.ParseDate(last)
		out = append(out, o)
	}
	return out, rows.Err()
}

// ReadPanel returns panel rows ordered by bill id then snapshot day.
func (s *Store) ReadPanel(ctx context.Context) ([]model.PanelRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT bill_id, snapshot_day, as_of_date, features, target_advanced_after, target_law_after
		FROM panel_rows ORDER BY bill_id, snapshot_day
	`)
	if err != nil {
		return nil, fmt.Errorf("read panel: %w", err)
	}
	defer rows.Close()

	var out []model.PanelRow
	for rows.Next() {
		var r model.PanelRow
		var asOf, features string
		if err := rows.Scan(&r.BillID, &r.SnapshotDay, &asOf, &features, &r.TargetAdvancedAfter, &r.TargetLawAfter); err != nil {
			return nil, fmt.Errorf("read panel: scan: %w", err)
		}
		r.AsOfDate = model.ParseDate(asOf)
		if err := json.Unmarshal([]byte(features), &r.Features); err != nil {
			return nil, fmt.Errorf("read panel: features %s/%d: %w", r.BillID, r.SnapshotDay, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ReadCoalitions returns coalition assignments ordered by member id.
func (s *Store) ReadCoalitions(ctx context.Context) ([]model.CoalitionRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT member_id, coalition_id, embedding
		FROM coalitions ORDER BY member_id
	`)
	if err != nil {
		return nil, fmt.Errorf("read coalitions: %w", err)
	}
	defer rows.Close()

	var out []model.CoalitionRow
	for rows.Next() {
		var r model.CoalitionRow
		var embedding string
		if err := rows.Scan(&r.MemberID, &r.CoalitionID, &embedding); err != nil {
			return nil, fmt.Errorf("read coalitions: scan: %w", err)
		}
		if err := json.Unmarshal([]byte(embedding), &r.Embedding); err != nil {
			return nil, fmt.Errorf("read coalitions: embedding %s: %w", r.MemberID, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ReadAnomalies returns anomaly rows ordered by bill id.
func (s *Store) ReadAnomalies(ctx context.Context) ([]model.AnomalyRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT bill_id, anomaly_score, is_anomaly, anomaly_reason
		FROM slip_anomalies ORDER BY bill_id
	`)
	if err != nil {
		return nil, fmt.Errorf("read anomalies: %w", err)
	}
	defer rows.Close()

	var out []model.AnomalyRow
	for rows.Next() {
		var r model.AnomalyRow
		var flagged int
		if err := rows.Scan(&r.BillID, &r.Score, &flagged, &r.Reason); err != nil {
			return nil, fmt.Errorf("read anomalies: scan: %w", err)
		}
		r.IsAnomaly = flagged != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

// ReadRunSummaries returns raw run summary documents, oldest first.
func (s *Store) ReadRunSummaries(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT summary FROM pipeline_runs ORDER BY started, run_id
	`)
	if err != nil {
		return nil, fmt.Errorf("read run summaries: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var summary string
		if err := rows.Scan(&summary); err != nil {
			return nil, fmt.Errorf("read run summaries: scan: %w", err)
		}
		out = append(out, summary)
	}
	return out, rows.Err()
}
