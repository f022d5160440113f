package store

import (
	"context"
	"fmt"

	"github.com/statehouse/rollcall/internal/model"
)

// WriteBills upserts bill dimension rows. Re-ingesting the same scrape
// is a no-op; a changed row for an existing bill id replaces it, since
// the scraper's latest snapshot is authoritative for dimensions.
func (s *Store) WriteBills(ctx context.Context, bills []model.BillRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write bills: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO bills
		(bill_id, bill_type, bill_number_raw, chamber, description, introduction_date)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(bill_id) DO UPDATE SET
			bill_type = excluded.bill_type,
			bill_number_raw = excluded.bill_number_raw,
			chamber = excluded.chamber,
			description = excluded.description,
			introduction_date = excluded.introduction_date
	`)
	if err != nil {
		return fmt.Errorf("write bills: prepare: %w", err)
	}
	defer stmt.Close()

	for _, b := range bills {
		if _, err := stmt.ExecContext(ctx,
			b.BillID, b.BillType, b.BillNumberRaw, string(b.Chamber),
			b.Description, b.IntroductionDate.String(),
		); err != nil {
			return fmt.Errorf("write bills: insert %s: %w", b.BillID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write bills: commit: %w", err)
	}
	return nil
}

// WriteActions replaces the action history of every bill present in the
// batch. Scrape order is preserved via the per-bill sequence number;
// the pipeline never resorts actions.
func (s *Store) WriteActions(ctx context.Context, actions []model.ActionRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write actions: begin tx: %w", err)
	}
	defer tx.Rollback()

	// A re-scrape may shorten or reorder a bill's history, so stale
	// rows for the batch's bills are dropped first.
	seen := map[string]bool{}
	for _, a := range actions {
		if seen[a.BillID] {
			continue
		}
		seen[a.BillID] = true
		if _, err := tx.ExecContext(ctx, `DELETE FROM actions WHERE bill_id = ?`, a.BillID); err != nil {
			return fmt.Errorf("write actions: clear %s: %w", a.BillID, err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO actions (bill_id, seq, chamber, action_date, raw_text)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("write actions: prepare: %w", err)
	}
	defer stmt.Close()

	seq := map[string]int{}
	for _, a := range actions {
		n := seq[a.BillID]
		seq[a.BillID] = n + 1
		if _, err := stmt.ExecContext(ctx,
			a.BillID, n, string(a.Chamber), a.Date.String(), a.RawText,
		); err != nil {
			return fmt.Errorf("write actions: insert %s[%d]: %w", a.BillID, n, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write actions: commit: %w", err)
	}
	return nil
}

// WriteMembers upserts the legislator dimension.
func (s *Store) WriteMembers(ctx context.Context, members []model.MemberRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write members: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO members (member_id, name, party, chamber, district)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(member_id) DO UPDATE SET
			name = excluded.name,
			party = excluded.party,
			chamber = excluded.chamber,
			district = excluded.district
	`)
	if err != nil {
		return fmt.Errorf("write members: prepare: %w", err)
	}
	defer stmt.Close()

	for _, m := range members {
		if _, err := stmt.ExecContext(ctx,
			m.MemberID, m.Name, m.Party, string(m.Chamber), m.District,
		); err != nil {
			return fmt.Errorf("write members: insert %s: %w", m.MemberID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write members: commit: %w", err)
	}
	return nil
}

// WriteVoteCasts inserts roll-call cast rows. Duplicate rows for the
// same (event, member, raw name) are silently ignored for idempotency.
func (s *Store) WriteVoteCasts(ctx context.Context, casts []model.VoteCastRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write vote casts: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO vote_casts (vote_event_id, bill_id, member_id, raw_name, vote_cast)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(vote_event_id, member_id, raw_name) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("write vote casts: prepare: %w", err)
	}
	defer stmt.Close()

	for _, c := range casts {
		if _, err := stmt.ExecContext(ctx,
			c.VoteEventID, c.BillID, c.MemberID, c.RawName, string(c.Cast),
		); err != nil {
			return fmt.Errorf("write vote casts: insert %s: %w", c.VoteEventID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write vote casts: commit: %w", err)
	}
	return nil
}

// WriteWitnessSlips replaces the slip filings of every bill present in
// the batch, preserving filing order.
func (s *Store) WriteWitnessSlips(ctx context.Context, slips []model.WitnessSlipRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write witness slips: begin tx: %w", err)
	}
	defer tx.Rollback()

	seen := map[string]bool{}
	for _, w := range slips {
		if seen[w.BillID] {
			continue
		}
		seen[w.BillID] = true
		if _, err := tx.ExecContext(ctx, `DELETE FROM witness_slips WHERE bill_id = ?`, w.BillID); err != nil {
			return fmt.Errorf("write witness slips: clear %s: %w", w.BillID, err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO witness_slips (bill_id, seq, position, organization, name, testimony_type)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("write witness slips: prepare: %w", err)
	}
	defer stmt.Close()

	seq := map[string]int{}
	for _, w := range slips {
		n := seq[w.BillID]
		seq[w.BillID] = n + 1
		if _, err := stmt.ExecContext(ctx,
			w.BillID, n, string(w.Position), w.Organization, w.Name, w.TestimonyType,
		); err != nil {
			return fmt.Errorf("write witness slips: insert %s[%d]: %w", w.BillID, n, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write witness slips: commit: %w", err)
	}
	return nil
}

// WriteSponsorships upserts sponsorship links.
func (s *Store) WriteSponsorships(ctx context.Context, sponsors []model.SponsorshipRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write sponsorships: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO sponsorships (bill_id, member_id, is_primary, sponsor_date)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(bill_id, member_id) DO UPDATE SET
			is_primary = excluded.is_primary,
			sponsor_date = excluded.sponsor_date
	`)
	if err != nil {
		return fmt.Errorf("write sponsorships: prepare: %w", err)
	}
	defer stmt.Close()

	for _, sp := range sponsors {
		if _, err := stmt.ExecContext(ctx,
			sp.BillID, sp.MemberID, boolToInt(sp.Primary), sp.Date.String(),
		); err != nil {
			return fmt.Errorf("write sponsorships: insert %s/%s: %w", sp.BillID, sp.MemberID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write sponsorships: commit: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
