// Package ingest loads scraped JSON cache files into the fact store.
//
// The scraper ETL drops one JSON array per table into a cache directory.
// Required-field violations follow the caller-selected strictness: skip
// and count in lenient mode, abort the batch in strict mode. Missing
// recommended fields (description, party) only increment the warning
// counter; processing always continues with defaults.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/statehouse/rollcall/internal/model"
	"github.com/statehouse/rollcall/internal/store"
)

// Mode selects required-field strictness.
type Mode int

const (
	// Lenient skips records with missing required fields and counts them.
	Lenient Mode = iota
	// Strict aborts the whole batch on the first missing required field.
	Strict
)

// Cache file names expected under the cache directory. A missing file
// yields zero rows for that table, not an error; partial scrapes are
// normal during a session.
const (
	billsFile        = "bills.json"
	actionsFile      = "actions.json"
	membersFile      = "members.json"
	voteCastsFile    = "vote_casts.json"
	witnessSlipsFile = "witness_slips.json"
	sponsorshipsFile = "sponsorships.json"
)

// Batch is the validated content of one cache directory.
type Batch struct {
	Bills        []model.BillRow
	Actions      []model.ActionRecord
	Members      []model.MemberRow
	VoteCasts    []model.VoteCastRow
	WitnessSlips []model.WitnessSlipRow
	Sponsorships []model.SponsorshipRow

	Warnings int // missing recommended fields
	Skipped  int // records dropped in lenient mode
}

// Loader reads and validates scraped cache files.
type Loader struct {
	mode   Mode
	logger *slog.Logger
}

func NewLoader(mode Mode, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{mode: mode, logger: logger}
}

// LoadDir reads every cache file under dir into a validated Batch.
func (l *Loader) LoadDir(dir string) (*Batch, error) {
	b := &Batch{}

	var rawBills []rawBill
	if err := readCacheFile(dir, billsFile, &rawBills); err != nil {
		return nil, err
	}
	for _, rb := range rawBills {
		row, err := l.validateBill(rb, b)
		if err != nil {
			return nil, err
		}
		if row != nil {
			b.Bills = append(b.Bills, *row)
		}
	}

	var rawActions []rawAction
	if err := readCacheFile(dir, actionsFile, &rawActions); err != nil {
		return nil, err
	}
	for _, ra := range rawActions {
		if ra.BillID == "" || ra.RawText == "" {
			b.Skipped++
			l.logger.Warn("skipping action with missing bill id or text")
			continue
		}
		b.Actions = append(b.Actions, model.ActionRecord{
			BillID:  ra.BillID,
			Chamber: model.Chamber(ra.Chamber),
			Date:    model.ParseDate(ra.Date), // unparseable becomes the unknown Date
			RawText: ra.RawText,
		})
	}

	var rawMembers []rawMember
	if err := readCacheFile(dir, membersFile, &rawMembers); err != nil {
		return nil, err
	}
	for _, rm := range rawMembers {
		row, err := l.validateMember(rm, b)
		if err != nil {
			return nil, err
		}
		if row != nil {
			b.Members = append(b.Members, *row)
		}
	}

	var rawCasts []rawVoteCast
	if err := readCacheFile(dir, voteCastsFile, &rawCasts); err != nil {
		return nil, err
	}
	for _, rc := range rawCasts {
		if rc.VoteEventID == "" || (rc.MemberID == "" && rc.RawName == "") {
			b.Skipped++
			continue
		}
		b.VoteCasts = append(b.VoteCasts, model.VoteCastRow{
			VoteEventID: rc.VoteEventID,
			BillID:      rc.BillID,
			MemberID:    rc.MemberID,
			RawName:     rc.RawName,
			Cast:        model.VoteCast(rc.Cast),
		})
	}

	var rawSlips []rawWitnessSlip
	if err := readCacheFile(dir, witnessSlipsFile, &rawSlips); err != nil {
		return nil, err
	}
	for _, rs := range rawSlips {
		if rs.BillID == "" || rs.Name == "" {
			b.Skipped++
			continue
		}
		b.WitnessSlips = append(b.WitnessSlips, model.WitnessSlipRow{
			BillID:        rs.BillID,
			Position:      model.SlipPosition(rs.Position),
			Organization:  rs.Organization,
			Name:          rs.Name,
			TestimonyType: rs.TestimonyType,
		})
	}

	var rawSponsors []rawSponsorship
	if err := readCacheFile(dir, sponsorshipsFile, &rawSponsors); err != nil {
		return nil, err
	}
	for _, rs := range rawSponsors {
		if rs.BillID == "" || rs.MemberID == "" {
			b.Skipped++
			continue
		}
		b.Sponsorships = append(b.Sponsorships, model.SponsorshipRow{
			BillID:   rs.BillID,
			MemberID: rs.MemberID,
			Primary:  rs.Primary,
			Date:     model.ParseDate(rs.Date),
		})
	}

	l.logger.Info("cache loaded",
		"bills", len(b.Bills),
		"actions", len(b.Actions),
		"members", len(b.Members),
		"vote_casts", len(b.VoteCasts),
		"witness_slips", len(b.WitnessSlips),
		"sponsorships", len(b.Sponsorships),
		"warnings", b.Warnings,
		"skipped", b.Skipped)
	return b, nil
}

// Persist writes every fact table of the batch to the store.
func Persist(ctx context.Context, s *store.Store, b *Batch) error {
	if err := s.WriteBills(ctx, b.Bills); err != nil {
		return fmt.Errorf("persist batch: %w", err)
	}
	if err := s.WriteActions(ctx, b.Actions); err != nil {
		return fmt.Errorf("persist batch: %w", err)
	}
	if err := s.WriteMembers(ctx, b.Members); err != nil {
		return fmt.Errorf("persist batch: %w", err)
	}
	if err := s.WriteVoteCasts(ctx, b.VoteCasts); err != nil {
		return fmt.Errorf("persist batch: %w", err)
	}
	if err := s.WriteWitnessSlips(ctx, b.WitnessSlips); err != nil {
		return fmt.Errorf("persist batch: %w", err)
	}
	if err := s.WriteSponsorships(ctx, b.Sponsorships); err != nil {
		return fmt.Errorf("persist batch: %w", err)
	}
	return nil
}

// validateBill checks required fields (id, number, chamber) per the
// strictness mode and counts missing recommended fields.
func (l *Loader) validateBill(rb rawBill, b *Batch) (*model.BillRow, error) {
	id := rb.BillID
	if id == "" {
		id = rb.LegID
	}
	if missing := firstMissing(map[string]string{
		"bill_id":         id,
		"bill_number_raw": rb.BillNumberRaw,
		"chamber":         rb.Chamber,
	}); missing != "" {
		return nil, l.requiredFieldViolation(b, &DataQualityError{
			Code: CodeBillMissingField, Record: record(id, rb.BillNumberRaw), Field: missing,
		})
	}

	if rb.Description == "" {
		b.Warnings++
	}
	if rb.IntroductionDate == "" {
		b.Warnings++
	}
	return &model.BillRow{
		BillID:           id,
		BillType:         rb.BillType,
		BillNumberRaw:    rb.BillNumberRaw,
		Chamber:          model.Chamber(rb.Chamber),
		Description:      rb.Description,
		IntroductionDate: model.ParseDate(rb.IntroductionDate),
	}, nil
}

// validateMember checks required fields (id, name, chamber) per the
// strictness mode and counts a missing party as a warning.
func (l *Loader) validateMember(rm rawMember, b *Batch) (*model.MemberRow, error) {
	if missing := firstMissing(map[string]string{
		"member_id": rm.MemberID,
		"name":      rm.Name,
		"chamber":   rm.Chamber,
	}); missing != "" {
		return nil, l.requiredFieldViolation(b, &DataQualityError{
			Code: CodeMemberMissingField, Record: record(rm.MemberID, rm.Name), Field: missing,
		})
	}

	if rm.Party == "" {
		b.Warnings++
	}
	return &model.MemberRow{
		MemberID: rm.MemberID,
		Name:     rm.Name,
		Party:    rm.Party,
		Chamber:  model.Chamber(rm.Chamber),
		District: rm.District,
	}, nil
}

// requiredFieldViolation applies the strictness mode: Strict propagates
// the error, Lenient logs, counts, and suppresses it.
func (l *Loader) requiredFieldViolation(b *Batch, dqe *DataQualityError) error {
	if l.mode == Strict {
		return dqe
	}
	b.Skipped++
	l.logger.Warn("skipping record", "code", dqe.Code, "record", dqe.Record, "field", dqe.Field)
	return nil
}

// firstMissing returns the name of the first empty required field, in a
// fixed check order so strict-mode errors are deterministic.
func firstMissing(fields map[string]string) string {
	for _, name := range []string{
		"bill_id", "bill_number_raw", "member_id", "name", "chamber",
	} {
		if v, ok := fields[name]; ok && v == "" {
			return name
		}
	}
	return ""
}

func record(ids ...string) string {
	for _, id := range ids {
		if id != "" {
			return id
		}
	}
	return "(unidentified)"
}

// readCacheFile decodes one JSON array cache file into out. A missing
// file is not an error; a malformed one is.
func readCacheFile(dir, name string, out any) error {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return &DataQualityError{Code: CodeCacheUnreadable, Record: name, Field: "", Err: err}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &DataQualityError{Code: CodeCacheUnreadable, Record: name, Field: "", Err: err}
	}
	return nil
}

// Raw cache row shapes. Dates stay strings here; ParseDate maps bad
// input to the unknown Date instead of failing the batch.

type rawBill struct {
	BillID           string `json:"bill_id"`
	LegID            string `json:"leg_id"`
	BillType         string `json:"bill_type"`
	BillNumberRaw    string `json:"bill_number_raw"`
	Chamber          string `json:"chamber"`
	Description      string `json:"description"`
	IntroductionDate string `json:"introduction_date"`
}

type rawAction struct {
	BillID  string `json:"bill_id"`
	Chamber string `json:"chamber"`
	Date    string `json:"date"`
	RawText string `json:"action_text"`
}

type rawMember struct {
	MemberID string `json:"member_id"`
	Name     string `json:"name"`
	Party    string `json:"party"`
	Chamber  string `json:"chamber"`
	District string `json:"district"`
}

type rawVoteCast struct {
	VoteEventID string `json:"vote_event_id"`
	BillID      string `json:"bill_id"`
	MemberID    string `json:"member_id"`
	RawName     string `json:"raw_name"`
	Cast        string `json:"vote_cast"`
}

type rawWitnessSlip struct {
	BillID        string `json:"bill_id"`
	Position      string `json:"position"`
	Organization  string `json:"organization"`
	Name          string `json:"name"`
	TestimonyType string `json:"testimony_type"`
}

type rawSponsorship struct {
	BillID   string `json:"bill_id"`
	MemberID string `json:"member_id"`
	Primary  bool   `json:"primary"`
	Date     string `json:"date"`
}
