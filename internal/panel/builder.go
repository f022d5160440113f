// Package panel builds point-in-time training rows without future
// leakage.
//
// Every row answers "what was knowable N days after introduction, and
// what happened in the following observation window". The windowing is
// two-sided and the load-bearing invariant of the ML pipeline:
//
//   - backward: features are computed over actions dated on or before
//     the snapshot date, nothing else;
//   - forward: labels are computed over the complement, actions strictly
//     after the snapshot date and within the observation window;
//   - maturity gate: a row is emitted only when the whole forward window
//     has actually elapsed in wall-clock time. Immature (bill, snapshot)
//     pairs produce no row at all - never a partial or null-labeled row,
//     which would bake survivorship bias into every downstream model.
//
// Actions with unknown dates are invisible to both windows: an undatable
// action can never prove something was knowable at a snapshot.
package panel

import (
	"log/slog"
	"time"

	"github.com/statehouse/rollcall/internal/action"
	"github.com/statehouse/rollcall/internal/lifecycle"
	"github.com/statehouse/rollcall/internal/model"
)

// Clock supplies "today" for the maturity gate. Production uses
// WallClock; tests inject a fixed date so maturity decisions are
// reproducible.
type Clock interface {
	Today() model.Date
}

// WallClock reads the current UTC date.
type WallClock struct{}

func (WallClock) Today() model.Date {
	now := time.Now().UTC()
	return model.DateOf(now.Year(), now.Month(), now.Day())
}

// Config sets the snapshot offsets and the forward observation window.
type Config struct {
	SnapshotDays    []int // days since introduction, e.g. 30, 60, 90
	ObservationDays int   // forward window length for labels
}

// DefaultConfig mirrors the offsets used for model training.
func DefaultConfig() Config {
	return Config{SnapshotDays: []int{30, 60, 90, 180}, ObservationDays: 60}
}

// advancementCategories are the positive-advancement events that set
// target_advanced_after when they occur in the forward window.
var advancementCategories = map[action.Category]bool{
	action.CategoryReportFavorable: true,
	action.CategoryFloorPass:       true,
	action.CategoryCrossedChambers: true,
	action.CategoryPassedBoth:      true,
	action.CategorySentToGovernor:  true,
	action.CategorySigned:          true,
}

// Builder derives panel rows for one bill at a time. Bills are
// independent; callers may parallelize across bills freely.
type Builder struct {
	machine *lifecycle.Machine
	cfg     Config
	clock   Clock
}

// NewBuilder wires the builder. A nil clock defaults to WallClock.
func NewBuilder(m *lifecycle.Machine, cfg Config, clock Clock) *Builder {
	if clock == nil {
		clock = WallClock{}
	}
	return &Builder{machine: m, cfg: cfg, clock: clock}
}

// Rows produces every mature (bill, snapshot_day) row for one bill.
// Bills without a known introduction date produce no rows.
func (b *Builder) Rows(bill model.BillRow, classified []action.Classified, sponsors []model.SponsorshipRow) []model.PanelRow {
	intro := bill.IntroductionDate
	if !intro.Known() {
		slog.Debug("skipping bill without introduction date", "bill_id", bill.BillID)
		return nil
	}

	today := b.clock.Today()
	var rows []model.PanelRow

	for _, snapDay := range b.cfg.SnapshotDays {
		// Maturity gate: the entire forward window must already have
		// elapsed relative to real time.
		windowEnd := intro.AddDays(snapDay + b.cfg.ObservationDays)
		if windowEnd.After(today) {
			continue
		}

		asOf := intro.AddDays(snapDay)
		visible := filterAsOf(classified, asOf)

		state := b.machine.FoldClassified(bill.BillID, visible)
		features := Features(bill, visible, sponsors, state, asOf)

		advanced, law := forwardLabels(classified, asOf, windowEnd)

		rows = append(rows, model.PanelRow{
			BillID:              bill.BillID,
			SnapshotDay:         snapDay,
			AsOfDate:            asOf,
			Features:            features,
			TargetAdvancedAfter: advanced,
			TargetLawAfter:      law,
		})
	}

	return rows
}

// filterAsOf keeps actions dated on or before asOf. Unknown dates are
// excluded: Date's ordering puts them after every valid date, so they
// fail the cutoff here exactly as they must.
func filterAsOf(classified []action.Classified, asOf model.Date) []action.Classified {
	var out []action.Classified
	for _, act := range classified {
		if act.Date.Known() && !act.Date.After(asOf) {
			out = append(out, act)
		}
	}
	return out
}

// forwardLabels inspects the complement window (asOf, windowEnd] for
// positive-advancement and became-law events.
func forwardLabels(classified []action.Classified, asOf, windowEnd model.Date) (advanced, law int) {
	for _, act := range classified {
		if !act.Date.Known() || !act.Date.After(asOf) || act.Date.After(windowEnd) {
			continue
		}
		if advancementCategories[act.Category] {
			advanced = 1
		}
		if act.Category == action.CategorySigned {
			law = 1
		}
	}
	return advanced, law
}
