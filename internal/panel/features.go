package panel

import (
	"github.com/statehouse/rollcall/internal/action"
	"github.com/statehouse/rollcall/internal/lifecycle"
	"github.com/statehouse/rollcall/internal/model"
)

// Features assembles the feature snapshot for one (bill, asOf) pair.
// Every input here has already been filtered to asOf by the caller
// except sponsors, which each helper filters itself - every as-of
// feature function takes the explicit cutoff and must never read rows
// dated after it.
func Features(bill model.BillRow, visible []action.Classified, sponsors []model.SponsorshipRow, state lifecycle.Result, asOf model.Date) map[string]float64 {
	f := map[string]float64{
		"current_stage_idx": float64(state.Current),
		"highest_stage_idx": float64(state.Highest),
		"action_count":      float64(len(visible)),
		"chamber_senate":    0,
	}
	if bill.Chamber == model.ChamberSenate {
		f["chamber_senate"] = 1
	}

	for k, v := range StalenessFeatures(visible, asOf) {
		f[k] = v
	}
	f["cosponsor_count"] = float64(EarlyCosponsorCount(bill.BillID, sponsors, asOf))
	f["rollback_count"] = float64(rollbackCount(visible))
	f["consent_calendar"] = 0
	if seenCategory(visible, action.CategoryConsentCalendar) {
		f["consent_calendar"] = 1
	}
	return f
}

// StalenessFeatures reports how long the bill has been idle as of the
// cutoff. Only actions dated on or before asOf participate; the result
// is invariant to any action rows dated after asOf being added, removed,
// or modified.
func StalenessFeatures(visible []action.Classified, asOf model.Date) map[string]float64 {
	var last model.Date
	for _, act := range visible {
		if act.Date.Known() && !act.Date.After(asOf) &&
			(!last.Known() || last.Before(act.Date)) {
			last = act.Date
		}
	}
	out := map[string]float64{
		"days_since_last_action": 0,
		"has_dated_action":       0,
	}
	if last.Known() {
		out["days_since_last_action"] = float64(last.DaysUntil(asOf))
		out["has_dated_action"] = 1
	}
	return out
}

// EarlyCosponsorCount counts a bill's sponsorships dated on or before
// asOf. Sponsorships with unknown dates are excluded for the same
// leakage reason as actions.
func EarlyCosponsorCount(billID string, sponsors []model.SponsorshipRow, asOf model.Date) int {
	n := 0
	for _, sp := range sponsors {
		if sp.BillID != billID {
			continue
		}
		if sp.Date.Known() && !sp.Date.After(asOf) {
			n++
		}
	}
	return n
}

func rollbackCount(visible []action.Classified) int {
	n := 0
	for _, act := range visible {
		if act.IsRollback {
			n++
		}
	}
	return n
}

func seenCategory(visible []action.Classified, cat action.Category) bool {
	for _, act := range visible {
		if act.Category == cat {
			return true
		}
	}
	return false
}
