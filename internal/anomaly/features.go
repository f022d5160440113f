// Package anomaly flags coordinated witness-slip campaigns.
//
// Per-bill aggregate features describe how concentrated and uniform a
// bill's slip filings are; an isolation forest scores them and the top
// contamination fraction is flagged. Reason strings are produced by
// independent per-feature thresholds, deliberately decoupled from the
// statistical score: the model decides WHICH bills look coordinated,
// the rules explain WHY in terms a reader can check.
package anomaly

import (
	"fmt"
	"sort"
	"strings"

	"github.com/statehouse/rollcall/internal/model"
	"github.com/statehouse/rollcall/internal/roster"
)

// MinSlips is the minimum filing count before a bill is scored.
// Concentration ratios over a handful of slips are meaningless.
const MinSlips = 10

// FeatureNames is the fixed column order of the feature matrix.
var FeatureNames = []string{
	"dup_name_rate",
	"position_unanimity",
	"org_hhi",
	"top_org_share",
	"org_diversity",
}

// BillFeatures is the per-bill aggregate feature vector.
type BillFeatures struct {
	BillID            string
	SlipCount         int
	DupNameRate       float64 // 1 - unique names / slips
	PositionUnanimity float64 // share of the dominant position
	OrgHHI            float64 // Herfindahl-Hirschman index of org shares
	TopOrgShare       float64
	OrgDiversity      float64 // unique orgs / slips
}

func (f BillFeatures) vector() []float64 {
	return []float64{f.DupNameRate, f.PositionUnanimity, f.OrgHHI, f.TopOrgShare, f.OrgDiversity}
}

// BuildFeatures aggregates slips per bill and computes features for
// every bill with at least MinSlips filings. Output is sorted by bill
// id for deterministic downstream scoring.
func BuildFeatures(slips []model.WitnessSlipRow) []BillFeatures {
	byBill := map[string][]model.WitnessSlipRow{}
	for _, s := range slips {
		byBill[s.BillID] = append(byBill[s.BillID], s)
	}

	billIDs := make([]string, 0, len(byBill))
	for id := range byBill {
		billIDs = append(billIDs, id)
	}
	sort.Strings(billIDs)

	var out []BillFeatures
	for _, id := range billIDs {
		rows := byBill[id]
		if len(rows) < MinSlips {
			continue
		}
		out = append(out, featuresFor(id, rows))
	}
	return out
}

func featuresFor(billID string, rows []model.WitnessSlipRow) BillFeatures {
	n := float64(len(rows))

	names := map[string]int{}
	orgs := map[string]int{}
	positions := map[model.SlipPosition]int{}
	for _, s := range rows {
		names[roster.NormalizeName(s.Name)]++
		orgs[roster.NormalizeName(s.Organization)]++
		positions[s.Position]++
	}

	maxPos := 0
	for _, c := range positions {
		if c > maxPos {
			maxPos = c
		}
	}

	hhi := 0.0
	topOrg := 0
	for _, c := range orgs {
		share := float64(c) / n
		hhi += share * share
		if c > topOrg {
			topOrg = c
		}
	}

	return BillFeatures{
		BillID:            billID,
		SlipCount:         len(rows),
		DupNameRate:       1 - float64(len(names))/n,
		PositionUnanimity: float64(maxPos) / n,
		OrgHHI:            hhi,
		TopOrgShare:       float64(topOrg) / n,
		OrgDiversity:      float64(len(orgs)) / n,
	}
}

// Reason thresholds. Each fires independently of the model score.
const (
	reasonTopOrgShare  = 0.5
	reasonDupNames     = 0.3
	reasonUnanimity    = 0.9
	reasonHHI          = 0.25
	reasonLowDiversity = 0.1
)

// ReasonFor builds the human-readable explanation for a flagged bill by
// thresholding each feature independently. Returns "" when no rule
// fires (the model flagged on a combination no single rule captures).
func ReasonFor(f BillFeatures) string {
	var parts []string
	if f.TopOrgShare > reasonTopOrgShare {
		parts = append(parts, fmt.Sprintf("single organization filed %.0f%% of slips", f.TopOrgShare*100))
	}
	if f.DupNameRate > reasonDupNames {
		parts = append(parts, fmt.Sprintf("%.0f%% duplicate filer names", f.DupNameRate*100))
	}
	if f.PositionUnanimity > reasonUnanimity {
		parts = append(parts, fmt.Sprintf("%.0f%% of slips take the same position", f.PositionUnanimity*100))
	}
	if f.OrgHHI > reasonHHI {
		parts = append(parts, fmt.Sprintf("organization concentration HHI %.2f", f.OrgHHI))
	}
	if f.OrgDiversity < reasonLowDiversity {
		parts = append(parts, fmt.Sprintf("only %.0f%% distinct organizations", f.OrgDiversity*100))
	}
	return strings.Join(parts, "; ")
}
