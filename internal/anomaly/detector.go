package anomaly

import (
	"log/slog"
	"math"
	"sort"

	"github.com/statehouse/rollcall/internal/model"
)

// Contamination is the fraction of scored bills flagged as anomalous.
// The cutoff is the matching score percentile, so the flagged set size
// tracks the scored population rather than a fixed score threshold.
const Contamination = 0.08

// Detect scores every bill with at least MinSlips filings and flags the
// top Contamination fraction. Output is sorted by bill id. Bills below
// the slip floor are absent, not scored zero.
func Detect(slips []model.WitnessSlipRow, logger *slog.Logger) []model.AnomalyRow {
	feats := BuildFeatures(slips)
	if len(feats) == 0 {
		return nil
	}

	matrix := make([][]float64, len(feats))
	for i, f := range feats {
		matrix[i] = f.vector()
	}
	std := Standardize(matrix)
	forest := FitForest(std)

	scores := make([]float64, len(feats))
	for i := range feats {
		scores[i] = forest.Score(std[i])
	}
	cutoff := scoreCutoff(scores, Contamination)

	rows := make([]model.AnomalyRow, len(feats))
	flagged := 0
	for i, f := range feats {
		row := model.AnomalyRow{
			BillID: f.BillID,
			Score:  scores[i],
		}
		if scores[i] >= cutoff {
			row.IsAnomaly = true
			row.Reason = ReasonFor(f)
			flagged++
		}
		rows[i] = row
	}

	if logger != nil {
		logger.Info("anomaly detection complete",
			"bills_scored", len(rows),
			"flagged", flagged,
			"cutoff", cutoff)
	}
	return rows
}

// scoreCutoff returns the score at the (1-contamination) percentile.
// At least one bill is always above the cutoff when any were scored.
func scoreCutoff(scores []float64, contamination float64) float64 {
	sorted := append([]float64(nil), scores...)
	sort.Float64s(sorted)
	idx := int(math.Ceil(float64(len(sorted)) * (1 - contamination)))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
