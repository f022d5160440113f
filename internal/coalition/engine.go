package coalition

import (
	"log/slog"

	"github.com/statehouse/rollcall/internal/model"
)

const (
	clusterCountMin = 3
	clusterCountMax = 10
)

// ValidationReport is the sanity signal emitted alongside coalitions:
// how many discovered blocs mix parties versus align with one. It is
// informational only, never a hard constraint.
type ValidationReport struct {
	ClusterCount    int
	CrossPartyBlocs int
	PureBlocs       int
}

// Discover runs the full coalition pipeline: agreement graph,
// co-sponsorship bonus, spectral embedding, silhouette-selected
// agglomerative clustering. Every member appears in the output with a
// coalition id - there is no outlier class.
func Discover(members []model.MemberRow, casts []model.VoteCastRow, sponsors []model.SponsorshipRow) ([]model.CoalitionRow, ValidationReport, error) {
	g := BuildAgreementGraph(members, casts)
	ApplyCosponsorBonus(g, sponsors)

	embedding, err := SpectralEmbedding(g, DefaultEmbeddingDim)
	if err != nil {
		return nil, ValidationReport{}, err
	}

	points := make([][]float64, len(g.Nodes))
	for i, id := range g.Nodes {
		points[i] = embedding[id]
	}

	assign, k := SelectClusters(points, clusterCountMin, clusterCountMax)
	slog.Info("coalitions discovered",
		"members", len(g.Nodes),
		"clusters", k,
	)

	rows := make([]model.CoalitionRow, len(g.Nodes))
	for i, id := range g.Nodes {
		rows[i] = model.CoalitionRow{
			MemberID:    id,
			CoalitionID: assign[i],
			Embedding:   points[i],
		}
	}

	report := validate(members, g.Nodes, assign, k)
	slog.Info("coalition validation",
		"cross_party_blocs", report.CrossPartyBlocs,
		"pure_blocs", report.PureBlocs,
	)
	return rows, report, nil
}

// validate counts cross-party versus pure-party blocs.
func validate(members []model.MemberRow, nodes []string, assign []int, k int) ValidationReport {
	party := map[string]string{}
	for _, m := range members {
		party[m.MemberID] = m.Party
	}

	parties := make(map[int]map[string]bool, k)
	for i, id := range nodes {
		c := assign[i]
		if parties[c] == nil {
			parties[c] = map[string]bool{}
		}
		if p := party[id]; p != "" {
			parties[c][p] = true
		}
	}

	report := ValidationReport{ClusterCount: k}
	for _, ps := range parties {
		if len(ps) > 1 {
			report.CrossPartyBlocs++
		} else {
			report.PureBlocs++
		}
	}
	return report
}
