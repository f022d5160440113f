// Package coalition discovers legislator voting blocs.
//
// It builds an undirected weighted agreement graph from roll-call votes
// and co-sponsorships, embeds it with a normalized-Laplacian spectral
// decomposition, and clusters the embedding agglomeratively. Unlike
// density-based clustering there is no outlier class: every member,
// including zero-degree ones, receives a coalition id.
package coalition

import (
	"sort"

	"github.com/statehouse/rollcall/internal/model"
)

const (
	// minSharedVotes is the minimum number of common non-abstention
	// votes before an agreement edge is created. Below this the rate is
	// mostly noise.
	minSharedVotes = 10

	// minSharedCosponsors is the minimum shared co-sponsorship count
	// for the bonus to create an edge where no vote edge exists.
	minSharedCosponsors = 3

	// cosponsorBonusCap bounds the co-sponsorship boost on any edge.
	cosponsorBonusCap = 0.2
)

// Graph is an undirected weighted member-agreement graph. Nodes cover
// the union of all legislators; edge weights live in [0, 1+bonus].
type Graph struct {
	Nodes   []string // member ids, sorted for determinism
	index   map[string]int
	weights map[[2]int]float64
}

// NewGraph creates a graph over the given member ids. Duplicate ids are
// collapsed; node order is sorted so downstream math is deterministic.
func NewGraph(memberIDs []string) *Graph {
	uniq := map[string]bool{}
	for _, id := range memberIDs {
		if id != "" {
			uniq[id] = true
		}
	}
	nodes := make([]string, 0, len(uniq))
	for id := range uniq {
		nodes = append(nodes, id)
	}
	sort.Strings(nodes)

	index := make(map[string]int, len(nodes))
	for i, id := range nodes {
		index[id] = i
	}
	return &Graph{Nodes: nodes, index: index, weights: map[[2]int]float64{}}
}

func (g *Graph) key(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

// Weight returns the edge weight between two members (0 if no edge).
func (g *Graph) Weight(a, b string) float64 {
	ia, ok := g.index[a]
	if !ok {
		return 0
	}
	ib, ok := g.index[b]
	if !ok {
		return 0
	}
	return g.weights[g.key(ia, ib)]
}

func (g *Graph) setWeight(a, b int, w float64) {
	if a == b {
		return
	}
	g.weights[g.key(a, b)] = w
}

// BuildAgreementGraph computes Y/N agreement-rate edges.
//
// For each member pair sharing at least minSharedVotes recorded
// non-abstention votes (Y or N on the same vote event), the edge weight
// is agreements / shared. Present and not-voting casts are excluded from
// both numerator and denominator.
func BuildAgreementGraph(members []model.MemberRow, casts []model.VoteCastRow) *Graph {
	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.MemberID)
	}
	g := NewGraph(ids)

	// vote event -> member -> Y/N
	byEvent := map[string]map[int]model.VoteCast{}
	for _, c := range casts {
		if c.Cast != model.VoteYea && c.Cast != model.VoteNay {
			continue
		}
		idx, ok := g.index[c.MemberID]
		if !ok {
			continue // unresolved roster name
		}
		ev, ok := byEvent[c.VoteEventID]
		if !ok {
			ev = map[int]model.VoteCast{}
			byEvent[c.VoteEventID] = ev
		}
		ev[idx] = c.Cast
	}

	type pairCount struct{ shared, agreed int }
	counts := map[[2]int]*pairCount{}
	for _, ev := range byEvent {
		idxs := make([]int, 0, len(ev))
		for i := range ev {
			idxs = append(idxs, i)
		}
		sort.Ints(idxs)
		for i := 0; i < len(idxs); i++ {
			for j := i + 1; j < len(idxs); j++ {
				k := [2]int{idxs[i], idxs[j]}
				pc, ok := counts[k]
				if !ok {
					pc = &pairCount{}
					counts[k] = pc
				}
				pc.shared++
				if ev[idxs[i]] == ev[idxs[j]] {
					pc.agreed++
				}
			}
		}
	}

	for k, pc := range counts {
		if pc.shared >= minSharedVotes {
			g.setWeight(k[0], k[1], float64(pc.agreed)/float64(pc.shared))
		}
	}
	return g
}

// ApplyCosponsorBonus boosts edges by normalized shared co-sponsorship
// counts. The bonus is capped at cosponsorBonusCap; pairs with no vote
// edge gain a new edge only when they share at least
// minSharedCosponsors bills.
func ApplyCosponsorBonus(g *Graph, sponsors []model.SponsorshipRow) {
	byBill := map[string][]int{}
	for _, sp := range sponsors {
		if idx, ok := g.index[sp.MemberID]; ok {
			byBill[sp.BillID] = append(byBill[sp.BillID], idx)
		}
	}

	shared := map[[2]int]int{}
	maxShared := 0
	for _, idxs := range byBill {
		sort.Ints(idxs)
		for i := 0; i < len(idxs); i++ {
			for j := i + 1; j < len(idxs); j++ {
				if idxs[i] == idxs[j] {
					continue
				}
				k := g.key(idxs[i], idxs[j])
				shared[k]++
				if shared[k] > maxShared {
					maxShared = shared[k]
				}
			}
		}
	}
	if maxShared == 0 {
		return
	}

	for k, n := range shared {
		bonus := cosponsorBonusCap * float64(n) / float64(maxShared)
		if w, ok := g.weights[k]; ok {
			g.weights[k] = w + bonus
		} else if n >= minSharedCosponsors {
			g.weights[k] = bonus
		}
	}
}

// Degree returns the weighted degree of node i.
func (g *Graph) Degree(i int) float64 {
	d := 0.0
	for k, w := range g.weights {
		if k[0] == i || k[1] == i {
			d += w
		}
	}
	return d
}
