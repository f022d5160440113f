package coalition

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statehouse/rollcall/internal/model"
)

func membersNamed(ids ...string) []model.MemberRow {
	out := make([]model.MemberRow, len(ids))
	for i, id := range ids {
		out[i] = model.MemberRow{MemberID: id, Name: id}
	}
	return out
}

// castSeries emits one cast per vote event for a member.
func castSeries(memberID string, casts ...model.VoteCast) []model.VoteCastRow {
	out := make([]model.VoteCastRow, len(casts))
	for i, c := range casts {
		out[i] = model.VoteCastRow{
			VoteEventID: fmt.Sprintf("v%03d", i),
			MemberID:    memberID,
			Cast:        c,
		}
	}
	return out
}

func repeat(c model.VoteCast, n int) []model.VoteCast {
	out := make([]model.VoteCast, n)
	for i := range out {
		out[i] = c
	}
	return out
}

func TestBuildAgreementGraph_AgreementRate(t *testing.T) {
	members := membersNamed("a", "b")
	// 12 shared events: agree on 9, disagree on 3.
	var casts []model.VoteCastRow
	casts = append(casts, castSeries("a", repeat(model.VoteYea, 12)...)...)
	bVotes := append(repeat(model.VoteYea, 9), repeat(model.VoteNay, 3)...)
	casts = append(casts, castSeries("b", bVotes...)...)

	g := BuildAgreementGraph(members, casts)
	assert.InDelta(t, 0.75, g.Weight("a", "b"), 1e-9)
}

func TestBuildAgreementGraph_MinSharedVotesThreshold(t *testing.T) {
	members := membersNamed("a", "b")
	var casts []model.VoteCastRow
	casts = append(casts, castSeries("a", repeat(model.VoteYea, 9)...)...)
	casts = append(casts, castSeries("b", repeat(model.VoteYea, 9)...)...)

	g := BuildAgreementGraph(members, casts)
	assert.Zero(t, g.Weight("a", "b"), "9 shared votes is below the threshold of 10")
}

func TestBuildAgreementGraph_AbstentionsExcluded(t *testing.T) {
	members := membersNamed("a", "b")
	var casts []model.VoteCastRow
	aVotes := append(repeat(model.VoteYea, 10), repeat(model.VotePresent, 5)...)
	bVotes := append(repeat(model.VoteYea, 10), repeat(model.VotePresent, 5)...)
	casts = append(casts, castSeries("a", aVotes...)...)
	casts = append(casts, castSeries("b", bVotes...)...)

	g := BuildAgreementGraph(members, casts)
	// Present casts count toward neither numerator nor denominator.
	assert.InDelta(t, 1.0, g.Weight("a", "b"), 1e-9)
}

func TestBuildAgreementGraph_UnresolvedMembersIgnored(t *testing.T) {
	members := membersNamed("a")
	casts := []model.VoteCastRow{
		{VoteEventID: "v1", MemberID: "", RawName: "SMITH", Cast: model.VoteYea},
		{VoteEventID: "v1", MemberID: "a", Cast: model.VoteYea},
	}
	g := BuildAgreementGraph(members, casts)
	assert.Equal(t, []string{"a"}, g.Nodes)
}

func TestApplyCosponsorBonus_CapAndNewEdgeThreshold(t *testing.T) {
	members := membersNamed("a", "b", "c", "d")
	var casts []model.VoteCastRow
	casts = append(casts, castSeries("a", repeat(model.VoteYea, 10)...)...)
	casts = append(casts, castSeries("b", repeat(model.VoteYea, 10)...)...)
	g := BuildAgreementGraph(members, casts)
	require.InDelta(t, 1.0, g.Weight("a", "b"), 1e-9)

	var sponsors []model.SponsorshipRow
	addShared := func(x, y string, bills int, prefix string) {
		for i := 0; i < bills; i++ {
			id := fmt.Sprintf("%s%02d", prefix, i)
			sponsors = append(sponsors,
				model.SponsorshipRow{BillID: id, MemberID: x},
				model.SponsorshipRow{BillID: id, MemberID: y},
			)
		}
	}
	addShared("a", "b", 5, "ab") // existing edge, max shared -> full cap
	addShared("c", "d", 3, "cd") // new edge at threshold
	// a-c share 2 bills: below threshold, no new edge.
	addShared("a", "c", 2, "ac")

	ApplyCosponsorBonus(g, sponsors)

	assert.InDelta(t, 1.2, g.Weight("a", "b"), 1e-9, "bonus capped at +0.2")
	assert.InDelta(t, 0.2*3.0/5.0, g.Weight("c", "d"), 1e-9, "new edge from >=3 shared bills")
	assert.Zero(t, g.Weight("a", "c"), "2 shared bills must not create an edge")
}

func TestGraph_IncludesZeroDegreeNodes(t *testing.T) {
	g := BuildAgreementGraph(membersNamed("a", "b", "loner"), nil)
	assert.Len(t, g.Nodes, 3)
	assert.Zero(t, g.Degree(2))
}
