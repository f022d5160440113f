package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statehouse/rollcall/internal/glossary"
	"github.com/statehouse/rollcall/internal/model"
	"github.com/statehouse/rollcall/internal/panel"
	"github.com/statehouse/rollcall/internal/store"
	"github.com/statehouse/rollcall/internal/testutil"
)

// seedFacts loads a small but representative session: a rolled-back
// bill, a signed bill, an empty bill, two voting blocs, and a pile of
// witness slips.
func seedFacts(t *testing.T, s *store.Store) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, s.WriteBills(ctx, []model.BillRow{
		{BillID: "HB0001", BillType: "HB", BillNumberRaw: "1", Chamber: model.ChamberHouse,
			Description: "An act concerning procurement", IntroductionDate: model.DateOf(2025, time.January, 10)},
		{BillID: "HB0002", BillType: "HB", BillNumberRaw: "2", Chamber: model.ChamberHouse,
			Description: "An act concerning schools", IntroductionDate: model.DateOf(2025, time.January, 10)},
		{BillID: "SB0003", BillType: "SB", BillNumberRaw: "3", Chamber: model.ChamberSenate},
	}))

	acts := func(billID string, chamber model.Chamber, rows ...[2]string) []model.ActionRecord {
		out := make([]model.ActionRecord, len(rows))
		for i, r := range rows {
			out[i] = model.ActionRecord{
				BillID: billID, Chamber: chamber,
				Date: model.ParseDate(r[0]), RawText: r[1],
			}
		}
		return out
	}
	var actions []model.ActionRecord
	actions = append(actions, acts("HB0001", model.ChamberHouse,
		[2]string{"2025-01-10", "Filed with the Clerk by Rep. Jane Doe"},
		[2]string{"2025-01-12", "First Reading"},
		[2]string{"2025-01-12", "Referred to Rules Committee"},
		[2]string{"2025-02-01", "Do Pass / Short Debate"},
		[2]string{"2025-03-01", "Third Reading - Passed; 072-041-000"},
		[2]string{"2025-03-31", "Rule 19(a) / Re-referred to Rules Committee"},
	)...)
	actions = append(actions, acts("HB0002", model.ChamberHouse,
		[2]string{"2025-02-10", "Third Reading - Passed; 110-002-000"},
		[2]string{"2025-02-11", "Arrive in Senate"},
		[2]string{"2025-03-10", "Third Reading - Passed; 055-001-000"},
		[2]string{"2025-04-01", "Sent to the Governor"},
		[2]string{"2025-04-20", "Governor Approved"},
		[2]string{"2025-04-20", "Public Act . . . . . . . 103-0001"},
	)...)
	require.NoError(t, s.WriteActions(ctx, actions))

	members := []model.MemberRow{
		{MemberID: "m1", Name: "Alice Alpha", Party: "D", Chamber: model.ChamberHouse},
		{MemberID: "m2", Name: "Bob Beta", Party: "D", Chamber: model.ChamberHouse},
		{MemberID: "m3", Name: "Carol Gamma", Party: "R", Chamber: model.ChamberHouse},
		{MemberID: "m4", Name: "Dan Delta", Party: "R", Chamber: model.ChamberHouse},
	}
	require.NoError(t, s.WriteMembers(ctx, members))

	var casts []model.VoteCastRow
	for v := 0; v < 12; v++ {
		eventID := fmt.Sprintf("v%03d", v)
		for _, id := range []string{"m1", "m2"} {
			casts = append(casts, model.VoteCastRow{
				VoteEventID: eventID, BillID: "HB0001", MemberID: id, Cast: model.VoteYea,
			})
		}
		for _, id := range []string{"m3", "m4"} {
			casts = append(casts, model.VoteCastRow{
				VoteEventID: eventID, BillID: "HB0001", MemberID: id, Cast: model.VoteNay,
			})
		}
	}
	require.NoError(t, s.WriteVoteCasts(ctx, casts))

	var slips []model.WitnessSlipRow
	for i := 0; i < 12; i++ {
		slips = append(slips, model.WitnessSlipRow{
			BillID: "HB0001", Position: model.SlipProponent,
			Organization: fmt.Sprintf("Org %d", i%5), Name: fmt.Sprintf("Filer %d", i),
		})
	}
	require.NoError(t, s.WriteWitnessSlips(ctx, slips))

	require.NoError(t, s.WriteSponsorships(ctx, []model.SponsorshipRow{
		{BillID: "HB0001", MemberID: "m1", Primary: true, Date: model.DateOf(2025, time.January, 10)},
		{BillID: "HB0001", MemberID: "m2", Date: model.DateOf(2025, time.January, 20)},
	}))
}

func newTestPipeline(t *testing.T) (*Pipeline, *store.Store) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "rollcall.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	g, err := glossary.NewLoader("").Load()
	require.NoError(t, err)

	clock := testutil.NewFixedClock(2026, time.January, 1)
	p, err := New(s, g, panel.DefaultConfig(), clock, nil)
	require.NoError(t, err)
	return p, s
}

func TestRun_AllStagesPass(t *testing.T) {
	p, s := newTestPipeline(t)
	seedFacts(t, s)

	run, err := p.Run(context.Background(), 2)
	require.NoError(t, err)

	require.Len(t, run.Stages, 4)
	for _, st := range run.Stages {
		assert.True(t, st.Passed, "stage %s", st.Name)
	}
	assert.Equal(t, "outcomes", run.Stages[0].Name)
	assert.Equal(t, 3, run.Stages[0].Rows)
	assert.Equal(t, 2, run.Warnings)
	assert.NotEmpty(t, run.RunID)

	summaries, err := s.ReadRunSummaries(context.Background())
	require.NoError(t, err)
	assert.Len(t, summaries, 1)
}

func TestRun_OutcomesGolden(t *testing.T) {
	p, s := newTestPipeline(t)
	seedFacts(t, s)
	ctx := context.Background()

	_, err := p.Run(ctx, 0)
	require.NoError(t, err)

	out, err := p.ExportOutcomes(ctx)
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "outcomes", out)
}

func TestRun_Idempotent(t *testing.T) {
	p, s := newTestPipeline(t)
	seedFacts(t, s)
	ctx := context.Background()

	export := func() [][]byte {
		var all [][]byte
		for _, fn := range []func(context.Context) ([]byte, error){
			p.ExportOutcomes, p.ExportPanel, p.ExportCoalitions, p.ExportAnomalies,
		} {
			b, err := fn(ctx)
			require.NoError(t, err)
			all = append(all, b)
		}
		return all
	}

	_, err := p.Run(ctx, 0)
	require.NoError(t, err)
	first := export()

	_, err = p.Run(ctx, 0)
	require.NoError(t, err)
	second := export()

	for i := range first {
		assert.Equal(t, string(first[i]), string(second[i]),
			"derived table %d must be byte-identical across reruns", i)
	}
}

func TestRun_PanelRespectsMaturityGate(t *testing.T) {
	p, s := newTestPipeline(t)
	ctx := context.Background()

	// Introduced 100 days before the fixed clock's today: only the
	// 30-day snapshot window (30+60=90 days) has fully elapsed.
	require.NoError(t, s.WriteBills(ctx, []model.BillRow{
		{BillID: "HB0009", BillType: "HB", BillNumberRaw: "9", Chamber: model.ChamberHouse,
			IntroductionDate: model.DateOf(2025, time.September, 23)},
	}))
	require.NoError(t, s.WriteActions(ctx, []model.ActionRecord{
		{BillID: "HB0009", Chamber: model.ChamberHouse,
			Date: model.DateOf(2025, time.September, 23), RawText: "Filed with the Clerk"},
	}))

	_, err := p.Run(ctx, 0)
	require.NoError(t, err)

	rows, err := s.ReadPanel(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 30, rows[0].SnapshotDay)
}

func TestRun_CoalitionsCoverEveryMember(t *testing.T) {
	p, s := newTestPipeline(t)
	seedFacts(t, s)
	ctx := context.Background()

	_, err := p.Run(ctx, 0)
	require.NoError(t, err)

	rows, err := s.ReadCoalitions(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	for _, r := range rows {
		assert.GreaterOrEqual(t, r.CoalitionID, 0)
		assert.NotEmpty(t, r.Embedding)
	}
}
