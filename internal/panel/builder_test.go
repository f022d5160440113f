package panel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statehouse/rollcall/internal/action"
	"github.com/statehouse/rollcall/internal/glossary"
	"github.com/statehouse/rollcall/internal/lifecycle"
	"github.com/statehouse/rollcall/internal/model"
	"github.com/statehouse/rollcall/internal/testutil"
)

func testDeps(t *testing.T) (*lifecycle.Machine, *action.Classifier) {
	t.Helper()
	g, err := glossary.NewLoader("").Load()
	require.NoError(t, err)
	c := action.New(g)
	m, err := lifecycle.New(g, c)
	require.NoError(t, err)
	return m, c
}

func datedActions(c *action.Classifier, billID string, pairs ...string) []action.Classified {
	// pairs alternate date, text
	var recs []model.ActionRecord
	for i := 0; i+1 < len(pairs); i += 2 {
		recs = append(recs, model.ActionRecord{
			BillID:  billID,
			Date:    model.ParseDate(pairs[i]),
			RawText: pairs[i+1],
		})
	}
	return c.ClassifyAll(recs)
}

func TestRows_MaturityGate(t *testing.T) {
	m, c := testDeps(t)
	bill := model.BillRow{BillID: "HB0001", IntroductionDate: model.ParseDate("2025-01-01")}
	acts := datedActions(c, "HB0001", "2025-01-01", "First Reading")

	// Today is day 80 after introduction. With a 60-day observation
	// window only snapshot_day=10 (window ends day 70) has fully
	// elapsed; snapshots 30 and 60 end at days 90 and 120.
	clock := testutil.NewFixedClock(2025, time.March, 22) // day 80
	b := NewBuilder(m, Config{SnapshotDays: []int{10, 30, 60}, ObservationDays: 60}, clock)

	rows := b.Rows(bill, acts, nil)
	require.Len(t, rows, 1, "only snapshot_day=10 has a fully observable window")
	assert.Equal(t, 10, rows[0].SnapshotDay)

	// Once enough real time elapses, the same inputs yield more rows.
	clock.Advance(40) // day 120: all three windows have now elapsed
	rows = b.Rows(bill, acts, nil)
	assert.Len(t, rows, 3)
}

func TestRows_NoIntroductionDateNoRows(t *testing.T) {
	m, c := testDeps(t)
	bill := model.BillRow{BillID: "HB0002"}
	acts := datedActions(c, "HB0002", "2025-01-01", "First Reading")
	b := NewBuilder(m, DefaultConfig(), testutil.NewFixedClock(2030, time.January, 1))
	assert.Empty(t, b.Rows(bill, acts, nil))
}

func TestRows_LabelCorrectness(t *testing.T) {
	// The only qualifying forward action is at day 45. Snapshot 30
	// observes it (window 30..90); snapshot 60 does not (it is in the
	// past at day 60, not forward).
	m, c := testDeps(t)
	bill := model.BillRow{BillID: "HB0003", IntroductionDate: model.ParseDate("2025-01-01")}
	acts := datedActions(c, "HB0003",
		"2025-01-01", "First Reading",
		"2025-02-15", "Do Pass Committee", // day 45
	)
	clock := testutil.NewFixedClock(2026, time.January, 1) // everything mature
	b := NewBuilder(m, Config{SnapshotDays: []int{30, 60}, ObservationDays: 60}, clock)

	rows := b.Rows(bill, acts, nil)
	require.Len(t, rows, 2)

	bySnap := map[int]model.PanelRow{}
	for _, r := range rows {
		bySnap[r.SnapshotDay] = r
	}
	assert.Equal(t, 1, bySnap[30].TargetAdvancedAfter)
	assert.Equal(t, 0, bySnap[60].TargetAdvancedAfter)
}

func TestRows_FeaturesReflectOnlyBackwardWindow(t *testing.T) {
	m, c := testDeps(t)
	bill := model.BillRow{BillID: "HB0004", IntroductionDate: model.ParseDate("2025-01-01")}
	acts := datedActions(c, "HB0004",
		"2025-01-01", "First Reading",
		"2025-01-10", "Referred to Rules Committee",
		"2025-03-01", "Do Pass Committee", // day 59: after snapshot 30
	)
	clock := testutil.NewFixedClock(2026, time.January, 1)
	b := NewBuilder(m, Config{SnapshotDays: []int{30}, ObservationDays: 60}, clock)

	rows := b.Rows(bill, acts, nil)
	require.Len(t, rows, 1)
	f := rows[0].Features
	assert.Equal(t, float64(lifecycle.StageInCommittee), f["current_stage_idx"],
		"committee pass at day 59 must be invisible at snapshot 30")
	assert.Equal(t, float64(2), f["action_count"])
	assert.Equal(t, 1, rows[0].TargetAdvancedAfter, "but it IS visible to the forward label")
}

func TestRows_TargetLawAfter(t *testing.T) {
	m, c := testDeps(t)
	bill := model.BillRow{BillID: "HB0005", IntroductionDate: model.ParseDate("2025-01-01")}
	acts := datedActions(c, "HB0005",
		"2025-01-01", "First Reading",
		"2025-02-20", "Governor Approved", // day 50
	)
	clock := testutil.NewFixedClock(2026, time.January, 1)
	b := NewBuilder(m, Config{SnapshotDays: []int{30}, ObservationDays: 60}, clock)

	rows := b.Rows(bill, acts, nil)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].TargetLawAfter)
	assert.Equal(t, 1, rows[0].TargetAdvancedAfter)
}

func TestRows_UnknownDatesInvisibleToBothWindows(t *testing.T) {
	m, c := testDeps(t)
	bill := model.BillRow{BillID: "HB0006", IntroductionDate: model.ParseDate("2025-01-01")}
	acts := datedActions(c, "HB0006",
		"2025-01-01", "First Reading",
		"", "Do Pass Committee", // unparseable date
	)
	clock := testutil.NewFixedClock(2026, time.January, 1)
	b := NewBuilder(m, Config{SnapshotDays: []int{30}, ObservationDays: 60}, clock)

	rows := b.Rows(bill, acts, nil)
	require.Len(t, rows, 1)
	assert.Equal(t, float64(1), rows[0].Features["action_count"])
	assert.Equal(t, 0, rows[0].TargetAdvancedAfter,
		"an undatable advancement must not set a forward label")
}

func TestStalenessFeatures_AsOfNonLeakage(t *testing.T) {
	_, c := testDeps(t)
	asOf := model.ParseDate("2025-01-31")

	base := datedActions(c, "HB0007",
		"2025-01-05", "First Reading",
		"2025-01-20", "Referred to Rules Committee",
	)
	withFuture := append(append([]action.Classified{}, base...), datedActions(c, "HB0007",
		"2025-02-15", "Do Pass Committee",
		"2025-03-01", "Third Reading - Passed",
	)...)

	assert.Equal(t, StalenessFeatures(base, asOf), StalenessFeatures(withFuture, asOf),
		"staleness features must be invariant to rows dated after as-of")
}

func TestEarlyCosponsorCount(t *testing.T) {
	sponsors := []model.SponsorshipRow{
		{BillID: "HB0008", MemberID: "m1", Date: model.ParseDate("2025-01-02")},
		{BillID: "HB0008", MemberID: "m2", Date: model.ParseDate("2025-02-15")},
		{BillID: "HB0008", MemberID: "m3", Date: model.ParseDate("")},
		{BillID: "HB0009", MemberID: "m4", Date: model.ParseDate("2025-01-02")},
	}
	asOf := model.ParseDate("2025-01-31")
	assert.Equal(t, 1, EarlyCosponsorCount("HB0008", sponsors, asOf))
}
