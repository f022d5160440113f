package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statehouse/rollcall/internal/action"
	"github.com/statehouse/rollcall/internal/glossary"
	"github.com/statehouse/rollcall/internal/model"
)

func newMachine(t *testing.T) *Machine {
	t.Helper()
	g, err := glossary.NewLoader("").Load()
	require.NoError(t, err)
	m, err := New(g, action.New(g))
	require.NoError(t, err)
	return m
}

func recs(texts ...string) []model.ActionRecord {
	out := make([]model.ActionRecord, len(texts))
	for i, s := range texts {
		out[i] = model.ActionRecord{BillID: "HB0001", RawText: s}
	}
	return out
}

func TestNew_MissingStageIsFatal(t *testing.T) {
	g := &glossary.Glossary{Stages: map[string]glossary.StageDef{"FILED": {}}}
	_, err := New(g, action.New(g))
	require.Error(t, err)
	assert.True(t, glossary.IsConfigurationError(err))
}

func TestFold_EmptyActionListNeverRaises(t *testing.T) {
	m := newMachine(t)
	res := m.Fold("HB0001", nil)
	assert.Equal(t, StageFiled, res.Current)
	assert.Equal(t, StageFiled, res.Highest)
	assert.Equal(t, model.StatusOpen, res.Status)
}

func TestFold_RollbackAfterPassingBothChambers(t *testing.T) {
	// A bill passes both chambers, then misses a deadline and is
	// re-referred. Procedurally it is back in committee; the high-water
	// mark must not move.
	m := newMachine(t)
	res := m.Fold("HB0001", recs(
		"Filed with the Clerk",
		"First Reading",
		"Referred to Rules Committee",
		"Do Pass Committee",
		"Third Reading - Passed",
		"Arrive in Senate",
		"Third Reading - Passed",
		"Rule 19(b) / Re-referred to Rules Committee",
	))

	assert.Equal(t, StageInCommittee, res.Current)
	assert.Contains(t, []Stage{StagePassedBoth, StageCrossedChambers}, res.Highest)
	assert.Equal(t, model.StatusOpen, res.Status)
}

func TestFold_SentToGovernorNoRollback(t *testing.T) {
	m := newMachine(t)
	res := m.Fold("HB0001", recs(
		"Third Reading - Passed",
		"Arrive in Senate",
		"Third Reading - Passed",
		"Sent to the Governor",
	))

	assert.Equal(t, StageGovernor, res.Current)
	assert.Equal(t, StageGovernor, res.Highest)
	assert.Equal(t, model.StatusOpen, res.Status, "OPEN until signed or Public Act")
}

func TestFold_RollbackInvariant(t *testing.T) {
	// For any sequence with a rollback strictly after the high-water
	// action: current <= highest, and current equals the stage implied
	// by the rollback action, never FILED.
	m := newMachine(t)

	for _, rollback := range []string{
		"Rule 19(a) / Re-referred to Rules Committee",
		"Pursuant to Senate Rule 3-9(b) / Re-referred to Assignments",
		"Tabled Pursuant to Rule",
	} {
		res := m.Fold("HB0001", recs(
			"First Reading",
			"Referred to Rules Committee",
			"Do Pass Committee",
			"Third Reading - Passed",
			rollback,
		))
		assert.LessOrEqual(t, res.Current, res.Highest, "rollback: %s", rollback)
		assert.Equal(t, StageInCommittee, res.Current, "rollback: %s", rollback)
		assert.NotEqual(t, StageFiled, res.Current, "must not reset to FILED")
		assert.Equal(t, StageFloorVote, res.Highest)
	}
}

func TestFold_ProgressResumesAfterRollback(t *testing.T) {
	m := newMachine(t)
	res := m.Fold("HB0001", recs(
		"Do Pass Committee",
		"Rule 19(a) / Re-referred to Rules Committee",
		"Assigned to Judiciary",
		"Do Pass Committee",
	))
	assert.Equal(t, StagePassedCommittee, res.Current)
	assert.Equal(t, StagePassedCommittee, res.Highest)
}

func TestFold_TerminalStability(t *testing.T) {
	m := newMachine(t)

	signed := recs(
		"Sent to the Governor",
		"Governor Approved",
		"Public Act . . . . . . . . . 103-0123",
		"Effective Date January 1, 2025",
	)
	res := m.Fold("HB0001", signed)
	assert.Equal(t, model.StatusPassed, res.Status)

	vetoed := m.Fold("HB0002", recs(
		"Sent to the Governor",
		"Governor Vetoed",
		"Placed on Calendar",
	))
	assert.Equal(t, model.StatusVetoed, vetoed.Status)
}

func TestFold_VetoOverrideBecomesPassed(t *testing.T) {
	m := newMachine(t)
	res := m.Fold("HB0001", recs(
		"Sent to the Governor",
		"Total Veto",
		"Public Act . . . . . . . . . 103-0456",
	))
	assert.Equal(t, model.StatusPassed, res.Status)
}

func TestFold_PassedNeverDowngraded(t *testing.T) {
	m := newMachine(t)
	res := m.Fold("HB0001", recs(
		"Governor Approved",
		"Amendatory Veto noted in journal",
	))
	assert.Equal(t, model.StatusPassed, res.Status)
}

func TestFold_TracksLastActionDate(t *testing.T) {
	m := newMachine(t)
	actions := []model.ActionRecord{
		{RawText: "First Reading", Date: model.ParseDate("2024-01-10")},
		{RawText: "Referred to Rules Committee", Date: model.ParseDate("2024-02-01")},
		{RawText: "Motion filed", Date: model.ParseDate("")}, // unparseable, ignored
	}
	res := m.Fold("HB0001", actions)
	assert.Equal(t, "2024-02-01", res.LastAction.String())
}

func TestStuckAfter(t *testing.T) {
	out := model.BillOutcome{
		BillID:       "HB0001",
		CurrentStage: StageInCommittee.String(),
		HighestStage: StageFloorVote.String(),
		Status:       model.StatusOpen,
		LastAction:   model.ParseDate("2024-01-01"),
	}

	assert.Equal(t, model.StatusStuck,
		StuckAfter(out, model.ParseDate("2024-08-01"), 90))
	assert.Equal(t, model.StatusOpen,
		StuckAfter(out, model.ParseDate("2024-02-01"), 90))

	// Terminal outcomes are untouched by the staleness heuristic.
	out.Status = model.StatusPassed
	assert.Equal(t, model.StatusPassed,
		StuckAfter(out, model.ParseDate("2024-08-01"), 90))
}
