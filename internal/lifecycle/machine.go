// Package lifecycle folds a bill's chronological action list into its
// procedural state: the current stage, the highest stage ever reached,
// and the terminal outcome.
//
// The two stage values diverge on purpose. Legislative procedure is
// non-linear: a bill that passed both chambers can be re-referred to a
// rules committee under a deadline rule and is then, procedurally, back
// in committee. CurrentStage tracks where the bill actually is;
// HighestStage is the monotonic high-water mark. Collapsing them would
// make a stalled bill display "sent to Governor" when it never was.
package lifecycle

import (
	"log/slog"

	"github.com/statehouse/rollcall/internal/action"
	"github.com/statehouse/rollcall/internal/glossary"
	"github.com/statehouse/rollcall/internal/model"
)

// stageTargets maps an action category to the stage it implies. Most
// categories are a plain monotonic lookup; floor passes are context
// dependent (see targetFor) and rollbacks are handled separately.
var stageTargets = map[action.Category]Stage{
	action.CategoryFiled:           StageFiled,
	action.CategoryFirstReading:    StageFiled,
	action.CategoryReferred:        StageInCommittee,
	action.CategoryReportFavorable: StagePassedCommittee,
	action.CategoryCrossedChambers: StageCrossedChambers,
	action.CategoryPassedBoth:      StagePassedBoth,
	action.CategorySentToGovernor:  StageGovernor,
	action.CategorySigned:          StageSigned,
	action.CategoryVetoed:          StageVetoed,
}

// rollbackTargets maps each non-terminal rollback category to the stage
// the bill returns to. Never StageFiled: a re-referral puts the bill back
// in an assignment/rules committee, and a tabled bill likewise awaits
// committee or floor revival.
var rollbackTargets = map[action.Category]Stage{
	action.CategoryDeadlineReReferral: StageInCommittee,
	action.CategoryTabling:            StageInCommittee,
}

// Machine classifies and folds action sequences. Immutable after New;
// safe for concurrent use across bills.
type Machine struct {
	classifier *action.Classifier
}

// New builds a Machine and verifies that every stage it can emit exists
// in the glossary. A missing stage entry is a fatal configuration error,
// not a soft warning.
func New(g *glossary.Glossary, c *action.Classifier) (*Machine, error) {
	if err := g.VerifyStages(AllStageNames()); err != nil {
		return nil, err
	}
	return &Machine{classifier: c}, nil
}

// Result is the folded state for one bill.
type Result struct {
	Current    Stage
	Highest    Stage
	Status     model.LifecycleStatus
	LastAction model.Date
}

// Fold scans a bill's actions in the order given (assumed chronological,
// never resorted) and returns the folded lifecycle state.
//
// An empty or entirely unclassifiable action list yields FILED/FILED/OPEN
// and never an error: one unparseable bill must not abort a batch.
func (m *Machine) Fold(billID string, actions []model.ActionRecord) Result {
	return m.FoldClassified(billID, m.classifier.ClassifyAll(actions))
}

// FoldClassified is Fold over pre-classified actions. The panel builder
// uses this to re-fold filtered subsets without re-classifying text.
func (m *Machine) FoldClassified(billID string, actions []action.Classified) Result {
	res := Result{Current: StageFiled, Highest: StageFiled, Status: model.StatusOpen}

	for _, act := range actions {
		// Unknown sorts last, so an unknown LastAction is never Before a
		// real date; the first known date must be taken unconditionally.
		if act.Date.Known() && (!res.LastAction.Known() || res.LastAction.Before(act.Date)) {
			res.LastAction = act.Date
		}

		if act.IsRollback {
			// A rollback after the high-water-mark action resets the
			// current position only. The high-water mark never moves
			// backwards.
			target := rollbackTargets[act.Category]
			if target < res.Current {
				slog.Debug("rollback action",
					"bill_id", billID,
					"category", string(act.Category),
					"from", res.Current.String(),
					"to", target.String(),
				)
			}
			res.Current = target
			continue
		}

		target, ok := m.targetFor(act.Category, res.Current)
		if !ok {
			continue
		}
		if target > res.Current {
			res.Current = target
		}
		if res.Current > res.Highest {
			res.Highest = res.Current
		}

		res.Status = nextStatus(res.Status, act.Category)
	}

	return res
}

// targetFor resolves the stage implied by a category given the current
// position. Floor passes are the one context-dependent case: a third
// reading passed in the second chamber means the bill passed both.
func (m *Machine) targetFor(cat action.Category, current Stage) (Stage, bool) {
	if cat == action.CategoryFloorPass {
		if current >= StageCrossedChambers {
			return StagePassedBoth, true
		}
		return StageFloorVote, true
	}
	target, ok := stageTargets[cat]
	return target, ok
}

// nextStatus applies terminal-outcome classification.
//
// Once PASSED or VETOED, further non-contradictory actions never change
// the status. The one contradictory transition allowed is VETOED →
// PASSED: a Public Act or signature after a veto is an override being
// enacted. PASSED is never downgraded.
func nextStatus(cur model.LifecycleStatus, cat action.Category) model.LifecycleStatus {
	switch cat {
	case action.CategorySigned:
		return model.StatusPassed
	case action.CategoryVetoed:
		if cur == model.StatusPassed {
			return cur
		}
		return model.StatusVetoed
	default:
		return cur
	}
}

// Outcome folds a bill and shapes the result as the derived outcome row.
func (m *Machine) Outcome(bill model.BillRow, actions []model.ActionRecord) model.BillOutcome {
	res := m.Fold(bill.BillID, actions)
	return model.BillOutcome{
		BillID:       bill.BillID,
		CurrentStage: res.Current.String(),
		HighestStage: res.Highest.String(),
		Status:       res.Status,
		LastAction:   res.LastAction,
	}
}

// StuckAfter is the staleness heuristic layered on top of the state
// machine, deliberately separate from Fold: the classifier itself never
// marks a bill DEAD or STUCK. An OPEN bill that has not moved in
// thresholdDays as of asOf, and has not reached the Governor, is STUCK.
func StuckAfter(out model.BillOutcome, asOf model.Date, thresholdDays int) model.LifecycleStatus {
	if out.Status != model.StatusOpen {
		return out.Status
	}
	if !out.LastAction.Known() || !asOf.Known() {
		return out.Status
	}
	if out.CurrentStage == StageGovernor.String() {
		return out.Status
	}
	if out.LastAction.DaysUntil(asOf) > thresholdDays {
		return model.StatusStuck
	}
	return out.Status
}
