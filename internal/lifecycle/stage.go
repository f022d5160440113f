package lifecycle

// Stage is a discrete point in a bill's procedural lifecycle, ordered by
// procedural progress. The integer ordering is load-bearing: the state
// machine compares stages to maintain the high-water mark, and the panel
// builder compares stages to decide whether a bill "advanced".
type Stage int

const (
	StageFiled Stage = iota
	StageInCommittee
	StagePassedCommittee
	StageFloorVote
	StageCrossedChambers
	StagePassedBoth
	StageGovernor
	StageSigned
	StageVetoed
)

var stageNames = map[Stage]string{
	StageFiled:           "FILED",
	StageInCommittee:     "IN_COMMITTEE",
	StagePassedCommittee: "PASSED_COMMITTEE",
	StageFloorVote:       "FLOOR_VOTE",
	StageCrossedChambers: "CROSSED_CHAMBERS",
	StagePassedBoth:      "PASSED_BOTH",
	StageGovernor:        "GOVERNOR",
	StageSigned:          "SIGNED",
	StageVetoed:          "VETOED",
}

// AllStageNames lists every stage name the machine can emit, in order.
// Used to verify the glossary defines each one at construction time.
func AllStageNames() []string {
	out := make([]string, 0, len(stageNames))
	for s := StageFiled; s <= StageVetoed; s++ {
		out = append(out, stageNames[s])
	}
	return out
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return "FILED"
}
