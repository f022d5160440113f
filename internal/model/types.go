package model

// Chamber identifies which chamber an action or member belongs to.
type Chamber string

const (
	ChamberHouse  Chamber = "House"
	ChamberSenate Chamber = "Senate"
)

// BillRow is a bill dimension row as delivered by the scraper ETL.
type BillRow struct {
	BillID           string  `json:"bill_id"`
	BillType         string  `json:"bill_type"`
	BillNumberRaw    string  `json:"bill_number_raw"`
	Chamber          Chamber `json:"chamber"`
	Description      string  `json:"description,omitempty"`
	IntroductionDate Date    `json:"introduction_date"`
}

// ActionRecord is a single bill action fact row.
//
// Ordering within a bill is by occurrence as scraped; the pipeline never
// resorts actions. Records are immutable once produced.
type ActionRecord struct {
	BillID  string  `json:"bill_id"`
	Chamber Chamber `json:"chamber"`
	Date    Date    `json:"date"` // may be the zero Date (unparseable/empty)
	RawText string  `json:"raw_text"`
}

// MemberRow is a legislator dimension row.
type MemberRow struct {
	MemberID string  `json:"member_id"`
	Name     string  `json:"name"`
	Party    string  `json:"party,omitempty"`
	Chamber  Chamber `json:"chamber"`
	District string  `json:"district,omitempty"`
}

// VoteCast enumerates the recorded positions on a roll call.
type VoteCast string

const (
	VoteYea       VoteCast = "Y"
	VoteNay       VoteCast = "N"
	VotePresent   VoteCast = "P"
	VoteNotVoting VoteCast = "NV"
)

// VoteCastRow is a single member's vote on a roll-call event.
//
// MemberID is empty when the scraped roster name could not be resolved
// against the member dimension; the roster package fills it in where a
// normalized-name match exists.
type VoteCastRow struct {
	VoteEventID string   `json:"vote_event_id"`
	BillID      string   `json:"bill_id"`
	MemberID    string   `json:"member_id,omitempty"`
	RawName     string   `json:"raw_name,omitempty"`
	Cast        VoteCast `json:"vote_cast"`
}

// SlipPosition enumerates witness-slip positions.
type SlipPosition string

const (
	SlipProponent  SlipPosition = "Proponent"
	SlipOpponent   SlipPosition = "Opponent"
	SlipNoPosition SlipPosition = "No Position"
)

// WitnessSlipRow is a witness slip fact row.
type WitnessSlipRow struct {
	BillID        string       `json:"bill_id"`
	Position      SlipPosition `json:"position"`
	Organization  string       `json:"organization"`
	Name          string       `json:"name"`
	TestimonyType string       `json:"testimony_type,omitempty"`
}

// SponsorshipRow links a member to a bill they sponsor or co-sponsor.
type SponsorshipRow struct {
	BillID   string `json:"bill_id"`
	MemberID string `json:"member_id"`
	Primary  bool   `json:"primary"`
	Date     Date   `json:"date"`
}

// LifecycleStatus is the terminal-outcome classification of a bill.
type LifecycleStatus string

const (
	StatusOpen   LifecycleStatus = "OPEN"
	StatusPassed LifecycleStatus = "PASSED"
	StatusVetoed LifecycleStatus = "VETOED"
	StatusStuck  LifecycleStatus = "STUCK"
	StatusDead   LifecycleStatus = "DEAD"
)

// BillOutcome is the per-bill derived outcome record.
//
// CurrentStage reflects the last non-superseded procedural position and
// may be strictly earlier than HighestStage when a re-referral or tabling
// rolled the bill back. This divergence is deliberate; see the lifecycle
// package.
type BillOutcome struct {
	BillID       string          `json:"bill_id"`
	CurrentStage string          `json:"current_stage"`
	HighestStage string          `json:"highest_stage"`
	Status       LifecycleStatus `json:"lifecycle_status"`
	LastAction   Date            `json:"last_action_date"`
}

// PanelRow is one leakage-free training example: features as of the
// snapshot date, labels from the forward observation window only.
type PanelRow struct {
	BillID              string             `json:"bill_id"`
	SnapshotDay         int                `json:"snapshot_day"`
	AsOfDate            Date               `json:"as_of_date"`
	Features            map[string]float64 `json:"features"`
	TargetAdvancedAfter int                `json:"target_advanced_after"`
	TargetLawAfter      int                `json:"target_law_after"`
}

// CoalitionRow assigns a member to a voting coalition with its embedding.
type CoalitionRow struct {
	MemberID    string    `json:"member_id"`
	CoalitionID int       `json:"coalition_id"`
	Embedding   []float64 `json:"embedding"`
}

// AnomalyRow is the witness-slip coordination score for one bill.
type AnomalyRow struct {
	BillID    string  `json:"bill_id"`
	Score     float64 `json:"anomaly_score"` // normalized to [0,1]
	IsAnomaly bool    `json:"is_anomaly"`
	Reason    string  `json:"anomaly_reason,omitempty"`
}

// RunSummary records one pipeline run for the pass/fail report.
type RunSummary struct {
	RunID    string         `json:"run_id"`
	Started  string         `json:"started"`
	Stages   []StageSummary `json:"stages"`
	Warnings int            `json:"warnings"`
}

// StageSummary is the per-stage portion of a run summary.
type StageSummary struct {
	Name     string `json:"name"`
	Rows     int    `json:"rows"`
	Failures int    `json:"failures"`
	Passed   bool   `json:"passed"`
}
