package model

// Stage is a fixed position in the sales funnel.
type Stage string

const (
	StageProspecting   Stage = "Prospecting"
	StageQualification Stage = "Qualification"
	StageProposal      Stage = "Proposal"
	StageNegotiation   Stage = "Negotiation"
	StageClosedWon     Stage = "Closed Won"
	StageClosedLost    Stage = "Closed Lost"
)

// FunnelOrder is the canonical stage progression used for conversion
// analysis, independent of which stages actually occur in the data.
var FunnelOrder = []Stage{
	StageProspecting,
	StageQualification,
	StageProposal,
	StageNegotiation,
	StageClosedWon,
}

// Closed reports whether the stage is a terminal one.
func (s Stage) Closed() bool {
	return s == StageClosedWon || s == StageClosedLost
}

// Opportunity is a read-only snapshot of a sales opportunity.
// AccountID references an Account but is not enforced; analyzers tolerate
// opportunities whose account is missing.
type Opportunity struct {
	ID          string  `json:"id" yaml:"id"`
	AccountID   string  `json:"account_id" yaml:"account_id"`
	Name        string  `json:"name" yaml:"name"`
	Stage       Stage   `json:"stage" yaml:"stage"`
	Value       float64 `json:"value" yaml:"value"`             // >= 0
	Probability float64 `json:"probability" yaml:"probability"` // 0-100
	CloseDate   string  `json:"close_date" yaml:"close_date"`
	DaysInStage int     `json:"days_in_stage" yaml:"days_in_stage"` // >= 0
	ProductLine string  `json:"product_line" yaml:"product_line"`
}
