package domain

import "time"

type Frequency string

const (
	FrequencyWeekly    Frequency = "weekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
)

// ScoreComponent is one weighted input of the scoring formula. Weight is
// a percentage (1-100); Scale is the rating scale raw values arrive on.
type ScoreComponent struct {
	Name   string  `json:"name" validate:"required,min=1"`
	Weight float64 `json:"weight" validate:"required,min=1,max=100"`
	Scale  float64 `json:"scale" validate:"required"`
}

// ConfigPatch is a partial update to a company config. Nil/empty fields
// are left untouched by the merge.
type ConfigPatch struct {
	Components    []ScoreComponent `json:"components,omitempty" validate:"omitempty,min=2,max=4,dive"`
	Frequency     Frequency        `json:"frequency,omitempty" validate:"omitempty,oneof=weekly monthly quarterly"`
	CustomMetrics []string         `json:"customMetrics,omitempty" validate:"omitempty,dive,min=1"`
}

type ChangeStatus string

const (
	ChangePending  ChangeStatus = "pending"
	ChangeApproved ChangeStatus = "approved"
	ChangeRejected ChangeStatus = "rejected"
)

// PendingChange is a queued formula change awaiting approval, rejection,
// or 24h auto-expiry. Approved and rejected are terminal.
type PendingChange struct {
	ID              string       `json:"id"`
	Patch           ConfigPatch  `json:"patch"`
	Reason          string       `json:"reason"`
	ChangedBy       string       `json:"changedBy"`
	CreatedAt       time.Time    `json:"createdAt"`
	Status          ChangeStatus `json:"status"`
	ApprovedBy      string       `json:"approvedBy,omitempty"`
	ApprovedAt      *time.Time   `json:"approvedAt,omitempty"`
	RejectedBy      string       `json:"rejectedBy,omitempty"`
	RejectedAt      *time.Time   `json:"rejectedAt,omitempty"`
	RejectionReason string       `json:"rejectionReason,omitempty"`
}

// RiskConfig holds the flight-risk rule thresholds for a company. Zero
// values fall back to engine defaults.
type RiskConfig struct {
	ScoreDropThreshold      float64  `json:"scoreDropThreshold,omitempty"`
	MissedCheckinsThreshold int      `json:"missedCheckinsThreshold,omitempty"`
	PeerFeedbackFloor       float64  `json:"peerFeedbackFloor,omitempty"`
	Keywords                []string `json:"keywords,omitempty"`
	TenureSensitivity       bool     `json:"tenureSensitivity,omitempty"`
	AlertRecipients         []Role   `json:"alertRecipients,omitempty"`
}

// CompanyConfig is the versioned configuration document owned by one
// company. It is never mutated in place: every committed change produces
// a new document with a bumped version.
type CompanyConfig struct {
	Version               int              `json:"version"`
	Components            []ScoreComponent `json:"components,omitempty"`
	Frequency             Frequency        `json:"frequency,omitempty"`
	CustomMetrics         []string         `json:"customMetrics,omitempty"`
	PendingFormulaChanges []PendingChange  `json:"pendingFormulaChanges,omitempty"`
	FlightRisk            RiskConfig       `json:"flightRisk,omitempty"`
	UpdatedAt             time.Time        `json:"updatedAt"`
	UpdatedBy             string           `json:"updatedBy,omitempty"`
}

// LivePending returns the pending entries still awaiting a decision.
func (c CompanyConfig) LivePending() []PendingChange {
	var out []PendingChange
	for _, change := range c.PendingFormulaChanges {
		if change.Status == ChangePending {
			out = append(out, change)
		}
	}
	return out
}

type Company struct {
	ID     string
	Name   string
	Plan   string
	Config CompanyConfig
	// ConfigRev is the store's optimistic-concurrency token for Config;
	// it moves on every config write, including ones that leave
	// Config.Version alone.
	ConfigRev int64
}
