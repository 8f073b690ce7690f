package domain

import "time"

type RiskSeverity string

const (
	RiskSeverityLow    RiskSeverity = "low"
	RiskSeverityMedium RiskSeverity = "medium"
	RiskSeverityHigh   RiskSeverity = "high"
)

// RiskContext is the per-employee input to the flight-risk rules.
// ScoreDrop is the decline between the two most recent scores, positive
// when the score fell.
type RiskContext struct {
	ScoreDrop       float64
	MissedCheckins  int
	Notes           string
	PeerFeedbackAvg float64
	TenureMonths    int
}

// RiskResult is the outcome of evaluating the rules over one context.
type RiskResult struct {
	Flagged  bool
	Reasons  []string
	Severity RiskSeverity
}

// RiskFlag is a persisted flight-risk alert. Resolution is one-way:
// resolved flags never reopen.
type RiskFlag struct {
	ID          int64
	EmployeeID  string
	Reason      string // comma-joined trigger codes
	TriggeredBy string
	Resolved    bool
	Severity    RiskSeverity
	CreatedAt   time.Time
}
