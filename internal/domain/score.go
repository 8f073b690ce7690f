package domain

import "time"

// Trend is the direction of an employee's score between the two most
// recent records.
type Trend string

const (
	TrendUp   Trend = "↗"
	TrendDown Trend = "↘"
	TrendFlat Trend = "→"
)

// ScoreRecord is one computed score for an (employee, month) pair.
// Upsert semantics: a recalculation for the same month replaces the row.
type ScoreRecord struct {
	EmployeeID      string
	Month           string // YYYY-MM
	ComponentValues map[string]float64
	FinalScore      float64
	FormulaVersion  int
	CreatedAt       time.Time
}

// ScoreResult is the outcome of one formula evaluation, before and after
// the manager override.
type ScoreResult struct {
	BaseScore  float64
	FinalScore float64
}
