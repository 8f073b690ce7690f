package usecase

import (
	"context"
	"time"

	"payscope/internal/domain"
	"payscope/internal/engine/formula"
)

// trendWindow is how many recent records the trend comparison reads.
const trendWindow = 2

// ScoreService evaluates the company formula for an employee month and
// persists the outcome.
type ScoreService struct {
	Config    *ConfigService
	Employees EmployeeRepository
	Scores    ScoreRepository
	Audit     *AuditService
	Now       Clock
}

func NewScoreService(config *ConfigService, employees EmployeeRepository, scores ScoreRepository, audit *AuditService, now Clock) *ScoreService {
	if now == nil {
		now = time.Now
	}
	return &ScoreService{
		Config:    config,
		Employees: employees,
		Scores:    scores,
		Audit:     audit,
		Now:       now,
	}
}

// ScoreOutcome is the persisted result plus the direction relative to
// the previous record.
type ScoreOutcome struct {
	Record domain.ScoreRecord
	Result domain.ScoreResult
	Trend  domain.Trend
}

// CalculateAndPersist evaluates the current formula over the supplied
// component values and upserts the record for (employee, month).
// Recalculating a month replaces the earlier row, and the formula
// version that produced the score is pinned on the record.
func (s *ScoreService) CalculateAndPersist(ctx context.Context, employeeID, month string, values map[string]float64, overridePct float64, actor string) (ScoreOutcome, error) {
	employee, err := s.Employees.GetByID(ctx, employeeID)
	if err != nil {
		return ScoreOutcome{}, err
	}
	config, err := s.Config.GetCompanyConfig(ctx, employee.CompanyID)
	if err != nil {
		return ScoreOutcome{}, err
	}

	result, err := formula.CalculateScore(config.Components, values, overridePct)
	if err != nil {
		return ScoreOutcome{}, err
	}

	record := domain.ScoreRecord{
		EmployeeID:      employeeID,
		Month:           month,
		ComponentValues: values,
		FinalScore:      result.FinalScore,
		FormulaVersion:  config.Version,
		CreatedAt:       s.Now().UTC(),
	}
	record, err = s.Scores.Upsert(ctx, record)
	if err != nil {
		return ScoreOutcome{}, err
	}

	if s.Audit != nil {
		_, _ = s.Audit.Record(ctx, domain.AuditLogEntry{
			TableName:  "scores",
			ChangedBy:  actor,
			EmployeeID: employeeID,
			NewValue:   record,
			Reason:     "score_calculation",
		})
	}

	return ScoreOutcome{
		Record: record,
		Result: result,
		Trend:  s.trend(ctx, employeeID),
	}, nil
}

// History returns an employee's recent records, newest first.
func (s *ScoreService) History(ctx context.Context, employeeID string, limit int) ([]domain.ScoreRecord, error) {
	return s.Scores.ListByEmployee(ctx, employeeID, limit)
}

func (s *ScoreService) trend(ctx context.Context, employeeID string) domain.Trend {
	history, err := s.Scores.ListByEmployee(ctx, employeeID, trendWindow)
	if err != nil {
		return domain.TrendFlat
	}
	return formula.Trend(history)
}
