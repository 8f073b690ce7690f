package db

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"payscope/internal/domain"
)

type RiskFlagRepository struct {
	db *gorm.DB
}

func NewRiskFlagRepository(db *gorm.DB) *RiskFlagRepository {
	return &RiskFlagRepository{db: db}
}

// CreateBatch inserts a batch of flags atomically; either the whole
// evaluation run lands or none of it does.
func (r *RiskFlagRepository) CreateBatch(ctx context.Context, flags []domain.RiskFlag) ([]domain.RiskFlag, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	if len(flags) == 0 {
		return nil, nil
	}
	models := make([]RiskFlagModel, 0, len(flags))
	now := time.Now().UTC()
	for _, flag := range flags {
		createdAt := flag.CreatedAt
		if createdAt.IsZero() {
			createdAt = now
		}
		models = append(models, RiskFlagModel{
			EmployeeID:  flag.EmployeeID,
			Reason:      flag.Reason,
			TriggeredBy: flag.TriggeredBy,
			Resolved:    flag.Resolved,
			Severity:    string(flag.Severity),
			CreatedAt:   createdAt,
		})
	}
	if err := r.db.WithContext(ctx).Create(&models).Error; err != nil {
		return nil, err
	}
	out := make([]domain.RiskFlag, 0, len(models))
	for _, model := range models {
		out = append(out, riskFlagFromModel(model))
	}
	return out, nil
}

func (r *RiskFlagRepository) ListByCompany(ctx context.Context, companyID string, onlyUnresolved bool) ([]domain.RiskFlag, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	q := r.db.WithContext(ctx).
		Where("employee_id IN (SELECT id FROM employees WHERE company_id = ?)", companyID)
	if onlyUnresolved {
		q = q.Where("resolved = false")
	}
	var models []RiskFlagModel
	if err := q.Order("created_at DESC, id DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]domain.RiskFlag, 0, len(models))
	for _, model := range models {
		out = append(out, riskFlagFromModel(model))
	}
	return out, nil
}

// Resolve marks a flag resolved, one way only. A missing or
// already-resolved flag yields ErrNotFound.
func (r *RiskFlagRepository) Resolve(ctx context.Context, flagID int64) error {
	if r.db == nil {
		return errDBUnavailable
	}
	result := r.db.WithContext(ctx).
		Model(&RiskFlagModel{}).
		Where("id = ? AND resolved = false", flagID).
		Update("resolved", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: unresolved flight risk flag %d", domain.ErrNotFound, flagID)
	}
	return nil
}

func riskFlagFromModel(model RiskFlagModel) domain.RiskFlag {
	return domain.RiskFlag{
		ID:          model.ID,
		EmployeeID:  model.EmployeeID,
		Reason:      model.Reason,
		TriggeredBy: model.TriggeredBy,
		Resolved:    model.Resolved,
		Severity:    domain.RiskSeverity(model.Severity),
		CreatedAt:   model.CreatedAt.UTC(),
	}
}
