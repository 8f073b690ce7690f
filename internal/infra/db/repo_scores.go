package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"payscope/internal/domain"
)

type ScoreRepository struct {
	db *gorm.DB
}

func NewScoreRepository(db *gorm.DB) *ScoreRepository {
	return &ScoreRepository{db: db}
}

// Upsert writes the score for an (employee, month) pair; a
// recalculation for the same month replaces the earlier row.
func (r *ScoreRepository) Upsert(ctx context.Context, record domain.ScoreRecord) (domain.ScoreRecord, error) {
	if r.db == nil {
		return domain.ScoreRecord{}, errDBUnavailable
	}
	values, err := json.Marshal(record.ComponentValues)
	if err != nil {
		return domain.ScoreRecord{}, err
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	model := ScoreModel{
		EmployeeID:      record.EmployeeID,
		Month:           record.Month,
		ComponentValues: values,
		FinalScore:      record.FinalScore,
		FormulaVersion:  record.FormulaVersion,
		CreatedAt:       record.CreatedAt,
	}
	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "employee_id"}, {Name: "month"}},
			DoUpdates: clause.AssignmentColumns([]string{"component_values", "final_score", "formula_version", "created_at"}),
		}).
		Create(&model).Error
	if err != nil {
		return domain.ScoreRecord{}, err
	}
	return record, nil
}

// ListByEmployee returns an employee's scores newest month first.
func (r *ScoreRepository) ListByEmployee(ctx context.Context, employeeID string, limit int) ([]domain.ScoreRecord, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	q := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("month DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var models []ScoreModel
	if err := q.Find(&models).Error; err != nil {
		return nil, err
	}
	return scoreRecordsFromModels(models)
}

// ListByCompanyMonth returns every employee's score for one month,
// keyed by employee ID.
func (r *ScoreRepository) ListByCompanyMonth(ctx context.Context, companyID, month string) (map[string]domain.ScoreRecord, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var models []ScoreModel
	err := r.db.WithContext(ctx).
		Where("month = ? AND employee_id IN (SELECT id FROM employees WHERE company_id = ?)", month, companyID).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	records, err := scoreRecordsFromModels(models)
	if err != nil {
		return nil, err
	}
	out := make(map[string]domain.ScoreRecord, len(records))
	for _, record := range records {
		out[record.EmployeeID] = record
	}
	return out, nil
}

func scoreRecordsFromModels(models []ScoreModel) ([]domain.ScoreRecord, error) {
	out := make([]domain.ScoreRecord, 0, len(models))
	for _, model := range models {
		record := domain.ScoreRecord{
			EmployeeID:     model.EmployeeID,
			Month:          model.Month,
			FinalScore:     model.FinalScore,
			FormulaVersion: model.FormulaVersion,
			CreatedAt:      model.CreatedAt.UTC(),
		}
		if len(model.ComponentValues) > 0 {
			if err := json.Unmarshal(model.ComponentValues, &record.ComponentValues); err != nil {
				return nil, fmt.Errorf("decode component values for score %d: %w", model.ID, err)
			}
		}
		out = append(out, record)
	}
	return out, nil
}
