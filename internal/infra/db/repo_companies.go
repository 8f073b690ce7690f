package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"payscope/internal/domain"
)

type CompanyRepository struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

func (r *CompanyRepository) GetByID(ctx context.Context, companyID string) (*domain.Company, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model CompanyModel
	err := r.db.WithContext(ctx).Where("id = ?", companyID).Take(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: company %s", domain.ErrNotFound, companyID)
	}
	if err != nil {
		return nil, err
	}
	return companyFromModel(model)
}

func (r *CompanyRepository) ListAll(ctx context.Context) ([]domain.Company, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var models []CompanyModel
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Company, 0, len(models))
	for _, model := range models {
		company, err := companyFromModel(model)
		if err != nil {
			return nil, err
		}
		out = append(out, *company)
	}
	return out, nil
}

func (r *CompanyRepository) Create(ctx context.Context, company domain.Company) error {
	if r.db == nil {
		return errDBUnavailable
	}
	raw, err := json.Marshal(company.Config)
	if err != nil {
		return err
	}
	model := CompanyModel{
		ID:         company.ID,
		Name:       company.Name,
		Plan:       company.Plan,
		ConfigJSON: raw,
	}
	return r.db.WithContext(ctx).Create(&model).Error
}

// UpdateConfig replaces the config document only if the stored revision
// still matches expectedRev, and bumps the revision. A lost race
// surfaces as ErrNotFound so the caller re-reads instead of silently
// overwriting a concurrent approval or rejection.
func (r *CompanyRepository) UpdateConfig(ctx context.Context, companyID string, next domain.CompanyConfig, expectedRev int64) error {
	if r.db == nil {
		return errDBUnavailable
	}
	raw, err := json.Marshal(next)
	if err != nil {
		return err
	}
	result := r.db.WithContext(ctx).
		Model(&CompanyModel{}).
		Where("id = ? AND config_rev = ?", companyID, expectedRev).
		Updates(map[string]any{
			"config_json": raw,
			"config_rev":  gorm.Expr("config_rev + 1"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: company %s config rev %d", domain.ErrNotFound, companyID, expectedRev)
	}
	return nil
}

func companyFromModel(model CompanyModel) (*domain.Company, error) {
	company := domain.Company{
		ID:        model.ID,
		Name:      model.Name,
		Plan:      model.Plan,
		ConfigRev: model.ConfigRev,
	}
	if len(model.ConfigJSON) > 0 {
		if err := json.Unmarshal(model.ConfigJSON, &company.Config); err != nil {
			return nil, fmt.Errorf("decode config for company %s: %w", model.ID, err)
		}
	}
	return &company, nil
}
