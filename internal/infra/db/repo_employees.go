package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"payscope/internal/domain"
)

type EmployeeRepository struct {
	db *gorm.DB
}

func NewEmployeeRepository(db *gorm.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

func (r *EmployeeRepository) GetByID(ctx context.Context, employeeID string) (*domain.Employee, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model EmployeeModel
	err := r.db.WithContext(ctx).Where("id = ?", employeeID).Take(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: employee %s", domain.ErrNotFound, employeeID)
	}
	if err != nil {
		return nil, err
	}
	employee := employeeFromModel(model)
	return &employee, nil
}

func (r *EmployeeRepository) ListByCompany(ctx context.Context, companyID string) ([]domain.Employee, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var models []EmployeeModel
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("id ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.Employee, 0, len(models))
	for _, model := range models {
		out = append(out, employeeFromModel(model))
	}
	return out, nil
}

// Upsert inserts or replaces an employee by ID. A missing ID gets a
// fresh one; the assigned ID is returned on the stored record.
func (r *EmployeeRepository) Upsert(ctx context.Context, employee domain.Employee) (domain.Employee, error) {
	if r.db == nil {
		return domain.Employee{}, errDBUnavailable
	}
	if employee.CompanyID == "" {
		return domain.Employee{}, errors.New("employee missing company_id")
	}
	if employee.ID == "" {
		employee.ID = uuid.NewString()
	}
	model := employeeModelFromDomain(employee)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "role", "department", "manager_id", "salary_encrypted", "missed_checkins", "notes", "tenure_months", "updated_at"}),
		}).
		Create(&model).Error
	if err != nil {
		return domain.Employee{}, err
	}
	return employee, nil
}

func employeeModelFromDomain(employee domain.Employee) EmployeeModel {
	return EmployeeModel{
		ID:              employee.ID,
		CompanyID:       employee.CompanyID,
		Name:            employee.Name,
		Role:            employee.Role,
		Department:      employee.Department,
		ManagerID:       stringPtrIfNotEmpty(employee.ManagerID),
		SalaryEncrypted: stringPtrIfNotEmpty(employee.SalaryEncrypted),
		MissedCheckins:  employee.MissedCheckins,
		Notes:           employee.Notes,
		TenureMonths:    employee.TenureMonths,
	}
}

func employeeFromModel(model EmployeeModel) domain.Employee {
	return domain.Employee{
		ID:              model.ID,
		CompanyID:       model.CompanyID,
		Name:            model.Name,
		Role:            model.Role,
		Department:      model.Department,
		ManagerID:       stringValue(model.ManagerID),
		SalaryEncrypted: stringValue(model.SalaryEncrypted),
		MissedCheckins:  model.MissedCheckins,
		Notes:           model.Notes,
		TenureMonths:    model.TenureMonths,
	}
}
