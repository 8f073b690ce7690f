package usecase

import (
	"context"
	"fmt"

	"payscope/internal/domain"
	"payscope/internal/engine/payfairness"
)

// FairnessService assembles the score/salary cohort for a company month
// and runs the pay-fairness analysis over it. Salaries are decrypted
// only for the duration of the analysis; nothing is written back.
type FairnessService struct {
	Employees EmployeeRepository
	Scores    ScoreRepository
	Salaries  SalaryCodec
}

func NewFairnessService(employees EmployeeRepository, scores ScoreRepository, salaries SalaryCodec) *FairnessService {
	return &FairnessService{Employees: employees, Scores: scores, Salaries: salaries}
}

// Analyze classifies a company's employees for one month into pay
// quadrants, grouped by the chosen dimension. Employees without a score
// for the month are left out of the cohort; employees without salary
// data are carried into the cohort and excluded by the engine so the
// caller can see the exclusion count.
func (s *FairnessService) Analyze(ctx context.Context, companyID, month string, groupBy payfairness.GroupBy, thresholds payfairness.Thresholds) (map[string]payfairness.Analysis, error) {
	employees, err := s.Employees.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	scores, err := s.Scores.ListByCompanyMonth(ctx, companyID, month)
	if err != nil {
		return nil, err
	}

	rows := make([]payfairness.Row, 0, len(employees))
	for _, employee := range employees {
		record, ok := scores[employee.ID]
		if !ok {
			continue
		}
		salary, err := s.decryptSalary(employee)
		if err != nil {
			return nil, fmt.Errorf("employee %s: %w", employee.ID, err)
		}
		rows = append(rows, payfairness.Row{
			EmployeeID: employee.ID,
			Score:      record.FinalScore,
			Salary:     salary,
			Role:       employee.Role,
			Department: employee.Department,
			ManagerID:  employee.ManagerID,
		})
	}

	return payfairness.AnalyzeGrouped(rows, groupBy, thresholds)
}

// decryptSalary maps an empty stored salary to nil rather than zero so
// unknown compensation is excluded instead of ranked at the bottom.
func (s *FairnessService) decryptSalary(employee domain.Employee) (*float64, error) {
	if employee.SalaryEncrypted == "" {
		return nil, nil
	}
	value, err := s.Salaries.Decrypt(employee.SalaryEncrypted)
	if err != nil {
		return nil, err
	}
	if value == 0 {
		return nil, nil
	}
	return &value, nil
}
