package domain

// Employee is the subset of the employee record the core computes over.
// SalaryEncrypted holds the salarycrypt-encoded salary; empty means the
// salary is not yet known.
type Employee struct {
	ID              string
	CompanyID       string
	Name            string
	Role            string
	Department      string
	ManagerID       string
	SalaryEncrypted string
	MissedCheckins  int
	Notes           string
	TenureMonths    int
}
