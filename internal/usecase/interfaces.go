package usecase

import (
	"context"
	"time"

	"payscope/internal/domain"
)

type Clock func() time.Time

type AuditLogRepository interface {
	// Append links, hashes, and persists the entry atomically with
	// respect to concurrent appenders.
	Append(ctx context.Context, entry domain.AuditLogEntry) (domain.AuditLogEntry, error)
	List(ctx context.Context, limit, offset int) ([]domain.AuditLogEntry, error)
	ListByCompany(ctx context.Context, companyID string) ([]domain.AuditLogEntry, error)
}

type CompanyRepository interface {
	GetByID(ctx context.Context, companyID string) (*domain.Company, error)
	ListAll(ctx context.Context) ([]domain.Company, error)
	// UpdateConfig performs a conditional write keyed on the company's
	// config revision; a stale revision yields domain.ErrNotFound.
	UpdateConfig(ctx context.Context, companyID string, next domain.CompanyConfig, expectedRev int64) error
}

type EmployeeRepository interface {
	GetByID(ctx context.Context, employeeID string) (*domain.Employee, error)
	ListByCompany(ctx context.Context, companyID string) ([]domain.Employee, error)
	Upsert(ctx context.Context, employee domain.Employee) (domain.Employee, error)
}

type ScoreRepository interface {
	Upsert(ctx context.Context, record domain.ScoreRecord) (domain.ScoreRecord, error)
	ListByEmployee(ctx context.Context, employeeID string, limit int) ([]domain.ScoreRecord, error)
	ListByCompanyMonth(ctx context.Context, companyID, month string) (map[string]domain.ScoreRecord, error)
}

type RiskFlagRepository interface {
	CreateBatch(ctx context.Context, flags []domain.RiskFlag) ([]domain.RiskFlag, error)
	ListByCompany(ctx context.Context, companyID string, onlyUnresolved bool) ([]domain.RiskFlag, error)
	Resolve(ctx context.Context, flagID int64) error
}

type PeerFeedbackRepository interface {
	AverageForWindow(ctx context.Context, employeeID string, from, to time.Time) (float64, error)
}

// NotificationDispatcher is best effort; implementations report
// failures in the result instead of returning an error.
type NotificationDispatcher interface {
	NotifyRoles(ctx context.Context, companyID string, roles []domain.Role, subject, body string) domain.NotificationResult
}

type ConfigCache interface {
	Get(ctx context.Context, companyID string) (*domain.CompanyConfig, bool, error)
	Put(ctx context.Context, companyID string, value domain.CompanyConfig, ttl time.Duration) error
	Invalidate(ctx context.Context, companyID string) error
}

// SalaryCodec hides the encryption scheme from the services that move
// salaries across the persistence boundary.
type SalaryCodec interface {
	Encrypt(value float64) (string, error)
	Decrypt(encoded string) (float64, error)
}
