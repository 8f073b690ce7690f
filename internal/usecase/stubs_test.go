package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"payscope/internal/domain"
	"payscope/internal/engine/auditchain"
)

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

// stubAuditRepo links and hashes entries the way the real repository
// does, so verification paths run against realistic chains.
type stubAuditRepo struct {
	mu        sync.Mutex
	entries   []domain.AuditLogEntry
	companyOf map[string]string // employee ID -> company ID
	nextID    int64
}

func newStubAuditRepo() *stubAuditRepo {
	return &stubAuditRepo{companyOf: make(map[string]string)}
}

func (r *stubAuditRepo) Append(ctx context.Context, entry domain.AuditLogEntry) (domain.AuditLogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	entry.Timestamp = entry.Timestamp.UTC().Truncate(time.Millisecond)
	entry.PreviousHash = domain.GenesisHash
	if len(r.entries) > 0 {
		entry.PreviousHash = r.entries[len(r.entries)-1].Hash
	}
	hash, err := auditchain.EntryHash(entry)
	if err != nil {
		return domain.AuditLogEntry{}, err
	}
	entry.Hash = hash
	r.nextID++
	entry.ID = r.nextID
	r.entries = append(r.entries, entry)
	return entry, nil
}

func (r *stubAuditRepo) List(ctx context.Context, limit, offset int) ([]domain.AuditLogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]domain.AuditLogEntry(nil), r.entries...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].ID < out[j].ID
		}
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	if offset > 0 && offset < len(out) {
		out = out[offset:]
	}
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *stubAuditRepo) ListByCompany(ctx context.Context, companyID string) ([]domain.AuditLogEntry, error) {
	all, _ := r.List(ctx, 0, 0)
	var out []domain.AuditLogEntry
	for _, entry := range all {
		if r.companyOf[entry.EmployeeID] == companyID {
			out = append(out, entry)
		}
	}
	return out, nil
}

type stubCompanyRepo struct {
	mu        sync.Mutex
	companies map[string]*domain.Company

	// revConflicts forces that many UpdateConfig calls to lose the
	// optimistic race before one succeeds.
	revConflicts int
	updateCalls  int
}

func newStubCompanyRepo(companies ...domain.Company) *stubCompanyRepo {
	repo := &stubCompanyRepo{companies: make(map[string]*domain.Company)}
	for i := range companies {
		c := companies[i]
		repo.companies[c.ID] = &c
	}
	return repo
}

func (r *stubCompanyRepo) GetByID(ctx context.Context, companyID string) (*domain.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	company, ok := r.companies[companyID]
	if !ok {
		return nil, fmt.Errorf("%w: company %s", domain.ErrNotFound, companyID)
	}
	out := *company
	return &out, nil
}

func (r *stubCompanyRepo) ListAll(ctx context.Context) ([]domain.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.companies))
	for id := range r.companies {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]domain.Company, 0, len(ids))
	for _, id := range ids {
		out = append(out, *r.companies[id])
	}
	return out, nil
}

func (r *stubCompanyRepo) UpdateConfig(ctx context.Context, companyID string, next domain.CompanyConfig, expectedRev int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updateCalls++
	company, ok := r.companies[companyID]
	if !ok {
		return fmt.Errorf("%w: company %s", domain.ErrNotFound, companyID)
	}
	if r.revConflicts > 0 {
		r.revConflicts--
		company.ConfigRev++
		return fmt.Errorf("%w: company %s", domain.ErrNotFound, companyID)
	}
	if company.ConfigRev != expectedRev {
		return fmt.Errorf("%w: company %s", domain.ErrNotFound, companyID)
	}
	company.Config = next
	company.ConfigRev++
	return nil
}

type stubEmployeeRepo struct {
	employees map[string]domain.Employee
}

func newStubEmployeeRepo(employees ...domain.Employee) *stubEmployeeRepo {
	repo := &stubEmployeeRepo{employees: make(map[string]domain.Employee)}
	for _, e := range employees {
		repo.employees[e.ID] = e
	}
	return repo
}

func (r *stubEmployeeRepo) GetByID(ctx context.Context, employeeID string) (*domain.Employee, error) {
	employee, ok := r.employees[employeeID]
	if !ok {
		return nil, fmt.Errorf("%w: employee %s", domain.ErrNotFound, employeeID)
	}
	return &employee, nil
}

func (r *stubEmployeeRepo) ListByCompany(ctx context.Context, companyID string) ([]domain.Employee, error) {
	ids := make([]string, 0, len(r.employees))
	for id := range r.employees {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var out []domain.Employee
	for _, id := range ids {
		if r.employees[id].CompanyID == companyID {
			out = append(out, r.employees[id])
		}
	}
	return out, nil
}

func (r *stubEmployeeRepo) Upsert(ctx context.Context, employee domain.Employee) (domain.Employee, error) {
	r.employees[employee.ID] = employee
	return employee, nil
}

type stubScoreRepo struct {
	// history maps employee ID to records, newest first.
	history map[string][]domain.ScoreRecord
}

func newStubScoreRepo() *stubScoreRepo {
	return &stubScoreRepo{history: make(map[string][]domain.ScoreRecord)}
}

func (r *stubScoreRepo) Upsert(ctx context.Context, record domain.ScoreRecord) (domain.ScoreRecord, error) {
	records := r.history[record.EmployeeID]
	for i, existing := range records {
		if existing.Month == record.Month {
			records[i] = record
			return record, nil
		}
	}
	r.history[record.EmployeeID] = append([]domain.ScoreRecord{record}, records...)
	return record, nil
}

func (r *stubScoreRepo) ListByEmployee(ctx context.Context, employeeID string, limit int) ([]domain.ScoreRecord, error) {
	records := r.history[employeeID]
	if limit > 0 && limit < len(records) {
		records = records[:limit]
	}
	return append([]domain.ScoreRecord(nil), records...), nil
}

func (r *stubScoreRepo) ListByCompanyMonth(ctx context.Context, companyID, month string) (map[string]domain.ScoreRecord, error) {
	out := make(map[string]domain.ScoreRecord)
	for employeeID, records := range r.history {
		for _, record := range records {
			if record.Month == month {
				out[employeeID] = record
			}
		}
	}
	return out, nil
}

type stubFlagRepo struct {
	flags  []domain.RiskFlag
	nextID int64
}

func (r *stubFlagRepo) CreateBatch(ctx context.Context, flags []domain.RiskFlag) ([]domain.RiskFlag, error) {
	out := make([]domain.RiskFlag, 0, len(flags))
	for _, flag := range flags {
		r.nextID++
		flag.ID = r.nextID
		r.flags = append(r.flags, flag)
		out = append(out, flag)
	}
	return out, nil
}

func (r *stubFlagRepo) ListByCompany(ctx context.Context, companyID string, onlyUnresolved bool) ([]domain.RiskFlag, error) {
	var out []domain.RiskFlag
	for _, flag := range r.flags {
		if onlyUnresolved && flag.Resolved {
			continue
		}
		out = append(out, flag)
	}
	return out, nil
}

func (r *stubFlagRepo) Resolve(ctx context.Context, flagID int64) error {
	for i, flag := range r.flags {
		if flag.ID == flagID && !flag.Resolved {
			r.flags[i].Resolved = true
			return nil
		}
	}
	return fmt.Errorf("%w: flag %d", domain.ErrNotFound, flagID)
}

type feedbackQuery struct {
	employeeID string
	from, to   time.Time
}

type stubFeedbackRepo struct {
	averages map[string]float64
	queries  []feedbackQuery
}

func (r *stubFeedbackRepo) AverageForWindow(ctx context.Context, employeeID string, from, to time.Time) (float64, error) {
	r.queries = append(r.queries, feedbackQuery{employeeID: employeeID, from: from, to: to})
	if r.averages == nil {
		return 0, nil
	}
	return r.averages[employeeID], nil
}

type stubCodec struct{}

func (stubCodec) Encrypt(value float64) (string, error) {
	if value == 0 {
		return "", nil
	}
	return fmt.Sprintf("enc:%g", value), nil
}

func (stubCodec) Decrypt(encoded string) (float64, error) {
	if encoded == "" {
		return 0, nil
	}
	var value float64
	if _, err := fmt.Sscanf(encoded, "enc:%g", &value); err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrDecryptionFailed, err)
	}
	return value, nil
}
