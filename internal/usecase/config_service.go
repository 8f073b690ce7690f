package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"payscope/internal/domain"
	"payscope/internal/engine/configver"
	"payscope/internal/engine/formula"
)

// updateRetries bounds the optimistic retry loop against concurrent
// config writers.
const updateRetries = 3

const (
	auditTableConfig  = "companies.config_json"
	auditTablePending = "companies.config_json.pendingFormulaChanges"
)

// ConfigService owns the versioned-config lifecycle: reads through the
// TTL cache, role-routed formula updates, and the pending-change
// approval flow. Every mutation lands in the audit chain and invalidates
// the cache.
type ConfigService struct {
	Companies CompanyRepository
	Audit     *AuditService
	Cache     ConfigCache
	Notifier  NotificationDispatcher
	Now       Clock

	// PlanCap maps a plan name to its custom-metric ceiling; nil means
	// unlimited for every plan.
	PlanCap func(plan string) int

	CacheTTL time.Duration

	validate *validator.Validate
}

func NewConfigService(companies CompanyRepository, audit *AuditService, cache ConfigCache, notifier NotificationDispatcher, now Clock) *ConfigService {
	if now == nil {
		now = time.Now
	}
	return &ConfigService{
		Companies: companies,
		Audit:     audit,
		Cache:     cache,
		Notifier:  notifier,
		Now:       now,
		CacheTTL:  5 * time.Minute,
		validate:  validator.New(),
	}
}

// GetCompanyConfig returns the current config, served from cache when
// fresh.
func (s *ConfigService) GetCompanyConfig(ctx context.Context, companyID string) (domain.CompanyConfig, error) {
	if s.Cache != nil {
		if cached, ok, err := s.Cache.Get(ctx, companyID); err == nil && ok {
			return *cached, nil
		}
	}
	company, err := s.Companies.GetByID(ctx, companyID)
	if err != nil {
		return domain.CompanyConfig{}, err
	}
	if s.Cache != nil {
		_ = s.Cache.Put(ctx, companyID, company.Config, s.CacheTTL)
	}
	return company.Config, nil
}

// ListPendingChanges returns the formula changes still awaiting a
// decision.
func (s *ConfigService) ListPendingChanges(ctx context.Context, companyID string) ([]domain.PendingChange, error) {
	company, err := s.Companies.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return company.Config.LivePending(), nil
}

// UpdateResult reports how an update landed: committed immediately with
// the new version, or queued as a pending change.
type UpdateResult struct {
	Committed bool
	Version   int
	Pending   *domain.PendingChange
}

// UpdateFormula validates a patch and routes it by role: owners and HR
// commit immediately, managers queue a pending change, everyone else is
// refused. Commits notify managers; proposals notify the approvers.
func (s *ConfigService) UpdateFormula(ctx context.Context, companyID, actor string, role domain.Role, patch domain.ConfigPatch, reason string) (UpdateResult, error) {
	if !domain.CanProposeConfig(role) {
		return UpdateResult{}, fmt.Errorf("role %s may not change the scoring formula", role)
	}
	if err := s.validatePatch(patch); err != nil {
		return UpdateResult{}, err
	}

	var result UpdateResult
	var previous domain.CompanyConfig
	err := s.withCompany(ctx, companyID, func(company *domain.Company) (domain.CompanyConfig, error) {
		previous = company.Config
		if s.PlanCap != nil {
			if err := configver.CheckPlanCap(patch, s.PlanCap(company.Plan)); err != nil {
				return domain.CompanyConfig{}, err
			}
		}
		if domain.CanCommitConfig(role) {
			next, err := configver.Commit(company.Config, patch, reason, actor, s.Now())
			if err != nil {
				return domain.CompanyConfig{}, err
			}
			result = UpdateResult{Committed: true, Version: next.Version}
			return next, nil
		}
		next, change, err := configver.Propose(company.Config, patch, reason, actor, s.Now())
		if err != nil {
			return domain.CompanyConfig{}, err
		}
		result = UpdateResult{Version: next.Version, Pending: &change}
		return next, nil
	})
	if err != nil {
		return UpdateResult{}, err
	}

	if result.Committed {
		s.audit(ctx, auditTableConfig, actor, reason, previous, patch)
		s.notify(ctx, companyID, []domain.Role{domain.RoleManager},
			"Scoring Formula Updated",
			fmt.Sprintf("The scoring formula is now version %d.", result.Version))
	} else {
		s.audit(ctx, auditTablePending, actor, reason, previous.PendingFormulaChanges, result.Pending)
		s.notify(ctx, companyID, []domain.Role{domain.RoleOwner, domain.RoleHR},
			"Formula Change Awaiting Approval",
			fmt.Sprintf("%s proposed a scoring formula change: %s. It auto-approves in 24h without a decision.", actor, reason))
	}
	return result, nil
}

// ApproveChange commits a pending change on behalf of its proposer. A
// change already approved or rejected yields ErrNotFound.
func (s *ConfigService) ApproveChange(ctx context.Context, companyID, changeID, approver string, role domain.Role) error {
	if !domain.CanApproveChange(role) {
		return fmt.Errorf("role %s may not approve formula changes", role)
	}
	var previous, committed domain.CompanyConfig
	err := s.withCompany(ctx, companyID, func(company *domain.Company) (domain.CompanyConfig, error) {
		previous = company.Config
		next, err := configver.Approve(company.Config, changeID, approver, s.Now())
		if err != nil {
			return domain.CompanyConfig{}, err
		}
		committed = next
		return next, nil
	})
	if err != nil {
		return err
	}
	version := committed.Version
	s.audit(ctx, auditTablePending, approver, "approve_formula_change:"+changeID, previous, committed)
	s.notify(ctx, companyID, []domain.Role{domain.RoleManager},
		"Formula Change Approved",
		fmt.Sprintf("Pending change %s was approved; the formula is now version %d.", changeID, version))
	return nil
}

// RejectChange marks a pending change rejected without touching the
// applied config.
func (s *ConfigService) RejectChange(ctx context.Context, companyID, changeID, rejector string, role domain.Role, reason string) error {
	if !domain.CanApproveChange(role) {
		return fmt.Errorf("role %s may not reject formula changes", role)
	}
	var previous, rejected domain.CompanyConfig
	err := s.withCompany(ctx, companyID, func(company *domain.Company) (domain.CompanyConfig, error) {
		previous = company.Config
		next, err := configver.Reject(company.Config, changeID, rejector, reason, s.Now())
		if err != nil {
			return domain.CompanyConfig{}, err
		}
		rejected = next
		return next, nil
	})
	if err != nil {
		return err
	}
	s.audit(ctx, auditTablePending, rejector, "reject_formula_change:"+changeID, previous.PendingFormulaChanges, rejected.PendingFormulaChanges)
	s.notify(ctx, companyID, []domain.Role{domain.RoleManager},
		"Formula Change Rejected",
		fmt.Sprintf("Pending change %s was rejected: %s", changeID, reason))
	return nil
}

// AutoApproveExpired commits every pending change older than the
// auto-approval age on behalf of the system actor. Returns how many
// changes it approved.
func (s *ConfigService) AutoApproveExpired(ctx context.Context, companyID string) (int, error) {
	company, err := s.Companies.GetByID(ctx, companyID)
	if err != nil {
		return 0, err
	}
	expired := configver.ExpiredPending(company.Config, s.Now())

	approved := 0
	for _, change := range expired {
		var previous, committed domain.CompanyConfig
		err := s.withCompany(ctx, companyID, func(company *domain.Company) (domain.CompanyConfig, error) {
			previous = company.Config
			next, err := configver.Approve(company.Config, change.ID, configver.SystemAutoApprover, s.Now())
			if err != nil {
				return domain.CompanyConfig{}, err
			}
			committed = next
			return next, nil
		})
		if errors.Is(err, domain.ErrNotFound) {
			// Someone decided the change between the read and the write.
			continue
		}
		if err != nil {
			return approved, err
		}
		approved++
		s.audit(ctx, auditTablePending, configver.SystemAutoApprover, "approve_formula_change:"+change.ID, previous, committed)
	}
	if approved > 0 {
		s.notify(ctx, companyID, []domain.Role{domain.RoleOwner, domain.RoleHR},
			"Formula Changes Auto-Approved",
			fmt.Sprintf("%d pending formula changes passed the 24h window and were auto-approved.", approved))
	}
	return approved, nil
}

// withCompany applies a config transition under optimistic concurrency:
// read the company, compute the next document, and write it conditioned
// on the revision read. A lost race re-reads and retries; exhausting the
// retries surfaces as ErrUpdateConflict, never as ErrNotFound, so
// callers can tell a contended company from a missing entity.
func (s *ConfigService) withCompany(ctx context.Context, companyID string, transition func(*domain.Company) (domain.CompanyConfig, error)) error {
	for attempt := 0; attempt < updateRetries; attempt++ {
		company, err := s.Companies.GetByID(ctx, companyID)
		if err != nil {
			return err
		}
		next, err := transition(company)
		if err != nil {
			return err
		}
		err = s.Companies.UpdateConfig(ctx, companyID, next, company.ConfigRev)
		if err == nil {
			if s.Cache != nil {
				_ = s.Cache.Invalidate(ctx, companyID)
			}
			return nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
	}
	return fmt.Errorf("%w: company %s after %d attempts", domain.ErrUpdateConflict, companyID, updateRetries)
}

func (s *ConfigService) validatePatch(patch domain.ConfigPatch) error {
	if err := s.validate.Struct(patch); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
	}
	if patch.Components != nil {
		if err := formula.ValidateConfig(patch.Components); err != nil {
			return err
		}
	}
	return nil
}

// audit is best effort for config mutations: the config write already
// committed, so a failed audit append is logged by the repository layer
// rather than unwinding the change.
func (s *ConfigService) audit(ctx context.Context, table, actor, reason string, oldValue, newValue any) {
	if s.Audit == nil {
		return
	}
	_, _ = s.Audit.Record(ctx, domain.AuditLogEntry{
		TableName: table,
		ChangedBy: actor,
		OldValue:  oldValue,
		NewValue:  newValue,
		Reason:    reason,
	})
}

func (s *ConfigService) notify(ctx context.Context, companyID string, roles []domain.Role, subject, body string) {
	if s.Notifier == nil {
		return
	}
	s.Notifier.NotifyRoles(ctx, companyID, roles, subject, body)
}
