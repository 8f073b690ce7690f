package usecase

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"payscope/internal/domain"
	"payscope/internal/engine/flightrisk"
)

// monthLayout is the calendar-month key risk evaluation is scoped to.
const monthLayout = "2006-01"

// RiskService runs the flight-risk rules across a company and manages
// the resulting flags.
type RiskService struct {
	Config    *ConfigService
	Employees EmployeeRepository
	Scores    ScoreRepository
	Feedback  PeerFeedbackRepository
	Flags     RiskFlagRepository
	Audit     *AuditService
	Notifier  NotificationDispatcher
	Now       Clock
}

func NewRiskService(config *ConfigService, employees EmployeeRepository, scores ScoreRepository, feedback PeerFeedbackRepository, flags RiskFlagRepository, audit *AuditService, notifier NotificationDispatcher, now Clock) *RiskService {
	if now == nil {
		now = time.Now
	}
	return &RiskService{
		Config:    config,
		Employees: employees,
		Scores:    scores,
		Feedback:  feedback,
		Flags:     flags,
		Audit:     audit,
		Notifier:  notifier,
		Now:       now,
	}
}

// EvaluateCompany builds a risk context per employee over one calendar
// month, evaluates the company's rules, and persists one flag per
// flagged employee. Alert recipients default to owner and HR when the
// config names none.
func (s *RiskService) EvaluateCompany(ctx context.Context, companyID, month string) ([]domain.RiskFlag, error) {
	from, to, err := monthWindow(month)
	if err != nil {
		return nil, err
	}
	config, err := s.Config.GetCompanyConfig(ctx, companyID)
	if err != nil {
		return nil, err
	}
	employees, err := s.Employees.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}

	now := s.Now().UTC()
	var flags []domain.RiskFlag
	for _, employee := range employees {
		riskCtx, err := s.buildContext(ctx, employee, from, to)
		if err != nil {
			return nil, fmt.Errorf("employee %s: %w", employee.ID, err)
		}
		result := flightrisk.Evaluate(riskCtx, config.FlightRisk)
		if !result.Flagged {
			continue
		}
		flags = append(flags, domain.RiskFlag{
			EmployeeID:  employee.ID,
			Reason:      strings.Join(result.Reasons, ","),
			TriggeredBy: domain.AuditActorSystem,
			Severity:    result.Severity,
			CreatedAt:   now,
		})
	}
	if len(flags) == 0 {
		return nil, nil
	}

	flags, err = s.Flags.CreateBatch(ctx, flags)
	if err != nil {
		return nil, err
	}

	if s.Audit != nil {
		for _, flag := range flags {
			_, _ = s.Audit.Record(ctx, domain.AuditLogEntry{
				TableName:  "flight_risk_flags",
				ChangedBy:  domain.AuditActorSystem,
				EmployeeID: flag.EmployeeID,
				NewValue:   flag,
				Reason:     "flight_risk_evaluation",
			})
		}
	}

	if s.Notifier != nil {
		recipients := config.FlightRisk.AlertRecipients
		if len(recipients) == 0 {
			recipients = []domain.Role{domain.RoleOwner, domain.RoleHR}
		}
		s.Notifier.NotifyRoles(ctx, companyID, recipients,
			"Flight Risk Alerts",
			fmt.Sprintf("%d flight-risk alerts generated.", len(flags)))
	}
	return flags, nil
}

// ListFlags returns a company's flags, optionally only the open ones.
func (s *RiskService) ListFlags(ctx context.Context, companyID string, onlyUnresolved bool) ([]domain.RiskFlag, error) {
	return s.Flags.ListByCompany(ctx, companyID, onlyUnresolved)
}

// ResolveFlag marks a flag resolved. Resolution is one-way and
// restricted to owner and HR.
func (s *RiskService) ResolveFlag(ctx context.Context, flagID int64, actor string, role domain.Role) error {
	if !domain.CanResolveFlag(role) {
		return fmt.Errorf("role %s may not resolve flight-risk flags", role)
	}
	if err := s.Flags.Resolve(ctx, flagID); err != nil {
		return err
	}
	if s.Audit != nil {
		_, _ = s.Audit.Record(ctx, domain.AuditLogEntry{
			TableName: "flight_risk_flags",
			ChangedBy: actor,
			Reason:    fmt.Sprintf("resolve_flight_risk_flag:%d", flagID),
		})
	}
	return nil
}

// buildContext derives the rule inputs for one employee: the drop
// between the two most recent scores and the peer-feedback average over
// the month window. A missing history reads as no drop; a missing
// average stays zero and is neutralized by the engine.
func (s *RiskService) buildContext(ctx context.Context, employee domain.Employee, from, to time.Time) (domain.RiskContext, error) {
	history, err := s.Scores.ListByEmployee(ctx, employee.ID, trendWindow)
	if err != nil {
		return domain.RiskContext{}, err
	}
	var drop float64
	if len(history) >= 2 {
		// Stored scores carry 2 decimals; round the difference back to 2
		// so reason codes stay free of float noise.
		drop = math.Round((history[1].FinalScore-history[0].FinalScore)*100) / 100
		if drop < 0 {
			drop = 0
		}
	}

	avg, err := s.Feedback.AverageForWindow(ctx, employee.ID, from, to)
	if err != nil {
		return domain.RiskContext{}, err
	}

	return domain.RiskContext{
		ScoreDrop:       drop,
		MissedCheckins:  employee.MissedCheckins,
		Notes:           employee.Notes,
		PeerFeedbackAvg: avg,
		TenureMonths:    employee.TenureMonths,
	}, nil
}

// monthWindow maps a YYYY-MM key to the half-open UTC interval covering
// that calendar month.
func monthWindow(month string) (time.Time, time.Time, error) {
	start, err := time.Parse(monthLayout, month)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid month %q, want YYYY-MM", month)
	}
	return start, start.AddDate(0, 1, 0), nil
}
