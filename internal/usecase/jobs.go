package usecase

import (
	"context"
	"log"
	"time"
)

// Jobs runs the background loops: the hourly approval sweep that
// auto-approves stale pending changes and the periodic flight-risk
// evaluation. Per-company failures are logged and skipped so one bad
// company never stalls the rest.
type Jobs struct {
	Companies CompanyRepository
	Config    *ConfigService
	Risk      *RiskService
	Now       Clock

	ApprovalSweepInterval time.Duration
	RiskEvalInterval      time.Duration
}

// Run blocks until the context is canceled, firing both loops on their
// intervals.
func (j *Jobs) Run(ctx context.Context) {
	approvals := time.NewTicker(j.ApprovalSweepInterval)
	defer approvals.Stop()
	risks := time.NewTicker(j.RiskEvalInterval)
	defer risks.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-approvals.C:
			j.RunApprovalSweep(ctx)
		case <-risks.C:
			j.RunRiskEvaluation(ctx)
		}
	}
}

// RunApprovalSweep auto-approves expired pending changes across every
// company.
func (j *Jobs) RunApprovalSweep(ctx context.Context) {
	companies, err := j.Companies.ListAll(ctx)
	if err != nil {
		log.Printf("approval sweep: list companies: %v", err)
		return
	}
	processed, approved := 0, 0
	for _, company := range companies {
		n, err := j.Config.AutoApproveExpired(ctx, company.ID)
		if err != nil {
			log.Printf("approval sweep: company %s: %v", company.ID, err)
			continue
		}
		processed++
		approved += n
	}
	log.Printf("approval sweep: %d/%d companies processed, %d changes auto-approved", processed, len(companies), approved)
}

// RunRiskEvaluation evaluates the flight-risk rules across every
// company for the current calendar month.
func (j *Jobs) RunRiskEvaluation(ctx context.Context) {
	companies, err := j.Companies.ListAll(ctx)
	if err != nil {
		log.Printf("risk evaluation: list companies: %v", err)
		return
	}
	now := time.Now
	if j.Now != nil {
		now = j.Now
	}
	month := now().UTC().Format(monthLayout)
	processed, flagged := 0, 0
	for _, company := range companies {
		flags, err := j.Risk.EvaluateCompany(ctx, company.ID, month)
		if err != nil {
			log.Printf("risk evaluation: company %s: %v", company.ID, err)
			continue
		}
		processed++
		flagged += len(flags)
	}
	log.Printf("risk evaluation %s: %d/%d companies processed, %d flags raised", month, processed, len(companies), flagged)
}
