// Package configver implements the versioned-config state machine:
// immediate commits, manager proposals, and the pending-change approval
// lifecycle.
package configver

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"payscope/internal/domain"
)

// AutoApprovalAge is how long a proposal may sit pending before the
// hourly sweep approves it on the proposer's behalf.
const AutoApprovalAge = 24 * time.Hour

// SystemAutoApprover is the actor recorded on sweep-approved changes.
const SystemAutoApprover = "system_auto_approval"

// Commit applies a patch immediately: bump the version, merge the patch
// over the previous document, stamp updatedAt/updatedBy. The input is
// never mutated.
func Commit(previous domain.CompanyConfig, patch domain.ConfigPatch, reason, changedBy string, now time.Time) (domain.CompanyConfig, error) {
	if strings.TrimSpace(reason) == "" {
		return domain.CompanyConfig{}, fmt.Errorf("%w: config change reason is required", domain.ErrInvalidConfig)
	}
	next := clone(previous)
	next.Version = previous.Version + 1
	applyPatch(&next, patch)
	next.UpdatedAt = now.UTC()
	next.UpdatedBy = changedBy
	return next, nil
}

// Propose queues a patch as a pending change without bumping the version
// or touching the applied config. Returns the new document and the
// queued entry.
func Propose(previous domain.CompanyConfig, patch domain.ConfigPatch, reason, changedBy string, now time.Time) (domain.CompanyConfig, domain.PendingChange, error) {
	if strings.TrimSpace(reason) == "" {
		return domain.CompanyConfig{}, domain.PendingChange{}, fmt.Errorf("%w: config change reason is required", domain.ErrInvalidConfig)
	}
	change := domain.PendingChange{
		ID:        uuid.NewString(),
		Patch:     patch,
		Reason:    reason,
		ChangedBy: changedBy,
		CreatedAt: now.UTC(),
		Status:    domain.ChangePending,
	}
	next := clone(previous)
	next.PendingFormulaChanges = append(next.PendingFormulaChanges, change)
	return next, change, nil
}

// Approve commits the patch of a live pending entry and marks it
// approved. A missing or already-resolved entry yields ErrNotFound, so
// a racing second approver observes the race instead of re-applying.
func Approve(previous domain.CompanyConfig, changeID, approver string, now time.Time) (domain.CompanyConfig, error) {
	idx := findPending(previous, changeID)
	if idx < 0 {
		return domain.CompanyConfig{}, fmt.Errorf("%w: pending formula change %s", domain.ErrNotFound, changeID)
	}
	change := previous.PendingFormulaChanges[idx]

	next, err := Commit(previous, change.Patch, change.Reason, change.ChangedBy, now)
	if err != nil {
		return domain.CompanyConfig{}, err
	}
	at := now.UTC()
	next.PendingFormulaChanges[idx].Status = domain.ChangeApproved
	next.PendingFormulaChanges[idx].ApprovedBy = approver
	next.PendingFormulaChanges[idx].ApprovedAt = &at
	return next, nil
}

// Reject marks a live pending entry rejected. The version and the
// applied config are untouched.
func Reject(previous domain.CompanyConfig, changeID, rejector, reason string, now time.Time) (domain.CompanyConfig, error) {
	idx := findPending(previous, changeID)
	if idx < 0 {
		return domain.CompanyConfig{}, fmt.Errorf("%w: pending formula change %s", domain.ErrNotFound, changeID)
	}
	next := clone(previous)
	at := now.UTC()
	next.PendingFormulaChanges[idx].Status = domain.ChangeRejected
	next.PendingFormulaChanges[idx].RejectedBy = rejector
	next.PendingFormulaChanges[idx].RejectedAt = &at
	next.PendingFormulaChanges[idx].RejectionReason = reason
	return next, nil
}

// ExpiredPending returns the live pending entries old enough for
// auto-approval.
func ExpiredPending(config domain.CompanyConfig, now time.Time) []domain.PendingChange {
	var out []domain.PendingChange
	for _, change := range config.LivePending() {
		if now.Sub(change.CreatedAt) >= AutoApprovalAge {
			out = append(out, change)
		}
	}
	return out
}

// CheckPlanCap rejects a patch whose custom metrics exceed the owning
// company's plan ceiling. A non-positive cap means unlimited.
func CheckPlanCap(patch domain.ConfigPatch, cap int) error {
	if cap <= 0 {
		return nil
	}
	if len(patch.CustomMetrics) > cap {
		return fmt.Errorf("%w: plan supports up to %d custom metrics", domain.ErrPlanLimitExceeded, cap)
	}
	return nil
}

func applyPatch(config *domain.CompanyConfig, patch domain.ConfigPatch) {
	if patch.Components != nil {
		config.Components = append([]domain.ScoreComponent(nil), patch.Components...)
	}
	if patch.Frequency != "" {
		config.Frequency = patch.Frequency
	}
	if patch.CustomMetrics != nil {
		config.CustomMetrics = append([]string(nil), patch.CustomMetrics...)
	}
}

func findPending(config domain.CompanyConfig, changeID string) int {
	for i, change := range config.PendingFormulaChanges {
		if change.ID == changeID && change.Status == domain.ChangePending {
			return i
		}
	}
	return -1
}

func clone(config domain.CompanyConfig) domain.CompanyConfig {
	out := config
	out.Components = append([]domain.ScoreComponent(nil), config.Components...)
	out.CustomMetrics = append([]string(nil), config.CustomMetrics...)
	out.PendingFormulaChanges = append([]domain.PendingChange(nil), config.PendingFormulaChanges...)
	if config.FlightRisk.Keywords != nil {
		out.FlightRisk.Keywords = append([]string(nil), config.FlightRisk.Keywords...)
	}
	if config.FlightRisk.AlertRecipients != nil {
		out.FlightRisk.AlertRecipients = append([]domain.Role(nil), config.FlightRisk.AlertRecipients...)
	}
	return out
}
