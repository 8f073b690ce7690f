package configver

import (
	"errors"
	"testing"
	"time"

	"payscope/internal/domain"
)

var testNow = time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)

func basePatch() domain.ConfigPatch {
	return domain.ConfigPatch{
		Components: []domain.ScoreComponent{
			{Name: "quality", Weight: 60, Scale: 10},
			{Name: "speed", Weight: 40, Scale: 5},
		},
		Frequency: domain.FrequencyMonthly,
	}
}

func TestCommit_BumpsVersionAndMerges(t *testing.T) {
	previous := domain.CompanyConfig{Version: 3, CustomMetrics: []string{"mentoring"}}
	next, err := Commit(previous, basePatch(), "initial formula", "user-1", testNow)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if next.Version != 4 {
		t.Fatalf("expected version 4, got %d", next.Version)
	}
	if len(next.Components) != 2 || next.Frequency != domain.FrequencyMonthly {
		t.Fatalf("patch not merged: %+v", next)
	}
	// Untouched fields survive the merge.
	if len(next.CustomMetrics) != 1 || next.CustomMetrics[0] != "mentoring" {
		t.Fatalf("expected custom metrics preserved, got %v", next.CustomMetrics)
	}
	if next.UpdatedBy != "user-1" || !next.UpdatedAt.Equal(testNow) {
		t.Fatalf("expected update stamp, got %s @ %s", next.UpdatedBy, next.UpdatedAt)
	}
	if previous.Version != 3 {
		t.Fatal("previous config mutated")
	}
}

func TestCommit_RequiresReason(t *testing.T) {
	_, err := Commit(domain.CompanyConfig{}, basePatch(), "  ", "user-1", testNow)
	if !errors.Is(err, domain.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestPropose_QueuesWithoutVersionBump(t *testing.T) {
	previous := domain.CompanyConfig{Version: 2}
	next, change, err := Propose(previous, basePatch(), "tune weights", "manager-1", testNow)
	if err != nil {
		t.Fatalf("propose: %v", err)
	}
	if next.Version != 2 {
		t.Fatalf("expected version unchanged, got %d", next.Version)
	}
	if len(next.Components) != 0 {
		t.Fatal("expected patch not applied yet")
	}
	if change.ID == "" || change.Status != domain.ChangePending {
		t.Fatalf("unexpected change %+v", change)
	}
	if len(next.PendingFormulaChanges) != 1 {
		t.Fatalf("expected 1 queued change, got %d", len(next.PendingFormulaChanges))
	}
}

func TestApprove_CommitsAndMarksTerminal(t *testing.T) {
	queued, change, err := Propose(domain.CompanyConfig{Version: 1}, basePatch(), "tune weights", "manager-1", testNow)
	if err != nil {
		t.Fatalf("propose: %v", err)
	}
	approved, err := Approve(queued, change.ID, "owner-1", testNow.Add(time.Hour))
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Version != 2 {
		t.Fatalf("expected version 2 after approval, got %d", approved.Version)
	}
	if len(approved.Components) != 2 {
		t.Fatal("expected patch applied on approval")
	}
	entry := approved.PendingFormulaChanges[0]
	if entry.Status != domain.ChangeApproved || entry.ApprovedBy != "owner-1" || entry.ApprovedAt == nil {
		t.Fatalf("unexpected entry state %+v", entry)
	}

	// Terminal: a second approval of the same change observes NotFound.
	if _, err := Approve(approved, change.ID, "hr-1", testNow.Add(2*time.Hour)); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on re-approval, got %v", err)
	}
}

func TestReject_DoesNotTouchVersion(t *testing.T) {
	queued, change, err := Propose(domain.CompanyConfig{Version: 5}, basePatch(), "tune weights", "manager-1", testNow)
	if err != nil {
		t.Fatalf("propose: %v", err)
	}
	rejected, err := Reject(queued, change.ID, "owner-1", "not this quarter", testNow.Add(time.Hour))
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Version != 5 {
		t.Fatalf("expected version unchanged, got %d", rejected.Version)
	}
	entry := rejected.PendingFormulaChanges[0]
	if entry.Status != domain.ChangeRejected || entry.RejectionReason != "not this quarter" {
		t.Fatalf("unexpected entry state %+v", entry)
	}

	if _, err := Reject(rejected, change.ID, "hr-1", "again", testNow.Add(2*time.Hour)); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on re-rejection, got %v", err)
	}
	if _, err := Approve(rejected, change.ID, "owner-1", testNow.Add(2*time.Hour)); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound approving a rejected change, got %v", err)
	}
}

func TestExpiredPending(t *testing.T) {
	old, oldChange, _ := Propose(domain.CompanyConfig{}, basePatch(), "old", "manager-1", testNow.Add(-25*time.Hour))
	both, freshChange, _ := Propose(old, basePatch(), "fresh", "manager-2", testNow.Add(-time.Hour))

	expired := ExpiredPending(both, testNow)
	if len(expired) != 1 {
		t.Fatalf("expected 1 expired change, got %d", len(expired))
	}
	if expired[0].ID != oldChange.ID {
		t.Fatalf("expected the 25h-old change, got %s", expired[0].ID)
	}
	for _, c := range expired {
		if c.ID == freshChange.ID {
			t.Fatal("fresh change must not expire")
		}
	}
}

func TestCheckPlanCap(t *testing.T) {
	patch := domain.ConfigPatch{CustomMetrics: []string{"a", "b", "c", "d"}}
	if err := CheckPlanCap(patch, 3); !errors.Is(err, domain.ErrPlanLimitExceeded) {
		t.Fatalf("expected ErrPlanLimitExceeded, got %v", err)
	}
	if err := CheckPlanCap(patch, 0); err != nil {
		t.Fatalf("expected unlimited cap to pass, got %v", err)
	}
	if err := CheckPlanCap(domain.ConfigPatch{CustomMetrics: []string{"a"}}, 3); err != nil {
		t.Fatalf("expected under-cap patch to pass, got %v", err)
	}
}
