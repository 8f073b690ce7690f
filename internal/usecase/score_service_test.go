package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"payscope/internal/domain"
	"payscope/internal/infra/cachemem"
	"payscope/internal/infra/notify"
)

func newScoreFixture(t *testing.T, config domain.CompanyConfig, employees ...domain.Employee) (*ScoreService, *stubScoreRepo, *stubAuditRepo) {
	t.Helper()
	companies := newStubCompanyRepo(domain.Company{ID: "co-1", Config: config})
	scores := newStubScoreRepo()
	audits := newStubAuditRepo()
	now := fixedClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	audit := NewAuditService(audits, now)
	configSvc := NewConfigService(companies, audit, cachemem.New(), notify.NewMemoryDispatcher(), now)
	svc := NewScoreService(configSvc, newStubEmployeeRepo(employees...), scores, audit, now)
	return svc, scores, audits
}

func twoComponentConfig() domain.CompanyConfig {
	return domain.CompanyConfig{
		Version: 2,
		Components: []domain.ScoreComponent{
			{Name: "kpi", Weight: 60, Scale: 100},
			{Name: "peer", Weight: 40, Scale: 5},
		},
	}
}

func TestCalculateAndPersist(t *testing.T) {
	svc, scores, audits := newScoreFixture(t, twoComponentConfig(),
		domain.Employee{ID: "emp-1", CompanyID: "co-1"})

	outcome, err := svc.CalculateAndPersist(context.Background(), "emp-1", "2026-03",
		map[string]float64{"kpi": 90, "peer": 4}, 0, "mgr-1")
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}

	// 90/100*100*0.6 + 4/5*100*0.4 = 54 + 32 = 86
	if outcome.Result.FinalScore != 86 {
		t.Fatalf("final score = %v, want 86", outcome.Result.FinalScore)
	}
	if outcome.Record.FormulaVersion != 2 {
		t.Fatalf("formula version = %d, want 2", outcome.Record.FormulaVersion)
	}
	if outcome.Trend != domain.TrendFlat {
		t.Fatalf("trend with single record = %q, want flat", outcome.Trend)
	}

	history, _ := scores.ListByEmployee(context.Background(), "emp-1", 0)
	if len(history) != 1 {
		t.Fatalf("history length = %d", len(history))
	}
	if len(audits.entries) != 1 || audits.entries[0].TableName != "scores" {
		t.Fatalf("audit entries = %+v", audits.entries)
	}
}

func TestCalculateAndPersistReplacesMonth(t *testing.T) {
	svc, scores, _ := newScoreFixture(t, twoComponentConfig(),
		domain.Employee{ID: "emp-1", CompanyID: "co-1"})

	for _, kpi := range []float64{50, 70} {
		_, err := svc.CalculateAndPersist(context.Background(), "emp-1", "2026-03",
			map[string]float64{"kpi": kpi, "peer": 3}, 0, "mgr-1")
		if err != nil {
			t.Fatalf("calculate: %v", err)
		}
	}

	history, _ := scores.ListByEmployee(context.Background(), "emp-1", 0)
	if len(history) != 1 {
		t.Fatalf("recalculation added a row: %d records", len(history))
	}
	// 70/100*100*0.6 + 3/5*100*0.4 = 42 + 24 = 66
	if history[0].FinalScore != 66 {
		t.Fatalf("final score = %v, want the recalculated 66", history[0].FinalScore)
	}
}

func TestCalculateAndPersistTrend(t *testing.T) {
	svc, _, _ := newScoreFixture(t, twoComponentConfig(),
		domain.Employee{ID: "emp-1", CompanyID: "co-1"})

	if _, err := svc.CalculateAndPersist(context.Background(), "emp-1", "2026-02",
		map[string]float64{"kpi": 50, "peer": 3}, 0, "mgr-1"); err != nil {
		t.Fatalf("calculate february: %v", err)
	}
	outcome, err := svc.CalculateAndPersist(context.Background(), "emp-1", "2026-03",
		map[string]float64{"kpi": 90, "peer": 4}, 0, "mgr-1")
	if err != nil {
		t.Fatalf("calculate march: %v", err)
	}
	if outcome.Trend != domain.TrendUp {
		t.Fatalf("trend = %q, want up", outcome.Trend)
	}
}

func TestCalculateAndPersistMissingComponent(t *testing.T) {
	svc, _, _ := newScoreFixture(t, twoComponentConfig(),
		domain.Employee{ID: "emp-1", CompanyID: "co-1"})

	_, err := svc.CalculateAndPersist(context.Background(), "emp-1", "2026-03",
		map[string]float64{"kpi": 90}, 0, "mgr-1")
	if !errors.Is(err, domain.ErrMissingComponent) {
		t.Fatalf("err = %v, want ErrMissingComponent", err)
	}
}

func TestCalculateAndPersistUnknownEmployee(t *testing.T) {
	svc, _, _ := newScoreFixture(t, twoComponentConfig())

	_, err := svc.CalculateAndPersist(context.Background(), "ghost", "2026-03",
		map[string]float64{"kpi": 90, "peer": 4}, 0, "mgr-1")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
