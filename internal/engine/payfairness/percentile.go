// Package payfairness ranks employees by score and pay percentile within
// a cohort and classifies each into a quadrant.
package payfairness

import (
	"fmt"
	"math"

	"payscope/internal/domain"
)

// Default quadrant labels. Stars and overpaid are overridable per call.
const (
	QuadrantStars         = "stars_underpaid"
	QuadrantRetainedStar  = "retained_star"
	QuadrantOverpaid      = "overpaid_underperformer"
	QuadrantLowInvestment = "low_investment"
)

type GroupBy string

const (
	GroupByCompany    GroupBy = "company"
	GroupByDepartment GroupBy = "department"
	GroupByRole       GroupBy = "role"
)

// Row is one cohort member. Salary is nil when no usable compensation
// data exists; such rows are excluded before percentiles are computed.
type Row struct {
	EmployeeID string
	Score      float64
	Salary     *float64
	Role       string
	Department string
	ManagerID  string
}

// Thresholds are the percentile cutoffs and labels for quadrant
// classification. Zero fields fall back to the defaults.
type Thresholds struct {
	ScoreTopPct    float64
	ScoreBottomPct float64
	PayTopPct      float64
	PayBottomPct   float64
	StarsLabel     string
	OverpaidLabel  string
}

func (t Thresholds) withDefaults() Thresholds {
	if t.ScoreTopPct == 0 {
		t.ScoreTopPct = 75
	}
	if t.ScoreBottomPct == 0 {
		t.ScoreBottomPct = 25
	}
	if t.PayTopPct == 0 {
		t.PayTopPct = 50
	}
	if t.PayBottomPct == 0 {
		t.PayBottomPct = 50
	}
	if t.StarsLabel == "" {
		t.StarsLabel = QuadrantStars
	}
	if t.OverpaidLabel == "" {
		t.OverpaidLabel = QuadrantOverpaid
	}
	return t
}

// Classified is a cohort row with its percentile positions and quadrant.
type Classified struct {
	Row
	ScorePercentile float64
	PayPercentile   float64
	Quadrant        string
}

// Analysis is the outcome for one cohort. Excluded counts the rows
// dropped for missing compensation data.
type Analysis struct {
	Results  []Classified
	Excluded int
}

// PercentileRank returns 100 * count(v <= target) / len(values). The
// target's own value counts toward its rank; an empty population ranks 0.
func PercentileRank(values []float64, target float64) float64 {
	if len(values) == 0 {
		return 0
	}
	count := 0
	for _, v := range values {
		if v <= target {
			count++
		}
	}
	return float64(count) / float64(len(values)) * 100
}

// Analyze computes score and pay percentiles for every usable row
// against the full cohort and classifies each into a quadrant. The
// stars check wins over the overpaid check; a row never matches both.
func Analyze(rows []Row, thresholds Thresholds) (Analysis, error) {
	th := thresholds.withDefaults()

	valid := make([]Row, 0, len(rows))
	for _, r := range rows {
		if r.Salary == nil || math.IsNaN(*r.Salary) {
			continue
		}
		valid = append(valid, r)
	}
	excluded := len(rows) - len(valid)
	if len(valid) == 0 {
		return Analysis{}, fmt.Errorf("%w: no score/salary data available for selected cohort", domain.ErrNoData)
	}

	scores := make([]float64, len(valid))
	pay := make([]float64, len(valid))
	for i, r := range valid {
		scores[i] = r.Score
		pay[i] = *r.Salary
	}

	results := make([]Classified, 0, len(valid))
	for _, r := range valid {
		scorePct := PercentileRank(scores, r.Score)
		payPct := PercentileRank(pay, *r.Salary)

		var quadrant string
		switch {
		case scorePct >= th.ScoreTopPct && payPct < th.PayTopPct:
			quadrant = th.StarsLabel
		case scorePct >= th.ScoreTopPct:
			quadrant = QuadrantRetainedStar
		case scorePct <= th.ScoreBottomPct && payPct >= th.PayTopPct:
			quadrant = th.OverpaidLabel
		default:
			quadrant = QuadrantLowInvestment
		}

		results = append(results, Classified{
			Row:             r,
			ScorePercentile: round2(scorePct),
			PayPercentile:   round2(payPct),
			Quadrant:        quadrant,
		})
	}
	return Analysis{Results: results, Excluded: excluded}, nil
}

// AnalyzeGrouped partitions the cohort by the chosen dimension and runs
// the analysis per group; percentiles are relative to the group, never
// the whole company. A group with no usable rows is reported as an
// error entry rather than failing the whole call.
func AnalyzeGrouped(rows []Row, groupBy GroupBy, thresholds Thresholds) (map[string]Analysis, error) {
	grouped := make(map[string][]Row)
	order := make([]string, 0)
	for _, r := range rows {
		key := groupKey(r, groupBy)
		if _, ok := grouped[key]; !ok {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], r)
	}
	if len(grouped) == 0 {
		return nil, fmt.Errorf("%w: empty cohort", domain.ErrNoData)
	}

	out := make(map[string]Analysis, len(grouped))
	for _, key := range order {
		analysis, err := Analyze(grouped[key], thresholds)
		if err != nil {
			continue
		}
		out[key] = analysis
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no score/salary data available for selected cohort", domain.ErrNoData)
	}
	return out, nil
}

func groupKey(r Row, groupBy GroupBy) string {
	switch groupBy {
	case GroupByDepartment:
		if r.Department == "" {
			return "unknown_department"
		}
		return r.Department
	case GroupByRole:
		if r.Role == "" {
			return "unknown_role"
		}
		return r.Role
	default:
		return string(GroupByCompany)
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
