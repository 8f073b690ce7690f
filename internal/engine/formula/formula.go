// Package formula computes weighted performance scores from a company's
// scoring configuration.
package formula

import (
	"fmt"
	"math"

	"payscope/internal/domain"
)

const (
	minComponents = 2
	maxComponents = 4

	overrideFloorPct = -10
	overrideCeilPct  = 10
)

// validScales are the rating scales raw component values may arrive on.
var validScales = map[float64]bool{5: true, 10: true, 100: true}

// ValidateConfig checks a formula's component set: 2-4 components,
// weights summing to exactly 100 after rounding, every scale in the
// fixed set.
func ValidateConfig(components []domain.ScoreComponent) error {
	if len(components) < minComponents || len(components) > maxComponents {
		return fmt.Errorf("%w: formula must include between %d and %d components", domain.ErrInvalidConfig, minComponents, maxComponents)
	}
	var total float64
	for _, c := range components {
		total += c.Weight
	}
	if math.Round(total) != 100 {
		return fmt.Errorf("%w: component weights must sum to 100", domain.ErrInvalidConfig)
	}
	for _, c := range components {
		if !validScales[c.Scale] {
			return fmt.Errorf("%w: unsupported rating scale for %s, use 5, 10, or 100", domain.ErrInvalidConfig, c.Name)
		}
	}
	return nil
}

// CalculateScore normalizes each supplied component value to 0-100,
// weights it, and applies the manager override as a multiplicative
// adjustment clamped to [0,100]. Both scores are rounded to 2 decimals.
func CalculateScore(components []domain.ScoreComponent, values map[string]float64, overridePct float64) (domain.ScoreResult, error) {
	if err := ValidateConfig(components); err != nil {
		return domain.ScoreResult{}, err
	}
	if overridePct < overrideFloorPct || overridePct > overrideCeilPct {
		return domain.ScoreResult{}, fmt.Errorf("%w: manager override must be between -10%% and +10%%", domain.ErrInvalidConfig)
	}

	var weighted float64
	for _, component := range components {
		raw, ok := values[component.Name]
		if !ok {
			return domain.ScoreResult{}, fmt.Errorf("%w: %s", domain.ErrMissingComponent, component.Name)
		}
		normalized := raw / component.Scale * 100
		weighted += normalized * (component.Weight / 100)
	}

	final := weighted * (1 + overridePct/100)
	final = math.Max(0, math.Min(100, final))

	return domain.ScoreResult{
		BaseScore:  round2(weighted),
		FinalScore: round2(final),
	}, nil
}

// Trend compares the two most recent score records (newest first) and
// reports the direction. Fewer than two records reads as flat.
func Trend(historyNewestFirst []domain.ScoreRecord) domain.Trend {
	if len(historyNewestFirst) < 2 {
		return domain.TrendFlat
	}
	current, previous := historyNewestFirst[0], historyNewestFirst[1]
	switch {
	case current.FinalScore > previous.FinalScore:
		return domain.TrendUp
	case current.FinalScore < previous.FinalScore:
		return domain.TrendDown
	default:
		return domain.TrendFlat
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
