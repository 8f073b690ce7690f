// Package flightrisk evaluates independent threshold and keyword rules
// over an employee context to produce coded risk reasons.
package flightrisk

import (
	"strconv"
	"strings"

	"payscope/internal/domain"
)

// Rule defaults, applied where the company config leaves a zero value.
const (
	defaultScoreDropThreshold      = 15
	defaultMissedCheckinsThreshold = 2
	defaultPeerFeedbackFloor       = 3

	// neutralPeerFeedback stands in when no feedback exists for the
	// window; absence of feedback is not a risk signal.
	neutralPeerFeedback = 5

	earlyTenureMonths = 6

	ReasonEarlyTenure = "early_tenure_sensitivity"
)

var defaultKeywords = []string{"burnout", "resign", "unhappy", "leaving"}

type ruleConfig struct {
	scoreDropThreshold      float64
	missedCheckinsThreshold int
	peerFeedbackFloor       float64
	keywords                []string
	tenureSensitivity       bool
}

func resolveConfig(cfg domain.RiskConfig) ruleConfig {
	rc := ruleConfig{
		scoreDropThreshold:      cfg.ScoreDropThreshold,
		missedCheckinsThreshold: cfg.MissedCheckinsThreshold,
		peerFeedbackFloor:       cfg.PeerFeedbackFloor,
		keywords:                cfg.Keywords,
		tenureSensitivity:       cfg.TenureSensitivity,
	}
	if rc.scoreDropThreshold == 0 {
		rc.scoreDropThreshold = defaultScoreDropThreshold
	}
	if rc.missedCheckinsThreshold == 0 {
		rc.missedCheckinsThreshold = defaultMissedCheckinsThreshold
	}
	if rc.peerFeedbackFloor == 0 {
		rc.peerFeedbackFloor = defaultPeerFeedbackFloor
	}
	if len(rc.keywords) == 0 {
		rc.keywords = defaultKeywords
	}
	return rc
}

// Evaluate runs every rule against the context. Rules are independent;
// only the early-tenure amplifier depends on another rule having fired.
func Evaluate(ctx domain.RiskContext, cfg domain.RiskConfig) domain.RiskResult {
	rc := resolveConfig(cfg)

	var reasons []string

	if ctx.ScoreDrop >= rc.scoreDropThreshold {
		reasons = append(reasons, "score_drop_"+formatNumber(ctx.ScoreDrop))
	}

	if ctx.MissedCheckins >= rc.missedCheckinsThreshold {
		reasons = append(reasons, "missed_checkins_"+strconv.Itoa(ctx.MissedCheckins))
	}

	peerAvg := ctx.PeerFeedbackAvg
	if peerAvg == 0 {
		peerAvg = neutralPeerFeedback
	}
	if peerAvg < rc.peerFeedbackFloor {
		reasons = append(reasons, "peer_feedback_below_"+formatNumber(rc.peerFeedbackFloor))
	}

	notes := strings.ToLower(ctx.Notes)
	for _, keyword := range rc.keywords {
		if keyword == "" {
			continue
		}
		if strings.Contains(notes, strings.ToLower(keyword)) {
			reasons = append(reasons, "keyword_"+keyword)
			break
		}
	}

	amplified := false
	if rc.tenureSensitivity && ctx.TenureMonths <= earlyTenureMonths && len(reasons) > 0 {
		reasons = append(reasons, ReasonEarlyTenure)
		amplified = true
	}

	return domain.RiskResult{
		Flagged:  len(reasons) > 0,
		Reasons:  reasons,
		Severity: deriveSeverity(reasons, amplified),
	}
}

// deriveSeverity maps the number of triggered rules to a severity level;
// the early-tenure amplifier escalates by one level rather than counting
// as a rule of its own.
func deriveSeverity(reasons []string, amplified bool) domain.RiskSeverity {
	if len(reasons) == 0 {
		return ""
	}
	triggered := len(reasons)
	if amplified {
		triggered--
	}
	severity := domain.RiskSeverityLow
	switch {
	case triggered >= 3:
		severity = domain.RiskSeverityHigh
	case triggered == 2:
		severity = domain.RiskSeverityMedium
	}
	if amplified {
		severity = escalate(severity)
	}
	return severity
}

func escalate(s domain.RiskSeverity) domain.RiskSeverity {
	switch s {
	case domain.RiskSeverityLow:
		return domain.RiskSeverityMedium
	case domain.RiskSeverityMedium:
		return domain.RiskSeverityHigh
	default:
		return domain.RiskSeverityHigh
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
