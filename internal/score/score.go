// Package score holds the pure scoring and classification rules: the risk
// reduction, the score aggregation, and the keep/monitor/remove decision.
package score

import (
	"fmt"
	"math"

	"github.com/gitYourbits/sse-insta-audit-platform/internal/domain"
)

// Risk reduction weights. Fixed by policy; must sum to 1.0.
const (
	riskWeightActivity    = 0.3
	riskWeightContent     = 0.3
	riskWeightInteraction = 0.25
	riskWeightAge         = 0.15
)

// suspiciousPatternWeight blends the follow-graph suspicious signal into
// the final risk score when a following sample was available.
const suspiciousPatternWeight = 0.4

// Thresholds are the decision cut points. Overridable as a named
// configuration; defaults match the audit policy.
type Thresholds struct {
	Keep    float64 // engagement floor / risk ceiling for KEEP
	Monitor float64 // engagement floor / risk ceiling for MONITOR
	Remove  float64 // engagement ceiling / risk floor for REMOVE
}

// DefaultThresholds is the stock 0.7/0.5/0.3 policy.
var DefaultThresholds = Thresholds{Keep: 0.7, Monitor: 0.5, Remove: 0.3}

// Validate rejects threshold sets that are out of [0,1] or out of order.
func (t Thresholds) Validate() error {
	for name, v := range map[string]float64{"keep": t.Keep, "monitor": t.Monitor, "remove": t.Remove} {
		if v < 0 || v > 1 || math.IsNaN(v) {
			return &domain.ConfigurationError{
				Setting: "decision thresholds",
				Reason:  fmt.Sprintf("%s threshold %g outside [0,1]", name, v),
			}
		}
	}
	if !(t.Remove <= t.Monitor && t.Monitor <= t.Keep) {
		return &domain.ConfigurationError{
			Setting: "decision thresholds",
			Reason:  fmt.Sprintf("expected remove <= monitor <= keep, got %g/%g/%g", t.Remove, t.Monitor, t.Keep),
		}
	}
	return nil
}

// Decide classifies a follower from its two final scores. Pure, total and
// deterministic over [0,1]^2.
//
// REMOVE is checked before KEEP: when both conditions hold at once the risk
// floor wins. That ordering is policy, not an accident. Everything not
// caught by an explicit rule falls back to MONITOR as the conservative
// default.
func (t Thresholds) Decide(engagement, risk float64) domain.Action {
	engagement = domain.ClampScore(engagement)
	risk = domain.ClampScore(risk)

	switch {
	case engagement <= t.Remove || risk >= t.Keep:
		return domain.ActionRemove
	case engagement >= t.Keep && risk <= t.Remove:
		return domain.ActionKeep
	case engagement >= t.Monitor && risk <= t.Monitor:
		return domain.ActionMonitor
	default:
		return domain.ActionMonitor
	}
}

// RiskScore reduces profile metrics to one risk score: the arithmetic mean
// of the four weighted terms, clamped to [0,1].
func RiskScore(m domain.ProfileMetrics) float64 {
	terms := []float64{
		m.Authenticity * riskWeightActivity,
		m.EngagementPotential * riskWeightContent,
		m.InteractionPattern * riskWeightInteraction,
		m.AccountAge * riskWeightAge,
	}
	sum := 0.0
	for _, t := range terms {
		sum += t
	}
	return domain.ClampScore(sum / float64(len(terms)))
}

// Aggregate combines the sub-analysis outputs into the two final scores.
// pattern may be nil when no following sample was available.
func Aggregate(profile domain.ProfileMetrics, pattern *domain.FollowingPattern, engagement domain.EngagementMetrics) (engagementScore, riskScore float64) {
	engagementScore = domain.ClampScore(engagement.Score)

	riskScore = RiskScore(profile)
	if pattern != nil {
		riskScore = domain.ClampScore(riskScore + suspiciousPatternWeight*pattern.SuspiciousPattern)
	}
	return engagementScore, riskScore
}

// Recommendations derives operator hints from the final scores and the
// follower's own attributes.
func Recommendations(engagement, risk float64, f domain.FollowerRecord) []string {
	var recs []string
	if engagement < 0.5 {
		recs = append(recs, "Low engagement - consider removing if no improvement")
	}
	if risk > 0.5 {
		recs = append(recs, "High risk - monitor closely or remove")
	}
	if f.IsPrivate {
		recs = append(recs, "Private account - consider impact on engagement")
	}
	if f.LastInteraction == nil && f.InteractionCount == 0 {
		recs = append(recs, "Inactive account - may be safe to remove")
	}
	if f.FollowingCount > 2000 {
		recs = append(recs, "Mass-following account - likely follow-for-follow")
	}
	return recs
}
