// Package analysis evaluates follower profiles and engagement through an
// injected, fallible metrics source, retrying transient failures.
package analysis

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gitYourbits/sse-insta-audit-platform/internal/domain"
	"github.com/gitYourbits/sse-insta-audit-platform/internal/metrics"
	"github.com/gitYourbits/sse-insta-audit-platform/internal/platform/retry"
	"github.com/gitYourbits/sse-insta-audit-platform/internal/score"
)

// classifyAnalysis retries transient analysis failures and timeouts;
// everything else (invalid input in particular) stops immediately.
func classifyAnalysis(err error) retry.Action {
	var transient *domain.TransientAnalysisError
	if errors.As(err, &transient) || errors.Is(err, context.DeadlineExceeded) {
		return retry.Retry
	}
	return retry.Stop
}

// ProfileAnalyzer scores profile authenticity and follow-graph risk.
type ProfileAnalyzer struct {
	source MetricsSource
	policy retry.Policy
	logger *slog.Logger
}

func NewProfileAnalyzer(source MetricsSource, policy retry.Policy, logger *slog.Logger) *ProfileAnalyzer {
	return &ProfileAnalyzer{source: source, policy: policy, logger: logger}
}

// AnalyzeProfile evaluates a picture reference and bio into profile metrics.
// Empty inputs violate the caller contract and are not retried. Returns the
// number of source invocations consumed alongside the metrics.
func (a *ProfileAnalyzer) AnalyzeProfile(ctx context.Context, pictureRef, bio string) (domain.ProfileMetrics, int, error) {
	if pictureRef == "" {
		return domain.ProfileMetrics{}, 0, &domain.InvalidInputError{Field: "picture_ref"}
	}
	if bio == "" {
		return domain.ProfileMetrics{}, 0, &domain.InvalidInputError{Field: "bio"}
	}

	attempts := 0
	m, err := retry.Do(ctx, a.retryPolicy("analyze_profile"), classifyAnalysis, func() (domain.ProfileMetrics, error) {
		attempts++
		return a.source.ProfileSignals(ctx, pictureRef, bio)
	})
	if err != nil {
		return domain.ProfileMetrics{}, attempts, unwrapAnalysisError("analyze_profile", attempts, err)
	}
	return clampProfile(m), attempts, nil
}

// AnalyzeFollowingPattern evaluates a follow-graph sample. An empty list is
// a caller contract violation and is not retried.
func (a *ProfileAnalyzer) AnalyzeFollowingPattern(ctx context.Context, following []string) (domain.FollowingPattern, int, error) {
	if len(following) == 0 {
		return domain.FollowingPattern{}, 0, &domain.InvalidInputError{Field: "following"}
	}

	attempts := 0
	p, err := retry.Do(ctx, a.retryPolicy("analyze_following_pattern"), classifyAnalysis, func() (domain.FollowingPattern, error) {
		attempts++
		return a.source.FollowingSignals(ctx, following)
	})
	if err != nil {
		return domain.FollowingPattern{}, attempts, unwrapAnalysisError("analyze_following_pattern", attempts, err)
	}

	p.FollowingRatio = domain.ClampScore(p.FollowingRatio)
	p.CommunityConnection = domain.ClampScore(p.CommunityConnection)
	p.SuspiciousPattern = domain.ClampScore(p.SuspiciousPattern)
	return p, attempts, nil
}

// AnalyzeProfileRisk gathers profile metrics for a follower id and reduces
// them to a single risk score.
func (a *ProfileAnalyzer) AnalyzeProfileRisk(ctx context.Context, followerID string) (float64, error) {
	if followerID == "" {
		return 0, &domain.InvalidInputError{Field: "follower_id"}
	}

	attempts := 0
	m, err := retry.Do(ctx, a.retryPolicy("analyze_profile_risk"), classifyAnalysis, func() (domain.ProfileMetrics, error) {
		attempts++
		return a.source.ProfileMetricsByID(ctx, followerID)
	})
	if err != nil {
		return 0, unwrapAnalysisError("analyze_profile_risk", attempts, err)
	}
	return score.RiskScore(clampProfile(m)), nil
}

// retryPolicy tags the shared policy with an operation-scoped observer.
func (a *ProfileAnalyzer) retryPolicy(op string) retry.Policy {
	p := a.policy
	p.OnRetry = func(attempt int, err error, backoff time.Duration) {
		metrics.AnalysisRetriesTotal.WithLabelValues(op).Inc()
		a.logger.Warn("Retrying analysis", "operation", op, "attempt", attempt, "backoff", backoff, "error", err)
	}
	return p
}

func clampProfile(m domain.ProfileMetrics) domain.ProfileMetrics {
	return domain.ProfileMetrics{
		Authenticity:        domain.ClampScore(m.Authenticity),
		EngagementPotential: domain.ClampScore(m.EngagementPotential),
		RiskLevel:           domain.ClampScore(m.RiskLevel),
		InteractionPattern:  domain.ClampScore(m.InteractionPattern),
		AccountAge:          domain.ClampScore(m.AccountAge),
	}
}

// unwrapAnalysisError converts retry-layer errors into the audit taxonomy.
func unwrapAnalysisError(op string, attempts int, err error) error {
	var permanent *retry.PermanentError
	if errors.As(err, &permanent) {
		return permanent.Err
	}
	var exhausted *retry.ExhaustedError
	if errors.As(err, &exhausted) {
		return &domain.RetryExhaustedError{Op: op, Attempts: attempts, Last: exhausted.Err}
	}
	return err
}
