package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/gitYourbits/sse-insta-audit-platform/internal/domain"
	"github.com/gitYourbits/sse-insta-audit-platform/internal/metrics"
	"github.com/gitYourbits/sse-insta-audit-platform/internal/platform/retry"
)

// weightTolerance is the allowed deviation of a weight-set sum from 1.0.
const weightTolerance = 1e-6

// recencyWindowDays is the window over which a past interaction still
// counts toward the recency signal.
const recencyWindowDays = 30

// EngagementWeights distributes the engagement score over the channels.
// Must sum to 1.0 within tolerance.
type EngagementWeights struct {
	Likes    float64
	Comments float64
	Shares   float64
	Saves    float64
}

// DefaultEngagementWeights is the operator-overridable default weight set.
var DefaultEngagementWeights = EngagementWeights{Likes: 0.4, Comments: 0.3, Shares: 0.2, Saves: 0.1}

// Validate rejects weight sets that do not sum to 1.0.
func (w EngagementWeights) Validate() error {
	sum := w.Likes + w.Comments + w.Shares + w.Saves
	if math.Abs(sum-1.0) > weightTolerance {
		return &domain.ConfigurationError{
			Setting: "engagement weights",
			Reason:  fmt.Sprintf("must sum to 1.0, got %g", sum),
		}
	}
	return nil
}

// EngagementEvaluator computes the weighted engagement score for a follower.
type EngagementEvaluator struct {
	source  MetricsSource
	weights EngagementWeights
	policy  retry.Policy
	clock   clockwork.Clock
	logger  *slog.Logger
}

// NewEngagementEvaluator validates the weight set up front; a bad set is a
// configuration error at construction, never a per-follower failure.
func NewEngagementEvaluator(source MetricsSource, weights EngagementWeights, policy retry.Policy, clock clockwork.Clock, logger *slog.Logger) (*EngagementEvaluator, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &EngagementEvaluator{source: source, weights: weights, policy: policy, clock: clock, logger: logger}, nil
}

// CheckEngagement fetches raw signals for the follower id and folds them
// into a single [0,1] score with recency and frequency adjustments. Returns
// the number of source invocations consumed.
func (e *EngagementEvaluator) CheckEngagement(ctx context.Context, followerID string) (domain.EngagementMetrics, int, error) {
	if followerID == "" {
		return domain.EngagementMetrics{}, 0, &domain.InvalidInputError{Field: "follower_id"}
	}

	p := e.policy
	p.OnRetry = func(attempt int, err error, backoff time.Duration) {
		metrics.AnalysisRetriesTotal.WithLabelValues("check_engagement").Inc()
		e.logger.Warn("Retrying engagement check", "follower_id", followerID, "attempt", attempt, "backoff", backoff, "error", err)
	}

	attempts := 0
	signals, err := retry.Do(ctx, p, classifyAnalysis, func() (EngagementSignals, error) {
		attempts++
		return e.source.EngagementSignals(ctx, followerID)
	})
	if err != nil {
		return domain.EngagementMetrics{}, attempts, unwrapAnalysisError("check_engagement", attempts, err)
	}

	return e.fold(signals), attempts, nil
}

// fold applies the channel weights and the recency/frequency adjustments.
// The weighted channel base contributes 80% of the score; recency and
// frequency contribute 10% each.
func (e *EngagementEvaluator) fold(s EngagementSignals) domain.EngagementMetrics {
	m := domain.EngagementMetrics{
		Likes:     domain.ClampScore(s.Likes) * e.weights.Likes,
		Comments:  domain.ClampScore(s.Comments) * e.weights.Comments,
		Shares:    domain.ClampScore(s.Shares) * e.weights.Shares,
		Saves:     domain.ClampScore(s.Saves) * e.weights.Saves,
		Recency:   e.recency(s.LastInteraction),
		Frequency: domain.ClampScore(float64(s.InteractionCount) / interactionCountCap),
	}

	base := m.Likes + m.Comments + m.Shares + m.Saves
	m.Score = domain.ClampScore(0.8*base + 0.1*m.Recency + 0.1*m.Frequency)
	return m
}

// recency decays linearly from 1 (interacted today) to 0 (window exceeded
// or never interacted).
func (e *EngagementEvaluator) recency(last *time.Time) float64 {
	if last == nil {
		return 0
	}
	days := e.clock.Now().Sub(*last).Hours() / 24
	return domain.ClampScore(1 - days/recencyWindowDays)
}
