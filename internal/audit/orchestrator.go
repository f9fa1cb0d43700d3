// Package audit fans follower batches out to concurrent evaluations and
// collects one outcome per input follower.
package audit

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/gitYourbits/sse-insta-audit-platform/internal/domain"
	"github.com/gitYourbits/sse-insta-audit-platform/internal/metrics"
	"github.com/gitYourbits/sse-insta-audit-platform/internal/score"
)

// ErrNilBatch is the only way AuditBatch itself fails: a nil follower
// slice is a programmer error, not an audit outcome.
var ErrNilBatch = errors.New("audit: nil follower batch")

// ProfileAnalyzer is the subset of profile analysis the orchestrator needs.
type ProfileAnalyzer interface {
	AnalyzeProfile(ctx context.Context, pictureRef, bio string) (domain.ProfileMetrics, int, error)
	AnalyzeFollowingPattern(ctx context.Context, following []string) (domain.FollowingPattern, int, error)
}

// EngagementEvaluator is the subset of engagement analysis the orchestrator needs.
type EngagementEvaluator interface {
	CheckEngagement(ctx context.Context, followerID string) (domain.EngagementMetrics, int, error)
}

// Options tune batch execution.
type Options struct {
	// Concurrency caps simultaneous follower evaluations. Must be >= 1.
	Concurrency int64
	// LaunchRate throttles task starts per second. Zero disables throttling.
	LaunchRate float64
}

// Orchestrator runs follower batches through the evaluation pipeline with a
// bounded concurrency ceiling shared across batches.
type Orchestrator struct {
	profiles   ProfileAnalyzer
	engagement EngagementEvaluator
	thresholds score.Thresholds
	sem        *semaphore.Weighted
	launch     *rate.Limiter
	clock      clockwork.Clock
	logger     *slog.Logger
}

func NewOrchestrator(profiles ProfileAnalyzer, engagement EngagementEvaluator, thresholds score.Thresholds, opts Options, clock clockwork.Clock, logger *slog.Logger) (*Orchestrator, error) {
	if err := thresholds.Validate(); err != nil {
		return nil, err
	}
	if opts.Concurrency < 1 {
		return nil, &domain.ConfigurationError{Setting: "concurrency ceiling", Reason: "must be >= 1"}
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	var launch *rate.Limiter
	if opts.LaunchRate > 0 {
		launch = rate.NewLimiter(rate.Limit(opts.LaunchRate), 1)
	}

	return &Orchestrator{
		profiles:   profiles,
		engagement: engagement,
		thresholds: thresholds,
		sem:        semaphore.NewWeighted(opts.Concurrency),
		launch:     launch,
		clock:      clock,
		logger:     logger,
	}, nil
}

// AuditBatch evaluates every follower and returns one outcome per input,
// positionally. Per-item failures are data in the result; they never abort
// the batch or cancel sibling evaluations. On cancellation, completed
// outcomes are preserved, in-flight evaluations stop at their next
// suspension point, and not-yet-started followers are marked cancelled.
func (o *Orchestrator) AuditBatch(ctx context.Context, followers []domain.FollowerRecord) (*domain.BatchResult, error) {
	if followers == nil {
		return nil, ErrNilBatch
	}

	br := &domain.BatchResult{
		BatchID:   uuid.New(),
		State:     domain.BatchPending,
		Items:     make([]domain.ItemOutcome, len(followers)),
		StartedAt: o.clock.Now(),
	}
	log := o.logger.With("batch_id", br.BatchID.String())

	br.State = domain.BatchRunning
	log.Info("Audit batch started", "followers", len(followers))

	var wg sync.WaitGroup
	for i, follower := range followers {
		if o.launch != nil {
			if err := o.launch.Wait(ctx); err != nil {
				o.markNotStarted(br, followers, i)
				break
			}
		}

		// Acquire before spawning so tasks beyond the ceiling queue here.
		if err := o.sem.Acquire(ctx, 1); err != nil {
			o.markNotStarted(br, followers, i)
			break
		}

		wg.Add(1)
		go func(i int, f domain.FollowerRecord) {
			defer wg.Done()
			defer o.sem.Release(1)
			defer func() {
				if r := recover(); r != nil {
					log.Error("Evaluation panicked", "follower_id", f.ID, "panic", r)
					br.Items[i] = failureOutcome(f, domain.KindInternal, "evaluation panicked", domain.AttemptTrail{})
				}
			}()

			metrics.EvaluationsInFlight.Inc()
			defer metrics.EvaluationsInFlight.Dec()

			start := o.clock.Now()
			br.Items[i] = o.evaluate(ctx, f)
			metrics.EvaluationDuration.Observe(o.clock.Since(start).Seconds())
		}(i, follower)
	}
	wg.Wait()

	for _, item := range br.Items {
		if item.Failed() {
			br.Failed++
			metrics.ItemFailuresTotal.WithLabelValues(string(item.Failure.Kind)).Inc()
		} else {
			br.Succeeded++
			metrics.AuditsTotal.WithLabelValues(string(item.Result.Action)).Inc()
		}
	}

	if br.Failed == 0 {
		br.State = domain.BatchCompleted
	} else {
		br.State = domain.BatchPartiallyFailed
	}
	br.EndedAt = o.clock.Now()
	metrics.BatchesTotal.WithLabelValues(string(br.State)).Inc()

	log.Info("Audit batch finished",
		"state", br.State,
		"succeeded", br.Succeeded,
		"failed", br.Failed,
		"duration", br.EndedAt.Sub(br.StartedAt),
	)
	return br, nil
}

// evaluate runs one follower through profile analysis, engagement analysis
// and aggregation. Every returned error becomes a failure marker.
func (o *Orchestrator) evaluate(ctx context.Context, f domain.FollowerRecord) domain.ItemOutcome {
	var trail domain.AttemptTrail

	profile, attempts, err := o.profiles.AnalyzeProfile(ctx, f.PictureRef, f.Bio)
	trail.ProfileAttempts += attempts
	if err != nil {
		return failureOutcome(f, domain.KindOf(err), err.Error(), trail)
	}

	var pattern *domain.FollowingPattern
	if len(f.Following) > 0 {
		p, attempts, err := o.profiles.AnalyzeFollowingPattern(ctx, f.Following)
		trail.ProfileAttempts += attempts
		if err != nil {
			return failureOutcome(f, domain.KindOf(err), err.Error(), trail)
		}
		pattern = &p
	}

	engagement, attempts, err := o.engagement.CheckEngagement(ctx, f.ID)
	trail.EngagementAttempts += attempts
	if err != nil {
		return failureOutcome(f, domain.KindOf(err), err.Error(), trail)
	}

	engScore, riskScore := score.Aggregate(profile, pattern, engagement)
	action := o.thresholds.Decide(engScore, riskScore)

	return domain.ItemOutcome{Result: &domain.AuditResult{
		FollowerID:      f.ID,
		Username:        f.Username,
		EngagementScore: engScore,
		RiskScore:       riskScore,
		RiskLevel:       domain.RiskLevelFor(riskScore),
		Action:          action,
		Recommendations: score.Recommendations(engScore, riskScore, f),
		Profile:         profile,
		Engagement:      engagement,
		Attempts:        trail,
		AuditedAt:       o.clock.Now(),
	}}
}

// markNotStarted fills failure markers for followers whose evaluation was
// never launched because the batch was cancelled.
func (o *Orchestrator) markNotStarted(br *domain.BatchResult, followers []domain.FollowerRecord, from int) {
	for i := from; i < len(followers); i++ {
		br.Items[i] = failureOutcome(followers[i], domain.KindCancelled, "batch cancelled before evaluation started", domain.AttemptTrail{})
	}
}

func failureOutcome(f domain.FollowerRecord, kind domain.ErrorKind, msg string, trail domain.AttemptTrail) domain.ItemOutcome {
	return domain.ItemOutcome{Failure: &domain.ItemFailure{
		FollowerID: f.ID,
		Username:   f.Username,
		Kind:       kind,
		Message:    msg,
		Attempts:   trail,
	}}
}
