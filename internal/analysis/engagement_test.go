package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitYourbits/sse-insta-audit-platform/internal/domain"
)

func TestEngagementWeights_Validate(t *testing.T) {
	assert.NoError(t, DefaultEngagementWeights.Validate())

	bad := EngagementWeights{Likes: 0.5, Comments: 0.5, Shares: 0.5}
	err := bad.Validate()
	require.Error(t, err)
	assert.Equal(t, domain.KindConfiguration, domain.KindOf(err))
}

func TestNewEngagementEvaluator_RejectsBadWeights(t *testing.T) {
	_, err := NewEngagementEvaluator(&scriptedSource{}, EngagementWeights{Likes: 1.5}, fastPolicy(1), nil, discardLogger())

	require.Error(t, err)
	var cfgErr *domain.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestCheckEngagement_EmptyIDRejected(t *testing.T) {
	eval, err := NewEngagementEvaluator(&scriptedSource{}, DefaultEngagementWeights, fastPolicy(3), nil, discardLogger())
	require.NoError(t, err)

	_, attempts, err := eval.CheckEngagement(context.Background(), "")

	assert.Equal(t, domain.KindInvalidInput, domain.KindOf(err))
	assert.Zero(t, attempts)
}

func TestCheckEngagement_FoldMath(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC))
	last := clock.Now().Add(-15 * 24 * time.Hour)

	src := &scriptedSource{
		engagement: func() (EngagementSignals, error) {
			return EngagementSignals{
				Likes:            1,
				Comments:         1,
				Shares:           1,
				Saves:            1,
				LastInteraction:  &last,
				InteractionCount: 5,
			}, nil
		},
	}
	eval, err := NewEngagementEvaluator(src, DefaultEngagementWeights, fastPolicy(1), clock, discardLogger())
	require.NoError(t, err)

	m, attempts, err := eval.CheckEngagement(context.Background(), "f1")

	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
	assert.InDelta(t, 0.4, m.Likes, 1e-9)
	assert.InDelta(t, 0.3, m.Comments, 1e-9)
	assert.InDelta(t, 0.2, m.Shares, 1e-9)
	assert.InDelta(t, 0.1, m.Saves, 1e-9)
	assert.InDelta(t, 0.5, m.Recency, 1e-9, "15 of 30 days elapsed")
	assert.InDelta(t, 0.5, m.Frequency, 1e-9, "5 of 10 capped interactions")

	// 0.8 * (0.4+0.3+0.2+0.1) + 0.1*0.5 + 0.1*0.5
	assert.InDelta(t, 0.9, m.Score, 1e-9)
}

func TestCheckEngagement_RecencyEdges(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))
	eval, err := NewEngagementEvaluator(&scriptedSource{}, DefaultEngagementWeights, fastPolicy(1), clock, discardLogger())
	require.NoError(t, err)

	assert.Equal(t, 0.0, eval.recency(nil), "never interacted")

	now := clock.Now()
	assert.Equal(t, 1.0, eval.recency(&now), "interacted just now")

	stale := now.Add(-45 * 24 * time.Hour)
	assert.Equal(t, 0.0, eval.recency(&stale), "outside the window")
}

func TestCheckEngagement_RetriesTransientFailures(t *testing.T) {
	calls := 0
	src := &scriptedSource{
		engagement: func() (EngagementSignals, error) {
			calls++
			if calls == 1 {
				return EngagementSignals{}, &domain.TransientAnalysisError{Op: "engagement", Cause: errors.New("timeout")}
			}
			return EngagementSignals{Likes: 0.5}, nil
		},
	}
	eval, err := NewEngagementEvaluator(src, DefaultEngagementWeights, fastPolicy(3), nil, discardLogger())
	require.NoError(t, err)

	m, attempts, err := eval.CheckEngagement(context.Background(), "f1")

	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.InDelta(t, 0.2, m.Likes, 1e-9)
}

func TestCheckEngagement_ExhaustionYieldsTaxonomyError(t *testing.T) {
	src := &scriptedSource{
		engagement: func() (EngagementSignals, error) {
			return EngagementSignals{}, &domain.TransientAnalysisError{Op: "engagement", Cause: errors.New("timeout")}
		},
	}
	eval, err := NewEngagementEvaluator(src, DefaultEngagementWeights, fastPolicy(2), nil, discardLogger())
	require.NoError(t, err)

	_, attempts, err := eval.CheckEngagement(context.Background(), "f1")

	assert.Equal(t, 2, attempts)
	assert.Equal(t, domain.KindRetryExhausted, domain.KindOf(err))
}
