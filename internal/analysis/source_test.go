package analysis

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitYourbits/sse-insta-audit-platform/internal/domain"
)

func TestSyntheticSource_Deterministic(t *testing.T) {
	src := NewSyntheticSource(0, nil)
	ctx := context.Background()

	a, err := src.ProfileSignals(ctx, "pic", "bio")
	require.NoError(t, err)
	b, err := src.ProfileSignals(ctx, "pic", "bio")
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := src.ProfileSignals(ctx, "pic2", "bio")
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestSyntheticSource_ScoresInRange(t *testing.T) {
	src := NewSyntheticSource(0, nil)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "longer-follower-id", ""} {
		m, err := src.ProfileMetricsByID(ctx, id)
		require.NoError(t, err)
		for name, v := range map[string]float64{
			"authenticity": m.Authenticity,
			"potential":    m.EngagementPotential,
			"risk":         m.RiskLevel,
			"pattern":      m.InteractionPattern,
			"age":          m.AccountAge,
		} {
			assert.GreaterOrEqual(t, v, 0.0, name)
			assert.LessOrEqual(t, v, 1.0, name)
		}
	}
}

func TestSyntheticSource_LatencyRespectsCancellation(t *testing.T) {
	clock := clockwork.NewFakeClock()
	src := NewSyntheticSource(time.Second, clock)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := src.ProfileSignals(ctx, "pic", "bio")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScoreFollowing_CoreAccountsRaiseCommunityConnection(t *testing.T) {
	p := scoreFollowing([]string{"instagram", "meta", "randomuser"})
	assert.InDelta(t, 0.5, p.CommunityConnection, 1e-9, "two of four core accounts followed")

	none := scoreFollowing([]string{"randomuser"})
	assert.Equal(t, 0.0, none.CommunityConnection)
}

func TestScoreFollowing_MassFollowingIsSuspicious(t *testing.T) {
	big := make([]string, 3000)
	for i := range big {
		big[i] = "acct"
	}

	p := scoreFollowing(big)
	assert.GreaterOrEqual(t, p.SuspiciousPattern, 0.6)
	assert.Equal(t, 0.0, p.FollowingRatio)

	small := scoreFollowing([]string{"a", "b"})
	assert.Less(t, small.SuspiciousPattern, 0.1)
}

func TestRecordSource_AnswersFromBatchRecords(t *testing.T) {
	last := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	records := []domain.FollowerRecord{
		{
			ID:               "f1",
			Likes:            50,
			Comments:         200, // above channel cap, saturates
			LastInteraction:  &last,
			InteractionCount: 7,
		},
	}
	src := NewRecordSource(records, NewSyntheticSource(0, nil))

	s, err := src.EngagementSignals(context.Background(), "f1")
	require.NoError(t, err)
	assert.InDelta(t, 0.5, s.Likes, 1e-9)
	assert.Equal(t, 1.0, s.Comments)
	assert.Equal(t, 7, s.InteractionCount)
	require.NotNil(t, s.LastInteraction)
	assert.True(t, s.LastInteraction.Equal(last))
}

func TestRecordSource_UnknownIDFallsBack(t *testing.T) {
	fallback := NewSyntheticSource(0, nil)
	src := NewRecordSource(nil, fallback)

	got, err := src.EngagementSignals(context.Background(), "stranger")
	require.NoError(t, err)

	want, err := fallback.EngagementSignals(context.Background(), "stranger")
	require.NoError(t, err)
	assert.Equal(t, want.Likes, got.Likes)
}

func TestRecordSource_ProfileMetricsFromRecord(t *testing.T) {
	records := []domain.FollowerRecord{
		{ID: "bot", FollowingCount: 5000, FollowedByCount: 10},
		{ID: "organic", FollowingCount: 100, FollowedByCount: 150},
	}
	src := NewRecordSource(records, NewSyntheticSource(0, nil))

	bot, err := src.ProfileMetricsByID(context.Background(), "bot")
	require.NoError(t, err)
	organic, err := src.ProfileMetricsByID(context.Background(), "organic")
	require.NoError(t, err)

	assert.Greater(t, bot.RiskLevel, organic.RiskLevel, "mass-following account carries more risk")
	assert.Less(t, bot.Authenticity, organic.Authenticity)
}

func TestCachedSource_MemoizesWithinTTL(t *testing.T) {
	clock := clockwork.NewFakeClock()
	inner := &scriptedSource{
		engagement: func() (EngagementSignals, error) {
			return EngagementSignals{Likes: 0.5}, nil
		},
	}
	cached := NewCachedSource(inner, 5*time.Minute, clock)
	ctx := context.Background()

	_, err := cached.EngagementSignals(ctx, "f1")
	require.NoError(t, err)
	_, err = cached.EngagementSignals(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, 1, inner.engagementCalls, "second lookup served from cache")

	clock.Advance(6 * time.Minute)
	_, err = cached.EngagementSignals(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.engagementCalls, "expired entry refreshed")
}

func TestCachedSource_ProfileSignalsPassThrough(t *testing.T) {
	inner := &scriptedSource{
		profileSignals: func() (domain.ProfileMetrics, error) {
			return domain.ProfileMetrics{Authenticity: 0.9}, nil
		},
	}
	cached := NewCachedSource(inner, time.Minute, clockwork.NewFakeClock())
	ctx := context.Background()

	_, _ = cached.ProfileSignals(ctx, "pic", "bio")
	_, _ = cached.ProfileSignals(ctx, "pic", "bio")
	assert.Equal(t, 2, inner.profileCalls, "pic/bio lookups are not id-keyed and bypass the cache")
}
