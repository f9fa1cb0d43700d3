package analysis

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/gitYourbits/sse-insta-audit-platform/internal/domain"
)

// CachedSource memoizes the id-keyed lookups of an inner source with a TTL.
// Single-instance mode; the Redis-backed variant serves multi-instance
// deployments. Pic/bio and follow-graph calls are not id-keyed and pass
// through uncached.
type CachedSource struct {
	inner MetricsSource
	ttl   time.Duration
	clock clockwork.Clock

	mu         sync.RWMutex
	profile    map[string]cachedEntry[domain.ProfileMetrics]
	engagement map[string]cachedEntry[EngagementSignals]
}

type cachedEntry[T any] struct {
	value   T
	expires time.Time
}

func NewCachedSource(inner MetricsSource, ttl time.Duration, clock clockwork.Clock) *CachedSource {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &CachedSource{
		inner:      inner,
		ttl:        ttl,
		clock:      clock,
		profile:    make(map[string]cachedEntry[domain.ProfileMetrics]),
		engagement: make(map[string]cachedEntry[EngagementSignals]),
	}
}

func (c *CachedSource) ProfileSignals(ctx context.Context, pictureRef, bio string) (domain.ProfileMetrics, error) {
	return c.inner.ProfileSignals(ctx, pictureRef, bio)
}

func (c *CachedSource) FollowingSignals(ctx context.Context, following []string) (domain.FollowingPattern, error) {
	return c.inner.FollowingSignals(ctx, following)
}

func (c *CachedSource) EngagementSignals(ctx context.Context, followerID string) (EngagementSignals, error) {
	c.mu.RLock()
	entry, ok := c.engagement[followerID]
	c.mu.RUnlock()
	if ok && c.clock.Now().Before(entry.expires) {
		return entry.value, nil
	}

	val, err := c.inner.EngagementSignals(ctx, followerID)
	if err != nil {
		return EngagementSignals{}, err
	}

	c.mu.Lock()
	c.engagement[followerID] = cachedEntry[EngagementSignals]{value: val, expires: c.clock.Now().Add(c.ttl)}
	c.mu.Unlock()
	return val, nil
}

func (c *CachedSource) ProfileMetricsByID(ctx context.Context, followerID string) (domain.ProfileMetrics, error) {
	c.mu.RLock()
	entry, ok := c.profile[followerID]
	c.mu.RUnlock()
	if ok && c.clock.Now().Before(entry.expires) {
		return entry.value, nil
	}

	val, err := c.inner.ProfileMetricsByID(ctx, followerID)
	if err != nil {
		return domain.ProfileMetrics{}, err
	}

	c.mu.Lock()
	c.profile[followerID] = cachedEntry[domain.ProfileMetrics]{value: val, expires: c.clock.Now().Add(c.ttl)}
	c.mu.Unlock()
	return val, nil
}
