package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/gitYourbits/sse-insta-audit-platform/internal/domain"
	"github.com/gitYourbits/sse-insta-audit-platform/internal/metrics"
)

const (
	profileKeyPrefix    = "audit:profile:"
	engagementKeyPrefix = "audit:engagement:"
)

// RedisCachedSource caches id-keyed lookups in Redis so multiple instances
// share one metrics cache. Cache errors degrade to the inner source; they
// never fail the lookup.
type RedisCachedSource struct {
	inner  MetricsSource
	client *goredis.Client
	ttl    time.Duration
}

func NewRedisCachedSource(inner MetricsSource, client *goredis.Client, ttl time.Duration) *RedisCachedSource {
	return &RedisCachedSource{inner: inner, client: client, ttl: ttl}
}

func (c *RedisCachedSource) ProfileSignals(ctx context.Context, pictureRef, bio string) (domain.ProfileMetrics, error) {
	return c.inner.ProfileSignals(ctx, pictureRef, bio)
}

func (c *RedisCachedSource) FollowingSignals(ctx context.Context, following []string) (domain.FollowingPattern, error) {
	return c.inner.FollowingSignals(ctx, following)
}

func (c *RedisCachedSource) EngagementSignals(ctx context.Context, followerID string) (EngagementSignals, error) {
	var cached EngagementSignals
	if hit := c.lookup(ctx, engagementKeyPrefix+followerID, &cached); hit {
		return cached, nil
	}

	val, err := c.inner.EngagementSignals(ctx, followerID)
	if err != nil {
		return EngagementSignals{}, err
	}
	c.store(ctx, engagementKeyPrefix+followerID, val)
	return val, nil
}

func (c *RedisCachedSource) ProfileMetricsByID(ctx context.Context, followerID string) (domain.ProfileMetrics, error) {
	var cached domain.ProfileMetrics
	if hit := c.lookup(ctx, profileKeyPrefix+followerID, &cached); hit {
		return cached, nil
	}

	val, err := c.inner.ProfileMetricsByID(ctx, followerID)
	if err != nil {
		return domain.ProfileMetrics{}, err
	}
	c.store(ctx, profileKeyPrefix+followerID, val)
	return val, nil
}

func (c *RedisCachedSource) lookup(ctx context.Context, key string, dest any) bool {
	raw, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			metrics.MetricsCacheErrors.Inc()
		}
		metrics.MetricsCacheLookups.WithLabelValues("miss").Inc()
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		metrics.MetricsCacheErrors.Inc()
		metrics.MetricsCacheLookups.WithLabelValues("miss").Inc()
		return false
	}
	metrics.MetricsCacheLookups.WithLabelValues("hit").Inc()
	return true
}

func (c *RedisCachedSource) store(ctx context.Context, key string, val any) {
	raw, err := json.Marshal(val)
	if err != nil {
		metrics.MetricsCacheErrors.Inc()
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		metrics.MetricsCacheErrors.Inc()
	}
}

var _ MetricsSource = (*RedisCachedSource)(nil)
