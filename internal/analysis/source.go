package analysis

import (
	"context"
	"hash/fnv"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/gitYourbits/sse-insta-audit-platform/internal/domain"
)

// EngagementSignals is the raw per-channel data a backend returns for a
// follower id, before weighting. Channel values are normalized to [0,1].
type EngagementSignals struct {
	Likes            float64    `json:"likes"`
	Comments         float64    `json:"comments"`
	Shares           float64    `json:"shares"`
	Saves            float64    `json:"saves"`
	LastInteraction  *time.Time `json:"last_interaction,omitempty"`
	InteractionCount int        `json:"interaction_count"`
}

// MetricsSource is the injected data source behind the analyzers. The
// default implementation synthesizes deterministic values; production
// deployments swap in a real backend, and the Redis cache wraps either.
type MetricsSource interface {
	// ProfileSignals scores a profile picture reference and bio text.
	ProfileSignals(ctx context.Context, pictureRef, bio string) (domain.ProfileMetrics, error)
	// FollowingSignals scores a follow graph sample.
	FollowingSignals(ctx context.Context, following []string) (domain.FollowingPattern, error)
	// EngagementSignals fetches raw engagement data for a follower id.
	EngagementSignals(ctx context.Context, followerID string) (EngagementSignals, error)
	// ProfileMetricsByID fetches profile metrics for a follower id.
	ProfileMetricsByID(ctx context.Context, followerID string) (domain.ProfileMetrics, error)
}

// coreAccounts are well-known hub accounts; following them counts toward
// community connection.
var coreAccounts = map[string]struct{}{
	"instagram": {},
	"meta":      {},
	"facebook":  {},
	"threads":   {},
}

// massFollowingThreshold flags accounts following an implausible number of
// profiles as likely follow-for-follow bots.
const massFollowingThreshold = 2000

// SyntheticSource derives stable pseudo-metrics from its inputs. It stands
// in for the real analysis backends: same input, same output, no I/O. An
// optional fixed latency simulates the upstream call so concurrency and
// cancellation behave like production.
type SyntheticSource struct {
	latency time.Duration
	clock   clockwork.Clock
}

// NewSyntheticSource creates a deterministic source. latency may be zero.
func NewSyntheticSource(latency time.Duration, clock clockwork.Clock) *SyntheticSource {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &SyntheticSource{latency: latency, clock: clock}
}

func (s *SyntheticSource) wait(ctx context.Context) error {
	if s.latency <= 0 {
		return nil
	}
	select {
	case <-s.clock.After(s.latency):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *SyntheticSource) ProfileSignals(ctx context.Context, pictureRef, bio string) (domain.ProfileMetrics, error) {
	if err := s.wait(ctx); err != nil {
		return domain.ProfileMetrics{}, err
	}
	base := hashUnit(pictureRef + "|" + bio)
	bioLen := float64(len(bio))
	return domain.ProfileMetrics{
		Authenticity:        domain.ClampScore(0.35 + 0.4*base + bioLen/1000),
		EngagementPotential: domain.ClampScore(0.3 + 0.5*hashUnit(bio)),
		RiskLevel:           domain.ClampScore(0.6 - 0.5*base),
		InteractionPattern:  domain.ClampScore(0.25 + 0.6*hashUnit(pictureRef)),
		AccountAge:          domain.ClampScore(0.2 + 0.75*hashUnit(pictureRef+bio)),
	}, nil
}

func (s *SyntheticSource) FollowingSignals(ctx context.Context, following []string) (domain.FollowingPattern, error) {
	if err := s.wait(ctx); err != nil {
		return domain.FollowingPattern{}, err
	}
	return scoreFollowing(following), nil
}

func (s *SyntheticSource) EngagementSignals(ctx context.Context, followerID string) (EngagementSignals, error) {
	if err := s.wait(ctx); err != nil {
		return EngagementSignals{}, err
	}
	last := s.clock.Now().Add(-time.Duration(1+int(hashUnit(followerID+"days")*29)) * 24 * time.Hour)
	return EngagementSignals{
		Likes:            hashUnit(followerID + "likes"),
		Comments:         hashUnit(followerID + "comments"),
		Shares:           hashUnit(followerID + "shares"),
		Saves:            hashUnit(followerID + "saves"),
		LastInteraction:  &last,
		InteractionCount: int(hashUnit(followerID+"count") * 10),
	}, nil
}

func (s *SyntheticSource) ProfileMetricsByID(ctx context.Context, followerID string) (domain.ProfileMetrics, error) {
	if err := s.wait(ctx); err != nil {
		return domain.ProfileMetrics{}, err
	}
	return domain.ProfileMetrics{
		Authenticity:        hashUnit(followerID + "auth"),
		EngagementPotential: hashUnit(followerID + "potential"),
		RiskLevel:           hashUnit(followerID + "risk"),
		InteractionPattern:  hashUnit(followerID + "pattern"),
		AccountAge:          hashUnit(followerID + "age"),
	}, nil
}

func scoreFollowing(following []string) domain.FollowingPattern {
	count := float64(len(following))
	core := 0
	for _, name := range following {
		if _, ok := coreAccounts[name]; ok {
			core++
		}
	}

	suspicious := 0.0
	if count > massFollowingThreshold {
		suspicious = 0.6 + domain.ClampScore((count-massFollowingThreshold)/massFollowingThreshold)*0.4
	} else {
		suspicious = 0.3 * count / massFollowingThreshold
	}

	return domain.FollowingPattern{
		FollowingRatio:      domain.ClampScore(1 - count/massFollowingThreshold),
		CommunityConnection: domain.ClampScore(float64(core) / 4),
		SuspiciousPattern:   domain.ClampScore(suspicious),
	}
}

// hashUnit maps a string onto [0,1) via FNV-1a. Stable across runs.
func hashUnit(s string) float64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return float64(h.Sum64()%10000) / 10000
}
