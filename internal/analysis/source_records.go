package analysis

import (
	"context"

	"github.com/gitYourbits/sse-insta-audit-platform/internal/domain"
)

// channelCap normalizes raw interaction counters onto [0,1]. Counters above
// the cap saturate at 1.
const channelCap = 100.0

// interactionCountCap bounds the frequency signal.
const interactionCountCap = 10

// RecordSource answers id-keyed lookups from the follower records of the
// batch being audited, so engagement signals reflect the counters the
// ingestion boundary validated. Ids not in the batch fall back to the
// wrapped source.
type RecordSource struct {
	records  map[string]domain.FollowerRecord
	fallback MetricsSource
}

// NewRecordSource indexes the given records by id. fallback must not be nil.
func NewRecordSource(records []domain.FollowerRecord, fallback MetricsSource) *RecordSource {
	byID := make(map[string]domain.FollowerRecord, len(records))
	for _, r := range records {
		byID[r.ID] = r
	}
	return &RecordSource{records: byID, fallback: fallback}
}

func (s *RecordSource) ProfileSignals(ctx context.Context, pictureRef, bio string) (domain.ProfileMetrics, error) {
	return s.fallback.ProfileSignals(ctx, pictureRef, bio)
}

func (s *RecordSource) FollowingSignals(ctx context.Context, following []string) (domain.FollowingPattern, error) {
	return s.fallback.FollowingSignals(ctx, following)
}

func (s *RecordSource) EngagementSignals(ctx context.Context, followerID string) (EngagementSignals, error) {
	r, ok := s.records[followerID]
	if !ok {
		return s.fallback.EngagementSignals(ctx, followerID)
	}
	return EngagementSignals{
		Likes:            domain.ClampScore(r.Likes / channelCap),
		Comments:         domain.ClampScore(r.Comments / channelCap),
		Shares:           domain.ClampScore(r.Shares / channelCap),
		Saves:            domain.ClampScore(r.Saves / channelCap),
		LastInteraction:  r.LastInteraction,
		InteractionCount: r.InteractionCount,
	}, nil
}

func (s *RecordSource) ProfileMetricsByID(ctx context.Context, followerID string) (domain.ProfileMetrics, error) {
	r, ok := s.records[followerID]
	if !ok {
		return s.fallback.ProfileMetricsByID(ctx, followerID)
	}

	ratio := 0.5
	if r.FollowingCount > 0 {
		ratio = domain.ClampScore(float64(r.FollowedByCount) / float64(r.FollowingCount))
	}
	massFollower := 0.0
	if r.FollowingCount > massFollowingThreshold {
		massFollower = 0.5
	}

	return domain.ProfileMetrics{
		Authenticity:        domain.ClampScore(0.3 + 0.5*ratio + hashUnit(r.ID+"auth")*0.2),
		EngagementPotential: domain.ClampScore(float64(r.InteractionCount) / interactionCountCap),
		RiskLevel:           domain.ClampScore(0.2 + massFollower + (1-ratio)*0.3),
		InteractionPattern:  domain.ClampScore((r.Likes + r.Comments + r.Shares + r.Saves) / (4 * channelCap)),
		AccountAge:          domain.ClampScore(0.3 + 0.6*hashUnit(r.ID+"age")),
	}, nil
}
