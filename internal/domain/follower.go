package domain

import "time"

// FollowerRecord is a validated follower of the audited account. Records are
// produced by the ingestion boundary and are read-only to the audit core.
type FollowerRecord struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	PictureRef string `json:"picture_ref"`
	Bio        string `json:"bio"`
	IsPrivate  bool   `json:"is_private"`

	FollowingCount  int      `json:"following_count"`
	FollowedByCount int      `json:"followed_by_count"`
	Following       []string `json:"following,omitempty"`

	Likes            float64    `json:"likes"`
	Comments         float64    `json:"comments"`
	Shares           float64    `json:"shares"`
	Saves            float64    `json:"saves"`
	LastInteraction  *time.Time `json:"last_interaction,omitempty"`
	InteractionCount int        `json:"interaction_count"`
}

// ProfileMetrics holds the five profile sub-scores, each in [0,1].
// Produced once per follower and never mutated afterwards.
type ProfileMetrics struct {
	Authenticity        float64 `json:"authenticity"`
	EngagementPotential float64 `json:"engagement_potential"`
	RiskLevel           float64 `json:"risk_level"`
	InteractionPattern  float64 `json:"interaction_pattern"`
	AccountAge          float64 `json:"account_age"`
}

// FollowingPattern holds the follow-graph sub-scores, each in [0,1].
type FollowingPattern struct {
	FollowingRatio      float64 `json:"following_ratio"`
	CommunityConnection float64 `json:"community_connection"`
	SuspiciousPattern   float64 `json:"suspicious_pattern"`
}

// EngagementMetrics holds per-channel weighted contributions plus the
// recency and frequency signals, each normalized to [0,1].
type EngagementMetrics struct {
	Likes     float64 `json:"likes"`
	Comments  float64 `json:"comments"`
	Shares    float64 `json:"shares"`
	Saves     float64 `json:"saves"`
	Recency   float64 `json:"recency"`
	Frequency float64 `json:"frequency"`
	Score     float64 `json:"score"`
}

// ClampScore bounds a score to [0,1]. Every score crossing a package
// boundary goes through this first.
func ClampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
