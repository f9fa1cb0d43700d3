package domain

import (
	"time"

	"github.com/google/uuid"
)

// Action is the final recommendation for a follower.
type Action string

const (
	ActionKeep    Action = "keep"
	ActionMonitor Action = "monitor"
	ActionRemove  Action = "remove"
)

// RiskLevel is a named band over the risk score, used for labeling.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// RiskLevelFor maps a risk score to its named band.
func RiskLevelFor(risk float64) RiskLevel {
	switch {
	case risk >= 0.9:
		return RiskCritical
	case risk >= 0.7:
		return RiskHigh
	case risk >= 0.5:
		return RiskMedium
	default:
		return RiskLow
	}
}

// BatchState tracks the lifecycle of one audit batch.
type BatchState string

const (
	BatchPending         BatchState = "pending"
	BatchRunning         BatchState = "running"
	BatchCompleted       BatchState = "completed"
	BatchPartiallyFailed BatchState = "partially_failed"
)

// AttemptTrail records how many invocations each sub-analysis consumed
// for one follower, including the first attempt.
type AttemptTrail struct {
	ProfileAttempts    int `json:"profile_attempts"`
	EngagementAttempts int `json:"engagement_attempts"`
}

// AuditResult is the outcome for a single follower. Immutable once produced.
type AuditResult struct {
	FollowerID      string            `json:"follower_id"`
	Username        string            `json:"username"`
	EngagementScore float64           `json:"engagement_score"`
	RiskScore       float64           `json:"risk_score"`
	RiskLevel       RiskLevel         `json:"risk_level"`
	Action          Action            `json:"action"`
	Recommendations []string          `json:"recommendations,omitempty"`
	Profile         ProfileMetrics    `json:"profile"`
	Engagement      EngagementMetrics `json:"engagement"`
	Attempts        AttemptTrail      `json:"attempts"`
	AuditedAt       time.Time         `json:"audited_at"`
}

// ItemFailure marks a follower whose evaluation failed terminally.
// Failures are data: they never abort the batch.
type ItemFailure struct {
	FollowerID string       `json:"follower_id"`
	Username   string       `json:"username"`
	Kind       ErrorKind    `json:"kind"`
	Message    string       `json:"message"`
	Attempts   AttemptTrail `json:"attempts"`
}

// ItemOutcome is exactly one of Result or Failure.
type ItemOutcome struct {
	Result  *AuditResult `json:"result,omitempty"`
	Failure *ItemFailure `json:"failure,omitempty"`
}

// Failed reports whether the item ended in a failure marker.
func (o ItemOutcome) Failed() bool {
	return o.Failure != nil
}

// BatchResult collects one outcome per input follower, positionally:
// Items[i] corresponds to followers[i] regardless of completion order.
type BatchResult struct {
	BatchID   uuid.UUID     `json:"batch_id"`
	State     BatchState    `json:"state"`
	Items     []ItemOutcome `json:"items"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	StartedAt time.Time     `json:"started_at"`
	EndedAt   time.Time     `json:"ended_at"`
}
