package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gitYourbits/sse-insta-audit-platform/internal/domain"
)

const auditSchema = `
CREATE TABLE IF NOT EXISTS audit_results (
    id            BIGSERIAL PRIMARY KEY,
    batch_id      UUID        NOT NULL,
    follower_id   TEXT        NOT NULL,
    username      TEXT        NOT NULL,
    outcome       JSONB       NOT NULL,
    failed        BOOLEAN     NOT NULL,
    recorded_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_audit_results_batch ON audit_results (batch_id);
`

// AuditRepo appends audit outcomes to the audit_results table. Rows are
// never updated or deleted by the service.
type AuditRepo struct {
	pool *pgxpool.Pool
}

// NewAuditRepo ensures the schema exists and returns the repository.
func NewAuditRepo(ctx context.Context, pool *pgxpool.Pool) (*AuditRepo, error) {
	if _, err := pool.Exec(ctx, auditSchema); err != nil {
		return nil, fmt.Errorf("failed to ensure audit schema: %w", err)
	}
	return &AuditRepo{pool: pool}, nil
}

// Name identifies the sink in logs and metrics.
func (r *AuditRepo) Name() string { return "postgres" }

// Write appends one outcome row.
func (r *AuditRepo) Write(ctx context.Context, batchID uuid.UUID, outcome domain.ItemOutcome) error {
	payload, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("failed to marshal outcome: %w", err)
	}

	followerID, username := outcomeIdentity(outcome)
	_, err = r.pool.Exec(ctx,
		`INSERT INTO audit_results (batch_id, follower_id, username, outcome, failed) VALUES ($1, $2, $3, $4, $5)`,
		batchID, followerID, username, payload, outcome.Failed(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit result: %w", err)
	}
	return nil
}

func outcomeIdentity(outcome domain.ItemOutcome) (followerID, username string) {
	if outcome.Failed() {
		return outcome.Failure.FollowerID, outcome.Failure.Username
	}
	return outcome.Result.FollowerID, outcome.Result.Username
}
