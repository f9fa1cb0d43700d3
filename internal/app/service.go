// Package app is the application layer: it runs audits through the
// orchestrator and feeds every outcome to the configured audit sinks.
package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/gitYourbits/sse-insta-audit-platform/internal/domain"
	"github.com/gitYourbits/sse-insta-audit-platform/internal/metrics"
	"github.com/gitYourbits/sse-insta-audit-platform/internal/platform/correlation"
	"github.com/gitYourbits/sse-insta-audit-platform/internal/platform/retry"
)

// Orchestrator runs one batch through the evaluation pipeline.
type Orchestrator interface {
	AuditBatch(ctx context.Context, followers []domain.FollowerRecord) (*domain.BatchResult, error)
}

// OrchestratorFactory builds an orchestrator scoped to one batch, so the
// metrics source can answer engagement lookups from the batch's own records.
type OrchestratorFactory func(followers []domain.FollowerRecord) (Orchestrator, error)

// Sink consumes audit outcomes append-only. A sink failure is logged and
// counted but never fails the audit: the batch result is the source of
// truth, the sinks are downstream copies.
type Sink interface {
	Name() string
	Write(ctx context.Context, batchID uuid.UUID, outcome domain.ItemOutcome) error
}

// Service wires batch orchestration to the sinks.
type Service struct {
	newOrchestrator OrchestratorFactory
	sinks           []Sink
	logger          *slog.Logger
}

func NewService(factory OrchestratorFactory, sinks []Sink, logger *slog.Logger) *Service {
	return &Service{newOrchestrator: factory, sinks: sinks, logger: logger}
}

// RunAudit audits a batch and records every outcome in the sinks.
func (s *Service) RunAudit(ctx context.Context, followers []domain.FollowerRecord) (*domain.BatchResult, error) {
	ctx = correlation.WithID(ctx, correlation.NewID())

	orchestrator, err := s.newOrchestrator(followers)
	if err != nil {
		return nil, err
	}

	br, err := orchestrator.AuditBatch(ctx, followers)
	if err != nil {
		return nil, err
	}

	s.record(ctx, br)
	return br, nil
}

// sinkRetryPolicy gives each sink write one short-fuse retry; a blip on
// disk or database should not lose an audit line.
var sinkRetryPolicy = retry.Policy{
	MaxAttempts: 2,
	BaseDelay:   10 * time.Millisecond,
	MaxDelay:    50 * time.Millisecond,
}

func retrySinkWrite(error) retry.Action { return retry.Retry }

// record writes outcomes with a fresh context so sink writes survive the
// caller cancelling the audit request.
func (s *Service) record(ctx context.Context, br *domain.BatchResult) {
	writeCtx := context.WithoutCancel(ctx)
	for _, snk := range s.sinks {
		for _, outcome := range br.Items {
			err := retry.DoVoid(writeCtx, sinkRetryPolicy, retrySinkWrite, func() error {
				return snk.Write(writeCtx, br.BatchID, outcome)
			})
			if err != nil {
				metrics.SinkWritesTotal.WithLabelValues(snk.Name(), "error").Inc()
				s.logger.ErrorContext(ctx, "Audit sink write failed",
					"sink", snk.Name(),
					"batch_id", br.BatchID.String(),
					"error", err,
				)
				continue
			}
			metrics.SinkWritesTotal.WithLabelValues(snk.Name(), "success").Inc()
		}
	}
}
