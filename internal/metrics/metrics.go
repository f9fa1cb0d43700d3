package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Audit pipeline metrics
var (
	// BatchesTotal tracks completed audit batches by terminal state
	BatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_batches_total",
			Help: "Completed audit batches by terminal state",
		},
		[]string{"state"},
	)

	// AuditsTotal tracks per-follower audit outcomes by action
	AuditsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_results_total",
			Help: "Per-follower audit outcomes by recommended action",
		},
		[]string{"action"},
	)

	// ItemFailuresTotal tracks per-follower evaluation failures by error kind
	ItemFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_item_failures_total",
			Help: "Per-follower evaluation failures by error kind",
		},
		[]string{"kind"},
	)

	// EvaluationsInFlight tracks follower evaluations currently holding a
	// concurrency slot
	EvaluationsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "audit_evaluations_in_flight",
			Help: "Follower evaluations currently holding a concurrency slot",
		},
	)

	// EvaluationDuration tracks per-follower evaluation latency in seconds
	EvaluationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "audit_evaluation_duration_seconds",
			Help:    "Per-follower evaluation duration in seconds",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
	)

	// AnalysisRetriesTotal tracks retries consumed by sub-analysis operation
	AnalysisRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_analysis_retries_total",
			Help: "Retries consumed by sub-analysis operation",
		},
		[]string{"operation"},
	)
)

// Metrics cache metrics
var (
	// MetricsCacheLookups tracks cache lookups by result (hit/miss)
	MetricsCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metrics_cache_lookups_total",
			Help: "Metrics cache lookups by result",
		},
		[]string{"result"},
	)

	// MetricsCacheErrors tracks cache read/write errors (degraded to source)
	MetricsCacheErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "metrics_cache_errors_total",
			Help: "Metrics cache read/write errors",
		},
	)
)

// Audit sink metrics
var (
	// SinkWritesTotal tracks audit sink writes by sink and status
	SinkWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_sink_writes_total",
			Help: "Audit sink writes by sink and status",
		},
		[]string{"sink", "status"},
	)
)

// Circuit breaker metrics
var (
	// CircuitBreakerStateChanges tracks circuit breaker state transitions
	CircuitBreakerStateChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_changes_total",
			Help: "Circuit breaker state transitions by component and new state",
		},
		[]string{"component", "state"},
	)

	// CircuitBreakerState tracks current circuit breaker state
	// (0=closed, 1=half-open, 2=open)
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"component"},
	)
)
