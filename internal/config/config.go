// Package config loads and validates the service configuration from the
// environment. Weight sets and thresholds are validated here so a bad
// configuration fails at startup, never mid-batch.
package config

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"

	"github.com/gitYourbits/sse-insta-audit-platform/internal/domain"
)

const weightTolerance = 1e-6

type Config struct {
	AppEnv    string `env:"APP_ENV" default:"development"`
	Port      string `env:"PORT" default:"8080"`
	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`

	// Optional backing services; empty disables the integration.
	DatabaseURL string `env:"DATABASE_URL" default:""`
	RedisURL    string `env:"REDIS_URL" default:""`

	// Retry policy for fallible sub-analyses.
	MaxRetryAttempts int           `env:"MAX_RETRY_ATTEMPTS" default:"3"`
	RetryBaseDelay   time.Duration `env:"RETRY_BASE_DELAY" default:"1s"`
	RetryMaxDelay    time.Duration `env:"RETRY_MAX_DELAY" default:"10s"`

	// Batch execution.
	BatchConcurrency int     `env:"BATCH_CONCURRENCY" default:"10"`
	LaunchRate       float64 `env:"LAUNCH_RATE_PER_SECOND" default:"0"`

	// Engagement weight set; must sum to 1.0.
	LikesWeight    float64 `env:"LIKES_WEIGHT" default:"0.4"`
	CommentsWeight float64 `env:"COMMENTS_WEIGHT" default:"0.3"`
	SharesWeight   float64 `env:"SHARES_WEIGHT" default:"0.2"`
	SavesWeight    float64 `env:"SAVES_WEIGHT" default:"0.1"`

	// Decision thresholds; remove <= monitor <= keep, all in [0,1].
	KeepThreshold    float64 `env:"KEEP_THRESHOLD" default:"0.7"`
	MonitorThreshold float64 `env:"MONITOR_THRESHOLD" default:"0.5"`
	RemoveThreshold  float64 `env:"REMOVE_THRESHOLD" default:"0.3"`

	// Metrics cache.
	CacheTTL time.Duration `env:"METRICS_CACHE_TTL" default:"5m"`

	// Simulated upstream latency of the synthetic analysis backend.
	AnalysisLatency time.Duration `env:"ANALYSIS_LATENCY" default:"100ms"`

	// Append-only audit log directory.
	AuditLogDir string `env:"AUDIT_LOG_DIR" default:"logs"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.MaxRetryAttempts < 1 {
		return &domain.ConfigurationError{Setting: "MAX_RETRY_ATTEMPTS", Reason: "must be >= 1"}
	}
	if cfg.RetryBaseDelay < 0 || cfg.RetryMaxDelay < 0 {
		return &domain.ConfigurationError{Setting: "retry delays", Reason: "must not be negative"}
	}
	if cfg.RetryMaxDelay < cfg.RetryBaseDelay {
		return &domain.ConfigurationError{Setting: "RETRY_MAX_DELAY", Reason: "must be >= RETRY_BASE_DELAY"}
	}
	if cfg.BatchConcurrency < 1 {
		return &domain.ConfigurationError{Setting: "BATCH_CONCURRENCY", Reason: "must be >= 1"}
	}
	if cfg.LaunchRate < 0 {
		return &domain.ConfigurationError{Setting: "LAUNCH_RATE_PER_SECOND", Reason: "must not be negative"}
	}

	sum := cfg.LikesWeight + cfg.CommentsWeight + cfg.SharesWeight + cfg.SavesWeight
	if math.Abs(sum-1.0) > weightTolerance {
		return &domain.ConfigurationError{
			Setting: "engagement weights",
			Reason:  fmt.Sprintf("must sum to 1.0, got %g", sum),
		}
	}

	for name, v := range map[string]float64{
		"KEEP_THRESHOLD":    cfg.KeepThreshold,
		"MONITOR_THRESHOLD": cfg.MonitorThreshold,
		"REMOVE_THRESHOLD":  cfg.RemoveThreshold,
	} {
		if v < 0 || v > 1 {
			return &domain.ConfigurationError{Setting: name, Reason: "must be in [0,1]"}
		}
	}
	if !(cfg.RemoveThreshold <= cfg.MonitorThreshold && cfg.MonitorThreshold <= cfg.KeepThreshold) {
		return &domain.ConfigurationError{
			Setting: "decision thresholds",
			Reason:  "expected REMOVE_THRESHOLD <= MONITOR_THRESHOLD <= KEEP_THRESHOLD",
		}
	}

	return nil
}
