package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"

	"github.com/gitYourbits/sse-insta-audit-platform/internal/analysis"
	"github.com/gitYourbits/sse-insta-audit-platform/internal/app"
	"github.com/gitYourbits/sse-insta-audit-platform/internal/audit"
	"github.com/gitYourbits/sse-insta-audit-platform/internal/config"
	"github.com/gitYourbits/sse-insta-audit-platform/internal/database"
	"github.com/gitYourbits/sse-insta-audit-platform/internal/domain"
	"github.com/gitYourbits/sse-insta-audit-platform/internal/platform/logging"
	"github.com/gitYourbits/sse-insta-audit-platform/internal/platform/retry"
	"github.com/gitYourbits/sse-insta-audit-platform/internal/redis"
	"github.com/gitYourbits/sse-insta-audit-platform/internal/score"
	"github.com/gitYourbits/sse-insta-audit-platform/internal/server"
	"github.com/gitYourbits/sse-insta-audit-platform/internal/sink"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupDB(cfg *config.Config) *pgxpool.Pool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	return pool
}

func setupRedis(ctx context.Context, cfg *config.Config) *goredis.Client {
	client, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	return client
}

// setupSource layers the metrics source: synthetic backend, then a Redis
// cache when configured, otherwise an in-process TTL cache.
func setupSource(cfg *config.Config, redisClient *goredis.Client, clock clockwork.Clock) analysis.MetricsSource {
	backend := analysis.NewSyntheticSource(cfg.AnalysisLatency, clock)
	if redisClient != nil {
		return analysis.NewRedisCachedSource(backend, redisClient, cfg.CacheTTL)
	}
	return analysis.NewCachedSource(backend, cfg.CacheTTL, clock)
}

func setupSinks(cfg *config.Config, pool *pgxpool.Pool, clock clockwork.Clock) []app.Sink {
	jsonlSink, err := sink.NewJSONLWriter(cfg.AuditLogDir, clock)
	if err != nil {
		slog.Error("Failed to create audit log writer", "error", err)
		os.Exit(1)
	}
	sinks := []app.Sink{jsonlSink}

	if pool != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		repo, err := database.NewAuditRepo(ctx, pool)
		if err != nil {
			slog.Error("Failed to create audit repository", "error", err)
			os.Exit(1)
		}
		sinks = append(sinks, repo)
	}
	return sinks
}

func runGracefulShutdown(srv *server.Server, sinks []app.Sink) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		for _, snk := range sinks {
			if closer, ok := snk.(interface{ Close() error }); ok {
				if err := closer.Close(); err != nil {
					slog.Error("Failed to close audit sink", "sink", snk.Name(), "error", err)
				}
			}
		}

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logger := logging.Init(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	var pool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		pool = setupDB(cfg)
		defer pool.Close()
	}

	var redisClient *goredis.Client
	if cfg.RedisURL != "" {
		redisClient = setupRedis(context.Background(), cfg)
		defer func() { _ = redisClient.Close() }()
	}

	source := setupSource(cfg, redisClient, clock)

	policy := retry.Policy{
		MaxAttempts: cfg.MaxRetryAttempts,
		BaseDelay:   cfg.RetryBaseDelay,
		MaxDelay:    cfg.RetryMaxDelay,
		Clock:       clock,
	}

	weights := analysis.EngagementWeights{
		Likes:    cfg.LikesWeight,
		Comments: cfg.CommentsWeight,
		Shares:   cfg.SharesWeight,
		Saves:    cfg.SavesWeight,
	}
	thresholds := score.Thresholds{
		Keep:    cfg.KeepThreshold,
		Monitor: cfg.MonitorThreshold,
		Remove:  cfg.RemoveThreshold,
	}

	// Fail bad weight sets and thresholds at startup; the factory below
	// runs per batch and must not be the first place they are checked.
	if err := weights.Validate(); err != nil {
		slog.Error("Invalid engagement weights", "error", err)
		os.Exit(1)
	}
	if err := thresholds.Validate(); err != nil {
		slog.Error("Invalid decision thresholds", "error", err)
		os.Exit(1)
	}

	opts := audit.Options{
		Concurrency: int64(cfg.BatchConcurrency),
		LaunchRate:  cfg.LaunchRate,
	}

	// Each batch gets analyzers backed by its own records, with the shared
	// cached source as fallback for ids outside the batch.
	factory := func(followers []domain.FollowerRecord) (app.Orchestrator, error) {
		recordSource := analysis.NewRecordSource(followers, source)
		profiles := analysis.NewProfileAnalyzer(recordSource, policy, logger)
		engagement, err := analysis.NewEngagementEvaluator(recordSource, weights, policy, clock, logger)
		if err != nil {
			return nil, err
		}
		return audit.NewOrchestrator(profiles, engagement, thresholds, opts, clock, logger)
	}

	sinks := setupSinks(cfg, pool, clock)

	appSvc := app.NewService(factory, sinks, logger)

	// Pass nils through typed wrappers carefully: a typed-nil pool inside
	// the health-check interface would defeat the nil guard.
	var redisHealth server.RedisHealth
	if redisClient != nil {
		redisHealth = redis.Pinger{Client: redisClient}
	}
	var pgHealth server.PostgresHealth
	if pool != nil {
		pgHealth = pool
	}
	srv := server.NewServer(cfg, appSvc, redisHealth, pgHealth, logger)

	done := runGracefulShutdown(srv, sinks)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
