// Package server is the HTTP boundary: it validates incoming follower
// batches, hands them to the audit service, and exposes health and
// metrics endpoints.
package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/gitYourbits/sse-insta-audit-platform/internal/app"
	"github.com/gitYourbits/sse-insta-audit-platform/internal/config"
)

// RedisHealth is the minimal interface for Redis health checks.
type RedisHealth interface {
	Ping(ctx context.Context) error
}

// PostgresHealth is the minimal interface for PostgreSQL health checks.
type PostgresHealth interface {
	Ping(ctx context.Context) error
}

type Server struct {
	echo     *echo.Echo
	config   *config.Config
	audits   *app.Service
	redis    RedisHealth
	postgres PostgresHealth
	logger   *slog.Logger
}

// NewServer builds the echo server. redis and postgres may be nil when the
// corresponding integration is disabled; their health checks are skipped.
func NewServer(cfg *config.Config, audits *app.Service, redis RedisHealth, postgres PostgresHealth, logger *slog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	srv := &Server{
		echo:     e,
		config:   cfg,
		audits:   audits,
		redis:    redis,
		postgres: postgres,
		logger:   logger,
	}

	srv.registerRoutes()
	return srv
}

func (s *Server) Start() error {
	s.logger.Info("Starting server", "port", s.config.Port)
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
