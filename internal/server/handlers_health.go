package server

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gitYourbits/sse-insta-audit-platform/internal/platform/version"
)

const healthCheckTimeout = 2 * time.Second

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// getLiveness reports process liveness only. It never touches backing
// services, so a broken Redis cannot get the pod restarted.
func (s *Server) getLiveness(c echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{Status: "ok"})
}

// getReadiness verifies the backing services the deployment actually
// enabled. A disabled integration is reported as skipped, not failed.
func (s *Server) getReadiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthCheckTimeout)
	defer cancel()

	checks := make(map[string]string)
	healthy := true

	if s.redis == nil {
		checks["redis"] = "skipped"
	} else if err := s.redis.Ping(ctx); err != nil {
		checks["redis"] = "unreachable"
		healthy = false
	} else {
		checks["redis"] = "ok"
	}

	if s.postgres == nil {
		checks["postgres"] = "skipped"
	} else if err := s.postgres.Ping(ctx); err != nil {
		checks["postgres"] = "unreachable"
		healthy = false
	} else {
		checks["postgres"] = "ok"
	}

	if !healthy {
		return c.JSON(http.StatusServiceUnavailable, healthResponse{Status: "degraded", Checks: checks})
	}
	return c.JSON(http.StatusOK, healthResponse{Status: "ok", Checks: checks})
}

func (s *Server) getVersion(c echo.Context) error {
	return c.JSON(http.StatusOK, version.Get())
}
