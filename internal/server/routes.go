package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	s.echo.POST("/api/audits", s.postAudit)

	s.echo.GET("/health/live", s.getLiveness)
	s.echo.GET("/health/ready", s.getReadiness)
	s.echo.GET("/version", s.getVersion)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}
