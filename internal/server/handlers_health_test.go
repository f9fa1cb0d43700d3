package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitYourbits/sse-insta-audit-platform/internal/app"
	"github.com/gitYourbits/sse-insta-audit-platform/internal/config"
	"github.com/gitYourbits/sse-insta-audit-platform/internal/domain"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func newHealthServer(redis, postgres *stubPinger) *Server {
	logger := slog.New(slog.DiscardHandler)
	orch := &stubOrchestrator{}
	factory := func([]domain.FollowerRecord) (app.Orchestrator, error) { return orch, nil }
	svc := app.NewService(factory, nil, logger)

	var r RedisHealth
	if redis != nil {
		r = redis
	}
	var p PostgresHealth
	if postgres != nil {
		p = postgres
	}
	return NewServer(&config.Config{Port: "0"}, svc, r, p, logger)
}

func doGet(srv *Server, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)
	return rec
}

func TestLiveness(t *testing.T) {
	srv := newHealthServer(nil, nil)

	rec := doGet(srv, "/health/live")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestReadiness_AllIntegrationsDisabled(t *testing.T) {
	srv := newHealthServer(nil, nil)

	rec := doGet(srv, "/health/ready")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"redis":"skipped"`)
	assert.Contains(t, rec.Body.String(), `"postgres":"skipped"`)
}

func TestReadiness_AllHealthy(t *testing.T) {
	srv := newHealthServer(&stubPinger{}, &stubPinger{})

	rec := doGet(srv, "/health/ready")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"redis":"ok"`)
	assert.Contains(t, rec.Body.String(), `"postgres":"ok"`)
}

func TestReadiness_RedisDown(t *testing.T) {
	srv := newHealthServer(&stubPinger{err: errors.New("connection refused")}, &stubPinger{})

	rec := doGet(srv, "/health/ready")

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"degraded"`)
	assert.Contains(t, rec.Body.String(), `"redis":"unreachable"`)
	assert.Contains(t, rec.Body.String(), `"postgres":"ok"`)
}

func TestVersionEndpoint(t *testing.T) {
	srv := newHealthServer(nil, nil)

	rec := doGet(srv, "/version")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"go_version"`)
}
