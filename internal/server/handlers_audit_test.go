package server

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitYourbits/sse-insta-audit-platform/internal/app"
	"github.com/gitYourbits/sse-insta-audit-platform/internal/config"
	"github.com/gitYourbits/sse-insta-audit-platform/internal/domain"
)

type stubOrchestrator struct {
	result *domain.BatchResult
	err    error
	got    []domain.FollowerRecord
}

func (s *stubOrchestrator) AuditBatch(_ context.Context, followers []domain.FollowerRecord) (*domain.BatchResult, error) {
	s.got = followers
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func newTestServer(t *testing.T, orch *stubOrchestrator) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(testWriter{t}, nil))
	factory := func([]domain.FollowerRecord) (app.Orchestrator, error) { return orch, nil }
	svc := app.NewService(factory, nil, logger)
	return NewServer(&config.Config{Port: "0"}, svc, nil, nil, logger)
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(strings.TrimSpace(string(p)))
	return len(p), nil
}

func completedBatch(n int) *domain.BatchResult {
	now := time.Now()
	items := make([]domain.ItemOutcome, n)
	for i := range items {
		items[i] = domain.ItemOutcome{Result: &domain.AuditResult{Action: domain.ActionKeep, AuditedAt: now}}
	}
	return &domain.BatchResult{
		BatchID:   uuid.New(),
		State:     domain.BatchCompleted,
		Items:     items,
		Succeeded: n,
		StartedAt: now,
		EndedAt:   now,
	}
}

func postAuditRequest(srv *Server, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/audits", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)
	return rec
}

const validFollower = `{"id":"f1","username":"alice","picture_ref":"pic1","bio":"hello"}`

func TestPostAudit_Success(t *testing.T) {
	orch := &stubOrchestrator{result: completedBatch(1)}
	srv := newTestServer(t, orch)

	rec := postAuditRequest(srv, `{"followers":[`+validFollower+`]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"state":"completed"`)
	require.Len(t, orch.got, 1)
	assert.Equal(t, "f1", orch.got[0].ID)
}

func TestPostAudit_EmptyBatchRejected(t *testing.T) {
	srv := newTestServer(t, &stubOrchestrator{result: completedBatch(0)})

	rec := postAuditRequest(srv, `{"followers":[]}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "followers")
}

func TestPostAudit_MalformedBodyRejected(t *testing.T) {
	srv := newTestServer(t, &stubOrchestrator{result: completedBatch(0)})

	rec := postAuditRequest(srv, `{"followers": nope`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPostAudit_MissingRequiredFieldRejected(t *testing.T) {
	orch := &stubOrchestrator{result: completedBatch(1)}
	srv := newTestServer(t, orch)

	rec := postAuditRequest(srv, `{"followers":[{"id":"f1","username":"alice","bio":"hi"}]}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "followers[0].picture_ref")
	assert.Nil(t, orch.got, "invalid batch must not reach the orchestrator")
}

func TestPostAudit_DuplicateIDRejected(t *testing.T) {
	srv := newTestServer(t, &stubOrchestrator{result: completedBatch(2)})

	body := `{"followers":[` + validFollower + `,` + validFollower + `]}`
	rec := postAuditRequest(srv, body)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "duplicate follower id")
}

func TestPostAudit_OrchestratorErrorMapsToStatus(t *testing.T) {
	srv := newTestServer(t, &stubOrchestrator{err: context.Canceled})

	rec := postAuditRequest(srv, `{"followers":[`+validFollower+`]}`)

	assert.Equal(t, http.StatusRequestTimeout, rec.Code)
}

func TestValidateFollowers_AllFieldsPresent(t *testing.T) {
	err := validateFollowers([]domain.FollowerRecord{
		{ID: "a", Username: "u", PictureRef: "p", Bio: "b"},
	})
	assert.NoError(t, err)
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid input", &domain.InvalidInputError{Field: "bio"}, http.StatusBadRequest},
		{"cancelled", context.Canceled, http.StatusRequestTimeout},
		{"configuration", &domain.ConfigurationError{Setting: "x"}, http.StatusInternalServerError},
		{"unknown", assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusForError(tt.err))
		})
	}
}
