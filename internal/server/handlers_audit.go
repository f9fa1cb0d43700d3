package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gitYourbits/sse-insta-audit-platform/internal/domain"
)

// maxBatchSize bounds a single request so one client cannot park an
// unbounded amount of work behind the concurrency ceiling.
const maxBatchSize = 10_000

type auditRequest struct {
	Followers []domain.FollowerRecord `json:"followers"`
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// postAudit ingests a follower batch, runs the audit, and returns the
// full batch result. Per-item failures are part of the result body, not
// an HTTP error; only rejected input or a batch-level fault maps to one.
func (s *Server) postAudit(c echo.Context) error {
	var req auditRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "malformed request body"})
	}

	if len(req.Followers) == 0 {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "followers must not be empty", Field: "followers"})
	}
	if len(req.Followers) > maxBatchSize {
		return c.JSON(http.StatusBadRequest, errorResponse{
			Error: fmt.Sprintf("batch exceeds %d followers", maxBatchSize),
			Field: "followers",
		})
	}

	if err := validateFollowers(req.Followers); err != nil {
		var invalid *domain.InvalidInputError
		if errors.As(err, &invalid) {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: invalid.Error(), Field: invalid.Field})
		}
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	result, err := s.audits.RunAudit(c.Request().Context(), req.Followers)
	if err != nil {
		s.logger.ErrorContext(c.Request().Context(), "Audit batch failed", "error", err)
		return c.JSON(statusForError(err), errorResponse{Error: "audit failed"})
	}

	return c.JSON(http.StatusOK, result)
}

// validateFollowers enforces the ingestion contract: identity and
// profile fields every evaluation reads must be present up front, so a
// bad record is rejected before any work is scheduled.
func validateFollowers(followers []domain.FollowerRecord) error {
	seen := make(map[string]struct{}, len(followers))
	for i, f := range followers {
		for field, value := range map[string]string{
			"id":          f.ID,
			"username":    f.Username,
			"picture_ref": f.PictureRef,
			"bio":         f.Bio,
		} {
			if value == "" {
				return &domain.InvalidInputError{
					Field:  fmt.Sprintf("followers[%d].%s", i, field),
					Reason: "must not be empty",
				}
			}
		}
		if _, dup := seen[f.ID]; dup {
			return &domain.InvalidInputError{
				Field:  fmt.Sprintf("followers[%d].id", i),
				Reason: "duplicate follower id " + f.ID,
			}
		}
		seen[f.ID] = struct{}{}
	}
	return nil
}

func statusForError(err error) int {
	switch domain.KindOf(err) {
	case domain.KindInvalidInput:
		return http.StatusBadRequest
	case domain.KindConfiguration:
		return http.StatusInternalServerError
	case domain.KindCancelled:
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}
