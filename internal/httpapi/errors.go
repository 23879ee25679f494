package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"tmfstock/internal/attachments"
	"tmfstock/internal/blob"
	"tmfstock/internal/identity"
	"tmfstock/pkg/domain"
)

type errorBody struct {
	Error      string             `json:"error"`
	Field      string             `json:"field,omitempty"`
	Violations []domain.Violation `json:"violations,omitempty"`
}

// handleError renders every handler error as JSON with a status derived from
// the error type.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status, body := classify(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", c.Request().Method, "path", c.Path(), "error", err)
	}
	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(status)
	} else {
		werr = c.JSON(status, body)
	}
	if werr != nil {
		s.logger.Error("write error response", "error", werr)
	}
}

func classify(err error) (int, errorBody) {
	var (
		httpErr   *echo.HTTPError
		invalid   domain.ValidationError
		notFound  domain.ErrNotFound
		violation domain.RuleViolationError
	)
	switch {
	case errors.As(err, &httpErr):
		return httpErr.Code, errorBody{Error: fmt.Sprint(httpErr.Message)}
	case errors.As(err, &invalid):
		return http.StatusBadRequest, errorBody{Error: invalid.Message, Field: invalid.Field}
	case errors.As(err, &notFound):
		return http.StatusNotFound, errorBody{Error: notFound.Error()}
	case errors.As(err, &violation):
		return http.StatusConflict, errorBody{Error: violation.Error(), Violations: blocking(violation.Result)}
	case errors.Is(err, identity.ErrInvalidCredentials):
		return http.StatusUnauthorized, errorBody{Error: identity.MsgInvalidCredentials}
	case errors.Is(err, identity.ErrInvalidSession), errors.Is(err, identity.ErrSessionExpired):
		return http.StatusUnauthorized, errorBody{Error: MsgSessionRequired}
	case errors.Is(err, attachments.ErrUnknownRef), errors.Is(err, blob.ErrNotFound):
		return http.StatusNotFound, errorBody{Error: "attachment not found"}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, errorBody{Error: http.StatusText(http.StatusServiceUnavailable)}
	}
	return http.StatusInternalServerError, errorBody{Error: http.StatusText(http.StatusInternalServerError)}
}

func blocking(res domain.Result) []domain.Violation {
	var out []domain.Violation
	for _, v := range res.Violations {
		if v.Severity == domain.SeverityBlock {
			out = append(out, v)
		}
	}
	return out
}
