package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/bookly/bookly-api/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error      string `json:"error"`
	Reason     string `json:"reason,omitempty"`
	Resolution string `json:"resolution,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Renders guard failures with their reason and resolution.
//   - Maps known domain errors to their HTTP status codes.
//   - Logs unexpected errors without leaking details to the client.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Guard failures carry their own reason.
	var ae *domain.AuthError
	if errors.As(err, &ae) {
		code := http.StatusForbidden
		if errors.Is(ae.Kind, domain.ErrUnauthenticated) {
			code = http.StatusUnauthorized
		}
		return code, errorResponse{Error: ae.Message, Reason: ae.Reason, Resolution: ae.Resolution}
	}

	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusForbidden, errorResponse{Error: "invalid username or password"}
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusForbidden, errorResponse{Error: "user with email already exists"}
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, errorResponse{Error: "user not found"}
	case errors.Is(err, domain.ErrBookNotFound):
		return http.StatusNotFound, errorResponse{Error: "book not found"}
	case errors.Is(err, domain.ErrPasswordMismatch):
		return http.StatusBadRequest, errorResponse{Error: "passwords don't match"}
	case errors.Is(err, domain.ErrInvalidToken):
		return http.StatusBadRequest, errorResponse{Error: "invalid or expired link"}
	case errors.Is(err, domain.ErrExpiredOrInvalid):
		return http.StatusBadRequest, errorResponse{Error: "invalid or expired token"}
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, errorResponse{Error: err.Error()}
	case errors.Is(err, domain.ErrMailQueueFull):
		return http.StatusServiceUnavailable, errorResponse{Error: "mail queue is full, retry later"}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Error: "internal server error"}
}
