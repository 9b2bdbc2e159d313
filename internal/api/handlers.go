// Package api contains the HTTP handlers for the recommendation service
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"ainav/backend/pkg/models"
)

const (
	serviceName = "ainav"
	// Version is reported by the health endpoints.
	Version = "2.0.0"
)

// Handler contains the service-level HTTP handlers
type Handler struct {
	now func() time.Time
}

// NewHandler creates a new Handler with required dependencies
func NewHandler() *Handler {
	return &Handler{now: time.Now}
}

// HandleIndex is the landing document
// (GET /)
func (h *Handler) HandleIndex(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "AI导航 - API 服务运行中",
		"version": Version,
	})
}

// HandleHealth returns basic health status (always returns 200 OK)
// (GET /healthz)
func (h *Handler) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, models.HealthStatus{
		Status:    "ok",
		Timestamp: h.now(),
		Service:   serviceName,
		Version:   Version,
	})
}

// ErrorHandler renders every error as an RFC 7807 Problem Details document
// carrying the request id.
func ErrorHandler(logger Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		detail := "internal error"
		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			if msg, ok := he.Message.(string); ok {
				detail = msg
			} else {
				detail = http.StatusText(status)
			}
		}
		if status >= http.StatusInternalServerError {
			logger.Error("request failed", "path", c.Path(), "error", err)
		}

		problem := models.ProblemDetails{
			Type:     "about:blank",
			Title:    http.StatusText(status),
			Status:   status,
			Detail:   detail,
			Instance: c.Request().URL.Path,
			TraceID:  c.Response().Header().Get(echo.HeaderXRequestID),
		}
		c.Response().Header().Set(echo.HeaderContentType, "application/problem+json")
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, problem)
		}
		if err != nil {
			logger.Error("failed to write error response", "error", err)
		}
	}
}
