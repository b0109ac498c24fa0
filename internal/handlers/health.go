package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
)

const serviceName = "biolink-api"

// HealthHandler reports liveness and, when a store check is configured, readiness.
type HealthHandler struct {
	check  func(context.Context) error
	logger *slog.Logger
}

// NewHealthHandler accepts a nil check for stores that cannot go away (memory).
func NewHealthHandler(check func(context.Context) error, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{check: check, logger: logger}
}

func (h *HealthHandler) HealthCheck(c echo.Context) error {
	if h.check != nil {
		if err := h.check(c.Request().Context()); err != nil {
			h.logger.Warn("health check failed", "error", err)
			return c.JSON(http.StatusServiceUnavailable, map[string]string{
				"status":  "unhealthy",
				"service": serviceName,
			})
		}
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": serviceName,
	})
}
