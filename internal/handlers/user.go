package handlers

import (
	"log/slog"
	"net/http"

	"github.com/anonto42/biolink/backend/internal/middleware"
	"github.com/anonto42/biolink/backend/internal/models"
	"github.com/anonto42/biolink/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// UserHandler handles HTTP requests related to the authenticated user
type UserHandler struct {
	accounts *services.AccountService
	logger   *slog.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(accounts *services.AccountService, logger *slog.Logger) *UserHandler {
	return &UserHandler{accounts: accounts, logger: logger}
}

// RegisterProfileRoutes registers user profile-related routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/profile", h.GetProfile)
	g.PUT("/profile/analytics", h.UpdateAnalytics)
	g.DELETE("/profile", h.DeleteAccount)
}

// GetProfile retrieves the authenticated user's profile
func (h *UserHandler) GetProfile(c echo.Context) error {
	user, err := h.accounts.Profile(c.Request().Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		return toHTTPError(h.logger, err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHandler) UpdateAnalytics(c echo.Context) error {
	var req models.UpdateAnalyticsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	user, err := h.accounts.SetAnalytics(c.Request().Context(), middleware.CurrentUser(c).ID, req)
	if err != nil {
		return toHTTPError(h.logger, err)
	}
	return c.JSON(http.StatusOK, user)
}

// DeleteAccount removes the user together with all pages, requests and notifications.
func (h *UserHandler) DeleteAccount(c echo.Context) error {
	if err := h.accounts.DeleteAccount(c.Request().Context(), middleware.CurrentUser(c).ID); err != nil {
		return toHTTPError(h.logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}
