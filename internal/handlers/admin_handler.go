package handlers

import (
	"log/slog"
	"net/http"

	"github.com/anonto42/biolink/backend/internal/middleware"
	"github.com/anonto42/biolink/backend/internal/models"
	"github.com/anonto42/biolink/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// AdminHandler serves the staff console: the verification queue, campaigns,
// reserved usernames and role management.
type AdminHandler struct {
	verification  *services.VerificationService
	notifications *services.NotificationService
	pages         *services.PageService
	accounts      *services.AccountService
	logger        *slog.Logger
}

func NewAdminHandler(verification *services.VerificationService, notifications *services.NotificationService, pages *services.PageService, accounts *services.AccountService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		verification:  verification,
		notifications: notifications,
		pages:         pages,
		accounts:      accounts,
		logger:        logger,
	}
}

// RegisterAdminRoutes registers staff routes. The group must already require
// an admin or owner role.
func (h *AdminHandler) RegisterAdminRoutes(g *echo.Group) {
	g.GET("/verification", h.ListRequests)
	g.POST("/verification/:id/approve", h.Approve)
	g.POST("/verification/:id/reject", h.Reject)
	g.POST("/verification/:id/revoke", h.Revoke)
	g.POST("/verification/:id/resume", h.Resume)
	g.POST("/users/:id/verify", h.DirectGrant)
	g.PUT("/users/:id/role", h.SetRole, middleware.RequireRole(models.RoleOwner))

	g.POST("/campaigns", h.SendCampaign)
	g.GET("/campaigns", h.ListCampaigns)
	g.GET("/campaigns/:id", h.GetCampaign)

	g.GET("/reserved-usernames", h.ListReserved)
	g.POST("/reserved-usernames", h.ReserveUsername)
	g.DELETE("/reserved-usernames/:username", h.ReleaseUsername)
}

func (h *AdminHandler) ListRequests(c echo.Context) error {
	status, err := models.ParseRequestStatus(c.QueryParam("status"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	requests, err := h.verification.List(c.Request().Context(), middleware.CurrentActor(c), status)
	if err != nil {
		return toHTTPError(h.logger, err)
	}
	return c.JSON(http.StatusOK, requests)
}

func (h *AdminHandler) Approve(c echo.Context) error {
	ticket, err := h.verification.Approve(c.Request().Context(), middleware.CurrentActor(c), c.Param("id"))
	if err != nil {
		return toHTTPError(h.logger, err)
	}
	return c.JSON(http.StatusOK, ticket)
}

func (h *AdminHandler) Reject(c echo.Context) error {
	var req models.ReasonRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ticket, err := h.verification.Reject(c.Request().Context(), middleware.CurrentActor(c), c.Param("id"), req.Reason)
	if err != nil {
		return toHTTPError(h.logger, err)
	}
	return c.JSON(http.StatusOK, ticket)
}

func (h *AdminHandler) Revoke(c echo.Context) error {
	var req models.ReasonRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ticket, err := h.verification.Revoke(c.Request().Context(), middleware.CurrentActor(c), c.Param("id"), req.Reason)
	if err != nil {
		return toHTTPError(h.logger, err)
	}
	return c.JSON(http.StatusOK, ticket)
}

func (h *AdminHandler) Resume(c echo.Context) error {
	ticket, err := h.verification.Resume(c.Request().Context(), middleware.CurrentActor(c), c.Param("id"))
	if err != nil {
		return toHTTPError(h.logger, err)
	}
	return c.JSON(http.StatusOK, ticket)
}

func (h *AdminHandler) DirectGrant(c echo.Context) error {
	ticket, err := h.verification.DirectGrant(c.Request().Context(), middleware.CurrentActor(c), c.Param("id"))
	if err != nil {
		return toHTTPError(h.logger, err)
	}
	return c.JSON(http.StatusOK, ticket)
}

func (h *AdminHandler) SetRole(c echo.Context) error {
	var req models.SetRoleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	user, err := h.accounts.SetRole(c.Request().Context(), middleware.CurrentActor(c), c.Param("id"), req.Role)
	if err != nil {
		return toHTTPError(h.logger, err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AdminHandler) SendCampaign(c echo.Context) error {
	var req models.SendCampaignRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	campaign, err := h.notifications.SendCampaign(c.Request().Context(), middleware.CurrentActor(c), req)
	if err != nil {
		return toHTTPError(h.logger, err)
	}
	return c.JSON(http.StatusCreated, campaign)
}

func (h *AdminHandler) ListCampaigns(c echo.Context) error {
	campaigns, err := h.notifications.ListCampaigns(c.Request().Context(), middleware.CurrentActor(c))
	if err != nil {
		return toHTTPError(h.logger, err)
	}
	return c.JSON(http.StatusOK, campaigns)
}

func (h *AdminHandler) GetCampaign(c echo.Context) error {
	campaign, err := h.notifications.GetCampaign(c.Request().Context(), middleware.CurrentActor(c), c.Param("id"))
	if err != nil {
		return toHTTPError(h.logger, err)
	}
	return c.JSON(http.StatusOK, campaign)
}

func (h *AdminHandler) ListReserved(c echo.Context) error {
	reserved, err := h.pages.ListReserved(c.Request().Context(), middleware.CurrentActor(c))
	if err != nil {
		return toHTTPError(h.logger, err)
	}
	return c.JSON(http.StatusOK, reserved)
}

func (h *AdminHandler) ReserveUsername(c echo.Context) error {
	var req models.ReserveUsernameRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	entry, err := h.pages.ReserveUsername(c.Request().Context(), middleware.CurrentActor(c), req)
	if err != nil {
		return toHTTPError(h.logger, err)
	}
	return c.JSON(http.StatusCreated, entry)
}

func (h *AdminHandler) ReleaseUsername(c echo.Context) error {
	if err := h.pages.ReleaseUsername(c.Request().Context(), middleware.CurrentActor(c), c.Param("username")); err != nil {
		return toHTTPError(h.logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}
