package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/anonto42/biolink/backend/internal/live"
	"github.com/anonto42/biolink/backend/internal/middleware"
	"github.com/anonto42/biolink/backend/internal/models"
	"github.com/anonto42/biolink/backend/internal/repositories"
	"github.com/anonto42/biolink/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// PageHandler serves the owner's page management API and the public page view.
type PageHandler struct {
	pages     *services.PageService
	snapshots *live.SnapshotBuilder
	logger    *slog.Logger
}

func NewPageHandler(pages *services.PageService, snapshots *live.SnapshotBuilder, logger *slog.Logger) *PageHandler {
	return &PageHandler{pages: pages, snapshots: snapshots, logger: logger}
}

// RegisterPageRoutes registers the authenticated page routes
func (h *PageHandler) RegisterPageRoutes(g *echo.Group) {
	g.GET("/pages", h.ListPages)
	g.GET("/pages/main", h.GetMainPage)
	g.POST("/pages", h.CreatePage)
	g.PATCH("/pages/:id", h.UpdatePage)
	g.PUT("/pages/:id/username", h.RenamePage)
	g.DELETE("/pages/:id", h.DeletePage)
}

// RegisterPublicRoutes registers routes readable without a token
func (h *PageHandler) RegisterPublicRoutes(g *echo.Group) {
	g.GET("/pages/:username", h.GetPublicPage)
}

func (h *PageHandler) ListPages(c echo.Context) error {
	pages, err := h.pages.ListPages(c.Request().Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		return toHTTPError(h.logger, err)
	}
	return c.JSON(http.StatusOK, pages)
}

func (h *PageHandler) GetMainPage(c echo.Context) error {
	page, err := h.pages.MainPage(c.Request().Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		return toHTTPError(h.logger, err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *PageHandler) CreatePage(c echo.Context) error {
	var req models.CreatePageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	page, err := h.pages.CreatePage(c.Request().Context(), middleware.CurrentUser(c).ID, req)
	if err != nil {
		return toHTTPError(h.logger, err)
	}
	return c.JSON(http.StatusCreated, page)
}

func (h *PageHandler) UpdatePage(c echo.Context) error {
	var req models.PageAttributes
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	page, err := h.pages.UpdatePage(c.Request().Context(), c.Param("id"), middleware.CurrentUser(c).ID, req)
	if err != nil {
		return toHTTPError(h.logger, err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *PageHandler) RenamePage(c echo.Context) error {
	var req models.RenamePageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	page, err := h.pages.RenameUsername(c.Request().Context(), c.Param("id"), middleware.CurrentUser(c).ID, req.Username)
	if err != nil {
		return toHTTPError(h.logger, err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *PageHandler) DeletePage(c echo.Context) error {
	if err := h.pages.DeletePage(c.Request().Context(), c.Param("id"), middleware.CurrentUser(c).ID); err != nil {
		return toHTTPError(h.logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GetPublicPage returns the same snapshot live viewers receive.
func (h *PageHandler) GetPublicPage(c echo.Context) error {
	snap, err := h.snapshots.ByUsername(c.Request().Context(), c.Param("username"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Page not found")
		}
		return toHTTPError(h.logger, err)
	}
	return c.JSON(http.StatusOK, snap)
}
