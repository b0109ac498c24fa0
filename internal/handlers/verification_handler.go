package handlers

import (
	"log/slog"
	"net/http"

	"github.com/anonto42/biolink/backend/internal/middleware"
	"github.com/anonto42/biolink/backend/internal/models"
	"github.com/anonto42/biolink/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// VerificationHandler exposes the user side of the verification workflow.
type VerificationHandler struct {
	verification *services.VerificationService
	logger       *slog.Logger
}

func NewVerificationHandler(verification *services.VerificationService, logger *slog.Logger) *VerificationHandler {
	return &VerificationHandler{verification: verification, logger: logger}
}

func (h *VerificationHandler) RegisterVerificationRoutes(g *echo.Group) {
	g.POST("/verification", h.Submit)
	g.GET("/verification/mine", h.ListMine)
}

func (h *VerificationHandler) Submit(c echo.Context) error {
	var req models.SubmitVerificationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ticket, err := h.verification.Submit(c.Request().Context(), middleware.CurrentActor(c), req)
	if err != nil {
		return toHTTPError(h.logger, err)
	}
	return c.JSON(http.StatusCreated, ticket)
}

func (h *VerificationHandler) ListMine(c echo.Context) error {
	requests, err := h.verification.ListMine(c.Request().Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		return toHTTPError(h.logger, err)
	}
	return c.JSON(http.StatusOK, requests)
}
