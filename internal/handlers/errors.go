package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/anonto42/biolink/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// toHTTPError maps domain failures to their status and hides everything else
// behind a logged 500.
func toHTTPError(logger *slog.Logger, err error) error {
	var se services.ServiceError
	if errors.As(err, &se) {
		return echo.NewHTTPError(se.Status, echo.Map{"code": se.Code, "message": se.Message})
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}
	if errors.Is(err, services.ErrInvalidCredentials) {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	logger.Error("request failed", "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
}

// bindAndValidate decodes the request body into req and runs the struct validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	return nil
}
