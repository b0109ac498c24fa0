package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anonto42/biolink/backend/internal/services"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestHealthCheck(t *testing.T) {
	cases := []struct {
		name   string
		check  func(context.Context) error
		status int
		body   string
	}{
		{"no store check", nil, http.StatusOK, `"healthy"`},
		{"store reachable", func(context.Context) error { return nil }, http.StatusOK, `"healthy"`},
		{"store down", func(context.Context) error { return errors.New("no primary") }, http.StatusServiceUnavailable, `"unhealthy"`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)

			require.NoError(t, NewHealthHandler(tc.check, quietLogger).HealthCheck(c))
			assert.Equal(t, tc.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.body)
		})
	}
}

func TestToHTTPError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", services.ErrValidation("bad"), http.StatusBadRequest},
		{"conflict", services.ErrConflict("taken"), http.StatusConflict},
		{"not found", services.ErrNotFound("gone"), http.StatusNotFound},
		{"forbidden", services.ErrForbidden("no"), http.StatusForbidden},
		{"policy", services.ErrPolicy("main page"), http.StatusUnprocessableEntity},
		{"wrapped domain error", fmt.Errorf("outer: %w", services.ErrConflict("taken")), http.StatusConflict},
		{"credentials", services.ErrInvalidCredentials, http.StatusUnauthorized},
		{"echo error", echo.NewHTTPError(http.StatusTeapot, "tea"), http.StatusTeapot},
		{"infrastructure", errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var he *echo.HTTPError
			require.ErrorAs(t, toHTTPError(quietLogger, tc.err), &he)
			assert.Equal(t, tc.status, he.Code)
		})
	}
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://app.example"})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://app.example")
	assert.True(t, check(req))
	req.Header.Set("Origin", "https://evil.example")
	assert.False(t, check(req))

	req.Header.Set("Origin", "https://anything.example")
	assert.True(t, originChecker([]string{"*"})(req))
}
