package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/anonto42/biolink/backend/internal/live"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// LiveHandler upgrades public page viewers to websockets and keeps them
// subscribed until they disconnect.
type LiveHandler struct {
	registry     *live.Registry
	upgrader     websocket.Upgrader
	writeTimeout time.Duration
	logger       *slog.Logger
}

// NewLiveHandler accepts upgrades from allowedOrigins; "*" allows any origin.
func NewLiveHandler(registry *live.Registry, allowedOrigins []string, writeTimeout time.Duration, logger *slog.Logger) *LiveHandler {
	return &LiveHandler{
		registry: registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		writeTimeout: writeTimeout,
		logger:       logger,
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		return false
	}
}

func (h *LiveHandler) RegisterLiveRoutes(g *echo.Group) {
	g.GET("/pages/:username/live", h.Watch)
}

// Watch subscribes the connection to a username and blocks until the viewer leaves.
func (h *LiveHandler) Watch(c echo.Context) error {
	username := c.Param("username")
	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "username", username, "error", err)
		return nil
	}

	conn := live.NewConn(ws, h.writeTimeout)
	if err := h.registry.Subscribe(username, conn); err != nil {
		_ = conn.Close()
		return nil
	}
	h.logger.Debug("live viewer joined", "username", username)

	// Only the joining viewer gets the initial state.
	if err := h.registry.SendSnapshot(c.Request().Context(), username, conn); err != nil {
		h.logger.Warn("initial live push failed", "username", username, "error", err)
	}

	conn.ReadUntilClosed()
	h.registry.Unsubscribe(username, conn)
	_ = conn.Close()
	h.logger.Debug("live viewer left", "username", username)
	return nil
}
