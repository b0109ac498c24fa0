package handlers

import (
	"log/slog"
	"net/http"

	"github.com/anonto42/biolink/backend/internal/middleware"
	"github.com/anonto42/biolink/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notifications *services.NotificationService
	logger        *slog.Logger
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifications *services.NotificationService, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, logger: logger}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.GET("/notifications/unread-count", h.GetUnreadCount)
	g.PUT("/notifications/:id/read", h.MarkAsRead)
	g.PUT("/notifications/read-all", h.MarkAllAsRead)
}

// GetNotifications returns the latest notifications, newest first
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	notifications, err := h.notifications.List(c.Request().Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		return toHTTPError(h.logger, err)
	}
	return c.JSON(http.StatusOK, notifications)
}

func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	count, err := h.notifications.UnreadCount(c.Request().Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		return toHTTPError(h.logger, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"unread_count": count})
}

func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	if err := h.notifications.MarkRead(c.Request().Context(), c.Param("id"), middleware.CurrentUser(c).ID); err != nil {
		return toHTTPError(h.logger, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Notification marked as read"})
}

func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	if err := h.notifications.MarkAllRead(c.Request().Context(), middleware.CurrentUser(c).ID); err != nil {
		return toHTTPError(h.logger, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "All notifications marked as read"})
}
