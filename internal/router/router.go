package router

import (
	"context"
	"log/slog"
	"time"

	"github.com/anonto42/biolink/backend/internal/handlers"
	"github.com/anonto42/biolink/backend/internal/live"
	"github.com/anonto42/biolink/backend/internal/middleware"
	"github.com/anonto42/biolink/backend/internal/models"
	"github.com/anonto42/biolink/backend/internal/repositories"
	"github.com/anonto42/biolink/backend/internal/services"
	"github.com/anonto42/biolink/backend/pkg/firebase"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies is everything the HTTP layer needs, built once in main.
type Dependencies struct {
	Logger         *slog.Logger
	Repos          repositories.Set
	Registry       *live.Registry
	Snapshots      *live.SnapshotBuilder
	Pages          *services.PageService
	Verification   *services.VerificationService
	Notifications  *services.NotificationService
	Accounts       *services.AccountService
	Firebase       *firebase.App
	Gatherer       prometheus.Gatherer
	StoreCheck     func(context.Context) error
	JWTSecret      string
	JWTTTL         time.Duration
	CORSOrigins    []string
	WSWriteTimeout time.Duration
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, deps Dependencies) {
	logger := deps.Logger

	// Health check - always accessible
	e.GET("/health", handlers.NewHealthHandler(deps.StoreCheck, logger).HealthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))

	// --- Unprotected routes for authentication ---
	authHandler := handlers.NewAuthHandler(deps.Accounts, deps.Pages, deps.Firebase, deps.JWTSecret, deps.JWTTTL, logger)
	authHandler.RegisterAuthRoutes(e.Group("/api/auth"))
	logger.Debug("Auth routes configured.")

	// --- Public page views and live subscriptions ---
	public := e.Group("/api/public")
	pageHandler := handlers.NewPageHandler(deps.Pages, deps.Snapshots, logger)
	pageHandler.RegisterPublicRoutes(public)
	liveHandler := handlers.NewLiveHandler(deps.Registry, deps.CORSOrigins, deps.WSWriteTimeout, logger)
	liveHandler.RegisterLiveRoutes(public)
	logger.Debug("Public routes configured.")

	// --- Protected routes (require JWT authentication) ---
	auth := middleware.JWTAuthMiddleware(deps.JWTSecret, deps.Repos.Users)

	admin := e.Group("/api/admin", auth, middleware.RequireRole(models.RoleAdmin, models.RoleOwner))
	handlers.NewAdminHandler(deps.Verification, deps.Notifications, deps.Pages, deps.Accounts, logger).RegisterAdminRoutes(admin)
	logger.Debug("Admin routes configured.")

	api := e.Group("/api", auth)
	handlers.NewUserHandler(deps.Accounts, logger).RegisterProfileRoutes(api)
	pageHandler.RegisterPageRoutes(api)
	handlers.NewVerificationHandler(deps.Verification, logger).RegisterVerificationRoutes(api)
	handlers.NewNotificationHandler(deps.Notifications, logger).RegisterNotificationRoutes(api)

	logger.Info("All routes configured.")
}
