package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/biolink/backend/internal/live"
	"github.com/anonto42/biolink/backend/internal/metrics"
	"github.com/anonto42/biolink/backend/internal/repositories"
	"github.com/anonto42/biolink/backend/internal/repositories/memory"
	"github.com/anonto42/biolink/backend/internal/router"
	"github.com/anonto42/biolink/backend/internal/services"
	"github.com/anonto42/biolink/backend/pkg/config"
	"github.com/anonto42/biolink/backend/pkg/firebase"
	"github.com/anonto42/biolink/backend/validators"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

var defaultReservedUsernames = []string{"admin", "support", "root", "dev"}

func main() {
	// Load configuration
	cfg := config.Load()
	logger := config.NewLogger(cfg.Env)
	ctx := context.Background()

	repos, storeCheck, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer closeStore()

	// Initialize Firebase; social sign-in stays off without credentials
	firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
	switch {
	case errors.Is(err, firebase.ErrNotConfigured):
		logger.Info("Firebase not configured, social sign-in disabled.")
	case err != nil:
		log.Fatalf("Failed to initialize Firebase: %v", err)
	default:
		logger.Info("Firebase app and auth client initialized successfully!")
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	opts := []services.Option{services.WithLogger(logger), services.WithMetrics(m)}

	snapshots := live.NewSnapshotBuilder(repos)
	registry := live.NewRegistry(snapshots, repos.Pages, logger, m)
	notifications := services.NewNotificationService(repos, opts...)
	pages := services.NewPageService(repos, registry, opts...)
	verification := services.NewVerificationService(repos, notifications, registry, opts...)
	accounts := services.NewAccountService(repos, pages, registry, opts...)

	if err := pages.SeedReserved(ctx, defaultReservedUsernames); err != nil {
		log.Fatalf("Failed to seed reserved usernames: %v", err)
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()
	config.SetupMiddleware(e, cfg, logger)

	router.SetupRoutes(e, router.Dependencies{
		Logger:         logger,
		Repos:          repos,
		Registry:       registry,
		Snapshots:      snapshots,
		Pages:          pages,
		Verification:   verification,
		Notifications:  notifications,
		Accounts:       accounts,
		Firebase:       firebaseApp,
		Gatherer:       prometheus.DefaultGatherer,
		StoreCheck:     storeCheck,
		JWTSecret:      cfg.JWTSecret,
		JWTTTL:         cfg.JWTTTL,
		CORSOrigins:    cfg.CORSOrigins,
		WSWriteTimeout: cfg.WSWriteTimeout,
	})

	// Start server
	go func() {
		logger.Info("Server starting", "port", cfg.Port, "env", cfg.Env, "store", cfg.StoreBackend)
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	if err := registry.Close(); err != nil {
		logger.Warn("Error closing live channels", "error", err)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}
	logger.Info("Server exited")
}

// openStore returns the configured repository set, its health check (nil for
// memory) and its cleanup.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repositories.Set, func(context.Context) error, func(), error) {
	if cfg.StoreBackend == config.BackendMemory {
		logger.Warn("Using in-memory store; data is lost on restart.")
		return memory.New().Set(), nil, func() {}, nil
	}

	db, err := config.InitMongo(ctx, cfg.MongoURI, cfg.MongoDB, logger)
	if err != nil {
		return repositories.Set{}, nil, nil, err
	}
	if err := repositories.EnsureIndexes(ctx, db.Database); err != nil {
		db.Close()
		return repositories.Set{}, nil, nil, err
	}
	return repositories.NewMongoSet(db.Database), db.Ping, db.Close, nil
}
