package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/coachdesk/coachdesk/internal/config"
	httpserver "github.com/coachdesk/coachdesk/internal/http"
	"github.com/coachdesk/coachdesk/internal/metrics"
	"github.com/coachdesk/coachdesk/pkg/auth"
	"github.com/coachdesk/coachdesk/pkg/registry"
	"github.com/coachdesk/coachdesk/pkg/teamdb"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	// Open the central registry and apply migrations
	registryDB, err := registry.Open(cfg.RegistryDBPath)
	if err != nil {
		logger.Error("failed to open registry database", "error", err, "path", cfg.RegistryDBPath)
		os.Exit(1)
	}
	defer registryDB.Close()

	if err := registry.RunMigrations(context.Background(), registryDB); err != nil {
		logger.Error("failed to migrate registry database", "error", err)
		os.Exit(1)
	}
	logger.Info("registry database ready", "path", cfg.RegistryDBPath)

	// Team database manager owns every per-team handle for the process
	manager, err := teamdb.NewManager(teamdb.Config{
		BaseDir: cfg.TeamDBDir,
		Stats:   metrics.NewTeamDBMetrics(),
	})
	if err != nil {
		logger.Error("failed to initialize team database manager", "error", err)
		os.Exit(1)
	}

	tokens := auth.NewTokenService(auth.TokenConfig{
		Secret: []byte(cfg.JWTSecret),
		Issuer: cfg.JWTIssuer,
		TTL:    cfg.AccessTokenTTL,
	})

	// Create router
	router := httpserver.NewRouter(httpserver.RouterConfig{
		Logger:     logger,
		Config:     cfg,
		Tokens:     tokens,
		RegistryDB: registryDB,
		Manager:    manager,
	})

	// Create HTTP server
	addr := cfg.ListenAddr()
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting server", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	// Close every cached team database handle after in-flight requests drain
	if err := manager.Close(); err != nil {
		logger.Error("team database shutdown error", "error", err)
	}

	logger.Info("server stopped")
}

func logLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
