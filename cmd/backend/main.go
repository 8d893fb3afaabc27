// Package main is the entry point for the household reference backend.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/household-hub/companion/config"
	"github.com/household-hub/companion/internal/infra/db"
	"github.com/household-hub/companion/internal/integration/adapters"
	"github.com/household-hub/companion/internal/integration/persistence"
	"github.com/household-hub/companion/internal/refbackend"
)

func main() {
	// Load .env file if it exists (development only)
	_ = godotenv.Load()

	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg := config.Load()
	port := cfg.Server.BackendPort

	slog.Info("Starting household reference backend",
		"environment", cfg.Server.Environment,
		"driver", cfg.Database.Driver,
		"port", port,
	)

	// Initialize database connection
	database, err := db.NewConnection(&cfg.Database)
	if err != nil {
		slog.Error("Database connection failed", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := database.Close(); err != nil {
			slog.Error("Failed to close database connection", "error", err)
		}
	}()

	// Run database migrations
	if err := database.AutoMigrate(persistence.Models()...); err != nil {
		slog.Error("Failed to run database migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database migrations completed successfully")

	// Create repositories
	userRepo := persistence.NewUserRepository(database.DB())
	listRepo := persistence.NewShoppingListRepository(database.DB())
	itemRepo := persistence.NewShoppingItemRepository(database.DB())

	if err := refbackend.Seed(context.Background(), userRepo, cfg.Seed); err != nil {
		slog.Error("Failed to seed users", "error", err)
		os.Exit(1)
	}

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	tokenService := adapters.NewTokenService(cfg.JWT.Secret, refbackend.Issuer)
	server := refbackend.NewServer(userRepo, listRepo, itemRepo, tokenService, cfg.JWT.AccessTokenExpiry)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		slog.Info("Server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited properly")
}
