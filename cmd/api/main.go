// Package main is the entry point for the household companion API server.
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

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/household-hub/companion/config"
	"github.com/household-hub/companion/internal/infra/dependency"
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

	slog.Info("Starting household companion API",
		"environment", cfg.Server.Environment,
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"backend", cfg.Remote.BaseURL,
	)

	// Initialize Redis connection for sessions and rate limiting
	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		slog.Error("Invalid Redis URL", "error", err)
		os.Exit(1)
	}
	if cfg.Redis.Password != "" {
		redisOpts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		redisOpts.DB = cfg.Redis.DB
	}
	redisClient := redis.NewClient(redisOpts)
	defer func() {
		if err := redisClient.Close(); err != nil {
			slog.Error("Failed to close Redis connection", "error", err)
		}
	}()

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		slog.Warn("Redis is not reachable, sessions will fail until it is", "error", err)
	}
	pingCancel()

	// Initialize notification delivery
	notifier, queue, err := dependency.NewNotifier(cfg.Notify)
	if err != nil {
		slog.Error("Failed to initialize notifications", "error", err)
		os.Exit(1)
	}

	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	if queue != nil && cfg.Notify.WorkerEnabled {
		go queue.Start(workerCtx)
		slog.Info("Notification worker started",
			"poll_interval", cfg.Notify.PollInterval,
			"batch_size", cfg.Notify.BatchSize,
		)
	}

	// Wire dependencies
	injector := dependency.NewInjector(cfg, redisClient, &http.Client{}, notifier)
	engine := injector.Router.Setup(cfg.Server.Environment)

	// Release stores of sessions that expired without a logout
	go injector.Registry.RunSweeper(workerCtx, injector.Sessions, cfg.Redis.SessionSweepInterval)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      engine,
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
	}

	// Dispose every session store and flush pending notifications
	injector.Registry.CloseAll()
	if queue != nil {
		queue.ProcessNow(ctx)
	}

	slog.Info("Server exited properly")
}
