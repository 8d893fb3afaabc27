// Package dependency provides dependency injection for the application.
package dependency

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/household-hub/companion/config"
	"github.com/household-hub/companion/internal/application/adapter"
	"github.com/household-hub/companion/internal/application/shopping"
	"github.com/household-hub/companion/internal/application/usecase/auth"
	"github.com/household-hub/companion/internal/domain/entity"
	"github.com/household-hub/companion/internal/infra/server/router"
	"github.com/household-hub/companion/internal/integration/adapters"
	"github.com/household-hub/companion/internal/integration/entrypoint/controller"
	"github.com/household-hub/companion/internal/integration/entrypoint/middleware"
	"github.com/household-hub/companion/internal/integration/notify"
	"github.com/household-hub/companion/internal/integration/notify/templates"
	"github.com/household-hub/companion/internal/integration/remote"
	"github.com/household-hub/companion/internal/integration/session"
)

// Injector holds all application dependencies.
type Injector struct {
	Config   *config.Config
	Redis    *redis.Client
	Sessions *session.RedisStore
	Registry *shopping.Registry
	Router   *router.Router
}

// NewInjector creates a new dependency injector with all dependencies wired.
// A nil httpClient uses a default client; a nil notifier disables notifications.
func NewInjector(cfg *config.Config, redisClient *redis.Client, httpClient *http.Client, notifier adapter.Notifier) *Injector {
	// Create backend client and session store
	backend := remote.NewClient(cfg.Remote.BaseURL, httpClient, cfg.Remote.CallTimeout)
	sessions := session.NewRedisStore(redisClient)

	// Create adapters/services
	tokenService := adapters.NewTokenService(cfg.JWT.Secret, cfg.JWT.Issuer)

	// Create one list store per session
	storeConfig := shopping.DefaultStoreConfig()
	storeConfig.CallTimeout = cfg.Remote.CallTimeout
	storeConfig.FetchConcurrency = cfg.Remote.FetchConcurrency
	storeConfig.NotifyTimeout = cfg.Notify.Timeout

	registry := shopping.NewRegistry(func(s *entity.Session) *shopping.Store {
		return shopping.NewStore(
			backend.WithToken(s.RemoteToken),
			sessions.Provider(s.ID),
			notifier,
			storeConfig,
		)
	})

	// Create auth use cases
	loginUseCase := auth.NewLoginUseCase(backend, sessions, tokenService, cfg.JWT.AccessTokenExpiry)
	logoutUseCase := auth.NewLogoutUseCase(sessions, registry)

	// Create controllers
	healthController := controller.NewHealthController(map[string]func() bool{
		"redis": func() bool {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return redisClient.Ping(ctx).Err() == nil
		},
		"backend": backend.HealthCheck,
	})
	authController := controller.NewAuthController(loginUseCase, logoutUseCase)
	shoppingListController := controller.NewShoppingListController(registry)
	shoppingItemController := controller.NewShoppingItemController(registry)

	// Create middleware
	// Use higher rate limits for E2E/test environments to prevent flaky tests
	var loginRateLimiter *middleware.RateLimiter
	if cfg.Server.Environment == "e2e" || cfg.Server.Environment == "test" {
		loginRateLimiter = middleware.NewRateLimiterWithConfig(redisClient, "login", 1000, 1*time.Minute)
	} else {
		loginRateLimiter = middleware.NewRateLimiter(redisClient, "login")
	}
	authMiddleware := middleware.NewAuthMiddleware(tokenService, sessions, registry)

	// Create router
	r := router.NewRouter(
		healthController,
		authController,
		shoppingListController,
		shoppingItemController,
		loginRateLimiter,
		authMiddleware,
	)

	return &Injector{
		Config:   cfg,
		Redis:    redisClient,
		Sessions: sessions,
		Registry: registry,
		Router:   r,
	}
}

// NewNotifier builds the notification chain. Without a Resend API key notifications are
// only logged and the returned queue is nil.
func NewNotifier(cfg config.NotifyConfig) (adapter.Notifier, *notify.Queue, error) {
	if cfg.ResendAPIKey == "" {
		slog.Warn("RESEND_API_KEY not set, notifications will only be logged")
		return notify.LogNotifier{}, nil, nil
	}

	renderer, err := templates.NewRenderer()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load notification templates: %w", err)
	}

	sender := notify.NewResendSender(cfg.ResendAPIKey, cfg.FromName, cfg.FromEmail)
	queue := notify.NewQueue(
		notify.NewEmailNotifier(sender, renderer, cfg.Recipient),
		notify.QueueConfig{
			PollInterval: cfg.PollInterval,
			BatchSize:    cfg.BatchSize,
			MaxAttempts:  cfg.MaxAttempts,
			Capacity:     cfg.QueueCapacity,
		},
	)
	return queue, queue, nil
}
