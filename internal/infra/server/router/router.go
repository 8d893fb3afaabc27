// Package router sets up the HTTP routing for the companion API.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/household-hub/companion/internal/integration/entrypoint/controller"
	"github.com/household-hub/companion/internal/integration/entrypoint/middleware"
)

// Router holds the Gin engine and controller dependencies.
type Router struct {
	engine                 *gin.Engine
	healthController       *controller.HealthController
	authController         *controller.AuthController
	shoppingListController *controller.ShoppingListController
	shoppingItemController *controller.ShoppingItemController
	loginRateLimiter       *middleware.RateLimiter
	authMiddleware         *middleware.AuthMiddleware
}

// NewRouter creates a new router instance with all dependencies.
func NewRouter(
	healthController *controller.HealthController,
	authController *controller.AuthController,
	shoppingListController *controller.ShoppingListController,
	shoppingItemController *controller.ShoppingItemController,
	loginRateLimiter *middleware.RateLimiter,
	authMiddleware *middleware.AuthMiddleware,
) *Router {
	return &Router{
		healthController:       healthController,
		authController:         authController,
		shoppingListController: shoppingListController,
		shoppingItemController: shoppingItemController,
		loginRateLimiter:       loginRateLimiter,
		authMiddleware:         authMiddleware,
	}
}

// Setup configures and returns the Gin engine with all routes.
func (r *Router) Setup(environment string) *gin.Engine {
	if environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else if environment == "test" {
		gin.SetMode(gin.TestMode)
	}

	r.engine = gin.Default()

	r.setupHealthRoutes()
	r.setupAPIRoutes()

	return r.engine
}

// setupHealthRoutes configures health check routes.
func (r *Router) setupHealthRoutes() {
	r.engine.GET("/health", r.healthController.Check)
}

// setupAPIRoutes configures the main API routes.
func (r *Router) setupAPIRoutes() {
	v1 := r.engine.Group("/api/v1")
	{
		if r.authController != nil && r.authMiddleware != nil {
			auth := v1.Group("/auth")
			{
				if r.loginRateLimiter != nil {
					auth.POST("/login", r.loginRateLimiter.Middleware(), r.authController.Login)
				} else {
					auth.POST("/login", r.authController.Login)
				}
				auth.POST("/logout", r.authMiddleware.Authenticate(), r.authController.Logout)
			}
		}

		if r.shoppingListController != nil && r.authMiddleware != nil {
			homes := v1.Group("/homes")
			homes.Use(r.authMiddleware.Authenticate())
			{
				homes.GET("/:homeId/lists", r.shoppingListController.List)
				homes.POST("/:homeId/lists", r.shoppingListController.Create)
			}

			lists := v1.Group("/lists")
			lists.Use(r.authMiddleware.Authenticate())
			{
				lists.GET("", r.shoppingListController.View)
				lists.PATCH("/:id", r.shoppingListController.Update)
				lists.DELETE("/:id", r.shoppingListController.Delete)
				lists.POST("/:id/complete", r.shoppingListController.Complete)

				if r.shoppingItemController != nil {
					lists.GET("/:id/items", r.shoppingItemController.List)
					lists.POST("/:id/items", r.shoppingItemController.Create)
					lists.PATCH("/:id/items/:itemId", r.shoppingItemController.Update)
					lists.DELETE("/:id/items/:itemId", r.shoppingItemController.Delete)
				}
			}
		}
	}
}

// Engine returns the underlying Gin engine.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}
