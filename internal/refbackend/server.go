package refbackend

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/household-hub/companion/internal/application/adapter"
	"github.com/household-hub/companion/internal/domain/entity"
)

// Issuer is the token issuer of backend bearer tokens.
const Issuer = "household-backend"

const userKey = "user"

// UserRepository stores household users.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByID(ctx context.Context, id int64) (*entity.User, error)
}

// ListRepository stores shopping lists.
type ListRepository interface {
	FindByHome(ctx context.Context, homeID int64) ([]entity.ShoppingList, error)
	FindByHomeWithTotals(ctx context.Context, homeID int64) ([]entity.ShoppingList, error)
	FindByID(ctx context.Context, id int64) (*entity.ShoppingList, error)
	Create(ctx context.Context, list *entity.ShoppingList) error
	Update(ctx context.Context, list *entity.ShoppingList) error
	Delete(ctx context.Context, id int64) error
}

// ItemRepository stores shopping items.
type ItemRepository interface {
	FindByList(ctx context.Context, listID int64) ([]entity.ShoppingItem, error)
	FindByLists(ctx context.Context, listIDs []int64) ([]entity.ShoppingItem, error)
	FindByID(ctx context.Context, id int64) (*entity.ShoppingItem, error)
	Create(ctx context.Context, item *entity.ShoppingItem) error
	Update(ctx context.Context, item *entity.ShoppingItem) error
	Delete(ctx context.Context, id int64) error
}

// Server serves the household backend endpoints.
type Server struct {
	users       UserRepository
	lists       ListRepository
	items       ItemRepository
	tokens      adapter.TokenService
	tokenExpiry time.Duration
	now         func() time.Time
}

// NewServer creates a new backend server instance.
func NewServer(users UserRepository, lists ListRepository, items ItemRepository, tokens adapter.TokenService, tokenExpiry time.Duration) *Server {
	return &Server{
		users:       users,
		lists:       lists,
		items:       items,
		tokens:      tokens,
		tokenExpiry: tokenExpiry,
		now:         time.Now,
	}
}

// Router builds the gin engine with every backend route.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger())

	r.GET("/health", func(c *gin.Context) {
		respond(c, http.StatusOK, "ok", nil)
	})

	r.POST("/auth/login", s.login)

	authed := r.Group("")
	authed.Use(s.authenticate())
	{
		authed.GET("/homes/:homeId/shopping-lists", s.listsByHome)
		authed.POST("/shopping-lists", s.createList)
		authed.PUT("/shopping-lists/:id", s.updateList)
		authed.DELETE("/shopping-lists/:id", s.deleteList)
		authed.GET("/shopping-lists/:id/items", s.itemsByList)

		authed.POST("/items", s.createItem)
		authed.PUT("/items/:id", s.updateItem)
		authed.DELETE("/items/:id", s.deleteItem)
	}

	return r
}

// requestLogger logs each request with the caller's correlation id.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Debug("Backend request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"request_id", c.GetHeader("X-Request-ID"),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

func currentUser(c *gin.Context) *entity.User {
	value, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	user, _ := value.(*entity.User)
	return user
}

func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		fail(c, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

func internalError(c *gin.Context, op string, err error) {
	slog.Error("Backend operation failed", "operation", op, "error", err)
	fail(c, http.StatusInternalServerError, "internal server error")
}
