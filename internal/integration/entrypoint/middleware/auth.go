// Package middleware provides HTTP middleware for the API endpoints.
package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/household-hub/companion/internal/application/adapter"
	"github.com/household-hub/companion/internal/domain/entity"
	domainerror "github.com/household-hub/companion/internal/domain/error"
	"github.com/household-hub/companion/internal/integration/entrypoint/dto"
)

// ContextKey is a type for context keys.
type ContextKey string

const (
	// SessionKey is the context key for the authenticated session.
	SessionKey ContextKey = "session"
)

// SessionReleaser frees the per-session resources of a session that has ended.
type SessionReleaser interface {
	Close(sessionID string)
}

// AuthMiddleware provides JWT authentication backed by the session store.
type AuthMiddleware struct {
	tokenService adapter.TokenService
	sessions     adapter.SessionStore
	releaser     SessionReleaser
	now          func() time.Time
}

// NewAuthMiddleware creates a new auth middleware instance. The releaser may be nil.
func NewAuthMiddleware(tokenService adapter.TokenService, sessions adapter.SessionStore, releaser SessionReleaser) *AuthMiddleware {
	return &AuthMiddleware{
		tokenService: tokenService,
		sessions:     sessions,
		releaser:     releaser,
		now:          time.Now,
	}
}

// Authenticate returns a Gin middleware handler that enforces an active session.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "Authorization header is required", domainerror.ErrCodeMissingToken)
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			abortUnauthorized(c, "Invalid authorization header format", domainerror.ErrCodeInvalidToken)
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == "" {
			abortUnauthorized(c, "Token is required", domainerror.ErrCodeMissingToken)
			return
		}

		claims, err := m.tokenService.ValidateAccessToken(token)
		if err != nil {
			code := domainerror.ErrCodeInvalidToken
			if errors.Is(err, domainerror.ErrExpiredToken) {
				code = domainerror.ErrCodeExpiredToken
			}
			abortUnauthorized(c, "Invalid or expired token", code)
			return
		}

		session, err := m.sessions.Get(c.Request.Context(), claims.SessionID)
		if err != nil {
			if errors.Is(err, domainerror.ErrSessionNotFound) {
				m.release(claims.SessionID)
				abortUnauthorized(c, "Session has ended", domainerror.ErrCodeSessionNotFound)
				return
			}
			c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{
				Error: "Session store unavailable",
			})
			c.Abort()
			return
		}

		if !session.IsActive(m.now()) {
			m.release(claims.SessionID)
			abortUnauthorized(c, "Session has ended", domainerror.ErrCodeSessionNotFound)
			return
		}

		c.Set(string(SessionKey), session)
		c.Next()
	}
}

func (m *AuthMiddleware) release(sessionID string) {
	if m.releaser != nil {
		m.releaser.Close(sessionID)
	}
}

func abortUnauthorized(c *gin.Context, message string, code domainerror.AuthErrorCode) {
	c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
		Error: message,
		Code:  string(code),
	})
	c.Abort()
}

// GetSessionFromContext extracts the authenticated session from the Gin context.
func GetSessionFromContext(c *gin.Context) (*entity.Session, bool) {
	value, exists := c.Get(string(SessionKey))
	if !exists {
		return nil, false
	}
	session, ok := value.(*entity.Session)
	return session, ok && session != nil
}
