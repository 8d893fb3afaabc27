package refbackend

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainerror "github.com/household-hub/companion/internal/domain/error"
	"github.com/household-hub/companion/internal/integration/remote"
)

// login handles POST /auth/login requests.
func (s *Server) login(c *gin.Context) {
	var req remote.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		fail(c, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := s.users.FindByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, domainerror.ErrNotFound) {
			fail(c, http.StatusUnauthorized, "invalid credentials")
			return
		}
		internalError(c, "login", err)
		return
	}

	if !CheckPassword(user.PasswordHash, req.Password) {
		slog.Info("Rejected backend login", "user_id", user.ID)
		fail(c, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := s.tokens.GenerateAccessToken(uuid.NewString(), user.ID, s.now().Add(s.tokenExpiry))
	if err != nil {
		internalError(c, "login", err)
		return
	}

	respond(c, http.StatusOK, "login successful", remote.LoginPayload{
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Role:   string(user.Role),
		Token:  token,
	})
}

// authenticate resolves the bearer token to a stored user.
func (s *Server) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			fail(c, http.StatusUnauthorized, "authentication required")
			return
		}

		claims, err := s.tokens.ValidateAccessToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			if errors.Is(err, domainerror.ErrExpiredToken) {
				fail(c, http.StatusUnauthorized, "token has expired")
				return
			}
			fail(c, http.StatusUnauthorized, "invalid token")
			return
		}

		user, err := s.users.FindByID(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, domainerror.ErrNotFound) {
				fail(c, http.StatusUnauthorized, "invalid token")
				return
			}
			internalError(c, "authenticate", err)
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}
