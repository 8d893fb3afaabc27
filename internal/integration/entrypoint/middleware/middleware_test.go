package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/household-hub/companion/internal/application/adapter"
	"github.com/household-hub/companion/internal/application/adapter/mocks"
	"github.com/household-hub/companion/internal/domain/entity"
	domainerror "github.com/household-hub/companion/internal/domain/error"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type recordingReleaser struct {
	closed []string
}

func (r *recordingReleaser) Close(sessionID string) {
	r.closed = append(r.closed, sessionID)
}

func newAuthEngine(tokens *mocks.TokenService, sessions *mocks.SessionStore, releaser SessionReleaser) *gin.Engine {
	engine := gin.New()
	engine.Use(NewAuthMiddleware(tokens, sessions, releaser).Authenticate())
	engine.GET("/me", func(c *gin.Context) {
		session, ok := GetSessionFromContext(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, session.UserName)
	})
	return engine
}

func TestAuthenticate(t *testing.T) {
	tests := []struct {
		name         string
		header       string
		setup        func(*mocks.TokenService, *mocks.SessionStore)
		wantStatus   int
		wantBody     string
		wantReleased []string
	}{
		{
			name:       "missing header",
			wantStatus: http.StatusUnauthorized,
			wantBody:   string(domainerror.ErrCodeMissingToken),
		},
		{
			name:       "wrong scheme",
			header:     "Basic abc",
			wantStatus: http.StatusUnauthorized,
			wantBody:   string(domainerror.ErrCodeInvalidToken),
		},
		{
			name:   "expired token",
			header: "Bearer old",
			setup: func(tokens *mocks.TokenService, _ *mocks.SessionStore) {
				tokens.On("ValidateAccessToken", "old").Return(nil, domainerror.ErrExpiredToken)
			},
			wantStatus: http.StatusUnauthorized,
			wantBody:   string(domainerror.ErrCodeExpiredToken),
		},
		{
			name:   "session gone",
			header: "Bearer good",
			setup: func(tokens *mocks.TokenService, sessions *mocks.SessionStore) {
				tokens.On("ValidateAccessToken", "good").Return(&adapter.TokenClaims{SessionID: "s1", UserID: 1}, nil)
				sessions.On("Get", mock.Anything, "s1").Return(nil, domainerror.ErrSessionNotFound)
			},
			wantStatus:   http.StatusUnauthorized,
			wantBody:     string(domainerror.ErrCodeSessionNotFound),
			wantReleased: []string{"s1"},
		},
		{
			name:   "logged out session",
			header: "Bearer good",
			setup: func(tokens *mocks.TokenService, sessions *mocks.SessionStore) {
				tokens.On("ValidateAccessToken", "good").Return(&adapter.TokenClaims{SessionID: "s1", UserID: 1}, nil)
				sessions.On("Get", mock.Anything, "s1").Return(&entity.Session{ID: "s1", LoggedIn: false}, nil)
			},
			wantStatus:   http.StatusUnauthorized,
			wantBody:     string(domainerror.ErrCodeSessionNotFound),
			wantReleased: []string{"s1"},
		},
		{
			name:   "expired session",
			header: "Bearer good",
			setup: func(tokens *mocks.TokenService, sessions *mocks.SessionStore) {
				tokens.On("ValidateAccessToken", "good").Return(&adapter.TokenClaims{SessionID: "s2", UserID: 1}, nil)
				sessions.On("Get", mock.Anything, "s2").Return(&entity.Session{ID: "s2", LoggedIn: true, ExpiresAt: time.Now().Add(-time.Minute)}, nil)
			},
			wantStatus:   http.StatusUnauthorized,
			wantBody:     string(domainerror.ErrCodeSessionNotFound),
			wantReleased: []string{"s2"},
		},
		{
			name:   "active session",
			header: "Bearer good",
			setup: func(tokens *mocks.TokenService, sessions *mocks.SessionStore) {
				tokens.On("ValidateAccessToken", "good").Return(&adapter.TokenClaims{SessionID: "s1", UserID: 1}, nil)
				sessions.On("Get", mock.Anything, "s1").Return(&entity.Session{ID: "s1", UserName: "Ana", LoggedIn: true}, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   "Ana",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := &mocks.TokenService{}
			sessions := &mocks.SessionStore{}
			if tt.setup != nil {
				tt.setup(tokens, sessions)
			}

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			releaser := &recordingReleaser{}
			newAuthEngine(tokens, sessions, releaser).ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
			require.Contains(t, rec.Body.String(), tt.wantBody)
			require.Equal(t, tt.wantReleased, releaser.closed)
		})
	}
}

func TestRateLimiter(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()

	limiter := NewRateLimiterWithConfig(client, "login", 2, time.Minute)
	engine := gin.New()
	engine.POST("/login", limiter.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	hit := func() int {
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
		return rec.Code
	}

	require.Equal(t, http.StatusOK, hit())
	require.Equal(t, http.StatusOK, hit())
	require.Equal(t, http.StatusTooManyRequests, hit())

	server.FastForward(2 * time.Minute)
	require.Equal(t, http.StatusOK, hit())
}

func TestRateLimiter_FailsOpen(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr(), MaxRetries: -1})
	defer client.Close()
	server.Close()

	limiter := NewRateLimiterWithConfig(client, "login", 1, time.Minute)
	allowed, err := limiter.allow(context.Background(), "1.2.3.4")
	require.Error(t, err)
	require.False(t, allowed)

	engine := gin.New()
	engine.POST("/login", limiter.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiter_Disabled(t *testing.T) {
	limiter := NewRateLimiterWithConfig(nil, "login", 0, time.Minute)
	limiter.Disable()

	engine := gin.New()
	engine.POST("/login", limiter.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}
