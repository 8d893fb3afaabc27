package adapters

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	domainerror "github.com/household-hub/companion/internal/domain/error"
)

func TestTokenService_RoundTrip(t *testing.T) {
	service := NewTokenService("secret", "companion")
	expiresAt := time.Now().Add(time.Hour).Truncate(time.Second)

	token, err := service.GenerateAccessToken("session-1", 42, expiresAt)
	require.NoError(t, err)

	claims, err := service.ValidateAccessToken(token)
	require.NoError(t, err)
	require.Equal(t, "session-1", claims.SessionID)
	require.Equal(t, int64(42), claims.UserID)
	require.True(t, claims.ExpiresAt.Equal(expiresAt))
}

func TestTokenService_Rejects(t *testing.T) {
	service := NewTokenService("secret", "companion")

	t.Run("expired", func(t *testing.T) {
		token, err := service.GenerateAccessToken("s", 1, time.Now().Add(-time.Minute))
		require.NoError(t, err)

		_, err = service.ValidateAccessToken(token)
		require.ErrorIs(t, err, domainerror.ErrExpiredToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, err := NewTokenService("other", "companion").GenerateAccessToken("s", 1, time.Now().Add(time.Hour))
		require.NoError(t, err)

		_, err = service.ValidateAccessToken(token)
		require.ErrorIs(t, err, domainerror.ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		token, err := NewTokenService("secret", "backend").GenerateAccessToken("s", 1, time.Now().Add(time.Hour))
		require.NoError(t, err)

		_, err = service.ValidateAccessToken(token)
		require.ErrorIs(t, err, domainerror.ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := service.ValidateAccessToken("not-a-token")
		require.ErrorIs(t, err, domainerror.ErrInvalidToken)
	})

	t.Run("none algorithm", func(t *testing.T) {
		claims := CustomClaims{
			TokenType: tokenTypeAccess,
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "companion",
				Subject:   "1",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = service.ValidateAccessToken(token)
		require.ErrorIs(t, err, domainerror.ErrInvalidToken)
	})
}
