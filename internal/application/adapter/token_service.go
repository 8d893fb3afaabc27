// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"time"
)

// TokenClaims represents the claims contained in a companion access token.
type TokenClaims struct {
	SessionID string
	UserID    int64
	ExpiresAt time.Time
}

// TokenService defines the interface for companion access token operations.
type TokenService interface {
	// GenerateAccessToken issues a token bound to the given session.
	GenerateAccessToken(sessionID string, userID int64, expiresAt time.Time) (string, error)

	// ValidateAccessToken validates a token and returns its claims.
	ValidateAccessToken(token string) (*TokenClaims, error)
}
