// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"

	"github.com/household-hub/companion/internal/domain/entity"
)

// SessionStore defines persistence for user sessions.
type SessionStore interface {
	// Save stores the session until its expiry.
	Save(ctx context.Context, session *entity.Session) error

	// Get retrieves a session by ID. Returns domainerror.ErrSessionNotFound when absent.
	Get(ctx context.Context, id string) (*entity.Session, error)

	// Delete removes the session and everything stored for it.
	Delete(ctx context.Context, id string) error
}

// SessionProvider yields the session a list store acts on behalf of.
// A nil session with a nil error means nobody is logged in.
type SessionProvider interface {
	Current(ctx context.Context) (*entity.Session, error)
}

// SessionProviderFunc adapts a function to SessionProvider.
type SessionProviderFunc func(ctx context.Context) (*entity.Session, error)

// Current calls f.
func (f SessionProviderFunc) Current(ctx context.Context) (*entity.Session, error) {
	return f(ctx)
}
