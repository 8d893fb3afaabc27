package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/household-hub/companion/internal/application/adapter"
)

// StoreCloser disposes the per-session list store.
type StoreCloser interface {
	Close(sessionID string)
}

// LogoutInput represents the input for logout.
type LogoutInput struct {
	SessionID string
}

// LogoutUseCase clears all session state.
type LogoutUseCase struct {
	sessions adapter.SessionStore
	stores   StoreCloser
}

// NewLogoutUseCase creates a new LogoutUseCase instance.
func NewLogoutUseCase(sessions adapter.SessionStore, stores StoreCloser) *LogoutUseCase {
	return &LogoutUseCase{
		sessions: sessions,
		stores:   stores,
	}
}

// Execute deletes the session and disposes its list store, which clears the item cache.
func (uc *LogoutUseCase) Execute(ctx context.Context, input LogoutInput) error {
	uc.stores.Close(input.SessionID)

	if err := uc.sessions.Delete(ctx, input.SessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	slog.Info("User logged out", "session_id", input.SessionID)
	return nil
}
