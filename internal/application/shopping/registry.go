package shopping

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/household-hub/companion/internal/application/adapter"
	"github.com/household-hub/companion/internal/domain/entity"
	domainerror "github.com/household-hub/companion/internal/domain/error"
)

// StoreFactory builds the store for a session.
type StoreFactory func(session *entity.Session) *Store

// Registry keeps one Store per session, created on first use.
type Registry struct {
	factory StoreFactory

	mu     sync.Mutex
	stores map[string]*Store
}

// NewRegistry creates a new Registry.
func NewRegistry(factory StoreFactory) *Registry {
	return &Registry{
		factory: factory,
		stores:  make(map[string]*Store),
	}
}

// For returns the session's store, creating it if needed.
func (r *Registry) For(session *entity.Session) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()

	if store, ok := r.stores[session.ID]; ok {
		return store
	}

	store := r.factory(session)
	r.stores[session.ID] = store
	slog.Debug("Created list store", "session_id", session.ID, "user_id", session.UserID)
	return store
}

// Close disposes the session's store. Closing an unknown session is a no-op.
func (r *Registry) Close(sessionID string) {
	r.mu.Lock()
	store, ok := r.stores[sessionID]
	delete(r.stores, sessionID)
	r.mu.Unlock()

	if ok {
		store.Close()
	}
}

// CloseAll disposes every store and waits for pending notifications.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	stores := r.stores
	r.stores = make(map[string]*Store)
	r.mu.Unlock()

	for _, store := range stores {
		store.Close()
		store.WaitNotifications()
	}
}

// Sweep closes the stores of sessions that ended or expired and returns how many it closed.
// A session that cannot be read for another reason keeps its store.
func (r *Registry) Sweep(ctx context.Context, sessions adapter.SessionStore, now time.Time) int {
	r.mu.Lock()
	ids := make([]string, 0, len(r.stores))
	for id := range r.stores {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	closed := 0
	for _, id := range ids {
		session, err := sessions.Get(ctx, id)
		if err != nil && !errors.Is(err, domainerror.ErrSessionNotFound) {
			slog.Warn("Skipping store sweep for session", "session_id", id, "error", err)
			continue
		}
		if err == nil && session.IsActive(now) {
			continue
		}
		r.Close(id)
		closed++
	}

	if closed > 0 {
		slog.Info("Released stores of ended sessions", "count", closed)
	}
	return closed
}

// RunSweeper runs Sweep every interval until ctx is done. A non-positive interval disables it.
func (r *Registry) RunSweeper(ctx context.Context, sessions adapter.SessionStore, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			r.Sweep(ctx, sessions, now)
		}
	}
}

// Len returns the number of open stores.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}
