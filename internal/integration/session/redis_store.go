// Package session implements session persistence on Redis.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/household-hub/companion/internal/application/adapter"
	"github.com/household-hub/companion/internal/domain/entity"
	domainerror "github.com/household-hub/companion/internal/domain/error"
)

const keyPrefix = "session:"

// record is the serialized form of a session.
type record struct {
	ID          string    `json:"id"`
	UserID      int64     `json:"user_id"`
	UserName    string    `json:"user_name"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	LoggedIn    bool      `json:"logged_in"`
	RemoteToken string    `json:"remote_token"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (r record) toEntity() *entity.Session {
	return &entity.Session{
		ID:          r.ID,
		UserID:      r.UserID,
		UserName:    r.UserName,
		Email:       r.Email,
		Role:        entity.UserRole(r.Role),
		LoggedIn:    r.LoggedIn,
		RemoteToken: r.RemoteToken,
		CreatedAt:   r.CreatedAt,
		ExpiresAt:   r.ExpiresAt,
	}
}

func fromEntity(s *entity.Session) record {
	return record{
		ID:          s.ID,
		UserID:      s.UserID,
		UserName:    s.UserName,
		Email:       s.Email,
		Role:        string(s.Role),
		LoggedIn:    s.LoggedIn,
		RemoteToken: s.RemoteToken,
		CreatedAt:   s.CreatedAt,
		ExpiresAt:   s.ExpiresAt,
	}
}

// RedisStore implements adapter.SessionStore.
type RedisStore struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedisStore creates a new RedisStore instance.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, now: time.Now}
}

// Save stores the session with a TTL matching its expiry. Sessions without an expiry never expire.
func (s *RedisStore) Save(ctx context.Context, session *entity.Session) error {
	if session == nil || session.ID == "" {
		return fmt.Errorf("save session: missing id")
	}

	var ttl time.Duration
	if !session.ExpiresAt.IsZero() {
		ttl = session.ExpiresAt.Sub(s.now())
		if ttl <= 0 {
			return s.Delete(ctx, session.ID)
		}
	}

	payload, err := json.Marshal(fromEntity(session))
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	if err := s.client.Set(ctx, keyPrefix+session.ID, payload, ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Get retrieves a session by ID.
func (s *RedisStore) Get(ctx context.Context, id string) (*entity.Session, error) {
	payload, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domainerror.ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	var r record
	if err := json.Unmarshal(payload, &r); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return r.toEntity(), nil
}

// Delete removes the session. Deleting an unknown session is not an error.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Provider returns a SessionProvider bound to one session id. A session that
// has been deleted or expired reads as nobody logged in.
func (s *RedisStore) Provider(id string) adapter.SessionProvider {
	return adapter.SessionProviderFunc(func(ctx context.Context) (*entity.Session, error) {
		session, err := s.Get(ctx, id)
		if errors.Is(err, domainerror.ErrSessionNotFound) {
			return nil, nil
		}
		return session, err
	})
}

var _ adapter.SessionStore = (*RedisStore)(nil)
