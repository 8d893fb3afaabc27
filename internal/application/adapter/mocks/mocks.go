// Package mocks provides testify mocks for the application adapters.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/household-hub/companion/internal/application/adapter"
	"github.com/household-hub/companion/internal/domain/entity"
)

// RemoteListService is a mock for adapter.RemoteListService.
type RemoteListService struct {
	mock.Mock
}

func (m *RemoteListService) FetchListsByHome(ctx context.Context, homeID int64) ([]entity.ShoppingList, error) {
	args := m.Called(ctx, homeID)
	if lists, ok := args.Get(0).([]entity.ShoppingList); ok {
		return lists, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RemoteListService) CreateList(ctx context.Context, list entity.ShoppingList) (*entity.ShoppingList, error) {
	args := m.Called(ctx, list)
	if created, ok := args.Get(0).(*entity.ShoppingList); ok {
		return created, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RemoteListService) UpdateList(ctx context.Context, id int64, list entity.ShoppingList) (*entity.ShoppingList, error) {
	args := m.Called(ctx, id, list)
	if updated, ok := args.Get(0).(*entity.ShoppingList); ok {
		return updated, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RemoteListService) DeleteList(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *RemoteListService) FetchItemsByList(ctx context.Context, listID int64) ([]entity.ShoppingItem, error) {
	args := m.Called(ctx, listID)
	if items, ok := args.Get(0).([]entity.ShoppingItem); ok {
		return items, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RemoteListService) CreateItem(ctx context.Context, item entity.ShoppingItem) (*entity.ShoppingItem, error) {
	args := m.Called(ctx, item)
	if created, ok := args.Get(0).(*entity.ShoppingItem); ok {
		return created, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RemoteListService) UpdateItem(ctx context.Context, id int64, item entity.ShoppingItem) (*entity.ShoppingItem, error) {
	args := m.Called(ctx, id, item)
	if updated, ok := args.Get(0).(*entity.ShoppingItem); ok {
		return updated, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RemoteListService) DeleteItem(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// RemoteAuthService is a mock for adapter.RemoteAuthService.
type RemoteAuthService struct {
	mock.Mock
}

func (m *RemoteAuthService) Login(ctx context.Context, email, password string) (*adapter.RemoteLogin, error) {
	args := m.Called(ctx, email, password)
	if login, ok := args.Get(0).(*adapter.RemoteLogin); ok {
		return login, args.Error(1)
	}
	return nil, args.Error(1)
}

// Notifier is a mock for adapter.Notifier.
type Notifier struct {
	mock.Mock
}

func (m *Notifier) Notify(ctx context.Context, notification entity.Notification) error {
	args := m.Called(ctx, notification)
	return args.Error(0)
}

// SessionStore is a mock for adapter.SessionStore.
type SessionStore struct {
	mock.Mock
}

func (m *SessionStore) Save(ctx context.Context, session *entity.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *SessionStore) Get(ctx context.Context, id string) (*entity.Session, error) {
	args := m.Called(ctx, id)
	if session, ok := args.Get(0).(*entity.Session); ok {
		return session, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SessionStore) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// TokenService is a mock for adapter.TokenService.
type TokenService struct {
	mock.Mock
}

func (m *TokenService) GenerateAccessToken(sessionID string, userID int64, expiresAt time.Time) (string, error) {
	args := m.Called(sessionID, userID, expiresAt)
	return args.String(0), args.Error(1)
}

func (m *TokenService) ValidateAccessToken(token string) (*adapter.TokenClaims, error) {
	args := m.Called(token)
	if claims, ok := args.Get(0).(*adapter.TokenClaims); ok {
		return claims, args.Error(1)
	}
	return nil, args.Error(1)
}

var (
	_ adapter.RemoteListService = (*RemoteListService)(nil)
	_ adapter.RemoteAuthService = (*RemoteAuthService)(nil)
	_ adapter.Notifier          = (*Notifier)(nil)
	_ adapter.SessionStore      = (*SessionStore)(nil)
	_ adapter.TokenService      = (*TokenService)(nil)
)
