// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"

	"github.com/household-hub/companion/internal/domain/entity"
)

// RemoteListService is the household backend boundary for shopping lists and items.
// Every failure is returned as a *domainerror.RemoteFailure.
type RemoteListService interface {
	// FetchListsByHome retrieves all lists of a home.
	FetchListsByHome(ctx context.Context, homeID int64) ([]entity.ShoppingList, error)

	// CreateList creates a list; the backend assigns its identifier.
	CreateList(ctx context.Context, list entity.ShoppingList) (*entity.ShoppingList, error)

	// UpdateList replaces the list with the given identifier.
	UpdateList(ctx context.Context, id int64, list entity.ShoppingList) (*entity.ShoppingList, error)

	// DeleteList removes a list.
	DeleteList(ctx context.Context, id int64) error

	// FetchItemsByList retrieves the items of a list in backend order.
	FetchItemsByList(ctx context.Context, listID int64) ([]entity.ShoppingItem, error)

	// CreateItem creates an item; the backend assigns its identifier.
	CreateItem(ctx context.Context, item entity.ShoppingItem) (*entity.ShoppingItem, error)

	// UpdateItem replaces the item with the given identifier.
	UpdateItem(ctx context.Context, id int64, item entity.ShoppingItem) (*entity.ShoppingItem, error)

	// DeleteItem removes an item.
	DeleteItem(ctx context.Context, id int64) error
}

// RemoteAuthService is the household backend boundary for authentication.
type RemoteAuthService interface {
	// Login exchanges credentials for a backend user profile and bearer token.
	Login(ctx context.Context, email, password string) (*RemoteLogin, error)
}

// RemoteLogin is the profile returned by a successful backend login.
type RemoteLogin struct {
	UserID int64
	Name   string
	Email  string
	Role   entity.UserRole
	Token  string
}
