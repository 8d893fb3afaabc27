package shopping

import (
	"context"
	"errors"
	"time"

	"github.com/household-hub/companion/internal/application/adapter"
	"github.com/household-hub/companion/internal/domain/entity"
	domainerror "github.com/household-hub/companion/internal/domain/error"
)

// guardedRemote bounds every call with a timeout and normalises failures to RemoteFailure.
type guardedRemote struct {
	next    adapter.RemoteListService
	timeout time.Duration
}

func newGuardedRemote(next adapter.RemoteListService, timeout time.Duration) *guardedRemote {
	return &guardedRemote{next: next, timeout: timeout}
}

func (g *guardedRemote) FetchListsByHome(ctx context.Context, homeID int64) ([]entity.ShoppingList, error) {
	ctx, cancel := g.bound(ctx)
	defer cancel()
	lists, err := g.next.FetchListsByHome(ctx, homeID)
	return lists, asRemoteFailure(ctx, err)
}

func (g *guardedRemote) CreateList(ctx context.Context, list entity.ShoppingList) (*entity.ShoppingList, error) {
	ctx, cancel := g.bound(ctx)
	defer cancel()
	created, err := g.next.CreateList(ctx, list)
	return created, asRemoteFailure(ctx, err)
}

func (g *guardedRemote) UpdateList(ctx context.Context, id int64, list entity.ShoppingList) (*entity.ShoppingList, error) {
	ctx, cancel := g.bound(ctx)
	defer cancel()
	updated, err := g.next.UpdateList(ctx, id, list)
	return updated, asRemoteFailure(ctx, err)
}

func (g *guardedRemote) DeleteList(ctx context.Context, id int64) error {
	ctx, cancel := g.bound(ctx)
	defer cancel()
	return asRemoteFailure(ctx, g.next.DeleteList(ctx, id))
}

func (g *guardedRemote) FetchItemsByList(ctx context.Context, listID int64) ([]entity.ShoppingItem, error) {
	ctx, cancel := g.bound(ctx)
	defer cancel()
	items, err := g.next.FetchItemsByList(ctx, listID)
	return items, asRemoteFailure(ctx, err)
}

func (g *guardedRemote) CreateItem(ctx context.Context, item entity.ShoppingItem) (*entity.ShoppingItem, error) {
	ctx, cancel := g.bound(ctx)
	defer cancel()
	created, err := g.next.CreateItem(ctx, item)
	return created, asRemoteFailure(ctx, err)
}

func (g *guardedRemote) UpdateItem(ctx context.Context, id int64, item entity.ShoppingItem) (*entity.ShoppingItem, error) {
	ctx, cancel := g.bound(ctx)
	defer cancel()
	updated, err := g.next.UpdateItem(ctx, id, item)
	return updated, asRemoteFailure(ctx, err)
}

func (g *guardedRemote) DeleteItem(ctx context.Context, id int64) error {
	ctx, cancel := g.bound(ctx)
	defer cancel()
	return asRemoteFailure(ctx, g.next.DeleteItem(ctx, id))
}

func (g *guardedRemote) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, g.timeout)
}

// asRemoteFailure maps any error to a *RemoteFailure, reporting expired deadlines as timeouts.
func asRemoteFailure(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}

	var remote *domainerror.RemoteFailure
	if errors.As(err, &remote) {
		return remote
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return domainerror.NewRemoteFailure(domainerror.ReasonTimeout, 0, err)
	}
	return domainerror.NewRemoteFailure(err.Error(), 0, err)
}

var _ adapter.RemoteListService = (*guardedRemote)(nil)
