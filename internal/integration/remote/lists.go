package remote

import (
	"context"
	"fmt"
	"net/http"

	"github.com/household-hub/companion/internal/application/adapter"
	"github.com/household-hub/companion/internal/domain/entity"
)

// FetchListsByHome retrieves all lists of a home, asking the backend to embed totals and items.
func (c *Client) FetchListsByHome(ctx context.Context, homeID int64) ([]entity.ShoppingList, error) {
	var payload []ListPayload
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/homes/%d/shopping-lists?with_totals=true&with_items=true", homeID), nil, &payload); err != nil {
		return nil, err
	}

	lists := make([]entity.ShoppingList, len(payload))
	for i, p := range payload {
		lists[i] = p.ToEntity()
	}
	return lists, nil
}

// CreateList creates a list.
func (c *Client) CreateList(ctx context.Context, list entity.ShoppingList) (*entity.ShoppingList, error) {
	var payload ListPayload
	if err := c.do(ctx, http.MethodPost, "/shopping-lists", ListFromEntity(list), &payload); err != nil {
		return nil, err
	}
	created := payload.ToEntity()
	return &created, nil
}

// UpdateList replaces a list.
func (c *Client) UpdateList(ctx context.Context, id int64, list entity.ShoppingList) (*entity.ShoppingList, error) {
	var payload ListPayload
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/shopping-lists/%d", id), ListFromEntity(list), &payload); err != nil {
		return nil, err
	}
	updated := payload.ToEntity()
	return &updated, nil
}

// DeleteList removes a list.
func (c *Client) DeleteList(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/shopping-lists/%d", id), nil, nil)
}

// FetchItemsByList retrieves the items of a list.
func (c *Client) FetchItemsByList(ctx context.Context, listID int64) ([]entity.ShoppingItem, error) {
	var payload []ItemPayload
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/shopping-lists/%d/items", listID), nil, &payload); err != nil {
		return nil, err
	}

	items := make([]entity.ShoppingItem, len(payload))
	for i, p := range payload {
		items[i] = p.ToEntity()
	}
	return items, nil
}

// CreateItem creates an item.
func (c *Client) CreateItem(ctx context.Context, item entity.ShoppingItem) (*entity.ShoppingItem, error) {
	var payload ItemPayload
	if err := c.do(ctx, http.MethodPost, "/items", ItemFromEntity(item), &payload); err != nil {
		return nil, err
	}
	created := payload.ToEntity()
	return &created, nil
}

// UpdateItem replaces an item.
func (c *Client) UpdateItem(ctx context.Context, id int64, item entity.ShoppingItem) (*entity.ShoppingItem, error) {
	var payload ItemPayload
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/items/%d", id), ItemFromEntity(item), &payload); err != nil {
		return nil, err
	}
	updated := payload.ToEntity()
	return &updated, nil
}

// DeleteItem removes an item.
func (c *Client) DeleteItem(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/items/%d", id), nil, nil)
}

var _ adapter.RemoteListService = (*Client)(nil)
