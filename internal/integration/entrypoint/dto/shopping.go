package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/household-hub/companion/internal/domain/entity"
)

// CreateListRequest represents the request body for creating a list.
type CreateListRequest struct {
	Title string `json:"title"`
}

// UpdateListRequest represents the request body for updating a list.
// Absent fields are left unchanged.
type UpdateListRequest struct {
	Title       *string    `json:"title"`
	StartedAt   *time.Time `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`
}

// ToListUpdate converts the request to a domain update.
func (r UpdateListRequest) ToListUpdate() entity.ListUpdate {
	return entity.ListUpdate{
		Title:       r.Title,
		StartedAt:   r.StartedAt,
		CompletedAt: r.CompletedAt,
	}
}

// CreateItemRequest represents the request body for adding an item to a list.
type CreateItemRequest struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	State       string          `json:"state"`
	CategoryID  int64           `json:"category_id"`
}

// ToEntity converts the request to a domain item of the list.
func (r CreateItemRequest) ToEntity(listID int64) entity.ShoppingItem {
	return entity.ShoppingItem{
		Description: r.Description,
		Quantity:    r.Quantity,
		UnitPrice:   r.UnitPrice,
		State:       entity.ItemState(r.State),
		ListID:      listID,
		CategoryID:  r.CategoryID,
	}
}

// UpdateItemRequest represents the request body for updating an item.
type UpdateItemRequest struct {
	Description *string          `json:"description"`
	Quantity    *decimal.Decimal `json:"quantity"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
	State       *string          `json:"state"`
	CategoryID  *int64           `json:"category_id"`
}

// ToItemUpdate converts the request to a domain update.
func (r UpdateItemRequest) ToItemUpdate() entity.ItemUpdate {
	update := entity.ItemUpdate{
		Description: r.Description,
		Quantity:    r.Quantity,
		UnitPrice:   r.UnitPrice,
		CategoryID:  r.CategoryID,
	}
	if r.State != nil {
		state := entity.ItemState(*r.State)
		update.State = &state
	}
	return update
}

// ListResponse represents a shopping list in API responses.
type ListResponse struct {
	ID          *int64     `json:"id"`
	Title       string     `json:"title"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	HomeID      int64      `json:"home_id"`
	OwnerID     int64      `json:"owner_id"`
	Archived    bool       `json:"archived"`
}

// AggregatedListResponse represents a list with its derived totals.
type AggregatedListResponse struct {
	ListResponse
	TotalPrice     string `json:"total_price"`
	TotalItems     int    `json:"total_items"`
	CompletedItems int    `json:"completed_items"`
	Degraded       bool   `json:"degraded,omitempty"`
}

// ListViewResponse represents the partitioned view of a home's lists.
type ListViewResponse struct {
	HomeID    int64                    `json:"home_id"`
	Status    string                   `json:"status"`
	LoadState string                   `json:"load_state"`
	Active    []AggregatedListResponse `json:"active"`
	Archived  []AggregatedListResponse `json:"archived"`
	LastError string                   `json:"last_error,omitempty"`
}

// ItemResponse represents a shopping item in API responses.
type ItemResponse struct {
	ID          *int64 `json:"id"`
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	LineTotal   string `json:"line_total"`
	State       string `json:"state"`
	ListID      int64  `json:"list_id"`
	CategoryID  int64  `json:"category_id"`
}

// ToListResponse converts a domain list to its response.
func ToListResponse(list entity.ShoppingList) ListResponse {
	return ListResponse{
		ID:          list.ID,
		Title:       list.Title,
		StartedAt:   list.StartedAt,
		CompletedAt: list.CompletedAt,
		HomeID:      list.HomeID,
		OwnerID:     list.OwnerID,
		Archived:    list.IsArchived(),
	}
}

// ToAggregatedListResponses converts aggregated lists to responses.
func ToAggregatedListResponses(lists []entity.AggregatedList) []AggregatedListResponse {
	responses := make([]AggregatedListResponse, len(lists))
	for i, l := range lists {
		responses[i] = AggregatedListResponse{
			ListResponse:   ToListResponse(l.List),
			TotalPrice:     l.TotalPrice.StringFixed(2),
			TotalItems:     l.TotalItems,
			CompletedItems: l.CompletedItems,
			Degraded:       l.Degraded,
		}
	}
	return responses
}

// ToListViewResponse converts a store view to its response.
func ToListViewResponse(view entity.ListView) ListViewResponse {
	return ListViewResponse{
		HomeID:    view.HomeID,
		Status:    string(view.Status),
		LoadState: string(view.Load),
		Active:    ToAggregatedListResponses(view.Partition.Active),
		Archived:  ToAggregatedListResponses(view.Partition.Archived),
		LastError: view.LastError,
	}
}

// ToItemResponse converts a domain item to its response.
func ToItemResponse(item entity.ShoppingItem) ItemResponse {
	return ItemResponse{
		ID:          item.ID,
		Description: item.Description,
		Quantity:    item.Quantity.String(),
		UnitPrice:   item.UnitPrice.StringFixed(2),
		LineTotal:   item.LineTotal().StringFixed(2),
		State:       string(item.State),
		ListID:      item.ListID,
		CategoryID:  item.CategoryID,
	}
}

// ToItemResponses converts domain items to responses.
func ToItemResponses(items []entity.ShoppingItem) []ItemResponse {
	responses := make([]ItemResponse, len(items))
	for i, item := range items {
		responses[i] = ToItemResponse(item)
	}
	return responses
}
