package remote

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/household-hub/companion/internal/domain/entity"
)

// ListPayload is the backend representation of a shopping list.
type ListPayload struct {
	ID        *int64           `json:"id,omitempty"`
	Title     string           `json:"title"`
	StartDate *time.Time       `json:"start_date,omitempty"`
	EndDate   *time.Time       `json:"end_date,omitempty"`
	HomeID    int64            `json:"home_id"`
	OwnerID   int64            `json:"owner_id"`
	Items     *[]ItemPayload   `json:"items,omitempty"`
	Total     *decimal.Decimal `json:"total,omitempty"`
}

// ItemPayload is the backend representation of a shopping item.
type ItemPayload struct {
	ID          *int64          `json:"id,omitempty"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	State       string          `json:"state"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	ListID      int64           `json:"list_id"`
	CategoryID  int64           `json:"category_id"`
}

// LoginRequest is the backend login request body.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginPayload is the backend login response data.
type LoginPayload struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Token  string `json:"token"`
}

// ToEntity converts a ListPayload to a domain ShoppingList.
func (p ListPayload) ToEntity() entity.ShoppingList {
	list := entity.ShoppingList{
		ID:          p.ID,
		Title:       p.Title,
		StartedAt:   p.StartDate,
		CompletedAt: p.EndDate,
		HomeID:      p.HomeID,
		OwnerID:     p.OwnerID,
	}
	if p.Items != nil {
		list.Items = make([]entity.ShoppingItem, len(*p.Items))
		for i, item := range *p.Items {
			list.Items[i] = item.ToEntity()
		}
	}
	if p.Total != nil {
		total := *p.Total
		list.Total = &total
	}
	return list
}

// ListFromEntity creates a ListPayload from a domain ShoppingList.
// Derived fields (items and total) are never sent.
func ListFromEntity(list entity.ShoppingList) ListPayload {
	return ListPayload{
		ID:        list.ID,
		Title:     list.Title,
		StartDate: list.StartedAt,
		EndDate:   list.CompletedAt,
		HomeID:    list.HomeID,
		OwnerID:   list.OwnerID,
	}
}

// ToEntity converts an ItemPayload to a domain ShoppingItem.
func (p ItemPayload) ToEntity() entity.ShoppingItem {
	return entity.ShoppingItem{
		ID:          p.ID,
		Description: p.Description,
		Quantity:    p.Quantity,
		State:       entity.ItemState(p.State),
		UnitPrice:   p.UnitPrice,
		ListID:      p.ListID,
		CategoryID:  p.CategoryID,
	}
}

// ItemFromEntity creates an ItemPayload from a domain ShoppingItem.
func ItemFromEntity(item entity.ShoppingItem) ItemPayload {
	return ItemPayload{
		ID:          item.ID,
		Description: item.Description,
		Quantity:    item.Quantity,
		State:       string(item.State),
		UnitPrice:   item.UnitPrice,
		ListID:      item.ListID,
		CategoryID:  item.CategoryID,
	}
}
