// Package entity defines the core business entities for the domain layer.
package entity

import (
	"github.com/shopspring/decimal"
)

// ItemState represents the purchase status of a shopping item.
type ItemState string

const (
	ItemStatePending   ItemState = "pending"
	ItemStatePurchased ItemState = "purchased"
)

// IsValid reports whether the state is one of the known tags.
func (s ItemState) IsValid() bool {
	return s == ItemStatePending || s == ItemStatePurchased
}

// ShoppingItem represents a single line of a shopping list.
type ShoppingItem struct {
	ID          *int64
	Description string
	Quantity    decimal.Decimal
	State       ItemState
	UnitPrice   decimal.Decimal
	ListID      int64
	CategoryID  int64
}

// NewShoppingItem creates a new pending item attached to the given list.
func NewShoppingItem(listID int64, description string, quantity, unitPrice decimal.Decimal, categoryID int64) *ShoppingItem {
	return &ShoppingItem{
		Description: description,
		Quantity:    quantity,
		State:       ItemStatePending,
		UnitPrice:   unitPrice,
		ListID:      listID,
		CategoryID:  categoryID,
	}
}

// LineTotal returns quantity multiplied by unit price.
func (i ShoppingItem) LineTotal() decimal.Decimal {
	return i.Quantity.Mul(i.UnitPrice)
}

// IsPurchased reports whether the item has been bought.
func (i ShoppingItem) IsPurchased() bool {
	return i.State == ItemStatePurchased
}

// ItemUpdate carries the optional fields of an item update.
type ItemUpdate struct {
	Description *string
	Quantity    *decimal.Decimal
	State       *ItemState
	UnitPrice   *decimal.Decimal
	CategoryID  *int64
}

// CloneItems returns a deep copy of items, preserving nil.
func CloneItems(items []ShoppingItem) []ShoppingItem {
	if items == nil {
		return nil
	}
	out := make([]ShoppingItem, len(items))
	for i, item := range items {
		out[i] = item
		if item.ID != nil {
			id := *item.ID
			out[i].ID = &id
		}
	}
	return out
}
