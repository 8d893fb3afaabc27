// Package entity defines the core business entities for the domain layer.
package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ShoppingList represents a household shopping list.
// A list with CompletedAt set is archived (history); otherwise it is active.
type ShoppingList struct {
	ID          *int64
	Title       string
	StartedAt   *time.Time
	CompletedAt *time.Time
	HomeID      int64
	OwnerID     int64
	Items       []ShoppingItem   // nil when the backend did not embed items
	Total       *decimal.Decimal // nil when the backend did not pre-compute a total
}

// NewShoppingList creates a new, not yet persisted, ShoppingList.
func NewShoppingList(title string, homeID, ownerID int64, now time.Time) *ShoppingList {
	started := now.UTC()

	return &ShoppingList{
		Title:     title,
		StartedAt: &started,
		HomeID:    homeID,
		OwnerID:   ownerID,
	}
}

// IsArchived reports whether the list has been completed.
func (l *ShoppingList) IsArchived() bool {
	return l.CompletedAt != nil
}

// HasEmbeddedItems reports whether the backend embedded the item collection.
func (l *ShoppingList) HasEmbeddedItems() bool {
	return l.Items != nil
}

// Clone returns a deep copy of the list so snapshots never share mutable state.
func (l ShoppingList) Clone() ShoppingList {
	out := l
	if l.ID != nil {
		id := *l.ID
		out.ID = &id
	}
	if l.StartedAt != nil {
		t := *l.StartedAt
		out.StartedAt = &t
	}
	if l.CompletedAt != nil {
		t := *l.CompletedAt
		out.CompletedAt = &t
	}
	if l.Total != nil {
		total := *l.Total
		out.Total = &total
	}
	if l.Items != nil {
		out.Items = CloneItems(l.Items)
	}
	return out
}

// ListUpdate carries the optional fields of a list update.
type ListUpdate struct {
	Title       *string
	StartedAt   *time.Time
	CompletedAt *time.Time
}

// IsEmpty reports whether no field is set.
func (u ListUpdate) IsEmpty() bool {
	return u.Title == nil && u.StartedAt == nil && u.CompletedAt == nil
}

// AggregatedList pairs a list with its derived metrics. It is recomputed, never persisted.
type AggregatedList struct {
	List           ShoppingList
	TotalPrice     decimal.Decimal
	TotalItems     int
	CompletedItems int
	// Degraded is set when the item fetch failed and metrics fell back to embedded values or zero.
	Degraded bool
}
