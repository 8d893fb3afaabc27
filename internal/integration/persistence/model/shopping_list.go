package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/household-hub/companion/internal/domain/entity"
)

// ShoppingListModel represents the shopping_lists table in the database.
type ShoppingListModel struct {
	ID        int64      `gorm:"primaryKey;autoIncrement"`
	Title     string     `gorm:"type:varchar(200);not null"`
	StartDate *time.Time `gorm:"column:start_date"`
	EndDate   *time.Time `gorm:"column:end_date"`
	HomeID    int64      `gorm:"not null;index"`
	OwnerID   int64      `gorm:"not null;index"`
	CreatedAt time.Time  `gorm:"not null"`
	UpdatedAt time.Time  `gorm:"not null"`
}

// TableName returns the table name for the ShoppingListModel.
func (ShoppingListModel) TableName() string {
	return "shopping_lists"
}

// ShoppingListWithTotal is a list row joined with the sum of its line totals.
type ShoppingListWithTotal struct {
	ShoppingListModel `gorm:"embedded"`
	Total             decimal.Decimal `gorm:"column:total"`
}

// ToEntity converts a ShoppingListModel to a domain ShoppingList entity.
func (m *ShoppingListModel) ToEntity() *entity.ShoppingList {
	id := m.ID
	return &entity.ShoppingList{
		ID:          &id,
		Title:       m.Title,
		StartedAt:   m.StartDate,
		CompletedAt: m.EndDate,
		HomeID:      m.HomeID,
		OwnerID:     m.OwnerID,
	}
}

// ToEntity converts the row to a domain ShoppingList carrying its total.
func (m *ShoppingListWithTotal) ToEntity() *entity.ShoppingList {
	list := m.ShoppingListModel.ToEntity()
	total := m.Total.Round(2)
	list.Total = &total
	return list
}

// ShoppingListFromEntity creates a ShoppingListModel from a domain ShoppingList entity.
func ShoppingListFromEntity(list *entity.ShoppingList) *ShoppingListModel {
	m := &ShoppingListModel{
		Title:     list.Title,
		StartDate: list.StartedAt,
		EndDate:   list.CompletedAt,
		HomeID:    list.HomeID,
		OwnerID:   list.OwnerID,
	}
	if list.ID != nil {
		m.ID = *list.ID
	}
	return m
}
