package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/household-hub/companion/internal/domain/entity"
)

// ShoppingItemModel represents the shopping_items table in the database.
type ShoppingItemModel struct {
	ID          int64           `gorm:"primaryKey;autoIncrement"`
	Description string          `gorm:"type:varchar(255);not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(15,3);not null"`
	State       string          `gorm:"type:varchar(20);not null;default:'pending'"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	ListID      int64           `gorm:"not null;index"`
	CategoryID  int64           `gorm:"not null;default:0"`
	CreatedAt   time.Time       `gorm:"not null"`
	UpdatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for the ShoppingItemModel.
func (ShoppingItemModel) TableName() string {
	return "shopping_items"
}

// ToEntity converts a ShoppingItemModel to a domain ShoppingItem entity.
func (m *ShoppingItemModel) ToEntity() *entity.ShoppingItem {
	id := m.ID
	return &entity.ShoppingItem{
		ID:          &id,
		Description: m.Description,
		Quantity:    m.Quantity,
		State:       entity.ItemState(m.State),
		UnitPrice:   m.UnitPrice,
		ListID:      m.ListID,
		CategoryID:  m.CategoryID,
	}
}

// ShoppingItemFromEntity creates a ShoppingItemModel from a domain ShoppingItem entity.
func ShoppingItemFromEntity(item *entity.ShoppingItem) *ShoppingItemModel {
	m := &ShoppingItemModel{
		Description: item.Description,
		Quantity:    item.Quantity,
		State:       string(item.State),
		UnitPrice:   item.UnitPrice,
		ListID:      item.ListID,
		CategoryID:  item.CategoryID,
	}
	if item.ID != nil {
		m.ID = *item.ID
	}
	return m
}
