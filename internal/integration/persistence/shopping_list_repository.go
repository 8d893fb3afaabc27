package persistence

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/household-hub/companion/internal/domain/entity"
	domainerror "github.com/household-hub/companion/internal/domain/error"
	"github.com/household-hub/companion/internal/integration/persistence/model"
)

// ShoppingListRepository stores shopping lists.
type ShoppingListRepository struct {
	db *gorm.DB
}

// NewShoppingListRepository creates a new shopping list repository instance.
func NewShoppingListRepository(db *gorm.DB) *ShoppingListRepository {
	return &ShoppingListRepository{
		db: db,
	}
}

// FindByHome retrieves the lists of a home ordered by creation.
func (r *ShoppingListRepository) FindByHome(ctx context.Context, homeID int64) ([]entity.ShoppingList, error) {
	var listModels []model.ShoppingListModel
	result := r.db.WithContext(ctx).
		Where("home_id = ?", homeID).
		Order("id ASC").
		Find(&listModels)
	if result.Error != nil {
		return nil, result.Error
	}

	lists := make([]entity.ShoppingList, len(listModels))
	for i, lm := range listModels {
		lists[i] = *lm.ToEntity()
	}
	return lists, nil
}

// FindByHomeWithTotals retrieves the lists of a home, each carrying the sum of its line totals.
func (r *ShoppingListRepository) FindByHomeWithTotals(ctx context.Context, homeID int64) ([]entity.ShoppingList, error) {
	var rows []model.ShoppingListWithTotal
	result := r.db.WithContext(ctx).
		Model(&model.ShoppingListModel{}).
		Select("shopping_lists.*, COALESCE(SUM(shopping_items.quantity * shopping_items.unit_price), 0) AS total").
		Joins("LEFT JOIN shopping_items ON shopping_items.list_id = shopping_lists.id").
		Where("shopping_lists.home_id = ?", homeID).
		Group("shopping_lists.id").
		Order("shopping_lists.id ASC").
		Scan(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	lists := make([]entity.ShoppingList, len(rows))
	for i := range rows {
		lists[i] = *rows[i].ToEntity()
	}
	return lists, nil
}

// FindByID retrieves a list by its ID.
func (r *ShoppingListRepository) FindByID(ctx context.Context, id int64) (*entity.ShoppingList, error) {
	var listModel model.ShoppingListModel
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&listModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domainerror.ErrNotFound
		}
		return nil, result.Error
	}
	return listModel.ToEntity(), nil
}

// Create creates a new list in the database and sets its ID.
func (r *ShoppingListRepository) Create(ctx context.Context, list *entity.ShoppingList) error {
	listModel := model.ShoppingListFromEntity(list)
	listModel.ID = 0
	if err := r.db.WithContext(ctx).Create(listModel).Error; err != nil {
		return err
	}
	id := listModel.ID
	list.ID = &id
	return nil
}

// Update replaces the persistent fields of an existing list.
func (r *ShoppingListRepository) Update(ctx context.Context, list *entity.ShoppingList) error {
	if list.ID == nil {
		return domainerror.ErrNotFound
	}

	result := r.db.WithContext(ctx).
		Model(&model.ShoppingListModel{}).
		Where("id = ?", *list.ID).
		Updates(map[string]any{
			"title":      list.Title,
			"start_date": list.StartedAt,
			"end_date":   list.CompletedAt,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerror.ErrNotFound
	}
	return nil
}

// Delete removes a list together with its items.
func (r *ShoppingListRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("list_id = ?", id).Delete(&model.ShoppingItemModel{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&model.ShoppingListModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainerror.ErrNotFound
		}
		return nil
	})
}
