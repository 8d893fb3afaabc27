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

// ShoppingItemRepository stores shopping items.
type ShoppingItemRepository struct {
	db *gorm.DB
}

// NewShoppingItemRepository creates a new shopping item repository instance.
func NewShoppingItemRepository(db *gorm.DB) *ShoppingItemRepository {
	return &ShoppingItemRepository{
		db: db,
	}
}

// FindByList retrieves the items of a list ordered by creation.
func (r *ShoppingItemRepository) FindByList(ctx context.Context, listID int64) ([]entity.ShoppingItem, error) {
	var itemModels []model.ShoppingItemModel
	result := r.db.WithContext(ctx).
		Where("list_id = ?", listID).
		Order("id ASC").
		Find(&itemModels)
	if result.Error != nil {
		return nil, result.Error
	}

	items := make([]entity.ShoppingItem, len(itemModels))
	for i, im := range itemModels {
		items[i] = *im.ToEntity()
	}
	return items, nil
}

// FindByLists retrieves the items of several lists at once, ordered by list then creation.
func (r *ShoppingItemRepository) FindByLists(ctx context.Context, listIDs []int64) ([]entity.ShoppingItem, error) {
	if len(listIDs) == 0 {
		return []entity.ShoppingItem{}, nil
	}

	var itemModels []model.ShoppingItemModel
	result := r.db.WithContext(ctx).
		Where("list_id IN ?", listIDs).
		Order("list_id ASC, id ASC").
		Find(&itemModels)
	if result.Error != nil {
		return nil, result.Error
	}

	items := make([]entity.ShoppingItem, len(itemModels))
	for i, im := range itemModels {
		items[i] = *im.ToEntity()
	}
	return items, nil
}

// FindByID retrieves an item by its ID.
func (r *ShoppingItemRepository) FindByID(ctx context.Context, id int64) (*entity.ShoppingItem, error) {
	var itemModel model.ShoppingItemModel
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&itemModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domainerror.ErrNotFound
		}
		return nil, result.Error
	}
	return itemModel.ToEntity(), nil
}

// Create creates a new item in the database and sets its ID.
func (r *ShoppingItemRepository) Create(ctx context.Context, item *entity.ShoppingItem) error {
	itemModel := model.ShoppingItemFromEntity(item)
	itemModel.ID = 0
	if err := r.db.WithContext(ctx).Create(itemModel).Error; err != nil {
		return err
	}
	id := itemModel.ID
	item.ID = &id
	return nil
}

// Update replaces the persistent fields of an existing item.
func (r *ShoppingItemRepository) Update(ctx context.Context, item *entity.ShoppingItem) error {
	if item.ID == nil {
		return domainerror.ErrNotFound
	}

	result := r.db.WithContext(ctx).
		Model(&model.ShoppingItemModel{}).
		Where("id = ?", *item.ID).
		Updates(map[string]any{
			"description": item.Description,
			"quantity":    item.Quantity,
			"state":       string(item.State),
			"unit_price":  item.UnitPrice,
			"category_id": item.CategoryID,
			"updated_at":  time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerror.ErrNotFound
	}
	return nil
}

// Delete removes an item.
func (r *ShoppingItemRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&model.ShoppingItemModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerror.ErrNotFound
	}
	return nil
}

// Models returns every model the reference backend persists, for migrations.
func Models() []any {
	return []any{
		&model.UserModel{},
		&model.ShoppingListModel{},
		&model.ShoppingItemModel{},
	}
}
