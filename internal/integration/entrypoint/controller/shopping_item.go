package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/household-hub/companion/internal/application/shopping"
	domainerror "github.com/household-hub/companion/internal/domain/error"
	"github.com/household-hub/companion/internal/integration/entrypoint/dto"
)

// ShoppingItemController handles shopping item endpoints.
type ShoppingItemController struct {
	stores *shopping.Registry
}

// NewShoppingItemController creates a new shopping item controller instance.
func NewShoppingItemController(stores *shopping.Registry) *ShoppingItemController {
	return &ShoppingItemController{
		stores: stores,
	}
}

// List handles GET /lists/:id/items requests.
func (c *ShoppingItemController) List(ctx *gin.Context) {
	store, ok := storeFor(ctx, c.stores)
	if !ok {
		return
	}
	listID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	items, err := store.Items(ctx.Request.Context(), listID)
	if err != nil {
		handleShoppingError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToItemResponses(items))
}

// Create handles POST /lists/:id/items requests.
func (c *ShoppingItemController) Create(ctx *gin.Context) {
	store, ok := storeFor(ctx, c.stores)
	if !ok {
		return
	}
	listID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req dto.CreateItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid request body",
			Code:  string(domainerror.ErrCodeBlankItem),
		})
		return
	}

	created, err := store.CreateItem(ctx.Request.Context(), req.ToEntity(listID))
	if err != nil {
		handleShoppingError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.ToItemResponse(*created))
}

// Update handles PATCH /lists/:id/items/:itemId requests.
func (c *ShoppingItemController) Update(ctx *gin.Context) {
	store, ok := storeFor(ctx, c.stores)
	if !ok {
		return
	}
	listID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	itemID, ok := pathID(ctx, "itemId")
	if !ok {
		return
	}

	var req dto.UpdateItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid request body",
			Code:  string(domainerror.ErrCodeEmptyUpdate),
		})
		return
	}

	updated, err := store.UpdateItem(ctx.Request.Context(), listID, itemID, req.ToItemUpdate())
	if err != nil {
		handleShoppingError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToItemResponse(*updated))
}

// Delete handles DELETE /lists/:id/items/:itemId requests.
func (c *ShoppingItemController) Delete(ctx *gin.Context) {
	store, ok := storeFor(ctx, c.stores)
	if !ok {
		return
	}
	listID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	itemID, ok := pathID(ctx, "itemId")
	if !ok {
		return
	}

	if err := store.DeleteItem(ctx.Request.Context(), listID, itemID); err != nil {
		handleShoppingError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
