package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/household-hub/companion/internal/application/shopping"
	domainerror "github.com/household-hub/companion/internal/domain/error"
	"github.com/household-hub/companion/internal/integration/entrypoint/dto"
	"github.com/household-hub/companion/internal/integration/entrypoint/middleware"
)

// ShoppingListController handles shopping list endpoints.
type ShoppingListController struct {
	stores *shopping.Registry
}

// NewShoppingListController creates a new shopping list controller instance.
func NewShoppingListController(stores *shopping.Registry) *ShoppingListController {
	return &ShoppingListController{
		stores: stores,
	}
}

// storeFor returns the list store of the authenticated session.
func storeFor(ctx *gin.Context, stores *shopping.Registry) (*shopping.Store, bool) {
	session, ok := middleware.GetSessionFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error: "Not authenticated",
			Code:  string(domainerror.ErrCodeAuthRequired),
		})
		return nil, false
	}
	return stores.For(session), true
}

// pathID parses a positive int64 path parameter.
func pathID(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response := dto.ErrorResponse{Error: "Invalid " + name}
		if name == "homeId" {
			response.Code = string(domainerror.ErrCodeInvalidHome)
		}
		ctx.JSON(http.StatusBadRequest, response)
		return 0, false
	}
	return id, true
}

// List handles GET /homes/:homeId/lists requests.
func (c *ShoppingListController) List(ctx *gin.Context) {
	store, ok := storeFor(ctx, c.stores)
	if !ok {
		return
	}
	homeID, ok := pathID(ctx, "homeId")
	if !ok {
		return
	}

	view, err := store.LoadForHome(ctx.Request.Context(), homeID)
	if err != nil {
		handleShoppingError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToListViewResponse(view))
}

// View handles GET /lists requests. It returns the last snapshot without reloading.
func (c *ShoppingListController) View(ctx *gin.Context) {
	store, ok := storeFor(ctx, c.stores)
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, dto.ToListViewResponse(store.Snapshot()))
}

// Create handles POST /homes/:homeId/lists requests.
func (c *ShoppingListController) Create(ctx *gin.Context) {
	store, ok := storeFor(ctx, c.stores)
	if !ok {
		return
	}
	homeID, ok := pathID(ctx, "homeId")
	if !ok {
		return
	}

	var req dto.CreateListRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid request body",
			Code:  string(domainerror.ErrCodeBlankTitle),
		})
		return
	}

	created, err := store.Create(ctx.Request.Context(), req.Title, homeID)
	if err != nil {
		handleShoppingError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.ToListResponse(*created))
}

// Update handles PATCH /lists/:id requests.
func (c *ShoppingListController) Update(ctx *gin.Context) {
	store, ok := storeFor(ctx, c.stores)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateListRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid request body",
			Code:  string(domainerror.ErrCodeEmptyUpdate),
		})
		return
	}

	updated, err := store.Update(ctx.Request.Context(), id, req.ToListUpdate())
	if err != nil {
		handleShoppingError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToListResponse(*updated))
}

// Complete handles POST /lists/:id/complete requests.
func (c *ShoppingListController) Complete(ctx *gin.Context) {
	store, ok := storeFor(ctx, c.stores)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	completed, err := store.MarkComplete(ctx.Request.Context(), id)
	if err != nil {
		handleShoppingError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToListResponse(*completed))
}

// Delete handles DELETE /lists/:id requests.
func (c *ShoppingListController) Delete(ctx *gin.Context) {
	store, ok := storeFor(ctx, c.stores)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := store.Delete(ctx.Request.Context(), id); err != nil {
		handleShoppingError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
