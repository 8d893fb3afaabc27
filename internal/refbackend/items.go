package refbackend

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/household-hub/companion/internal/domain/entity"
	domainerror "github.com/household-hub/companion/internal/domain/error"
	"github.com/household-hub/companion/internal/integration/remote"
)

// validateItem normalises the payload and returns a message when it is unacceptable.
func validateItem(item *entity.ShoppingItem) string {
	item.Description = strings.TrimSpace(item.Description)
	if item.Description == "" {
		return "description is required"
	}
	if !item.Quantity.IsPositive() {
		return "quantity must be positive"
	}
	if item.UnitPrice.IsNegative() {
		return "unit price must not be negative"
	}
	if item.State == "" {
		item.State = entity.ItemStatePending
	}
	if !item.State.IsValid() {
		return "unknown item state"
	}
	return ""
}

// createItem handles POST /items requests.
func (s *Server) createItem(c *gin.Context) {
	var req remote.ItemPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	item := req.ToEntity()
	item.ID = nil
	if msg := validateItem(&item); msg != "" {
		fail(c, http.StatusBadRequest, msg)
		return
	}

	if _, ok := s.listInHome(c, item.ListID); !ok {
		return
	}

	if err := s.items.Create(c.Request.Context(), &item); err != nil {
		internalError(c, "create item", err)
		return
	}

	respond(c, http.StatusCreated, "item created", remote.ItemFromEntity(item))
}

// updateItem handles PUT /items/:id requests.
func (s *Server) updateItem(c *gin.Context) {
	existing, ok := s.loadItem(c)
	if !ok {
		return
	}

	var req remote.ItemPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	item := req.ToEntity()
	item.ID = existing.ID
	item.ListID = existing.ListID
	if msg := validateItem(&item); msg != "" {
		fail(c, http.StatusBadRequest, msg)
		return
	}

	if err := s.items.Update(c.Request.Context(), &item); err != nil {
		internalError(c, "update item", err)
		return
	}

	respond(c, http.StatusOK, "item updated", remote.ItemFromEntity(item))
}

// deleteItem handles DELETE /items/:id requests.
func (s *Server) deleteItem(c *gin.Context) {
	item, ok := s.loadItem(c)
	if !ok {
		return
	}

	if err := s.items.Delete(c.Request.Context(), *item.ID); err != nil {
		if errors.Is(err, domainerror.ErrNotFound) {
			fail(c, http.StatusNotFound, "item not found")
			return
		}
		internalError(c, "delete item", err)
		return
	}

	respond(c, http.StatusOK, "item deleted", nil)
}

// loadItem resolves the :id path parameter to an item on a list of the caller's home.
func (s *Server) loadItem(c *gin.Context) (*entity.ShoppingItem, bool) {
	id, ok := paramID(c, "id")
	if !ok {
		return nil, false
	}

	item, err := s.items.FindByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domainerror.ErrNotFound) {
			fail(c, http.StatusNotFound, "item not found")
			return nil, false
		}
		internalError(c, "find item", err)
		return nil, false
	}

	if _, ok := s.listInHome(c, item.ListID); !ok {
		return nil, false
	}
	return item, true
}
