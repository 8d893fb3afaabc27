package refbackend

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/household-hub/companion/internal/domain/entity"
	domainerror "github.com/household-hub/companion/internal/domain/error"
	"github.com/household-hub/companion/internal/integration/remote"
)

// listPayload converts a list to its wire form, carrying the total and items when present.
func listPayload(list entity.ShoppingList) remote.ListPayload {
	payload := remote.ListFromEntity(list)
	if list.Total != nil {
		total := *list.Total
		payload.Total = &total
	}
	if list.Items != nil {
		items := make([]remote.ItemPayload, len(list.Items))
		for i, item := range list.Items {
			items[i] = remote.ItemFromEntity(item)
		}
		payload.Items = &items
	}
	return payload
}

// listsByHome handles GET /homes/:homeId/shopping-lists requests.
func (s *Server) listsByHome(c *gin.Context) {
	homeID, ok := paramID(c, "homeId")
	if !ok {
		return
	}
	if !currentUser(c).BelongsTo(homeID) {
		fail(c, http.StatusForbidden, "not a member of this home")
		return
	}

	var (
		lists []entity.ShoppingList
		err   error
	)
	if c.Query("with_totals") == "true" {
		lists, err = s.lists.FindByHomeWithTotals(c.Request.Context(), homeID)
	} else {
		lists, err = s.lists.FindByHome(c.Request.Context(), homeID)
	}
	if err != nil {
		internalError(c, "list shopping lists", err)
		return
	}

	if c.Query("with_items") == "true" {
		if err := s.embedItems(c.Request.Context(), lists); err != nil {
			internalError(c, "list shopping items", err)
			return
		}
	}

	payload := make([]remote.ListPayload, len(lists))
	for i, list := range lists {
		payload[i] = listPayload(list)
	}
	respond(c, http.StatusOK, "shopping lists retrieved", payload)
}

// embedItems attaches every list's items, leaving an empty collection on lists without any.
func (s *Server) embedItems(ctx context.Context, lists []entity.ShoppingList) error {
	ids := make([]int64, 0, len(lists))
	for _, list := range lists {
		if list.ID != nil {
			ids = append(ids, *list.ID)
		}
	}

	items, err := s.items.FindByLists(ctx, ids)
	if err != nil {
		return err
	}

	byList := make(map[int64][]entity.ShoppingItem, len(lists))
	for _, item := range items {
		byList[item.ListID] = append(byList[item.ListID], item)
	}
	for i := range lists {
		if lists[i].ID == nil {
			continue
		}
		embedded := byList[*lists[i].ID]
		if embedded == nil {
			embedded = []entity.ShoppingItem{}
		}
		lists[i].Items = embedded
	}
	return nil
}

// createList handles POST /shopping-lists requests.
func (s *Server) createList(c *gin.Context) {
	var req remote.ListPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		fail(c, http.StatusBadRequest, "title is required")
		return
	}

	user := currentUser(c)
	if !user.BelongsTo(req.HomeID) {
		fail(c, http.StatusForbidden, "not a member of this home")
		return
	}

	list := entity.NewShoppingList(title, req.HomeID, user.ID, s.now())
	if req.StartDate != nil {
		list.StartedAt = req.StartDate
	}
	list.CompletedAt = req.EndDate

	if err := s.lists.Create(c.Request.Context(), list); err != nil {
		internalError(c, "create shopping list", err)
		return
	}

	respond(c, http.StatusCreated, "shopping list created", listPayload(*list))
}

// updateList handles PUT /shopping-lists/:id requests.
func (s *Server) updateList(c *gin.Context) {
	list, ok := s.loadList(c)
	if !ok {
		return
	}

	var req remote.ListPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		fail(c, http.StatusBadRequest, "title is required")
		return
	}

	list.Title = title
	list.StartedAt = req.StartDate
	list.CompletedAt = req.EndDate

	if err := s.lists.Update(c.Request.Context(), list); err != nil {
		internalError(c, "update shopping list", err)
		return
	}

	respond(c, http.StatusOK, "shopping list updated", listPayload(*list))
}

// deleteList handles DELETE /shopping-lists/:id requests.
func (s *Server) deleteList(c *gin.Context) {
	list, ok := s.loadList(c)
	if !ok {
		return
	}

	user := currentUser(c)
	if list.OwnerID != user.ID && user.Role != entity.UserRoleAdmin {
		fail(c, http.StatusForbidden, "only the owner or an admin can delete this list")
		return
	}

	if err := s.lists.Delete(c.Request.Context(), *list.ID); err != nil {
		if errors.Is(err, domainerror.ErrNotFound) {
			fail(c, http.StatusNotFound, "shopping list not found")
			return
		}
		internalError(c, "delete shopping list", err)
		return
	}

	respond(c, http.StatusOK, "shopping list deleted", nil)
}

// itemsByList handles GET /shopping-lists/:id/items requests.
func (s *Server) itemsByList(c *gin.Context) {
	list, ok := s.loadList(c)
	if !ok {
		return
	}

	items, err := s.items.FindByList(c.Request.Context(), *list.ID)
	if err != nil {
		internalError(c, "list items", err)
		return
	}

	payload := make([]remote.ItemPayload, len(items))
	for i, item := range items {
		payload[i] = remote.ItemFromEntity(item)
	}
	respond(c, http.StatusOK, "items retrieved", payload)
}

// loadList resolves the :id path parameter to a list of the caller's home.
func (s *Server) loadList(c *gin.Context) (*entity.ShoppingList, bool) {
	id, ok := paramID(c, "id")
	if !ok {
		return nil, false
	}
	return s.listInHome(c, id)
}

func (s *Server) listInHome(c *gin.Context, id int64) (*entity.ShoppingList, bool) {
	list, err := s.lists.FindByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domainerror.ErrNotFound) {
			fail(c, http.StatusNotFound, "shopping list not found")
			return nil, false
		}
		internalError(c, "find shopping list", err)
		return nil, false
	}

	if !currentUser(c).BelongsTo(list.HomeID) {
		fail(c, http.StatusForbidden, "not a member of this home")
		return nil, false
	}
	return list, true
}
