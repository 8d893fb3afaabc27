package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/household-hub/companion/internal/application/adapter"
	"github.com/household-hub/companion/internal/application/adapter/mocks"
	"github.com/household-hub/companion/internal/application/shopping"
	"github.com/household-hub/companion/internal/domain/entity"
	domainerror "github.com/household-hub/companion/internal/domain/error"
	"github.com/household-hub/companion/internal/integration/entrypoint/dto"
	"github.com/household-hub/companion/internal/integration/entrypoint/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func ptr[T any](v T) *T { return &v }

type testAPI struct {
	engine *gin.Engine
	remote *mocks.RemoteListService
}

func newTestAPI(t *testing.T, session *entity.Session) *testAPI {
	t.Helper()
	remote := &mocks.RemoteListService{}
	registry := shopping.NewRegistry(func(s *entity.Session) *shopping.Store {
		provider := adapter.SessionProviderFunc(func(context.Context) (*entity.Session, error) { return s, nil })
		cfg := shopping.DefaultStoreConfig()
		cfg.CallTimeout = time.Second
		return shopping.NewStore(remote, provider, nil, cfg)
	})
	t.Cleanup(registry.CloseAll)

	lists := NewShoppingListController(registry)
	items := NewShoppingItemController(registry)

	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		if session != nil {
			c.Set(string(middleware.SessionKey), session)
		}
		c.Next()
	})
	engine.GET("/homes/:homeId/lists", lists.List)
	engine.POST("/homes/:homeId/lists", lists.Create)
	engine.GET("/lists", lists.View)
	engine.PATCH("/lists/:id", lists.Update)
	engine.DELETE("/lists/:id", lists.Delete)
	engine.POST("/lists/:id/complete", lists.Complete)
	engine.GET("/lists/:id/items", items.List)
	engine.POST("/lists/:id/items", items.Create)
	engine.PATCH("/lists/:id/items/:itemId", items.Update)
	engine.DELETE("/lists/:id/items/:itemId", items.Delete)

	return &testAPI{engine: engine, remote: remote}
}

func (a *testAPI) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	a.engine.ServeHTTP(rec, req)
	return rec
}

func member(id int64) *entity.Session {
	return &entity.Session{ID: "s", UserID: id, Role: entity.UserRoleMember, LoggedIn: true}
}

func savedList(id, owner int64, title string, total string, completed bool) entity.ShoppingList {
	l := entity.ShoppingList{ID: ptr(id), Title: title, HomeID: 3, OwnerID: owner}
	if total != "" {
		l.Total = ptr(decimal.RequireFromString(total))
	}
	if completed {
		l.CompletedAt = ptr(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	}
	return l
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestShoppingList_ListPartitions(t *testing.T) {
	api := newTestAPI(t, member(1))
	api.remote.On("FetchListsByHome", mock.Anything, int64(3)).Return([]entity.ShoppingList{
		savedList(1, 1, "weekly", "12.5", false),
		savedList(2, 1, "party", "40", true),
	}, nil)

	rec := api.do(http.MethodGet, "/homes/3/lists", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var view dto.ListViewResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.Equal(t, "loaded", view.Status)
	require.Len(t, view.Active, 1)
	require.Len(t, view.Archived, 1)
	require.Equal(t, "12.50", view.Active[0].TotalPrice)
	require.True(t, view.Archived[0].Archived)

	rec = api.do(http.MethodGet, "/lists", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"weekly"`)
}

func TestShoppingList_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		session    *entity.Session
		setup      func(*testAPI)
		method     string
		path       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "no session",
			method:     http.MethodGet,
			path:       "/homes/3/lists",
			wantStatus: http.StatusUnauthorized,
			wantCode:   string(domainerror.ErrCodeAuthRequired),
		},
		{
			name:       "logged out session",
			session:    &entity.Session{ID: "s", UserID: 1},
			method:     http.MethodGet,
			path:       "/homes/3/lists",
			wantStatus: http.StatusUnauthorized,
			wantCode:   string(domainerror.ErrCodeAuthRequired),
		},
		{
			name:       "bad home id",
			session:    member(1),
			method:     http.MethodGet,
			path:       "/homes/abc/lists",
			wantStatus: http.StatusBadRequest,
			wantCode:   string(domainerror.ErrCodeInvalidHome),
		},
		{
			name:    "backend failure",
			session: member(1),
			setup: func(a *testAPI) {
				a.remote.On("FetchListsByHome", mock.Anything, int64(3)).
					Return(nil, domainerror.NewRemoteFailure("database offline", http.StatusInternalServerError, nil))
			},
			method:     http.MethodGet,
			path:       "/homes/3/lists",
			wantStatus: http.StatusBadGateway,
			wantCode:   string(domainerror.ErrCodeRemoteFailure),
		},
		{
			name:       "create before load",
			session:    member(1),
			method:     http.MethodPost,
			path:       "/homes/3/lists",
			body:       `{"title":"weekly"}`,
			wantStatus: http.StatusConflict,
			wantCode:   string(domainerror.ErrCodeNotLoaded),
		},
		{
			name:       "blank title",
			session:    member(1),
			method:     http.MethodPost,
			path:       "/homes/3/lists",
			body:       `{"title":"   "}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   string(domainerror.ErrCodeBlankTitle),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI(t, tt.session)
			if tt.setup != nil {
				tt.setup(api)
			}

			rec := api.do(tt.method, tt.path, tt.body)
			require.Equal(t, tt.wantStatus, rec.Code)
			require.Equal(t, tt.wantCode, decodeError(t, rec).Code)
		})
	}
}

func TestShoppingList_MutationsAfterLoad(t *testing.T) {
	api := newTestAPI(t, member(1))
	api.remote.On("FetchListsByHome", mock.Anything, int64(3)).Return([]entity.ShoppingList{
		savedList(1, 1, "weekly", "0", false),
		savedList(2, 99, "someone else's", "0", false),
	}, nil)
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/homes/3/lists", "").Code)

	t.Run("permission denied", func(t *testing.T) {
		rec := api.do(http.MethodDelete, "/lists/2", "")
		require.Equal(t, http.StatusForbidden, rec.Code)
		require.Equal(t, string(domainerror.ErrCodePermissionDenied), decodeError(t, rec).Code)
	})

	t.Run("not found", func(t *testing.T) {
		rec := api.do(http.MethodPatch, "/lists/77", `{"title":"x"}`)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("rename", func(t *testing.T) {
		renamed := savedList(1, 1, "weekly groceries", "0", false)
		api.remote.On("UpdateList", mock.Anything, int64(1), mock.Anything).Return(&renamed, nil).Once()

		rec := api.do(http.MethodPatch, "/lists/1", `{"title":"weekly groceries"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp dto.ListResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, "weekly groceries", resp.Title)
	})

	t.Run("complete", func(t *testing.T) {
		done := savedList(1, 1, "weekly groceries", "0", true)
		api.remote.On("UpdateList", mock.Anything, int64(1), mock.Anything).Return(&done, nil).Once()

		rec := api.do(http.MethodPost, "/lists/1/complete", "")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), `"archived":true`)
	})

	t.Run("delete", func(t *testing.T) {
		api.remote.On("DeleteList", mock.Anything, int64(1)).Return(nil).Once()

		rec := api.do(http.MethodDelete, "/lists/1", "")
		require.Equal(t, http.StatusNoContent, rec.Code)
	})
}

func TestShoppingItem_Lifecycle(t *testing.T) {
	api := newTestAPI(t, member(1))
	api.remote.On("FetchListsByHome", mock.Anything, int64(3)).Return([]entity.ShoppingList{
		savedList(7, 1, "weekly", "", false),
	}, nil)

	milk := entity.ShoppingItem{
		ID: ptr(int64(70)), Description: "milk", Quantity: decimal.NewFromInt(2),
		UnitPrice: decimal.RequireFromString("0.99"), State: entity.ItemStatePending, ListID: 7,
	}
	api.remote.On("FetchItemsByList", mock.Anything, int64(7)).Return([]entity.ShoppingItem{milk}, nil)
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/homes/3/lists", "").Code)

	rec := api.do(http.MethodGet, "/lists/7/items", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var items []dto.ItemResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 1)
	require.Equal(t, "1.98", items[0].LineTotal)

	rec = api.do(http.MethodPost, "/lists/7/items", `{"description":"eggs","quantity":0,"unit_price":"2.10"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, string(domainerror.ErrCodeInvalidQuantity), decodeError(t, rec).Code)

	eggs := entity.ShoppingItem{
		ID: ptr(int64(71)), Description: "eggs", Quantity: decimal.NewFromInt(12),
		UnitPrice: decimal.RequireFromString("0.25"), State: entity.ItemStatePending, ListID: 7,
	}
	api.remote.On("CreateItem", mock.Anything, mock.MatchedBy(func(i entity.ShoppingItem) bool {
		return i.Description == "eggs" && i.ListID == 7 && i.State == entity.ItemStatePending
	})).Return(&eggs, nil).Once()

	rec = api.do(http.MethodPost, "/lists/7/items", `{"description":"eggs","quantity":12,"unit_price":"0.25"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Contains(t, rec.Body.String(), `"line_total":"3.00"`)

	purchased := milk
	purchased.State = entity.ItemStatePurchased
	api.remote.On("UpdateItem", mock.Anything, int64(70), mock.MatchedBy(func(i entity.ShoppingItem) bool {
		return i.State == entity.ItemStatePurchased
	})).Return(&purchased, nil).Once()

	rec = api.do(http.MethodPatch, "/lists/7/items/70", `{"state":"purchased"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(http.MethodPatch, "/lists/7/items/999", `{"state":"purchased"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)

	api.remote.On("DeleteItem", mock.Anything, int64(70)).Return(nil).Once()
	rec = api.do(http.MethodDelete, "/lists/7/items/70", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
}
