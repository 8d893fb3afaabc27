package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	domainerror "github.com/household-hub/companion/internal/domain/error"
	"github.com/household-hub/companion/internal/domain/entity"
)

func writeEnvelope(t *testing.T, w http.ResponseWriter, status int, success bool, message string, data any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(map[string]any{
		"success": success,
		"message": message,
		"data":    data,
	}))
}

func TestClient_FetchListsByHome(t *testing.T) {
	var gotAuth, gotRequestID, gotTotals, gotItems string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/homes/3/shopping-lists", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get(RequestIDHeader)
		gotTotals = r.URL.Query().Get("with_totals")
		gotItems = r.URL.Query().Get("with_items")
		writeEnvelope(t, w, http.StatusOK, true, "", []map[string]any{
			{"id": 1, "title": "weekly", "home_id": 3, "owner_id": 9, "total": 42.5},
			{"id": 2, "title": "party", "home_id": 3, "owner_id": 9, "items": []map[string]any{
				{"id": 10, "description": "chips", "quantity": 2, "state": "pending", "unit_price": 1.25, "list_id": 2},
			}},
			{"id": 3, "title": "empty", "home_id": 3, "owner_id": 9, "items": []map[string]any{}},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client(), time.Second).WithToken("secret")
	lists, err := client.FetchListsByHome(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, lists, 3)

	require.Equal(t, "Bearer secret", gotAuth)
	require.Equal(t, "true", gotTotals)
	require.Equal(t, "true", gotItems)
	_, err = uuid.Parse(gotRequestID)
	require.NoError(t, err)

	require.NotNil(t, lists[0].Total)
	require.True(t, lists[0].Total.Equal(decimal.RequireFromString("42.5")))
	require.Nil(t, lists[0].Items)

	require.Nil(t, lists[1].Total)
	require.Len(t, lists[1].Items, 1)
	require.True(t, lists[1].Items[0].LineTotal().Equal(decimal.RequireFromString("2.5")))
	require.Equal(t, entity.ItemStatePending, lists[1].Items[0].State)

	require.NotNil(t, lists[2].Items)
	require.Empty(t, lists[2].Items)
	require.True(t, lists[2].HasEmbeddedItems())
}

func TestClient_CreateListSendsOnlyPersistentFields(t *testing.T) {
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/shopping-lists", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		writeEnvelope(t, w, http.StatusCreated, true, "created", map[string]any{
			"id": 5, "title": "weekly", "home_id": 3, "owner_id": 9,
		})
	}))
	defer server.Close()

	total := decimal.NewFromInt(10)
	draft := entity.NewShoppingList("weekly", 3, 9, time.Now())
	draft.Total = &total
	draft.Items = []entity.ShoppingItem{}

	created, err := NewClient(server.URL, nil, time.Second).CreateList(context.Background(), *draft)
	require.NoError(t, err)
	require.Equal(t, int64(5), *created.ID)

	require.Equal(t, "weekly", body["title"])
	require.NotContains(t, body, "id")
	require.NotContains(t, body, "total")
	require.NotContains(t, body, "items")
}

func TestClient_ItemAmountsKeepDecimalPrecision(t *testing.T) {
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		writeEnvelope(t, w, http.StatusCreated, true, "created", map[string]any{
			"id": 11, "description": "rice", "quantity": "0.3", "state": "pending",
			"unit_price": "19.99", "list_id": 4,
		})
	}))
	defer server.Close()

	item := entity.NewShoppingItem(4, "rice", decimal.RequireFromString("0.3"), decimal.RequireFromString("19.99"), 1)
	created, err := NewClient(server.URL, nil, time.Second).CreateItem(context.Background(), *item)
	require.NoError(t, err)

	require.Equal(t, "0.3", body["quantity"])
	require.Equal(t, "19.99", body["unit_price"])
	require.True(t, created.Quantity.Equal(decimal.RequireFromString("0.3")))
	require.Equal(t, "5.997", created.LineTotal().String())
}

func TestClient_FailureMapping(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		success    bool
		message    string
		rawBody    string
		wantReason string
		wantStatus int
	}{
		{
			name:       "envelope failure carries message",
			status:     http.StatusConflict,
			message:    "title already used",
			wantReason: "title already used",
			wantStatus: http.StatusConflict,
		},
		{
			name:       "success false with 200",
			status:     http.StatusOK,
			message:    "home archived",
			wantReason: "home archived",
			wantStatus: http.StatusOK,
		},
		{
			name:       "empty message falls back to status text",
			status:     http.StatusForbidden,
			wantReason: "Forbidden",
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "non json error body",
			status:     http.StatusBadGateway,
			rawBody:    "<html>bad gateway</html>",
			wantReason: "Bad Gateway",
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "non json success body",
			status:     http.StatusOK,
			rawBody:    "ok",
			wantReason: "invalid response from backend",
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.rawBody != "" {
					w.WriteHeader(tt.status)
					_, _ = w.Write([]byte(tt.rawBody))
					return
				}
				writeEnvelope(t, w, tt.status, tt.success, tt.message, nil)
			}))
			defer server.Close()

			err := NewClient(server.URL, nil, time.Second).DeleteList(context.Background(), 1)
			require.ErrorIs(t, err, domainerror.ErrRemoteFailure)

			var failure *domainerror.RemoteFailure
			require.True(t, errors.As(err, &failure))
			require.Equal(t, tt.wantReason, failure.Reason)
			require.Equal(t, tt.wantStatus, failure.StatusCode)
		})
	}
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	_, err := NewClient(server.URL, nil, 20*time.Millisecond).FetchItemsByList(context.Background(), 1)

	var failure *domainerror.RemoteFailure
	require.True(t, errors.As(err, &failure))
	require.True(t, failure.IsTimeout())
}

func TestClient_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := NewClient(url, nil, time.Second).FetchItemsByList(context.Background(), 1)

	var failure *domainerror.RemoteFailure
	require.True(t, errors.As(err, &failure))
	require.Equal(t, "backend unreachable", failure.Reason)
}

func TestClient_Login(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/login", r.URL.Path)
		require.Empty(t, r.Header.Get("Authorization"))

		var req LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Password != "hunter2" {
			writeEnvelope(t, w, http.StatusUnauthorized, false, "invalid credentials", nil)
			return
		}
		writeEnvelope(t, w, http.StatusOK, true, "", map[string]any{
			"user_id": 9, "name": "Ana", "email": req.Email, "role": "owner", "token": "remote-token",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, nil, time.Second)

	login, err := client.Login(context.Background(), "ana@example.com", "hunter2")
	require.NoError(t, err)
	require.Equal(t, int64(9), login.UserID)
	require.Equal(t, "remote-token", login.Token)
	require.Equal(t, entity.UserRoleMember, login.Role)

	_, err = client.Login(context.Background(), "ana@example.com", "wrong")
	var failure *domainerror.RemoteFailure
	require.True(t, errors.As(err, &failure))
	require.Equal(t, http.StatusUnauthorized, failure.StatusCode)
}

func TestItemPayload_RoundTripKeepsPrecision(t *testing.T) {
	item := entity.ShoppingItem{
		Description: "milk",
		Quantity:    decimal.RequireFromString("1.5"),
		State:       entity.ItemStatePurchased,
		UnitPrice:   decimal.RequireFromString("0.99"),
		ListID:      4,
	}

	got := ItemFromEntity(item).ToEntity()
	require.True(t, got.Quantity.Equal(item.Quantity))
	require.True(t, got.UnitPrice.Equal(item.UnitPrice))
	require.Equal(t, item.State, got.State)
}
