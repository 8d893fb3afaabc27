package shopping

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/household-hub/companion/internal/application/adapter/mocks"
	"github.com/household-hub/companion/internal/domain/entity"
	domainerror "github.com/household-hub/companion/internal/domain/error"
)

func int64Ptr(v int64) *int64 { return &v }

func item(id, listID int64, qty, price string, state entity.ItemState) entity.ShoppingItem {
	return entity.ShoppingItem{
		ID:          int64Ptr(id),
		Description: "item",
		Quantity:    decimal.RequireFromString(qty),
		UnitPrice:   decimal.RequireFromString(price),
		State:       state,
		ListID:      listID,
	}
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, decimal.RequireFromString(want).Equal(got), "expected %s, got %s", want, got)
}

func TestAggregator_EmbeddedTotalSkipsItemFetch(t *testing.T) {
	remote := &mocks.RemoteListService{}
	total := decimal.RequireFromString("42.50")
	lists := []entity.ShoppingList{{ID: int64Ptr(1), Title: "weekly", HomeID: 5, Total: &total}}

	agg := NewAggregator(remote, NewItemCache(), 2)
	out := agg.Aggregate(context.Background(), lists)

	require.Len(t, out, 1)
	requireDecimal(t, "42.50", out[0].TotalPrice)
	require.False(t, out[0].Degraded)
	remote.AssertNotCalled(t, "FetchItemsByList", mock.Anything, mock.Anything)
}

func TestAggregator_EmbeddedItemsSkipItemFetch(t *testing.T) {
	remote := &mocks.RemoteListService{}
	lists := []entity.ShoppingList{{
		ID:     int64Ptr(1),
		HomeID: 5,
		Items: []entity.ShoppingItem{
			item(1, 1, "2", "1.50", entity.ItemStatePurchased),
			item(2, 1, "1", "4.00", entity.ItemStatePending),
		},
	}}

	out := NewAggregator(remote, NewItemCache(), 2).Aggregate(context.Background(), lists)

	require.Len(t, out, 1)
	requireDecimal(t, "7.00", out[0].TotalPrice)
	require.Equal(t, 2, out[0].TotalItems)
	require.Equal(t, 1, out[0].CompletedItems)
	remote.AssertNotCalled(t, "FetchItemsByList", mock.Anything, mock.Anything)
}

func TestAggregator_PartialFailureIsolation(t *testing.T) {
	remote := &mocks.RemoteListService{}
	remote.On("FetchItemsByList", mock.Anything, int64(1)).Return([]entity.ShoppingItem{
		item(10, 1, "3", "2.00", entity.ItemStatePurchased),
	}, nil)
	remote.On("FetchItemsByList", mock.Anything, int64(2)).Return(nil, domainerror.NewRemoteFailure("server error", 500, nil))
	remote.On("FetchItemsByList", mock.Anything, int64(3)).Return([]entity.ShoppingItem{
		item(30, 3, "1", "9.99", entity.ItemStatePending),
		item(31, 3, "2", "0.50", entity.ItemStatePurchased),
	}, nil)

	lists := []entity.ShoppingList{
		{ID: int64Ptr(1), HomeID: 5},
		{ID: int64Ptr(2), HomeID: 5},
		{ID: int64Ptr(3), HomeID: 5},
	}

	out := NewAggregator(remote, NewItemCache(), 3).Aggregate(context.Background(), lists)

	require.Len(t, out, 3)

	require.Equal(t, int64(1), *out[0].List.ID)
	requireDecimal(t, "6.00", out[0].TotalPrice)
	require.Equal(t, 1, out[0].TotalItems)
	require.False(t, out[0].Degraded)

	require.Equal(t, int64(2), *out[1].List.ID)
	requireDecimal(t, "0", out[1].TotalPrice)
	require.Equal(t, 0, out[1].TotalItems)
	require.True(t, out[1].Degraded)

	require.Equal(t, int64(3), *out[2].List.ID)
	requireDecimal(t, "10.99", out[2].TotalPrice)
	require.Equal(t, 2, out[2].TotalItems)
	require.Equal(t, 1, out[2].CompletedItems)
}

func TestAggregator_EmbeddedTotalIgnoresCachedItems(t *testing.T) {
	remote := &mocks.RemoteListService{}
	cache := NewItemCache()
	cache.Put(4, []entity.ShoppingItem{
		item(40, 4, "1", "1.00", entity.ItemStatePurchased),
		item(41, 4, "1", "1.00", entity.ItemStatePending),
	})

	total := decimal.RequireFromString("12.30")
	lists := []entity.ShoppingList{{ID: int64Ptr(4), HomeID: 5, Total: &total}}

	out := NewAggregator(remote, cache, 1).Aggregate(context.Background(), lists)

	require.Len(t, out, 1)
	requireDecimal(t, "12.30", out[0].TotalPrice)
	require.Equal(t, 0, out[0].TotalItems)
	require.Equal(t, 0, out[0].CompletedItems)
	remote.AssertNotCalled(t, "FetchItemsByList", mock.Anything, mock.Anything)
}

func TestAggregator_EmbeddedTotalAndItems(t *testing.T) {
	remote := &mocks.RemoteListService{}
	total := decimal.RequireFromString("10.00")
	lists := []entity.ShoppingList{{
		ID:     int64Ptr(8),
		HomeID: 5,
		Total:  &total,
		Items: []entity.ShoppingItem{
			item(80, 8, "2", "2.50", entity.ItemStatePurchased),
			item(81, 8, "1", "5.00", entity.ItemStatePending),
		},
	}}

	out := NewAggregator(remote, NewItemCache(), 1).Aggregate(context.Background(), lists)

	require.Len(t, out, 1)
	requireDecimal(t, "10.00", out[0].TotalPrice)
	require.Equal(t, 2, out[0].TotalItems)
	require.Equal(t, 1, out[0].CompletedItems)
	remote.AssertNotCalled(t, "FetchItemsByList", mock.Anything, mock.Anything)
}

func TestAggregator_FailedFetchDegradesToZero(t *testing.T) {
	remote := &mocks.RemoteListService{}
	remote.On("FetchItemsByList", mock.Anything, int64(2)).Return(nil, domainerror.NewRemoteFailure("bad gateway", 502, nil))

	lists := []entity.ShoppingList{{ID: int64Ptr(2), HomeID: 5}}
	out := NewAggregator(remote, NewItemCache(), 1).Aggregate(context.Background(), lists)

	require.Len(t, out, 1)
	require.True(t, out[0].Degraded)
	require.True(t, out[0].TotalPrice.IsZero())
	remote.AssertNumberOfCalls(t, "FetchItemsByList", 1)
}

func TestAggregator_UsesCacheOnSecondPass(t *testing.T) {
	remote := &mocks.RemoteListService{}
	remote.On("FetchItemsByList", mock.Anything, int64(7)).Return([]entity.ShoppingItem{
		item(70, 7, "1", "3.00", entity.ItemStatePending),
	}, nil).Once()

	lists := []entity.ShoppingList{{ID: int64Ptr(7), HomeID: 5}}
	cache := NewItemCache()
	agg := NewAggregator(remote, cache, 1)

	first := agg.Aggregate(context.Background(), lists)
	second := agg.Aggregate(context.Background(), lists)

	requireDecimal(t, "3.00", first[0].TotalPrice)
	requireDecimal(t, "3.00", second[0].TotalPrice)
	remote.AssertNumberOfCalls(t, "FetchItemsByList", 1)

	hits, misses := cache.Stats()
	require.Equal(t, 1, hits)
	require.Equal(t, 1, misses)
}

func TestAggregator_PreservesOrderAndCardinality(t *testing.T) {
	remote := &mocks.RemoteListService{}
	lists := make([]entity.ShoppingList, 0, 20)
	for i := int64(1); i <= 20; i++ {
		remote.On("FetchItemsByList", mock.Anything, i).Return([]entity.ShoppingItem{
			item(i*100, i, "1", decimal.NewFromInt(i).String(), entity.ItemStatePending),
		}, nil)
		lists = append(lists, entity.ShoppingList{ID: int64Ptr(i), HomeID: 5})
	}

	out := NewAggregator(remote, NewItemCache(), 4).Aggregate(context.Background(), lists)

	require.Len(t, out, len(lists))
	for i, agg := range out {
		require.Equal(t, *lists[i].ID, *agg.List.ID)
		require.True(t, decimal.NewFromInt(*lists[i].ID).Equal(agg.TotalPrice))
	}
}

func TestAggregator_UnsavedListHasZeroMetrics(t *testing.T) {
	remote := &mocks.RemoteListService{}

	out := NewAggregator(remote, NewItemCache(), 1).Aggregate(context.Background(), []entity.ShoppingList{{Title: "draft", HomeID: 5}})

	require.Len(t, out, 1)
	require.True(t, out[0].TotalPrice.IsZero())
	require.False(t, out[0].Degraded)
	remote.AssertNotCalled(t, "FetchItemsByList", mock.Anything, mock.Anything)
}
