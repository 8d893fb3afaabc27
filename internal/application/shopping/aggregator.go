package shopping

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/household-hub/companion/internal/application/adapter"
	"github.com/household-hub/companion/internal/domain/entity"
)

// defaultFetchConcurrency bounds the number of item fetches in flight per aggregation.
const defaultFetchConcurrency = 4

// Aggregator computes total price, item count and completed count per list.
type Aggregator struct {
	remote      adapter.RemoteListService
	cache       *ItemCache
	concurrency int
}

// NewAggregator creates a new Aggregator. A concurrency below 1 uses the default.
func NewAggregator(remote adapter.RemoteListService, cache *ItemCache, concurrency int) *Aggregator {
	if concurrency < 1 {
		concurrency = defaultFetchConcurrency
	}
	return &Aggregator{
		remote:      remote,
		cache:       cache,
		concurrency: concurrency,
	}
}

// Aggregate returns one AggregatedList per input list, in input order.
// A failed item fetch degrades only the affected list.
func (a *Aggregator) Aggregate(ctx context.Context, lists []entity.ShoppingList) []entity.AggregatedList {
	out := make([]entity.AggregatedList, len(lists))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	for i := range lists {
		i := i
		list := lists[i].Clone()

		if !needsRemoteItems(list) {
			out[i] = fromEmbedded(list, false)
			continue
		}

		g.Go(func() error {
			items, err := a.items(gctx, list)
			if err != nil {
				slog.Warn("Item fetch failed, using embedded metrics",
					"list_id", derefID(list.ID),
					"error", err,
				)
				out[i] = fromEmbedded(list, true)
				return nil
			}
			out[i] = fromItems(list, items)
			return nil
		})
	}

	// Workers never return an error; Wait only joins them.
	_ = g.Wait()

	return out
}

// ItemsFor returns the items of a list from the cache, fetching and caching on a miss.
// A fetch overtaken by an invalidation is returned but not cached.
func (a *Aggregator) ItemsFor(ctx context.Context, listID int64) ([]entity.ShoppingItem, error) {
	if items, ok := a.cache.Get(listID); ok {
		return items, nil
	}

	ticket := a.cache.Begin(listID)
	items, err := a.remote.FetchItemsByList(ctx, listID)
	if err != nil {
		return nil, err
	}
	if !a.cache.PutIfCurrent(ticket, items) {
		slog.Debug("Discarded stale item fetch", "list_id", listID)
	}
	return entity.CloneItems(items), nil
}

func (a *Aggregator) items(ctx context.Context, list entity.ShoppingList) ([]entity.ShoppingItem, error) {
	if list.ID == nil {
		// Never persisted, so the backend has nothing for it.
		return []entity.ShoppingItem{}, nil
	}
	return a.ItemsFor(ctx, *list.ID)
}

// needsRemoteItems reports whether the total cannot be derived from the list payload.
// An embedded total alone never triggers an item fetch, and its counts stay zero
// whatever the cache holds so that a view depends only on the payload.
func needsRemoteItems(list entity.ShoppingList) bool {
	return list.Total == nil && !list.HasEmbeddedItems()
}

// fromEmbedded derives metrics from what the backend embedded, zero otherwise.
func fromEmbedded(list entity.ShoppingList, degraded bool) entity.AggregatedList {
	agg := entity.AggregatedList{
		List:       list,
		TotalPrice: decimal.Zero,
		Degraded:   degraded,
	}
	if list.HasEmbeddedItems() {
		agg.TotalPrice = sumLineTotals(list.Items)
		agg.TotalItems, agg.CompletedItems = countItems(list.Items)
	}
	if list.Total != nil {
		agg.TotalPrice = *list.Total
	}
	return agg
}

// fromItems derives metrics from fetched items while still preferring embedded values.
func fromItems(list entity.ShoppingList, items []entity.ShoppingItem) entity.AggregatedList {
	agg := entity.AggregatedList{
		List:       list,
		TotalPrice: sumLineTotals(items),
	}
	agg.TotalItems, agg.CompletedItems = countItems(items)

	if list.Total != nil {
		agg.TotalPrice = *list.Total
	}
	if list.HasEmbeddedItems() {
		agg.TotalItems, agg.CompletedItems = countItems(list.Items)
	}
	return agg
}

func sumLineTotals(items []entity.ShoppingItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}

func countItems(items []entity.ShoppingItem) (total, completed int) {
	for _, item := range items {
		if item.IsPurchased() {
			completed++
		}
	}
	return len(items), completed
}

func derefID(id *int64) int64 {
	if id == nil {
		return 0
	}
	return *id
}
