package shopping

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/household-hub/companion/internal/application/adapter"
	"github.com/household-hub/companion/internal/domain/entity"
	domainerror "github.com/household-hub/companion/internal/domain/error"
)

// StoreConfig holds configuration for a Store.
type StoreConfig struct {
	// CallTimeout bounds every remote call. Zero disables the bound.
	CallTimeout time.Duration
	// FetchConcurrency bounds concurrent item fetches during aggregation.
	FetchConcurrency int
	// NotifyTimeout bounds a single notification dispatch.
	NotifyTimeout time.Duration
	// Now returns the current time; defaults to time.Now.
	Now func() time.Time
}

// DefaultStoreConfig returns the default store configuration.
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		CallTimeout:      10 * time.Second,
		FetchConcurrency: defaultFetchConcurrency,
		NotifyTimeout:    10 * time.Second,
		Now:              time.Now,
	}
}

// Store owns the authoritative shopping lists of one home for one session.
// Loads and mutations are serialised: a call made while another is in flight fails with
// ErrBusy. Observers only ever see complete snapshots.
type Store struct {
	remote     adapter.RemoteListService
	sessions   adapter.SessionProvider
	notifier   adapter.Notifier
	cache      *ItemCache
	aggregator *Aggregator
	cfg        StoreConfig

	mu          sync.Mutex
	status      entity.StoreStatus
	load        entity.LoadState
	homeID      int64
	lists       []entity.ShoppingList
	aggregated  []entity.AggregatedList
	lastError   string
	closed      bool
	subscribers map[int]func(entity.ListView)
	nextSubID   int
	notifyWG    sync.WaitGroup
}

// NewStore creates a new Store. The notifier may be nil.
func NewStore(remote adapter.RemoteListService, sessions adapter.SessionProvider, notifier adapter.Notifier, cfg StoreConfig) *Store {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	guarded := newGuardedRemote(remote, cfg.CallTimeout)
	cache := NewItemCache()

	return &Store{
		remote:      guarded,
		sessions:    sessions,
		notifier:    notifier,
		cache:       cache,
		aggregator:  NewAggregator(guarded, cache, cfg.FetchConcurrency),
		cfg:         cfg,
		status:      entity.StoreStatusIdle,
		load:        entity.LoadStateNotLoaded,
		subscribers: make(map[int]func(entity.ListView)),
	}
}

// Cache returns the store's item cache.
func (s *Store) Cache() *ItemCache {
	return s.cache
}

// LoadForHome replaces the authoritative collection with the backend's lists for the home.
func (s *Store) LoadForHome(ctx context.Context, homeID int64) (entity.ListView, error) {
	if _, err := s.requireSession(ctx); err != nil {
		return entity.ListView{}, err
	}
	if homeID <= 0 {
		return entity.ListView{}, validationError(domainerror.ErrCodeInvalidHome, "home id must be positive")
	}

	if _, err := s.acquire(entity.StoreStatusLoading, false); err != nil {
		return entity.ListView{}, err
	}

	ctx = context.WithoutCancel(ctx)
	lists, err := s.remote.FetchListsByHome(ctx, homeID)
	if err != nil {
		slog.Warn("Failed to load shopping lists", "home_id", homeID, "error", err)
		s.commitLoadFailure(err)
		return s.Snapshot(), err
	}

	s.cache.Retain(listIDs(lists))
	aggregated := s.aggregator.Aggregate(ctx, lists)

	if err := s.commit(homeID, lists, aggregated, ""); err != nil {
		return entity.ListView{}, err
	}
	return s.Snapshot(), nil
}

// Create creates a list for the home and re-fetches the home's lists from the backend.
func (s *Store) Create(ctx context.Context, title string, homeID int64) (*entity.ShoppingList, error) {
	session, err := s.requireSession(ctx)
	if err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, validationError(domainerror.ErrCodeBlankTitle, "title is required")
	}
	if homeID <= 0 {
		return nil, validationError(domainerror.ErrCodeInvalidHome, "home id must be positive")
	}

	prev, err := s.acquire(entity.StoreStatusMutating, true)
	if err != nil {
		return nil, err
	}

	ctx = context.WithoutCancel(ctx)
	draft := entity.NewShoppingList(title, homeID, session.UserID, s.cfg.Now())
	created, err := s.remote.CreateList(ctx, *draft)
	if err != nil {
		s.release(prev, err)
		return nil, err
	}
	if created == nil {
		created = draft
	}

	lists, err := s.remote.FetchListsByHome(ctx, homeID)
	refreshReason := ""
	if err != nil {
		// The list exists server-side; keep it visible until the next successful load.
		slog.Warn("Failed to refresh lists after create", "home_id", homeID, "error", err)
		refreshReason = domainerror.Reason(err)
		lists = append(s.listsFor(homeID), created.Clone())
	}

	s.cache.Retain(listIDs(lists))
	aggregated := s.aggregator.Aggregate(ctx, lists)

	if err := s.commit(homeID, lists, aggregated, refreshReason); err != nil {
		return nil, err
	}

	out := created.Clone()
	return &out, nil
}

// Update applies the given fields to a list the session has rights over.
func (s *Store) Update(ctx context.Context, id int64, fields entity.ListUpdate) (*entity.ShoppingList, error) {
	session, err := s.requireSession(ctx)
	if err != nil {
		return nil, err
	}
	if fields.IsEmpty() {
		return nil, validationError(domainerror.ErrCodeEmptyUpdate, "no fields to update")
	}
	if fields.Title != nil && strings.TrimSpace(*fields.Title) == "" {
		return nil, validationError(domainerror.ErrCodeBlankTitle, "title is required")
	}

	return s.replaceList(ctx, session, id, func(list *entity.ShoppingList) error {
		if fields.Title != nil {
			list.Title = strings.TrimSpace(*fields.Title)
		}
		if fields.StartedAt != nil {
			started := fields.StartedAt.UTC()
			list.StartedAt = &started
		}
		if fields.CompletedAt != nil {
			completed := fields.CompletedAt.UTC()
			list.CompletedAt = &completed
		}
		return nil
	})
}

// MarkComplete sets the completion date of a list, moving it to the archived bucket.
func (s *Store) MarkComplete(ctx context.Context, id int64) (*entity.ShoppingList, error) {
	session, err := s.requireSession(ctx)
	if err != nil {
		return nil, err
	}

	completed, err := s.replaceList(ctx, session, id, func(list *entity.ShoppingList) error {
		if list.IsArchived() {
			return validationError(domainerror.ErrCodeAlreadyDone, "list is already completed")
		}
		now := s.cfg.Now().UTC()
		list.CompletedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatchCompleted(session, *completed)
	return completed, nil
}

// Delete removes a list the session has rights over.
func (s *Store) Delete(ctx context.Context, id int64) error {
	session, err := s.requireSession(ctx)
	if err != nil {
		return err
	}

	prev, err := s.acquire(entity.StoreStatusMutating, true)
	if err != nil {
		return err
	}

	if _, err := s.authorize(session, id); err != nil {
		s.release(prev, nil)
		return err
	}

	ctx = context.WithoutCancel(ctx)
	if err := s.remote.DeleteList(ctx, id); err != nil {
		s.release(prev, err)
		return err
	}

	s.cache.Invalidate(id)

	s.mu.Lock()
	homeID := s.homeID
	lists := cloneLists(s.lists)
	s.mu.Unlock()

	for i := range lists {
		if lists[i].ID != nil && *lists[i].ID == id {
			lists = append(lists[:i], lists[i+1:]...)
			break
		}
	}

	aggregated := s.aggregator.Aggregate(ctx, lists)
	return s.commit(homeID, lists, aggregated, "")
}

// Items returns the items of a loaded list, from the cache when possible.
func (s *Store) Items(ctx context.Context, listID int64) ([]entity.ShoppingItem, error) {
	if _, err := s.requireSession(ctx); err != nil {
		return nil, err
	}
	if _, err := s.findList(listID); err != nil {
		return nil, err
	}
	return s.aggregator.ItemsFor(ctx, listID)
}

// CreateItem adds an item to a loaded list.
func (s *Store) CreateItem(ctx context.Context, item entity.ShoppingItem) (*entity.ShoppingItem, error) {
	if _, err := s.requireSession(ctx); err != nil {
		return nil, err
	}
	item.Description = strings.TrimSpace(item.Description)
	if item.State == "" {
		item.State = entity.ItemStatePending
	}
	if err := validateItem(item); err != nil {
		return nil, err
	}

	var created *entity.ShoppingItem
	err := s.mutateItems(ctx, item.ListID, func(ctx context.Context) error {
		var err error
		created, err = s.remote.CreateItem(ctx, item)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateItem applies the given fields to an item of a loaded list.
func (s *Store) UpdateItem(ctx context.Context, listID, itemID int64, fields entity.ItemUpdate) (*entity.ShoppingItem, error) {
	if _, err := s.requireSession(ctx); err != nil {
		return nil, err
	}

	var updated *entity.ShoppingItem
	err := s.mutateItems(ctx, listID, func(ctx context.Context) error {
		items, err := s.aggregator.ItemsFor(ctx, listID)
		if err != nil {
			return err
		}

		current, ok := findItem(items, itemID)
		if !ok {
			return domainerror.NewShoppingError(domainerror.ErrCodeItemNotFound, "item not found", domainerror.ErrNotFound)
		}

		next := applyItemUpdate(current, fields)
		if err := validateItem(next); err != nil {
			return err
		}

		updated, err = s.remote.UpdateItem(ctx, itemID, next)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteItem removes an item from a loaded list.
func (s *Store) DeleteItem(ctx context.Context, listID, itemID int64) error {
	if _, err := s.requireSession(ctx); err != nil {
		return err
	}

	return s.mutateItems(ctx, listID, func(ctx context.Context) error {
		return s.remote.DeleteItem(ctx, itemID)
	})
}

// Snapshot returns a copy of the current view.
func (s *Store) Snapshot() entity.ListView {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.viewLocked()
}

// Subscribe registers fn to receive every published view. The returned function unsubscribes.
func (s *Store) Subscribe(fn func(entity.ListView)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

// Close disposes the store: the cache is cleared and results of in-flight calls are discarded.
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	s.lists = nil
	s.aggregated = nil
	s.subscribers = make(map[int]func(entity.ListView))
	s.mu.Unlock()

	s.cache.Close()
}

// WaitNotifications blocks until dispatched notifications have finished.
func (s *Store) WaitNotifications() {
	s.notifyWG.Wait()
}

// replaceList runs an authorised in-place update of one list through UpdateList.
func (s *Store) replaceList(ctx context.Context, session *entity.Session, id int64, apply func(*entity.ShoppingList) error) (*entity.ShoppingList, error) {
	prev, err := s.acquire(entity.StoreStatusMutating, true)
	if err != nil {
		return nil, err
	}

	current, err := s.authorize(session, id)
	if err != nil {
		s.release(prev, nil)
		return nil, err
	}

	next := current.Clone()
	if err := apply(&next); err != nil {
		s.release(prev, nil)
		return nil, err
	}

	ctx = context.WithoutCancel(ctx)
	updated, err := s.remote.UpdateList(ctx, id, next)
	if err != nil {
		s.release(prev, err)
		return nil, err
	}
	if updated == nil {
		updated = &next
	}
	if updated.ID == nil {
		updated.ID = &id
	}

	s.cache.Invalidate(id)

	s.mu.Lock()
	homeID := s.homeID
	lists := cloneLists(s.lists)
	s.mu.Unlock()

	for i := range lists {
		if lists[i].ID != nil && *lists[i].ID == id {
			lists[i] = updated.Clone()
			break
		}
	}

	aggregated := s.aggregator.Aggregate(ctx, lists)
	if err := s.commit(homeID, lists, aggregated, ""); err != nil {
		return nil, err
	}

	out := updated.Clone()
	return &out, nil
}

// mutateItems runs an item mutation against a loaded list and re-aggregates on success.
func (s *Store) mutateItems(ctx context.Context, listID int64, call func(ctx context.Context) error) error {
	prev, err := s.acquire(entity.StoreStatusMutating, true)
	if err != nil {
		return err
	}

	if _, err := s.findList(listID); err != nil {
		s.release(prev, nil)
		return err
	}

	ctx = context.WithoutCancel(ctx)
	if err := call(ctx); err != nil {
		var remote *domainerror.RemoteFailure
		if errors.As(err, &remote) {
			s.release(prev, err)
		} else {
			s.release(prev, nil)
		}
		return err
	}

	s.cache.Invalidate(listID)

	s.mu.Lock()
	homeID := s.homeID
	lists := cloneLists(s.lists)
	s.mu.Unlock()

	for i := range lists {
		if lists[i].ID != nil && *lists[i].ID == listID {
			// Embedded metrics predate the mutation.
			lists[i].Items = nil
			lists[i].Total = nil
		}
	}

	aggregated := s.aggregator.Aggregate(ctx, lists)
	return s.commit(homeID, lists, aggregated, "")
}

func (s *Store) requireSession(ctx context.Context) (*entity.Session, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil, domainerror.NewShoppingError(domainerror.ErrCodeStoreClosed, "store is closed", domainerror.ErrStoreClosed)
	}

	if s.sessions == nil {
		return nil, authRequired(nil)
	}
	session, err := s.sessions.Current(ctx)
	if err != nil {
		return nil, authRequired(err)
	}
	if !session.IsActive(s.cfg.Now()) {
		return nil, authRequired(nil)
	}
	return session, nil
}

// acquire enters a busy state. It fails with ErrBusy while another call holds it.
func (s *Store) acquire(next entity.StoreStatus, requireLoaded bool) (entity.StoreStatus, error) {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()
		return "", domainerror.NewShoppingError(domainerror.ErrCodeStoreClosed, "store is closed", domainerror.ErrStoreClosed)
	}
	if s.status == entity.StoreStatusLoading || s.status == entity.StoreStatusMutating {
		s.mu.Unlock()
		return "", domainerror.NewShoppingError(domainerror.ErrCodeBusy, "another operation is in progress", domainerror.ErrBusy)
	}
	if requireLoaded && s.status != entity.StoreStatusLoaded {
		s.mu.Unlock()
		return "", domainerror.NewShoppingError(domainerror.ErrCodeNotLoaded, "lists are not loaded", domainerror.ErrNotLoaded)
	}

	prev := s.status
	s.status = next
	view, subscribers := s.viewLocked(), s.subscriberList()
	s.mu.Unlock()

	publish(subscribers, view)
	return prev, nil
}

// release leaves the busy state, restoring prev. A non-nil cause is recorded as LastError.
func (s *Store) release(prev entity.StoreStatus, cause error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.status = prev
	if cause != nil {
		s.lastError = domainerror.Reason(cause)
	}
	view, subscribers := s.viewLocked(), s.subscriberList()
	s.mu.Unlock()

	publish(subscribers, view)
}

func (s *Store) commitLoadFailure(cause error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.status = entity.StoreStatusLoadFailed
	s.load = entity.LoadStateFailed
	s.lastError = domainerror.Reason(cause)
	view, subscribers := s.viewLocked(), s.subscriberList()
	s.mu.Unlock()

	publish(subscribers, view)
}

// commit atomically publishes a new authoritative collection with its aggregation.
func (s *Store) commit(homeID int64, lists []entity.ShoppingList, aggregated []entity.AggregatedList, reason string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domainerror.NewShoppingError(domainerror.ErrCodeStoreClosed, "store is closed", domainerror.ErrStoreClosed)
	}
	s.homeID = homeID
	s.lists = lists
	s.aggregated = aggregated
	s.status = entity.StoreStatusLoaded
	s.load = entity.LoadStateLoaded
	s.lastError = reason
	view, subscribers := s.viewLocked(), s.subscriberList()
	s.mu.Unlock()

	publish(subscribers, view)
	return nil
}

// authorize finds the list and checks the session's rights over it.
func (s *Store) authorize(session *entity.Session, id int64) (entity.ShoppingList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, list := range s.lists {
		if list.ID != nil && *list.ID == id {
			if !session.CanModify(&list) {
				return entity.ShoppingList{}, domainerror.NewShoppingError(
					domainerror.ErrCodePermissionDenied,
					"not allowed to modify this list",
					domainerror.ErrPermissionDenied,
				)
			}
			return list.Clone(), nil
		}
	}
	return entity.ShoppingList{}, domainerror.NewShoppingError(domainerror.ErrCodeListNotFound, "list not found", domainerror.ErrNotFound)
}

func (s *Store) findList(id int64) (entity.ShoppingList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, list := range s.lists {
		if list.ID != nil && *list.ID == id {
			return list.Clone(), nil
		}
	}
	return entity.ShoppingList{}, domainerror.NewShoppingError(domainerror.ErrCodeListNotFound, "list not found", domainerror.ErrNotFound)
}

func (s *Store) listsFor(homeID int64) []entity.ShoppingList {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.homeID != homeID {
		return nil
	}
	return cloneLists(s.lists)
}

func (s *Store) dispatchCompleted(session *entity.Session, list entity.ShoppingList) {
	if s.notifier == nil || list.ID == nil {
		return
	}

	notification := entity.Notification{
		Kind:       entity.NotificationListCompleted,
		HomeID:     list.HomeID,
		ListID:     *list.ID,
		ListTitle:  list.Title,
		ActorID:    session.UserID,
		ActorName:  session.UserName,
		OccurredAt: s.cfg.Now().UTC(),
	}
	for _, agg := range s.Snapshot().Lists {
		if agg.List.ID != nil && *agg.List.ID == *list.ID {
			notification.Total = agg.TotalPrice
		}
	}

	s.notifyWG.Add(1)
	go func() {
		defer s.notifyWG.Done()

		ctx := context.Background()
		if s.cfg.NotifyTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.cfg.NotifyTimeout)
			defer cancel()
		}

		if err := s.notifier.Notify(ctx, notification); err != nil {
			slog.Warn("Failed to dispatch notification",
				"kind", notification.Kind,
				"list_id", notification.ListID,
				"error", err,
			)
		}
	}()
}

func (s *Store) viewLocked() entity.ListView {
	aggregated := make([]entity.AggregatedList, len(s.aggregated))
	for i, agg := range s.aggregated {
		aggregated[i] = agg
		aggregated[i].List = agg.List.Clone()
	}

	return entity.ListView{
		HomeID:    s.homeID,
		Status:    s.status,
		Load:      s.load,
		Lists:     aggregated,
		Partition: Partition(aggregated),
		LastError: s.lastError,
	}
}

func (s *Store) subscriberList() []func(entity.ListView) {
	out := make([]func(entity.ListView), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		out = append(out, fn)
	}
	return out
}

func publish(subscribers []func(entity.ListView), view entity.ListView) {
	for _, fn := range subscribers {
		fn(view)
	}
}

func validateItem(item entity.ShoppingItem) error {
	if strings.TrimSpace(item.Description) == "" {
		return validationError(domainerror.ErrCodeBlankItem, "item description is required")
	}
	if !item.Quantity.IsPositive() {
		return validationError(domainerror.ErrCodeInvalidQuantity, "quantity must be greater than zero")
	}
	if item.UnitPrice.IsNegative() {
		return validationError(domainerror.ErrCodeInvalidPrice, "unit price must not be negative")
	}
	if !item.State.IsValid() {
		return validationError(domainerror.ErrCodeInvalidState, "state must be 'pending' or 'purchased'")
	}
	if item.ListID <= 0 {
		return domainerror.NewShoppingError(domainerror.ErrCodeListNotFound, "list not found", domainerror.ErrNotFound)
	}
	return nil
}

func applyItemUpdate(item entity.ShoppingItem, fields entity.ItemUpdate) entity.ShoppingItem {
	if fields.Description != nil {
		item.Description = strings.TrimSpace(*fields.Description)
	}
	if fields.Quantity != nil {
		item.Quantity = *fields.Quantity
	}
	if fields.State != nil {
		item.State = *fields.State
	}
	if fields.UnitPrice != nil {
		item.UnitPrice = *fields.UnitPrice
	}
	if fields.CategoryID != nil {
		item.CategoryID = *fields.CategoryID
	}
	return item
}

func findItem(items []entity.ShoppingItem, id int64) (entity.ShoppingItem, bool) {
	for _, item := range items {
		if item.ID != nil && *item.ID == id {
			return item, true
		}
	}
	return entity.ShoppingItem{}, false
}

func listIDs(lists []entity.ShoppingList) map[int64]struct{} {
	ids := make(map[int64]struct{}, len(lists))
	for _, list := range lists {
		if list.ID != nil {
			ids[*list.ID] = struct{}{}
		}
	}
	return ids
}

func cloneLists(lists []entity.ShoppingList) []entity.ShoppingList {
	out := make([]entity.ShoppingList, len(lists))
	for i, list := range lists {
		out[i] = list.Clone()
	}
	return out
}

func authRequired(cause error) error {
	err := domainerror.ErrAuthRequired
	if cause != nil {
		err = fmt.Errorf("%w: %v", domainerror.ErrAuthRequired, cause)
	}
	return domainerror.NewShoppingError(domainerror.ErrCodeAuthRequired, "no active session", err)
}

func validationError(code domainerror.ShoppingErrorCode, message string) error {
	return domainerror.NewShoppingError(code, message, domainerror.ErrValidationFailed)
}
