// Package shopping implements the shopping list synchronisation core: the item cache,
// the list aggregator, the active/archived partitioner and the syncing state store.
package shopping

import (
	"sync"

	"github.com/household-hub/companion/internal/domain/entity"
)

// ItemCache holds the last fetched items per list.
// It is not authoritative and has no eviction beyond Invalidate, Retain and Clear.
// Every removal bumps the list's generation so a fetch that started earlier cannot
// write its older snapshot back.
type ItemCache struct {
	mu          sync.RWMutex
	entries     map[int64][]entity.ShoppingItem
	generations map[int64]uint64
	epoch       uint64
	closed      bool
	hits        int
	misses      int
}

// FetchTicket records the cache generation a fetch started from.
type FetchTicket struct {
	listID     int64
	generation uint64
	epoch      uint64
}

// NewItemCache creates an empty cache.
func NewItemCache() *ItemCache {
	return &ItemCache{
		entries:     make(map[int64][]entity.ShoppingItem),
		generations: make(map[int64]uint64),
	}
}

// Begin returns a ticket to be handed back to PutIfCurrent once the fetch completes.
func (c *ItemCache) Begin(listID int64) FetchTicket {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return FetchTicket{listID: listID, generation: c.generations[listID], epoch: c.epoch}
}

// PutIfCurrent stores items only if the list was not invalidated since the ticket was taken.
// It reports whether the items were stored.
func (c *ItemCache) PutIfCurrent(ticket FetchTicket, items []entity.ShoppingItem) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || ticket.epoch != c.epoch || ticket.generation != c.generations[ticket.listID] {
		return false
	}
	c.putLocked(ticket.listID, items)
	return true
}

// Get returns a copy of the cached items for the list.
func (c *ItemCache) Get(listID int64) ([]entity.ShoppingItem, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	items, ok := c.entries[listID]
	if !ok {
		c.misses++
		return nil, false
	}
	c.hits++
	return entity.CloneItems(items), true
}

// Put stores a copy of items for the list, overwriting any previous entry.
func (c *ItemCache) Put(listID int64, items []entity.ShoppingItem) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.putLocked(listID, items)
}

func (c *ItemCache) putLocked(listID int64, items []entity.ShoppingItem) {
	stored := entity.CloneItems(items)
	if stored == nil {
		stored = []entity.ShoppingItem{}
	}
	c.entries[listID] = stored
}

// Invalidate removes the entry for the list.
func (c *ItemCache) Invalidate(listID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, listID)
	c.generations[listID]++
}

// Retain drops every entry whose list is not in keep.
func (c *ItemCache) Retain(keep map[int64]struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for listID := range c.entries {
		if _, ok := keep[listID]; !ok {
			delete(c.entries, listID)
			c.generations[listID]++
		}
	}
}

// Clear removes every entry.
func (c *ItemCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.clearLocked()
}

// Close clears the cache and refuses every later write.
func (c *ItemCache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.clearLocked()
	c.closed = true
}

func (c *ItemCache) clearLocked() {
	c.entries = make(map[int64][]entity.ShoppingItem)
	c.generations = make(map[int64]uint64)
	c.epoch++
}

// Len returns the number of cached lists.
func (c *ItemCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// Stats returns the hit and miss counters.
func (c *ItemCache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.hits, c.misses
}
