// Package entity defines the core business entities for the domain layer.
package entity

// LoadState distinguishes "not fetched yet" from "fetched and empty".
type LoadState string

const (
	LoadStateNotLoaded LoadState = "not_loaded"
	LoadStateLoaded    LoadState = "loaded"
	LoadStateFailed    LoadState = "failed"
)

// StoreStatus is the state of a list store's state machine.
type StoreStatus string

const (
	StoreStatusIdle       StoreStatus = "idle"
	StoreStatusLoading    StoreStatus = "loading"
	StoreStatusLoaded     StoreStatus = "loaded"
	StoreStatusLoadFailed StoreStatus = "load_failed"
	StoreStatusMutating   StoreStatus = "mutating"
)

// ListPartition splits aggregated lists by completion.
type ListPartition struct {
	Active   []AggregatedList
	Archived []AggregatedList
}

// ListView is the immutable snapshot observers receive from a list store.
type ListView struct {
	HomeID    int64
	Status    StoreStatus
	Load      LoadState
	Lists     []AggregatedList
	Partition ListPartition
	// LastError holds the reason of the most recent failed load or mutation.
	LastError string
}
