// Package entity defines the core business entities for the domain layer.
package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// NotificationKind identifies the household event being announced.
type NotificationKind string

const (
	NotificationListCompleted NotificationKind = "list_completed"
)

// Notification is a fire-and-forget event addressed to household members.
type Notification struct {
	Kind       NotificationKind
	HomeID     int64
	ListID     int64
	ListTitle  string
	ActorID    int64
	ActorName  string
	Total      decimal.Decimal
	OccurredAt time.Time
}
