// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"

	"github.com/household-hub/companion/internal/domain/entity"
)

// Notifier delivers household notifications. Callers treat it as fire-and-forget.
type Notifier interface {
	Notify(ctx context.Context, notification entity.Notification) error
}
