package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/household-hub/companion/internal/application/adapter"
	"github.com/household-hub/companion/internal/domain/entity"
	domainerror "github.com/household-hub/companion/internal/domain/error"
	"github.com/household-hub/companion/internal/integration/notify/templates"
)

// EmailNotifier renders notifications and sends them to the household address.
type EmailNotifier struct {
	sender    Sender
	renderer  *templates.Renderer
	recipient string
}

// NewEmailNotifier creates a new EmailNotifier.
func NewEmailNotifier(sender Sender, renderer *templates.Renderer, recipient string) *EmailNotifier {
	return &EmailNotifier{
		sender:    sender,
		renderer:  renderer,
		recipient: recipient,
	}
}

// Notify renders and sends a single notification.
func (n *EmailNotifier) Notify(ctx context.Context, notification entity.Notification) error {
	if n.recipient == "" {
		return domainerror.NewNotifyError(domainerror.ErrCodeNoRecipient, "no household address configured", domainerror.ErrNoRecipient)
	}

	msg, err := n.render(notification)
	if err != nil {
		return domainerror.NewNotifyError(domainerror.ErrCodePermanentNotifyFailure, "failed to render notification", err)
	}

	id, err := n.sender.Send(ctx, msg)
	if err != nil {
		return err
	}

	slog.Info("Notification sent",
		"kind", notification.Kind,
		"list_id", notification.ListID,
		"message_id", id,
	)
	return nil
}

func (n *EmailNotifier) render(notification entity.Notification) (Message, error) {
	switch notification.Kind {
	case entity.NotificationListCompleted:
		html, text, err := n.renderer.Render(templates.ListCompleted, templates.ListCompletedData{
			ListTitle:   notification.ListTitle,
			ActorName:   notification.ActorName,
			Total:       notification.Total.StringFixed(2),
			CompletedAt: notification.OccurredAt.Format(time.DateOnly),
		})
		if err != nil {
			return Message{}, err
		}
		return Message{
			To:      n.recipient,
			Subject: fmt.Sprintf("Shopping list %q completed", notification.ListTitle),
			HTML:    html,
			Text:    text,
		}, nil
	default:
		return Message{}, fmt.Errorf("unknown notification kind %q", notification.Kind)
	}
}

// LogNotifier only logs notifications. It is used when no e-mail provider is configured.
type LogNotifier struct{}

// Notify implements adapter.Notifier.
func (LogNotifier) Notify(ctx context.Context, notification entity.Notification) error {
	slog.Info("Notification",
		"kind", notification.Kind,
		"home_id", notification.HomeID,
		"list_id", notification.ListID,
		"list_title", notification.ListTitle,
		"actor_id", notification.ActorID,
		"total", notification.Total.String(),
	)
	return nil
}

var (
	_ adapter.Notifier = (*EmailNotifier)(nil)
	_ adapter.Notifier = LogNotifier{}
)
