package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/household-hub/companion/internal/domain/entity"
	domainerror "github.com/household-hub/companion/internal/domain/error"
	"github.com/household-hub/companion/internal/integration/notify/templates"
)

func completed(listID int64) entity.Notification {
	return entity.Notification{
		Kind:       entity.NotificationListCompleted,
		HomeID:     3,
		ListID:     listID,
		ListTitle:  "Weekly",
		ActorName:  "Ana",
		Total:      decimal.RequireFromString("42.5"),
		OccurredAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func newNotifier(t *testing.T, sender Sender, recipient string) *EmailNotifier {
	t.Helper()
	renderer, err := templates.NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}
	return NewEmailNotifier(sender, renderer, recipient)
}

func TestEmailNotifier_Notify(t *testing.T) {
	sender := NewMockSender()
	notifier := newNotifier(t, sender, "home@example.com")

	if err := notifier.Notify(context.Background(), completed(1)); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}

	sent := sender.Sent()
	if len(sent) != 1 {
		t.Fatalf("sent = %d, want 1", len(sent))
	}
	if sent[0].To != "home@example.com" {
		t.Errorf("To = %q", sent[0].To)
	}
	if !strings.Contains(sent[0].Subject, "Weekly") {
		t.Errorf("Subject = %q", sent[0].Subject)
	}
	if !strings.Contains(sent[0].Text, "42.50") {
		t.Errorf("Text = %q, want total 42.50", sent[0].Text)
	}
	if !strings.Contains(sent[0].HTML, "2026-03-01") {
		t.Errorf("HTML = %q, want completion date", sent[0].HTML)
	}
}

func TestEmailNotifier_Failures(t *testing.T) {
	t.Run("no recipient", func(t *testing.T) {
		err := newNotifier(t, NewMockSender(), "").Notify(context.Background(), completed(1))
		if !errors.Is(err, domainerror.ErrNoRecipient) {
			t.Errorf("error = %v, want ErrNoRecipient", err)
		}
	})

	t.Run("unknown kind is permanent", func(t *testing.T) {
		n := completed(1)
		n.Kind = "unknown"
		err := newNotifier(t, NewMockSender(), "home@example.com").Notify(context.Background(), n)

		var notifyErr *domainerror.NotifyError
		if !errors.As(err, &notifyErr) || notifyErr.Code != domainerror.ErrCodePermanentNotifyFailure {
			t.Errorf("error = %v, want permanent failure", err)
		}
	})

	t.Run("sender failure is returned", func(t *testing.T) {
		sender := NewMockSender()
		sender.FailNext(1, errors.New("rate limited"), false)
		err := newNotifier(t, sender, "home@example.com").Notify(context.Background(), completed(1))
		if err == nil {
			t.Error("Notify() expected error")
		}
	})
}

func TestIsPermanentError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("422 validation_error"), true},
		{errors.New("401 unauthorized"), true},
		{errors.New("429 rate limit exceeded"), false},
		{errors.New("500 internal server error"), false},
	}

	for _, tt := range tests {
		if got := isPermanentError(tt.err); got != tt.want {
			t.Errorf("isPermanentError(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func newTestQueue(t *testing.T, sender *MockSender, config QueueConfig) (*Queue, *time.Time) {
	t.Helper()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	queue := NewQueue(newNotifier(t, sender, "home@example.com"), config)
	queue.now = func() time.Time { return now }
	return queue, &now
}

func TestQueue_DeliversInBatches(t *testing.T) {
	sender := NewMockSender()
	queue, _ := newTestQueue(t, sender, QueueConfig{PollInterval: time.Second, BatchSize: 2, MaxAttempts: 3})
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		if err := queue.Notify(ctx, completed(i)); err != nil {
			t.Fatalf("Notify() error = %v", err)
		}
	}

	queue.ProcessNow(ctx)
	if got := len(sender.Sent()); got != 2 {
		t.Errorf("after first batch sent = %d, want 2", got)
	}

	queue.ProcessNow(ctx)
	if got := len(sender.Sent()); got != 3 {
		t.Errorf("after second batch sent = %d, want 3", got)
	}
	if queue.Len() != 0 {
		t.Errorf("Len() = %d, want 0", queue.Len())
	}
}

func TestQueue_RetriesTemporaryFailures(t *testing.T) {
	sender := NewMockSender()
	sender.FailNext(1, errors.New("503"), false)
	queue, now := newTestQueue(t, sender, QueueConfig{PollInterval: time.Second, BatchSize: 10, MaxAttempts: 3})
	ctx := context.Background()

	_ = queue.Notify(ctx, completed(1))
	queue.ProcessNow(ctx)
	if queue.Len() != 1 {
		t.Fatalf("Len() = %d, want job rescheduled", queue.Len())
	}

	queue.ProcessNow(ctx)
	if len(sender.Sent()) != 0 {
		t.Fatal("retry must wait for its schedule")
	}

	*now = now.Add(time.Second)
	queue.ProcessNow(ctx)
	if len(sender.Sent()) != 1 {
		t.Errorf("sent = %d, want 1 after retry", len(sender.Sent()))
	}
}

func TestQueue_DropsPermanentAndExhausted(t *testing.T) {
	t.Run("permanent", func(t *testing.T) {
		sender := NewMockSender()
		sender.FailNext(-1, errors.New("403"), true)
		queue, _ := newTestQueue(t, sender, QueueConfig{PollInterval: time.Second, BatchSize: 10, MaxAttempts: 3})

		_ = queue.Notify(context.Background(), completed(1))
		queue.ProcessNow(context.Background())
		if queue.Len() != 0 {
			t.Errorf("Len() = %d, want 0", queue.Len())
		}
	})

	t.Run("exhausted", func(t *testing.T) {
		sender := NewMockSender()
		sender.FailNext(-1, errors.New("503"), false)
		queue, now := newTestQueue(t, sender, QueueConfig{PollInterval: time.Second, BatchSize: 10, MaxAttempts: 2})
		ctx := context.Background()

		_ = queue.Notify(ctx, completed(1))
		queue.ProcessNow(ctx)
		*now = now.Add(time.Minute)
		queue.ProcessNow(ctx)
		if queue.Len() != 0 {
			t.Errorf("Len() = %d, want 0 after max attempts", queue.Len())
		}
	})
}

func TestQueue_Capacity(t *testing.T) {
	queue, _ := newTestQueue(t, NewMockSender(), QueueConfig{PollInterval: time.Second, Capacity: 1})

	if err := queue.Notify(context.Background(), completed(1)); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	if err := queue.Notify(context.Background(), completed(2)); !errors.Is(err, ErrQueueFull) {
		t.Errorf("Notify() error = %v, want ErrQueueFull", err)
	}
}

func TestQueue_StartStopsOnCancel(t *testing.T) {
	sender := NewMockSender()
	queue, _ := newTestQueue(t, sender, QueueConfig{PollInterval: 5 * time.Millisecond, BatchSize: 10, MaxAttempts: 1})
	_ = queue.Notify(context.Background(), completed(1))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		queue.Start(ctx)
		close(done)
	}()

	deadline := time.After(time.Second)
	for len(sender.Sent()) == 0 {
		select {
		case <-deadline:
			t.Fatal("worker did not deliver")
		case <-time.After(time.Millisecond):
		}
	}

	cancel()
	<-done
}
