package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/household-hub/companion/internal/application/adapter"
	"github.com/household-hub/companion/internal/domain/entity"
	domainerror "github.com/household-hub/companion/internal/domain/error"
)

// ErrQueueFull is returned when a notification cannot be queued.
var ErrQueueFull = errors.New("notification queue is full")

// QueueConfig holds configuration for the notification queue.
type QueueConfig struct {
	PollInterval time.Duration
	BatchSize    int
	MaxAttempts  int
	Capacity     int
}

// DefaultQueueConfig returns the default queue configuration.
func DefaultQueueConfig() QueueConfig {
	return QueueConfig{
		PollInterval: 5 * time.Second,
		BatchSize:    10,
		MaxAttempts:  3,
		Capacity:     256,
	}
}

type job struct {
	notification entity.Notification
	attempts     int
	scheduledAt  time.Time
}

// Queue buffers notifications in memory and delivers them from a worker loop,
// retrying temporary failures.
type Queue struct {
	next   adapter.Notifier
	config QueueConfig
	now    func() time.Time

	mu      sync.Mutex
	pending []*job
}

// NewQueue creates a new notification queue in front of next.
func NewQueue(next adapter.Notifier, config QueueConfig) *Queue {
	return &Queue{
		next:   next,
		config: config,
		now:    time.Now,
	}
}

// Notify enqueues the notification. It never blocks on delivery.
func (q *Queue) Notify(ctx context.Context, notification entity.Notification) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.config.Capacity > 0 && len(q.pending) >= q.config.Capacity {
		return ErrQueueFull
	}
	q.pending = append(q.pending, &job{notification: notification, scheduledAt: q.now()})
	return nil
}

// Len returns the number of queued notifications.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Start begins the worker loop. It blocks until the context is cancelled.
func (q *Queue) Start(ctx context.Context) {
	slog.Info("Notification worker started",
		"poll_interval", q.config.PollInterval,
		"batch_size", q.config.BatchSize,
	)

	ticker := time.NewTicker(q.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Notification worker shutting down", "pending", q.Len())
			return
		case <-ticker.C:
			q.processBatch(ctx)
		}
	}
}

// ProcessNow delivers all due notifications immediately.
func (q *Queue) ProcessNow(ctx context.Context) {
	q.processBatch(ctx)
}

func (q *Queue) processBatch(ctx context.Context) {
	batch := q.takeDue()
	if len(batch) == 0 {
		return
	}

	slog.Debug("Processing notification batch", "count", len(batch))

	for i, j := range batch {
		if ctx.Err() != nil {
			q.requeue(batch[i:]...)
			return
		}
		q.processJob(ctx, j)
	}
}

func (q *Queue) processJob(ctx context.Context, j *job) {
	logger := slog.With(
		"kind", j.notification.Kind,
		"list_id", j.notification.ListID,
	)

	j.attempts++
	err := q.next.Notify(ctx, j.notification)
	if err == nil {
		return
	}

	var notifyErr *domainerror.NotifyError
	permanent := errors.As(err, &notifyErr) &&
		(notifyErr.Code == domainerror.ErrCodePermanentNotifyFailure || notifyErr.Code == domainerror.ErrCodeNoRecipient)

	if permanent || j.attempts >= q.config.MaxAttempts {
		logger.Warn("Notification permanently failed",
			"attempts", j.attempts,
			"error", err,
		)
		return
	}

	j.scheduledAt = q.now().Add(time.Duration(j.attempts) * q.config.PollInterval)
	logger.Info("Notification scheduled for retry",
		"attempts", j.attempts,
		"scheduled_at", j.scheduledAt,
		"error", err,
	)
	q.requeue(j)
}

// takeDue removes up to BatchSize due jobs from the queue.
func (q *Queue) takeDue() []*job {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	var due []*job
	remaining := q.pending[:0]
	for _, j := range q.pending {
		if (q.config.BatchSize <= 0 || len(due) < q.config.BatchSize) && !j.scheduledAt.After(now) {
			due = append(due, j)
			continue
		}
		remaining = append(remaining, j)
	}
	q.pending = remaining
	return due
}

func (q *Queue) requeue(jobs ...*job) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, jobs...)
}

var _ adapter.Notifier = (*Queue)(nil)
