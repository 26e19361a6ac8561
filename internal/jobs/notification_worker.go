package jobs

import (
	"context"
	"fmt"
	"log"

	"github.com/lazobello/cvagent/internal/domain"
)

const (
	// MaxNotificationAttempts caps confirmation e-mail retries per request.
	MaxNotificationAttempts = 3

	notificationBatchSize = 20
)

// NotificationRepository defines the persistence operations for pending
// confirmation deliveries.
type NotificationRepository interface {
	ListPendingNotifications(ctx context.Context, maxAttempts int32, limit int) ([]*domain.ContactRequest, error)
	MarkNotified(ctx context.Context, id string) error
	IncrementNotificationAttempts(ctx context.Context, id string) error
}

// Notifier sends the confirmation e-mail, reporting success as a bool.
type Notifier interface {
	SendConfirmation(ctx context.Context, payload domain.ContactNotification) bool
}

// NotificationWorker retries confirmation e-mails that failed when the
// contact flow completed. The flow itself never waits on delivery; this
// worker is the only retry mechanism.
type NotificationWorker struct {
	repo     NotificationRepository
	notifier Notifier
}

// NewNotificationWorker creates a new NotificationWorker instance.
func NewNotificationWorker(repo NotificationRepository, notifier Notifier) *NotificationWorker {
	return &NotificationWorker{
		repo:     repo,
		notifier: notifier,
	}
}

// ProcessJobs implements the JobProcessor interface
func (w *NotificationWorker) ProcessJobs(ctx context.Context) error {
	pending, err := w.repo.ListPendingNotifications(ctx, MaxNotificationAttempts, notificationBatchSize)
	if err != nil {
		return fmt.Errorf("failed to list pending notifications: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	log.Printf("processing %d pending confirmation emails", len(pending))

	for _, req := range pending {
		if ok := w.notifier.SendConfirmation(ctx, req.NotificationPayload()); ok {
			if err := w.repo.MarkNotified(ctx, req.ID); err != nil {
				log.Printf("could not mark notification sent for %s: %v", req.ID, err)
			}
			continue
		}

		if err := w.repo.IncrementNotificationAttempts(ctx, req.ID); err != nil {
			log.Printf("could not record failed attempt for %s: %v", req.ID, err)
		}
		if req.NotificationAttempts+1 >= MaxNotificationAttempts {
			log.Printf("confirmation email for %s exceeded %d attempts, giving up", req.ID, MaxNotificationAttempts)
		}
	}

	return nil
}
