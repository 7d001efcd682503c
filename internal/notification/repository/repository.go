package repository

import (
	"context"
	"time"

	"github.com/Rishabhostwal48/Manglanam-Naturals-sub000/internal/notification/domain"
)

// NotificationRepository defines the interface for notification persistence
// operations.
type NotificationRepository interface {
	// Create inserts a new notification into the store.
	Create(ctx context.Context, notification *domain.Notification) error

	// MarkSent records a successful delivery.
	MarkSent(ctx context.Context, id string, sentAt time.Time) error

	// MarkFailed records a failed delivery. The row stays failed; there is
	// no retry machinery.
	MarkFailed(ctx context.Context, id, reason string) error

	// ListByRecipient returns notifications for a recipient, newest first.
	ListByRecipient(ctx context.Context, recipient string, offset, limit int) ([]domain.Notification, int, error)
}
