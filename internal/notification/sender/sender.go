package sender

import (
	"context"

	"github.com/Rishabhostwal48/Manglanam-Naturals-sub000/internal/notification/domain"
)

// Sender delivers a notification to its recipient. Implementations must not
// retry internally; the caller's delivery contract is at-most-once.
type Sender interface {
	Name() string
	Send(ctx context.Context, notification *domain.Notification) error
}
