package log

import (
	"context"
	"log/slog"

	"github.com/Rishabhostwal48/Manglanam-Naturals-sub000/internal/notification/domain"
)

// Sender writes notifications to the structured log instead of an external
// channel. It is the shipped implementation for development and keeps dev
// and production code paths identical.
type Sender struct {
	logger *slog.Logger
}

// NewSender creates a new log-backed sender.
func NewSender(logger *slog.Logger) *Sender {
	return &Sender{logger: logger}
}

// Name returns the sender name.
func (s *Sender) Name() string {
	return "log"
}

// Send logs the notification.
func (s *Sender) Send(ctx context.Context, n *domain.Notification) error {
	s.logger.InfoContext(ctx, "notification delivered",
		slog.String("notification_id", n.ID),
		slog.String("audience", n.Audience),
		slog.String("recipient", n.Recipient),
		slog.String("order_id", n.OrderID),
		slog.String("subject", n.Subject),
	)
	return nil
}
