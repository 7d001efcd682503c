package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Rishabhostwal48/Manglanam-Naturals-sub000/internal/notification/domain"
	"github.com/Rishabhostwal48/Manglanam-Naturals-sub000/internal/notification/repository"
	"github.com/Rishabhostwal48/Manglanam-Naturals-sub000/internal/notification/sender"
)

// NotificationService fans order events out to the customer and the admin
// broadcast channel. Delivery is best-effort, at-most-once: failures are
// recorded and logged, never retried, and never surfaced to the caller.
type NotificationService struct {
	repo   repository.NotificationRepository
	sender sender.Sender
	logger *slog.Logger
}

// NewNotificationService creates a new notification service.
func NewNotificationService(repo repository.NotificationRepository, snd sender.Sender, logger *slog.Logger) *NotificationService {
	return &NotificationService{
		repo:   repo,
		sender: snd,
		logger: logger,
	}
}

// OrderPlacedInput describes an order.created event for fan-out.
type OrderPlacedInput struct {
	OrderID     string
	UserID      string
	TotalAmount int64
	Currency    string
}

// StatusChangeInput describes an order.status_changed event for fan-out.
type StatusChangeInput struct {
	OrderID        string
	UserID         string
	PreviousStatus string
	NewStatus      string
	Reason         string
}

// NotifyOrderPlaced fans out an order placed notification. It always
// returns nil so the consumer commits regardless of delivery outcome.
func (s *NotificationService) NotifyOrderPlaced(ctx context.Context, input OrderPlacedInput) error {
	subject := "Order received"
	body := fmt.Sprintf("Your order %s has been received. Total: %d %s (in the smallest currency unit).",
		input.OrderID, input.TotalAmount, input.Currency)
	s.deliver(ctx, customerNotification(input.OrderID, input.UserID, subject, body))

	adminBody := fmt.Sprintf("New order %s from user %s: %d %s.",
		input.OrderID, input.UserID, input.TotalAmount, input.Currency)
	s.deliver(ctx, adminNotification(input.OrderID, "New order placed", adminBody))

	return nil
}

// NotifyStatusChange fans out a status change notification, one row for the
// customer and one for the admin broadcast channel.
func (s *NotificationService) NotifyStatusChange(ctx context.Context, input StatusChangeInput) error {
	subject := fmt.Sprintf("Order %s", input.NewStatus)
	body := fmt.Sprintf("Your order %s moved from %s to %s.", input.OrderID, input.PreviousStatus, input.NewStatus)
	if input.Reason != "" {
		body += " Reason: " + input.Reason + "."
	}
	s.deliver(ctx, customerNotification(input.OrderID, input.UserID, subject, body))

	adminBody := fmt.Sprintf("Order %s (user %s): %s -> %s.", input.OrderID, input.UserID, input.PreviousStatus, input.NewStatus)
	s.deliver(ctx, adminNotification(input.OrderID, "Order status changed", adminBody))

	return nil
}

// ListByRecipient returns notifications for a recipient, newest first.
func (s *NotificationService) ListByRecipient(ctx context.Context, recipient string, page, perPage int) ([]domain.Notification, int, error) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}

	offset := (page - 1) * perPage

	notifications, total, err := s.repo.ListByRecipient(ctx, recipient, offset, perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}

	return notifications, total, nil
}

func customerNotification(orderID, userID, subject, body string) *domain.Notification {
	return newNotification(domain.AudienceCustomer, userID, orderID, subject, body)
}

func adminNotification(orderID, subject, body string) *domain.Notification {
	return newNotification(domain.AudienceAdmin, domain.AdminBroadcastRecipient, orderID, subject, body)
}

func newNotification(audience, recipient, orderID, subject, body string) *domain.Notification {
	now := time.Now().UTC()
	return &domain.Notification{
		ID:        uuid.New().String(),
		Audience:  audience,
		Recipient: recipient,
		OrderID:   orderID,
		Subject:   subject,
		Body:      body,
		Status:    domain.NotificationStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// deliver persists the notification and attempts a single send. A failed
// send marks the row failed and moves on.
func (s *NotificationService) deliver(ctx context.Context, n *domain.Notification) {
	if err := s.repo.Create(ctx, n); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist notification",
			slog.String("order_id", n.OrderID),
			slog.String("recipient", n.Recipient),
			slog.String("error", err.Error()),
		)
		return
	}

	if err := s.sender.Send(ctx, n); err != nil {
		s.logger.ErrorContext(ctx, "failed to send notification",
			slog.String("notification_id", n.ID),
			slog.String("recipient", n.Recipient),
			slog.String("error", err.Error()),
		)
		n.Status = domain.NotificationStatusFailed
		n.FailureReason = err.Error()
		if markErr := s.repo.MarkFailed(ctx, n.ID, err.Error()); markErr != nil {
			s.logger.ErrorContext(ctx, "failed to mark notification failed",
				slog.String("notification_id", n.ID),
				slog.String("error", markErr.Error()),
			)
		}
		return
	}

	sentAt := time.Now().UTC()
	n.Status = domain.NotificationStatusSent
	n.SentAt = &sentAt
	if err := s.repo.MarkSent(ctx, n.ID, sentAt); err != nil {
		s.logger.ErrorContext(ctx, "failed to mark notification sent",
			slog.String("notification_id", n.ID),
			slog.String("error", err.Error()),
		)
	}
}
