package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Rishabhostwal48/Manglanam-Naturals-sub000/internal/notification/domain"
	"github.com/Rishabhostwal48/Manglanam-Naturals-sub000/pkg/database"
	apperrors "github.com/Rishabhostwal48/Manglanam-Naturals-sub000/pkg/errors"
)

// NotificationRepository implements repository.NotificationRepository using
// PostgreSQL.
type NotificationRepository struct {
	pool database.DBTX
}

// NewNotificationRepository creates a new PostgreSQL-backed notification
// repository.
func NewNotificationRepository(pool database.DBTX) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

// Create inserts a new notification into the database.
func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) (err error) {
	query := `
		INSERT INTO notifications (id, audience, recipient, order_id, subject, body, status, failure_reason, sent_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	ctx, end := database.TraceQuery(ctx, "CreateNotification", query)
	defer func() { end(err) }()

	_, err = r.pool.Exec(ctx, query,
		n.ID,
		n.Audience,
		n.Recipient,
		n.OrderID,
		n.Subject,
		n.Body,
		n.Status,
		n.FailureReason,
		n.SentAt,
		n.CreatedAt,
		n.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}

	return nil
}

// MarkSent records a successful delivery.
func (r *NotificationRepository) MarkSent(ctx context.Context, id string, sentAt time.Time) (err error) {
	query := `
		UPDATE notifications
		SET status = $1, sent_at = $2, updated_at = $3
		WHERE id = $4`

	ctx, end := database.TraceQuery(ctx, "MarkNotificationSent", query)
	defer func() { end(err) }()

	ct, err := r.pool.Exec(ctx, query, domain.NotificationStatusSent, sentAt, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("mark notification sent: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("notification", id)
	}

	return nil
}

// MarkFailed records a failed delivery.
func (r *NotificationRepository) MarkFailed(ctx context.Context, id, reason string) (err error) {
	query := `
		UPDATE notifications
		SET status = $1, failure_reason = $2, updated_at = $3
		WHERE id = $4`

	ctx, end := database.TraceQuery(ctx, "MarkNotificationFailed", query)
	defer func() { end(err) }()

	ct, err := r.pool.Exec(ctx, query, domain.NotificationStatusFailed, reason, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("mark notification failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("notification", id)
	}

	return nil
}

// ListByRecipient returns notifications for a recipient, newest first.
func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipient string, offset, limit int) (result []domain.Notification, total int, err error) {
	query := `
		SELECT id, audience, recipient, order_id, subject, body, status, failure_reason, sent_at, created_at, updated_at,
		       count(*) OVER() AS total_count
		FROM notifications
		WHERE recipient = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	ctx, end := database.TraceQuery(ctx, "ListNotificationsByRecipient", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, recipient, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list notifications by recipient: %w", err)
	}
	defer rows.Close()

	var (
		notifications []domain.Notification
		totalCount    int
	)

	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(
			&n.ID,
			&n.Audience,
			&n.Recipient,
			&n.OrderID,
			&n.Subject,
			&n.Body,
			&n.Status,
			&n.FailureReason,
			&n.SentAt,
			&n.CreatedAt,
			&n.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan notification row: %w", err)
		}
		notifications = append(notifications, n)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate notification rows: %w", err)
	}

	if notifications == nil {
		notifications = []domain.Notification{}
	}

	return notifications, totalCount, nil
}
