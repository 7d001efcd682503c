package postgres

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rishabhostwal48/Manglanam-Naturals-sub000/internal/notification/domain"
	"github.com/Rishabhostwal48/Manglanam-Naturals-sub000/pkg/database"
	apperrors "github.com/Rishabhostwal48/Manglanam-Naturals-sub000/pkg/errors"
)

func newTestRepo(t *testing.T) (*NotificationRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	return NewNotificationRepository(mock), mock
}

func sampleNotification() *domain.Notification {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Notification{
		ID:        "notif-001",
		Audience:  domain.AudienceCustomer,
		Recipient: "user-001",
		OrderID:   "order-001",
		Subject:   "Order shipped",
		Body:      "Your order order-001 moved from processing to shipped.",
		Status:    domain.NotificationStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestNotificationRepository_Create(t *testing.T) {
	repo, mock := newTestRepo(t)
	n := sampleNotification()

	mock.ExpectExec("INSERT INTO notifications").
		WithArgs(n.ID, n.Audience, n.Recipient, n.OrderID, n.Subject, n.Body, n.Status,
			n.FailureReason, n.SentAt, n.CreatedAt, n.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Create(context.Background(), n))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepository_MarkSent(t *testing.T) {
	repo, mock := newTestRepo(t)
	sentAt := time.Now().UTC()

	mock.ExpectExec("UPDATE notifications").
		WithArgs(domain.NotificationStatusSent, sentAt, pgxmock.AnyArg(), "notif-001").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.MarkSent(context.Background(), "notif-001", sentAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepository_MarkFailed_NotFound(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectExec("UPDATE notifications").
		WithArgs(domain.NotificationStatusFailed, "smtp down", pgxmock.AnyArg(), "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.MarkFailed(context.Background(), "missing", "smtp down")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestNotificationRepository_ListByRecipient(t *testing.T) {
	repo, mock := newTestRepo(t)
	n := sampleNotification()

	rows := pgxmock.NewRows([]string{
		"id", "audience", "recipient", "order_id", "subject", "body", "status",
		"failure_reason", "sent_at", "created_at", "updated_at", "total_count",
	}).AddRow(
		n.ID, n.Audience, n.Recipient, n.OrderID, n.Subject, n.Body, n.Status,
		n.FailureReason, n.SentAt, n.CreatedAt, n.UpdatedAt, 1,
	)

	mock.ExpectQuery("FROM notifications").
		WithArgs("user-001", 20, 0).
		WillReturnRows(rows)

	got, total, err := repo.ListByRecipient(context.Background(), "user-001", 0, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, got, 1)
	assert.Equal(t, n.Subject, got[0].Subject)
}

func TestNotificationRepository_ListByRecipient_Empty(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery("FROM notifications").
		WithArgs("nobody", 20, 0).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "audience", "recipient", "order_id", "subject", "body", "status",
			"failure_reason", "sent_at", "created_at", "updated_at", "total_count",
		}))

	got, total, err := repo.ListByRecipient(context.Background(), "nobody", 0, 20)
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.Empty(t, got)
}
