package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Rishabhostwal48/Manglanam-Naturals-sub000/internal/payment/domain"
	"github.com/Rishabhostwal48/Manglanam-Naturals-sub000/pkg/database"
	apperrors "github.com/Rishabhostwal48/Manglanam-Naturals-sub000/pkg/errors"
)

const paymentColumns = `id, order_id, user_id, amount, currency, status, method, provider_name, provider_order_id, provider_payment_id, failure_reason, created_at, updated_at`

// PaymentRepository implements repository.PaymentRepository using PostgreSQL.
type PaymentRepository struct {
	pool database.DBTX
}

// NewPaymentRepository creates a new PostgreSQL-backed payment repository.
func NewPaymentRepository(pool database.DBTX) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

// Create inserts a new payment into the database.
func (r *PaymentRepository) Create(ctx context.Context, p *domain.Payment) (err error) {
	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	ctx, end := database.TraceQuery(ctx, "CreatePayment", query)
	defer func() { end(err) }()

	_, err = r.pool.Exec(ctx, query,
		p.ID,
		p.OrderID,
		p.UserID,
		p.Amount,
		p.Currency,
		p.Status,
		p.Method,
		p.ProviderName,
		p.ProviderOrderID,
		p.ProviderPaymentID,
		p.FailureReason,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}

	return nil
}

// GetByID retrieves a payment by its ID.
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (p *domain.Payment, err error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "GetPayment", query)
	defer func() { end(err) }()

	return r.scanPayment(ctx, query, "payment", id)
}

// GetByOrderID retrieves the most recent payment for an order. Orders keep
// a single handshake at a time but a failed attempt may be followed by a
// fresh one.
func (r *PaymentRepository) GetByOrderID(ctx context.Context, orderID string) (p *domain.Payment, err error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE order_id = $1
		ORDER BY created_at DESC
		LIMIT 1`

	ctx, end := database.TraceQuery(ctx, "GetPaymentByOrder", query)
	defer func() { end(err) }()

	return r.scanPayment(ctx, query, "payment for order", orderID)
}

// Update modifies an existing payment in the database.
func (r *PaymentRepository) Update(ctx context.Context, p *domain.Payment) (err error) {
	p.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE payments
		SET status = $1, provider_order_id = $2, provider_payment_id = $3,
		    failure_reason = $4, updated_at = $5
		WHERE id = $6`

	ctx, end := database.TraceQuery(ctx, "UpdatePayment", query)
	defer func() { end(err) }()

	ct, err := r.pool.Exec(ctx, query,
		p.Status,
		p.ProviderOrderID,
		p.ProviderPaymentID,
		p.FailureReason,
		p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("update payment: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("payment", p.ID)
	}

	return nil
}

// scanPayment executes a query expected to return a single payment row.
func (r *PaymentRepository) scanPayment(ctx context.Context, query, resource, id string) (*domain.Payment, error) {
	var p domain.Payment

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.OrderID,
		&p.UserID,
		&p.Amount,
		&p.Currency,
		&p.Status,
		&p.Method,
		&p.ProviderName,
		&p.ProviderOrderID,
		&p.ProviderPaymentID,
		&p.FailureReason,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound(resource, id)
		}
		return nil, fmt.Errorf("scan payment: %w", err)
	}

	return &p, nil
}
