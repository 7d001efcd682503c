package repository

import (
	"context"
	"time"

	"github.com/Rishabhostwal48/Manglanam-Naturals-sub000/internal/order/domain"
)

// OrderFilter defines filter criteria for listing orders.
type OrderFilter struct {
	UserID  *string
	Status  *string
	Page    int
	PerPage int
}

// OrderRepository defines the interface for order persistence operations.
// Orders are never deleted, only transitioned.
type OrderRepository interface {
	// Create inserts a new order and its items atomically.
	Create(ctx context.Context, order *domain.Order) error

	// GetByID retrieves an order by its unique identifier, including items.
	GetByID(ctx context.Context, id string) (*domain.Order, error)

	// List returns orders matching the given filter along with the total count.
	List(ctx context.Context, filter OrderFilter) ([]domain.Order, int, error)

	// UpdateStatus changes the status of an order and optionally sets a cancel
	// reason.
	UpdateStatus(ctx context.Context, id string, status string, reason string) error

	// MarkPaid flips is_paid for an unpaid order, recording when and with what
	// provider reference. Returns a conflict error when the order is already
	// paid.
	MarkPaid(ctx context.Context, id string, paidAt time.Time, paymentRef string) error
}
