package repository

import (
	"context"

	"github.com/Rishabhostwal48/Manglanam-Naturals-sub000/internal/payment/domain"
)

// PaymentRepository defines the interface for payment persistence operations.
type PaymentRepository interface {
	// Create inserts a new payment into the store.
	Create(ctx context.Context, payment *domain.Payment) error

	// GetByID retrieves a payment by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Payment, error)

	// GetByOrderID retrieves the most recent payment for an order.
	GetByOrderID(ctx context.Context, orderID string) (*domain.Payment, error)

	// Update modifies an existing payment in the store.
	Update(ctx context.Context, payment *domain.Payment) error
}
