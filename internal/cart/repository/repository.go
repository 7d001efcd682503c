package repository

import (
	"context"

	"github.com/Rishabhostwal48/Manglanam-Naturals-sub000/internal/cart/domain"
)

// CartRepository defines the interface for cart persistence operations.
type CartRepository interface {
	// Get retrieves a cart by its user ID.
	Get(ctx context.Context, userID string) (*domain.Cart, error)

	// Save persists the full cart, overwriting any existing cart for the user.
	Save(ctx context.Context, cart *domain.Cart) error

	// Delete removes the user's cart.
	Delete(ctx context.Context, userID string) error
}
