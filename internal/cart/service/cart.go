package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Rishabhostwal48/Manglanam-Naturals-sub000/internal/cart/domain"
	"github.com/Rishabhostwal48/Manglanam-Naturals-sub000/internal/cart/event"
	"github.com/Rishabhostwal48/Manglanam-Naturals-sub000/internal/cart/repository"
	apperrors "github.com/Rishabhostwal48/Manglanam-Naturals-sub000/pkg/errors"
)

// AddItemInput holds the parameters for adding an item to the cart.
type AddItemInput struct {
	ProductID string `json:"product_id" validate:"required"`
	VariantID string `json:"variant_id"`
	Name      string `json:"name" validate:"required"`
	UnitPrice int64  `json:"unit_price" validate:"gte=0"`
	SalePrice *int64 `json:"sale_price,omitempty" validate:"omitempty,gte=0"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
	ImageURL  string `json:"image_url"`
}

// CartService implements the business logic for cart operations. The cart is
// the authoritative in-session state; every accepted mutation re-saves the
// full cart so storage always holds the last committed state.
type CartService struct {
	repo     repository.CartRepository
	producer *event.Producer
	logger   *slog.Logger
	currency string
	cartTTL  time.Duration
}

// NewCartService creates a new cart service.
func NewCartService(repo repository.CartRepository, producer *event.Producer, logger *slog.Logger, currency string, cartTTL time.Duration) *CartService {
	return &CartService{
		repo:     repo,
		producer: producer,
		logger:   logger,
		currency: currency,
		cartTTL:  cartTTL,
	}
}

// GetCart retrieves the cart for a user. A missing cart is an empty cart,
// never an error.
func (s *CartService) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}

	cart, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return s.newEmptyCart(userID), nil
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}

	return cart, nil
}

// AddItem adds an item to the user's cart. An existing (product, variant)
// line merges by incrementing its quantity; otherwise the item is appended,
// preserving insertion order.
func (s *CartService) AddItem(ctx context.Context, userID string, input AddItemInput) (*domain.Cart, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	if input.ProductID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}
	if input.Quantity < 1 {
		return nil, apperrors.InvalidInput("quantity must be a positive integer")
	}
	if input.UnitPrice < 0 {
		return nil, apperrors.InvalidInput("unit price must not be negative")
	}
	if input.SalePrice != nil && *input.SalePrice < 0 {
		return nil, apperrors.InvalidInput("sale price must not be negative")
	}

	cart, err := s.getOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	if i := cart.FindItemIndex(input.ProductID, input.VariantID); i >= 0 {
		cart.Items[i].Quantity += input.Quantity
		// Refresh display fields in case the catalog changed.
		cart.Items[i].Name = input.Name
		cart.Items[i].UnitPrice = input.UnitPrice
		cart.Items[i].SalePrice = input.SalePrice
		cart.Items[i].ImageURL = input.ImageURL
	} else {
		cart.Items = append(cart.Items, domain.CartItem{
			ProductID: input.ProductID,
			VariantID: input.VariantID,
			Name:      input.Name,
			UnitPrice: input.UnitPrice,
			SalePrice: input.SalePrice,
			Quantity:  input.Quantity,
			ImageURL:  input.ImageURL,
		})
	}

	if err := s.saveAndPublish(ctx, cart); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "item added to cart",
		slog.String("user_id", userID),
		slog.String("product_id", input.ProductID),
		slog.String("variant_id", input.VariantID),
		slog.Int("quantity", input.Quantity),
	)

	return cart, nil
}

// RemoveItem deletes the matching line from the cart. Removing an absent item
// is a no-op, not an error.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID, variantID string) (*domain.Cart, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	if productID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}

	cart, err := s.getOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	i := cart.FindItemIndex(productID, variantID)
	if i < 0 {
		return cart, nil
	}
	cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)

	if err := s.saveAndPublish(ctx, cart); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "item removed from cart",
		slog.String("user_id", userID),
		slog.String("product_id", productID),
		slog.String("variant_id", variantID),
	)

	return cart, nil
}

// UpdateQuantity sets a line's quantity exactly. A quantity below 1 behaves
// like RemoveItem.
func (s *CartService) UpdateQuantity(ctx context.Context, userID, productID, variantID string, quantity int) (*domain.Cart, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	if productID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}

	if quantity < 1 {
		return s.RemoveItem(ctx, userID, productID, variantID)
	}

	cart, err := s.getOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	i := cart.FindItemIndex(productID, variantID)
	if i < 0 {
		return nil, apperrors.NotFound("cart item", productID+"/"+variantID)
	}
	cart.Items[i].Quantity = quantity

	if err := s.saveAndPublish(ctx, cart); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "cart item quantity updated",
		slog.String("user_id", userID),
		slog.String("product_id", productID),
		slog.String("variant_id", variantID),
		slog.Int("quantity", quantity),
	)

	return cart, nil
}

// Clear removes all items from the user's cart. Used after successful
// checkout.
func (s *CartService) Clear(ctx context.Context, userID string) error {
	if userID == "" {
		return apperrors.InvalidInput("user id is required")
	}

	if err := s.repo.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}

	if err := s.producer.PublishCartCleared(ctx, userID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.cleared event",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "cart cleared",
		slog.String("user_id", userID),
	)

	return nil
}

// Open marks the cart drawer as visible. Orthogonal to item data.
func (s *CartService) Open(ctx context.Context, userID string) (*domain.Cart, error) {
	return s.setOpen(ctx, userID, true)
}

// Close marks the cart drawer as hidden.
func (s *CartService) Close(ctx context.Context, userID string) (*domain.Cart, error) {
	return s.setOpen(ctx, userID, false)
}

func (s *CartService) setOpen(ctx context.Context, userID string, open bool) (*domain.Cart, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}

	cart, err := s.getOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart.IsOpen == open {
		return cart, nil
	}
	cart.IsOpen = open

	if err := s.saveAndPublish(ctx, cart); err != nil {
		return nil, err
	}

	return cart, nil
}

// SetShippingAddress stores the shipping address snapshot on the cart.
func (s *CartService) SetShippingAddress(ctx context.Context, userID string, addr domain.Address) (*domain.Cart, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}

	cart, err := s.getOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	cart.ShippingAddress = &addr

	if err := s.saveAndPublish(ctx, cart); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "shipping address set",
		slog.String("user_id", userID),
		slog.String("city", addr.City),
	)

	return cart, nil
}

// saveAndPublish persists the full cart and emits cart.updated best-effort.
func (s *CartService) saveAndPublish(ctx context.Context, cart *domain.Cart) error {
	now := time.Now().UTC()
	cart.UpdatedAt = now
	cart.ExpiresAt = now.Add(s.cartTTL)

	if err := s.repo.Save(ctx, cart); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}

	if err := s.producer.PublishCartUpdated(ctx, cart); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.updated event",
			slog.String("user_id", cart.UserID),
			slog.String("error", err.Error()),
		)
	}

	return nil
}

func (s *CartService) getOrCreateCart(ctx context.Context, userID string) (*domain.Cart, error) {
	cart, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return s.newEmptyCart(userID), nil
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}
	return cart, nil
}

func (s *CartService) newEmptyCart(userID string) *domain.Cart {
	now := time.Now().UTC()
	return &domain.Cart{
		ID:        uuid.New().String(),
		UserID:    userID,
		Items:     []domain.CartItem{},
		Currency:  s.currency,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(s.cartTTL),
	}
}
