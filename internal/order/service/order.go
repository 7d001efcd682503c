package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Rishabhostwal48/Manglanam-Naturals-sub000/internal/order/domain"
	"github.com/Rishabhostwal48/Manglanam-Naturals-sub000/internal/order/event"
	"github.com/Rishabhostwal48/Manglanam-Naturals-sub000/internal/order/repository"
	"github.com/Rishabhostwal48/Manglanam-Naturals-sub000/internal/pricing"
	apperrors "github.com/Rishabhostwal48/Manglanam-Naturals-sub000/pkg/errors"
)

// OrderService implements the business logic for order operations. Totals are
// always computed server-side from the item snapshot; nothing the client
// sends about amounts is trusted.
type OrderService struct {
	repo     repository.OrderRepository
	producer *event.Producer
	policy   pricing.Policy
	currency string
	logger   *slog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(repo repository.OrderRepository, producer *event.Producer, policy pricing.Policy, currency string, logger *slog.Logger) *OrderService {
	return &OrderService{
		repo:     repo,
		producer: producer,
		policy:   policy,
		currency: currency,
		logger:   logger,
	}
}

// CreateOrderItemInput holds the snapshot inputs for one order line.
type CreateOrderItemInput struct {
	ProductID string
	VariantID string
	Name      string
	UnitPrice int64
	SalePrice *int64
	Quantity  int
}

// CreateOrderInput holds the parameters for creating an order.
type CreateOrderInput struct {
	UserID          string
	Items           []CreateOrderItemInput
	ShippingAddress *domain.Address
	PaymentMethod   string
}

// CreateOrder snapshots the given items into an immutable order, computes
// all amounts server-side, and persists the order atomically with status
// pending and is_paid false.
func (s *OrderService) CreateOrder(ctx context.Context, input CreateOrderInput) (*domain.Order, error) {
	if input.UserID == "" {
		return nil, apperrors.InvalidInput("user_id is required")
	}
	if len(input.Items) == 0 {
		return nil, apperrors.InvalidInput("order must contain at least one item")
	}
	method := strings.ToLower(input.PaymentMethod)
	if method != domain.PaymentMethodCOD && method != domain.PaymentMethodRazorpay {
		return nil, apperrors.InvalidInput("payment_method must be cod or razorpay")
	}
	if input.ShippingAddress == nil {
		return nil, apperrors.InvalidInput("shipping_address is required")
	}
	for _, item := range input.Items {
		if item.Quantity < 1 {
			return nil, apperrors.InvalidInput(fmt.Sprintf("item %s: quantity must be at least 1", item.ProductID))
		}
		if item.UnitPrice < 0 || (item.SalePrice != nil && *item.SalePrice < 0) {
			return nil, apperrors.InvalidInput(fmt.Sprintf("item %s: price must not be negative", item.ProductID))
		}
	}

	now := time.Now().UTC()
	orderID := uuid.New().String()

	items := make([]domain.OrderItem, len(input.Items))
	lines := make([]pricing.LineItem, len(input.Items))
	for i, itemInput := range input.Items {
		items[i] = domain.OrderItem{
			ID:        uuid.New().String(),
			OrderID:   orderID,
			ProductID: itemInput.ProductID,
			VariantID: itemInput.VariantID,
			Name:      itemInput.Name,
			UnitPrice: itemInput.UnitPrice,
			SalePrice: itemInput.SalePrice,
			Quantity:  itemInput.Quantity,
		}
		lines[i] = pricing.LineItem{
			Quantity:  itemInput.Quantity,
			UnitPrice: itemInput.UnitPrice,
			SalePrice: itemInput.SalePrice,
		}
	}

	totals := pricing.Compute(lines, s.policy)

	order := &domain.Order{
		ID:              orderID,
		UserID:          input.UserID,
		Status:          domain.OrderStatusPending,
		Items:           items,
		ItemsAmount:     totals.ItemsAmount,
		TaxAmount:       totals.TaxAmount,
		ShippingAmount:  totals.ShippingAmount,
		TotalAmount:     totals.TotalAmount,
		Currency:        s.currency,
		ShippingAddress: input.ShippingAddress,
		PaymentMethod:   method,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	if err := s.producer.PublishOrderCreated(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.created event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order created",
		slog.String("order_id", order.ID),
		slog.String("user_id", order.UserID),
		slog.String("payment_method", order.PaymentMethod),
		slog.Int64("total_amount", order.TotalAmount),
	)

	return order, nil
}

// GetOrder retrieves an order, enforcing that only the owner or an admin may
// read it.
func (s *OrderService) GetOrder(ctx context.Context, id, requesterID string, isAdmin bool) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order by id: %w", err)
	}

	if !isAdmin && order.UserID != requesterID {
		return nil, apperrors.Forbidden("order belongs to another user")
	}

	return order, nil
}

// ListOrders returns orders matching the filter. Non-admin callers are
// always scoped to their own orders.
func (s *OrderService) ListOrders(ctx context.Context, filter repository.OrderFilter, requesterID string, isAdmin bool) ([]domain.Order, int, error) {
	if !isAdmin {
		filter.UserID = &requesterID
	}

	orders, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	return orders, total, nil
}

// UpdateStatus validates and applies a status transition, then publishes
// order.status_changed. Notification failures never roll back the
// transition.
func (s *OrderService) UpdateStatus(ctx context.Context, id, status, reason string) (*domain.Order, error) {
	target, ok := domain.NormalizeStatus(status)
	if !ok {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown status %q", status))
	}

	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order for status update: %w", err)
	}

	if !order.CanTransitionTo(target) {
		return nil, apperrors.Conflict(fmt.Sprintf("cannot transition order from %s to %s", order.Status, target))
	}

	if err := s.repo.UpdateStatus(ctx, id, target, reason); err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}

	previous := order.Status
	order.Status = target
	order.CanceledReason = reason
	order.UpdatedAt = time.Now().UTC()

	if err := s.producer.PublishStatusChanged(ctx, order, previous, reason); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.status_changed event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order status updated",
		slog.String("order_id", order.ID),
		slog.String("from", previous),
		slog.String("to", target),
	)

	return order, nil
}

// CancelOrder cancels the caller's own order. Only pending and processing
// orders can be canceled.
func (s *OrderService) CancelOrder(ctx context.Context, id, requesterID, reason string) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order for cancel: %w", err)
	}

	if order.UserID != requesterID {
		return nil, apperrors.Forbidden("order belongs to another user")
	}

	if !order.CanTransitionTo(domain.OrderStatusCanceled) {
		return nil, apperrors.Conflict(fmt.Sprintf("cannot cancel order in status %s", order.Status))
	}

	if err := s.repo.UpdateStatus(ctx, id, domain.OrderStatusCanceled, reason); err != nil {
		return nil, fmt.Errorf("cancel order: %w", err)
	}

	previous := order.Status
	order.Status = domain.OrderStatusCanceled
	order.CanceledReason = reason
	order.UpdatedAt = time.Now().UTC()

	if err := s.producer.PublishStatusChanged(ctx, order, previous, reason); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.status_changed event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order canceled",
		slog.String("order_id", order.ID),
		slog.String("user_id", requesterID),
	)

	return order, nil
}
