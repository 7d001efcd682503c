package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Rishabhostwal48/Manglanam-Naturals-sub000/internal/order/domain"
	pkgkafka "github.com/Rishabhostwal48/Manglanam-Naturals-sub000/pkg/kafka"
)

// Kafka topics for order domain events.
var (
	TopicOrderCreated       = pkgkafka.Topic("order", "created")
	TopicOrderStatusChanged = pkgkafka.Topic("order", "status_changed")
)

const (
	aggregateTypeOrder = "order"
	sourceOrder        = "storefront-order"
)

// OrderCreatedData is the payload for an order.created event.
type OrderCreatedData struct {
	OrderID     string    `json:"order_id"`
	UserID      string    `json:"user_id"`
	TotalAmount int64     `json:"total_amount"`
	Currency    string    `json:"currency"`
	ItemCount   int       `json:"item_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// OrderStatusChangedData is the payload for an order.status_changed event.
// The notifier consumes it and fans out to the customer and the admin
// broadcast channel.
type OrderStatusChangedData struct {
	OrderID        string    `json:"order_id"`
	UserID         string    `json:"user_id"`
	PreviousStatus string    `json:"previous_status"`
	NewStatus      string    `json:"new_status"`
	Reason         string    `json:"reason,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// Producer publishes order domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the order service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishOrderCreated publishes an order.created event.
func (p *Producer) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	data := OrderCreatedData{
		OrderID:     order.ID,
		UserID:      order.UserID,
		TotalAmount: order.TotalAmount,
		Currency:    order.Currency,
		ItemCount:   len(order.Items),
		CreatedAt:   order.CreatedAt,
	}

	event, err := pkgkafka.NewEvent(TopicOrderCreated, order.ID, aggregateTypeOrder, sourceOrder, data)
	if err != nil {
		return fmt.Errorf("create order.created event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicOrderCreated, event); err != nil {
		return fmt.Errorf("publish order.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published order.created event",
		slog.String("order_id", order.ID),
	)

	return nil
}

// PublishStatusChanged publishes an order.status_changed event.
func (p *Producer) PublishStatusChanged(ctx context.Context, order *domain.Order, previousStatus, reason string) error {
	data := OrderStatusChangedData{
		OrderID:        order.ID,
		UserID:         order.UserID,
		PreviousStatus: previousStatus,
		NewStatus:      order.Status,
		Reason:         reason,
		OccurredAt:     time.Now().UTC(),
	}

	event, err := pkgkafka.NewEvent(TopicOrderStatusChanged, order.ID, aggregateTypeOrder, sourceOrder, data)
	if err != nil {
		return fmt.Errorf("create order.status_changed event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicOrderStatusChanged, event); err != nil {
		return fmt.Errorf("publish order.status_changed event: %w", err)
	}

	p.logger.DebugContext(ctx, "published order.status_changed event",
		slog.String("order_id", order.ID),
		slog.String("new_status", order.Status),
	)

	return nil
}
