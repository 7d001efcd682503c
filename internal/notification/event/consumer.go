package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Rishabhostwal48/Manglanam-Naturals-sub000/internal/notification/service"
	orderevent "github.com/Rishabhostwal48/Manglanam-Naturals-sub000/internal/order/event"
	pkgkafka "github.com/Rishabhostwal48/Manglanam-Naturals-sub000/pkg/kafka"
)

// ConsumerGroupID is the consumer group for the notifier.
const ConsumerGroupID = "storefront-notifier"

// ConsumerHandler routes order events to the notification service. The
// underlying consumer commits every message whether or not handling
// succeeded, so a handler error here only means a lost notification, never
// a redelivery.
type ConsumerHandler struct {
	service *service.NotificationService
	logger  *slog.Logger
}

// NewConsumerHandler creates a new event consumer handler.
func NewConsumerHandler(svc *service.NotificationService, logger *slog.Logger) *ConsumerHandler {
	return &ConsumerHandler{
		service: svc,
		logger:  logger,
	}
}

// Handle processes an incoming Kafka event based on its event type.
func (h *ConsumerHandler) Handle(ctx context.Context, event *pkgkafka.Event) error {
	switch event.EventType {
	case orderevent.TopicOrderCreated:
		return h.handleOrderCreated(ctx, event)
	case orderevent.TopicOrderStatusChanged:
		return h.handleStatusChanged(ctx, event)
	default:
		h.logger.WarnContext(ctx, "unknown event type received",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.EventID),
		)
		return nil
	}
}

func (h *ConsumerHandler) handleOrderCreated(ctx context.Context, event *pkgkafka.Event) error {
	var data orderevent.OrderCreatedData
	if err := event.UnmarshalData(&data); err != nil {
		return fmt.Errorf("unmarshal order.created data: %w", err)
	}

	return h.service.NotifyOrderPlaced(ctx, service.OrderPlacedInput{
		OrderID:     data.OrderID,
		UserID:      data.UserID,
		TotalAmount: data.TotalAmount,
		Currency:    data.Currency,
	})
}

func (h *ConsumerHandler) handleStatusChanged(ctx context.Context, event *pkgkafka.Event) error {
	var data orderevent.OrderStatusChangedData
	if err := event.UnmarshalData(&data); err != nil {
		return fmt.Errorf("unmarshal order.status_changed data: %w", err)
	}

	return h.service.NotifyStatusChange(ctx, service.StatusChangeInput{
		OrderID:        data.OrderID,
		UserID:         data.UserID,
		PreviousStatus: data.PreviousStatus,
		NewStatus:      data.NewStatus,
		Reason:         data.Reason,
	})
}

// NewConsumers creates Kafka consumers for the topics the notifier
// subscribes to.
func NewConsumers(brokers []string, handler *ConsumerHandler, logger *slog.Logger) []*pkgkafka.Consumer {
	topics := []string{
		orderevent.TopicOrderCreated,
		orderevent.TopicOrderStatusChanged,
	}

	consumers := make([]*pkgkafka.Consumer, 0, len(topics))
	for _, topic := range topics {
		cfg := pkgkafka.ConsumerConfig{
			Brokers:  brokers,
			GroupID:  ConsumerGroupID,
			Topic:    topic,
			MinBytes: 1,
			MaxBytes: 10e6,
		}
		consumers = append(consumers, pkgkafka.NewConsumer(cfg, handler.Handle, logger))
	}

	return consumers
}
