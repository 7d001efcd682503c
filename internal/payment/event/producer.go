package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Rishabhostwal48/Manglanam-Naturals-sub000/internal/payment/domain"
	pkgkafka "github.com/Rishabhostwal48/Manglanam-Naturals-sub000/pkg/kafka"
)

// Kafka topics for payment domain events.
var (
	TopicPaymentVerified     = pkgkafka.Topic("payment", "verified")
	TopicPaymentFailed       = pkgkafka.Topic("payment", "failed")
	TopicPaymentCODConfirmed = pkgkafka.Topic("payment", "cod_confirmed")
)

const (
	aggregateTypePayment = "payment"
	sourcePayment        = "storefront-payment"
)

// PaymentVerifiedData is the payload for a payment.verified event.
type PaymentVerifiedData struct {
	PaymentID         string    `json:"payment_id"`
	OrderID           string    `json:"order_id"`
	UserID            string    `json:"user_id"`
	Amount            int64     `json:"amount"`
	Currency          string    `json:"currency"`
	ProviderPaymentID string    `json:"provider_payment_id"`
	VerifiedAt        time.Time `json:"verified_at"`
}

// PaymentFailedData is the payload for a payment.failed event.
type PaymentFailedData struct {
	PaymentID     string    `json:"payment_id"`
	OrderID       string    `json:"order_id"`
	UserID        string    `json:"user_id"`
	FailureReason string    `json:"failure_reason"`
	FailedAt      time.Time `json:"failed_at"`
}

// PaymentCODConfirmedData is the payload for a payment.cod_confirmed event.
type PaymentCODConfirmedData struct {
	PaymentID   string    `json:"payment_id"`
	OrderID     string    `json:"order_id"`
	UserID      string    `json:"user_id"`
	Amount      int64     `json:"amount"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}

// Producer publishes payment domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the payment service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishPaymentVerified publishes a payment.verified event.
func (p *Producer) PublishPaymentVerified(ctx context.Context, payment *domain.Payment) error {
	data := PaymentVerifiedData{
		PaymentID:         payment.ID,
		OrderID:           payment.OrderID,
		UserID:            payment.UserID,
		Amount:            payment.Amount,
		Currency:          payment.Currency,
		ProviderPaymentID: payment.ProviderPaymentID,
		VerifiedAt:        time.Now().UTC(),
	}

	event, err := pkgkafka.NewEvent(TopicPaymentVerified, payment.ID, aggregateTypePayment, sourcePayment, data)
	if err != nil {
		return fmt.Errorf("create payment.verified event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicPaymentVerified, event); err != nil {
		return fmt.Errorf("publish payment.verified event: %w", err)
	}

	p.logger.DebugContext(ctx, "published payment.verified event",
		slog.String("payment_id", payment.ID),
		slog.String("order_id", payment.OrderID),
	)

	return nil
}

// PublishPaymentFailed publishes a payment.failed event.
func (p *Producer) PublishPaymentFailed(ctx context.Context, payment *domain.Payment) error {
	data := PaymentFailedData{
		PaymentID:     payment.ID,
		OrderID:       payment.OrderID,
		UserID:        payment.UserID,
		FailureReason: payment.FailureReason,
		FailedAt:      time.Now().UTC(),
	}

	event, err := pkgkafka.NewEvent(TopicPaymentFailed, payment.ID, aggregateTypePayment, sourcePayment, data)
	if err != nil {
		return fmt.Errorf("create payment.failed event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicPaymentFailed, event); err != nil {
		return fmt.Errorf("publish payment.failed event: %w", err)
	}

	return nil
}

// PublishCODConfirmed publishes a payment.cod_confirmed event.
func (p *Producer) PublishCODConfirmed(ctx context.Context, payment *domain.Payment) error {
	data := PaymentCODConfirmedData{
		PaymentID:   payment.ID,
		OrderID:     payment.OrderID,
		UserID:      payment.UserID,
		Amount:      payment.Amount,
		ConfirmedAt: time.Now().UTC(),
	}

	event, err := pkgkafka.NewEvent(TopicPaymentCODConfirmed, payment.ID, aggregateTypePayment, sourcePayment, data)
	if err != nil {
		return fmt.Errorf("create payment.cod_confirmed event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicPaymentCODConfirmed, event); err != nil {
		return fmt.Errorf("publish payment.cod_confirmed event: %w", err)
	}

	return nil
}
