package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	orderdomain "github.com/Rishabhostwal48/Manglanam-Naturals-sub000/internal/order/domain"
	"github.com/Rishabhostwal48/Manglanam-Naturals-sub000/internal/payment/domain"
	"github.com/Rishabhostwal48/Manglanam-Naturals-sub000/internal/payment/event"
	"github.com/Rishabhostwal48/Manglanam-Naturals-sub000/internal/payment/provider"
	"github.com/Rishabhostwal48/Manglanam-Naturals-sub000/internal/payment/repository"
	apperrors "github.com/Rishabhostwal48/Manglanam-Naturals-sub000/pkg/errors"
)

// Orders is the slice of the order module the payment service needs. The
// paid flag transition is guarded at the SQL level; status transitions go
// through the order service so they are validated and published.
type Orders interface {
	Get(ctx context.Context, id string) (*orderdomain.Order, error)
	MarkPaid(ctx context.Context, id string, paidAt time.Time, paymentRef string) error
	MarkProcessing(ctx context.Context, id, reason string) error
}

// PaymentService implements the payment handshake for online and COD orders.
type PaymentService struct {
	repo      repository.PaymentRepository
	orders    Orders
	provider  provider.Provider
	producer  *event.Producer
	keyID     string
	keySecret string
	logger    *slog.Logger
}

// NewPaymentService creates a new payment service. keyID and keySecret are
// the provider credentials; keySecret is also the HMAC key for callback
// signatures.
func NewPaymentService(
	repo repository.PaymentRepository,
	orders Orders,
	prov provider.Provider,
	producer *event.Producer,
	keyID, keySecret string,
	logger *slog.Logger,
) *PaymentService {
	return &PaymentService{
		repo:      repo,
		orders:    orders,
		provider:  prov,
		producer:  producer,
		keyID:     keyID,
		keySecret: keySecret,
		logger:    logger,
	}
}

// Session is the handle the client needs to run the provider's checkout
// flow. The amount is always the server-stored order total.
type Session struct {
	PaymentID       string `json:"payment_id"`
	OrderID         string `json:"order_id"`
	ProviderOrderID string `json:"provider_order_id"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
	KeyID           string `json:"key_id"`
}

// VerifyInput holds the callback fields posted by the client after the
// provider checkout completes. None of them are trusted until verified.
type VerifyInput struct {
	OrderID           string `json:"order_id" validate:"required"`
	ProviderOrderID   string `json:"provider_order_id" validate:"required"`
	ProviderPaymentID string `json:"provider_payment_id" validate:"required"`
	Signature         string `json:"signature" validate:"required"`
}

// Signature computes the callback signature: hex HMAC-SHA256 over
// "<providerOrderID>|<providerPaymentID>".
func Signature(providerOrderID, providerPaymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(providerOrderID + "|" + providerPaymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// CreateSession registers the order with the provider and records a created
// payment row. The session amount comes from the stored order, never from
// the caller.
func (s *PaymentService) CreateSession(ctx context.Context, orderID, userID string) (*Session, error) {
	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order for session: %w", err)
	}

	if order.UserID != userID {
		return nil, apperrors.Forbidden("order belongs to another user")
	}
	if order.IsPaid {
		return nil, apperrors.Conflict("order is already paid")
	}
	if order.PaymentMethod != orderdomain.PaymentMethodRazorpay {
		return nil, apperrors.InvalidInput(fmt.Sprintf("order payment method is %s, not razorpay", order.PaymentMethod))
	}
	if order.Status != orderdomain.OrderStatusPending {
		return nil, apperrors.Conflict(fmt.Sprintf("cannot start payment for order in status %s", order.Status))
	}

	providerOrderID, err := s.provider.CreateProviderOrder(ctx, order.TotalAmount, order.Currency, order.ID)
	if err != nil {
		return nil, fmt.Errorf("create provider order: %w", err)
	}

	now := time.Now().UTC()
	payment := &domain.Payment{
		ID:              uuid.New().String(),
		OrderID:         order.ID,
		UserID:          order.UserID,
		Amount:          order.TotalAmount,
		Currency:        order.Currency,
		Status:          domain.PaymentStatusCreated,
		Method:          orderdomain.PaymentMethodRazorpay,
		ProviderName:    s.provider.Name(),
		ProviderOrderID: providerOrderID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}

	s.logger.InfoContext(ctx, "payment session created",
		slog.String("payment_id", payment.ID),
		slog.String("order_id", order.ID),
		slog.Int64("amount", payment.Amount),
	)

	return &Session{
		PaymentID:       payment.ID,
		OrderID:         order.ID,
		ProviderOrderID: providerOrderID,
		Amount:          payment.Amount,
		Currency:        payment.Currency,
		KeyID:           s.keyID,
	}, nil
}

// VerifyCallback verifies a provider callback and, only when every check
// passes, marks the order paid. A failing check leaves the order untouched.
func (s *PaymentService) VerifyCallback(ctx context.Context, userID string, input VerifyInput) (*domain.Payment, error) {
	order, err := s.orders.Get(ctx, input.OrderID)
	if err != nil {
		return nil, fmt.Errorf("get order for verify: %w", err)
	}
	if order.UserID != userID {
		return nil, apperrors.Forbidden("order belongs to another user")
	}

	// Callbacks are delivered at-least-once; a second delivery for an
	// already-paid order is not an error worth acting on.
	if order.IsPaid {
		return nil, apperrors.Conflict("order is already paid")
	}

	payment, err := s.repo.GetByOrderID(ctx, input.OrderID)
	if err != nil {
		return nil, fmt.Errorf("get payment for verify: %w", err)
	}
	if payment.Status != domain.PaymentStatusCreated {
		return nil, apperrors.Conflict(fmt.Sprintf("payment is in status %s", payment.Status))
	}
	if payment.ProviderOrderID != input.ProviderOrderID {
		return nil, apperrors.InvalidInput("provider order id does not match the payment session")
	}

	expected := Signature(input.ProviderOrderID, input.ProviderPaymentID, s.keySecret)
	if !hmac.Equal([]byte(expected), []byte(input.Signature)) {
		s.markFailed(ctx, payment, "signature mismatch")
		return nil, apperrors.SignatureMismatch()
	}

	// Never trust the callback fields alone; the provider is the source of
	// truth for capture state and amount.
	details, err := s.provider.FetchPayment(ctx, input.ProviderPaymentID)
	if err != nil {
		return nil, fmt.Errorf("fetch payment from provider: %w", err)
	}
	if details.Status != provider.StatusCaptured {
		s.markFailed(ctx, payment, fmt.Sprintf("provider reports status %q", details.Status))
		return nil, apperrors.InvalidInput(fmt.Sprintf("payment is not captured (provider status %q)", details.Status))
	}
	if details.Amount != payment.Amount {
		s.markFailed(ctx, payment, fmt.Sprintf("provider amount %d does not match session amount %d", details.Amount, payment.Amount))
		return nil, apperrors.InvalidInput("captured amount does not match the order total")
	}

	paidAt := time.Now().UTC()
	if err := s.orders.MarkPaid(ctx, order.ID, paidAt, input.ProviderPaymentID); err != nil {
		return nil, fmt.Errorf("mark order paid: %w", err)
	}

	payment.Status = domain.PaymentStatusVerified
	payment.ProviderPaymentID = input.ProviderPaymentID
	if err := s.repo.Update(ctx, payment); err != nil {
		// The order is durably paid; the payment row lagging behind is
		// recoverable from the provider record.
		s.logger.ErrorContext(ctx, "failed to update payment row after verify",
			slog.String("payment_id", payment.ID),
			slog.String("error", err.Error()),
		)
	}

	if err := s.producer.PublishPaymentVerified(ctx, payment); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish payment.verified event",
			slog.String("payment_id", payment.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "payment verified",
		slog.String("payment_id", payment.ID),
		slog.String("order_id", order.ID),
		slog.Int64("amount", payment.Amount),
	)

	return payment, nil
}

// ConfirmCOD records a cash-on-delivery confirmation and moves the order to
// processing. The order stays unpaid until delivery.
func (s *PaymentService) ConfirmCOD(ctx context.Context, orderID, userID string) (*domain.Payment, error) {
	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order for cod confirm: %w", err)
	}

	if order.UserID != userID {
		return nil, apperrors.Forbidden("order belongs to another user")
	}
	if order.PaymentMethod != orderdomain.PaymentMethodCOD {
		return nil, apperrors.InvalidInput(fmt.Sprintf("order payment method is %s, not cod", order.PaymentMethod))
	}
	if order.Status != orderdomain.OrderStatusPending {
		return nil, apperrors.Conflict(fmt.Sprintf("cannot confirm cod for order in status %s", order.Status))
	}

	now := time.Now().UTC()
	payment := &domain.Payment{
		ID:           uuid.New().String(),
		OrderID:      order.ID,
		UserID:       order.UserID,
		Amount:       order.TotalAmount,
		Currency:     order.Currency,
		Status:       domain.PaymentStatusCODConfirmed,
		Method:       orderdomain.PaymentMethodCOD,
		ProviderName: "cod",
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("create cod payment: %w", err)
	}

	if err := s.orders.MarkProcessing(ctx, order.ID, "cod confirmed"); err != nil {
		return nil, fmt.Errorf("move order to processing: %w", err)
	}

	if err := s.producer.PublishCODConfirmed(ctx, payment); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish payment.cod_confirmed event",
			slog.String("payment_id", payment.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "cod confirmed",
		slog.String("payment_id", payment.ID),
		slog.String("order_id", order.ID),
	)

	return payment, nil
}

// GetPaymentByOrder returns the payment audit record for an order. Only the
// owner or an admin may read it.
func (s *PaymentService) GetPaymentByOrder(ctx context.Context, orderID, requesterID string, isAdmin bool) (*domain.Payment, error) {
	payment, err := s.repo.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get payment by order: %w", err)
	}

	if !isAdmin && payment.UserID != requesterID {
		return nil, apperrors.Forbidden("payment belongs to another user")
	}

	return payment, nil
}

// markFailed records a failed verification on the payment row. The order is
// never touched here.
func (s *PaymentService) markFailed(ctx context.Context, payment *domain.Payment, reason string) {
	payment.Status = domain.PaymentStatusFailed
	payment.FailureReason = reason

	if err := s.repo.Update(ctx, payment); err != nil {
		s.logger.ErrorContext(ctx, "failed to mark payment as failed",
			slog.String("payment_id", payment.ID),
			slog.String("error", err.Error()),
		)
	}

	if err := s.producer.PublishPaymentFailed(ctx, payment); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish payment.failed event",
			slog.String("payment_id", payment.ID),
			slog.String("error", err.Error()),
		)
	}
}
