package mock

import (
	"context"
	"sync"

	"github.com/google/uuid"

	apperrors "github.com/Rishabhostwal48/Manglanam-Naturals-sub000/pkg/errors"

	"github.com/Rishabhostwal48/Manglanam-Naturals-sub000/internal/payment/provider"
)

// Provider is an in-memory payment provider for development and testing.
// Created orders are remembered so that fetches can report a captured
// payment with the right amount.
type Provider struct {
	mu       sync.Mutex
	orders   map[string]orderRecord
	payments map[string]provider.PaymentDetails
}

type orderRecord struct {
	amount   int64
	currency string
}

// NewProvider creates a new mock payment provider.
func NewProvider() *Provider {
	return &Provider{
		orders:   make(map[string]orderRecord),
		payments: make(map[string]provider.PaymentDetails),
	}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "mock"
}

// CreateProviderOrder records a provider-side order and returns its id.
func (p *Provider) CreateProviderOrder(_ context.Context, amount int64, currency, _ string) (string, error) {
	id := "order_mock_" + uuid.New().String()

	p.mu.Lock()
	p.orders[id] = orderRecord{amount: amount, currency: currency}
	p.mu.Unlock()

	return id, nil
}

// FetchPayment returns the recorded payment state.
func (p *Provider) FetchPayment(_ context.Context, providerPaymentID string) (*provider.PaymentDetails, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	details, ok := p.payments[providerPaymentID]
	if !ok {
		return nil, apperrors.NotFound("payment", providerPaymentID)
	}
	return &details, nil
}

// Capture marks a payment as captured against a provider order, simulating
// the customer completing the checkout flow.
func (p *Provider) Capture(providerOrderID string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	rec, ok := p.orders[providerOrderID]
	if !ok {
		return "", apperrors.NotFound("provider order", providerOrderID)
	}

	id := "pay_mock_" + uuid.New().String()
	p.payments[id] = provider.PaymentDetails{
		ProviderPaymentID: id,
		ProviderOrderID:   providerOrderID,
		Status:            provider.StatusCaptured,
		Amount:            rec.amount,
		Currency:          rec.currency,
	}
	return id, nil
}
