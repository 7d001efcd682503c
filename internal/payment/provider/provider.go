package provider

import (
	"context"
)

// PaymentDetails is the provider's authoritative view of a captured payment,
// fetched directly from the provider API rather than trusted from a client
// callback.
type PaymentDetails struct {
	ProviderPaymentID string
	ProviderOrderID   string
	Status            string // provider status, e.g. "captured", "authorized", "failed"
	Amount            int64
	Currency          string
}

// StatusCaptured is the provider status required before an order may be
// marked paid.
const StatusCaptured = "captured"

// Provider defines the interface for payment provider integrations.
type Provider interface {
	// Name returns the provider name (e.g., "mock", "razorpay").
	Name() string

	// CreateProviderOrder registers an order with the provider and returns
	// the provider-side order id. This is a charge-adjacent call and is
	// never retried automatically.
	CreateProviderOrder(ctx context.Context, amount int64, currency, receipt string) (string, error)

	// FetchPayment re-queries the provider for the current state of a
	// payment. Safe to retry.
	FetchPayment(ctx context.Context, providerPaymentID string) (*PaymentDetails, error)
}
