package domain

import (
	"time"
)

// Payment status constants.
const (
	PaymentStatusCreated      = "created"
	PaymentStatusVerified     = "verified"
	PaymentStatusFailed       = "failed"
	PaymentStatusCODConfirmed = "cod_confirmed"
)

// Payment is the audit record of a payment handshake for an order. A
// verified row is the durable proof that the provider captured the exact
// order amount.
type Payment struct {
	ID                string    `json:"id"`
	OrderID           string    `json:"order_id"`
	UserID            string    `json:"user_id"`
	Amount            int64     `json:"amount"`
	Currency          string    `json:"currency"`
	Status            string    `json:"status"`
	Method            string    `json:"method"`
	ProviderName      string    `json:"provider_name"`
	ProviderOrderID   string    `json:"provider_order_id,omitempty"`
	ProviderPaymentID string    `json:"provider_payment_id,omitempty"`
	FailureReason     string    `json:"failure_reason,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// ValidPaymentStatuses returns all valid payment statuses.
func ValidPaymentStatuses() []string {
	return []string{
		PaymentStatusCreated,
		PaymentStatusVerified,
		PaymentStatusFailed,
		PaymentStatusCODConfirmed,
	}
}

// IsValidPaymentStatus checks whether the given status is a valid payment status.
func IsValidPaymentStatus(status string) bool {
	for _, s := range ValidPaymentStatuses() {
		if s == status {
			return true
		}
	}
	return false
}
