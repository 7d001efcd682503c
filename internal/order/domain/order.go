package domain

import "time"

// Order status constants.
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCanceled   = "canceled"
)

// Payment method constants.
const (
	PaymentMethodCOD      = "cod"
	PaymentMethodRazorpay = "razorpay"
)

// Order represents a customer order. Amounts are int64 paise, computed once
// at creation.
type Order struct {
	ID              string      `json:"id"`
	UserID          string      `json:"user_id"`
	Status          string      `json:"status"`
	Items           []OrderItem `json:"items"`
	ItemsAmount     int64       `json:"items_amount"`
	TaxAmount       int64       `json:"tax_amount"`
	ShippingAmount  int64       `json:"shipping_amount"`
	TotalAmount     int64       `json:"total_amount"`
	Currency        string      `json:"currency"`
	ShippingAddress *Address    `json:"shipping_address,omitempty"`
	PaymentMethod   string      `json:"payment_method"`
	IsPaid          bool        `json:"is_paid"`
	PaidAt          *time.Time  `json:"paid_at,omitempty"`
	PaymentRef      string      `json:"payment_ref,omitempty"`
	CanceledReason  string      `json:"canceled_reason,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// OrderItem is an immutable snapshot of a cart line at order time. Later
// catalog or price changes never alter it.
type OrderItem struct {
	ID        string `json:"id"`
	OrderID   string `json:"order_id"`
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id,omitempty"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	SalePrice *int64 `json:"sale_price,omitempty"`
	Quantity  int    `json:"quantity"`
}

// Address represents a shipping address snapshot.
type Address struct {
	FullName    string `json:"full_name"`
	AddressLine string `json:"address_line"`
	City        string `json:"city"`
	State       string `json:"state"`
	PostalCode  string `json:"postal_code"`
	Country     string `json:"country"`
	Phone       string `json:"phone,omitempty"`
}

// EffectiveUnitPrice is the price the line was actually charged at.
func (i OrderItem) EffectiveUnitPrice() int64 {
	if i.SalePrice != nil {
		return *i.SalePrice
	}
	return i.UnitPrice
}

// LineTotal returns the charged amount for this line.
func (i OrderItem) LineTotal() int64 {
	return i.EffectiveUnitPrice() * int64(i.Quantity)
}

// ValidStatuses returns all valid order statuses.
func ValidStatuses() []string {
	return []string{
		OrderStatusPending,
		OrderStatusProcessing,
		OrderStatusShipped,
		OrderStatusDelivered,
		OrderStatusCanceled,
	}
}

// NormalizeStatus maps input spellings to canonical statuses. "cancelled" is
// accepted as an alias for "canceled"; everything else must match exactly.
func NormalizeStatus(status string) (string, bool) {
	if status == "cancelled" {
		return OrderStatusCanceled, true
	}
	for _, s := range ValidStatuses() {
		if s == status {
			return s, true
		}
	}
	return "", false
}

// AllowedTransitions defines which status transitions are valid. Delivered
// and canceled are terminal.
func AllowedTransitions() map[string][]string {
	return map[string][]string{
		OrderStatusPending:    {OrderStatusProcessing, OrderStatusCanceled},
		OrderStatusProcessing: {OrderStatusShipped, OrderStatusCanceled},
		OrderStatusShipped:    {OrderStatusDelivered},
		OrderStatusDelivered:  {},
		OrderStatusCanceled:   {},
	}
}

// CanTransitionTo checks if the order can transition to the target status.
func (o *Order) CanTransitionTo(target string) bool {
	allowed, ok := AllowedTransitions()[o.Status]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the order is in a terminal status.
func (o *Order) IsTerminal() bool {
	return o.Status == OrderStatusDelivered || o.Status == OrderStatusCanceled
}
