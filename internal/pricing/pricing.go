// Package pricing computes order totals from line items and a pricing policy.
// All amounts are int64 paise.
package pricing

import "math"

// Policy holds the pricing constants applied at checkout.
type Policy struct {
	// TaxRate is the fractional tax rate applied to the subtotal, e.g. 0.10.
	TaxRate float64

	// FreeShippingThreshold is the subtotal above which shipping is free.
	FreeShippingThreshold int64

	// FlatShippingRate is charged when the subtotal does not exceed the
	// threshold.
	FlatShippingRate int64
}

// LineItem is the minimal shape the calculator needs. Cart and order items
// both satisfy it via Quantity plus an effective unit price.
type LineItem struct {
	Quantity  int
	UnitPrice int64
	// SalePrice, when non-nil, always wins over UnitPrice.
	SalePrice *int64
}

// Totals is the result of a pricing computation.
type Totals struct {
	ItemsAmount    int64 `json:"items_amount"`
	TaxAmount      int64 `json:"tax_amount"`
	ShippingAmount int64 `json:"shipping_amount"`
	TotalAmount    int64 `json:"total_amount"`
}

// EffectiveUnitPrice returns the sale price when set, otherwise the list price.
func (li LineItem) EffectiveUnitPrice() int64 {
	if li.SalePrice != nil {
		return *li.SalePrice
	}
	return li.UnitPrice
}

// Compute derives subtotal, tax, shipping, and total from the given items and
// policy. It is a pure function: no side effects, identical inputs always
// produce identical outputs.
func Compute(items []LineItem, policy Policy) Totals {
	var subtotal int64
	for _, item := range items {
		subtotal += int64(item.Quantity) * item.EffectiveUnitPrice()
	}

	tax := int64(math.Round(float64(subtotal) * policy.TaxRate))

	var shipping int64
	if subtotal <= policy.FreeShippingThreshold {
		shipping = policy.FlatShippingRate
	}

	return Totals{
		ItemsAmount:    subtotal,
		TaxAmount:      tax,
		ShippingAmount: shipping,
		TotalAmount:    subtotal + tax + shipping,
	}
}
