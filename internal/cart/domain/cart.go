package domain

import "time"

// Cart represents a shopping cart. Items keep insertion order, which is also
// the display order.
type Cart struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	Items           []CartItem `json:"items"`
	IsOpen          bool       `json:"is_open"`
	ShippingAddress *Address   `json:"shipping_address,omitempty"`
	Currency        string     `json:"currency"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	ExpiresAt       time.Time  `json:"expires_at"`
}

// CartItem represents a single line in the cart, unique per
// (ProductID, VariantID). Prices are int64 paise.
type CartItem struct {
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id,omitempty"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	// SalePrice, when set, always takes precedence over UnitPrice.
	SalePrice *int64 `json:"sale_price,omitempty"`
	Quantity  int    `json:"quantity"`
	ImageURL  string `json:"image_url,omitempty"`
}

// Address is a shipping address snapshot.
type Address struct {
	FullName    string `json:"full_name"`
	AddressLine string `json:"address_line"`
	City        string `json:"city"`
	State       string `json:"state"`
	PostalCode  string `json:"postal_code"`
	Country     string `json:"country"`
	Phone       string `json:"phone,omitempty"`
}

// EffectiveUnitPrice returns the sale price when present, otherwise the list
// price.
func (i CartItem) EffectiveUnitPrice() int64 {
	if i.SalePrice != nil {
		return *i.SalePrice
	}
	return i.UnitPrice
}

// ItemCount returns the total number of units across all lines.
func (c *Cart) ItemCount() int {
	var count int
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// FindItemIndex returns the index of the line matching the given product and
// variant, or -1 if absent.
func (c *Cart) FindItemIndex(productID, variantID string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID && c.Items[i].VariantID == variantID {
			return i
		}
	}
	return -1
}
