package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// LineItem is one product entry in the cart with the price captured when it was added.
// JSON names match what the storefront has always persisted under the "cart" key.
type LineItem struct {
	ProductID       int64           `json:"sub_id"`
	ProductName     string          `json:"subName"`
	CategoryName    string          `json:"productName"`
	UnitLabel       string          `json:"weight,omitempty"`
	UnitRate        decimal.Decimal `json:"rate"`
	DiscountPercent decimal.Decimal `json:"discount"`
	Quantity        int             `json:"quantity"`
	ImageRef        string          `json:"childimg,omitempty"`
}

// MarshalJSON writes rate and discount as JSON numbers, the form the ordering service
// reads in cart_data.
func (i LineItem) MarshalJSON() ([]byte, error) {
	type plain LineItem
	return json.Marshal(struct {
		plain
		UnitRate        json.Number `json:"rate"`
		DiscountPercent json.Number `json:"discount"`
	}{
		plain:           plain(i),
		UnitRate:        json.Number(i.UnitRate.String()),
		DiscountPercent: json.Number(i.DiscountPercent.String()),
	})
}

// Same reports whether o describes the same entry, comparing prices by value.
func (i LineItem) Same(o LineItem) bool {
	return i.ProductID == o.ProductID &&
		i.ProductName == o.ProductName &&
		i.CategoryName == o.CategoryName &&
		i.UnitLabel == o.UnitLabel &&
		i.UnitRate.Equal(o.UnitRate) &&
		i.DiscountPercent.Equal(o.DiscountPercent) &&
		i.Quantity == o.Quantity &&
		i.ImageRef == o.ImageRef
}

// Cart is an ordered, non deduplicated sequence of line items.
type Cart []LineItem

func (c Cart) IsEmpty() bool {
	return len(c) == 0
}

// Clone returns a copy that shares no backing array with c.
func (c Cart) Clone() Cart {
	if c == nil {
		return Cart{}
	}
	out := make(Cart, len(c))
	copy(out, c)
	return out
}

var hundred = decimal.NewFromInt(100)

// Normalized returns the item with its invariants enforced: quantity at least 1,
// discount within [0,100] and a non negative rate.
func (i LineItem) Normalized() LineItem {
	if i.Quantity < 1 {
		i.Quantity = 1
	}
	if i.DiscountPercent.IsNegative() {
		i.DiscountPercent = decimal.Zero
	}
	if i.DiscountPercent.GreaterThan(hundred) {
		i.DiscountPercent = hundred
	}
	if i.UnitRate.IsNegative() {
		i.UnitRate = decimal.Zero
	}
	return i
}
