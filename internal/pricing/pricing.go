// Package pricing computes effective prices and cart totals.
//
// Missing values are permissive: a zero quantity counts as 1 and a zero rate or discount
// simply prices at zero, so a partially populated item never fails while rendering.
package pricing

import (
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
)

// EffectiveUnitPrice returns rate * (1 - discount/100).
func EffectiveUnitPrice(rate, discountPercent decimal.Decimal) decimal.Decimal {
	return rate.Mul(one.Sub(discountPercent.Div(hundred)))
}

// LineTotal returns the effective unit price multiplied by the item quantity.
func LineTotal(item domain.LineItem) decimal.Decimal {
	qty := item.Quantity
	if qty <= 0 {
		qty = 1
	}
	return EffectiveUnitPrice(item.UnitRate, item.DiscountPercent).Mul(decimal.NewFromInt(int64(qty)))
}

// CartTotal sums LineTotal over every item.
func CartTotal(items []domain.LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(LineTotal(item))
	}
	return total
}

// Format renders an amount with two decimal places.
func Format(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

// FormatCartTotal is Format(CartTotal(items)), the value sent as an order total.
func FormatCartTotal(items []domain.LineItem) string {
	return Format(CartTotal(items))
}
