package cart

import (
	"github.com/shopspring/decimal"

	"battwheels/internal/domain/model"
)

// PricingConfig holds the shipping rule constants.
type PricingConfig struct {
	FreeShippingThreshold decimal.Decimal // minimum subtotal for free shipping
	FlatShippingFee       decimal.Decimal // fee charged below the threshold
}

func DefaultPricing() PricingConfig {
	return PricingConfig{
		FreeShippingThreshold: decimal.NewFromInt(2000),
		FlatShippingFee:       decimal.NewFromInt(99),
	}
}

// Summary is the order summary shown at the cart level and handed to
// checkout: subtotal, shipping, coupon discount, grand total.
type Summary struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

// Subtotal is sum(final_price * quantity) over all lines.
func Subtotal(items []model.CartLineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.FinalPrice.Mul(decimal.NewFromInt(it.Quantity)))
	}
	return total
}

// Count is the total unit count, not the distinct-SKU count.
func Count(items []model.CartLineItem) int64 {
	var n int64
	for _, it := range items {
		n += it.Quantity
	}
	return n
}

// Summarize derives the totals. The shipping rule applies to every cart,
// zero-subtotal included. The discount is rounded half-up to the whole rupee
// (decimal.Round is half away from zero, half-up for non-negative amounts).
// Total never goes below zero.
func Summarize(items []model.CartLineItem, coupon *model.Coupon, cfg PricingConfig) Summary {
	subtotal := Subtotal(items)

	shipping := cfg.FlatShippingFee
	if subtotal.GreaterThanOrEqual(cfg.FreeShippingThreshold) {
		shipping = decimal.Zero
	}

	discount := decimal.Zero
	if coupon != nil {
		discount = subtotal.
			Mul(decimal.NewFromInt(coupon.DiscountPercent)).
			Div(decimal.NewFromInt(100)).
			Round(0)
	}

	total := subtotal.Add(shipping).Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return Summary{
		Subtotal: subtotal,
		Shipping: shipping,
		Discount: discount,
		Total:    total,
	}
}
