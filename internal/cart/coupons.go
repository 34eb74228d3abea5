package cart

import (
	"strings"

	"battwheels/internal/domain/model"
)

// CouponBook maps normalized (uppercase) codes to their discount percent.
type CouponBook map[string]int64

func DefaultCoupons() CouponBook {
	return CouponBook{
		"FIRST10":      10,
		"BATTWHEELS10": 10,
	}
}

// Lookup matches case-insensitively and returns the normalized coupon.
func (b CouponBook) Lookup(code string) (model.Coupon, bool) {
	norm := strings.ToUpper(strings.TrimSpace(code))
	pct, ok := b[norm]
	if !ok {
		return model.Coupon{}, false
	}
	return model.Coupon{Code: norm, DiscountPercent: pct}, true
}
