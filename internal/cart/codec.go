package cart

import (
	"encoding/json"

	"battwheels/internal/domain/model"
)

// The persisted encoding is one JSON record: ordered line items plus the
// optional active coupon.

func encodeState(st model.CartState) (string, error) {
	b, err := json.Marshal(st)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// decodeState fails closed: a payload that does not parse yields ok=false and
// the caller starts from an empty cart. A payload that parses but carries
// junk lines (empty id, non-positive quantity with no way to fix it) is
// normalized rather than rejected.
func decodeState(payload string) (model.CartState, bool) {
	var st model.CartState
	if err := json.Unmarshal([]byte(payload), &st); err != nil {
		return model.CartState{}, false
	}

	items := make([]model.CartLineItem, 0, len(st.Items))
	for _, it := range st.Items {
		if it.ID == "" {
			continue
		}
		it.Quantity = clampQuantity(it.Quantity, it.StockQuantity)
		items = append(items, it)
	}
	st.Items = items

	if st.Coupon != nil && (st.Coupon.Code == "" || st.Coupon.DiscountPercent <= 0) {
		st.Coupon = nil
	}

	return st, true
}
