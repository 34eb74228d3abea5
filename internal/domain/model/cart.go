package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// One cart line. Display fields and FinalPrice are a snapshot taken from the
// catalog when the line was added; the cart must survive the catalog entry
// changing or disappearing afterwards.
type CartLineItem struct {
	ID         string          `json:"id"`
	SKU        string          `json:"sku"`
	Name       string          `json:"name"`
	Slug       string          `json:"slug"`
	Images     []string        `json:"images,omitempty"`
	FinalPrice decimal.Decimal `json:"final_price"`
	Quantity   int64           `json:"quantity"`
	// nil means the catalog did not report a stock cap.
	StockQuantity *int64 `json:"stock_quantity,omitempty"`
}

// Cart-level discount. At most one is active at a time.
type Coupon struct {
	Code            string `json:"code"`
	DiscountPercent int64  `json:"discount_percent"`
}

// CartState is the full persisted record: ordered line items plus the
// optional active coupon. Encoded as one JSON value under one key.
type CartState struct {
	Items  []CartLineItem `json:"items"`
	Coupon *Coupon        `json:"coupon,omitempty"`
}

// CartRecord is the storage row backing one persisted cart state.
type CartRecord struct {
	Key       string    `gorm:"primaryKey;type:varchar(64)" json:"key"`
	Payload   string    `gorm:"type:text;not null" json:"payload"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
