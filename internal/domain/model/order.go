package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending  OrderStatus = "PENDING"
	OrderStatusPaid     OrderStatus = "PAID"
	OrderStatusShipped  OrderStatus = "SHIPPED"
	OrderStatusCanceled OrderStatus = "CANCELED"
)

// Order created at checkout from the cart summary. The amount columns are the
// summary values at checkout time, not recomputed later.
type Order struct {
	ID             int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderNumber    string          `gorm:"type:varchar(64);not null;uniqueIndex" json:"order_number"`
	CartKey        string          `gorm:"type:varchar(64);not null;uniqueIndex:idx_orders_cart_idem" json:"-"`
	Status         OrderStatus     `gorm:"type:varchar(20);not null;index" json:"status"`
	Subtotal       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	Shipping       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"shipping"`
	Discount       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"discount"`
	Total          decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total"`
	CouponCode     string          `gorm:"type:varchar(32)" json:"coupon_code,omitempty"`
	// Replays are scoped per cart, so two carts may reuse the same key.
	IdempotencyKey string          `gorm:"type:varchar(255);not null;uniqueIndex:idx_orders_cart_idem" json:"-"`
	CreatedAt      time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
