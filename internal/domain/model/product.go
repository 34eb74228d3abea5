package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Catalog entry. FinalPrice is the listed unit price in rupees; Stock is the
// sellable quantity communicated to carts at add time.
type Product struct {
	ID          string          `gorm:"primaryKey;type:varchar(64)" json:"id"`
	SKU         string          `gorm:"type:varchar(64);not null;uniqueIndex" json:"sku"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	Slug        string          `gorm:"type:varchar(255);not null;index" json:"slug"`
	Description string          `gorm:"type:text" json:"description"`
	Images      []string        `gorm:"serializer:json" json:"images"`
	FinalPrice  decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"final_price"`
	Stock       int64           `gorm:"not null" json:"stock_quantity"`
	IsActive    bool            `gorm:"not null;default:false" json:"is_active"`
	CreatedAt   time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
}
