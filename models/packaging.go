package models

import (
	"github.com/shopspring/decimal"
)

// PackagingItem represents a single packaging component such as a bottle,
// cap or label. Capacity is only set for containers.
type PackagingItem struct {
	ID            uint            `gorm:"primaryKey"`
	Name          string          `gorm:"uniqueIndex;not null"`
	Category      string          `gorm:"index"`
	Description   string          `gorm:"type:text"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(18,6);not null"`
	StockQuantity int             `gorm:"not null;default:0"`
	Capacity      *float64
	Color         *string
	Material      string
	Notes         string `gorm:"type:text"`
}

func (p *PackagingItem) TableName() string {
	return "packaging_items"
}
