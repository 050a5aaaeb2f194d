package models

import (
	"github.com/shopspring/decimal"
)

// PackageBundle is a named set of packaging items with an aggregate price.
// TotalPrice is the sum of the member prices captured at the bundle's last
// write; it is not refreshed when a member item changes afterwards.
type PackageBundle struct {
	ID          uint            `gorm:"primaryKey"`
	Name        string          `gorm:"uniqueIndex;not null"`
	Description string          `gorm:"type:text"`
	Capacity    float64
	Notes       string          `gorm:"type:text"`
	TotalPrice  decimal.Decimal `gorm:"type:decimal(18,6);not null"`
	Items       []PackagingItem `gorm:"many2many:package_bundle_items"`
}

func (b *PackageBundle) TableName() string {
	return "package_bundles"
}

// PackageBundleItem is the join row between a bundle and one of its items.
type PackageBundleItem struct {
	PackageBundleID uint `gorm:"primaryKey"`
	PackagingItemID uint `gorm:"primaryKey;index"`
}

func (PackageBundleItem) TableName() string {
	return "package_bundle_items"
}

// ItemIDs returns the ids of the bundle's loaded members.
func (b *PackageBundle) ItemIDs() []uint {
	ids := make([]uint, len(b.Items))
	for i, item := range b.Items {
		ids[i] = item.ID
	}
	return ids
}
