package models

import (
	"github.com/shopspring/decimal"
)

// MeasurementType is the unit an ingredient is dosed in.
type MeasurementType string

const (
	MeasurementML    MeasurementType = "ml"
	MeasurementDrops MeasurementType = "drops"
)

func (m MeasurementType) Valid() bool {
	return m == MeasurementML || m == MeasurementDrops
}

// Ingredient represents a raw material used in recipes.
// UnitCost is the cost per milliliter and StockAmount the milliliters on hand.
// Both are optional: a null stock is never checked against recipe amounts.
type Ingredient struct {
	ID              uint                `gorm:"primaryKey"`
	Name            string              `gorm:"uniqueIndex;not null"`
	Category        string              `gorm:"index"`
	Description     string              `gorm:"type:text"`
	Properties      string              `gorm:"type:text"`
	Notes           string              `gorm:"type:text"`
	UnitCost        decimal.NullDecimal `gorm:"type:decimal(18,6)"`
	StockAmount     decimal.NullDecimal `gorm:"type:decimal(18,6)"`
	MeasurementType MeasurementType     `gorm:"type:varchar(16);not null;default:'ml'"`
	DropsPerML      *float64            `gorm:"column:drops_per_ml"`
}

func (i *Ingredient) TableName() string {
	return "ingredients"
}

// DropsToML converts a number of drops into milliliters. It reports false when
// the ingredient has no usable conversion factor.
func (i *Ingredient) DropsToML(drops decimal.Decimal) (decimal.Decimal, bool) {
	if i.DropsPerML == nil || *i.DropsPerML <= 0 {
		return decimal.Zero, false
	}
	return drops.Div(decimal.NewFromFloat(*i.DropsPerML)), true
}

// MLToDrops is the inverse of DropsToML, used for display only.
func (i *Ingredient) MLToDrops(ml decimal.Decimal) (decimal.Decimal, bool) {
	if i.MeasurementType != MeasurementDrops || i.DropsPerML == nil || *i.DropsPerML <= 0 {
		return decimal.Zero, false
	}
	return ml.Mul(decimal.NewFromFloat(*i.DropsPerML)), true
}
