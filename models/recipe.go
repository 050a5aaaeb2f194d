package models

import (
	"github.com/shopspring/decimal"
)

// Recipe is a formula of ingredient quantities plus one packaging bundle.
// TotalCost is captured at the recipe's last write.
type Recipe struct {
	ID              uint                `gorm:"primaryKey"`
	Name            string              `gorm:"uniqueIndex;not null"`
	Description     string              `gorm:"type:text"`
	TotalVolumeML   float64             `gorm:"column:total_volume_ml"`
	RetailPrice     decimal.NullDecimal `gorm:"type:decimal(18,6)"`
	Notes           string              `gorm:"type:text"`
	TotalCost       decimal.Decimal     `gorm:"type:decimal(18,6);not null"`
	PackageBundleID uint                `gorm:"not null;index"`
	PackageBundle   PackageBundle       `gorm:"foreignKey:PackageBundleID"`
	Ingredients     []RecipeIngredient  `gorm:"foreignKey:RecipeID"`
}

func (r *Recipe) TableName() string {
	return "recipes"
}

// Margin is the retail price minus the total cost. It reports false when the
// recipe has no retail price.
func (r *Recipe) Margin() (decimal.Decimal, bool) {
	if !r.RetailPrice.Valid {
		return decimal.Zero, false
	}
	return r.RetailPrice.Decimal.Sub(r.TotalCost), true
}

// RecipeIngredient is the join row carrying the amount of an ingredient used
// by a recipe. Position keeps the order the lines were submitted in.
type RecipeIngredient struct {
	RecipeID     uint            `gorm:"primaryKey"`
	IngredientID uint            `gorm:"primaryKey;index"`
	Position     int             `gorm:"not null;default:0"`
	AmountML     decimal.Decimal `gorm:"column:amount_ml;type:decimal(18,6);not null"`
	Ingredient   Ingredient      `gorm:"foreignKey:IngredientID"`
}

func (ri *RecipeIngredient) TableName() string {
	return "recipe_ingredients"
}

// IngredientAmount pairs a resolved ingredient with the milliliters a recipe
// consumes of it.
type IngredientAmount struct {
	Ingredient Ingredient
	AmountML   decimal.Decimal
}
