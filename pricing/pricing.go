// Package pricing derives the cached totals stored on bundles and recipes.
// Every function is pure; callers persist the results.
package pricing

import (
	"github.com/aromadb/aroma-catalog/models"
	"github.com/shopspring/decimal"
)

// Bundle returns the sum of the unit prices of items. An empty set prices
// at zero.
func Bundle(items []models.PackagingItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.UnitPrice)
	}
	return total
}

// Ingredients returns Σ(amount × unit cost) over lines. An ingredient
// without a unit cost contributes nothing.
func Ingredients(lines []models.IngredientAmount) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.AmountML.Mul(unitCost(line.Ingredient)))
	}
	return total
}

// Recipe returns the ingredient cost of lines plus the stored total price of
// bundle.
func Recipe(lines []models.IngredientAmount, bundle models.PackageBundle) decimal.Decimal {
	return Ingredients(lines).Add(bundle.TotalPrice)
}

func unitCost(ingredient models.Ingredient) decimal.Decimal {
	if !ingredient.UnitCost.Valid {
		return decimal.Zero
	}
	return ingredient.UnitCost.Decimal
}
