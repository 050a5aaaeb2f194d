// Package composition resolves and checks the references a bundle or recipe
// is built from before anything is priced or written.
package composition

import (
	"context"
	"errors"
	"fmt"

	"github.com/aromadb/aroma-catalog/models"
	"github.com/shopspring/decimal"
)

type ItemFinder interface {
	GetByIDs(ctx context.Context, ids []uint) ([]models.PackagingItem, error)
}

type BundleFinder interface {
	GetByID(ctx context.Context, id uint) (*models.PackageBundle, error)
}

type IngredientFinder interface {
	GetByID(ctx context.Context, id uint) (*models.Ingredient, error)
}

// Line is one requested recipe ingredient. Amount is in Unit, which is
// milliliters unless the caller asked for drops.
type Line struct {
	IngredientID uint
	Amount       decimal.Decimal
	Unit         models.MeasurementType
}

// Validator is read-only. It takes no locks, so the snapshot it validates
// can change before the caller commits.
type Validator struct {
	items       ItemFinder
	bundles     BundleFinder
	ingredients IngredientFinder
}

func NewValidator(items ItemFinder, bundles BundleFinder, ingredients IngredientFinder) *Validator {
	return &Validator{
		items:       items,
		bundles:     bundles,
		ingredients: ingredients,
	}
}

// ValidateBundleComposition resolves itemIDs. Duplicate ids collapse to a
// single member. It fails with a ReferenceNotFoundError naming every id that
// does not exist.
func (v *Validator) ValidateBundleComposition(ctx context.Context, itemIDs []uint) ([]models.PackagingItem, error) {
	ids := Distinct(itemIDs)

	items, err := v.items.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch packaging items: %w", err)
	}
	if len(items) == len(ids) {
		return items, nil
	}

	found := make(map[uint]struct{}, len(items))
	for _, item := range items {
		found[item.ID] = struct{}{}
	}
	missing := []uint{}
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	return nil, &ReferenceNotFoundError{Kind: KindPackagingItem, IDs: missing}
}

// ValidateRecipeComposition resolves the bundle, then every line in input
// order, stopping at the first missing ingredient. Lines given in drops are
// converted to milliliters. Only after every reference resolves is stock
// checked; an ingredient without tracked stock is never rejected.
func (v *Validator) ValidateRecipeComposition(ctx context.Context, bundleID uint, lines []Line) (*models.PackageBundle, []models.IngredientAmount, error) {
	bundle, err := v.bundles.GetByID(ctx, bundleID)
	if err != nil {
		if errors.Is(err, models.ErrBundleNotFound) {
			return nil, nil, &ReferenceNotFoundError{Kind: KindBundle, IDs: []uint{bundleID}}
		}
		return nil, nil, fmt.Errorf("fetch package bundle: %w", err)
	}

	amounts := make([]models.IngredientAmount, 0, len(lines))
	for _, line := range lines {
		ingredient, err := v.ingredients.GetByID(ctx, line.IngredientID)
		if err != nil {
			if errors.Is(err, models.ErrIngredientNotFound) {
				return nil, nil, &ReferenceNotFoundError{Kind: KindIngredient, IDs: []uint{line.IngredientID}}
			}
			return nil, nil, fmt.Errorf("fetch ingredient %d: %w", line.IngredientID, err)
		}

		amountML := line.Amount
		if line.Unit == models.MeasurementDrops {
			converted, ok := ingredient.DropsToML(line.Amount)
			if !ok {
				return nil, nil, &ConversionError{Ingredient: ingredient.Name}
			}
			amountML = converted
		}
		amounts = append(amounts, models.IngredientAmount{Ingredient: *ingredient, AmountML: amountML})
	}

	for _, amount := range amounts {
		stock := amount.Ingredient.StockAmount
		if stock.Valid && stock.Decimal.LessThan(amount.AmountML) {
			return nil, nil, &InsufficientStockError{
				Ingredient: amount.Ingredient.Name,
				Requested:  amount.AmountML,
				Available:  stock.Decimal,
			}
		}
	}

	return bundle, amounts, nil
}

// Distinct returns ids without repeats, keeping first-seen order.
func Distinct(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
