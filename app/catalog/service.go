// Package catalog runs the validate, price and persist sequence behind every
// bundle and recipe write.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/aromadb/aroma-catalog/composition"
	"github.com/aromadb/aroma-catalog/logging"
	"github.com/aromadb/aroma-catalog/metrics"
	"github.com/aromadb/aroma-catalog/models"
	"github.com/aromadb/aroma-catalog/pricing"
)

const (
	EntityBundle = "bundle"
	EntityRecipe = "recipe"
)

// ErrInvalidInput marks a request rejected before any lookup.
var ErrInvalidInput = errors.New("invalid input")

type BundleInput struct {
	Name        string
	Description string
	Capacity    float64
	Notes       string
	ItemIDs     []uint
}

type RecipeInput struct {
	Name            string
	Description     string
	TotalVolumeML   float64
	RetailPrice     decimal.NullDecimal
	Notes           string
	PackageBundleID uint
	Ingredients     []composition.Line
}

type Service struct {
	store *models.Store
}

func NewService(store *models.Store) *Service {
	return &Service{store: store}
}

func validatorFor(tx *models.Store) *composition.Validator {
	return composition.NewValidator(tx.PackagingItems, tx.Bundles, tx.Ingredients)
}

// CreateBundle validates the items, prices the bundle and stores it.
func (s *Service) CreateBundle(ctx context.Context, in BundleInput) (*models.PackageBundle, error) {
	var id uint
	err := s.store.Transaction(ctx, func(tx *models.Store) error {
		items, err := validatorFor(tx).ValidateBundleComposition(ctx, in.ItemIDs)
		if err != nil {
			return err
		}
		bundle := &models.PackageBundle{
			Name:        in.Name,
			Description: in.Description,
			Capacity:    in.Capacity,
			Notes:       in.Notes,
			TotalPrice:  pricing.Bundle(items),
			Items:       items,
		}
		if err := tx.Bundles.Create(ctx, bundle); err != nil {
			return err
		}
		id = bundle.ID
		return nil
	})
	if err != nil {
		return nil, s.failed(ctx, EntityBundle, err)
	}
	return priced(ctx, EntityBundle, id, s.store.Bundles.GetByID)
}

// UpdateBundle replaces the bundle's fields and membership and reprices it.
func (s *Service) UpdateBundle(ctx context.Context, id uint, in BundleInput) (*models.PackageBundle, error) {
	err := s.store.Transaction(ctx, func(tx *models.Store) error {
		if _, err := tx.Bundles.GetByID(ctx, id); err != nil {
			return err
		}
		items, err := validatorFor(tx).ValidateBundleComposition(ctx, in.ItemIDs)
		if err != nil {
			return err
		}
		return tx.Bundles.Update(ctx, &models.PackageBundle{
			ID:          id,
			Name:        in.Name,
			Description: in.Description,
			Capacity:    in.Capacity,
			Notes:       in.Notes,
			TotalPrice:  pricing.Bundle(items),
			Items:       items,
		})
	})
	if err != nil {
		return nil, s.failed(ctx, EntityBundle, err)
	}
	return priced(ctx, EntityBundle, id, s.store.Bundles.GetByID)
}

// RepriceBundle recomputes the stored total from the current item prices.
func (s *Service) RepriceBundle(ctx context.Context, id uint) (*models.PackageBundle, error) {
	err := s.store.Transaction(ctx, func(tx *models.Store) error {
		bundle, err := tx.Bundles.GetByID(ctx, id)
		if err != nil {
			return err
		}
		items, err := validatorFor(tx).ValidateBundleComposition(ctx, bundle.ItemIDs())
		if err != nil {
			return err
		}
		bundle.TotalPrice = pricing.Bundle(items)
		bundle.Items = items
		return tx.Bundles.Update(ctx, bundle)
	})
	if err != nil {
		return nil, s.failed(ctx, EntityBundle, err)
	}
	return priced(ctx, EntityBundle, id, s.store.Bundles.GetByID)
}

// CreateRecipe validates the bundle and ingredient lines, prices the recipe
// and stores it with its lines in one transaction.
func (s *Service) CreateRecipe(ctx context.Context, in RecipeInput) (*models.Recipe, error) {
	if err := checkLines(in.Ingredients); err != nil {
		return nil, s.failed(ctx, EntityRecipe, err)
	}

	var id uint
	err := s.store.Transaction(ctx, func(tx *models.Store) error {
		recipe, err := buildRecipe(ctx, tx, in)
		if err != nil {
			return err
		}
		if err := tx.Recipes.Create(ctx, recipe); err != nil {
			return err
		}
		id = recipe.ID
		return nil
	})
	if err != nil {
		return nil, s.failed(ctx, EntityRecipe, err)
	}
	return priced(ctx, EntityRecipe, id, s.store.Recipes.GetByID)
}

// UpdateRecipe replaces the recipe's fields and lines and reprices it.
func (s *Service) UpdateRecipe(ctx context.Context, id uint, in RecipeInput) (*models.Recipe, error) {
	if err := checkLines(in.Ingredients); err != nil {
		return nil, s.failed(ctx, EntityRecipe, err)
	}

	err := s.store.Transaction(ctx, func(tx *models.Store) error {
		if _, err := tx.Recipes.GetByID(ctx, id); err != nil {
			return err
		}
		recipe, err := buildRecipe(ctx, tx, in)
		if err != nil {
			return err
		}
		recipe.ID = id
		return tx.Recipes.Update(ctx, recipe)
	})
	if err != nil {
		return nil, s.failed(ctx, EntityRecipe, err)
	}
	return priced(ctx, EntityRecipe, id, s.store.Recipes.GetByID)
}

// RepriceRecipe re-runs validation and pricing on the stored lines and
// bundle.
func (s *Service) RepriceRecipe(ctx context.Context, id uint) (*models.Recipe, error) {
	err := s.store.Transaction(ctx, func(tx *models.Store) error {
		recipe, err := tx.Recipes.GetByID(ctx, id)
		if err != nil {
			return err
		}
		lines := make([]composition.Line, len(recipe.Ingredients))
		for i, ri := range recipe.Ingredients {
			lines[i] = composition.Line{IngredientID: ri.IngredientID, Amount: ri.AmountML, Unit: models.MeasurementML}
		}
		bundle, amounts, err := validatorFor(tx).ValidateRecipeComposition(ctx, recipe.PackageBundleID, lines)
		if err != nil {
			return err
		}
		recipe.TotalCost = pricing.Recipe(amounts, *bundle)
		recipe.Ingredients = recipeLines(amounts)
		return tx.Recipes.Update(ctx, recipe)
	})
	if err != nil {
		return nil, s.failed(ctx, EntityRecipe, err)
	}
	return priced(ctx, EntityRecipe, id, s.store.Recipes.GetByID)
}

// RepriceFailure records one aggregate RepriceAll could not reprice.
type RepriceFailure struct {
	Entity string
	ID     uint
	Err    error
}

type RepriceReport struct {
	Bundles  int
	Recipes  int
	Failures []RepriceFailure
}

// RepriceAll reprices every bundle and then every recipe, so recipes pick up
// the refreshed bundle totals. A failing aggregate is reported and skipped.
func (s *Service) RepriceAll(ctx context.Context) (RepriceReport, error) {
	var report RepriceReport

	bundleIDs, err := s.store.Bundles.IDs(ctx)
	if err != nil {
		return report, fmt.Errorf("list bundles: %w", err)
	}
	for _, id := range bundleIDs {
		if _, err := s.RepriceBundle(ctx, id); err != nil {
			report.Failures = append(report.Failures, RepriceFailure{Entity: EntityBundle, ID: id, Err: err})
			continue
		}
		report.Bundles++
	}

	recipeIDs, err := s.store.Recipes.IDs(ctx)
	if err != nil {
		return report, fmt.Errorf("list recipes: %w", err)
	}
	for _, id := range recipeIDs {
		if _, err := s.RepriceRecipe(ctx, id); err != nil {
			report.Failures = append(report.Failures, RepriceFailure{Entity: EntityRecipe, ID: id, Err: err})
			continue
		}
		report.Recipes++
	}

	return report, nil
}

func buildRecipe(ctx context.Context, tx *models.Store, in RecipeInput) (*models.Recipe, error) {
	bundle, amounts, err := validatorFor(tx).ValidateRecipeComposition(ctx, in.PackageBundleID, in.Ingredients)
	if err != nil {
		return nil, err
	}
	return &models.Recipe{
		Name:            in.Name,
		Description:     in.Description,
		TotalVolumeML:   in.TotalVolumeML,
		RetailPrice:     in.RetailPrice,
		Notes:           in.Notes,
		TotalCost:       pricing.Recipe(amounts, *bundle),
		PackageBundleID: bundle.ID,
		Ingredients:     recipeLines(amounts),
	}, nil
}

func recipeLines(amounts []models.IngredientAmount) []models.RecipeIngredient {
	lines := make([]models.RecipeIngredient, len(amounts))
	for i, amount := range amounts {
		lines[i] = models.RecipeIngredient{
			IngredientID: amount.Ingredient.ID,
			AmountML:     amount.AmountML,
		}
	}
	return lines
}

// checkLines rejects an empty recipe, non-positive amounts and an ingredient
// listed twice.
func checkLines(lines []composition.Line) error {
	if len(lines) == 0 {
		return fmt.Errorf("%w: a recipe needs at least one ingredient", ErrInvalidInput)
	}
	seen := make(map[uint]struct{}, len(lines))
	for _, line := range lines {
		if !line.Amount.IsPositive() {
			return fmt.Errorf("%w: amount for ingredient %d must be greater than zero", ErrInvalidInput, line.IngredientID)
		}
		if _, ok := seen[line.IngredientID]; ok {
			return fmt.Errorf("%w: ingredient %d is listed more than once", ErrInvalidInput, line.IngredientID)
		}
		seen[line.IngredientID] = struct{}{}
	}
	return nil
}

func priced[T any](ctx context.Context, entity string, id uint, get func(context.Context, uint) (T, error)) (T, error) {
	metrics.RecordPriced(entity)
	logging.FromContext(ctx).Debug("aggregate priced", zap.String("entity", entity), zap.Uint("id", id))
	return get(ctx, id)
}

func (s *Service) failed(ctx context.Context, entity string, err error) error {
	reason := FailureReason(err)
	metrics.RecordCompositionFailure(entity, reason)
	logging.FromContext(ctx).Debug("write rejected",
		zap.String("entity", entity),
		zap.String("reason", reason),
		zap.Error(err),
	)
	return err
}

// FailureReason classifies a write error for metrics and logs.
func FailureReason(err error) string {
	var (
		notFound   *composition.ReferenceNotFoundError
		stock      *composition.InsufficientStockError
		conversion *composition.ConversionError
	)
	switch {
	case errors.As(err, &notFound):
		return "reference_not_found"
	case errors.As(err, &stock):
		return "insufficient_stock"
	case errors.As(err, &conversion):
		return "conversion"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, models.ErrDuplicateName):
		return "duplicate_name"
	case errors.Is(err, models.ErrBundleNotFound), errors.Is(err, models.ErrRecipeNotFound):
		return "not_found"
	default:
		return "unexpected"
	}
}
