// Package seed loads the demo catalog into an empty store.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/aromadb/aroma-catalog/app/catalog"
	"github.com/aromadb/aroma-catalog/composition"
	"github.com/aromadb/aroma-catalog/logging"
	"github.com/aromadb/aroma-catalog/models"
)

//go:embed data.yaml
var defaultData []byte

type Ingredient struct {
	Name            string   `yaml:"name"`
	Type            string   `yaml:"type"`
	Description     string   `yaml:"description"`
	Properties      string   `yaml:"properties"`
	Notes           string   `yaml:"notes"`
	PricePerML      *string  `yaml:"price_per_ml"`
	StockAmount     *string  `yaml:"stock_amount"`
	MeasurementType string   `yaml:"measurement_type"`
	DropsPerML      *float64 `yaml:"drops_per_ml"`
}

type PackagingItem struct {
	Name        string   `yaml:"name"`
	Type        string   `yaml:"type"`
	Description string   `yaml:"description"`
	Price       string   `yaml:"price"`
	StockAmount int      `yaml:"stock_amount"`
	Capacity    *float64 `yaml:"capacity"`
	Color       *string  `yaml:"color"`
	Material    string   `yaml:"material"`
	Notes       string   `yaml:"notes"`
}

type Bundle struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Capacity    float64  `yaml:"capacity"`
	Notes       string   `yaml:"notes"`
	Items       []string `yaml:"items"`
}

type RecipeLine struct {
	Name     string `yaml:"name"`
	AmountML string `yaml:"amount_ml"`
}

type Recipe struct {
	Name          string       `yaml:"name"`
	Description   string       `yaml:"description"`
	TotalVolumeML float64      `yaml:"total_volume_ml"`
	RetailPrice   *string      `yaml:"retail_price"`
	Notes         string       `yaml:"notes"`
	PackageBundle string       `yaml:"package_bundle"`
	Ingredients   []RecipeLine `yaml:"ingredients"`
}

type Data struct {
	Ingredients    []Ingredient    `yaml:"ingredients"`
	PackagingItems []PackagingItem `yaml:"packaging_items"`
	Bundles        []Bundle        `yaml:"package_bundles"`
	Recipes        []Recipe        `yaml:"recipes"`
}

// Result reports what Apply wrote. Applied is false when the store already
// held data and nothing was written.
type Result struct {
	Applied        bool
	Ingredients    int
	PackagingItems int
	Bundles        int
	Recipes        int
}

// Default returns the embedded demo catalog.
func Default() (*Data, error) {
	return Parse(defaultData)
}

func Parse(raw []byte) (*Data, error) {
	var data Data
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse seed data: %w", err)
	}
	return &data, nil
}

// ParseFile reads a seed file in the same format as the embedded data.
func ParseFile(path string) (*Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(raw)
}

// Apply writes data through the catalog service, so bundle and recipe totals
// are priced the same way as API writes. Everything is applied in one
// transaction, and only when the store is empty.
func Apply(ctx context.Context, store *models.Store, data *Data) (Result, error) {
	log := logging.FromContext(ctx)

	empty, err := store.IsEmpty(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("check for existing data: %w", err)
	}
	if !empty {
		log.Info("Database already contains data, skipping seed")
		return Result{}, nil
	}

	var result Result
	err = store.Transaction(ctx, func(tx *models.Store) error {
		result = Result{Applied: true}
		s := &seeder{tx: tx, service: catalog.NewService(tx), result: &result}
		return s.apply(ctx, data)
	})
	if err != nil {
		return Result{}, err
	}

	log.Info("Database seeded",
		zap.Int("ingredients", result.Ingredients),
		zap.Int("packaging_items", result.PackagingItems),
		zap.Int("bundles", result.Bundles),
		zap.Int("recipes", result.Recipes))
	return result, nil
}

type seeder struct {
	tx      *models.Store
	service *catalog.Service
	result  *Result

	ingredients map[string]uint
	items       map[string]uint
	bundles     map[string]uint
}

func (s *seeder) apply(ctx context.Context, data *Data) error {
	s.ingredients = make(map[string]uint, len(data.Ingredients))
	s.items = make(map[string]uint, len(data.PackagingItems))
	s.bundles = make(map[string]uint, len(data.Bundles))

	for _, in := range data.Ingredients {
		if err := s.ingredient(ctx, in); err != nil {
			return fmt.Errorf("seed ingredient %q: %w", in.Name, err)
		}
	}
	for _, item := range data.PackagingItems {
		if err := s.packagingItem(ctx, item); err != nil {
			return fmt.Errorf("seed packaging item %q: %w", item.Name, err)
		}
	}
	for _, bundle := range data.Bundles {
		if err := s.bundle(ctx, bundle); err != nil {
			return fmt.Errorf("seed bundle %q: %w", bundle.Name, err)
		}
	}
	for _, recipe := range data.Recipes {
		if err := s.recipe(ctx, recipe); err != nil {
			return fmt.Errorf("seed recipe %q: %w", recipe.Name, err)
		}
	}
	return nil
}

func (s *seeder) ingredient(ctx context.Context, in Ingredient) error {
	unitCost, err := nullMoney(in.PricePerML)
	if err != nil {
		return err
	}
	stock, err := nullMoney(in.StockAmount)
	if err != nil {
		return err
	}
	measurement := models.MeasurementType(in.MeasurementType)
	if measurement == "" {
		measurement = models.MeasurementML
	}
	if !measurement.Valid() {
		return fmt.Errorf("unknown measurement type %q", in.MeasurementType)
	}

	ingredient := &models.Ingredient{
		Name:            in.Name,
		Category:        in.Type,
		Description:     in.Description,
		Properties:      in.Properties,
		Notes:           in.Notes,
		UnitCost:        unitCost,
		StockAmount:     stock,
		MeasurementType: measurement,
		DropsPerML:      in.DropsPerML,
	}
	if err := s.tx.Ingredients.Create(ctx, ingredient); err != nil {
		return err
	}
	s.ingredients[in.Name] = ingredient.ID
	s.result.Ingredients++
	return nil
}

func (s *seeder) packagingItem(ctx context.Context, in PackagingItem) error {
	price, err := decimal.NewFromString(in.Price)
	if err != nil {
		return fmt.Errorf("price %q: %w", in.Price, err)
	}
	item := &models.PackagingItem{
		Name:          in.Name,
		Category:      in.Type,
		Description:   in.Description,
		UnitPrice:     price,
		StockQuantity: in.StockAmount,
		Capacity:      in.Capacity,
		Color:         in.Color,
		Material:      in.Material,
		Notes:         in.Notes,
	}
	if err := s.tx.PackagingItems.Create(ctx, item); err != nil {
		return err
	}
	s.items[in.Name] = item.ID
	s.result.PackagingItems++
	return nil
}

func (s *seeder) bundle(ctx context.Context, in Bundle) error {
	ids := make([]uint, 0, len(in.Items))
	for _, name := range in.Items {
		id, ok := s.items[name]
		if !ok {
			return fmt.Errorf("unknown packaging item %q", name)
		}
		ids = append(ids, id)
	}
	bundle, err := s.service.CreateBundle(ctx, catalog.BundleInput{
		Name:        in.Name,
		Description: in.Description,
		Capacity:    in.Capacity,
		Notes:       in.Notes,
		ItemIDs:     ids,
	})
	if err != nil {
		return err
	}
	s.bundles[in.Name] = bundle.ID
	s.result.Bundles++
	return nil
}

func (s *seeder) recipe(ctx context.Context, in Recipe) error {
	bundleID, ok := s.bundles[in.PackageBundle]
	if !ok {
		return fmt.Errorf("unknown package bundle %q", in.PackageBundle)
	}
	retail, err := nullMoney(in.RetailPrice)
	if err != nil {
		return err
	}

	lines := make([]composition.Line, 0, len(in.Ingredients))
	for _, line := range in.Ingredients {
		id, ok := s.ingredients[line.Name]
		if !ok {
			return fmt.Errorf("unknown ingredient %q", line.Name)
		}
		amount, err := decimal.NewFromString(line.AmountML)
		if err != nil {
			return fmt.Errorf("amount for %q: %w", line.Name, err)
		}
		lines = append(lines, composition.Line{IngredientID: id, Amount: amount, Unit: models.MeasurementML})
	}

	_, err = s.service.CreateRecipe(ctx, catalog.RecipeInput{
		Name:            in.Name,
		Description:     in.Description,
		TotalVolumeML:   in.TotalVolumeML,
		RetailPrice:     retail,
		Notes:           in.Notes,
		PackageBundleID: bundleID,
		Ingredients:     lines,
	})
	if err != nil {
		return err
	}
	s.result.Recipes++
	return nil
}

var errEmptyAmount = errors.New("empty amount")

func nullMoney(s *string) (decimal.NullDecimal, error) {
	if s == nil {
		return decimal.NullDecimal{}, nil
	}
	if *s == "" {
		return decimal.NullDecimal{}, errEmptyAmount
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("amount %q: %w", *s, err)
	}
	return decimal.NewNullDecimal(d), nil
}
