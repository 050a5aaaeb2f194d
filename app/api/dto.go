package api

import (
	"github.com/aromadb/aroma-catalog/models"
)

type Ingredient struct {
	ID              uint     `json:"id"`
	Name            string   `json:"name"`
	Type            string   `json:"type"`
	Description     string   `json:"description"`
	Properties      string   `json:"properties"`
	Notes           string   `json:"notes"`
	PricePerML      *float64 `json:"price_per_ml"`
	StockAmount     *float64 `json:"stock_amount"`
	MeasurementType string   `json:"measurement_type"`
	DropsPerML      *float64 `json:"drops_per_ml"`
}

type PackagingItem struct {
	ID          uint     `json:"id"`
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	StockAmount int      `json:"stock_amount"`
	Capacity    *float64 `json:"capacity"`
	Color       *string  `json:"color"`
	Material    string   `json:"material"`
	Notes       string   `json:"notes"`
}

type PackageBundle struct {
	ID          uint            `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Capacity    float64         `json:"capacity"`
	Notes       string          `json:"notes"`
	TotalPrice  float64         `json:"total_price"`
	Items       []PackagingItem `json:"items"`
}

type RecipeIngredient struct {
	Ingredient  Ingredient `json:"ingredient"`
	AmountML    float64    `json:"amount_ml"`
	AmountDrops *float64   `json:"amount_drops,omitempty"`
}

type Recipe struct {
	ID                uint               `json:"id"`
	Name              string             `json:"name"`
	Description       string             `json:"description"`
	TotalVolumeML     float64            `json:"total_volume_ml"`
	RetailPrice       *float64           `json:"retail_price"`
	Notes             string             `json:"notes"`
	IngredientsCost   float64            `json:"ingredients_cost"`
	TotalCost         float64            `json:"total_cost"`
	Margin            *float64           `json:"margin"`
	PackageBundle     PackageBundle      `json:"package_bundle"`
	RecipeIngredients []RecipeIngredient `json:"recipe_ingredients"`
}

func NewIngredient(i *models.Ingredient) Ingredient {
	measurement := i.MeasurementType
	if measurement == "" {
		measurement = models.MeasurementML
	}
	return Ingredient{
		ID:              i.ID,
		Name:            i.Name,
		Type:            i.Category,
		Description:     i.Description,
		Properties:      i.Properties,
		Notes:           i.Notes,
		PricePerML:      NullMoney(i.UnitCost),
		StockAmount:     NullMoney(i.StockAmount),
		MeasurementType: string(measurement),
		DropsPerML:      i.DropsPerML,
	}
}

func NewIngredients(ingredients []models.Ingredient) []Ingredient {
	out := make([]Ingredient, len(ingredients))
	for i := range ingredients {
		out[i] = NewIngredient(&ingredients[i])
	}
	return out
}

func NewPackagingItem(p *models.PackagingItem) PackagingItem {
	return PackagingItem{
		ID:          p.ID,
		Name:        p.Name,
		Type:        p.Category,
		Description: p.Description,
		Price:       Money(p.UnitPrice),
		StockAmount: p.StockQuantity,
		Capacity:    p.Capacity,
		Color:       p.Color,
		Material:    p.Material,
		Notes:       p.Notes,
	}
}

func NewPackagingItems(items []models.PackagingItem) []PackagingItem {
	out := make([]PackagingItem, len(items))
	for i := range items {
		out[i] = NewPackagingItem(&items[i])
	}
	return out
}

func NewPackageBundle(b *models.PackageBundle) PackageBundle {
	return PackageBundle{
		ID:          b.ID,
		Name:        b.Name,
		Description: b.Description,
		Capacity:    b.Capacity,
		Notes:       b.Notes,
		TotalPrice:  Money(b.TotalPrice),
		Items:       NewPackagingItems(b.Items),
	}
}

func NewPackageBundles(bundles []models.PackageBundle) []PackageBundle {
	out := make([]PackageBundle, len(bundles))
	for i := range bundles {
		out[i] = NewPackageBundle(&bundles[i])
	}
	return out
}

// NewRecipe maps a recipe loaded with its bundle and lines. The ingredients
// cost is the stored total minus the stored bundle price.
func NewRecipe(r *models.Recipe) Recipe {
	lines := make([]RecipeIngredient, len(r.Ingredients))
	for i, ri := range r.Ingredients {
		line := RecipeIngredient{
			Ingredient: NewIngredient(&ri.Ingredient),
			AmountML:   Money(ri.AmountML),
		}
		if drops, ok := ri.Ingredient.MLToDrops(ri.AmountML); ok {
			v := drops.Round(2).InexactFloat64()
			line.AmountDrops = &v
		}
		lines[i] = line
	}

	response := Recipe{
		ID:                r.ID,
		Name:              r.Name,
		Description:       r.Description,
		TotalVolumeML:     r.TotalVolumeML,
		RetailPrice:       NullMoney(r.RetailPrice),
		Notes:             r.Notes,
		IngredientsCost:   Money(r.TotalCost.Sub(r.PackageBundle.TotalPrice)),
		TotalCost:         Money(r.TotalCost),
		PackageBundle:     NewPackageBundle(&r.PackageBundle),
		RecipeIngredients: lines,
	}
	if margin, ok := r.Margin(); ok {
		v := margin.InexactFloat64()
		response.Margin = &v
	}
	return response
}

func NewRecipes(recipes []models.Recipe) []Recipe {
	out := make([]Recipe, len(recipes))
	for i := range recipes {
		out[i] = NewRecipe(&recipes[i])
	}
	return out
}
