package export

import (
	"strconv"
	"time"

	"github.com/aromadb/aroma-catalog/models"
)

const (
	CollectionIngredients = "ingredients"
	CollectionPackaging   = "packaging"
	CollectionBundles     = "packagingBundles"
	CollectionRecipes     = "recipes"
)

const (
	ingredientMinimumStock = 0.0
	packagingMinimumStock  = 10
	componentQuantity      = 1
)

type IngredientDoc struct {
	UserID          string    `json:"userId"`
	Name            string    `json:"name"`
	Type            string    `json:"type"`
	MeasurementUnit string    `json:"measurementUnit"`
	StockQuantity   float64   `json:"stockQuantity"`
	MinimumStock    float64   `json:"minimumStock"`
	CostPerUnit     float64   `json:"costPerUnit"`
	Notes           string    `json:"notes"`
	Description     string    `json:"description"`
	Properties      string    `json:"properties"`
	DropsPerML      *float64  `json:"dropsPerMl"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type PackagingDoc struct {
	UserID        string    `json:"userId"`
	Name          string    `json:"name"`
	Type          string    `json:"type"`
	Size          *string   `json:"size"`
	StockQuantity int       `json:"stockQuantity"`
	MinimumStock  int       `json:"minimumStock"`
	CostPerUnit   float64   `json:"costPerUnit"`
	Notes         string    `json:"notes"`
	Description   string    `json:"description"`
	Color         *string   `json:"color"`
	Material      string    `json:"material"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type ComponentDoc struct {
	PackagingID string `json:"packagingId"`
	Quantity    int    `json:"quantity"`
	Type        string `json:"type"`
}

type BundleDoc struct {
	UserID      string         `json:"userId"`
	Name        string         `json:"name"`
	Components  []ComponentDoc `json:"components"`
	TotalCost   float64        `json:"totalCost"`
	Notes       string         `json:"notes"`
	Description string         `json:"description"`
	Capacity    float64        `json:"capacity"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

type RecipeLineDoc struct {
	IngredientID    string  `json:"ingredientId"`
	Quantity        float64 `json:"quantity"`
	MeasurementUnit string  `json:"measurementUnit"`
}

type RecipeDoc struct {
	UserID            string          `json:"userId"`
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	TotalVolume       float64         `json:"totalVolume"`
	MeasurementUnit   string          `json:"measurementUnit"`
	Ingredients       []RecipeLineDoc `json:"ingredients"`
	PackagingBundleID *string         `json:"packagingBundleId"`
	RetailPrice       float64         `json:"retailPrice"`
	Notes             string          `json:"notes"`
	TotalCost         float64         `json:"totalCost"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

func ingredientDoc(uid string, in models.Ingredient, now time.Time) IngredientDoc {
	unit := string(in.MeasurementType)
	if unit == "" {
		unit = string(models.MeasurementML)
	}
	return IngredientDoc{
		UserID:          uid,
		Name:            in.Name,
		Type:            in.Category,
		MeasurementUnit: unit,
		StockQuantity:   in.StockAmount.Decimal.InexactFloat64(),
		MinimumStock:    ingredientMinimumStock,
		CostPerUnit:     in.UnitCost.Decimal.InexactFloat64(),
		Notes:           in.Notes,
		Description:     in.Description,
		Properties:      in.Properties,
		DropsPerML:      in.DropsPerML,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func packagingDoc(uid string, item models.PackagingItem, now time.Time) PackagingDoc {
	var size *string
	if item.Capacity != nil && *item.Capacity != 0 {
		s := strconv.FormatFloat(*item.Capacity, 'f', -1, 64) + "ml"
		size = &s
	}
	return PackagingDoc{
		UserID:        uid,
		Name:          item.Name,
		Type:          item.Category,
		Size:          size,
		StockQuantity: item.StockQuantity,
		MinimumStock:  packagingMinimumStock,
		CostPerUnit:   item.UnitPrice.InexactFloat64(),
		Notes:         item.Notes,
		Description:   item.Description,
		Color:         item.Color,
		Material:      item.Material,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
