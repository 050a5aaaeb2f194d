package seed

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aromadb/aroma-catalog/models"
	"github.com/aromadb/aroma-catalog/testutil"
)

func assertMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

func TestDefaultData(t *testing.T) {
	data, err := Default()

	require.NoError(t, err)
	assert.Len(t, data.Ingredients, 8)
	assert.Len(t, data.PackagingItems, 3)
	require.Len(t, data.Bundles, 1)
	assert.Equal(t, "Standard 30ml Package", data.Bundles[0].Name)
	assert.Len(t, data.Recipes, 3)
	assert.Nil(t, data.Ingredients[2].DropsPerML)
	assert.Nil(t, data.PackagingItems[1].Capacity)
}

func TestApply(t *testing.T) {
	// Arrange
	ctx := context.Background()
	store := testutil.NewStore(t)
	data, err := Default()
	require.NoError(t, err)

	// Act
	result, err := Apply(ctx, store, data)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, Result{Applied: true, Ingredients: 8, PackagingItems: 3, Bundles: 1, Recipes: 3}, result)

	bundle, err := store.Bundles.GetByName(ctx, "Standard 30ml Package")
	require.NoError(t, err)
	assertMoney(t, "4.00", bundle.TotalPrice)
	assert.Len(t, bundle.Items, 3)

	totals := map[string]string{
		"Relaxing Sleep Blend":   "27.30",
		"Stress Relief Roll-on":  "165.15",
		"Luxury Rose Facial Oil": "331.125",
	}
	for name, want := range totals {
		recipe, err := store.Recipes.GetByName(ctx, name)
		require.NoError(t, err, name)
		assertMoney(t, want, recipe.TotalCost)
		assert.Equal(t, bundle.ID, recipe.PackageBundleID)
	}

	lavender, err := store.Ingredients.GetByName(ctx, "Lavender Essential Oil")
	require.NoError(t, err)
	assert.Equal(t, models.MeasurementDrops, lavender.MeasurementType)
	require.NotNil(t, lavender.DropsPerML)
	assert.Equal(t, 20.0, *lavender.DropsPerML)
}

func TestApplySkipsNonEmptyStore(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	require.NoError(t, store.Ingredients.Create(ctx, &models.Ingredient{Name: "Existing", MeasurementType: models.MeasurementML}))
	data, err := Default()
	require.NoError(t, err)

	result, err := Apply(ctx, store, data)

	require.NoError(t, err)
	assert.False(t, result.Applied)
	_, err = store.Ingredients.GetByName(ctx, "Lavender Essential Oil")
	assert.ErrorIs(t, err, models.ErrIngredientNotFound)
}

func TestApplyRollsBackOnFailure(t *testing.T) {
	// Arrange
	ctx := context.Background()
	store := testutil.NewStore(t)
	data, err := Parse([]byte(`
ingredients:
  - name: Rose Otto
    price_per_ml: "150"
    stock_amount: "1"
    measurement_type: ml
packaging_items:
  - name: Bottle
    price: "2.50"
package_bundles:
  - name: Basic
    items: [Bottle]
recipes:
  - name: Too Much Rose
    package_bundle: Basic
    ingredients:
      - {name: Rose Otto, amount_ml: "5"}
`))
	require.NoError(t, err)

	// Act
	_, err = Apply(ctx, store, data)

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), `seed recipe "Too Much Rose"`)
	empty, err := store.IsEmpty(ctx)
	require.NoError(t, err)
	assert.True(t, empty)
}

func TestApplyUnknownReference(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	data := &Data{Bundles: []Bundle{{Name: "Broken", Items: []string{"Missing"}}}}

	_, err := Apply(ctx, store, data)

	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown packaging item "Missing"`)
}

func TestParseRejectsInvalidYAML(t *testing.T) {
	_, err := Parse([]byte("ingredients: [unterminated"))
	assert.Error(t, err)
}
