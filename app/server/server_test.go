package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/aromadb/aroma-catalog/app/api"
	"github.com/aromadb/aroma-catalog/models"
	"github.com/aromadb/aroma-catalog/testutil"
)

// --- Helpers ---

type testClient struct {
	t       *testing.T
	handler http.Handler
}

func newTestServer(t *testing.T) (*testClient, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	srv := New(Config{
		Addr:           ":0",
		AllowedOrigins: []string{"http://localhost:5173"},
		MetricsPath:    "/metrics",
		Store:          models.NewStore(db),
		Logger:         zap.NewNop(),
	})
	return &testClient{t: t, handler: srv.Handler()}, db
}

func (c *testClient) do(method, url string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, httptest.NewRequest(method, url, &buf))
	return rec
}

func (c *testClient) create(url string, body any, out any) {
	c.t.Helper()
	rec := c.do(http.MethodPost, url, body)
	require.Equal(c.t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(c.t, json.NewDecoder(rec.Body).Decode(out))
}

type seeded struct {
	a, b   api.Ingredient
	bundle api.PackageBundle
}

func seed(c *testClient) seeded {
	var s seeded
	c.create("/ingredients/", map[string]any{"name": "A", "type": "Essential Oils", "price_per_ml": 0.85, "stock_amount": 100, "measurement_type": "ml"}, &s.a)
	c.create("/ingredients/", map[string]any{"name": "B", "type": "Carrier Oils", "price_per_ml": 0.15, "stock_amount": 500}, &s.b)
	var p api.PackagingItem
	c.create("/packaging-items/", map[string]any{"name": "P", "type": "Bottles", "price": 2.50, "stock_amount": 10, "material": "Glass"}, &p)
	c.create("/package-bundles/", map[string]any{"name": "Bundle", "capacity": 30, "item_ids": []uint{p.ID}}, &s.bundle)
	return s
}

func count(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

// --- Tests ---

func TestRecipeEndToEnd(t *testing.T) {
	// Arrange
	c, db := newTestServer(t)
	s := seed(c)
	require.Equal(t, 2.5, s.bundle.TotalPrice)

	// Act
	var recipe api.Recipe
	c.create("/recipes/", map[string]any{
		"name":              "Blend",
		"description":       "End to end",
		"total_volume_ml":   30,
		"retail_price":      12,
		"package_bundle_id": s.bundle.ID,
		"ingredients": []map[string]any{
			{"ingredient_id": s.a.ID, "amount_ml": 3.0},
			{"ingredient_id": s.b.ID, "amount_ml": 25.0},
		},
	}, &recipe)

	// Assert
	assert.Equal(t, 8.8, recipe.TotalCost)
	assert.InDelta(t, 6.3, recipe.IngredientsCost, 1e-9)
	require.NotNil(t, recipe.Margin)
	assert.InDelta(t, 3.2, *recipe.Margin, 1e-9)
	assert.Equal(t, s.bundle.ID, recipe.PackageBundle.ID)
	require.Len(t, recipe.RecipeIngredients, 2)
	assert.Equal(t, "A", recipe.RecipeIngredients[0].Ingredient.Name)

	rec := c.do(http.MethodGet, fmt.Sprintf("/recipes/%d", recipe.ID), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = c.do(http.MethodDelete, fmt.Sprintf("/recipes/%d", recipe.ID), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, count(t, db, &models.Recipe{}))
	assert.Zero(t, count(t, db, &models.RecipeIngredient{}))
}

func TestRecipeFailuresOverHTTP(t *testing.T) {
	c, db := newTestServer(t)
	s := seed(c)

	testCases := []struct {
		name               string
		lines              []map[string]any
		expectedStatusCode int
		expectedCode       string
	}{
		{
			name:               "Unknown ingredient",
			lines:              []map[string]any{{"ingredient_id": s.a.ID, "amount_ml": 1}, {"ingredient_id": 999, "amount_ml": 1}},
			expectedStatusCode: http.StatusNotFound,
			expectedCode:       api.CodeReferenceNotFound,
		},
		{
			name:               "Insufficient stock",
			lines:              []map[string]any{{"ingredient_id": s.a.ID, "amount_ml": 150}},
			expectedStatusCode: http.StatusBadRequest,
			expectedCode:       api.CodeInsufficientStock,
		},
		{
			name:               "Duplicate ingredient",
			lines:              []map[string]any{{"ingredient_id": s.a.ID, "amount_ml": 1}, {"ingredient_id": s.a.ID, "amount_ml": 2}},
			expectedStatusCode: http.StatusBadRequest,
			expectedCode:       api.CodeInvalidRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := c.do(http.MethodPost, "/recipes/", map[string]any{
				"name":              "Broken",
				"package_bundle_id": s.bundle.ID,
				"ingredients":       tc.lines,
			})

			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			var resp api.ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, tc.expectedCode, resp.Code)
			assert.Zero(t, count(t, db, &models.Recipe{}))
			assert.Zero(t, count(t, db, &models.RecipeIngredient{}))
		})
	}
}

func TestDeleteGuardsOverHTTP(t *testing.T) {
	c, _ := newTestServer(t)
	s := seed(c)
	var recipe api.Recipe
	c.create("/recipes/", map[string]any{
		"name":              "Blend",
		"package_bundle_id": s.bundle.ID,
		"ingredients":       []map[string]any{{"ingredient_id": s.a.ID, "amount_ml": 1}},
	}, &recipe)

	assert.Equal(t, http.StatusConflict, c.do(http.MethodDelete, fmt.Sprintf("/ingredients/%d", s.a.ID), nil).Code)
	assert.Equal(t, http.StatusConflict, c.do(http.MethodDelete, fmt.Sprintf("/package-bundles/%d", s.bundle.ID), nil).Code)
	assert.Equal(t, http.StatusConflict, c.do(http.MethodDelete, fmt.Sprintf("/packaging-items/%d", s.bundle.Items[0].ID), nil).Code)
	assert.Equal(t, http.StatusOK, c.do(http.MethodDelete, fmt.Sprintf("/ingredients/%d", s.b.ID), nil).Code)
}

func TestRepriceOverHTTP(t *testing.T) {
	c, _ := newTestServer(t)
	s := seed(c)
	item := s.bundle.Items[0]

	rec := c.do(http.MethodPut, fmt.Sprintf("/packaging-items/%d", item.ID), map[string]any{"name": item.Name, "price": 4.0})
	require.Equal(t, http.StatusOK, rec.Code)

	var stale api.PackageBundle
	rec = c.do(http.MethodGet, fmt.Sprintf("/package-bundles/%d", s.bundle.ID), nil)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&stale))
	assert.Equal(t, 2.5, stale.TotalPrice)

	var fresh api.PackageBundle
	c.create(fmt.Sprintf("/package-bundles/%d/reprice", s.bundle.ID), nil, &fresh)
	assert.Equal(t, 4.0, fresh.TotalPrice)
}

func TestCategoriesHealthAndMetrics(t *testing.T) {
	c, _ := newTestServer(t)
	seed(c)

	rec := c.do(http.MethodGet, "/categories/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"kind":"ingredient","name":"Carrier Oils"},{"kind":"ingredient","name":"Essential Oils"},{"kind":"packaging","name":"Bottles"}]`, rec.Body.String())

	rec = c.do(http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = c.do(http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "aromadb_http_requests_total")
}

func TestCORSAndRequestID(t *testing.T) {
	c, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/recipes/", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = c.do(http.MethodGet, "/ingredients/", nil)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
