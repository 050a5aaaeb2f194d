package recipes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aromadb/aroma-catalog/app/api"
	"github.com/aromadb/aroma-catalog/app/catalog"
	"github.com/aromadb/aroma-catalog/composition"
	"github.com/aromadb/aroma-catalog/models"
)

// --- Mock Repo ---

type MockRecipeRepo struct {
	Recipes []models.Recipe
	Err     error

	lastDeletedID uint
}

func (m *MockRecipeRepo) List(ctx context.Context, offset, limit int) ([]models.Recipe, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Recipes, nil
}

func (m *MockRecipeRepo) GetByID(ctx context.Context, id uint) (*models.Recipe, error) {
	for _, recipe := range m.Recipes {
		if recipe.ID == id {
			found := recipe
			return &found, nil
		}
	}
	return nil, models.ErrRecipeNotFound
}

func (m *MockRecipeRepo) Delete(ctx context.Context, id uint) error {
	m.lastDeletedID = id
	_, err := m.GetByID(ctx, id)
	return err
}

// --- Mock Service ---

type MockRecipeService struct {
	Result *models.Recipe
	Err    error

	lastInput  *catalog.RecipeInput
	lastID     uint
	repricedID uint
}

func (m *MockRecipeService) CreateRecipe(ctx context.Context, in catalog.RecipeInput) (*models.Recipe, error) {
	m.lastInput = &in
	return m.Result, m.Err
}

func (m *MockRecipeService) UpdateRecipe(ctx context.Context, id uint, in catalog.RecipeInput) (*models.Recipe, error) {
	m.lastID = id
	m.lastInput = &in
	return m.Result, m.Err
}

func (m *MockRecipeService) RepriceRecipe(ctx context.Context, id uint) (*models.Recipe, error) {
	m.repricedID = id
	return m.Result, m.Err
}

// --- Helpers ---

func newMux(repo RecipeReader, service RecipeWriter) *http.ServeMux {
	h := NewRecipesHandler(repo, service)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /recipes/", h.HandleList)
	mux.HandleFunc("POST /recipes/", h.HandleCreate)
	mux.HandleFunc("GET /recipes/{id}", h.HandleGet)
	mux.HandleFunc("PUT /recipes/{id}", h.HandleUpdate)
	mux.HandleFunc("DELETE /recipes/{id}", h.HandleDelete)
	mux.HandleFunc("POST /recipes/{id}/reprice", h.HandleReprice)
	return mux
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestRecipe() *models.Recipe {
	return &models.Recipe{
		ID:            1,
		Name:          "Relaxing Lavender Blend",
		TotalVolumeML: 30,
		TotalCost:     money("8.80"),
		PackageBundle: models.PackageBundle{ID: 1, Name: "Standard 30ml Package", TotalPrice: money("2.50")},
		Ingredients: []models.RecipeIngredient{
			{IngredientID: 1, AmountML: money("3"), Ingredient: models.Ingredient{ID: 1, Name: "Lavender Essential Oil", UnitCost: decimal.NewNullDecimal(money("0.85"))}},
			{IngredientID: 2, AmountML: money("25"), Ingredient: models.Ingredient{ID: 2, Name: "Sweet Almond Oil", UnitCost: decimal.NewNullDecimal(money("0.15"))}},
		},
	}
}

// --- Tests ---

func TestHandleCreate(t *testing.T) {
	testCases := []struct {
		name               string
		body               string
		mockServiceSetup   func() *MockRecipeService
		expectedStatusCode int
		checkResponse      func(t *testing.T, rec *httptest.ResponseRecorder)
		checkServiceCalls  func(t *testing.T, service *MockRecipeService)
	}{
		{
			name:               "Success",
			body:               `{"name":"Relaxing Lavender Blend","description":"Calming","total_volume_ml":30,"package_bundle_id":1,"ingredients":[{"ingredient_id":1,"amount_ml":3.0},{"ingredient_id":2,"amount_ml":25.0}]}`,
			mockServiceSetup:   func() *MockRecipeService { return &MockRecipeService{Result: newTestRecipe()} },
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp api.Recipe
				assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Equal(t, 8.8, resp.TotalCost)
				assert.Equal(t, "Standard 30ml Package", resp.PackageBundle.Name)
				require.Len(t, resp.RecipeIngredients, 2)
				assert.Equal(t, "Lavender Essential Oil", resp.RecipeIngredients[0].Ingredient.Name)
				assert.Equal(t, 3.0, resp.RecipeIngredients[0].AmountML)
				assert.Nil(t, resp.RetailPrice)
				assert.Nil(t, resp.Margin)
			},
			checkServiceCalls: func(t *testing.T, service *MockRecipeService) {
				require.NotNil(t, service.lastInput)
				assert.Equal(t, uint(1), service.lastInput.PackageBundleID)
				require.Len(t, service.lastInput.Ingredients, 2)
				assert.Equal(t, models.MeasurementML, service.lastInput.Ingredients[0].Unit)
				assert.True(t, money("25").Equal(service.lastInput.Ingredients[1].Amount))
			},
		},
		{
			name:               "Amount in drops",
			body:               `{"name":"Rose","package_bundle_id":1,"ingredients":[{"ingredient_id":3,"amount_drops":10}]}`,
			mockServiceSetup:   func() *MockRecipeService { return &MockRecipeService{Result: newTestRecipe()} },
			expectedStatusCode: http.StatusOK,
			checkServiceCalls: func(t *testing.T, service *MockRecipeService) {
				require.Len(t, service.lastInput.Ingredients, 1)
				assert.Equal(t, models.MeasurementDrops, service.lastInput.Ingredients[0].Unit)
			},
		},
		{
			name:               "Both amounts",
			body:               `{"name":"Rose","package_bundle_id":1,"ingredients":[{"ingredient_id":3,"amount_ml":1,"amount_drops":10}]}`,
			mockServiceSetup:   func() *MockRecipeService { return &MockRecipeService{} },
			expectedStatusCode: http.StatusBadRequest,
			checkServiceCalls: func(t *testing.T, service *MockRecipeService) {
				assert.Nil(t, service.lastInput)
			},
		},
		{
			name:               "No amount",
			body:               `{"name":"Rose","package_bundle_id":1,"ingredients":[{"ingredient_id":3}]}`,
			mockServiceSetup:   func() *MockRecipeService { return &MockRecipeService{} },
			expectedStatusCode: http.StatusBadRequest,
		},
		{
			name:               "Non positive amount",
			body:               `{"name":"Rose","package_bundle_id":1,"ingredients":[{"ingredient_id":3,"amount_ml":0}]}`,
			mockServiceSetup:   func() *MockRecipeService { return &MockRecipeService{} },
			expectedStatusCode: http.StatusBadRequest,
		},
		{
			name:               "No ingredients",
			body:               `{"name":"Rose","package_bundle_id":1,"ingredients":[]}`,
			mockServiceSetup:   func() *MockRecipeService { return &MockRecipeService{} },
			expectedStatusCode: http.StatusBadRequest,
		},
		{
			name: "Missing bundle",
			body: `{"name":"Rose","package_bundle_id":9,"ingredients":[{"ingredient_id":1,"amount_ml":1}]}`,
			mockServiceSetup: func() *MockRecipeService {
				return &MockRecipeService{Err: &composition.ReferenceNotFoundError{Kind: composition.KindBundle, IDs: []uint{9}}}
			},
			expectedStatusCode: http.StatusNotFound,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp api.ErrorResponse
				assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Equal(t, "package bundle with id 9 not found", resp.Error)
			},
		},
		{
			name: "Missing ingredient",
			body: `{"name":"Rose","package_bundle_id":1,"ingredients":[{"ingredient_id":55,"amount_ml":1}]}`,
			mockServiceSetup: func() *MockRecipeService {
				return &MockRecipeService{Err: &composition.ReferenceNotFoundError{Kind: composition.KindIngredient, IDs: []uint{55}}}
			},
			expectedStatusCode: http.StatusNotFound,
		},
		{
			name: "Insufficient stock",
			body: `{"name":"Rose","package_bundle_id":1,"ingredients":[{"ingredient_id":1,"amount_ml":12}]}`,
			mockServiceSetup: func() *MockRecipeService {
				return &MockRecipeService{Err: &composition.InsufficientStockError{Ingredient: "Lavender Essential Oil", Requested: money("12"), Available: money("10")}}
			},
			expectedStatusCode: http.StatusBadRequest,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp api.ErrorResponse
				assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Equal(t, "not enough stock for Lavender Essential Oil: need 12ml but only have 10ml", resp.Error)
			},
		},
		{
			name: "Unexpected failure",
			body: `{"name":"Rose","package_bundle_id":1,"ingredients":[{"ingredient_id":1,"amount_ml":1}]}`,
			mockServiceSetup: func() *MockRecipeService {
				return &MockRecipeService{Err: errors.New("deadlock detected")}
			},
			expectedStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			service := tc.mockServiceSetup()
			req := httptest.NewRequest(http.MethodPost, "/recipes/", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()

			// Act
			newMux(&MockRecipeRepo{}, service).ServeHTTP(rec, req)

			// Assert
			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			if tc.checkResponse != nil {
				tc.checkResponse(t, rec)
			}
			if tc.checkServiceCalls != nil {
				tc.checkServiceCalls(t, service)
			}
		})
	}
}

func TestHandleUpdateAndReprice(t *testing.T) {
	service := &MockRecipeService{Result: newTestRecipe()}
	mux := newMux(&MockRecipeRepo{}, service)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/recipes/1", strings.NewReader(`{"name":"Blend","package_bundle_id":1,"ingredients":[{"ingredient_id":1,"amount_ml":2}],"retail_price":15}`)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint(1), service.lastID)
	assert.True(t, service.lastInput.RetailPrice.Valid)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/recipes/1/reprice", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint(1), service.repricedID)

	rec = httptest.NewRecorder()
	newMux(&MockRecipeRepo{}, &MockRecipeService{Err: models.ErrRecipeNotFound}).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/recipes/3/reprice", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleReadAndDelete(t *testing.T) {
	repo := &MockRecipeRepo{Recipes: []models.Recipe{*newTestRecipe()}}
	mux := newMux(repo, &MockRecipeService{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/recipes/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	var list []api.Recipe
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	require.Len(t, list, 1)
	assert.InDelta(t, 6.3, list[0].IngredientsCost, 1e-9)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/recipes/2", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/recipes/1", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint(1), repo.lastDeletedID)
	assert.JSONEq(t, `{"message":"Recipe deleted successfully"}`, rec.Body.String())
}
