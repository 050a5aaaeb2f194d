package packaging

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
	"github.com/aromadb/aroma-catalog/models"
)

// --- Mock Repo ---

type MockPackagingRepo struct {
	Items []models.PackagingItem
	Err   error

	lastCalledLimit int
	lastSaved       *models.PackagingItem
}

func (m *MockPackagingRepo) List(ctx context.Context, offset, limit int) ([]models.PackagingItem, error) {
	m.lastCalledLimit = limit
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Items, nil
}

func (m *MockPackagingRepo) GetByID(ctx context.Context, id uint) (*models.PackagingItem, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	for _, item := range m.Items {
		if item.ID == id {
			found := item
			return &found, nil
		}
	}
	return nil, models.ErrPackagingItemNotFound
}

func (m *MockPackagingRepo) Create(ctx context.Context, item *models.PackagingItem) error {
	m.lastSaved = item
	if m.Err != nil {
		return m.Err
	}
	item.ID = uint(len(m.Items) + 1)
	m.Items = append(m.Items, *item)
	return nil
}

func (m *MockPackagingRepo) Update(ctx context.Context, item *models.PackagingItem) error {
	m.lastSaved = item
	_, err := m.GetByID(ctx, item.ID)
	return err
}

func (m *MockPackagingRepo) Delete(ctx context.Context, id uint) error {
	if m.Err != nil {
		return m.Err
	}
	_, err := m.GetByID(ctx, id)
	return err
}

// --- Helpers ---

func newMux(repo PackagingItemProvider) *http.ServeMux {
	h := NewPackagingHandler(repo)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /packaging-items/", h.HandleList)
	mux.HandleFunc("POST /packaging-items/", h.HandleCreate)
	mux.HandleFunc("GET /packaging-items/{id}", h.HandleGet)
	mux.HandleFunc("PUT /packaging-items/{id}", h.HandleUpdate)
	mux.HandleFunc("DELETE /packaging-items/{id}", h.HandleDelete)
	return mux
}

func newTestItem(id uint, name, price string) models.PackagingItem {
	capacity := 30.0
	return models.PackagingItem{ID: id, Name: name, Category: "Bottles", UnitPrice: decimal.RequireFromString(price), StockQuantity: 100, Capacity: &capacity, Material: "Glass"}
}

// --- Tests ---

func TestHandleList(t *testing.T) {
	repo := &MockPackagingRepo{Items: []models.PackagingItem{newTestItem(1, "30ml Amber Bottle", "2.50"), newTestItem(2, "Dropper Cap", "0.35")}}
	rec := httptest.NewRecorder()

	newMux(repo).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/packaging-items/?limit=500", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 100, repo.lastCalledLimit)
	var resp []api.PackagingItem
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp, 2)
	assert.Equal(t, 2.5, resp[0].Price)
	assert.Equal(t, "Bottles", resp[0].Type)
	assert.Equal(t, 100, resp[0].StockAmount)
	require.NotNil(t, resp[0].Capacity)
	assert.Equal(t, 30.0, *resp[0].Capacity)
}

func TestHandleCreate(t *testing.T) {
	testCases := []struct {
		name               string
		body               string
		mockRepoSetup      func() *MockPackagingRepo
		expectedStatusCode int
		checkRepoCalls     func(t *testing.T, repo *MockPackagingRepo)
	}{
		{
			name:               "Success",
			body:               `{"name":"30ml Amber Bottle","type":"Bottles","description":"UV protected","price":2.50,"stock_amount":100,"capacity":30,"color":"Amber","material":"Glass"}`,
			mockRepoSetup:      func() *MockPackagingRepo { return &MockPackagingRepo{} },
			expectedStatusCode: http.StatusOK,
			checkRepoCalls: func(t *testing.T, repo *MockPackagingRepo) {
				require.NotNil(t, repo.lastSaved)
				assert.True(t, decimal.RequireFromString("2.5").Equal(repo.lastSaved.UnitPrice))
				require.NotNil(t, repo.lastSaved.Color)
				assert.Equal(t, "Amber", *repo.lastSaved.Color)
			},
		},
		{
			name:               "Negative price",
			body:               `{"name":"Bottle","price":-2}`,
			mockRepoSetup:      func() *MockPackagingRepo { return &MockPackagingRepo{} },
			expectedStatusCode: http.StatusBadRequest,
			checkRepoCalls: func(t *testing.T, repo *MockPackagingRepo) {
				assert.Nil(t, repo.lastSaved)
			},
		},
		{
			name:               "Negative stock",
			body:               `{"name":"Bottle","price":2,"stock_amount":-1}`,
			mockRepoSetup:      func() *MockPackagingRepo { return &MockPackagingRepo{} },
			expectedStatusCode: http.StatusBadRequest,
		},
		{
			name:               "Duplicate name",
			body:               `{"name":"Bottle","price":2}`,
			mockRepoSetup:      func() *MockPackagingRepo { return &MockPackagingRepo{Err: models.ErrDuplicateName} },
			expectedStatusCode: http.StatusConflict,
		},
		{
			name:               "Repository error",
			body:               `{"name":"Bottle","price":2}`,
			mockRepoSetup:      func() *MockPackagingRepo { return &MockPackagingRepo{Err: errors.New("disk full")} },
			expectedStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			repo := tc.mockRepoSetup()
			req := httptest.NewRequest(http.MethodPost, "/packaging-items/", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()

			// Act
			newMux(repo).ServeHTTP(rec, req)

			// Assert
			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			if tc.checkRepoCalls != nil {
				tc.checkRepoCalls(t, repo)
			}
		})
	}
}

func TestHandleGetUpdateDelete(t *testing.T) {
	repo := &MockPackagingRepo{Items: []models.PackagingItem{newTestItem(1, "30ml Amber Bottle", "2.50")}}
	mux := newMux(repo)

	testCases := []struct {
		name               string
		method             string
		url                string
		body               string
		expectedStatusCode int
	}{
		{name: "Get", method: http.MethodGet, url: "/packaging-items/1", expectedStatusCode: http.StatusOK},
		{name: "Get missing", method: http.MethodGet, url: "/packaging-items/5", expectedStatusCode: http.StatusNotFound},
		{name: "Update", method: http.MethodPut, url: "/packaging-items/1", body: `{"name":"Bottle","price":3}`, expectedStatusCode: http.StatusOK},
		{name: "Update missing", method: http.MethodPut, url: "/packaging-items/5", body: `{"name":"Bottle","price":3}`, expectedStatusCode: http.StatusNotFound},
		{name: "Delete", method: http.MethodDelete, url: "/packaging-items/1", expectedStatusCode: http.StatusOK},
		{name: "Delete bad id", method: http.MethodDelete, url: "/packaging-items/x", expectedStatusCode: http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()

			mux.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.url, strings.NewReader(tc.body)))

			assert.Equal(t, tc.expectedStatusCode, rec.Code)
		})
	}
}
