package ingredients

import (
	"context"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/aromadb/aroma-catalog/app/api"
	"github.com/aromadb/aroma-catalog/models"
)

// IngredientRequest is the create and update body.
type IngredientRequest struct {
	Name            string              `json:"name" validate:"required"`
	Type            string              `json:"type"`
	Description     string              `json:"description"`
	Properties      string              `json:"properties"`
	Notes           string              `json:"notes"`
	PricePerML      decimal.NullDecimal `json:"price_per_ml" validate:"omitempty,gte=0"`
	StockAmount     decimal.NullDecimal `json:"stock_amount" validate:"omitempty,gte=0"`
	MeasurementType string              `json:"measurement_type" validate:"omitempty,oneof=ml drops"`
	DropsPerML      *float64            `json:"drops_per_ml" validate:"omitempty,gt=0"`
}

func (req *IngredientRequest) toModel(id uint) (*models.Ingredient, error) {
	measurement := models.MeasurementType(req.MeasurementType)
	if measurement == "" {
		measurement = models.MeasurementML
	}
	if measurement == models.MeasurementDrops && req.DropsPerML == nil {
		return nil, fmt.Errorf("%w: drops_per_ml is required when measurement_type is drops", api.ErrBadRequest)
	}
	return &models.Ingredient{
		ID:              id,
		Name:            req.Name,
		Category:        req.Type,
		Description:     req.Description,
		Properties:      req.Properties,
		Notes:           req.Notes,
		UnitCost:        req.PricePerML,
		StockAmount:     req.StockAmount,
		MeasurementType: measurement,
		DropsPerML:      req.DropsPerML,
	}, nil
}

type IngredientProvider interface {
	List(ctx context.Context, offset, limit int) ([]models.Ingredient, error)
	GetByID(ctx context.Context, id uint) (*models.Ingredient, error)
	Create(ctx context.Context, ingredient *models.Ingredient) error
	Update(ctx context.Context, ingredient *models.Ingredient) error
	Delete(ctx context.Context, id uint) error
}

type IngredientsHandler struct {
	repo IngredientProvider
}

func NewIngredientsHandler(r IngredientProvider) *IngredientsHandler {
	return &IngredientsHandler{
		repo: r,
	}
}

func (h *IngredientsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	offset, limit := api.Pagination(r)

	res, err := h.repo.List(r.Context(), offset, limit)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	api.WriteJSON(w, http.StatusOK, api.NewIngredients(res))
}

func (h *IngredientsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := api.ParseID(r)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	ingredient, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	api.WriteJSON(w, http.StatusOK, api.NewIngredient(ingredient))
}

func (h *IngredientsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req IngredientRequest
	if err := api.Decode(w, r, &req); err != nil {
		api.WriteError(w, r, err)
		return
	}

	ingredient, err := req.toModel(0)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}
	if err := h.repo.Create(r.Context(), ingredient); err != nil {
		api.WriteError(w, r, err)
		return
	}

	api.WriteJSON(w, http.StatusOK, api.NewIngredient(ingredient))
}

func (h *IngredientsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := api.ParseID(r)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	var req IngredientRequest
	if err := api.Decode(w, r, &req); err != nil {
		api.WriteError(w, r, err)
		return
	}

	ingredient, err := req.toModel(id)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}
	if err := h.repo.Update(r.Context(), ingredient); err != nil {
		api.WriteError(w, r, err)
		return
	}

	api.WriteJSON(w, http.StatusOK, api.NewIngredient(ingredient))
}

// HandleDelete refuses ingredients that a recipe still uses.
func (h *IngredientsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := api.ParseID(r)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		api.WriteError(w, r, err)
		return
	}

	api.WriteJSON(w, http.StatusOK, api.Message{Message: "Ingredient deleted successfully"})
}
