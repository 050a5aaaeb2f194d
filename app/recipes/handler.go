package recipes

import (
	"context"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/aromadb/aroma-catalog/app/api"
	"github.com/aromadb/aroma-catalog/app/catalog"
	"github.com/aromadb/aroma-catalog/composition"
	"github.com/aromadb/aroma-catalog/models"
)

// RecipeIngredientRequest gives an amount in milliliters or, for ingredients
// measured in drops, in drops. Exactly one of the two must be set.
type RecipeIngredientRequest struct {
	IngredientID uint                `json:"ingredient_id" validate:"required"`
	AmountML     decimal.NullDecimal `json:"amount_ml" validate:"omitempty,gt=0"`
	AmountDrops  decimal.NullDecimal `json:"amount_drops" validate:"omitempty,gt=0"`
}

type RecipeRequest struct {
	Name            string                    `json:"name" validate:"required"`
	Description     string                    `json:"description"`
	TotalVolumeML   float64                   `json:"total_volume_ml" validate:"gte=0"`
	RetailPrice     decimal.NullDecimal       `json:"retail_price" validate:"omitempty,gte=0"`
	Notes           string                    `json:"notes"`
	PackageBundleID uint                      `json:"package_bundle_id" validate:"required"`
	Ingredients     []RecipeIngredientRequest `json:"ingredients" validate:"required,min=1,dive"`
}

func (req *RecipeRequest) input() (catalog.RecipeInput, error) {
	lines := make([]composition.Line, len(req.Ingredients))
	for i, ri := range req.Ingredients {
		switch {
		case ri.AmountML.Valid && ri.AmountDrops.Valid:
			return catalog.RecipeInput{}, fmt.Errorf("%w: ingredient %d: give amount_ml or amount_drops, not both", api.ErrBadRequest, ri.IngredientID)
		case ri.AmountML.Valid:
			lines[i] = composition.Line{IngredientID: ri.IngredientID, Amount: ri.AmountML.Decimal, Unit: models.MeasurementML}
		case ri.AmountDrops.Valid:
			lines[i] = composition.Line{IngredientID: ri.IngredientID, Amount: ri.AmountDrops.Decimal, Unit: models.MeasurementDrops}
		default:
			return catalog.RecipeInput{}, fmt.Errorf("%w: ingredient %d: amount_ml is required", api.ErrBadRequest, ri.IngredientID)
		}
		if !lines[i].Amount.IsPositive() {
			return catalog.RecipeInput{}, fmt.Errorf("%w: ingredient %d: amount must be greater than zero", api.ErrBadRequest, ri.IngredientID)
		}
	}

	return catalog.RecipeInput{
		Name:            req.Name,
		Description:     req.Description,
		TotalVolumeML:   req.TotalVolumeML,
		RetailPrice:     req.RetailPrice,
		Notes:           req.Notes,
		PackageBundleID: req.PackageBundleID,
		Ingredients:     lines,
	}, nil
}

type RecipeReader interface {
	List(ctx context.Context, offset, limit int) ([]models.Recipe, error)
	GetByID(ctx context.Context, id uint) (*models.Recipe, error)
	Delete(ctx context.Context, id uint) error
}

// RecipeWriter validates, prices and stores recipes.
type RecipeWriter interface {
	CreateRecipe(ctx context.Context, in catalog.RecipeInput) (*models.Recipe, error)
	UpdateRecipe(ctx context.Context, id uint, in catalog.RecipeInput) (*models.Recipe, error)
	RepriceRecipe(ctx context.Context, id uint) (*models.Recipe, error)
}

type RecipesHandler struct {
	repo    RecipeReader
	service RecipeWriter
}

func NewRecipesHandler(r RecipeReader, s RecipeWriter) *RecipesHandler {
	return &RecipesHandler{
		repo:    r,
		service: s,
	}
}

func (h *RecipesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	offset, limit := api.Pagination(r)

	res, err := h.repo.List(r.Context(), offset, limit)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	api.WriteJSON(w, http.StatusOK, api.NewRecipes(res))
}

func (h *RecipesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := api.ParseID(r)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	recipe, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	api.WriteJSON(w, http.StatusOK, api.NewRecipe(recipe))
}

func (h *RecipesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeRecipe(w, r)
	if !ok {
		return
	}

	recipe, err := h.service.CreateRecipe(r.Context(), in)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	api.WriteJSON(w, http.StatusOK, api.NewRecipe(recipe))
}

func (h *RecipesHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := api.ParseID(r)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	in, ok := decodeRecipe(w, r)
	if !ok {
		return
	}

	recipe, err := h.service.UpdateRecipe(r.Context(), id, in)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	api.WriteJSON(w, http.StatusOK, api.NewRecipe(recipe))
}

// HandleReprice recomputes total_cost from current ingredient costs and the
// current bundle total.
func (h *RecipesHandler) HandleReprice(w http.ResponseWriter, r *http.Request) {
	id, err := api.ParseID(r)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	recipe, err := h.service.RepriceRecipe(r.Context(), id)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	api.WriteJSON(w, http.StatusOK, api.NewRecipe(recipe))
}

// HandleDelete removes the recipe and its ingredient lines.
func (h *RecipesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := api.ParseID(r)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		api.WriteError(w, r, err)
		return
	}

	api.WriteJSON(w, http.StatusOK, api.Message{Message: "Recipe deleted successfully"})
}

func decodeRecipe(w http.ResponseWriter, r *http.Request) (catalog.RecipeInput, bool) {
	var req RecipeRequest
	if err := api.Decode(w, r, &req); err != nil {
		api.WriteError(w, r, err)
		return catalog.RecipeInput{}, false
	}
	in, err := req.input()
	if err != nil {
		api.WriteError(w, r, err)
		return catalog.RecipeInput{}, false
	}
	return in, true
}
