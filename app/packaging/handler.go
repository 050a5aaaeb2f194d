package packaging

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/aromadb/aroma-catalog/app/api"
	"github.com/aromadb/aroma-catalog/models"
)

type PackagingItemRequest struct {
	Name        string          `json:"name" validate:"required"`
	Type        string          `json:"type"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" validate:"gte=0"`
	StockAmount int             `json:"stock_amount" validate:"gte=0"`
	Capacity    *float64        `json:"capacity" validate:"omitempty,gt=0"`
	Color       *string         `json:"color"`
	Material    string          `json:"material"`
	Notes       string          `json:"notes"`
}

func (req *PackagingItemRequest) toModel(id uint) *models.PackagingItem {
	return &models.PackagingItem{
		ID:            id,
		Name:          req.Name,
		Category:      req.Type,
		Description:   req.Description,
		UnitPrice:     req.Price,
		StockQuantity: req.StockAmount,
		Capacity:      req.Capacity,
		Color:         req.Color,
		Material:      req.Material,
		Notes:         req.Notes,
	}
}

type PackagingItemProvider interface {
	List(ctx context.Context, offset, limit int) ([]models.PackagingItem, error)
	GetByID(ctx context.Context, id uint) (*models.PackagingItem, error)
	Create(ctx context.Context, item *models.PackagingItem) error
	Update(ctx context.Context, item *models.PackagingItem) error
	Delete(ctx context.Context, id uint) error
}

type PackagingHandler struct {
	repo PackagingItemProvider
}

func NewPackagingHandler(r PackagingItemProvider) *PackagingHandler {
	return &PackagingHandler{repo: r}
}

func (h *PackagingHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	offset, limit := api.Pagination(r)

	res, err := h.repo.List(r.Context(), offset, limit)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	api.WriteJSON(w, http.StatusOK, api.NewPackagingItems(res))
}

func (h *PackagingHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := api.ParseID(r)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	item, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	api.WriteJSON(w, http.StatusOK, api.NewPackagingItem(item))
}

func (h *PackagingHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req PackagingItemRequest
	if err := api.Decode(w, r, &req); err != nil {
		api.WriteError(w, r, err)
		return
	}

	item := req.toModel(0)
	if err := h.repo.Create(r.Context(), item); err != nil {
		api.WriteError(w, r, err)
		return
	}

	api.WriteJSON(w, http.StatusOK, api.NewPackagingItem(item))
}

// HandleUpdate changes the item only. Bundles holding it keep their stored
// total until they are written or repriced.
func (h *PackagingHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := api.ParseID(r)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	var req PackagingItemRequest
	if err := api.Decode(w, r, &req); err != nil {
		api.WriteError(w, r, err)
		return
	}

	item := req.toModel(id)
	if err := h.repo.Update(r.Context(), item); err != nil {
		api.WriteError(w, r, err)
		return
	}

	api.WriteJSON(w, http.StatusOK, api.NewPackagingItem(item))
}

func (h *PackagingHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := api.ParseID(r)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		api.WriteError(w, r, err)
		return
	}

	api.WriteJSON(w, http.StatusOK, api.Message{Message: "Packaging item deleted successfully"})
}
