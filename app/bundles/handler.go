package bundles

import (
	"context"
	"net/http"

	"github.com/aromadb/aroma-catalog/app/api"
	"github.com/aromadb/aroma-catalog/app/catalog"
	"github.com/aromadb/aroma-catalog/models"
)

type BundleRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	Capacity    float64 `json:"capacity" validate:"gte=0"`
	Notes       string  `json:"notes"`
	ItemIDs     []uint  `json:"item_ids" validate:"dive,gt=0"`
}

func (req *BundleRequest) input() catalog.BundleInput {
	return catalog.BundleInput{
		Name:        req.Name,
		Description: req.Description,
		Capacity:    req.Capacity,
		Notes:       req.Notes,
		ItemIDs:     req.ItemIDs,
	}
}

type BundleReader interface {
	List(ctx context.Context, offset, limit int) ([]models.PackageBundle, error)
	GetByID(ctx context.Context, id uint) (*models.PackageBundle, error)
	Delete(ctx context.Context, id uint) error
}

// BundleWriter prices and stores bundles.
type BundleWriter interface {
	CreateBundle(ctx context.Context, in catalog.BundleInput) (*models.PackageBundle, error)
	UpdateBundle(ctx context.Context, id uint, in catalog.BundleInput) (*models.PackageBundle, error)
	RepriceBundle(ctx context.Context, id uint) (*models.PackageBundle, error)
}

type BundlesHandler struct {
	repo    BundleReader
	service BundleWriter
}

func NewBundlesHandler(r BundleReader, s BundleWriter) *BundlesHandler {
	return &BundlesHandler{
		repo:    r,
		service: s,
	}
}

func (h *BundlesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	offset, limit := api.Pagination(r)

	res, err := h.repo.List(r.Context(), offset, limit)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	api.WriteJSON(w, http.StatusOK, api.NewPackageBundles(res))
}

func (h *BundlesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := api.ParseID(r)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	bundle, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	api.WriteJSON(w, http.StatusOK, api.NewPackageBundle(bundle))
}

func (h *BundlesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req BundleRequest
	if err := api.Decode(w, r, &req); err != nil {
		api.WriteError(w, r, err)
		return
	}

	bundle, err := h.service.CreateBundle(r.Context(), req.input())
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	api.WriteJSON(w, http.StatusOK, api.NewPackageBundle(bundle))
}

func (h *BundlesHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := api.ParseID(r)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	var req BundleRequest
	if err := api.Decode(w, r, &req); err != nil {
		api.WriteError(w, r, err)
		return
	}

	bundle, err := h.service.UpdateBundle(r.Context(), id, req.input())
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	api.WriteJSON(w, http.StatusOK, api.NewPackageBundle(bundle))
}

// HandleReprice recomputes total_price from the current item prices.
func (h *BundlesHandler) HandleReprice(w http.ResponseWriter, r *http.Request) {
	id, err := api.ParseID(r)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	bundle, err := h.service.RepriceBundle(r.Context(), id)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	api.WriteJSON(w, http.StatusOK, api.NewPackageBundle(bundle))
}

func (h *BundlesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := api.ParseID(r)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		api.WriteError(w, r, err)
		return
	}

	api.WriteJSON(w, http.StatusOK, api.Message{Message: "Package bundle deleted successfully"})
}
