package categories

import (
	"context"
	"net/http"

	"github.com/aromadb/aroma-catalog/app/api"
	"github.com/aromadb/aroma-catalog/models"
)

type CategoryResponse struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
}

type CategoryProvider interface {
	GetAllCategories(ctx context.Context) ([]models.Category, error)
}

type CategoryHandler struct {
	repo CategoryProvider
}

func NewCategoryHandler(r CategoryProvider) *CategoryHandler {
	return &CategoryHandler{repo: r}
}

// HandleGetAll lists the category tags in use by ingredients and packaging
// items.
func (h *CategoryHandler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	categories, err := h.repo.GetAllCategories(r.Context())
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	kind := r.URL.Query().Get("kind")
	response := make([]CategoryResponse, 0, len(categories))
	for _, c := range categories {
		if kind != "" && c.Kind != kind {
			continue
		}
		response = append(response, CategoryResponse{
			Kind: c.Kind,
			Name: c.Name,
		})
	}

	api.WriteJSON(w, http.StatusOK, response)
}
