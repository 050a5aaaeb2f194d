package server

import (
	"context"
	"net/http"

	"github.com/aromadb/aroma-catalog/app/api"
	"github.com/aromadb/aroma-catalog/app/bundles"
	"github.com/aromadb/aroma-catalog/app/catalog"
	"github.com/aromadb/aroma-catalog/app/categories"
	"github.com/aromadb/aroma-catalog/app/ingredients"
	"github.com/aromadb/aroma-catalog/app/packaging"
	"github.com/aromadb/aroma-catalog/app/recipes"
	"github.com/aromadb/aroma-catalog/metrics"
	"github.com/aromadb/aroma-catalog/models"
)

func newRouter(store *models.Store, service *catalog.Service, metricsPath string) http.Handler {
	mux := http.NewServeMux()

	ingredientsHandler := ingredients.NewIngredientsHandler(store.Ingredients)
	mux.HandleFunc("GET /ingredients/", ingredientsHandler.HandleList)
	mux.HandleFunc("POST /ingredients/", ingredientsHandler.HandleCreate)
	mux.HandleFunc("GET /ingredients/{id}", ingredientsHandler.HandleGet)
	mux.HandleFunc("PUT /ingredients/{id}", ingredientsHandler.HandleUpdate)
	mux.HandleFunc("DELETE /ingredients/{id}", ingredientsHandler.HandleDelete)

	packagingHandler := packaging.NewPackagingHandler(store.PackagingItems)
	mux.HandleFunc("GET /packaging-items/", packagingHandler.HandleList)
	mux.HandleFunc("POST /packaging-items/", packagingHandler.HandleCreate)
	mux.HandleFunc("GET /packaging-items/{id}", packagingHandler.HandleGet)
	mux.HandleFunc("PUT /packaging-items/{id}", packagingHandler.HandleUpdate)
	mux.HandleFunc("DELETE /packaging-items/{id}", packagingHandler.HandleDelete)

	bundlesHandler := bundles.NewBundlesHandler(store.Bundles, service)
	mux.HandleFunc("GET /package-bundles/", bundlesHandler.HandleList)
	mux.HandleFunc("POST /package-bundles/", bundlesHandler.HandleCreate)
	mux.HandleFunc("GET /package-bundles/{id}", bundlesHandler.HandleGet)
	mux.HandleFunc("PUT /package-bundles/{id}", bundlesHandler.HandleUpdate)
	mux.HandleFunc("DELETE /package-bundles/{id}", bundlesHandler.HandleDelete)
	mux.HandleFunc("POST /package-bundles/{id}/reprice", bundlesHandler.HandleReprice)

	recipesHandler := recipes.NewRecipesHandler(store.Recipes, service)
	mux.HandleFunc("GET /recipes/", recipesHandler.HandleList)
	mux.HandleFunc("POST /recipes/", recipesHandler.HandleCreate)
	mux.HandleFunc("GET /recipes/{id}", recipesHandler.HandleGet)
	mux.HandleFunc("PUT /recipes/{id}", recipesHandler.HandleUpdate)
	mux.HandleFunc("DELETE /recipes/{id}", recipesHandler.HandleDelete)
	mux.HandleFunc("POST /recipes/{id}/reprice", recipesHandler.HandleReprice)

	categoryHandler := categories.NewCategoryHandler(store.Categories)
	mux.HandleFunc("GET /categories/", categoryHandler.HandleGetAll)

	mux.HandleFunc("GET /healthz", health(store))
	if metricsPath != "" {
		mux.Handle("GET "+metricsPath, metrics.Handler())
	}

	return mux
}

type pinger interface {
	Ping(ctx context.Context) error
}

func health(db pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			api.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		api.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
