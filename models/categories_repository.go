package models

import (
	"context"

	"gorm.io/gorm"
)

type CategoriesRepository struct {
	db *gorm.DB
}

func NewCategoriesRepository(db *gorm.DB) *CategoriesRepository {
	return &CategoriesRepository{
		db: db,
	}
}

// GetAllCategories returns the distinct non-empty category tags in use,
// ingredients first, each group sorted by name.
func (r *CategoriesRepository) GetAllCategories(ctx context.Context) ([]Category, error) {
	sources := []struct {
		kind  string
		model any
	}{
		{CategoryKindIngredient, &Ingredient{}},
		{CategoryKindPackaging, &PackagingItem{}},
	}

	categories := []Category{}
	for _, src := range sources {
		var names []string
		if err := r.db.WithContext(ctx).
			Model(src.model).
			Where("category <> ''").
			Distinct("category").
			Order("category").
			Pluck("category", &names).Error; err != nil {
			return nil, err
		}
		for _, name := range names {
			categories = append(categories, Category{Kind: src.kind, Name: name})
		}
	}
	return categories, nil
}
