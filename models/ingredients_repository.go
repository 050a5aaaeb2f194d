package models

import (
	"context"

	"gorm.io/gorm"
)

type IngredientsRepository struct {
	db *gorm.DB
}

func NewIngredientsRepository(db *gorm.DB) *IngredientsRepository {
	return &IngredientsRepository{
		db: db,
	}
}

func (r *IngredientsRepository) List(ctx context.Context, offset, limit int) ([]Ingredient, error) {
	var ingredients []Ingredient
	if err := r.db.WithContext(ctx).
		Order("id").
		Offset(offset).
		Limit(limit).
		Find(&ingredients).Error; err != nil {
		return nil, err
	}
	return ingredients, nil
}

func (r *IngredientsRepository) GetByID(ctx context.Context, id uint) (*Ingredient, error) {
	var ingredient Ingredient
	if err := r.db.WithContext(ctx).First(&ingredient, id).Error; err != nil {
		return nil, translate(err, ErrIngredientNotFound)
	}
	return &ingredient, nil
}

// GetByIDs returns the ingredients that exist among ids. Missing ids are
// silently skipped; callers compare lengths when they need all of them.
func (r *IngredientsRepository) GetByIDs(ctx context.Context, ids []uint) ([]Ingredient, error) {
	ingredients := []Ingredient{}
	if len(ids) == 0 {
		return ingredients, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&ingredients).Error; err != nil {
		return nil, err
	}
	return ingredients, nil
}

func (r *IngredientsRepository) GetByName(ctx context.Context, name string) (*Ingredient, error) {
	var ingredient Ingredient
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&ingredient).Error; err != nil {
		return nil, translate(err, ErrIngredientNotFound)
	}
	return &ingredient, nil
}

func (r *IngredientsRepository) Create(ctx context.Context, ingredient *Ingredient) error {
	db := r.db.WithContext(ctx)
	if err := ensureUniqueName(db, &Ingredient{}, ingredient.Name, 0); err != nil {
		return err
	}
	return translate(db.Create(ingredient).Error, ErrIngredientNotFound)
}

// Update overwrites every column of the ingredient identified by
// ingredient.ID. Recipes that use it keep their stored totals.
func (r *IngredientsRepository) Update(ctx context.Context, ingredient *Ingredient) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&Ingredient{}, ingredient.ID).Error; err != nil {
			return translate(err, ErrIngredientNotFound)
		}
		if err := ensureUniqueName(tx, &Ingredient{}, ingredient.Name, ingredient.ID); err != nil {
			return err
		}
		return translate(tx.Save(ingredient).Error, ErrIngredientNotFound)
	})
}

// Delete removes an ingredient that no recipe uses.
func (r *IngredientsRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&Ingredient{}, id).Error; err != nil {
			return translate(err, ErrIngredientNotFound)
		}
		if err := ensureUnreferenced(tx, &RecipeIngredient{}, "ingredient_id", id, "recipe lines"); err != nil {
			return err
		}
		return tx.Delete(&Ingredient{}, id).Error
	})
}
