package models

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RecipesRepository struct {
	db *gorm.DB
}

func NewRecipesRepository(db *gorm.DB) *RecipesRepository {
	return &RecipesRepository{
		db: db,
	}
}

func (r *RecipesRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("PackageBundle").
		Preload("PackageBundle.Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("packaging_items.id")
		}).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
			return db.Order("recipe_ingredients.position")
		}).
		Preload("Ingredients.Ingredient")
}

func (r *RecipesRepository) List(ctx context.Context, offset, limit int) ([]Recipe, error) {
	var recipes []Recipe
	if err := r.preloaded(ctx).
		Order("id").
		Offset(offset).
		Limit(limit).
		Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

func (r *RecipesRepository) GetByID(ctx context.Context, id uint) (*Recipe, error) {
	var recipe Recipe
	if err := r.preloaded(ctx).First(&recipe, id).Error; err != nil {
		return nil, translate(err, ErrRecipeNotFound)
	}
	return &recipe, nil
}

func (r *RecipesRepository) GetByName(ctx context.Context, name string) (*Recipe, error) {
	var recipe Recipe
	if err := r.preloaded(ctx).Where("name = ?", name).First(&recipe).Error; err != nil {
		return nil, translate(err, ErrRecipeNotFound)
	}
	return &recipe, nil
}

// IDs returns every recipe id in ascending order.
func (r *RecipesRepository) IDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).Model(&Recipe{}).Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// Create inserts the recipe and its ingredient lines in one transaction.
// TotalCost must already be computed by the caller.
func (r *RecipesRepository) Create(ctx context.Context, recipe *Recipe) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureUniqueName(tx, &Recipe{}, recipe.Name, 0); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(recipe).Error; err != nil {
			return translate(err, ErrRecipeNotFound)
		}
		return insertRecipeLines(tx, recipe)
	})
}

// Update overwrites the recipe columns and replaces all of its lines.
func (r *RecipesRepository) Update(ctx context.Context, recipe *Recipe) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&Recipe{}, recipe.ID).Error; err != nil {
			return translate(err, ErrRecipeNotFound)
		}
		if err := ensureUniqueName(tx, &Recipe{}, recipe.Name, recipe.ID); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Save(recipe).Error; err != nil {
			return translate(err, ErrRecipeNotFound)
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&RecipeIngredient{}).Error; err != nil {
			return err
		}
		return insertRecipeLines(tx, recipe)
	})
}

// Delete removes the recipe and every one of its ingredient lines.
func (r *RecipesRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&Recipe{}, id).Error; err != nil {
			return translate(err, ErrRecipeNotFound)
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&RecipeIngredient{}).Error; err != nil {
			return err
		}
		return tx.Delete(&Recipe{}, id).Error
	})
}

func insertRecipeLines(tx *gorm.DB, recipe *Recipe) error {
	if len(recipe.Ingredients) == 0 {
		return nil
	}
	for i := range recipe.Ingredients {
		recipe.Ingredients[i].RecipeID = recipe.ID
		recipe.Ingredients[i].Position = i
	}
	return tx.Omit(clause.Associations).Create(&recipe.Ingredients).Error
}
