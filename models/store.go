package models

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Store groups the repositories that share one database handle. A Store
// obtained through Transaction binds every repository to the same
// transaction.
type Store struct {
	db *gorm.DB

	Ingredients    *IngredientsRepository
	PackagingItems *PackagingItemsRepository
	Bundles        *BundlesRepository
	Recipes        *RecipesRepository
	Categories     *CategoriesRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:             db,
		Ingredients:    NewIngredientsRepository(db),
		PackagingItems: NewPackagingItemsRepository(db),
		Bundles:        NewBundlesRepository(db),
		Recipes:        NewRecipesRepository(db),
		Categories:     NewCategoriesRepository(db),
	}
}

// All lists every persisted model, in migration order.
func All() []any {
	return []any{
		&Ingredient{},
		&PackagingItem{},
		&PackageBundle{},
		&PackageBundleItem{},
		&Recipe{},
		&RecipeIngredient{},
	}
}

// Transaction runs fn inside a single database transaction. Any error
// returned by fn rolls back every write made through tx.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

// Ping checks that the underlying database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// IsEmpty reports whether no catalog record of any kind exists yet.
func (s *Store) IsEmpty(ctx context.Context) (bool, error) {
	for _, model := range []any{&Ingredient{}, &PackagingItem{}, &PackageBundle{}, &Recipe{}} {
		var count int64
		if err := s.db.WithContext(ctx).Model(model).Count(&count).Error; err != nil {
			return false, err
		}
		if count > 0 {
			return false, nil
		}
	}
	return true, nil
}

func ensureUniqueName(db *gorm.DB, model any, name string, excludeID uint) error {
	var count int64
	query := db.Model(model).Where("name = ?", name)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	return nil
}

func ensureUnreferenced(db *gorm.DB, model any, column string, id uint, what string) error {
	var count int64
	if err := db.Model(model).Where(column+" = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: used by %d %s", ErrReferenceInUse, count, what)
	}
	return nil
}

// translate maps driver level errors onto the package sentinels.
func translate(err error, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return notFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrDuplicateName, err)
	}
	return err
}
