package models

import (
	"context"

	"gorm.io/gorm"
)

type PackagingItemsRepository struct {
	db *gorm.DB
}

func NewPackagingItemsRepository(db *gorm.DB) *PackagingItemsRepository {
	return &PackagingItemsRepository{
		db: db,
	}
}

func (r *PackagingItemsRepository) List(ctx context.Context, offset, limit int) ([]PackagingItem, error) {
	var items []PackagingItem
	if err := r.db.WithContext(ctx).
		Order("id").
		Offset(offset).
		Limit(limit).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *PackagingItemsRepository) GetByID(ctx context.Context, id uint) (*PackagingItem, error) {
	var item PackagingItem
	if err := r.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, translate(err, ErrPackagingItemNotFound)
	}
	return &item, nil
}

// GetByIDs fetches the distinct items matching ids. Duplicate ids in the
// input yield a single row.
func (r *PackagingItemsRepository) GetByIDs(ctx context.Context, ids []uint) ([]PackagingItem, error) {
	items := []PackagingItem{}
	if len(ids) == 0 {
		return items, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *PackagingItemsRepository) GetByName(ctx context.Context, name string) (*PackagingItem, error) {
	var item PackagingItem
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&item).Error; err != nil {
		return nil, translate(err, ErrPackagingItemNotFound)
	}
	return &item, nil
}

func (r *PackagingItemsRepository) Create(ctx context.Context, item *PackagingItem) error {
	db := r.db.WithContext(ctx)
	if err := ensureUniqueName(db, &PackagingItem{}, item.Name, 0); err != nil {
		return err
	}
	return translate(db.Create(item).Error, ErrPackagingItemNotFound)
}

// Update overwrites the item. Bundles containing it keep their stored totals
// until they are written or repriced again.
func (r *PackagingItemsRepository) Update(ctx context.Context, item *PackagingItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&PackagingItem{}, item.ID).Error; err != nil {
			return translate(err, ErrPackagingItemNotFound)
		}
		if err := ensureUniqueName(tx, &PackagingItem{}, item.Name, item.ID); err != nil {
			return err
		}
		return translate(tx.Save(item).Error, ErrPackagingItemNotFound)
	})
}

// Delete removes an item that belongs to no bundle.
func (r *PackagingItemsRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&PackagingItem{}, id).Error; err != nil {
			return translate(err, ErrPackagingItemNotFound)
		}
		if err := ensureUnreferenced(tx, &PackageBundleItem{}, "packaging_item_id", id, "bundles"); err != nil {
			return err
		}
		return tx.Delete(&PackagingItem{}, id).Error
	})
}
