package models

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BundlesRepository struct {
	db *gorm.DB
}

func NewBundlesRepository(db *gorm.DB) *BundlesRepository {
	return &BundlesRepository{
		db: db,
	}
}

func (r *BundlesRepository) withItems(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("packaging_items.id")
	})
}

func (r *BundlesRepository) List(ctx context.Context, offset, limit int) ([]PackageBundle, error) {
	var bundles []PackageBundle
	if err := r.withItems(ctx).
		Order("id").
		Offset(offset).
		Limit(limit).
		Find(&bundles).Error; err != nil {
		return nil, err
	}
	return bundles, nil
}

func (r *BundlesRepository) GetByID(ctx context.Context, id uint) (*PackageBundle, error) {
	var bundle PackageBundle
	if err := r.withItems(ctx).First(&bundle, id).Error; err != nil {
		return nil, translate(err, ErrBundleNotFound)
	}
	return &bundle, nil
}

func (r *BundlesRepository) GetByName(ctx context.Context, name string) (*PackageBundle, error) {
	var bundle PackageBundle
	if err := r.withItems(ctx).Where("name = ?", name).First(&bundle).Error; err != nil {
		return nil, translate(err, ErrBundleNotFound)
	}
	return &bundle, nil
}

// IDs returns every bundle id in ascending order.
func (r *BundlesRepository) IDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).Model(&PackageBundle{}).Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// Create inserts the bundle and one join row per entry of bundle.Items.
// TotalPrice must already be computed by the caller.
func (r *BundlesRepository) Create(ctx context.Context, bundle *PackageBundle) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureUniqueName(tx, &PackageBundle{}, bundle.Name, 0); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(bundle).Error; err != nil {
			return translate(err, ErrBundleNotFound)
		}
		return replaceBundleItems(tx, bundle.ID, bundle.ItemIDs())
	})
}

// Update overwrites the bundle columns and replaces its membership with
// bundle.Items.
func (r *BundlesRepository) Update(ctx context.Context, bundle *PackageBundle) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&PackageBundle{}, bundle.ID).Error; err != nil {
			return translate(err, ErrBundleNotFound)
		}
		if err := ensureUniqueName(tx, &PackageBundle{}, bundle.Name, bundle.ID); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Save(bundle).Error; err != nil {
			return translate(err, ErrBundleNotFound)
		}
		return replaceBundleItems(tx, bundle.ID, bundle.ItemIDs())
	})
}

// Delete removes a bundle no recipe uses, together with its item
// associations. The items themselves are kept.
func (r *BundlesRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&PackageBundle{}, id).Error; err != nil {
			return translate(err, ErrBundleNotFound)
		}
		if err := ensureUnreferenced(tx, &Recipe{}, "package_bundle_id", id, "recipes"); err != nil {
			return err
		}
		if err := tx.Where("package_bundle_id = ?", id).Delete(&PackageBundleItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&PackageBundle{}, id).Error
	})
}

func replaceBundleItems(tx *gorm.DB, bundleID uint, itemIDs []uint) error {
	if err := tx.Where("package_bundle_id = ?", bundleID).Delete(&PackageBundleItem{}).Error; err != nil {
		return err
	}
	if len(itemIDs) == 0 {
		return nil
	}
	rows := make([]PackageBundleItem, len(itemIDs))
	for i, itemID := range itemIDs {
		rows[i] = PackageBundleItem{PackageBundleID: bundleID, PackagingItemID: itemID}
	}
	return tx.Create(&rows).Error
}
