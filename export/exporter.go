// Package export copies the catalog into the document store under one
// operator's identity, rewriting internal ids into document ids.
//
// An export is a one-shot offline job. It is not resumable and nothing is
// rolled back: documents written before a failure stay in the target.
package export

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/aromadb/aroma-catalog/docstore"
	"github.com/aromadb/aroma-catalog/logging"
	"github.com/aromadb/aroma-catalog/metrics"
	"github.com/aromadb/aroma-catalog/models"
)

const defaultPageSize = 100

type IngredientLister interface {
	List(ctx context.Context, offset, limit int) ([]models.Ingredient, error)
}

type PackagingLister interface {
	List(ctx context.Context, offset, limit int) ([]models.PackagingItem, error)
}

type BundleLister interface {
	List(ctx context.Context, offset, limit int) ([]models.PackageBundle, error)
}

type RecipeLister interface {
	List(ctx context.Context, offset, limit int) ([]models.Recipe, error)
}

// Source is the catalog being exported.
type Source struct {
	Ingredients IngredientLister
	Packaging   PackagingLister
	Bundles     BundleLister
	Recipes     RecipeLister
}

func NewSource(store *models.Store) Source {
	return Source{
		Ingredients: store.Ingredients,
		Packaging:   store.PackagingItems,
		Bundles:     store.Bundles,
		Recipes:     store.Recipes,
	}
}

// Target is the document store receiving the export.
type Target interface {
	IssueIdentity(ctx context.Context, email, displayName string) (docstore.Identity, error)
	PutProfile(ctx context.Context, identity docstore.Identity) error
	NewDocID() string
	Put(ctx context.Context, uid, collection, docID string, doc any) error
}

type Operator struct {
	Email       string
	DisplayName string
}

type Report struct {
	UID                 string
	Email               string
	NewIdentity         bool
	TemporaryCredential string
	Counts              map[string]int
}

type Exporter struct {
	source   Source
	target   Target
	pageSize int
	now      func() time.Time
}

func New(source Source, target Target) *Exporter {
	return &Exporter{
		source:   source,
		target:   target,
		pageSize: defaultPageSize,
		now:      time.Now,
	}
}

// run holds the state of a single export.
type run struct {
	*Exporter
	uid    string
	at     time.Time
	report *Report

	ingredientIDs map[uint]string
	packagingIDs  map[uint]string
	bundleIDs     map[uint]string
}

// Run exports ingredients, packaging items, bundles and recipes in that
// order. The returned report is filled in as far as the export got, also on
// error.
func (e *Exporter) Run(ctx context.Context, op Operator) (*Report, error) {
	log := logging.FromContext(ctx).With(zap.String("email", op.Email))
	report := &Report{Email: op.Email, Counts: map[string]int{}}

	identity, err := e.target.IssueIdentity(ctx, op.Email, op.DisplayName)
	if err != nil {
		return report, err
	}
	report.UID = identity.UID
	report.Email = identity.Email
	report.NewIdentity = identity.Created
	report.TemporaryCredential = identity.TemporaryCredential

	if err := e.target.PutProfile(ctx, identity); err != nil {
		return report, fmt.Errorf("write profile: %w", err)
	}

	r := &run{
		Exporter:      e,
		uid:           identity.UID,
		at:            e.now().UTC(),
		report:        report,
		ingredientIDs: map[uint]string{},
		packagingIDs:  map[uint]string{},
		bundleIDs:     map[uint]string{},
	}
	steps := []struct {
		collection string
		fn         func(context.Context) error
	}{
		{CollectionIngredients, r.ingredients},
		{CollectionPackaging, r.packaging},
		{CollectionBundles, r.bundles},
		{CollectionRecipes, r.recipes},
	}
	for _, step := range steps {
		if err := step.fn(ctx); err != nil {
			log.Error("Export failed", zap.String("collection", step.collection), zap.Error(err))
			return report, fmt.Errorf("export %s: %w", step.collection, err)
		}
		log.Info("Exported collection",
			zap.String("collection", step.collection),
			zap.Int("documents", report.Counts[step.collection]))
	}
	return report, nil
}

func (r *run) put(ctx context.Context, collection string, doc any) (string, error) {
	docID := r.target.NewDocID()
	if err := r.target.Put(ctx, r.uid, collection, docID, doc); err != nil {
		return "", err
	}
	r.report.Counts[collection]++
	metrics.RecordExported(collection)
	return docID, nil
}

func (r *run) ingredients(ctx context.Context) error {
	ingredients, err := collect(ctx, r.pageSize, r.source.Ingredients.List)
	if err != nil {
		return err
	}
	for _, in := range ingredients {
		docID, err := r.put(ctx, CollectionIngredients, ingredientDoc(r.uid, in, r.at))
		if err != nil {
			return err
		}
		r.ingredientIDs[in.ID] = docID
	}
	return nil
}

func (r *run) packaging(ctx context.Context) error {
	items, err := collect(ctx, r.pageSize, r.source.Packaging.List)
	if err != nil {
		return err
	}
	for _, item := range items {
		docID, err := r.put(ctx, CollectionPackaging, packagingDoc(r.uid, item, r.at))
		if err != nil {
			return err
		}
		r.packagingIDs[item.ID] = docID
	}
	return nil
}

func (r *run) bundles(ctx context.Context) error {
	bundles, err := collect(ctx, r.pageSize, r.source.Bundles.List)
	if err != nil {
		return err
	}
	for _, bundle := range bundles {
		components := make([]ComponentDoc, 0, len(bundle.Items))
		for _, item := range bundle.Items {
			packagingID, ok := r.packagingIDs[item.ID]
			if !ok {
				return fmt.Errorf("bundle %q: packaging item %d was not exported", bundle.Name, item.ID)
			}
			components = append(components, ComponentDoc{
				PackagingID: packagingID,
				Quantity:    componentQuantity,
				Type:        item.Category,
			})
		}
		docID, err := r.put(ctx, CollectionBundles, BundleDoc{
			UserID:      r.uid,
			Name:        bundle.Name,
			Components:  components,
			TotalCost:   bundle.TotalPrice.InexactFloat64(),
			Notes:       bundle.Notes,
			Description: bundle.Description,
			Capacity:    bundle.Capacity,
			CreatedAt:   r.at,
			UpdatedAt:   r.at,
		})
		if err != nil {
			return err
		}
		r.bundleIDs[bundle.ID] = docID
	}
	return nil
}

func (r *run) recipes(ctx context.Context) error {
	recipes, err := collect(ctx, r.pageSize, r.source.Recipes.List)
	if err != nil {
		return err
	}
	for _, recipe := range recipes {
		lines := make([]RecipeLineDoc, 0, len(recipe.Ingredients))
		for _, line := range recipe.Ingredients {
			ingredientID, ok := r.ingredientIDs[line.IngredientID]
			if !ok {
				return fmt.Errorf("recipe %q: ingredient %d was not exported", recipe.Name, line.IngredientID)
			}
			lines = append(lines, RecipeLineDoc{
				IngredientID:    ingredientID,
				Quantity:        line.AmountML.InexactFloat64(),
				MeasurementUnit: string(models.MeasurementML),
			})
		}

		var bundleID *string
		if id, ok := r.bundleIDs[recipe.PackageBundleID]; ok {
			bundleID = &id
		}
		_, err := r.put(ctx, CollectionRecipes, RecipeDoc{
			UserID:            r.uid,
			Name:              recipe.Name,
			Description:       recipe.Description,
			TotalVolume:       recipe.TotalVolumeML,
			MeasurementUnit:   string(models.MeasurementML),
			Ingredients:       lines,
			PackagingBundleID: bundleID,
			RetailPrice:       recipe.RetailPrice.Decimal.InexactFloat64(),
			Notes:             recipe.Notes,
			TotalCost:         recipe.TotalCost.InexactFloat64(),
			CreatedAt:         r.at,
			UpdatedAt:         r.at,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// collect pages through list until it returns a short page.
func collect[T any](ctx context.Context, pageSize int, list func(ctx context.Context, offset, limit int) ([]T, error)) ([]T, error) {
	var all []T
	for offset := 0; ; offset += pageSize {
		page, err := list(ctx, offset, pageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < pageSize {
			return all, nil
		}
	}
}
