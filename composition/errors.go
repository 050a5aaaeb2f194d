package composition

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	KindBundle        = "bundle"
	KindIngredient    = "ingredient"
	KindPackagingItem = "packaging_item"
)

// ReferenceNotFoundError reports identifiers that did not resolve.
type ReferenceNotFoundError struct {
	Kind string
	IDs  []uint
}

func (e *ReferenceNotFoundError) Error() string {
	switch e.Kind {
	case KindPackagingItem:
		return "packaging items not found: " + joinIDs(e.IDs)
	case KindBundle:
		return fmt.Sprintf("package bundle with id %s not found", joinIDs(e.IDs))
	default:
		return fmt.Sprintf("%s with id %s not found", e.Kind, joinIDs(e.IDs))
	}
}

// InsufficientStockError reports a recipe line asking for more of an
// ingredient than is tracked as available.
type InsufficientStockError struct {
	Ingredient string
	Requested  decimal.Decimal
	Available  decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("not enough stock for %s: need %sml but only have %sml",
		e.Ingredient, e.Requested.String(), e.Available.String())
}

// ConversionError reports a line given in drops for an ingredient that has
// no drops-per-milliliter factor.
type ConversionError struct {
	Ingredient string
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("%s cannot be measured in drops: no drops_per_ml set", e.Ingredient)
}

func joinIDs(ids []uint) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	return strings.Join(parts, ", ")
}
