package models

import "errors"

var (
	// ErrIngredientNotFound is returned when an ingredient is not found.
	ErrIngredientNotFound = errors.New("ingredient not found")
	// ErrPackagingItemNotFound is returned when a packaging item is not found.
	ErrPackagingItemNotFound = errors.New("packaging item not found")
	// ErrBundleNotFound is returned when a package bundle is not found.
	ErrBundleNotFound = errors.New("package bundle not found")
	// ErrRecipeNotFound is returned when a recipe is not found.
	ErrRecipeNotFound = errors.New("recipe not found")

	// ErrDuplicateName is returned when another record of the same type
	// already uses the name.
	ErrDuplicateName = errors.New("name already in use")
	// ErrReferenceInUse is returned when deleting a record that a bundle or
	// recipe still points at.
	ErrReferenceInUse = errors.New("record is still referenced")
)
