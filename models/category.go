package models

const (
	CategoryKindIngredient = "ingredient"
	CategoryKindPackaging  = "packaging"
)

// Category is a free-form tag used to group ingredients (essential oil,
// carrier oil, hydrosol) or packaging items (bottle, cap, label).
// It is not stored in a table of its own.
type Category struct {
	Kind string
	Name string
}
