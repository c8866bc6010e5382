package domain

import "strings"

// Category groups allocatable resources by the kind of guest they host.
type Category string

const (
	CategoryDaycare Category = "daycare"
	CategorySmall   Category = "small"
	CategoryMedium  Category = "medium"
	CategoryLarge   Category = "large"
	CategoryOther   Category = "other"
)

// Resource is a physical allocatable unit (boarding suite or kennel).
// Resources are immutable during a sync run; only administrative operations
// outside the engine mutate them.
type Resource struct {
	ID       string
	TenantID string
	Name     string
	Category Category
	Active   bool
}

// NormalizeCategory maps free-text resource type labels from the booking
// provider onto the fixed category set. Unrecognized labels land in
// CategoryOther so they still participate as fallback candidates.
func NormalizeCategory(label string) Category {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "daycare", "daycare room", "play room":
		return CategoryDaycare
	case "small", "small suite", "cabin":
		return CategorySmall
	case "medium", "medium suite", "standard suite":
		return CategoryMedium
	case "large", "large suite", "luxury suite":
		return CategoryLarge
	default:
		return CategoryOther
	}
}
