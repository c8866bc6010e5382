package domain

import "sort"

// SizeClass buckets pets by weight for suite matching.
type SizeClass string

const (
	SizeSmall  SizeClass = "small"
	SizeMedium SizeClass = "medium"
	SizeLarge  SizeClass = "large"
)

// Policy carries the tunable allocation thresholds. The weight cut-offs and
// tie-break behavior are business policy, so they live in configuration
// rather than being baked into the algorithm.
type Policy struct {
	SmallMaxLbs float64
	LargeMinLbs float64
}

// DefaultPolicy returns the thresholds the boarding team operates with:
// under 25 lbs small, 60 lbs and over large, medium in between.
func DefaultPolicy() Policy {
	return Policy{SmallMaxLbs: 25, LargeMinLbs: 60}
}

// Classify buckets a pet weight. Zero or negative means the weight is
// unknown and defaults to medium.
func (p Policy) Classify(weightLbs float64) SizeClass {
	if weightLbs <= 0 {
		return SizeMedium
	}
	if weightLbs < p.SmallMaxLbs {
		return SizeSmall
	}
	if weightLbs < p.LargeMinLbs {
		return SizeMedium
	}
	return SizeLarge
}

// Request describes one reservation the allocator must place.
type Request struct {
	Kind      Kind
	WeightLbs float64
	Window    Interval
}

// Occupancy is the snapshot of active reservation windows per resource id
// that the allocator walks. Callers must rebuild it from committed state
// before every allocation decision; the allocator never caches.
type Occupancy map[string][]Interval

// Add records an occupied window on a resource.
func (o Occupancy) Add(resourceID string, window Interval) {
	o[resourceID] = append(o[resourceID], window)
}

// IsFree reports whether the resource has no window intersecting the
// requested half-open interval.
func (o Occupancy) IsFree(resourceID string, window Interval) bool {
	for _, existing := range o[resourceID] {
		if existing.Overlaps(window) {
			return false
		}
	}
	return true
}

// Allocate selects the first free resource from the ordered candidate list.
// It is a pure function: identical inputs always produce the identical
// choice, so re-running a sync converges instead of oscillating. The second
// return is false when no candidate can host the window (no capacity); the
// caller must leave the reservation unassigned rather than force a fit.
func Allocate(policy Policy, req Request, candidates []Resource, occupancy Occupancy) (Resource, bool) {
	for _, resource := range OrderCandidates(policy, req, candidates) {
		if occupancy.IsFree(resource.ID, req.Window) {
			return resource, true
		}
	}
	return Resource{}, false
}

// OrderCandidates arranges active resources into the fixed preference order
// for the request: the category matching the classification first, then the
// documented fallback chain. Within a category, resources sort by name then
// id so the outcome is deterministic given identical input state.
func OrderCandidates(policy Policy, req Request, candidates []Resource) []Resource {
	priority := categoryPriority(policy, req)
	ordered := make([]Resource, 0, len(candidates))
	for _, category := range priority {
		group := make([]Resource, 0, len(candidates))
		for _, resource := range candidates {
			if resource.Active && resource.Category == category {
				group = append(group, resource)
			}
		}
		sort.Slice(group, func(i, j int) bool {
			if group[i].Name != group[j].Name {
				return group[i].Name < group[j].Name
			}
			return group[i].ID < group[j].ID
		})
		ordered = append(ordered, group...)
	}
	return ordered
}

// categoryPriority returns the fallback chain for a request. Daycare visits
// prefer the daycare room and fall back through suites ascending in size.
// Overnight stays start at the size-matched suite, walk the remaining sizes
// in ascending order, and only then spill into daycare or uncategorized
// space.
func categoryPriority(policy Policy, req Request) []Category {
	if req.Kind == KindDaycare {
		return []Category{CategoryDaycare, CategorySmall, CategoryMedium, CategoryLarge, CategoryOther}
	}
	sizes := []Category{CategorySmall, CategoryMedium, CategoryLarge}
	matched := Category(policy.Classify(req.WeightLbs))
	priority := []Category{matched}
	for _, size := range sizes {
		if size != matched {
			priority = append(priority, size)
		}
	}
	return append(priority, CategoryOther, CategoryDaycare)
}
