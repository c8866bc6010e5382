package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func window(startDay, endDay int) Interval {
	base := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	return Interval{
		Start: base.AddDate(0, 0, startDay),
		End:   base.AddDate(0, 0, endDay),
	}
}

func suite(id, name string, category Category) Resource {
	return Resource{ID: id, TenantID: "t1", Name: name, Category: category, Active: true}
}

func TestClassify_WeightThresholds(t *testing.T) {
	policy := DefaultPolicy()

	require.Equal(t, SizeSmall, policy.Classify(10))
	require.Equal(t, SizeSmall, policy.Classify(24.9))
	require.Equal(t, SizeMedium, policy.Classify(25))
	require.Equal(t, SizeMedium, policy.Classify(59.9))
	require.Equal(t, SizeLarge, policy.Classify(60))
	require.Equal(t, SizeLarge, policy.Classify(120))
	// Unknown weight defaults to medium.
	require.Equal(t, SizeMedium, policy.Classify(0))
}

func TestAllocate_PrefersMatchingCategory(t *testing.T) {
	candidates := []Resource{
		suite("r-large", "Suite L1", CategoryLarge),
		suite("r-small", "Suite S1", CategorySmall),
	}

	small, ok := Allocate(DefaultPolicy(), Request{Kind: KindOvernight, WeightLbs: 10, Window: window(0, 3)}, candidates, Occupancy{})
	require.True(t, ok)
	require.Equal(t, "r-small", small.ID)

	large, ok := Allocate(DefaultPolicy(), Request{Kind: KindOvernight, WeightLbs: 70, Window: window(0, 3)}, candidates, Occupancy{})
	require.True(t, ok)
	require.Equal(t, "r-large", large.ID)
}

func TestAllocate_TwoPetsSameWindowGetSizedSuites(t *testing.T) {
	// A 10 lb and a 70 lb pet requesting the same 3-day window with one
	// small and one large suite available must land on small and large
	// respectively, not force a mismatch.
	candidates := []Resource{
		suite("r-small", "Suite S1", CategorySmall),
		suite("r-large", "Suite L1", CategoryLarge),
	}
	occupancy := Occupancy{}

	first, ok := Allocate(DefaultPolicy(), Request{Kind: KindOvernight, WeightLbs: 10, Window: window(0, 3)}, candidates, occupancy)
	require.True(t, ok)
	require.Equal(t, "r-small", first.ID)
	occupancy.Add(first.ID, window(0, 3))

	second, ok := Allocate(DefaultPolicy(), Request{Kind: KindOvernight, WeightLbs: 70, Window: window(0, 3)}, candidates, occupancy)
	require.True(t, ok)
	require.Equal(t, "r-large", second.ID)
}

func TestAllocate_FallsBackWhenMatchedCategoryBusy(t *testing.T) {
	candidates := []Resource{
		suite("r-small", "Suite S1", CategorySmall),
		suite("r-medium", "Suite M1", CategoryMedium),
	}
	occupancy := Occupancy{}
	occupancy.Add("r-small", window(0, 3))

	got, ok := Allocate(DefaultPolicy(), Request{Kind: KindOvernight, WeightLbs: 10, Window: window(1, 2)}, candidates, occupancy)
	require.True(t, ok)
	require.Equal(t, "r-medium", got.ID)
}

func TestAllocate_NoCapacity(t *testing.T) {
	candidates := []Resource{suite("r-small", "Suite S1", CategorySmall)}
	occupancy := Occupancy{}
	occupancy.Add("r-small", window(0, 3))

	_, ok := Allocate(DefaultPolicy(), Request{Kind: KindOvernight, WeightLbs: 10, Window: window(2, 4)}, candidates, occupancy)
	require.False(t, ok)
}

func TestAllocate_BackToBackWindowsShareResource(t *testing.T) {
	// Half-open semantics: a stay ending exactly when the next begins is
	// not a conflict.
	candidates := []Resource{suite("r-small", "Suite S1", CategorySmall)}
	occupancy := Occupancy{}
	occupancy.Add("r-small", window(0, 3))

	got, ok := Allocate(DefaultPolicy(), Request{Kind: KindOvernight, WeightLbs: 10, Window: window(3, 5)}, candidates, occupancy)
	require.True(t, ok)
	require.Equal(t, "r-small", got.ID)
}

func TestAllocate_OneSecondOverlapRejected(t *testing.T) {
	candidates := []Resource{suite("r-small", "Suite S1", CategorySmall)}
	occupied := window(0, 3)
	occupancy := Occupancy{}
	occupancy.Add("r-small", occupied)

	req := Request{Kind: KindOvernight, WeightLbs: 10, Window: Interval{
		Start: occupied.End.Add(-time.Second),
		End:   occupied.End.AddDate(0, 0, 2),
	}}
	_, ok := Allocate(DefaultPolicy(), req, candidates, occupancy)
	require.False(t, ok)
}

func TestAllocate_DaycarePrefersDaycareRoom(t *testing.T) {
	candidates := []Resource{
		suite("r-small", "Suite S1", CategorySmall),
		suite("r-daycare", "Play Room", CategoryDaycare),
	}

	got, ok := Allocate(DefaultPolicy(), Request{Kind: KindDaycare, WeightLbs: 40, Window: window(0, 1)}, candidates, Occupancy{})
	require.True(t, ok)
	require.Equal(t, "r-daycare", got.ID)
}

func TestAllocate_SkipsInactiveResources(t *testing.T) {
	inactive := suite("r-small", "Suite S1", CategorySmall)
	inactive.Active = false

	_, ok := Allocate(DefaultPolicy(), Request{Kind: KindOvernight, WeightLbs: 10, Window: window(0, 2)}, []Resource{inactive}, Occupancy{})
	require.False(t, ok)
}

func TestAllocate_Deterministic(t *testing.T) {
	candidates := []Resource{
		suite("r-b", "Suite B", CategoryMedium),
		suite("r-a", "Suite A", CategoryMedium),
		suite("r-c", "Suite C", CategoryMedium),
	}
	req := Request{Kind: KindOvernight, WeightLbs: 40, Window: window(0, 2)}

	first, ok := Allocate(DefaultPolicy(), req, candidates, Occupancy{})
	require.True(t, ok)
	for i := 0; i < 10; i++ {
		again, ok := Allocate(DefaultPolicy(), req, candidates, Occupancy{})
		require.True(t, ok)
		require.Equal(t, first.ID, again.ID)
	}
	require.Equal(t, "r-a", first.ID)
}

func TestOrderCandidates_OvernightFallbackChain(t *testing.T) {
	candidates := []Resource{
		suite("r-other", "Annex", CategoryOther),
		suite("r-daycare", "Play Room", CategoryDaycare),
		suite("r-large", "Suite L1", CategoryLarge),
		suite("r-medium", "Suite M1", CategoryMedium),
		suite("r-small", "Suite S1", CategorySmall),
	}
	ordered := OrderCandidates(DefaultPolicy(), Request{Kind: KindOvernight, WeightLbs: 70}, candidates)

	ids := make([]string, 0, len(ordered))
	for _, r := range ordered {
		ids = append(ids, r.ID)
	}
	require.Equal(t, []string{"r-large", "r-small", "r-medium", "r-other", "r-daycare"}, ids)
}
