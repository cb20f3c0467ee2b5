package pedigree

import (
	"errors"
	"reflect"
	"slices"
	"testing"
)

func TestOrderedDescendants(t *testing.T) {
	g := mustNew(t, loop)

	got, err := OrderedDescendants(g, 1)
	if err != nil {
		t.Fatalf("OrderedDescendants(1) error: %v", err)
	}
	want := Distances{
		1: {0},
		3: {1},
		4: {1},
		5: {2},
		6: {2},
		7: {3, 3},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("OrderedDescendants(1) = %v, want %v", got, want)
	}

	leaf, err := OrderedDescendants(g, 7)
	if err != nil || !reflect.DeepEqual(leaf, Distances{7: {0}}) {
		t.Errorf("OrderedDescendants(7) = %v, %v, want {7: [0]}", leaf, err)
	}

	sentinel, err := OrderedDescendants(g, Sentinel)
	if err != nil || !reflect.DeepEqual(sentinel, Distances{Sentinel: {0}}) {
		t.Errorf("OrderedDescendants(0) = %v, %v, want {0: [0]}", sentinel, err)
	}

	if _, err := OrderedDescendants(g, 404); !errors.Is(err, ErrUnknownIndividual) {
		t.Errorf("OrderedDescendants(404) error = %v, want ErrUnknownIndividual", err)
	}
}

func TestDescendantsRoundTrip(t *testing.T) {
	g := mustNew(t, loop)

	for _, d := range g.Individuals() {
		lin, err := OrderedLineage(g, d)
		if err != nil {
			t.Fatalf("OrderedLineage(%d) error: %v", d, err)
		}
		for anc, dists := range lin {
			if anc == Sentinel {
				continue
			}
			desc, err := OrderedDescendants(g, anc)
			if err != nil {
				t.Fatalf("OrderedDescendants(%d) error: %v", anc, err)
			}
			got := slices.Sorted(slices.Values(desc[d]))
			want := slices.Sorted(slices.Values(dists))
			if !slices.Equal(got, want) {
				t.Errorf("descendants(%d)[%d] = %v, lineage(%d)[%d] = %v", anc, d, got, d, anc, want)
			}
		}
	}
}

func TestAllowedIndsNuclear(t *testing.T) {
	g := mustNew(t, nuclear)

	c, err := AllowedInds(g, []ID{3, 4})
	if err != nil {
		t.Fatalf("AllowedInds() error: %v", err)
	}
	if !slices.Equal(c.CommonAncestors, []ID{1, 2}) {
		t.Errorf("CommonAncestors = %v, want [1 2]", c.CommonAncestors)
	}
	if c.NoCommonAncestors {
		t.Error("NoCommonAncestors = true, want false")
	}
	for _, anc := range []ID{1, 2} {
		cone := c.ConeInds[anc]
		if !cone.Has(3) || !cone.Has(4) {
			t.Errorf("ConeInds[%d] = %v, want superset of {3, 4}", anc, cone.Sorted())
		}
	}
	if got := c.AncestorsOf(4); !slices.Equal(got, []ID{1, 2}) {
		t.Errorf("IndCones[4] = %v, want [1 2]", got)
	}
	if s, ok := c.IndCones[Sentinel]; !ok || s.Len() != 0 {
		t.Errorf("IndCones[0] = %v, %v, want empty set", s, ok)
	}
}

func TestAllowedIndsSingle(t *testing.T) {
	g := mustNew(t, loop)

	c, err := AllowedInds(g, []ID{7})
	if err != nil {
		t.Fatalf("AllowedInds() error: %v", err)
	}
	want := []ID{1, 2, 3, 4, 5, 6, 8, 9}
	if !slices.Equal(c.CommonAncestors, want) {
		t.Errorf("CommonAncestors = %v, want %v", c.CommonAncestors, want)
	}
	if c.IndCones[Sentinel].Len() != 0 {
		t.Error("IndCones[0] should be empty")
	}
	// Every cone runs from its ancestor down to 7.
	for anc, cone := range c.ConeInds {
		if !cone.Has(anc) || !cone.Has(7) {
			t.Errorf("ConeInds[%d] = %v, want it to contain %d and 7", anc, cone.Sorted(), anc)
		}
	}
}

func TestAllowedIndsCones(t *testing.T) {
	// 10 and 11 are grandchildren of founder 1 through different children.
	// 12 is a child of 2 who is not on any path to the group.
	g := mustNew(t, [][3]ID{
		{1, 0, 0},
		{20, 0, 0},
		{21, 0, 0},
		{22, 0, 0},
		{2, 1, 20},
		{3, 1, 21},
		{12, 2, 22},
		{10, 2, 21},
		{11, 3, 22},
	})

	c, err := AllowedInds(g, []ID{10, 11})
	if err != nil {
		t.Fatalf("AllowedInds() error: %v", err)
	}
	if !slices.Equal(c.CommonAncestors, []ID{1, 21}) {
		t.Fatalf("CommonAncestors = %v, want [1 21]", c.CommonAncestors)
	}

	if got := c.ConeInds[1].Sorted(); !slices.Equal(got, []ID{1, 2, 3, 10, 11}) {
		t.Errorf("ConeInds[1] = %v, want [1 2 3 10 11]", got)
	}
	if c.ConeInds[1].Has(12) {
		t.Error("12 is a descendant of 1 but on no path to the group")
	}
	if got := c.ConeInds[21].Sorted(); !slices.Equal(got, []ID{3, 10, 11, 21}) {
		t.Errorf("ConeInds[21] = %v, want [3 10 11 21]", got)
	}
	if got := c.AncestorsOf(3); !slices.Equal(got, []ID{1, 21}) {
		t.Errorf("IndCones[3] = %v, want [1 21]", got)
	}
	if got := c.ConeMembers(); !slices.Equal(got, []ID{1, 2, 3, 10, 11, 21}) {
		t.Errorf("ConeMembers() = %v", got)
	}
}

func TestAllowedIndsAncestorInGroup(t *testing.T) {
	g := mustNew(t, nuclear)

	c, err := AllowedInds(g, []ID{3, 1})
	if err != nil {
		t.Fatalf("AllowedInds() error: %v", err)
	}
	if !slices.Equal(c.CommonAncestors, []ID{1}) {
		t.Errorf("CommonAncestors = %v, want [1]", c.CommonAncestors)
	}
}

func TestAllowedIndsNoCommonAncestors(t *testing.T) {
	g := mustNew(t, [][3]ID{
		{1, 0, 0},
		{2, 0, 0},
		{3, 1, 0},
		{4, 0, 2},
	})

	c, err := AllowedInds(g, []ID{3, 4})
	if err != nil {
		t.Fatalf("AllowedInds() error: %v", err)
	}
	if !c.NoCommonAncestors {
		t.Error("NoCommonAncestors = false, want true")
	}
	if len(c.CommonAncestors) != 0 || len(c.ConeInds) != 0 {
		t.Errorf("want empty result, got %v / %v", c.CommonAncestors, c.ConeInds)
	}
	if s, ok := c.IndCones[Sentinel]; !ok || s.Len() != 0 {
		t.Error("IndCones[0] should be present and empty")
	}
	if len(c.IndCones) != 1 {
		t.Errorf("IndCones has %d entries, want only the sentinel", len(c.IndCones))
	}
}

func TestAllowedIndsErrors(t *testing.T) {
	g := mustNew(t, nuclear)

	if _, err := AllowedInds(g, nil); !errors.Is(err, ErrEmptyGroup) {
		t.Errorf("AllowedInds(nil) error = %v, want ErrEmptyGroup", err)
	}
	if _, err := AllowedInds(g, []ID{3, 77}); !errors.Is(err, ErrUnknownIndividual) {
		t.Errorf("AllowedInds(unknown) error = %v, want ErrUnknownIndividual", err)
	}
}
