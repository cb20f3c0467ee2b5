package pedigree

import (
	"errors"
	"reflect"
	"slices"
	"testing"
)

func TestOrderedLineageFounder(t *testing.T) {
	g := mustNew(t, loop)

	for _, id := range g.Founders() {
		got, err := OrderedLineage(g, id)
		if err != nil {
			t.Fatalf("OrderedLineage(%d) error: %v", id, err)
		}
		want := Distances{Sentinel: {0}}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("OrderedLineage(%d) = %v, want %v", id, got, want)
		}
	}
}

func TestOrderedLineage(t *testing.T) {
	g := mustNew(t, loop)

	got, err := OrderedLineage(g, 7)
	if err != nil {
		t.Fatalf("OrderedLineage(7) error: %v", err)
	}
	want := Distances{
		5: {1},
		6: {1},
		3: {2},
		8: {2},
		4: {2},
		9: {2},
		1: {3, 3},
		2: {3, 3},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("OrderedLineage(7) = %v, want %v", got, want)
	}
	if got.Paths(1) != 2 {
		t.Errorf("Paths(1) = %d, want 2", got.Paths(1))
	}
	if got.Min(3) != 2 || got.Min(42) != -1 {
		t.Errorf("Min() returned wrong distances")
	}
	if _, ok := got[Sentinel]; ok {
		t.Error("sentinel should not appear in a non-founder lineage")
	}
}

func TestOrderedLineageMixedDepths(t *testing.T) {
	// 1 is both grandparent (via 2) and parent of 3.
	g := mustNew(t, [][3]ID{
		{1, 0, 0},
		{10, 0, 0},
		{2, 1, 10},
		{3, 2, 1},
	})

	got, err := OrderedLineage(g, 3)
	if err != nil {
		t.Fatalf("OrderedLineage(3) error: %v", err)
	}
	if !slices.Equal(got[1], []int{1, 2}) {
		t.Errorf("lineage[1] = %v, want [1 2]", got[1])
	}
	if !slices.Equal(got[10], []int{2}) {
		t.Errorf("lineage[10] = %v, want [2]", got[10])
	}
}

func TestOrderedLineageHalfFounder(t *testing.T) {
	g := mustNew(t, [][3]ID{{1, 0, 0}, {3, 0, 1}})

	got, err := OrderedLineage(g, 3)
	if err != nil {
		t.Fatalf("OrderedLineage(3) error: %v", err)
	}
	want := Distances{1: {1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("OrderedLineage(3) = %v, want %v", got, want)
	}
}

func TestOrderedLineageUnknown(t *testing.T) {
	g := mustNew(t, nuclear)
	if _, err := OrderedLineage(g, 99); !errors.Is(err, ErrUnknownIndividual) {
		t.Errorf("error = %v, want ErrUnknownIndividual", err)
	}
}

func TestLineage(t *testing.T) {
	g := mustNew(t, loop)

	got, err := Lineage(g, 7)
	if err != nil {
		t.Fatalf("Lineage(7) error: %v", err)
	}
	// Self, then father's closure, then mother's closure.
	want := []ID{7, 5, 3, 1, 2, 8, 6, 4, 1, 2, 9}
	if !slices.Equal(got, want) {
		t.Errorf("Lineage(7) = %v, want %v", got, want)
	}

	founder, err := Lineage(g, 1)
	if err != nil || !slices.Equal(founder, []ID{1}) {
		t.Errorf("Lineage(1) = %v, %v, want [1]", founder, err)
	}

	if _, err := Lineage(g, 0); !errors.Is(err, ErrUnknownIndividual) {
		t.Errorf("Lineage(0) error = %v, want ErrUnknownIndividual", err)
	}
}

func TestLineageClosure(t *testing.T) {
	g := mustNew(t, loop)

	for _, id := range g.Individuals() {
		l, err := Lineage(g, id)
		if err != nil {
			t.Fatalf("Lineage(%d) error: %v", id, err)
		}
		if !slices.Contains(l, id) {
			t.Errorf("Lineage(%d) does not contain itself", id)
		}

		ord, err := OrderedLineage(g, id)
		if err != nil {
			t.Fatalf("OrderedLineage(%d) error: %v", id, err)
		}
		for _, anc := range l {
			if anc == id {
				continue
			}
			if _, ok := ord[anc]; !ok {
				t.Errorf("Lineage(%d) contains %d outside the parent closure", id, anc)
			}
		}
	}
}

func TestLineageSet(t *testing.T) {
	g := mustNew(t, loop)

	s, err := LineageSet(g, 7)
	if err != nil {
		t.Fatalf("LineageSet(7) error: %v", err)
	}
	want := []ID{1, 2, 3, 4, 5, 6, 7, 8, 9}
	if got := s.Sorted(); !slices.Equal(got, want) {
		t.Errorf("LineageSet(7) = %v, want %v", got, want)
	}
}
