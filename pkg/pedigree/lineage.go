package pedigree

import (
	"fmt"
	"maps"
	"slices"
)

// Distances maps an individual to every generation distance at which it is
// reached from a query individual. An ID reached along several paths has
// one entry per path, so the slice length is the path multiplicity.
// Entries are appended generation by generation and are therefore
// non-decreasing.
type Distances map[ID][]int

// IDs returns the keys of d in ascending order.
func (d Distances) IDs() []ID {
	return slices.Sorted(maps.Keys(d))
}

// Min returns the shortest recorded distance to id, or -1 if id is absent.
func (d Distances) Min(id ID) int {
	ds, ok := d[id]
	if !ok || len(ds) == 0 {
		return -1
	}
	return slices.Min(ds)
}

// Paths returns the number of distinct paths recorded for id.
func (d Distances) Paths(id ID) int { return len(d[id]) }

// OrderedLineage returns every ancestor of id together with the generation
// distances at which it is reached: 1 for parents, 2 for grandparents, and
// so on. The walk is breadth-first over generations and keeps duplicates
// within a generation, so an ancestor reached through k paths collects k
// entries.
//
// A founder has no ancestors; its lineage is the terminal marker
// {Sentinel: [0]}. Unknown parents are never recorded. Returns
// ErrUnknownIndividual if id was never loaded.
func OrderedLineage(g *Graph, id ID) (Distances, error) {
	i, ok := g.index[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownIndividual, id)
	}

	current := g.parents(i)
	if len(current) == 0 {
		return Distances{Sentinel: {0}}, nil
	}

	lineage := make(Distances)
	for gen := 1; len(current) > 0; gen++ {
		var next []ID
		for _, anc := range current {
			lineage[anc] = append(lineage[anc], gen)
			next = append(next, g.parents(g.index[anc])...)
		}
		current = next
	}
	return lineage, nil
}

// Lineage returns id followed by the full ancestor closure of its father
// and then of its mother, depth first. The result is a list, not a set: an
// ancestor reachable along several paths appears once per path. Callers that
// need membership should use LineageSet.
//
// Returns ErrUnknownIndividual if id was never loaded.
func Lineage(g *Graph, id ID) ([]ID, error) {
	if !g.Has(id) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownIndividual, id)
	}

	var out []ID
	stack := []ID{id}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, top)

		i := g.index[top]
		// Mother first so the father's closure is emitted first.
		if m := g.mothers[i]; m != Sentinel {
			stack = append(stack, m)
		}
		if f := g.fathers[i]; f != Sentinel {
			stack = append(stack, f)
		}
	}
	return out, nil
}

// LineageSet returns the deduplicated Lineage of id, including id itself.
func LineageSet(g *Graph, id ID) (Set, error) {
	l, err := Lineage(g, id)
	if err != nil {
		return nil, err
	}
	return NewSet(l...), nil
}
