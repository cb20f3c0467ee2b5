package pedigree

import (
	"fmt"
	"maps"
)

// OrderedDescendants returns every descendant of anc with the generation
// distances along each downward path. The map is seeded with anc itself at
// distance 0; children are at 1, grandchildren at 2, and so on. Like
// OrderedLineage, duplicates within a generation are kept so each path
// contributes one entry.
//
// The Sentinel has no offspring and yields {Sentinel: [0]}. Any other ID
// that was never loaded returns ErrUnknownIndividual.
func OrderedDescendants(g *Graph, anc ID) (Distances, error) {
	if anc != Sentinel && !g.Has(anc) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownIndividual, anc)
	}

	desc := Distances{anc: {0}}
	current := g.OffspringOf(anc)
	for gen := 1; len(current) > 0; gen++ {
		var next []ID
		for _, d := range current {
			desc[d] = append(desc[d], gen)
			next = append(next, g.OffspringOf(d)...)
		}
		current = next
	}
	return desc, nil
}

// Cones is the result of AllowedInds.
type Cones struct {
	// CommonAncestors lists, in ascending order, the individuals found in
	// the lineage of every queried individual.
	CommonAncestors []ID `json:"common_ancestors"`

	// ConeInds maps each common ancestor to its descent cone: those of its
	// descendants that lie on the lineage of at least one queried individual.
	ConeInds map[ID]Set `json:"cone_inds"`

	// IndCones maps each cone member to the common ancestors whose cone
	// contains it. The Sentinel is always present with an empty set.
	IndCones map[ID]Set `json:"ind_cones"`

	// NoCommonAncestors is set when the group shares no ancestry within the
	// loaded pedigree. This is a legitimate outcome, not an error.
	NoCommonAncestors bool `json:"no_common_ancestors"`
}

// AllowedInds finds the common ancestors of ids and the descent cone of each.
//
// Each individual's ancestor set is its deduplicated Lineage, which includes
// the individual itself. The common ancestors are the intersection of those
// sets, minus any queried individual that is not a true ancestor of another
// queried individual (nobody is their own ancestor).
//
// For every common ancestor a, the cone is built by intersecting a's
// descendants with each individual's ancestor set separately and taking the
// union of the results. Intersecting per individual keeps out descendants of
// a that only connect to the group through an unrelated branch.
//
// Returns ErrEmptyGroup for an empty ids and ErrUnknownIndividual if any ID
// was never loaded.
func AllowedInds(g *Graph, ids []ID) (*Cones, error) {
	if len(ids) == 0 {
		return nil, ErrEmptyGroup
	}

	ancestorSets := make([]Set, len(ids))
	for i, id := range ids {
		s, err := LineageSet(g, id)
		if err != nil {
			return nil, err
		}
		ancestorSets[i] = s
	}

	common := maps.Clone(ancestorSets[0])
	for _, s := range ancestorSets[1:] {
		common = common.Intersect(s)
	}
	for _, id := range ids {
		if common.Has(id) && !isAncestorOfAny(id, ids, ancestorSets) {
			delete(common, id)
		}
	}

	res := &Cones{
		CommonAncestors: common.Sorted(),
		ConeInds:        make(map[ID]Set, len(common)),
		IndCones:        map[ID]Set{Sentinel: {}},
	}
	res.NoCommonAncestors = len(res.CommonAncestors) == 0

	for _, anc := range res.CommonAncestors {
		desc, err := OrderedDescendants(g, anc)
		if err != nil {
			return nil, err
		}

		cone := make(Set)
		for _, s := range ancestorSets {
			for d := range desc {
				if s.Has(d) {
					cone.Add(d)
				}
			}
		}
		res.ConeInds[anc] = cone

		for ind := range cone {
			if res.IndCones[ind] == nil {
				res.IndCones[ind] = make(Set)
			}
			res.IndCones[ind].Add(anc)
		}
	}
	return res, nil
}

// isAncestorOfAny reports whether id appears in the ancestor set of another
// queried individual.
func isAncestorOfAny(id ID, ids []ID, sets []Set) bool {
	for i, other := range ids {
		if other != id && sets[i].Has(id) {
			return true
		}
	}
	return false
}

// ConeMembers returns the union of all cones in c, sorted.
func (c *Cones) ConeMembers() []ID {
	all := make(Set)
	for _, cone := range c.ConeInds {
		for id := range cone {
			all.Add(id)
		}
	}
	return all.Sorted()
}

// AncestorsOf returns the common ancestors whose cone contains id, sorted.
func (c *Cones) AncestorsOf(id ID) []ID {
	return c.IndCones[id].Sorted()
}
