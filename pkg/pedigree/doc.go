// Package pedigree models a genealogical pedigree and answers ancestry and
// descent queries over it.
//
// # Overview
//
// A pedigree is a directed acyclic graph in which every individual has at
// most two parent edges, a father and a mother. It is not a tree: shared
// grandparents and consanguineous unions mean the same ancestor can be
// reached along several paths. The traversals in this package record every
// path length rather than just the shortest one.
//
// # Basic Usage
//
// Build a [Graph] from the three columns of a pedigree table. The ID 0 is
// the [Sentinel] for an unknown parent:
//
//	g, err := pedigree.New(
//	    []pedigree.ID{1, 2, 3, 4},
//	    []pedigree.ID{0, 0, 1, 1},
//	    []pedigree.ID{0, 0, 2, 2},
//	)
//
// Query structure with [Graph.ParentsOf], [Graph.OffspringOf] and
// [Graph.Probands]. Construction fails with [ErrMalformedPedigree] for
// duplicate IDs, mismatched columns, unknown parents or cycles; lookups of
// IDs that were never loaded fail with [ErrUnknownIndividual].
//
// # Lineages and Descendants
//
// [OrderedLineage] walks upward generation by generation and returns a
// [Distances] map from each ancestor to the distances of all paths leading
// to it. [OrderedDescendants] is the downward mirror. [Lineage] returns the
// flat ancestor closure of an individual, itself included, with duplicates
// kept for multiply-reachable ancestors.
//
// # Descent Cones
//
// [AllowedInds] intersects the lineages of a group of individuals to find
// their common ancestors, then computes the descent cone of each: the
// descendants of that ancestor that lie on an ancestry path to some member
// of the group. An empty intersection is reported through
// [Cones.NoCommonAncestors], not as an error.
//
// # Concurrency
//
// A Graph is immutable after [New] returns, so all functions in this
// package may run concurrently against the same Graph.
package pedigree
