package pedigree

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrMalformedPedigree is returned by [New] when the input arrays violate
	// a structural rule: mismatched lengths, duplicate or non-positive
	// individual IDs, unknown or self-referencing parents, or a cycle in the
	// parent relation. The wrapping error names the offending individual.
	ErrMalformedPedigree = errors.New("malformed pedigree")

	// ErrUnknownIndividual is returned by lookups for an ID that was never
	// loaded into the graph.
	ErrUnknownIndividual = errors.New("unknown individual")

	// ErrEmptyGroup is returned by [AllowedInds] when called without any
	// individuals.
	ErrEmptyGroup = errors.New("empty individual group")
)

// ID identifies an individual. Real individuals have IDs greater than zero;
// the zero value is the [Sentinel].
type ID = int64

// Sentinel marks a missing parent. It is never a loaded individual.
const Sentinel ID = 0

// Graph is an immutable pedigree: every individual has at most one father
// and one mother, and following parent edges never leads back to the start.
//
// The zero value is not usable - use New to build a Graph. A Graph is safe
// for concurrent use by multiple readers because nothing mutates it after
// construction.
type Graph struct {
	inds      []ID
	fathers   []ID
	mothers   []ID
	index     map[ID]int
	offspring map[ID][]ID
	probands  []ID
	isParent  map[ID]bool
}

// New builds a Graph from three parallel arrays as read from a pedigree
// table: individual, father and mother. A parent of [Sentinel] means the
// parent is unknown.
//
// All returned errors wrap ErrMalformedPedigree. New rejects:
//   - columns of different lengths
//   - an individual ID of zero or below, or one listed twice
//   - an individual that is its own parent, or has one ID as both parents
//   - a non-zero parent that is not itself listed as an individual
//   - a cycle in the parent relation
//
// Cycle detection runs once here in O(N) so traversals never need to guard
// against infinite recursion.
func New(ids, fathers, mothers []ID) (*Graph, error) {
	if len(ids) != len(fathers) || len(ids) != len(mothers) {
		return nil, fmt.Errorf("%w: column lengths differ (ind=%d, father=%d, mother=%d)",
			ErrMalformedPedigree, len(ids), len(fathers), len(mothers))
	}

	g := &Graph{
		inds:      slices.Clone(ids),
		fathers:   slices.Clone(fathers),
		mothers:   slices.Clone(mothers),
		index:     make(map[ID]int, len(ids)),
		offspring: make(map[ID][]ID),
		isParent:  make(map[ID]bool),
	}

	for i, id := range ids {
		if id <= Sentinel {
			return nil, fmt.Errorf("%w: row %d: individual ID must be positive, got %d", ErrMalformedPedigree, i, id)
		}
		if _, dup := g.index[id]; dup {
			return nil, fmt.Errorf("%w: duplicate individual %d", ErrMalformedPedigree, id)
		}
		g.index[id] = i
	}

	for i, id := range ids {
		f, m := fathers[i], mothers[i]
		if err := g.checkParent(id, f, "father"); err != nil {
			return nil, err
		}
		if err := g.checkParent(id, m, "mother"); err != nil {
			return nil, err
		}
		if f != Sentinel && f == m {
			return nil, fmt.Errorf("%w: individual %d has %d as both father and mother", ErrMalformedPedigree, id, f)
		}
		if f != Sentinel {
			g.offspring[f] = append(g.offspring[f], id)
			g.isParent[f] = true
		}
		if m != Sentinel {
			g.offspring[m] = append(g.offspring[m], id)
			g.isParent[m] = true
		}
	}

	for _, id := range ids {
		if !g.isParent[id] {
			g.probands = append(g.probands, id)
		}
	}

	if err := g.detectCycles(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Graph) checkParent(child, parent ID, role string) error {
	if parent == Sentinel {
		return nil
	}
	if parent == child {
		return fmt.Errorf("%w: individual %d is its own %s", ErrMalformedPedigree, child, role)
	}
	if _, ok := g.index[parent]; !ok {
		return fmt.Errorf("%w: %s %d of individual %d is not listed", ErrMalformedPedigree, role, parent, child)
	}
	return nil
}

// detectCycles walks parent edges with white/gray/black coloring. A gray
// parent means the walk returned to an individual still on the stack.
func (g *Graph) detectCycles() error {
	const (
		white = iota
		gray
		black
	)

	color := make([]int, len(g.inds))
	var cycleAt ID

	var dfs func(i int) bool
	dfs = func(i int) bool {
		color[i] = gray
		for _, p := range [2]ID{g.fathers[i], g.mothers[i]} {
			if p == Sentinel {
				continue
			}
			j := g.index[p]
			switch color[j] {
			case white:
				if dfs(j) {
					return true
				}
			case gray:
				cycleAt = p
				return true
			}
		}
		color[i] = black
		return false
	}

	for i := range g.inds {
		if color[i] == white && dfs(i) {
			return fmt.Errorf("%w: individual %d is its own ancestor", ErrMalformedPedigree, cycleAt)
		}
	}
	return nil
}

// Len returns the number of loaded individuals.
func (g *Graph) Len() int { return len(g.inds) }

// Individuals returns a copy of the individual IDs in load order. The
// position of an ID in this slice is its canonical index (see IndexOf).
func (g *Graph) Individuals() []ID { return slices.Clone(g.inds) }

// Fathers returns a copy of the father column, parallel to Individuals.
func (g *Graph) Fathers() []ID { return slices.Clone(g.fathers) }

// Mothers returns a copy of the mother column, parallel to Individuals.
func (g *Graph) Mothers() []ID { return slices.Clone(g.mothers) }

// Has reports whether id is a loaded individual. The sentinel never is.
func (g *Graph) Has(id ID) bool {
	_, ok := g.index[id]
	return ok
}

// IndexOf returns the load-order position of id and true, or -1 and false
// if id was never loaded.
func (g *Graph) IndexOf(id ID) (int, bool) {
	i, ok := g.index[id]
	if !ok {
		return -1, false
	}
	return i, true
}

// ParentsOf returns the father and mother of id, either of which may be the
// Sentinel. Returns ErrUnknownIndividual if id was never loaded.
func (g *Graph) ParentsOf(id ID) (father, mother ID, err error) {
	i, ok := g.index[id]
	if !ok {
		return Sentinel, Sentinel, fmt.Errorf("%w: %d", ErrUnknownIndividual, id)
	}
	return g.fathers[i], g.mothers[i], nil
}

// OffspringOf returns the children of id in load order. An individual with
// no children, an unknown ID and the Sentinel all yield nil - a childless
// lookup is a valid answer, not an error. The returned slice should not be
// modified.
func (g *Graph) OffspringOf(id ID) []ID {
	if id == Sentinel {
		return nil
	}
	return g.offspring[id]
}

// Probands returns the individuals never listed as anyone's parent, in load
// order.
func (g *Graph) Probands() []ID { return slices.Clone(g.probands) }

// IsProband reports whether id is loaded and has no offspring.
func (g *Graph) IsProband(id ID) bool { return g.Has(id) && !g.isParent[id] }

// IsFounder reports whether id is loaded and both of its parents are
// unknown.
func (g *Graph) IsFounder(id ID) bool {
	i, ok := g.index[id]
	return ok && g.fathers[i] == Sentinel && g.mothers[i] == Sentinel
}

// Founders returns the individuals with no recorded parents, in load order.
func (g *Graph) Founders() []ID {
	var out []ID
	for i, id := range g.inds {
		if g.fathers[i] == Sentinel && g.mothers[i] == Sentinel {
			out = append(out, id)
		}
	}
	return out
}

// parents returns the non-sentinel parents of the individual at index i,
// father first.
func (g *Graph) parents(i int) []ID {
	out := make([]ID, 0, 2)
	if f := g.fathers[i]; f != Sentinel {
		out = append(out, f)
	}
	if m := g.mothers[i]; m != Sentinel {
		out = append(out, m)
	}
	return out
}
