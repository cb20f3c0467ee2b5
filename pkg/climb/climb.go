package climb

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sync"

	"github.com/matzehuels/pedsignal/pkg/pedigree"
)

var (
	// ErrEmptyPedigree is returned by [New] for a nil graph or one with no
	// individuals.
	ErrEmptyPedigree = errors.New("empty pedigree")

	// ErrNoSamples is returned by [Climber.InitSampleWeights] before any
	// samples were loaded.
	ErrNoSamples = errors.New("no samples loaded")

	// ErrNotSeeded is returned by [Climber.ClimbStep] before
	// InitSampleWeights has been called.
	ErrNotSeeded = errors.New("sample weights not initialized")

	// ErrGenotypeMismatch is returned by [Climber.LoadSamplesWithGenotypes]
	// when the genotype slice is not parallel to the sample slice.
	ErrGenotypeMismatch = errors.New("genotype count does not match sample count")
)

// State is the lifecycle position of a Climber.
type State int

const (
	// StateUninitialized is the zero State; a Climber returned by New is
	// never in it.
	StateUninitialized State = iota
	// StateLoaded means a graph is bound and the weight vector allocated.
	StateLoaded
	// StateSeeded means sample weights were injected and no step taken.
	StateSeeded
	// StateClimbing means at least one step moved weight upward.
	StateClimbing
	// StateExhausted means the frontier is empty. Further steps are no-ops.
	StateExhausted
)

var stateNames = [...]string{
	StateUninitialized: "uninitialized",
	StateLoaded:        "loaded",
	StateSeeded:        "seeded",
	StateClimbing:      "climbing",
	StateExhausted:     "exhausted",
}

// String returns the lowercase name of s.
func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// StepResult describes the outcome of one ClimbStep.
type StepResult struct {
	// Advanced is true if weight moved to at least one parent.
	Advanced bool `json:"advanced"`
	// Generation is the number of advancing steps taken since seeding.
	Generation int `json:"generation"`
	// Frontier is the size of the frontier after the step.
	Frontier int `json:"frontier"`
}

// Option configures a Climber.
type Option func(*Climber)

// WithAllowed restricts propagation to the individuals in allowed, for
// example the members of a descent cone computed by
// [pedigree.AllowedInds]. Parents outside the set receive no weight and do
// not join the frontier. A nil set means no restriction.
func WithAllowed(allowed pedigree.Set) Option {
	return func(c *Climber) { c.allowed = allowed }
}

// Climber propagates weight from a set of samples toward their ancestors,
// one generation per step. Each frontier member adds the weight it received
// on the previous step to each known parent; weight is never split between
// the two parents, so an ancestor reached along several lineages
// accumulates the contribution of every one of them exactly once. After a
// full climb from unit sample weights, an ancestor's weight is the number
// of paths leading to it from the samples.
//
// Climber owns its weight vector and frontier. Mutating methods hold an
// internal lock so concurrent callers are serialized, but the intended use
// is a single driver advancing one step at a time.
type Climber struct {
	mu sync.Mutex

	g         *pedigree.Graph
	allowed   pedigree.Set
	weights   []float64
	genotypes []int
	samples   []pedigree.ID
	frontier  []pedigree.ID
	// pending holds, per graph index, the weight a frontier member
	// received on the last step and has not yet passed on.
	pending []float64
	state     State
	gen       int
}

// New binds g to a fresh Climber with every weight at zero.
// Returns ErrEmptyPedigree if g is nil or holds no individuals.
func New(g *pedigree.Graph, opts ...Option) (*Climber, error) {
	if g == nil || g.Len() == 0 {
		return nil, ErrEmptyPedigree
	}
	c := &Climber{
		g:         g,
		weights:   make([]float64, g.Len()),
		genotypes: make([]int, g.Len()),
		pending:   make([]float64, g.Len()),
		state:     StateLoaded,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Graph returns the pedigree the climber is bound to.
func (c *Climber) Graph() *pedigree.Graph { return c.g }

// LoadSamples records ids as the sample set. Duplicates are dropped,
// keeping first-seen order. Returns an error wrapping
// pedigree.ErrUnknownIndividual, leaving the climber untouched, if any ID
// was never loaded.
func (c *Climber) LoadSamples(ids []pedigree.ID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadSamples(ids)
}

// LoadSamplesWithGenotypes is LoadSamples with a genotype recorded per
// sample. genotypes must be parallel to ids.
func (c *Climber) LoadSamplesWithGenotypes(ids []pedigree.ID, genotypes []int) error {
	if len(ids) != len(genotypes) {
		return fmt.Errorf("%w: %d samples, %d genotypes", ErrGenotypeMismatch, len(ids), len(genotypes))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.loadSamples(ids); err != nil {
		return err
	}
	for i, id := range ids {
		idx, _ := c.g.IndexOf(id)
		c.genotypes[idx] = genotypes[i]
	}
	return nil
}

func (c *Climber) loadSamples(ids []pedigree.ID) error {
	seen := make(pedigree.Set, len(ids))
	samples := make([]pedigree.ID, 0, len(ids))
	for _, id := range ids {
		if !c.g.Has(id) {
			return fmt.Errorf("sample %d: %w", id, pedigree.ErrUnknownIndividual)
		}
		if seen.Has(id) {
			continue
		}
		seen.Add(id)
		samples = append(samples, id)
	}
	c.samples = samples
	return nil
}

// Samples returns a copy of the loaded sample IDs.
func (c *Climber) Samples() []pedigree.ID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.samples)
}

// InitSampleWeights resets every weight to zero, sets each sample's weight
// to 1 and makes the sample set the frontier. Calling it again discards
// everything accumulated by earlier steps and returns to StateSeeded.
// Returns ErrNoSamples if LoadSamples has not been called.
func (c *Climber) InitSampleWeights() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.samples == nil {
		return ErrNoSamples
	}
	clear(c.weights)
	clear(c.pending)
	for _, s := range c.samples {
		idx, _ := c.g.IndexOf(s)
		c.weights[idx] = 1
		c.pending[idx] = 1
	}
	c.frontier = slices.Clone(c.samples)
	c.gen = 0
	c.state = StateSeeded
	return nil
}

// ClimbStep pushes the weight every frontier member received on the
// previous step (1 for a freshly seeded sample) to each of its known
// parents and replaces the frontier with the distinct parents touched.
// An individual reached again at a later generation re-enters the frontier
// carrying only the new weight, so no path is counted twice. When no parent is touched the climber becomes StateExhausted;
// stepping an exhausted climber changes nothing and is not an error.
//
// Returns ErrNotSeeded if InitSampleWeights has not been called.
func (c *Climber) ClimbStep() (StepResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateUninitialized, StateLoaded:
		return StepResult{}, ErrNotSeeded
	case StateExhausted:
		return StepResult{Generation: c.gen}, nil
	}

	received := make([]float64, len(c.weights))
	touched := make(pedigree.Set)
	var next []pedigree.ID

	for _, id := range c.frontier {
		idx, _ := c.g.IndexOf(id)
		w := c.pending[idx]
		f, m, _ := c.g.ParentsOf(id)
		for _, p := range [2]pedigree.ID{f, m} {
			if p == pedigree.Sentinel || (c.allowed != nil && !c.allowed.Has(p)) {
				continue
			}
			pidx, _ := c.g.IndexOf(p)
			received[pidx] += w
			if !touched.Has(p) {
				touched.Add(p)
				next = append(next, p)
			}
		}
	}

	if len(next) == 0 {
		c.frontier = nil
		clear(c.pending)
		c.state = StateExhausted
		return StepResult{Generation: c.gen}, nil
	}

	for i, w := range received {
		c.weights[i] += w
	}
	c.pending = received
	c.frontier = next
	c.gen++
	c.state = StateClimbing
	return StepResult{Advanced: true, Generation: c.gen, Frontier: len(next)}, nil
}

// Run steps until the climber is exhausted or maxSteps advancing steps
// have been taken. A maxSteps of zero or less means no limit. It returns
// the result of every advancing step.
func (c *Climber) Run(maxSteps int) ([]StepResult, error) {
	var out []StepResult
	for maxSteps <= 0 || len(out) < maxSteps {
		res, err := c.ClimbStep()
		if err != nil {
			return out, err
		}
		if !res.Advanced {
			break
		}
		out = append(out, res)
	}
	return out, nil
}

// WeightOf returns the current weight of id. Individuals never reached
// have weight 0. Returns an error wrapping pedigree.ErrUnknownIndividual
// if id was never loaded.
func (c *Climber) WeightOf(id pedigree.ID) (float64, error) {
	idx, ok := c.g.IndexOf(id)
	if !ok {
		return 0, fmt.Errorf("%w: %d", pedigree.ErrUnknownIndividual, id)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.weights[idx], nil
}

// Weights returns a copy of the weight vector, indexed like
// Graph().Individuals().
func (c *Climber) Weights() []float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.weights)
}

// Frontier returns a copy of the individuals that will propagate on the
// next step.
func (c *Climber) Frontier() []pedigree.ID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.frontier)
}

// State returns the current lifecycle state.
func (c *Climber) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Generation returns the number of advancing steps since the last seeding.
func (c *Climber) Generation() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// Genotype returns the genotype recorded for id by
// LoadSamplesWithGenotypes, or 0.
func (c *Climber) Genotype(id pedigree.ID) (int, error) {
	idx, ok := c.g.IndexOf(id)
	if !ok {
		return 0, fmt.Errorf("%w: %d", pedigree.ErrUnknownIndividual, id)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.genotypes[idx], nil
}

// SetAllWeights sets every weight to v. The frontier and state are left
// as they are.
func (c *Climber) SetAllWeights(v float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.weights {
		c.weights[i] = v
	}
}

// AddAncestorWeight adds delta to id and delta/2^k to every ancestor k
// generations above it, once per path. It works outside the step cycle
// and does not touch the frontier.
func (c *Climber) AddAncestorWeight(id pedigree.ID, delta float64) error {
	idx, ok := c.g.IndexOf(id)
	if !ok {
		return fmt.Errorf("%w: %d", pedigree.ErrUnknownIndividual, id)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.addAncestorWeight(idx, id, delta)
	return nil
}

func (c *Climber) addAncestorWeight(idx int, id pedigree.ID, delta float64) {
	c.weights[idx] += delta
	f, m, _ := c.g.ParentsOf(id)
	for _, p := range [2]pedigree.ID{f, m} {
		if p == pedigree.Sentinel {
			continue
		}
		pidx, _ := c.g.IndexOf(p)
		c.addAncestorWeight(pidx, p, delta/2)
	}
}

// InheritedWeight returns the weight of id plus the weights of its
// ancestors, each discounted by 2^-k for an ancestor k generations up and
// counted once per path. The discount is the same halving per generation
// that AddAncestorWeight applies, so a parent contributes half its weight.
func (c *Climber) InheritedWeight(id pedigree.ID) (float64, error) {
	lin, err := pedigree.OrderedLineage(c.g, id)
	if err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	idx, _ := c.g.IndexOf(id)
	total := c.weights[idx]
	for anc, dists := range lin {
		if anc == pedigree.Sentinel {
			continue
		}
		aidx, _ := c.g.IndexOf(anc)
		for _, k := range dists {
			total += math.Ldexp(c.weights[aidx], -k)
		}
	}
	return total, nil
}
