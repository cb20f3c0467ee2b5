// Package pipeline runs pedigree analyses for the CLI and the HTTP API.
//
// A [Runner] wraps the core packages with the concerns both entry points
// share: loading a pedigree file, caching cone and climb results, emitting
// observability hooks, logging, and persisting reports.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	ped, err := runner.Load(ctx, "pedEx2.txt")
//	if err != nil {
//	    return err
//	}
//
//	cones, err := runner.Cones(ctx, ped, pipeline.ConesOptions{IDs: ids})
//
//	res, err := runner.Climb(ctx, ped, pipeline.ClimbOptions{
//	    Probands: 10,
//	    MaxSteps: 12,
//	})
//
// Results are plain structs with JSON tags; the same encoding is used for
// the cache, the report store and API responses.
package pipeline

import (
	"cmp"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pedsignal/pkg/cache"
	"github.com/matzehuels/pedsignal/pkg/climb"
	"github.com/matzehuels/pedsignal/pkg/errors"
	"github.com/matzehuels/pedsignal/pkg/pedigree"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultProbands is how many probands become samples when a climb is
	// requested without explicit samples.
	DefaultProbands = 10

	// MaxGroupSize bounds cone queries and sample sets accepted from
	// callers.
	MaxGroupSize = 10000
)

// =============================================================================
// Pedigree
// =============================================================================

// Pedigree is a loaded graph together with its content hash.
type Pedigree struct {
	Graph *pedigree.Graph
	Hash  string
	Path  string
}

// NewPedigree fingerprints g.
func NewPedigree(g *pedigree.Graph) *Pedigree {
	return &Pedigree{
		Graph: g,
		Hash:  cache.PedigreeHash(g.Individuals(), g.Fathers(), g.Mothers()),
	}
}

// =============================================================================
// Options
// =============================================================================

// ConesOptions configures a cone query.
type ConesOptions struct {
	IDs     []pedigree.ID `json:"ids"`
	Refresh bool          `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`
}

// Validate checks the group size and IDs.
func (o *ConesOptions) Validate() error {
	if err := errors.ValidateIndividualIDs(o.IDs); err != nil {
		return err
	}
	if len(o.IDs) > MaxGroupSize {
		return errors.New(errors.ErrCodeInvalidInput, "group too large: %d individuals (max %d)", len(o.IDs), MaxGroupSize)
	}
	return nil
}

// ClimbOptions configures a climb run.
type ClimbOptions struct {
	// Samples seed the climb. When empty, the first Probands probands in
	// load order are used.
	Samples  []pedigree.ID `json:"samples,omitempty"`
	Probands int           `json:"probands,omitempty"`

	// MaxSteps caps advancing steps; 0 climbs until exhaustion.
	MaxSteps int `json:"max_steps,omitempty"`

	// RestrictCone confines propagation to the descent cones of the
	// samples' common ancestors.
	RestrictCone bool `json:"restrict_cone,omitempty"`

	// Inherited adds each reached individual's inherited weight to the
	// result.
	Inherited bool `json:"inherited,omitempty"`

	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`
}

// Validate checks numeric bounds and explicit sample IDs.
func (o *ClimbOptions) Validate() error {
	if o.MaxSteps < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "max_steps must be >= 0, got %d", o.MaxSteps)
	}
	if o.Probands < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "probands must be >= 0, got %d", o.Probands)
	}
	if len(o.Samples) > MaxGroupSize {
		return errors.New(errors.ErrCodeInvalidInput, "too many samples: %d (max %d)", len(o.Samples), MaxGroupSize)
	}
	if len(o.Samples) > 0 {
		return errors.ValidateIndividualIDs(o.Samples)
	}
	return nil
}

// resolveSamples returns the explicit samples, or the leading probands.
func (o *ClimbOptions) resolveSamples(g *pedigree.Graph) ([]pedigree.ID, error) {
	if len(o.Samples) > 0 {
		return o.Samples, nil
	}
	n := cmp.Or(o.Probands, DefaultProbands)
	probands := g.Probands()
	if len(probands) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "pedigree has no probands to sample")
	}
	return probands[:min(n, len(probands))], nil
}

// =============================================================================
// Results
// =============================================================================

// ConesResult is the outcome of a cone query.
type ConesResult struct {
	PedigreeHash string          `json:"pedigree_hash"`
	Group        []pedigree.ID   `json:"group"`
	Cones        *pedigree.Cones `json:"cones"`
}

// ClimbResult is the outcome of a climb run.
type ClimbResult struct {
	PedigreeHash string        `json:"pedigree_hash"`
	Samples      []pedigree.ID `json:"samples"`
	MaxSteps     int           `json:"max_steps"`
	// ConeRestricted is false when RestrictCone was requested but the
	// samples share no common ancestor, so the climb ran unrestricted.
	ConeRestricted bool               `json:"cone_restricted"`
	State          string             `json:"state"`
	Generations    int                `json:"generations"`
	Trajectory     []climb.StepResult `json:"trajectory"`
	// Weights lists every individual with non-zero weight, heaviest first.
	Weights  []WeightEntry `json:"weights"`
	Duration time.Duration `json:"duration_ns"`
}

// WeightEntry is one individual's final weight.
type WeightEntry struct {
	ID        pedigree.ID `json:"id"`
	Weight    float64     `json:"weight"`
	Founder   bool        `json:"founder,omitempty"`
	Inherited *float64    `json:"inherited,omitempty"`
}

// Top returns the n heaviest entries, or all of them if n <= 0.
func (r *ClimbResult) Top(n int) []WeightEntry {
	if n <= 0 || n >= len(r.Weights) {
		return r.Weights
	}
	return r.Weights[:n]
}

// WeightOf returns the final weight of id, or 0 if it was never reached.
func (r *ClimbResult) WeightOf(id pedigree.ID) float64 {
	for _, e := range r.Weights {
		if e.ID == id {
			return e.Weight
		}
	}
	return 0
}

func sortWeights(ws []WeightEntry) {
	slices.SortFunc(ws, func(a, b WeightEntry) int {
		if c := cmp.Compare(b.Weight, a.Weight); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
