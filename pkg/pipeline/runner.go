package pipeline

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pedsignal/pkg/cache"
	"github.com/matzehuels/pedsignal/pkg/climb"
	"github.com/matzehuels/pedsignal/pkg/errors"
	pio "github.com/matzehuels/pedsignal/pkg/io"
	"github.com/matzehuels/pedsignal/pkg/observability"
	"github.com/matzehuels/pedsignal/pkg/pedigree"
	"github.com/matzehuels/pedsignal/pkg/store"
)

// Runner executes analyses with caching.
//
// The Runner holds no per-run state. Multiple goroutines can share one
// Runner; each call gets its own Climber.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Store  store.Store
	Logger *log.Logger
	TTL    time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// A nil keyer uses DefaultKeyer, a nil cache disables caching.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// WithStore attaches a report store and returns r.
func (r *Runner) WithStore(s store.Store) *Runner {
	r.Store = s
	return r
}

// Load reads and validates the pedigree file at path.
func (r *Runner) Load(ctx context.Context, path string) (*Pedigree, error) {
	start := time.Now()
	g, err := pio.ImportPedigree(path)
	observability.Analysis().OnPedigreeLoaded(ctx, lenOf(g), time.Since(start), err)
	if err != nil {
		return nil, err
	}

	p := NewPedigree(g)
	p.Path = path
	r.Logger.Info("loaded pedigree",
		"path", path,
		"individuals", g.Len(),
		"probands", len(g.Probands()),
		"duration", time.Since(start))
	return p, nil
}

func lenOf(g *pedigree.Graph) int {
	if g == nil {
		return 0
	}
	return g.Len()
}

// =============================================================================
// Cones
// =============================================================================

// ConesWithCacheInfo resolves the common ancestors and descent cones of
// opts.IDs and reports whether the result came from the cache.
func (r *Runner) ConesWithCacheInfo(ctx context.Context, p *Pedigree, opts ConesOptions) (*ConesResult, bool, error) {
	if err := opts.Validate(); err != nil {
		return nil, false, err
	}
	logger := r.logger(opts.Logger)
	key := r.Keyer.ConesKey(p.Hash, opts.IDs)

	var res ConesResult
	if !opts.Refresh && r.cached(ctx, "cones", key, &res) {
		logger.Debug("cones cache hit", "group", len(opts.IDs))
		return &res, true, nil
	}

	start := time.Now()
	observability.Analysis().OnConesStart(ctx, len(opts.IDs))
	cones, err := pedigree.AllowedInds(p.Graph, opts.IDs)
	n := 0
	if cones != nil {
		n = len(cones.CommonAncestors)
	}
	observability.Analysis().OnConesComplete(ctx, n, time.Since(start), err)
	if err != nil {
		return nil, false, fmt.Errorf("cones: %w", errors.FromCore(err))
	}

	if cones.NoCommonAncestors {
		logger.Warn("no common ancestors in pedigree", "group", opts.IDs)
	}
	logger.Info("resolved cones",
		"group", len(opts.IDs),
		"common_ancestors", n,
		"members", len(cones.ConeMembers()),
		"duration", time.Since(start))

	res = ConesResult{PedigreeHash: p.Hash, Group: opts.IDs, Cones: cones}
	r.put(ctx, "cones", key, res)
	return &res, false, nil
}

// Cones calls ConesWithCacheInfo and discards the cache hit info.
func (r *Runner) Cones(ctx context.Context, p *Pedigree, opts ConesOptions) (*ConesResult, error) {
	res, _, err := r.ConesWithCacheInfo(ctx, p, opts)
	return res, err
}

// =============================================================================
// Climb
// =============================================================================

// ClimbWithCacheInfo seeds the samples with weight 1 and climbs until the
// frontier is empty, opts.MaxSteps advancing steps were taken, or ctx is
// done.
func (r *Runner) ClimbWithCacheInfo(ctx context.Context, p *Pedigree, opts ClimbOptions) (*ClimbResult, bool, error) {
	if err := opts.Validate(); err != nil {
		return nil, false, err
	}
	logger := r.logger(opts.Logger)

	samples, err := opts.resolveSamples(p.Graph)
	if err != nil {
		return nil, false, err
	}
	key := r.Keyer.ClimbKey(p.Hash, cache.ClimbKeyOpts{
		Samples:      samples,
		MaxSteps:     opts.MaxSteps,
		RestrictCone: opts.RestrictCone,
		Inherited:    opts.Inherited,
	})

	var res ClimbResult
	if !opts.Refresh && r.cached(ctx, "climb", key, &res) {
		logger.Debug("climb cache hit", "samples", len(samples))
		return &res, true, nil
	}

	start := time.Now()
	observability.Climb().OnClimbStart(ctx, len(samples))
	out, err := r.climb(ctx, p, samples, opts, logger)
	gens := 0
	if out != nil {
		gens = out.Generations
	}
	observability.Climb().OnClimbComplete(ctx, gens, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	out.Duration = time.Since(start)
	logger.Info("climb finished",
		"samples", len(samples),
		"generations", out.Generations,
		"state", out.State,
		"reached", len(out.Weights),
		"duration", out.Duration)

	r.put(ctx, "climb", key, out)
	return out, false, nil
}

// Climb calls ClimbWithCacheInfo and discards the cache hit info.
func (r *Runner) Climb(ctx context.Context, p *Pedigree, opts ClimbOptions) (*ClimbResult, error) {
	res, _, err := r.ClimbWithCacheInfo(ctx, p, opts)
	return res, err
}

func (r *Runner) climb(ctx context.Context, p *Pedigree, samples []pedigree.ID, opts ClimbOptions, logger *log.Logger) (*ClimbResult, error) {
	g := p.Graph
	res := &ClimbResult{
		PedigreeHash: p.Hash,
		MaxSteps:     opts.MaxSteps,
		Trajectory:   []climb.StepResult{},
	}

	var copts []climb.Option
	if opts.RestrictCone {
		cones, err := pedigree.AllowedInds(g, samples)
		if err != nil {
			return nil, fmt.Errorf("climb: %w", errors.FromCore(err))
		}
		if cones.NoCommonAncestors {
			logger.Warn("samples share no common ancestor; climbing without cone restriction")
		} else {
			allowed := pedigree.NewSet(cones.ConeMembers()...)
			copts = append(copts, climb.WithAllowed(allowed))
			res.ConeRestricted = true
			logger.Debug("restricting climb to cones", "members", allowed.Len())
		}
	}

	c, err := climb.New(g, copts...)
	if err != nil {
		return nil, fmt.Errorf("climb: %w", errors.FromCore(err))
	}
	if err := c.LoadSamples(samples); err != nil {
		return nil, fmt.Errorf("climb: %w", errors.FromCore(err))
	}
	if err := c.InitSampleWeights(); err != nil {
		return nil, fmt.Errorf("climb: %w", errors.FromCore(err))
	}
	res.Samples = c.Samples()

	for opts.MaxSteps <= 0 || len(res.Trajectory) < opts.MaxSteps {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeTimeout, err, "climb interrupted after %d generations", len(res.Trajectory))
		}
		step, err := c.ClimbStep()
		if err != nil {
			return nil, fmt.Errorf("climb: %w", errors.FromCore(err))
		}
		if !step.Advanced {
			break
		}
		res.Trajectory = append(res.Trajectory, step)
		observability.Climb().OnClimbStep(ctx, step.Generation, step.Frontier)
		logger.Debug("climbed", "generation", step.Generation, "frontier", step.Frontier)
	}

	res.State = c.State().String()
	res.Generations = c.Generation()

	ids := g.Individuals()
	for i, w := range c.Weights() {
		if w == 0 {
			continue
		}
		e := WeightEntry{ID: ids[i], Weight: w, Founder: g.IsFounder(ids[i])}
		if opts.Inherited {
			iw, err := c.InheritedWeight(ids[i])
			if err != nil {
				return nil, fmt.Errorf("climb: %w", errors.FromCore(err))
			}
			e.Inherited = &iw
		}
		res.Weights = append(res.Weights, e)
	}
	sortWeights(res.Weights)
	return res, nil
}

// =============================================================================
// Reports
// =============================================================================

// Save stores body as a report of the given kind. It fails with
// UNSUPPORTED when no store is attached.
func (r *Runner) Save(ctx context.Context, kind string, p *Pedigree, body any) (*store.Report, error) {
	if r.Store == nil {
		return nil, errors.New(errors.ErrCodeUnsupported, "no report store configured")
	}
	rep, err := store.NewReport(kind, p.Hash, body)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode report")
	}
	if err := r.Store.Save(ctx, rep); err != nil {
		return nil, errors.Wrap(errors.ErrCodeBackend, err, "save report")
	}
	r.Logger.Info("saved report", "id", rep.ID, "kind", kind)
	return rep, nil
}

// Report fetches a stored report by ID.
func (r *Runner) Report(ctx context.Context, id string) (*store.Report, error) {
	if r.Store == nil {
		return nil, errors.New(errors.ErrCodeUnsupported, "no report store configured")
	}
	rep, err := r.Store.Get(ctx, id)
	if stderrors.Is(err, store.ErrNotFound) {
		return nil, errors.Wrap(errors.ErrCodeNotFound, err, "report %s", id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeBackend, err, "get report %s", id)
	}
	return rep, nil
}

// Close releases the cache and the store.
func (r *Runner) Close(ctx context.Context) error {
	var err error
	if r.Cache != nil {
		err = r.Cache.Close()
	}
	if r.Store != nil {
		if serr := r.Store.Close(ctx); err == nil {
			err = serr
		}
	}
	return err
}

// =============================================================================
// Helpers
// =============================================================================

func (r *Runner) logger(l *log.Logger) *log.Logger {
	if l != nil {
		return l
	}
	return r.Logger
}

// cached decodes the entry under key into v. Backend and decode failures
// are treated as misses.
func (r *Runner) cached(ctx context.Context, kind, key string, v any) bool {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "kind", kind, "err", err)
	}
	if err != nil || !hit || json.Unmarshal(data, v) != nil {
		observability.Cache().OnCacheMiss(ctx, kind)
		return false
	}
	observability.Cache().OnCacheHit(ctx, kind)
	return true
}

func (r *Runner) put(ctx context.Context, kind, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		r.Logger.Warn("cache encode failed", "kind", kind, "err", err)
		return
	}
	ttl := r.TTL
	if ttl == 0 {
		ttl = cache.TTLClimb
		if kind == "cones" {
			ttl = cache.TTLCones
		}
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "kind", kind, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, kind, len(data))
}
