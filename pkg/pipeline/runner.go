package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/corriander/channelhop/pkg/cache"
	"github.com/corriander/channelhop/pkg/errors"
	"github.com/corriander/channelhop/pkg/plan"
	"github.com/corriander/channelhop/pkg/routegraph"
	"github.com/corriander/channelhop/pkg/travel"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Logger: logger,
	}
}

// Execute runs the complete index → route → enumerate → combine → filter
// pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Plan, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	// Identical inputs always map to the same plan.
	cacheKey := cache.PlanKey(opts.keyInputs())
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var p Plan
			if err := json.Unmarshal(data, &p); err == nil {
				p.Stats.CacheHit = true
				r.Logger.Info("plan served from cache", "id", p.ID, "options", len(p.Options))
				return &p, nil
			}
		}
	}

	p := &Plan{
		ID:          uuid.NewString(),
		CreatedAt:   time.Now().UTC(),
		Origin:      opts.Origin,
		Destination: opts.Destination,
	}

	// Stage 1: Index
	indexStart := time.Now()
	idx, err := r.BuildIndex(opts)
	if err != nil {
		return nil, err
	}
	p.Stats.Segments = idx.Len()
	p.Stats.IndexTime = time.Since(indexStart)

	r.Logger.Info("indexed transport legs",
		"segments", p.Stats.Segments,
		"duration", p.Stats.IndexTime)

	// Stage 2: Route
	outward, ret, err := r.EnumerateRoutes(opts)
	if err != nil {
		return nil, err
	}
	p.Stats.OutwardPaths = len(outward)
	p.Stats.ReturnPaths = len(ret)

	r.Logger.Info("enumerated routes",
		"outward", len(outward),
		"return", len(ret))

	// Stage 3: Enumerate
	enumStart := time.Now()
	builder := &plan.Builder{Index: idx, MaxItineraries: opts.MaxItineraries}
	outwardItins, err := builder.BuildAll(outward)
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "enumerating outward itineraries")
	}
	returnItins, err := builder.BuildAll(ret)
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "enumerating return itineraries")
	}
	p.Stats.OutwardItineraries = len(outwardItins)
	p.Stats.ReturnItineraries = len(returnItins)
	p.Stats.EnumerateTime = time.Since(enumStart)

	r.Logger.Info("enumerated itineraries",
		"outward", len(outwardItins),
		"return", len(returnItins),
		"duration", p.Stats.EnumerateTime)

	// Stage 4: Combine
	if product := len(outwardItins) * len(returnItins); product > opts.MaxOptions {
		return nil, errors.New(errors.ErrCodeFanoutExceeded,
			"option set of %d exceeds limit of %d", product, opts.MaxOptions)
	}
	options := plan.Combine(outwardItins, returnItins)
	p.Stats.GeneratedOptions = len(options)

	// Stage 5: Filter
	filterStart := time.Now()
	filter := plan.NewFilter(options)
	filter.ApplyAll(opts.Constraints)
	p.Options = filter.Options()
	p.Applied = filter.Applied()
	p.Stats.KeptOptions = len(p.Options)
	p.Stats.FilterTime = time.Since(filterStart)

	r.Logger.Info("filtered options",
		"generated", p.Stats.GeneratedOptions,
		"kept", p.Stats.KeptOptions,
		"duration", p.Stats.FilterTime)

	if data, err := json.Marshal(p); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, TTLPlan)
	}

	return p, nil
}

// BuildIndex groups the transport legs by ordered endpoint pair.
func (r *Runner) BuildIndex(opts Options) (*plan.Index, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	return plan.BuildIndex(opts.Offsets, opts.Roads, opts.Ferries)
}

// EnumerateRoutes returns the outward and return single-crossing paths
// through the port network.
func (r *Runner) EnumerateRoutes(opts Options) (outward, ret []routegraph.Path, err error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, nil, err
	}

	g, err := routegraph.New(opts.Crossings, opts.Origin, opts.Destination)
	if err != nil {
		return nil, nil, err
	}
	outward, err = g.OutwardPaths()
	if err != nil {
		return nil, nil, err
	}
	ret, err = g.ReturnPaths()
	if err != nil {
		return nil, nil, err
	}
	return outward, ret, nil
}

// Itineraries expands a set of paths into concrete itineraries using the
// given index. Exposed for callers that want a single leg rather than a
// full two-leg plan.
func (r *Runner) Itineraries(idx *plan.Index, paths []routegraph.Path, maxItineraries int) ([]travel.Itinerary, error) {
	if maxItineraries == 0 {
		maxItineraries = plan.DefaultMaxItineraries
	}
	builder := &plan.Builder{Index: idx, MaxItineraries: maxItineraries}
	return builder.BuildAll(paths)
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
