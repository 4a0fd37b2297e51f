package engine

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/pedalstack/pedalstack/pkg/board"
	"github.com/pedalstack/pedalstack/pkg/cache"
	"github.com/pedalstack/pedalstack/pkg/conflict"
	"github.com/pedalstack/pedalstack/pkg/errors"
	"github.com/pedalstack/pedalstack/pkg/observability"
	"github.com/pedalstack/pedalstack/pkg/place"
	"github.com/pedalstack/pedalstack/pkg/route"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
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
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// problemHash is the serializable view of a run's inputs used for the cache
// key. The chain is flattened to its defining fields so two equal chains
// hash identically.
type problemHash struct {
	Board      *board.Board               `json:"board"`
	Amp        *board.Amp                 `json:"amp,omitempty"`
	Instances  []*board.PedalInstance     `json:"instances"`
	Order      []string                   `json:"order"`
	FourCable  bool                       `json:"four_cable"`
	LoopBefore string                     `json:"loop_before,omitempty"`
	Existing   map[string]board.Placement `json:"existing,omitempty"`
	Place      place.Options              `json:"place"`
	Route      route.Options              `json:"route"`
	MaxRetries int                        `json:"max_retries"`
}

// hashProblem computes the cache key hash for a problem and options.
func hashProblem(p Problem, opts Options) (string, error) {
	h := problemHash{
		Board:      p.Board,
		Amp:        p.Amp,
		Instances:  p.Instances,
		Existing:   p.Existing,
		Place:      opts.Place,
		Route:      opts.Route,
		MaxRetries: opts.MaxRetries,
	}
	if p.Chain != nil {
		h.Order = p.Chain.Order()
		h.FourCable = p.Chain.FourCable()
		h.LoopBefore = p.Chain.LoopBefore()
	}
	return cache.HashJSON(h)
}

// Execute runs the complete place → route → detect pipeline with caching.
func (r *Runner) Execute(ctx context.Context, p Problem, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if p.Chain == nil {
		return nil, errors.New(errors.ErrCodeInvalidChain, "optimize requires a signal chain")
	}

	hash, err := hashProblem(p, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "hashing optimize inputs")
	}
	key := r.Keyer.ResultKey(hash)

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var cached Result
			if err := json.Unmarshal(data, &cached); err == nil {
				observability.Cache().OnCacheHit(ctx, "result")
				cached.CacheInfo = CacheInfo{Hit: true, Key: hash}
				opts.Logger.Debug("optimize cache hit", "key", hash[:12])
				return &cached, nil
			}
			// Corrupt entry: fall through and recompute.
			_ = r.Cache.Delete(ctx, key)
		}
		observability.Cache().OnCacheMiss(ctx, "result")
	}

	result, err := r.run(ctx, p, opts)
	if err != nil {
		return nil, err
	}
	result.CacheInfo = CacheInfo{Key: hash}

	if data, err := json.Marshal(result); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.TTLResult); err == nil {
			observability.Cache().OnCacheSet(ctx, "result", len(data))
		} else {
			opts.Logger.Warn("caching optimize result failed", "error", err)
		}
	}
	return result, nil
}

// attempt is the outcome of one place → route → detect pass.
type attempt struct {
	layout    board.Layout
	routes    []route.Route
	conflicts []conflict.Conflict
	cable     float64
}

// better reports whether a beats b: fewer conflicts first, then less cable.
func (a *attempt) better(b *attempt) bool {
	if b == nil {
		return true
	}
	if len(a.conflicts) != len(b.conflicts) {
		return len(a.conflicts) < len(b.conflicts)
	}
	return a.cable < b.cable
}

// run executes the staged pipeline with the bounded retry loop.
func (r *Runner) run(ctx context.Context, p Problem, opts Options) (*Result, error) {
	logger := opts.Logger
	result := &Result{}

	existing := p.Existing.Clone()
	popts := opts.Place
	var best *attempt

	for pass := 0; ; pass++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// Stage 1: Place
		placeStart := time.Now()
		observability.Engine().OnPlaceStart(ctx, len(p.Instances))
		layout, err := place.Place(p.Board, p.Instances, p.Chain, p.Amp, existing, popts)
		observability.Engine().OnPlaceComplete(ctx, len(p.Instances), time.Since(placeStart), err)
		result.Stats.PlaceTime += time.Since(placeStart)
		if err != nil {
			// Infeasible capacity does not improve with retries.
			return nil, err
		}

		logger.Info("placed pedals",
			"instances", len(p.Instances),
			"pass", pass,
			"duration", time.Since(placeStart))

		// Stage 2: Route
		edges := p.Chain.Edges()
		routeStart := time.Now()
		observability.Engine().OnRouteStart(ctx, len(edges))
		routes, rerr := route.Plan(layout, p.Board, p.Instances, p.Chain, p.Amp, opts.Route)
		observability.Engine().OnRouteComplete(ctx, len(edges), time.Since(routeStart), rerr)
		result.Stats.RouteTime += time.Since(routeStart)
		if rerr != nil && routes == nil {
			return nil, rerr
		}

		logger.Info("routed cables",
			"edges", len(edges),
			"pass", pass,
			"duration", time.Since(routeStart))

		// Stage 3: Detect
		detectStart := time.Now()
		conflicts := conflict.Detect(p.Instances, layout, routes)
		observability.Engine().OnDetectComplete(ctx, len(conflicts), time.Since(detectStart))
		result.Stats.DetectTime += time.Since(detectStart)

		att := &attempt{layout: layout, routes: routes, conflicts: conflicts}
		for _, rt := range routes {
			att.cable += rt.Length()
		}
		if att.better(best) {
			best = att
		}

		if len(conflicts) == 0 || pass >= opts.MaxRetries {
			break
		}

		// Free the instances involved in conflicts and perturb the seed,
		// then try again. Pinned drag overrides stay pinned only if they
		// are not themselves in conflict.
		observability.Engine().OnRetry(ctx, pass+1, len(conflicts))
		logger.Info("re-optimizing around conflicts",
			"conflicts", len(conflicts),
			"pass", pass+1)
		for _, c := range conflicts {
			for _, id := range c.Instances() {
				delete(existing, id)
			}
		}
		popts.Seed = popts.Seed*31 + uint64(pass) + 1
		result.Stats.Retries++
	}

	result.Layout = best.layout
	result.Routes = best.routes
	result.Conflicts = best.conflicts
	result.Stats.CableLength = best.cable

	logger.Info("optimize complete",
		"conflicts", len(result.Conflicts),
		"cable_length", result.Stats.CableLength,
		"retries", result.Stats.Retries)
	return result, nil
}
