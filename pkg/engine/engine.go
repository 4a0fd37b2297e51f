// Package engine provides the optimize pipeline for pedalboard layouts.
//
// This package implements the complete place → route → detect pipeline that
// can be used by CLI and API components. By centralizing this logic, we
// ensure consistent behavior across all entry points and avoid code
// duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Place: assign every pedal a position and orientation on the board
//  2. Route: compute a cable polyline for every required chain edge
//  3. Detect: find overlaps and cable crossings in the result
//
// When routing leaves blocked edges, the pipeline frees the instances
// involved and re-places them with a perturbed seed, up to a bounded retry
// budget. The best attempt (fewest conflicts, then shortest cable run) wins.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := engine.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, engine.Problem{
//	    Board:     b,
//	    Instances: instances,
//	    Chain:     ch,
//	    Amp:       amp,
//	}, engine.Options{})
//	if err != nil {
//	    return err
//	}
//	svg := export.SVG(result.Layout, ...)
package engine

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/pedalstack/pedalstack/pkg/board"
	"github.com/pedalstack/pedalstack/pkg/chain"
	"github.com/pedalstack/pedalstack/pkg/conflict"
	"github.com/pedalstack/pedalstack/pkg/errors"
	"github.com/pedalstack/pedalstack/pkg/place"
	"github.com/pedalstack/pedalstack/pkg/route"
)

// DefaultMaxRetries bounds the re-optimization loop. Each retry re-places
// the instances involved in conflicts with a perturbed seed; beyond the
// budget the best attempt so far is returned with its conflicts attached.
const DefaultMaxRetries = 3

// Problem is one complete optimization input: a board, the pedals to put on
// it, the signal chain connecting them, and optionally an amp and pinned
// placements from earlier edits.
type Problem struct {
	Board     *board.Board
	Amp       *board.Amp
	Instances []*board.PedalInstance
	Chain     *chain.Chain

	// Existing carries placements from the session. Pinned entries are
	// kept exactly; unpinned entries are ignored and replaced by the
	// search.
	Existing board.Layout
}

// Options controls a pipeline run.
type Options struct {
	Place place.Options `json:"place"`
	Route route.Options `json:"route"`

	// MaxRetries bounds the conflict-driven re-optimization loop.
	MaxRetries int `json:"max_retries,omitempty"`

	// Refresh skips the cache read (the result is still written back).
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// ValidateAndSetDefaults validates the options and fills in defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if o.MaxRetries < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "max retries must be non-negative, got %d", o.MaxRetries)
	}
	if o.MaxRetries == 0 {
		o.MaxRetries = DefaultMaxRetries
	}
	if o.Place.OrderWeight < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "order weight must be non-negative, got %v", o.Place.OrderWeight)
	}
	// Normalize before the runner hashes the inputs, so zero-valued and
	// explicit-default options share a cache key.
	o.Place.SetDefaults()
	o.Route.SetDefaults()
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	o.validated = true
	return nil
}

// Result is the output of one pipeline run.
type Result struct {
	// Layout is the computed placement for every instance.
	Layout board.Layout `json:"layout"`

	// Routes holds one cable polyline per required chain edge.
	Routes []route.Route `json:"routes"`

	// Conflicts lists the violations left in the best attempt. Empty for a
	// clean layout.
	Conflicts []conflict.Conflict `json:"conflicts,omitempty"`

	// Stats contains timing and size information.
	Stats Stats `json:"stats"`

	// CacheInfo tracks whether the result came from cache.
	CacheInfo CacheInfo `json:"cache_info"`
}

// Stats contains pipeline execution statistics.
type Stats struct {
	PlaceTime   time.Duration `json:"place_time"`
	RouteTime   time.Duration `json:"route_time"`
	DetectTime  time.Duration `json:"detect_time"`
	Retries     int           `json:"retries"`
	CableLength float64       `json:"cable_length"`
}

// CacheInfo tracks the cache interaction for a run.
type CacheInfo struct {
	// Hit reports whether the whole result came from cache.
	Hit bool `json:"hit"`

	// Key is the input hash the result is cached under.
	Key string `json:"key,omitempty"`
}
