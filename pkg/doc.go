// Package pkg provides the core libraries for Pedalstack layout optimization.
//
// # Overview
//
// Pedalstack turns a list of guitar pedals and a signal chain into a physical
// pedalboard layout: pedals placed on the board without overlaps, patch
// cables routed between jacks, and any remaining violations reported as
// conflicts. The pkg directory is organized into four main areas:
//
//  1. Domain model ([geometry], [board], [chain], [catalog])
//  2. Solvers ([place], [route], [conflict])
//  3. Orchestration ([engine], [session])
//  4. Infrastructure ([cache], [config], [errors], [export], [observability])
//
// # Architecture
//
// The typical data flow through Pedalstack:
//
//	Catalog (pedals, boards, amps)
//	         ↓
//	    [chain] package (signal-chain edges, four-cable method)
//	         ↓
//	    [place] package (footprint packing on the board)
//	         ↓
//	    [route] package (visibility-graph cable routing)
//	         ↓
//	    [conflict] package (overlap / crossing / slack checks)
//	         ↓
//	    SVG/JSON/DOT output
//
// # Quick Start
//
// Optimize a board and render the result:
//
//	import (
//	    "context"
//	    "github.com/pedalstack/pedalstack/pkg/cache"
//	    "github.com/pedalstack/pedalstack/pkg/chain"
//	    "github.com/pedalstack/pedalstack/pkg/engine"
//	    "github.com/pedalstack/pedalstack/pkg/export"
//	)
//
//	// 1. Describe the rig
//	ch, _ := chain.New("od", "dly")
//	p := engine.Problem{Board: b, Instances: pedals, Chain: ch}
//
//	// 2. Run the optimize loop
//	runner := engine.NewRunner(cache.NewNullCache(), nil, nil)
//	result, _ := runner.Execute(context.Background(), p, engine.Options{})
//
//	// 3. Render to SVG
//	svg := export.RenderSVG(b, pedals, result.Layout, export.WithRoutes(result.Routes))
//
// # Main Packages
//
// ## Domain Model
//
// [geometry] - Points, rectangles, and segment intersection in board inches.
//
// [board] - Boards, rails, pedal footprints with jack positions, amps with
// effects loops, and placements (position, orientation, pinning).
//
// [chain] - The signal chain: pedal order, the cable edges it implies, and
// the four-cable method split around an amp's effects loop.
//
// [catalog] - Gear records with unit normalization, backed by JSON fixtures,
// in-memory stores, or MongoDB.
//
// ## Solvers
//
// [place] - Constrained packing of footprints onto the board: shelf seeding
// plus randomized local search under a chain-order cost.
//
// [route] - Cable routing over a visibility graph with gonum shortest paths.
//
// [conflict] - Detection of footprint overlaps, boundary violations, cable
// crossings, and slack deficits.
//
// ## Orchestration
//
// [engine] - The place → route → detect loop with bounded retries, result
// caching, and timing stats. Entry point for CLI and API alike.
//
// [session] - Editing sessions for the HTTP API: epoch-guarded optimize
// passes so stale results never clobber a user's latest drag.
//
// ## Infrastructure
//
// [cache] - Result cache interface with file, Redis, and null backends.
//
// [config] - TOML configuration for engine tuning and backend selection.
//
// [errors] - Coded errors (INVALID_CHAIN, PLACEMENT_INFEASIBLE, ...) shared
// by the CLI exit paths and the API's HTTP status mapping.
//
// [export] - SVG board rendering, JSON layout documents, and Graphviz DOT
// for the signal chain.
//
// [observability] - Hook interfaces for engine stages, cache traffic, and
// API requests.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...            # All tests
//	go test ./pkg/place/...      # Specific package
//
// [geometry]: https://pkg.go.dev/github.com/pedalstack/pedalstack/pkg/geometry
// [board]: https://pkg.go.dev/github.com/pedalstack/pedalstack/pkg/board
// [chain]: https://pkg.go.dev/github.com/pedalstack/pedalstack/pkg/chain
// [catalog]: https://pkg.go.dev/github.com/pedalstack/pedalstack/pkg/catalog
// [place]: https://pkg.go.dev/github.com/pedalstack/pedalstack/pkg/place
// [route]: https://pkg.go.dev/github.com/pedalstack/pedalstack/pkg/route
// [conflict]: https://pkg.go.dev/github.com/pedalstack/pedalstack/pkg/conflict
// [engine]: https://pkg.go.dev/github.com/pedalstack/pedalstack/pkg/engine
// [session]: https://pkg.go.dev/github.com/pedalstack/pedalstack/pkg/session
// [cache]: https://pkg.go.dev/github.com/pedalstack/pedalstack/pkg/cache
// [config]: https://pkg.go.dev/github.com/pedalstack/pedalstack/pkg/config
// [errors]: https://pkg.go.dev/github.com/pedalstack/pedalstack/pkg/errors
// [export]: https://pkg.go.dev/github.com/pedalstack/pedalstack/pkg/export
// [observability]: https://pkg.go.dev/github.com/pedalstack/pedalstack/pkg/observability
package pkg
