// Package route implements the cable-routing engine: given a placed layout
// and the signal chain's required edge set, it computes one polyline per
// cable from source jack to destination jack without crossing any pedal body
// other than the cable's own endpoints.
//
// Routing builds a visibility graph from the corners of clearance-inflated
// footprints plus the two jack endpoints, runs Dijkstra over it, and
// simplifies the winning path to a minimal polyline. The graph is rebuilt
// from scratch for every layout change; incremental patching is not worth
// the invalidation bookkeeping, since any placement edit can strand any
// cable.
//
// A board dense enough to exceed the node cap falls back to a direct
// segment, flagged so the conflict detector reports the crossings instead of
// the search degenerating.
package route

import (
	"github.com/pedalstack/pedalstack/pkg/board"
	"github.com/pedalstack/pedalstack/pkg/chain"
	"github.com/pedalstack/pedalstack/pkg/errors"
	"github.com/pedalstack/pedalstack/pkg/geometry"
)

// Default option values.
const (
	// DefaultClearance is how far cables keep away from pedal bodies they
	// route around, in inches.
	DefaultClearance = 0.2

	// DefaultMaxNodes caps the visibility graph size per edge. Beyond the
	// cap the edge gets a direct, conflict-flagged path instead of an
	// exhaustive search.
	DefaultMaxNodes = 128
)

// Options controls a routing run.
type Options struct {
	Clearance float64 // obstacle inflation margin
	MaxNodes  int     // visibility graph node cap per edge
}

// SetDefaults fills zero values with defaults.
func (o *Options) SetDefaults() {
	if o.Clearance == 0 {
		o.Clearance = DefaultClearance
	}
	if o.MaxNodes == 0 {
		o.MaxNodes = DefaultMaxNodes
	}
}

// Route is the computed polyline for one chain edge. An empty Points slice
// means the edge is blocked: no collision-free path existed for the current
// placement. Direct marks a node-cap fallback whose crossings are left for
// the conflict detector to report.
type Route struct {
	Edge    chain.Edge       `json:"edge" bson:"edge"`
	Points  []geometry.Point `json:"points" bson:"points"`
	Direct  bool             `json:"direct,omitempty" bson:"direct,omitempty"`
	Blocked bool             `json:"blocked,omitempty" bson:"blocked,omitempty"`
}

// Length returns the polyline length.
func (r Route) Length() float64 {
	var total float64
	for i := 0; i+1 < len(r.Points); i++ {
		total += r.Points[i].Distance(r.Points[i+1])
	}
	return total
}

// Plan routes every required edge of the chain over the given layout.
//
// All edges are attempted; a blocked edge produces a Route with Blocked set
// and no points, and the returned error is a *RoutingError identifying the
// first blocked edge. Callers that re-place on routing failure still receive
// the routable remainder.
func Plan(layout board.Layout, b *board.Board, instances []*board.PedalInstance, ch *chain.Chain, amp *board.Amp, opts Options) ([]Route, error) {
	opts.SetDefaults()

	if ch.FourCable() && (amp == nil || !amp.HasLoop) {
		return nil, errors.New(errors.ErrCodeInvalidChain,
			"four-cable-method mode requires an amp with an effects loop")
	}

	byID := make(map[string]*board.PedalInstance, len(instances))
	for _, inst := range instances {
		byID[inst.ID] = inst
	}

	edges := ch.Edges()
	routes := make([]Route, 0, len(edges))
	var firstBlocked *errors.RoutingError

	for _, e := range edges {
		r, err := planEdge(layout, byID, e, amp, opts)
		if err != nil {
			if re, ok := errors.AsRoutingError(err); ok {
				if firstBlocked == nil {
					firstBlocked = re
				}
				routes = append(routes, Route{Edge: e, Blocked: true})
				continue
			}
			return nil, err
		}
		routes = append(routes, r)
	}

	if firstBlocked != nil {
		return routes, firstBlocked
	}
	return routes, nil
}

// planEdge routes a single chain edge.
func planEdge(layout board.Layout, byID map[string]*board.PedalInstance, e chain.Edge, amp *board.Amp, opts Options) (Route, error) {
	src, err := endpointPosition(layout, byID, e.From, amp)
	if err != nil {
		return Route{}, err
	}
	dst, err := endpointPosition(layout, byID, e.To, amp)
	if err != nil {
		return Route{}, err
	}

	obstacles := edgeObstacles(layout, byID, e, src, dst, opts)

	// Direct line of sight needs no graph at all.
	direct := geometry.Segment{A: src, B: dst}
	if !segmentBlocked(direct, obstacles) {
		return Route{Edge: e, Points: []geometry.Point{src, dst}}, nil
	}

	if len(obstacles)*4+2 > opts.MaxNodes {
		return Route{Edge: e, Points: []geometry.Point{src, dst}, Direct: true}, nil
	}

	points, ok := shortestVisible(src, dst, obstacles)
	if !ok {
		return Route{}, &errors.RoutingError{Edge: e.String()}
	}
	return Route{Edge: e, Points: simplify(points)}, nil
}

// endpointPosition resolves an edge endpoint to its jack's board position.
func endpointPosition(layout board.Layout, byID map[string]*board.PedalInstance, ep chain.Endpoint, amp *board.Amp) (geometry.Point, error) {
	switch ep.Kind {
	case chain.EndpointAmpSend:
		return amp.Send, nil
	case chain.EndpointAmpReturn:
		return amp.Return, nil
	case chain.EndpointAmpInput:
		return amp.Input, nil
	}

	inst := byID[ep.Instance]
	if inst == nil {
		return geometry.Point{}, errors.New(errors.ErrCodePedalNotFound, "chain references unknown instance %q", ep.Instance)
	}
	p, ok := layout[ep.Instance]
	if !ok {
		return geometry.Point{}, errors.New(errors.ErrCodePedalNotFound, "instance %q is not placed", ep.Instance)
	}

	role := board.RoleOutput
	if ep.Kind == chain.EndpointPedalInput {
		role = board.RoleInput
	}
	if jack, found := inst.Footprint.JackByRole(role); found {
		return board.JackPosition(inst, p, jack), nil
	}
	return board.Bounds(inst, p).Center(), nil
}

// edgeObstacles collects the clearance-inflated bodies this edge must avoid.
// The edge's own two endpoint pedals are not obstacles. An inflated body that
// swallows a jack point (pedals packed tighter than the clearance) degrades
// to its raw bounds so the jack is not walled in by its neighbor's margin.
func edgeObstacles(layout board.Layout, byID map[string]*board.PedalInstance, e chain.Edge, src, dst geometry.Point, opts Options) []geometry.Rect {
	skip := map[string]bool{
		e.From.Instance: true,
		e.To.Instance:   true,
	}

	obstacles := make([]geometry.Rect, 0, len(layout))
	for _, id := range layout.IDs() {
		if skip[id] {
			continue
		}
		p := layout[id]
		inst := byID[id]
		if inst == nil {
			continue
		}
		raw := board.Bounds(inst, p)
		inflated := raw.Inflate(opts.Clearance)
		if inflated.ContainsPoint(src) || inflated.ContainsPoint(dst) {
			inflated = raw
		}
		obstacles = append(obstacles, inflated)
	}
	return obstacles
}

// segmentBlocked reports whether the segment crosses any obstacle interior.
func segmentBlocked(s geometry.Segment, obstacles []geometry.Rect) bool {
	for _, ob := range obstacles {
		if s.IntersectsRect(ob) {
			return true
		}
	}
	return false
}
