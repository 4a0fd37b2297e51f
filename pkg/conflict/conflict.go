// Package conflict implements the collision detector shared by the placement
// and routing engines. It inspects a layout and its routes and reports every
// violation as a value; it never mutates its inputs. Conflicts drive the
// engine's re-optimization loop and, once the retry budget is spent, are
// surfaced to the caller rather than silently dropped.
package conflict

import (
	"fmt"

	"github.com/pedalstack/pedalstack/pkg/board"
	"github.com/pedalstack/pedalstack/pkg/chain"
	"github.com/pedalstack/pedalstack/pkg/geometry"
	"github.com/pedalstack/pedalstack/pkg/route"
)

// Kind classifies a conflict.
type Kind string

// Conflict kinds.
const (
	// FootprintOverlap: two pedal bodies share area.
	FootprintOverlap Kind = "footprint_overlap"

	// RouteBlocked: an edge had no collision-free path at all.
	RouteBlocked Kind = "route_blocked"

	// RouteCrossesFootprint: a routed cable passes through a pedal body
	// that is not one of its endpoints.
	RouteCrossesFootprint Kind = "route_crosses_footprint"
)

// Conflict is one detected violation. InstanceA/InstanceB are set for
// footprint overlaps; Edge and Instance are set for route conflicts.
type Conflict struct {
	Kind      Kind        `json:"kind" bson:"kind"`
	InstanceA string      `json:"instance_a,omitempty" bson:"instance_a,omitempty"`
	InstanceB string      `json:"instance_b,omitempty" bson:"instance_b,omitempty"`
	Edge      *chain.Edge `json:"edge,omitempty" bson:"edge,omitempty"`
}

// String implements fmt.Stringer.
func (c Conflict) String() string {
	switch c.Kind {
	case FootprintOverlap:
		return fmt.Sprintf("footprint overlap: %s / %s", c.InstanceA, c.InstanceB)
	case RouteBlocked:
		return fmt.Sprintf("route blocked: %s", c.Edge)
	case RouteCrossesFootprint:
		return fmt.Sprintf("route %s crosses %s", c.Edge, c.InstanceA)
	}
	return string(c.Kind)
}

// Instances returns the instance IDs involved in the conflict, for flagging
// during re-placement.
func (c Conflict) Instances() []string {
	var ids []string
	if c.InstanceA != "" {
		ids = append(ids, c.InstanceA)
	}
	if c.InstanceB != "" {
		ids = append(ids, c.InstanceB)
	}
	if c.Edge != nil {
		if c.Edge.From.Instance != "" {
			ids = append(ids, c.Edge.From.Instance)
		}
		if c.Edge.To.Instance != "" {
			ids = append(ids, c.Edge.To.Instance)
		}
	}
	return ids
}

// Detect checks the combined layout and routes for violations. The layout is
// checked for pairwise footprint overlap; every route segment is checked
// against every pedal body except the route's own endpoints; blocked routes
// are reported per edge.
func Detect(instances []*board.PedalInstance, layout board.Layout, routes []route.Route) []Conflict {
	byID := make(map[string]*board.PedalInstance, len(instances))
	for _, inst := range instances {
		byID[inst.ID] = inst
	}

	var conflicts []Conflict
	conflicts = append(conflicts, overlaps(byID, layout)...)
	conflicts = append(conflicts, routeConflicts(byID, layout, routes)...)
	return conflicts
}

// overlaps reports every pair of placed footprints sharing area.
func overlaps(byID map[string]*board.PedalInstance, layout board.Layout) []Conflict {
	ids := layout.IDs()

	rects := make(map[string]geometry.Rect, len(ids))
	for _, id := range ids {
		if inst := byID[id]; inst != nil {
			rects[id] = board.Bounds(inst, layout[id])
		}
	}

	var conflicts []Conflict
	for i, a := range ids {
		ra, ok := rects[a]
		if !ok {
			continue
		}
		for _, b := range ids[i+1:] {
			rb, ok := rects[b]
			if !ok {
				continue
			}
			if ra.Overlaps(rb) {
				conflicts = append(conflicts, Conflict{
					Kind:      FootprintOverlap,
					InstanceA: a,
					InstanceB: b,
				})
			}
		}
	}
	return conflicts
}

// routeConflicts reports blocked edges and cables crossing foreign bodies.
func routeConflicts(byID map[string]*board.PedalInstance, layout board.Layout, routes []route.Route) []Conflict {
	var conflicts []Conflict
	for i := range routes {
		r := &routes[i]
		if r.Blocked {
			edge := r.Edge
			conflicts = append(conflicts, Conflict{Kind: RouteBlocked, Edge: &edge})
			continue
		}

		crossed := make(map[string]bool)
		for s := 0; s+1 < len(r.Points); s++ {
			seg := geometry.Segment{A: r.Points[s], B: r.Points[s+1]}
			for _, id := range layout.IDs() {
				if id == r.Edge.From.Instance || id == r.Edge.To.Instance || crossed[id] {
					continue
				}
				inst := byID[id]
				if inst == nil {
					continue
				}
				if seg.IntersectsRect(board.Bounds(inst, layout[id])) {
					crossed[id] = true
					edge := r.Edge
					conflicts = append(conflicts, Conflict{
						Kind:      RouteCrossesFootprint,
						Edge:      &edge,
						InstanceA: id,
					})
				}
			}
		}
	}
	return conflicts
}
