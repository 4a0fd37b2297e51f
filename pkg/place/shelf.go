package place

import (
	"slices"
	"sort"

	"github.com/pedalstack/pedalstack/pkg/board"
	"github.com/pedalstack/pedalstack/pkg/chain"
	"github.com/pedalstack/pedalstack/pkg/errors"
	"github.com/pedalstack/pedalstack/pkg/geometry"
)

// seed builds an initial feasible layout with a greedy shelf pass: free
// instances are taken in chain order and packed left-to-right into shelves,
// rail by rail, stepping over pinned footprints. Pinned placements are copied
// through unchanged.
func seed(b *board.Board, instances []*board.PedalInstance, ch *chain.Chain, pinned board.Layout, opts Options) (board.Layout, error) {
	layout := pinned.Clone()

	obstacles := make([]geometry.Rect, 0, len(pinned))
	byID := make(map[string]*board.PedalInstance, len(instances))
	for _, inst := range instances {
		byID[inst.ID] = inst
	}
	if err := checkPinned(b, byID, pinned); err != nil {
		return nil, err
	}
	for id, p := range pinned {
		obstacles = append(obstacles, board.Bounds(byID[id], p).Inflate(opts.Spacing/2))
	}

	free := freeInChainOrder(instances, ch, pinned)

	var unplaced []string
	for _, inst := range free {
		placed := false
		for _, rail := range b.Rails {
			if p, ok := packIntoRail(rail, inst.Footprint, obstacles, opts); ok {
				layout[inst.ID] = p
				obstacles = append(obstacles, board.Bounds(inst, p).Inflate(opts.Spacing/2))
				placed = true
				break
			}
		}
		if !placed {
			unplaced = append(unplaced, inst.ID)
		}
	}

	if len(unplaced) > 0 {
		sort.Strings(unplaced)
		return nil, &errors.PlacementError{
			Instances: unplaced,
			Reason:    "no free rail space left",
		}
	}
	return layout, nil
}

// checkPinned rejects pinned placements that already violate the hard
// constraints. The engine cannot move them, so no feasible arrangement
// contains them; the offenders are named rather than silently unpinned.
func checkPinned(b *board.Board, byID map[string]*board.PedalInstance, pinned board.Layout) error {
	var bad []string
	ids := pinned.IDs()

	for i, id := range ids {
		p := pinned[id]
		rail, ok := b.Rail(p.Rail)
		if !ok || !rail.Bounds.Contains(board.Bounds(byID[id], p)) {
			bad = append(bad, id)
			continue
		}
		for _, other := range ids[i+1:] {
			if board.Bounds(byID[id], p).Overlaps(board.Bounds(byID[other], pinned[other])) {
				bad = append(bad, id, other)
			}
		}
	}

	if len(bad) > 0 {
		sort.Strings(bad)
		bad = slices.Compact(bad)
		return &errors.PlacementError{
			Instances: bad,
			Reason:    "pinned placements violate board constraints",
		}
	}
	return nil
}

// freeInChainOrder returns the unpinned instances, chain members first in
// chain order, then the rest sorted by ID for determinism.
func freeInChainOrder(instances []*board.PedalInstance, ch *chain.Chain, pinned board.Layout) []*board.PedalInstance {
	free := make([]*board.PedalInstance, 0, len(instances))
	for _, inst := range instances {
		if _, ok := pinned[inst.ID]; !ok {
			free = append(free, inst)
		}
	}
	sort.SliceStable(free, func(i, j int) bool {
		a, b := ch.Index(free[i].ID), ch.Index(free[j].ID)
		switch {
		case a >= 0 && b >= 0:
			return a < b
		case a >= 0:
			return true
		case b >= 0:
			return false
		default:
			return free[i].ID < free[j].ID
		}
	})
	return free
}

// packIntoRail scans shelf positions within a rail for the first spot where
// the footprint fits without touching an obstacle. Candidate x positions are
// the rail's left edge and the right edges of obstacles; shelves advance in
// half-inch rows.
func packIntoRail(rail board.Rail, f *board.Footprint, obstacles []geometry.Rect, opts Options) (board.Placement, bool) {
	const rowStep = 0.5

	orientations := []board.Orientation{board.Deg0}
	if opts.AllowRotate && f.Width != f.Depth {
		orientations = append(orientations, board.Deg90)
	}

	for _, o := range orientations {
		w, d := f.Width, f.Depth
		if o.Swapped() {
			w, d = d, w
		}
		if w > rail.Bounds.Width || d > rail.Bounds.Height {
			continue
		}

		for y := rail.Bounds.Y; y+d <= rail.Bounds.MaxY()+geometry.Epsilon; y += rowStep {
			x := rail.Bounds.X
			for x+w <= rail.Bounds.MaxX()+geometry.Epsilon {
				candidate := geometry.NewRect(x, y, w, d)
				if blocker, ok := firstBlocking(candidate.Inflate(opts.Spacing/2), obstacles); ok {
					// Jump past the blocker instead of creeping.
					x = blocker.MaxX() + opts.Spacing/2
					continue
				}
				return board.Placement{
					Position:    geometry.Point{X: x, Y: y},
					Orientation: o,
					Rail:        rail.ID,
				}, true
			}
		}
	}
	return board.Placement{}, false
}

// firstBlocking returns the obstacle overlapping the candidate, if any.
func firstBlocking(candidate geometry.Rect, obstacles []geometry.Rect) (geometry.Rect, bool) {
	for _, ob := range obstacles {
		if candidate.Overlaps(ob) {
			return ob, true
		}
	}
	return geometry.Rect{}, false
}
