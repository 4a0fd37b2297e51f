package place

import (
	"math"
	"math/rand/v2"

	"github.com/pedalstack/pedalstack/pkg/board"
	"github.com/pedalstack/pedalstack/pkg/chain"
	"github.com/pedalstack/pedalstack/pkg/geometry"
)

// improve runs a bounded simulated-annealing local search over feasible
// layouts. Moves only touch unpinned instances and are rejected outright if
// they break the hard constraints, so every intermediate layout stays valid.
// The best layout seen is returned when the step budget runs out.
func improve(b *board.Board, byID map[string]*board.PedalInstance, ch *chain.Chain, amp *board.Amp, layout board.Layout, opts Options) board.Layout {
	free := make([]string, 0, len(layout))
	for id, p := range layout {
		if !p.Pinned {
			free = append(free, id)
		}
	}
	if len(free) == 0 {
		return layout
	}
	// Stable move selection across runs.
	ids := layout.IDs()
	freeSet := make(map[string]bool, len(free))
	for _, id := range free {
		freeSet[id] = true
	}
	free = free[:0]
	for _, id := range ids {
		if freeSet[id] {
			free = append(free, id)
		}
	}

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed))

	current := layout.Clone()
	currentCost := cost(byID, ch, amp, current, opts)
	best := current.Clone()
	bestCost := currentCost

	// Geometric cooling sized to the step budget.
	temp := currentCost/10 + 1
	decay := math.Pow(0.01, 1/float64(opts.MaxSteps))

	for step := 0; step < opts.MaxSteps; step++ {
		candidate := mutate(b, byID, current, free, rng, opts)
		if candidate == nil {
			temp *= decay
			continue
		}

		candCost := cost(byID, ch, amp, candidate, opts)
		delta := candCost - currentCost
		if delta <= 0 || rng.Float64() < math.Exp(-delta/temp) {
			current = candidate
			currentCost = candCost
			if currentCost < bestCost {
				best = current.Clone()
				bestCost = currentCost
			}
		}
		temp *= decay
	}
	return best
}

// mutate proposes one random feasible move, or nil if the proposal collided.
func mutate(b *board.Board, byID map[string]*board.PedalInstance, layout board.Layout, free []string, rng *rand.Rand, opts Options) board.Layout {
	switch rng.IntN(3) {
	case 0:
		return swapMove(b, byID, layout, free, rng, opts)
	case 1:
		if opts.AllowRotate {
			return rotateMove(b, byID, layout, free, rng, opts)
		}
		fallthrough
	default:
		return nudgeMove(b, byID, layout, free, rng, opts)
	}
}

// nudgeMove relocates one instance to a random position within a random rail.
func nudgeMove(b *board.Board, byID map[string]*board.PedalInstance, layout board.Layout, free []string, rng *rand.Rand, opts Options) board.Layout {
	id := free[rng.IntN(len(free))]
	inst := byID[id]
	rail := b.Rails[rng.IntN(len(b.Rails))]

	p := layout[id]
	w, d := inst.Footprint.Width, inst.Footprint.Depth
	if p.Orientation.Swapped() {
		w, d = d, w
	}
	if w > rail.Bounds.Width || d > rail.Bounds.Height {
		return nil
	}

	p.Position = geometry.Point{
		X: rail.Bounds.X + rng.Float64()*(rail.Bounds.Width-w),
		Y: rail.Bounds.Y + rng.Float64()*(rail.Bounds.Height-d),
	}
	p.Rail = rail.ID

	return applyIfFeasible(b, byID, layout, id, p, opts)
}

// swapMove exchanges the placements of two instances when both still fit.
func swapMove(b *board.Board, byID map[string]*board.PedalInstance, layout board.Layout, free []string, rng *rand.Rand, opts Options) board.Layout {
	if len(free) < 2 {
		return nil
	}
	i := rng.IntN(len(free))
	j := rng.IntN(len(free) - 1)
	if j >= i {
		j++
	}
	a, bID := free[i], free[j]

	next := layout.Clone()
	pa, pb := next[a], next[bID]
	pa.Position, pb.Position = pb.Position, pa.Position
	pa.Rail, pb.Rail = pb.Rail, pa.Rail
	next[a], next[bID] = pa, pb

	if !feasible(b, byID, next, a, opts) || !feasible(b, byID, next, bID, opts) {
		return nil
	}
	return next
}

// rotateMove toggles an instance between 0 and 90 degrees.
func rotateMove(b *board.Board, byID map[string]*board.PedalInstance, layout board.Layout, free []string, rng *rand.Rand, opts Options) board.Layout {
	id := free[rng.IntN(len(free))]
	p := layout[id]
	if p.Orientation == board.Deg90 {
		p.Orientation = board.Deg0
	} else {
		p.Orientation = board.Deg90
	}
	return applyIfFeasible(b, byID, layout, id, p, opts)
}

// applyIfFeasible returns a copy of layout with the new placement applied, or
// nil when the placement breaks a hard constraint.
func applyIfFeasible(b *board.Board, byID map[string]*board.PedalInstance, layout board.Layout, id string, p board.Placement, opts Options) board.Layout {
	next := layout.Clone()
	next[id] = p
	if !feasible(b, byID, next, id, opts) {
		return nil
	}
	return next
}

// feasible checks the hard constraints for one instance against the rest of
// the layout: inside its rail, no overlap within the spacing clearance.
func feasible(b *board.Board, byID map[string]*board.PedalInstance, layout board.Layout, id string, opts Options) bool {
	inst := byID[id]
	p := layout[id]

	rail, ok := b.Rail(p.Rail)
	if !ok {
		return false
	}
	r := board.Bounds(inst, p)
	if !rail.Bounds.Contains(r) {
		return false
	}

	padded := r.Inflate(opts.Spacing / 2)
	for otherID, op := range layout {
		if otherID == id {
			continue
		}
		other := board.Bounds(byID[otherID], op).Inflate(opts.Spacing / 2)
		if padded.Overlaps(other) {
			return false
		}
	}
	return true
}
