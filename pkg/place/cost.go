package place

import (
	"github.com/pedalstack/pedalstack/pkg/board"
	"github.com/pedalstack/pedalstack/pkg/chain"
	"github.com/pedalstack/pedalstack/pkg/geometry"
)

// cost scores a layout: the straight-line cable length estimate over the
// chain's required edges, plus a weighted penalty for adjacent chain pairs
// placed against reading order. Lower is better.
//
// The cable estimate is why placement and routing are coupled: placement
// optimizes the same quantity routing will later realize as polylines.
func cost(byID map[string]*board.PedalInstance, ch *chain.Chain, amp *board.Amp, layout board.Layout, opts Options) float64 {
	return cableEstimate(byID, ch, amp, layout) + opts.OrderWeight*orderPenalty(byID, ch, layout)
}

// cableEstimate sums straight-line jack-to-jack distances over the chain's
// edge set. Amp edges are skipped when no amp is supplied.
func cableEstimate(byID map[string]*board.PedalInstance, ch *chain.Chain, amp *board.Amp, layout board.Layout) float64 {
	var total float64
	for _, e := range ch.Edges() {
		from, ok := endpointPosition(byID, amp, layout, e.From)
		if !ok {
			continue
		}
		to, ok := endpointPosition(byID, amp, layout, e.To)
		if !ok {
			continue
		}
		total += from.Distance(to)
	}
	return total
}

// endpointPosition resolves an edge endpoint to a board-space point.
func endpointPosition(byID map[string]*board.PedalInstance, amp *board.Amp, layout board.Layout, ep chain.Endpoint) (geometry.Point, bool) {
	switch ep.Kind {
	case chain.EndpointAmpSend:
		if amp == nil {
			return geometry.Point{}, false
		}
		return amp.Send, true
	case chain.EndpointAmpReturn:
		if amp == nil {
			return geometry.Point{}, false
		}
		return amp.Return, true
	case chain.EndpointAmpInput:
		if amp == nil {
			return geometry.Point{}, false
		}
		return amp.Input, true
	}

	inst := byID[ep.Instance]
	if inst == nil {
		return geometry.Point{}, false
	}
	p, ok := layout[ep.Instance]
	if !ok {
		return geometry.Point{}, false
	}

	role := board.RoleOutput
	if ep.Kind == chain.EndpointPedalInput {
		role = board.RoleInput
	}
	if jack, ok := inst.Footprint.JackByRole(role); ok {
		return board.JackPosition(inst, p, jack), true
	}
	// Footprints without declared jacks estimate from the body center.
	return board.Bounds(inst, p).Center(), true
}

// orderPenalty sums how far each adjacent chain pair is placed against
// left-to-right reading order, measured between body centers.
func orderPenalty(byID map[string]*board.PedalInstance, ch *chain.Chain, layout board.Layout) float64 {
	order := ch.Order()
	var total float64
	for i := 0; i+1 < len(order); i++ {
		a, aOK := centerOf(byID, layout, order[i])
		b, bOK := centerOf(byID, layout, order[i+1])
		if !aOK || !bOK {
			continue
		}
		if a.X > b.X {
			total += a.X - b.X
		}
	}
	return total
}

func centerOf(byID map[string]*board.PedalInstance, layout board.Layout, id string) (geometry.Point, bool) {
	inst := byID[id]
	if inst == nil {
		return geometry.Point{}, false
	}
	p, ok := layout[id]
	if !ok {
		return geometry.Point{}, false
	}
	return board.Bounds(inst, p).Center(), true
}
