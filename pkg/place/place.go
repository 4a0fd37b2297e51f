// Package place implements the placement engine: it assigns each pedal
// instance a position and orientation on the board so that no two footprints
// overlap and every footprint sits inside its rail, while minimizing an
// estimate of total cable length and keeping the visual chain order readable.
//
// Placement is treated as constrained 2D packing: a greedy shelf pass seeds a
// feasible layout in chain order, then a bounded local-search pass improves it
// against the cost function. The search budget is fixed, so placement always
// terminates with the best feasible layout found, or a PlacementError if no
// feasible layout ever existed.
package place

import (
	"sort"

	"github.com/pedalstack/pedalstack/pkg/board"
	"github.com/pedalstack/pedalstack/pkg/chain"
	"github.com/pedalstack/pedalstack/pkg/errors"
)

// Default option values.
const (
	// DefaultOrderWeight balances the chain-order penalty against raw cable
	// length. The right precedence between the two is genuinely ambiguous,
	// so it is a tunable rather than a constant buried in the cost function.
	DefaultOrderWeight = 0.5

	// DefaultSpacing is the minimum clearance between footprints, in inches.
	DefaultSpacing = 0.5

	// DefaultMaxSteps is the local-search step budget.
	DefaultMaxSteps = 2000

	// DefaultSeed makes placement reproducible by default.
	DefaultSeed = uint64(42)
)

// Options controls a placement run.
type Options struct {
	// OrderWeight scales the penalty for pedals placed against chain order.
	// Zero disables the order preference entirely.
	OrderWeight float64

	// Spacing is the minimum clearance kept between footprints.
	Spacing float64

	// MaxSteps bounds the local-search improvement loop.
	MaxSteps int

	// Seed drives the local-search random source.
	Seed uint64

	// AllowRotate permits 90-degree rotation of free instances.
	AllowRotate bool
}

// SetDefaults fills zero values with defaults.
func (o *Options) SetDefaults() {
	if o.OrderWeight == 0 {
		o.OrderWeight = DefaultOrderWeight
	}
	if o.Spacing == 0 {
		o.Spacing = DefaultSpacing
	}
	if o.MaxSteps == 0 {
		o.MaxSteps = DefaultMaxSteps
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
}

// Place computes a layout for the instances on the board.
//
// If existing is non-nil, placements marked Pinned are kept exactly as given
// and act as fixed obstacles; only unpinned instances are re-placed. This is
// what backs the editor's "optimize remaining" action after a manual drag.
//
// Place never returns a layout with overlapping footprints or a footprint
// outside its rail. When no feasible arrangement exists it returns a
// *PlacementError naming the offending instances.
func Place(b *board.Board, instances []*board.PedalInstance, ch *chain.Chain, amp *board.Amp, existing board.Layout, opts Options) (board.Layout, error) {
	opts.SetDefaults()

	if err := b.Validate(); err != nil {
		return nil, err
	}
	if err := amp.Validate(); err != nil {
		return nil, err
	}
	byID := make(map[string]*board.PedalInstance, len(instances))
	for _, inst := range instances {
		if err := inst.Validate(); err != nil {
			return nil, err
		}
		if byID[inst.ID] != nil {
			return nil, errors.New(errors.ErrCodeInvalidPedal, "duplicate instance id %q", inst.ID)
		}
		byID[inst.ID] = inst
	}

	pinned := pinnedPlacements(existing, byID)
	if err := checkCapacity(b, instances, opts); err != nil {
		return nil, err
	}

	layout, err := seed(b, instances, ch, pinned, opts)
	if err != nil {
		return nil, err
	}

	layout = improve(b, byID, ch, amp, layout, opts)

	// Belt and braces: the layout handed back must satisfy the hard
	// constraints regardless of what the search did.
	if err := layout.Validate(b, instances); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "placement produced an invalid layout")
	}
	return layout, nil
}

// pinnedPlacements extracts the pinned placements that refer to known
// instances.
func pinnedPlacements(existing board.Layout, byID map[string]*board.PedalInstance) board.Layout {
	pinned := make(board.Layout)
	for id, p := range existing {
		if p.Pinned && byID[id] != nil {
			pinned[id] = p
		}
	}
	return pinned
}

// checkCapacity fails fast on arrangements that cannot exist: a single
// footprint larger than every rail, or total footprint area beyond the rail
// capacity. The area check names every instance, since no subset assignment
// can be blamed.
func checkCapacity(b *board.Board, instances []*board.PedalInstance, opts Options) error {
	var tooBig []string
	var totalArea float64

	for _, inst := range instances {
		totalArea += inst.Footprint.Width * inst.Footprint.Depth
		if !fitsAnyRail(b, inst.Footprint, opts.AllowRotate) {
			tooBig = append(tooBig, inst.ID)
		}
	}
	if len(tooBig) > 0 {
		sort.Strings(tooBig)
		return &errors.PlacementError{
			Instances: tooBig,
			Reason:    "footprint exceeds every rail's dimensions",
		}
	}

	if totalArea > b.RailArea() {
		all := make([]string, 0, len(instances))
		for _, inst := range instances {
			all = append(all, inst.ID)
		}
		sort.Strings(all)
		return &errors.PlacementError{
			Instances: all,
			Reason:    "total footprint area exceeds rail capacity",
		}
	}
	return nil
}

// fitsAnyRail reports whether the footprint fits inside at least one rail in
// some allowed orientation.
func fitsAnyRail(b *board.Board, f *board.Footprint, allowRotate bool) bool {
	for _, rail := range b.Rails {
		if f.Width <= rail.Bounds.Width && f.Depth <= rail.Bounds.Height {
			return true
		}
		if allowRotate && f.Depth <= rail.Bounds.Width && f.Width <= rail.Bounds.Height {
			return true
		}
	}
	return false
}
