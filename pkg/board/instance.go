package board

import (
	"sort"

	"github.com/pedalstack/pedalstack/pkg/errors"
	"github.com/pedalstack/pedalstack/pkg/geometry"
)

// PedalInstance is one pedal on the board. Two pedals of the same model are
// distinct instances sharing a Footprint. The instance's position lives in
// the Layout, not here, so the same instance set can be evaluated against
// candidate layouts.
type PedalInstance struct {
	ID        string     `json:"id" bson:"id"`
	Footprint *Footprint `json:"footprint" bson:"footprint"`
}

// Validate checks the instance id and footprint.
func (p *PedalInstance) Validate() error {
	if err := errors.ValidateID(p.ID); err != nil {
		return err
	}
	if p.Footprint == nil {
		return errors.New(errors.ErrCodeInvalidPedal, "instance %q has no footprint", p.ID)
	}
	return p.Footprint.Validate()
}

// Placement is one instance's position on the board. Position is the minimum
// corner of the oriented bounding rectangle. Pinned placements are never
// moved by the placement engine.
type Placement struct {
	Position    geometry.Point `json:"position" bson:"position"`
	Orientation Orientation    `json:"orientation" bson:"orientation"`
	Rail        string         `json:"rail" bson:"rail"`
	Pinned      bool           `json:"pinned,omitempty" bson:"pinned,omitempty"`
}

// Layout maps pedal instance IDs to their placements. The placement engine
// guarantees that every layout it returns has pairwise non-overlapping
// footprints, each inside its assigned rail.
type Layout map[string]Placement

// Clone returns a deep copy of the layout.
func (l Layout) Clone() Layout {
	out := make(Layout, len(l))
	for id, p := range l {
		out[id] = p
	}
	return out
}

// IDs returns the instance IDs in the layout, sorted for determinism.
func (l Layout) IDs() []string {
	ids := make([]string, 0, len(l))
	for id := range l {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Bounds returns the oriented bounding rectangle of an instance under a
// placement. Orientations of 90 and 270 degrees swap width and depth.
func Bounds(inst *PedalInstance, p Placement) geometry.Rect {
	w, d := inst.Footprint.Width, inst.Footprint.Depth
	if p.Orientation.Swapped() {
		w, d = d, w
	}
	return geometry.NewRect(p.Position.X, p.Position.Y, w, d)
}

// JackPosition returns the absolute board-space position of a jack on an
// instance under a placement, accounting for orientation.
func JackPosition(inst *PedalInstance, p Placement, jack Jack) geometry.Point {
	local := orient(jack.Offset, inst.Footprint.Width, inst.Footprint.Depth, p.Orientation)
	return p.Position.Add(local)
}

// orient maps a footprint-local offset into the oriented footprint's local
// frame, whose origin is the oriented bounding rect's minimum corner.
func orient(off geometry.Point, w, d float64, o Orientation) geometry.Point {
	switch o {
	case Deg90:
		return geometry.Point{X: d - off.Y, Y: off.X}
	case Deg180:
		return geometry.Point{X: w - off.X, Y: d - off.Y}
	case Deg270:
		return geometry.Point{X: off.Y, Y: w - off.X}
	}
	return off
}

// Validate checks a layout against a board and instance set: every placed
// instance exists, lies within its assigned rail, and no two footprints
// overlap. This is the engine's core invariant; a layout that fails here is
// never returned to a caller.
func (l Layout) Validate(b *Board, instances []*PedalInstance) error {
	byID := make(map[string]*PedalInstance, len(instances))
	for _, inst := range instances {
		byID[inst.ID] = inst
	}

	ids := l.IDs()
	rects := make(map[string]geometry.Rect, len(ids))
	for _, id := range ids {
		inst, ok := byID[id]
		if !ok {
			return errors.New(errors.ErrCodePedalNotFound, "layout references unknown instance %q", id)
		}
		p := l[id]
		rail, ok := b.Rail(p.Rail)
		if !ok {
			return errors.New(errors.ErrCodeInvalidBoard, "instance %q assigned to unknown rail %q", id, p.Rail)
		}
		r := Bounds(inst, p)
		if !rail.Bounds.Contains(r) {
			return errors.New(errors.ErrCodeInvalidBoard,
				"instance %q extends beyond rail %q", id, p.Rail)
		}
		rects[id] = r
	}

	for i, a := range ids {
		for _, bID := range ids[i+1:] {
			if rects[a].Overlaps(rects[bID]) {
				return errors.New(errors.ErrCodeInvalidBoard,
					"instances %q and %q overlap", a, bID)
			}
		}
	}
	return nil
}
