package board

import (
	"github.com/pedalstack/pedalstack/pkg/errors"
	"github.com/pedalstack/pedalstack/pkg/geometry"
)

// Rail is a mountable sub-region of a board. Bounds are in board coordinates;
// a pedal assigned to a rail must sit entirely within its bounds.
type Rail struct {
	ID     string        `json:"id" bson:"id"`
	Bounds geometry.Rect `json:"bounds" bson:"bounds"`
}

// Board is a pedalboard's physical footprint: overall dimensions and an
// ordered list of rails. ClearanceUnder is the vertical gap beneath the deck;
// it gates whether power bricks may be mounted underneath, which frees rail
// area that would otherwise be reserved.
type Board struct {
	Name           string  `json:"name" bson:"name"`
	Width          float64 `json:"width" bson:"width"`
	Depth          float64 `json:"depth" bson:"depth"`
	Rails          []Rail  `json:"rails" bson:"rails"`
	ClearanceUnder float64 `json:"clearance_under,omitempty" bson:"clearance_under,omitempty"`
}

// Validate checks board dimensions and that every rail lies within the board.
func (b *Board) Validate() error {
	if b.Width <= 0 || b.Depth <= 0 {
		return errors.New(errors.ErrCodeInvalidGeometry,
			"board %q has non-positive dimensions %.3f x %.3f", b.Name, b.Width, b.Depth)
	}
	if len(b.Rails) == 0 {
		return errors.New(errors.ErrCodeInvalidBoard, "board %q has no rails", b.Name)
	}
	outline := geometry.NewRect(0, 0, b.Width, b.Depth)
	seen := make(map[string]bool, len(b.Rails))
	for _, rail := range b.Rails {
		if rail.ID == "" {
			return errors.New(errors.ErrCodeInvalidBoard, "board %q has a rail without an id", b.Name)
		}
		if seen[rail.ID] {
			return errors.New(errors.ErrCodeInvalidBoard, "board %q has duplicate rail id %q", b.Name, rail.ID)
		}
		seen[rail.ID] = true
		if err := rail.Bounds.Validate(); err != nil {
			return err
		}
		if !outline.Contains(rail.Bounds) {
			return errors.New(errors.ErrCodeInvalidBoard,
				"board %q rail %q extends beyond the board outline", b.Name, rail.ID)
		}
	}
	return nil
}

// Rail returns the rail with the given id.
func (b *Board) Rail(id string) (Rail, bool) {
	for _, r := range b.Rails {
		if r.ID == id {
			return r, true
		}
	}
	return Rail{}, false
}

// RailAt returns the id of the first rail whose bounds fully contain r.
func (b *Board) RailAt(r geometry.Rect) (string, bool) {
	for _, rail := range b.Rails {
		if rail.Bounds.Contains(r) {
			return rail.ID, true
		}
	}
	return "", false
}

// RailArea returns the summed area of all rails.
func (b *Board) RailArea() float64 {
	var total float64
	for _, r := range b.Rails {
		total += r.Bounds.Area()
	}
	return total
}

// Outline returns the board's bounding rectangle at the origin.
func (b *Board) Outline() geometry.Rect {
	return geometry.NewRect(0, 0, b.Width, b.Depth)
}

// Amp describes an amplifier's jacks in board coordinates. The amp sits off
// the board; the catalog supplies jack positions projected into the board's
// coordinate space (typically behind the board's top edge).
//
// Input is the amp's front input, the terminal jack of the signal chain.
// Send and Return are the effects-loop jacks and participate in routing only
// when four-cable-method mode is enabled.
type Amp struct {
	Name    string         `json:"name" bson:"name"`
	HasLoop bool           `json:"has_loop" bson:"has_loop"`
	Input   geometry.Point `json:"input" bson:"input"`
	Send    geometry.Point `json:"send" bson:"send"`
	Return  geometry.Point `json:"return" bson:"return"`
}

// Validate checks that an amp claiming an effects loop has distinct send and
// return positions.
func (a *Amp) Validate() error {
	if a == nil {
		return nil
	}
	if a.HasLoop && a.Send == a.Return {
		return errors.New(errors.ErrCodeInvalidBoard,
			"amp %q effects loop has coincident send and return jacks", a.Name)
	}
	return nil
}
