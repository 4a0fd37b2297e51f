// Package catalog adapts external gear-catalog records into the engine's
// board types.
//
// Catalog records are read-only documents describing pedals, boards, and
// amps, with dimensions in either inches or millimeters. Load normalizes
// them into validated pkg/board values; malformed records fail fast rather
// than producing a footprint the placement engine would choke on later.
package catalog

import (
	"github.com/pedalstack/pedalstack/pkg/board"
	"github.com/pedalstack/pedalstack/pkg/errors"
	"github.com/pedalstack/pedalstack/pkg/geometry"
)

// Units accepted on catalog records.
const (
	UnitInches      = "in"
	UnitMillimeters = "mm"
)

const mmPerInch = 25.4

// JackRecord describes one jack on a pedal record. Offsets use the record's
// declared units.
type JackRecord struct {
	ID     string  `json:"id" bson:"id"`
	Role   string  `json:"role" bson:"role"`
	X      float64 `json:"x" bson:"x"`
	Y      float64 `json:"y" bson:"y"`
	Facing string  `json:"facing,omitempty" bson:"facing,omitempty"`
}

// PedalRecord is a catalog document for one pedal model.
type PedalRecord struct {
	ID    string       `json:"id" bson:"_id"`
	Name  string       `json:"name" bson:"name"`
	Units string       `json:"units" bson:"units"`
	Width float64      `json:"width" bson:"width"`
	Depth float64      `json:"depth" bson:"depth"`
	Jacks []JackRecord `json:"jacks" bson:"jacks"`
}

// RailRecord describes one mounting rail on a board record.
type RailRecord struct {
	ID     string  `json:"id" bson:"id"`
	X      float64 `json:"x" bson:"x"`
	Y      float64 `json:"y" bson:"y"`
	Width  float64 `json:"width" bson:"width"`
	Depth  float64 `json:"depth" bson:"depth"`
}

// BoardRecord is a catalog document for one pedalboard model.
type BoardRecord struct {
	ID             string       `json:"id" bson:"_id"`
	Name           string       `json:"name" bson:"name"`
	Units          string       `json:"units" bson:"units"`
	Width          float64      `json:"width" bson:"width"`
	Depth          float64      `json:"depth" bson:"depth"`
	Rails          []RailRecord `json:"rails" bson:"rails"`
	ClearanceUnder float64      `json:"clearance_under,omitempty" bson:"clearance_under,omitempty"`
}

// AmpRecord is a catalog document for one amplifier. Jack positions are in
// board coordinates using the record's declared units.
type AmpRecord struct {
	ID      string  `json:"id" bson:"_id"`
	Name    string  `json:"name" bson:"name"`
	Units   string  `json:"units" bson:"units"`
	HasLoop bool    `json:"has_loop" bson:"has_loop"`
	InputX  float64 `json:"input_x" bson:"input_x"`
	InputY  float64 `json:"input_y" bson:"input_y"`
	SendX   float64 `json:"send_x" bson:"send_x"`
	SendY   float64 `json:"send_y" bson:"send_y"`
	ReturnX float64 `json:"return_x" bson:"return_x"`
	ReturnY float64 `json:"return_y" bson:"return_y"`
}

// scale returns the factor converting the record's units to inches.
func scale(units string) (float64, error) {
	switch units {
	case UnitInches, "":
		return 1, nil
	case UnitMillimeters:
		return 1 / mmPerInch, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidInput, "unknown catalog units %q", units)
}

// Footprint normalizes the record into a validated footprint in inches.
func (r *PedalRecord) Footprint() (*board.Footprint, error) {
	s, err := scale(r.Units)
	if err != nil {
		return nil, err
	}
	f := &board.Footprint{
		Name:  r.Name,
		Width: r.Width * s,
		Depth: r.Depth * s,
		Jacks: make([]board.Jack, 0, len(r.Jacks)),
	}
	for _, j := range r.Jacks {
		role, err := board.ParseJackRole(j.Role)
		if err != nil {
			return nil, err
		}
		f.Jacks = append(f.Jacks, board.Jack{
			ID:     j.ID,
			Role:   role,
			Offset: geometry.Point{X: j.X * s, Y: j.Y * s},
			Facing: board.Facing(j.Facing),
		})
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// Board normalizes the record into a validated board in inches.
func (r *BoardRecord) Board() (*board.Board, error) {
	s, err := scale(r.Units)
	if err != nil {
		return nil, err
	}
	b := &board.Board{
		Name:           r.Name,
		Width:          r.Width * s,
		Depth:          r.Depth * s,
		Rails:          make([]board.Rail, 0, len(r.Rails)),
		ClearanceUnder: r.ClearanceUnder * s,
	}
	for _, rail := range r.Rails {
		b.Rails = append(b.Rails, board.Rail{
			ID:     rail.ID,
			Bounds: geometry.NewRect(rail.X*s, rail.Y*s, rail.Width*s, rail.Depth*s),
		})
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// Amp normalizes the record into a validated amp descriptor in inches.
func (r *AmpRecord) Amp() (*board.Amp, error) {
	s, err := scale(r.Units)
	if err != nil {
		return nil, err
	}
	a := &board.Amp{
		Name:    r.Name,
		HasLoop: r.HasLoop,
		Input:   geometry.Point{X: r.InputX * s, Y: r.InputY * s},
		Send:    geometry.Point{X: r.SendX * s, Y: r.SendY * s},
		Return:  geometry.Point{X: r.ReturnX * s, Y: r.ReturnY * s},
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}
