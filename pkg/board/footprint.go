// Package board models the physical inputs of the layout engine: pedal
// footprints with their jacks, pedalboards with mounting rails, amplifier
// effects loops, and the pedal instances and layouts the placement engine
// produces.
//
// Footprints, boards, and amps are loaded once per editing session from the
// catalog and treated as read-only. Pedal instances and layouts are mutable
// and owned by the session.
package board

import (
	"fmt"

	"github.com/pedalstack/pedalstack/pkg/errors"
	"github.com/pedalstack/pedalstack/pkg/geometry"
)

// JackRole identifies what a jack carries.
type JackRole string

// Jack roles.
const (
	RoleInput  JackRole = "input"
	RoleOutput JackRole = "output"
	RoleSend   JackRole = "send"
	RoleReturn JackRole = "return"
)

// ParseJackRole parses a catalog role string.
func ParseJackRole(s string) (JackRole, error) {
	switch JackRole(s) {
	case RoleInput, RoleOutput, RoleSend, RoleReturn:
		return JackRole(s), nil
	}
	return "", errors.New(errors.ErrCodeInvalidPedal, "unknown jack role %q", s)
}

// Facing is the side of the footprint a jack points out of, in footprint-local
// coordinates before orientation is applied.
type Facing string

// Facing directions.
const (
	FacingLeft   Facing = "left"
	FacingRight  Facing = "right"
	FacingTop    Facing = "top"
	FacingBottom Facing = "bottom"
)

// Jack is a connection point on a footprint. Offset is relative to the
// footprint origin (minimum corner) with the footprint unrotated.
type Jack struct {
	ID     string         `json:"id" bson:"id"`
	Role   JackRole       `json:"role" bson:"role"`
	Offset geometry.Point `json:"offset" bson:"offset"`
	Facing Facing         `json:"facing,omitempty" bson:"facing,omitempty"`
}

// Footprint is the physical outline and jack layout of a pedal. Immutable
// once loaded from the catalog.
type Footprint struct {
	Name  string  `json:"name" bson:"name"`
	Width float64 `json:"width" bson:"width"` // x extent, inches
	Depth float64 `json:"depth" bson:"depth"` // y extent, inches
	Jacks []Jack  `json:"jacks" bson:"jacks"`
}

// Validate checks the footprint's dimensions and jack offsets.
func (f *Footprint) Validate() error {
	if f.Width <= 0 || f.Depth <= 0 {
		return errors.New(errors.ErrCodeInvalidGeometry,
			"footprint %q has non-positive dimensions %.3f x %.3f", f.Name, f.Width, f.Depth)
	}
	seen := make(map[string]bool, len(f.Jacks))
	for _, j := range f.Jacks {
		if j.ID == "" {
			return errors.New(errors.ErrCodeInvalidPedal, "footprint %q has a jack without an id", f.Name)
		}
		if seen[j.ID] {
			return errors.New(errors.ErrCodeInvalidPedal, "footprint %q has duplicate jack id %q", f.Name, j.ID)
		}
		seen[j.ID] = true
		if _, err := ParseJackRole(string(j.Role)); err != nil {
			return err
		}
		if j.Offset.X < 0 || j.Offset.X > f.Width || j.Offset.Y < 0 || j.Offset.Y > f.Depth {
			return errors.New(errors.ErrCodeInvalidPedal,
				"footprint %q jack %q offset (%.2f, %.2f) outside body", f.Name, j.ID, j.Offset.X, j.Offset.Y)
		}
	}
	return nil
}

// JackByRole returns the first jack with the given role.
func (f *Footprint) JackByRole(role JackRole) (Jack, bool) {
	for _, j := range f.Jacks {
		if j.Role == role {
			return j, true
		}
	}
	return Jack{}, false
}

// Jack returns the jack with the given id.
func (f *Footprint) Jack(id string) (Jack, bool) {
	for _, j := range f.Jacks {
		if j.ID == id {
			return j, true
		}
	}
	return Jack{}, false
}

// Orientation is a footprint rotation in quarter turns.
type Orientation int

// Orientations, counter-clockwise.
const (
	Deg0 Orientation = iota
	Deg90
	Deg180
	Deg270
)

// String implements fmt.Stringer.
func (o Orientation) String() string {
	switch o {
	case Deg0:
		return "0"
	case Deg90:
		return "90"
	case Deg180:
		return "180"
	case Deg270:
		return "270"
	}
	return fmt.Sprintf("Orientation(%d)", int(o))
}

// Swapped reports whether this orientation swaps width and depth.
func (o Orientation) Swapped() bool {
	return o == Deg90 || o == Deg270
}

// OrientationFromDegrees maps 0/90/180/270 to an Orientation.
func OrientationFromDegrees(deg int) (Orientation, error) {
	switch deg {
	case 0:
		return Deg0, nil
	case 90:
		return Deg90, nil
	case 180:
		return Deg180, nil
	case 270:
		return Deg270, nil
	}
	return Deg0, errors.New(errors.ErrCodeInvalidInput, "orientation must be 0, 90, 180, or 270, got %d", deg)
}
