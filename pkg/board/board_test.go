package board

import (
	"math"
	"testing"

	"github.com/pedalstack/pedalstack/pkg/errors"
	"github.com/pedalstack/pedalstack/pkg/geometry"
)

func testFootprint() *Footprint {
	return &Footprint{
		Name:  "test-fuzz",
		Width: 3,
		Depth: 2,
		Jacks: []Jack{
			{ID: "in", Role: RoleInput, Offset: geometry.Point{X: 3, Y: 1}, Facing: FacingRight},
			{ID: "out", Role: RoleOutput, Offset: geometry.Point{X: 0, Y: 1}, Facing: FacingLeft},
		},
	}
}

func TestFootprintValidate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Footprint)
		wantCode errors.Code
	}{
		{
			name:   "valid",
			mutate: func(f *Footprint) {},
		},
		{
			name:     "zero width",
			mutate:   func(f *Footprint) { f.Width = 0 },
			wantCode: errors.ErrCodeInvalidGeometry,
		},
		{
			name:     "negative depth",
			mutate:   func(f *Footprint) { f.Depth = -2 },
			wantCode: errors.ErrCodeInvalidGeometry,
		},
		{
			name:     "duplicate jack id",
			mutate:   func(f *Footprint) { f.Jacks[1].ID = "in" },
			wantCode: errors.ErrCodeInvalidPedal,
		},
		{
			name:     "unknown role",
			mutate:   func(f *Footprint) { f.Jacks[0].Role = "aux" },
			wantCode: errors.ErrCodeInvalidPedal,
		},
		{
			name:     "jack outside body",
			mutate:   func(f *Footprint) { f.Jacks[0].Offset = geometry.Point{X: 5, Y: 1} },
			wantCode: errors.ErrCodeInvalidPedal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := testFootprint()
			tt.mutate(f)
			err := f.Validate()
			if tt.wantCode == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantCode) {
				t.Errorf("Validate() code = %v, want %v", errors.GetCode(err), tt.wantCode)
			}
		})
	}
}

func TestBoundsOrientation(t *testing.T) {
	inst := &PedalInstance{ID: "p1", Footprint: testFootprint()}

	tests := []struct {
		name string
		o    Orientation
		want geometry.Rect
	}{
		{name: "0 degrees", o: Deg0, want: geometry.NewRect(1, 1, 3, 2)},
		{name: "90 degrees swaps", o: Deg90, want: geometry.NewRect(1, 1, 2, 3)},
		{name: "180 degrees keeps size", o: Deg180, want: geometry.NewRect(1, 1, 3, 2)},
		{name: "270 degrees swaps", o: Deg270, want: geometry.NewRect(1, 1, 2, 3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Placement{Position: geometry.Point{X: 1, Y: 1}, Orientation: tt.o}
			if got := Bounds(inst, p); got != tt.want {
				t.Errorf("Bounds() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestJackPosition(t *testing.T) {
	inst := &PedalInstance{ID: "p1", Footprint: testFootprint()}
	in, _ := inst.Footprint.Jack("in") // local offset (3, 1) on a 3x2 body

	tests := []struct {
		name string
		o    Orientation
		want geometry.Point
	}{
		{name: "0 degrees", o: Deg0, want: geometry.Point{X: 13, Y: 21}},
		{name: "90 degrees", o: Deg90, want: geometry.Point{X: 11, Y: 23}},
		{name: "180 degrees", o: Deg180, want: geometry.Point{X: 10, Y: 21}},
		{name: "270 degrees", o: Deg270, want: geometry.Point{X: 11, Y: 20}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Placement{Position: geometry.Point{X: 10, Y: 20}, Orientation: tt.o}
			got := JackPosition(inst, p, in)
			if math.Abs(got.X-tt.want.X) > 1e-9 || math.Abs(got.Y-tt.want.Y) > 1e-9 {
				t.Errorf("JackPosition() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestJackPositionStaysOnBody(t *testing.T) {
	// Whatever the orientation, the jack must land on the oriented bounding rect.
	inst := &PedalInstance{ID: "p1", Footprint: testFootprint()}
	for _, o := range []Orientation{Deg0, Deg90, Deg180, Deg270} {
		p := Placement{Position: geometry.Point{X: 5, Y: 5}, Orientation: o}
		bounds := Bounds(inst, p)
		for _, j := range inst.Footprint.Jacks {
			pos := JackPosition(inst, p, j)
			if !bounds.ContainsPoint(pos) {
				t.Errorf("orientation %v: jack %q at %+v outside bounds %+v", o, j.ID, pos, bounds)
			}
		}
	}
}

func TestBoardValidate(t *testing.T) {
	b := &Board{
		Name:  "classic-2",
		Width: 20,
		Depth: 10,
		Rails: []Rail{{ID: "main", Bounds: geometry.NewRect(0, 0, 20, 10)}},
	}
	if err := b.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}

	b.Rails = append(b.Rails, Rail{ID: "over", Bounds: geometry.NewRect(15, 0, 10, 5)})
	if err := b.Validate(); !errors.Is(err, errors.ErrCodeInvalidBoard) {
		t.Errorf("Validate() with out-of-bounds rail code = %v, want INVALID_BOARD", errors.GetCode(err))
	}
}

func TestRailAt(t *testing.T) {
	b := &Board{
		Name:  "two-tier",
		Width: 20,
		Depth: 10,
		Rails: []Rail{
			{ID: "front", Bounds: geometry.NewRect(0, 0, 20, 5)},
			{ID: "back", Bounds: geometry.NewRect(0, 5, 20, 5)},
		},
	}

	if id, ok := b.RailAt(geometry.NewRect(1, 1, 3, 3)); !ok || id != "front" {
		t.Errorf("RailAt(front rect) = %q, %v", id, ok)
	}
	if id, ok := b.RailAt(geometry.NewRect(1, 6, 3, 3)); !ok || id != "back" {
		t.Errorf("RailAt(back rect) = %q, %v", id, ok)
	}
	if _, ok := b.RailAt(geometry.NewRect(1, 3, 3, 4)); ok {
		t.Error("RailAt(straddling rect) = ok, want none")
	}
}

func TestLayoutValidate(t *testing.T) {
	b := &Board{
		Name:  "classic-2",
		Width: 20,
		Depth: 10,
		Rails: []Rail{{ID: "main", Bounds: geometry.NewRect(0, 0, 20, 10)}},
	}
	p1 := &PedalInstance{ID: "p1", Footprint: testFootprint()}
	p2 := &PedalInstance{ID: "p2", Footprint: testFootprint()}
	instances := []*PedalInstance{p1, p2}

	layout := Layout{
		"p1": {Position: geometry.Point{X: 0, Y: 0}, Rail: "main"},
		"p2": {Position: geometry.Point{X: 5, Y: 0}, Rail: "main"},
	}
	if err := layout.Validate(b, instances); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}

	t.Run("overlap rejected", func(t *testing.T) {
		bad := layout.Clone()
		bad["p2"] = Placement{Position: geometry.Point{X: 1, Y: 0}, Rail: "main"}
		if err := bad.Validate(b, instances); err == nil {
			t.Error("Validate() on overlapping layout = nil, want error")
		}
	})

	t.Run("outside rail rejected", func(t *testing.T) {
		bad := layout.Clone()
		bad["p2"] = Placement{Position: geometry.Point{X: 18, Y: 0}, Rail: "main"}
		if err := bad.Validate(b, instances); err == nil {
			t.Error("Validate() on out-of-rail layout = nil, want error")
		}
	})

	t.Run("unknown instance rejected", func(t *testing.T) {
		bad := layout.Clone()
		bad["ghost"] = Placement{Rail: "main"}
		if err := bad.Validate(b, instances); !errors.Is(err, errors.ErrCodePedalNotFound) {
			t.Errorf("Validate() code = %v, want PEDAL_NOT_FOUND", errors.GetCode(err))
		}
	})
}
