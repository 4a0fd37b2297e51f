package place

import (
	"fmt"
	"testing"

	"github.com/pedalstack/pedalstack/pkg/board"
	"github.com/pedalstack/pedalstack/pkg/chain"
	"github.com/pedalstack/pedalstack/pkg/errors"
	"github.com/pedalstack/pedalstack/pkg/geometry"
)

func testBoard() *board.Board {
	return &board.Board{
		Name:  "classic-20",
		Width: 20,
		Depth: 10,
		Rails: []board.Rail{{ID: "main", Bounds: geometry.NewRect(0, 0, 20, 10)}},
	}
}

func pedal(id string, w, d float64) *board.PedalInstance {
	return &board.PedalInstance{
		ID: id,
		Footprint: &board.Footprint{
			Name:  id,
			Width: w,
			Depth: d,
			Jacks: []board.Jack{
				{ID: "in", Role: board.RoleInput, Offset: geometry.Point{X: w, Y: d / 2}, Facing: board.FacingRight},
				{ID: "out", Role: board.RoleOutput, Offset: geometry.Point{X: 0, Y: d / 2}, Facing: board.FacingLeft},
			},
		},
	}
}

func mustChain(t *testing.T, ids ...string) *chain.Chain {
	t.Helper()
	c, err := chain.New(ids...)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestPlaceTwoPedals(t *testing.T) {
	// Scenario: 20x10 board, one rail, 3x2 and 4x2 pedals in chain order.
	b := testBoard()
	instances := []*board.PedalInstance{pedal("p1", 3, 2), pedal("p2", 4, 2)}
	ch := mustChain(t, "p1", "p2")

	layout, err := Place(b, instances, ch, nil, nil, Options{})
	if err != nil {
		t.Fatalf("Place() error = %v", err)
	}
	if len(layout) != 2 {
		t.Fatalf("Place() placed %d instances, want 2", len(layout))
	}
	if err := layout.Validate(b, instances); err != nil {
		t.Errorf("returned layout violates invariants: %v", err)
	}
}

func TestPlaceNoOverlapProperty(t *testing.T) {
	// Pack enough pedals to make the board tight and verify pairwise
	// non-overlap on every returned layout.
	b := testBoard()
	var instances []*board.PedalInstance
	var ids []string
	for i := 0; i < 12; i++ {
		id := fmt.Sprintf("p%02d", i)
		instances = append(instances, pedal(id, 3, 2.5))
		ids = append(ids, id)
	}
	ch := mustChain(t, ids...)

	for _, seed := range []uint64{1, 7, 42} {
		layout, err := Place(b, instances, ch, nil, nil, Options{Seed: seed, MaxSteps: 500})
		if err != nil {
			t.Fatalf("seed %d: Place() error = %v", seed, err)
		}
		if err := layout.Validate(b, instances); err != nil {
			t.Errorf("seed %d: layout violates invariants: %v", seed, err)
		}
	}
}

func TestPlaceCapacityExceeded(t *testing.T) {
	// Total footprint area exceeds board area: a PlacementError naming all
	// pedals, never a partial layout.
	b := testBoard()
	instances := []*board.PedalInstance{
		pedal("p1", 15, 9),
		pedal("p2", 15, 9),
	}
	ch := mustChain(t, "p1", "p2")

	layout, err := Place(b, instances, ch, nil, nil, Options{})
	if layout != nil {
		t.Fatal("Place() returned a layout for an infeasible arrangement")
	}
	pe, ok := errors.AsPlacementError(err)
	if !ok {
		t.Fatalf("Place() error = %v, want *PlacementError", err)
	}
	want := []string{"p1", "p2"}
	if len(pe.Instances) != len(want) {
		t.Fatalf("PlacementError names %v, want %v", pe.Instances, want)
	}
	for i, id := range want {
		if pe.Instances[i] != id {
			t.Errorf("PlacementError names %v, want %v", pe.Instances, want)
		}
	}
}

func TestPlaceFootprintTooLarge(t *testing.T) {
	b := testBoard()
	instances := []*board.PedalInstance{
		pedal("p1", 3, 2),
		pedal("giant", 25, 4),
	}
	ch := mustChain(t, "p1", "giant")

	_, err := Place(b, instances, ch, nil, nil, Options{})
	pe, ok := errors.AsPlacementError(err)
	if !ok {
		t.Fatalf("Place() error = %v, want *PlacementError", err)
	}
	if len(pe.Instances) != 1 || pe.Instances[0] != "giant" {
		t.Errorf("PlacementError names %v, want [giant]", pe.Instances)
	}
}

func TestPlacePinnedInstanceNeverMoves(t *testing.T) {
	b := testBoard()
	instances := []*board.PedalInstance{pedal("p1", 3, 2), pedal("p2", 4, 2), pedal("p3", 3, 2)}
	ch := mustChain(t, "p1", "p2", "p3")

	pin := board.Placement{
		Position:    geometry.Point{X: 10, Y: 4},
		Orientation: board.Deg0,
		Rail:        "main",
		Pinned:      true,
	}
	existing := board.Layout{"p2": pin}

	layout, err := Place(b, instances, ch, nil, existing, Options{})
	if err != nil {
		t.Fatalf("Place() error = %v", err)
	}

	got := layout["p2"]
	if got.Position != pin.Position || got.Orientation != pin.Orientation {
		t.Errorf("pinned instance moved: got %+v, want %+v", got, pin)
	}
	if err := layout.Validate(b, instances); err != nil {
		t.Errorf("layout violates invariants: %v", err)
	}
}

func TestPlacePinnedConflictRejected(t *testing.T) {
	b := testBoard()
	instances := []*board.PedalInstance{pedal("p1", 3, 2), pedal("p2", 4, 2)}
	ch := mustChain(t, "p1", "p2")

	existing := board.Layout{
		"p1": {Position: geometry.Point{X: 0, Y: 0}, Rail: "main", Pinned: true},
		"p2": {Position: geometry.Point{X: 1, Y: 0}, Rail: "main", Pinned: true},
	}

	_, err := Place(b, instances, ch, nil, existing, Options{})
	pe, ok := errors.AsPlacementError(err)
	if !ok {
		t.Fatalf("Place() error = %v, want *PlacementError", err)
	}
	if len(pe.Instances) != 2 {
		t.Errorf("PlacementError names %v, want both pinned instances", pe.Instances)
	}
}

func TestPlaceChainOrderPreference(t *testing.T) {
	// With a strong order weight and ample space, the chain should read
	// left to right.
	b := testBoard()
	instances := []*board.PedalInstance{pedal("a", 3, 2), pedal("b", 3, 2), pedal("c", 3, 2)}
	ch := mustChain(t, "a", "b", "c")

	layout, err := Place(b, instances, ch, nil, nil, Options{OrderWeight: 50})
	if err != nil {
		t.Fatalf("Place() error = %v", err)
	}

	byID := map[string]*board.PedalInstance{"a": instances[0], "b": instances[1], "c": instances[2]}
	xa := board.Bounds(byID["a"], layout["a"]).Center().X
	xb := board.Bounds(byID["b"], layout["b"]).Center().X
	xc := board.Bounds(byID["c"], layout["c"]).Center().X
	if xa > xb || xb > xc {
		t.Errorf("chain not in reading order: a=%.1f b=%.1f c=%.1f", xa, xb, xc)
	}
}

func TestPlaceDeterministic(t *testing.T) {
	b := testBoard()
	instances := []*board.PedalInstance{pedal("p1", 3, 2), pedal("p2", 4, 2), pedal("p3", 2, 2)}
	ch := mustChain(t, "p1", "p2", "p3")

	first, err := Place(b, instances, ch, nil, nil, Options{Seed: 7})
	if err != nil {
		t.Fatal(err)
	}
	second, err := Place(b, instances, ch, nil, nil, Options{Seed: 7})
	if err != nil {
		t.Fatal(err)
	}
	for id, p := range first {
		if second[id] != p {
			t.Errorf("instance %q: run 1 %+v, run 2 %+v", id, p, second[id])
		}
	}
}
