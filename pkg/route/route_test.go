package route

import (
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

// checkNoCrossings asserts the core routing invariant: no route segment
// passes through a pedal body other than its own endpoints' pedals.
func checkNoCrossings(t *testing.T, routes []Route, instances []*board.PedalInstance, layout board.Layout) {
	t.Helper()
	byID := make(map[string]*board.PedalInstance)
	for _, inst := range instances {
		byID[inst.ID] = inst
	}
	for _, r := range routes {
		for i := 0; i+1 < len(r.Points); i++ {
			seg := geometry.Segment{A: r.Points[i], B: r.Points[i+1]}
			for id, p := range layout {
				if id == r.Edge.From.Instance || id == r.Edge.To.Instance {
					continue
				}
				if seg.IntersectsRect(board.Bounds(byID[id], p)) {
					t.Errorf("route %s crosses %q", r.Edge, id)
				}
			}
		}
	}
}

func TestPlanDirectRoute(t *testing.T) {
	// Scenario: two pedals side by side with clear line of sight between
	// p1's output and p2's input.
	b := testBoard()
	p1 := pedal("p1", 3, 2)
	p2 := pedal("p2", 4, 2)
	instances := []*board.PedalInstance{p1, p2}
	layout := board.Layout{
		"p1": {Position: geometry.Point{X: 10, Y: 0}, Rail: "main"},
		"p2": {Position: geometry.Point{X: 4, Y: 0}, Rail: "main"},
	}
	ch := mustChain(t, "p1", "p2")

	routes, err := Plan(layout, b, instances, ch, nil, Options{})
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if len(routes) != 1 {
		t.Fatalf("Plan() returned %d routes, want 1", len(routes))
	}
	r := routes[0]
	if len(r.Points) != 2 {
		t.Errorf("direct route has %d points, want 2: %v", len(r.Points), r.Points)
	}
	// p1's output jack is on its left edge at (10, 1); p2's input jack on
	// its right edge at (8, 1).
	if r.Points[0] != (geometry.Point{X: 10, Y: 1}) {
		t.Errorf("route starts at %+v, want p1.output (10, 1)", r.Points[0])
	}
	if r.Points[len(r.Points)-1] != (geometry.Point{X: 8, Y: 1}) {
		t.Errorf("route ends at %+v, want p2.input (8, 1)", r.Points[len(r.Points)-1])
	}
	checkNoCrossings(t, routes, instances, layout)
}

func TestPlanRoutesAroundObstacle(t *testing.T) {
	// A third pedal sits squarely between the two chained pedals; the route
	// must detour around it.
	b := testBoard()
	p1 := pedal("p1", 3, 2)
	p2 := pedal("p2", 3, 2)
	wall := pedal("wall", 2, 6)
	instances := []*board.PedalInstance{p1, p2, wall}
	layout := board.Layout{
		"p1":   {Position: geometry.Point{X: 14, Y: 2}, Rail: "main"},
		"p2":   {Position: geometry.Point{X: 2, Y: 2}, Rail: "main"},
		"wall": {Position: geometry.Point{X: 9, Y: 0}, Rail: "main"},
	}
	ch := mustChain(t, "p1", "p2")

	routes, err := Plan(layout, b, instances, ch, nil, Options{})
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	r := routes[0]
	if len(r.Points) < 3 {
		t.Errorf("detour route has %d points, want >= 3: %v", len(r.Points), r.Points)
	}
	if r.Direct || r.Blocked {
		t.Errorf("route flags = direct:%v blocked:%v, want clean detour", r.Direct, r.Blocked)
	}
	checkNoCrossings(t, routes, instances, layout)
}

func TestPlanBlockedEdge(t *testing.T) {
	// Box p2 in on all four sides so its input jack is unreachable.
	b := testBoard()
	p1 := pedal("p1", 2, 2)
	p2 := pedal("p2", 2, 2)
	north := pedal("north", 8, 2)
	south := pedal("south", 8, 2)
	east := pedal("east", 2, 2)
	west := pedal("west", 2, 2)
	instances := []*board.PedalInstance{p1, p2, north, south, east, west}
	layout := board.Layout{
		"p2":    {Position: geometry.Point{X: 8, Y: 4}, Rail: "main"},
		"north": {Position: geometry.Point{X: 5, Y: 6}, Rail: "main"},
		"south": {Position: geometry.Point{X: 5, Y: 2}, Rail: "main"},
		"west":  {Position: geometry.Point{X: 6, Y: 4}, Rail: "main"},
		"east":  {Position: geometry.Point{X: 10, Y: 4}, Rail: "main"},
		"p1":    {Position: geometry.Point{X: 16, Y: 4}, Rail: "main"},
	}
	ch := mustChain(t, "p1", "p2")

	routes, err := Plan(layout, b, instances, ch, nil, Options{})
	re, ok := errors.AsRoutingError(err)
	if !ok {
		t.Fatalf("Plan() error = %v, want *RoutingError", err)
	}
	if re.Edge != "p1.output -> p2.input" {
		t.Errorf("RoutingError edge = %q, want p1.output -> p2.input", re.Edge)
	}
	if len(routes) != 1 || !routes[0].Blocked {
		t.Errorf("blocked edge not reported in routes: %+v", routes)
	}
}

func TestPlanFourCable(t *testing.T) {
	b := testBoard()
	p1 := pedal("p1", 3, 2)
	p2 := pedal("p2", 3, 2)
	p3 := pedal("p3", 3, 2)
	instances := []*board.PedalInstance{p1, p2, p3}
	layout := board.Layout{
		"p1": {Position: geometry.Point{X: 14, Y: 0}, Rail: "main"},
		"p2": {Position: geometry.Point{X: 8, Y: 0}, Rail: "main"},
		"p3": {Position: geometry.Point{X: 2, Y: 0}, Rail: "main"},
	}
	ch := mustChain(t, "p1", "p2", "p3")
	if err := ch.EnableFourCable("p2"); err != nil {
		t.Fatal(err)
	}
	amp := &board.Amp{
		Name:    "test-amp",
		HasLoop: true,
		Input:   geometry.Point{X: 18, Y: 12},
		Send:    geometry.Point{X: 10, Y: 12},
		Return:  geometry.Point{X: 12, Y: 12},
	}

	routes, err := Plan(layout, b, instances, ch, amp, Options{})
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if len(routes) != 4 {
		t.Fatalf("Plan() returned %d routes, want 4", len(routes))
	}
	checkNoCrossings(t, routes, instances, layout)
}

func TestPlanFourCableWithoutAmp(t *testing.T) {
	b := testBoard()
	p1 := pedal("p1", 3, 2)
	p2 := pedal("p2", 3, 2)
	instances := []*board.PedalInstance{p1, p2}
	layout := board.Layout{
		"p1": {Position: geometry.Point{X: 0, Y: 0}, Rail: "main"},
		"p2": {Position: geometry.Point{X: 5, Y: 0}, Rail: "main"},
	}
	ch := mustChain(t, "p1", "p2")
	if err := ch.EnableFourCable("p2"); err != nil {
		t.Fatal(err)
	}

	if _, err := Plan(layout, b, instances, ch, nil, Options{}); !errors.Is(err, errors.ErrCodeInvalidChain) {
		t.Errorf("Plan() without amp code = %v, want INVALID_CHAIN", errors.GetCode(err))
	}
}

func TestPlanNodeCapFallback(t *testing.T) {
	// With an artificially tiny node cap the obstacle graph is skipped and
	// the route degrades to a flagged direct segment.
	b := testBoard()
	p1 := pedal("p1", 3, 2)
	p2 := pedal("p2", 3, 2)
	wall := pedal("wall", 2, 6)
	instances := []*board.PedalInstance{p1, p2, wall}
	layout := board.Layout{
		"p1":   {Position: geometry.Point{X: 14, Y: 2}, Rail: "main"},
		"p2":   {Position: geometry.Point{X: 2, Y: 2}, Rail: "main"},
		"wall": {Position: geometry.Point{X: 9, Y: 0}, Rail: "main"},
	}
	ch := mustChain(t, "p1", "p2")

	routes, err := Plan(layout, b, instances, ch, nil, Options{MaxNodes: 4})
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if !routes[0].Direct {
		t.Errorf("route not flagged direct under node cap: %+v", routes[0])
	}
}

func TestSimplifyCollinear(t *testing.T) {
	points := []geometry.Point{
		{X: 0, Y: 0},
		{X: 1, Y: 0},
		{X: 2, Y: 0},
		{X: 2, Y: 2},
	}
	got := simplify(points)
	want := []geometry.Point{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 2}}
	if len(got) != len(want) {
		t.Fatalf("simplify() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("simplify()[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}
