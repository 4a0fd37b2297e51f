package session

import (
	"context"
	"testing"

	"github.com/pedalstack/pedalstack/pkg/board"
	"github.com/pedalstack/pedalstack/pkg/chain"
	"github.com/pedalstack/pedalstack/pkg/errors"
	"github.com/pedalstack/pedalstack/pkg/geometry"
)

func testBoard() *board.Board {
	return &board.Board{
		Name:  "test",
		Width: 24, Depth: 12,
		Rails: []board.Rail{{ID: "main", Bounds: geometry.NewRect(0, 0, 24, 12)}},
	}
}

func testAmp() *board.Amp {
	return &board.Amp{
		Name:    "amp",
		HasLoop: true,
		Input:   geometry.Point{X: 30, Y: 2},
		Send:    geometry.Point{X: 28, Y: 6},
		Return:  geometry.Point{X: 30, Y: 6},
	}
}

func testInstances(ids ...string) []*board.PedalInstance {
	fp := &board.Footprint{
		Name: "box", Width: 3, Depth: 5,
		Jacks: []board.Jack{
			{ID: "in", Role: board.RoleInput, Offset: geometry.Point{X: 3, Y: 2.5}},
			{ID: "out", Role: board.RoleOutput, Offset: geometry.Point{Y: 2.5}},
		},
	}
	out := make([]*board.PedalInstance, len(ids))
	for i, id := range ids {
		out[i] = &board.PedalInstance{ID: id, Footprint: fp}
	}
	return out
}

func testSession(t *testing.T, ids ...string) *Session {
	t.Helper()
	ch, err := chain.New(ids...)
	if err != nil {
		t.Fatalf("chain.New: %v", err)
	}
	s, err := New(testBoard(), testAmp(), testInstances(ids...), ch)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestNewAssignsID(t *testing.T) {
	a := testSession(t, "p1")
	b := testSession(t, "p1")
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("session ids not unique: %q, %q", a.ID, b.ID)
	}
}

func TestStaleResultDiscarded(t *testing.T) {
	s := testSession(t, "p1", "p2")

	passCtx, epoch := s.BeginPass(context.Background())

	// An edit lands while the pass is in flight.
	if err := s.Move("p1", board.Placement{Position: geometry.Point{X: 1, Y: 1}}); err != nil {
		t.Fatalf("Move: %v", err)
	}

	// The in-flight pass was cancelled by the edit.
	select {
	case <-passCtx.Done():
	default:
		t.Error("edit did not cancel in-flight pass")
	}

	// The pass's result must not be applied.
	stale := board.Layout{"p1": {Position: geometry.Point{X: 9, Y: 9}}}
	if s.ApplyResult(epoch, stale, nil, nil) {
		t.Error("stale result was applied")
	}
	_, state := s.Snapshot()
	if state.Layout["p1"].Position.X != 1 {
		t.Errorf("layout overwritten by stale result: %+v", state.Layout["p1"])
	}
}

func TestFreshResultApplied(t *testing.T) {
	s := testSession(t, "p1")

	passCtx, epoch := s.BeginPass(context.Background())
	fresh := board.Layout{"p1": {Position: geometry.Point{X: 2, Y: 3}}}
	if !s.ApplyResult(epoch, fresh, nil, nil) {
		t.Fatal("fresh result rejected")
	}
	_, state := s.Snapshot()
	if state.Layout["p1"].Position != (geometry.Point{X: 2, Y: 3}) {
		t.Errorf("layout = %+v", state.Layout["p1"])
	}

	// The completed pass must not hold onto its context registration.
	select {
	case <-passCtx.Done():
	default:
		t.Error("pass context still live after ApplyResult")
	}
}

func TestNewPassCancelsPrevious(t *testing.T) {
	s := testSession(t, "p1")

	first, _ := s.BeginPass(context.Background())
	second, _ := s.BeginPass(context.Background())

	select {
	case <-first.Done():
	default:
		t.Error("second pass did not cancel the first")
	}
	select {
	case <-second.Done():
		t.Error("second pass should still be live")
	default:
	}
}

func TestMovePinsInstance(t *testing.T) {
	s := testSession(t, "p1")

	if err := s.Move("p1", board.Placement{Position: geometry.Point{X: 4, Y: 4}}); err != nil {
		t.Fatalf("Move: %v", err)
	}
	_, state := s.Snapshot()
	if !state.Layout["p1"].Pinned {
		t.Error("drag override not pinned")
	}

	if err := s.Unpin("p1"); err != nil {
		t.Fatalf("Unpin: %v", err)
	}
	_, state = s.Snapshot()
	if state.Layout["p1"].Pinned {
		t.Error("Unpin left instance pinned")
	}

	if err := s.Move("ghost", board.Placement{}); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Move unknown instance: %v", err)
	}
}

func TestSetFourCable(t *testing.T) {
	s := testSession(t, "p1", "p2", "p3")

	if err := s.SetFourCable(true, "p2"); err != nil {
		t.Fatalf("SetFourCable: %v", err)
	}
	_, state := s.Snapshot()
	if !state.Chain.FourCable() {
		t.Error("four-cable mode not enabled")
	}

	if err := s.SetFourCable(false, ""); err != nil {
		t.Fatalf("disable: %v", err)
	}

	// No loop on the amp means no four-cable method.
	ch, _ := chain.New("p1")
	amp := testAmp()
	amp.HasLoop = false
	noLoop, err := New(testBoard(), amp, testInstances("p1"), ch)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := noLoop.SetFourCable(true, "p1"); !errors.Is(err, errors.ErrCodeInvalidChain) {
		t.Errorf("got %v, want INVALID_CHAIN", err)
	}
}

func TestManager(t *testing.T) {
	m := NewManager()
	ctx := context.Background()

	s := testSession(t, "p1")
	m.Add(s)

	got, err := m.Get(ctx, s.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != s {
		t.Error("Get returned a different session")
	}

	_, err = m.Get(ctx, "missing")
	if !errors.Is(err, errors.ErrCodeSessionNotFound) {
		t.Errorf("got %v, want SESSION_NOT_FOUND", err)
	}

	m.Delete(ctx, s.ID)
	if m.Len() != 0 {
		t.Errorf("Len = %d after delete", m.Len())
	}
}

func TestManagerCleanup(t *testing.T) {
	m := NewManager()
	s := testSession(t, "p1")
	s.expiresAt = s.CreatedAt // already expired
	m.Add(s)

	if dropped := m.Cleanup(context.Background()); dropped != 1 {
		t.Errorf("Cleanup dropped %d, want 1", dropped)
	}
	if m.Len() != 0 {
		t.Errorf("Len = %d after cleanup", m.Len())
	}
}
