// Package session provides editing-session ownership for the layout engine.
//
// A session owns one board, one set of pedal instances, one signal chain,
// and the most recent optimize result. All engine state is reachable only
// through a session; there is no shared mutable state between sessions, so
// two users editing different boards never contend.
//
// # Concurrency
//
// Each session runs at most one optimize pass at a time. Every edit bumps
// the session's epoch and cancels any in-flight pass; a pass publishes its
// result only if the epoch is unchanged when it finishes, so results
// computed against stale inputs are discarded rather than applied.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pedalstack/pedalstack/pkg/board"
	"github.com/pedalstack/pedalstack/pkg/chain"
	"github.com/pedalstack/pedalstack/pkg/conflict"
	"github.com/pedalstack/pedalstack/pkg/errors"
	"github.com/pedalstack/pedalstack/pkg/route"
)

// DefaultTTL is how long an idle session survives before cleanup.
const DefaultTTL = 30 * time.Minute

// Session owns the editing state for one pedalboard.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu        sync.Mutex
	expiresAt time.Time

	board     *board.Board
	amp       *board.Amp
	instances []*board.PedalInstance
	chain     *chain.Chain

	layout    board.Layout
	routes    []route.Route
	conflicts []conflict.Conflict

	epoch  uint64
	cancel context.CancelFunc
}

// New creates a session owning the given board state.
func New(b *board.Board, amp *board.Amp, instances []*board.PedalInstance, ch *chain.Chain) (*Session, error) {
	if b == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "session requires a board")
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if err := amp.Validate(); err != nil {
		return nil, err
	}
	for _, inst := range instances {
		if err := inst.Validate(); err != nil {
			return nil, err
		}
	}
	now := time.Now()
	return &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		expiresAt: now.Add(DefaultTTL),
		board:     b,
		amp:       amp,
		instances: instances,
		chain:     ch,
		layout:    make(board.Layout),
	}, nil
}

// Expired reports whether the session's idle TTL has elapsed.
func (s *Session) Expired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Now().After(s.expiresAt)
}

// touch extends the TTL. Callers must hold s.mu.
func (s *Session) touch() {
	s.expiresAt = time.Now().Add(DefaultTTL)
}

// State is a read-only copy of the session's engine inputs and latest
// result, taken under the session lock.
type State struct {
	Board     *board.Board
	Amp       *board.Amp
	Instances []*board.PedalInstance
	Chain     *chain.Chain
	Layout    board.Layout
	Routes    []route.Route
	Conflicts []conflict.Conflict
}

// Snapshot returns the current epoch and a copy of the session state.
// The layout is cloned; boards, instances, and footprints are immutable
// after load and shared.
func (s *Session) Snapshot() (uint64, State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.epoch, State{
		Board:     s.board,
		Amp:       s.amp,
		Instances: s.instances,
		Chain:     s.chain,
		Layout:    s.layout.Clone(),
		Routes:    append([]route.Route(nil), s.routes...),
		Conflicts: append([]conflict.Conflict(nil), s.conflicts...),
	}
}

// BeginPass cancels any in-flight optimize pass and registers a new one.
// It returns a context derived from ctx that the next edit will cancel,
// and the epoch the pass is computing against.
func (s *Session) BeginPass(ctx context.Context) (context.Context, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	passCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	return passCtx, s.epoch
}

// ApplyResult publishes an optimize result if no edit happened since the
// pass began. It reports whether the result was applied; a stale result is
// discarded without touching session state.
func (s *Session) ApplyResult(epoch uint64, layout board.Layout, routes []route.Route, conflicts []conflict.Conflict) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		return false
	}
	s.layout = layout
	s.routes = routes
	s.conflicts = conflicts
	if s.cancel != nil {
		// The pass is over; release its context registration rather than
		// holding it until the parent request context ends.
		s.cancel()
		s.cancel = nil
	}
	s.touch()
	return true
}

// edit bumps the epoch and cancels any in-flight pass. Callers must hold
// s.mu.
func (s *Session) edit() {
	s.epoch++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.touch()
}

// Move applies a drag override: the instance is placed at the given
// placement and pinned so subsequent optimize passes keep it there.
func (s *Session) Move(instanceID string, p board.Placement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.instance(instanceID) == nil {
		return errors.New(errors.ErrCodeNotFound, "instance %q not in session", instanceID)
	}
	p.Pinned = true
	s.layout[instanceID] = p
	s.edit()
	return nil
}

// Unpin releases a drag override so the optimizer may move the instance
// again.
func (s *Session) Unpin(instanceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	pl, ok := s.layout[instanceID]
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "instance %q has no placement", instanceID)
	}
	pl.Pinned = false
	s.layout[instanceID] = pl
	s.edit()
	return nil
}

// SetFourCable toggles four-cable-method mode. Enabling requires an amp
// with an effects loop.
func (s *Session) SetFourCable(enable bool, beforeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.chain == nil {
		return errors.New(errors.ErrCodeInvalidChain, "session has no signal chain")
	}
	if enable {
		if s.amp == nil || !s.amp.HasLoop {
			return errors.New(errors.ErrCodeInvalidChain, "four-cable method requires an amp with an effects loop")
		}
		if err := s.chain.EnableFourCable(beforeID); err != nil {
			return err
		}
	} else {
		s.chain.DisableFourCable()
	}
	s.edit()
	return nil
}

// instance returns the instance with the given id. Callers must hold s.mu.
func (s *Session) instance(id string) *board.PedalInstance {
	for _, inst := range s.instances {
		if inst.ID == id {
			return inst
		}
	}
	return nil
}
