package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pedalstack/pedalstack/pkg/board"
	"github.com/pedalstack/pedalstack/pkg/chain"
	"github.com/pedalstack/pedalstack/pkg/conflict"
	"github.com/pedalstack/pedalstack/pkg/engine"
	"github.com/pedalstack/pedalstack/pkg/errors"
	"github.com/pedalstack/pedalstack/pkg/geometry"
	"github.com/pedalstack/pedalstack/pkg/route"
	"github.com/pedalstack/pedalstack/pkg/session"
)

// createSessionRequest creates a session from catalog ids. Pedal order is
// signal-chain order.
type createSessionRequest struct {
	BoardID string               `json:"board_id"`
	AmpID   string               `json:"amp_id,omitempty"`
	Pedals  []createPedalRequest `json:"pedals"`
}

type createPedalRequest struct {
	InstanceID string `json:"instance_id"`
	PedalID    string `json:"pedal_id"`
}

type createSessionResponse struct {
	SessionID string `json:"session_id"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if len(req.Pedals) == 0 {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "session requires at least one pedal"))
		return
	}
	ctx := r.Context()

	boardRec, err := s.catalog.Board(ctx, req.BoardID)
	if err != nil {
		writeError(w, err)
		return
	}
	b, err := boardRec.Board()
	if err != nil {
		writeError(w, err)
		return
	}

	var amp *board.Amp
	if req.AmpID != "" {
		ampRec, err := s.catalog.Amp(ctx, req.AmpID)
		if err != nil {
			writeError(w, err)
			return
		}
		if amp, err = ampRec.Amp(); err != nil {
			writeError(w, err)
			return
		}
	}

	instances := make([]*board.PedalInstance, 0, len(req.Pedals))
	order := make([]string, 0, len(req.Pedals))
	for _, p := range req.Pedals {
		rec, err := s.catalog.Pedal(ctx, p.PedalID)
		if err != nil {
			writeError(w, err)
			return
		}
		fp, err := rec.Footprint()
		if err != nil {
			writeError(w, err)
			return
		}
		instances = append(instances, &board.PedalInstance{ID: p.InstanceID, Footprint: fp})
		order = append(order, p.InstanceID)
	}

	ch, err := chain.New(order...)
	if err != nil {
		writeError(w, err)
		return
	}
	sess, err := session.New(b, amp, instances, ch)
	if err != nil {
		writeError(w, err)
		return
	}
	s.sessions.Add(sess)

	s.logger.Info("session created", "session", sess.ID, "pedals", len(instances))
	writeJSON(w, http.StatusCreated, createSessionResponse{SessionID: sess.ID})
}

// sessionView is the GET representation of a session.
type sessionView struct {
	ID         string              `json:"id"`
	Order      []string            `json:"order"`
	FourCable  bool                `json:"four_cable"`
	LoopBefore string              `json:"loop_before,omitempty"`
	Layout     board.Layout        `json:"layout"`
	Routes     []route.Route       `json:"routes,omitempty"`
	Conflicts  []conflict.Conflict `json:"conflicts,omitempty"`
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	_, state := sess.Snapshot()
	writeJSON(w, http.StatusOK, sessionView{
		ID:         sess.ID,
		Order:      state.Chain.Order(),
		FourCable:  state.Chain.FourCable(),
		LoopBefore: state.Chain.LoopBefore(),
		Layout:     state.Layout,
		Routes:     state.Routes,
		Conflicts:  state.Conflicts,
	})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	s.sessions.Delete(r.Context(), chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

type optimizeRequest struct {
	Refresh bool `json:"refresh,omitempty"`
}

// optimizeResponse wraps the engine result with whether it was applied to
// the session (false when an edit superseded the pass).
type optimizeResponse struct {
	Applied bool           `json:"applied"`
	Result  *engine.Result `json:"result"`
}

func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	var req optimizeRequest
	if r.ContentLength > 0 {
		if err := decode(r, &req); err != nil {
			writeError(w, err)
			return
		}
	}

	passCtx, epoch := sess.BeginPass(r.Context())
	_, state := sess.Snapshot()

	opts := s.opts
	opts.Refresh = req.Refresh
	result, err := s.runner.Execute(passCtx, engine.Problem{
		Board:     state.Board,
		Amp:       state.Amp,
		Instances: state.Instances,
		Chain:     state.Chain,
		Existing:  state.Layout,
	}, opts)
	if err != nil {
		writeError(w, err)
		return
	}

	applied := sess.ApplyResult(epoch, result.Layout, result.Routes, result.Conflicts)
	writeJSON(w, http.StatusOK, optimizeResponse{Applied: applied, Result: result})
}

func (s *Server) handleRoute(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	epoch, state := sess.Snapshot()

	routes, rerr := route.Plan(state.Layout, state.Board, state.Instances, state.Chain, state.Amp, s.opts.Route)
	if rerr != nil && routes == nil {
		writeError(w, rerr)
		return
	}
	conflicts := conflict.Detect(state.Instances, state.Layout, routes)
	sess.ApplyResult(epoch, state.Layout, routes, conflicts)

	writeJSON(w, http.StatusOK, sessionView{
		ID:        sess.ID,
		Order:     state.Chain.Order(),
		FourCable: state.Chain.FourCable(),
		Layout:    state.Layout,
		Routes:    routes,
		Conflicts: conflicts,
	})
}

func (s *Server) handleConflicts(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	_, state := sess.Snapshot()
	conflicts := conflict.Detect(state.Instances, state.Layout, state.Routes)
	writeJSON(w, http.StatusOK, map[string][]conflict.Conflict{"conflicts": conflicts})
}

// moveRequest is a drag override from the editor.
type moveRequest struct {
	InstanceID  string  `json:"instance_id"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Orientation int     `json:"orientation,omitempty"`
	Rail        string  `json:"rail,omitempty"`
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	var req moveRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	orient, err := board.OrientationFromDegrees(req.Orientation)
	if err != nil {
		writeError(w, err)
		return
	}

	placement := board.Placement{
		Position:    geometry.Point{X: req.X, Y: req.Y},
		Orientation: orient,
		Rail:        req.Rail,
	}
	if placement.Rail == "" {
		// The editor may omit the rail; infer it from the drop position so
		// the pinned placement stays valid for later optimize passes.
		_, state := sess.Snapshot()
		for _, inst := range state.Instances {
			if inst.ID == req.InstanceID {
				if id, ok := state.Board.RailAt(board.Bounds(inst, placement)); ok {
					placement.Rail = id
				}
				break
			}
		}
	}

	if err := sess.Move(req.InstanceID, placement); err != nil {
		writeError(w, err)
		return
	}

	// A drag is never rejected; any overlap it creates is surfaced as a
	// conflict immediately.
	_, state := sess.Snapshot()
	conflicts := conflict.Detect(state.Instances, state.Layout, nil)
	writeJSON(w, http.StatusOK, map[string][]conflict.Conflict{"conflicts": conflicts})
}

type fourCableRequest struct {
	Enable bool   `json:"enable"`
	Before string `json:"before,omitempty"`
}

func (s *Server) handleFourCable(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	var req fourCableRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := sess.SetFourCable(req.Enable, req.Before); err != nil {
		writeError(w, err)
		return
	}

	_, state := sess.Snapshot()
	writeJSON(w, http.StatusOK, sessionView{
		ID:         sess.ID,
		Order:      state.Chain.Order(),
		FourCable:  state.Chain.FourCable(),
		LoopBefore: state.Chain.LoopBefore(),
		Layout:     state.Layout,
	})
}
