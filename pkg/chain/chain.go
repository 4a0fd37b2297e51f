// Package chain models the signal chain: the required ordered connectivity
// between pedal instances, and the four-cable-method (4CM) routing mode that
// splices an amplifier's effects loop into the chain at a chosen pedal
// boundary.
//
// The edge set is always derived from the chain order and the 4CM state, never
// stored, so toggling 4CM off restores the original edge set exactly.
package chain

import (
	"fmt"
	"slices"

	"github.com/pedalstack/pedalstack/pkg/errors"
)

// EndpointKind identifies what an edge endpoint connects to.
type EndpointKind string

// Endpoint kinds.
const (
	EndpointPedalOutput EndpointKind = "pedal_output"
	EndpointPedalInput  EndpointKind = "pedal_input"
	EndpointAmpSend     EndpointKind = "amp_send"
	EndpointAmpReturn   EndpointKind = "amp_return"
	EndpointAmpInput    EndpointKind = "amp_input"
)

// Endpoint is one end of a required cable. Instance is empty for amp
// endpoints.
type Endpoint struct {
	Kind     EndpointKind `json:"kind" bson:"kind"`
	Instance string       `json:"instance,omitempty" bson:"instance,omitempty"`
}

// String implements fmt.Stringer.
func (e Endpoint) String() string {
	switch e.Kind {
	case EndpointPedalOutput:
		return e.Instance + ".output"
	case EndpointPedalInput:
		return e.Instance + ".input"
	case EndpointAmpSend:
		return "amp.send"
	case EndpointAmpReturn:
		return "amp.return"
	case EndpointAmpInput:
		return "amp.input"
	}
	return string(e.Kind)
}

// Edge is one required cable from a source jack to a destination jack.
type Edge struct {
	From Endpoint `json:"from" bson:"from"`
	To   Endpoint `json:"to" bson:"to"`
}

// String implements fmt.Stringer.
func (e Edge) String() string {
	return fmt.Sprintf("%s -> %s", e.From, e.To)
}

// Chain is an ordered signal chain over pedal instance IDs. The zero value is
// not usable; construct with New.
type Chain struct {
	order      []string
	fourCable  bool
	loopBefore string // instance whose input is fed from the amp's return
}

// New creates a chain over the given instance IDs, in signal order.
// IDs must be unique and non-empty.
func New(ids ...string) (*Chain, error) {
	if len(ids) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidChain, "chain has no instances")
	}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if err := errors.ValidateID(id); err != nil {
			return nil, err
		}
		if seen[id] {
			return nil, errors.New(errors.ErrCodeInvalidChain, "duplicate instance %q in chain", id)
		}
		seen[id] = true
	}
	return &Chain{order: slices.Clone(ids)}, nil
}

// Order returns the instance IDs in signal order.
func (c *Chain) Order() []string {
	return slices.Clone(c.order)
}

// Len returns the number of instances in the chain.
func (c *Chain) Len() int { return len(c.order) }

// Index returns the position of an instance in the chain, or -1.
func (c *Chain) Index(id string) int {
	return slices.Index(c.order, id)
}

// FourCable reports whether four-cable-method mode is enabled.
func (c *Chain) FourCable() bool { return c.fourCable }

// LoopBefore returns the instance whose input is fed from the amp's effects
// return, or empty when 4CM is off.
func (c *Chain) LoopBefore() string {
	if !c.fourCable {
		return ""
	}
	return c.loopBefore
}

// EnableFourCable splices the amp's effects loop into the chain immediately
// before the given instance: the preceding pedal feeds the amp's send, and
// the amp's return feeds the given instance. The chain's last pedal connects
// to the amp's front input. Enabling with the same boundary twice is a no-op;
// the boundary must not be the first pedal (nothing would precede the loop).
func (c *Chain) EnableFourCable(beforeID string) error {
	idx := c.Index(beforeID)
	if idx < 0 {
		return errors.New(errors.ErrCodeInvalidChain, "loop insertion point %q is not in the chain", beforeID)
	}
	if idx == 0 {
		return errors.New(errors.ErrCodeInvalidChain,
			"loop insertion point %q is the first pedal; no pedal precedes the loop", beforeID)
	}
	c.fourCable = true
	c.loopBefore = beforeID
	return nil
}

// DisableFourCable turns four-cable-method mode off. The derived edge set
// reverts to the plain chain edges; disabling twice is a no-op.
func (c *Chain) DisableFourCable() {
	c.fourCable = false
	c.loopBefore = ""
}

// Edges derives the required edge set from the chain order and 4CM state.
//
// Plain mode: one edge per adjacent pedal pair, n-1 edges for n pedals.
//
// 4CM mode: the direct edge into the loop boundary pedal is replaced by a
// send edge (preceding pedal -> amp send) and a return edge (amp return ->
// boundary pedal), and the final pedal gains a terminal edge to the amp's
// front input. For a 3-pedal chain with the loop before pedal 2 that is
// exactly 4 edges, none of them the original direct edge.
func (c *Chain) Edges() []Edge {
	edges := make([]Edge, 0, len(c.order)+1)

	for i := 0; i+1 < len(c.order); i++ {
		from, to := c.order[i], c.order[i+1]
		if c.fourCable && to == c.loopBefore {
			edges = append(edges,
				Edge{
					From: Endpoint{Kind: EndpointPedalOutput, Instance: from},
					To:   Endpoint{Kind: EndpointAmpSend},
				},
				Edge{
					From: Endpoint{Kind: EndpointAmpReturn},
					To:   Endpoint{Kind: EndpointPedalInput, Instance: to},
				},
			)
			continue
		}
		edges = append(edges, Edge{
			From: Endpoint{Kind: EndpointPedalOutput, Instance: from},
			To:   Endpoint{Kind: EndpointPedalInput, Instance: to},
		})
	}

	if c.fourCable {
		edges = append(edges, Edge{
			From: Endpoint{Kind: EndpointPedalOutput, Instance: c.order[len(c.order)-1]},
			To:   Endpoint{Kind: EndpointAmpInput},
		})
	}

	return edges
}
