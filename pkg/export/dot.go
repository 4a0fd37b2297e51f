package export

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"

	"github.com/pedalstack/pedalstack/pkg/chain"
	"github.com/pedalstack/pedalstack/pkg/errors"
)

// ChainDOT converts the signal chain's required edge set to Graphviz DOT.
// Amp endpoints become their own nodes, so a four-cable chain shows the
// loop splice explicitly.
func ChainDOT(ch *chain.Chain) string {
	var buf bytes.Buffer
	buf.WriteString("digraph chain {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  node [shape=box, style=rounded, fontsize=12];\n")
	buf.WriteString("\n")

	for _, id := range ch.Order() {
		fmt.Fprintf(&buf, "  %q;\n", id)
	}
	if ch.FourCable() {
		buf.WriteString("  \"amp.send\" [shape=ellipse];\n")
		buf.WriteString("  \"amp.return\" [shape=ellipse];\n")
		buf.WriteString("  \"amp.input\" [shape=ellipse];\n")
	}

	buf.WriteString("\n")
	for _, e := range ch.Edges() {
		fmt.Fprintf(&buf, "  %q -> %q;\n", nodeName(e.From), nodeName(e.To))
	}

	buf.WriteString("}\n")
	return buf.String()
}

// nodeName maps an endpoint to its DOT node: pedals by instance id, amp
// jacks by their fixed names.
func nodeName(ep chain.Endpoint) string {
	if ep.Instance != "" {
		return ep.Instance
	}
	return ep.String()
}

// RenderChainSVG renders the chain DOT to SVG using Graphviz.
func RenderChainSVG(ctx context.Context, ch *chain.Chain) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(ChainDOT(ch)))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "parse chain DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render chain")
	}
	return buf.Bytes(), nil
}
