// Package export renders optimize results into developer-facing artifacts:
// an SVG picture of the board, a JSON layout document, and a DOT rendering
// of the signal chain. These are debugging and hand-off formats, not the
// editor UI.
package export

import (
	"bytes"
	"fmt"

	"github.com/pedalstack/pedalstack/pkg/board"
	"github.com/pedalstack/pedalstack/pkg/conflict"
	"github.com/pedalstack/pedalstack/pkg/route"
)

// pxPerInch scales board inches to SVG pixels.
const pxPerInch = 20.0

type SVGOption func(*svgRenderer)

type svgRenderer struct {
	routes    []route.Route
	conflicts []conflict.Conflict
	labels    bool
}

// WithRoutes draws the cable polylines.
func WithRoutes(rs []route.Route) SVGOption {
	return func(r *svgRenderer) { r.routes = rs }
}

// WithConflicts highlights the instances involved in conflicts.
func WithConflicts(cs []conflict.Conflict) SVGOption {
	return func(r *svgRenderer) { r.conflicts = cs }
}

// WithLabels prints instance IDs on the footprints.
func WithLabels() SVGOption {
	return func(r *svgRenderer) { r.labels = true }
}

// RenderSVG draws the board, rails, placed footprints, and optionally routes
// and conflicts. The board's front edge (y = 0) is at the bottom of the
// picture.
func RenderSVG(b *board.Board, instances []*board.PedalInstance, layout board.Layout, opts ...SVGOption) []byte {
	r := svgRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	flagged := make(map[string]bool)
	for _, c := range r.conflicts {
		for _, id := range c.Instances() {
			flagged[id] = true
		}
	}

	w := b.Width * pxPerInch
	h := b.Depth * pxPerInch
	// SVG y grows downward; board y grows toward the back.
	flipY := func(y float64) float64 { return h - y*pxPerInch }

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		w, h, w, h)
	fmt.Fprintf(&buf, `  <rect x="0" y="0" width="%.1f" height="%.1f" fill="#2b2b2b"/>`+"\n", w, h)

	for _, rail := range b.Rails {
		rb := rail.Bounds
		fmt.Fprintf(&buf, `  <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="none" stroke="#555" stroke-dasharray="6,4"/>`+"\n",
			rb.X*pxPerInch, flipY(rb.MaxY()), rb.Width*pxPerInch, rb.Height*pxPerInch)
	}

	byID := make(map[string]*board.PedalInstance, len(instances))
	for _, inst := range instances {
		byID[inst.ID] = inst
	}
	for _, id := range layout.IDs() {
		inst, ok := byID[id]
		if !ok {
			continue
		}
		p := layout[id]
		bounds := board.Bounds(inst, p)
		stroke := "#9ccc65"
		if flagged[id] {
			stroke = "#ef5350"
		}
		fmt.Fprintf(&buf, `  <rect id="pedal-%s" x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="#4a4a4a" stroke="%s" stroke-width="2"/>`+"\n",
			id, bounds.X*pxPerInch, flipY(bounds.MaxY()), bounds.Width*pxPerInch, bounds.Height*pxPerInch, stroke)
		for _, j := range inst.Footprint.Jacks {
			pos := board.JackPosition(inst, p, j)
			fmt.Fprintf(&buf, `  <circle cx="%.1f" cy="%.1f" r="3" fill="#ffb74d"/>`+"\n",
				pos.X*pxPerInch, flipY(pos.Y))
		}
		if r.labels {
			c := bounds.Center()
			fmt.Fprintf(&buf, `  <text x="%.1f" y="%.1f" fill="#eee" font-size="12" text-anchor="middle">%s</text>`+"\n",
				c.X*pxPerInch, flipY(c.Y), id)
		}
	}

	for _, rt := range r.routes {
		if len(rt.Points) < 2 {
			continue
		}
		var pts bytes.Buffer
		for i, p := range rt.Points {
			if i > 0 {
				pts.WriteByte(' ')
			}
			fmt.Fprintf(&pts, "%.1f,%.1f", p.X*pxPerInch, flipY(p.Y))
		}
		stroke := "#64b5f6"
		dash := ""
		if rt.Direct {
			dash = ` stroke-dasharray="4,4"`
		}
		if rt.Blocked {
			stroke = "#ef5350"
		}
		fmt.Fprintf(&buf, `  <polyline points="%s" fill="none" stroke="%s" stroke-width="2"%s/>`+"\n",
			pts.String(), stroke, dash)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}
