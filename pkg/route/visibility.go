package route

import (
	"math"

	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/pedalstack/pedalstack/pkg/geometry"
)

// shortestVisible finds the shortest obstacle-avoiding path from src to dst
// over the visibility graph spanned by the obstacle corners. Returns false if
// the destination is unreachable (the jack is fully boxed in).
func shortestVisible(src, dst geometry.Point, obstacles []geometry.Rect) ([]geometry.Point, bool) {
	nodes := visibilityNodes(src, dst, obstacles)

	g := simple.NewWeightedUndirectedGraph(0, math.Inf(1))
	for id := range nodes {
		g.AddNode(simple.Node(id))
	}

	// Connect every mutually visible node pair, weighted by distance.
	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			seg := geometry.Segment{A: nodes[i], B: nodes[j]}
			if seg.Length() < geometry.Epsilon {
				continue
			}
			if segmentBlocked(seg, obstacles) {
				continue
			}
			g.SetWeightedEdge(simple.WeightedEdge{
				F: simple.Node(i),
				T: simple.Node(j),
				W: seg.Length(),
			})
		}
	}

	const srcID, dstID = 0, 1
	shortest := path.DijkstraFrom(simple.Node(srcID), g)
	nodePath, weight := shortest.To(dstID)
	if math.IsInf(weight, 1) || len(nodePath) == 0 {
		return nil, false
	}

	points := make([]geometry.Point, len(nodePath))
	for i, n := range nodePath {
		points[i] = nodes[n.ID()]
	}
	return points, true
}

// visibilityNodes lists the graph's vertices: src and dst first, then every
// obstacle corner pushed just off the boundary so corner-to-corner segments
// do not graze the body they belong to.
func visibilityNodes(src, dst geometry.Point, obstacles []geometry.Rect) []geometry.Point {
	nodes := make([]geometry.Point, 0, 2+4*len(obstacles))
	nodes = append(nodes, src, dst)

	const nudge = 1e-6
	for _, ob := range obstacles {
		for i, c := range ob.Corners() {
			// Push each corner outward along its diagonal.
			switch i {
			case 0:
				c.X -= nudge
				c.Y -= nudge
			case 1:
				c.X += nudge
				c.Y -= nudge
			case 2:
				c.X += nudge
				c.Y += nudge
			case 3:
				c.X -= nudge
				c.Y += nudge
			}
			nodes = append(nodes, c)
		}
	}
	return nodes
}

// simplify collapses runs of collinear points into single segments, yielding
// the minimal polyline for the path.
func simplify(points []geometry.Point) []geometry.Point {
	if len(points) <= 2 {
		return points
	}
	out := points[:1]
	for i := 1; i+1 < len(points); i++ {
		if !collinear(out[len(out)-1], points[i], points[i+1]) {
			out = append(out, points[i])
		}
	}
	return append(out, points[len(points)-1])
}

// collinear reports whether b lies on the line through a and c, within the
// geometric tolerance scaled by the segment length.
func collinear(a, b, c geometry.Point) bool {
	area := (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
	return math.Abs(area) < 1e-7*(a.Distance(c)+1)
}
