package raster

import (
	"github.com/quakesoft/qse/geom"
	fixed "github.com/quakesoft/qse/internal/raster"
)

// edge is a polygon boundary segment in 16.16 fixed point, the same
// YMin/YMax/XAtYMin/DXDY shape as the top-level raster/edge.go Edge this
// replaces, rewritten from float32 to fixed.FDot16 per spec.md §4.7's
// "numeric substrate is 16.16 fixed point for screen coordinates".
type edge struct {
	yTop, yBottom int          // integer scanline range [yTop, yBottom)
	x             fixed.FDot16 // current X, stepped scanline by scanline
	dxdy          fixed.FDot16 // per-scanline X step
}

// buildChain walks poly's vertex ring from the index of its topmost
// (minimum-Y) vertex in direction dir (+1 or -1), producing one edge per
// vertex pair until the bottommost vertex is reached -- spec.md §4.7:
// "find the vertex of minimum y; walk left and right edges". Called twice
// per polygon, once per direction, to build the two boundary chains a
// convex polygon's scanline fill needs.
func buildChain(poly []geom.Vec2, top int, dir int) []edge {
	n := len(poly)
	if n < 3 {
		return nil
	}
	var edges []edge
	i := top
	for steps := 0; steps < n; steps++ {
		j := (i + dir + n) % n
		p0, p1 := poly[i], poly[j]
		if p1.Y > p0.Y {
			e := newEdge(p0, p1)
			if e != nil {
				edges = append(edges, *e)
			}
		} else if p1.Y < p0.Y {
			break
		}
		i = j
	}
	return edges
}

func newEdge(p0, p1 geom.Vec2) *edge {
	y0, y1 := p0.Y, p1.Y
	x0, x1 := p0.X, p1.X
	yTop := int(y0 + 0.5)
	yBottom := int(y1 + 0.5)
	if yBottom <= yTop {
		return nil
	}
	dy := y1 - y0
	dxdyF := (x1 - x0) / dy
	// Half-pixel bias: sample each scanline at its center.
	startY := float64(yTop) + 0.5
	xAtStart := x0 + (startY-y0)*dxdyF
	return &edge{
		yTop:    yTop,
		yBottom: yBottom,
		x:       fixed.FloatToFDot16(xAtStart),
		dxdy:    fixed.FloatToFDot16(dxdyF),
	}
}

// xAt returns the edge's X position (in pixels) at integer scanline y,
// advancing from its start via repeated dxdy steps.
func (e *edge) xAt(y int) float64 {
	steps := fixed.FDot16(y - e.yTop)
	return fixed.FDot16ToFloat(e.x + steps*e.dxdy)
}
