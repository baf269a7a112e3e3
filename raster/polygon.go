package raster

import (
	"math"

	"github.com/quakesoft/qse/geom"
	"github.com/quakesoft/qse/internal/tiling"
)

// chain is one boundary walk of a convex polygon's edge list (top vertex
// to bottom vertex), plus a cursor into which edge covers the current
// scanline.
type chain struct {
	edges []edge
	cur   int
}

func (c *chain) advanceTo(y int) *edge {
	for c.cur < len(c.edges) && y >= c.edges[c.cur].yBottom {
		c.cur++
	}
	if c.cur >= len(c.edges) {
		return nil
	}
	e := &c.edges[c.cur]
	if y < e.yTop {
		return nil
	}
	return e
}

// FillConvexPolygon rasterizes poly (screen-space, convex, CW or CCW) into
// tile, per spec.md §4.7: edge-walk from the minimum-y vertex, per-scanline
// span, depth test, TC-mode texture fetch, blend. depthEq/uEq/vEq are the
// already-fitted 1/z, u/z, v/z equations (package surface). Vertices
// outside CoordRangeLimit reject the whole polygon before any fixed-point
// conversion.
func FillConvexPolygon(tile *tiling.Tile, poly geom.Polygon2, depthEq, uEq, vEq Equation, mode TCMode, blend BlendMode, sample Sampler) {
	if len(poly) < 3 {
		return
	}
	for _, p := range poly {
		if !inCoordRange(p.X, p.Y) {
			return
		}
	}

	top := 0
	for i, p := range poly {
		if p.Y < poly[top].Y {
			top = i
		}
	}

	a := &chain{edges: buildChain(poly, top, 1)}
	b := &chain{edges: buildChain(poly, top, -1)}
	if len(a.edges) == 0 || len(b.edges) == 0 {
		return
	}

	yTop := int(math.Floor(poly[top].Y))
	yLo := max(yTop, tile.OriginY)
	yHi := min(tile.OriginY+tile.Height, polygonYBottom(a, b))

	for y := yLo; y < yHi; y++ {
		ea, eb := a.advanceTo(y), b.advanceTo(y)
		if ea == nil || eb == nil {
			continue
		}
		xa, xb := ea.xAt(y), eb.xAt(y)
		if xa > xb {
			xa, xb = xb, xa
		}
		spanStart := max(int(math.Round(xa)), tile.OriginX)
		spanEnd := min(int(math.Round(xb)), tile.OriginX+tile.Width)
		if spanStart >= spanEnd {
			continue
		}
		fillSpan(tile, spanStart, spanEnd, y, depthEq, uEq, vEq, mode, blend, sample)
	}
}

// polygonYBottom returns the largest yBottom among either chain's edges:
// the scanline just past the polygon's lowest vertex.
func polygonYBottom(a, b *chain) int {
	h := 0
	for _, e := range a.edges {
		if e.yBottom > h {
			h = e.yBottom
		}
	}
	for _, e := range b.edges {
		if e.yBottom > h {
			h = e.yBottom
		}
	}
	return h
}

func fillSpan(tile *tiling.Tile, x0, x1, y int, depthEq, uEq, vEq Equation, mode TCMode, blend BlendMode, sample Sampler) {
	fx := float64(x0) + 0.5
	fy := float64(y) + 0.5

	switch mode {
	case TCAffine:
		fillSpanAffine(tile, x0, x1, fx, fy, depthEq, uEq, vEq, blend, sample)
	case TCLineZCorrected:
		fillSpanLineZCorrected(tile, x0, x1, fy, depthEq, uEq, vEq, blend, sample)
	default:
		fillSpanFullPerspective(tile, x0, x1, fy, depthEq, uEq, vEq, blend, sample)
	}
}

func fillSpanFullPerspective(tile *tiling.Tile, x0, x1 int, fy float64, depthEq, uEq, vEq Equation, blend BlendMode, sample Sampler) {
	for x := x0; x < x1; x++ {
		fx := float64(x) + 0.5
		writePixel(tile, x, fy, fx, depthEq, uEq, vEq, blend, sample)
	}
}

func fillSpanLineZCorrected(tile *tiling.Tile, x0, x1 int, fy float64, depthEq, uEq, vEq Equation, blend BlendMode, sample Sampler) {
	if x1 <= x0 {
		return
	}
	startX, endX := float64(x0)+0.5, float64(x1-1)+0.5
	d0 := depthEq.Eval(startX, fy)
	d1 := depthEq.Eval(endX, fy)
	u0, v0 := safeDiv(uEq.Eval(startX, fy), d0), safeDiv(vEq.Eval(startX, fy), d0)
	u1, v1 := safeDiv(uEq.Eval(endX, fy), d1), safeDiv(vEq.Eval(endX, fy), d1)
	span := endX - startX
	for x := x0; x < x1; x++ {
		fx := float64(x) + 0.5
		t := 0.0
		if span > 0 {
			t = (fx - startX) / span
		}
		invZ := depthEq.Eval(fx, fy)
		u := u0 + (u1-u0)*t
		v := v0 + (v1-v0)*t
		writePixelUV(tile, x, int(fy), invZ, u, v, blend, sample)
	}
}

func fillSpanAffine(tile *tiling.Tile, x0, x1 int, fx0, fy float64, depthEq, uEq, vEq Equation, blend BlendMode, sample Sampler) {
	d0 := depthEq.Eval(fx0, fy)
	u0, v0 := safeDiv(uEq.Eval(fx0, fy), d0), safeDiv(vEq.Eval(fx0, fy), d0)
	dudx, dvdx := texDerivAt(depthEq, uEq, vEq, fx0, fy)
	for x := x0; x < x1; x++ {
		fx := float64(x) + 0.5
		dx := fx - fx0
		invZ := depthEq.Eval(fx, fy)
		u := u0 + dudx*dx
		v := v0 + dvdx*dx
		writePixelUV(tile, x, int(fy), invZ, u, v, blend, sample)
	}
}

func writePixel(tile *tiling.Tile, x int, fy, fx float64, depthEq, uEq, vEq Equation, blend BlendMode, sample Sampler) {
	invZ := depthEq.Eval(fx, fy)
	u := safeDiv(uEq.Eval(fx, fy), invZ)
	v := safeDiv(vEq.Eval(fx, fy), invZ)
	writePixelUV(tile, x, int(fy), invZ, u, v, blend, sample)
}

func writePixelUV(tile *tiling.Tile, x, y int, invZ, u, v float64, blend BlendMode, sample Sampler) {
	lx, ly := x-tile.OriginX, y-tile.OriginY
	if !tile.DepthTest(lx, ly, float32(invZ)) {
		return
	}
	src := sample(u, v)
	dst := tile.At(lx, ly)
	out, keep := applyBlend(blend, src, dst)
	if !keep {
		return
	}
	tile.Write(lx, ly, out, float32(invZ))
}

// texDerivAt is the same quotient-rule derivative surface.texDerivativeAt
// computes for mip selection, duplicated here (rather than shared) because
// TCAffine needs only the x-partials and the two packages intentionally
// don't depend on each other.
func texDerivAt(depthEq, uEq, vEq Equation, x, y float64) (dudx, dvdx float64) {
	d := depthEq.Eval(x, y)
	if d == 0 {
		d = 1e-9
	}
	nu := uEq.Eval(x, y)
	nv := vEq.Eval(x, y)
	d2 := d * d
	return (uEq.A*d - nu*depthEq.A) / d2, (vEq.A*d - nv*depthEq.A) / d2
}

func safeDiv(n, d float64) float64 {
	if d == 0 {
		return 0
	}
	return n / d
}
