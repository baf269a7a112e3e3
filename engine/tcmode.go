package engine

import (
	"math"

	"github.com/quakesoft/qse/raster"
	"github.com/quakesoft/qse/surface"
)

// SelectTCMode resolves spec.md §4.7's affine-mode error-bound test for one
// built surface ("a projected-TC-along-longest-edge error test stays under
// 0.75 texels selects TCAffine"): it estimates the worst-case affine texel
// error across the surface's screen bound from the already-fitted 1/z,
// u/z, v/z equations, falling back to a more exact mode once that estimate
// crosses raster.MaxAffineTexelError.
//
// spec.md names the 0.75-texel threshold but not the error formula itself
// (see DESIGN.md). The estimate used here treats the affine approximation
// error of a linear/linear (u/z over 1/z) function across an interval as
// scaling with the interval's depth change times its texcoord range times
// its length, normalized by the squared average depth -- the curvature a
// Mobius-shaped texture-coordinate function picks up is driven by exactly
// those three quantities.
func SelectTCMode(s *surface.Surface) raster.TCMode {
	b := s.ScreenBound
	span := math.Max(b.MaxX-b.MinX, b.MaxY-b.MinY)
	if span <= 0 {
		return raster.TCAffine
	}

	z0 := s.Depth.Eval(b.MinX, b.MinY)
	z1 := s.Depth.Eval(b.MaxX, b.MaxY)
	if z0 <= 0 || z1 <= 0 {
		return raster.TCFullPerspective
	}
	zAvg := (z0 + z1) / 2

	du := s.TexU.Eval(b.MaxX, b.MaxY)/z1 - s.TexU.Eval(b.MinX, b.MinY)/z0
	dv := s.TexV.Eval(b.MaxX, b.MaxY)/z1 - s.TexV.Eval(b.MinX, b.MinY)/z0
	dz := z1 - z0

	denom := 8 * zAvg * zAvg
	errU := math.Abs(dz*du) * span / denom
	errV := math.Abs(dz*dv) * span / denom
	errMax := math.Max(errU, errV)

	switch {
	case errMax <= raster.MaxAffineTexelError:
		return raster.TCAffine
	case errMax <= raster.MaxAffineTexelError*4:
		return raster.TCLineZCorrected
	default:
		return raster.TCFullPerspective
	}
}
