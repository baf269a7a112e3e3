// Package raster is the tile-local polygon/triangle fill core (spec.md
// §4.7): fixed-point edge walking, three texture-coordinate interpolation
// modes, a per-pixel depth test, and the five blending modes, dispatched
// one rasterizer instance per screen tile (package internal/tiling).
//
// Directly grounded on and adapted from the teacher's internal/raster
// (raster.go's edge/active-edge-table scanline structure, hairline_types.go's
// FDot16/FDot6 fixed-point conventions, reused here rather than copied) and
// the top-level raster/edge.go active-edge-table shape, rewritten to walk
// fixed-point coordinates and to evaluate the already-fitted screen-space
// depth/texture equations (package surface) instead of interpolating
// per-vertex attributes.
package raster

import (
	"github.com/quakesoft/qse/geom"
	"github.com/quakesoft/qse/internal/color"
)

// Equation is a screen-space affine function A*x + B*y + K, the type
// surface.Surface's Depth/TexU/TexV fields carry (spec.md §4.6 step 4).
type Equation = geom.AffineEq2D

// TCMode selects how a scanline span recovers (u, v) from the fitted
// u/z, v/z, 1/z equations (spec.md §4.7).
type TCMode int

const (
	// TCAffine treats (u, v) as linear in screen space across the span,
	// stepped from one exact perspective-divided sample using the span's
	// local derivative -- the cheapest mode, valid when depth barely
	// varies across the polygon.
	TCAffine TCMode = iota
	// TCLineZCorrected perspective-divides once at each end of a
	// scanline span and interpolates linearly between those two exact
	// values across the span.
	TCLineZCorrected
	// TCFullPerspective perspective-divides at every pixel: the exact
	// result, at the highest per-pixel cost.
	TCFullPerspective
)

// MaxAffineTexelError is the calibration spec.md §4.7 names: "a
// projected-TC-along-longest-edge error test stays under 0.75 texels"
// selects TCAffine.
const MaxAffineTexelError = 0.75

// BlendMode is one of the five per-pixel compositing modes spec.md §4.7
// names, applied after the depth test on a write.
type BlendMode int

const (
	BlendNone BlendMode = iota
	BlendAverage
	BlendAdditive
	BlendAlphaTest
	BlendAlphaBlend
)

// AlphaTestThreshold is the alpha cutoff BlendAlphaTest discards below.
const AlphaTestThreshold = 0.5

// CoordRangeLimit bounds screen coordinates accepted for fixed-point
// conversion (spec.md §4.7: "inputs outside a calibrated coordinate range
// (≈ ±8192) are rejected before conversion to avoid overflow").
const CoordRangeLimit = 8192

// Sampler fetches the composited color for a polygon/triangle at texture
// coordinate (u, v); surface.Surface-backed fills sample a prebuilt texel
// rectangle, while decal/dynamic-mesh fills may sample a material directly.
type Sampler func(u, v float64) color.ColorF32

func inCoordRange(x, y float64) bool {
	return x > -CoordRangeLimit && x < CoordRangeLimit && y > -CoordRangeLimit && y < CoordRangeLimit
}
