package surface

import "github.com/quakesoft/qse/geom"

// planeEq2D is the screen-space depth (1/z) and texture (u/z, v/z)
// equation type spec.md §4.6 step 4 names, shared verbatim with the
// rasterizer (package raster) as geom.AffineEq2D so both packages evaluate
// the exact same fitted function.
type planeEq2D = geom.AffineEq2D

// fitPlaneEq2D solves for the unique affine function through three
// (screen-point, value) samples. See geom.FitAffineEq2D.
func fitPlaneEq2D(p0, p1, p2 geom.Vec2, f0, f1, f2 float64) (planeEq2D, bool) {
	return geom.FitAffineEq2D(p0, p1, p2, f0, f1, f2)
}
