package geom

// AffineEq2D is a screen-space affine function f(x,y) = A*x + B*y + K. The
// rasterizer and surface builder both use it: a planar polygon's depth
// (1/z) and perspective-divided texture coordinates (u/z, v/z) are each
// exactly affine over screen space, so one fitted plane per quantity
// reproduces it everywhere inside the polygon, not just at its vertices.
type AffineEq2D struct {
	A, B, K float64
}

// Eval evaluates the fitted function at screen point (x, y).
func (e AffineEq2D) Eval(x, y float64) float64 {
	return e.A*x + e.B*y + e.K
}

// FitAffineEq2D solves for the unique affine function through three
// (screen-point, value) samples, via the same triple-solve shape as
// IntersectThreePlanes -- a 2D linear system via Cramer's rule rather than
// a 3D one. ok is false when the three screen points are collinear (a
// degenerate, zero-area projection).
func FitAffineEq2D(p0, p1, p2 Vec2, f0, f1, f2 float64) (AffineEq2D, bool) {
	dx1, dy1 := p1.X-p0.X, p1.Y-p0.Y
	dx2, dy2 := p2.X-p0.X, p2.Y-p0.Y
	df1 := f1 - f0
	df2 := f2 - f0

	det := dx1*dy2 - dx2*dy1
	if det > -1e-12 && det < 1e-12 {
		return AffineEq2D{}, false
	}

	a := (df1*dy2 - df2*dy1) / det
	b := (dx1*df2 - dx2*df1) / det
	k := f0 - a*p0.X - b*p0.Y
	return AffineEq2D{A: a, B: b, K: k}, true
}
