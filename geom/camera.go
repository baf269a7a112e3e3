package geom

import "math"

// Camera is the runtime view transform: an orthonormal basis plus a
// projection, generalizing the teacher's 2D affine Matrix (value-type,
// composable via small methods) to the 3D camera-space transform and
// perspective divide spec.md §4.5/§4.6 drive visibility and surface
// projection from.
type Camera struct {
	Pos                Vec3
	Right, Up, Forward Vec3 // orthonormal basis; Forward is the view direction
	FovY               float64 // radians
	Near               float64
	ScreenW, ScreenH   float64
}

// ToCameraSpace transforms a world point into camera space: X/Y are the
// right/up components, Z is depth along Forward.
func (c Camera) ToCameraSpace(p Vec3) Vec3 {
	d := p.Sub(c.Pos)
	return Vec3{X: d.Dot(c.Right), Y: d.Dot(c.Up), Z: d.Dot(c.Forward)}
}

// ToWorldSpace is the inverse of ToCameraSpace: since Right/Up/Forward are
// orthonormal, the inverse rotation is the transpose, applied here as three
// dot-free scaled adds. Used to recover exact world positions for vertices
// introduced by near-plane clipping, whose camera-space coordinates are
// known but whose world coordinates were never stored.
func (c Camera) ToWorldSpace(camP Vec3) Vec3 {
	return c.Pos.Add(c.Right.Scale(camP.X)).Add(c.Up.Scale(camP.Y)).Add(c.Forward.Scale(camP.Z))
}

// screenDistance is the focal length in pixels implied by FovY and
// ScreenH, so that a point at depth z subtending the full vertical FOV
// maps to the screen's vertical extent.
func (c Camera) screenDistance() float64 {
	return (c.ScreenH / 2) / math.Tan(c.FovY/2)
}

// Project perspective-divides a camera-space point to a screen-space 2D
// coordinate plus its reciprocal depth (1/z, matching spec.md §4.6 step 4's
// depth equation substrate). ok is false when camP is at or behind the
// near plane -- callers must clip before projecting.
func (c Camera) Project(camP Vec3) (screen Vec2, invZ float64, ok bool) {
	if camP.Z < c.Near {
		return Vec2{}, 0, false
	}
	invZ = 1 / camP.Z
	f := c.screenDistance()
	sx := camP.X*invZ*f + c.ScreenW/2
	sy := -camP.Y*invZ*f + c.ScreenH/2
	return Vec2{X: sx, Y: sy}, invZ, true
}

// ProjectPolygon clips a camera-space polygon against the near plane, then
// projects each surviving vertex to screen space. Returns an empty polygon
// if clipping leaves fewer than 3 vertices.
func (c Camera) ProjectPolygon(camSpace Polygon3) Polygon2 {
	clipped := Clip3DByZNear(camSpace, c.Near)
	if len(clipped) < 3 {
		return nil
	}
	out := make(Polygon2, 0, len(clipped))
	for _, v := range clipped {
		sp, _, ok := c.Project(v)
		if !ok {
			continue
		}
		out = append(out, sp)
	}
	if len(out) < 3 {
		return nil
	}
	return out
}

// ScreenBounds returns the full-screen AABB2, the seed clip polygon for
// the camera leaf (spec.md §4.5: "Seed the leaf with the full-screen 2D
// clipping polygon").
func (c Camera) ScreenBounds() AABB2 {
	return AABB2{MinX: 0, MinY: 0, MaxX: c.ScreenW, MaxY: c.ScreenH}
}
