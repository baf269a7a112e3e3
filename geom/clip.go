package geom

// Polygon3 is a convex, CCW (wrt its plane) vertex loop in world space.
// Builder-form polygons carry texture data alongside this ring; geom only
// ever touches the vertex loop, so higher layers embed Polygon3 by value.
type Polygon3 []Vec3

// SplitPolygon walks poly's edge ring against plane, inserting the
// line-plane intersection at every sign change, and routing on-plane
// vertices to both sides. It returns (front, back); a poly entirely on one
// side yields an empty slice for the other, matching spec.md invariant 9.
// Callers drop any result with fewer than 3 vertices (degenerate slivers).
func SplitPolygon(poly Polygon3, plane Plane) (front, back Polygon3) {
	n := len(poly)
	if n == 0 {
		return nil, nil
	}
	sides := make([]Side, n)
	for i, v := range poly {
		sides[i] = ClassifyPoint(v, plane)
	}
	for i := 0; i < n; i++ {
		cur := poly[i]
		curSide := sides[i]
		switch curSide {
		case Front:
			front = append(front, cur)
		case Back:
			back = append(back, cur)
		case OnPlane:
			front = append(front, cur)
			back = append(back, cur)
		}

		next := poly[(i+1)%n]
		nextSide := sides[(i+1)%n]
		if curSide == OnPlane || nextSide == OnPlane {
			continue
		}
		if curSide != nextSide {
			ipt, _, ok := IntersectLinePlane(cur, next, plane)
			if !ok {
				continue
			}
			front = append(front, ipt)
			back = append(back, ipt)
		}
	}
	return front, back
}

// Clip3DByPlane clips poly to the half-space in front of plane (Sutherland-
// Hodgman). The operation is idempotent when poly is already fully inside,
// per spec.md invariant 10.
func Clip3DByPlane(poly Polygon3, plane Plane) Polygon3 {
	n := len(poly)
	if n == 0 {
		return nil
	}
	var out Polygon3
	for i := 0; i < n; i++ {
		cur := poly[i]
		next := poly[(i+1)%n]
		curIn := ClassifyPoint(cur, plane) != Back
		nextIn := ClassifyPoint(next, plane) != Back
		if curIn {
			out = append(out, cur)
		}
		if curIn != nextIn {
			ipt, _, ok := IntersectLinePlane(cur, next, plane)
			if ok {
				out = append(out, ipt)
			}
		}
	}
	return out
}

// Clip3DByZNear clips a camera-space polygon against the z = near plane,
// keeping the region with z >= near (in front of the camera).
func Clip3DByZNear(poly Polygon3, near float64) Polygon3 {
	return Clip3DByPlane(poly, Plane{N: Vec3{0, 0, 1}, D: near})
}

// Polygon2 is a 2D screen-space or texture-space convex vertex ring.
type Polygon2 []Vec2

// HalfPlane2 is a 2D line ax+by=c with the "inside" region where
// a*x+b*y >= c (matching Plane's front-is->= convention).
type HalfPlane2 struct {
	A, B, C float64
}

func (h HalfPlane2) dist(p Vec2) float64 { return h.A*p.X + h.B*p.Y - h.C }

func intersect2(a, b Vec2, h HalfPlane2) Vec2 {
	da, db := h.dist(a), h.dist(b)
	denom := da - db
	if denom == 0 {
		return a
	}
	t := da / denom
	return Vec2{a.X + t*(b.X-a.X), a.Y + t*(b.Y-a.Y)}
}

// Clip2DPolygon clips poly against a single 2D half-plane, same ring-walk
// shape as Clip3DByPlane.
func Clip2DPolygon(poly Polygon2, h HalfPlane2) Polygon2 {
	n := len(poly)
	if n == 0 {
		return nil
	}
	var out Polygon2
	for i := 0; i < n; i++ {
		cur := poly[i]
		next := poly[(i+1)%n]
		curIn := h.dist(cur) >= 0
		nextIn := h.dist(next) >= 0
		if curIn {
			out = append(out, cur)
		}
		if curIn != nextIn {
			out = append(out, intersect2(cur, next, h))
		}
	}
	return out
}

// AABB2 is an axis-aligned screen-space bound, used as both the full-screen
// seed clip region and the per-leaf visibility bound.
type AABB2 struct {
	MinX, MinY, MaxX, MaxY float64
}

// Empty reports whether the bound encloses no area.
func (b AABB2) Empty() bool { return b.MinX >= b.MaxX || b.MinY >= b.MaxY }

// Intersect returns the overlap of two bounds; the result may be Empty.
func (b AABB2) Intersect(o AABB2) AABB2 {
	return AABB2{
		MinX: max(b.MinX, o.MinX),
		MinY: max(b.MinY, o.MinY),
		MaxX: min(b.MaxX, o.MaxX),
		MaxY: min(b.MaxY, o.MaxY),
	}
}

// Union returns the smallest bound containing both inputs.
func (b AABB2) Union(o AABB2) AABB2 {
	if b.Empty() {
		return o
	}
	if o.Empty() {
		return b
	}
	return AABB2{
		MinX: min(b.MinX, o.MinX),
		MinY: min(b.MinY, o.MinY),
		MaxX: max(b.MaxX, o.MaxX),
		MaxY: max(b.MaxY, o.MaxY),
	}
}

// Contains reports whether o is fully contained in b -- used by the
// visibility flood to detect "frontier already covers it" (spec.md §4.5
// step 4) without extending the recorded bound.
func (b AABB2) Contains(o AABB2) bool {
	if o.Empty() {
		return true
	}
	return o.MinX >= b.MinX && o.MinY >= b.MinY && o.MaxX <= b.MaxX && o.MaxY <= b.MaxY
}

// BoundOf computes the AABB2 of a 2D polygon.
func BoundOf(poly Polygon2) AABB2 {
	if len(poly) == 0 {
		return AABB2{}
	}
	b := AABB2{MinX: poly[0].X, MinY: poly[0].Y, MaxX: poly[0].X, MaxY: poly[0].Y}
	for _, p := range poly[1:] {
		b.MinX = min(b.MinX, p.X)
		b.MinY = min(b.MinY, p.Y)
		b.MaxX = max(b.MaxX, p.X)
		b.MaxY = max(b.MaxY, p.Y)
	}
	return b
}

// HalfPlanesOfAABB returns the four inward half-planes of an AABB2, used to
// clip a portal projection against the incoming leaf bound (Clip2DPolygon
// applied four times) or to seed the full-screen clip polygon.
func HalfPlanesOfAABB(b AABB2) [4]HalfPlane2 {
	return [4]HalfPlane2{
		{A: 1, B: 0, C: b.MinX},  // x >= MinX
		{A: -1, B: 0, C: -b.MaxX}, // -x >= -MaxX  <=>  x <= MaxX
		{A: 0, B: 1, C: b.MinY},  // y >= MinY
		{A: 0, B: -1, C: -b.MaxY},
	}
}

// ClipToAABB clips a 2D polygon to an AABB2 by sequential half-plane clips.
func ClipToAABB(poly Polygon2, b AABB2) Polygon2 {
	for _, h := range HalfPlanesOfAABB(b) {
		poly = Clip2DPolygon(poly, h)
		if len(poly) == 0 {
			return nil
		}
	}
	return poly
}

// PolygonFromAABB returns the 4-vertex CCW ring of an AABB2, used to seed
// the camera leaf with the full-screen clip polygon.
func PolygonFromAABB(b AABB2) Polygon2 {
	return Polygon2{
		{X: b.MinX, Y: b.MinY},
		{X: b.MaxX, Y: b.MinY},
		{X: b.MaxX, Y: b.MaxY},
		{X: b.MinX, Y: b.MaxY},
	}
}
