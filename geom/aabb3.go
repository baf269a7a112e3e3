package geom

// AABB3 is an axis-aligned world-space bounding box, the 3D counterpart of
// AABB2 used to cover submodels, dynamic model instances, and vertex-
// animated mesh frames (spec.md §4.8 step 5: "position submodels... by
// AABB-vs-plane checks").
type AABB3 struct {
	Min, Max Vec3
}

// Corner returns one of the box's 8 corners, indexed by the low bit of i
// selecting X, the next bit Y, the top bit Z (0 = Min, 1 = Max per axis).
func (b AABB3) Corner(i int) Vec3 {
	x, y, z := b.Min.X, b.Min.Y, b.Min.Z
	if i&1 != 0 {
		x = b.Max.X
	}
	if i&2 != 0 {
		y = b.Max.Y
	}
	if i&4 != 0 {
		z = b.Max.Z
	}
	return Vec3{X: x, Y: y, Z: z}
}

// Union returns the smallest AABB3 containing both b and o.
func (b AABB3) Union(o AABB3) AABB3 {
	return AABB3{
		Min: Vec3{X: min(b.Min.X, o.Min.X), Y: min(b.Min.Y, o.Min.Y), Z: min(b.Min.Z, o.Min.Z)},
		Max: Vec3{X: max(b.Max.X, o.Max.X), Y: max(b.Max.Y, o.Max.Y), Z: max(b.Max.Z, o.Max.Z)},
	}
}

// Center returns the box's midpoint.
func (b AABB3) Center() Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// ClassifyAABB classifies box against plane: Front if every corner is
// strictly in front, Back if every corner is strictly behind, OnPlane if
// corners lie on both sides (the box straddles the plane and must be
// counted in both children during a BSP AABB walk).
func ClassifyAABB(box AABB3, plane Plane) Side {
	sawFront, sawBack := false, false
	for i := 0; i < 8; i++ {
		switch ClassifyPoint(box.Corner(i), plane) {
		case Front:
			sawFront = true
		case Back:
			sawBack = true
		}
		if sawFront && sawBack {
			return OnPlane
		}
	}
	if sawFront {
		return Front
	}
	if sawBack {
		return Back
	}
	return OnPlane
}
