package geom

// Transform is a rigid-body pose: an orthonormal rotation basis (the same
// Right/Up/Forward representation Camera uses for its view transform),
// a translation, and a uniform scale. It positions model instances,
// submodels, and skeleton bones (spec.md §4.8 steps 5-6).
type Transform struct {
	Pos                Vec3
	Right, Up, Forward Vec3
	Scale              float64
}

// IdentityTransform is the no-op pose.
var IdentityTransform = Transform{
	Right: Vec3{X: 1}, Up: Vec3{Y: 1}, Forward: Vec3{Z: 1}, Scale: 1,
}

func (t Transform) scaleOrOne() float64 {
	if t.Scale == 0 {
		return 1
	}
	return t.Scale
}

// Point maps a local-space point into the space t positions it in.
func (t Transform) Point(p Vec3) Vec3 {
	s := t.scaleOrOne()
	return t.Pos.Add(t.Right.Scale(p.X * s)).Add(t.Up.Scale(p.Y * s)).Add(t.Forward.Scale(p.Z * s))
}

// Direction maps a local-space direction (a vertex normal) by rotation
// only -- no translation and no scale, so unit normals stay unit length
// under a uniform-scaled transform.
func (t Transform) Direction(d Vec3) Vec3 {
	return t.Right.Scale(d.X).Add(t.Up.Scale(d.Y)).Add(t.Forward.Scale(d.Z))
}

// Then composes t applied first, then outer: Then is used to carry a
// bind-pose vertex through a bone transform and then through the model
// instance's world transform.
func (t Transform) Then(outer Transform) Transform {
	return Transform{
		Pos:     outer.Point(t.Pos),
		Right:   outer.Direction(t.Right),
		Up:      outer.Direction(t.Up),
		Forward: outer.Direction(t.Forward),
		Scale:   t.scaleOrOne() * outer.scaleOrOne(),
	}
}
