// Package build implements the offline compiler: it turns an entity's
// textured polygon soup into a BSP tree (bsp.go), derives the portal graph
// between leafs (portal.go), bakes per-polygon lightmaps (lightmap.go), and
// hands the result to compactmap for serialization.
package build

import "github.com/quakesoft/qse/geom"

// TextureRef names a material and the two tex-coord equation planes that
// project a world position to (u, v), matching spec.md §3's builder-form
// polygon texture reference. Equation planes are reused as general affine
// functionals: u = UAxis.N.pos - UAxis.D.
type TextureRef struct {
	Name  string
	UAxis geom.Plane
	VAxis geom.Plane
}

// Eval projects a world point to (u, v) using the texture's axis equations.
func (t TextureRef) Eval(p geom.Vec3) (u, v float64) {
	return t.UAxis.Distance(p) + t.UAxis.D, t.VAxis.Distance(p) + t.VAxis.D
}

// Polygon is the builder-form polygon: an ordered, convex, CCW-wrt-plane
// vertex loop, its plane, and a texture reference.
type Polygon struct {
	Verts geom.Polygon3
	Plane geom.Plane
	Tex   TextureRef
}

// Clone deep-copies the vertex loop so recursive splitting never aliases a
// parent polygon's backing array.
func (p Polygon) Clone() Polygon {
	verts := make(geom.Polygon3, len(p.Verts))
	copy(verts, p.Verts)
	return Polygon{Verts: verts, Plane: p.Plane, Tex: p.Tex}
}

// Entity is the shape the textual map parser (an external collaborator,
// §6) is expected to produce: a set of key/value attributes plus the
// polygon soup belonging to that entity.
type Entity struct {
	Keys     map[string]string
	Polygons []Polygon
}

// Origin returns the entity's "origin" key parsed as a vec3, and whether
// the key was present and well-formed. Per Design Notes §9(b), an entity
// lacking an origin key is silently skipped by the reachability flood.
func (e Entity) Origin() (geom.Vec3, bool) {
	v, ok := e.Keys["origin"]
	if !ok {
		return geom.Vec3{}, false
	}
	var x, y, z float64
	n, err := parseVec3(v, &x, &y, &z)
	if err != nil || n != 3 {
		return geom.Vec3{}, false
	}
	return geom.Vec3{X: x, Y: y, Z: z}, true
}

// EntitySource is the external collaborator contract for map input. The
// builder depends only on this shape (spec.md §6); no textual parser is
// part of this module.
type EntitySource interface {
	Entities() []Entity
}
