package surface

import (
	"github.com/quakesoft/qse/compactmap"
	"github.com/quakesoft/qse/geom"
	"github.com/quakesoft/qse/internal/color"
	"github.com/quakesoft/qse/material"
)

// DefaultDecalMaxDepth bounds how many straddling BSP splits ClipDecal's
// polygon search descends before it stops subdividing further (spec.md §8
// E6: "the subdivider must not recurse beyond depth 2").
const DefaultDecalMaxDepth = 2

// Decal places a unit-cube projector volume in world space: a position, an
// orthonormal basis, and a per-axis half-size, matching the runtime
// placement data a decal carries (it is not baked into the compiled map,
// it is supplied fresh every frame). Its texture and lightmap-scaled light
// are stamped onto every polygon the cube overlaps, cube-clipped to each
// polygon in turn (spec.md §4.6, §4.8 step 9).
type Decal struct {
	Pos                geom.Vec3
	Right, Up, Forward geom.Vec3 // orthonormal decal-space basis
	HalfSize           geom.Vec3
	Texture            string
	BlendingMode       material.BlendingMode
	LightScale         float64
	LightAdd           color.ColorF32
}

// DecalFragment is one polygon's portion of a Decal's projected cube,
// already clipped to both the cube and the host polygon's own edges, with
// decal-local UV (each axis in [-1, 1] across the cube's Right/Up faces)
// and the host polygon's baked lightmap sampled per vertex -- "decals...
// inheriting the polygon's lightmap" (spec.md §4.8 step 9).
type DecalFragment struct {
	LeafIndex int32
	Decal     *Decal
	Verts     []geom.Vec3
	U, V      []float64
	Light     []color.ColorF32
}

// clipPlanes returns the cube's six inward-facing half-spaces, one pair
// per axis, each bounding (pt-Pos).Dot(axis) to [-half, half].
func (d *Decal) clipPlanes() [6]geom.Plane {
	axes := [3]geom.Vec3{d.Right, d.Up, d.Forward}
	halves := [3]float64{d.HalfSize.X, d.HalfSize.Y, d.HalfSize.Z}
	var planes [6]geom.Plane
	for i, axis := range axes {
		base := d.Pos.Dot(axis)
		planes[2*i] = geom.Plane{N: axis, D: base - halves[i]}
		planes[2*i+1] = geom.Plane{N: axis.Scale(-1), D: -(base + halves[i])}
	}
	return planes
}

// worldAABB bounds the cube's 8 corners, the search volume handed to the
// BSP to gather candidate polygons.
func (d *Decal) worldAABB() geom.AABB3 {
	var box geom.AABB3
	first := true
	for i := 0; i < 8; i++ {
		x, y, z := -d.HalfSize.X, -d.HalfSize.Y, -d.HalfSize.Z
		if i&1 != 0 {
			x = d.HalfSize.X
		}
		if i&2 != 0 {
			y = d.HalfSize.Y
		}
		if i&4 != 0 {
			z = d.HalfSize.Z
		}
		corner := d.Pos.Add(d.Right.Scale(x)).Add(d.Up.Scale(y)).Add(d.Forward.Scale(z))
		pb := geom.AABB3{Min: corner, Max: corner}
		if first {
			box, first = pb, false
		} else {
			box = box.Union(pb)
		}
	}
	return box
}

// ClipDecal gathers every polygon d's cube might overlap (bounding the BSP
// search to maxDepth straddling splits via
// compactmap.LeafsOverlappingAABBBounded), clips each candidate's vertex
// ring against the cube's six planes in turn, and for every surviving
// fragment of 3 or more vertices samples the host polygon's own tex-coord
// equations and baked lightmap so the fragment carries the wall's lighting
// rather than some light of the decal's own.
func ClipDecal(m *compactmap.CompactMap, d *Decal, maxDepth int) []DecalFragment {
	box := d.worldAABB()

	var out []DecalFragment
	seen := map[int32]bool{}
	compactmap.LeafsOverlappingAABBBounded(m, box, maxDepth, func(leaf int32) {
		if seen[leaf] {
			return
		}
		seen[leaf] = true
		l := m.Leafs[leaf]
		for i := uint32(0); i < l.NumPolygons; i++ {
			polyIdx := int(l.FirstPolygon + i)
			if frag, ok := d.clipPolygon(m, polyIdx); ok {
				frag.LeafIndex = leaf
				out = append(out, frag)
			}
		}
	})
	return out
}

func (d *Decal) clipPolygon(m *compactmap.CompactMap, polyIdx int) (DecalFragment, bool) {
	poly := m.Polygons[polyIdx]
	verts := m.PolygonVertices(polyIdx)
	ring := make(geom.Polygon3, len(verts))
	copy(ring, verts)

	for _, p := range d.clipPlanes() {
		ring = geom.Clip3DByPlane(ring, p)
		if len(ring) < 3 {
			return DecalFragment{}, false
		}
	}

	lm := lightmapTile(m, poly)
	frag := DecalFragment{
		Decal: d,
		Verts: ring,
		U:     make([]float64, len(ring)),
		V:     make([]float64, len(ring)),
		Light: make([]color.ColorF32, len(ring)),
	}
	for i, wp := range ring {
		rel := wp.Sub(d.Pos)
		frag.U[i] = rel.Dot(d.Right) / d.HalfSize.X
		frag.V[i] = rel.Dot(d.Up) / d.HalfSize.Y

		lu := evalTexCoord(poly.TexCoordEquation[0], wp)
		lv := evalTexCoord(poly.TexCoordEquation[1], wp)
		light := sampleLightmapBilinear(lm, lu, lv)
		frag.Light[i] = color.ColorF32{
			R: light.R*float32(d.LightScale) + d.LightAdd.R,
			G: light.G*float32(d.LightScale) + d.LightAdd.G,
			B: light.B*float32(d.LightScale) + d.LightAdd.B,
			A: 1,
		}
	}
	return frag, true
}
