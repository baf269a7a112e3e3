// Package visibility is the per-frame runtime visibility calculator
// (spec.md §4.5): it locates the camera leaf, then floods the portal graph
// outward, accumulating a 2D screen-space bound per reachable leaf. It is
// grounded on the teacher's internal/parallel/dirty.go queue-based
// dirty-rectangle propagation -- the same "frontier of regions, each
// carrying an accumulating 2D rectangle" shape, here walking portals
// instead of tile-grid neighbors.
package visibility

import (
	"github.com/quakesoft/qse/compactmap"
	"github.com/quakesoft/qse/geom"
)

// DefaultDepthBound caps the number of leafs the BFS expands, guarding
// against pathological portal graphs (spec.md §4.5: "BFS over portals up
// to a depth bound (typically 1024)").
const DefaultDepthBound = 1024

// Set is the result of one frame's visibility computation: the camera's
// leaf, whether the camera sits outside that leaf's convex volume, and the
// accumulated 2D screen bound for every leaf the flood reached.
type Set struct {
	CameraLeaf    int32
	OutsideVolume bool
	Bounds        map[int32]geom.AABB2
}

// Visible reports whether leaf was reached by the flood this frame.
func (s *Set) Visible(leaf int32) bool {
	_, ok := s.Bounds[leaf]
	return ok
}

// Bound returns leaf's accumulated screen bound and whether it is visible.
func (s *Set) Bound(leaf int32) (geom.AABB2, bool) {
	b, ok := s.Bounds[leaf]
	return b, ok
}

// Compute runs the per-frame visibility flood described in spec.md §4.5.
// depthBound <= 0 uses DefaultDepthBound.
func Compute(m *compactmap.CompactMap, cam geom.Camera, depthBound int) *Set {
	if depthBound <= 0 {
		depthBound = DefaultDepthBound
	}

	cameraLeaf := compactmap.LocateLeaf(m, cam.Pos)
	set := &Set{CameraLeaf: cameraLeaf, Bounds: map[int32]geom.AABB2{}}
	if cameraLeaf < 0 || int(cameraLeaf) >= len(m.Leafs) {
		return set
	}

	set.OutsideVolume = compactmap.OutsideVolume(m, cameraLeaf, cam.Pos)
	set.Bounds[cameraLeaf] = cam.ScreenBounds()

	queue := []int32{cameraLeaf}
	steps := 0
	for len(queue) > 0 && steps < depthBound {
		leaf := queue[0]
		queue = queue[1:]
		steps++

		bound := set.Bounds[leaf]
		floodPortals(m, cam, leaf, bound, set, &queue)
	}
	return set
}

// floodPortals processes every portal bounding leaf, propagating its
// incoming screen bound across to the neighboring leaf when the portal
// survives back-face cull and near-plane clip and the result isn't already
// covered by that neighbor's recorded bound.
func floodPortals(m *compactmap.CompactMap, cam geom.Camera, leaf int32, bound geom.AABB2, set *Set, queue *[]int32) {
	l := m.Leafs[leaf]
	for i := uint32(0); i < l.NumLeafPortals; i++ {
		portalIdx := m.LeafsPortals[l.FirstLeafPortal+i]
		portal := m.Portals[portalIdx]

		otherLeaf, outward, ok := orient(portal, leaf)
		if !ok {
			continue
		}

		// Back-face cull: skip portals whose outward-facing side faces
		// away from the camera's view direction.
		if outward.Dot(cam.Forward) < 0 {
			continue
		}

		verts := m.PortalVerticesOf(int(portalIdx))
		camSpace := make(geom.Polygon3, len(verts))
		for j, v := range verts {
			camSpace[j] = cam.ToCameraSpace(v)
		}

		screenPoly := cam.ProjectPolygon(camSpace)
		if screenPoly == nil {
			continue
		}

		portalBound := geom.BoundOf(screenPoly)
		newBound := portalBound.Intersect(bound)
		if newBound.Empty() {
			continue
		}

		existing, seen := set.Bounds[otherLeaf]
		if seen && existing.Contains(newBound) {
			continue
		}

		merged := newBound
		if seen {
			merged = existing.Union(newBound)
		}
		set.Bounds[otherLeaf] = merged
		*queue = append(*queue, otherLeaf)
	}
}

// orient determines the neighboring leaf across a portal and the portal
// plane's outward normal relative to the leaf we are flooding from. ok is
// false if leaf doesn't actually bound this portal (a malformed map).
func orient(p compactmap.Portal, leaf int32) (other int32, outward geom.Vec3, ok bool) {
	switch {
	case int32(p.Leafs[0]) == leaf:
		return int32(p.Leafs[1]), p.Plane.N.Scale(-1), true
	case int32(p.Leafs[1]) == leaf:
		return int32(p.Leafs[0]), p.Plane.N, true
	default:
		return 0, geom.Vec3{}, false
	}
}
