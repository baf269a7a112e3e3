package compactmap

import "github.com/quakesoft/qse/geom"

// LocateLeaf walks m's runtime BSP from the root node, classifying p against
// each node's plane: Front or OnPlane routes to Children[0], Back routes to
// Children[1] -- the same convention build.LocateLeaf uses over the
// builder-form tree before it was flattened into this index-based IR
// (spec.md §4.5's "point-location walk of the BSP" for the camera leaf, and
// §4.8 step 5's submodel-placement leaf covering).
func LocateLeaf(m *CompactMap, p geom.Vec3) int32 {
	if len(m.Nodes) == 0 {
		if len(m.Leafs) == 0 {
			return -1
		}
		return 0
	}
	child := uint32(0)
	for {
		if IsLeaf(child) {
			return int32(LeafIndexOf(child))
		}
		node := m.Nodes[child]
		if geom.ClassifyPoint(p, node.Plane) == geom.Back {
			child = node.Children[1]
		} else {
			child = node.Children[0]
		}
	}
}

// OutsideVolume reports whether p lies outside the convex volume of leaf
// index leaf -- in front of at least one of the leaf's bounding polygons
// (spec.md §4.5: "Cameras whose position lies in front of any leaf polygon
// are outside the volume", the degenerate case of a camera wedged into
// geometry or standing exactly on a portal boundary).
func OutsideVolume(m *CompactMap, leaf int32, p geom.Vec3) bool {
	l := m.Leafs[leaf]
	for i := uint32(0); i < l.NumPolygons; i++ {
		poly := m.Polygons[l.FirstPolygon+i]
		if geom.ClassifyPoint(p, poly.Plane) == geom.Front {
			return true
		}
	}
	return false
}
