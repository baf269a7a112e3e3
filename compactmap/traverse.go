package compactmap

import "github.com/quakesoft/qse/geom"

// WalkBackToFront visits every leaf reachable from m's root node in
// back-to-front order relative to camPos: at each splitter, the side
// camPos is NOT on is the far side and is visited first, the near side
// last, so painter's-algorithm draw order composites correctly without a
// depth buffer and still benefits from one when present (spec.md §4.8
// step 9: "traverse BSP back-to-front (near child last) relative to
// camera").
func WalkBackToFront(m *CompactMap, camPos geom.Vec3, visit func(leaf int32)) {
	if len(m.Nodes) == 0 {
		if len(m.Leafs) > 0 {
			visit(0)
		}
		return
	}
	walkNode(m, 0, camPos, visit)
}

func walkNode(m *CompactMap, child uint32, camPos geom.Vec3, visit func(leaf int32)) {
	if IsLeaf(child) {
		visit(int32(LeafIndexOf(child)))
		return
	}
	node := m.Nodes[child]
	near, far := node.Children[0], node.Children[1] // [0]=front, [1]=back
	if geom.ClassifyPoint(camPos, node.Plane) == geom.Back {
		near, far = far, near
	}
	walkNode(m, far, camPos, visit)
	walkNode(m, near, camPos, visit)
}

// LeafsOverlappingAABB visits every leaf whose convex volume might
// intersect box, found by descending the BSP and recursing into both
// children whenever box straddles a splitter plane (spec.md §4.8 step 5's
// "AABB-vs-plane checks" for placing submodels and dynamic models). A leaf
// may be visited more than once if reachable through more than one
// straddling path; callers that need a set should dedupe.
func LeafsOverlappingAABB(m *CompactMap, box geom.AABB3, visit func(leaf int32)) {
	if len(m.Nodes) == 0 {
		if len(m.Leafs) > 0 {
			visit(0)
		}
		return
	}
	walkAABB(m, 0, box, visit)
}

func walkAABB(m *CompactMap, child uint32, box geom.AABB3, visit func(leaf int32)) {
	if IsLeaf(child) {
		visit(int32(LeafIndexOf(child)))
		return
	}
	node := m.Nodes[child]
	switch geom.ClassifyAABB(box, node.Plane) {
	case geom.Front:
		walkAABB(m, node.Children[0], box, visit)
	case geom.Back:
		walkAABB(m, node.Children[1], box, visit)
	default:
		walkAABB(m, node.Children[0], box, visit)
		walkAABB(m, node.Children[1], box, visit)
	}
}

// LeafsOverlappingAABBBounded is LeafsOverlappingAABB with the straddle
// fan-out capped at maxDepth splits (spec.md §8 E6: "the subdivider must
// not recurse beyond depth 2"). Once the cap is reached, a straddling node
// descends only its front child rather than branching into both, bounding
// the decal-cube polygon search to a fixed worst case instead of the
// unbounded fan-out a pathological BSP could otherwise force.
func LeafsOverlappingAABBBounded(m *CompactMap, box geom.AABB3, maxDepth int, visit func(leaf int32)) {
	if len(m.Nodes) == 0 {
		if len(m.Leafs) > 0 {
			visit(0)
		}
		return
	}
	walkAABBBounded(m, 0, box, maxDepth, 0, visit)
}

func walkAABBBounded(m *CompactMap, child uint32, box geom.AABB3, maxDepth, depth int, visit func(leaf int32)) {
	if IsLeaf(child) {
		visit(int32(LeafIndexOf(child)))
		return
	}
	node := m.Nodes[child]
	switch geom.ClassifyAABB(box, node.Plane) {
	case geom.Front:
		walkAABBBounded(m, node.Children[0], box, maxDepth, depth, visit)
	case geom.Back:
		walkAABBBounded(m, node.Children[1], box, maxDepth, depth, visit)
	default:
		if depth >= maxDepth {
			walkAABBBounded(m, node.Children[0], box, maxDepth, depth, visit)
			return
		}
		walkAABBBounded(m, node.Children[0], box, maxDepth, depth+1, visit)
		walkAABBBounded(m, node.Children[1], box, maxDepth, depth+1, visit)
	}
}
