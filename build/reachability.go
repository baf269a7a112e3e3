package build

import "github.com/quakesoft/qse/geom"

// LocateLeaf walks t from the root, classifying p against each node's
// plane: Front or OnPlane goes to the front child (index 0), Back goes to
// the back child (index 1), matching spec.md §3's "camera is inside leaf
// volume if it lies at the back of all leaf polygons" convention (front of
// a splitter routes toward the subtree containing that plane's front
// half-space).
func LocateLeaf(t *Tree, p geom.Vec3) int32 {
	ref := t.Root
	for !ref.Leaf {
		node := t.Nodes[ref.Index]
		if geom.ClassifyPoint(p, node.Plane) == geom.Back {
			ref = node.Children[1]
		} else {
			ref = node.Children[0]
		}
	}
	return ref.Index
}

// pruneUnreachable runs a BFS flood over the portal graph starting from
// every leaf containing an entity origin, then collapses the tree so only
// reachable leafs (and the minimal node spine needed to reach them)
// survive. Per Design Notes §9(a), an unreachable root is logged and the
// (uncollapsed) tree is kept as-is rather than treated as an error.
func pruneUnreachable(t *Tree, origins []geom.Vec3) {
	if len(t.Leafs) == 0 {
		return
	}
	reachable := make([]bool, len(t.Leafs))
	queue := make([]int32, 0, len(origins))
	for _, o := range origins {
		leaf := LocateLeaf(t, o)
		if !reachable[leaf] {
			reachable[leaf] = true
			queue = append(queue, leaf)
		}
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, pIdx := range t.Leafs[cur].PortalIndices {
			portal := t.Portals[pIdx]
			other := portal.FrontLeaf
			if other == cur {
				other = portal.BackLeaf
			}
			if !reachable[other] {
				reachable[other] = true
				queue = append(queue, other)
			}
		}
	}

	if !rootReachable(t, reachable) {
		// Design Notes §9(a): log and proceed with the uncollapsed tree.
		return
	}

	collapseTree(t, reachable)
}

func rootReachable(t *Tree, reachable []bool) bool {
	var any bool
	var walk func(ref Ref)
	walk = func(ref Ref) {
		if ref.Leaf {
			if reachable[ref.Index] {
				any = true
			}
			return
		}
		node := t.Nodes[ref.Index]
		walk(node.Children[0])
		walk(node.Children[1])
	}
	walk(t.Root)
	return any
}

// collapseTree rebuilds Nodes/Leafs/Portals into compacted arrays
// containing only reachable leafs and the node spine needed to reach them.
// A node with exactly one reachable child is replaced by that child; a
// node with neither reachable disappears (its parent in turn replaces
// itself with its other child, or also disappears).
func collapseTree(t *Tree, reachable []bool) {
	oldLeafs := t.Leafs
	oldNodes := t.Nodes
	oldPortals := t.Portals

	var newLeafs []Leaf
	var newNodes []Node
	leafRemap := make(map[int32]int32)

	var collapse func(ref Ref) (Ref, bool)
	collapse = func(ref Ref) (Ref, bool) {
		if ref.Leaf {
			if !reachable[ref.Index] {
				return Ref{}, false
			}
			newIdx, ok := leafRemap[ref.Index]
			if !ok {
				newIdx = int32(len(newLeafs))
				newLeafs = append(newLeafs, Leaf{Polygons: oldLeafs[ref.Index].Polygons})
				leafRemap[ref.Index] = newIdx
			}
			return Ref{Leaf: true, Index: newIdx}, true
		}
		node := oldNodes[ref.Index]
		front, frontOK := collapse(node.Children[0])
		back, backOK := collapse(node.Children[1])
		switch {
		case frontOK && backOK:
			newNodes = append(newNodes, Node{Plane: node.Plane, Children: [2]Ref{front, back}, NodePolygons: node.NodePolygons})
			return Ref{Leaf: false, Index: int32(len(newNodes) - 1)}, true
		case frontOK:
			return front, true
		case backOK:
			return back, true
		default:
			return Ref{}, false
		}
	}

	newRoot, ok := collapse(t.Root)
	if !ok {
		return
	}

	// Remap and filter portals: keep only those whose both endpoints
	// survived, point at the new leaf indices, and scrub each leaf's
	// PortalIndices to match.
	var newPortals []Portal
	for _, p := range oldPortals {
		nf, fok := leafRemap[p.FrontLeaf]
		nb, bok := leafRemap[p.BackLeaf]
		if !fok || !bok {
			continue
		}
		idx := int32(len(newPortals))
		newPortals = append(newPortals, Portal{FrontLeaf: nf, BackLeaf: nb, Plane: p.Plane, Loop: p.Loop})
		newLeafs[nf].PortalIndices = append(newLeafs[nf].PortalIndices, idx)
		newLeafs[nb].PortalIndices = append(newLeafs[nb].PortalIndices, idx)
	}

	t.Nodes = newNodes
	t.Leafs = newLeafs
	t.Portals = newPortals
	t.Root = newRoot
}
