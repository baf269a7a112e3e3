package build

import (
	"math"

	"github.com/quakesoft/qse/geom"
)

// Ref is a tagged reference into a Tree's Nodes or Leafs arena. Per Design
// Notes §9, the builder-form BSP tree is kept as an arena of indices rather
// than shared pointers with weak back-references: Leaf <-> Portal cyclic
// ownership becomes plain int32 indices, and elision during reachability
// pruning is a retain/compact step over the arena (see portal.go).
type Ref struct {
	Leaf  bool
	Index int32
}

// Node owns a splitting plane and two children. Children is indexed
// [0]=front, [1]=back. NodePolygons is only populated by the submodel
// variant of Build, which preserves polygons coplanar with the splitter at
// the node itself (spec.md §4.2).
type Node struct {
	Plane        geom.Plane
	Children     [2]Ref
	NodePolygons []Polygon
}

// Leaf is a terminal BSP region. PortalIndices are filled in by
// BuildPortals and index the Tree's global Portals slice.
type Leaf struct {
	Polygons      []Polygon
	PortalIndices []int32
}

// Tree is the offline, builder-form BSP tree for one entity.
type Tree struct {
	Nodes    []Node
	Leafs    []Leaf
	Root     Ref
	Submodel bool

	// Portals is populated by BuildPortals; empty until then.
	Portals []Portal
}

// BuildTree constructs a BSP tree from one entity's polygon soup.
// submodel selects the submodel splitter variant (spec.md §4.2): node
// polygons are preserved at the splitting node, and a splitter is rejected
// when every remaining polygon is coplanar with it.
func BuildTree(polys []Polygon, submodel bool) *Tree {
	t := &Tree{Submodel: submodel}
	t.Root = t.build(polys)
	return t
}

func (t *Tree) build(polys []Polygon) Ref {
	idx, ok := chooseSplitter(polys, t.Submodel)
	if !ok {
		return t.newLeaf(polys)
	}
	splitPlane := polys[idx].Plane

	var nodePolys []Polygon
	var front, back []Polygon
	for i, p := range polys {
		classifyAndRoute(p, splitPlane, &front, &back, &nodePolys, t.Submodel, i == idx)
	}

	if len(front) == 0 || len(back) == 0 {
		// Pathological leaf (Design Notes §9(c)): recover without further
		// subdivision rather than recursing on an empty side forever.
		return t.newLeaf(polys)
	}

	frontRef := t.build(front)
	backRef := t.build(back)

	node := Node{Plane: splitPlane, Children: [2]Ref{frontRef, backRef}}
	if t.Submodel {
		node.NodePolygons = nodePolys
	}
	t.Nodes = append(t.Nodes, node)
	return Ref{Leaf: false, Index: int32(len(t.Nodes) - 1)}
}

func (t *Tree) newLeaf(polys []Polygon) Ref {
	t.Leafs = append(t.Leafs, Leaf{Polygons: polys})
	return Ref{Leaf: true, Index: int32(len(t.Leafs) - 1)}
}

// classifyAndRoute places polygon p (the polygon at splitter index
// splitterSelf is the splitter itself, always routed to the node/front per
// variant) into front, back, or nodePolys/both based on its relation to
// splitPlane.
func classifyAndRoute(p Polygon, splitPlane geom.Plane, front, back, nodePolys *[]Polygon, submodel, isSplitter bool) {
	if isSplitter {
		if submodel {
			*nodePolys = append(*nodePolys, p)
		} else {
			*front = append(*front, p)
		}
		return
	}
	if allOnPlane(p.Verts, splitPlane) {
		if submodel {
			*nodePolys = append(*nodePolys, p)
			return
		}
		// Standard variant: coplanar polygons go with the side matching
		// their facing direction relative to the splitter.
		if p.Plane.N.Dot(splitPlane.N) >= 0 {
			*front = append(*front, p)
		} else {
			*back = append(*back, p)
		}
		return
	}
	f, b := geom.SplitPolygon(p.Verts, splitPlane)
	if len(f) >= 3 {
		fp := p
		fp.Verts = f
		*front = append(*front, fp)
	}
	if len(b) >= 3 {
		bp := p
		bp.Verts = b
		*back = append(*back, bp)
	}
}

func allOnPlane(verts geom.Polygon3, plane geom.Plane) bool {
	for _, v := range verts {
		if geom.ClassifyPoint(v, plane) != geom.OnPlane {
			return false
		}
	}
	return true
}

// chooseSplitter implements spec.md §4.2's splitter scoring:
//
//	score_base = |front_total - back_total| + 5*splits
//	score = score_base * (2.0 if n has 0 axial components
//	                       else 1.5 if 1 axial
//	                       else 1.0 if 2)
//
// A candidate plane is ineligible when splits==0 && (front_total==0 ||
// back_total==0). The minimum-scoring eligible plane wins; ties resolve by
// encounter order. Returns ok=false when no eligible splitter exists.
func chooseSplitter(polys []Polygon, submodel bool) (int, bool) {
	best := -1
	bestScore := math.Inf(1)

	for i, candidate := range polys {
		plane := candidate.Plane
		frontTotal, backTotal, splits := 0, 0, 0
		allCoplanar := true

		for j, p := range polys {
			if j == i {
				continue
			}
			if allOnPlane(p.Verts, plane) {
				if p.Plane.N.Dot(plane.N) >= 0 {
					frontTotal++
				} else {
					backTotal++
				}
				continue
			}
			allCoplanar = false
			front, back := classifyPolygonSides(p.Verts, plane)
			switch {
			case front && back:
				splits++
				frontTotal++
				backTotal++
			case front:
				frontTotal++
			case back:
				backTotal++
			}
		}

		if splits == 0 && (frontTotal == 0 || backTotal == 0) {
			continue
		}
		if submodel && allCoplanar {
			continue
		}

		diff := frontTotal - backTotal
		if diff < 0 {
			diff = -diff
		}
		scoreBase := float64(diff + 5*splits)
		axial := axialComponentCount(plane.N)
		var mult float64
		switch axial {
		case 0:
			mult = 2.0
		case 1:
			mult = 1.5
		default:
			mult = 1.0
		}
		score := scoreBase * mult

		if score < bestScore {
			bestScore = score
			best = i
		}
	}

	return best, best >= 0
}

// classifyPolygonSides reports whether any vertex of verts is strictly in
// front of / behind plane.
func classifyPolygonSides(verts geom.Polygon3, plane geom.Plane) (front, back bool) {
	for _, v := range verts {
		switch geom.ClassifyPoint(v, plane) {
		case geom.Front:
			front = true
		case geom.Back:
			back = true
		}
	}
	return
}

// axialComponentCount counts the zero components of n, used by the
// splitter scoring's axial-alignment bonus.
func axialComponentCount(n geom.Vec3) int {
	count := 0
	const zeroEps = 1e-9
	if math.Abs(n.X) < zeroEps {
		count++
	}
	if math.Abs(n.Y) < zeroEps {
		count++
	}
	if math.Abs(n.Z) < zeroEps {
		count++
	}
	return count
}
