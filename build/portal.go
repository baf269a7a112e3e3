package build

import (
	"math"
	"sort"

	"github.com/quakesoft/qse/geom"
)

// Portal is a convex polygon on a splitter plane joining two leafs,
// jointly owned by Tree.Portals (plain slice, no shared pointers) and
// weakly referenced by each endpoint leaf's PortalIndices.
type Portal struct {
	FrontLeaf int32
	BackLeaf  int32
	Plane     geom.Plane
	Loop      geom.Polygon3
}

// WorldBounds are the six outward-facing planes closing the map volume,
// added to every leaf's cut-plane set (spec.md §4.3).
type WorldBounds struct {
	Min, Max geom.Vec3
}

func (w WorldBounds) planes() [6]geom.Plane {
	return [6]geom.Plane{
		{N: geom.Vec3{X: -1}, D: -w.Min.X},
		{N: geom.Vec3{X: 1}, D: w.Max.X},
		{N: geom.Vec3{Y: -1}, D: -w.Min.Y},
		{N: geom.Vec3{Y: 1}, D: w.Max.Y},
		{N: geom.Vec3{Z: -1}, D: -w.Min.Z},
		{N: geom.Vec3{Z: 1}, D: w.Max.Z},
	}
}

// ancestorPlane is one splitter plane on the path from the root to a leaf,
// oriented to face into that leaf (flipped from the node's stored plane
// when the path went to the back child).
type ancestorPlane struct {
	nodeIndex int32
	plane     geom.Plane
}

// cutPlaneSet is the set C from spec.md §4.3: every ancestor splitter
// (flipped to face into the leaf), the leaf's own blocking polygon planes
// (flipped to face inward), and the six world-bound planes.
type cutPlaneSet struct {
	ancestors []ancestorPlane
	blocking  []geom.Plane
	bounds    [6]geom.Plane
}

func (c cutPlaneSet) all() []geom.Plane {
	out := make([]geom.Plane, 0, len(c.ancestors)+len(c.blocking)+6)
	for _, a := range c.ancestors {
		out = append(out, a.plane)
	}
	out = append(out, c.blocking...)
	out = append(out, c.bounds[:]...)
	return out
}

// BuildPortals computes the leaf-to-leaf portal graph for t, then runs the
// entity-origin reachability flood and prunes unreachable leafs. bounds is
// the world-bound volume used to close leafs at the map edge.
func BuildPortals(t *Tree, bounds WorldBounds, entityOrigins []geom.Vec3) {
	lc := collectLeafCutPlanes(t, bounds)
	synthesizePortals(t, lc)
	pruneUnreachable(t, entityOrigins)
}

// leafCuts holds, per leaf, the cut-plane set computed by walking ancestors.
// Populated as a side table during a single tree walk and consumed by
// synthesizePortals; not stored on Tree itself since it is intermediate.
type leafCuts struct {
	sets map[int32]cutPlaneSet
}

func collectLeafCutPlanes(t *Tree, bounds WorldBounds) *leafCuts {
	lc := &leafCuts{sets: make(map[int32]cutPlaneSet)}
	var walk func(ref Ref, ancestors []ancestorPlane)
	walk = func(ref Ref, ancestors []ancestorPlane) {
		if ref.Leaf {
			leaf := t.Leafs[ref.Index]
			var blocking []geom.Plane
			for _, p := range leaf.Polygons {
				blocking = append(blocking, p.Plane.Negate())
			}
			lc.sets[ref.Index] = cutPlaneSet{
				ancestors: append([]ancestorPlane(nil), ancestors...),
				blocking:  blocking,
				bounds:    bounds.planes(),
			}
			return
		}
		node := t.Nodes[ref.Index]
		frontPlane := ancestorPlane{nodeIndex: ref.Index, plane: node.Plane}
		backPlane := ancestorPlane{nodeIndex: ref.Index, plane: node.Plane.Negate()}
		walk(node.Children[0], append(ancestors, frontPlane))
		walk(node.Children[1], append(ancestors, backPlane))
	}
	walk(t.Root, nil)
	return lc
}

// splitterPolygon is one candidate leaf-splitter polygon: the maximal
// convex polygon cut by ancestorPlane.plane bounded by the rest of the
// cut-plane set, tagged with which leaf/node/side produced it.
type splitterPolygon struct {
	leaf      int32
	nodeIndex int32
	front     bool // true if this polygon lies on the node's front side
	loop      geom.Polygon3
	plane     geom.Plane
}

func synthesizePortals(t *Tree, lc *leafCuts) {
	var candidates []splitterPolygon
	for leafIdx, cuts := range lc.sets {
		all := cuts.all()
		for _, anc := range cuts.ancestors {
			poly := polygonFromCutPlane(anc.plane, all)
			if len(poly) < 3 {
				continue
			}
			// front==true means this ancestor plane faces into the leaf
			// from the front side of its node (i.e. the leaf is reached
			// via the node's front child when ancestors were collected).
			candidates = append(candidates, splitterPolygon{
				leaf:      leafIdx,
				nodeIndex: anc.nodeIndex,
				plane:     anc.plane,
				loop:      poly,
			})
		}
	}

	// Pair polygons sharing a splitter node on opposite sides. A node
	// contributes a "front" cut plane (node.Plane) to its front-side leafs
	// and a "back" cut plane (node.Plane.Negate()) to its back-side leafs;
	// distinguish them by comparing normal direction to the node's stored
	// plane.
	byNode := make(map[int32][]splitterPolygon)
	for _, c := range candidates {
		byNode[c.nodeIndex] = append(byNode[c.nodeIndex], c)
	}

	for nodeIdx, group := range byNode {
		node := t.Nodes[nodeIdx]
		var fronts, backs []splitterPolygon
		for _, g := range group {
			if g.plane.N.Dot(node.Plane.N) > 0 {
				fronts = append(fronts, g)
			} else {
				backs = append(backs, g)
			}
		}
		for _, f := range fronts {
			for _, b := range backs {
				if f.leaf == b.leaf {
					continue
				}
				loop := intersectConvexLoops(f.loop, b.loop, node.Plane)
				if len(loop) < 3 {
					continue
				}
				if portalFullyCovered(loop, t.Leafs[f.leaf]) || portalFullyCovered(loop, t.Leafs[b.leaf]) {
					continue
				}
				idx := int32(len(t.Portals))
				t.Portals = append(t.Portals, Portal{
					FrontLeaf: f.leaf,
					BackLeaf:  b.leaf,
					Plane:     node.Plane,
					Loop:      loop,
				})
				t.Leafs[f.leaf].PortalIndices = append(t.Leafs[f.leaf].PortalIndices, idx)
				t.Leafs[b.leaf].PortalIndices = append(t.Leafs[b.leaf].PortalIndices, idx)
			}
		}
	}
}

// polygonFromCutPlane computes the convex polygon bounded by plane and
// every other plane in all (spec.md §4.3): for every pair (ci, cj) in
// all\{plane} with plane, solve the plane triple, keep points not rejected
// by any plane of all, dedupe, and sort angularly around plane's normal.
func polygonFromCutPlane(plane geom.Plane, all []geom.Plane) geom.Polygon3 {
	var rest []geom.Plane
	for _, p := range all {
		if p == plane {
			continue
		}
		rest = append(rest, p)
	}

	var pts []geom.Vec3
	for i := 0; i < len(rest); i++ {
		for j := i + 1; j < len(rest); j++ {
			if geom.AreAlmostParallel(rest[i], rest[j]) {
				continue
			}
			pt, ok := geom.IntersectThreePlanes(plane, rest[i], rest[j])
			if !ok {
				continue
			}
			if rejectedByAny(pt, all) {
				continue
			}
			pts = appendDedup(pts, pt)
		}
	}
	if len(pts) < 3 {
		return nil
	}
	return sortAngular(pts, plane)
}

const portalEps = 1.0 / 16.0

func rejectedByAny(p geom.Vec3, planes []geom.Plane) bool {
	for _, pl := range planes {
		eps := portalEps * pl.N.Length()
		if pl.Distance(p) > eps {
			return true
		}
	}
	return false
}

func appendDedup(pts []geom.Vec3, p geom.Vec3) []geom.Vec3 {
	for _, q := range pts {
		if q.Sub(p).Length() < portalEps {
			return pts
		}
	}
	return append(pts, p)
}

// sortAngular orders points CCW around plane's normal so they form a
// convex ring, then drops runs with <3 vertices (callers check the
// returned length).
func sortAngular(pts []geom.Vec3, plane geom.Plane) geom.Polygon3 {
	if len(pts) < 3 {
		return nil
	}
	center := geom.Vec3{}
	for _, p := range pts {
		center = center.Add(p)
	}
	center = center.Scale(1 / float64(len(pts)))

	n := plane.N
	if n.Length() == 0 {
		return nil
	}
	n = n.Scale(1 / n.Length())
	// Build an arbitrary basis (u, v) in the plane.
	u := n.Cross(geom.Vec3{X: 1})
	if u.Length() < 1e-6 {
		u = n.Cross(geom.Vec3{Y: 1})
	}
	u = u.Scale(1 / u.Length())
	v := n.Cross(u)

	type angPt struct {
		p   geom.Vec3
		ang float64
	}
	aps := make([]angPt, len(pts))
	for i, p := range pts {
		d := p.Sub(center)
		aps[i] = angPt{p: p, ang: math.Atan2(d.Dot(v), d.Dot(u))}
	}
	sort.Slice(aps, func(i, j int) bool { return aps[i].ang < aps[j].ang })

	out := make(geom.Polygon3, len(aps))
	for i, ap := range aps {
		out[i] = ap.p
	}
	return out
}

// intersectConvexLoops computes the intersection of two convex polygons
// lying on the same plane by clipping one against the half-planes implied
// by the other's edges (both already convex rings on `on`).
func intersectConvexLoops(a, b geom.Polygon3, on geom.Plane) geom.Polygon3 {
	result := a
	n := len(b)
	planeN := on.N
	for i := 0; i < n && len(result) >= 3; i++ {
		p0 := b[i]
		p1 := b[(i+1)%n]
		edge := p1.Sub(p0)
		inward := edge.Cross(planeN) // points toward polygon interior for a CCW ring
		hp := geom.Plane{N: inward, D: inward.Dot(p0)}
		result = geom.Clip3DByPlane(result, hp)
	}
	return result
}

// portalFullyCovered tests whether loop is entirely covered by some
// blocking polygon of leaf (1/4-unit edge tolerance, spec.md §4.3).
func portalFullyCovered(loop geom.Polygon3, leaf Leaf) bool {
	const coverageEps = 0.25
	for _, poly := range leaf.Polygons {
		if coversAll(poly.Verts, poly.Plane, loop, coverageEps) {
			return true
		}
	}
	return false
}

func coversAll(cover geom.Polygon3, plane geom.Plane, loop geom.Polygon3, eps float64) bool {
	for _, pt := range loop {
		if !pointInConvexPolygon(cover, plane, pt, eps) {
			return false
		}
	}
	return true
}

// pointInConvexPolygon tests pt against every inward edge half-plane of the
// convex ring cover (lying on plane), with a tolerance of eps world units.
func pointInConvexPolygon(cover geom.Polygon3, plane geom.Plane, pt geom.Vec3, eps float64) bool {
	for i := 0; i < len(cover); i++ {
		p0 := cover[i]
		p1 := cover[(i+1)%len(cover)]
		edge := p1.Sub(p0)
		inward := edge.Cross(plane.N)
		l := inward.Length()
		if l == 0 {
			continue
		}
		d := inward.Dot(pt.Sub(p0)) / l
		if d < -eps {
			return false
		}
	}
	return true
}
