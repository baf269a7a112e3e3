package compactmap

import (
	"github.com/quakesoft/qse"
	"github.com/quakesoft/qse/build"
	"github.com/quakesoft/qse/geom"
)

// MaxLightmapSize bounds a single polygon's lightmap in texels per axis;
// polygons whose rounded-out tex-coord extent would exceed it are split
// (spec.md §4.4).
const MaxLightmapSize = 256

// MaxStringPoolSize is the capacity cap on StringsData (spec.md §7
// "Capacity overflow... string pool > 64 KiB").
const MaxStringPoolSize = 64 * 1024

// Encoder drains a builder-form Tree (plus textures/entities/lightmaps)
// into an immutable CompactMap, per spec.md §4.4's two-pass process:
//
//  1. emit portals first, freezing portal indices;
//  2. DFS the tree emitting leafs before nodes, so FirstLeafIndex-relative
//     child offsets are known once a leaf is visited;
//  3. patch portal Leafs[] with the final leaf indices.
type Encoder struct {
	textureIndex map[string]uint32
	stringCache  map[string]StringRef
	stringPool   []byte

	out CompactMap
}

// NewEncoder creates an encoder with empty intern tables.
func NewEncoder() *Encoder {
	return &Encoder{
		textureIndex: make(map[string]uint32),
		stringCache:  make(map[string]StringRef),
	}
}

// Encode converts tree (with its portals already built by
// build.BuildPortals) plus a flat list of entities into a CompactMap.
func (e *Encoder) Encode(tree *build.Tree, entities []build.Entity, lightmaps func(build.Polygon) build.LightmapTile) *CompactMap {
	// Pass 1: portals get frozen slot indices (leaf fields patched later).
	portalSlot := make([]int, len(tree.Portals))
	for i, p := range tree.Portals {
		first := uint32(len(e.out.Vertices))
		e.out.Vertices = append(e.out.Vertices, p.Loop...)
		portalSlot[i] = len(e.out.Portals)
		e.out.Portals = append(e.out.Portals, Portal{
			FirstVertex: first,
			NumVertices: uint32(len(p.Loop)),
			Plane:       p.Plane,
			// Leafs[] patched once leaf indices are known below.
		})
	}

	// Pass 2: DFS emitting leafs before nodes, so a node's child values
	// can reference either an already-emitted leaf (tagged via
	// LeafChild) or a node index assigned after both subtrees return.
	leafIndexOf := make(map[int32]uint32) // build-tree leaf idx -> compact leaf idx
	var emit func(ref build.Ref) uint32   // returns a Node.Children-shaped value
	emit = func(ref build.Ref) uint32 {
		if ref.Leaf {
			compactIdx, ok := leafIndexOf[ref.Index]
			if !ok {
				compactIdx = uint32(len(e.out.Leafs))
				leafIndexOf[ref.Index] = compactIdx
				e.emitLeaf(tree.Leafs[ref.Index], lightmaps)
			}
			return LeafChild(compactIdx)
		}
		node := tree.Nodes[ref.Index]
		frontChild := emit(node.Children[0])
		backChild := emit(node.Children[1])
		idx := uint32(len(e.out.Nodes))
		e.out.Nodes = append(e.out.Nodes, Node{Plane: node.Plane, Children: [2]uint32{frontChild, backChild}})
		return idx
	}
	rootVal := emit(tree.Root)
	_ = rootVal // the root is always a node in a non-trivial tree; submodels record it explicitly.

	// Pass 3: patch portal Leafs[] now that leaf indices are final, and
	// populate each leaf's LeafsPortals range.
	leafPortalLists := make([][]uint32, len(e.out.Leafs))
	for i, p := range tree.Portals {
		front := leafIndexOf[p.FrontLeaf]
		back := leafIndexOf[p.BackLeaf]
		e.out.Portals[portalSlot[i]].Leafs = [2]uint32{front, back}
		leafPortalLists[front] = append(leafPortalLists[front], uint32(portalSlot[i]))
		leafPortalLists[back] = append(leafPortalLists[back], uint32(portalSlot[i]))
	}
	for leafIdx, list := range leafPortalLists {
		first := uint32(len(e.out.LeafsPortals))
		e.out.LeafsPortals = append(e.out.LeafsPortals, list...)
		l := e.out.Leafs[leafIdx]
		l.FirstLeafPortal = first
		l.NumLeafPortals = uint32(len(list))
		e.out.Leafs[leafIdx] = l
	}

	e.encodeEntities(entities)

	return &e.out
}

func (e *Encoder) emitLeaf(leaf build.Leaf, lightmaps func(build.Polygon) build.LightmapTile) {
	first := uint32(len(e.out.Polygons))
	for _, p := range leaf.Polygons {
		e.emitPolygon(p, lightmaps)
	}
	e.out.Leafs = append(e.out.Leafs, Leaf{
		FirstPolygon: first,
		NumPolygons:  uint32(len(e.out.Polygons)) - first,
	})
}

// emitPolygon splits p across the MaxLightmapSize tile limit (spec.md
// §4.4), interns its texture, bakes (or reuses an injected) lightmap, and
// appends the resulting runtime polygon record(s).
func (e *Encoder) emitPolygon(p build.Polygon, lightmaps func(build.Polygon) build.LightmapTile) {
	for _, part := range splitForLightmapLimit(p) {
		min, max := build.TexCoordBounds(part)
		rmin, rmax := build.RoundOutward(min, max, build.LightmapScale)

		var lmOffset uint32
		if lightmaps != nil {
			tile := lightmaps(part)
			lmOffset = uint32(len(e.out.LightmapsData))
			e.out.LightmapsData = append(e.out.LightmapsData, tile.Texels...)
		}

		first := uint32(len(e.out.Vertices))
		e.out.Vertices = append(e.out.Vertices, part.Verts...)

		e.out.Polygons = append(e.out.Polygons, Polygon{
			FirstVertex:      first,
			NumVertices:      uint32(len(part.Verts)),
			Plane:            part.Plane,
			TexCoordEquation: [2]geom.Plane{part.Tex.UAxis, part.Tex.VAxis},
			TexCoordMin:      [2]int32{int32(rmin[0]), int32(rmin[1])},
			TexCoordMax:      [2]int32{int32(rmax[0]), int32(rmax[1])},
			LightmapDataOffset: lmOffset,
			TextureIndex:     e.internTexture(part.Tex.Name),
		})
	}
}

// splitForLightmapLimit recursively bisects p (by its longer texture-space
// axis) until each fragment's rounded-out tex-coord extent fits within
// MaxLightmapSize*LightmapScale world units per axis.
func splitForLightmapLimit(p build.Polygon) []build.Polygon {
	min, max := build.TexCoordBounds(p)
	rmin, rmax := build.RoundOutward(min, max, build.LightmapScale)
	limit := MaxLightmapSize * build.LightmapScale
	du := rmax[0] - rmin[0]
	dv := rmax[1] - rmin[1]
	if du <= limit && dv <= limit {
		return []build.Polygon{p}
	}

	// Split along world space using the texture axis with the larger
	// extent, via the plane equation axis itself (so fragments stay
	// convex and planar).
	var splitPlane geom.Plane
	if du >= dv {
		splitPlane = p.Tex.UAxis
	} else {
		splitPlane = p.Tex.VAxis
	}
	mid := (min[0] + max[0]) / 2
	if du < dv {
		mid = (min[1] + max[1]) / 2
	}
	splitPlane.D = splitPlane.D + mid

	front, back := geom.SplitPolygon(p.Verts, splitPlane)
	var out []build.Polygon
	if len(front) >= 3 {
		fp := p
		fp.Verts = front
		out = append(out, splitForLightmapLimit(fp)...)
	}
	if len(back) >= 3 {
		bp := p
		bp.Verts = back
		out = append(out, splitForLightmapLimit(bp)...)
	}
	if len(out) == 0 {
		// Degenerate split (e.g. a sliver): fall back to the whole
		// polygon rather than dropping it silently -- lightmap size
		// overflow, while a capacity concern, must not lose geometry.
		return []build.Polygon{p}
	}
	return out
}

func (e *Encoder) internTexture(name string) uint32 {
	if idx, ok := e.textureIndex[name]; ok {
		return idx
	}
	idx := uint32(len(e.out.Textures))
	var tex Texture
	copy(tex.Name[:], name)
	e.out.Textures = append(e.out.Textures, tex)
	e.textureIndex[name] = idx
	return idx
}

// internString interns s into the shared StringsData pool with a dedupe
// cache (spec.md §4.4), truncating once MaxStringPoolSize is reached
// (spec.md §7 capacity-overflow policy: truncate with a named cap, log
// during build only).
func (e *Encoder) internString(s string) StringRef {
	if r, ok := e.stringCache[s]; ok {
		return r
	}
	if len(e.stringPool)+len(s) > MaxStringPoolSize {
		qse.Logger().Warn("compactmap: string pool capacity exceeded, truncating", "string", s)
		return StringRef{}
	}
	r := StringRef{Offset: uint16(len(e.stringPool)), Size: uint16(len(s))}
	e.stringPool = append(e.stringPool, s...)
	e.stringCache[s] = r
	e.out.StringsData = e.stringPool
	return r
}

func (e *Encoder) encodeEntities(entities []build.Entity) {
	for _, ent := range entities {
		first := uint32(len(e.out.KeyValuePairs))
		for k, v := range ent.Keys {
			e.out.KeyValuePairs = append(e.out.KeyValuePairs, KeyValue{
				Key:   e.internString(k),
				Value: e.internString(v),
			})
		}
		e.out.Entities = append(e.out.Entities, Entity{
			FirstKeyValue: first,
			NumKeyValues:  uint32(len(e.out.KeyValuePairs)) - first,
		})
	}
}
