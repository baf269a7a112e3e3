// Package compactmap is the compact, index-based, immutable runtime map
// representation (spec.md §3/§6): a pointer-free IR built by interning the
// builder-form BSP/portal graph (package build) into flat indexed arrays,
// and its binary file format, grounded on the Quake 2 IBSP lump-table
// layout (other_examples' q2file.LoadQ2BSP: a fixed header naming a
// directory of {offset,size} lumps, each read via io.SectionReader).
package compactmap

import "github.com/quakesoft/qse/geom"

// MaxTextureNameLen bounds the fixed-width texture name byte slot
// (spec.md §6).
const MaxTextureNameLen = 32

// FirstLeafIndex is the sentinel BSPNode child encoding: a child value
// >= FirstLeafIndex denotes leaf index (child - FirstLeafIndex); anything
// smaller is a node index. It never collides with a real node count
// because it is fixed at 2^31-1 rather than len(Nodes).
const FirstLeafIndex = 1<<31 - 1

// Vertex is a plain world-space point.
type Vertex = geom.Vec3

// Polygon is the runtime, index-based polygon record (spec.md §3).
type Polygon struct {
	FirstVertex       uint32
	NumVertices       uint32
	Plane             geom.Plane
	TexCoordEquation  [2]geom.Plane
	TexCoordMin       [2]int32
	TexCoordMax       [2]int32
	LightmapDataOffset uint32
	TextureIndex      uint32
}

// Node is a BSP node: a splitter plane and two children, each either a node
// index or (children[i] - FirstLeafIndex) a leaf index.
type Node struct {
	Plane    geom.Plane
	Children [2]uint32
}

// IsLeaf reports whether child c (one of Node.Children) denotes a leaf.
func IsLeaf(c uint32) bool { return c >= FirstLeafIndex }

// LeafIndexOf extracts the leaf index from a leaf-tagged child value.
func LeafIndexOf(c uint32) uint32 { return c - FirstLeafIndex }

// LeafChild encodes leaf index idx as a Node child value.
func LeafChild(idx uint32) uint32 { return FirstLeafIndex + idx }

// Leaf is a terminal BSP region.
type Leaf struct {
	FirstPolygon    uint32
	NumPolygons     uint32
	FirstLeafPortal uint32
	NumLeafPortals  uint32
}

// Portal is a convex polygon on a splitter plane joining two leafs.
type Portal struct {
	FirstVertex uint32
	NumVertices uint32
	Leafs       [2]uint32
	Plane       geom.Plane
}

// Submodel is a chunk of world geometry (door, lift) with its own mini-BSP.
type Submodel struct {
	RootNode    uint32
	FirstPolygon uint32
	NumPolygons uint32
}

// Texture is a fixed-width interned texture name, resolved at runtime
// through the material registry (an external collaborator, spec.md §6).
type Texture struct {
	Name [MaxTextureNameLen]byte
}

// TextureNameString returns the texture name with trailing NULs trimmed.
func (t Texture) TextureNameString() string {
	n := 0
	for n < len(t.Name) && t.Name[n] != 0 {
		n++
	}
	return string(t.Name[:n])
}

// StringRef is a length-prefixed reference into StringsData.
type StringRef struct {
	Offset uint16
	Size   uint16
}

// KeyValue is one interned entity attribute.
type KeyValue struct {
	Key   StringRef
	Value StringRef
}

// Entity is a map-embedded entity's attribute range into KeyValuePairs.
type Entity struct {
	FirstKeyValue uint32
	NumKeyValues  uint32
}

// LightGridHeader describes the dimensions of the baked ambient light grid
// sampled by dynamic meshes (spec.md §4.8 step 6).
type LightGridHeader struct {
	Origin     geom.Vec3
	CellSize   geom.Vec3
	Dimensions [3]uint32
}

// CompactMap is the full immutable runtime map. It is produced once by
// Encoder.Encode and is safe for concurrent read access by the renderer,
// physics, and visibility calculator (spec.md §3 lifecycle).
type CompactMap struct {
	Vertices      []Vertex
	Polygons      []Polygon
	Nodes         []Node
	Leafs         []Leaf
	LeafsPortals  []uint32 // indices into Portals
	Portals       []Portal
	Submodels     []Submodel
	SubmodelsBSPNodes []Node
	Textures      []Texture
	Entities      []Entity
	KeyValuePairs []KeyValue
	StringsData   []byte

	LightmapsData            []byte
	DirectionalLightmapsData []byte

	LightGrid        LightGridHeader
	LightGridColumns []uint32 // per-(x,y) column start index into LightGridSamples
	LightGridSamples []byte   // RGB8 triples
}

// String looks up a StringRef in StringsData.
func (m *CompactMap) String(r StringRef) string {
	if int(r.Offset)+int(r.Size) > len(m.StringsData) {
		return ""
	}
	return string(m.StringsData[r.Offset : r.Offset+r.Size])
}

// PolygonVertices returns the vertex ring for polygon index i.
func (m *CompactMap) PolygonVertices(i int) []Vertex {
	p := m.Polygons[i]
	return m.Vertices[p.FirstVertex : p.FirstVertex+p.NumVertices]
}

// PortalVerticesOf returns the vertex ring for portal index i. Portals
// share the map's single Vertices pool with polygons.
func (m *CompactMap) PortalVerticesOf(i int) []Vertex {
	p := m.Portals[i]
	return m.Vertices[p.FirstVertex : p.FirstVertex+p.NumVertices]
}
