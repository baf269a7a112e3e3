// Package model holds the triangle-model contract spec.md §6 names: an
// abstract Loader returning static, vertex-animated, or skeletal meshes,
// plus the runtime logic that turns a loaded Model and a pose into
// screen-ready Gouraud triangles for the rasterizer (spec.md §4.8 step 6).
package model

import "github.com/quakesoft/qse/geom"

// AnimationKind selects how a Mesh's per-vertex positions move across
// frames, per spec.md §6: "a mesh's vertices either static, vertex-
// animated across frames, or skeletal."
type AnimationKind int

const (
	Static AnimationKind = iota
	VertexAnimated
	Skeletal
)

// Vertex is one bind-pose (or single, non-animated) mesh vertex.
type Vertex struct {
	Pos    geom.Vec3
	Normal geom.Vec3
	U, V   float64

	// BoneIndex is only meaningful when the owning Mesh's Kind is
	// Skeletal: the single bone (by index into Model.Bones) this vertex
	// is rigidly attached to.
	BoneIndex int
}

// VertexFrame is one animation frame's position+normal for a single
// vertex-animated vertex (classic per-frame-snapshot vertex animation).
type VertexFrame struct {
	Pos    geom.Vec3
	Normal geom.Vec3
}

// Triangle is three indices into a Mesh's Vertices.
type Triangle struct {
	A, B, C int
}

// Mesh is one drawable piece of a Model: a fixed triangle list over a
// vertex set that is either static, replaced wholesale per frame
// (VertexAnimated, via Frames), or posed by Model.Bones/FrameBones
// (Skeletal).
type Mesh struct {
	Material   string
	Kind       AnimationKind
	Vertices   []Vertex // bind pose / only pose, for Static and Skeletal
	Triangles  []Triangle
	Frames     [][]VertexFrame // one []VertexFrame per frame, VertexAnimated only; each the same length as Vertices
}

// FrameInfo is one animation frame's bounding box, used to cull an
// off-screen animated mesh instance before any per-vertex work.
type FrameInfo struct {
	Mins, Maxs geom.Vec3
}

// Bone is one joint in a Skeletal mesh's hierarchy.
type Bone struct {
	Name   string
	Parent int // index into Model.Bones, or -1 for a root bone
}

// BoneFrame is one bone's local (parent-relative) pose at a single
// animation frame.
type BoneFrame struct {
	Local geom.Transform
}

// Model is the full asset a Loader returns: one or more Meshes sharing a
// common frame count, per-frame bounding boxes, and an optional bone
// hierarchy with per-frame bone poses for Skeletal meshes.
type Model struct {
	Meshes     []Mesh
	FrameInfos []FrameInfo
	Bones      []Bone
	FrameBones [][]BoneFrame // FrameBones[frame][bone]
	TexCoordShift geom.Vec2
}

// NumFrames reports the model's animation frame count.
func (m *Model) NumFrames() int {
	return len(m.FrameInfos)
}

// Loader is the abstract triangle-model loader spec.md §6 names: "no
// parser is included" in this module, mirroring material.TextureLoader's
// external-collaborator contract. Callers supply a concrete loader for
// whatever on-disk model format their asset pipeline uses.
type Loader interface {
	Load(name string) (*Model, error)
}
