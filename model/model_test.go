package model

import (
	"errors"
	"testing"

	"github.com/quakesoft/qse/compactmap"
	"github.com/quakesoft/qse/geom"
	"github.com/quakesoft/qse/raster"
)

type fakeLoader struct {
	calls int
	fail  bool
	model *Model
}

func (f *fakeLoader) Load(name string) (*Model, error) {
	f.calls++
	if f.fail {
		return nil, errors.New("load failed")
	}
	return f.model, nil
}

func TestRegistryGetReturnsStubForFailedLoad(t *testing.T) {
	r := NewRegistry(&fakeLoader{fail: true})
	m := r.Get("missing")
	if len(m.Meshes) != 1 || len(m.Meshes[0].Triangles) != 1 {
		t.Errorf("expected a single-triangle stub, got %+v", m)
	}
}

func TestRegistryGetCachesLoaderCalls(t *testing.T) {
	loader := &fakeLoader{model: &Model{FrameInfos: []FrameInfo{{}}}}
	r := NewRegistry(loader)
	r.Get("ogre")
	r.Get("ogre")
	if loader.calls != 1 {
		t.Errorf("loader called %d times, want 1 (cached)", loader.calls)
	}
}

func TestAnimationStateAdvanceLoops(t *testing.T) {
	a := NewAnimationState(4, 10) // 4 frames at 10 fps -> 0.4s per cycle
	frame, next, alpha := a.Advance(0.15)
	if frame != 1 || next != 2 {
		t.Errorf("frame=%d next=%d, want 1,2", frame, next)
	}
	if alpha < 0.4 || alpha > 0.6 {
		t.Errorf("alpha = %v, want ~0.5", alpha)
	}

	// Advancing past the full cycle length should wrap back around.
	frame, _, _ = a.Advance(10)
	if frame < 0 || frame >= 4 {
		t.Errorf("frame out of range after wraparound: %d", frame)
	}
}

func TestAnimationStateSingleFrameNeverBlends(t *testing.T) {
	a := NewAnimationState(1, 30)
	frame, next, alpha := a.Advance(5)
	if frame != 0 || next != 0 || alpha != 0 {
		t.Errorf("single-frame mesh should never blend: got %d,%d,%v", frame, next, alpha)
	}
}

func TestWorldBonePosesComposesHierarchy(t *testing.T) {
	mdl := &Model{
		Bones: []Bone{
			{Name: "root", Parent: -1},
			{Name: "child", Parent: 0},
		},
		FrameBones: [][]BoneFrame{
			{
				{Local: geom.Transform{Pos: geom.Vec3{X: 10}, Right: geom.Vec3{X: 1}, Up: geom.Vec3{Y: 1}, Forward: geom.Vec3{Z: 1}, Scale: 1}},
				{Local: geom.Transform{Pos: geom.Vec3{X: 5}, Right: geom.Vec3{X: 1}, Up: geom.Vec3{Y: 1}, Forward: geom.Vec3{Z: 1}, Scale: 1}},
			},
		},
	}
	world := WorldBonePoses(mdl, 0)
	if world[0].Pos.X != 10 {
		t.Errorf("root bone world pos = %v, want X=10", world[0].Pos)
	}
	if world[1].Pos.X != 15 {
		t.Errorf("child bone world pos = %v, want X=15 (10 + 5)", world[1].Pos)
	}
}

func TestFrontFacingCullsReversedWinding(t *testing.T) {
	v := func(x, y float64) raster.GouraudVertex { return raster.GouraudVertex{X: x, Y: y} }

	if !frontFacing(v(0, 0), v(10, 0), v(0, 10)) {
		t.Error("expected CCW triangle to be front-facing")
	}
	if frontFacing(v(0, 0), v(0, 10), v(10, 0)) {
		t.Error("expected CW triangle to be back-facing")
	}
}

func TestPrepareMeshCullsAndSortsByDepth(t *testing.T) {
	mesh := &Mesh{
		Kind: Static,
		Vertices: []Vertex{
			{Pos: geom.Vec3{X: -1, Y: -1, Z: 5}},
			{Pos: geom.Vec3{X: 1, Y: -1, Z: 5}},
			{Pos: geom.Vec3{X: 0, Y: 1, Z: 5}},
			{Pos: geom.Vec3{X: -1, Y: -1, Z: 10}},
			{Pos: geom.Vec3{X: 1, Y: -1, Z: 10}},
			{Pos: geom.Vec3{X: 0, Y: 1, Z: 10}},
		},
		Triangles: []Triangle{{A: 0, B: 2, C: 1}, {A: 3, B: 5, C: 4}},
	}
	cam := geom.Camera{
		Right: geom.Vec3{X: 1}, Up: geom.Vec3{Y: 1}, Forward: geom.Vec3{Z: 1},
		FovY: 1.2, Near: 0.1, ScreenW: 640, ScreenH: 480,
	}
	lm := &compactmap.CompactMap{}

	tris := PrepareMesh(mesh, geom.IdentityTransform, 0, 0, 0, nil, cam, lm, geom.Vec3{})
	if len(tris) != 2 {
		t.Fatalf("len(tris) = %d, want 2", len(tris))
	}
	if tris[0].AvgInvZ > tris[1].AvgInvZ {
		t.Error("triangles should be sorted back-to-front (ascending 1/z)")
	}
}

func TestSampleLightGridReturnsZeroForEmptyGrid(t *testing.T) {
	lm := &compactmap.CompactMap{}
	got := SampleLightGrid(lm, geom.Vec3{})
	if got != (geom.Vec3{}) {
		t.Errorf("expected zero light for an empty grid, got %v", got)
	}
}

func TestSampleLightGridInterpolatesBetweenCells(t *testing.T) {
	lm := &compactmap.CompactMap{
		LightGrid: compactmap.LightGridHeader{
			Origin:     geom.Vec3{},
			CellSize:   geom.Vec3{X: 10, Y: 10, Z: 10},
			Dimensions: [3]uint32{2, 1, 1},
		},
		LightGridColumns: []uint32{0, 3},
		LightGridSamples: []byte{0, 0, 0, 255, 255, 255},
	}
	mid := SampleLightGrid(lm, geom.Vec3{X: 5})
	if mid.X < 0.4 || mid.X > 0.6 {
		t.Errorf("midpoint sample R = %v, want ~0.5", mid.X)
	}
}
