package engine

import (
	"testing"

	"github.com/quakesoft/qse/compactmap"
	"github.com/quakesoft/qse/geom"
	"github.com/quakesoft/qse/material"
)

// fakeSurface is a minimal Surface backed by a plain byte slice, the shape
// a platform window backend's pixel buffer takes.
type fakeSurface struct {
	w, h, pitch int
	pix         []byte
}

func newFakeSurface(w, h int) *fakeSurface {
	pitch := w * 4
	return &fakeSurface{w: w, h: h, pitch: pitch, pix: make([]byte, pitch*h)}
}

func (s *fakeSurface) Width() int    { return s.w }
func (s *fakeSurface) Height() int   { return s.h }
func (s *fakeSurface) Pitch() int    { return s.pitch }
func (s *fakeSurface) Pixels() []byte { return s.pix }

// oneRoomMap builds a single convex leaf with one wall polygon facing back
// toward the origin along -X, no portals -- the camera's leaf is never
// flooded past its own bound.
func oneRoomMap() *compactmap.CompactMap {
	verts := []compactmap.Vertex{
		{X: 4, Y: -2, Z: -2},
		{X: 4, Y: -2, Z: 2},
		{X: 4, Y: 2, Z: 2},
		{X: 4, Y: 2, Z: -2},
	}
	plane := geom.NewPlaneFromPoints(verts[0], verts[1], verts[2])
	return &compactmap.CompactMap{
		Vertices: verts,
		Polygons: []compactmap.Polygon{
			{FirstVertex: 0, NumVertices: 4, Plane: plane, TextureIndex: 0},
		},
		Leafs:    []compactmap.Leaf{{FirstPolygon: 0, NumPolygons: 1}},
		Textures: []compactmap.Texture{textureNamed("wall")},
	}
}

func TestEngineFrameRunsWithoutPanicking(t *testing.T) {
	m := oneRoomMap()
	mats := material.NewRegistry(nil)
	mats.Add(material.Material{Name: "wall", Draw: true})

	e := New(m, mats, Config{Width: 16, Height: 16, FovY: 1.2, Near: 0.1})

	in := FrameInput{
		Camera: CameraPose{
			Pos:     geom.Vec3{},
			Right:   geom.Vec3{Y: 1},
			Up:      geom.Vec3{Z: 1},
			Forward: geom.Vec3{X: 1},
		},
		DT: 1.0 / 60,
	}
	out := newFakeSurface(16, 16)

	e.Frame(in, out)

	for y := 0; y < out.h; y++ {
		for x := 0; x < out.w; x++ {
			off := y*out.pitch + x*4
			if out.pix[off+3] != 255 {
				t.Fatalf("pixel (%d,%d) alpha = %d, want 255", x, y, out.pix[off+3])
			}
		}
	}
}

func TestEngineFrameAdvancesFrameCounter(t *testing.T) {
	m := oneRoomMap()
	mats := material.NewRegistry(nil)
	mats.Add(material.Material{Name: "wall", Draw: true})

	e := New(m, mats, Config{Width: 8, Height: 8, FovY: 1.2, Near: 0.1})
	out := newFakeSurface(8, 8)
	in := FrameInput{Camera: CameraPose{Right: geom.Vec3{Y: 1}, Up: geom.Vec3{Z: 1}, Forward: geom.Vec3{X: 1}}}

	e.Frame(in, out)
	e.Frame(in, out)
	if e.frameNum != 2 {
		t.Errorf("frameNum = %d, want 2", e.frameNum)
	}
}
