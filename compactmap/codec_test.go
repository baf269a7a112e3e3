package compactmap

import (
	"bytes"
	"testing"

	"github.com/quakesoft/qse/build"
	"github.com/quakesoft/qse/geom"
)

func axialTex() build.TextureRef {
	return build.TextureRef{
		Name:  "wall",
		UAxis: geom.Plane{N: geom.Vec3{X: 1}, D: 0},
		VAxis: geom.Plane{N: geom.Vec3{Y: 1}, D: 0},
	}
}

func quadPolyBuild(plane geom.Plane, verts geom.Polygon3) build.Polygon {
	return build.Polygon{Verts: verts, Plane: plane, Tex: axialTex()}
}

// buildTwoLeafTree builds a minimal BSP (one splitter) inside a closed
// 10x10x10 box and runs portal synthesis, mirroring the build package's own
// twoLeafTree test fixture.
func buildTwoLeafTree(splitter build.Polygon) *build.Tree {
	tree := build.BuildTree([]build.Polygon{splitter}, false)
	bounds := build.WorldBounds{Min: geom.Vec3{-5, -5, -5}, Max: geom.Vec3{5, 5, 5}}
	build.BuildPortals(tree, bounds, []geom.Vec3{{-2, 0, 0}, {2, 0, 0}})
	return tree
}

func sampleMap() *CompactMap {
	m := &CompactMap{
		Vertices: []Vertex{{0, 0, 0}, {64, 0, 0}, {64, 64, 0}, {0, 64, 0}},
		Polygons: []Polygon{{
			FirstVertex: 0,
			NumVertices: 4,
			Plane:       geom.Plane{N: geom.Vec3{Z: 1}, D: 0},
			TextureIndex: 0,
		}},
		Nodes: []Node{{
			Plane:    geom.Plane{N: geom.Vec3{X: 1}, D: 0},
			Children: [2]uint32{LeafChild(0), LeafChild(1)},
		}},
		Leafs: []Leaf{
			{FirstPolygon: 0, NumPolygons: 1},
			{FirstPolygon: 1, NumPolygons: 0},
		},
		Portals: []Portal{{
			FirstVertex: 0,
			NumVertices: 4,
			Leafs:       [2]uint32{0, 1},
			Plane:       geom.Plane{N: geom.Vec3{X: 1}, D: 0},
		}},
		Textures: []Texture{{}},
		Entities: []Entity{{FirstKeyValue: 0, NumKeyValues: 1}},
		KeyValuePairs: []KeyValue{{
			Key:   StringRef{Offset: 0, Size: 6},
			Value: StringRef{Offset: 6, Size: 5},
		}},
		StringsData:   []byte("origin1 2 3"),
		LightmapsData: []byte{1, 2, 3, 4, 5, 6},
		LightGrid: LightGridHeader{
			Origin:     geom.Vec3{-10, -10, -10},
			CellSize:   geom.Vec3{8, 8, 8},
			Dimensions: [3]uint32{4, 4, 4},
		},
		LightGridColumns: []uint32{0, 2, 4},
		LightGridSamples: []byte{10, 20, 30, 40, 50, 60},
	}
	copy(m.Textures[0].Name[:], "brick01")
	return m
}

func TestWriteLoadRoundTrip(t *testing.T) {
	m := sampleMap()
	var buf bytes.Buffer
	if err := Write(&buf, m); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := Load(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(got.Vertices) != len(m.Vertices) {
		t.Fatalf("Vertices len = %d, want %d", len(got.Vertices), len(m.Vertices))
	}
	for i := range m.Vertices {
		if got.Vertices[i] != m.Vertices[i] {
			t.Errorf("Vertices[%d] = %v, want %v", i, got.Vertices[i], m.Vertices[i])
		}
	}
	if len(got.Polygons) != 1 || got.Polygons[0].NumVertices != 4 {
		t.Errorf("Polygons round-trip mismatch: %+v", got.Polygons)
	}
	if len(got.Nodes) != 1 || !IsLeaf(got.Nodes[0].Children[0]) {
		t.Errorf("Nodes round-trip mismatch: %+v", got.Nodes)
	}
	if len(got.Leafs) != 2 {
		t.Errorf("Leafs round-trip mismatch: %+v", got.Leafs)
	}
	if len(got.Portals) != 1 || got.Portals[0].Leafs != [2]uint32{0, 1} {
		t.Errorf("Portals round-trip mismatch: %+v", got.Portals)
	}
	if len(got.Textures) != 1 || got.Textures[0].TextureNameString() != "brick01" {
		t.Errorf("Textures round-trip mismatch: %q", got.Textures[0].TextureNameString())
	}
	if got.String(got.KeyValuePairs[0].Key) != "origin" {
		t.Errorf("KeyValuePairs key round-trip = %q, want %q", got.String(got.KeyValuePairs[0].Key), "origin")
	}
	if got.String(got.KeyValuePairs[0].Value) != "1 2 3" {
		t.Errorf("KeyValuePairs value round-trip = %q, want %q", got.String(got.KeyValuePairs[0].Value), "1 2 3")
	}
	if !bytes.Equal(got.LightmapsData, m.LightmapsData) {
		t.Errorf("LightmapsData round-trip mismatch")
	}
	if got.LightGrid != m.LightGrid {
		t.Errorf("LightGrid round-trip mismatch: %+v, want %+v", got.LightGrid, m.LightGrid)
	}
	if len(got.LightGridColumns) != len(m.LightGridColumns) {
		t.Errorf("LightGridColumns round-trip mismatch")
	}
	if !bytes.Equal(got.LightGridSamples, m.LightGridSamples) {
		t.Errorf("LightGridSamples round-trip mismatch")
	}
}

func TestLoadRejectsBadMagic(t *testing.T) {
	m := sampleMap()
	var buf bytes.Buffer
	if err := Write(&buf, m); err != nil {
		t.Fatalf("Write: %v", err)
	}
	corrupted := buf.Bytes()
	corrupted[0] ^= 0xFF
	if _, err := Load(bytes.NewReader(corrupted)); err == nil {
		t.Error("expected error loading map with corrupted magic")
	}
}

func TestLoadRejectsUnsupportedVersion(t *testing.T) {
	m := sampleMap()
	var buf bytes.Buffer
	if err := Write(&buf, m); err != nil {
		t.Fatalf("Write: %v", err)
	}
	corrupted := buf.Bytes()
	// Version is the uint32 immediately after the 4-byte magic.
	corrupted[4] = 0xFF
	if _, err := Load(bytes.NewReader(corrupted)); err == nil {
		t.Error("expected error loading map with unsupported version")
	}
}

func TestEncoderProducesDecodableMap(t *testing.T) {
	splitter := quadPolyBuild(
		geom.Plane{N: geom.Vec3{X: 1}, D: 0},
		geom.Polygon3{{0, -5, -5}, {0, 5, -5}, {0, 5, 5}, {0, -5, 5}},
	)
	tree := buildTwoLeafTree(splitter)

	enc := NewEncoder()
	got := enc.Encode(tree, nil, nil)

	var buf bytes.Buffer
	if err := Write(&buf, got); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := Load(bytes.NewReader(buf.Bytes())); err != nil {
		t.Fatalf("Load: %v", err)
	}
}
