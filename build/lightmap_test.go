package build

import (
	"testing"

	"github.com/quakesoft/qse/geom"
)

func TestRoundOutwardMatchesE4(t *testing.T) {
	// spec.md E4: tex_coord_min=(0,0), tex_coord_max=(64,64), scale=16
	// rounds out to (0,64) in each axis.
	rmin, rmax := RoundOutward([2]float64{0, 0}, [2]float64{64, 64}, 16)
	if rmin != [2]int{0, 0} || rmax != [2]int{64, 64} {
		t.Errorf("RoundOutward = (%v, %v), want (0,0)-(64,64)", rmin, rmax)
	}
}

func TestRoundOutwardRoundsAwayFromBounds(t *testing.T) {
	rmin, rmax := RoundOutward([2]float64{3, 3}, [2]float64{61, 70}, 16)
	if rmin[0] > 3 || rmin[1] > 3 {
		t.Errorf("rmin=%v should round down/outward from (3,3)", rmin)
	}
	if rmax[0] < 61 || rmax[1] < 70 {
		t.Errorf("rmax=%v should round up/outward from (61,70)", rmax)
	}
}

func TestBakeLightmapProducesNonEmptyTile(t *testing.T) {
	p := quadPoly(
		geom.Plane{N: geom.Vec3{Z: 1}, D: 0},
		geom.Polygon3{{0, 0, 0}, {64, 0, 0}, {64, 64, 0}, {0, 64, 0}},
	)
	lights := []StaticLight{{Pos: geom.Vec3{32, 32, 50}, Color: [3]float64{1, 1, 1}, Intensity: 1000}}
	tile := BakeLightmap(p, lights, [3]float64{0.05, 0.05, 0.05})
	if tile.Width <= 0 || tile.Height <= 0 {
		t.Fatalf("expected a non-empty tile, got %dx%d", tile.Width, tile.Height)
	}
	if len(tile.Texels) != tile.Width*tile.Height*3 {
		t.Errorf("texel buffer size mismatch: got %d, want %d", len(tile.Texels), tile.Width*tile.Height*3)
	}
}

func TestComputePVSIncludesSelf(t *testing.T) {
	tree := twoLeafTree(t)
	bounds := WorldBounds{Min: geom.Vec3{-5, -5, -5}, Max: geom.Vec3{5, 5, 5}}
	BuildPortals(tree, bounds, []geom.Vec3{{-2, 0, 0}, {2, 0, 0}})
	pvs := ComputePVS(tree)
	for i, set := range pvs {
		if !set[i] {
			t.Errorf("leaf %d should always see itself in its own PVS", i)
		}
	}
}
