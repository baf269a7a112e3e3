package raster

import (
	"testing"

	"github.com/quakesoft/qse/geom"
	"github.com/quakesoft/qse/internal/color"
	"github.com/quakesoft/qse/internal/tiling"
)

func solidSampler(c color.ColorF32) Sampler {
	return func(u, v float64) color.ColorF32 { return c }
}

func newTestTile() *tiling.Tile {
	g := tiling.NewGrid(tiling.Size, tiling.Size)
	return g.TileAt(0, 0)
}

func squarePoly() geom.Polygon2 {
	return geom.Polygon2{
		{X: 10, Y: 10},
		{X: 30, Y: 10},
		{X: 30, Y: 30},
		{X: 10, Y: 30},
	}
}

func TestFillConvexPolygonFillsExpectedSpan(t *testing.T) {
	tile := newTestTile()
	depthEq := Equation{K: 1} // constant 1/z = 1 everywhere
	uEq := Equation{A: 1}     // u/z = x
	vEq := Equation{B: 1}     // v/z = y

	var gotU, gotV float64
	sample := func(u, v float64) color.ColorF32 {
		gotU, gotV = u, v
		return color.ColorF32{R: 1, A: 1}
	}

	FillConvexPolygon(tile, squarePoly(), depthEq, uEq, vEq, TCFullPerspective, BlendNone, sample)

	if tile.At(20, 20).R != 1 {
		t.Errorf("interior pixel (20,20) not filled: %v", tile.At(20, 20))
	}
	if tile.At(0, 0).R != 0 {
		t.Errorf("exterior pixel (0,0) should be untouched: %v", tile.At(0, 0))
	}
	_ = gotU
	_ = gotV
}

func TestFillConvexPolygonRejectsOutOfRangeCoordinates(t *testing.T) {
	tile := newTestTile()
	poly := geom.Polygon2{
		{X: 0, Y: 0},
		{X: CoordRangeLimit + 1, Y: 0},
		{X: 10, Y: 10},
	}
	sample := solidSampler(color.ColorF32{R: 1, A: 1})
	FillConvexPolygon(tile, poly, Equation{K: 1}, Equation{}, Equation{}, TCFullPerspective, BlendNone, sample)
	for i := range tile.Color {
		if tile.Color[i].R != 0 {
			t.Fatal("out-of-range polygon should not have been rasterized")
		}
	}
}

func TestFillConvexPolygonDegenerateIsNoop(t *testing.T) {
	tile := newTestTile()
	poly := geom.Polygon2{{X: 0, Y: 0}, {X: 1, Y: 0}}
	FillConvexPolygon(tile, poly, Equation{K: 1}, Equation{}, Equation{}, TCFullPerspective, BlendNone, solidSampler(color.ColorF32{R: 1}))
	for i := range tile.Color {
		if tile.Color[i].R != 0 {
			t.Fatal("polygon with < 3 vertices should not rasterize")
		}
	}
}

func TestFillConvexPolygonDepthTestRejectsFarther(t *testing.T) {
	tile := newTestTile()
	near := Equation{K: 1}
	far := Equation{K: 0.5}
	white := solidSampler(color.ColorF32{R: 1, G: 1, B: 1, A: 1})
	red := solidSampler(color.ColorF32{R: 1, A: 1})

	FillConvexPolygon(tile, squarePoly(), near, Equation{}, Equation{}, TCFullPerspective, BlendNone, white)
	FillConvexPolygon(tile, squarePoly(), far, Equation{}, Equation{}, TCFullPerspective, BlendNone, red)

	if got := tile.At(20, 20); got.R != 1 || got.G != 1 {
		t.Errorf("nearer surface should have won depth test, got %v", got)
	}
}

func TestTCModesAgreeAtSpanEndpoints(t *testing.T) {
	depthEq := Equation{A: 0.001, K: 1}
	uEq := Equation{A: 2, K: 3}
	vEq := Equation{B: 1}

	for _, mode := range []TCMode{TCAffine, TCLineZCorrected, TCFullPerspective} {
		tile := newTestTile()
		var lastU float64
		sample := func(u, v float64) color.ColorF32 {
			lastU = u
			return color.ColorF32{R: 1, A: 1}
		}
		FillConvexPolygon(tile, squarePoly(), depthEq, uEq, vEq, mode, BlendNone, sample)
		if lastU == 0 {
			t.Errorf("mode %v: sampler never invoked", mode)
		}
	}
}

func TestBlendAlphaTestDiscardsBelowThreshold(t *testing.T) {
	tile := newTestTile()
	sample := solidSampler(color.ColorF32{R: 1, A: 0.1})
	FillConvexPolygon(tile, squarePoly(), Equation{K: 1}, Equation{}, Equation{}, TCFullPerspective, BlendAlphaTest, sample)
	if tile.At(20, 20).A != 0 {
		t.Errorf("alpha below threshold should have been discarded, got %v", tile.At(20, 20))
	}
}

func TestBlendAdditiveSumsChannels(t *testing.T) {
	tile := newTestTile()
	base := solidSampler(color.ColorF32{R: 0.3, A: 1})
	add := solidSampler(color.ColorF32{R: 0.4, A: 1})
	// The depth test is strict "greater wins"; the second (blended) layer
	// needs a strictly nearer 1/z than the base to be drawn at all.
	FillConvexPolygon(tile, squarePoly(), Equation{K: 1}, Equation{}, Equation{}, TCFullPerspective, BlendNone, base)
	FillConvexPolygon(tile, squarePoly(), Equation{K: 2}, Equation{}, Equation{}, TCFullPerspective, BlendAdditive, add)
	if got := tile.At(20, 20).R; got < 0.69 || got > 0.71 {
		t.Errorf("additive R = %v, want ~0.7", got)
	}
}

func TestBlendAlphaBlendComposites(t *testing.T) {
	tile := newTestTile()
	base := solidSampler(color.ColorF32{R: 0, A: 1})
	over := solidSampler(color.ColorF32{R: 1, A: 0.5})
	FillConvexPolygon(tile, squarePoly(), Equation{K: 1}, Equation{}, Equation{}, TCFullPerspective, BlendNone, base)
	FillConvexPolygon(tile, squarePoly(), Equation{K: 2}, Equation{}, Equation{}, TCFullPerspective, BlendAlphaBlend, over)
	if got := tile.At(20, 20).R; got < 0.49 || got > 0.51 {
		t.Errorf("alpha-blend R = %v, want ~0.5", got)
	}
}

func TestFillTriangleGouraudInterpolatesVertexColors(t *testing.T) {
	tile := newTestTile()
	white := color.ColorF32{R: 1, G: 1, B: 1, A: 1}
	v0 := GouraudVertex{X: 10, Y: 10, InvZ: 1, ROverZ: 1, GOverZ: 1, BOverZ: 1}
	v1 := GouraudVertex{X: 40, Y: 10, InvZ: 1, ROverZ: 0, GOverZ: 1, BOverZ: 1}
	v2 := GouraudVertex{X: 25, Y: 40, InvZ: 1, ROverZ: 1, GOverZ: 0, BOverZ: 1}

	FillTriangleGouraud(tile, v0, v1, v2, BlendNone, solidSampler(white))

	// Centroid ~(25,20): each vertex contributes ~1/3, so R and G average
	// down from 1 while B (lit 1 at every vertex) stays at 1.
	got := tile.At(25, 20)
	if got.B < 0.9 {
		t.Errorf("centroid blue should stay near 1 (lit at every vertex): %v", got)
	}
	if got.R >= 1 || got.G >= 1 {
		t.Errorf("centroid R/G should be pulled down by the unlit vertices: %v", got)
	}
	if tile.At(0, 0) != (color.ColorF32{}) {
		t.Error("pixel outside triangle should be untouched")
	}
}

func TestFillTriangleGouraudDegenerateIsNoop(t *testing.T) {
	tile := newTestTile()
	v := GouraudVertex{X: 10, Y: 10, InvZ: 1}
	FillTriangleGouraud(tile, v, v, v, BlendNone, solidSampler(color.ColorF32{R: 1, A: 1}))
	for i := range tile.Color {
		if tile.Color[i].A != 0 {
			t.Fatal("degenerate (zero-area) triangle should not rasterize")
		}
	}
}

func TestFillTriangleGouraudRejectsOutOfRangeCoordinates(t *testing.T) {
	tile := newTestTile()
	v0 := GouraudVertex{X: 0, Y: 0, InvZ: 1}
	v1 := GouraudVertex{X: CoordRangeLimit + 1, Y: 0, InvZ: 1}
	v2 := GouraudVertex{X: 10, Y: 10, InvZ: 1}
	FillTriangleGouraud(tile, v0, v1, v2, BlendNone, solidSampler(color.ColorF32{R: 1, A: 1}))
	for i := range tile.Color {
		if tile.Color[i].A != 0 {
			t.Fatal("out-of-range triangle should not rasterize")
		}
	}
}
