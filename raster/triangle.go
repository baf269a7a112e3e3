package raster

import (
	"math"

	"github.com/quakesoft/qse/internal/color"
	"github.com/quakesoft/qse/internal/tiling"
)

// GouraudVertex is one dynamic-mesh/decal triangle vertex, in screen space
// plus perspective-correct attributes already divided by z (spec.md §4.7:
// "interpolates (u, v, r, g, b) light values per vertex (Gouraud) on top
// of the texture fetch").
type GouraudVertex struct {
	X, Y float64 // screen space
	InvZ float64

	UOverZ, VOverZ         float64
	ROverZ, GOverZ, BOverZ float64
}

// FillTriangleGouraud barycentrically rasterizes a single triangle into
// tile: per-pixel perspective-correct (u, v) drives a texture sample,
// per-pixel perspective-correct (r, g, b) is the Gouraud light multiplied
// onto it, and the usual depth test/blend apply on write.
func FillTriangleGouraud(tile *tiling.Tile, v0, v1, v2 GouraudVertex, blend BlendMode, sample Sampler) {
	if !inCoordRange(v0.X, v0.Y) || !inCoordRange(v1.X, v1.Y) || !inCoordRange(v2.X, v2.Y) {
		return
	}
	area := edgeFunc(v0.X, v0.Y, v1.X, v1.Y, v2.X, v2.Y)
	if area == 0 {
		return
	}

	minX := int(math.Floor(math.Min(v0.X, math.Min(v1.X, v2.X))))
	maxX := int(math.Ceil(math.Max(v0.X, math.Max(v1.X, v2.X))))
	minY := int(math.Floor(math.Min(v0.Y, math.Min(v1.Y, v2.Y))))
	maxY := int(math.Ceil(math.Max(v0.Y, math.Max(v1.Y, v2.Y))))

	minX = max(minX, tile.OriginX)
	maxX = min(maxX, tile.OriginX+tile.Width)
	minY = max(minY, tile.OriginY)
	maxY = min(maxY, tile.OriginY+tile.Height)

	for y := minY; y < maxY; y++ {
		fy := float64(y) + 0.5
		for x := minX; x < maxX; x++ {
			fx := float64(x) + 0.5

			w0 := edgeFunc(v1.X, v1.Y, v2.X, v2.Y, fx, fy)
			w1 := edgeFunc(v2.X, v2.Y, v0.X, v0.Y, fx, fy)
			w2 := edgeFunc(v0.X, v0.Y, v1.X, v1.Y, fx, fy)
			if !insideTriangle(w0, w1, w2, area) {
				continue
			}

			b0, b1, b2 := w0/area, w1/area, w2/area
			invZ := b0*v0.InvZ + b1*v1.InvZ + b2*v2.InvZ
			u := safeDiv(b0*v0.UOverZ+b1*v1.UOverZ+b2*v2.UOverZ, invZ)
			v := safeDiv(b0*v0.VOverZ+b1*v1.VOverZ+b2*v2.VOverZ, invZ)
			r := safeDiv(b0*v0.ROverZ+b1*v1.ROverZ+b2*v2.ROverZ, invZ)
			g := safeDiv(b0*v0.GOverZ+b1*v1.GOverZ+b2*v2.GOverZ, invZ)
			bl := safeDiv(b0*v0.BOverZ+b1*v1.BOverZ+b2*v2.BOverZ, invZ)

			texel := sample(u, v)
			lit := color.ColorF32{
				R: texel.R * float32(r),
				G: texel.G * float32(g),
				B: texel.B * float32(bl),
				A: texel.A,
			}
			writeLitPixel(tile, x, y, invZ, lit, blend)
		}
	}
}

func edgeFunc(ax, ay, bx, by, px, py float64) float64 {
	return (bx-ax)*(py-ay) - (by-ay)*(px-ax)
}

func insideTriangle(w0, w1, w2, area float64) bool {
	if area > 0 {
		return w0 >= 0 && w1 >= 0 && w2 >= 0
	}
	return w0 <= 0 && w1 <= 0 && w2 <= 0
}

func writeLitPixel(tile *tiling.Tile, x, y int, invZ float64, src color.ColorF32, blend BlendMode) {
	lx, ly := x-tile.OriginX, y-tile.OriginY
	if !tile.DepthTest(lx, ly, float32(invZ)) {
		return
	}
	dst := tile.At(lx, ly)
	out, keep := applyBlend(blend, src, dst)
	if !keep {
		return
	}
	tile.Write(lx, ly, out, float32(invZ))
}
