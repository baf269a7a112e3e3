package surface

import (
	"math"

	"github.com/quakesoft/qse/compactmap"
	"github.com/quakesoft/qse/geom"
	imgbuf "github.com/quakesoft/qse/internal/image"

	"github.com/quakesoft/qse/internal/color"
	"github.com/quakesoft/qse/material"
)

// lmTile is a polygon's static baked lightmap, sliced out of the map's
// shared LightmapsData blob.
type lmTile struct {
	Width, Height int
	Data          []byte // Width*Height*3, RGB8
	OriginU       int32
	OriginV       int32
}

// lightmapTile slices out polygon p's lightmap, sized from its static
// (build-time) tex-coord extent, matching build.BakeLightmap's layout.
func lightmapTile(m *compactmap.CompactMap, p compactmap.Polygon) lmTile {
	w := int((p.TexCoordMax[0]-p.TexCoordMin[0])/compactmapLightmapScale) + 1
	h := int((p.TexCoordMax[1]-p.TexCoordMin[1])/compactmapLightmapScale) + 1
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	n := w * h * 3
	off := int(p.LightmapDataOffset)
	if off+n > len(m.LightmapsData) {
		return lmTile{}
	}
	return lmTile{Width: w, Height: h, Data: m.LightmapsData[off : off+n], OriginU: p.TexCoordMin[0], OriginV: p.TexCoordMin[1]}
}

// sampleLightmapBilinear bilinearly samples a polygon's baked lightmap at
// world tex-coord (u, v), per spec.md §4.6 step 8: "the lightmap is
// bilinearly sampled in the space of the surface rect". Coordinates
// outside the tile are clamped, not wrapped -- lightmaps never tile.
func sampleLightmapBilinear(lm lmTile, u, v float64) color.ColorF32 {
	if len(lm.Data) == 0 {
		return color.ColorF32{R: 1, G: 1, B: 1, A: 1}
	}
	fx := (u - float64(lm.OriginU)) / compactmapLightmapScale
	fy := (v - float64(lm.OriginV)) / compactmapLightmapScale

	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	tx := fx - float64(x0)
	ty := fy - float64(y0)

	x0c, x1c := clampInt(x0, lm.Width), clampInt(x0+1, lm.Width)
	y0c, y1c := clampInt(y0, lm.Height), clampInt(y0+1, lm.Height)

	c00 := lm.texel(x0c, y0c)
	c10 := lm.texel(x1c, y0c)
	c01 := lm.texel(x0c, y1c)
	c11 := lm.texel(x1c, y1c)

	top := lerpColor(c00, c10, tx)
	bot := lerpColor(c01, c11, tx)
	out := lerpColor(top, bot, ty)
	out.A = 1
	return out
}

func (lm lmTile) texel(x, y int) color.ColorF32 {
	idx := (y*lm.Width + x) * 3
	if idx < 0 || idx+2 >= len(lm.Data) {
		return color.ColorF32{}
	}
	return color.U8ToF32(color.ColorU8{R: lm.Data[idx], G: lm.Data[idx+1], B: lm.Data[idx+2], A: 255})
}

func lerpColor(a, b color.ColorF32, t float64) color.ColorF32 {
	ft := float32(t)
	return color.ColorF32{
		R: a.R + (b.R-a.R)*ft,
		G: a.G + (b.G-a.G)*ft,
		B: a.B + (b.B-a.B)*ft,
	}
}

func clampInt(v, n int) int {
	if n <= 0 {
		return 0
	}
	if v < 0 {
		return 0
	}
	if v >= n {
		return n - 1
	}
	return v
}

// sampleDiffuseWrapped fetches the diffuse texel at world tex-coord (u, v)
// from pyr's mip level, wrapping axis-wise (spec.md §4.6 step 8: "the
// diffuse texture is fetched (with axis-wise wrap)"). A nil pyramid (no
// texture loaded yet, or a stub material) samples as flat white so the
// lightmap alone still shows through.
func sampleDiffuseWrapped(pyr *material.MipPyramid, level int, u, v float64) color.ColorF32 {
	img := diffuseLevel(pyr, level)
	if img == nil {
		return color.ColorF32{R: 1, G: 1, B: 1, A: 1}
	}
	w, h := img.Width(), img.Height()
	if w == 0 || h == 0 {
		return color.ColorF32{R: 1, G: 1, B: 1, A: 1}
	}
	x := wrapInt(int(math.Floor(u)), w)
	y := wrapInt(int(math.Floor(v)), h)
	r, g, bl, a := img.GetRGBA(x, y)
	return color.SRGBToLinearColor(color.U8ToF32(color.ColorU8{R: r, G: g, B: bl, A: a}))
}

func diffuseLevel(pyr *material.MipPyramid, level int) *imgbuf.ImageBuf {
	if pyr == nil {
		return nil
	}
	return pyr.Level(level)
}

func wrapInt(v, m int) int {
	if m <= 0 {
		return 0
	}
	v %= m
	if v < 0 {
		v += m
	}
	return v
}

// worldPointForUV approximates the world position of tex-coord (u, v) on
// polygon p by the nearest projected vertex, the same approximation
// build.approximateWorldFromUV uses for the static lightmap bake -- precise
// enough for per-texel dynamic-light direction/distance/shadow sampling.
func worldPointForUV(p compactmap.Polygon, worldVerts []compactmap.Vertex, u, v float64) geom.Vec3 {
	if len(worldVerts) == 0 {
		return geom.Vec3{}
	}
	best := worldVerts[0]
	bestDist := math.Inf(1)
	for _, vert := range worldVerts {
		pu := evalTexCoord(p.TexCoordEquation[0], vert)
		pv := evalTexCoord(p.TexCoordEquation[1], vert)
		d := (pu-u)*(pu-u) + (pv-v)*(pv-v)
		if d < bestDist {
			bestDist = d
			best = vert
		}
	}
	return best
}
