// Package tiling partitions the framebuffer into fixed-size tiles and
// dispatches per-tile rasterization work across a worker pool (spec.md
// §4.7: "screen is split into N tiles... each tile owns a rasterizer
// instance with its own clip rectangle", and §5's data-parallel-loop model),
// adapted from the teacher's internal/parallel TileGrid/WorkerPool pairing
// (internal/parallel/rasterizer.go's ParallelRasterizer) but carrying a
// color+depth framebuffer pair per tile instead of a packed RGBA byte tile,
// since the rasterizer needs a per-tile depth test (spec.md §4.7: "compare
// interpolated 1/z with the stored per-pixel value").
package tiling

import "github.com/quakesoft/qse/internal/color"

// Size is the tile edge length in pixels, matching the teacher's
// TileWidth/TileHeight (64x64, chosen there to fit one tile in L1 cache).
const Size = 64

// Tile is one 64x64 (or smaller, at a screen edge) region of the
// framebuffer: its own color and depth buffers plus the screen-space
// origin and actual extent, so a tile-local rasterizer can address pixels
// tile-relative while depth-testing and writing out through absolute
// screen coordinates.
type Tile struct {
	X, Y          int // tile column/row index
	OriginX, OriginY int // screen-space pixel origin (X*Size, Y*Size)
	Width, Height int    // actual extent; < Size at the right/bottom edge

	Color []color.ColorF32 // Width*Height, row-major, HDR linear
	Depth []float32        // Width*Height, row-major, stores 1/z (greater wins)
}

// Reset clears a tile's color buffer to c and its depth buffer to 0 (the
// "infinitely far" 1/z value, so the first write at any pixel always
// passes the depth test), per spec.md §4.8 step 8's "clear framebuffer".
func (t *Tile) Reset(c color.ColorF32) {
	for i := range t.Color {
		t.Color[i] = c
	}
	for i := range t.Depth {
		t.Depth[i] = 0
	}
}

// DepthTest reports whether invZ beats the stored depth at tile-local
// pixel (x, y) -- "greater wins" (spec.md §4.7) since invZ grows as a
// point gets closer to the camera.
func (t *Tile) DepthTest(x, y int, invZ float32) bool {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return false
	}
	return invZ > t.Depth[y*t.Width+x]
}

// Write stores c and invZ at tile-local pixel (x, y), bypassing the depth
// test -- callers that already ran DepthTest call this to commit the write.
func (t *Tile) Write(x, y int, c color.ColorF32, invZ float32) {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return
	}
	idx := y*t.Width + x
	t.Color[idx] = c
	t.Depth[idx] = invZ
}

// At returns the color currently stored at tile-local pixel (x, y), for
// blend modes that read the destination before writing.
func (t *Tile) At(x, y int) color.ColorF32 {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return color.ColorF32{}
	}
	return t.Color[y*t.Width+x]
}

func newTile(tx, ty, w, h int) *Tile {
	return &Tile{
		X: tx, Y: ty,
		OriginX: tx * Size, OriginY: ty * Size,
		Width: w, Height: h,
		Color: make([]color.ColorF32, w*h),
		Depth: make([]float32, w*h),
	}
}
