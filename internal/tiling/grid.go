package tiling

import (
	"github.com/quakesoft/qse/internal/color"
	"github.com/quakesoft/qse/internal/parallel"
)

// Grid partitions a width x height framebuffer into a row-major array of
// Size x Size tiles, the same layout internal/parallel.TileGrid uses for
// its RGBA8 tiles.
type Grid struct {
	tiles         []*Tile
	tilesX, tilesY int
	width, height int
}

// NewGrid allocates a grid covering width x height screen pixels.
func NewGrid(width, height int) *Grid {
	if width <= 0 || height <= 0 {
		return &Grid{}
	}
	tilesX := (width + Size - 1) / Size
	tilesY := (height + Size - 1) / Size
	g := &Grid{tiles: make([]*Tile, tilesX*tilesY), tilesX: tilesX, tilesY: tilesY, width: width, height: height}
	for ty := 0; ty < tilesY; ty++ {
		for tx := 0; tx < tilesX; tx++ {
			w, h := Size, Size
			if (tx+1)*Size > width {
				w = width - tx*Size
			}
			if (ty+1)*Size > height {
				h = height - ty*Size
			}
			g.tiles[ty*tilesX+tx] = newTile(tx, ty, w, h)
		}
	}
	return g
}

// Width and Height return the grid's full pixel extent.
func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }

// TileAt returns the tile at tile coordinates (tx, ty), or nil if out of
// range.
func (g *Grid) TileAt(tx, ty int) *Tile {
	if tx < 0 || tx >= g.tilesX || ty < 0 || ty >= g.tilesY {
		return nil
	}
	return g.tiles[ty*g.tilesX+tx]
}

// TilesOverlapping returns every tile whose screen rectangle intersects
// the pixel rectangle (x, y, w, h), for routing a projected polygon/portal
// bound to only the tiles it can affect.
func (g *Grid) TilesOverlapping(x, y, w, h int) []*Tile {
	if w <= 0 || h <= 0 || g.tilesX == 0 {
		return nil
	}
	x1, y1 := max(x, 0), max(y, 0)
	x2, y2 := min(x+w, g.width), min(y+h, g.height)
	if x1 >= x2 || y1 >= y2 {
		return nil
	}
	tx1, ty1 := x1/Size, y1/Size
	tx2, ty2 := (x2-1)/Size, (y2-1)/Size
	out := make([]*Tile, 0, (tx2-tx1+1)*(ty2-ty1+1))
	for ty := ty1; ty <= ty2; ty++ {
		for tx := tx1; tx <= tx2; tx++ {
			out = append(out, g.TileAt(tx, ty))
		}
	}
	return out
}

// AllTiles returns every tile in the grid, row-major.
func (g *Grid) AllTiles() []*Tile {
	return g.tiles
}

// ClearAll resets every tile's color buffer to c and depth buffer to 0,
// dispatched across pool (nil runs sequentially).
func ClearAll(pool *parallel.WorkerPool, g *Grid, c color.ColorF32) {
	Dispatch(pool, g, func(t *Tile) { t.Reset(c) })
}

// Dispatch runs fn once per tile in the grid, in parallel across pool
// (spec.md §4.8 step 9: "for each screen tile in parallel"). A nil pool
// runs every tile on the calling goroutine, the same "dispatch or run
// inline" convention surface.Builder.BuildVisible uses.
func Dispatch(pool *parallel.WorkerPool, g *Grid, fn func(t *Tile)) {
	tiles := g.AllTiles()
	if len(tiles) == 0 {
		return
	}
	if pool == nil {
		for _, t := range tiles {
			fn(t)
		}
		return
	}
	work := make([]func(), len(tiles))
	for i, t := range tiles {
		t := t
		work[i] = func() { fn(t) }
	}
	pool.ExecuteAll(work)
}
