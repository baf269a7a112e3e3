package model

import (
	"github.com/quakesoft/qse/compactmap"
	"github.com/quakesoft/qse/geom"
)

// SampleLightGrid trilinearly samples m's baked ambient light grid at
// world point p, returning linear RGB in [0, 1] (spec.md §4.8 step 6:
// "light (from baked light grid, optional additive constant)"). Each
// (x, y) column holds Dimensions[2] consecutive RGB8 samples starting at
// LightGridColumns[y*Dimensions[0]+x]; points outside the grid clamp to
// the nearest edge column/row/layer.
func SampleLightGrid(m *compactmap.CompactMap, p geom.Vec3) geom.Vec3 {
	g := m.LightGrid
	dimX, dimY, dimZ := int(g.Dimensions[0]), int(g.Dimensions[1]), int(g.Dimensions[2])
	if dimX <= 0 || dimY <= 0 || dimZ <= 0 || len(m.LightGridColumns) < dimX*dimY {
		return geom.Vec3{}
	}

	cell := p.Sub(g.Origin)
	fx := safeCellCoord(cell.X, g.CellSize.X, dimX)
	fy := safeCellCoord(cell.Y, g.CellSize.Y, dimY)
	fz := safeCellCoord(cell.Z, g.CellSize.Z, dimZ)

	x0, tx := splitFrac(fx, dimX)
	y0, ty := splitFrac(fy, dimY)
	z0, tz := splitFrac(fz, dimZ)
	x1, y1, z1 := min(x0+1, dimX-1), min(y0+1, dimY-1), min(z0+1, dimZ-1)

	c000 := lightGridCell(m, x0, y0, z0)
	c100 := lightGridCell(m, x1, y0, z0)
	c010 := lightGridCell(m, x0, y1, z0)
	c110 := lightGridCell(m, x1, y1, z0)
	c001 := lightGridCell(m, x0, y0, z1)
	c101 := lightGridCell(m, x1, y0, z1)
	c011 := lightGridCell(m, x0, y1, z1)
	c111 := lightGridCell(m, x1, y1, z1)

	c00 := c000.Lerp(c100, tx)
	c10 := c010.Lerp(c110, tx)
	c01 := c001.Lerp(c101, tx)
	c11 := c011.Lerp(c111, tx)
	c0 := c00.Lerp(c10, ty)
	c1 := c01.Lerp(c11, ty)
	return c0.Lerp(c1, tz)
}

func safeCellCoord(delta, cellSize float64, dim int) float64 {
	if cellSize == 0 {
		return 0
	}
	f := delta / cellSize
	if f < 0 {
		return 0
	}
	if top := float64(dim - 1); f > top {
		return top
	}
	return f
}

func splitFrac(f float64, dim int) (idx int, frac float64) {
	idx = int(f)
	if idx >= dim-1 {
		return dim - 1, 0
	}
	return idx, f - float64(idx)
}

// lightGridCell reads the RGB8 triple at grid cell (x, y, z) as linear
// [0, 1] floats, or black if the column table doesn't reach that far
// (spec.md §7: a numerical/data degeneracy degrades silently rather than
// propagating).
func lightGridCell(m *compactmap.CompactMap, x, y, z int) geom.Vec3 {
	dimX := int(m.LightGrid.Dimensions[0])
	start := m.LightGridColumns[y*dimX+x]
	idx := int(start) + z*3
	if idx+2 >= len(m.LightGridSamples) {
		return geom.Vec3{}
	}
	const inv255 = 1.0 / 255.0
	return geom.Vec3{
		X: float64(m.LightGridSamples[idx]) * inv255,
		Y: float64(m.LightGridSamples[idx+1]) * inv255,
		Z: float64(m.LightGridSamples[idx+2]) * inv255,
	}
}
