package build

import (
	"math"

	"github.com/quakesoft/qse/geom"
)

// LightmapScale is the fixed lightmap texel scale (world units per texel)
// referenced throughout spec.md §3/§8 (e.g. E4's LIGHTMAP_SCALE=16).
const LightmapScale = 16

// StaticLight is a baked, non-moving point light used only at build time.
// Dynamic lights (surface.Light) are a runtime-only concept layered on top
// of the baked result (spec.md §4.6).
type StaticLight struct {
	Pos       geom.Vec3
	Color     [3]float64
	Intensity float64
}

// LightmapTile is the baked result for one polygon: an RGB texel grid sized
// from the polygon's rounded-out texture-coordinate bounds.
type LightmapTile struct {
	Width, Height int
	Texels        []byte // Width*Height*3, RGB8
}

// TexCoordBounds computes a polygon's (min, max) tex-coord extents by
// projecting every vertex through its texture axis equations.
func TexCoordBounds(p Polygon) (min, max [2]float64) {
	min = [2]float64{math.Inf(1), math.Inf(1)}
	max = [2]float64{math.Inf(-1), math.Inf(-1)}
	for _, v := range p.Verts {
		u, vv := p.Tex.Eval(v)
		min[0] = math.Min(min[0], u)
		min[1] = math.Min(min[1], vv)
		max[0] = math.Max(max[0], u)
		max[1] = math.Max(max[1], vv)
	}
	return
}

// RoundOutward rounds (min, max) to LightmapScale-grid multiples, min down
// and max up, satisfying spec.md §3's "rounded outward to lightmap-grid
// multiples" invariant.
func RoundOutward(min, max [2]float64, scale int) (rmin, rmax [2]int) {
	for i := 0; i < 2; i++ {
		rmin[i] = int(math.Floor(min[i]/float64(scale))) * scale
		rmax[i] = int(math.Ceil(max[i]/float64(scale))) * scale
	}
	return
}

// BakeLightmap computes a per-texel lightmap for polygon p against a set of
// static lights, using simple Lambertian accumulation plus a flat ambient
// term. This is the "lightweight spec coverage only" baking named in
// spec.md §2 -- no radiosity, no shadowing of the bake itself.
func BakeLightmap(p Polygon, lights []StaticLight, ambient [3]float64) LightmapTile {
	min, max := TexCoordBounds(p)
	rmin, rmax := RoundOutward(min, max, LightmapScale)

	w := (rmax[0]-rmin[0])/LightmapScale + 1
	h := (rmax[1]-rmin[1])/LightmapScale + 1
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	tile := LightmapTile{Width: w, Height: h, Texels: make([]byte, w*h*3)}
	n := p.Plane.N
	if n.Length() > 0 {
		n = n.Scale(1 / n.Length())
	}

	origin := worldOriginForTexel(p)

	for ty := 0; ty < h; ty++ {
		for tx := 0; tx < w; tx++ {
			u := float64(rmin[0] + tx*LightmapScale)
			v := float64(rmin[1] + ty*LightmapScale)
			worldPt := approximateWorldFromUV(p, origin, u, v)

			c := ambient
			for _, l := range lights {
				toLight := l.Pos.Sub(worldPt)
				dist := toLight.Length()
				if dist < 1e-6 {
					dist = 1e-6
				}
				dirDot := toLight.Scale(1 / dist).Dot(n)
				if dirDot <= 0 {
					continue
				}
				atten := l.Intensity * dirDot / (dist * dist)
				c[0] += l.Color[0] * atten
				c[1] += l.Color[1] * atten
				c[2] += l.Color[2] * atten
			}
			idx := (ty*w + tx) * 3
			tile.Texels[idx+0] = clampByte(c[0])
			tile.Texels[idx+1] = clampByte(c[1])
			tile.Texels[idx+2] = clampByte(c[2])
		}
	}
	return tile
}

func clampByte(v float64) byte {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return byte(v * 255)
}

// worldOriginForTexel picks the polygon's first vertex as the world-space
// anchor for the (approximate) inverse UV-to-world mapping below.
func worldOriginForTexel(p Polygon) geom.Vec3 {
	if len(p.Verts) == 0 {
		return geom.Vec3{}
	}
	return p.Verts[0]
}

// approximateWorldFromUV walks the polygon's vertex loop to find the point
// nearest the requested (u, v) in tex-coord space and returns its world
// position; sufficient for the ambient+point-light bake above since only
// direction/distance to static lights matter, not exact surface position
// accuracy.
func approximateWorldFromUV(p Polygon, fallback geom.Vec3, u, v float64) geom.Vec3 {
	if len(p.Verts) == 0 {
		return fallback
	}
	best := p.Verts[0]
	bestDist := math.Inf(1)
	for _, vert := range p.Verts {
		pu, pv := p.Tex.Eval(vert)
		d := (pu-u)*(pu-u) + (pv-v)*(pv-v)
		if d < bestDist {
			bestDist = d
			best = vert
		}
	}
	return best
}

// VisibleLeafSet is a per-leaf bitset of potentially-visible leafs, the
// lightweight build-time PVS named in spec.md §2. It is a simplification
// of a real PVS: reachability through the portal graph up to MaxPVSDepth
// hops, with no portal-to-portal sightline clipping.
type VisibleLeafSet []bool

// MaxPVSDepth bounds the build-time PVS flood, matching the "typically
// 1024" depth bound used by the runtime visibility calculator (spec.md
// §4.5) -- the build-time PVS is a coarser, unbounded-by-screen-space
// cousin of that same flood.
const MaxPVSDepth = 1024

// ComputePVS computes, for every leaf, the set of leafs reachable through
// the portal graph within MaxPVSDepth hops.
func ComputePVS(t *Tree) []VisibleLeafSet {
	out := make([]VisibleLeafSet, len(t.Leafs))
	for i := range t.Leafs {
		out[i] = floodFrom(t, int32(i))
	}
	return out
}

func floodFrom(t *Tree, start int32) VisibleLeafSet {
	visible := make(VisibleLeafSet, len(t.Leafs))
	visible[start] = true
	type qitem struct {
		leaf  int32
		depth int
	}
	queue := []qitem{{start, 0}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.depth >= MaxPVSDepth {
			continue
		}
		for _, pIdx := range t.Leafs[cur.leaf].PortalIndices {
			portal := t.Portals[pIdx]
			other := portal.FrontLeaf
			if other == cur.leaf {
				other = portal.BackLeaf
			}
			if !visible[other] {
				visible[other] = true
				queue = append(queue, qitem{other, cur.depth + 1})
			}
		}
	}
	return visible
}
