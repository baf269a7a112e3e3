// Package surface is the per-frame surface builder (spec.md §4.6): for
// every polygon visible this frame it projects, clips, and composites a
// lightmap-aligned rectangle of lit texels into a shared monotonic pixel
// pool, ready for the rasterizer (package raster) to sample during
// polygon fill.
package surface

import (
	"math"
	"sync"

	"github.com/quakesoft/qse"
	"github.com/quakesoft/qse/compactmap"
	"github.com/quakesoft/qse/geom"
	"github.com/quakesoft/qse/internal/color"
	"github.com/quakesoft/qse/internal/parallel"
	"github.com/quakesoft/qse/material"
	"github.com/quakesoft/qse/visibility"
)

// DefaultPixelBudget is the default per-frame surface pixel budget (spec.md
// §4.6 step 5).
const DefaultPixelBudget = 256 * 1024

// Surface is one polygon's composited, lightmap-aligned texel rectangle
// for the current frame, plus the screen-space equations the rasterizer
// needs to address it during polygon fill.
type Surface struct {
	PolygonIndex int
	LeafIndex    int32

	TexOrigin [2]int32 // lightmap-grid-aligned (u, v) of the rect's top-left texel
	Width     int
	Height    int
	Texels    []color.ColorF32 // Width*Height, row-major; nil if dropped (budget exhausted)

	Depth   planeEq2D // 1/z = Depth.Eval(x, y)
	TexU    planeEq2D // u/z = TexU.Eval(x, y)
	TexV    planeEq2D // v/z = TexV.Eval(x, y)
	MipBias float64
	MipLevel int

	ScreenBound geom.AABB2
	ScreenPoly  geom.Polygon2 // clipped screen-space outline, for raster.FillConvexPolygon
}

// TexelAt returns the composited texel nearest world texture coordinate
// (u, v), or the zero color if it falls outside the built rectangle. The
// rasterizer's Sampler callback addresses a Surface's Texels through this
// rather than reimplementing the lightmap-grid-to-rect-index conversion
// Builder.BuildSurface used when it filled the rectangle.
func (s *Surface) TexelAt(u, v float64) color.ColorF32 {
	tx := (int32(u) - s.TexOrigin[0]) / compactmapLightmapScale
	ty := (int32(v) - s.TexOrigin[1]) / compactmapLightmapScale
	if tx < 0 || ty < 0 || int(tx) >= s.Width || int(ty) >= s.Height {
		return color.ColorF32{}
	}
	return s.Texels[int(ty)*s.Width+int(tx)]
}

// Builder composites surfaces for every polygon the visibility flood
// reached this frame.
type Builder struct {
	Map       *compactmap.CompactMap
	Materials *material.Registry
	Pool      *Pool
	Workers   *parallel.WorkerPool // nil: build sequentially

	PixelBudget int

	mu      sync.Mutex
	mipBias float64
}

// NewBuilder constructs a surface builder. pixelBudget <= 0 uses
// DefaultPixelBudget.
func NewBuilder(m *compactmap.CompactMap, mats *material.Registry, pixelBudget int) *Builder {
	if pixelBudget <= 0 {
		pixelBudget = DefaultPixelBudget
	}
	return &Builder{
		Map:         m,
		Materials:   mats,
		Pool:        NewPool(pixelBudget),
		PixelBudget: pixelBudget,
	}
}

// tuneMipBias adjusts the shared mip bias toward keeping the previous
// frame's pool usage near PixelBudget (spec.md §4.6 step 5: "a mip-bias
// that is dynamically tuned to keep the per-frame surface pixel budget
// near a target"). Called once at the start of BuildVisible.
func (b *Builder) tuneMipBias() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	used := b.Pool.Used()
	target := float64(b.PixelBudget)
	if target <= 0 {
		return b.mipBias
	}
	ratio := float64(used) / target
	switch {
	case ratio > 1.05:
		b.mipBias += 0.25
	case ratio < 0.80:
		b.mipBias -= 0.1
	}
	if b.mipBias < 0 {
		b.mipBias = 0
	}
	if b.mipBias > float64(material.MaxMip) {
		b.mipBias = float64(material.MaxMip)
	}
	return b.mipBias
}

// BuildVisible builds a Surface for every polygon belonging to a leaf the
// visibility flood reached, dispatching the independent per-polygon work
// across Builder.Workers when set (spec.md §4.6: "Surfaces are
// independently buildable; they are dispatched across threads").
func (b *Builder) BuildVisible(cam geom.Camera, vis *visibility.Set, lights []DynamicLight) []*Surface {
	b.Pool.Reset()
	bias := b.tuneMipBias()

	type job struct {
		polyIdx int
		leaf    int32
		bound   geom.AABB2
	}
	var jobs []job
	for leaf, bound := range vis.Bounds {
		l := b.Map.Leafs[leaf]
		for i := uint32(0); i < l.NumPolygons; i++ {
			jobs = append(jobs, job{polyIdx: int(l.FirstPolygon + i), leaf: leaf, bound: bound})
		}
	}

	results := make([]*Surface, len(jobs))
	build := func(i int) {
		results[i] = b.BuildSurface(cam, jobs[i].polyIdx, jobs[i].leaf, jobs[i].bound, bias, lights)
	}

	if b.Workers != nil && len(jobs) > 0 {
		work := make([]func(), len(jobs))
		for i := range jobs {
			i := i
			work[i] = func() { build(i) }
		}
		b.Workers.ExecuteAll(work)
	} else {
		for i := range jobs {
			build(i)
		}
	}

	out := results[:0]
	for _, s := range results {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

// BuildSurface runs spec.md §4.6 steps 1-8 for a single polygon: transform
// to camera space, back-face cull, project + clip to the leaf's visible
// screen bound, fit the depth/texcoord equations, select a mip level,
// round the clipped tex-coord extent to the lightmap grid, reserve the
// rectangle in the pixel pool, and composite every texel. Returns nil if
// the polygon is back-facing, fully clipped, or the pool has no room left.
func (b *Builder) BuildSurface(cam geom.Camera, polyIdx int, leaf int32, screenBound geom.AABB2, mipBias float64, lights []DynamicLight) *Surface {
	poly := b.Map.Polygons[polyIdx]
	worldVerts := b.Map.PolygonVertices(polyIdx)

	// Step 2: back-face cull via the polygon plane classified against the
	// camera position (equivalent to checking the camera-space plane's w).
	if geom.ClassifyPoint(cam.Pos, poly.Plane) != geom.Front {
		return nil
	}

	// Step 1: transform to camera space.
	camVerts := make(geom.Polygon3, len(worldVerts))
	for i, v := range worldVerts {
		camVerts[i] = cam.ToCameraSpace(v)
	}

	nearClipped := geom.Clip3DByZNear(camVerts, cam.Near)
	if len(nearClipped) < 3 {
		return nil
	}

	type sample struct {
		screen    geom.Vec2
		invZ      float64
		uOverZ    float64
		vOverZ    float64
	}
	samples := make([]sample, 0, len(nearClipped))
	for _, cv := range nearClipped {
		sp, invZ, ok := cam.Project(cv)
		if !ok {
			continue
		}
		world := cam.ToWorldSpace(cv)
		u := evalTexCoord(poly.TexCoordEquation[0], world)
		v := evalTexCoord(poly.TexCoordEquation[1], world)
		samples = append(samples, sample{screen: sp, invZ: invZ, uOverZ: u * invZ, vOverZ: v * invZ})
	}
	if len(samples) < 3 {
		return nil
	}

	// Step 4: fit the screen-space depth and texture-reciprocal equations
	// from any three non-collinear projected samples.
	var depthEq, uEq, vEq planeEq2D
	fitted := false
	for i := 0; i+2 < len(samples) && !fitted; i++ {
		d, ok := fitPlaneEq2D(samples[i].screen, samples[i+1].screen, samples[i+2].screen, samples[i].invZ, samples[i+1].invZ, samples[i+2].invZ)
		if !ok {
			continue
		}
		u, _ := fitPlaneEq2D(samples[i].screen, samples[i+1].screen, samples[i+2].screen, samples[i].uOverZ, samples[i+1].uOverZ, samples[i+2].uOverZ)
		v, _ := fitPlaneEq2D(samples[i].screen, samples[i+1].screen, samples[i+2].screen, samples[i].vOverZ, samples[i+1].vOverZ, samples[i+2].vOverZ)
		depthEq, uEq, vEq = d, u, v
		fitted = true
	}
	if !fitted {
		return nil
	}

	// Step 3: project + 2D clip against the leaf's screen bound.
	screenPoly := make(geom.Polygon2, len(samples))
	for i, s := range samples {
		screenPoly[i] = s.screen
	}
	clipped := geom.ClipToAABB(screenPoly, screenBound)
	if len(clipped) < 3 {
		return nil
	}
	clipBound := geom.BoundOf(clipped)

	// Step 5: mip level from the texcoord derivative at the sample of
	// maximum 1/z (closest to the camera), plus the shared mip bias.
	maxInvZ := samples[0]
	for _, s := range samples[1:] {
		if s.invZ > maxInvZ.invZ {
			maxInvZ = s
		}
	}
	deriv := texDerivativeAt(depthEq, uEq, vEq, maxInvZ.screen.X, maxInvZ.screen.Y)
	mipLvl := selectMipLevel(deriv, mipBias)

	// Step 6: evaluate (u, v) at the clipped screen polygon's corners to
	// find the runtime texture-coordinate bounding box, then round it
	// outward to the lightmap grid and clamp to the polygon's static
	// (build-time-baked) extent.
	uMin, uMax := math.Inf(1), math.Inf(-1)
	vMin, vMax := math.Inf(1), math.Inf(-1)
	for _, p := range clipped {
		d := depthEq.Eval(p.X, p.Y)
		if d == 0 {
			continue
		}
		u := uEq.Eval(p.X, p.Y) / d
		v := vEq.Eval(p.X, p.Y) / d
		uMin, uMax = math.Min(uMin, u), math.Max(uMax, u)
		vMin, vMax = math.Min(vMin, v), math.Max(vMax, v)
	}
	if math.IsInf(uMin, 1) {
		return nil
	}
	rmin, rmax := roundOutward([2]float64{uMin, vMin}, [2]float64{uMax, vMax}, compactmapLightmapScale)
	rmin, rmax = clampExtent(rmin, rmax, poly.TexCoordMin, poly.TexCoordMax)

	originU, originV := int(rmin[0]), int(rmin[1])
	w := int(rmax[0]-rmin[0])/compactmapLightmapScale + 1
	h := int(rmax[1]-rmin[1])/compactmapLightmapScale + 1
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	// Step 7: reserve the rectangle in the monotonic pixel pool.
	texels := b.Pool.Alloc(w, h)
	if texels == nil {
		return nil
	}
	if len(texels) < w*h {
		h = len(texels) / w
		if h < 1 {
			return nil
		}
	}

	// Step 8: composite every texel: diffuse fetch (wrapped) + bilinear
	// lightmap sample + dynamic-light accumulation.
	mat := b.Materials.ActiveMaterial(b.Map.Textures[poly.TextureIndex].TextureNameString())
	pyr, mipErr := b.Materials.MipPyramidFor(mat.Name)
	if mipErr != nil {
		qse.Logger().Warn("surface: texture load failed, rendering flat white", "material", mat.Name, "error", mipErr)
	}
	lm := lightmapTile(b.Map, poly)
	normal := poly.Plane.N.Scale(1 / poly.Plane.N.Length())
	viewDir := cam.Forward.Scale(-1)

	for ty := 0; ty < h; ty++ {
		for tx := 0; tx < w; tx++ {
			u := float64(originU + tx*compactmapLightmapScale)
			v := float64(originV + ty*compactmapLightmapScale)
			worldPt := worldPointForUV(poly, worldVerts, u, v)

			diffuse := sampleDiffuseWrapped(pyr, mipLvl, u, v)
			lmSample := sampleLightmapBilinear(lm, u, v)

			c := color.ColorF32{
				R: diffuse.R * lmSample.R,
				G: diffuse.G * lmSample.G,
				B: diffuse.B * lmSample.B,
				A: diffuse.A,
			}
			if len(lights) > 0 {
				dyn := shadeDynamicLights(worldPt, normal, viewDir, mat, lights)
				c.R += diffuse.R * dyn.R
				c.G += diffuse.G * dyn.G
				c.B += diffuse.B * dyn.B
			}
			texels[ty*w+tx] = c
		}
	}

	return &Surface{
		PolygonIndex: polyIdx,
		LeafIndex:    leaf,
		TexOrigin:    [2]int32{int32(rmin[0]), int32(rmin[1])},
		Width:        w,
		Height:       h,
		Texels:       texels,
		Depth:        depthEq,
		TexU:         uEq,
		TexV:         vEq,
		MipBias:      mipBias,
		MipLevel:     mipLvl,
		ScreenBound:  clipBound,
		ScreenPoly:   clipped,
	}
}

// evalTexCoord evaluates a texture-axis equation at a world point, matching
// build.TextureRef.Eval's convention (u = axis.N.Dot(p)).
func evalTexCoord(eq geom.Plane, p geom.Vec3) float64 {
	return eq.N.Dot(p)
}

// compactmapLightmapScale mirrors build.LightmapScale (world units per
// lightmap texel); duplicated here rather than imported from build, since
// the runtime package depends only on compactmap, not the offline builder.
const compactmapLightmapScale = 16

func roundOutward(min, max [2]float64, scale int) (rmin, rmax [2]int32) {
	for i := 0; i < 2; i++ {
		rmin[i] = int32(math.Floor(min[i]/float64(scale))) * int32(scale)
		rmax[i] = int32(math.Ceil(max[i]/float64(scale))) * int32(scale)
	}
	return
}

func clampExtent(rmin, rmax [2]int32, staticMin, staticMax [2]int32) ([2]int32, [2]int32) {
	for i := 0; i < 2; i++ {
		if rmin[i] < staticMin[i] {
			rmin[i] = staticMin[i]
		}
		if rmax[i] > staticMax[i] {
			rmax[i] = staticMax[i]
		}
		if rmax[i] < rmin[i] {
			rmax[i] = rmin[i]
		}
	}
	return rmin, rmax
}

type texDeriv struct{ dudx, dudy, dvdx, dvdy float64 }

func texDerivativeAt(depthEq, uEq, vEq planeEq2D, x, y float64) texDeriv {
	d := depthEq.Eval(x, y)
	if d == 0 {
		d = 1e-9
	}
	nu := uEq.Eval(x, y)
	nv := vEq.Eval(x, y)
	d2 := d * d
	return texDeriv{
		dudx: (uEq.A*d - nu*depthEq.A) / d2,
		dudy: (uEq.B*d - nu*depthEq.B) / d2,
		dvdx: (vEq.A*d - nv*depthEq.A) / d2,
		dvdy: (vEq.B*d - nv*depthEq.B) / d2,
	}
}

// selectMipLevel implements spec.md §4.6 step 5: lod is the log2 of the
// largest texel-per-pixel footprint in either screen axis, biased and
// clamped to [0, MAX_MIP].
func selectMipLevel(d texDeriv, bias float64) int {
	rho := math.Max(math.Hypot(d.dudx, d.dvdx), math.Hypot(d.dudy, d.dvdy))
	if rho < 1 {
		rho = 1
	}
	lod := math.Log2(rho) + bias
	lvl := int(math.Round(lod))
	if lvl < 0 {
		lvl = 0
	}
	if lvl > material.MaxMip {
		lvl = material.MaxMip
	}
	return lvl
}
