package engine

import (
	"math"

	"github.com/quakesoft/qse/compactmap"
	"github.com/quakesoft/qse/geom"
	"github.com/quakesoft/qse/internal/color"
	imgbuf "github.com/quakesoft/qse/internal/image"
	"github.com/quakesoft/qse/internal/parallel"
	"github.com/quakesoft/qse/internal/tiling"
	"github.com/quakesoft/qse/material"
	"github.com/quakesoft/qse/model"
	"github.com/quakesoft/qse/postprocess"
	"github.com/quakesoft/qse/raster"
	"github.com/quakesoft/qse/surface"
	"github.com/quakesoft/qse/visibility"
)

// Engine owns every per-frame subsystem and runs spec.md §4.8's ten-step
// sequence once per call to Frame.
type Engine struct {
	Map       *compactmap.CompactMap
	Materials *material.Registry

	cfg Config

	workers *parallel.WorkerPool
	grid    *tiling.Grid
	builder *surface.Builder
	post    *postprocess.Processor

	hdr []color.ColorF32
	ldr []color.ColorF32

	frameNum int
}

// New builds an Engine ready to render m. cfg.Width/Height must be > 0.
func New(m *compactmap.CompactMap, mats *material.Registry, cfg Config) *Engine {
	if cfg.ShadowFaceSize <= 0 {
		cfg.ShadowFaceSize = DefaultShadowFaceSize
	}

	var pool *parallel.WorkerPool
	if cfg.Workers > 1 {
		pool = parallel.NewWorkerPool(cfg.Workers)
	}

	builder := surface.NewBuilder(m, mats, cfg.SurfacePixelBudget)
	builder.Workers = pool

	pixels := cfg.Width * cfg.Height
	return &Engine{
		Map:       m,
		Materials: mats,
		cfg:       cfg,
		workers:   pool,
		grid:      tiling.NewGrid(cfg.Width, cfg.Height),
		builder:   builder,
		post:      postprocess.NewProcessor(cfg.Postprocess),
		hdr:       make([]color.ColorF32, pixels),
		ldr:       make([]color.ColorF32, pixels),
	}
}

// FrameInput bundles everything a single Frame call needs that changes
// from frame to frame: the published camera pose, dt since the last
// frame, the dynamic lights casting onto this frame, dynamic submodel
// placements, and dynamic-model instances.
type FrameInput struct {
	Camera    CameraPose
	DT        float64
	Lights    []*DynamicLightState
	Submodels []SubmodelPose
	Models    []DynamicModelInstance
	Decals    []surface.Decal
}

// DecalMaxDepth is the BSP search-depth cap ClipDecal is called with every
// frame (spec.md §8 E6: "the subdivider must not recurse beyond depth 2").
const DecalMaxDepth = surface.DefaultDecalMaxDepth

// Frame runs spec.md §4.8's ten steps once and composites the result into
// out.
func (e *Engine) Frame(in FrameInput, out Surface) {
	// Step 1: advance the frame counter.
	e.frameNum++

	// Step 2: step material animation time.
	e.Materials.Advance(in.DT)

	// Step 3: rebuild every shadow-casting dynamic light's cube map.
	for _, l := range in.Lights {
		if !l.CastsShadows {
			continue
		}
		if l.Shadow == nil {
			l.Shadow = &surface.ShadowCubemap{}
		}
		RenderShadowCubemap(e.Map, e.Materials, l.Pos, e.cfg.ShadowFaceSize, l.Shadow)
	}
	lights := make([]surface.DynamicLight, len(in.Lights))
	for i, l := range in.Lights {
		lights[i] = surface.DynamicLight{
			Pos:       l.Pos,
			Color:     color.ColorF32{R: l.Color[0], G: l.Color[1], B: l.Color[2], A: 1},
			Intensity: l.Intensity,
			Shadow:    l.Shadow,
		}
	}

	cam := in.Camera.toCamera(e.cfg)

	// Step 4: visibility flood from the camera leaf.
	vis := visibility.Compute(e.Map, cam, 0)

	// Step 5: position submodels into the main BSP by AABB-vs-plane checks,
	// and cube-clip this frame's decals against whatever polygons their
	// volumes overlap.
	submodelLeafs := e.placeSubmodels(in.Submodels)
	decalLeafs := e.placeDecals(in.Decals)

	// Step 6: prepare dynamic-model triangles (world transform, light
	// sample, project, cull, sort by 1/z), in parallel across instances.
	litTriangles := e.prepareModels(cam, in.DT, in.Models)

	// Step 7: build surfaces for every visible polygon.
	surfaces := e.builder.BuildVisible(cam, vis, lights)

	// Step 8: clear the framebuffer, skipped when the camera leaf has no
	// outside-volume sky/void to uncover (spec.md §4.8 step 8).
	if vis.OutsideVolume {
		tiling.ClearAll(e.workers, e.grid, color.ColorF32{})
	}

	surfByPoly := make(map[int]*surface.Surface, len(surfaces))
	for _, s := range surfaces {
		surfByPoly[s.PolygonIndex] = s
	}

	// Step 9: per-tile parallel draw -- BSP back-to-front traversal over
	// surfaces, then submodels and dynamic-model triangles sorted on top
	// by screen-space 1/z.
	tiling.Dispatch(e.workers, e.grid, func(tile *tiling.Tile) {
		e.drawTile(tile, cam, surfByPoly, submodelLeafs, decalLeafs, litTriangles)
	})

	e.gatherHDR()

	// Step 10: tonemap + bloom composite into the caller's LDR surface.
	e.post.Composite(e.workers, e.hdr, e.cfg.Width, e.cfg.Height, e.ldr)
	blitToSurface(e.ldr, e.cfg.Width, e.cfg.Height, out)
}

// placeSubmodels locates, for each submodel instance, every main-BSP leaf
// its world-space bounding box overlaps (spec.md §4.8 step 5).
func (e *Engine) placeSubmodels(poses []SubmodelPose) map[int32][]SubmodelPose {
	out := map[int32][]SubmodelPose{}
	for _, sp := range poses {
		if sp.Index < 0 || sp.Index >= len(e.Map.Submodels) {
			continue
		}
		box := submodelWorldBounds(e.Map, sp)
		compactmap.LeafsOverlappingAABB(e.Map, box, func(leaf int32) {
			out[leaf] = append(out[leaf], sp)
		})
	}
	return out
}

// submodelWorldBounds transforms a submodel's polygon vertex ring by pose
// and unions their positions into a world-space box.
func submodelWorldBounds(m *compactmap.CompactMap, sp SubmodelPose) geom.AABB3 {
	sm := m.Submodels[sp.Index]
	var box geom.AABB3
	first := true
	for i := uint32(0); i < sm.NumPolygons; i++ {
		for _, v := range m.PolygonVertices(int(sm.FirstPolygon + i)) {
			p := sp.Transform.Point(v)
			pb := geom.AABB3{Min: p, Max: p}
			if first {
				box = pb
				first = false
			} else {
				box = box.Union(pb)
			}
		}
	}
	return box
}

// placeDecals cube-clips every decal instance against the main BSP,
// grouping the surviving fragments by the leaf that owns their host
// polygon so drawTile can overlay them leaf-by-leaf alongside the leaf's
// own surfaces (spec.md §4.8 step 9).
func (e *Engine) placeDecals(decals []surface.Decal) map[int32][]surface.DecalFragment {
	out := map[int32][]surface.DecalFragment{}
	for i := range decals {
		for _, frag := range surface.ClipDecal(e.Map, &decals[i], DecalMaxDepth) {
			out[frag.LeafIndex] = append(out[frag.LeafIndex], frag)
		}
	}
	return out
}

// prepareModels runs model.PrepareMesh for every instance's every mesh,
// dispatched across the worker pool since instances are independent.
func (e *Engine) prepareModels(cam geom.Camera, dt float64, instances []DynamicModelInstance) []model.LitTriangle {
	perInstance := make([][]model.LitTriangle, len(instances))
	work := make([]func(), len(instances))
	for i, inst := range instances {
		i, inst := i, inst
		work[i] = func() {
			frame, next, alpha := 0, 0, 0.0
			if inst.Anim != nil {
				frame, next, alpha = inst.Anim.Advance(dt)
			}
			var tris []model.LitTriangle
			for mi := range inst.Model.Meshes {
				tris = append(tris, model.PrepareMesh(&inst.Model.Meshes[mi], inst.Pose, frame, next, alpha, inst.Bones, cam, e.Map, inst.Additive)...)
			}
			perInstance[i] = tris
		}
	}
	if e.workers != nil {
		e.workers.ExecuteAll(work)
	} else {
		for _, w := range work {
			w()
		}
	}

	var out []model.LitTriangle
	for _, tris := range perInstance {
		out = append(out, tris...)
	}
	return out
}

// drawTile runs spec.md §4.8 step 9 for one screen tile: a back-to-front
// BSP walk drawing each visible leaf's surfaces, then overlaying that
// leaf's decal fragments, then submodel polygons, with dynamic-model
// triangles composited on top last.
func (e *Engine) drawTile(tile *tiling.Tile, cam geom.Camera, surfByPoly map[int]*surface.Surface, submodelLeafs map[int32][]SubmodelPose, decalLeafs map[int32][]surface.DecalFragment, litTriangles []model.LitTriangle) {
	compactmap.WalkBackToFront(e.Map, cam.Pos, func(leaf int32) {
		l := e.Map.Leafs[leaf]
		for i := uint32(0); i < l.NumPolygons; i++ {
			s := surfByPoly[int(l.FirstPolygon+i)]
			if s == nil || s.Texels == nil {
				continue
			}
			e.drawSurface(tile, s)
		}
		for i := range decalLeafs[leaf] {
			e.drawDecal(tile, cam, &decalLeafs[leaf][i])
		}
		for _, sp := range submodelLeafs[leaf] {
			e.drawSubmodel(tile, cam, sp)
		}
	})

	for _, tri := range litTriangles {
		mat := e.Materials.Lookup(tri.Material)
		raster.FillTriangleGouraud(tile, tri.V0, tri.V1, tri.V2, blendModeFor(mat.BlendingMode), e.materialSampler(mat))
	}
}

func (e *Engine) drawSurface(tile *tiling.Tile, s *surface.Surface) {
	poly := e.Map.Polygons[s.PolygonIndex]
	mat := e.Materials.ActiveMaterial(e.Map.Textures[poly.TextureIndex].TextureNameString())
	mode := SelectTCMode(s)
	sample := func(u, v float64) color.ColorF32 { return s.TexelAt(u, v) }
	raster.FillConvexPolygon(tile, s.ScreenPoly, s.Depth, s.TexU, s.TexV, mode, blendModeFor(mat.BlendingMode), sample)
}

// drawSubmodel draws a submodel instance's polygons directly from its
// mini-BSP polygon list, transformed by its pose, without going through
// the surface-build pool (submodels move every frame, so their texel
// composite is never worth caching).
func (e *Engine) drawSubmodel(tile *tiling.Tile, cam geom.Camera, sp SubmodelPose) {
	sm := e.Map.Submodels[sp.Index]
	for i := uint32(0); i < sm.NumPolygons; i++ {
		polyIdx := int(sm.FirstPolygon + i)
		poly := e.Map.Polygons[polyIdx]
		mat := e.Materials.ActiveMaterial(e.Map.Textures[poly.TextureIndex].TextureNameString())
		if !mat.Draw {
			continue
		}
		verts := e.Map.PolygonVertices(polyIdx)
		screen := make(geom.Polygon2, 0, len(verts))
		for _, v := range verts {
			world := sp.Transform.Point(v)
			camP := cam.ToCameraSpace(world)
			sv, _, ok := cam.Project(camP)
			if !ok {
				screen = nil
				break
			}
			screen = append(screen, sv)
		}
		if len(screen) < 3 {
			continue
		}
		depthEq, uEq, vEq, ok := fitSubmodelEquations(cam, sp.Transform, poly, verts)
		if !ok {
			continue
		}
		sample := e.materialSampler(mat)
		raster.FillConvexPolygon(tile, screen, depthEq, uEq, vEq, raster.TCFullPerspective, blendModeFor(mat.BlendingMode), sample)
	}
}

// drawDecal fan-triangulates a clipped decal fragment (the same fan shape
// RenderShadowCubemap's face rasterizer uses for its convex clip output)
// and fills it through the Gouraud triangle path, per spec.md line 149:
// "Triangle fill: used by dynamic meshes and decals; interpolates (u, v,
// r, g, b) light values per vertex (Gouraud) on top of the texture fetch."
func (e *Engine) drawDecal(tile *tiling.Tile, cam geom.Camera, frag *surface.DecalFragment) {
	mat := e.Materials.ActiveMaterial(frag.Decal.Texture)
	if !mat.Draw {
		return
	}
	tw, th := e.materialTexSize(mat)

	type screenVert struct {
		v  raster.GouraudVertex
		ok bool
	}
	screen := make([]screenVert, len(frag.Verts))
	for i, wp := range frag.Verts {
		camP := cam.ToCameraSpace(wp)
		sp, invZ, ok := cam.Project(camP)
		if !ok {
			continue
		}
		u := (frag.U[i]*0.5 + 0.5) * float64(tw)
		v := (frag.V[i]*0.5 + 0.5) * float64(th)
		light := frag.Light[i]
		screen[i] = screenVert{
			v: raster.GouraudVertex{
				X: sp.X, Y: sp.Y, InvZ: invZ,
				UOverZ: u * invZ, VOverZ: v * invZ,
				ROverZ: float64(light.R) * invZ,
				GOverZ: float64(light.G) * invZ,
				BOverZ: float64(light.B) * invZ,
			},
			ok: true,
		}
	}

	sample := e.materialSampler(mat)
	blend := blendModeFor(mat.BlendingMode)
	for i := 1; i+1 < len(screen); i++ {
		a, b, c := screen[0], screen[i], screen[i+1]
		if !a.ok || !b.ok || !c.ok {
			continue
		}
		raster.FillTriangleGouraud(tile, a.v, b.v, c.v, blend, sample)
	}
}

func fitSubmodelEquations(cam geom.Camera, pose geom.Transform, poly compactmap.Polygon, verts []compactmap.Vertex) (raster.Equation, raster.Equation, raster.Equation, bool) {
	type sample struct {
		sp             geom.Vec2
		invZ, u, v     float64
	}
	samples := make([]sample, 0, len(verts))
	for _, vtx := range verts {
		world := pose.Point(vtx)
		camP := cam.ToCameraSpace(world)
		sp, invZ, ok := cam.Project(camP)
		if !ok {
			continue
		}
		u := evalPlane(poly.TexCoordEquation[0], world)
		v := evalPlane(poly.TexCoordEquation[1], world)
		samples = append(samples, sample{sp: sp, invZ: invZ, u: u * invZ, v: v * invZ})
	}
	for i := 0; i+2 < len(samples); i++ {
		d, ok := geom.FitAffineEq2D(samples[i].sp, samples[i+1].sp, samples[i+2].sp, samples[i].invZ, samples[i+1].invZ, samples[i+2].invZ)
		if !ok {
			continue
		}
		u, _ := geom.FitAffineEq2D(samples[i].sp, samples[i+1].sp, samples[i+2].sp, samples[i].u, samples[i+1].u, samples[i+2].u)
		v, _ := geom.FitAffineEq2D(samples[i].sp, samples[i+1].sp, samples[i+2].sp, samples[i].v, samples[i+1].v, samples[i+2].v)
		return d, u, v, true
	}
	return raster.Equation{}, raster.Equation{}, raster.Equation{}, false
}

func evalPlane(p geom.Plane, v geom.Vec3) float64 {
	return p.N.Dot(v)
}

// blendModeFor maps a material's authored blend mode onto the rasterizer's
// richer five-mode set; materials only ever author one of these three.
func blendModeFor(mode material.BlendingMode) raster.BlendMode {
	switch mode {
	case material.BlendAdditive:
		return raster.BlendAdditive
	case material.BlendAlpha:
		return raster.BlendAlphaBlend
	default:
		return raster.BlendNone
	}
}

// materialSampler returns a raster.Sampler backed by mat's mip pyramid,
// sampling mip level 0, axis-wise wrapped (submodels and dynamic models
// don't carry a per-pixel mip bias the way baked surfaces do).
func (e *Engine) materialSampler(mat *material.Material) raster.Sampler {
	pyr, err := e.Materials.MipPyramidFor(mat.Name)
	var lvl *imgbuf.ImageBuf
	if err == nil && pyr != nil {
		lvl = pyr.Level(0)
	}
	return func(u, v float64) color.ColorF32 {
		if lvl == nil || lvl.Width() == 0 || lvl.Height() == 0 {
			return color.ColorF32{R: 1, G: 1, B: 1, A: 1}
		}
		x := wrapInt(int(math.Floor(u)), lvl.Width())
		y := wrapInt(int(math.Floor(v)), lvl.Height())
		r, g, b, a := lvl.GetRGBA(x, y)
		return color.SRGBToLinearColor(color.U8ToF32(color.ColorU8{R: r, G: g, B: b, A: a}))
	}
}

// materialTexSize returns mat's mip level 0 pixel dimensions, used to
// convert a decal fragment's normalized local UV to the texel-space
// coordinates materialSampler expects. Returns 1, 1 for a missing texture
// so the normalized UV still lands inside bounds.
func (e *Engine) materialTexSize(mat *material.Material) (int, int) {
	pyr, err := e.Materials.MipPyramidFor(mat.Name)
	if err != nil || pyr == nil {
		return 1, 1
	}
	lvl := pyr.Level(0)
	if lvl == nil || lvl.Width() == 0 || lvl.Height() == 0 {
		return 1, 1
	}
	return lvl.Width(), lvl.Height()
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

// gatherHDR copies every tile's Color buffer into the contiguous
// row-major HDR buffer postprocess.Processor expects.
func (e *Engine) gatherHDR() {
	for _, tile := range e.grid.AllTiles() {
		for ly := 0; ly < tile.Height; ly++ {
			srcRow := tile.Color[ly*tile.Width : ly*tile.Width+tile.Width]
			dstOff := (tile.OriginY+ly)*e.cfg.Width + tile.OriginX
			copy(e.hdr[dstOff:dstOff+tile.Width], srcRow)
		}
	}
}

// blitToSurface tonemapped-LDR-encodes ldr into out's pixel format
// (8-bit sRGB RGBA, the common window-surface byte layout).
func blitToSurface(ldr []color.ColorF32, width, height int, out Surface) {
	pitch := out.Pitch()
	pixels := out.Pixels()
	for y := 0; y < height && y < out.Height(); y++ {
		row := y * pitch
		for x := 0; x < width && x < out.Width(); x++ {
			c := ldr[y*width+x]
			off := row + x*4
			if off+4 > len(pixels) {
				continue
			}
			pixels[off+0] = color.LinearToSRGBFast(c.R)
			pixels[off+1] = color.LinearToSRGBFast(c.G)
			pixels[off+2] = color.LinearToSRGBFast(c.B)
			pixels[off+3] = 255
		}
	}
}
