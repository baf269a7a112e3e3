package engine

import (
	"math"

	"github.com/quakesoft/qse/compactmap"
	"github.com/quakesoft/qse/geom"
	"github.com/quakesoft/qse/material"
	"github.com/quakesoft/qse/surface"
)

// faceBasis is the camera orientation that makes geom.Camera.Project land
// a world point on the same texel surface.ShadowCubemap.Sample would read
// back for the light-to-point direction toward that point. Derived from
// surface.dominantFace's per-face (u, v) formulas: Forward is the face's
// principal axis, Right/Up are chosen (and Up sign-flipped) so Project's
// screen-space output matches Sample's tx/ty formula exactly.
type faceBasis struct{ Right, Up, Forward geom.Vec3 }

var cubeFaceBases = [6]faceBasis{
	surface.FacePosX: {Right: geom.Vec3{Z: -1}, Up: geom.Vec3{Y: 1}, Forward: geom.Vec3{X: 1}},
	surface.FaceNegX: {Right: geom.Vec3{Z: 1}, Up: geom.Vec3{Y: 1}, Forward: geom.Vec3{X: -1}},
	surface.FacePosY: {Right: geom.Vec3{X: 1}, Up: geom.Vec3{Z: -1}, Forward: geom.Vec3{Y: 1}},
	surface.FaceNegY: {Right: geom.Vec3{X: 1}, Up: geom.Vec3{Z: 1}, Forward: geom.Vec3{Y: -1}},
	surface.FacePosZ: {Right: geom.Vec3{X: 1}, Up: geom.Vec3{Y: 1}, Forward: geom.Vec3{Z: 1}},
	surface.FaceNegZ: {Right: geom.Vec3{X: -1}, Up: geom.Vec3{Y: 1}, Forward: geom.Vec3{Z: -1}},
}

// RenderShadowCubemap rebuilds every face of cube for a light at pos,
// depth-only rasterizing every shadow-casting polygon's triangle fan
// (spec.md §4.8 step 3: "a depth-only version of §4.7" run once per
// dynamic light before surfaces are shaded). faceSize is the per-face
// resolution; cube's faces are resized in place when they don't already
// match it.
func RenderShadowCubemap(m *compactmap.CompactMap, mats *material.Registry, pos geom.Vec3, faceSize int, cube *surface.ShadowCubemap) {
	for face := 0; face < 6; face++ {
		f := &cube.Faces[face]
		if f.Size != faceSize || len(f.Depth) != faceSize*faceSize {
			f.Size = faceSize
			f.Depth = make([]float32, faceSize*faceSize)
		} else {
			for i := range f.Depth {
				f.Depth[i] = 0
			}
		}
		basis := cubeFaceBases[face]
		cam := geom.Camera{
			Pos: pos, Right: basis.Right, Up: basis.Up, Forward: basis.Forward,
			FovY: math.Pi / 2, Near: 0.25, ScreenW: float64(faceSize), ScreenH: float64(faceSize),
		}
		renderShadowFace(m, mats, cam, pos, f)
	}
}

func renderShadowFace(m *compactmap.CompactMap, mats *material.Registry, cam geom.Camera, lightPos geom.Vec3, face *surface.ShadowFace) {
	for pi := range m.Polygons {
		poly := &m.Polygons[pi]
		mat := mats.Lookup(m.Textures[poly.TextureIndex].TextureNameString())
		if !mat.Shadow {
			continue
		}
		verts := m.PolygonVertices(pi)
		for i := 1; i+1 < len(verts); i++ {
			rasterizeShadowTriangle(face, cam, lightPos, verts[0], verts[i], verts[i+1])
		}
	}
}

type shadowVertex struct {
	sx, sy, invZ, invDistOverZ float64
	ok                         bool
}

func projectShadowVertex(cam geom.Camera, lightPos, world geom.Vec3) shadowVertex {
	camP := cam.ToCameraSpace(world)
	sp, invZ, ok := cam.Project(camP)
	if !ok {
		return shadowVertex{}
	}
	dist := world.Sub(lightPos).Length()
	if dist < 1e-6 {
		return shadowVertex{}
	}
	invDist := 1 / dist
	return shadowVertex{sx: sp.X, sy: sp.Y, invZ: invZ, invDistOverZ: invDist * invZ, ok: true}
}

// rasterizeShadowTriangle barycentrically fills one triangle's footprint
// into face, keeping the nearest (greatest 1/distance) occluder per texel,
// mirroring raster.FillTriangleGouraud's edge-function loop but carrying a
// single perspective-correct attribute (1/distance) instead of color.
func rasterizeShadowTriangle(face *surface.ShadowFace, cam geom.Camera, lightPos, a, b, c geom.Vec3) {
	v0 := projectShadowVertex(cam, lightPos, a)
	v1 := projectShadowVertex(cam, lightPos, b)
	v2 := projectShadowVertex(cam, lightPos, c)
	if !v0.ok || !v1.ok || !v2.ok {
		return
	}

	area := shadowEdgeFunc(v0.sx, v0.sy, v1.sx, v1.sy, v2.sx, v2.sy)
	if area == 0 {
		return
	}

	minX := int(math.Floor(minOf3(v0.sx, v1.sx, v2.sx)))
	maxX := int(math.Ceil(maxOf3(v0.sx, v1.sx, v2.sx)))
	minY := int(math.Floor(minOf3(v0.sy, v1.sy, v2.sy)))
	maxY := int(math.Ceil(maxOf3(v0.sy, v1.sy, v2.sy)))

	minX = max(minX, 0)
	maxX = min(maxX, face.Size)
	minY = max(minY, 0)
	maxY = min(maxY, face.Size)

	for y := minY; y < maxY; y++ {
		fy := float64(y) + 0.5
		for x := minX; x < maxX; x++ {
			fx := float64(x) + 0.5

			w0 := shadowEdgeFunc(v1.sx, v1.sy, v2.sx, v2.sy, fx, fy)
			w1 := shadowEdgeFunc(v2.sx, v2.sy, v0.sx, v0.sy, fx, fy)
			w2 := shadowEdgeFunc(v0.sx, v0.sy, v1.sx, v1.sy, fx, fy)
			if !shadowInsideTriangle(w0, w1, w2, area) {
				continue
			}

			b0, b1, b2 := w0/area, w1/area, w2/area
			invZ := b0*v0.invZ + b1*v1.invZ + b2*v2.invZ
			if invZ <= 0 {
				continue
			}
			invDist := (b0*v0.invDistOverZ + b1*v1.invDistOverZ + b2*v2.invDistOverZ) / invZ

			idx := y*face.Size + x
			if float32(invDist) > face.Depth[idx] {
				face.Depth[idx] = float32(invDist)
			}
		}
	}
}

func shadowEdgeFunc(ax, ay, bx, by, px, py float64) float64 {
	return (bx-ax)*(py-ay) - (by-ay)*(px-ax)
}

func shadowInsideTriangle(w0, w1, w2, area float64) bool {
	if area > 0 {
		return w0 >= 0 && w1 >= 0 && w2 >= 0
	}
	return w0 <= 0 && w1 <= 0 && w2 <= 0
}

func minOf3(a, b, c float64) float64 { return math.Min(a, math.Min(b, c)) }
func maxOf3(a, b, c float64) float64 { return math.Max(a, math.Max(b, c)) }
