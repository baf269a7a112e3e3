package model

import (
	"sort"

	"github.com/quakesoft/qse/compactmap"
	"github.com/quakesoft/qse/geom"
	"github.com/quakesoft/qse/raster"
)

// LitTriangle is one world-to-screen-prepared triangle ready for
// raster.FillTriangleGouraud, carrying its average 1/z for draw-order
// sorting (spec.md §4.8 step 6: "...cull back-faces, sort by 1/z").
type LitTriangle struct {
	V0, V1, V2 raster.GouraudVertex
	AvgInvZ    float64
	Material   string
}

// PrepareMesh implements spec.md §4.8 step 6 for one mesh instance:
// transform vertices into world space by pose (and, for Skeletal meshes,
// by bones), sample the ambient light grid plus an optional additive
// constant (a dynamic-light flash) at each vertex, project to screen
// space, cull back-facing triangles, and sort the survivors back-to-front
// by 1/z so alpha-blended overlays composite correctly.
func PrepareMesh(mesh *Mesh, pose geom.Transform, frame, nextFrame int, blendAlpha float64, bones []geom.Transform, cam geom.Camera, lightmap *compactmap.CompactMap, additive geom.Vec3) []LitTriangle {
	positions, _ := worldVertices(mesh, pose, frame, nextFrame, blendAlpha, bones)

	type screenVert struct {
		v  raster.GouraudVertex
		ok bool
	}
	screen := make([]screenVert, len(positions))
	for i, wp := range positions {
		camP := cam.ToCameraSpace(wp)
		sp, invZ, ok := cam.Project(camP)
		if !ok {
			continue
		}
		light := SampleLightGrid(lightmap, wp).Add(additive)
		screen[i] = screenVert{
			v: raster.GouraudVertex{
				X: sp.X, Y: sp.Y, InvZ: invZ,
				UOverZ: mesh.Vertices[i].U * invZ,
				VOverZ: mesh.Vertices[i].V * invZ,
				ROverZ: light.X * invZ,
				GOverZ: light.Y * invZ,
				BOverZ: light.Z * invZ,
			},
			ok: true,
		}
	}

	out := make([]LitTriangle, 0, len(mesh.Triangles))
	for _, tri := range mesh.Triangles {
		a, b, c := screen[tri.A], screen[tri.B], screen[tri.C]
		if !a.ok || !b.ok || !c.ok {
			continue
		}
		if !frontFacing(a.v, b.v, c.v) {
			continue
		}
		out = append(out, LitTriangle{
			V0: a.v, V1: b.v, V2: c.v,
			AvgInvZ:  (a.v.InvZ + b.v.InvZ + c.v.InvZ) / 3,
			Material: mesh.Material,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].AvgInvZ < out[j].AvgInvZ })
	return out
}

// frontFacing is the screen-space signed-area test: meshes are authored
// counter-clockwise as seen from outside, the same winding convention
// build's polygon soup uses, which projects (Y flipped to screen-down in
// geom.Camera.Project) to a positive signed area for a front-facing
// triangle.
func frontFacing(a, b, c raster.GouraudVertex) bool {
	area := (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
	return area > 0
}

func worldVertices(mesh *Mesh, pose geom.Transform, frame, nextFrame int, blendAlpha float64, bones []geom.Transform) (positions, normals []geom.Vec3) {
	n := len(mesh.Vertices)
	positions = make([]geom.Vec3, n)
	normals = make([]geom.Vec3, n)

	switch mesh.Kind {
	case VertexAnimated:
		f0 := clampFrame(frame, len(mesh.Frames))
		f1 := clampFrame(nextFrame, len(mesh.Frames))
		if len(mesh.Frames) == 0 {
			break
		}
		src0, src1 := mesh.Frames[f0], mesh.Frames[f1]
		for i := range positions {
			if i >= len(src0) || i >= len(src1) {
				continue
			}
			lp := src0[i].Pos.Lerp(src1[i].Pos, blendAlpha)
			ln := src0[i].Normal.Lerp(src1[i].Normal, blendAlpha)
			positions[i] = pose.Point(lp)
			normals[i] = pose.Direction(ln)
		}
	case Skeletal:
		for i, v := range mesh.Vertices {
			bt := geom.IdentityTransform
			if v.BoneIndex >= 0 && v.BoneIndex < len(bones) {
				bt = bones[v.BoneIndex]
			}
			positions[i] = pose.Point(bt.Point(v.Pos))
			normals[i] = pose.Direction(bt.Direction(v.Normal))
		}
	default: // Static
		for i, v := range mesh.Vertices {
			positions[i] = pose.Point(v.Pos)
			normals[i] = pose.Direction(v.Normal)
		}
	}
	return positions, normals
}
