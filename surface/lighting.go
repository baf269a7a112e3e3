package surface

import (
	"math"

	"github.com/quakesoft/qse/geom"
	"github.com/quakesoft/qse/internal/color"
	"github.com/quakesoft/qse/material"
)

// ShadowBias tolerates the small numeric error between a shadow caster's
// stored depth and a lit point sitting exactly on the occluder surface.
const ShadowBias = 1e-3

// CubeFace names one face of a ShadowCubemap, selected by whichever axis
// of a direction vector has the largest magnitude (spec.md §4.6 step 8:
// "picks the cubemap face with the dominant component").
type CubeFace int

const (
	FacePosX CubeFace = iota
	FaceNegX
	FacePosY
	FaceNegY
	FacePosZ
	FaceNegZ
)

// ShadowFace is one square depth-only render target of a dynamic light's
// cube shadow map, storing 1/distance-from-light per texel (spec.md §4.8
// step 3: "a depth-only version of §4.7").
type ShadowFace struct {
	Size  int
	Depth []float32 // Size*Size, 1/distance, row-major
}

// ShadowCubemap is a dynamic light's six-face depth cube, rendered once per
// frame by the engine orchestrator (spec.md §4.8 step 3) and sampled here
// during surface compositing.
type ShadowCubemap struct {
	Faces [6]ShadowFace
}

// dominantFace maps a direction (light-to-point, in light space) to the
// cube face its dominant axis selects, plus face-space (u, v) in [-1, 1].
func dominantFace(dir geom.Vec3) (CubeFace, float64, float64) {
	ax, ay, az := math.Abs(dir.X), math.Abs(dir.Y), math.Abs(dir.Z)
	switch {
	case ax >= ay && ax >= az:
		if dir.X > 0 {
			return FacePosX, -dir.Z / ax, -dir.Y / ax
		}
		return FaceNegX, dir.Z / ax, -dir.Y / ax
	case ay >= ax && ay >= az:
		if dir.Y > 0 {
			return FacePosY, dir.X / ay, dir.Z / ay
		}
		return FaceNegY, dir.X / ay, -dir.Z / ay
	default:
		if dir.Z > 0 {
			return FacePosZ, dir.X / az, -dir.Y / az
		}
		return FaceNegZ, -dir.X / az, -dir.Y / az
	}
}

// Sample returns the cube's stored 1/distance depth along dir (a vector
// from the light toward the shaded point, not normalized).
func (c *ShadowCubemap) Sample(dir geom.Vec3) (invDist float64, ok bool) {
	if c == nil {
		return 0, false
	}
	face, u, v := dominantFace(dir)
	f := c.Faces[face]
	if f.Size == 0 || len(f.Depth) == 0 {
		return 0, false
	}
	tx := int((u*0.5 + 0.5) * float64(f.Size))
	ty := int((v*0.5 + 0.5) * float64(f.Size))
	if tx < 0 {
		tx = 0
	}
	if tx >= f.Size {
		tx = f.Size - 1
	}
	if ty < 0 {
		ty = 0
	}
	if ty >= f.Size {
		ty = f.Size - 1
	}
	return float64(f.Depth[ty*f.Size+tx]), true
}

// shadowFactor returns 1 (fully lit) or 0 (occluded): the shaded point is
// lit when its own 1/distance from the light is at least as large as the
// cube's stored occluder depth along the same direction (closer than or
// equal to the first surface the depth pass recorded).
func shadowFactor(cube *ShadowCubemap, toLight geom.Vec3, dist float64) float64 {
	if cube == nil || dist < 1e-6 {
		return 1
	}
	// Sample expects a light-to-point direction; toLight points the other
	// way (point-to-light), so negate before indexing the cube face.
	stored, ok := cube.Sample(toLight.Scale(-1))
	if !ok {
		return 1
	}
	pointInvDist := 1 / dist
	if pointInvDist >= stored-ShadowBias {
		return 1
	}
	return 0
}

// specularTerm is a Schlick-Fresnel-weighted, glossiness-scaled
// Blinn-Phong-style lobe (spec.md §4.6 step 8: "Schlick Fresnel,
// glossiness-scaled phong-like lobe"), evaluated only for materials that
// declare a normal/roughness map.
func specularTerm(normal, viewDir, lightDir geom.Vec3, roughness float64, isMetal bool) float64 {
	half := viewDir.Add(lightDir)
	hl := half.Length()
	if hl < 1e-9 {
		return 0
	}
	half = half.Scale(1 / hl)

	nDotH := normal.Dot(half)
	if nDotH < 0 {
		nDotH = 0
	}
	glossiness := 1 - roughness
	if glossiness < 0 {
		glossiness = 0
	}
	shininess := 1 + glossiness*128
	lobe := math.Pow(nDotH, shininess)

	cosTheta := viewDir.Dot(half)
	if cosTheta < 0 {
		cosTheta = 0
	}
	f0 := 0.04
	if isMetal {
		f0 = 0.8
	}
	fresnel := f0 + (1-f0)*math.Pow(1-cosTheta, 5)

	return fresnel * lobe
}

// DynamicLight is a runtime point light contributing to surface
// compositing (spec.md §4.6 step 8), layered on top of the baked lightmap.
type DynamicLight struct {
	Pos       geom.Vec3
	Color     color.ColorF32 // linear RGB, alpha unused
	Intensity float64
	Shadow    *ShadowCubemap // nil: unshadowed
}

// shadeDynamicLights accumulates every dynamic light's contribution at
// world point p with surface normal n, viewed from viewDir (normalized,
// pointing toward the camera), per spec.md §4.6 step 8's per-light formula
// "color * shadow(|p-L|) * diffuse_intensity / dist^2" plus an optional
// specular term.
func shadeDynamicLights(p, n, viewDir geom.Vec3, mat *material.Material, lights []DynamicLight) color.ColorF32 {
	var sum color.ColorF32
	for _, l := range lights {
		toLight := l.Pos.Sub(p)
		dist := toLight.Length()
		if dist < 1e-4 {
			continue
		}
		lightDir := toLight.Scale(1 / dist)
		nDotL := n.Dot(lightDir)
		if nDotL <= 0 {
			continue
		}
		sh := shadowFactor(l.Shadow, toLight, dist)
		if sh <= 0 {
			continue
		}

		atten := l.Intensity * nDotL / (dist * dist)
		sum.R += l.Color.R * float32(sh*atten)
		sum.G += l.Color.G * float32(sh*atten)
		sum.B += l.Color.B * float32(sh*atten)

		if mat.HasNormalMap() {
			spec := specularTerm(n, viewDir, lightDir, mat.Roughness, mat.IsMetal)
			specAtten := l.Intensity * sh * spec / (dist * dist)
			sum.R += l.Color.R * float32(specAtten)
			sum.G += l.Color.G * float32(specAtten)
			sum.B += l.Color.B * float32(specAtten)
		}
	}
	sum.A = 1
	return sum
}
