// Package engine is the per-frame orchestrator (spec.md §4.8): it runs the
// ten ordered steps that turn a camera pose, a compiled map, and a set of
// dynamic poses into a composited framebuffer, owning every subsystem
// package (visibility, surface, model, compactmap, raster/tiling,
// postprocess) and the worker pool they share.
package engine

import (
	"github.com/quakesoft/qse/geom"
	"github.com/quakesoft/qse/model"
	"github.com/quakesoft/qse/postprocess"
	"github.com/quakesoft/qse/surface"
)

// CameraPose is the view published by the game/console layer each frame
// (spec.md §6: "external interface publishes a camera pose"): a position
// plus an orthonormal look basis.
type CameraPose struct {
	Pos                geom.Vec3
	Right, Up, Forward geom.Vec3
}

// toCamera builds the geom.Camera the rest of the frame projects with,
// filling in the screen/projection parameters from cfg.
func (p CameraPose) toCamera(cfg Config) geom.Camera {
	return geom.Camera{
		Pos: p.Pos, Right: p.Right, Up: p.Up, Forward: p.Forward,
		FovY: cfg.FovY, Near: cfg.Near,
		ScreenW: float64(cfg.Width), ScreenH: float64(cfg.Height),
	}
}

// SubmodelPose is one door/lift/moving-brush instance's placement this
// frame (spec.md §6): Index names the compiled submodel, Transform its
// world placement.
type SubmodelPose struct {
	Index     int
	Transform geom.Transform
}

// DynamicModelInstance is one triangle-model instance's placement and
// animation state this frame (spec.md §6: "...a triangle model instance:
// model asset, pose, animation state, optional bone transforms, additive
// light constant").
type DynamicModelInstance struct {
	Model     *model.Model
	Pose      geom.Transform
	Anim      *model.AnimationState
	Bones     []geom.Transform // non-nil only for Skeletal meshes with per-instance bone overrides
	Additive  geom.Vec3        // extra light added on top of the sampled light grid, e.g. a muzzle flash
}

// Config is the engine's fixed-for-the-session setup: screen geometry,
// projection, worker count, and the per-subsystem tuning knobs spec.md §6
// exposes as engine-level configuration.
type Config struct {
	Width, Height int
	FovY          float64 // radians
	Near          float64

	Workers int // 0 or 1: run every stage on the calling goroutine

	SurfacePixelBudget int // 0: surface.DefaultPixelBudget
	ShadowFaceSize     int // 0: DefaultShadowFaceSize

	Postprocess postprocess.Config

	// FrameRateCap, when > 0, is the target frames/sec the caller's frame
	// loop paces itself to; the engine itself never sleeps -- Frame always
	// runs exactly one frame's worth of work and returns.
	FrameRateCap float64
}

// DefaultShadowFaceSize is the per-face resolution RenderShadowCubemap
// uses when Config.ShadowFaceSize is 0.
const DefaultShadowFaceSize = 256

// Surface is the window-surface contract spec.md §6 names: "a {width,
// height, pitch} and a writable pixel slice in the target color type."
// Present implements it over whatever pixel format the platform window
// backend exposes.
type Surface interface {
	Width() int
	Height() int
	Pitch() int
	Pixels() []byte
}

// DynamicLightState is a dynamic light's pose/color/intensity for this
// frame plus the cube shadow map the engine rebuilds for it in step 3.
// The Shadow field is engine-owned storage reused frame to frame so
// RenderShadowCubemap can resize its face buffers in place rather than
// reallocating every frame.
type DynamicLightState struct {
	Pos       geom.Vec3
	Color     [3]float32
	Intensity float64
	CastsShadows bool
	Shadow    *surface.ShadowCubemap
}
