package model

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/quakesoft/qse/geom"
)

// AnimationState drives a looping per-instance play cursor across a
// mesh's frame range, the same gween.Tween-driven clock
// phanxgames-willow uses for its UI tweens: Update(dt) advances the
// clock, and a finished tween (reaching the last frame) resets to loop.
type AnimationState struct {
	tween     *gween.Tween
	numFrames int
}

// NewAnimationState starts a clock cycling through numFrames frames at
// fps frames per second.
func NewAnimationState(numFrames int, fps float64) *AnimationState {
	if numFrames < 1 {
		numFrames = 1
	}
	if fps <= 0 {
		fps = 1
	}
	duration := float32(numFrames) / float32(fps)
	return &AnimationState{
		tween:     gween.New(0, float32(numFrames), duration, ease.Linear),
		numFrames: numFrames,
	}
}

// Advance steps the clock by dt seconds and returns the current frame,
// the frame to blend toward, and the blend fraction in [0, 1) between
// them (spec.md §4.8 step 6's per-mesh vertex-animation blend).
func (a *AnimationState) Advance(dt float64) (frame, next int, alpha float64) {
	pos, finished := a.tween.Update(float32(dt))
	if finished {
		a.tween.Reset()
	}
	if a.numFrames <= 1 {
		return 0, 0, 0
	}
	p := float64(pos)
	whole := int(p)
	frame = whole % a.numFrames
	alpha = p - float64(whole)
	next = (frame + 1) % a.numFrames
	return frame, next, alpha
}

// WorldBonePoses resolves every bone's parent-relative local pose at
// frame into a world (model-space) Transform, walking the hierarchy in
// Model.Bones order. Bones are assumed authored parent-before-child, the
// conventional skeletal-asset ordering, so a single forward pass
// suffices without a dependency-sort step.
func WorldBonePoses(mdl *Model, frame int) []geom.Transform {
	frame = clampFrame(frame, len(mdl.FrameBones))
	if frame >= len(mdl.FrameBones) {
		return nil
	}
	locals := mdl.FrameBones[frame]
	world := make([]geom.Transform, len(mdl.Bones))
	for i, b := range mdl.Bones {
		if i >= len(locals) {
			world[i] = geom.IdentityTransform
			continue
		}
		if b.Parent < 0 || b.Parent >= i {
			world[i] = locals[i].Local
			continue
		}
		world[i] = locals[i].Local.Then(world[b.Parent])
	}
	return world
}

func clampFrame(f, n int) int {
	if n == 0 {
		return 0
	}
	if f < 0 {
		return 0
	}
	if f >= n {
		return n - 1
	}
	return f
}
