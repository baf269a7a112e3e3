package raster

import "github.com/quakesoft/qse/internal/color"

// applyBlend composites src over dst per mode, matching
// internal/blend/blend.go's per-mode-helper dispatch shape (that package's
// gg.RGBA-keyed Porter-Duff/CSS blend set does not survive the module
// rename -- see DESIGN.md -- but its switch-to-helper structure and
// source-over alpha-compositing formula are reused here directly on
// color.ColorF32). keep is false when the pixel should not be written at
// all (BlendAlphaTest below AlphaTestThreshold).
func applyBlend(mode BlendMode, src, dst color.ColorF32) (out color.ColorF32, keep bool) {
	switch mode {
	case BlendNone:
		return src, true
	case BlendAverage:
		return blendAverage(src, dst), true
	case BlendAdditive:
		return blendAdditive(src, dst), true
	case BlendAlphaTest:
		if src.A < AlphaTestThreshold {
			return color.ColorF32{}, false
		}
		return src, true
	case BlendAlphaBlend:
		return blendAlphaBlend(src, dst), true
	default:
		return src, true
	}
}

func blendAverage(src, dst color.ColorF32) color.ColorF32 {
	return color.ColorF32{
		R: (src.R + dst.R) * 0.5,
		G: (src.G + dst.G) * 0.5,
		B: (src.B + dst.B) * 0.5,
		A: (src.A + dst.A) * 0.5,
	}
}

func blendAdditive(src, dst color.ColorF32) color.ColorF32 {
	return color.ColorF32{
		R: src.R + dst.R,
		G: src.G + dst.G,
		B: src.B + dst.B,
		A: src.A + dst.A,
	}
}

// blendAlphaBlend is standard source-over alpha compositing, the same
// formula internal/blend/blend.go's sourceOver computes.
func blendAlphaBlend(src, dst color.ColorF32) color.ColorF32 {
	srcA := src.A
	invSrcA := 1 - srcA
	outA := srcA + dst.A*invSrcA
	if outA == 0 {
		return color.ColorF32{}
	}
	return color.ColorF32{
		R: src.R*srcA + dst.R*invSrcA,
		G: src.G*srcA + dst.G*invSrcA,
		B: src.B*srcA + dst.B*invSrcA,
		A: outA,
	}
}
