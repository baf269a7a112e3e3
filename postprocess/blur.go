package postprocess

import "github.com/quakesoft/qse/internal/color"

// blurHorizontal and blurVertical are the separable-Gaussian convolution
// passes, adapted from the teacher's internal/filter blurHorizontal/
// blurVertical onto row-major ColorF32 buffers instead of *gg.Pixmap byte
// data, with the same clamped edge-extension behavior at the buffer
// boundary.

func blurHorizontal(src []color.ColorF32, dst []color.ColorF32, width, height int, kernel []float32) {
	kernelSize := len(kernel)
	half := kernelSize / 2
	for y := 0; y < height; y++ {
		row := y * width
		for x := 0; x < width; x++ {
			var r, g, b, a float32
			for k := 0; k < kernelSize; k++ {
				kx := clampIndex(x+k-half, width)
				c := src[row+kx]
				w := kernel[k]
				r += c.R * w
				g += c.G * w
				b += c.B * w
				a += c.A * w
			}
			dst[row+x] = color.ColorF32{R: r, G: g, B: b, A: a}
		}
	}
}

func blurVertical(src []color.ColorF32, dst []color.ColorF32, width, height int, kernel []float32) {
	kernelSize := len(kernel)
	half := kernelSize / 2
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var r, g, b, a float32
			for k := 0; k < kernelSize; k++ {
				ky := clampIndex(y+k-half, height)
				c := src[ky*width+x]
				w := kernel[k]
				r += c.R * w
				g += c.G * w
				b += c.B * w
				a += c.A * w
			}
			dst[y*width+x] = color.ColorF32{R: r, G: g, B: b, A: a}
		}
	}
}

func clampIndex(v, n int) int {
	if v < 0 {
		return 0
	}
	if v >= n {
		return n - 1
	}
	return v
}
