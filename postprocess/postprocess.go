// Package postprocess composites the engine's HDR accumulation buffer into
// the LDR framebuffer the window surface displays: a Reinhard tonemap plus
// a bright-pass separable-Gaussian bloom on a downscaled buffer (spec.md
// §4.8 step 10: "Composite HDR buffer through tonemap+bloom into the LDR
// framebuffer"). The bloom ping-pong (extract, blur horizontal, blur
// vertical) runs single-threaded; the final tonemap+composite pass is
// parallel over screen rows, matching spec.md §5's split: "Postprocess
// bloom buffers: owned by the postprocessor; ping-pong single-threaded
// between horizontal and vertical passes; tonemap pass is parallel with
// per-row partitioning."
//
// Grounded on the teacher's internal/filter.BlurFilter (separable-kernel
// shape, adapted here onto ColorF32 buffers instead of *gg.Pixmap) and its
// internal/filter.CachedGaussianKernel, which is reused unchanged since it
// operates on plain float32 kernels with no gg dependency.
package postprocess

import (
	"github.com/quakesoft/qse/internal/color"
	"github.com/quakesoft/qse/internal/filter"
	"github.com/quakesoft/qse/internal/parallel"
)

// Config holds the tunable knobs for one Processor.
type Config struct {
	// Exposure scales HDR radiance before the Reinhard curve is applied.
	Exposure float64
	// BloomThreshold is the linear-luminance cutoff above which a pixel
	// contributes to the bloom buffer.
	BloomThreshold float64
	// BloomIntensity scales the blurred bloom buffer before it is added
	// back onto the tonemapped image.
	BloomIntensity float64
	// BloomRadius is the Gaussian blur radius, in downscaled-buffer
	// pixels, of the bloom pass.
	BloomRadius float64
	// BloomScale is the downscale factor (e.g. 4 means the bloom buffer
	// is 1/4 the framebuffer's width and height) used to keep the bloom
	// ping-pong cheap.
	BloomScale int
}

// DefaultConfig matches a conventional Quake-era bloom: a high threshold
// so only specular highlights and light-emitting surfaces bloom, a modest
// blur radius, and a 4x downscale.
func DefaultConfig() Config {
	return Config{
		Exposure:       1.0,
		BloomThreshold: 1.0,
		BloomIntensity: 0.6,
		BloomRadius:    3.0,
		BloomScale:     4,
	}
}

// Processor owns the downscaled bloom ping-pong buffers across frames so
// they don't reallocate every frame (the teacher's pooled-temp-buffer
// idiom in internal/filter, adapted here to own two fixed-role buffers
// rather than pull from a sync.Pool, since the processor already owns a
// stable width/height across the session).
type Processor struct {
	cfg Config

	bloomW, bloomH int
	bright         []color.ColorF32 // bright-pass extract, also horizontal-blur scratch
	bloom          []color.ColorF32 // final (vertically blurred) bloom buffer
}

// NewProcessor creates a Processor with cfg. A zero Config is invalid;
// callers should start from DefaultConfig and override fields.
func NewProcessor(cfg Config) *Processor {
	if cfg.BloomScale < 1 {
		cfg.BloomScale = 1
	}
	return &Processor{cfg: cfg}
}

// Composite tonemaps hdr (width x height, row-major linear HDR color) plus
// its bloom contribution into ldr (same dimensions, gamma-ready [0,1]
// ColorF32 — callers quantize to the surface's byte format separately, the
// same division of labor material/raster keep between linear float work
// and final 8-bit packing). pool may be nil, in which case the tonemap
// pass runs inline on the calling goroutine.
func (p *Processor) Composite(pool *parallel.WorkerPool, hdr []color.ColorF32, width, height int, ldr []color.ColorF32) {
	if width <= 0 || height <= 0 || len(hdr) < width*height || len(ldr) < width*height {
		return
	}

	p.updateBloom(hdr, width, height)

	rows := make([]func(), height)
	for y := 0; y < height; y++ {
		y := y
		rows[y] = func() { p.tonemapRow(hdr, ldr, width, height, y) }
	}
	if pool == nil {
		for _, row := range rows {
			row()
		}
		return
	}
	pool.ExecuteAll(rows)
}

// tonemapRow applies the Reinhard curve plus the upsampled bloom
// contribution to one row of the framebuffer.
func (p *Processor) tonemapRow(hdr, ldr []color.ColorF32, width, height, y int) {
	exposure := float32(p.cfg.Exposure)
	intensity := float32(p.cfg.BloomIntensity)
	for x := 0; x < width; x++ {
		idx := y*width + x
		c := hdr[idx]
		bloom := p.sampleBloom(x, y, width, height)

		r := c.R*exposure + bloom.R*intensity
		g := c.G*exposure + bloom.G*intensity
		b := c.B*exposure + bloom.B*intensity

		ldr[idx] = color.ColorF32{
			R: reinhard(r),
			G: reinhard(g),
			B: reinhard(b),
			A: c.A,
		}
	}
}

// reinhard maps an unbounded HDR channel value into [0, 1): c / (1 + c).
func reinhard(c float32) float32 {
	if c < 0 {
		return 0
	}
	return c / (1 + c)
}

// updateBloom rebuilds the bright-pass, horizontal-blur, and
// vertical-blur buffers for this frame's hdr image. The three steps are
// the teacher's Apply pipeline (extract/threshold substitutes for the
// teacher's plain copy-in step, since bloom needs a bright-pass mask
// rather than a straight blur of the whole image).
func (p *Processor) updateBloom(hdr []color.ColorF32, width, height int) {
	bw := max(width/p.cfg.BloomScale, 1)
	bh := max(height/p.cfg.BloomScale, 1)
	p.ensureBuffers(bw, bh)

	extractBright(hdr, width, height, p.bright, bw, bh, float32(p.cfg.BloomThreshold))

	kernel := filter.CachedGaussianKernel(p.cfg.BloomRadius)
	scratch := make([]color.ColorF32, bw*bh)
	blurHorizontal(p.bright, scratch, bw, bh, kernel)
	blurVertical(scratch, p.bloom, bw, bh, kernel)
}

func (p *Processor) ensureBuffers(bw, bh int) {
	if p.bloomW == bw && p.bloomH == bh && p.bright != nil {
		return
	}
	p.bloomW, p.bloomH = bw, bh
	p.bright = make([]color.ColorF32, bw*bh)
	p.bloom = make([]color.ColorF32, bw*bh)
}

// sampleBloom nearest-samples the downscaled bloom buffer at full-res
// pixel (x, y).
func (p *Processor) sampleBloom(x, y, width, height int) color.ColorF32 {
	if p.bloomW == 0 || p.bloomH == 0 {
		return color.ColorF32{}
	}
	bx := x * p.bloomW / width
	by := y * p.bloomH / height
	bx = min(bx, p.bloomW-1)
	by = min(by, p.bloomH-1)
	return p.bloom[by*p.bloomW+bx]
}

// extractBright downsamples hdr (width x height) into dst (dw x dh) via
// box filtering, keeping only the portion of each pixel's luminance above
// threshold (so the bloom buffer holds only light sources/specular
// highlights, not the whole scene).
func extractBright(hdr []color.ColorF32, width, height int, dst []color.ColorF32, dw, dh int, threshold float32) {
	for dy := 0; dy < dh; dy++ {
		srcY0 := dy * height / dh
		srcY1 := max((dy+1)*height/dh, srcY0+1)
		for dx := 0; dx < dw; dx++ {
			srcX0 := dx * width / dw
			srcX1 := max((dx+1)*width/dw, srcX0+1)

			var r, g, b float32
			var n int
			for sy := srcY0; sy < srcY1 && sy < height; sy++ {
				for sx := srcX0; sx < srcX1 && sx < width; sx++ {
					c := hdr[sy*width+sx]
					r += c.R
					g += c.G
					b += c.B
					n++
				}
			}
			if n > 0 {
				inv := 1 / float32(n)
				r, g, b = r*inv, g*inv, b*inv
			}

			lum := 0.2126*r + 0.7152*g + 0.0722*b
			if lum <= threshold {
				dst[dy*dw+dx] = color.ColorF32{}
				continue
			}
			scale := (lum - threshold) / lum
			dst[dy*dw+dx] = color.ColorF32{R: r * scale, G: g * scale, B: b * scale, A: 1}
		}
	}
}
