package material

import (
	stdimage "image"
	"image/color"

	"golang.org/x/image/draw"

	imgbuf "github.com/quakesoft/qse/internal/image"
)

// MipPyramid is a named texel source's mip chain (spec.md §6: "a mip
// pyramid of texel records"), plus the optional normal/roughness chains a
// material with HasNormalMap declares.
type MipPyramid struct {
	Diffuse   *imgbuf.MipmapChain
	Normal    *imgbuf.MipmapChain
	Roughness *imgbuf.MipmapChain
}

// MaxMip bounds the mip level the surface builder's mip selection clamps to
// (spec.md §4.6 step 5: "clamped to [0, MAX_MIP]").
const MaxMip = 11

// Level returns the diffuse mip level clamped to [0, MaxMip] and to the
// chain's actual depth.
func (p *MipPyramid) Level(n int) *imgbuf.ImageBuf {
	if p == nil || p.Diffuse == nil {
		return nil
	}
	if n < 0 {
		n = 0
	}
	if n > MaxMip {
		n = MaxMip
	}
	if n >= p.Diffuse.NumLevels() {
		n = p.Diffuse.NumLevels() - 1
	}
	return p.Diffuse.Level(n)
}

// Filter selects the resampling kernel used to build non-base mip levels.
// FilterBox matches the teacher's original box-filter downsample; the
// higher-quality kernels are provided by golang.org/x/image/draw and suit
// diffuse albedo maps where ringing from a sharper kernel is tolerable.
type Filter uint8

const (
	FilterBox Filter = iota
	FilterBilinear
	FilterCatmullRom
)

// BuildMipPyramid constructs a full mip pyramid for a loaded diffuse (and
// optional normal/roughness) image, per spec.md §6's "mip pyramid of texel
// records". FilterBox reuses the teacher's in-house box-filter cascade;
// the other two route each level through golang.org/x/image/draw's
// scaler, which operates on standard library image.Image/draw.Image and so
// requires the adapter below.
func BuildMipPyramid(diffuse, normal, roughness *imgbuf.ImageBuf, filter Filter) *MipPyramid {
	p := &MipPyramid{}
	if diffuse != nil {
		p.Diffuse = buildChain(diffuse, filter)
	}
	if normal != nil {
		p.Normal = buildChain(normal, filter)
	}
	if roughness != nil {
		p.Roughness = buildChain(roughness, filter)
	}
	return p
}

func buildChain(src *imgbuf.ImageBuf, filter Filter) *imgbuf.MipmapChain {
	if filter == FilterBox {
		return imgbuf.GenerateMipmaps(src)
	}
	return generateMipmapsScaled(src, filter)
}

// generateMipmapsScaled mirrors imgbuf.GenerateMipmaps's level-count
// policy (halve until the smaller dimension reaches 1) but downsamples
// each level through golang.org/x/image/draw's scaler instead of a 2x2 box
// average, for a sharper result on high-contrast normal maps.
func generateMipmapsScaled(src *imgbuf.ImageBuf, filter Filter) *imgbuf.MipmapChain {
	levels := []*imgbuf.ImageBuf{src}
	cur := src
	for max(cur.Width(), cur.Height()) > 1 {
		dstW := max(1, cur.Width()/2)
		dstH := max(1, cur.Height()/2)
		next := scaleWith(cur, dstW, dstH, filter)
		levels = append(levels, next)
		cur = next
	}
	return imgbuf.NewMipmapChainFromLevels(levels)
}

func scaleWith(src *imgbuf.ImageBuf, dstW, dstH int, filter Filter) *imgbuf.ImageBuf {
	dst, err := imgbuf.NewImageBuf(dstW, dstH, src.Format())
	if err != nil {
		return src
	}
	scaler := draw.BiLinear
	if filter == FilterCatmullRom {
		scaler = draw.CatmullRom
	}
	scaler.Scale(bufAdapter{dst}, dst.BoundsRect(), bufAdapter{src}, src.BoundsRect(), draw.Over, nil)
	return dst
}

// bufAdapter presents an imgbuf.ImageBuf as a standard library draw.Image so
// it can be driven through golang.org/x/image/draw's scalers, which are
// written against image.Image/draw.Image rather than this module's own
// buffer type.
type bufAdapter struct {
	b *imgbuf.ImageBuf
}

func (a bufAdapter) ColorModel() color.Model { return color.RGBAModel }

func (a bufAdapter) Bounds() stdimage.Rectangle { return a.b.BoundsRect() }

func (a bufAdapter) At(x, y int) color.Color {
	r, g, bl, al := a.b.GetRGBA(x, y)
	return color.RGBA{R: r, G: g, B: bl, A: al}
}

func (a bufAdapter) Set(x, y int, c color.Color) {
	rgba := color.RGBAModel.Convert(c).(color.RGBA)
	_ = a.b.SetRGBA(x, y, rgba.R, rgba.G, rgba.B, rgba.A)
}
