package image

import "image"

// BoundsRect returns the buffer's bounds as a standard library
// image.Rectangle, for interop with golang.org/x/image/draw scalers that
// operate on image.Image/draw.Image.
func (b *ImageBuf) BoundsRect() image.Rectangle {
	return image.Rect(0, 0, b.width, b.height)
}

// NewMipmapChainFromLevels wraps a pre-built level sequence (level 0 =
// original) as a MipmapChain, for callers that generate levels with their
// own downsampling kernel instead of GenerateMipmaps's box filter.
func NewMipmapChainFromLevels(levels []*ImageBuf) *MipmapChain {
	return &MipmapChain{levels: levels}
}
