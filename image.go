package gpucanvas

import (
	"image"
	"image/draw"

	"github.com/gogpu/gpucanvas/geom"
	"github.com/gogpu/gpucanvas/gpu"
	"github.com/gogpu/gpucanvas/processor"
)

// Image is an immutable picture that can be drawn or sampled by a shader.
//
// Texture-backed images wrap an existing texture. Raster images keep their
// pixels on the CPU and are uploaded once per context the first time they
// are drawn.
type Image struct {
	id     uint64
	width  int
	height int

	texture gpu.Texture

	rgba  *image.RGBA
	alpha *image.Alpha

	// rgbaaa is set for split layouts where the alpha plane sits beside
	// the color plane.
	rgbaaa     bool
	alphaStart image.Point
}

// ImageFromTexture wraps tex. The caller keeps ownership of the texture.
func ImageFromTexture(tex gpu.Texture) *Image {
	if tex == nil {
		return nil
	}
	return &Image{id: gpu.NextID(), width: tex.Width(), height: tex.Height(), texture: tex}
}

// ImageFromRGBA copies img into a raster image. Pixels are converted to
// premultiplied RGBA.
func ImageFromRGBA(img image.Image) *Image {
	if img == nil || img.Bounds().Empty() {
		return nil
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return &Image{id: gpu.NextID(), width: b.Dx(), height: b.Dy(), rgba: rgba}
}

// ImageFromAlpha copies img into an alpha-only raster image. Drawing it
// fills the covered area with the paint.
func ImageFromAlpha(img *image.Alpha) *Image {
	if img == nil || img.Rect.Empty() {
		return nil
	}
	a := image.NewAlpha(image.Rect(0, 0, img.Rect.Dx(), img.Rect.Dy()))
	draw.Draw(a, a.Bounds(), img, img.Rect.Min, draw.Src)
	return &Image{id: gpu.NextID(), width: a.Rect.Dx(), height: a.Rect.Dy(), alpha: a}
}

// ImageWithRGBAAA reinterprets img as a split layout: the color of a
// width x height picture at the top-left, and its alpha stored in the red
// channel of the same-sized block at alphaStart. It returns nil when the
// blocks do not fit in img.
func ImageWithRGBAAA(img *Image, width, height int, alphaStart image.Point) *Image {
	if img == nil || img.IsAlphaOnly() || width <= 0 || height <= 0 {
		return nil
	}
	color := image.Rect(0, 0, width, height)
	alpha := color.Add(alphaStart)
	full := image.Rect(0, 0, img.width, img.height)
	if !color.In(full) || !alpha.In(full) {
		return nil
	}
	out := *img
	out.id = gpu.NextID()
	out.width, out.height = width, height
	out.rgbaaa = true
	out.alphaStart = alphaStart
	return &out
}

// ID is unique among images of the process.
func (img *Image) ID() uint64 { return img.id }

// Width returns the displayed width in pixels.
func (img *Image) Width() int { return img.width }

// Height returns the displayed height in pixels.
func (img *Image) Height() int { return img.height }

// Bounds returns the displayed rectangle at the origin.
func (img *Image) Bounds() geom.Rect {
	return geom.WH(float64(img.width), float64(img.height))
}

// IsAlphaOnly reports whether the image carries coverage only.
func (img *Image) IsAlphaOnly() bool {
	if img.texture != nil {
		return img.texture.Format().IsAlphaOnly()
	}
	return img.alpha != nil
}

// IsRGBAAA reports a split color/alpha layout.
func (img *Image) IsRGBAAA() bool { return img.rgbaaa }

// Texture returns the wrapped texture, or nil for raster images.
func (img *Image) Texture() gpu.Texture { return img.texture }

// imageFragment returns the processor sampling img, mapping local
// coordinates to image pixels through localToImage.
func (c *Context) imageFragment(img *Image, sampler gpu.SamplerState, localToImage geom.Matrix) processor.Fragment {
	tex, err := c.imageTexture(img)
	if err != nil {
		Logger().Warn("image upload failed", "image", img.id, "err", err)
		return nil
	}
	if img.rgbaaa {
		return processor.NewRGBAAATextureEffect(tex, sampler, localToImage,
			geom.Pt(float64(img.alphaStart.X), float64(img.alphaStart.Y)))
	}
	return processor.NewTextureEffect(tex, sampler, localToImage)
}
