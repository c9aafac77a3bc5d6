package wgpu

import (
	"image"

	"github.com/disintegration/imaging"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gpucanvas/gpu"
)

// RegenerateMipmaps implements render.Device. Level 0 is read back and
// every further level is box-filtered on the CPU and uploaded.
//
// Texels are premultiplied, so color and alpha are resampled as separate
// opaque images to keep imaging from weighting color by alpha again.
func (d *Device) RegenerateMipmaps(tex gpu.Texture) error {
	t, err := d.lookup(tex)
	if err != nil {
		return err
	}
	if t.levels < 2 {
		return nil
	}
	pixels, stride, err := d.readback(t, image.Rect(0, 0, t.width, t.height))
	if err != nil {
		return err
	}
	colors, alpha := splitPixels(pixels, stride, t.width, t.height, t.format)

	w, h := t.width, t.height
	bpp := t.format.BytesPerPixel()
	for level := 1; level < t.levels; level++ {
		w, h = max(w/2, 1), max(h/2, 1)
		alpha = imaging.Resize(alpha, w, h, imaging.Box)
		if colors != nil {
			colors = imaging.Resize(colors, w, h, imaging.Box)
		}
		data := make([]byte, w*h*bpp)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				i := alpha.PixOffset(x, y)
				o := data[(y*w+x)*bpp:]
				if colors == nil {
					o[0] = alpha.Pix[i]
					continue
				}
				r, g, b := colors.Pix[i], colors.Pix[i+1], colors.Pix[i+2]
				if t.format == gpu.FormatBGRA8 {
					r, b = b, r
				}
				o[0], o[1], o[2], o[3] = r, g, b, alpha.Pix[i]
			}
		}
		d.queue.WriteTexture(&hal.ImageCopyTexture{
			Texture:  t.tex,
			MipLevel: uint32(level),
			Aspect:   gputypes.TextureAspectAll,
		}, data, &hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(w * bpp),
			RowsPerImage: uint32(h),
		}, &hal.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1})
	}
	return nil
}

// splitPixels returns the color channels and the alpha channel of
// storage-format pixels as opaque RGBA images. colors is nil for
// alpha-only formats.
func splitPixels(pixels []byte, stride, w, h int, format gpu.PixelFormat) (colors, alpha *image.NRGBA) {
	alpha = image.NewNRGBA(image.Rect(0, 0, w, h))
	if !format.IsAlphaOnly() {
		colors = image.NewNRGBA(alpha.Rect)
	}
	bpp := format.BytesPerPixel()
	for y := 0; y < h; y++ {
		row := pixels[y*stride:]
		for x := 0; x < w; x++ {
			p := row[x*bpp : x*bpp+bpp]
			i := alpha.PixOffset(x, y)
			if colors == nil {
				copy(alpha.Pix[i:i+4], []byte{p[0], p[0], p[0], 0xff})
				continue
			}
			r, g, b, a := p[0], p[1], p[2], p[3]
			if format == gpu.FormatBGRA8 {
				r, b = b, r
			}
			copy(alpha.Pix[i:i+4], []byte{a, a, a, 0xff})
			copy(colors.Pix[i:i+4], []byte{r, g, b, 0xff})
		}
	}
	return colors, alpha
}
