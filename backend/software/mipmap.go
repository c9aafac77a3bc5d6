package software

import (
	"image"

	"github.com/disintegration/imaging"

	"github.com/gogpu/gpucanvas/gpu"
)

// RegenerateMipmaps implements render.Device. Each level is a box-filtered
// reduction of the one above it.
//
// imaging weights color by alpha when resampling, which would apply alpha
// twice to premultiplied texels. Color and alpha are therefore resampled
// as two opaque images.
func (d *Device) RegenerateMipmaps(tex gpu.Texture) error {
	t, err := d.lookup(tex)
	if err != nil {
		return err
	}
	for level := 1; level < len(t.levels); level++ {
		w, h := t.levelSize(level)
		colors, alpha := splitLevel(t, level-1)
		alpha = imaging.Resize(alpha, w, h, imaging.Box)
		if colors != nil {
			colors = imaging.Resize(colors, w, h, imaging.Box)
		}
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				a := alpha.Pix[alpha.PixOffset(x, y)]
				c := gpu.Color{A: float32(a) / 255}
				if colors != nil {
					i := colors.PixOffset(x, y)
					c.R = float32(colors.Pix[i]) / 255
					c.G = float32(colors.Pix[i+1]) / 255
					c.B = float32(colors.Pix[i+2]) / 255
				}
				t.store(level, x, y, c)
			}
		}
	}
	return nil
}

// splitLevel returns the color channels and the alpha channel of a level
// as opaque images. colors is nil for alpha-only textures.
func splitLevel(t *texture, level int) (colors, alpha *image.NRGBA) {
	w, h := t.levelSize(level)
	alpha = image.NewNRGBA(image.Rect(0, 0, w, h))
	if !t.format.IsAlphaOnly() {
		colors = image.NewNRGBA(alpha.Rect)
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p := t.texel(level, x, y).RGBA8()
			i := alpha.PixOffset(x, y)
			copy(alpha.Pix[i:i+4], []byte{p.A, p.A, p.A, 0xff})
			if colors != nil {
				copy(colors.Pix[i:i+4], []byte{p.R, p.G, p.B, 0xff})
			}
		}
	}
	return colors, alpha
}
