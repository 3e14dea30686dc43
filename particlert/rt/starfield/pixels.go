package starfield

import (
	"fmt"
	"image"

	"github.com/gekko3d/skyshow/particlert/rt/core"

	"golang.org/x/image/draw"
)

const bytesPerPixel = 4

// Pixels is a decoded, non-premultiplied RGBA8 raster, row-major with a
// top-left origin. Translucent pixels keep their full colour.
type Pixels struct {
	Pix    []byte
	Width  int
	Height int
}

func (p Pixels) validate() error {
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("%w: image is %dx%d", core.ErrAssetDecode, p.Width, p.Height)
	}
	if need := p.Width * p.Height * bytesPerPixel; len(p.Pix) < need {
		return fmt.Errorf("%w: pixel buffer holds %d bytes, %dx%d RGBA needs %d",
			core.ErrAssetDecode, len(p.Pix), p.Width, p.Height, need)
	}
	return nil
}

// RGB returns the channels of pixel (x, y).
func (p Pixels) RGB(x, y int) (r, g, b uint8) {
	i := (y*p.Width + x) * bytesPerPixel
	return p.Pix[i], p.Pix[i+1], p.Pix[i+2]
}

// PixelsFromImage converts any decoded image into an NRGBA8 buffer. When
// maxDim > 0 and the image is larger than maxDim on its longest side, it is
// scaled down first.
func PixelsFromImage(src image.Image, maxDim int) Pixels {
	sb := src.Bounds()
	w, h := sb.Dx(), sb.Dy()

	if maxDim > 0 && (w > maxDim || h > maxDim) {
		if w >= h {
			h = max(1, h*maxDim/w)
			w = maxDim
		} else {
			w = max(1, w*maxDim/h)
			h = maxDim
		}
		dst := image.NewNRGBA(image.Rect(0, 0, w, h))
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, sb, draw.Src, nil)
		return Pixels{Pix: dst.Pix, Width: w, Height: h}
	}

	if nrgba, ok := src.(*image.NRGBA); ok && nrgba.Stride == w*bytesPerPixel && sb.Min == (image.Point{}) {
		return Pixels{Pix: nrgba.Pix, Width: w, Height: h}
	}

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), src, sb.Min, draw.Src)
	return Pixels{Pix: dst.Pix, Width: w, Height: h}
}
