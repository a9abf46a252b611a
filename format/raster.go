package format

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Raster holds decoded pixels as one plane of intensities per channel, in
// row-major order.
type Raster struct {
	Width  int
	Height int
	Bits   int
	Planes [][]uint16
}

// NewRaster allocates a black raster.
func NewRaster(width, height, channels, bits int) *Raster {
	planes := make([][]uint16, channels)
	for c := range planes {
		planes[c] = make([]uint16, width*height)
	}
	return &Raster{width, height, bits, planes}
}

// At returns the intensity of channel c at (x, y).
func (r *Raster) At(c, x, y int) uint16 {
	return r.Planes[c][y*r.Width+x]
}

// FromImage splits a decoded image into channel planes. Gray images give
// one channel, the others three, alpha being dropped. 16-bit images keep
// their depth.
func FromImage(img image.Image) *Raster {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	switch m := img.(type) {
	case *image.Gray:
		r := NewRaster(w, h, 1, 8)
		for y := 0; y < h; y++ {
			row := m.Pix[y*m.Stride : y*m.Stride+w]
			for x, v := range row {
				r.Planes[0][y*w+x] = uint16(v)
			}
		}
		return r

	case *image.Gray16:
		r := NewRaster(w, h, 1, 16)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				i := y*m.Stride + 2*x
				r.Planes[0][y*w+x] = uint16(m.Pix[i])<<8 | uint16(m.Pix[i+1])
			}
		}
		return r

	case *image.RGBA64, *image.NRGBA64:
		r := NewRaster(w, h, 3, 16)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				c := color.NRGBA64Model.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA64)
				i := y*w + x
				r.Planes[0][i], r.Planes[1][i], r.Planes[2][i] = c.R, c.G, c.B
			}
		}
		return r
	}

	n := imaging.Clone(img)
	r := NewRaster(w, h, 3, 8)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p := y*n.Stride + 4*x
			i := y*w + x
			r.Planes[0][i] = uint16(n.Pix[p])
			r.Planes[1][i] = uint16(n.Pix[p+1])
			r.Planes[2][i] = uint16(n.Pix[p+2])
		}
	}
	return r
}

// Crop returns a copy of the part of the raster inside rect.
func (r *Raster) Crop(rect image.Rectangle) *Raster {
	rect = rect.Intersect(image.Rect(0, 0, r.Width, r.Height))
	w, h := rect.Dx(), rect.Dy()

	out := NewRaster(w, h, len(r.Planes), r.Bits)
	for c, plane := range r.Planes {
		for y := 0; y < h; y++ {
			src := (rect.Min.Y+y)*r.Width + rect.Min.X
			copy(out.Planes[c][y*w:(y+1)*w], plane[src:src+w])
		}
	}
	return out
}

// Resample returns the raster resized to width x height. Each output pixel
// is the mean of the input pixels it covers, or the nearest input pixel
// when enlarging.
func (r *Raster) Resample(width, height int) *Raster {
	if width == r.Width && height == r.Height {
		return r
	}

	out := NewRaster(width, height, len(r.Planes), r.Bits)
	if r.Width == 0 || r.Height == 0 {
		return out
	}

	for y := 0; y < height; y++ {
		y0, y1 := span(y, height, r.Height)
		for x := 0; x < width; x++ {
			x0, x1 := span(x, width, r.Width)
			n := uint64((y1 - y0) * (x1 - x0))
			for c, plane := range r.Planes {
				var sum uint64
				for sy := y0; sy < y1; sy++ {
					for _, v := range plane[sy*r.Width+x0 : sy*r.Width+x1] {
						sum += uint64(v)
					}
				}
				out.Planes[c][y*width+x] = uint16((sum + n/2) / n)
			}
		}
	}
	return out
}

// span returns the input interval covered by output pixel i, never empty.
func span(i, out, in int) (int, int) {
	lo := i * in / out
	hi := (i + 1) * in / out
	if hi <= lo {
		hi = lo + 1
	}
	return lo, hi
}
