// Package render turns decoded rasters into displayable images.
//
// Every selected channel goes through its own lookup table: intensities are
// rescaled from [min, max] to [0, 1], gamma corrected, optionally log
// scaled, then mapped through the channel colormap. Colored channels are
// summed, saturating at white.
package render

import (
	"context"
	"image"
	"image/color"
	"io"
	"math"
	"runtime"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/sync/errgroup"

	"github.com/cytomine/pims/colormap"
	"github.com/cytomine/pims/format"
	"github.com/cytomine/pims/params"
	"github.com/cytomine/pims/problem"
)

// ColormapSize is the number of colors sampled from a colormap.
const ColormapSize = 256

var grey = colormap.FromColor("WHITE", colorful.Color{R: 1, G: 1, B: 1})

// Options select and style the channels of a rendered image. Mins, Maxs,
// Gammas and Colormaps hold one entry per selected channel; a nil colormap
// renders the channel in grey levels.
type Options struct {
	Channels  []int
	Mins      []int
	Maxs      []int
	Gammas    []float64
	Log       bool
	Colormaps []*colormap.Colormap

	// Output size. Zero keeps the raster size.
	Width  int
	Height int
}

// Render applies opts to r and resizes the result.
func Render(ctx context.Context, r *format.Raster, opts Options) (*image.NRGBA, error) {
	channels := opts.Channels
	if len(channels) == 0 {
		channels = make([]int, len(r.Planes))
		for c := range channels {
			channels[c] = c
		}
	}

	luts := make([][]color.RGBA, len(channels))
	for i, c := range channels {
		if c < 0 || c >= len(r.Planes) {
			return nil, problem.BadRequest("Channel %d does not exist", c)
		}
		luts[i] = channelLUT(r.Bits, opts, i)
	}

	img := image.NewNRGBA(image.Rect(0, 0, r.Width, r.Height))
	g, ctx := errgroup.WithContext(ctx)
	for _, band := range bands(r.Height, runtime.GOMAXPROCS(0)) {
		band := band
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for y := band[0]; y < band[1]; y++ {
				row := img.Pix[y*img.Stride : y*img.Stride+r.Width*4]
				for x := 0; x < r.Width; x++ {
					var red, green, blue int
					for i, c := range channels {
						v := int(r.Planes[c][y*r.Width+x])
						if v >= len(luts[i]) {
							v = len(luts[i]) - 1
						}
						col := luts[i][v]
						red += int(col.R)
						green += int(col.G)
						blue += int(col.B)
					}
					row[x*4] = saturate(red)
					row[x*4+1] = saturate(green)
					row[x*4+2] = saturate(blue)
					row[x*4+3] = 0xff
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	width, height := opts.Width, opts.Height
	if width <= 0 {
		width = r.Width
	}
	if height <= 0 {
		height = r.Height
	}
	if width != r.Width || height != r.Height {
		img = imaging.Resize(img, width, height, imaging.Lanczos)
	}
	return img, nil
}

// channelLUT maps every intensity of a bits deep channel to a color.
func channelLUT(bits int, opts Options, i int) []color.RGBA {
	size := 1 << uint(bits)
	lo, hi := 0, size-1
	if i < len(opts.Mins) {
		lo = opts.Mins[i]
	}
	if i < len(opts.Maxs) {
		hi = opts.Maxs[i]
	}
	gamma := 1.0
	if i < len(opts.Gammas) && opts.Gammas[i] > 0 {
		gamma = opts.Gammas[i]
	}
	cm := grey
	if i < len(opts.Colormaps) && opts.Colormaps[i] != nil {
		cm = opts.Colormaps[i]
	}
	colors := cm.LUT(ColormapSize)

	lut := make([]color.RGBA, size)
	for v := range lut {
		t := normalize(v, lo, hi)
		if gamma != 1 {
			t = math.Pow(t, gamma)
		}
		if opts.Log {
			t = math.Log1p(t) / math.Ln2
		}
		lut[v] = colors[int(math.Round(t*(ColormapSize-1)))]
	}
	return lut
}

// normalize rescales v from [lo, hi] to [0, 1]. An empty range thresholds
// at lo.
func normalize(v, lo, hi int) float64 {
	if hi <= lo {
		if v < lo {
			return 0
		}
		return 1
	}
	t := float64(v-lo) / float64(hi-lo)
	return math.Min(1, math.Max(0, t))
}

func saturate(v int) uint8 {
	if v > 0xff {
		return 0xff
	}
	return uint8(v)
}

// bands splits height rows into at most n contiguous ranges.
func bands(height, n int) [][2]int {
	if n < 1 {
		n = 1
	}
	size := (height + n - 1) / n
	if size < 1 {
		size = 1
	}
	var out [][2]int
	for start := 0; start < height; start += size {
		out = append(out, [2]int{start, min(start+size, height)})
	}
	return out
}

// Encode writes img in the given format.
func Encode(w io.Writer, img image.Image, f params.OutputFormat) error {
	switch f {
	case params.JPEG:
		return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(90))
	case params.PNG:
		return imaging.Encode(w, img, imaging.PNG)
	case params.TIFF:
		return imaging.Encode(w, img, imaging.TIFF)
	}
	return problem.NotImplemented("Cannot encode %#v", string(f))
}
