//go:build vips

// Package vips reads images with libvips. Importing it registers the reader
// with the format package, ahead of the built-in reader.
package vips

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/disintegration/imaging"
	"gopkg.in/h2non/bimg.v1"

	"github.com/cytomine/pims/format"
	"github.com/cytomine/pims/logger"
	"github.com/cytomine/pims/problem"
	"github.com/cytomine/pims/pyramid"
)

var processError = "libvips couldn't process the image: %#v"

func init() {
	format.Register("vips", Supported, func(data []byte, tileSize int) (format.Image, error) {
		return Open(data, tileSize)
	})
}

// Supported reports whether libvips can read the data.
func Supported(data []byte) bool {
	t := bimg.DetermineImageType(data)
	return t != bimg.UNKNOWN && bimg.IsTypeSupported(t)
}

// Image is an image decoded on demand by libvips.
type Image struct {
	data     []byte
	typ      string
	size     bimg.ImageSize
	bits     int
	channels int
	pyramid  *pyramid.Pyramid

	statsOnce sync.Once
	stats     []format.Stats
	statsErr  error
}

// Open reads the image header.
func Open(data []byte, tileSize int) (*Image, error) {
	img := bimg.NewImage(data)
	meta, err := img.Metadata()
	if err != nil {
		return nil, problem.NotImplemented("libvips cannot open this file: %#v", err.Error())
	}

	bits := 8
	interpretation, err := img.Interpretation()
	if err == nil && (interpretation == bimg.InterpretationGREY16 || interpretation == bimg.InterpretationRGB16) {
		bits = 16
	}

	channels := meta.Channels
	if meta.Alpha {
		channels--
	}
	if channels != 1 {
		channels = 3
	}

	p, err := format.VirtualPyramid(meta.Size.Width, meta.Size.Height, tileSize)
	if err != nil {
		return nil, err
	}

	logger.Debugf("Opened %s image %dx%d with libvips", meta.Type, meta.Size.Width, meta.Size.Height)
	return &Image{
		data:     data,
		typ:      meta.Type,
		size:     meta.Size,
		bits:     bits,
		channels: channels,
		pyramid:  p,
	}, nil
}

func (vi *Image) Format() string { return vi.typ }
func (vi *Image) Width() int { return vi.size.Width }
func (vi *Image) Height() int { return vi.size.Height }
func (vi *Image) SignificantBits() int { return vi.bits }
func (vi *Image) NChannels() int { return vi.channels }
func (vi *Image) NZSlices() int { return 1 }
func (vi *Image) NTimepoints() int { return 1 }
func (vi *Image) Pyramid() *pyramid.Pyramid { return vi.pyramid }

// Stats computes the channel statistics of the full resolution image on
// first use.
func (vi *Image) Stats(ctx context.Context) ([]format.Stats, error) {
	vi.statsOnce.Do(func() {
		r, err := vi.decode(vi.data)
		if err != nil {
			vi.statsErr = err
			return
		}
		vi.stats, vi.statsErr = format.ComputeStats(context.WithoutCancel(ctx), r)
	})
	return vi.stats, vi.statsErr
}

// ChannelStats returns the intensity range of channel c.
func (vi *Image) ChannelStats(c int) (int, int) {
	stats, err := vi.Stats(context.Background())
	if err != nil || c < 0 || c >= len(stats) {
		return 0, 1<<uint(vi.bits) - 1
	}
	return stats[c].Minimum, stats[c].Maximum
}

// Read extracts the region at full resolution, then shrinks it to the tier
// resolution.
func (vi *Image) Read(ctx context.Context, tier pyramid.Tier, region pyramid.Region) (*format.Raster, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rect := region.ScaleTo(1).Rect().Intersect(image.Rect(0, 0, vi.size.Width, vi.size.Height))
	if rect.Empty() {
		return nil, problem.OutOfBounds("Region %v is outside of the image", region)
	}

	buf, err := bimg.NewImage(vi.data).Extract(rect.Min.Y, rect.Min.X, rect.Dx(), rect.Dy())
	if err != nil {
		return nil, fmt.Errorf(processError, err.Error())
	}

	target := region.ScaleTo(tier.Downsample)
	width, height := max(1, int(target.Width)), max(1, int(target.Height))
	if width != rect.Dx() || height != rect.Dy() {
		buf, err = bimg.NewImage(buf).ForceResize(width, height)
		if err != nil {
			return nil, fmt.Errorf(processError, err.Error())
		}
	}
	return vi.decode(buf)
}

// decode converts the buffer to PNG and splits it into planes.
func (vi *Image) decode(buf []byte) (*format.Raster, error) {
	png, err := bimg.NewImage(buf).Convert(bimg.PNG)
	if err != nil {
		return nil, fmt.Errorf(processError, err.Error())
	}
	img, err := imaging.Decode(bytes.NewReader(png))
	if err != nil {
		return nil, err
	}
	return format.FromImage(img), nil
}
