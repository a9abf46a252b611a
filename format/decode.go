package format

import (
	"bytes"
	"context"
	"image"
	"math"
	"sync"

	"github.com/disintegration/imaging"

	"github.com/cytomine/pims/logger"
	"github.com/cytomine/pims/problem"
	"github.com/cytomine/pims/pyramid"
)

var formatReadMissing = "Cannot read this format: %v"

// RasterImage is an image fully decoded in memory.
type RasterImage struct {
	format  string
	raster  *Raster
	pyramid *pyramid.Pyramid

	statsOnce sync.Once
	stats     []Stats
	statsErr  error
}

// Decode reads a JPEG, PNG, GIF, TIFF or BMP file.
func Decode(data []byte, tileSize int) (*RasterImage, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, problem.NotImplemented(formatReadMissing, err)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, problem.BadRequest("Cannot decode %s image: %v", format, err)
	}

	return NewRasterImage(format, FromImage(img), tileSize)
}

// NewRasterImage wraps a raster into an image with a virtual pyramid.
func NewRasterImage(format string, r *Raster, tileSize int) (*RasterImage, error) {
	p, err := VirtualPyramid(r.Width, r.Height, tileSize)
	if err != nil {
		return nil, err
	}
	logger.Debugf("Decoded %s image %dx%d (%d bits, %d channels, %d tiers)",
		format, r.Width, r.Height, r.Bits, len(r.Planes), p.NLevels())

	return &RasterImage{
		format:  format,
		raster:  r,
		pyramid: p,
	}, nil
}

func (ri *RasterImage) Format() string { return ri.format }
func (ri *RasterImage) Width() int { return ri.raster.Width }
func (ri *RasterImage) Height() int { return ri.raster.Height }
func (ri *RasterImage) SignificantBits() int { return ri.raster.Bits }
func (ri *RasterImage) NChannels() int { return len(ri.raster.Planes) }
func (ri *RasterImage) NZSlices() int { return 1 }
func (ri *RasterImage) NTimepoints() int { return 1 }
func (ri *RasterImage) Pyramid() *pyramid.Pyramid { return ri.pyramid }

// Stats computes the channel statistics on first use.
func (ri *RasterImage) Stats(ctx context.Context) ([]Stats, error) {
	ri.statsOnce.Do(func() {
		ri.stats, ri.statsErr = ComputeStats(context.WithoutCancel(ctx), ri.raster)
	})
	return ri.stats, ri.statsErr
}

// ChannelStats returns the intensity range of channel c.
func (ri *RasterImage) ChannelStats(c int) (int, int) {
	stats, err := ri.Stats(context.Background())
	if err != nil || c < 0 || c >= len(stats) {
		return defaultStats(ri.raster.Bits)
	}
	return stats[c].Minimum, stats[c].Maximum
}

// Read crops the region from the full resolution image and resamples it to
// the tier resolution.
func (ri *RasterImage) Read(ctx context.Context, tier pyramid.Tier, region pyramid.Region) (*Raster, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	target := region.ScaleTo(tier.Downsample)
	width := int(math.Max(1, target.Width))
	height := int(math.Max(1, target.Height))

	crop := ri.raster.Crop(region.ScaleTo(1).Rect())
	if crop.Width == 0 || crop.Height == 0 {
		return nil, problem.OutOfBounds("Region %v is outside of the image", region)
	}
	return crop.Resample(width, height), nil
}
