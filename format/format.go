// Package format decodes image files and exposes them as pyramids of
// tiers that regions can be read from.
//
// The built-in reader decodes JPEG, PNG, GIF, TIFF and BMP files in memory
// and derives a virtual pyramid from the full resolution image. Other
// readers may be registered with Register; they are tried first.
package format

import (
	"context"
	"sync"

	"github.com/cytomine/pims/problem"
	"github.com/cytomine/pims/pyramid"
)

// Image is a decoded image file.
type Image interface {
	Format() string
	Width() int
	Height() int
	SignificantBits() int
	NChannels() int
	NZSlices() int
	NTimepoints() int
	Pyramid() *pyramid.Pyramid

	// Stats returns the statistics of every channel.
	Stats(ctx context.Context) ([]Stats, error)

	// ChannelStats returns the intensity range of channel c.
	ChannelStats(c int) (min, max int)

	// Read returns the pixels of region, at the resolution of tier.
	Read(ctx context.Context, tier pyramid.Tier, region pyramid.Region) (*Raster, error)
}

// OpenFunc opens an image file. Tiers of derived pyramids are made of
// tileSize tiles.
type OpenFunc func(data []byte, tileSize int) (Image, error)

type reader struct {
	name  string
	match func(data []byte) bool
	open  OpenFunc
}

var (
	readersMu sync.RWMutex
	readers   []reader
)

// Register adds a reader for the files match accepts.
func Register(name string, match func(data []byte) bool, open OpenFunc) {
	readersMu.Lock()
	defer readersMu.Unlock()
	readers = append(readers, reader{name, match, open})
}

// Readers lists the registered readers, the built-in one being last.
func Readers() []string {
	readersMu.RLock()
	defer readersMu.RUnlock()
	names := make([]string, 0, len(readers)+1)
	for _, r := range readers {
		names = append(names, r.name)
	}
	return append(names, "raster")
}

// Open decodes an image file with the first reader accepting it.
func Open(data []byte, tileSize int) (Image, error) {
	readersMu.RLock()
	rs := append([]reader(nil), readers...)
	readersMu.RUnlock()

	for _, r := range rs {
		if r.match(data) {
			return r.open(data, tileSize)
		}
	}
	return Decode(data, tileSize)
}

// VirtualPyramid returns the pyramid obtained by halving the image until it
// fits in a single tile.
func VirtualPyramid(width, height, tileSize int) (*pyramid.Pyramid, error) {
	p := pyramid.New()
	w, h := width, height
	for {
		if _, err := p.InsertTier(w, h, tileSize); err != nil {
			return nil, problem.BadRequest("Invalid image geometry: %v", err)
		}
		if w <= tileSize && h <= tileSize {
			return p, nil
		}
		w, h = (w+1)/2, (h+1)/2
	}
}

// defaultStats are used when statistics cannot be computed.
func defaultStats(bits int) (int, int) {
	return 0, 1<<uint(bits) - 1
}
