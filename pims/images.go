package pims

import (
	"context"
	"fmt"
	"sync"

	"github.com/golang/groupcache/lru"
	"github.com/golang/groupcache/singleflight"

	"github.com/cytomine/pims/format"
	"github.com/cytomine/pims/logger"
)

const imageCacheEntries = 32

// ImageCache keeps the most recently opened images decoded.
type ImageCache struct {
	mu     sync.Mutex
	lru    *lru.Cache
	flight singleflight.Group
}

// NewImageCache returns a cache holding at most n images.
func NewImageCache(n int) *ImageCache {
	return &ImageCache{lru: lru.New(n)}
}

// openImage opens the image of a filepath, from the cache when it did not
// change since it was opened.
func openImage(ctx context.Context, fp string) (format.Image, error) {
	src := sourceFrom(ctx)
	c := configFrom(ctx)

	modTime, err := src.Stat(fp)
	if err != nil {
		return nil, err
	}

	open := func() (format.Image, error) {
		file, err := src.Read(ctx, fp)
		if err != nil {
			return nil, err
		}
		return format.Open(file.Data, c.DefaultTileSize)
	}

	ic := imageCacheFrom(ctx)
	if ic == nil {
		return open()
	}

	key := fmt.Sprintf("%s@%d", fp, modTime.UnixNano())
	ic.mu.Lock()
	if img, ok := ic.lru.Get(key); ok {
		ic.mu.Unlock()
		return img.(format.Image), nil
	}
	ic.mu.Unlock()

	img, err := ic.flight.Do(key, func() (interface{}, error) {
		img, err := open()
		if err != nil {
			return nil, err
		}
		logger.Debugf("Opened %s as %s", fp, img.Format())
		ic.mu.Lock()
		ic.lru.Add(key, img)
		ic.mu.Unlock()
		return img, nil
	})
	if err != nil {
		return nil, err
	}
	return img.(format.Image), nil
}
