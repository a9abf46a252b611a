// Package cache memoizes byte payloads, such as source files and rendered
// responses, in groupcache groups shared with peer servers.
package cache

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/golang/groupcache"

	"github.com/cytomine/pims/logger"
)

// Loader produces the value of a key on a cache miss.
type Loader func(ctx context.Context, key string) ([]byte, error)

// Cache returns the value of a key, loading it when missing.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
}

// NewCacheFromConfig returns a groupcache backed cache of the given size, or
// a pass-through cache when size is not positive.
func NewCacheFromConfig(name string, size int64, load Loader) (Cache, error) {
	if size <= 0 {
		logger.Debugf("Cache %s is disabled", name)
		return NullCache{load}, nil
	}
	return NewGroupCache(name, size, load)
}

// NullCache calls its loader on every Get.
type NullCache struct {
	load Loader
}

// Get loads the value.
func (nc NullCache) Get(ctx context.Context, key string) ([]byte, error) {
	return nc.load(ctx, key)
}

// GroupCache stores values in a groupcache group.
type GroupCache struct {
	group *groupcache.Group
}

// NewGroupCache creates the named group. Group names are unique in a
// process.
func NewGroupCache(name string, size int64, load Loader) (*GroupCache, error) {
	if groupcache.GetGroup(name) != nil {
		return nil, fmt.Errorf("cache group %s already exists", name)
	}

	logger.Infof("Initializing cache %s with %s", name, humanize.IBytes(uint64(size)))
	group := groupcache.NewGroup(name, size, groupcache.GetterFunc(
		func(ctx context.Context, key string, dest groupcache.Sink) error {
			data, err := load(ctx, key)
			if err != nil {
				return err
			}
			logger.Debugf("Caching %s in %s (%s)", key, name, humanize.IBytes(uint64(len(data))))
			return dest.SetBytes(data)
		},
	))
	return &GroupCache{group}, nil
}

// Get returns the value from the group, loading it on a miss.
func (gc *GroupCache) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := gc.group.Get(ctx, key, groupcache.AllocatingByteSliceSink(&data))
	return data, err
}

// Stats returns the main cache statistics.
func (gc *GroupCache) Stats() groupcache.CacheStats {
	return gc.group.CacheStats(groupcache.MainCache)
}

// SetPeers registers this server and its peers in the groupcache HTTP pool.
// It may only be called once per process.
func SetPeers(self string, peers ...string) *groupcache.HTTPPool {
	all := append([]string{self}, peers...)
	pool := groupcache.NewHTTPPool(self)
	pool.Set(all...)
	logger.Infof("Cache peers: %v", all)
	return pool
}
