package pims

import (
	"context"
	"net/http"

	"github.com/cytomine/pims/cache"
	"github.com/cytomine/pims/colormap"
	"github.com/cytomine/pims/config"
	"github.com/cytomine/pims/source"
)

// ContextKey is the key of the values set by the middlewares.
type ContextKey string

func withValue(h http.Handler, key ContextKey, value interface{}) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), key, value)
		h.ServeHTTP(w, r.WithContext(ctx))
	})
}

// WithCaches sets the various caches.
func WithCaches(h http.Handler, caches map[string]cache.Cache) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		for k, v := range caches {
			ctx = context.WithValue(ctx, ContextKey(k), v)
		}
		h.ServeHTTP(w, r.WithContext(ctx))
	})
}

// WithConfig sets the server configuration.
func WithConfig(h http.Handler, c *config.Config) http.Handler {
	return withValue(h, ContextKey("config"), c)
}

// WithSource sets where image files are read from.
func WithSource(h http.Handler, src source.Source) http.Handler {
	return withValue(h, ContextKey("source"), src)
}

// WithColormaps sets the colormap registry.
func WithColormaps(h http.Handler, registry *colormap.Registry) http.Handler {
	return withValue(h, ContextKey("colormaps"), registry)
}

// WithImageCache sets the cache of decoded images.
func WithImageCache(h http.Handler, ic *ImageCache) http.Handler {
	return withValue(h, ContextKey("images"), ic)
}

func configFrom(ctx context.Context) *config.Config {
	c, ok := ctx.Value(ContextKey("config")).(*config.Config)
	if !ok {
		return config.Default()
	}
	return c
}

func sourceFrom(ctx context.Context) source.Source {
	src, _ := ctx.Value(ContextKey("source")).(source.Source)
	return src
}

func colormapsFrom(ctx context.Context) *colormap.Registry {
	registry, _ := ctx.Value(ContextKey("colormaps")).(*colormap.Registry)
	return registry
}

func imageCacheFrom(ctx context.Context) *ImageCache {
	ic, _ := ctx.Value(ContextKey("images")).(*ImageCache)
	return ic
}

func cacheFrom(ctx context.Context, name string) cache.Cache {
	c, _ := ctx.Value(ContextKey(name)).(cache.Cache)
	return c
}
