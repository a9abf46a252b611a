// Package pims serves image metadata, thumbnails, windows and tiles over
// HTTP.
package pims

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/klauspost/compress/gzhttp"
	"github.com/rs/cors"

	"github.com/cytomine/pims/cache"
	"github.com/cytomine/pims/colormap"
	"github.com/cytomine/pims/config"
	"github.com/cytomine/pims/source"
)

const filepathPattern = "/image/{filepath:.+}"

// MakeRouter constructs the basic router (no middlewares).
func MakeRouter() *mux.Router {
	router := mux.NewRouter()
	router.UseEncodedPath()

	get := func(path string, h http.HandlerFunc) {
		router.HandleFunc(path, h).Methods(http.MethodGet, http.MethodHead)
	}

	get(filepathPattern+"/info", InfoHandler)
	get(filepathPattern+"/pyramid", PyramidHandler)
	get(filepathPattern+"/thumb", ThumbHandler)
	get(filepathPattern+"/resized", ResizedHandler)
	get(filepathPattern+"/window", WindowHandler)
	get(filepathPattern+"/tile/{tier_type:level|zoom}/{tier:[0-9]+}/ti/{ti:[0-9]+}", TileHandler)
	get(filepathPattern+"/tile/{tier_type:level|zoom}/{tier:[0-9]+}/tx/{tx:[0-9]+}/ty/{ty:[0-9]+}", TileHandler)
	get("/colormaps", ColormapsHandler)
	get("/colormaps/{colormap_id}", ColormapHandler)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, notFound(r.URL.Path))
	})
	return router
}

// NewHandler wires the router with its dependencies, CORS and compression.
func NewHandler(c *config.Config, src source.Source, registry *colormap.Registry, responses cache.Cache) http.Handler {
	var h http.Handler = MakeRouter()
	h = WithCaches(h, map[string]cache.Cache{
		"responses": responses,
	})
	h = WithImageCache(h, NewImageCache(imageCacheEntries))
	h = WithColormaps(h, registry)
	h = WithSource(h, src)
	h = WithConfig(h, c)

	h = cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"ETag", "Content-Disposition", headerSafety},
	}).Handler(h)
	return gzhttp.GzipHandler(h)
}
