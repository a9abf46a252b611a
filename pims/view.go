package pims

import (
	"bytes"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/mux"

	"github.com/cytomine/pims/colormap"
	"github.com/cytomine/pims/params"
	"github.com/cytomine/pims/problem"
)

// InfoHandler responds with the image technical properties.
func InfoHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	fp := mux.Vars(r)["filepath"]

	img, err := openImage(ctx, fp)
	if err != nil {
		writeError(w, err)
		return
	}

	stats, err := img.Stats(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	channels := make([]ChannelInfo, len(stats))
	for c, s := range stats {
		channels[c] = ChannelInfo{c, s}
	}

	info := ImageInfo{
		Filepath:        fp,
		Format:          img.Format(),
		Width:           img.Width(),
		Height:          img.Height(),
		Depth:           img.NZSlices(),
		Duration:        img.NTimepoints(),
		NChannels:       img.NChannels(),
		SignificantBits: img.SignificantBits(),
		NPlanes:         img.NChannels() * img.NZSlices() * img.NTimepoints(),
		Channels:        channels,
		Pyramid:         newPyramidInfo(img.Pyramid()),
	}
	serveJSON(w, r, fp, info)
}

// PyramidHandler responds with the image tiers.
func PyramidHandler(w http.ResponseWriter, r *http.Request) {
	fp := mux.Vars(r)["filepath"]

	img, err := openImage(r.Context(), fp)
	if err != nil {
		writeError(w, err)
		return
	}
	serveJSON(w, r, fp, newPyramidInfo(img.Pyramid()))
}

// ColormapsHandler lists the registered colormaps.
func ColormapsHandler(w http.ResponseWriter, r *http.Request) {
	registry := colormapsFrom(r.Context())
	colormaps := registry.List()

	items := make([]ColormapInfo, len(colormaps))
	for i, cm := range colormaps {
		items[i] = newColormapInfo(cm)
	}
	writeJSON(w, CollectionResponse{items, len(items)})
}

// ColormapHandler describes one colormap. Hexadecimal colors are accepted
// and registered on first use.
func ColormapHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := url.PathUnescape(mux.Vars(r)["colormap_id"])
	if err != nil {
		writeError(w, problem.BadRequest("%#v is not a valid colormap id", mux.Vars(r)["colormap_id"]))
		return
	}

	cm, err := params.ParseColormapID(id, colormapsFrom(ctx), configFrom(ctx).DefaultColor)
	if err == nil && cm == nil {
		err = problem.ColormapNotFound(id)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, newColormapInfo(cm))
}

func newColormapInfo(cm *colormap.Colormap) ColormapInfo {
	return ColormapInfo{
		ID:       cm.ID,
		Name:     cm.Name,
		Type:     string(cm.Type),
		Inverted: cm.Inverted,
	}
}

// serveJSON responds with v as a cacheable document about the file fp.
func serveJSON(w http.ResponseWriter, r *http.Request, fp string, v interface{}) {
	buffer, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		writeError(w, err)
		return
	}

	modTime, err := sourceFrom(r.Context()).Stat(fp)
	if err != nil {
		modTime = time.Time{}
	}

	header := w.Header()
	header.Set("Content-Type", "application/json")
	setCacheHeaders(w, r, modTime)
	http.ServeContent(w, r, "", modTime, bytes.NewReader(buffer))
}

// setCacheHeaders sets the validators of a response about a file last
// modified at modTime.
func setCacheHeaders(w http.ResponseWriter, r *http.Request, modTime time.Time) {
	c := configFrom(r.Context())
	header := w.Header()
	header.Set("ETag", getETag(fmt.Sprintf("%s@%d", r.URL.String(), modTime.UnixNano())))
	header.Set("Cache-Control", fmt.Sprintf("max-age=%v, public", c.Cache.HTTP))
}

func getETag(str string) string {
	return fmt.Sprintf("\"%x\"", sha1.Sum([]byte(str)))
}
