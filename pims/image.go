package pims

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/cytomine/pims/colormap"
	"github.com/cytomine/pims/format"
	"github.com/cytomine/pims/logger"
	"github.com/cytomine/pims/params"
	"github.com/cytomine/pims/problem"
	"github.com/cytomine/pims/pyramid"
	"github.com/cytomine/pims/render"
)

const headerSafety = "X-Image-Size-Safety"

// channelColors are the default colors of the channels of RGB images.
var channelColors = []string{"#ff0000", "#00ff00", "#0000ff"}

var errNoRenderer = errors.New("response cannot be rendered on this peer")

// renderFunc produces an encoded response.
type renderFunc func(ctx context.Context) ([]byte, error)

// ResponseLoader is the loader of the responses cache. The renderer of the
// requested response travels in the context.
func ResponseLoader(ctx context.Context, key string) ([]byte, error) {
	fn, ok := ctx.Value(ContextKey("render")).(renderFunc)
	if !ok {
		return nil, errNoRenderer
	}
	logger.Debugf("Rendering %s", key)
	return fn(ctx)
}

// plan is a fully validated image request.
type plan struct {
	filepath string
	img      format.Image
	tier     pyramid.Tier
	region   pyramid.Region
	mimetype params.Mimetype
	options  render.Options
}

// ThumbHandler responds with a thumbnail of the whole image. Without any
// size, the longest side is the default tile size.
func ThumbHandler(w http.ResponseWriter, r *http.Request) {
	serveImage(w, r, func(ctx context.Context, img format.Image, q *imageQuery) (*plan, error) {
		if q.Width == "" && q.Height == "" && q.Length == "" {
			q.Length = strconv.Itoa(configFrom(ctx).DefaultTileSize)
		}
		return wholeImagePlan(ctx, img, q)
	})
}

// ResizedHandler responds with the whole image at the requested size.
func ResizedHandler(w http.ResponseWriter, r *http.Request) {
	serveImage(w, r, func(ctx context.Context, img format.Image, q *imageQuery) (*plan, error) {
		return wholeImagePlan(ctx, img, q)
	})
}

// WindowHandler responds with a region of the image. The region is read
// against the requested tier and defaults to the whole tier.
func WindowHandler(w http.ResponseWriter, r *http.Request) {
	var wq windowQuery
	if err := decodeQuery(r.URL.Query(), &wq); err != nil {
		writeError(w, err)
		return
	}

	serveImage(w, r, func(ctx context.Context, img format.Image, q *imageQuery) (*plan, error) {
		p := img.Pyramid()

		tierType, err := params.ParseTierIndexType(wq.TierType)
		if err != nil {
			return nil, err
		}
		tierIdx := 0
		if wq.Tier != nil {
			tierIdx = *wq.Tier
		}
		silentOOB, err := boolean(wq.SilentOOB)
		if err != nil {
			return nil, err
		}

		var top, left, width, height params.Measure
		for _, m := range []struct {
			s   string
			dst *params.Measure
			def params.Measure
		}{
			{wq.Top, &top, params.Absolute(0)},
			{wq.Left, &left, params.Absolute(0)},
			{wq.RegionWidth, &width, params.Relative(1)},
			{wq.RegionHeight, &height, params.Relative(1)},
		} {
			v, err := measure(m.s)
			if err != nil {
				return nil, err
			}
			if v == nil {
				*m.dst = m.def
			} else {
				*m.dst = *v
			}
		}

		region, err := params.ParseRegion(p, top, left, width, height, tierIdx, tierType, silentOOB)
		if err != nil {
			return nil, err
		}

		ow, oh, ol, err := outputMeasures(q)
		if err != nil {
			return nil, err
		}
		var outWidth, outHeight int
		if ow == nil && oh == nil && ol == nil {
			outWidth = max(1, int(math.Round(region.Width)))
			outHeight = max(1, int(math.Round(region.Height)))
		} else {
			outWidth, outHeight, err = params.GetWindowOutputDimensions(region, ow, oh, ol)
			if err != nil {
				return nil, err
			}
		}

		supported := append(append([]params.Mimetype{}, params.VisualisationMimetypes...), params.ProcessingMimetypes...)
		return newPlan(ctx, img, q, region, outWidth, outHeight, supported)
	})
}

// TileHandler responds with a tile designated by its index or its
// coordinates in a tier.
func TileHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	serveImage(w, r, func(ctx context.Context, img format.Image, q *imageQuery) (*plan, error) {
		p := img.Pyramid()

		tierType, err := params.ParseTierIndexType(vars["tier_type"])
		if err != nil {
			return nil, err
		}
		tierIdx, err := atoi(vars["tier"])
		if err != nil {
			return nil, err
		}

		var tier pyramid.Tier
		var region pyramid.Region
		if ti, ok := vars["ti"]; ok {
			idx, err := atoi(ti)
			if err != nil {
				return nil, err
			}
			if tier, err = params.CheckTileIndexValidity(p, idx, tierIdx, tierType); err != nil {
				return nil, err
			}
			region = tier.TiTile(idx)
		} else {
			tx, err := atoi(vars["tx"])
			if err != nil {
				return nil, err
			}
			ty, err := atoi(vars["ty"])
			if err != nil {
				return nil, err
			}
			if tier, err = params.CheckTileCoordValidity(p, tx, ty, tierIdx, tierType); err != nil {
				return nil, err
			}
			region = tier.TxTyTile(tx, ty)
		}

		pl, err := newPlan(ctx, img, q, region, int(region.Width), int(region.Height), params.VisualisationMimetypes)
		if err != nil {
			return nil, err
		}
		pl.tier = tier
		return pl, nil
	})
}

func wholeImagePlan(ctx context.Context, img format.Image, q *imageQuery) (*plan, error) {
	ow, oh, ol, err := outputMeasures(q)
	if err != nil {
		return nil, err
	}
	outWidth, outHeight, err := params.GetThumbOutputDimensions(img, ow, oh, ol)
	if err != nil {
		return nil, err
	}
	region := pyramid.NewRegion(0, 0, float64(img.Width()), float64(img.Height()))
	return newPlan(ctx, img, q, region, outWidth, outHeight, params.VisualisationMimetypes)
}

func outputMeasures(q *imageQuery) (*params.Measure, *params.Measure, *params.Measure, error) {
	width, err := measure(q.Width)
	if err != nil {
		return nil, nil, nil, err
	}
	height, err := measure(q.Height)
	if err != nil {
		return nil, nil, nil, err
	}
	length, err := measure(q.Length)
	if err != nil {
		return nil, nil, nil, err
	}
	return width, height, length, nil
}

// newPlan validates the output size, format, planes and styling of a
// request for region.
func newPlan(ctx context.Context, img format.Image, q *imageQuery, region pyramid.Region,
	outWidth, outHeight int, supported []params.Mimetype) (*plan, error) {

	c := configFrom(ctx)
	safeMode := c.DefaultSafeMode
	if s, ok := ctx.Value(ContextKey(headerSafety)).(string); ok && s != "" {
		mode, err := params.ParseSafeMode(s)
		if err != nil {
			return nil, err
		}
		safeMode = mode
	}
	outWidth, outHeight, err := params.SafeguardOutputDimensions(safeMode, c.OutputSizeLimit, outWidth, outHeight)
	if err != nil {
		return nil, err
	}

	ext, err := params.ParseOutputExtension(q.Format)
	if err != nil {
		return nil, err
	}
	accept, _ := ctx.Value(ContextKey("accept")).(string)
	mimetype, err := params.GetOutputFormat(ext, accept, supported)
	if err != nil {
		return nil, err
	}

	all := make([]int, img.NChannels())
	for i := range all {
		all[i] = i
	}
	channels, err := params.ParsePlanes(q.Channels, img.NChannels(), all, "channels")
	if err != nil {
		return nil, err
	}
	zSlices, err := params.ParsePlanes(q.ZSlices, img.NZSlices(), nil, "z_slices")
	if err != nil {
		return nil, err
	}
	if err := params.CheckReductionValidity(zSlices, q.ZReduction, "z_slices"); err != nil {
		return nil, err
	}
	timepoints, err := params.ParsePlanes(q.Timepoints, img.NTimepoints(), nil, "timepoints")
	if err != nil {
		return nil, err
	}
	if err := params.CheckReductionValidity(timepoints, q.TReduction, "timepoints"); err != nil {
		return nil, err
	}

	allowed := []int{1, len(channels)}
	for name, arr := range map[string][]string{
		"min_intensities": q.MinIntensities,
		"max_intensities": q.MaxIntensities,
		"colormaps":       q.Colormaps,
	} {
		if err := params.CheckArraySize(arr, allowed, true, name); err != nil {
			return nil, err
		}
	}

	mins, err := intensityBounds(q.MinIntensities)
	if err != nil {
		return nil, err
	}
	maxs, err := intensityBounds(q.MaxIntensities)
	if err != nil {
		return nil, err
	}
	minValues, maxValues, err := params.ParseIntensityBounds(img, channels, zSlices, timepoints, mins, maxs)
	if err != nil {
		return nil, err
	}

	gammas, err := params.ParseGammas(q.Gammas, len(channels))
	if err != nil {
		return nil, err
	}
	log, err := boolean(q.Log)
	if err != nil {
		return nil, err
	}
	colormaps, err := channelColormaps(ctx, img, channels, q.Colormaps)
	if err != nil {
		return nil, err
	}

	return &plan{
		img:      img,
		tier:     img.Pyramid().MostAppropriateTier(region, outWidth, outHeight),
		region:   region,
		mimetype: mimetype,
		options: render.Options{
			Channels:  channels,
			Mins:      minValues,
			Maxs:      maxValues,
			Gammas:    gammas,
			Log:       log,
			Colormaps: colormaps,
			Width:     outWidth,
			Height:    outHeight,
		},
	}, nil
}

// channelColormaps resolves one colormap per channel. Without any, a single
// channel is rendered in grey levels, the channels of RGB images in their
// color and other channels with the default color.
func channelColormaps(ctx context.Context, img format.Image, channels []int, ids []string) ([]*colormap.Colormap, error) {
	registry := colormapsFrom(ctx)
	defaultColor := configFrom(ctx).DefaultColor

	colormaps := make([]*colormap.Colormap, len(channels))
	if len(ids) == 0 {
		if len(channels) == 1 {
			return colormaps, nil
		}
		for i, c := range channels {
			id := params.ColormapDefault
			if img.NChannels() == len(channelColors) {
				id = channelColors[c]
			}
			cm, err := params.ParseColormapID(id, registry, defaultColor)
			if err != nil {
				return nil, err
			}
			colormaps[i] = cm
		}
		return colormaps, nil
	}

	for i := range channels {
		id := ids[0]
		if len(ids) > 1 {
			id = ids[i]
		}
		cm, err := params.ParseColormapID(id, registry, defaultColor)
		if err != nil {
			return nil, err
		}
		colormaps[i] = cm
	}
	return colormaps, nil
}

// serveImage validates a request with makePlan, then responds with the
// rendered image, from the responses cache when possible.
func serveImage(w http.ResponseWriter, r *http.Request, makePlan func(context.Context, format.Image, *imageQuery) (*plan, error)) {
	fp := mux.Vars(r)["filepath"]

	var q imageQuery
	if err := decodeQuery(r.URL.Query(), &q); err != nil {
		writeError(w, err)
		return
	}

	ctx := r.Context()
	ctx = context.WithValue(ctx, ContextKey("accept"), r.Header.Get("Accept"))
	ctx = context.WithValue(ctx, ContextKey(headerSafety), r.Header.Get(headerSafety))

	img, err := openImage(ctx, fp)
	if err != nil {
		writeError(w, err)
		return
	}
	pl, err := makePlan(ctx, img, &q)
	if err != nil {
		writeError(w, err)
		return
	}
	pl.filepath = fp

	modTime, err := sourceFrom(ctx).Stat(fp)
	if err != nil {
		writeError(w, err)
		return
	}

	var fn renderFunc = pl.render
	var buffer []byte
	if responses := cacheFrom(ctx, "responses"); responses != nil {
		key := fmt.Sprintf("%s %s@%d", pl.mimetype.Type, r.URL.String(), modTime.UnixNano())
		buffer, err = responses.Get(context.WithValue(ctx, ContextKey("render"), fn), key)
	} else {
		buffer, err = fn(ctx)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	name := path.Base(strings.TrimSuffix(fp, "/"))
	filename := fmt.Sprintf("%s-%s.%s", name, path.Base(r.URL.Path), pl.mimetype.Format)

	header := w.Header()
	header.Set("Content-Type", pl.mimetype.Type)
	header.Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", filename))
	setCacheHeaders(w, r, modTime)
	http.ServeContent(w, r, "", modTime, bytes.NewReader(buffer))
}

// render reads, renders and encodes the planned image.
func (pl *plan) render(ctx context.Context) ([]byte, error) {
	raster, err := pl.img.Read(ctx, pl.tier, pl.region)
	if err != nil {
		return nil, err
	}
	img, err := render.Render(ctx, raster, pl.options)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := render.Encode(&buf, img, pl.mimetype.Format); err != nil {
		return nil, err
	}
	logger.Debugf("Rendered %s %v from %v as %dx%d %s",
		pl.filepath, pl.region, pl.tier, pl.options.Width, pl.options.Height, pl.mimetype.Type)
	return buf.Bytes(), nil
}

func atoi(s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, problem.BadRequest("%#v is not an integer", s)
	}
	return v, nil
}
