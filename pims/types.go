package pims

import (
	"github.com/cytomine/pims/format"
	"github.com/cytomine/pims/pyramid"
)

// ImageInfo contains the technical properties of an image.
type ImageInfo struct {
	Filepath        string        `json:"filepath"`
	Format          string        `json:"format"`
	Width           int           `json:"width"`
	Height          int           `json:"height"`
	Depth           int           `json:"depth"`
	Duration        int           `json:"duration"`
	NChannels       int           `json:"n_channels"`
	SignificantBits int           `json:"significant_bits"`
	NPlanes         int           `json:"n_planes"`
	Channels        []ChannelInfo `json:"channels"`
	Pyramid         PyramidInfo   `json:"pyramid"`
}

// ChannelInfo contains the statistics of a channel.
type ChannelInfo struct {
	Index int `json:"index"`
	format.Stats
}

// PyramidInfo contains the tiers of an image, base first.
type PyramidInfo struct {
	NTiers int        `json:"n_tiers"`
	Tiers  []TierInfo `json:"tiers"`
}

// TierInfo contains the geometry of a tier.
type TierInfo struct {
	Level      int        `json:"level"`
	Zoom       int        `json:"zoom"`
	Width      int        `json:"width"`
	Height     int        `json:"height"`
	TileWidth  int        `json:"tile_width"`
	TileHeight int        `json:"tile_height"`
	Downsample float64    `json:"downsample"`
	Factor     [2]float64 `json:"downsampling_factor"`
	NTiles     int        `json:"n_tiles"`
	NTx        int        `json:"n_tx"`
	NTy        int        `json:"n_ty"`
}

// ColormapInfo describes a colormap.
type ColormapInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Inverted bool   `json:"inverted"`
}

// CollectionResponse is a list of items.
type CollectionResponse struct {
	Items interface{} `json:"items"`
	Size  int         `json:"size"`
}

func newPyramidInfo(p *pyramid.Pyramid) PyramidInfo {
	tiers := make([]TierInfo, 0, p.NLevels())
	for _, t := range p.Tiers() {
		wf, hf := t.Factor()
		tiers = append(tiers, TierInfo{
			Level:      t.Level,
			Zoom:       t.Zoom,
			Width:      t.Width,
			Height:     t.Height,
			TileWidth:  t.TileSize,
			TileHeight: t.TileSize,
			Downsample: t.Downsample,
			Factor:     [2]float64{wf, hf},
			NTiles:     t.NTiles(),
			NTx:        t.NTilesX(),
			NTy:        t.NTilesY(),
		})
	}
	return PyramidInfo{len(tiers), tiers}
}
