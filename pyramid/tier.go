package pyramid

import (
	"fmt"
)

// Tier is one resolution level of a pyramid. Tiers are values handed out
// by a Pyramid; Level, Zoom and the factors are set by the pyramid at
// insertion time.
type Tier struct {
	Level    int
	Zoom     int
	Width    int
	Height   int
	TileSize int

	// Downsample is the ratio of the base tier width to this tier width.
	Downsample   float64
	WidthFactor  float64
	HeightFactor float64
}

// NPixels is the number of pixels in the tier.
func (t Tier) NPixels() int {
	return t.Width * t.Height
}

// Factor returns the width and height downsampling factors.
func (t Tier) Factor() (float64, float64) {
	return t.WidthFactor, t.HeightFactor
}

// NTilesX is the number of tile columns.
func (t Tier) NTilesX() int {
	return ceilDiv(t.Width, t.TileSize)
}

// NTilesY is the number of tile rows.
func (t Tier) NTilesY() int {
	return ceilDiv(t.Height, t.TileSize)
}

// NTiles is the number of tiles in the tier grid.
func (t Tier) NTiles() int {
	return t.NTilesX() * t.NTilesY()
}

// TxTyToTi converts a tile coordinate to a row-major tile index.
func (t Tier) TxTyToTi(tx, ty int) int {
	return ty*t.NTilesX() + tx
}

// TiToTxTy converts a row-major tile index to a tile coordinate.
func (t Tier) TiToTxTy(ti int) (int, int) {
	ntx := t.NTilesX()
	return ti % ntx, ti / ntx
}

// TxTyTile returns the region covered by the tile (tx, ty), in tier pixels.
// Tiles on the right and bottom edges may be smaller than the tile size.
func (t Tier) TxTyTile(tx, ty int) Region {
	left := tx * t.TileSize
	top := ty * t.TileSize
	return Region{
		Top:        float64(top),
		Left:       float64(left),
		Width:      float64(min(t.TileSize, t.Width-left)),
		Height:     float64(min(t.TileSize, t.Height-top)),
		Downsample: t.Downsample,
	}
}

// TiTile returns the region covered by the tile index ti, in tier pixels.
func (t Tier) TiTile(ti int) Region {
	return t.TxTyTile(t.TiToTxTy(ti))
}

func (t Tier) String() string {
	return fmt.Sprintf("tier(level=%d, zoom=%d, %dx%d, tile=%d, downsample=%v)",
		t.Level, t.Zoom, t.Width, t.Height, t.TileSize, t.Downsample)
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
