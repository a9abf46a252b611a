package params

import (
	"strings"

	"github.com/cytomine/pims/problem"
	"github.com/cytomine/pims/pyramid"
)

var (
	levelError     = "Level tier %d does not exist. Valid levels: [0, %d]"
	zoomError      = "Zoom tier %d does not exist. Valid zooms: [0, %d]"
	tileIndexError = "Tile index %d is invalid for %s tier %d. Valid tile indexes: [0, %d]"
	tileCoordError = "Tile coordinate %s=%d is invalid for %s tier %d. Valid values: [0, %d]"
	tierTypeError  = "%#v is not a valid tier type (LEVEL or ZOOM)"
)

// TierIndexType tells how a tier index has to be read.
type TierIndexType string

// Tier index types.
const (
	Level TierIndexType = "LEVEL"
	Zoom  TierIndexType = "ZOOM"
)

// ParseTierIndexType reads a tier index type, LEVEL being the default.
func ParseTierIndexType(s string) (TierIndexType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", string(Level):
		return Level, nil
	case string(Zoom):
		return Zoom, nil
	}
	return "", problem.BadRequest(tierTypeError, s)
}

func (t TierIndexType) name() string {
	return strings.ToLower(string(t))
}

// CheckLevelValidity checks that the level exists. A nil level is always
// valid.
func CheckLevelValidity(p *pyramid.Pyramid, level *int) error {
	if level != nil && (*level < 0 || *level > p.MaxLevel()) {
		return problem.OutOfBounds(levelError, *level, p.MaxLevel())
	}
	return nil
}

// CheckZoomValidity checks that the zoom exists. A nil zoom is always valid.
func CheckZoomValidity(p *pyramid.Pyramid, zoom *int) error {
	if zoom != nil && (*zoom < 0 || *zoom > p.MaxZoom()) {
		return problem.OutOfBounds(zoomError, *zoom, p.MaxZoom())
	}
	return nil
}

// GetTier validates the tier index and returns the tier it designates.
func GetTier(p *pyramid.Pyramid, tierIdx int, tierType TierIndexType) (pyramid.Tier, error) {
	if tierType == Zoom {
		if err := CheckZoomValidity(p, &tierIdx); err != nil {
			return pyramid.Tier{}, err
		}
		return p.TierAtZoom(tierIdx)
	}

	if err := CheckLevelValidity(p, &tierIdx); err != nil {
		return pyramid.Tier{}, err
	}
	return p.TierAtLevel(tierIdx)
}

// CheckTileIndexValidity checks that the tile index exists in the tier.
func CheckTileIndexValidity(p *pyramid.Pyramid, ti, tierIdx int, tierType TierIndexType) (pyramid.Tier, error) {
	tier, err := GetTier(p, tierIdx, tierType)
	if err != nil {
		return tier, err
	}

	if ti < 0 || ti >= tier.NTiles() {
		return tier, problem.OutOfBounds(tileIndexError, ti, tierType.name(), tierIdx, tier.NTiles()-1)
	}
	return tier, nil
}

// CheckTileCoordValidity checks that the tile coordinate exists in the tier.
func CheckTileCoordValidity(p *pyramid.Pyramid, tx, ty, tierIdx int, tierType TierIndexType) (pyramid.Tier, error) {
	tier, err := GetTier(p, tierIdx, tierType)
	if err != nil {
		return tier, err
	}

	if tx < 0 || tx >= tier.NTilesX() {
		return tier, problem.OutOfBounds(tileCoordError, "tx", tx, tierType.name(), tierIdx, tier.NTilesX()-1)
	}
	if ty < 0 || ty >= tier.NTilesY() {
		return tier, problem.OutOfBounds(tileCoordError, "ty", ty, tierType.name(), tierIdx, tier.NTilesY()-1)
	}
	return tier, nil
}
