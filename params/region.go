package params

import (
	"github.com/cytomine/pims/problem"
	"github.com/cytomine/pims/pyramid"
)

var (
	regionOutOfBoundsError = "Some parts of the region are out of bounds (image in tier is %dx%d): %v"
	regionEmptyError       = "The region is empty: %v"
)

// ParseRegion resolves a region requested against the tier designated by
// tierIdx. Fractions are read against the tier dimensions. The returned
// region is expressed in the tier pixel grid and carries the tier
// downsample. When silentOOB is set the region is clipped to the tier,
// otherwise a region overflowing the tier is an error.
func ParseRegion(p *pyramid.Pyramid, top, left, width, height Measure,
	tierIdx int, tierType TierIndexType, silentOOB bool) (pyramid.Region, error) {

	tier, err := GetTier(p, tierIdx, tierType)
	if err != nil {
		return pyramid.Region{}, err
	}

	region := pyramid.Region{
		Top:        top.Resolve(tier.Height),
		Left:       left.Resolve(tier.Width),
		Width:      width.Resolve(tier.Width),
		Height:     height.Resolve(tier.Height),
		Downsample: tier.Downsample,
	}

	if silentOOB {
		region = region.ClipTo(tier)
	} else if !region.Inside(tier) {
		return pyramid.Region{}, problem.OutOfBounds(regionOutOfBoundsError, tier.Width, tier.Height, region)
	}

	if region.Width <= 0 || region.Height <= 0 {
		return pyramid.Region{}, problem.BadRequest(regionEmptyError, region)
	}
	return region, nil
}
