// Package pyramid models multi-resolution image pyramids and the regions
// requested against them.
//
// Two addressing schemes coexist. The level index is the position in the
// tier sequence, 0 being the full resolution. The zoom index is the
// inverse, 0 being the most zoomed-out tier:
//
//	zoom = NLevels() - 1 - level
package pyramid

import (
	"fmt"
	"math"

	"github.com/cytomine/pims/problem"
)

// Pyramid is an ordered sequence of tiers, largest first. It is populated
// once when the image metadata is discovered and only read afterwards.
type Pyramid struct {
	tiers []Tier
}

// New returns an empty pyramid.
func New() *Pyramid {
	return &Pyramid{}
}

// InsertTier adds a tier and returns it. Tiers are kept sorted by
// decreasing number of pixels whatever the insertion order, so that the
// level index and the downsample factors always refer to the largest tier.
func (p *Pyramid) InsertTier(width, height, tileSize int) (Tier, error) {
	if width <= 0 || height <= 0 || tileSize <= 0 {
		return Tier{}, fmt.Errorf("invalid tier %dx%d with tile size %d", width, height, tileSize)
	}

	tier := Tier{Width: width, Height: height, TileSize: tileSize}

	pos := len(p.tiers)
	for i, t := range p.tiers {
		if t.NPixels() < tier.NPixels() {
			pos = i
			break
		}
	}

	p.tiers = append(p.tiers, Tier{})
	copy(p.tiers[pos+1:], p.tiers[pos:])
	p.tiers[pos] = tier
	p.reindex()

	return p.tiers[pos], nil
}

func (p *Pyramid) reindex() {
	base := p.tiers[0]
	n := len(p.tiers)
	for i := range p.tiers {
		t := &p.tiers[i]
		t.Level = i
		t.Zoom = n - 1 - i
		t.WidthFactor = float64(base.Width) / float64(t.Width)
		t.HeightFactor = float64(base.Height) / float64(t.Height)
		t.Downsample = t.WidthFactor
	}
}

// NLevels is the number of tiers.
func (p *Pyramid) NLevels() int {
	return len(p.tiers)
}

// MaxLevel is the level index of the smallest tier.
func (p *Pyramid) MaxLevel() int {
	return len(p.tiers) - 1
}

// NZooms is the number of zoom indexes, equal to NLevels.
func (p *Pyramid) NZooms() int {
	return len(p.tiers)
}

// MaxZoom is the zoom index of the largest tier.
func (p *Pyramid) MaxZoom() int {
	return len(p.tiers) - 1
}

// Base is the full resolution tier.
func (p *Pyramid) Base() Tier {
	return p.tiers[0]
}

// Tiers returns a copy of the tiers, largest first.
func (p *Pyramid) Tiers() []Tier {
	tiers := make([]Tier, len(p.tiers))
	copy(tiers, p.tiers)
	return tiers
}

// TierAtLevel returns the tier at the given level index.
func (p *Pyramid) TierAtLevel(level int) (Tier, error) {
	if level < 0 || level >= len(p.tiers) {
		return Tier{}, problem.OutOfBounds("Level tier %d does not exist. Valid levels: [0, %d]", level, p.MaxLevel())
	}
	return p.tiers[level], nil
}

// TierAtZoom returns the tier at the given zoom index.
func (p *Pyramid) TierAtZoom(zoom int) (Tier, error) {
	if zoom < 0 || zoom >= len(p.tiers) {
		return Tier{}, problem.OutOfBounds("Zoom tier %d does not exist. Valid zooms: [0, %d]", zoom, p.MaxZoom())
	}
	return p.tiers[p.MaxLevel()-zoom], nil
}

// MostAppropriateTierForDownsample returns the sharpest tier whose
// downsample does not exceed the target. When no tier qualifies, the
// coarsest tier is returned.
func (p *Pyramid) MostAppropriateTierForDownsample(downsample float64) Tier {
	best := -1
	for i, t := range p.tiers {
		if t.Downsample <= downsample && (best < 0 || t.Downsample > p.tiers[best].Downsample) {
			best = i
		}
	}
	if best < 0 {
		return p.coarsest()
	}
	return p.tiers[best]
}

func (p *Pyramid) coarsest() Tier {
	best := 0
	for i, t := range p.tiers {
		if t.Downsample >= p.tiers[best].Downsample {
			best = i
		}
	}
	return p.tiers[best]
}

// MostAppropriateTier returns the tier to read from in order to produce an
// output of outWidth x outHeight pixels out of region. Upscaling requests
// read from the base tier.
func (p *Pyramid) MostAppropriateTier(region Region, outWidth, outHeight int) Tier {
	base := region.ScaleTo(1)
	downsample := math.Min(base.Width/float64(outWidth), base.Height/float64(outHeight))
	if downsample < 1 {
		downsample = 1
	}
	return p.MostAppropriateTierForDownsample(downsample)
}
