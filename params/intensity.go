package params

import (
	"strconv"
	"strings"

	"github.com/cytomine/pims/problem"
)

var intensityError = "%#v is not a valid intensity (integer, AUTO_IMAGE or STRETCH_IMAGE)"

// ChannelImage gives the bit depth and the observed intensity range of each
// channel of an image.
type ChannelImage interface {
	SignificantBits() int
	ChannelStats(c int) (min, max int)
}

// BoundKind tells how an intensity bound is computed.
type BoundKind int

// Bound kinds.
const (
	DefaultBound BoundKind = iota
	LiteralBound
	AutoImageBound
	StretchImageBound
)

// IntensityBound is a literal intensity or an intensity selection policy.
type IntensityBound struct {
	Kind  BoundKind
	Value int
}

// Policies.
var (
	AutoImage    = IntensityBound{Kind: AutoImageBound}
	StretchImage = IntensityBound{Kind: StretchImageBound}
)

// Intensity returns a literal bound.
func Intensity(v int) IntensityBound {
	return IntensityBound{Kind: LiteralBound, Value: v}
}

// ParseIntensityBound reads an integer, AUTO_IMAGE or STRETCH_IMAGE.
func ParseIntensityBound(s string) (IntensityBound, error) {
	s = strings.TrimSpace(s)
	switch strings.ToUpper(s) {
	case "AUTO_IMAGE":
		return AutoImage, nil
	case "STRETCH_IMAGE":
		return StretchImage, nil
	}

	v, err := strconv.Atoi(s)
	if err != nil {
		return IntensityBound{}, problem.BadRequest(intensityError, s)
	}
	return Intensity(v), nil
}

// ParseIntensityBounds resolves the minimum and maximum display intensity
// of every output channel.
//
// A bound list with a single entry applies to every channel; missing
// entries take the bit depth default (0 for the minimum, 2^bits-1 for the
// maximum). Literals are clamped to the bit depth range. STRETCH_IMAGE uses
// the observed channel range. AUTO_IMAGE uses the bit depth range for 8-bit
// images and behaves like STRETCH_IMAGE for deeper images.
func ParseIntensityBounds(img ChannelImage, channels, zSlices, timepoints []int,
	mins, maxs []IntensityBound) ([]int, []int, error) {

	bits := img.SignificantBits()
	maxAllowed := 1<<uint(bits) - 1

	resolve := func(c int, bound IntensityBound, def int, minimum bool) int {
		var v int
		switch bound.Kind {
		case LiteralBound:
			v = bound.Value
		case AutoImageBound:
			if bits <= 8 {
				return def
			}
			v = stat(img, c, minimum)
		case StretchImageBound:
			v = stat(img, c, minimum)
		default:
			return def
		}
		return clamp(v, 0, maxAllowed)
	}

	outMins := make([]int, len(channels))
	outMaxs := make([]int, len(channels))
	for i, c := range channels {
		outMins[i] = resolve(c, boundAt(mins, i), 0, true)
		outMaxs[i] = resolve(c, boundAt(maxs, i), maxAllowed, false)
	}
	return outMins, outMaxs, nil
}

func boundAt(bounds []IntensityBound, i int) IntensityBound {
	switch {
	case len(bounds) == 1:
		return bounds[0]
	case i < len(bounds):
		return bounds[i]
	}
	return IntensityBound{}
}

func stat(img ChannelImage, c int, minimum bool) int {
	lo, hi := img.ChannelStats(c)
	if minimum {
		return lo
	}
	return hi
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
