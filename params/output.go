package params

import (
	"math"
	"strings"

	"github.com/cytomine/pims/problem"
	"github.com/cytomine/pims/pyramid"
)

var (
	outputSizeError = "At least one of width, height or length is required"
	safeModeError   = "%#v is not a valid safe mode (UNSAFE, SAFE_RESIZE or SAFE_REJECT)"
	dimensionError  = "Output dimension %v is not positive"
)

// Dimensions is anything with a width and a height, in pixels.
type Dimensions interface {
	Width() int
	Height() int
}

// SafeMode is the policy applied when the output exceeds the size limit.
type SafeMode string

// Safe modes.
const (
	Unsafe     SafeMode = "UNSAFE"
	SafeResize SafeMode = "SAFE_RESIZE"
	SafeReject SafeMode = "SAFE_REJECT"
)

// ParseSafeMode reads a safe mode, case insensitive.
func ParseSafeMode(s string) (SafeMode, error) {
	mode := SafeMode(strings.ToUpper(strings.TrimSpace(s)))
	switch mode {
	case Unsafe, SafeResize, SafeReject:
		return mode, nil
	}
	return "", problem.BadRequest(safeModeError, s)
}

// maxDimension is the largest integer a float64 holds exactly.
const maxDimension = 1 << 53

// round rounds half to even. Values beyond maxDimension saturate and NaN
// gives 0.
func round(v float64) int {
	switch {
	case math.IsNaN(v):
		return 0
	case v >= maxDimension:
		return maxDimension
	case v <= -maxDimension:
		return -maxDimension
	}
	return int(math.RoundToEven(v))
}

// GetRationedResizing resizes length to resized and scales otherLength by
// the same ratio. A relative resized is a ratio applied to both.
func GetRationedResizing(resized Measure, length, otherLength int) (int, int) {
	var ratio, value float64
	if resized.Relative {
		ratio = resized.Value
		value = ratio * float64(length)
	} else {
		value = resized.Value
		ratio = value / float64(length)
	}
	return round(value), round(ratio * float64(otherLength))
}

// GetThumbOutputDimensions computes the output size of a whole image
// thumbnail. length applies to the longest side; an explicit width
// overrides it and an explicit height overrides both.
func GetThumbOutputDimensions(img Dimensions, width, height, length *Measure) (int, int, error) {
	return outputDimensions(img.Width(), img.Height(), width, height, length)
}

// GetWindowOutputDimensions is GetThumbOutputDimensions for a region.
func GetWindowOutputDimensions(region pyramid.Region, width, height, length *Measure) (int, int, error) {
	return outputDimensions(round(region.Width), round(region.Height), width, height, length)
}

func outputDimensions(refWidth, refHeight int, width, height, length *Measure) (int, int, error) {
	if width == nil && height == nil && length == nil {
		return 0, 0, problem.BadRequest(outputSizeError)
	}

	var outWidth, outHeight int
	if length != nil {
		if refWidth > refHeight {
			outWidth, outHeight = GetRationedResizing(*length, refWidth, refHeight)
		} else {
			outHeight, outWidth = GetRationedResizing(*length, refHeight, refWidth)
		}
	}
	if width != nil {
		outWidth, outHeight = GetRationedResizing(*width, refWidth, refHeight)
	}
	if height != nil {
		outHeight, outWidth = GetRationedResizing(*height, refHeight, refWidth)
	}

	if outWidth <= 0 || outHeight <= 0 {
		return 0, 0, problem.BadRequest(dimensionError, [2]int{outWidth, outHeight})
	}
	return outWidth, outHeight, nil
}

// SafeguardOutputDimensions applies the safe mode when the longest side of
// the output exceeds maxSize. SafeResize scales the output down so that its
// longest side is maxSize, rounding the other side down.
func SafeguardOutputDimensions(mode SafeMode, maxSize, width, height int) (int, int, error) {
	if mode == Unsafe || (width <= maxSize && height <= maxSize) {
		return width, height, nil
	}

	if mode == SafeReject {
		return 0, 0, problem.TooLargeOutput(width, height, maxSize)
	}

	if width > height {
		return maxSize, scaleDown(height, maxSize, width), nil
	}
	return scaleDown(width, maxSize, height), maxSize, nil
}

// scaleDown returns floor(v*num/den), at least 1, without overflowing int.
func scaleDown(v, num, den int) int {
	return max(1, int(math.Floor(float64(v)*float64(num)/float64(den))))
}
