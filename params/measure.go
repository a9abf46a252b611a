// Package params validates loosely typed extraction parameters against an
// image pyramid and resolves them into regions, output dimensions,
// intensity bounds and colormaps.
//
// Every function is pure apart from ParseColormapID, which may register a
// new hex colormap. Failures are *problem.Problem values.
package params

import (
	"math"
	"strconv"
	"strings"

	"github.com/cytomine/pims/problem"
)

var measureError = "%#v is not a valid number"

// Measure is either an absolute pixel value or a fraction of a reference
// dimension.
type Measure struct {
	Value    float64
	Relative bool
}

// Absolute returns an absolute measure, in pixels.
func Absolute(v float64) Measure {
	return Measure{Value: v}
}

// Relative returns a measure relative to a reference dimension.
func Relative(v float64) Measure {
	return Measure{Value: v, Relative: true}
}

// ParseMeasure reads a measure from its textual form. A value written as a
// decimal number (with a dot or an exponent) that is lower or equal to 1 is
// a fraction, anything else is absolute. "1" is one pixel while "1.0" is
// the whole dimension.
func ParseMeasure(s string) (Measure, error) {
	s = strings.TrimSpace(s)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return Measure{}, problem.BadRequest(measureError, s)
	}

	if strings.ContainsAny(s, ".eE") && v <= 1 {
		return Relative(v), nil
	}
	return Absolute(v), nil
}

// Resolve returns the measure in pixels for the given reference dimension.
func (m Measure) Resolve(reference int) float64 {
	if m.Relative {
		return m.Value * float64(reference)
	}
	return m.Value
}
