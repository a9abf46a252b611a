package params

import (
	"strconv"
	"strings"

	"github.com/cytomine/pims/problem"
)

var (
	booleanError = "%#v is not a valid boolean"
	gammaError   = "Gamma %v is out of range (0, %v]"
	gammaSize    = "Expected 1 or %d gammas, got %d"
)

// MaxGamma is the largest gamma correction accepted.
const MaxGamma = 10

// ParseBoolean reads true/false, yes/no, on/off and 1/0, case insensitive.
func ParseBoolean(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "on", "1", "t", "y":
		return true, nil
	case "false", "no", "off", "0", "f", "n":
		return false, nil
	}
	return false, problem.BadRequest(booleanError, s)
}

// ParseFloat reads a float, accepting a decimal comma.
func ParseFloat(s string) (float64, error) {
	s = strings.Replace(strings.TrimSpace(s), ",", ".", 1)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, problem.BadRequest(measureError, s)
	}
	return v, nil
}

// ParseGammas returns one gamma per channel. No gamma means no correction
// and a single gamma applies to every channel.
func ParseGammas(gammas []float64, nChannels int) ([]float64, error) {
	for _, g := range gammas {
		if !(g > 0 && g <= MaxGamma) {
			return nil, problem.BadRequest(gammaError, g, MaxGamma)
		}
	}

	out := make([]float64, nChannels)
	switch len(gammas) {
	case 0:
		for i := range out {
			out[i] = 1
		}
	case 1:
		for i := range out {
			out[i] = gammas[0]
		}
	case nChannels:
		copy(out, gammas)
	default:
		return nil, problem.BadRequest(gammaSize, nChannels, len(gammas))
	}
	return out, nil
}
