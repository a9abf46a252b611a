package pims

import (
	"net/url"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/cytomine/pims/params"
	"github.com/cytomine/pims/problem"
)

// imageQuery holds the query parameters shared by every image route.
type imageQuery struct {
	Width  string `mapstructure:"width"`
	Height string `mapstructure:"height"`
	Length string `mapstructure:"length"`

	Channels       []string  `mapstructure:"channels"`
	ZSlices        []string  `mapstructure:"z_slices"`
	Timepoints     []string  `mapstructure:"timepoints"`
	MinIntensities []string  `mapstructure:"min_intensities"`
	MaxIntensities []string  `mapstructure:"max_intensities"`
	Colormaps      []string  `mapstructure:"colormaps"`
	Gammas         []float64 `mapstructure:"gammas"`
	Log            string    `mapstructure:"log"`

	ZReduction string `mapstructure:"z_reduction"`
	TReduction string `mapstructure:"t_reduction"`

	Format string `mapstructure:"format"`
}

// windowQuery adds the region of a window.
type windowQuery struct {
	imageQuery `mapstructure:",squash"`

	Top          string `mapstructure:"top"`
	Left         string `mapstructure:"left"`
	RegionWidth  string `mapstructure:"region_width"`
	RegionHeight string `mapstructure:"region_height"`
	Tier         *int   `mapstructure:"tier"`
	TierType     string `mapstructure:"tier_type"`
	SilentOOB    string `mapstructure:"silent_oob"`
}

// decodeQuery binds the query string to out. Repeated parameters and comma
// separated values both fill lists.
func decodeQuery(values url.Values, out interface{}) error {
	input := make(map[string]interface{}, len(values))
	for k, v := range values {
		if len(v) == 1 {
			input[k] = v[0]
		} else {
			input[k] = splitAll(v)
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToSliceHookFunc(","),
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(input); err != nil {
		return problem.BadRequest("Invalid query: %v", err)
	}
	return nil
}

func splitAll(values []string) []string {
	var out []string
	for _, v := range values {
		out = append(out, strings.Split(v, ",")...)
	}
	return out
}

// measure reads an optional measure.
func measure(s string) (*params.Measure, error) {
	if s == "" {
		return nil, nil
	}
	m, err := params.ParseMeasure(s)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// boolean reads an optional boolean.
func boolean(s string) (bool, error) {
	if s == "" {
		return false, nil
	}
	return params.ParseBoolean(s)
}

func intensityBounds(values []string) ([]params.IntensityBound, error) {
	bounds := make([]params.IntensityBound, 0, len(values))
	for _, v := range values {
		b, err := params.ParseIntensityBound(v)
		if err != nil {
			return nil, err
		}
		bounds = append(bounds, b)
	}
	return bounds, nil
}
