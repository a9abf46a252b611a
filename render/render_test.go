package render

import (
	"bytes"
	"context"
	"errors"
	"image"
	"testing"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/cytomine/pims/colormap"
	"github.com/cytomine/pims/format"
	"github.com/cytomine/pims/params"
	"github.com/cytomine/pims/problem"
)

// ramp returns a single row raster whose channels hold 0, 1, ..., width-1.
func ramp(width, channels, bits int) *format.Raster {
	r := format.NewRaster(width, 1, channels, bits)
	for c := range r.Planes {
		for x := range r.Planes[c] {
			r.Planes[c][x] = uint16(x)
		}
	}
	return r
}

func TestNormalize(t *testing.T) {
	var tests = []struct {
		v, lo, hi int
		expected  float64
	}{
		{0, 0, 255, 0},
		{255, 0, 255, 1},
		{50, 0, 100, 0.5},
		{10, 20, 100, 0},
		{200, 20, 100, 1},
		{19, 20, 20, 0},
		{20, 20, 20, 1},
	}
	for _, test := range tests {
		if got := normalize(test.v, test.lo, test.hi); got != test.expected {
			t.Errorf("normalize(%d, %d, %d): got %v want %v", test.v, test.lo, test.hi, got, test.expected)
		}
	}
}

func TestBands(t *testing.T) {
	var tests = []struct {
		height, n int
		expected  [][2]int
	}{
		{10, 1, [][2]int{{0, 10}}},
		{10, 3, [][2]int{{0, 4}, {4, 8}, {8, 10}}},
		{2, 8, [][2]int{{0, 1}, {1, 2}}},
		{0, 4, nil},
	}
	for _, test := range tests {
		got := bands(test.height, test.n)
		if len(got) != len(test.expected) {
			t.Errorf("bands(%d, %d): got %v want %v", test.height, test.n, got, test.expected)
			continue
		}
		for i := range got {
			if got[i] != test.expected[i] {
				t.Errorf("bands(%d, %d): got %v want %v", test.height, test.n, got, test.expected)
			}
		}
	}
}

func TestRenderGrey(t *testing.T) {
	img, err := Render(context.Background(), ramp(256, 1, 8), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if c := img.NRGBAAt(0, 0); c.R != 0 || c.G != 0 || c.B != 0 || c.A != 0xff {
		t.Errorf("black: got %v", c)
	}
	if c := img.NRGBAAt(255, 0); c.R != 0xff || c.G != 0xff || c.B != 0xff {
		t.Errorf("white: got %v", c)
	}
	if c := img.NRGBAAt(128, 0); c.R != 128 {
		t.Errorf("middle: got %v", c)
	}
}

func TestRenderIntensities(t *testing.T) {
	opts := Options{Mins: []int{100}, Maxs: []int{200}}
	img, err := Render(context.Background(), ramp(256, 1, 8), opts)
	if err != nil {
		t.Fatal(err)
	}
	if c := img.NRGBAAt(50, 0); c.R != 0 {
		t.Errorf("below minimum: got %v", c)
	}
	if c := img.NRGBAAt(150, 0); c.R != 128 {
		t.Errorf("middle: got %v", c)
	}
	if c := img.NRGBAAt(250, 0); c.R != 0xff {
		t.Errorf("above maximum: got %v", c)
	}
}

func TestRenderGammaAndLog(t *testing.T) {
	r := ramp(256, 1, 8)

	img, err := Render(context.Background(), r, Options{Gammas: []float64{2}})
	if err != nil {
		t.Fatal(err)
	}
	// (128/255)^2 * 255 = 64.25
	if c := img.NRGBAAt(128, 0); c.R != 64 {
		t.Errorf("gamma: got %v", c)
	}

	img, err = Render(context.Background(), r, Options{Log: true})
	if err != nil {
		t.Fatal(err)
	}
	if c := img.NRGBAAt(255, 0); c.R != 0xff {
		t.Errorf("log of the maximum: got %v", c)
	}
	if c := img.NRGBAAt(128, 0); c.R <= 128 {
		t.Errorf("log should brighten mid tones: got %v", c)
	}
}

func TestRenderColormaps(t *testing.T) {
	red := colormap.FromColor("RED", colorful.Color{R: 1})
	green := colormap.FromColor("GREEN", colorful.Color{G: 1})

	r := ramp(256, 3, 8)
	opts := Options{
		Channels:  []int{0, 2},
		Colormaps: []*colormap.Colormap{red, green},
	}
	img, err := Render(context.Background(), r, opts)
	if err != nil {
		t.Fatal(err)
	}
	if c := img.NRGBAAt(255, 0); c.R != 0xff || c.G != 0xff || c.B != 0 {
		t.Errorf("red and green: got %v", c)
	}

	// Overlapping colormaps saturate.
	opts.Colormaps = []*colormap.Colormap{red, red}
	img, err = Render(context.Background(), r, opts)
	if err != nil {
		t.Fatal(err)
	}
	if c := img.NRGBAAt(200, 0); c.R != 0xff {
		t.Errorf("saturation: got %v", c)
	}

	// An inverted colormap starts at the color.
	opts = Options{Colormaps: []*colormap.Colormap{red.Inverse()}}
	img, err = Render(context.Background(), ramp(256, 1, 8), opts)
	if err != nil {
		t.Fatal(err)
	}
	if c := img.NRGBAAt(0, 0); c.R != 0xff {
		t.Errorf("inverted: got %v", c)
	}
}

func TestRenderResize(t *testing.T) {
	r := format.NewRaster(100, 50, 1, 16)
	img, err := Render(context.Background(), r, Options{Width: 20, Height: 10})
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 20 || b.Dy() != 10 {
		t.Errorf("got %v want 20x10", b)
	}
}

func TestRenderErrors(t *testing.T) {
	_, err := Render(context.Background(), ramp(4, 1, 8), Options{Channels: []int{3}})
	if !errors.Is(err, problem.ErrBadRequest) {
		t.Errorf("missing channel: got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Render(ctx, ramp(4, 1, 8), Options{}); !errors.Is(err, context.Canceled) {
		t.Errorf("canceled: got %v", err)
	}
}

func TestEncode(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	var tests = []struct {
		format params.OutputFormat
		name   string
	}{
		{params.JPEG, "jpeg"},
		{params.PNG, "png"},
		{params.TIFF, "tiff"},
	}
	for _, test := range tests {
		var buf bytes.Buffer
		if err := Encode(&buf, img, test.format); err != nil {
			t.Errorf("%s: %v", test.format, err)
			continue
		}
		if _, name, err := image.DecodeConfig(&buf); err != nil || name != test.name {
			t.Errorf("%s: decoded as %q (%v)", test.format, name, err)
		}
	}

	if err := Encode(&bytes.Buffer{}, img, params.NoFormat); !errors.Is(err, problem.ErrNotImplemented) {
		t.Errorf("no format: got %v", err)
	}
}
