// Package colormap holds the colormaps applied to rendered channels and the
// registry they are looked up in.
//
// A colormap maps a normalized intensity in [0, 1] to a color by linear
// interpolation between stops. Colormaps built from a single color go from
// black to that color. The inverse of a colormap is identified by the same
// identifier prefixed with "!".
package colormap

import (
	"fmt"
	"image/color"
	"regexp"
	"sort"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Type is the family of a colormap.
type Type string

// Colormap types.
const (
	Sequential Type = "SEQUENTIAL"
	Diverging  Type = "DIVERGING"
	Misc       Type = "MISC"
)

// InvertPrefix marks an inverted colormap identifier.
const InvertPrefix = "!"

// Colormap is an immutable color lookup function.
type Colormap struct {
	ID       string
	Name     string
	Type     Type
	Inverted bool
	stops    []colorful.Color
}

// New returns a colormap interpolating between the given stops, the first
// stop being the color of the lowest intensity.
func New(name string, typ Type, stops ...colorful.Color) *Colormap {
	name = strings.ToUpper(name)
	return &Colormap{
		ID:    name,
		Name:  name,
		Type:  typ,
		stops: stops,
	}
}

// FromColor returns the colormap going from black to c.
func FromColor(name string, c colorful.Color) *Colormap {
	return New(name, Sequential, colorful.Color{}, c)
}

// Inverse returns the colormap read backwards.
func (c *Colormap) Inverse() *Colormap {
	inv := *c
	inv.Inverted = !c.Inverted
	if inv.Inverted {
		inv.ID = InvertPrefix + c.Name
	} else {
		inv.ID = c.Name
	}
	return &inv
}

// At returns the color of the normalized intensity t, clamped to [0, 1].
func (c *Colormap) At(t float64) colorful.Color {
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	if c.Inverted {
		t = 1 - t
	}

	n := len(c.stops)
	if n == 0 {
		return colorful.Color{}
	}
	if n == 1 {
		return c.stops[0]
	}

	pos := t * float64(n-1)
	i := int(pos)
	if i >= n-1 {
		return c.stops[n-1]
	}
	return c.stops[i].BlendRgb(c.stops[i+1], pos-float64(i)).Clamped()
}

// LUT samples the colormap at size evenly spaced intensities.
func (c *Colormap) LUT(size int) []color.RGBA {
	lut := make([]color.RGBA, size)
	for i := range lut {
		var t float64
		if size > 1 {
			t = float64(i) / float64(size-1)
		}
		r, g, b := c.At(t).RGB255()
		lut[i] = color.RGBA{R: r, G: g, B: b, A: 0xff}
	}
	return lut
}

func (c *Colormap) String() string {
	return c.ID
}

var hexPattern = regexp.MustCompile(`^(?:#|0[xX])([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ParseHex reads a color written as #RGB, #RRGGBB, 0xRGB or 0xRRGGBB.
func ParseHex(s string) (colorful.Color, error) {
	m := hexPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return colorful.Color{}, fmt.Errorf("%#v is not an hexadecimal color", s)
	}
	return colorful.Hex("#" + strings.ToLower(m[1]))
}

// HexID returns the identifier of an unnamed color, such as "#ABCDEF".
func HexID(c colorful.Color) string {
	return strings.ToUpper(c.Hex())
}

var colorNames = func() map[string]string {
	names := make([]string, 0, len(cssColors))
	for name := range cssColors {
		names = append(names, name)
	}
	sort.Strings(names)

	// Aliases share a value, the last one in alphabetical order wins.
	byHex := make(map[string]string, len(names))
	for _, name := range names {
		byHex[cssColors[name]] = strings.ToUpper(name)
	}
	return byHex
}()

// NameOf returns the CSS name of c, if it has one.
func NameOf(c colorful.Color) (string, bool) {
	name, ok := colorNames[c.Hex()]
	return name, ok
}
