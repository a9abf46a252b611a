package colormap

import (
	"github.com/lucasb-eyer/go-colorful"
)

type lutSpec struct {
	name  string
	typ   Type
	stops []string
}

// Control points of the built-in maps, sampled at even intervals.
var luts = []lutSpec{
	{"JET", Misc, []string{"#00007f", "#0000ff", "#007fff", "#00ffff", "#7fff7f", "#ffff00", "#ff7f00", "#ff0000", "#7f0000"}},
	{"HOT", Sequential, []string{"#0b0000", "#ff0000", "#ffff00", "#ffffff"}},
	{"COOL", Sequential, []string{"#00ffff", "#ff00ff"}},
	{"SPRING", Sequential, []string{"#ff00ff", "#ffff00"}},
	{"SUMMER", Sequential, []string{"#008066", "#ffff66"}},
	{"AUTUMN", Sequential, []string{"#ff0000", "#ffff00"}},
	{"WINTER", Sequential, []string{"#0000ff", "#00ff80"}},
	{"BONE", Sequential, []string{"#000000", "#545474", "#a7c7c7", "#ffffff"}},
	{"VIRIDIS", Sequential, []string{"#440154", "#482878", "#3e4989", "#31688e", "#26828e", "#1f9e89", "#35b779", "#6dcd59", "#b4de2c", "#fde725"}},
	{"MAGMA", Sequential, []string{"#000004", "#1c1044", "#4f127b", "#812581", "#b5367a", "#e55064", "#fb8761", "#fec287", "#fcfdbf"}},
	{"INFERNO", Sequential, []string{"#000004", "#1f0c48", "#550f6d", "#88226a", "#ba3655", "#e35933", "#f98c0a", "#f9c932", "#fcffa4"}},
	{"PLASMA", Sequential, []string{"#0d0887", "#46039f", "#7201a8", "#9c179e", "#bd3786", "#d8576b", "#ed7953", "#fb9f3a", "#fdca26", "#f0f921"}},
	{"CIVIDIS", Sequential, []string{"#00224e", "#123570", "#3b496c", "#575d6d", "#707173", "#8a8779", "#a69d75", "#c4b56c", "#e4cf5b", "#fee838"}},
	{"COOLWARM", Diverging, []string{"#3b4cc0", "#7b9ff9", "#c0d4f5", "#f2cbb7", "#ee8468", "#b40426"}},
	{"RDBU", Diverging, []string{"#67001f", "#d6604d", "#fddbc7", "#d1e5f0", "#4393c3", "#053061"}},
}

func builtins() []*Colormap {
	maps := make([]*Colormap, 0, len(cssColors)+len(luts))
	for name, hex := range cssColors {
		c, err := colorful.Hex(hex)
		if err != nil {
			panic(err)
		}
		maps = append(maps, FromColor(name, c))
	}

	for _, l := range luts {
		stops := make([]colorful.Color, len(l.stops))
		for i, hex := range l.stops {
			c, err := colorful.Hex(hex)
			if err != nil {
				panic(err)
			}
			stops[i] = c
		}
		maps = append(maps, New(l.name, l.typ, stops...))
	}
	return maps
}
