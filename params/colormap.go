package params

import (
	"strings"

	"github.com/cytomine/pims/colormap"
	"github.com/cytomine/pims/problem"
)

// Colormap identifiers with a special meaning.
const (
	ColormapNone            = "NONE"
	ColormapDefault         = "DEFAULT"
	ColormapDefaultInverted = "DEFAULT_INVERTED"
)

// ParseColormapID resolves a colormap identifier. NONE gives no colormap,
// DEFAULT and DEFAULT_INVERTED designate defaultColor (a color name or an
// hexadecimal color). Hexadecimal colors that are not registered yet are
// added to the registry.
func ParseColormapID(id string, r *colormap.Registry, defaultColor string) (*colormap.Colormap, error) {
	key := strings.ToUpper(strings.TrimSpace(id))
	switch key {
	case ColormapNone:
		return nil, nil
	case ColormapDefault:
		key = strings.ToUpper(defaultColor)
	case ColormapDefaultInverted:
		key = colormap.InvertPrefix + strings.ToUpper(defaultColor)
	}

	if cm, ok := r.Get(key); ok {
		return cm, nil
	}

	inverted := strings.HasPrefix(key, colormap.InvertPrefix)
	c, err := colormap.ParseHex(strings.TrimPrefix(key, colormap.InvertPrefix))
	if err != nil {
		return nil, problem.ColormapNotFound(id)
	}

	cm := r.LoadOrStoreColor(c)
	if inverted {
		if inv, ok := r.Get(colormap.InvertPrefix + cm.ID); ok {
			return inv, nil
		}
		return cm.Inverse(), nil
	}
	return cm, nil
}
