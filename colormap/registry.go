package colormap

import (
	"sort"
	"strings"
	"sync"

	"github.com/lucasb-eyer/go-colorful"
)

// Registry indexes colormaps by identifier. Lookups are case insensitive.
// It is safe for concurrent use.
type Registry struct {
	sync.RWMutex
	colormaps map[string]*Colormap
}

// NewRegistry returns a registry holding the CSS named colors and the
// built-in maps, together with their inverses.
func NewRegistry() *Registry {
	r := &Registry{
		colormaps: make(map[string]*Colormap),
	}
	for _, c := range builtins() {
		r.colormaps[c.ID] = c
		inv := c.Inverse()
		r.colormaps[inv.ID] = inv
	}
	return r
}

// Get returns the colormap with the identifier id.
func (r *Registry) Get(id string) (*Colormap, bool) {
	r.RLock()
	defer r.RUnlock()
	c, ok := r.colormaps[strings.ToUpper(id)]
	return c, ok
}

// Register adds the colormaps, replacing those with the same identifier.
func (r *Registry) Register(colormaps ...*Colormap) {
	r.Lock()
	defer r.Unlock()
	for _, c := range colormaps {
		r.colormaps[c.ID] = c
	}
}

// LoadOrStoreColor returns the colormap of the color c. Named colors resolve
// to their CSS colormap. Other colors are registered with their inverse
// under their hexadecimal identifier on first use.
func (r *Registry) LoadOrStoreColor(c colorful.Color) *Colormap {
	id, named := NameOf(c)
	if !named {
		id = HexID(c)
	}

	if cm, ok := r.Get(id); ok {
		return cm
	}

	r.Lock()
	defer r.Unlock()
	if cm, ok := r.colormaps[id]; ok {
		return cm
	}
	cm := FromColor(id, c)
	inv := cm.Inverse()
	r.colormaps[cm.ID] = cm
	r.colormaps[inv.ID] = inv
	return cm
}

// Len returns the number of registered colormaps.
func (r *Registry) Len() int {
	r.RLock()
	defer r.RUnlock()
	return len(r.colormaps)
}

// List returns the registered colormaps sorted by identifier.
func (r *Registry) List() []*Colormap {
	r.RLock()
	list := make([]*Colormap, 0, len(r.colormaps))
	for _, c := range r.colormaps {
		list = append(list, c)
	}
	r.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		return list[i].ID < list[j].ID
	})
	return list
}
