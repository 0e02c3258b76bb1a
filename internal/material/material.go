// Package material provides the material catalog and the texture/pattern
// cache that turns material textures into tileable fill patterns.
package material

import (
	"sort"
	"sync"
)

// Material describes one pool-surface finish: tile, plaster, stone.
type Material struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	TextureURL string  `json:"texture_url"`
	TileScale  float64 `json:"tile_scale,omitempty"`
}

// Lookup resolves a material id to its record. The renderer consumes this
// contract; the project registry is the usual implementation.
type Lookup interface {
	Material(id string) (Material, bool)
}

// Registry is an in-memory material catalog.
type Registry struct {
	mu        sync.RWMutex
	materials map[string]Material
}

// NewRegistry creates an empty catalog.
func NewRegistry() *Registry {
	return &Registry{materials: make(map[string]Material)}
}

// Add inserts or replaces a material.
func (r *Registry) Add(m Material) {
	if m.TileScale <= 0 {
		m.TileScale = 1
	}
	r.mu.Lock()
	r.materials[m.ID] = m
	r.mu.Unlock()
}

// Material implements Lookup.
func (r *Registry) Material(id string) (Material, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.materials[id]
	return m, ok
}

// IDs returns all material ids in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.materials))
	for id := range r.materials {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
