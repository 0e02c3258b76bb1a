package project

import (
	"github.com/malakyesheridan/PoolVisual-sub005/internal/store"
)

// DefaultRecentLimit caps the recent-project list.
const DefaultRecentLimit = 8

const recentsKey = "recent_projects"

// Recents tracks the most recently opened project paths in the settings
// store, newest first.
type Recents struct {
	store *store.Store
	limit int
}

// NewRecents binds a recent-project list to the settings store.
func NewRecents(st *store.Store) *Recents {
	return &Recents{store: st, limit: DefaultRecentLimit}
}

// Touch moves path to the front of the list, dropping the oldest entry when
// the list is full.
func (r *Recents) Touch(path string) error {
	paths := r.List()
	out := make([]string, 0, len(paths)+1)
	out = append(out, path)
	for _, p := range paths {
		if p != path {
			out = append(out, p)
		}
	}
	if len(out) > r.limit {
		out = out[:r.limit]
	}
	return r.store.SetObject(recentsKey, out)
}

// List returns recent project paths, most recent first.
func (r *Recents) List() []string {
	var paths []string
	r.store.GetObject(recentsKey, &paths)
	return paths
}

// Remove drops a path, for projects that no longer exist on disk.
func (r *Recents) Remove(path string) error {
	paths := r.List()
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if p != path {
			out = append(out, p)
		}
	}
	return r.store.SetObject(recentsKey, out)
}
