package project

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/malakyesheridan/PoolVisual-sub005/internal/mask"
	"github.com/malakyesheridan/PoolVisual-sub005/internal/material"
	"github.com/malakyesheridan/PoolVisual-sub005/internal/render"
	"github.com/malakyesheridan/PoolVisual-sub005/pkg/geometry"
)

// EventType identifies state change events.
type EventType int

const (
	EventProjectLoaded EventType = iota
	EventProjectSaved
	EventMaskAdded
	EventMaskGeometryChanged
	EventMaskRemoved
	EventMaterialAssigned
	EventSettingsChanged
	EventCalibrationChanged
	EventModified
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// GeometryChange describes a mask geometry edit. Cache listeners use the
// old hash to drop composites rendered against the previous outline.
type GeometryChange struct {
	MaskID  string
	OldHash uint32
	NewHash uint32
}

// State holds one open project: the photo reference, the mask list and the
// material catalog. All mutation goes through methods so calibration and
// cache bookkeeping stay consistent.
type State struct {
	mu sync.RWMutex

	ProjectPath string
	Modified    bool

	Name        string
	Created     time.Time
	PhotoPath   string
	PhotoWidth  int
	PhotoHeight int

	// AssumedPPM is the fallback pixel density for auto calibration
	// estimates.
	AssumedPPM float64

	Materials *material.Registry

	surfaces  []*Surface
	listeners map[EventType][]EventListener
}

// NewState creates an empty project state.
func NewState() *State {
	return &State{
		Created:   time.Now(),
		Materials: material.NewRegistry(),
		listeners: make(map[EventType][]EventListener),
	}
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// SetModified marks the project as modified and emits an event.
func (s *State) SetModified(modified bool) {
	s.mu.Lock()
	s.Modified = modified
	s.mu.Unlock()
	s.Emit(EventModified, modified)
}

// SetPhoto records the background photo reference and its pixel
// dimensions.
func (s *State) SetPhoto(path string, width, height int) {
	s.mu.Lock()
	s.PhotoPath = path
	s.PhotoWidth = width
	s.PhotoHeight = height
	s.mu.Unlock()
	s.SetModified(true)
}

// AddMask creates a mask of the given kind with default render settings
// and returns a copy of the stored surface.
func (s *State) AddMask(kind mask.Kind, points []geometry.Point2D) Surface {
	surf := &Surface{
		Mask: mask.Mask{
			ID:     uuid.NewString(),
			Points: append([]geometry.Point2D(nil), points...),
			Kind:   kind,
		},
		Settings: render.DefaultSettings(),
	}

	s.mu.Lock()
	s.surfaces = append(s.surfaces, surf)
	out := surf.clone()
	s.mu.Unlock()

	s.SetModified(true)
	s.Emit(EventMaskAdded, out)
	return out
}

// UpdateMaskPoints replaces a mask's geometry. Pure vertex moves keep the
// calibration and re-derive each measurement's pixel length from the new
// edges; adding or removing vertices discards the calibration outright,
// since edge indices no longer name the same edges.
func (s *State) UpdateMaskPoints(id string, points []geometry.Point2D) (GeometryChange, error) {
	s.mu.Lock()
	_, surf := s.findLocked(id)
	if surf == nil {
		s.mu.Unlock()
		return GeometryChange{}, fmt.Errorf("project: no mask %q", id)
	}

	change := GeometryChange{
		MaskID:  id,
		OldHash: render.MaskHash(surf.Points),
		NewHash: render.MaskHash(points),
	}
	topologyChanged := len(points) != len(surf.Points)

	surf.Points = append([]geometry.Point2D(nil), points...)
	if surf.Calibration != nil {
		if topologyChanged {
			surf.Calibration = nil
		} else {
			rederiveMeasurements(surf)
		}
	}
	s.mu.Unlock()

	s.SetModified(true)
	s.Emit(EventMaskGeometryChanged, change)
	return change, nil
}

// rederiveMeasurements refreshes pixel lengths after vertices moved. Stale
// edge indices are left untouched; validation reports them.
func rederiveMeasurements(surf *Surface) {
	edges := surf.Edges()
	for i, m := range surf.Calibration.EdgeMeasurements {
		if m.EdgeIndex < 0 || m.EdgeIndex >= len(edges) {
			continue
		}
		pixel := edges[m.EdgeIndex].PixelLength
		surf.Calibration.EdgeMeasurements[i].PixelLength = pixel
		if m.RealWorldLength > 0 {
			surf.Calibration.EdgeMeasurements[i].PixelsPerMeter = pixel / m.RealWorldLength
		}
	}
}

// RemoveMask deletes a mask. The removed surface is the event payload.
func (s *State) RemoveMask(id string) error {
	s.mu.Lock()
	i, surf := s.findLocked(id)
	if surf == nil {
		s.mu.Unlock()
		return fmt.Errorf("project: no mask %q", id)
	}
	removed := surf.clone()
	s.surfaces = append(s.surfaces[:i], s.surfaces[i+1:]...)
	s.mu.Unlock()

	s.SetModified(true)
	s.Emit(EventMaskRemoved, removed)
	return nil
}

// AssignMaterial points a mask at a material from the catalog. An empty id
// clears the assignment.
func (s *State) AssignMaterial(maskID, materialID string) error {
	s.mu.RLock()
	registry := s.Materials
	s.mu.RUnlock()
	if materialID != "" {
		if _, ok := registry.Material(materialID); !ok {
			return fmt.Errorf("project: unknown material %q", materialID)
		}
	}

	s.mu.Lock()
	_, surf := s.findLocked(maskID)
	if surf == nil {
		s.mu.Unlock()
		return fmt.Errorf("project: no mask %q", maskID)
	}
	surf.MaterialID = materialID
	out := surf.clone()
	s.mu.Unlock()

	s.SetModified(true)
	s.Emit(EventMaterialAssigned, out)
	return nil
}

// SetSettings replaces a mask's render settings, clamped into range.
func (s *State) SetSettings(maskID string, settings render.Settings) error {
	s.mu.Lock()
	_, surf := s.findLocked(maskID)
	if surf == nil {
		s.mu.Unlock()
		return fmt.Errorf("project: no mask %q", maskID)
	}
	surf.Settings = settings.Clamp()
	out := surf.clone()
	s.mu.Unlock()

	s.SetModified(true)
	s.Emit(EventSettingsChanged, out)
	return nil
}

// SetCalibration replaces a mask's calibration wholesale. A nil calibration
// clears it.
func (s *State) SetCalibration(maskID string, cal *mask.CustomCalibration) error {
	s.mu.Lock()
	_, surf := s.findLocked(maskID)
	if surf == nil {
		s.mu.Unlock()
		return fmt.Errorf("project: no mask %q", maskID)
	}
	if cal == nil {
		surf.Calibration = nil
	} else {
		copied := *cal
		copied.EdgeMeasurements = append([]mask.EdgeMeasurement(nil), cal.EdgeMeasurements...)
		surf.Calibration = &copied
	}
	out := surf.clone()
	s.mu.Unlock()

	s.SetModified(true)
	s.Emit(EventCalibrationChanged, out)
	return nil
}

// Surface returns a copy of the mask with the given id.
func (s *State) Surface(id string) (Surface, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, surf := s.findLocked(id)
	if surf == nil {
		return Surface{}, false
	}
	return surf.clone(), true
}

// MaskAt returns the topmost area mask whose region contains the given
// image-space point. Overlapping masks resolve to the most recently drawn
// one; linear masks enclose no region and are never picked.
func (s *State) MaskAt(p geometry.Point2D) (Surface, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.surfaces) - 1; i >= 0; i-- {
		surf := s.surfaces[i]
		if !surf.Kind.Closed() {
			continue
		}
		if !surf.Bounds().Contains(p) {
			continue
		}
		if geometry.PointInPolygon(p, surf.Points) {
			return surf.clone(), true
		}
	}
	return Surface{}, false
}

// Surfaces returns copies of all masks in draw order.
func (s *State) Surfaces() []Surface {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Surface, len(s.surfaces))
	for i, surf := range s.surfaces {
		out[i] = surf.clone()
	}
	return out
}

func (s *State) findLocked(id string) (int, *Surface) {
	for i, surf := range s.surfaces {
		if surf.ID == id {
			return i, surf
		}
	}
	return -1, nil
}

// SaveProject writes the state to a .poolproj file. The photo path is
// stored relative to the project file when possible.
func (s *State) SaveProject(path string) error {
	s.mu.RLock()
	f := File{
		Version:     FileVersion,
		Name:        s.Name,
		Created:     s.Created,
		PhotoWidth:  s.PhotoWidth,
		PhotoHeight: s.PhotoHeight,
		AssumedPPM:  s.AssumedPPM,
	}
	if s.PhotoPath != "" {
		f.PhotoPath = relativeTo(path, s.PhotoPath)
	}
	for _, id := range s.Materials.IDs() {
		m, _ := s.Materials.Material(id)
		f.Materials = append(f.Materials, m)
	}
	f.Masks = make([]Surface, len(s.surfaces))
	for i, surf := range s.surfaces {
		f.Masks[i] = surf.clone()
	}
	s.mu.RUnlock()

	if err := f.Save(path); err != nil {
		return err
	}

	s.mu.Lock()
	s.ProjectPath = path
	s.Modified = false
	s.mu.Unlock()

	s.Emit(EventProjectSaved, path)
	return nil
}

// LoadProject replaces the state with the contents of a .poolproj file.
func (s *State) LoadProject(path string) error {
	f, err := Load(path)
	if err != nil {
		return err
	}

	registry := material.NewRegistry()
	for _, m := range f.Materials {
		registry.Add(m)
	}

	surfaces := make([]*Surface, 0, len(f.Masks))
	for i := range f.Masks {
		surf := f.Masks[i].clone()
		if surf.ID == "" {
			// Tolerate hand-edited files.
			surf.ID = uuid.NewString()
		}
		surfaces = append(surfaces, &surf)
	}

	s.mu.Lock()
	s.ProjectPath = path
	s.Modified = false
	s.Name = f.Name
	s.Created = f.Created
	s.PhotoPath = f.ResolvePhotoPath(path)
	s.PhotoWidth = f.PhotoWidth
	s.PhotoHeight = f.PhotoHeight
	s.AssumedPPM = f.AssumedPPM
	s.Materials = registry
	s.surfaces = surfaces
	s.mu.Unlock()

	s.Emit(EventProjectLoaded, path)
	return nil
}
