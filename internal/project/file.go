// Package project holds the editing session for one pool photo: the drawn
// masks with their calibrations, material assignments and render settings,
// plus the .poolproj persistence format and the render orchestration that
// ties the caches together.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/malakyesheridan/PoolVisual-sub005/internal/mask"
	"github.com/malakyesheridan/PoolVisual-sub005/internal/material"
	"github.com/malakyesheridan/PoolVisual-sub005/internal/render"
	"github.com/malakyesheridan/PoolVisual-sub005/pkg/geometry"
)

// FileVersion is the current .poolproj schema version. Files with any other
// version are rejected on load.
const FileVersion = 1

// Surface is one editable pool region: a drawn mask plus the underwater
// settings applied inside it. The material assignment rides on the mask.
type Surface struct {
	mask.Mask
	Settings render.Settings `json:"settings"`
}

func (surf *Surface) clone() Surface {
	out := *surf
	out.Points = append([]geometry.Point2D(nil), surf.Points...)
	if surf.Calibration != nil {
		cal := *surf.Calibration
		cal.EdgeMeasurements = append([]mask.EdgeMeasurement(nil), cal.EdgeMeasurements...)
		out.Calibration = &cal
	}
	return out
}

// File is the on-disk .poolproj document. Masks are stored verbatim; the
// material catalog is embedded so a project renders the same on another
// machine.
type File struct {
	Version  int       `json:"version"`
	Name     string    `json:"name,omitempty"`
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`

	// PhotoPath is stored relative to the project file when possible.
	PhotoPath   string `json:"photo,omitempty"`
	PhotoWidth  int    `json:"photo_width,omitempty"`
	PhotoHeight int    `json:"photo_height,omitempty"`

	// AssumedPPM is the fallback pixel density for auto calibration
	// estimates.
	AssumedPPM float64 `json:"assumed_ppm,omitempty"`

	Materials []material.Material `json:"materials,omitempty"`
	Masks     []Surface           `json:"masks"`
}

// Load reads and validates a project file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse project %s: %w", path, err)
	}
	if f.Version != FileVersion {
		return nil, fmt.Errorf("project %s: unsupported version %d", path, f.Version)
	}
	return &f, nil
}

// Save writes the project file as indented JSON and stamps the modified
// time.
func (f *File) Save(path string) error {
	f.Modified = time.Now()

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ResolvePhotoPath returns the absolute photo path for a project stored at
// projectPath.
func (f *File) ResolvePhotoPath(projectPath string) string {
	if f.PhotoPath == "" || filepath.IsAbs(f.PhotoPath) {
		return f.PhotoPath
	}
	return filepath.Join(filepath.Dir(projectPath), f.PhotoPath)
}

// relativeTo rewrites target relative to the project file's directory,
// falling back to the path as given when no relative form exists.
func relativeTo(projectPath, target string) string {
	rel, err := filepath.Rel(filepath.Dir(projectPath), target)
	if err != nil {
		return target
	}
	return rel
}
