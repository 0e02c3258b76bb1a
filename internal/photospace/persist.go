package photospace

import (
	"encoding/json"
	"fmt"
)

// Store is the key-value persistence contract the viewport saves through.
// Values are opaque JSON blobs.
type Store interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte) error
}

const persistedVersion = 1

// A pan is treated as centered when it sits within this many screen pixels
// of the exact center position.
const centeredPanEpsilon = 0.5

type persistedViewport struct {
	Version          int     `json:"version"`
	Scale            float64 `json:"scale"`
	PanX             float64 `json:"pan_x"`
	PanY             float64 `json:"pan_y"`
	ImgW             float64 `json:"img_w"`
	ImgH             float64 `json:"img_h"`
	ContainerW       float64 `json:"container_w"`
	ContainerH       float64 `json:"container_h"`
	DevicePixelRatio float64 `json:"device_pixel_ratio,omitempty"`
}

func viewportKey(photoID string) string {
	return "viewport." + photoID
}

// Persist saves the viewport state for a photo, along with the container
// dimensions it was valid for.
func Persist(st Store, photoID string, p PhotoSpace, containerW, containerH float64) error {
	if !p.Ready() {
		return fmt.Errorf("persist viewport %s: viewport not ready", photoID)
	}

	data, err := json.Marshal(persistedViewport{
		Version:          persistedVersion,
		Scale:            p.Scale,
		PanX:             p.PanX,
		PanY:             p.PanY,
		ImgW:             p.ImgW,
		ImgH:             p.ImgH,
		ContainerW:       containerW,
		ContainerH:       containerH,
		DevicePixelRatio: p.DevicePixelRatio,
	})
	if err != nil {
		return err
	}
	return st.Set(viewportKey(photoID), data)
}

// Restore rebuilds the viewport for a photo. The bool result reports whether
// a persisted state was used; when it is false the returned viewport is a
// fresh fit for the given dimensions.
//
// A persisted state is discarded when its schema version is unknown or when
// its photo dimensions differ from the loaded photo (the photo was replaced
// or re-exported, so saved zoom and pan are meaningless). A usable state
// keeps its absolute zoom, re-clamped against the current fit scale. A pan
// that was centered for its own container recenters in the new one; any
// other pan keeps its offset from center.
func Restore(st Store, photoID string, imgW, imgH, containerW, containerH float64) (PhotoSpace, bool) {
	fresh := Fit(imgW, imgH, containerW, containerH)

	raw, ok := st.Get(viewportKey(photoID))
	if !ok {
		return fresh, false
	}

	var pv persistedViewport
	if err := json.Unmarshal(raw, &pv); err != nil {
		return fresh, false
	}
	if pv.Version != persistedVersion {
		return fresh, false
	}
	if pv.Scale <= 0 || pv.ContainerW <= 0 || pv.ContainerH <= 0 {
		return fresh, false
	}
	if pv.ImgW != imgW || pv.ImgH != imgH {
		return fresh, false
	}
	if !fresh.Ready() {
		return fresh, false
	}

	scale := pv.Scale
	if min := fresh.FitScale * MinZoomPercent / 100; scale < min {
		scale = min
	}
	if max := fresh.FitScale * MaxZoomPercent / 100; scale > max {
		scale = max
	}

	// Offset of the saved pan from the centered position in its own
	// container, snapped to zero when it was effectively centered.
	offX := pv.PanX - (pv.ContainerW-imgW*pv.Scale)/2
	offY := pv.PanY - (pv.ContainerH-imgH*pv.Scale)/2
	if offX > -centeredPanEpsilon && offX < centeredPanEpsilon &&
		offY > -centeredPanEpsilon && offY < centeredPanEpsilon {
		offX, offY = 0, 0
	}

	restored := PhotoSpace{
		Scale:            scale,
		PanX:             (containerW-imgW*scale)/2 + offX,
		PanY:             (containerH-imgH*scale)/2 + offY,
		ImgW:             imgW,
		ImgH:             imgH,
		DevicePixelRatio: pv.DevicePixelRatio,
		FitScale:         fresh.FitScale,
	}
	if restored.DevicePixelRatio <= 0 {
		restored.DevicePixelRatio = 1
	}
	return restored, true
}
