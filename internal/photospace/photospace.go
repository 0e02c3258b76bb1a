// Package photospace models the viewport transform between photo pixels and
// screen pixels: fit-to-container, anchored zoom, pan, and coordinate
// conversion. A PhotoSpace is an immutable value; every operation returns a
// new state so a caller can swap it atomically under concurrent reads.
package photospace

import (
	"github.com/malakyesheridan/PoolVisual-sub005/pkg/geometry"
)

// Zoom limits relative to the fit scale. 100 percent means the photo exactly
// fits its container.
const (
	MinZoomPercent = 10
	MaxZoomPercent = 500
)

// PhotoSpace describes how the loaded photo maps onto the screen.
// Scale is the image-to-screen pixel multiplier, PanX/PanY the screen
// position of the image origin. A zero Scale marks a viewport that has no
// usable photo or container yet.
type PhotoSpace struct {
	Scale            float64
	PanX             float64
	PanY             float64
	ImgW             float64
	ImgH             float64
	DevicePixelRatio float64
	FitScale         float64
}

// Fit computes the viewport that shows the whole photo as large as possible
// inside the container, centered on both axes. The binding dimension fills
// its axis exactly. Non-positive photo or container dimensions yield the
// zero PhotoSpace.
func Fit(imgW, imgH, containerW, containerH float64) PhotoSpace {
	return FitPadded(imgW, imgH, containerW, containerH, 1)
}

// FitPadded is Fit with a margin factor. A padding below 1 shrinks the
// fitted photo to leave breathing room around it, e.g. 0.95 keeps a five
// percent margin. The padded scale becomes the 100 percent zoom baseline.
func FitPadded(imgW, imgH, containerW, containerH, padding float64) PhotoSpace {
	if imgW <= 0 || imgH <= 0 || containerW <= 0 || containerH <= 0 || padding <= 0 {
		return PhotoSpace{}
	}

	scaleX := containerW / imgW
	scaleY := containerH / imgH
	scale := scaleX
	if scaleY < scaleX {
		scale = scaleY
	}
	scale *= padding

	return PhotoSpace{
		Scale:            scale,
		PanX:             (containerW - imgW*scale) / 2,
		PanY:             (containerH - imgH*scale) / 2,
		ImgW:             imgW,
		ImgH:             imgH,
		DevicePixelRatio: 1,
		FitScale:         scale,
	}
}

// WithDevicePixelRatio returns a copy carrying the given backing-store ratio.
func (p PhotoSpace) WithDevicePixelRatio(dpr float64) PhotoSpace {
	if dpr > 0 {
		p.DevicePixelRatio = dpr
	}
	return p
}

// Ready reports whether the viewport has been initialized with a photo and
// container. Operations on a non-ready viewport are identity.
func (p PhotoSpace) Ready() bool {
	return p.Scale > 0 && p.FitScale > 0
}

// ZoomPercent returns the zoom level relative to the fit scale, where 100
// means exactly fitted. Returns 0 for a non-ready viewport.
func (p PhotoSpace) ZoomPercent() float64 {
	if !p.Ready() {
		return 0
	}
	return p.Scale / p.FitScale * 100
}

// ZoomAtPoint changes the zoom by deltaPercent, keeping the image point
// under the given screen position stationary. The resulting zoom is clamped
// to [MinZoomPercent, MaxZoomPercent].
func (p PhotoSpace) ZoomAtPoint(screenX, screenY, deltaPercent float64) PhotoSpace {
	if !p.Ready() {
		return p
	}

	pct := p.ZoomPercent() + deltaPercent
	if pct < MinZoomPercent {
		pct = MinZoomPercent
	}
	if pct > MaxZoomPercent {
		pct = MaxZoomPercent
	}
	newScale := pct / 100 * p.FitScale

	// Anchor: the image point currently under the cursor.
	imgX := (screenX - p.PanX) / p.Scale
	imgY := (screenY - p.PanY) / p.Scale

	p.Scale = newScale
	p.PanX = screenX - imgX*newScale
	p.PanY = screenY - imgY*newScale
	return p
}

// Pan shifts the viewport by a screen-space delta. Panning is not clamped;
// the photo may leave the container entirely.
func (p PhotoSpace) Pan(dx, dy float64) PhotoSpace {
	if !p.Ready() {
		return p
	}
	p.PanX += dx
	p.PanY += dy
	return p
}

// ImageToScreen converts a point in photo pixels to screen pixels.
func (p PhotoSpace) ImageToScreen(pt geometry.Point2D) geometry.Point2D {
	return geometry.Point2D{
		X: pt.X*p.Scale + p.PanX,
		Y: pt.Y*p.Scale + p.PanY,
	}
}

// ScreenToImage converts a point in screen pixels to photo pixels.
// Returns the zero point for a non-ready viewport.
func (p PhotoSpace) ScreenToImage(pt geometry.Point2D) geometry.Point2D {
	if !p.Ready() {
		return geometry.Point2D{}
	}
	return geometry.Point2D{
		X: (pt.X - p.PanX) / p.Scale,
		Y: (pt.Y - p.PanY) / p.Scale,
	}
}
