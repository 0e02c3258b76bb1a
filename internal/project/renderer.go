package project

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/malakyesheridan/PoolVisual-sub005/internal/material"
	"github.com/malakyesheridan/PoolVisual-sub005/internal/render"
)

// Renderer composites surfaces over the photo, memoizing tiled patterns in
// the texture cache and finished buffers in the result cache.
type Renderer struct {
	textures *material.TextureCache
	results  *render.ResultCache
}

// NewRenderer wires the two caches together. A nil result cache gets the
// default capacity.
func NewRenderer(textures *material.TextureCache, results *render.ResultCache) *Renderer {
	if results == nil {
		results = render.NewResultCache(0)
	}
	return &Renderer{textures: textures, results: results}
}

// Results exposes the result cache for stats and manual invalidation.
func (r *Renderer) Results() *render.ResultCache {
	return r.results
}

// RenderSurface composites one surface over the background photo. A cached
// buffer short-circuits the pipeline; fresh renders are cached on success.
func (r *Renderer) RenderSurface(ctx context.Context, background *image.RGBA, surf Surface, materials material.Lookup) render.Result {
	start := time.Now()

	if background == nil {
		return render.Result{Err: render.ErrNilImage, ProcessingTime: time.Since(start)}
	}
	if surf.MaterialID == "" {
		return render.Result{
			Err:            fmt.Errorf("project: mask %s has no material assigned", surf.ID),
			ProcessingTime: time.Since(start),
		}
	}
	mat, ok := materials.Material(surf.MaterialID)
	if !ok {
		return render.Result{
			Err:            fmt.Errorf("project: unknown material %q", surf.MaterialID),
			ProcessingTime: time.Since(start),
		}
	}

	settings := surf.Settings.Clamp()
	maskHash := render.MaskHash(surf.Points)
	if img, ok := r.results.Get(mat.ID, mat.TileScale, settings, maskHash); ok {
		return render.Result{Image: img, Success: true, ProcessingTime: time.Since(start)}
	}

	pattern, err := r.textures.GetPattern(ctx, mat.ID, mat.TextureURL, mat.TileScale)
	if err != nil {
		return render.Result{
			Err:            fmt.Errorf("texture for material %q: %w", mat.ID, err),
			ProcessingTime: time.Since(start),
		}
	}

	b := background.Bounds()
	fill := render.FillPattern(b.Dx(), b.Dy(), pattern)
	res := render.Composite(background, fill, surf.Points, settings)
	if res.Success {
		r.results.Put(mat.ID, mat.TileScale, settings, maskHash, res.Image)
	}
	return res
}

// Bind subscribes the result cache to the state's mask events so stale
// composites never outlive a geometry edit.
func (r *Renderer) Bind(st *State) {
	st.On(EventMaskGeometryChanged, func(data interface{}) {
		if change, ok := data.(GeometryChange); ok {
			r.results.InvalidateMask(change.OldHash)
		}
	})
	st.On(EventMaskRemoved, func(data interface{}) {
		if surf, ok := data.(Surface); ok {
			r.results.InvalidateMask(render.MaskHash(surf.Points))
		}
	})
}
