// This file is part of Lumeview.
//
// Lumeview is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Lumeview is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Lumeview.  If not, see <https://www.gnu.org/licenses/>.

// Package scene composites stacked image layers into a view. The Painter
// walks a layer's pixel source into a bound, sampled texture through the
// viewcache and gltex packages, sets the rescale and placement uniforms, and
// issues the draw, leaving ambient GPU state as it found it. A failure while
// painting one layer never stops the rest of the stack.
package scene

import (
	"github.com/lumeview/lumeview/gltex"
	"github.com/lumeview/lumeview/gpu"
	"github.com/lumeview/lumeview/logger"
	"github.com/lumeview/lumeview/pixels"
	"github.com/lumeview/lumeview/scene/shaders"
	"github.com/lumeview/lumeview/viewcache"
)

// View identifies one rendering target/context pairing. GPU resources are
// cached per view and never assumed to be shared between views.
type View struct {
	ID uint64
}

// RenderTarget describes the surface of the current paint, in pixels.
type RenderTarget struct {
	Width  int
	Height int
}

func (rt RenderTarget) valid() bool {
	return rt.Width > 0 && rt.Height > 0
}

// Painter owns the per-view resource caches and the paint sequence. To be
// used from the render thread only.
type Painter struct {
	drv   gpu.Driver
	sched *gltex.Scheduler
	prefs *Preferences

	caches map[uint64]*viewcache.Cache

	warnedNoTarget bool
}

// NewPainter is the preferred method of initialisation of the Painter type.
// A nil scheduler forces the foreground upload path regardless of the
// AsyncUpload preference.
func NewPainter(drv gpu.Driver, sched *gltex.Scheduler, prf *Preferences) *Painter {
	if prf == nil {
		prf = NewPreferences()
	}
	return &Painter{
		drv:    drv,
		sched:  sched,
		prefs:  prf,
		caches: make(map[uint64]*viewcache.Cache),
	}
}

func (p *Painter) cache(view View) *viewcache.Cache {
	c, ok := p.caches[view.ID]
	if !ok {
		c = viewcache.NewCache(p.drv)
		p.caches[view.ID] = c
	}
	return c
}

func (p *Painter) forget(t *gltex.Texture) {
	if p.sched != nil {
		p.sched.Forget(t)
	}
}

// resolve a drawable's pixel source into a texture bound at the unit:
// ensure storage, upload if the identity has advanced (through the worker or
// in the foreground), bind, and regenerate mipmaps if new content landed.
func (p *Painter) resolve(cur gpu.Current, cache *viewcache.Cache, drawable uint64, src *pixels.Source, unit int) (*gltex.Texture, error) {
	tex := cache.Texture(drawable, func() *gltex.Texture {
		return gltex.NewTexture(p.drv, true)
	})

	err := tex.Ensure(cur, src)
	if err != nil {
		return nil, err
	}

	if p.sched != nil && p.prefs.AsyncUpload.Get().(bool) {
		err = p.sched.Upload(tex, src)
	} else {
		err = tex.Upload(cur, src)
	}
	if err != nil {
		return nil, err
	}

	// the synchronisation point. a captured upload failure surfaces here
	err = tex.Bind(cur, unit)
	if err != nil {
		return nil, err
	}

	// mipmaps generated on the worker context are not reliably visible to
	// this view's context on all platforms. regenerate here whenever new
	// content has landed since this view last bound the drawable
	if cache.BoundIdentity(drawable, tex.Uploaded()) {
		p.drv.GenerateMipmaps(cur, tex.Handle())
	}

	return tex, nil
}

// Paint one layer into a view. Must be called with the view's context current
// and a native painting bracket active; ambient pixel-store state is
// unchanged on return. An error is fatal to this layer's draw only.
func (p *Painter) Paint(cur gpu.Current, view View, target RenderTarget, layer *Layer) error {
	if !target.valid() {
		if !p.warnedNoTarget {
			logger.Log("paint", "paint invoked with no valid render target")
			p.warnedNoTarget = true
		}
		return nil
	}

	cache := p.cache(view)

	// a drawable without pixel data gives up its GPU memory promptly
	if layer.Source == nil {
		if t := cache.DropTexture(cur, layer.id); t != nil {
			p.forget(t)
		}
		if t := cache.DropTexture(cur, layer.overlayID); t != nil {
			p.forget(t)
		}
		return nil
	}

	src := layer.Source
	hasOverlay := layer.Overlay != nil

	key := viewcache.Key{Layout: src.Layout(), HasOverlay: hasOverlay}
	if hasOverlay {
		key.Overlay = layer.Overlay.Layout()
	}

	program, err := cache.Program(cur, key, func(cur gpu.Current) (gpu.ProgramID, error) {
		frag := shaders.Fragment(key.Layout, key.Overlay, key.HasOverlay)
		return p.drv.CreateProgram(cur, string(shaders.PlanarQuadVertexShader), frag)
	})
	if err != nil {
		return err
	}

	tex, err := p.resolve(cur, cache, layer.id, src, 0)
	if err != nil {
		return err
	}
	defer tex.Release(cur, 0)

	if hasOverlay {
		overlay, err := p.resolve(cur, cache, layer.overlayID, layer.Overlay, 1)
		if err != nil {
			return err
		}
		defer overlay.Release(cur, 1)
	} else if t := cache.DropTexture(cur, layer.overlayID); t != nil {
		// the layer had an overlay on an earlier paint
		p.forget(t)
	}

	p.drv.UseProgram(cur, program)
	defer p.drv.UseProgram(cur, gpu.NoProgram)

	p.drv.Uniform1i(cur, program, "tex", 0)
	p.drv.Uniform1f(cur, program, "viewport_height", float32(target.Height))
	p.drv.UniformMatrix3(cur, program, "frag_to_tex",
		FragToTex(layer.Transform, src.Width(), src.Height()))

	min, rng := layer.rescale(src.Elem())
	switch src.Layout() {
	case pixels.Gray, pixels.GrayAlpha:
		p.drv.Uniform1f(cur, program, "gamma", layer.Gamma[0])
		p.drv.Uniform1f(cur, program, "rescale_min", min[0])
		p.drv.Uniform1f(cur, program, "rescale_range", rng[0])
	default:
		p.drv.Uniform3f(cur, program, "gamma", layer.Gamma)
		p.drv.Uniform3f(cur, program, "rescale_min", min)
		p.drv.Uniform3f(cur, program, "rescale_range", rng)
	}

	if hasOverlay {
		p.drv.Uniform1i(cur, program, "overlay_tex", 1)
		p.drv.UniformMatrix3(cur, program, "overlay_frag_to_tex",
			FragToTex(layer.OverlayTransform, layer.Overlay.Width(), layer.Overlay.Height()))
	}

	quad, err := cache.Quad(cur)
	if err != nil {
		return err
	}
	p.drv.DrawQuad(cur, quad)

	return nil
}

// PaintStack paints every visible layer of the stack, base-first. A layer
// failure is logged and the remaining layers are painted anyway.
func (p *Painter) PaintStack(cur gpu.Current, view View, target RenderTarget, stack *Stack) {
	for _, l := range stack.Layers() {
		if !l.Visible {
			continue
		}
		err := p.Paint(cur, view, target, l)
		if err != nil {
			logger.Logf("paint", "layer %d: %v", l.ID(), err)
		}
	}
}

// OnViewDestroyed releases every GPU resource cached for the view. To be
// called by the windowing framework, with the view's context current, before
// the view is torn down. Calling it for an unknown view is a no-op.
func (p *Painter) OnViewDestroyed(cur gpu.Current, view View) {
	cache, ok := p.caches[view.ID]
	if !ok {
		return
	}
	for _, t := range cache.Release(cur) {
		p.forget(t)
	}
	delete(p.caches, view.ID)
}
