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

// Package viewcache holds the GPU resources built for one rendering view:
// compiled shader programs keyed by channel layout, the live texture of every
// drawable painted in the view, and the shared quad geometry. Resources are
// built lazily on first use and live until the view is released. Nothing in
// the cache is assumed to be shared with any other view.
//
// All functions are for the render thread, with the view's context current.
package viewcache

import (
	"github.com/lumeview/lumeview/curated"
	"github.com/lumeview/lumeview/gltex"
	"github.com/lumeview/lumeview/gpu"
	"github.com/lumeview/lumeview/pixels"
)

// sentinel error for shader compile and link failures. fatal to the program
// key only; other drawables continue to render.
const BuildError = "shader build: %v"

// Key identifies a shader program variant.
type Key struct {
	Layout pixels.Layout

	// overlay variants blend a second texture on unit 1
	Overlay    pixels.Layout
	HasOverlay bool
}

// Cache is the set of GPU resources owned by one view.
type Cache struct {
	drv gpu.Driver

	programs map[Key]gpu.ProgramID

	// live textures keyed by drawable id
	textures map[uint64]*gltex.Texture

	// identity last observed bound in this view, per drawable. drives
	// mipmap regeneration under the view's own context; mipmaps generated
	// on the worker context are not reliably visible here on all platforms
	bound map[uint64]uint64

	quad    gpu.Quad
	hasQuad bool

	released bool
}

// NewCache is the preferred method of initialisation of the Cache type.
func NewCache(drv gpu.Driver) *Cache {
	return &Cache{
		drv:      drv,
		programs: make(map[Key]gpu.ProgramID),
		textures: make(map[uint64]*gltex.Texture),
		bound:    make(map[uint64]uint64),
	}
}

// Program returns the program for the key, invoking build on first use.
// Successful results are memoised for the life of the view; failures are
// returned every time until a build succeeds.
func (c *Cache) Program(cur gpu.Current, key Key, build func(gpu.Current) (gpu.ProgramID, error)) (gpu.ProgramID, error) {
	if p, ok := c.programs[key]; ok {
		return p, nil
	}

	p, err := build(cur)
	if err != nil {
		return gpu.NoProgram, curated.Errorf(BuildError, err)
	}

	c.programs[key] = p
	return p, nil
}

// Texture returns the live texture for a drawable, invoking create on first
// use.
func (c *Cache) Texture(drawable uint64, create func() *gltex.Texture) *gltex.Texture {
	if t, ok := c.textures[drawable]; ok {
		return t
	}

	t := create()
	c.textures[drawable] = t
	return t
}

// DropTexture destroys and forgets the texture of a drawable, freeing GPU
// memory promptly when a drawable loses its pixel source. The destroyed
// texture is returned so the caller can unregister it from the upload
// scheduler. Nil if the drawable had no texture.
func (c *Cache) DropTexture(cur gpu.Current, drawable uint64) *gltex.Texture {
	t, ok := c.textures[drawable]
	if !ok {
		return nil
	}
	delete(c.textures, drawable)
	delete(c.bound, drawable)
	t.Destroy(cur)
	return t
}

// BoundIdentity records the pixel identity now bound for a drawable in this
// view and returns true if it differs from what the previous paint bound. A
// fresh texture for a previously dropped drawable always reports true, even
// when the source identity never moved.
func (c *Cache) BoundIdentity(drawable uint64, identity uint64) bool {
	if c.bound[drawable] == identity {
		return false
	}
	c.bound[drawable] = identity
	return true
}

// Quad returns the view's quad geometry, creating it on first use.
func (c *Cache) Quad(cur gpu.Current) (gpu.Quad, error) {
	if c.hasQuad {
		return c.quad, nil
	}

	q, err := c.drv.CreateQuad(cur)
	if err != nil {
		return gpu.Quad{}, curated.Errorf(BuildError, err)
	}

	c.quad = q
	c.hasQuad = true
	return q, nil
}

// Release every resource owned by the view. To be called exactly once, with
// the view's context current, before the view is torn down; a second call is
// a no-op. The destroyed textures are returned so the caller can unregister
// them from the upload scheduler.
func (c *Cache) Release(cur gpu.Current) []*gltex.Texture {
	if c.released {
		return nil
	}
	c.released = true

	destroyed := make([]*gltex.Texture, 0, len(c.textures))
	for _, t := range c.textures {
		t.Destroy(cur)
		destroyed = append(destroyed, t)
	}
	c.textures = make(map[uint64]*gltex.Texture)
	c.bound = make(map[uint64]uint64)

	for _, p := range c.programs {
		c.drv.DeleteProgram(cur, p)
	}
	c.programs = make(map[Key]gpu.ProgramID)

	if c.hasQuad {
		c.drv.DeleteQuad(cur, c.quad)
		c.hasQuad = false
	}

	return destroyed
}
