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

package gpu

import (
	"github.com/lumeview/lumeview/curated"
	"github.com/veandco/go-sdl2/sdl"
)

// sentinel errors for the SDL context wrapper.
const ContextCreateError = "sdl context: %v"

// SDLContext implements the Context interface on an SDL window and its GL
// context.
type SDLContext struct {
	window *sdl.Window
	glctx  sdl.GLContext

	// a context created by NewShared owns its (hidden) window and destroys
	// it along with the context
	ownsWindow bool
}

// WrapSDL wraps a window and the GL context created on it. The window and
// context remain owned by the caller.
func WrapSDL(window *sdl.Window, glctx sdl.GLContext) *SDLContext {
	return &SDLContext{window: window, glctx: glctx}
}

// MakeCurrent implements the Context interface.
func (c *SDLContext) MakeCurrent() (Current, error) {
	err := c.window.GLMakeCurrent(c.glctx)
	if err != nil {
		return Current{}, curated.Errorf(ContextCreateError, err)
	}
	return MakeCurrentToken(c), nil
}

// ReleaseCurrent implements the Context interface.
func (c *SDLContext) ReleaseCurrent() {
	_ = c.window.GLMakeCurrent(nil)
}

// NewShared implements the Context interface. The new context shares the
// object namespace of this one and is attached to a hidden one-pixel window.
// Must be called on the thread where this context is current; on return this
// context is current again.
func (c *SDLContext) NewShared() (Context, error) {
	err := sdl.GLSetAttribute(sdl.GL_SHARE_WITH_CURRENT_CONTEXT, 1)
	if err != nil {
		return nil, curated.Errorf(ContextCreateError, err)
	}

	window, err := sdl.CreateWindow("", sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED, 1, 1,
		sdl.WINDOW_OPENGL|sdl.WINDOW_HIDDEN)
	if err != nil {
		return nil, curated.Errorf(ContextCreateError, err)
	}

	// GLCreateContext makes the new context current on this thread. the
	// original context is restored before returning
	glctx, err := window.GLCreateContext()
	if err != nil {
		window.Destroy()
		return nil, curated.Errorf(ContextCreateError, err)
	}

	err = c.window.GLMakeCurrent(c.glctx)
	if err != nil {
		sdl.GLDeleteContext(glctx)
		window.Destroy()
		return nil, curated.Errorf(ContextCreateError, err)
	}

	return &SDLContext{window: window, glctx: glctx, ownsWindow: true}, nil
}

// Destroy implements the Context interface.
func (c *SDLContext) Destroy() {
	sdl.GLDeleteContext(c.glctx)
	if c.ownsWindow {
		c.window.Destroy()
	}
}
