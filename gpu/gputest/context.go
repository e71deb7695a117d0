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

// Package gputest implements the gpu.Driver and gpu.Context interfaces in
// memory. Tests use it to exercise the texture cache and the painter without
// a display or a GPU, and to inject allocation and transfer faults.
package gputest

import (
	"sync/atomic"

	"github.com/lumeview/lumeview/gpu"
)

// Context implements the gpu.Context interface without a GL context behind
// it. The number of MakeCurrent/ReleaseCurrent pairs is tracked so tests can
// assert that worker threads attach and detach correctly.
type Context struct {
	currentCount int32
}

// NewContext is the preferred method of initialisation of the Context type.
func NewContext() *Context {
	return &Context{}
}

// MakeCurrent implements the gpu.Context interface.
func (c *Context) MakeCurrent() (gpu.Current, error) {
	atomic.AddInt32(&c.currentCount, 1)
	return gpu.MakeCurrentToken(c), nil
}

// ReleaseCurrent implements the gpu.Context interface.
func (c *Context) ReleaseCurrent() {
	atomic.AddInt32(&c.currentCount, -1)
}

// NewShared implements the gpu.Context interface.
func (c *Context) NewShared() (gpu.Context, error) {
	return NewContext(), nil
}

// Destroy implements the gpu.Context interface.
func (c *Context) Destroy() {
}

// CurrentCount returns the number of threads the context is notionally
// current on. A well-behaved client leaves this at zero (or one for the
// thread that owns the context).
func (c *Context) CurrentCount() int {
	return int(atomic.LoadInt32(&c.currentCount))
}
