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

// Context represents an OpenGL context. A context must be made current on a
// thread before the Driver can be used from that thread and contexts created
// as part of the same share group share texture and buffer namespaces but
// not container objects (VAOs in particular).
type Context interface {
	// MakeCurrent attaches the context to the calling thread and returns
	// the Current token that unlocks the Driver. The caller is expected to
	// have locked the goroutine to the thread beforehand.
	MakeCurrent() (Current, error)

	// ReleaseCurrent detaches the context from the calling thread.
	ReleaseCurrent()

	// NewShared creates a second context sharing the object namespace of
	// this one. Called with this context current.
	NewShared() (Context, error)

	// Destroy the context. Must not be current on any thread.
	Destroy()
}

// Current is proof that a context is current on the calling thread. Values
// are only issued by Context.MakeCurrent (or by MakeCurrentToken for Context
// implementations outside this package) and are only meaningful on the thread
// they were issued on.
type Current struct {
	ok bool
}

// Valid returns false for the zero value of Current.
func (c Current) Valid() bool {
	return c.ok
}

// MakeCurrentToken issues the token a Context implementation returns from its
// MakeCurrent function. For use by Context implementations only.
func MakeCurrentToken(ctx Context) Current {
	return Current{ok: ctx != nil}
}
