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

// Package gpu abstracts the small slice of OpenGL used by the texture cache
// and the scene painter. Every function that talks to the GPU takes a Current
// token as its first argument, obtained by making a Context current on the
// calling thread. The token is how we keep "you must have a context current"
// out of the realm of documentation and into the realm of the type system.
//
// The GL32 type implements Driver on an OpenGL 3.2 context. The gputest
// sub-package implements it in memory for tests.
package gpu

// TextureID identifies a texture object held by the driver.
type TextureID uint32

// ProgramID identifies a compiled and linked shader program held by the
// driver.
type ProgramID uint32

// NoTexture and NoProgram are the zero values for driver object handles.
const (
	NoTexture = TextureID(0)
	NoProgram = ProgramID(0)
)

// Quad is a screen-aligned quad ready for drawing. Created and owned by the
// driver.
type Quad struct {
	VAO uint32
	VBO uint32
}

// Driver is the connection to the GPU. All functions except Describe must be
// called from a thread with a context current; functions that create or
// destroy objects in a shared namespace can be called with any context of the
// share group current.
//
// Object destruction functions ignore zero-valued handles so that cleanup
// paths do not need to guard against objects that were never created.
type Driver interface {
	// Init is called once with the first context of the share group
	// current.
	Init(cur Current) error

	// Describe returns a description of the renderer for logging.
	Describe() string

	// texture lifecycle. AllocTexture creates the storage for a texture
	// without specifying content; a previous allocation for the same id is
	// replaced. UploadTexture transfers pixel data into existing storage
	// and regenerates mipmaps if the allocation asked for them.
	CreateTexture(cur Current) TextureID
	DeleteTexture(cur Current, id TextureID)
	BindTexture(cur Current, unit int, id TextureID)
	AllocTexture(cur Current, id TextureID, f Format, width int, height int, mipmaps bool) error
	UploadTexture(cur Current, id TextureID, f Format, width int, height int, data []byte) error
	GenerateMipmaps(cur Current, id TextureID)

	// pixel transfer alignment. measured in bytes and global to the
	// context
	UnpackAlignment(cur Current) int32
	SetUnpackAlignment(cur Current, alignment int32)

	// shader programs
	CreateProgram(cur Current, vertex string, fragment string) (ProgramID, error)
	DeleteProgram(cur Current, id ProgramID)
	UseProgram(cur Current, id ProgramID)
	Uniform1i(cur Current, id ProgramID, name string, value int32)
	Uniform1f(cur Current, id ProgramID, name string, value float32)
	Uniform3f(cur Current, id ProgramID, name string, value [3]float32)
	UniformMatrix3(cur Current, id ProgramID, name string, value [9]float32)

	// quad geometry
	CreateQuad(cur Current) (Quad, error)
	DeleteQuad(cur Current, q Quad)
	DrawQuad(cur Current, q Quad)
}
