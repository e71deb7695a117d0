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

package gputest

import (
	"fmt"
	"sync"
	"time"

	"github.com/lumeview/lumeview/gpu"
)

// storage for a single fake texture.
type texture struct {
	allocated bool
	format    gpu.Format
	width     int
	height    int
	mipmaps   bool

	// copy of the most recently transferred pixel data
	data []byte

	// number of transfers into this texture
	transfers int

	// number of times mipmaps have been generated for this texture
	mipmapGens int
}

type program struct {
	vertex   string
	fragment string
	uniforms map[string]interface{}
}

// Driver implements the gpu.Driver interface in memory.
//
// Faults are injected through the AllocErr, UploadErr and ProgramErr fields;
// when non-nil the corresponding driver function fails with that error.
// UploadDelay stalls every transfer, which is how tests arrange for an upload
// to be observably in flight.
//
// All functions and query helpers are safe for concurrent use.
type Driver struct {
	crit sync.Mutex

	nextTexture uint32
	nextProgram uint32
	nextBuffer  uint32

	textures map[gpu.TextureID]*texture
	programs map[gpu.ProgramID]*program
	quads    map[uint32]bool

	alignment int32

	// every value given to SetUnpackAlignment, in order
	alignmentLog []int32

	// transfers across all textures, including since-deleted ones
	totalTransfers int

	// fault injection
	AllocErr    error
	UploadErr   error
	ProgramErr  error
	UploadDelay time.Duration
}

// NewDriver is the preferred method of initialisation of the Driver type.
func NewDriver() *Driver {
	return &Driver{
		textures:  make(map[gpu.TextureID]*texture),
		programs:  make(map[gpu.ProgramID]*program),
		quads:     make(map[uint32]bool),
		alignment: 4,
	}
}

// Init implements the gpu.Driver interface.
func (drv *Driver) Init(_ gpu.Current) error {
	return nil
}

// Describe implements the gpu.Driver interface.
func (drv *Driver) Describe() string {
	return "in-memory test driver"
}

// CreateTexture implements the gpu.Driver interface.
func (drv *Driver) CreateTexture(_ gpu.Current) gpu.TextureID {
	drv.crit.Lock()
	defer drv.crit.Unlock()

	drv.nextTexture++
	id := gpu.TextureID(drv.nextTexture)
	drv.textures[id] = &texture{}
	return id
}

// DeleteTexture implements the gpu.Driver interface.
func (drv *Driver) DeleteTexture(_ gpu.Current, id gpu.TextureID) {
	if id == gpu.NoTexture {
		return
	}

	drv.crit.Lock()
	defer drv.crit.Unlock()

	delete(drv.textures, id)
}

// BindTexture implements the gpu.Driver interface.
func (drv *Driver) BindTexture(_ gpu.Current, unit int, id gpu.TextureID) {
}

// AllocTexture implements the gpu.Driver interface.
func (drv *Driver) AllocTexture(_ gpu.Current, id gpu.TextureID, f gpu.Format, width int, height int, mipmaps bool) error {
	drv.crit.Lock()
	defer drv.crit.Unlock()

	if drv.AllocErr != nil {
		return drv.AllocErr
	}

	t, ok := drv.textures[id]
	if !ok {
		return fmt.Errorf("gputest: allocation for unknown texture %d", id)
	}

	t.allocated = true
	t.format = f
	t.width = width
	t.height = height
	t.mipmaps = mipmaps
	t.data = nil
	t.transfers = 0

	return nil
}

// UploadTexture implements the gpu.Driver interface.
func (drv *Driver) UploadTexture(_ gpu.Current, id gpu.TextureID, f gpu.Format, width int, height int, data []byte) error {
	drv.crit.Lock()
	delay := drv.UploadDelay
	drv.crit.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	drv.crit.Lock()
	defer drv.crit.Unlock()

	if drv.UploadErr != nil {
		return drv.UploadErr
	}

	t, ok := drv.textures[id]
	if !ok {
		return fmt.Errorf("gputest: transfer to unknown texture %d", id)
	}
	if !t.allocated {
		return fmt.Errorf("gputest: transfer to unallocated texture %d", id)
	}
	if t.width != width || t.height != height || t.format.Storage() != f.Storage() {
		return fmt.Errorf("gputest: transfer does not match allocation of texture %d", id)
	}

	t.data = append([]byte(nil), data...)
	t.transfers++
	drv.totalTransfers++

	return nil
}

// GenerateMipmaps implements the gpu.Driver interface.
func (drv *Driver) GenerateMipmaps(_ gpu.Current, id gpu.TextureID) {
	drv.crit.Lock()
	defer drv.crit.Unlock()

	if t, ok := drv.textures[id]; ok {
		t.mipmapGens++
	}
}

// UnpackAlignment implements the gpu.Driver interface.
func (drv *Driver) UnpackAlignment(_ gpu.Current) int32 {
	drv.crit.Lock()
	defer drv.crit.Unlock()
	return drv.alignment
}

// SetUnpackAlignment implements the gpu.Driver interface.
func (drv *Driver) SetUnpackAlignment(_ gpu.Current, alignment int32) {
	drv.crit.Lock()
	defer drv.crit.Unlock()
	drv.alignment = alignment
	drv.alignmentLog = append(drv.alignmentLog, alignment)
}

// CreateProgram implements the gpu.Driver interface.
func (drv *Driver) CreateProgram(_ gpu.Current, vertex string, fragment string) (gpu.ProgramID, error) {
	drv.crit.Lock()
	defer drv.crit.Unlock()

	if drv.ProgramErr != nil {
		return gpu.NoProgram, drv.ProgramErr
	}

	drv.nextProgram++
	id := gpu.ProgramID(drv.nextProgram)
	drv.programs[id] = &program{
		vertex:   vertex,
		fragment: fragment,
		uniforms: make(map[string]interface{}),
	}
	return id, nil
}

// DeleteProgram implements the gpu.Driver interface.
func (drv *Driver) DeleteProgram(_ gpu.Current, id gpu.ProgramID) {
	if id == gpu.NoProgram {
		return
	}

	drv.crit.Lock()
	defer drv.crit.Unlock()

	delete(drv.programs, id)
}

// UseProgram implements the gpu.Driver interface.
func (drv *Driver) UseProgram(_ gpu.Current, id gpu.ProgramID) {
}

// Uniform1i implements the gpu.Driver interface.
func (drv *Driver) Uniform1i(_ gpu.Current, id gpu.ProgramID, name string, value int32) {
	drv.setUniform(id, name, value)
}

// Uniform1f implements the gpu.Driver interface.
func (drv *Driver) Uniform1f(_ gpu.Current, id gpu.ProgramID, name string, value float32) {
	drv.setUniform(id, name, value)
}

// Uniform3f implements the gpu.Driver interface.
func (drv *Driver) Uniform3f(_ gpu.Current, id gpu.ProgramID, name string, value [3]float32) {
	drv.setUniform(id, name, value)
}

// UniformMatrix3 implements the gpu.Driver interface.
func (drv *Driver) UniformMatrix3(_ gpu.Current, id gpu.ProgramID, name string, value [9]float32) {
	drv.setUniform(id, name, value)
}

func (drv *Driver) setUniform(id gpu.ProgramID, name string, value interface{}) {
	drv.crit.Lock()
	defer drv.crit.Unlock()

	if p, ok := drv.programs[id]; ok {
		p.uniforms[name] = value
	}
}

// CreateQuad implements the gpu.Driver interface.
func (drv *Driver) CreateQuad(_ gpu.Current) (gpu.Quad, error) {
	drv.crit.Lock()
	defer drv.crit.Unlock()

	drv.nextBuffer++
	drv.quads[drv.nextBuffer] = true
	return gpu.Quad{VAO: drv.nextBuffer, VBO: drv.nextBuffer}, nil
}

// DeleteQuad implements the gpu.Driver interface.
func (drv *Driver) DeleteQuad(_ gpu.Current, q gpu.Quad) {
	drv.crit.Lock()
	defer drv.crit.Unlock()

	delete(drv.quads, q.VAO)
}

// DrawQuad implements the gpu.Driver interface.
func (drv *Driver) DrawQuad(_ gpu.Current, q gpu.Quad) {
}

// LiveTextures returns the number of texture objects that have been created
// and not yet deleted.
func (drv *Driver) LiveTextures() int {
	drv.crit.Lock()
	defer drv.crit.Unlock()
	return len(drv.textures)
}

// LivePrograms returns the number of programs that have been created and not
// yet deleted.
func (drv *Driver) LivePrograms() int {
	drv.crit.Lock()
	defer drv.crit.Unlock()
	return len(drv.programs)
}

// LiveQuads returns the number of quads that have been created and not yet
// deleted.
func (drv *Driver) LiveQuads() int {
	drv.crit.Lock()
	defer drv.crit.Unlock()
	return len(drv.quads)
}

// Transfers returns the number of pixel transfers made into a texture since
// its storage was last allocated. Zero for unknown textures.
func (drv *Driver) Transfers(id gpu.TextureID) int {
	drv.crit.Lock()
	defer drv.crit.Unlock()

	if t, ok := drv.textures[id]; ok {
		return t.transfers
	}
	return 0
}

// MipmapGens returns the number of times mipmaps have been generated for a
// texture. Zero for unknown textures.
func (drv *Driver) MipmapGens(id gpu.TextureID) int {
	drv.crit.Lock()
	defer drv.crit.Unlock()

	if t, ok := drv.textures[id]; ok {
		return t.mipmapGens
	}
	return 0
}

// TotalTransfers returns the number of pixel transfers made since the driver
// was created, across all textures including since-deleted ones.
func (drv *Driver) TotalTransfers() int {
	drv.crit.Lock()
	defer drv.crit.Unlock()
	return drv.totalTransfers
}

// TextureData returns a copy of the most recently transferred pixel data of a
// texture. Nil if the texture is unknown or nothing has been transferred.
func (drv *Driver) TextureData(id gpu.TextureID) []byte {
	drv.crit.Lock()
	defer drv.crit.Unlock()

	if t, ok := drv.textures[id]; ok {
		return append([]byte(nil), t.data...)
	}
	return nil
}

// TextureSize returns the allocated dimensions of a texture. Zero values for
// unknown or unallocated textures.
func (drv *Driver) TextureSize(id gpu.TextureID) (int, int) {
	drv.crit.Lock()
	defer drv.crit.Unlock()

	if t, ok := drv.textures[id]; ok && t.allocated {
		return t.width, t.height
	}
	return 0, 0
}

// Alignment returns the current unpack alignment.
func (drv *Driver) Alignment() int32 {
	drv.crit.Lock()
	defer drv.crit.Unlock()
	return drv.alignment
}

// AlignmentLog returns every value given to SetUnpackAlignment, in order.
func (drv *Driver) AlignmentLog() []int32 {
	drv.crit.Lock()
	defer drv.crit.Unlock()
	return append([]int32(nil), drv.alignmentLog...)
}

// ProgramFragment returns the fragment source of a program. Empty if the
// program is unknown.
func (drv *Driver) ProgramFragment(id gpu.ProgramID) string {
	drv.crit.Lock()
	defer drv.crit.Unlock()

	if p, ok := drv.programs[id]; ok {
		return p.fragment
	}
	return ""
}

// Uniform returns the most recent value given to a uniform of a program. Nil
// if the program is unknown or the uniform has never been set.
func (drv *Driver) Uniform(id gpu.ProgramID, name string) interface{} {
	drv.crit.Lock()
	defer drv.crit.Unlock()

	if p, ok := drv.programs[id]; ok {
		return p.uniforms[name]
	}
	return nil
}

// SetUploadDelay changes the injected transfer stall. Safe to call while a
// transfer is in progress.
func (drv *Driver) SetUploadDelay(d time.Duration) {
	drv.crit.Lock()
	defer drv.crit.Unlock()
	drv.UploadDelay = d
}

// SetUploadErr changes the injected transfer fault.
func (drv *Driver) SetUploadErr(err error) {
	drv.crit.Lock()
	defer drv.crit.Unlock()
	drv.UploadErr = err
}

// SetAllocErr changes the injected allocation fault.
func (drv *Driver) SetAllocErr(err error) {
	drv.crit.Lock()
	defer drv.crit.Unlock()
	drv.AllocErr = err
}
