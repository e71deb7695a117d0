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
	"fmt"
	"strings"

	"github.com/go-gl/gl/v3.2-core/gl"
	"github.com/lumeview/lumeview/curated"
	"github.com/lumeview/lumeview/pixels"
)

// sentinel errors for the GL32 driver.
const (
	InitError    = "gl: %v"
	StorageError = "gl texture storage: %v"
	ShaderError  = "gl shader: %v"
)

// GL32 implements the Driver interface on an OpenGL 3.2 core context.
//
// Texture storage is always 32bit float per channel. Incoming 8bit and 16bit
// data is converted by the GL during transfer.
type GL32 struct {
	renderer string
	version  string
}

// NewGL32 is the preferred method of initialisation of the GL32 type.
func NewGL32() *GL32 {
	return &GL32{}
}

// Init the driver. Must be called with the first context of the share group
// current, before any other driver function.
func (drv *GL32) Init(_ Current) error {
	err := gl.Init()
	if err != nil {
		return curated.Errorf(InitError, err)
	}

	drv.renderer = gl.GoStr(gl.GetString(gl.RENDERER))
	drv.version = gl.GoStr(gl.GetString(gl.VERSION))

	return nil
}

// Describe the renderer behind the driver.
func (drv *GL32) Describe() string {
	return fmt.Sprintf("%s (%s)", drv.renderer, drv.version)
}

// internalFormat returns the GL sized internal format for a layout. always a
// 32bit float format, whatever the element type of the source data.
func internalFormat(layout pixels.Layout) int32 {
	switch layout {
	case pixels.Gray:
		return gl.R32F
	case pixels.GrayAlpha:
		return gl.RG32F
	case pixels.RGB:
		return gl.RGB32F
	case pixels.RGBA:
		return gl.RGBA32F
	}
	panic(fmt.Sprintf("unknown pixel layout (%d)", int(layout)))
}

// transferFormat returns the GL format and type used to transfer pixel data.
func transferFormat(f Format) (uint32, uint32) {
	var format uint32
	switch f.Layout {
	case pixels.Gray:
		format = gl.RED
	case pixels.GrayAlpha:
		format = gl.RG
	case pixels.RGB:
		format = gl.RGB
	case pixels.RGBA:
		format = gl.RGBA
	default:
		panic(fmt.Sprintf("unknown pixel layout (%d)", int(f.Layout)))
	}

	var xtype uint32
	switch f.Elem {
	case pixels.U8:
		xtype = gl.UNSIGNED_BYTE
	case pixels.U16:
		xtype = gl.UNSIGNED_SHORT
	case pixels.F32:
		xtype = gl.FLOAT
	default:
		panic(fmt.Sprintf("unknown element type (%d)", int(f.Elem)))
	}

	return format, xtype
}

// drainErrors empties the GL error queue so that a later check reflects only
// the calls made in between.
func drainErrors() {
	for gl.GetError() != gl.NO_ERROR {
	}
}

func glError() error {
	switch e := gl.GetError(); e {
	case gl.NO_ERROR:
		return nil
	case gl.OUT_OF_MEMORY:
		return fmt.Errorf("out of memory")
	case gl.INVALID_VALUE:
		return fmt.Errorf("invalid value")
	case gl.INVALID_OPERATION:
		return fmt.Errorf("invalid operation")
	case gl.INVALID_ENUM:
		return fmt.Errorf("invalid enum")
	default:
		return fmt.Errorf("error %#04x", e)
	}
}

// CreateTexture implements the Driver interface.
func (drv *GL32) CreateTexture(_ Current) TextureID {
	var id uint32
	gl.GenTextures(1, &id)
	return TextureID(id)
}

// DeleteTexture implements the Driver interface. Zero ids are ignored.
func (drv *GL32) DeleteTexture(_ Current, id TextureID) {
	if id == NoTexture {
		return
	}
	t := uint32(id)
	gl.DeleteTextures(1, &t)
}

// BindTexture implements the Driver interface.
func (drv *GL32) BindTexture(_ Current, unit int, id TextureID) {
	gl.ActiveTexture(uint32(gl.TEXTURE0 + unit))
	gl.BindTexture(gl.TEXTURE_2D, uint32(id))
}

// AllocTexture implements the Driver interface. The previous storage of the
// texture, if any, is released by the GL.
func (drv *GL32) AllocTexture(_ Current, id TextureID, f Format, width int, height int, mipmaps bool) error {
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, uint32(id))

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	if mipmaps {
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	} else {
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	}

	drainErrors()
	format, xtype := transferFormat(f)
	gl.TexImage2D(gl.TEXTURE_2D, 0, internalFormat(f.Layout),
		int32(width), int32(height), 0, format, xtype, nil)

	if err := glError(); err != nil {
		return curated.Errorf(StorageError,
			curated.Errorf("%dx%d %v: %v", width, height, f, err))
	}

	return nil
}

// UploadTexture implements the Driver interface. Storage for the texture must
// have been allocated beforehand with matching dimensions.
func (drv *GL32) UploadTexture(_ Current, id TextureID, f Format, width int, height int, data []byte) error {
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, uint32(id))

	drainErrors()
	format, xtype := transferFormat(f)
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0,
		int32(width), int32(height), format, xtype, gl.Ptr(data))

	if err := glError(); err != nil {
		return curated.Errorf(StorageError,
			curated.Errorf("transfer of %dx%d %v: %v", width, height, f, err))
	}

	return nil
}

// GenerateMipmaps implements the Driver interface.
func (drv *GL32) GenerateMipmaps(_ Current, id TextureID) {
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, uint32(id))
	gl.GenerateMipmap(gl.TEXTURE_2D)
}

// UnpackAlignment implements the Driver interface.
func (drv *GL32) UnpackAlignment(_ Current) int32 {
	var alignment int32
	gl.GetIntegerv(gl.UNPACK_ALIGNMENT, &alignment)
	return alignment
}

// SetUnpackAlignment implements the Driver interface.
func (drv *GL32) SetUnpackAlignment(_ Current, alignment int32) {
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, alignment)
}

// CreateProgram implements the Driver interface. Compile and link errors are
// returned with the information log from the GL.
func (drv *GL32) CreateProgram(_ Current, vertex string, fragment string) (ProgramID, error) {
	vertHandle := gl.CreateShader(gl.VERTEX_SHADER)
	defer gl.DeleteShader(vertHandle)
	fragHandle := gl.CreateShader(gl.FRAGMENT_SHADER)
	defer gl.DeleteShader(fragHandle)

	glShaderSource := func(handle uint32, source string) {
		csource, free := gl.Strs(source + "\x00")
		defer free()

		gl.ShaderSource(handle, 1, csource, nil)
	}

	glShaderSource(vertHandle, vertex)
	glShaderSource(fragHandle, fragment)

	gl.CompileShader(vertHandle)
	if log := shaderCompileError(vertHandle); log != "" {
		return NoProgram, curated.Errorf(ShaderError, curated.Errorf("vertex: %v", log))
	}

	gl.CompileShader(fragHandle)
	if log := shaderCompileError(fragHandle); log != "" {
		return NoProgram, curated.Errorf(ShaderError, curated.Errorf("fragment: %v", log))
	}

	handle := gl.CreateProgram()
	gl.AttachShader(handle, vertHandle)
	gl.AttachShader(handle, fragHandle)

	// the quad geometry supplies vertex positions on attribute zero
	gl.BindAttribLocation(handle, 0, gl.Str("position"+"\x00"))

	gl.LinkProgram(handle)

	var isLinked int32
	gl.GetProgramiv(handle, gl.LINK_STATUS, &isLinked)
	if isLinked == 0 {
		var logLength int32
		gl.GetProgramiv(handle, gl.INFO_LOG_LENGTH, &logLength)
		log := "unknown link error"
		if logLength > 0 {
			// the log length includes the NULL character
			l := strings.Repeat("\x00", int(logLength+1))
			gl.GetProgramInfoLog(handle, logLength, &logLength, gl.Str(l))
			log = strings.TrimRight(l, "\x00")
		}
		gl.DeleteProgram(handle)
		return NoProgram, curated.Errorf(ShaderError, curated.Errorf("link: %v", log))
	}

	return ProgramID(handle), nil
}

// shaderCompileError returns the most recent error generated by the shader
// compiler.
func shaderCompileError(shader uint32) string {
	var isCompiled int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &isCompiled)
	if isCompiled == 0 {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		if logLength > 0 {
			// the maxLength includes the NULL character
			log := strings.Repeat("\x00", int(logLength+1))
			gl.GetShaderInfoLog(shader, logLength, &logLength, gl.Str(log))
			return strings.TrimRight(log, "\x00")
		}
		return "unknown compile error"
	}
	return ""
}

// DeleteProgram implements the Driver interface. Zero ids are ignored.
func (drv *GL32) DeleteProgram(_ Current, id ProgramID) {
	if id == NoProgram {
		return
	}
	gl.DeleteProgram(uint32(id))
}

// UseProgram implements the Driver interface.
func (drv *GL32) UseProgram(_ Current, id ProgramID) {
	gl.UseProgram(uint32(id))
}

func uniformLocation(id ProgramID, name string) int32 {
	return gl.GetUniformLocation(uint32(id), gl.Str(name+"\x00"))
}

// Uniform1i implements the Driver interface.
func (drv *GL32) Uniform1i(_ Current, id ProgramID, name string, value int32) {
	gl.Uniform1i(uniformLocation(id, name), value)
}

// Uniform1f implements the Driver interface.
func (drv *GL32) Uniform1f(_ Current, id ProgramID, name string, value float32) {
	gl.Uniform1f(uniformLocation(id, name), value)
}

// Uniform3f implements the Driver interface.
func (drv *GL32) Uniform3f(_ Current, id ProgramID, name string, value [3]float32) {
	gl.Uniform3f(uniformLocation(id, name), value[0], value[1], value[2])
}

// UniformMatrix3 implements the Driver interface. The matrix is expected in
// column-major order.
func (drv *GL32) UniformMatrix3(_ Current, id ProgramID, name string, value [9]float32) {
	gl.UniformMatrix3fv(uniformLocation(id, name), 1, false, &value[0])
}

// CreateQuad implements the Driver interface. The quad covers the entire
// clip space when drawn with an identity transform.
func (drv *GL32) CreateQuad(_ Current) (Quad, error) {
	vertices := []float32{
		-1, -1,
		1, -1,
		-1, 1,
		1, 1,
	}

	var q Quad
	gl.GenVertexArrays(1, &q.VAO)
	gl.BindVertexArray(q.VAO)

	drainErrors()
	gl.GenBuffers(1, &q.VBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, q.VBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)

	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 2, gl.FLOAT, false, 8, 0)

	gl.BindVertexArray(0)

	if err := glError(); err != nil {
		drv.DeleteQuad(Current{ok: true}, q)
		return Quad{}, curated.Errorf(StorageError, curated.Errorf("quad: %v", err))
	}

	return q, nil
}

// DeleteQuad implements the Driver interface.
func (drv *GL32) DeleteQuad(_ Current, q Quad) {
	if q.VBO != 0 {
		gl.DeleteBuffers(1, &q.VBO)
	}
	if q.VAO != 0 {
		gl.DeleteVertexArrays(1, &q.VAO)
	}
}

// DrawQuad implements the Driver interface.
func (drv *GL32) DrawQuad(_ Current, q Quad) {
	gl.BindVertexArray(q.VAO)
	gl.DrawArrays(gl.TRIANGLE_STRIP, 0, 4)
	gl.BindVertexArray(0)
}
