package gpu

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// GL implements Backend with OpenGL 4.1 core. A context must be current on
// the calling thread. Every operation checks the GL error flag.
type GL struct{}

// NewGL returns the OpenGL backend.
func NewGL() *GL {
	return &GL{}
}

// CreateVertexArray implements Backend.
func (GL) CreateVertexArray() (VertexArray, error) {
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	gl.BindVertexArray(vao)
	return VertexArray(vao), CheckError("create vertex array")
}

// BindVertexArray implements Backend.
func (GL) BindVertexArray(vao VertexArray) error {
	gl.BindVertexArray(uint32(vao))
	return CheckError("bind vertex array")
}

// CreateArrayBuffer implements Backend.
func (GL) CreateArrayBuffer(slot uint32, data []float32, components int32) (Buffer, error) {
	if len(data) == 0 {
		return 0, fmt.Errorf("array buffer for slot %d: %w", slot, ErrEmptyData)
	}

	var vbo uint32
	gl.GenBuffers(1, &vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, unsafe.Pointer(&data[0]), gl.STATIC_DRAW)

	gl.VertexAttribPointerWithOffset(slot, components, gl.FLOAT, false, 0, 0)
	gl.EnableVertexAttribArray(slot)

	return Buffer(vbo), CheckError(fmt.Sprintf("array buffer for slot %d", slot))
}

// CreateIndexBuffer implements Backend.
func (GL) CreateIndexBuffer(indices []uint32) (Buffer, error) {
	if len(indices) == 0 {
		return 0, fmt.Errorf("index buffer: %w", ErrEmptyData)
	}

	var ebo uint32
	gl.GenBuffers(1, &ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, unsafe.Pointer(&indices[0]), gl.STATIC_DRAW)

	return Buffer(ebo), CheckError("index buffer")
}

// CreateTexture implements Backend.
func (GL) CreateTexture(img *image.RGBA) (Texture, error) {
	if img == nil || len(img.Pix) == 0 {
		return 0, fmt.Errorf("texture: %w", ErrEmptyData)
	}
	w, h := int32(img.Bounds().Dx()), int32(img.Bounds().Dy())

	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, int32(img.Stride/4))
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, w, h, 0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&img.Pix[0]))
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, 0)
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)

	return Texture(tex), CheckError(fmt.Sprintf("texture %dx%d", w, h))
}

// Draw implements Backend.
func (GL) Draw(vao VertexArray, tex Texture, firstIndex, indexCount int32) error {
	gl.BindVertexArray(uint32(vao))
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, uint32(tex))
	gl.DrawElementsWithOffset(gl.TRIANGLES, indexCount, gl.UNSIGNED_INT, uintptr(firstIndex)*4)
	return CheckError("draw")
}

// DeleteVertexArray implements Backend.
func (GL) DeleteVertexArray(vao VertexArray) {
	if vao == 0 {
		return
	}
	id := uint32(vao)
	gl.DeleteVertexArrays(1, &id)
}

// DeleteBuffers implements Backend.
func (GL) DeleteBuffers(buffers ...Buffer) {
	for _, b := range buffers {
		if b == 0 {
			continue
		}
		id := uint32(b)
		gl.DeleteBuffers(1, &id)
	}
}

// DeleteTextures implements Backend.
func (GL) DeleteTextures(textures ...Texture) {
	for _, t := range textures {
		if t == 0 {
			continue
		}
		id := uint32(t)
		gl.DeleteTextures(1, &id)
	}
}

// Not exported by the 4.1 core profile bindings.
const (
	glStackOverflow  = 0x0503
	glStackUnderflow = 0x0504
)

const maxDrainedErrors = 16

// CheckError drains the GL error flag and reports the first error for op.
func CheckError(op string) error {
	code := gl.GetError()
	if code == gl.NO_ERROR {
		return nil
	}
	for i := 0; i < maxDrainedErrors && gl.GetError() != gl.NO_ERROR; i++ {
	}
	return fmt.Errorf("%s: %w 0x%X: %s", op, ErrGL, code, ErrorName(code))
}

// ErrorName returns the symbolic name of a GL error code.
func ErrorName(code uint32) string {
	switch code {
	case gl.INVALID_ENUM:
		return "invalid enum"
	case gl.INVALID_VALUE:
		return "invalid value"
	case gl.INVALID_OPERATION:
		return "invalid operation"
	case gl.INVALID_FRAMEBUFFER_OPERATION:
		return "invalid framebuffer operation"
	case glStackOverflow:
		return "stack overflow"
	case glStackUnderflow:
		return "stack underflow"
	case gl.OUT_OF_MEMORY:
		return "out of memory"
	default:
		return "unknown error"
	}
}
