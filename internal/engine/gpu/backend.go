package gpu

import (
	"errors"
	"image"
)

var (
	// ErrGL is wrapped by errors reported by the OpenGL error flag.
	ErrGL = errors.New("OpenGL error")
	// ErrNoSlot is returned when a layout lacks a required attribute.
	ErrNoSlot = errors.New("attribute has no slot")
	// ErrEmptyData is returned when uploading an empty buffer or image.
	ErrEmptyData = errors.New("empty upload")
)

// Handles to backend objects. Zero is never a live object.
type (
	VertexArray uint32
	Buffer      uint32
	Texture     uint32
)

// Backend uploads mesh data and issues draw calls.
//
// CreateVertexArray makes the new vertex array current; buffers created
// afterwards are recorded into it until BindVertexArray switches to another
// (0 unbinds).
type Backend interface {
	CreateVertexArray() (VertexArray, error)
	BindVertexArray(vao VertexArray) error
	CreateArrayBuffer(slot uint32, data []float32, components int32) (Buffer, error)
	CreateIndexBuffer(indices []uint32) (Buffer, error)
	CreateTexture(img *image.RGBA) (Texture, error)

	// Draw renders indexCount indices starting at firstIndex as triangles,
	// sampling tex on texture unit 0.
	Draw(vao VertexArray, tex Texture, firstIndex, indexCount int32) error

	DeleteVertexArray(vao VertexArray)
	DeleteBuffers(buffers ...Buffer)
	DeleteTextures(textures ...Texture)
}
