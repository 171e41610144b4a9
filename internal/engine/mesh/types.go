// Package mesh converts parsed OBJ geometry into per-material chunks and flat
// vertex attribute buffers ready for GPU upload.
package mesh

import (
	"image"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/meshview/pkg/formats"
)

// Material is a resolved surface description. Chunks hold their own copy.
type Material struct {
	Name             string
	Ambient          mgl32.Vec3
	Diffuse          mgl32.Vec3
	Specular         mgl32.Vec3
	SpecularExponent float32
	Illumination     formats.Illumination
	TexturePath      string // Relative to the asset directory, empty if untextured
}

// Textured reports whether the material references a texture map.
func (m Material) Textured() bool {
	return m.TexturePath != ""
}

// Chunk is the part of a mesh sharing one material, with vertices renumbered
// to a dense local range. Vertices, Normals and UVs are parallel.
type Chunk struct {
	Name      string
	Material  Material
	Vertices  []mgl32.Vec3
	Normals   []mgl32.Vec3
	UVs       []mgl32.Vec2
	Triangles [][3]uint32 // Local vertex indices
	Image     *image.RGBA
}

// Range locates one chunk inside flattened Buffers.
type Range struct {
	FirstIndex  int32 // Offset into Buffers.Indices
	IndexCount  int32
	BaseVertex  int32 // First vertex of the chunk in the attribute arrays
	VertexCount int32
}

// Buffers holds flattened per-vertex attributes for a sequence of chunks.
// Every array has one entry (of its component count) per vertex.
type Buffers struct {
	Positions        []float32 // 3 per vertex
	Normals          []float32 // 3 per vertex
	UVs              []float32 // 2 per vertex
	Ambient          []float32 // 3 per vertex
	Diffuse          []float32 // 3 per vertex
	Specular         []float32 // 3 per vertex
	SpecularExponent []float32 // 1 per vertex
	Indices          []uint32
	Ranges           []Range // One per chunk, in input order
}

// VertexCount returns the number of flattened vertices.
func (b *Buffers) VertexCount() int {
	return len(b.Positions) / 3
}

// TriangleCount returns the number of triangles in the index array.
func (b *Buffers) TriangleCount() int {
	return len(b.Indices) / 3
}
