package mesh

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/meshview/pkg/formats"
)

// Flatten concatenates chunks into parallel attribute arrays and one index
// array. Each chunk's indices are offset by the vertices of all earlier chunks.
func Flatten(chunks []*Chunk) *Buffers {
	var nv, ni int
	for _, c := range chunks {
		nv += len(c.Vertices)
		ni += len(c.Triangles) * 3
	}

	b := &Buffers{
		Positions:        make([]float32, 0, nv*3),
		Normals:          make([]float32, 0, nv*3),
		UVs:              make([]float32, 0, nv*2),
		Ambient:          make([]float32, 0, nv*3),
		Diffuse:          make([]float32, 0, nv*3),
		Specular:         make([]float32, 0, nv*3),
		SpecularExponent: make([]float32, 0, nv),
		Indices:          make([]uint32, 0, ni),
		Ranges:           make([]Range, 0, len(chunks)),
	}

	for _, c := range chunks {
		base := uint32(b.VertexCount())
		first := int32(len(b.Indices))

		ambient, diffuse, specular, exponent := ShadingChannels(c.Material)

		for i := range c.Vertices {
			b.Positions = appendVec3(b.Positions, c.Vertices[i])
			b.Normals = appendVec3(b.Normals, c.Normals[i])
			b.UVs = append(b.UVs, c.UVs[i][0], c.UVs[i][1])
			b.Ambient = appendVec3(b.Ambient, ambient)
			b.Diffuse = appendVec3(b.Diffuse, diffuse)
			b.Specular = appendVec3(b.Specular, specular)
			b.SpecularExponent = append(b.SpecularExponent, exponent)
		}

		for _, t := range c.Triangles {
			b.Indices = append(b.Indices, t[0]+base, t[1]+base, t[2]+base)
		}

		b.Ranges = append(b.Ranges, Range{
			FirstIndex:  first,
			IndexCount:  int32(len(c.Triangles) * 3),
			BaseVertex:  int32(base),
			VertexCount: int32(len(c.Vertices)),
		})
	}

	return b
}

// ShadingChannels returns the per-vertex colors and specular exponent emitted
// for a material. Channels outside the illumination model are black and the
// exponent is 1 unless the model includes the specular highlight.
func ShadingChannels(m Material) (ambient, diffuse, specular mgl32.Vec3, exponent float32) {
	exponent = 1
	switch m.Illumination {
	case formats.IllumAmbient:
		ambient = m.Ambient
	case formats.IllumAmbientDiffuse:
		ambient, diffuse = m.Ambient, m.Diffuse
	default:
		ambient, diffuse, specular = m.Ambient, m.Diffuse, m.Specular
		exponent = m.SpecularExponent
	}
	return ambient, diffuse, specular, exponent
}

func appendVec3(dst []float32, v mgl32.Vec3) []float32 {
	return append(dst, v[0], v[1], v[2])
}
