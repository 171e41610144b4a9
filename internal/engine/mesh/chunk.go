package mesh

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/meshview/pkg/formats"
)

// Geometry is the whole-mesh data a group is split against.
type Geometry struct {
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3 // Per position, from EstimateNormals
	TexCoords []mgl32.Vec2
}

// NewGeometry converts parsed OBJ arrays and estimates smooth normals over all
// faces of all groups, so vertices shared across material boundaries get one
// consistent normal.
func NewGeometry(obj *formats.OBJ) (*Geometry, error) {
	tris, err := CollectTriangles(obj)
	if err != nil {
		return nil, err
	}

	g := &Geometry{
		Positions: make([]mgl32.Vec3, len(obj.Positions)),
		TexCoords: make([]mgl32.Vec2, len(obj.TexCoords)),
	}
	for i, p := range obj.Positions {
		g.Positions[i] = mgl32.Vec3(p)
	}
	for i, uv := range obj.TexCoords {
		g.TexCoords[i] = mgl32.Vec2(uv)
	}
	g.Normals = EstimateNormals(g.Positions, tris)
	return g, nil
}

// SplitGroup builds the chunk for one group. mat is the group's resolved
// material. Local vertex indices are assigned in order of first appearance.
//
// UVs are only fetched for textured materials. A local vertex takes the UV of
// the first corner that references it; a corner without a texcoord yields (0,0).
// Untextured chunks get (0,0) everywhere.
func SplitGroup(group *formats.Group, geom *Geometry, mat Material) (*Chunk, error) {
	local := make(map[int]uint32)
	chunk := &Chunk{
		Name:      group.Name,
		Material:  mat,
		Triangles: make([][3]uint32, 0, len(group.Faces)),
	}
	textured := mat.Textured()

	for fi, face := range group.Faces {
		if !face.IsTriangle() {
			return nil, nonTriangleError(group, fi, face)
		}

		var tri [3]uint32
		for ci, c := range face.Corners {
			idx, seen := local[c.Position]
			if !seen {
				idx = uint32(len(chunk.Vertices))
				local[c.Position] = idx
				chunk.Vertices = append(chunk.Vertices, geom.Positions[c.Position])
				chunk.Normals = append(chunk.Normals, geom.Normals[c.Position])
				chunk.UVs = append(chunk.UVs, cornerUV(c, geom, textured))
			}
			tri[ci] = idx
		}
		chunk.Triangles = append(chunk.Triangles, tri)
	}

	return chunk, nil
}

func cornerUV(c formats.Corner, geom *Geometry, textured bool) mgl32.Vec2 {
	if !textured || c.TexCoord == formats.NoIndex {
		return mgl32.Vec2{}
	}
	return geom.TexCoords[c.TexCoord]
}

// TriangleCount returns the number of triangles in the chunk.
func (c *Chunk) TriangleCount() int {
	return len(c.Triangles)
}
