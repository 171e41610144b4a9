package mesh

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/meshview/pkg/formats"
)

// ErrNonTriangle is returned for faces that do not have exactly three corners.
var ErrNonTriangle = errors.New("non-triangle primitive")

// CollectTriangles returns the position indices of every face of every group,
// in file order. Any face that is not a triangle is an error.
func CollectTriangles(obj *formats.OBJ) ([][3]int, error) {
	tris := make([][3]int, 0, obj.FaceCount())
	for gi := range obj.Groups {
		g := &obj.Groups[gi]
		for fi, face := range g.Faces {
			if !face.IsTriangle() {
				return nil, nonTriangleError(g, fi, face)
			}
			tris = append(tris, [3]int{
				face.Corners[0].Position,
				face.Corners[1].Position,
				face.Corners[2].Position,
			})
		}
	}
	return tris, nil
}

// EstimateNormals computes a smooth normal per position: the normalized sum of
// the unnormalized face normals of every triangle touching it. Positions with no
// triangles, or whose sum is zero, get the zero vector.
func EstimateNormals(positions []mgl32.Vec3, triangles [][3]int) []mgl32.Vec3 {
	sums := make([]mgl32.Vec3, len(positions))

	for _, t := range triangles {
		p1, p2, p3 := positions[t[0]], positions[t[1]], positions[t[2]]
		n := p2.Sub(p1).Cross(p3.Sub(p1))

		sums[t[0]] = sums[t[0]].Add(n)
		sums[t[1]] = sums[t[1]].Add(n)
		sums[t[2]] = sums[t[2]].Add(n)
	}

	for i, s := range sums {
		sums[i] = normalizeOrZero(s)
	}
	return sums
}

func normalizeOrZero(v mgl32.Vec3) mgl32.Vec3 {
	l := v.Len()
	if l == 0 {
		return mgl32.Vec3{}
	}
	return v.Mul(1 / l)
}

func nonTriangleError(g *formats.Group, ordinal int, face formats.Face) error {
	return fmt.Errorf("group %q face %d (line %d) has %d corners: %w",
		g.Name, ordinal, face.Line, len(face.Corners), ErrNonTriangle)
}
