// Package gpu is the boundary between flattened mesh buffers and the graphics
// API: vertex attribute slots, an upload/draw Backend interface and its OpenGL
// implementation.
package gpu

import "fmt"

// Attribute identifies a per-vertex input of the mesh shader.
type Attribute int

// Vertex attributes, in upload order.
const (
	Position Attribute = iota
	Normal
	UV
	Ambient
	Diffuse
	Specular
	SpecularExponent
)

var attributeInfo = [...]struct {
	name       string
	components int32
}{
	Position:         {"in_Position", 3},
	Normal:           {"in_Normal", 3},
	UV:               {"in_UV", 2},
	Ambient:          {"in_Ambient", 3},
	Diffuse:          {"in_Diffuse", 3},
	Specular:         {"in_Specular", 3},
	SpecularExponent: {"in_SpecularExponent", 1},
}

// Attributes returns every attribute in upload order.
func Attributes() []Attribute {
	return []Attribute{Position, Normal, UV, Ambient, Diffuse, Specular, SpecularExponent}
}

func (a Attribute) valid() bool {
	return a >= 0 && int(a) < len(attributeInfo)
}

// Name returns the shader input variable bound to the attribute.
func (a Attribute) Name() string {
	if !a.valid() {
		return ""
	}
	return attributeInfo[a].name
}

// Components returns the number of floats per vertex.
func (a Attribute) Components() int32 {
	if !a.valid() {
		return 0
	}
	return attributeInfo[a].components
}

func (a Attribute) String() string {
	if !a.valid() {
		return fmt.Sprintf("Attribute(%d)", int(a))
	}
	return attributeInfo[a].name
}

// Layout maps attributes to the slots the linked program assigned them.
type Layout map[Attribute]uint32

// Slot returns the slot for a, or an error if the program has none.
func (l Layout) Slot(a Attribute) (uint32, error) {
	slot, ok := l[a]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNoSlot, a)
	}
	return slot, nil
}
