package mesh

import (
	"path"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/meshview/pkg/formats"
)

// DefaultMaterial returns the material used for groups with no usable material:
// mid-gray ambient and diffuse, white specular, ambient+diffuse lighting, no texture.
func DefaultMaterial() Material {
	return Material{
		Name:             "default",
		Ambient:          mgl32.Vec3{0.5, 0.5, 0.5},
		Diffuse:          mgl32.Vec3{0.5, 0.5, 0.5},
		Specular:         mgl32.Vec3{1, 1, 1},
		SpecularExponent: 1,
		Illumination:     formats.IllumAmbientDiffuse,
	}
}

// MaterialFromMTL converts a parsed MTL entry. dir is the MTL file's directory
// relative to the asset directory; texture paths are joined onto it.
func MaterialFromMTL(m *formats.MTLMaterial, dir string) Material {
	mat := Material{
		Name:             m.Name,
		Ambient:          mgl32.Vec3(m.Ambient),
		Diffuse:          mgl32.Vec3(m.Diffuse),
		Specular:         mgl32.Vec3(m.Specular),
		SpecularExponent: m.SpecularExponent,
		Illumination:     m.Illumination,
	}
	if m.DiffuseMap != "" {
		mat.TexturePath = path.Join(dir, m.DiffuseMap)
	}
	return mat
}

// MaterialTable maps material names to materials. The zero value and a nil
// table are empty and usable.
type MaterialTable struct {
	byName map[string]Material
}

// NewMaterialTable creates an empty table.
func NewMaterialTable() *MaterialTable {
	return &MaterialTable{byName: make(map[string]Material)}
}

// AddLibrary adds every material of a parsed library. Later libraries override
// earlier definitions of the same name.
func (t *MaterialTable) AddLibrary(mtl *formats.MTL, dir string) {
	if t.byName == nil {
		t.byName = make(map[string]Material)
	}
	for _, m := range mtl.Materials {
		t.byName[m.Name] = MaterialFromMTL(m, dir)
	}
}

// Add inserts or replaces a single material.
func (t *MaterialTable) Add(m Material) {
	if t.byName == nil {
		t.byName = make(map[string]Material)
	}
	t.byName[m.Name] = m
}

// Len returns the number of materials.
func (t *MaterialTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.byName)
}

// Resolve returns the named material, or fallback when the name is empty or
// unknown. The second result reports whether the name was found.
func (t *MaterialTable) Resolve(name string, fallback Material) (Material, bool) {
	if t == nil || name == "" {
		return fallback, false
	}
	m, ok := t.byName[name]
	if !ok {
		return fallback, false
	}
	return m, true
}
