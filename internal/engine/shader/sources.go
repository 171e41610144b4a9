package shader

import _ "embed"

// Uniforms of the mesh program.
const (
	UniformMVP       = "u_MVP"
	UniformCameraPos = "u_CameraPos"
	UniformLightDir  = "u_LightDir"
	UniformTexture   = "u_Texture"
)

var (
	//go:embed mesh.vert
	MeshVertex string

	//go:embed mesh.frag
	MeshFragment string
)

// MeshUniforms lists the uniforms set each frame on the mesh program.
func MeshUniforms() []string {
	return []string{UniformMVP, UniformCameraPos, UniformLightDir, UniformTexture}
}
