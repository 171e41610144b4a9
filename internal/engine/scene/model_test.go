package scene

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/meshview/internal/engine/gpu"
	"github.com/Faultbox/meshview/internal/engine/mesh"
)

type drawCall struct {
	vao        gpu.VertexArray
	tex        gpu.Texture
	first, cnt int32
}

// recordingBackend is a gpu.Backend that hands out sequential handles and
// records what it was asked to do.
type recordingBackend struct {
	next uint32

	arrays   map[uint32][]float32 // slot -> data
	comps    map[uint32]int32
	indices  []uint32
	textures []*image.RGBA
	draws    []drawCall

	deletedVAOs     int
	deletedBuffers  int
	deletedTextures int

	failTexture error
}

func newRecordingBackend() *recordingBackend {
	return &recordingBackend{
		arrays: make(map[uint32][]float32),
		comps:  make(map[uint32]int32),
	}
}

func (r *recordingBackend) handle() uint32 {
	r.next++
	return r.next
}

func (r *recordingBackend) CreateVertexArray() (gpu.VertexArray, error) {
	return gpu.VertexArray(r.handle()), nil
}

func (r *recordingBackend) BindVertexArray(gpu.VertexArray) error { return nil }

func (r *recordingBackend) CreateArrayBuffer(slot uint32, data []float32, components int32) (gpu.Buffer, error) {
	r.arrays[slot] = data
	r.comps[slot] = components
	return gpu.Buffer(r.handle()), nil
}

func (r *recordingBackend) CreateIndexBuffer(indices []uint32) (gpu.Buffer, error) {
	r.indices = indices
	return gpu.Buffer(r.handle()), nil
}

func (r *recordingBackend) CreateTexture(img *image.RGBA) (gpu.Texture, error) {
	if r.failTexture != nil {
		return 0, r.failTexture
	}
	r.textures = append(r.textures, img)
	return gpu.Texture(r.handle()), nil
}

func (r *recordingBackend) Draw(vao gpu.VertexArray, tex gpu.Texture, first, cnt int32) error {
	r.draws = append(r.draws, drawCall{vao, tex, first, cnt})
	return nil
}

func (r *recordingBackend) DeleteVertexArray(vao gpu.VertexArray) {
	if vao != 0 {
		r.deletedVAOs++
	}
}

func (r *recordingBackend) DeleteBuffers(buffers ...gpu.Buffer) {
	r.deletedBuffers += len(buffers)
}

func (r *recordingBackend) DeleteTextures(textures ...gpu.Texture) {
	r.deletedTextures += len(textures)
}

func testLayout() gpu.Layout {
	l := gpu.Layout{}
	for i, a := range gpu.Attributes() {
		l[a] = uint32(i)
	}
	return l
}

func writeAsset(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func writeTexture(t *testing.T, dir, name string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	img.SetRGBA(0, 0, color.RGBA{R: 10, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	writeAsset(t, dir, name, buf.String())
}

const crateOBJ = `
mtllib materials/crate.mtl
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
v 0 0 1
vt 0 0
vt 1 0
vt 1 1
vt 0 1
g front
usemtl wood
f 1/1 2/2 3/3
f 1/1 3/3 4/4
g lid
usemtl paint
f 4 5 1
g side
usemtl wood
f 2 5 3
`

const crateMTL = `
newmtl wood
Ka 0.1 0.1 0.1
Kd 1 1 1
map_Kd ../textures/wood.png
illum 2

newmtl paint
Ka 0.2 0.2 0.2
Kd 0.2 0.4 0.6
illum 1
`

func loadCrate(t *testing.T) *Model {
	t.Helper()
	dir := t.TempDir()
	objPath := writeAsset(t, dir, "models/crate.obj", crateOBJ)
	writeAsset(t, dir, "models/materials/crate.mtl", crateMTL)
	writeTexture(t, dir, "models/textures/wood.png")

	m, err := Load(objPath, Options{})
	require.NoError(t, err)
	return m
}

func TestLoadBuildsDescriptor(t *testing.T) {
	m := loadCrate(t)

	assert.Equal(t, "crate.obj", m.Name)
	require.Len(t, m.Chunks, 3)
	assert.Equal(t, "wood", m.Chunks[0].Material.Name)
	assert.Equal(t, "paint", m.Chunks[1].Material.Name)

	st := m.Stats()
	assert.Equal(t, 3, st.Chunks)
	assert.Equal(t, 4+3+3, st.Vertices)
	assert.Equal(t, 4, st.Triangles)
	// Both wood chunks share one decoded image; paint has its own 1x1.
	assert.Equal(t, 2, st.Textures)
	assert.Same(t, m.Chunks[0].Image, m.Chunks[2].Image)
	assert.Equal(t, color.RGBA{R: 51, G: 102, B: 153, A: 255}, m.Chunks[1].Image.RGBAAt(0, 0))
	assert.False(t, m.Uploaded())
}

func TestLoadTexturePathRelativeToMTL(t *testing.T) {
	m := loadCrate(t)
	assert.Equal(t, "textures/wood.png", m.Chunks[0].Material.TexturePath)
	assert.Equal(t, image.Rect(0, 0, 4, 4), m.Chunks[0].Image.Bounds())
}

func TestUploadOnce(t *testing.T) {
	m := loadCrate(t)
	b := newRecordingBackend()

	require.NoError(t, m.Upload(b, testLayout()))
	assert.True(t, m.Uploaded())

	for i, a := range gpu.Attributes() {
		slot := uint32(i)
		assert.Equal(t, a.Components(), b.comps[slot], "components for %s", a)
		assert.Len(t, b.arrays[slot], m.Buffers.VertexCount()*int(a.Components()), "data for %s", a)
	}
	assert.Equal(t, m.Buffers.Indices, b.indices)
	assert.Len(t, b.textures, 2)

	assert.ErrorIs(t, m.Upload(b, testLayout()), ErrUploaded)
	assert.Len(t, b.textures, 2)
}

func TestDrawPerChunk(t *testing.T) {
	m := loadCrate(t)
	b := newRecordingBackend()

	assert.ErrorIs(t, m.Draw(b), ErrNotUploaded)

	require.NoError(t, m.Upload(b, testLayout()))
	require.NoError(t, m.Draw(b))

	require.Len(t, b.draws, 3)
	var next int32
	for i, d := range b.draws {
		assert.Equal(t, next, d.first, "chunk %d starts where the previous ended", i)
		assert.Equal(t, int32(m.Chunks[i].TriangleCount()*3), d.cnt)
		assert.NotZero(t, d.vao)
		next += d.cnt
	}
	assert.Equal(t, int32(len(m.Buffers.Indices)), next)

	// wood, paint, wood
	assert.Equal(t, b.draws[0].tex, b.draws[2].tex)
	assert.NotEqual(t, b.draws[0].tex, b.draws[1].tex)
}

func TestUploadFailureReleases(t *testing.T) {
	m := loadCrate(t)
	b := newRecordingBackend()
	b.failTexture = errors.New("no memory")

	err := m.Upload(b, testLayout())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wood")
	assert.False(t, m.Uploaded())
	assert.Equal(t, 1, b.deletedVAOs)
	assert.Equal(t, len(gpu.Attributes())+1, b.deletedBuffers)
}

func TestUploadMissingSlot(t *testing.T) {
	m := loadCrate(t)
	layout := testLayout()
	delete(layout, gpu.Specular)

	err := m.Upload(newRecordingBackend(), layout)
	assert.ErrorIs(t, err, gpu.ErrNoSlot)
}

func TestReleaseAllowsReupload(t *testing.T) {
	m := loadCrate(t)
	b := newRecordingBackend()

	require.NoError(t, m.Upload(b, testLayout()))
	m.Release(b)
	assert.False(t, m.Uploaded())
	assert.Equal(t, 2, b.deletedTextures)
	assert.Equal(t, len(gpu.Attributes())+1, b.deletedBuffers)

	assert.ErrorIs(t, m.Draw(b), ErrNotUploaded)
	require.NoError(t, m.Upload(b, testLayout()))
}

func TestLoadMissingLibraryUsesDefault(t *testing.T) {
	dir := t.TempDir()
	objPath := writeAsset(t, dir, "lonely.obj", "mtllib gone.mtl\nv 0 0 0\nv 1 0 0\nv 0 1 0\nusemtl wood\nf 1 2 3\n")

	m, err := Load(objPath, Options{})
	require.NoError(t, err)
	require.Len(t, m.Chunks, 1)
	assert.Equal(t, mesh.DefaultMaterial(), m.Chunks[0].Material)
}

func TestLoadCustomDefault(t *testing.T) {
	dir := t.TempDir()
	objPath := writeAsset(t, dir, "plain.obj", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n")

	def := mesh.DefaultMaterial()
	def.Diffuse = mgl32.Vec3{1, 0, 0}

	m, err := Load(objPath, Options{Default: &def})
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 255, A: 255}, m.Chunks[0].Image.RGBAAt(0, 0))
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		obj     string
		mtl     string
		wantErr error
		wantMsg string
	}{
		{name: "no faces", obj: "v 0 0 0\n", wantErr: ErrEmptyModel},
		{name: "quad", obj: "v 0 0 0\nv 1 0 0\nv 1 1 0\nv 0 1 0\nf 1 2 3 4\n", wantErr: mesh.ErrNonTriangle},
		{name: "bad index", obj: "v 0 0 0\nf 1 2 3\n", wantMsg: "line 2"},
		{name: "bad texture", obj: "mtllib m.mtl\nv 0 0 0\nv 1 0 0\nv 0 1 0\nusemtl t\nf 1 2 3\n",
			mtl: "newmtl t\nmap_Kd missing.png\n", wantMsg: "missing.png"},
		{name: "bad mtl", obj: "mtllib m.mtl\nv 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n",
			mtl: "Kd 1 1 1\n", wantMsg: "m.mtl"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := filepath.Join(dir, tt.name)
			objPath := writeAsset(t, sub, "model.obj", tt.obj)
			if tt.mtl != "" {
				writeAsset(t, sub, "m.mtl", tt.mtl)
			}

			_, err := Load(objPath, Options{})
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}

	_, err := Load(filepath.Join(dir, "absent.obj"), Options{})
	assert.Error(t, err)
}
