// Package scene holds loaded models: a CPU-side descriptor built from an OBJ
// asset, uploaded to the GPU once and drawn every frame.
package scene

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"path"

	"go.uber.org/zap"

	"github.com/Faultbox/meshview/internal/assets"
	"github.com/Faultbox/meshview/internal/engine/gpu"
	"github.com/Faultbox/meshview/internal/engine/mesh"
	"github.com/Faultbox/meshview/internal/engine/texture"
	"github.com/Faultbox/meshview/internal/logger"
	"github.com/Faultbox/meshview/pkg/formats"
)

var (
	// ErrUploaded is returned by Upload on a model that is already on the GPU.
	ErrUploaded = errors.New("model already uploaded")
	// ErrNotUploaded is returned by Draw before Upload.
	ErrNotUploaded = errors.New("model not uploaded")
	// ErrEmptyModel is returned when an asset has no faces.
	ErrEmptyModel = errors.New("model has no faces")
)

// Options control model loading.
type Options struct {
	// Default replaces mesh.DefaultMaterial for groups without a usable material.
	Default *mesh.Material
	// Assets overrides the manager rooted at the model's directory.
	Assets *assets.Manager
}

// Model is a loaded mesh. Load builds the descriptor; Upload creates GPU
// resources exactly once; Draw issues one draw call per chunk.
type Model struct {
	Name    string
	Chunks  []*mesh.Chunk
	Buffers *mesh.Buffers

	uploaded bool
	vao      gpu.VertexArray
	buffers  []gpu.Buffer
	textures []gpu.Texture // Per chunk, shared between chunks with the same image
	owned    []gpu.Texture // Distinct textures, for Release

	log *zap.Logger
}

// Stats summarizes a model.
type Stats struct {
	Chunks    int
	Vertices  int
	Triangles int
	Textures  int
}

// Load reads an OBJ file and its material libraries and builds the model
// descriptor. File names inside the asset resolve against the OBJ's directory.
// No GPU calls are made.
func Load(objPath string, opts Options) (*Model, error) {
	am, name := assets.ForAsset(objPath)
	if opts.Assets != nil {
		am = opts.Assets
		name = objPath
	}
	log := logger.Named("scene")

	data, err := am.Load(name)
	if err != nil {
		return nil, fmt.Errorf("loading model: %w", err)
	}
	obj, err := formats.ParseOBJ(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", objPath, err)
	}
	if obj.FaceCount() == 0 {
		return nil, fmt.Errorf("%s: %w", objPath, ErrEmptyModel)
	}

	table, err := loadMaterials(am, obj.MaterialLibs, log)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", objPath, err)
	}

	builder := mesh.NewBuilder(texture.NewResolver(am))
	if opts.Default != nil {
		builder.Default = *opts.Default
	}
	chunks, err := builder.Build(obj, table)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", objPath, err)
	}

	m := &Model{
		Name:    path.Base(name),
		Chunks:  chunks,
		Buffers: mesh.Flatten(chunks),
		log:     log,
	}

	st := m.Stats()
	log.Info("model loaded",
		zap.String("path", objPath),
		zap.Int("chunks", st.Chunks),
		zap.Int("vertices", st.Vertices),
		zap.Int("triangles", st.Triangles),
		zap.Int("materials", table.Len()))

	return m, nil
}

// loadMaterials parses every referenced material library. A missing library
// is logged and skipped; its materials fall back to the default.
func loadMaterials(am *assets.Manager, libs []string, log *zap.Logger) (*mesh.MaterialTable, error) {
	table := mesh.NewMaterialTable()
	for _, lib := range libs {
		data, err := am.Load(lib)
		if errors.Is(err, assets.ErrNotFound) {
			log.Warn("material library not found", zap.String("library", lib))
			continue
		}
		if err != nil {
			return nil, err
		}

		mtl, err := formats.ParseMTL(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", lib, err)
		}
		table.AddLibrary(mtl, path.Dir(lib))
		log.Debug("material library loaded",
			zap.String("library", lib),
			zap.Int("materials", len(mtl.Materials)))
	}
	return table, nil
}

// Uploaded reports whether GPU resources exist.
func (m *Model) Uploaded() bool {
	return m.uploaded
}

// Upload creates the vertex array, one buffer per attribute, the index
// buffer and one texture per distinct chunk image. On failure everything
// created so far is released.
func (m *Model) Upload(b gpu.Backend, layout gpu.Layout) (err error) {
	if m.uploaded {
		return ErrUploaded
	}
	defer func() {
		if err != nil {
			m.release(b)
		}
	}()

	if m.vao, err = b.CreateVertexArray(); err != nil {
		return fmt.Errorf("uploading %s: %w", m.Name, err)
	}

	for _, a := range gpu.Attributes() {
		slot, err := layout.Slot(a)
		if err != nil {
			return fmt.Errorf("uploading %s: %w", m.Name, err)
		}
		buf, err := b.CreateArrayBuffer(slot, m.attributeData(a), a.Components())
		if err != nil {
			return fmt.Errorf("uploading %s %s: %w", m.Name, a, err)
		}
		m.buffers = append(m.buffers, buf)
	}

	ebo, err := b.CreateIndexBuffer(m.Buffers.Indices)
	if err != nil {
		return fmt.Errorf("uploading %s indices: %w", m.Name, err)
	}
	m.buffers = append(m.buffers, ebo)

	if err := b.BindVertexArray(0); err != nil {
		return err
	}

	shared := make(map[*image.RGBA]gpu.Texture)
	for _, c := range m.Chunks {
		img := c.Image
		if img == nil {
			img = texture.SolidColor(c.Material.Diffuse)
		}
		tex, ok := shared[img]
		if !ok {
			if tex, err = b.CreateTexture(img); err != nil {
				return fmt.Errorf("uploading %s texture for %q: %w", m.Name, c.Material.Name, err)
			}
			shared[img] = tex
			m.owned = append(m.owned, tex)
		}
		m.textures = append(m.textures, tex)
	}

	m.uploaded = true
	if m.log != nil {
		m.log.Debug("model uploaded",
			zap.String("model", m.Name),
			zap.Int("buffers", len(m.buffers)),
			zap.Int("textures", len(m.owned)))
	}
	return nil
}

func (m *Model) attributeData(a gpu.Attribute) []float32 {
	switch a {
	case gpu.Position:
		return m.Buffers.Positions
	case gpu.Normal:
		return m.Buffers.Normals
	case gpu.UV:
		return m.Buffers.UVs
	case gpu.Ambient:
		return m.Buffers.Ambient
	case gpu.Diffuse:
		return m.Buffers.Diffuse
	case gpu.Specular:
		return m.Buffers.Specular
	case gpu.SpecularExponent:
		return m.Buffers.SpecularExponent
	}
	return nil
}

// Draw renders every chunk with its own texture and index range.
func (m *Model) Draw(b gpu.Backend) error {
	if !m.uploaded {
		return ErrNotUploaded
	}
	for i, r := range m.Buffers.Ranges {
		if err := b.Draw(m.vao, m.textures[i], r.FirstIndex, r.IndexCount); err != nil {
			return fmt.Errorf("drawing %s chunk %q: %w", m.Name, m.Chunks[i].Name, err)
		}
	}
	return nil
}

// Release frees GPU resources. The descriptor stays valid and may be
// uploaded again.
func (m *Model) Release(b gpu.Backend) {
	m.release(b)
}

func (m *Model) release(b gpu.Backend) {
	b.DeleteTextures(m.owned...)
	b.DeleteBuffers(m.buffers...)
	b.DeleteVertexArray(m.vao)

	m.vao = 0
	m.buffers = nil
	m.textures = nil
	m.owned = nil
	m.uploaded = false
}

// Stats returns chunk, vertex, triangle and texture counts.
func (m *Model) Stats() Stats {
	st := Stats{
		Chunks:    len(m.Chunks),
		Vertices:  m.Buffers.VertexCount(),
		Triangles: m.Buffers.TriangleCount(),
	}
	seen := make(map[*image.RGBA]bool)
	for _, c := range m.Chunks {
		if c.Image != nil && !seen[c.Image] {
			seen[c.Image] = true
			st.Textures++
		}
	}
	return st
}
