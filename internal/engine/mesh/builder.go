package mesh

import (
	"fmt"
	"image"

	"go.uber.org/zap"

	"github.com/Faultbox/meshview/internal/logger"
	"github.com/Faultbox/meshview/pkg/formats"
)

// ImageResolver produces the texture image for a chunk's material.
type ImageResolver interface {
	Resolve(m Material) (*image.RGBA, error)
}

// Builder turns a parsed OBJ and its materials into chunks.
type Builder struct {
	// Default is used for groups with no material or an unknown one.
	Default Material
	// Textures resolves chunk images. When nil, chunks have no image.
	Textures ImageResolver

	log *zap.Logger
}

// NewBuilder creates a builder using DefaultMaterial and the given resolver.
func NewBuilder(textures ImageResolver) *Builder {
	return &Builder{
		Default:  DefaultMaterial(),
		Textures: textures,
		log:      logger.Named("mesh"),
	}
}

// Build splits every group of obj into a chunk, in group order. Normals are
// estimated once over the whole mesh. Any failure aborts the build.
func (b *Builder) Build(obj *formats.OBJ, table *MaterialTable) ([]*Chunk, error) {
	log := b.log
	if log == nil {
		log = logger.Named("mesh")
	}

	geom, err := NewGeometry(obj)
	if err != nil {
		return nil, err
	}

	chunks := make([]*Chunk, 0, len(obj.Groups))
	for gi := range obj.Groups {
		group := &obj.Groups[gi]

		mat, found := table.Resolve(group.Material, b.Default)
		if !found {
			log.Debug("using default material",
				zap.String("group", group.Name),
				zap.String("material", group.Material))
		}

		chunk, err := SplitGroup(group, geom, mat)
		if err != nil {
			return nil, err
		}

		if b.Textures != nil {
			img, err := b.Textures.Resolve(mat)
			if err != nil {
				return nil, fmt.Errorf("group %q material %q: %w", group.Name, mat.Name, err)
			}
			chunk.Image = img
		}

		log.Debug("chunk built",
			zap.String("group", chunk.Name),
			zap.String("material", mat.Name),
			zap.Int("vertices", len(chunk.Vertices)),
			zap.Int("triangles", chunk.TriangleCount()),
			zap.Bool("textured", mat.Textured()))

		chunks = append(chunks, chunk)
	}

	return chunks, nil
}
