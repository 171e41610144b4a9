package texture

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // gif decoder
	_ "image/jpeg" // jpeg decoder
	_ "image/png"  // png decoder
	"path"
	"strings"
	"sync"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp" // bmp decoder
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // tiff decoder
	_ "golang.org/x/image/webp" // webp decoder

	"github.com/Faultbox/meshview/internal/assets"
	"github.com/Faultbox/meshview/internal/engine/mesh"
	"github.com/Faultbox/meshview/internal/logger"
)

// Resolver produces chunk images: the decoded texture map for textured
// materials, a 1x1 image of the diffuse color otherwise. Decoded maps are
// cached per path.
type Resolver struct {
	Assets *assets.Manager

	mu     sync.Mutex
	images map[string]*image.RGBA
	log    *zap.Logger
}

// NewResolver creates a resolver reading texture files through am.
func NewResolver(am *assets.Manager) *Resolver {
	return &Resolver{
		Assets: am,
		images: make(map[string]*image.RGBA),
		log:    logger.Named("texture"),
	}
}

// Resolve implements mesh.ImageResolver.
func (r *Resolver) Resolve(m mesh.Material) (*image.RGBA, error) {
	if !m.Textured() {
		return SolidColor(m.Diffuse), nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if img, ok := r.images[m.TexturePath]; ok {
		return img, nil
	}

	img, err := r.load(m.TexturePath)
	if err != nil {
		return nil, fmt.Errorf("texture %s for material %q: %w", m.TexturePath, m.Name, err)
	}

	if r.images == nil {
		r.images = make(map[string]*image.RGBA)
	}
	r.images[m.TexturePath] = img

	if r.log != nil {
		b := img.Bounds()
		r.log.Debug("texture loaded",
			zap.String("path", m.TexturePath),
			zap.Int("width", b.Dx()),
			zap.Int("height", b.Dy()))
	}
	return img, nil
}

func (r *Resolver) load(name string) (*image.RGBA, error) {
	if r.Assets == nil {
		return nil, fmt.Errorf("no asset manager")
	}
	data, err := r.Assets.Load(name)
	if err != nil {
		return nil, err
	}
	return Decode(name, data)
}

// Decode decodes image data, choosing the decoder by file extension for TGA
// and by content for every registered format.
func Decode(name string, data []byte) (*image.RGBA, error) {
	if strings.EqualFold(path.Ext(name), ".tga") {
		return DecodeTGA(data)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("decoding %s: empty %s image", name, format)
	}
	return ToRGBA(img), nil
}

// ToRGBA converts any image to *image.RGBA with its origin at (0,0).
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}

// SolidColor returns a 1x1 opaque image of c. Channels are clamped to [0,1]
// and rounded to 8 bits.
func SolidColor(c mgl32.Vec3) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.SetRGBA(0, 0, color.RGBA{
		R: quantize(c[0]),
		G: quantize(c[1]),
		B: quantize(c[2]),
		A: 255,
	})
	return img
}

func quantize(v float32) uint8 {
	v = math32.Max(0, math32.Min(1, v))
	return uint8(math32.Floor(v*255 + 0.5))
}
