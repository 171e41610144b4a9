// Package texture decodes texture map files and synthesizes solid-color
// textures for untextured materials.
package texture

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// TGA image types.
const (
	TGATypeUncompressed = 2  // Uncompressed true-color
	TGATypeRLE          = 10 // RLE compressed true-color
)

const tgaHeaderSize = 18

// ErrTGA is wrapped by every TGA decoding error.
var ErrTGA = errors.New("invalid TGA")

// DecodeTGA decodes an uncompressed or RLE true-color TGA with 24 or 32 bits
// per pixel. Bottom-up images are flipped so row 0 is the top.
func DecodeTGA(data []byte) (*image.RGBA, error) {
	if len(data) < tgaHeaderSize {
		return nil, fmt.Errorf("%w: header truncated", ErrTGA)
	}

	idLength := int(data[0])
	colorMapType := data[1]
	imageType := int(data[2])
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bpp := int(data[16])
	topToBottom := data[17]&0x20 != 0

	switch {
	case colorMapType != 0:
		return nil, fmt.Errorf("%w: color-mapped images not supported", ErrTGA)
	case imageType != TGATypeUncompressed && imageType != TGATypeRLE:
		return nil, fmt.Errorf("%w: unsupported image type %d", ErrTGA, imageType)
	case bpp != 24 && bpp != 32:
		return nil, fmt.Errorf("%w: unsupported bit depth %d", ErrTGA, bpp)
	case width == 0 || height == 0:
		return nil, fmt.Errorf("%w: empty image %dx%d", ErrTGA, width, height)
	}

	offset := tgaHeaderSize + idLength
	if offset > len(data) {
		return nil, fmt.Errorf("%w: id field truncated", ErrTGA)
	}

	w := &tgaWriter{
		img:         image.NewRGBA(image.Rect(0, 0, width, height)),
		width:       width,
		height:      height,
		topToBottom: topToBottom,
	}
	r := &tgaReader{data: data[offset:], bytesPerPixel: bpp / 8}

	var err error
	if imageType == TGATypeUncompressed {
		err = decodeTGARaw(r, w)
	} else {
		err = decodeTGARLE(r, w)
	}
	if err != nil {
		return nil, err
	}
	return w.img, nil
}

func decodeTGARaw(r *tgaReader, w *tgaWriter) error {
	for !w.full() {
		c, err := r.pixel()
		if err != nil {
			return err
		}
		w.put(c)
	}
	return nil
}

func decodeTGARLE(r *tgaReader, w *tgaWriter) error {
	for !w.full() {
		header, err := r.byte()
		if err != nil {
			return err
		}
		count := int(header&0x7F) + 1

		if header&0x80 != 0 {
			c, err := r.pixel()
			if err != nil {
				return err
			}
			for i := 0; i < count && !w.full(); i++ {
				w.put(c)
			}
			continue
		}

		for i := 0; i < count && !w.full(); i++ {
			c, err := r.pixel()
			if err != nil {
				return err
			}
			w.put(c)
		}
	}
	return nil
}

// tgaReader reads BGR(A) pixels from the pixel data section.
type tgaReader struct {
	data          []byte
	pos           int
	bytesPerPixel int
}

func (r *tgaReader) byte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, fmt.Errorf("%w: pixel data truncated", ErrTGA)
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

func (r *tgaReader) pixel() (color.RGBA, error) {
	if r.pos+r.bytesPerPixel > len(r.data) {
		return color.RGBA{}, fmt.Errorf("%w: pixel data truncated", ErrTGA)
	}
	p := r.data[r.pos : r.pos+r.bytesPerPixel]
	r.pos += r.bytesPerPixel

	c := color.RGBA{R: p[2], G: p[1], B: p[0], A: 255}
	if r.bytesPerPixel == 4 {
		c.A = p[3]
	}
	return c, nil
}

// tgaWriter places pixels in file order, honoring the row direction.
type tgaWriter struct {
	img           *image.RGBA
	width, height int
	topToBottom   bool
	n             int
}

func (w *tgaWriter) full() bool {
	return w.n >= w.width*w.height
}

func (w *tgaWriter) put(c color.RGBA) {
	x, y := w.n%w.width, w.n/w.width
	if !w.topToBottom {
		y = w.height - 1 - y
	}
	w.img.SetRGBA(x, y, c)
	w.n++
}
