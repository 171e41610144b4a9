package formats

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// MTL format errors.
var (
	ErrMalformedMTL = errors.New("malformed MTL data")
	ErrNoMaterial   = errors.New("MTL statement before newmtl")
)

// Illumination selects which color channels a material defines.
type Illumination int

const (
	IllumAmbient                Illumination = 0 // Ambient color only
	IllumAmbientDiffuse         Illumination = 1 // Ambient + diffuse
	IllumAmbientDiffuseSpecular Illumination = 2 // Ambient + diffuse + specular highlight
)

// String returns a human-readable illumination model name.
func (i Illumination) String() string {
	switch i {
	case IllumAmbient:
		return "Ambient"
	case IllumAmbientDiffuse:
		return "AmbientDiffuse"
	case IllumAmbientDiffuseSpecular:
		return "AmbientDiffuseSpecular"
	default:
		return fmt.Sprintf("Unknown(%d)", int(i))
	}
}

// MTLMaterial is one newmtl block.
type MTLMaterial struct {
	Name             string
	Ambient          [3]float32 // Ka
	Diffuse          [3]float32 // Kd
	Specular         [3]float32 // Ks
	SpecularExponent float32    // Ns
	Illumination     Illumination
	DiffuseMap       string // map_Kd, relative to the MTL file, empty if none
}

// MTL holds a parsed material library.
type MTL struct {
	Materials []*MTLMaterial // In file order; a redefined name replaces the earlier entry
}

// Get returns the material with the given name.
func (m *MTL) Get(name string) (*MTLMaterial, bool) {
	for _, mat := range m.Materials {
		if mat.Name == name {
			return mat, true
		}
	}
	return nil, false
}

// LoadMTL reads and parses an MTL file from disk.
func LoadMTL(path string) (*MTL, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open mtl %q: %w", path, err)
	}
	defer f.Close()

	mtl, err := ParseMTL(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return mtl, nil
}

// ParseMTL parses MTL data.
func ParseMTL(r io.Reader) (*MTL, error) {
	mtl := &MTL{}
	byName := make(map[string]int)
	var cur *MTLMaterial

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}

		if fields[0] == "newmtl" {
			if len(fields) < 2 {
				return nil, fmt.Errorf("line %d: %w: newmtl without a name", line, ErrMalformedMTL)
			}
			cur = &MTLMaterial{
				Name:             strings.Join(fields[1:], " "),
				SpecularExponent: 1,
				Illumination:     IllumAmbientDiffuse,
			}
			if idx, ok := byName[cur.Name]; ok {
				mtl.Materials[idx] = cur
			} else {
				byName[cur.Name] = len(mtl.Materials)
				mtl.Materials = append(mtl.Materials, cur)
			}
			continue
		}

		if err := parseMaterialStatement(cur, fields); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan mtl: %w", err)
	}

	return mtl, nil
}

func parseMaterialStatement(cur *MTLMaterial, fields []string) error {
	var err error
	switch fields[0] {
	case "Ka", "Kd", "Ks", "Ns", "illum", "map_Kd":
		if cur == nil {
			return fmt.Errorf("%w: %s", ErrNoMaterial, fields[0])
		}
	default:
		return nil
	}

	switch fields[0] {
	case "Ka":
		cur.Ambient, err = parseColor(fields[1:])
	case "Kd":
		cur.Diffuse, err = parseColor(fields[1:])
	case "Ks":
		cur.Specular, err = parseColor(fields[1:])
	case "Ns":
		if len(fields) != 2 {
			return fmt.Errorf("%w: Ns expects one value", ErrMalformedMTL)
		}
		var v float64
		v, err = strconv.ParseFloat(fields[1], 32)
		cur.SpecularExponent = float32(v)
	case "illum":
		cur.Illumination, err = parseIllumination(fields[1:])
	case "map_Kd":
		if len(fields) < 2 {
			return fmt.Errorf("%w: map_Kd without a file", ErrMalformedMTL)
		}
		// Option flags (-s, -o, -bm ...) precede the file name.
		cur.DiffuseMap = fields[len(fields)-1]
	}
	if err != nil {
		return fmt.Errorf("%s in %q: %w", fields[0], cur.Name, err)
	}
	return nil
}

// parseColor parses "r g b" or a single gray value.
func parseColor(fields []string) ([3]float32, error) {
	if len(fields) != 1 && len(fields) != 3 {
		return [3]float32{}, fmt.Errorf("%w: expected 1 or 3 color values, got %d", ErrMalformedMTL, len(fields))
	}
	var c [3]float32
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return [3]float32{}, fmt.Errorf("%w: %q is not a number", ErrMalformedMTL, f)
		}
		c[i] = float32(v)
	}
	if len(fields) == 1 {
		c[1], c[2] = c[0], c[0]
	}
	return c, nil
}

// parseIllumination maps an illum value; models above 2 all enable the specular highlight.
func parseIllumination(fields []string) (Illumination, error) {
	if len(fields) != 1 {
		return 0, fmt.Errorf("%w: illum expects one value", ErrMalformedMTL)
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: illum %q", ErrMalformedMTL, fields[0])
	}
	if n > int(IllumAmbientDiffuseSpecular) {
		return IllumAmbientDiffuseSpecular, nil
	}
	return Illumination(n), nil
}
