// Package formats provides parsers for Wavefront OBJ geometry and MTL material files.
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

// NoIndex marks an absent texcoord or normal reference in a face corner.
const NoIndex = -1

// OBJ format errors.
var (
	ErrMalformedOBJ    = errors.New("malformed OBJ data")
	ErrIndexOutOfRange = errors.New("OBJ index out of range")
)

// Corner is one vertex reference of a face. Indices are 0-based.
type Corner struct {
	Position int // Index into OBJ.Positions
	TexCoord int // Index into OBJ.TexCoords, or NoIndex
	Normal   int // Index into OBJ.Normals, or NoIndex
}

// Face is a primitive as written in the file. Triangles have three corners;
// polygons, lines (l) and points (p) keep their own corner count.
type Face struct {
	Corners []Corner
	Line    int // Source line, for error messages
}

// IsTriangle reports whether the face has exactly three corners.
func (f Face) IsTriangle() bool {
	return len(f.Corners) == 3
}

// Group is a run of faces sharing an object/group name and a material.
type Group struct {
	Name     string // From the last g or o statement
	Material string // From the last usemtl statement, empty if none
	Faces    []Face
}

// OBJ holds a parsed Wavefront OBJ file.
type OBJ struct {
	Positions    [][3]float32
	TexCoords    [][2]float32
	Normals      [][3]float32
	Groups       []Group
	MaterialLibs []string // mtllib references as written, relative to the OBJ file
}

// FaceCount returns the number of faces over all groups.
func (o *OBJ) FaceCount() int {
	n := 0
	for i := range o.Groups {
		n += len(o.Groups[i].Faces)
	}
	return n
}

// LoadOBJ reads and parses an OBJ file from disk.
func LoadOBJ(path string) (*OBJ, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj %q: %w", path, err)
	}
	defer f.Close()

	obj, err := ParseOBJ(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return obj, nil
}

// ParseOBJ parses OBJ data. Faces are not triangulated.
func ParseOBJ(r io.Reader) (*OBJ, error) {
	p := &objParser{obj: &OBJ{}}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		p.line++
		if err := p.parseLine(scanner.Text()); err != nil {
			return nil, fmt.Errorf("line %d: %w", p.line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan obj: %w", err)
	}

	p.flush()
	return p.obj, nil
}

type objParser struct {
	obj  *OBJ
	cur  Group
	line int
}

func (p *objParser) parseLine(line string) error {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	switch fields[0] {
	case "v":
		v, err := parseFloats(fields[1:], 3, 7) // xyz, xyzw or xyz + rgb
		if err != nil {
			return fmt.Errorf("vertex: %w", err)
		}
		p.obj.Positions = append(p.obj.Positions, [3]float32{v[0], v[1], v[2]})

	case "vt":
		v, err := parseFloats(fields[1:], 1, 3)
		if err != nil {
			return fmt.Errorf("texcoord: %w", err)
		}
		uv := [2]float32{v[0], 0}
		if len(v) > 1 {
			uv[1] = v[1]
		}
		p.obj.TexCoords = append(p.obj.TexCoords, uv)

	case "vn":
		v, err := parseFloats(fields[1:], 3, 3)
		if err != nil {
			return fmt.Errorf("normal: %w", err)
		}
		p.obj.Normals = append(p.obj.Normals, [3]float32{v[0], v[1], v[2]})

	case "f", "l", "p":
		if len(fields) < 2 {
			return fmt.Errorf("%w: %q with no corners", ErrMalformedOBJ, fields[0])
		}
		face := Face{Corners: make([]Corner, 0, len(fields)-1), Line: p.line}
		for _, tok := range fields[1:] {
			c, err := p.parseCorner(tok)
			if err != nil {
				return err
			}
			face.Corners = append(face.Corners, c)
		}
		p.cur.Faces = append(p.cur.Faces, face)

	case "g", "o":
		name := strings.Join(fields[1:], " ")
		p.flush()
		p.cur = Group{Name: name, Material: p.cur.Material}

	case "usemtl":
		if len(fields) < 2 {
			return fmt.Errorf("%w: usemtl without a name", ErrMalformedOBJ)
		}
		if len(p.cur.Faces) > 0 {
			p.flush()
			p.cur = Group{Name: p.cur.Name}
		}
		p.cur.Material = strings.Join(fields[1:], " ")

	case "mtllib":
		p.obj.MaterialLibs = append(p.obj.MaterialLibs, fields[1:]...)
	}

	return nil
}

// flush appends the current group if it has faces and clears its faces.
func (p *objParser) flush() {
	if len(p.cur.Faces) == 0 {
		return
	}
	p.obj.Groups = append(p.obj.Groups, p.cur)
	p.cur.Faces = nil
}

// parseCorner parses v, v/vt, v//vn or v/vt/vn.
func (p *objParser) parseCorner(tok string) (Corner, error) {
	parts := strings.Split(tok, "/")
	if len(parts) > 3 {
		return Corner{}, fmt.Errorf("%w: corner %q", ErrMalformedOBJ, tok)
	}

	c := Corner{TexCoord: NoIndex, Normal: NoIndex}
	var err error

	c.Position, err = resolveIndex(parts[0], len(p.obj.Positions))
	if err != nil {
		return Corner{}, fmt.Errorf("corner %q position: %w", tok, err)
	}
	if len(parts) > 1 && parts[1] != "" {
		c.TexCoord, err = resolveIndex(parts[1], len(p.obj.TexCoords))
		if err != nil {
			return Corner{}, fmt.Errorf("corner %q texcoord: %w", tok, err)
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		c.Normal, err = resolveIndex(parts[2], len(p.obj.Normals))
		if err != nil {
			return Corner{}, fmt.Errorf("corner %q normal: %w", tok, err)
		}
	}
	return c, nil
}

// resolveIndex converts a 1-based or negative (relative) OBJ index to a 0-based one.
func resolveIndex(s string, count int) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: index %q", ErrMalformedOBJ, s)
	}

	var idx int
	switch {
	case n > 0:
		idx = n - 1
	case n < 0:
		idx = count + n
	default:
		return 0, fmt.Errorf("%w: index 0", ErrIndexOutOfRange)
	}

	if idx < 0 || idx >= count {
		return 0, fmt.Errorf("%w: %d (have %d)", ErrIndexOutOfRange, n, count)
	}
	return idx, nil
}

// parseFloats parses between lo and hi float fields.
func parseFloats(fields []string, lo, hi int) ([]float32, error) {
	if len(fields) < lo || len(fields) > hi {
		return nil, fmt.Errorf("%w: expected %d-%d values, got %d", ErrMalformedOBJ, lo, hi, len(fields))
	}
	out := make([]float32, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", ErrMalformedOBJ, f)
		}
		out[i] = float32(v)
	}
	return out, nil
}
