package slip

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/san-kum/polycryst/internal/grain"
	"github.com/san-kum/polycryst/internal/tensor"
)

// NumCanonical is the number of unsigned slip systems read from input.
const NumCanonical = grain.NumSlipSystems / 2

var (
	ErrMalformed  = errors.New("slip: malformed direction data")
	ErrZeroVector = errors.New("slip: zero direction vector")
)

// InputError locates a problem in a direction file.
type InputError struct {
	File string
	Line int
	Err  error
}

func (e *InputError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %v", e.File, e.Line, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.File, e.Err)
}

func (e *InputError) Unwrap() error { return e.Err }

// Geometry is the slip geometry shared by every grain. It is read-only after
// construction.
type Geometry struct {
	Burgers grain.DirectionSet
	Normals grain.DirectionSet
	Schmid  grain.SchmidSet
}

// DefaultBurgers and DefaultNormals are the {111}<110> systems of FCC.
var (
	DefaultBurgers = [NumCanonical]tensor.Vec3{
		{0, 1, -1}, {1, 0, -1}, {1, -1, 0},
		{0, 1, -1}, {1, 0, 1}, {1, 1, 0},
		{0, 1, 1}, {1, 0, -1}, {1, 1, 0},
		{0, 1, 1}, {1, 0, 1}, {1, -1, 0},
	}
	DefaultNormals = [NumCanonical]tensor.Vec3{
		{1, 1, 1}, {1, 1, 1}, {1, 1, 1},
		{-1, 1, 1}, {-1, 1, 1}, {-1, 1, 1},
		{1, -1, 1}, {1, -1, 1}, {1, -1, 1},
		{1, 1, -1}, {1, 1, -1}, {1, 1, -1},
	}
)

// DefaultFCC returns the built-in FCC geometry.
func DefaultFCC() *Geometry {
	g, err := NewGeometry(DefaultBurgers, DefaultNormals)
	if err != nil {
		panic(err)
	}
	return g
}

// NewGeometry normalizes the canonical directions and expands them into the
// 24 signed systems.
func NewGeometry(burgers, normals [NumCanonical]tensor.Vec3) (*Geometry, error) {
	g := &Geometry{}
	for k := 0; k < NumCanonical; k++ {
		b, ok := burgers[k].Normalize()
		if !ok {
			return nil, fmt.Errorf("burgers vector %d: %w", k, ErrZeroVector)
		}
		n, ok := normals[k].Normalize()
		if !ok {
			return nil, fmt.Errorf("normal vector %d: %w", k, ErrZeroVector)
		}

		g.Burgers[2*k] = b
		g.Burgers[2*k+1] = b.Scale(-1)
		g.Normals[2*k] = n
		g.Normals[2*k+1] = n
	}
	for s := 0; s < grain.NumSlipSystems; s++ {
		g.Schmid[s] = tensor.Outer(g.Burgers[s], g.Normals[s])
	}
	return g, nil
}

// LoadDirections reads NumCanonical rows of three whitespace separated
// numbers. Blank lines and lines starting with '#' are skipped. name is used
// in error messages.
func LoadDirections(r io.Reader, name string) ([NumCanonical]tensor.Vec3, error) {
	var dirs [NumCanonical]tensor.Vec3

	sc := bufio.NewScanner(r)
	line, count := 0, 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		if count == NumCanonical {
			return dirs, &InputError{File: name, Line: line, Err: fmt.Errorf("%w: more than %d rows", ErrMalformed, NumCanonical)}
		}

		fields := strings.Fields(text)
		if len(fields) != 3 {
			return dirs, &InputError{File: name, Line: line, Err: fmt.Errorf("%w: want 3 values, got %d", ErrMalformed, len(fields))}
		}
		var v tensor.Vec3
		for i, f := range fields {
			x, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return dirs, &InputError{File: name, Line: line, Err: fmt.Errorf("%w: %v", ErrMalformed, err)}
			}
			v[i] = x
		}
		if _, ok := v.Normalize(); !ok {
			return dirs, &InputError{File: name, Line: line, Err: ErrZeroVector}
		}
		dirs[count] = v
		count++
	}
	if err := sc.Err(); err != nil {
		return dirs, &InputError{File: name, Err: err}
	}
	if count != NumCanonical {
		return dirs, &InputError{File: name, Line: line, Err: fmt.Errorf("%w: got %d rows, want %d", ErrMalformed, count, NumCanonical)}
	}
	return dirs, nil
}

// LoadGeometryFiles builds a geometry from a burgers vector file and a plane
// normal file.
func LoadGeometryFiles(burgersPath, normalsPath string) (*Geometry, error) {
	b, err := loadFile(burgersPath)
	if err != nil {
		return nil, err
	}
	n, err := loadFile(normalsPath)
	if err != nil {
		return nil, err
	}
	return NewGeometry(b, n)
}

func loadFile(path string) ([NumCanonical]tensor.Vec3, error) {
	f, err := os.Open(path)
	if err != nil {
		return [NumCanonical]tensor.Vec3{}, &InputError{File: path, Err: err}
	}
	defer f.Close()
	return LoadDirections(f, path)
}
