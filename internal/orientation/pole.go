package orientation

import (
	"math"

	"github.com/san-kum/polycryst/internal/tensor"
)

// Family is a crystallographic direction family used for pole figures.
type Family struct {
	Name string
	Dir  tensor.Vec3
}

var (
	Pole100 = Family{Name: "100", Dir: tensor.Vec3{1, 0, 0}}
	Pole110 = Family{Name: "110", Dir: tensor.Vec3{1, 1, 0}}
	Pole111 = Family{Name: "111", Dir: tensor.Vec3{1, 1, 1}}

	Families = []Family{Pole100, Pole110, Pole111}
)

// Pole returns the row-vector product of the unit direction with r.
func Pole(r tensor.Mat3, dir tensor.Vec3) tensor.Vec3 {
	u, ok := dir.Normalize()
	if !ok {
		return tensor.Vec3{}
	}
	return u.MulMat(r)
}

// PoleFigure projects one direction through every orientation.
func PoleFigure(rotations []tensor.Mat3, dir tensor.Vec3) []tensor.Vec3 {
	out := make([]tensor.Vec3, len(rotations))
	for i, r := range rotations {
		out[i] = Pole(r, dir)
	}
	return out
}

// Stereographic projects a unit vector onto the equatorial plane. Poles in
// the lower hemisphere are inverted through the origin first.
func Stereographic(p tensor.Vec3) (x, y float64) {
	if p[2] < 0 {
		p = p.Scale(-1)
	}
	d := 1 + p[2]
	if d == 0 || math.IsNaN(d) {
		return 0, 0
	}
	return p[0] / d, p[1] / d
}
