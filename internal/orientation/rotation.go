// Package orientation manages crystal lattice orientations: uniform random
// sampling, orthogonality-checked writes, optional lattice spin and pole
// projections for texture output.
package orientation

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/san-kum/polycryst/internal/grain"
	"github.com/san-kum/polycryst/internal/tensor"
)

// Tolerance bounds the largest component of R·Rᵀ - I.
const Tolerance = 1e-5

var ErrNotOrthogonal = errors.New("orientation: matrix is not orthogonal")

// IsOrthogonal reports whether m·mᵀ equals the identity within Tolerance.
func IsOrthogonal(m tensor.Mat3) bool {
	if !m.IsFinite() {
		return false
	}
	return m.Mul(m.T()).IsIdentity(Tolerance)
}

// Check returns ErrNotOrthogonal for a matrix that is not a rotation. Every
// orientation written to a grain row passes through it.
func Check(m tensor.Mat3) error {
	if !IsOrthogonal(m) {
		return ErrNotOrthogonal
	}
	return nil
}

// Set stores m as the orientation of grain id. A matrix that fails the
// orthogonality check is rejected and the stored orientation is unchanged.
func Set(t *grain.Table, id grain.ID, m tensor.Mat3) error {
	if err := Check(m); err != nil {
		return fmt.Errorf("grain %d: %w", id, err)
	}
	t.Rotation[id] = m
	return nil
}

// Random draws an orientation uniformly distributed over SO(3).
func Random(rng *rand.Rand) tensor.Mat3 {
	a := rng.Float64() * 2 * math.Pi
	b := math.Acos(2*rng.Float64() - 1)
	g := rng.Float64() * 2 * math.Pi
	return FromEuler(a, b, g)
}

// FromEuler builds the rotation for Euler angles (a, b, g) in ZYZ convention.
func FromEuler(a, b, g float64) tensor.Mat3 {
	ca, sa := math.Cos(a), math.Sin(a)
	cb, sb := math.Cos(b), math.Sin(b)
	cg, sg := math.Cos(g), math.Sin(g)

	return tensor.Mat3{
		{ca*cb*cg - sa*sg, -cg*sa - ca*cb*sg, ca * sb},
		{cb*cg*sa + ca*sg, ca*cg - cb*sa*sg, sa * sb},
		{-cg * sb, sb * sg, cb},
	}
}

// Initialize assigns a random orientation to every grain. A single-grain
// population keeps its current orientation so that it stays aligned with the
// sample axes.
func Initialize(t *grain.Table, rng *rand.Rand) error {
	if t.Len() <= 1 {
		return nil
	}
	for i := 0; i < t.Len(); i++ {
		if err := Set(t, grain.ID(i), Random(rng)); err != nil {
			return err
		}
	}
	return nil
}
