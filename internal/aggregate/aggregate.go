// Package aggregate reduces per-grain state to polycrystal quantities in the
// sample frame.
package aggregate

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/polycryst/internal/grain"
	"github.com/san-kum/polycryst/internal/tensor"
	"gonum.org/v1/gonum/stat"
)

// Weighting selects how grains contribute to tensor means.
type Weighting int

const (
	// Uniform gives every grain the same weight.
	Uniform Weighting = iota
	// Volume weights grains by r³.
	Volume
)

func ParseWeighting(s string) (Weighting, error) {
	switch strings.ToLower(s) {
	case "", "uniform":
		return Uniform, nil
	case "volume":
		return Volume, nil
	default:
		return Uniform, fmt.Errorf("unknown weighting %q (want uniform or volume)", s)
	}
}

func (w Weighting) String() string {
	if w == Volume {
		return "volume"
	}
	return "uniform"
}

func (w Weighting) weights(t *grain.Table) []float64 {
	if w != Volume {
		return nil
	}
	ws := make([]float64, t.Len())
	for i, r := range t.GrainSize {
		ws[i] = r * r * r
	}
	return ws
}

// MeanTensor averages R·X·Rᵀ over grains, where X is read from col.
func MeanTensor(t *grain.Table, w Weighting, col func(id grain.ID) tensor.Mat3) tensor.Mat3 {
	n := t.Len()
	if n == 0 {
		return tensor.Mat3{}
	}

	rotated := make([]tensor.Mat3, n)
	for i := 0; i < n; i++ {
		rotated[i] = col(grain.ID(i)).Rotate(t.Rotation[i])
	}

	weights := w.weights(t)
	comp := make([]float64, n)
	var out tensor.Mat3
	for a := 0; a < 3; a++ {
		for b := 0; b < 3; b++ {
			for i := range rotated {
				comp[i] = rotated[i][a][b]
			}
			out[a][b] = stat.Mean(comp, weights)
		}
	}
	return out
}

// MeanSigma is the polycrystal stress in MPa.
func MeanSigma(t *grain.Table, w Weighting) tensor.Mat3 {
	return MeanTensor(t, w, func(id grain.ID) tensor.Mat3 { return t.Sigma[id].Tensor() })
}

// MeanEps is the polycrystal strain.
func MeanEps(t *grain.Table, w Weighting) tensor.Mat3 {
	return MeanTensor(t, w, func(id grain.ID) tensor.Mat3 { return t.Eps[id].Tensor() })
}

// MeanGrainSize is the arithmetic mean radius.
func MeanGrainSize(t *grain.Table) float64 {
	if t.Len() == 0 {
		return 0
	}
	return stat.Mean(t.GrainSize, nil)
}

// CountRecrystallized returns the number of nucleated grains.
func CountRecrystallized(t *grain.Table) int {
	var n int
	for _, s := range t.Status {
		if s == grain.Recrystallized {
			n++
		}
	}
	return n
}

// StrainIntensity is sqrt(2/3 ε:ε).
func StrainIntensity(eps tensor.Mat3) float64 {
	return math.Sqrt(2.0 / 3.0 * eps.Dot(eps))
}

// StressIntensity is sqrt(3/2 σ:σ).
func StressIntensity(sigma tensor.Mat3) float64 {
	return math.Sqrt(3.0 / 2.0 * sigma.Dot(sigma))
}
