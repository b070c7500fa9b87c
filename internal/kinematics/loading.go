package kinematics

import (
	"fmt"
	"sort"

	"github.com/san-kum/polycryst/internal/tensor"
)

// UniaxialTension stretches along x with incompressible lateral contraction.
func UniaxialTension(rate float64) tensor.Mat3 {
	return tensor.Diag(rate, -rate/2, -rate/2)
}

func UniaxialCompression(rate float64) tensor.Mat3 {
	return UniaxialTension(-rate)
}

// SimpleShear shears the x direction along y.
func SimpleShear(rate float64) tensor.Mat3 {
	return tensor.Mat3{{0, rate, 0}, {0, 0, 0}, {0, 0, 0}}
}

func PlaneStrain(rate float64) tensor.Mat3 {
	return tensor.Diag(rate, 0, -rate)
}

var presets = map[string]func(float64) tensor.Mat3{
	"uniaxial_tension":     UniaxialTension,
	"uniaxial_compression": UniaxialCompression,
	"simple_shear":         SimpleShear,
	"plane_strain":         PlaneStrain,
}

// Preset returns the named standard loading at the given rate.
func Preset(name string, rate float64) (tensor.Mat3, error) {
	fn, ok := presets[name]
	if !ok {
		return tensor.Mat3{}, fmt.Errorf("%w: %q (available: %v)", ErrUnknownPath, name, PresetNames())
	}
	return fn(rate), nil
}

func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for k := range presets {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
