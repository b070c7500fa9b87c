// Package kinematics maps the macroscopic velocity gradient onto each grain
// and integrates the small-strain measure.
package kinematics

import (
	"github.com/san-kum/polycryst/internal/grain"
	"github.com/san-kum/polycryst/internal/tensor"
)

// CrystalGradient expresses the sample-frame gradient l in the lattice frame
// of a grain with orientation r.
func CrystalGradient(r, l tensor.Mat3) tensor.Mat3 {
	return r.T().Mul(l).Mul(r)
}

// StrainRate is the symmetric part of a velocity gradient.
func StrainRate(gradV tensor.Mat3) tensor.Sym {
	return tensor.SymFromTensor(gradV)
}

// Update refreshes GradV and D of every grain for the gradient l.
func Update(t *grain.Table, l tensor.Mat3) {
	grain.ForEach(t, func(id grain.ID) {
		g := CrystalGradient(t.Rotation[id], l)
		t.GradV[id] = g
		t.D[id] = StrainRate(g)
	})
}

// IntegrateStrain adds D·dt to the strain of every grain.
func IntegrateStrain(t *grain.Table, dt float64) {
	grain.ForEach(t, func(id grain.ID) {
		t.Eps[id] = t.Eps[id].AddScaled(t.D[id], dt)
	})
}
