package slip

import (
	"math"

	"github.com/san-kum/polycryst/internal/grain"
	"github.com/san-kum/polycryst/internal/units"
)

// HallPetch is the grain-size contribution to the critical shear stress.
type HallPetch struct {
	Enabled bool
	B       float64 // Burgers vector magnitude, m
	Ky      float64 // Hall-Petch coefficient, Pa·m^0.5
}

// Term returns k_y sqrt(b/d) in MPa, or zero when disabled or d <= 0.
func (hp HallPetch) Term(d float64) float64 {
	if !hp.Enabled || d <= 0 || hp.B <= 0 {
		return 0
	}
	return units.ToMPa(hp.Ky * math.Sqrt(hp.B/d))
}

// InitialCritical returns the starting critical stresses in MPa for a grain of
// radius d, given the lattice friction tauC0 in Pa.
func (hp HallPetch) InitialCritical(tauC0, d float64) grain.SlipVector {
	var out grain.SlipVector
	v := units.ToMPa(tauC0) + hp.Term(d)
	for s := range out {
		out[s] = v
	}
	return out
}

// Resize moves the Hall-Petch term of tauC from size oldD to size newD.
func (hp HallPetch) Resize(tauC *grain.SlipVector, oldD, newD float64) {
	delta := hp.Term(newD) - hp.Term(oldD)
	if delta == 0 {
		return
	}
	for s := range tauC {
		tauC[s] += delta
	}
}
