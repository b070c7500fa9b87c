// Package elastic implements the anisotropic elastic response of a grain:
// the cubic stiffness, the split of the strain rate into elastic and plastic
// parts, and the hypoelastic stress update.
package elastic

import (
	"errors"
	"fmt"

	"github.com/san-kum/polycryst/internal/grain"
	"github.com/san-kum/polycryst/internal/tensor"
	"github.com/san-kum/polycryst/internal/units"
	"gonum.org/v1/gonum/mat"
)

var ErrNotPositiveDefinite = errors.New("elastic: stiffness is not positive definite")

// ShearConvention selects the shear diagonal of the Voigt stiffness. The
// stiffness always acts on true (non-doubled) shear strain components.
type ShearConvention int

const (
	// ShearC44 puts c44 on the shear diagonal, so σ12 = c44·ε12.
	ShearC44 ShearConvention = iota
	// ShearDoubledC44 puts 2·c44 there, so σ12 = c44·γ12 with γ12 = 2ε12.
	ShearDoubledC44
)

var ErrUnknownShear = errors.New("elastic: unknown shear convention")

func (c ShearConvention) String() string {
	switch c {
	case ShearC44:
		return "c44"
	case ShearDoubledC44:
		return "2c44"
	default:
		return "unknown"
	}
}

// Factor is the multiple of c44 on the shear diagonal.
func (c ShearConvention) Factor() float64 {
	if c == ShearDoubledC44 {
		return 2
	}
	return 1
}

func ParseShearConvention(s string) (ShearConvention, error) {
	switch s {
	case "", "c44":
		return ShearC44, nil
	case "2c44":
		return ShearDoubledC44, nil
	default:
		return 0, fmt.Errorf("%w: %q (want c44 or 2c44)", ErrUnknownShear, s)
	}
}

// Constants are the cubic elastic constants in Pa.
type Constants struct {
	C11   float64
	C12   float64
	C44   float64
	Koef  float64 // scale applied to the whole stiffness
	Shear ShearConvention
}

// CubicStiffness returns the stiffness in MPa in Voigt form acting on true
// (non-doubled) shear components.
func CubicStiffness(c Constants) tensor.Mat6 {
	k := c.Koef
	c11 := units.ToMPa(c.C11) * k
	c12 := units.ToMPa(c.C12) * k
	c44 := units.ToMPa(c.C44) * k

	var s tensor.Mat6
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if i == j {
				s[i][j] = c11
			} else {
				s[i][j] = c12
			}
		}
	}
	for i := 3; i < 6; i++ {
		s[i][i] = c.Shear.Factor() * c44
	}
	return s
}

// ValidateStiffness checks that c is positive definite, which for cubic
// symmetry means c11 > |c12|, c11 + 2c12 > 0 and c44 > 0.
func ValidateStiffness(c tensor.Mat6) error {
	var chol mat.Cholesky
	if ok := chol.Factorize(c.SymDense()); !ok {
		return ErrNotPositiveDefinite
	}
	return nil
}

// PlasticRate returns Din = Σ γ̇_s BN_s, symmetrized.
func PlasticRate(bn *grain.SchmidSet, gammaRate grain.SlipVector) tensor.Sym {
	var din tensor.Mat3
	for s := range bn {
		if gammaRate[s] == 0 {
			continue
		}
		din = din.AddScaled(bn[s], gammaRate[s])
	}
	return tensor.SymFromTensor(din)
}

// StressRate applies Hooke's law to the elastic part of the strain rate.
func StressRate(c tensor.Mat6, d, din tensor.Sym) (de, sigmaRate tensor.Sym) {
	de = d.Sub(din)
	return de, tensor.SymFromVector(c.MulVec(de.Vector()))
}

// UpdatePlasticRate refreshes Din for every grain.
func UpdatePlasticRate(t *grain.Table) {
	grain.ForEach(t, func(id grain.ID) {
		t.Din[id] = PlasticRate(t.Schmid[id], t.GammaRate[id])
	})
}

// UpdateStressRate refreshes De and SigmaRate for every grain.
func UpdateStressRate(t *grain.Table) {
	grain.ForEach(t, func(id grain.ID) {
		t.De[id], t.SigmaRate[id] = StressRate(t.Stiffness[id], t.D[id], t.Din[id])
	})
}

// IntegrateStress adds σ̇·dt to the stress of every grain.
func IntegrateStress(t *grain.Table, dt float64) {
	grain.ForEach(t, func(id grain.ID) {
		t.Sigma[id] = t.Sigma[id].AddScaled(t.SigmaRate[id], dt)
	})
}

// NewStiffness builds and validates the stiffness for c.
func NewStiffness(c Constants) (tensor.Mat6, error) {
	s := CubicStiffness(c)
	if err := ValidateStiffness(s); err != nil {
		return s, fmt.Errorf("c11=%g c12=%g c44=%g koef=%g shear=%s: %w", c.C11, c.C12, c.C44, c.Koef, c.Shear, err)
	}
	return s, nil
}
