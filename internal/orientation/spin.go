package orientation

import (
	"context"
	"math"

	"github.com/san-kum/polycryst/internal/grain"
	"github.com/san-kum/polycryst/internal/tensor"
)

// Updater advances lattice orientations by one step.
type Updater interface {
	Name() string
	Update(ctx context.Context, t *grain.Table, dt float64) error
}

// Fixed keeps every orientation constant.
type Fixed struct{}

func (Fixed) Name() string { return "fixed" }

func (Fixed) Update(context.Context, *grain.Table, float64) error { return nil }

// LatticeSpin rotates each lattice with the spin left after plastic slip,
// Ω = W - Σ γ̇ (BN - BNᵀ)/2, where W is the skew part of the crystal-frame
// velocity gradient.
type LatticeSpin struct {
	// Workers limits the goroutines used per update; zero means GOMAXPROCS.
	Workers int
}

func (LatticeSpin) Name() string { return "lattice_spin" }

func (s LatticeSpin) Update(ctx context.Context, t *grain.Table, dt float64) error {
	return grain.ParallelErr(ctx, t.Len(), s.Workers, func(_ context.Context, start, end int) error {
		for i := start; i < end; i++ {
			id := grain.ID(i)
			omega := Spin(t.GradV[id], t.Schmid[id], t.GammaRate[id])
			// omega is expressed in the crystal frame
			dr := Rodrigues(AxialVector(omega).Scale(dt))
			if err := Set(t, id, t.Rotation[id].Mul(dr)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Spin returns the lattice spin of a grain.
func Spin(gradV tensor.Mat3, bn *grain.SchmidSet, gammaRate grain.SlipVector) tensor.Mat3 {
	w := gradV.SkewPart()
	var plastic tensor.Mat3
	for s := range bn {
		if gammaRate[s] == 0 {
			continue
		}
		plastic = plastic.AddScaled(bn[s].Sub(bn[s].T()), gammaRate[s])
	}
	return w.Sub(plastic.Scale(0.5))
}

// AxialVector returns the angular velocity a_i = ε_ijk Ω_kj / 2 of a spin
// tensor Ω, so that Ω·x = a × x.
func AxialVector(omega tensor.Mat3) tensor.Vec3 {
	var a tensor.Vec3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				if e := leviCivita(i, j, k); e != 0 {
					a[i] += e * omega[k][j]
				}
			}
		}
	}
	return a.Scale(0.5)
}

// Rodrigues returns the rotation about v by the angle |v|.
func Rodrigues(v tensor.Vec3) tensor.Mat3 {
	theta := v.Norm()
	if theta == 0 {
		return tensor.Identity()
	}
	k := v.Scale(1 / theta)
	kx := tensor.Mat3{
		{0, -k[2], k[1]},
		{k[2], 0, -k[0]},
		{-k[1], k[0], 0},
	}
	return tensor.Identity().
		AddScaled(kx, math.Sin(theta)).
		AddScaled(kx.Mul(kx), 1-math.Cos(theta))
}

func leviCivita(i, j, k int) float64 {
	switch {
	case i == j || j == k || k == i:
		return 0
	case (i+1)%3 == j && (j+1)%3 == k:
		return 1
	default:
		return -1
	}
}
