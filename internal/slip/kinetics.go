package slip

import (
	"math"

	"github.com/san-kum/polycryst/internal/grain"
	"github.com/san-kum/polycryst/internal/tensor"
	"github.com/san-kum/polycryst/internal/units"
)

// ActiveRateThreshold is the slip rate below which a system does not harden.
const ActiveRateThreshold = 1e-7

// Flow holds the power-law parameters.
type Flow struct {
	Gamma0 float64 // reference slip rate, 1/s
	M      float64 // rate sensitivity exponent
}

// Hardening holds the saturation law parameters.
type Hardening struct {
	H0     float64 // initial hardening modulus, MPa
	TauSat float64 // saturation stress, Pa
	A      float64 // hardening exponent
	QLat   float64 // latent hardening ratio
}

// ResolvedShear returns τ_s = BN_s:σ for every system, clamped at zero so that
// only the positive direction of each signed pair is active.
func ResolvedShear(bn *grain.SchmidSet, sigma tensor.Mat3) grain.SlipVector {
	var tau grain.SlipVector
	for s := range bn {
		if v := bn[s].Dot(sigma); v > 0 {
			tau[s] = v
		}
	}
	return tau
}

// SlipRate is the power law γ̇ = γ̇0 (τ/τc)^m above the threshold τ > τc and
// zero otherwise. A non-positive τc gives no slip.
func SlipRate(tau, tauC, gamma0, m float64) float64 {
	if tauC <= 0 {
		return 0
	}
	ratio := tau / tauC
	if ratio <= 1 {
		return 0
	}
	return gamma0 * math.Pow(ratio, m)
}

// SlipRates applies SlipRate to every system.
func SlipRates(tau, tauC grain.SlipVector, f Flow) grain.SlipVector {
	var rate grain.SlipVector
	for s := range tau {
		rate[s] = SlipRate(tau[s], tauC[s], f.Gamma0, f.M)
	}
	return rate
}

// HardeningVector returns h_s = h0 |1 - τc_s/τsat|^a.
func HardeningVector(tauC grain.SlipVector, h Hardening) grain.SlipVector {
	var out grain.SlipVector
	tauSat := units.ToMPa(h.TauSat)
	if tauSat <= 0 {
		return out
	}
	for s, tc := range tauC {
		out[s] = h.H0 * math.Pow(math.Abs(1-tc/tauSat), h.A)
	}
	return out
}

// HardeningMatrix returns H with H_ij = h_j on the diagonal and qlat·h_j off it.
func HardeningMatrix(h grain.SlipVector, qlat float64) grain.SlipMatrix {
	var m grain.SlipMatrix
	for i := range m {
		for j := range m[i] {
			if i == j {
				m[i][j] = h[j]
			} else {
				m[i][j] = qlat * h[j]
			}
		}
	}
	return m
}

// CriticalRate returns τ̇c_k = Σ_j H_kj γ̇_j for active systems and zero for
// systems slipping slower than ActiveRateThreshold.
func CriticalRate(h *grain.SlipMatrix, gammaRate grain.SlipVector) grain.SlipVector {
	var out grain.SlipVector
	for k := range out {
		if math.Abs(gammaRate[k]) <= ActiveRateThreshold {
			continue
		}
		var s float64
		for j, g := range gammaRate {
			s += h[k][j] * g
		}
		out[k] = s
	}
	return out
}

// Integrate returns x + rate·dt component-wise.
func Integrate(x, rate grain.SlipVector, dt float64) grain.SlipVector {
	for s := range x {
		x[s] += rate[s] * dt
	}
	return x
}
