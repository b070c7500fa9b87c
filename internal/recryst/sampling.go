package recryst

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// ErrDegenerate reports sampling parameters that describe no distribution.
var ErrDegenerate = errors.New("recryst: degenerate distribution")

// RayleighDensity is the Rayleigh density whose mean is r0.
func RayleighDensity(r0, x float64) float64 {
	if x < 0 || r0 <= 0 {
		return 0
	}
	sigma := r0 * math.Sqrt(2/math.Pi)
	s2 := sigma * sigma
	return x / s2 * math.Exp(-x*x/(2*s2))
}

// SampleRayleigh draws num subgrain radii by rejection sampling on
// [0, 10·r0). Each round draws a larger candidate batch until at least num
// candidates are accepted; the last num accepted values are returned.
func SampleRayleigh(rng *rand.Rand, num int, r0 float64) ([]float64, error) {
	if num < 0 {
		return nil, fmt.Errorf("%w: subgrain count %d", ErrDegenerate, num)
	}
	if num == 0 {
		return []float64{}, nil
	}
	if r0 <= 0 || math.IsNaN(r0) || math.IsInf(r0, 0) {
		return nil, fmt.Errorf("%w: rayleigh scale %g", ErrDegenerate, r0)
	}

	candidates := distuv.Uniform{Min: 0, Max: 10 * r0, Src: rng}
	accept := distuv.Uniform{Min: 0, Max: 1, Src: rng}

	growth := num / 2
	if growth == 0 {
		growth = 1
	}

	var out []float64
	batch := num
	for {
		batch += growth
		xs := make([]float64, batch)
		dens := make([]float64, batch)
		peak := 0.0
		for i := range xs {
			xs[i] = candidates.Rand()
			dens[i] = RayleighDensity(r0, xs[i])
			if dens[i] > peak {
				peak = dens[i]
			}
		}

		out = out[:0]
		if peak > 0 {
			for i, x := range xs {
				if dens[i]/peak >= accept.Rand() {
					out = append(out, x)
				}
			}
		}
		if len(out) >= num {
			break
		}
	}

	return out[len(out)-num:], nil
}

// SampleGrainSizes draws n grain radii from a log-normal distribution with the
// given arithmetic mean and standard deviation of the radius.
func SampleGrainSizes(rng *rand.Rand, n int, mean, stdDev float64) ([]float64, error) {
	dist, err := GrainSizeDistribution(rng, mean, stdDev)
	if err != nil {
		return nil, err
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = dist.Rand()
	}
	return out, nil
}

// GrainSizeDistribution converts the radius mean and standard deviation into
// the parameters of the underlying normal distribution.
func GrainSizeDistribution(rng *rand.Rand, mean, stdDev float64) (distuv.LogNormal, error) {
	if mean <= 0 || stdDev < 0 || math.IsNaN(mean) || math.IsNaN(stdDev) {
		return distuv.LogNormal{}, fmt.Errorf("%w: grain size mean %g, std dev %g", ErrDegenerate, mean, stdDev)
	}
	cv2 := (stdDev / mean) * (stdDev / mean)
	sigma := math.Sqrt(math.Log1p(cv2))
	mu := math.Log(mean) - sigma*sigma/2
	return distuv.LogNormal{Mu: mu, Sigma: sigma, Src: rng}, nil
}
