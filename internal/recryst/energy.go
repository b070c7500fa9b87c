package recryst

import (
	"fmt"
	"strings"

	"github.com/san-kum/polycryst/internal/grain"
	"github.com/san-kum/polycryst/internal/tensor"
	"github.com/san-kum/polycryst/internal/units"
)

// StressUnits selects the stress unit used in the stored energy rate.
type StressUnits int

const (
	// StressPascal converts the MPa stress to Pa, giving Ė in J/(m^3 s).
	StressPascal StressUnits = iota
	// StressMegapascal uses the stress as stored, giving Ė in MJ/(m^3 s).
	StressMegapascal
)

func (u StressUnits) String() string {
	if u == StressMegapascal {
		return "MPa"
	}
	return "Pa"
}

func ParseStressUnits(s string) (StressUnits, error) {
	switch strings.ToLower(s) {
	case "pa", "":
		return StressPascal, nil
	case "mpa":
		return StressMegapascal, nil
	default:
		return StressPascal, fmt.Errorf("unknown stress units %q (want Pa or MPa)", s)
	}
}

func (u StressUnits) scale() float64 {
	if u == StressMegapascal {
		return 1
	}
	return units.Mega
}

// EnergyRate returns Ė = α (s·σ):Din, where s converts the stress to the
// chosen units.
func EnergyRate(sigma, din tensor.Sym, alpha float64, u StressUnits) float64 {
	return alpha * u.scale() * sigma.Dot(din)
}

// UpdateEnergy refreshes EnergyRate and integrates Energy for every grain.
func UpdateEnergy(t *grain.Table, alpha float64, u StressUnits, dt float64) {
	grain.ForEach(t, func(id grain.ID) {
		rate := EnergyRate(t.Sigma[id], t.Din[id], alpha, u)
		t.EnergyRate[id] = rate
		t.Energy[id] += rate * dt
	})
}

// MeanEnergy is the arithmetic mean over grains, not weighted by volume.
// An empty table has zero mean.
func MeanEnergy(t *grain.Table) float64 {
	if t.Len() == 0 {
		return 0
	}
	var sum float64
	for _, e := range t.Energy {
		sum += e
	}
	return sum / float64(t.Len())
}
