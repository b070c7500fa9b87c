package recryst

import (
	"math"

	"github.com/san-kum/polycryst/internal/grain"
	"github.com/san-kum/polycryst/internal/slip"
	"github.com/san-kum/polycryst/internal/units"
)

// GrowthModel evolves grain sizes between nucleation events.
type GrowthModel interface {
	Name() string
	Grow(t *grain.Table, meanEnergy float64, hp slip.HallPetch, dt float64)
}

// NoGrowth keeps grain sizes fixed.
type NoGrowth struct{}

func (NoGrowth) Name() string { return "none" }

func (NoGrowth) Grow(*grain.Table, float64, slip.HallPetch, float64) {}

// FacetMigration moves grain boundaries with a thermally activated mobility
// M = M0·exp(-Q/(R·T)) under the driving force Ē - 3·egb/d.
type FacetMigration struct {
	M0          float64 // pre-exponential mobility
	Q           float64 // activation energy, J/mol
	Temperature float64 // K
	Egb         float64 // grain boundary energy, J/m^2
}

func (FacetMigration) Name() string { return "facet_migration" }

// Mobility returns the boundary mobility, zero for a non-positive temperature.
func (f FacetMigration) Mobility() float64 {
	if f.Temperature <= 0 {
		return 0
	}
	return f.M0 * math.Exp(-f.Q/(units.GasConstant*f.Temperature))
}

func (f FacetMigration) Grow(t *grain.Table, meanEnergy float64, hp slip.HallPetch, dt float64) {
	m := f.Mobility()
	grain.ForEach(t, func(id grain.ID) {
		d := t.GrainSize[id]
		df := DriveForce(meanEnergy, f.Egb, d)
		v := m * df

		t.FacetMobility[id] = m
		t.DriveForceCryst[id] = df
		t.FacetVelocity[id] = v

		next := d + v*dt
		if next < SubgrainFloor {
			next = SubgrainFloor
		}
		if next != d {
			hp.Resize(&t.TauC[id], d, next)
			t.GrainSize[id] = next
		}
	})
}
