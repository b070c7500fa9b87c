package slip

import (
	"github.com/san-kum/polycryst/internal/grain"
)

// ResolveShear refreshes Tau for every grain, and TauRate as the change since
// the previous step when dt > 0.
func ResolveShear(t *grain.Table, dt float64) {
	grain.ForEach(t, func(id grain.ID) {
		tau := ResolvedShear(t.Schmid[id], t.Sigma[id].Tensor())
		if dt > 0 {
			prev := t.Tau[id]
			for s := range tau {
				t.TauRate[id][s] = (tau[s] - prev[s]) / dt
			}
		}
		t.Tau[id] = tau
	})
}

// UpdateSlipRates refreshes GammaRate for every grain.
func UpdateSlipRates(t *grain.Table, f Flow) {
	grain.ForEach(t, func(id grain.ID) {
		t.GammaRate[id] = SlipRates(t.Tau[id], t.TauC[id], f)
	})
}

// AccumulateSlip adds γ̇·dt to the accumulated slip of every grain.
func AccumulateSlip(t *grain.Table, dt float64) {
	grain.ForEach(t, func(id grain.ID) {
		t.Gamma[id] = Integrate(t.Gamma[id], t.GammaRate[id], dt)
	})
}

// UpdateHardening refreshes HVector, HMatrix and TauCRate for every grain.
func UpdateHardening(t *grain.Table, h Hardening) {
	grain.ForEach(t, func(id grain.ID) {
		t.HVector[id] = HardeningVector(t.TauC[id], h)
		t.HMatrix[id] = HardeningMatrix(t.HVector[id], h.QLat)
		t.TauCRate[id] = CriticalRate(&t.HMatrix[id], t.GammaRate[id])
	})
}

// IntegrateCritical adds τ̇c·dt to the critical stresses of every grain.
func IntegrateCritical(t *grain.Table, dt float64) {
	grain.ForEach(t, func(id grain.ID) {
		t.TauC[id] = Integrate(t.TauC[id], t.TauCRate[id], dt)
	})
}
