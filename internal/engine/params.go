package engine

import (
	"fmt"

	"github.com/san-kum/polycryst/internal/aggregate"
	"github.com/san-kum/polycryst/internal/elastic"
	"github.com/san-kum/polycryst/internal/recryst"
	"github.com/san-kum/polycryst/internal/slip"
)

// Params are the scalar model parameters. Stresses and moduli are in Pa
// unless noted.
type Params struct {
	Grains    int
	Steps     int
	WriteStep int
	Dt        float64

	Elastic   elastic.Constants
	Flow      slip.Flow
	TauC0     float64
	Hardening slip.Hardening
	HallPetch slip.HallPetch

	GrainSizeMean   float64 // m
	GrainSizeStdDev float64 // m

	Recrystallization bool
	Alpha             float64 // fraction of plastic work stored
	Egb               float64 // grain boundary energy, J/m^2
	R0                float64 // mean subgrain radius, m
	SubGrains         int
	StressUnits       recryst.StressUnits
	Eligibility       recryst.Eligibility

	Weighting aggregate.Weighting
}

// DefaultParams describes a copper polycrystal taken to 2% strain in slow
// tension. With m = 50 the explicit update is only stable for short steps:
// dt must keep the relaxation m·μ·γ̇·dt/τc well below one on the active
// systems.
func DefaultParams() Params {
	return Params{
		Grains:    100,
		Steps:     4000,
		WriteStep: 40,
		Dt:        5e-4,
		Elastic: elastic.Constants{
			C11:  168.4e9,
			C12:  121.4e9,
			C44:  75.4e9,
			Koef: 1,
		},
		Flow:  slip.Flow{Gamma0: 1e-3, M: 50},
		TauC0: 16e6,
		Hardening: slip.Hardening{
			H0:     180,
			TauSat: 148e6,
			A:      2.25,
			QLat:   1.4,
		},
		HallPetch: slip.HallPetch{
			Enabled: true,
			B:       2.56e-10,
			Ky:      0.12e6,
		},
		GrainSizeMean:     50e-6,
		GrainSizeStdDev:   10e-6,
		Recrystallization: true,
		Alpha:             0.05,
		Egb:               0.625,
		R0:                1e-6,
		SubGrains:         20,
		StressUnits:       recryst.StressPascal,
		Eligibility:       recryst.AllGrains,
		Weighting:         aggregate.Uniform,
	}
}

// Validate rejects parameters the model cannot run with.
func (p Params) Validate() error {
	switch {
	case p.Grains <= 0:
		return fmt.Errorf("%w: grains must be positive, got %d", ErrInvalidParams, p.Grains)
	case p.Steps < 0:
		return fmt.Errorf("%w: steps must not be negative, got %d", ErrInvalidParams, p.Steps)
	case p.WriteStep <= 0:
		return fmt.Errorf("%w: write step must be positive, got %d", ErrInvalidParams, p.WriteStep)
	case p.Dt <= 0:
		return fmt.Errorf("%w: dt must be positive, got %g", ErrInvalidParams, p.Dt)
	case p.Flow.Gamma0 < 0 || p.Flow.M <= 0:
		return fmt.Errorf("%w: flow rule needs gamma0 >= 0 and m > 0, got %g and %g", ErrInvalidParams, p.Flow.Gamma0, p.Flow.M)
	case p.TauC0 <= 0:
		return fmt.Errorf("%w: tau_c must be positive, got %g", ErrInvalidParams, p.TauC0)
	case p.Hardening.QLat < 0:
		return fmt.Errorf("%w: qlat must not be negative, got %g", ErrInvalidParams, p.Hardening.QLat)
	case p.GrainSizeMean <= 0 || p.GrainSizeStdDev < 0:
		return fmt.Errorf("%w: grain size needs mean > 0 and std dev >= 0, got %g and %g", ErrInvalidParams, p.GrainSizeMean, p.GrainSizeStdDev)
	case p.HallPetch.Enabled && p.HallPetch.B <= 0:
		return fmt.Errorf("%w: hall-petch burgers magnitude must be positive, got %g", ErrInvalidParams, p.HallPetch.B)
	}
	if p.Recrystallization {
		switch {
		case p.R0 <= 0:
			return fmt.Errorf("%w: r0 must be positive, got %g", ErrInvalidParams, p.R0)
		case p.SubGrains < 0:
			return fmt.Errorf("%w: subgrain count must not be negative, got %d", ErrInvalidParams, p.SubGrains)
		case p.Egb < 0 || p.Alpha < 0:
			return fmt.Errorf("%w: egb and alpha must not be negative, got %g and %g", ErrInvalidParams, p.Egb, p.Alpha)
		}
	}
	return nil
}
