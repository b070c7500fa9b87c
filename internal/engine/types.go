package engine

import (
	"time"

	"github.com/san-kum/polycryst/internal/tensor"
)

// Snapshot is a read-only copy of the polycrystal state.
type Snapshot struct {
	Step            int
	Time            float64
	Grains          int
	Recrystallized  int
	MeanSigma       tensor.Mat3 // MPa, sample frame
	MeanEps         tensor.Mat3 // sample frame
	StressIntensity float64
	StrainIntensity float64
	MeanEnergy      float64
	MeanGrainSize   float64

	// Orientations holds one crystal-to-sample rotation per grain.
	Orientations []tensor.Mat3

	// Sigma and Eps are per-grain lattice-frame tensors, filled only when
	// Options.KeepGrains is set.
	Sigma []tensor.Mat3
	Eps   []tensor.Mat3
}

// Sample is the scalar part of a Snapshot.
type Sample struct {
	Step            int         `json:"step"`
	Time            float64     `json:"time"`
	Grains          int         `json:"grains"`
	Recrystallized  int         `json:"recrystallized"`
	StrainIntensity float64     `json:"strain_intensity"`
	StressIntensity float64     `json:"stress_intensity"`
	MeanEnergy      float64     `json:"mean_energy"`
	MeanGrainSize   float64     `json:"mean_grain_size"`
	MeanSigma       tensor.Mat3 `json:"mean_sigma"`
	MeanEps         tensor.Mat3 `json:"mean_eps"`
}

func (s Snapshot) Sample() Sample {
	return Sample{
		Step:            s.Step,
		Time:            s.Time,
		Grains:          s.Grains,
		Recrystallized:  s.Recrystallized,
		StrainIntensity: s.StrainIntensity,
		StressIntensity: s.StressIntensity,
		MeanEnergy:      s.MeanEnergy,
		MeanGrainSize:   s.MeanGrainSize,
		MeanSigma:       s.MeanSigma,
		MeanEps:         s.MeanEps,
	}
}

// StepStats describes one completed step.
type StepStats struct {
	Step      int
	Time      float64
	Duration  time.Duration
	Grains    int
	Nucleated int
}

// Observer receives snapshots at the reporting cadence.
type Observer interface {
	OnSnapshot(s Snapshot) error
}

// StepObserver is an optional Observer extension called after every step.
type StepObserver interface {
	OnStep(stats StepStats)
}

// Result summarizes a run.
type Result struct {
	Series     []Sample
	Final      Snapshot
	StepsTaken int
	Nucleated  int
	Elapsed    time.Duration
}
