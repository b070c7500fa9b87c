package metrics

import (
	"github.com/san-kum/polycryst/internal/engine"
)

// Metric reduces the snapshots of a run to one number.
type Metric interface {
	Name() string
	Observe(s engine.Snapshot)
	Value() float64
	Reset()
}

// PeakStress is the largest stress intensity seen, in MPa.
type PeakStress struct {
	peak float64
}

func NewPeakStress() *PeakStress { return &PeakStress{} }

func (p *PeakStress) Name() string { return "peak_stress_intensity" }

func (p *PeakStress) Observe(s engine.Snapshot) {
	if s.StressIntensity > p.peak {
		p.peak = s.StressIntensity
	}
}

func (p *PeakStress) Value() float64 { return p.peak }
func (p *PeakStress) Reset()         { p.peak = 0 }

// RecrystallizedFraction is the share of recrystallized grains in the last
// snapshot.
type RecrystallizedFraction struct {
	grains, recryst int
}

func NewRecrystallizedFraction() *RecrystallizedFraction { return &RecrystallizedFraction{} }

func (r *RecrystallizedFraction) Name() string { return "recrystallized_fraction" }

func (r *RecrystallizedFraction) Observe(s engine.Snapshot) {
	r.grains = s.Grains
	r.recryst = s.Recrystallized
}

func (r *RecrystallizedFraction) Value() float64 {
	if r.grains == 0 {
		return 0
	}
	return float64(r.recryst) / float64(r.grains)
}

func (r *RecrystallizedFraction) Reset() { r.grains, r.recryst = 0, 0 }

// Hardening is the rise in stress intensity per unit strain intensity
// between the first and the last snapshot with non-zero strain.
type Hardening struct {
	first, last engine.Snapshot
	seen        bool
}

func NewHardening() *Hardening { return &Hardening{} }

func (h *Hardening) Name() string { return "mean_hardening_rate" }

func (h *Hardening) Observe(s engine.Snapshot) {
	if s.StrainIntensity == 0 {
		return
	}
	if !h.seen {
		h.first = s
		h.seen = true
	}
	h.last = s
}

func (h *Hardening) Value() float64 {
	de := h.last.StrainIntensity - h.first.StrainIntensity
	if !h.seen || de == 0 {
		return 0
	}
	return (h.last.StressIntensity - h.first.StressIntensity) / de
}

func (h *Hardening) Reset() { *h = Hardening{} }

// Set feeds snapshots to a group of metrics. It is an engine observer.
type Set struct {
	metrics []Metric
}

// NewSet returns a set of the given metrics, or of the standard ones when
// none are given.
func NewSet(ms ...Metric) *Set {
	if len(ms) == 0 {
		ms = []Metric{NewPeakStress(), NewRecrystallizedFraction(), NewHardening()}
	}
	return &Set{metrics: ms}
}

func (s *Set) OnSnapshot(snap engine.Snapshot) error {
	for _, m := range s.metrics {
		m.Observe(snap)
	}
	return nil
}

func (s *Set) Values() map[string]float64 {
	out := make(map[string]float64, len(s.metrics))
	for _, m := range s.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

func (s *Set) Reset() {
	for _, m := range s.metrics {
		m.Reset()
	}
}
