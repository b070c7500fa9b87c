package recryst_test

import (
	"context"
	"math"
	"math/rand/v2"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/polycryst/internal/grain"
	"github.com/san-kum/polycryst/internal/recryst"
	"github.com/san-kum/polycryst/internal/slip"
	"github.com/san-kum/polycryst/internal/tensor"
)

var geometry = slip.DefaultFCC()

func record(size float64, subgrains ...float64) grain.Record {
	return grain.Record{
		Rotation:  tensor.Identity(),
		Burgers:   &geometry.Burgers,
		Normals:   &geometry.Normals,
		Schmid:    &geometry.Schmid,
		GrainSize: size,
		SubGrains: subgrains,
		TauC:      slip.HallPetch{}.InitialCritical(16e6, size),
		Status:    grain.Deformed,
	}
}

func spawner(size float64) (grain.Record, error) {
	r := record(size, 1e-7)
	r.Status = grain.Recrystallized
	return r, nil
}

var _ = Describe("Stored energy", func() {
	It("does not decrease while σ:Din stays positive", func() {
		t := grain.NewTable(1)
		t.Append(record(1e-5))
		t.Sigma[0] = tensor.SymFromTensor(tensor.Diag(50, -25, -25))
		t.Din[0] = tensor.SymFromTensor(tensor.Diag(1e-3, -5e-4, -5e-4))

		prev := 0.0
		for i := 0; i < 20; i++ {
			recryst.UpdateEnergy(t, 0.5, recryst.StressPascal, 1e-2)
			Expect(t.EnergyRate[0]).To(BeNumerically(">", 0))
			Expect(t.Energy[0]).To(BeNumerically(">=", prev))
			prev = t.Energy[0]
		}
	})

	It("scales the stress only in the Pa convention", func() {
		sigma := tensor.SymFromTensor(tensor.Diag(100, 0, 0))
		din := tensor.SymFromTensor(tensor.Diag(1e-3, 0, 0))

		pa := recryst.EnergyRate(sigma, din, 0.5, recryst.StressPascal)
		mpa := recryst.EnergyRate(sigma, din, 0.5, recryst.StressMegapascal)

		Expect(mpa).To(BeNumerically("~", 0.05, 1e-15))
		Expect(pa).To(BeNumerically("~", 0.05e6, 1e-9))
	})

	It("parses the unit convention", func() {
		u, err := recryst.ParseStressUnits("MPa")
		Expect(err).NotTo(HaveOccurred())
		Expect(u).To(Equal(recryst.StressMegapascal))
		Expect(u.String()).To(Equal("MPa"))

		_, err = recryst.ParseStressUnits("psi")
		Expect(err).To(HaveOccurred())
	})

	It("averages energy arithmetically", func() {
		t := grain.NewTable(3)
		for _, e := range []float64{1, 2, 6} {
			id := t.Append(record(1e-5))
			t.Energy[id] = e
		}
		Expect(recryst.MeanEnergy(t)).To(BeNumerically("~", 3, 1e-12))
		Expect(recryst.MeanEnergy(grain.NewTable(0))).To(BeZero())
	})
})

var _ = Describe("Rayleigh subgrain sampling", func() {
	var rng *rand.Rand

	BeforeEach(func() {
		rng = rand.New(rand.NewPCG(42, 1))
	})

	It("returns exactly the requested count of non-negative radii", func() {
		for _, num := range []int{1, 2, 7, 20, 101} {
			out, err := recryst.SampleRayleigh(rng, num, 1e-6)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(HaveLen(num))
			for _, r := range out {
				Expect(r).To(BeNumerically(">=", 0))
				Expect(r).To(BeNumerically("<", 1e-5))
			}
		}
	})

	It("handles the degenerate cases", func() {
		out, err := recryst.SampleRayleigh(rng, 0, 1e-6)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(BeEmpty())

		_, err = recryst.SampleRayleigh(rng, 5, 0)
		Expect(err).To(MatchError(recryst.ErrDegenerate))
		_, err = recryst.SampleRayleigh(rng, -1, 1e-6)
		Expect(err).To(MatchError(recryst.ErrDegenerate))
	})

	It("converges to the Rayleigh density", func() {
		const r0 = 1e-6
		out, err := recryst.SampleRayleigh(rng, 40000, r0)
		Expect(err).NotTo(HaveOccurred())

		Expect(stat.Mean(out, nil)).To(BeNumerically("~", r0, 0.02*r0))

		sigma := r0 * math.Sqrt(2/math.Pi)
		cdf := func(x float64) float64 { return 1 - math.Exp(-x*x/(2*sigma*sigma)) }
		edges := []float64{0, 0.5 * r0, r0, 1.5 * r0, 2 * r0, 3 * r0}
		for i := 0; i+1 < len(edges); i++ {
			var n int
			for _, x := range out {
				if x >= edges[i] && x < edges[i+1] {
					n++
				}
			}
			got := float64(n) / float64(len(out))
			want := cdf(edges[i+1]) - cdf(edges[i])
			Expect(got).To(BeNumerically("~", want, 0.015), "bin %d", i)
		}
	})

	It("peaks the density at the scale parameter", func() {
		sigma := 1e-6 * math.Sqrt(2/math.Pi)
		peak := recryst.RayleighDensity(1e-6, sigma)
		Expect(recryst.RayleighDensity(1e-6, 0.9*sigma)).To(BeNumerically("<", peak))
		Expect(recryst.RayleighDensity(1e-6, 1.1*sigma)).To(BeNumerically("<", peak))
		Expect(recryst.RayleighDensity(1e-6, -1)).To(BeZero())
	})
})

var _ = Describe("Grain size sampling", func() {
	It("matches the requested mean and spread", func() {
		rng := rand.New(rand.NewPCG(9, 9))
		sizes, err := recryst.SampleGrainSizes(rng, 50000, 50e-6, 10e-6)
		Expect(err).NotTo(HaveOccurred())

		mean, std := stat.MeanStdDev(sizes, nil)
		Expect(mean).To(BeNumerically("~", 50e-6, 1e-6))
		Expect(std).To(BeNumerically("~", 10e-6, 0.5e-6))
		for _, s := range sizes {
			Expect(s).To(BeNumerically(">", 0))
		}
	})

	It("rejects a non-positive mean", func() {
		_, err := recryst.SampleGrainSizes(rand.New(rand.NewPCG(1, 1)), 3, 0, 1)
		Expect(err).To(MatchError(recryst.ErrDegenerate))
	})
})

var _ = Describe("Nucleation", func() {
	const egb = 0.6
	var t *grain.Table

	BeforeEach(func() {
		t = grain.NewTable(4)
		t.Append(record(1e-5, 2e-6, 1e-7, 3e-6))
		t.Append(record(1e-6, 2e-6))
	})

	It("computes driving forces and guards non-positive radii", func() {
		Expect(recryst.DriveForce(1e6, egb, 2e-6)).To(BeNumerically("~", 1e5, 1e-6))
		Expect(recryst.DriveForce(1e6, egb, 0)).To(BeZero())

		recryst.UpdateDriveForce(t, 1e6, egb, recryst.AllGrains)
		Expect(t.DriveForce[0][0]).To(BeNumerically(">", 0))
		Expect(t.DriveForce[0][1]).To(BeNumerically("<", 0))
	})

	It("detects without mutating the table", func() {
		recryst.UpdateDriveForce(t, 1e6, egb, recryst.AllGrains)
		before := t.Row(0)

		events, err := recryst.Detect(context.Background(), t, recryst.AllGrains, 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(events).To(HaveLen(2))
		Expect(events[0].Subgrain).To(Equal(0))
		Expect(events[1].Subgrain).To(Equal(2))
		Expect(events[1].ParentBefore).To(Equal(events[0].ParentAfter))

		Expect(t.Row(0)).To(Equal(before))
		Expect(t.Len()).To(Equal(2))
	})

	It("skips subgrains that do not fit in the parent", func() {
		recryst.UpdateDriveForce(t, 1e6, egb, recryst.AllGrains)
		events, err := recryst.Detect(context.Background(), t, recryst.AllGrains, 1)
		Expect(err).NotTo(HaveOccurred())
		for _, ev := range events {
			Expect(ev.Parent).To(Equal(grain.ID(0)))
		}
	})

	It("conserves volume and appends one grain per event", func() {
		recryst.UpdateDriveForce(t, 1e6, egb, recryst.AllGrains)
		events, err := recryst.Detect(context.Background(), t, recryst.AllGrains, 0)
		Expect(err).NotTo(HaveOccurred())

		vBefore := recryst.SphereVolume(t.GrainSize[0])
		hp := slip.HallPetch{Enabled: true, B: 2.56e-10, Ky: 0.12e6}
		tauBefore := t.TauC[0][0]

		ids, err := recryst.Apply(t, events, hp, spawner)
		Expect(err).NotTo(HaveOccurred())
		Expect(ids).To(Equal([]grain.ID{2, 3}))
		Expect(t.Validate()).To(Succeed())

		vAfter := recryst.SphereVolume(t.GrainSize[0])
		for _, id := range ids {
			vAfter += recryst.SphereVolume(t.GrainSize[id])
			Expect(t.Status[id]).To(Equal(grain.Recrystallized))
		}
		Expect(vAfter).To(BeNumerically("~", vBefore, 1e-12*vBefore))

		Expect(t.SubGrains[0][0]).To(Equal(recryst.SubgrainFloor))
		Expect(t.SubGrains[0][2]).To(Equal(recryst.SubgrainFloor))
		Expect(t.SubGrains[0][1]).To(Equal(1e-7))

		want := tauBefore + hp.Term(t.GrainSize[0]) - hp.Term(1e-5)
		Expect(t.TauC[0][0]).To(BeNumerically("~", want, 1e-12))
	})

	It("excludes recrystallized grains when asked to", func() {
		t.Status[0] = grain.Recrystallized
		recryst.UpdateDriveForce(t, 1e6, egb, recryst.DeformedOnly)
		Expect(t.DriveForce[0]).To(Equal([]float64{0, 0, 0}))

		events, err := recryst.Detect(context.Background(), t, recryst.DeformedOnly, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(events).To(BeEmpty())
	})

	It("rejects events that address missing grains", func() {
		_, err := recryst.Apply(t, []recryst.Event{{Parent: 9}}, slip.HallPetch{}, spawner)
		Expect(err).To(MatchError(grain.ErrInconsistent))
	})
})

var _ = Describe("Facet migration", func() {
	It("uses an Arrhenius mobility", func() {
		f := recryst.FacetMigration{M0: 1e-4, Q: 1.5e5, Temperature: 800, Egb: 0.6}
		Expect(f.Mobility()).To(BeNumerically("~", 1e-4*math.Exp(-1.5e5/(8.314*800)), 1e-30))
		Expect(recryst.FacetMigration{M0: 1}.Mobility()).To(BeZero())
	})

	It("grows grains under a positive driving force", func() {
		t := grain.NewTable(1)
		t.Append(record(1e-5))
		f := recryst.FacetMigration{M0: 1e-6, Q: 0, Temperature: 300, Egb: 0.6}

		f.Grow(t, 1e6, slip.HallPetch{}, 1)
		Expect(t.GrainSize[0]).To(BeNumerically(">", 1e-5))
		Expect(t.FacetVelocity[0]).To(BeNumerically(">", 0))
		Expect(t.DriveForceCryst[0]).To(BeNumerically("~", 1e6-3*0.6/1e-5, 1e-6))

		recryst.NoGrowth{}.Grow(t, 1e9, slip.HallPetch{}, 1)
	})
})
