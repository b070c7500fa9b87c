package engine

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/polycryst/internal/elastic"
	"github.com/san-kum/polycryst/internal/grain"
	"github.com/san-kum/polycryst/internal/kinematics"
	"github.com/san-kum/polycryst/internal/orientation"
	"github.com/san-kum/polycryst/internal/recryst"
	"github.com/san-kum/polycryst/internal/tensor"
)

// elasticParams never reaches the critical stress.
func elasticParams() Params {
	p := DefaultParams()
	p.Grains = 1
	p.Steps = 10
	p.WriteStep = 5
	p.Dt = 1
	p.TauC0 = 1e15
	p.HallPetch.Enabled = false
	p.GrainSizeStdDev = 0
	p.Recrystallization = false
	return p
}

// plasticParams yields early with a linear flow rule so explicit steps stay
// stable.
func plasticParams() Params {
	p := DefaultParams()
	p.Grains = 3
	p.Steps = 50
	p.WriteStep = 10
	p.Dt = 1e-3
	p.TauC0 = 1e6
	p.Flow.M = 1
	p.HallPetch.Enabled = false
	p.Egb = 1e-6
	p.SubGrains = 2
	return p
}

type recorder struct {
	snaps []Snapshot
	steps []StepStats
	err   error
}

func (r *recorder) OnSnapshot(s Snapshot) error {
	r.snaps = append(r.snaps, s)
	return r.err
}

func (r *recorder) OnStep(s StepStats) { r.steps = append(r.steps, s) }

func TestNewRejectsInvalidParams(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{"no grains", func(p *Params) { p.Grains = 0 }},
		{"zero dt", func(p *Params) { p.Dt = 0 }},
		{"zero write step", func(p *Params) { p.WriteStep = 0 }},
		{"zero exponent", func(p *Params) { p.Flow.M = 0 }},
		{"no grain size", func(p *Params) { p.GrainSizeMean = 0 }},
		{"no r0", func(p *Params) { p.R0 = 0 }},
		{"unstable stiffness", func(p *Params) { p.Elastic.C12 = p.Elastic.C11 * 2 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mutate(&p)
			_, err := New(p, Options{})
			assert.ErrorIs(t, err, ErrInvalidParams)
		})
	}
}

func TestSingleGrainElasticRun(t *testing.T) {
	p := elasticParams()
	rate := 1e-3
	l := tensor.Diag(rate, -rate/2, -rate/2)

	e, err := New(p, Options{Path: kinematics.Constant{L: l}, KeepGrains: true})
	require.NoError(t, err)

	res, err := e.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 10, res.StepsTaken)
	require.Len(t, res.Series, 3)
	assert.Equal(t, []int{0, 5, 10}, []int{res.Series[0].Step, res.Series[1].Step, res.Series[2].Step})

	final := res.Final
	require.Len(t, final.Eps, 1)
	wantEps := l.Scale(10 * p.Dt)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			assert.InDelta(t, wantEps[i][j], final.Eps[0][i][j], 1e-15)
		}
	}

	c11, c12 := 168400.0, 121400.0
	assert.InDelta(t, c11*wantEps[0][0]+c12*(wantEps[1][1]+wantEps[2][2]), final.Sigma[0][0][0], 1e-9)
	assert.InDelta(t, c12*(wantEps[0][0]+wantEps[2][2])+c11*wantEps[1][1], final.Sigma[0][1][1], 1e-9)
	assert.InDelta(t, 0, final.Sigma[0][0][1], 1e-12)

	assert.Equal(t, final.MeanSigma, final.Sigma[0])
	assert.Zero(t, final.MeanEnergy)
	assert.True(t, final.Orientations[0].IsIdentity(1e-12))
}

func TestRunIsReproducible(t *testing.T) {
	p := plasticParams()
	p.Recrystallization = false

	run := func() *Result {
		e, err := New(p, Options{Seed: 7})
		require.NoError(t, err)
		res, err := e.Run(context.Background())
		require.NoError(t, err)
		return res
	}

	a, b := run(), run()
	assert.Equal(t, a.Final.MeanSigma, b.Final.MeanSigma)
	assert.Equal(t, a.Final.Orientations, b.Final.Orientations)
	assert.Greater(t, a.Final.StressIntensity, 0.0)
	assert.Greater(t, a.Final.MeanEnergy, 0.0)
}

func TestNucleationAppendsRecrystallizedGrains(t *testing.T) {
	p := plasticParams()
	rec := &recorder{}
	e, err := New(p, Options{Seed: 3, Observers: []Observer{rec}})
	require.NoError(t, err)
	require.NoError(t, e.Init())

	before := make([]float64, e.Len())
	for i := range before {
		g, ok := e.Grain(grain.ID(i))
		require.True(t, ok)
		before[i] = g.GrainSize
	}

	var stats StepStats
	for i := 0; i < 500 && stats.Nucleated == 0; i++ {
		stats, err = e.Step(context.Background())
		require.NoError(t, err)
	}
	require.Positive(t, stats.Nucleated, "no grain nucleated")

	assert.Equal(t, p.Grains+stats.Nucleated, e.Len())
	assert.LessOrEqual(t, stats.Nucleated, p.Grains*p.SubGrains)
	assert.Equal(t, stats.Nucleated, e.Snapshot().Recrystallized)
	assert.Len(t, rec.steps, e.StepIndex())

	shrunk := 0
	for i := range before {
		g, _ := e.Grain(grain.ID(i))
		assert.LessOrEqual(t, g.GrainSize, before[i])
		if g.GrainSize < before[i] {
			shrunk++
		}
	}
	assert.Positive(t, shrunk)

	for i := p.Grains; i < e.Len(); i++ {
		g, _ := e.Grain(grain.ID(i))
		assert.Equal(t, grain.Recrystallized, g.Status)
		assert.Positive(t, g.GrainSize)
		assert.Zero(t, g.Energy)
		assert.Equal(t, tensor.Mat3{}, g.Sigma.Tensor())
		assert.Len(t, g.SubGrains, p.SubGrains)
	}
}

func TestDeformedOnlyBlocksRecrystallizedParents(t *testing.T) {
	p := plasticParams()
	p.Eligibility = recryst.DeformedOnly
	e, err := New(p, Options{Seed: 3})
	require.NoError(t, err)

	for i := 0; i < 200; i++ {
		_, err := e.Step(context.Background())
		require.NoError(t, err)
	}
	for i := p.Grains; i < e.Len(); i++ {
		g, _ := e.Grain(grain.ID(i))
		for _, df := range g.DriveForce {
			assert.Zero(t, df)
		}
	}
}

func TestRunHonoursCancellation(t *testing.T) {
	e, err := New(plasticParams(), Options{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := e.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res)
	assert.Zero(t, res.StepsTaken)
}

func TestObserverErrorStopsRun(t *testing.T) {
	boom := errors.New("disk full")
	rec := &recorder{err: boom}
	e, err := New(elasticParams(), Options{Observers: []Observer{rec}})
	require.NoError(t, err)

	_, err = e.Run(context.Background())
	require.ErrorIs(t, err, boom)

	var simErr *SimulationError
	require.ErrorAs(t, err, &simErr)
	assert.Equal(t, "report", simErr.Phase)
	assert.Equal(t, 0, simErr.Step)
	assert.Len(t, rec.snaps, 1)
}

type brokenPath struct{}

func (brokenPath) At(float64) (tensor.Mat3, error) {
	return tensor.Mat3{}, kinematics.ErrNonMonotonic
}

func TestPathErrorIsWrapped(t *testing.T) {
	e, err := New(elasticParams(), Options{Path: brokenPath{}})
	require.NoError(t, err)

	_, err = e.Run(context.Background())
	assert.ErrorIs(t, err, kinematics.ErrNonMonotonic)

	var simErr *SimulationError
	require.ErrorAs(t, err, &simErr)
	assert.Equal(t, "kinematics", simErr.Phase)
}

func TestLargePopulationIsNearlyIsotropic(t *testing.T) {
	p := elasticParams()
	p.Grains = 2000
	p.Steps = 1
	p.WriteStep = 1

	e, err := New(p, Options{Seed: 3})
	require.NoError(t, err)
	res, err := e.Run(context.Background())
	require.NoError(t, err)

	sigma := res.Final.MeanSigma
	s11 := sigma[0][0]
	require.Greater(t, s11, 0.0)

	// cubic crystals keep the hydrostatic part, so an isochoric strain gives
	// a traceless mean stress
	assert.InDelta(t, -s11/2, sigma[1][1], 0.05*s11)
	assert.InDelta(t, -s11/2, sigma[2][2], 0.05*s11)
	assert.InDelta(t, sigma[1][1], sigma[2][2], 0.05*s11)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if i != j {
				assert.InDelta(t, 0, sigma[i][j], 0.05*s11, "sigma[%d][%d]", i, j)
			}
		}
	}
}

func TestDefaultParamsIntegrateStably(t *testing.T) {
	p := DefaultParams()
	p.Grains = 6
	p.Steps = 1200 // 0.6 s at the default dt, past yield
	p.WriteStep = 200

	e, err := New(p, Options{Seed: 1})
	require.NoError(t, err)
	res, err := e.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, p.Steps, res.StepsTaken)

	s := res.Final.StressIntensity
	assert.False(t, math.IsNaN(s) || math.IsInf(s, 0), "stress intensity %g", s)
	assert.Greater(t, s, 0.0)
	// a purely elastic response at this strain would be several hundred MPa
	assert.Less(t, s, 300.0)
	assert.True(t, res.Final.MeanSigma.IsFinite())
}

func TestSingleGrainShearFollowsConvention(t *testing.T) {
	gradV := tensor.Mat3{{0, 1e-3, 0}, {1e-3, 0, 0}, {0, 0, 0}}
	tests := []struct {
		shear elastic.ShearConvention
		want  float64
	}{
		{elastic.ShearC44, 75400 * 0.01},
		{elastic.ShearDoubledC44, 2 * 75400 * 0.01},
	}
	for _, tt := range tests {
		t.Run(tt.shear.String(), func(t *testing.T) {
			p := elasticParams()
			p.Elastic.Shear = tt.shear
			e, err := New(p, Options{Path: kinematics.Constant{L: gradV}})
			require.NoError(t, err)
			res, err := e.Run(context.Background())
			require.NoError(t, err)

			final := res.Final
			assert.InDelta(t, 0.01, final.MeanEps[0][1], 1e-12)
			assert.InDelta(t, tt.want, final.MeanSigma[0][1], 1e-6)
			assert.InDelta(t, tt.want, final.MeanSigma[1][0], 1e-6)
		})
	}
}

func TestInitRepeatsFirstRun(t *testing.T) {
	e, err := New(plasticParams(), Options{Seed: 5})
	require.NoError(t, err)

	first, err := e.Run(context.Background())
	require.NoError(t, err)

	require.NoError(t, e.Init())
	second, err := e.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.Final.MeanSigma, second.Final.MeanSigma)
	assert.Equal(t, first.Final.Orientations, second.Final.Orientations)
	assert.Equal(t, first.Final.Grains, second.Final.Grains)
	assert.Equal(t, first.Nucleated, second.Nucleated)
}

func TestNewRecordChecksOrientation(t *testing.T) {
	e, err := New(plasticParams(), Options{Seed: 2})
	require.NoError(t, err)

	_, err = e.newRecord(1e-6, tensor.Diag(2, 1, 1), grain.Recrystallized)
	assert.ErrorIs(t, err, orientation.ErrNotOrthogonal)

	rec, err := e.spawn(1e-6)
	require.NoError(t, err)
	assert.True(t, orientation.IsOrthogonal(rec.Rotation))
	assert.Equal(t, grain.Recrystallized, rec.Status)
}
