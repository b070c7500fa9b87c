package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/san-kum/polycryst/internal/aggregate"
	"github.com/san-kum/polycryst/internal/elastic"
	"github.com/san-kum/polycryst/internal/grain"
	"github.com/san-kum/polycryst/internal/kinematics"
	"github.com/san-kum/polycryst/internal/orientation"
	"github.com/san-kum/polycryst/internal/recryst"
	"github.com/san-kum/polycryst/internal/slip"
	"github.com/san-kum/polycryst/internal/tensor"
)

// DefaultStrainRate is the uniaxial tension rate used when no path is given.
const DefaultStrainRate = 1e-2

// Options carry the pluggable parts of an Engine. Zero values select the
// defaults noted on each field.
type Options struct {
	Seed uint64

	// Geometry defaults to the FCC {111}<110> family.
	Geometry *slip.Geometry
	// Path defaults to uniaxial tension at DefaultStrainRate.
	Path kinematics.Path
	// Spin defaults to orientation.Fixed.
	Spin orientation.Updater
	// Growth defaults to recryst.NoGrowth.
	Growth recryst.GrowthModel

	Logger    *slog.Logger
	Observers []Observer

	// Workers bounds the goroutines of the parallel phases; zero means
	// GOMAXPROCS.
	Workers int

	// KeepGrains copies per-grain stress and strain into snapshots.
	KeepGrains bool
}

type Engine struct {
	params    Params
	opts      Options
	stiffness tensor.Mat6
	rng       *rand.Rand
	logger    *slog.Logger
	observers []Observer

	table       *grain.Table
	step        int
	time        float64
	meanEnergy  float64
	initialized bool
}

// New validates p and returns an engine ready for Init.
func New(p Params, opts Options) (*Engine, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	stiffness, err := elastic.NewStiffness(p.Elastic)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}

	if opts.Geometry == nil {
		opts.Geometry = slip.DefaultFCC()
	}
	if opts.Path == nil {
		opts.Path = kinematics.Constant{L: kinematics.UniaxialTension(DefaultStrainRate)}
	}
	if opts.Spin == nil {
		opts.Spin = orientation.Fixed{}
	}
	if opts.Growth == nil {
		opts.Growth = recryst.NoGrowth{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Engine{
		params:    p,
		opts:      opts,
		stiffness: stiffness,
		rng:       newRand(opts.Seed),
		logger:    logger.With("component", "engine"),
		observers: append([]Observer(nil), opts.Observers...),
	}, nil
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func (e *Engine) AddObserver(o Observer) { e.observers = append(e.observers, o) }

func (e *Engine) Params() Params { return e.params }
func (e *Engine) StepIndex() int { return e.step }
func (e *Engine) Time() float64  { return e.time }
func (e *Engine) Len() int {
	if e.table == nil {
		return 0
	}
	return e.table.Len()
}

// Grain returns a copy of one grain row.
func (e *Engine) Grain(id grain.ID) (grain.Record, bool) {
	if e.table == nil || !e.table.Contains(id) {
		return grain.Record{}, false
	}
	return e.table.Row(id), true
}

// Init builds the initial population. It is called by Step and Run when
// needed; calling it again reseeds the random source and starts over, so a
// re-initialized engine repeats its first run.
func (e *Engine) Init() error {
	p := e.params
	e.rng = newRand(e.opts.Seed)
	sizes, err := recryst.SampleGrainSizes(e.rng, p.Grains, p.GrainSizeMean, p.GrainSizeStdDev)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}

	t := grain.NewTable(p.Grains)
	for _, d := range sizes {
		rec, err := e.newRecord(d, tensor.Identity(), grain.Deformed)
		if err != nil {
			return err
		}
		t.Append(rec)
	}
	if err := orientation.Initialize(t, e.rng); err != nil {
		return err
	}
	if err := t.Validate(); err != nil {
		return err
	}

	e.table = t
	e.step = 0
	e.time = 0
	e.meanEnergy = 0
	e.initialized = true

	e.logger.Info("population initialized",
		"grains", t.Len(),
		"mean_size", aggregate.MeanGrainSize(t),
		"path", fmt.Sprintf("%T", e.opts.Path),
		"spin", e.opts.Spin.Name(),
		"growth", e.opts.Growth.Name(),
	)
	return nil
}

func (e *Engine) newRecord(size float64, rot tensor.Mat3, status grain.Status) (grain.Record, error) {
	if err := orientation.Check(rot); err != nil {
		return grain.Record{}, fmt.Errorf("new %s grain: %w", status, err)
	}
	p := e.params
	g := e.opts.Geometry
	rec := grain.Record{
		Rotation:  rot,
		Stiffness: e.stiffness,
		Burgers:   &g.Burgers,
		Normals:   &g.Normals,
		Schmid:    &g.Schmid,
		TauC:      p.HallPetch.InitialCritical(p.TauC0, size),
		GrainSize: size,
		Status:    status,
	}
	if p.Recrystallization {
		sub, err := recryst.SampleRayleigh(e.rng, p.SubGrains, p.R0)
		if err != nil {
			return grain.Record{}, err
		}
		rec.SubGrains = sub
	}
	return rec, nil
}

func (e *Engine) spawn(radius float64) (grain.Record, error) {
	return e.newRecord(radius, orientation.Random(e.rng), grain.Recrystallized)
}

// Step advances the polycrystal by one time step.
func (e *Engine) Step(ctx context.Context) (StepStats, error) {
	if !e.initialized {
		if err := e.Init(); err != nil {
			return StepStats{}, err
		}
	}

	start := time.Now()
	p := e.params
	t := e.table
	dt := p.Dt

	l, err := e.opts.Path.At(e.time)
	if err != nil {
		return StepStats{}, e.fail("kinematics", err)
	}
	kinematics.Update(t, l)

	slip.ResolveShear(t, dt)
	slip.UpdateSlipRates(t, p.Flow)
	slip.AccumulateSlip(t, dt)
	slip.UpdateHardening(t, p.Hardening)
	slip.IntegrateCritical(t, dt)

	elastic.UpdatePlasticRate(t)
	elastic.UpdateStressRate(t)
	elastic.IntegrateStress(t, dt)
	kinematics.IntegrateStrain(t, dt)

	recryst.UpdateEnergy(t, p.Alpha, p.StressUnits, dt)
	e.meanEnergy = recryst.MeanEnergy(t)

	if err := e.opts.Spin.Update(ctx, t, dt); err != nil {
		return StepStats{}, e.fail("orientation", err)
	}
	e.opts.Growth.Grow(t, e.meanEnergy, p.HallPetch, dt)

	nucleated := 0
	if p.Recrystallization {
		recryst.UpdateDriveForce(t, e.meanEnergy, p.Egb, p.Eligibility)
		events, err := recryst.Detect(ctx, t, p.Eligibility, e.opts.Workers)
		if err != nil {
			return StepStats{}, e.fail("nucleation", err)
		}
		ids, err := recryst.Apply(t, events, p.HallPetch, e.spawn)
		if err != nil {
			return StepStats{}, e.fail("nucleation", err)
		}
		nucleated = len(ids)
		if nucleated > 0 {
			e.logger.Debug("grains nucleated", "step", e.step, "count", nucleated, "grains", t.Len())
		}
	}

	if err := t.Validate(); err != nil {
		return StepStats{}, e.fail("validate", err)
	}
	if err := checkFinite(t); err != nil {
		return StepStats{}, e.fail("validate", err)
	}

	e.step++
	e.time += dt

	stats := StepStats{
		Step:      e.step,
		Time:      e.time,
		Duration:  time.Since(start),
		Grains:    t.Len(),
		Nucleated: nucleated,
	}
	for _, o := range e.observers {
		if so, ok := o.(StepObserver); ok {
			so.OnStep(stats)
		}
	}
	return stats, nil
}

func checkFinite(t *grain.Table) error {
	for i, s := range t.Sigma {
		if !s.Tensor().IsFinite() {
			return fmt.Errorf("%w: grain %d", ErrDiverged, i)
		}
	}
	return nil
}

func (e *Engine) fail(phase string, err error) error {
	e.logger.Error("step failed", "step", e.step, "phase", phase, "error", err)
	return &SimulationError{Step: e.step, Time: e.time, Phase: phase, Wrapped: err}
}

// Snapshot captures the current aggregate state.
func (e *Engine) Snapshot() Snapshot {
	if !e.initialized {
		return Snapshot{}
	}
	t := e.table
	w := e.params.Weighting
	sigma := aggregate.MeanSigma(t, w)
	eps := aggregate.MeanEps(t, w)

	s := Snapshot{
		Step:            e.step,
		Time:            e.time,
		Grains:          t.Len(),
		Recrystallized:  aggregate.CountRecrystallized(t),
		MeanSigma:       sigma,
		MeanEps:         eps,
		StressIntensity: aggregate.StressIntensity(sigma),
		StrainIntensity: aggregate.StrainIntensity(eps),
		MeanEnergy:      recryst.MeanEnergy(t),
		MeanGrainSize:   aggregate.MeanGrainSize(t),
		Orientations:    append([]tensor.Mat3(nil), t.Rotation...),
	}
	if e.opts.KeepGrains {
		s.Sigma = make([]tensor.Mat3, t.Len())
		s.Eps = make([]tensor.Mat3, t.Len())
		for i := range s.Sigma {
			s.Sigma[i] = t.Sigma[i].Tensor()
			s.Eps[i] = t.Eps[i].Tensor()
		}
	}
	return s
}

func (e *Engine) report(res *Result) error {
	snap := e.Snapshot()
	res.Series = append(res.Series, snap.Sample())
	res.Final = snap
	for _, o := range e.observers {
		if err := o.OnSnapshot(snap); err != nil {
			return e.fail("report", err)
		}
	}
	return nil
}

// Run steps until Params.Steps, reporting every WriteStep steps and once
// more at the end. On cancellation it returns the partial result along with
// ctx.Err().
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	if !e.initialized {
		if err := e.Init(); err != nil {
			return nil, err
		}
	}

	p := e.params
	began := time.Now()
	res := &Result{Series: make([]Sample, 0, p.Steps/p.WriteStep+2)}

	e.logger.Info("run started", "steps", p.Steps, "dt", p.Dt, "grains", e.table.Len())

	for e.step < p.Steps {
		select {
		case <-ctx.Done():
			res.Elapsed = time.Since(began)
			return res, ctx.Err()
		default:
		}

		if e.step%p.WriteStep == 0 {
			if err := e.report(res); err != nil {
				return res, err
			}
		}

		stats, err := e.Step(ctx)
		if err != nil {
			res.Elapsed = time.Since(began)
			return res, err
		}
		res.StepsTaken++
		res.Nucleated += stats.Nucleated
	}

	if err := e.report(res); err != nil {
		return res, err
	}
	res.Elapsed = time.Since(began)

	e.logger.Info("run finished",
		"steps", res.StepsTaken,
		"grains", e.table.Len(),
		"nucleated", res.Nucleated,
		"stress_intensity", res.Final.StressIntensity,
		"elapsed", res.Elapsed,
	)
	return res, nil
}
