package engine

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
)

// Ensemble repeats one configuration over consecutive seeds.
type Ensemble struct {
	params    Params
	opts      Options
	runs      int
	seedStart uint64
	limit     int
}

// NewEnsemble prepares runs engines seeded seedStart, seedStart+1, ...
// Observers in opts are not shared between runs and are dropped. limit
// bounds concurrent runs; zero means unbounded.
func NewEnsemble(p Params, opts Options, runs int, seedStart uint64, limit int) (*Ensemble, error) {
	if runs < 1 {
		return nil, fmt.Errorf("%w: ensemble needs at least one run, got %d", ErrInvalidParams, runs)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	opts.Observers = nil
	return &Ensemble{params: p, opts: opts, runs: runs, seedStart: seedStart, limit: limit}, nil
}

// Run executes every member; the first failure cancels the rest.
func (en *Ensemble) Run(ctx context.Context) ([]*Result, error) {
	results := make([]*Result, en.runs)

	g, gCtx := errgroup.WithContext(ctx)
	if en.limit > 0 {
		g.SetLimit(en.limit)
	}
	for i := 0; i < en.runs; i++ {
		g.Go(func() error {
			opts := en.opts
			opts.Seed = en.seedStart + uint64(i)

			e, err := New(en.params, opts)
			if err != nil {
				return err
			}
			res, err := e.Run(gCtx)
			if err != nil {
				return fmt.Errorf("seed %d: %w", opts.Seed, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Spread is the mean and sample standard deviation of a final quantity
// across ensemble members.
type Spread struct {
	Mean   float64
	StdDev float64
}

// EnsembleStats summarizes the final snapshots of an ensemble.
type EnsembleStats struct {
	StressIntensity Spread
	StrainIntensity Spread
	MeanEnergy      Spread
	Grains          Spread
}

func Summarize(results []*Result) EnsembleStats {
	n := len(results)
	stress := make([]float64, n)
	strain := make([]float64, n)
	energy := make([]float64, n)
	grains := make([]float64, n)
	for i, r := range results {
		stress[i] = r.Final.StressIntensity
		strain[i] = r.Final.StrainIntensity
		energy[i] = r.Final.MeanEnergy
		grains[i] = float64(r.Final.Grains)
	}
	return EnsembleStats{
		StressIntensity: spread(stress),
		StrainIntensity: spread(strain),
		MeanEnergy:      spread(energy),
		Grains:          spread(grains),
	}
}

func spread(xs []float64) Spread {
	if len(xs) < 2 {
		if len(xs) == 1 {
			return Spread{Mean: xs[0]}
		}
		return Spread{}
	}
	mean, std := stat.MeanStdDev(xs, nil)
	return Spread{Mean: mean, StdDev: std}
}
