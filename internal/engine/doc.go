// Package engine advances a polycrystal through time.
//
// The engine owns the grain table and runs the per-step pipeline:
//
//   - kinematics: crystal-frame velocity gradient and strain rate
//   - slip: resolved shear, slip rates, accumulated slip, hardening
//   - elastic: plastic strain rate, Hooke's law, stress
//   - recrystallization: stored energy, driving forces, nucleation
//
// Optional capabilities plug in through [Options]: an
// [orientation.Updater] for lattice spin and a [recryst.GrowthModel] for
// boundary migration.
//
// # Example
//
//	eng, err := engine.New(engine.DefaultParams(), engine.Options{Seed: 42})
//	if err != nil {
//		return err
//	}
//	result, err := eng.Run(ctx)
//
// # Thread Safety
//
// An Engine is NOT safe for concurrent use. Steps fan out over grains
// internally; observers are called synchronously from the stepping goroutine.
package engine
