package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParams indicates a parameter outside its valid range.
	ErrInvalidParams = errors.New("engine: invalid parameters")

	// ErrDiverged indicates a grain stress became NaN or infinite.
	ErrDiverged = errors.New("engine: state diverged (NaN or Inf detected)")
)

// SimulationError wraps an error with the step and phase it occurred in.
type SimulationError struct {
	Step    int
	Time    float64
	Phase   string
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4g) %s: %v", e.Step, e.Time, e.Phase, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
