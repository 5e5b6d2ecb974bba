package hydraulics

import (
	"errors"
	"fmt"
)

var (
	ErrNonPositiveDiameter = errors.New("hydraulics: diameter must be positive")
	ErrZeroViscosity       = errors.New("hydraulics: kinematic viscosity must be positive")
	ErrNonPositiveReynolds = errors.New("hydraulics: reynolds number must be positive")
	ErrNegativeLoss        = errors.New("hydraulics: loss term must not be negative")
	ErrNegativeFlow        = errors.New("hydraulics: flow must not be negative")
	ErrNegativeRoughness   = errors.New("hydraulics: roughness must not be negative")
	ErrNotTurbulent        = errors.New("hydraulics: colebrook applies to turbulent flow only")
	ErrNoConvergence       = errors.New("hydraulics: colebrook solve did not converge")
)

// ConvergenceError carries the state of a root search that ran out of iterations.
type ConvergenceError struct {
	Method     Method
	Iterations int
	F          float64 // last iterate
	Residual   float64
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("%s after %d iterations (%s, f=%.6g, residual=%.3g)",
		ErrNoConvergence, e.Iterations, e.Method, e.F, e.Residual)
}

func (e *ConvergenceError) Unwrap() error { return ErrNoConvergence }
