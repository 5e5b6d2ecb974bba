package hydraulics

import (
	"fmt"
	"math"
)

// Method selects the root finder used on the Colebrook–White relation.
type Method string

const (
	MethodNewton    Method = "newton"
	MethodBisection Method = "bisection"
)

// Form selects which arrangement of the Colebrook–White relation is used
// as the convergence residual. Both share the same root.
type Form string

const (
	// 1/√f + 2·log10(ε/(3.7·D) + 2.51/(Re·√f)) = 0
	FormSymmetric Form = "symmetric"
	// −2·log10(ε/(3.7·D) + 2.51/(Re·√f)) − 1/√f = 0
	FormExplicit Form = "explicit"
)

const (
	DefaultInitialGuess  = 0.02
	DefaultTolerance     = 1e-10
	DefaultMaxIterations = 100
)

// bisection bracket on x = 1/√f, i.e. f between 1e-6 and 4
const (
	bracketLowX  = 0.5
	bracketHighX = 1000.0
)

func ParseMethod(s string) (Method, error) {
	switch m := Method(s); m {
	case MethodNewton, MethodBisection:
		return m, nil
	}
	return "", fmt.Errorf("unknown solver method %q", s)
}

func ParseForm(s string) (Form, error) {
	switch f := Form(s); f {
	case FormSymmetric, FormExplicit:
		return f, nil
	}
	return "", fmt.Errorf("unknown colebrook form %q", s)
}

// Solver finds the Darcy friction factor for turbulent flow.
// Zero-valued fields fall back to the package defaults.
type Solver struct {
	Method        Method
	Form          Form
	InitialGuess  float64
	Tolerance     float64 // on |residual| of the selected form
	MaxIterations int
}

// Solution is a converged friction factor.
type Solution struct {
	F          float64 `json:"f"`
	Iterations int     `json:"iterations"`
	Residual   float64 `json:"residual"`
}

func DefaultSolver() Solver {
	return Solver{
		Method:        MethodNewton,
		Form:          FormSymmetric,
		InitialGuess:  DefaultInitialGuess,
		Tolerance:     DefaultTolerance,
		MaxIterations: DefaultMaxIterations,
	}
}

// Residual evaluates the chosen Colebrook–White form at f.
func Residual(form Form, f, reynolds, roughnessM, diameterM float64) float64 {
	s := math.Sqrt(f)
	arg := roughnessM/(3.7*diameterM) + 2.51/(reynolds*s)
	if form == FormExplicit {
		return -2*math.Log10(arg) - 1/s
	}
	return 1/s + 2*math.Log10(arg)
}

// Solve returns the friction factor for Re > TurbulentThreshold.
// Laminar input yields ErrNotTurbulent; running out of iterations yields a
// *ConvergenceError, never the initial guess.
func (s Solver) Solve(reynolds, roughnessM, diameterM float64) (Solution, error) {
	switch {
	case diameterM <= 0 || math.IsNaN(diameterM):
		return Solution{}, ErrNonPositiveDiameter
	case reynolds <= 0 || math.IsNaN(reynolds):
		return Solution{}, ErrNonPositiveReynolds
	case roughnessM < 0:
		return Solution{}, ErrNegativeRoughness
	case !IsTurbulent(reynolds):
		return Solution{}, fmt.Errorf("%w (Re=%.1f)", ErrNotTurbulent, reynolds)
	}
	s = s.withDefaults()

	p := colebrookProblem{
		a:    roughnessM / (3.7 * diameterM),
		b:    2.51 / reynolds,
		form: s.Form,
		re:   reynolds,
		eps:  roughnessM,
		d:    diameterM,
	}
	if s.Method == MethodBisection {
		return s.bisect(p)
	}
	return s.newton(p)
}

func (s Solver) withDefaults() Solver {
	if s.Method == "" {
		s.Method = MethodNewton
	}
	if s.Form == "" {
		s.Form = FormSymmetric
	}
	if s.InitialGuess <= 0 {
		s.InitialGuess = DefaultInitialGuess
	}
	if s.Tolerance <= 0 {
		s.Tolerance = DefaultTolerance
	}
	if s.MaxIterations <= 0 {
		s.MaxIterations = DefaultMaxIterations
	}
	return s
}

// colebrookProblem works in x = 1/√f where the relation reads
// g(x) = x + 2·log10(a + b·x) = 0, increasing and concave in x.
type colebrookProblem struct {
	a, b       float64
	form       Form
	re, eps, d float64
}

func (p colebrookProblem) g(x float64) float64 { return x + 2*math.Log10(p.a+p.b*x) }

func (p colebrookProblem) dg(x float64) float64 { return 1 + 2*p.b/((p.a+p.b*x)*math.Ln10) }

func (p colebrookProblem) residual(x float64) float64 {
	return Residual(p.form, 1/(x*x), p.re, p.eps, p.d)
}

func (s Solver) newton(p colebrookProblem) (Solution, error) {
	x := 1 / math.Sqrt(s.InitialGuess)
	r := p.residual(x)
	for i := 1; i <= s.MaxIterations; i++ {
		next := x - p.g(x)/p.dg(x)
		if next <= 0 || math.IsNaN(next) || math.IsInf(next, 0) {
			next = x / 2
		}
		x = next
		r = p.residual(x)
		if math.Abs(r) <= s.Tolerance {
			return Solution{F: 1 / (x * x), Iterations: i, Residual: r}, nil
		}
	}
	return Solution{}, &ConvergenceError{Method: MethodNewton, Iterations: s.MaxIterations, F: 1 / (x * x), Residual: r}
}

func (s Solver) bisect(p colebrookProblem) (Solution, error) {
	lo, hi := bracketLowX, bracketHighX
	if p.g(lo) > 0 || p.g(hi) < 0 {
		return Solution{}, &ConvergenceError{Method: MethodBisection, F: math.NaN(), Residual: math.NaN()}
	}
	// the initial guess narrows the bracket
	if x0 := 1 / math.Sqrt(s.InitialGuess); x0 > lo && x0 < hi {
		if p.g(x0) < 0 {
			lo = x0
		} else {
			hi = x0
		}
	}

	var x, r float64
	for i := 1; i <= s.MaxIterations; i++ {
		x = (lo + hi) / 2
		r = p.residual(x)
		if math.Abs(r) <= s.Tolerance {
			return Solution{F: 1 / (x * x), Iterations: i, Residual: r}, nil
		}
		if p.g(x) < 0 {
			lo = x
		} else {
			hi = x
		}
	}
	return Solution{}, &ConvergenceError{Method: MethodBisection, Iterations: s.MaxIterations, F: 1 / (x * x), Residual: r}
}

// Colebrook solves with DefaultSolver.
func Colebrook(reynolds, roughnessM, diameterM float64) (float64, error) {
	sol, err := DefaultSolver().Solve(reynolds, roughnessM, diameterM)
	if err != nil {
		return 0, err
	}
	return sol.F, nil
}
