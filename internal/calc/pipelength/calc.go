package pipelength

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"Hydra/internal/catalog"
	"Hydra/internal/hydraulics"
)

var ErrInvalidInput = errors.New("invalid input")

type Input struct {
	TemperatureC        float64   `json:"temperature_c"`
	Material            string    `json:"material"`
	NominalSize         string    `json:"nominal_size"`
	FlowM3H             float64   `json:"flow_m3_h"`             // overrides the pump's rated flow when > 0
	PumpModel           string    `json:"pump_model"`            // optional, implies flow and head
	AvailableHeadMCE    float64   `json:"available_head_mce"`    // overrides the pump's head when > 0
	AvailablePressurePa float64   `json:"available_pressure_pa"` // alternative to AvailableHeadMCE
	Elbows              int       `json:"elbows"`
	ExtraDzeta          float64   `json:"extra_dzeta"`
	ExtraLossesMCE      []float64 `json:"extra_losses_mce"`
	DeductStaticLosses  bool      `json:"deduct_static_losses"`
}

type Result struct {
	Pipe           catalog.PipeSpec `json:"pipe"`
	PumpModel      string           `json:"pump_model,omitempty"`
	TemperatureC   float64          `json:"temperature_c"`
	ViscosityModel string           `json:"viscosity_model"`
	ViscosityM2S   float64          `json:"viscosity_m2_s"`
	FlowM3H        float64          `json:"flow_m3_h"`
	VelocityMS     float64          `json:"velocity_m_s"`
	Reynolds       float64          `json:"reynolds"`

	// nil when the flow is laminar
	FrictionFactor   *float64 `json:"friction_factor,omitempty"`
	SolverIterations int      `json:"solver_iterations,omitempty"`

	LossPerMetreMCE  float64 `json:"loss_per_metre_mce"`
	LossPerMetreMMCE float64 `json:"loss_per_metre_mmce"`
	LossPerMetrePa   float64 `json:"loss_per_metre_pa"`

	Losses           hydraulics.FixedLosses `json:"fixed_losses"`
	StaticDeducted   bool                   `json:"static_deducted"`
	FixedLossesMCE   float64                `json:"fixed_losses_total_mce"`
	AvailableHeadMCE float64                `json:"available_head_mce"`

	Outcome    hydraulics.Outcome `json:"outcome"`
	MaxLengthM float64            `json:"max_length_m"`
	Notes      string             `json:"notes"`
}

// Calculator evaluates one candidate circuit per call. It holds only
// read-only collaborators and is safe for concurrent use.
type Calculator struct {
	Catalog          *catalog.Set
	Viscosity        hydraulics.ViscosityModel
	Solver           hydraulics.Solver
	ElbowCoefficient float64
}

func New(set *catalog.Set, viscosity hydraulics.ViscosityModel, solver hydraulics.Solver, elbowCoefficient float64) *Calculator {
	if viscosity == nil {
		viscosity = hydraulics.CorrelationViscosity{}
	}
	return &Calculator{
		Catalog:          set,
		Viscosity:        viscosity,
		Solver:           solver,
		ElbowCoefficient: elbowCoefficient,
	}
}

func (c *Calculator) Calculate(in Input) (Result, error) {
	if err := validate(in); err != nil {
		return Result{}, err
	}
	pipe, err := c.Catalog.Pipes.Lookup(in.Material, in.NominalSize)
	if err != nil {
		return Result{}, err
	}
	flowM3H, headMCE, err := c.operatingPoint(in)
	if err != nil {
		return Result{}, err
	}

	var notes []string
	if in.TemperatureC < hydraulics.MinTemperatureC || in.TemperatureC > hydraulics.MaxTemperatureC {
		notes = append(notes, fmt.Sprintf("temperature %.0f °C is outside the 10–80 °C correlation domain", in.TemperatureC))
	}

	nu := c.Viscosity.KinematicViscosity(in.TemperatureC)
	state, err := hydraulics.NewFlowState(hydraulics.M3PerHourToM3PerSec(flowM3H), pipe.DiameterM(), nu)
	if err != nil {
		return Result{}, err
	}

	losses, deducted, err := c.fixedLosses(in, state.VelocityMS)
	if err != nil {
		return Result{}, err
	}
	if in.DeductStaticLosses && !deducted {
		notes = append(notes, "no static loss tabulated for this pump, none deducted")
	}
	fixed, err := losses.Total()
	if err != nil {
		return Result{}, err
	}

	res := Result{
		Pipe:             pipe,
		PumpModel:        in.PumpModel,
		TemperatureC:     in.TemperatureC,
		ViscosityModel:   c.Viscosity.Name(),
		ViscosityM2S:     nu,
		FlowM3H:          flowM3H,
		VelocityMS:       state.VelocityMS,
		Reynolds:         state.Reynolds,
		Losses:           losses,
		StaticDeducted:   deducted,
		FixedLossesMCE:   fixed,
		AvailableHeadMCE: headMCE,
	}

	if !state.Turbulent() {
		res.Outcome = hydraulics.MaxLength(hydraulics.Budget{Reynolds: state.Reynolds}).Outcome
		res.Notes = strings.Join(append(notes, "laminar flow, Colebrook is not applicable"), "; ")
		return res, nil
	}

	sol, err := c.Solver.Solve(state.Reynolds, pipe.RoughnessM(), pipe.DiameterM())
	if err != nil {
		return Result{}, fmt.Errorf("friction factor for %s %s: %w", pipe.Material, pipe.NominalSize, err)
	}
	f := sol.F
	res.FrictionFactor = &f
	res.SolverIterations = sol.Iterations
	res.LossPerMetreMCE = hydraulics.FrictionLossPerMetre(f, state.VelocityMS, pipe.DiameterM())
	res.LossPerMetreMMCE = res.LossPerMetreMCE * 1000
	res.LossPerMetrePa = hydraulics.FrictionPressurePerMetre(f, state.VelocityMS, pipe.DiameterM())

	length := hydraulics.MaxLength(hydraulics.Budget{
		Reynolds:      state.Reynolds,
		AvailableHead: headMCE,
		FixedLosses:   fixed,
		LossPerMetre:  res.LossPerMetreMCE,
	})
	res.Outcome = length.Outcome
	res.MaxLengthM = length.MaxLengthM
	if length.Outcome == hydraulics.OutcomeNoMargin {
		notes = append(notes, "fixed losses leave no head for the pipe run")
	}
	res.Notes = strings.Join(notes, "; ")
	return res, nil
}

// operatingPoint resolves flow (m³/h) and available head (mCE) from the pump
// model and the explicit overrides.
func (c *Calculator) operatingPoint(in Input) (flowM3H, headMCE float64, err error) {
	if in.PumpModel != "" {
		pump, err := c.Catalog.Pumps.Lookup(in.PumpModel)
		if err != nil {
			return 0, 0, err
		}
		flowM3H, headMCE = pump.RatedFlowM3H, pump.AvailableHeadMCE
	}
	if in.FlowM3H > 0 {
		flowM3H = in.FlowM3H
	}
	switch {
	case in.AvailableHeadMCE > 0:
		headMCE = in.AvailableHeadMCE
	case in.AvailablePressurePa > 0:
		headMCE = hydraulics.PressureToHead(in.AvailablePressurePa)
	}
	if headMCE <= 0 {
		return 0, 0, fmt.Errorf("%w: available head or pump model required", ErrInvalidInput)
	}
	return flowM3H, headMCE, nil
}

func (c *Calculator) fixedLosses(in Input, velocityMS float64) (hydraulics.FixedLosses, bool, error) {
	singular, err := hydraulics.SingularLoss(velocityMS, hydraulics.Fittings{
		Elbows:           in.Elbows,
		ElbowCoefficient: c.ElbowCoefficient,
		ExtraDzeta:       in.ExtraDzeta,
	})
	if err != nil {
		return hydraulics.FixedLosses{}, false, err
	}
	var extra float64
	for _, v := range in.ExtraLossesMCE {
		extra += v
	}
	static, ok := hydraulics.StaticDeduction(c.Catalog.StaticLosses, in.PumpModel, in.DeductStaticLosses)
	return hydraulics.FixedLosses{Singular: singular, Static: static, Extra: extra}, ok, nil
}

func validate(in Input) error {
	if in.Material == "" || in.NominalSize == "" {
		return fmt.Errorf("%w: material and nominal size required", ErrInvalidInput)
	}
	if math.IsNaN(in.TemperatureC) || in.TemperatureC < 0 || in.TemperatureC > 100 {
		return fmt.Errorf("%w: temperature %.1f °C", ErrInvalidInput, in.TemperatureC)
	}
	if in.FlowM3H < 0 || in.AvailableHeadMCE < 0 || in.AvailablePressurePa < 0 {
		return fmt.Errorf("%w: flow and head must not be negative", ErrInvalidInput)
	}
	if in.AvailableHeadMCE > 0 && in.AvailablePressurePa > 0 {
		return fmt.Errorf("%w: give either available head or available pressure", ErrInvalidInput)
	}
	if in.Elbows < 0 || in.ExtraDzeta < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidInput, hydraulics.ErrNegativeLoss)
	}
	for _, v := range in.ExtraLossesMCE {
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("%w: %w", ErrInvalidInput, hydraulics.ErrNegativeLoss)
		}
	}
	return nil
}
