package hydraulics

import "math"

// TurbulentThreshold is the Reynolds number at and below which flow is
// treated as laminar and the Colebrook model is not applied.
const TurbulentThreshold = 2000.0

// FlowState is the kinematic state of one evaluation.
type FlowState struct {
	FlowM3PerSec float64 `json:"flow_m3_s"`
	VelocityMS   float64 `json:"velocity_m_s"`
	Reynolds     float64 `json:"reynolds"`
}

// Turbulent reports whether the Colebrook model applies.
func (s FlowState) Turbulent() bool { return IsTurbulent(s.Reynolds) }

func IsTurbulent(reynolds float64) bool { return reynolds > TurbulentThreshold }

// M3PerHourToM3PerSec converts a volumetric flow from m³/h to m³/s.
func M3PerHourToM3PerSec(q float64) float64 { return q / 3600 }

// Velocity is the mean velocity Q / (π·(D/2)²). It returns NaN when D ≤ 0.
func Velocity(flowM3PerSec, diameterM float64) float64 {
	if diameterM <= 0 {
		return math.NaN()
	}
	section := math.Pi * (diameterM / 2) * (diameterM / 2)
	return flowM3PerSec / section
}

// Reynolds is v·D/ν. ν must be positive; see NewFlowState for the checked path.
func Reynolds(velocityMS, diameterM, nu float64) float64 {
	return velocityMS * diameterM / nu
}

// NewFlowState computes velocity and Reynolds number, rejecting a
// non-positive diameter or viscosity before any division happens.
func NewFlowState(flowM3PerSec, diameterM, nu float64) (FlowState, error) {
	if diameterM <= 0 || math.IsNaN(diameterM) {
		return FlowState{}, ErrNonPositiveDiameter
	}
	if nu <= 0 || math.IsNaN(nu) {
		return FlowState{}, ErrZeroViscosity
	}
	if flowM3PerSec < 0 {
		return FlowState{}, ErrNegativeFlow
	}
	v := Velocity(flowM3PerSec, diameterM)
	return FlowState{
		FlowM3PerSec: flowM3PerSec,
		VelocityMS:   v,
		Reynolds:     Reynolds(v, diameterM, nu),
	}, nil
}
