package hydraulics

import (
	"fmt"
	"math"
)

const (
	WaterDensity = 1000.0 // kg/m³
	Gravity      = 9.81   // m/s²

	// documented validity domain of the viscosity correlation, °C
	MinTemperatureC = 10.0
	MaxTemperatureC = 80.0
)

// DynamicViscosity returns the viscosity of water in Pa·s from the
// Vogel-type correlation μ = 2.414e-5 · 10^(247.8 / (T + 273.15 − 140)).
func DynamicViscosity(temperatureC float64) float64 {
	return 2.414e-5 * math.Pow(10, 247.8/(temperatureC+273.15-140))
}

// KinematicViscosity returns ν in m²/s. Temperatures outside 10–80 °C are
// accepted but the correlation degrades there.
func KinematicViscosity(temperatureC float64) float64 {
	return DynamicViscosity(temperatureC) / WaterDensity
}

// ViscosityModel resolves the kinematic viscosity used for a given water temperature.
type ViscosityModel interface {
	KinematicViscosity(temperatureC float64) float64
	Name() string
}

// CorrelationViscosity evaluates the temperature correlation on every call.
type CorrelationViscosity struct{}

func (CorrelationViscosity) KinematicViscosity(temperatureC float64) float64 {
	return KinematicViscosity(temperatureC)
}

func (CorrelationViscosity) Name() string { return "correlation" }

// ConstantViscosity ignores the temperature and always returns Nu.
type ConstantViscosity struct {
	Nu         float64 // m²/s
	ReferenceC float64 // temperature the constant stands for, informative
}

func (c ConstantViscosity) KinematicViscosity(float64) float64 { return c.Nu }

func (c ConstantViscosity) Name() string {
	return fmt.Sprintf("constant(%.4g m²/s @ %.0f °C)", c.Nu, c.ReferenceC)
}

// ConstantAt freezes the correlation at a reference temperature.
func ConstantAt(referenceC float64) ConstantViscosity {
	return ConstantViscosity{Nu: KinematicViscosity(referenceC), ReferenceC: referenceC}
}
