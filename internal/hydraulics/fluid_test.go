package hydraulics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKinematicViscosity(t *testing.T) {
	t.Run("should be positive and decrease over the documented domain", func(t *testing.T) {
		prev := KinematicViscosity(MinTemperatureC)
		assert.Greater(t, prev, 0.0)
		for temp := MinTemperatureC + 0.5; temp <= MaxTemperatureC; temp += 0.5 {
			nu := KinematicViscosity(temp)
			assert.Greater(t, nu, 0.0)
			assert.Less(t, nu, prev, "viscosity at %.1f °C", temp)
			prev = nu
		}
	})

	t.Run("should match water at 20 °C", func(t *testing.T) {
		// tabulated ν ≈ 1.004e-6 m²/s
		assert.InDelta(t, 1.0e-6, KinematicViscosity(20), 0.01e-6)
	})

	t.Run("should accept temperatures outside the domain", func(t *testing.T) {
		assert.Greater(t, KinematicViscosity(95), 0.0)
	})
}

func TestViscosityModels(t *testing.T) {
	t.Run("correlation follows temperature", func(t *testing.T) {
		m := CorrelationViscosity{}
		assert.Equal(t, KinematicViscosity(45), m.KinematicViscosity(45))
		assert.Equal(t, "correlation", m.Name())
	})

	t.Run("constant ignores temperature", func(t *testing.T) {
		m := ConstantAt(20)
		assert.Equal(t, m.KinematicViscosity(10), m.KinematicViscosity(80))
		assert.Equal(t, KinematicViscosity(20), m.KinematicViscosity(60))
		assert.Contains(t, m.Name(), "constant")
	})
}
