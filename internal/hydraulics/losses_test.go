package hydraulics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticTable map[string]float64

func (t staticTable) StaticLoss(label string) (float64, bool) {
	v, ok := t[label]
	return v, ok
}

func TestFrictionLossPerMetre(t *testing.T) {
	t.Run("head and pressure views agree", func(t *testing.T) {
		head := FrictionLossPerMetre(0.0245, 0.729, 0.053)
		pa := FrictionPressurePerMetre(0.0245, 0.729, 0.053)
		assert.InDelta(t, pa, HeadToPressure(head), 1e-9)
		assert.InDelta(t, 0.01251, head, 1e-4)
	})

	t.Run("pressure round trip", func(t *testing.T) {
		assert.InDelta(t, 5.5, PressureToHead(HeadToPressure(5.5)), 1e-12)
	})
}

func TestSingularLoss(t *testing.T) {
	y := VelocityHead(1.2)

	t.Run("should default the elbow coefficient", func(t *testing.T) {
		got, err := SingularLoss(1.2, Fittings{Elbows: 4})
		require.NoError(t, err)
		assert.InDelta(t, 4*0.45*y, got, 1e-12)
	})

	t.Run("should add extra dzeta", func(t *testing.T) {
		got, err := SingularLoss(1.2, Fittings{Elbows: 2, ElbowCoefficient: 0.3, ExtraDzeta: 1.5})
		require.NoError(t, err)
		assert.InDelta(t, (2*0.3+1.5)*y, got, 1e-12)
	})

	t.Run("should reject negative terms", func(t *testing.T) {
		_, err := SingularLoss(1.2, Fittings{Elbows: -1})
		assert.ErrorIs(t, err, ErrNegativeLoss)
		_, err = SingularLoss(1.2, Fittings{ExtraDzeta: -0.1})
		assert.ErrorIs(t, err, ErrNegativeLoss)
	})
}

func TestFixedLossesTotal(t *testing.T) {
	total, err := FixedLosses{Singular: 0.4, Static: 1.1, Extra: 0.5}.Total()
	require.NoError(t, err)
	assert.InDelta(t, 2.0, total, 1e-12)

	_, err = FixedLosses{Singular: 0.4, Extra: -0.5}.Total()
	assert.ErrorIs(t, err, ErrNegativeLoss)
}

func TestStaticDeduction(t *testing.T) {
	table := staticTable{"MMTC 33": 1.35}

	loss, ok := StaticDeduction(table, "MMTC 33", true)
	assert.True(t, ok)
	assert.Equal(t, 1.35, loss)

	_, ok = StaticDeduction(table, "MMTC 33", false)
	assert.False(t, ok, "not deducted unless opted in")

	_, ok = StaticDeduction(table, "unknown", true)
	assert.False(t, ok)

	_, ok = StaticDeduction(nil, "MMTC 33", true)
	assert.False(t, ok)
}
