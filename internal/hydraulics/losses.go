package hydraulics

import "math"

// DefaultElbowCoefficient is the loss coefficient ζ of one 90° elbow.
const DefaultElbowCoefficient = 0.45

// VelocityHead is v²/(2·g) in metres of water column.
func VelocityHead(velocityMS float64) float64 {
	return velocityMS * velocityMS / (2 * Gravity)
}

// FrictionLossPerMetre is the Darcy–Weisbach loss f·(v²/2)·(1/D), expressed in mCE/m.
func FrictionLossPerMetre(f, velocityMS, diameterM float64) float64 {
	return f * VelocityHead(velocityMS) / diameterM
}

// FrictionPressurePerMetre is the same loss in Pa/m.
func FrictionPressurePerMetre(f, velocityMS, diameterM float64) float64 {
	return f * WaterDensity * velocityMS * velocityMS / (2 * diameterM)
}

// HeadToPressure converts metres of water column to Pa.
func HeadToPressure(headMCE float64) float64 { return headMCE * WaterDensity * Gravity }

// PressureToHead converts Pa to metres of water column.
func PressureToHead(pa float64) float64 { return pa / (WaterDensity * Gravity) }

// Fittings describes the singular losses of a circuit.
type Fittings struct {
	Elbows           int
	ElbowCoefficient float64 // ζ per elbow, DefaultElbowCoefficient when zero
	ExtraDzeta       float64 // sum of other loss coefficients
}

// SingularLoss is (elbows·ζ + Σζ)·v²/(2·g) in mCE.
func SingularLoss(velocityMS float64, fit Fittings) (float64, error) {
	if fit.Elbows < 0 || fit.ElbowCoefficient < 0 || fit.ExtraDzeta < 0 {
		return 0, ErrNegativeLoss
	}
	k := fit.ElbowCoefficient
	if k == 0 {
		k = DefaultElbowCoefficient
	}
	return (float64(fit.Elbows)*k + fit.ExtraDzeta) * VelocityHead(velocityMS), nil
}

// FixedLosses groups the additive, length-independent loss terms in mCE.
type FixedLosses struct {
	Singular float64 `json:"singular_mce"`
	Static   float64 `json:"static_mce"`
	Extra    float64 `json:"extra_mce"`
}

// Total validates every term and returns their sum.
func (l FixedLosses) Total() (float64, error) {
	for _, v := range []float64{l.Singular, l.Static, l.Extra} {
		if v < 0 || math.IsNaN(v) {
			return 0, ErrNegativeLoss
		}
	}
	return l.Singular + l.Static + l.Extra, nil
}

// StaticLossSource is the lookup side of a static fittings-loss table.
type StaticLossSource interface {
	StaticLoss(pumpLabel string) (float64, bool)
}

// StaticDeduction returns the tabulated fittings loss of a pump model when the
// caller opted in and the label is known; ok is false otherwise and the caller
// falls back to zero.
func StaticDeduction(src StaticLossSource, pumpLabel string, deduct bool) (loss float64, ok bool) {
	if !deduct || src == nil || pumpLabel == "" {
		return 0, false
	}
	return src.StaticLoss(pumpLabel)
}
