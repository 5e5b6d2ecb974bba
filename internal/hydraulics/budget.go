package hydraulics

// Outcome tags a LengthResult.
type Outcome string

const (
	OutcomeOK       Outcome = "ok"
	OutcomeNoMargin Outcome = "no_margin"
	OutcomeLaminar  Outcome = "laminar"
)

// Budget is the head balance of one circuit, heads in mCE.
type Budget struct {
	Reynolds      float64
	AvailableHead float64
	FixedLosses   float64
	LossPerMetre  float64 // mCE/m, only meaningful when turbulent
}

// LengthResult is the tagged outcome of the budget inversion.
// MaxLengthM is set only when Outcome is OutcomeOK.
type LengthResult struct {
	Outcome    Outcome `json:"outcome"`
	MaxLengthM float64 `json:"max_length_m,omitempty"`
}

func (r LengthResult) OK() bool { return r.Outcome == OutcomeOK }

// MaxLength inverts (head − fixed) / lossPerMetre.
func MaxLength(b Budget) LengthResult {
	if !IsTurbulent(b.Reynolds) {
		return LengthResult{Outcome: OutcomeLaminar}
	}
	if b.LossPerMetre <= 0 {
		return LengthResult{Outcome: OutcomeNoMargin}
	}
	raw := (b.AvailableHead - b.FixedLosses) / b.LossPerMetre
	if raw <= 0 {
		return LengthResult{Outcome: OutcomeNoMargin}
	}
	return LengthResult{Outcome: OutcomeOK, MaxLengthM: raw}
}
