package coil

import (
	"errors"
	"fmt"
	"iter"
	"math"

	"Hydra/internal/catalog"
)

var ErrInvalidInput = errors.New("invalid input")

const (
	DefaultCurvePoints = 30
	maxCurvePoints     = 500
)

// QuadraticLoss scales a reference loss by the square of the flow ratio:
// Δh = Δh_ref · (Q / Q_ref)².
func QuadraticLoss(flow, referenceFlow, referenceLoss float64) (float64, error) {
	if referenceFlow <= 0 || referenceLoss < 0 || flow < 0 {
		return 0, fmt.Errorf("%w: flow %.3g, reference %.3g / %.3g", ErrInvalidInput, flow, referenceFlow, referenceLoss)
	}
	r := flow / referenceFlow
	return referenceLoss * r * r, nil
}

// Curve samples the quadratic law over [From, To] with Points evenly spaced values.
type Curve struct {
	ReferenceFlow float64
	ReferenceLoss float64
	From, To      float64
	Points        int
}

type Point struct {
	FlowM3H float64 `json:"flow_m3_h"`
	LossMCE float64 `json:"loss_mce"`
}

func (c Curve) validate() error {
	if c.ReferenceFlow <= 0 || c.ReferenceLoss < 0 {
		return fmt.Errorf("%w: reference point", ErrInvalidInput)
	}
	if c.From < 0 || c.To < c.From || math.IsNaN(c.From) || math.IsNaN(c.To) {
		return fmt.Errorf("%w: curve domain [%g, %g]", ErrInvalidInput, c.From, c.To)
	}
	if c.Points < 2 || c.Points > maxCurvePoints {
		return fmt.Errorf("%w: %d curve points", ErrInvalidInput, c.Points)
	}
	return nil
}

// All yields (flow, loss) pairs. It can be ranged over any number of times.
func (c Curve) All() iter.Seq2[float64, float64] {
	return func(yield func(float64, float64) bool) {
		if c.validate() != nil {
			return
		}
		step := (c.To - c.From) / float64(c.Points-1)
		for i := 0; i < c.Points; i++ {
			q := c.From + float64(i)*step
			if i == c.Points-1 {
				q = c.To
			}
			r := q / c.ReferenceFlow
			if !yield(q, c.ReferenceLoss*r*r) {
				return
			}
		}
	}
}

func (c Curve) Sample() ([]Point, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}
	out := make([]Point, 0, c.Points)
	for q, h := range c.All() {
		out = append(out, Point{FlowM3H: q, LossMCE: h})
	}
	return out, nil
}

type Input struct {
	Tank             string  `json:"tank"` // catalog label, or give the reference pair
	ReferenceFlowM3H float64 `json:"reference_flow_m3_h"`
	ReferenceLossMCE float64 `json:"reference_loss_mce"`
	FlowM3H          float64 `json:"flow_m3_h"`
	CurveFromM3H     float64 `json:"curve_from_m3_h"`
	CurveToM3H       float64 `json:"curve_to_m3_h"` // defaults to twice the reference flow
	CurvePoints      int     `json:"curve_points"`
}

type Result struct {
	Tank             string  `json:"tank,omitempty"`
	ReferenceFlowM3H float64 `json:"reference_flow_m3_h"`
	ReferenceLossMCE float64 `json:"reference_loss_mce"`
	FlowM3H          float64 `json:"flow_m3_h"`
	LossMCE          float64 `json:"loss_mce"`
	Curve            []Point `json:"curve"`
}

// Calculate resolves the reference point from the coil table when a tank
// label is given, otherwise from the explicit pair.
func Calculate(coils *catalog.CoilTable, in Input) (Result, error) {
	refFlow, refLoss := in.ReferenceFlowM3H, in.ReferenceLossMCE
	if in.Tank != "" {
		c, err := coils.Lookup(in.Tank)
		if err != nil {
			return Result{}, err
		}
		refFlow, refLoss = c.ReferenceFlowM3H, c.ReferenceLossMCE
	}
	loss, err := QuadraticLoss(in.FlowM3H, refFlow, refLoss)
	if err != nil {
		return Result{}, err
	}

	curve := Curve{
		ReferenceFlow: refFlow,
		ReferenceLoss: refLoss,
		From:          in.CurveFromM3H,
		To:            in.CurveToM3H,
		Points:        in.CurvePoints,
	}
	if curve.To == 0 {
		curve.To = math.Max(2*refFlow, in.FlowM3H)
	}
	if curve.Points == 0 {
		curve.Points = DefaultCurvePoints
	}
	points, err := curve.Sample()
	if err != nil {
		return Result{}, err
	}
	return Result{
		Tank:             in.Tank,
		ReferenceFlowM3H: refFlow,
		ReferenceLossMCE: refLoss,
		FlowM3H:          in.FlowM3H,
		LossMCE:          loss,
		Curve:            points,
	}, nil
}
