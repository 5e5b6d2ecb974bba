package batch

import (
	"context"
	"errors"
	"fmt"

	"Hydra/internal/calc/pipelength"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const MaxItems = 1000

var (
	ErrNoItems      = errors.New("no items")
	ErrTooManyItems = fmt.Errorf("more than %d items", MaxItems)
)

type Input struct {
	Items []pipelength.Input `json:"items"`
}

// Outcome is the evaluation of one item; a failing item does not fail the batch.
type Outcome struct {
	Index  int                `json:"index"`
	Result *pipelength.Result `json:"result,omitempty"`
	Error  string             `json:"error,omitempty"`
	Status int                `json:"status,omitempty"`
}

type Result struct {
	Count   int       `json:"count"`
	Failed  int       `json:"failed"`
	Results []Outcome `json:"results"`
}

// Evaluator runs the pipe length calculation over many circuits with at most
// Workers evaluations in flight.
type Evaluator struct {
	Calc    *pipelength.Calculator
	Workers int
}

func (e *Evaluator) Run(ctx context.Context, items []pipelength.Input) (Result, error) {
	if len(items) == 0 {
		return Result{}, ErrNoItems
	}
	if len(items) > MaxItems {
		return Result{}, ErrTooManyItems
	}
	workers := e.Workers
	if workers <= 0 {
		workers = 1
	}

	out := make([]Outcome, len(items))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, item := range items {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i].Index = i
			res, err := e.Calc.Calculate(item)
			if err != nil {
				out[i].Error = err.Error()
				out[i].Status = pipelength.StatusFor(err)
				return nil
			}
			out[i].Result = &res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	res := Result{Count: len(out), Results: out}
	for _, o := range out {
		if o.Error != "" {
			res.Failed++
		}
	}
	log.WithFields(log.Fields{"count": res.Count, "failed": res.Failed, "workers": workers}).Info("batch evaluated")
	return res, nil
}
