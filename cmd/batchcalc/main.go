// Command batchcalc evaluates every circuit of a workbook offline and
// writes the results next to the inputs:
//
//	batchcalc -in circuits.xlsx -out results.xlsx [-config conf/hydra.ini]
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"Hydra/internal/calc/batch"
	"Hydra/internal/calc/pipelength"
	"Hydra/internal/catalog"
	"Hydra/internal/config"

	log "github.com/sirupsen/logrus"
)

func main() {
	in := flag.String("in", "", "input workbook")
	out := flag.String("out", "results.xlsx", "output workbook")
	confPath := flag.String("config", "conf/hydra.ini", "ini configuration")
	version := flag.String("catalog", "", "built-in catalog version, overrides the config")
	flag.Parse()
	if *in == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.LoadFile(*confPath)
	if err != nil {
		log.WithError(err).Fatal("configuration error")
	}
	if *version != "" {
		cfg.Catalog.Version = *version
	}
	set, err := catalog.Builtin(cfg.Catalog.Version)
	if err != nil {
		log.WithError(err).Fatal("catalog not loaded")
	}
	solver, err := cfg.HydraulicSolver()
	if err != nil {
		log.WithError(err).Fatal("configuration error")
	}

	f, err := os.Open(*in)
	if err != nil {
		log.WithError(err).Fatal("cannot open input")
	}
	items, skipped, err := batch.ReadSheet(f)
	f.Close()
	if err != nil {
		log.WithError(err).Fatal("cannot read input")
	}
	for _, s := range skipped {
		log.WithFields(log.Fields{"row": s.Row}).Warn(s.Err)
	}

	eval := &batch.Evaluator{
		Calc:    pipelength.New(set, cfg.ViscosityModel(), solver, cfg.Losses.ElbowCoefficient),
		Workers: cfg.Batch.Workers,
	}
	res, err := eval.Run(ctx, items)
	if err != nil {
		log.WithError(err).Fatal("batch failed")
	}

	w, err := os.Create(*out)
	if err != nil {
		log.WithError(err).Fatal("cannot create output")
	}
	if err := batch.WriteSheet(w, items, res); err != nil {
		w.Close()
		log.WithError(err).Fatal("cannot write output")
	}
	if err := w.Close(); err != nil {
		log.WithError(err).Fatal("cannot write output")
	}
	log.WithFields(log.Fields{"out": *out, "count": res.Count, "failed": res.Failed, "skipped": len(skipped)}).Info("done")
}
