package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/billiard/internal/config"
	"github.com/san-kum/billiard/internal/metrics"
	"github.com/san-kum/billiard/internal/sim"
)

// Experiment is one configured run: a table built from a configuration, the
// host loop around it and its metrics.
type Experiment struct {
	cfg       *config.Config
	simulator *sim.Simulator
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{cfg: cfg}
}

// Setup builds the table. With no metrics given the standard set is used.
func (e *Experiment) Setup(ms ...sim.Metric) error {
	table, err := e.cfg.NewTable()
	if err != nil {
		return err
	}
	e.simulator = sim.New(table)

	if len(ms) == 0 {
		ms = metrics.Defaults()
	}
	for _, m := range ms {
		e.simulator.AddMetric(m)
	}
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.simulator.Run(ctx, e.cfg.SimConfig())
}

// Job wraps the experiment for an Ensemble. Setup must have been called.
func (e *Experiment) Job(name string) sim.Job {
	return sim.Job{
		Name:    name,
		Table:   e.simulator.Table(),
		Config:  e.cfg.SimConfig(),
		Metrics: metrics.Defaults,
	}
}

func (e *Experiment) Config() *config.Config { return e.cfg }

// GetSimulator returns the underlying simulator for adding observers
func (e *Experiment) GetSimulator() *sim.Simulator {
	return e.simulator
}
