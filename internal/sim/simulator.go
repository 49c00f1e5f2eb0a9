package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/billiard/internal/physics"
)

// Simulator is the host loop around a table: it steps, applies the host decay
// pass, keeps time and feeds metrics and observers.
type Simulator struct {
	table     *physics.Table
	metrics   []Metric
	observers []Observer
	t         float64
	steps     int
}

func New(table *physics.Table) *Simulator {
	return &Simulator{
		table:     table,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Table() *physics.Table { return s.table }
func (s *Simulator) Time() float64         { return s.t }
func (s *Simulator) Steps() int            { return s.steps }

// Frame returns the current table state without stepping.
func (s *Simulator) Frame() Frame {
	return Frame{
		Step:   s.steps,
		Time:   s.t,
		Params: s.table.Params(),
		Discs:  s.table.Snapshot(),
	}
}

// Tick advances the table by dt and notifies metrics and observers.
func (s *Simulator) Tick(dt float64, hostDecay bool) Frame {
	rep := s.table.Step(dt)
	if hostDecay {
		s.table.Decay(dt)
	}
	s.t += dt
	s.steps++

	f := s.Frame()
	f.Dt = dt
	f.Report = rep

	for _, m := range s.metrics {
		m.Observe(f)
	}
	for _, obs := range s.observers {
		obs.OnStep(f)
	}
	return f
}

// Run steps the table with a fixed dt for cfg.Duration seconds.
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	steps := int(cfg.Duration/cfg.Dt + 1e-9)
	sample := cfg.SampleEvery
	if sample < 1 {
		sample = 1
	}

	result := &Result{
		States:   make([][]float64, 0, steps/sample+2),
		Times:    make([]float64, 0, steps/sample+2),
		Metrics:  make(map[string]float64),
		RestTime: -1,
		Errors:   make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	start := s.Frame()
	for _, m := range s.metrics {
		m.Observe(start)
	}
	result.States = append(result.States, s.table.State())
	result.Times = append(result.Times, s.t)
	if start.AtRest() {
		result.RestTime = s.t
	}

	var last Frame
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			s.finish(result)
			return result, ctx.Err()
		default:
		}

		last = s.Tick(cfg.Dt, cfg.HostDecay)
		result.StepsTaken++
		result.Contacts += len(last.Report.Contacts)
		result.WallHits += len(last.Report.Walls)

		if cfg.ValidateState {
			if err := s.table.Validate(); err != nil {
				result.Errors = append(result.Errors, &SimulationError{Step: last.Step, Time: last.Time, Wrapped: err})
				break
			}
		}

		if (i+1)%sample == 0 || i == steps-1 {
			result.States = append(result.States, last.State())
			result.Times = append(result.Times, last.Time)
		}

		if last.AtRest() {
			if result.RestTime < 0 {
				result.RestTime = last.Time
			}
			if cfg.StopAtRest {
				if (i+1)%sample != 0 && i != steps-1 {
					result.States = append(result.States, last.State())
					result.Times = append(result.Times, last.Time)
				}
				break
			}
		}
	}

	s.finish(result)
	return result, nil
}

func (s *Simulator) finish(result *Result) {
	result.Final = s.table.Snapshot()
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

func validateConfig(cfg Config) error {
	if !(cfg.Dt > 0) || math.IsInf(cfg.Dt, 0) {
		return fmt.Errorf("%w: dt must be positive, got %f", ErrInvalidConfig, cfg.Dt)
	}
	if !(cfg.Duration > 0) || math.IsInf(cfg.Duration, 0) {
		return fmt.Errorf("%w: duration must be positive, got %f", ErrInvalidConfig, cfg.Duration)
	}
	return nil
}
