package sim

import (
	"errors"
	"fmt"

	"github.com/san-kum/billiard/internal/physics"
)

var (
	// ErrInvalidConfig indicates run settings that cannot drive a table.
	ErrInvalidConfig = errors.New("sim: invalid run configuration")
)

// Frame is the table as seen after one host tick.
type Frame struct {
	Step   int
	Time   float64
	Dt     float64
	Params physics.Params
	Discs  []physics.Disc
	Report physics.Report
}

// AtRest reports whether every disc in the frame is still.
func (f Frame) AtRest() bool {
	for _, d := range f.Discs {
		if !d.Vel.IsZero() {
			return false
		}
	}
	return true
}

// State flattens the frame into x, y, vx, vy per disc.
func (f Frame) State() []float64 {
	s := make([]float64, 0, 4*len(f.Discs))
	for _, d := range f.Discs {
		s = append(s, d.Pos.X, d.Pos.Y, d.Vel.X, d.Vel.Y)
	}
	return s
}

type Metric interface {
	Name() string
	Observe(f Frame)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(f Frame)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(f Frame)

func (fn ObserverFunc) OnStep(f Frame) { fn(f) }

type Config struct {
	Dt            float64
	Duration      float64
	HostDecay     bool // extra decay pass after every Step, as the reference host loop does
	StopAtRest    bool
	ValidateState bool
	SampleEvery   int
}

func DefaultConfig() Config {
	return Config{
		Dt:            1.0 / 60,
		Duration:      20.0,
		HostDecay:     true,
		ValidateState: true,
		SampleEvery:   1,
	}
}

type Result struct {
	States     [][]float64
	Times      []float64
	Metrics    map[string]float64
	Final      []physics.Disc
	StepsTaken int
	Contacts   int
	WallHits   int
	RestTime   float64 // -1 when the table never came to rest
	Errors     []error
}

// SimulationError wraps an error with the tick it happened on.
type SimulationError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
