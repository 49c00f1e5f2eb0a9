package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/billiard/internal/physics"
	"github.com/san-kum/billiard/internal/sim"
)

func frame(t float64, discs ...physics.Disc) sim.Frame {
	return sim.Frame{Time: t, Params: physics.DefaultParams(), Discs: discs}
}

func TestKineticEnergy(t *testing.T) {
	m := NewKineticEnergy()

	m.Observe(frame(0, physics.NewDisc(100, 100, 3, 4, physics.White)))
	if math.Abs(m.Value()-12.5) > 1e-9 {
		t.Errorf("expected energy 12.5, got %f", m.Value())
	}

	m.Observe(frame(1, physics.NewDisc(100, 100, 0, 0, physics.White)))
	if math.Abs(m.Value()-6.25) > 1e-9 {
		t.Errorf("expected mean 6.25, got %f", m.Value())
	}
}

func TestKineticEnergySumsDiscs(t *testing.T) {
	m := NewKineticEnergy()
	m.Observe(frame(0,
		physics.NewDisc(100, 100, 1, 0, physics.White),
		physics.NewDisc(200, 100, 0, 2, physics.Red),
		physics.NewDisc(300, 100, 3, 0, physics.Blue),
	))

	if math.Abs(m.Value()-7.0) > 1e-9 {
		t.Errorf("expected 7.0, got %f", m.Value())
	}
}

func TestKineticEnergyReset(t *testing.T) {
	m := NewKineticEnergy()

	m.Observe(frame(0, physics.NewDisc(1, 1, 1, 1, physics.White)))
	if m.Value() == 0 {
		t.Error("expected non-zero energy")
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero energy after reset")
	}
}

func TestFinalEnergy(t *testing.T) {
	m := NewFinalEnergy()

	m.Observe(frame(0, physics.NewDisc(1, 1, 10, 0, physics.White)))
	m.Observe(frame(1, physics.NewDisc(1, 1, 5, 0, physics.White)))

	if math.Abs(m.Value()-12.5) > 1e-9 {
		t.Errorf("expected final energy 12.5, got %f", m.Value())
	}
	if math.Abs(m.Retained()-0.25) > 1e-9 {
		t.Errorf("expected retained 0.25, got %f", m.Retained())
	}

	m.Reset()
	if m.Value() != 0 || m.Retained() != 0 {
		t.Error("expected zero after reset")
	}
}
