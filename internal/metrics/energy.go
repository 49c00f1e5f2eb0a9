package metrics

import "github.com/san-kum/billiard/internal/sim"

func frameEnergy(f sim.Frame) float64 {
	var e float64
	for _, d := range f.Discs {
		e += d.KineticEnergy()
	}
	return e
}

// KineticEnergy is the mean total kinetic energy over the observed frames.
type KineticEnergy struct {
	name    string
	samples int
	total   float64
}

func NewKineticEnergy() *KineticEnergy {
	return &KineticEnergy{name: "kinetic_energy"}
}

func (e *KineticEnergy) Name() string { return e.name }

func (e *KineticEnergy) Observe(f sim.Frame) {
	e.total += frameEnergy(f)
	e.samples++
}

func (e *KineticEnergy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.total / float64(e.samples)
}

func (e *KineticEnergy) Reset() {
	e.total = 0
	e.samples = 0
}

// FinalEnergy keeps the energy of the last observed frame.
type FinalEnergy struct {
	name    string
	initial float64
	current float64
	samples int
}

func NewFinalEnergy() *FinalEnergy {
	return &FinalEnergy{name: "final_energy"}
}

func (e *FinalEnergy) Name() string { return e.name }

func (e *FinalEnergy) Observe(f sim.Frame) {
	energy := frameEnergy(f)
	if e.samples == 0 {
		e.initial = energy
	}
	e.current = energy
	e.samples++
}

func (e *FinalEnergy) Value() float64 { return e.current }

// Retained is the share of the first frame's energy still present.
func (e *FinalEnergy) Retained() float64 {
	if e.initial == 0 {
		return 0
	}
	return e.current / e.initial
}

func (e *FinalEnergy) Reset() {
	e.initial = 0
	e.current = 0
	e.samples = 0
}
