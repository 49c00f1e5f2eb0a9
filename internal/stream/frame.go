package stream

import (
	"github.com/san-kum/billiard/internal/physics"
	"github.com/san-kum/billiard/internal/sim"
)

// Frame is the JSON message sent to viewers after each step.
type Frame struct {
	Time   float64 `json:"time"`
	Step   int     `json:"step"`
	Radius float64 `json:"radius"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Discs  []Disc  `json:"discs"`
}

type Disc struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	VX    float64 `json:"vx"`
	VY    float64 `json:"vy"`
	Color string  `json:"color"`
	Label string  `json:"label,omitempty"`
}

func NewFrame(f sim.Frame) Frame {
	out := Frame{
		Time:   f.Time,
		Step:   f.Step,
		Radius: f.Params.Radius,
		Width:  f.Params.Width,
		Height: f.Params.Height,
		Discs:  make([]Disc, len(f.Discs)),
	}
	for i, d := range f.Discs {
		out.Discs[i] = newDisc(d)
	}
	return out
}

func newDisc(d physics.Disc) Disc {
	return Disc{
		X:     d.Pos.X,
		Y:     d.Pos.Y,
		VX:    d.Vel.X,
		VY:    d.Vel.Y,
		Color: d.Color.Hex(),
		Label: d.Label,
	}
}

// OnStep lets the hub observe a simulator directly.
func (h *Hub) OnStep(f sim.Frame) {
	_ = h.Broadcast(NewFrame(f))
}
