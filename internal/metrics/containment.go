package metrics

import "github.com/san-kum/billiard/internal/sim"

// Containment is the fraction of frames in which every disc lies inside the
// table inset by its radius. Stepped frames are judged right after the wall
// pass, so a disc that pair separation nudges past a rail still counts as
// contained. Frames without a step are judged by their positions.
type Containment struct {
	name       string
	tolerance  float64
	violations int
	samples    int
}

func NewContainment(tolerance float64) *Containment {
	return &Containment{
		name:      "containment",
		tolerance: tolerance,
	}
}

func (c *Containment) Name() string {
	return c.name
}

func (c *Containment) Observe(f sim.Frame) {
	c.samples++
	if f.Dt > 0 {
		if len(f.Report.Escaped) > 0 {
			c.violations++
		}
		return
	}
	for _, d := range f.Discs {
		if !d.Inside(f.Params, c.tolerance) {
			c.violations++
			break
		}
	}
}

func (c *Containment) Value() float64 {
	if c.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(c.violations)/float64(c.samples)
}

func (c *Containment) Reset() {
	c.violations = 0
	c.samples = 0
}
