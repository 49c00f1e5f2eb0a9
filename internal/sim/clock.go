package sim

import "time"

// Clock turns wall-clock tick times into frame dt values, capped at max so a
// stalled frame cannot tunnel discs through the walls.
type Clock struct {
	last    time.Time
	max     float64
	started bool
}

func NewClock(maxDt float64) *Clock {
	return &Clock{max: maxDt}
}

// Tick returns the seconds elapsed since the previous tick. The first tick
// returns 0.
func (c *Clock) Tick(now time.Time) float64 {
	if !c.started {
		c.started = true
		c.last = now
		return 0
	}
	dt := now.Sub(c.last).Seconds()
	c.last = now
	if dt < 0 {
		return 0
	}
	if c.max > 0 && dt > c.max {
		return c.max
	}
	return dt
}

// Reset forgets the previous tick.
func (c *Clock) Reset() { c.started = false }
