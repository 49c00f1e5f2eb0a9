package metrics

import "github.com/san-kum/billiard/internal/sim"

// DefaultTolerance is the slack allowed by the default containment metric.
const DefaultTolerance = 1e-6

// Defaults returns a fresh set of the standard run metrics.
func Defaults() []sim.Metric {
	return []sim.Metric{
		NewKineticEnergy(),
		NewFinalEnergy(),
		NewContacts(),
		NewWallHits(),
		NewRestTime(),
		NewContainment(DefaultTolerance),
	}
}
